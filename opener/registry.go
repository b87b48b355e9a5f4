package opener

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownScheme is returned by Resolve for a spec whose scheme has
	// no registered Factory.
	ErrUnknownScheme = errors.New("no opener registered for scheme")
	// ErrAmbiguousSpec is returned by Single when a spec resolves to more
	// than one source.
	ErrAmbiguousSpec = errors.New("spec matches more than one source")
)

// Factory turns a spec of one scheme into the sources it names.
type Factory func(spec string) ([]Opener, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{"file": Glob}
)

// Register adds f for scheme, compared case-insensitively. A scheme can
// only be registered once per process.
func Register(scheme string, f Factory) error {
	scheme = strings.ToLower(scheme)
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[scheme]; dup {
		return fmt.Errorf("opener: scheme %q registered twice", scheme)
	}
	factories[scheme] = f
	return nil
}

// Resolve hands spec to the Factory of its scheme. A spec without "://"
// is a file path.
func Resolve(spec string) ([]Opener, error) {
	scheme := schemeOf(spec)
	mu.RLock()
	f, ok := factories[scheme]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q: %s", ErrUnknownScheme, scheme, spec)
	}
	return f(spec)
}

// Single is Resolve for callers that need exactly one source, such as
// the file being sharded.
func Single(spec string) (Opener, error) {
	ops, err := Resolve(spec)
	if err != nil {
		return nil, err
	}
	if len(ops) != 1 {
		return nil, fmt.Errorf("%w: %q resolved to %d files", ErrAmbiguousSpec, spec, len(ops))
	}
	return ops[0], nil
}

func schemeOf(spec string) string {
	scheme, _, found := strings.Cut(strings.TrimSpace(spec), "://")
	if !found {
		return "file"
	}
	return strings.ToLower(scheme)
}
