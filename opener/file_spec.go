package opener

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoMatch is returned by Glob when a spec matches no file.
var ErrNoMatch = errors.New("no files matched")

// Glob is the Factory of the file scheme. spec is a path, a glob or a
// file URL:
//
//	data/input.csv
//	/data/input.???.csv
//	file:///data/input%20a.csv
//	C:\data\input.csv
//
// A spec naming an existing regular file yields that file even when its
// name contains glob metacharacters. Otherwise matches are returned in
// lexical order; shard discovery re-sorts them by shard number.
func Glob(spec string) ([]Opener, error) {
	p, err := filePath(spec)
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
		return []Opener{NewFile(p)}, nil
	}
	names, err := filepath.Glob(p)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", p, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, p)
	}
	slices.Sort(names)
	ops := make([]Opener, len(names))
	for i, name := range names {
		ops[i] = NewFile(name)
	}
	return ops, nil
}

// Path turns a path or file URL into a clean filesystem path without
// globbing it.
func Path(spec string) (string, error) {
	p, err := filePath(spec)
	if err != nil {
		return "", err
	}
	return filepath.Clean(p), nil
}

// filePath decodes file URLs and rejects any other URL scheme. Plain
// paths, Windows drive paths and UNC paths pass through trimmed.
func filePath(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if isDrivePath(spec) || strings.HasPrefix(spec, `\\`) {
		return spec, nil
	}
	if len(spec) < 5 || !strings.EqualFold(spec[:5], "file:") {
		if u, err := url.Parse(spec); err == nil && u.Scheme != "" {
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		return spec, nil
	}

	u, err := url.Parse(spec)
	if err != nil {
		return "", err
	}
	var p string
	switch {
	case u.Opaque != "":
		// file:rel/path or file:c:\dir keep their escapes.
		if p, err = url.PathUnescape(u.Opaque); err != nil {
			p = u.Opaque
		}
	case u.Host != "" && !strings.EqualFold(u.Host, "localhost"):
		p = "//" + u.Host + u.Path
	default:
		p = u.Path
	}
	// file:///C:/dir
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	if p == "" {
		return "", fmt.Errorf("empty file URL %q", spec)
	}
	return filepath.FromSlash(p), nil
}

// isDrivePath reports whether spec starts with a drive letter, as in
// "C:", "C:\dir" or "C:/dir".
func isDrivePath(spec string) bool {
	if len(spec) < 2 || spec[1] != ':' {
		return false
	}
	c := spec[0] | 0x20
	if c < 'a' || c > 'z' {
		return false
	}
	return len(spec) == 2 || spec[2] == '\\' || spec[2] == '/'
}
