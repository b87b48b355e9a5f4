// Package opener resolves source specifications (plain paths, globs and
// file:// URLs) into lazily opened byte sources.
package opener

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Opener is a named, lazily opened byte source. A CSV file to shard and
// each discovered shard file are both Openers.
type Opener interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// File opens a path on the local filesystem. Nothing is checked until
// Open, so a missing file only shows up there.
type File struct {
	Path string
}

// NewFile returns a File for the cleaned path.
func NewFile(path string) File {
	return File{Path: filepath.Clean(path)}
}

// Open fails without touching the disk when ctx is already done.
func (f File) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(f.Path)
}

func (f File) Name() string { return f.Path }
