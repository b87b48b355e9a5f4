package shard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// MergeOptions configures Merge.
type MergeOptions struct {
	// Output is the merged file. It defaults to the base name.
	Output string
	// Comma is the field delimiter of the shards and the output. If zero,
	// ',' is used.
	Comma rune
	// UnionHeaders is passed to Discover.
	UnionHeaders bool
	// Logger receives merge events. Nil disables logging.
	Logger *zap.Logger
}

// MergeResult summarises a completed merge.
type MergeResult struct {
	Output string
	Header []string
	Rows   int
	Shards []ShardInfo
}

// Merge reconstitutes base from its shards: the merged header, then every
// shard's rows in ascending shard-number order.
//
// The output is written to a temporary file beside it and renamed into
// place once every shard has been copied, so a failed merge leaves an
// existing output untouched.
func Merge(ctx context.Context, base string, opts MergeOptions) (res *MergeResult, err error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	set, err := Discover(ctx, base, DiscoverOptions{
		Comma:        opts.Comma,
		UnionHeaders: opts.UnionHeaders,
		Logger:       log,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := set.Close(); cerr != nil {
			err = multierr.Append(err, cerr)
			res = nil
		}
	}()

	out := opts.Output
	if out == "" {
		out = set.Base()
	}
	tmp, err := createTemp(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDestinationUnwritable, err)
	}
	tmpName := tmp.Name()
	buf, err := newUnboundedBuffer(tmp, set.Header(), opts.Comma)
	if err != nil {
		_ = os.Remove(tmpName)
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = buf.Close()
			_ = os.Remove(tmpName)
		}
	}()

	res = &MergeResult{Output: out, Header: set.Header()}
	for _, n := range set.Numbers() {
		src := set.Source(n)
		for src.Next() {
			if _, err := buf.Write(src.Row()); err != nil {
				return nil, err
			}
		}
		if err := src.Err(); err != nil {
			return nil, fmt.Errorf("read shard %03d: %w", n, readError(ctx, src.Path, err))
		}
		res.Rows += src.Rows()
		res.Shards = append(res.Shards, ShardInfo{Number: n, Path: src.Path, Rows: src.Rows()})
		log.Debug("merged shard", zap.String("path", src.Path), zap.Int("rows", src.Rows()))
	}

	if err := buf.Close(); err != nil {
		return nil, err
	}
	if fi, err := os.Stat(out); err == nil {
		if err := os.Chmod(tmpName, fi.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDestinationUnwritable, err)
		}
	}
	if err := os.Rename(tmpName, out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDestinationUnwritable, err)
	}
	committed = true

	log.Info("merge complete",
		zap.String("output", out),
		zap.Int("rows", res.Rows),
		zap.Int("shards", len(res.Shards)))
	return res, nil
}

// createTemp creates an empty file beside out for Merge to fill and rename
// over it. It is created like os.Create does, 0666 before the umask, so a
// new output ends up with the usual permissions.
func createTemp(out string) (*os.File, error) {
	name := filepath.Join(filepath.Dir(out), "."+filepath.Base(out)+"."+uuid.NewString()+".tmp")
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
}
