package shard

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/carlodf/csvshard/connector"
	"github.com/carlodf/csvshard/opener"
	"github.com/carlodf/csvshard/transform"
)

// DefaultMaxRows is the row limit used when WriterOptions.MaxRows is zero.
const DefaultMaxRows = 10000

// WriterOptions configures a Writer.
type WriterOptions struct {
	// MaxRows is the number of data rows per shard. Zero means
	// DefaultMaxRows.
	MaxRows int
	// Comma is the field delimiter of the source and the shards. If zero,
	// ',' is used.
	Comma rune
	// TrimLeadingSpace trims leading white space of source fields.
	TrimLeadingSpace bool
	// Base names the shards. It defaults to the source's Name().
	Base string
	// Logger receives rollover and summary events. Nil disables logging.
	Logger *zap.Logger
}

// ShardInfo describes one shard file.
type ShardInfo struct {
	Number int
	Path   string
	Rows   int
}

// SplitResult summarises a completed split.
type SplitResult struct {
	Source string
	Header []string
	Rows   int
	Shards []ShardInfo
}

// Writer moves rows from a CSV source into consecutive shard files. It
// keeps exactly one shard open at a time.
//
// The first error a Writer meets is sticky: every later Advance returns
// it, and the Writer only needs closing.
type Writer struct {
	ctx    context.Context
	base   string
	source string
	opts   WriterOptions
	log    *zap.Logger
	rows   transform.StructIterator[[]string]
	header []string
	buf    *Buffer
	number int
	total  int
	shards []ShardInfo
	err    error
	closed bool
}

// NewWriter decodes the header of src and opens shard 1.
func NewWriter(ctx context.Context, src opener.Opener, opts WriterOptions) (*Writer, error) {
	if opts.MaxRows == 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.MaxRows < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opts.MaxRows)
	}
	if opts.Base == "" {
		opts.Base = src.Name()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	dec := transform.NewCSVDecoder(transform.CSVDecoderOptions{
		Comma:            opts.Comma,
		TrimLeadingSpace: opts.TrimLeadingSpace,
	})
	stream := connector.NewStream(ctx, src)
	rows, err := transform.NewDecodeMapTransform[[]string](dec).Transform(ctx, stream, transform.Fields)
	if err != nil {
		return nil, headerError(ctx, src.Name(), err)
	}

	w := &Writer{
		ctx:    ctx,
		base:   opts.Base,
		source: src.Name(),
		opts:   opts,
		log:    log,
		rows:   rows,
		header: rows.Header(),
	}
	if err := w.open(1); err != nil {
		return nil, multierr.Append(err, rows.Close())
	}
	return w, nil
}

// Header returns the source header that every shard repeats.
func (w *Writer) Header() []string {
	return append([]string(nil), w.header...)
}

// Advance moves one row from the source into the active shard, rolling to
// the next shard when the active one is full. It returns false, with a nil
// error, once the source is exhausted.
func (w *Writer) Advance() (bool, error) {
	if w.closed {
		return false, ErrBufferClosed
	}
	if w.err != nil {
		return false, w.err
	}
	more, err := w.advance()
	if err != nil {
		w.err = err
	}
	return more, err
}

func (w *Writer) advance() (bool, error) {
	if !w.rows.Next() {
		if err := w.rows.Err(); err != nil {
			return false, readError(w.ctx, w.source, err)
		}
		return false, nil
	}
	row := w.rows.Struct()

	status, err := w.buf.Write(row)
	if err != nil {
		return false, err
	}
	if status == Full {
		if err := w.roll(); err != nil {
			return false, err
		}
		// A fresh buffer always has room for one row.
		if _, err := w.buf.Write(row); err != nil {
			return false, err
		}
	}
	w.total++
	return true, nil
}

// Run drives Advance until the source is exhausted and finalises the last
// shard. The Writer must still be closed.
func (w *Writer) Run() (*SplitResult, error) {
	for {
		more, err := w.Advance()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if err := w.finish(); err != nil {
		return nil, err
	}
	w.log.Info("split complete",
		zap.String("source", w.source),
		zap.Int("rows", w.total),
		zap.Int("shards", len(w.shards)))
	return &SplitResult{
		Source: w.source,
		Header: w.Header(),
		Rows:   w.total,
		Shards: append([]ShardInfo(nil), w.shards...),
	}, nil
}

// Close releases the active shard and the source. It is safe to call
// Close more than once, and after Run.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return multierr.Append(w.finish(), w.rows.Close())
}

func (w *Writer) open(n int) error {
	if n > MaxShardNumber {
		return fmt.Errorf("%w: %s needs more than %d shards of %d rows", ErrTooManyShards, w.source, MaxShardNumber, w.opts.MaxRows)
	}
	buf, err := NewBuffer(Compose(w.base, n), w.header, BufferOptions{
		MaxRows: w.opts.MaxRows,
		Comma:   w.opts.Comma,
	})
	if err != nil {
		return err
	}
	w.buf = buf
	w.number = n
	w.log.Debug("opened shard", zap.String("path", buf.Name()), zap.Int("number", n))
	return nil
}

func (w *Writer) roll() error {
	if err := w.finish(); err != nil {
		return err
	}
	return w.open(w.number + 1)
}

// finish closes the active buffer and records it.
func (w *Writer) finish() error {
	if w.buf == nil {
		return nil
	}
	buf := w.buf
	w.buf = nil
	w.shards = append(w.shards, ShardInfo{Number: w.number, Path: buf.Name(), Rows: buf.Rows()})
	w.log.Debug("closed shard", zap.String("path", buf.Name()), zap.Int("rows", buf.Rows()))
	return buf.Close()
}

// Split shards the CSV file named by spec (a path or file URL) and closes
// every file it opened before returning.
func Split(ctx context.Context, spec string, opts WriterOptions) (res *SplitResult, err error) {
	src, err := opener.Single(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	w, err := NewWriter(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = multierr.Append(err, cerr)
			res = nil
		}
	}()
	return w.Run()
}
