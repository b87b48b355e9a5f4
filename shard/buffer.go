package shard

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"

	"go.uber.org/multierr"
)

// WriteStatus is the outcome of Buffer.Write.
type WriteStatus int

const (
	// Accepted means the row was written.
	Accepted WriteStatus = iota
	// Full means the buffer is at capacity and the row was not written.
	Full
)

func (s WriteStatus) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("WriteStatus(%d)", int(s))
	}
}

// BufferOptions configures a Buffer.
type BufferOptions struct {
	// MaxRows is the number of data rows the buffer accepts before it
	// reports Full. It must be at least 1.
	MaxRows int
	// Comma is the field delimiter. If zero, ',' is used.
	Comma rune
}

// Buffer writes one shard file. The header is written when the buffer is
// created; data rows follow until MaxRows is reached.
//
// A Buffer owns its file handle. Close must be called to flush buffered
// rows and release it.
type Buffer struct {
	name    string
	width   int
	maxRows int
	rows    int

	f      *os.File
	w      *csv.Writer
	closed bool
}

// NewBuffer creates (or truncates) the file name and writes header to it.
func NewBuffer(name string, header []string, opt BufferOptions) (*Buffer, error) {
	if opt.MaxRows < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opt.MaxRows)
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDestinationUnwritable, err)
	}
	return newBuffer(f, header, opt.MaxRows, opt.Comma)
}

// newBuffer takes ownership of f; it is closed if the header cannot be
// written.
func newBuffer(f *os.File, header []string, maxRows int, comma rune) (*Buffer, error) {
	w := csv.NewWriter(f)
	if comma != 0 {
		w.Comma = comma
	}
	b := &Buffer{
		name:    f.Name(),
		width:   len(header),
		maxRows: maxRows,
		f:       f,
		w:       w,
	}
	if err := w.Write(header); err != nil {
		return nil, multierr.Append(fmt.Errorf("%w: write header to %s: %w", ErrDestinationUnwritable, b.name, err), f.Close())
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, multierr.Append(fmt.Errorf("%w: write header to %s: %w", ErrDestinationUnwritable, b.name, err), f.Close())
	}
	return b, nil
}

// newUnboundedBuffer is a Buffer that never reports Full. Merge output
// uses it.
func newUnboundedBuffer(f *os.File, header []string, comma rune) (*Buffer, error) {
	return newBuffer(f, header, math.MaxInt, comma)
}

// Write appends row to the shard. It returns Full, without writing, once
// the buffer holds MaxRows rows.
func (b *Buffer) Write(row []string) (WriteStatus, error) {
	if b.closed {
		return Full, ErrBufferClosed
	}
	if len(row) != b.width {
		return Full, fmt.Errorf("%w: %d fields, header has %d", ErrColumnCount, len(row), b.width)
	}
	if b.rows >= b.maxRows {
		return Full, nil
	}
	if err := b.w.Write(row); err != nil {
		return Full, fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, b.name, err)
	}
	b.rows++
	return Accepted, nil
}

// Rows reports the number of data rows written.
func (b *Buffer) Rows() int { return b.rows }

// Name returns the path of the shard file.
func (b *Buffer) Name() string { return b.name }

// Close flushes pending rows and closes the file. It is safe to call Close
// more than once.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.w.Flush()
	var err error
	if ferr := b.w.Error(); ferr != nil {
		err = fmt.Errorf("%w: flush %s: %w", ErrDestinationUnwritable, b.name, ferr)
	}
	if cerr := b.f.Close(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("close %s: %w", b.name, cerr))
	}
	return err
}
