package shard

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/carlodf/csvshard/transform"
)

// Sentinel errors returned by shard operations. Callers match them with
// errors.Is; returned errors carry the offending file name as context.
var (
	// ErrSourceUnreadable is returned when the file to shard cannot be
	// resolved, opened or read.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrMissingHeader is returned when a source or shard has no header row.
	ErrMissingHeader = errors.New("missing header row")

	// ErrInvalidHeader is returned when a header row cannot be parsed or
	// names a column twice.
	ErrInvalidHeader = errors.New("invalid header row")

	// ErrMalformedRow is returned when a data row's field count does not
	// match the header.
	ErrMalformedRow = errors.New("malformed row")

	// ErrDestinationUnwritable is returned when a shard or merge output
	// file cannot be created or written.
	ErrDestinationUnwritable = errors.New("destination unwritable")

	// ErrInvalidCapacity is returned for a row limit below one.
	ErrInvalidCapacity = errors.New("row limit must be at least 1")

	// ErrTooManyShards is returned instead of creating a shard whose number
	// no longer fits in three digits.
	ErrTooManyShards = errors.New("shard number exceeds 999")

	// ErrColumnCount is returned by Buffer.Write for a row that does not
	// line up with the buffer's header.
	ErrColumnCount = errors.New("row does not match header width")

	// ErrBufferClosed is returned when writing to a closed Buffer.
	ErrBufferClosed = errors.New("buffer is closed")

	// ErrNoShardsFound is returned when discovery finds no shard files.
	ErrNoShardsFound = errors.New("no shards found")

	// ErrDuplicateShard is returned when two shard files map to the same
	// shard number.
	ErrDuplicateShard = errors.New("duplicate shard number")

	// ErrHeaderMismatch is returned when shards disagree on their columns
	// and header union was not requested.
	ErrHeaderMismatch = errors.New("shard headers differ")
)

// headerError classifies a failure to decode the header of the file name.
// Cancellation wins over whatever the closed stream reported.
func headerError(ctx context.Context, name string, err error) error {
	var pe *csv.ParseError
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("open %s: %w", name, ctx.Err())
	case errors.Is(err, io.EOF):
		return fmt.Errorf("%w: %s", ErrMissingHeader, name)
	case errors.Is(err, transform.ErrDuplicateColumn), errors.As(err, &pe):
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	default:
		return fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
}

// readError classifies a failure to read rows from the file name.
func readError(ctx context.Context, name string, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("read %s: %w", name, ctx.Err())
	case errors.Is(err, csv.ErrFieldCount):
		return fmt.Errorf("%w: %s: %w", ErrMalformedRow, name, err)
	default:
		return fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
}
