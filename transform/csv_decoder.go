package transform

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/carlodf/csvshard/connector"
)

// ErrDuplicateColumn is returned by Decode when the header names the same
// column twice. Columns are looked up by name when shards are merged, so
// they must be unique.
var ErrDuplicateColumn = errors.New("duplicate column in header")

// CSVDecoderOptions configures NewCSVDecoder.
type CSVDecoderOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// TrimLeadingSpace drops leading white space from every field. Off,
	// fields are kept byte for byte.
	TrimLeadingSpace bool
}

type csvDecoder struct {
	opt CSVDecoderOptions
}

// NewCSVDecoder returns a Decoder for a single CSV document (RFC 4180,
// with a configurable delimiter). The first record is the header. Every
// following record must have exactly as many fields as the header,
// otherwise iteration stops with a *csv.ParseError wrapping
// csv.ErrFieldCount.
func NewCSVDecoder(opt CSVDecoderOptions) Decoder {
	if opt.Comma == 0 {
		opt.Comma = ','
	}
	return &csvDecoder{opt: opt}
}

// Decode reads the header of rc. It fails with an error wrapping io.EOF
// when rc is empty and with ErrDuplicateColumn for a repeated column name.
//
// Cancelling ctx closes rc; the iterator then reports ctx.Err().
func (d *csvDecoder) Decode(ctx context.Context, rc connector.SrcAwareStreamer) (RecordIterator, error) {
	r := csv.NewReader(rc)
	r.Comma = d.opt.Comma
	r.TrimLeadingSpace = d.opt.TrimLeadingSpace
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		_ = rc.Close()
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("read header of %s: %w", rc.Current().Name, err)
	}
	header = slices.Clone(header)

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			_ = rc.Close()
			return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateColumn, name, rc.Current().Name)
		}
		index[name] = i
	}
	r.FieldsPerRecord = len(header)

	it := &csvRecords{
		ctx:    ctx,
		r:      r,
		stream: rc,
		header: header,
		index:  index,
	}
	it.stop = context.AfterFunc(ctx, func() { _ = rc.Close() })
	return it, nil
}

// csvRecords is the RecordIterator of one decoded CSV stream.
type csvRecords struct {
	ctx    context.Context
	r      *csv.Reader
	stream connector.SrcAwareStreamer
	header []string
	index  map[string]int // column name -> field index

	row  []string // reused by r between calls to Next
	meta connector.SrcMeta
	err  error
	stop func() bool
}

func (it *csvRecords) Next() bool {
	if it.err != nil {
		return false
	}
	row, err := it.r.Read()
	if err == io.EOF {
		return false
	}
	if err != nil {
		// A cancelled read surfaces as a closed pipe.
		if cerr := it.ctx.Err(); cerr != nil {
			err = cerr
		}
		it.err = err
		return false
	}
	it.row = row
	it.meta = it.stream.Current()
	return true
}

func (it *csvRecords) Record() Extractor {
	return csvRecord{row: it.row, index: it.index, meta: it.meta}
}

func (it *csvRecords) Err() error { return it.err }

func (it *csvRecords) Header() []string { return slices.Clone(it.header) }

func (it *csvRecords) Close() error {
	it.stop()
	return it.stream.Close()
}

type csvRecord struct {
	row   []string
	index map[string]int
	meta  connector.SrcMeta
}

func (c csvRecord) ByIndex(i int) (string, bool) {
	if i < 0 || i >= len(c.row) {
		return "", false
	}
	return c.row[i], true
}

func (c csvRecord) ByName(name string) (string, bool) {
	i, ok := c.index[name]
	if !ok {
		return "", false
	}
	return c.row[i], true
}

func (c csvRecord) Len() int { return len(c.row) }

func (c csvRecord) Meta() connector.SrcMeta { return c.meta }
