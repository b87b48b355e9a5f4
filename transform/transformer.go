// Package transform decodes a CSV byte stream into records and maps each
// record to a Go value.
//
// A pipeline has three stages:
//
//	connector.SrcAwareStreamer  bytes of one source file
//	Decoder                     records, header first
//	Mapper[T]                   one T per record
//
// Shard writing maps records with Fields, which keeps the source column
// order. Merging maps them with Project, which lays every shard out in the
// merged header's order.
package transform

import (
	"context"

	"github.com/carlodf/csvshard/connector"
)

// Extractor reads the fields of the current record. It is only valid until
// the iterator that produced it advances.
type Extractor interface {
	// ByIndex returns field i, or false when i is out of range.
	ByIndex(i int) (string, bool)
	// ByName returns the field under the header column name, or false when
	// the header has no such column.
	ByName(name string) (string, bool)
	// Len is the number of fields, which always equals the header width.
	Len() int
	// Meta names the source the record was read from.
	Meta() connector.SrcMeta
}

// RecordIterator walks the records of a decoded stream.
//
//	it, err := dec.Decode(ctx, stream)
//	if err != nil { ... }
//	defer it.Close()
//	for it.Next() {
//		rec := it.Record()
//	}
//	if err := it.Err(); err != nil { ... }
type RecordIterator interface {
	// Next advances to the next record. It returns false at the end of
	// the stream and on the first error, which Err then reports.
	Next() bool
	Record() Extractor
	Err() error
	// Header is known as soon as Decode returns.
	Header() []string
	// Close releases the stream. It may be called at any point, and more
	// than once.
	Close() error
}

// StructIterator walks the mapped values of a stream. It follows the same
// contract as RecordIterator.
type StructIterator[T any] interface {
	Next() bool
	Struct() T
	Err() error
	Header() []string
	Close() error
}

// Decoder parses a byte stream into records. The returned iterator owns rc:
// it is closed when the iterator is closed, or by Decode itself when it
// fails.
type Decoder interface {
	Decode(ctx context.Context, rc connector.SrcAwareStreamer) (RecordIterator, error)
}

// Mapper turns one record into a T. An error stops the iteration.
type Mapper[T any] func(Extractor) (T, error)

// Transformer decodes a stream and maps each record with mapFn. Like
// Decoder, the iterator it returns owns rc.
type Transformer[T any] interface {
	Transform(ctx context.Context, rc connector.SrcAwareStreamer, mapFn Mapper[T]) (StructIterator[T], error)
}
