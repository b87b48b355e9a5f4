package transform

import (
	"context"
	"errors"

	"github.com/carlodf/csvshard/connector"
)

var errNilMapper = errors.New("transform: nil Mapper")

type decodeMapTransform[T any] struct {
	dec Decoder
}

// NewDecodeMapTransform returns a Transformer that decodes with dec and
// maps every record it yields.
func NewDecodeMapTransform[T any](dec Decoder) Transformer[T] {
	if dec == nil {
		panic("transform: NewDecodeMapTransform with nil Decoder")
	}
	return &decodeMapTransform[T]{dec: dec}
}

func (t *decodeMapTransform[T]) Transform(ctx context.Context, rc connector.SrcAwareStreamer, mapFn Mapper[T]) (StructIterator[T], error) {
	if mapFn == nil {
		if rc != nil {
			_ = rc.Close()
		}
		return nil, errNilMapper
	}
	records, err := t.dec.Decode(ctx, rc)
	if err != nil {
		return nil, err
	}
	return &mapped[T]{records: records, mapFn: mapFn}, nil
}

// mapped applies mapFn lazily, one record per Next. A mapping error is
// sticky and takes precedence over the decoder's.
type mapped[T any] struct {
	records RecordIterator
	mapFn   Mapper[T]

	value T
	err   error
	done  bool
}

func (m *mapped[T]) Next() bool {
	if m.done {
		return false
	}
	if !m.records.Next() {
		m.done = true
		return false
	}
	v, err := m.mapFn(m.records.Record())
	if err != nil {
		m.err = err
		m.done = true
		return false
	}
	m.value = v
	return true
}

func (m *mapped[T]) Struct() T { return m.value }

func (m *mapped[T]) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.records.Err()
}

func (m *mapped[T]) Header() []string { return m.records.Header() }

func (m *mapped[T]) Close() error {
	m.done = true
	return m.records.Close()
}
