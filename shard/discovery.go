package shard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/carlodf/csvshard/connector"
	"github.com/carlodf/csvshard/opener"
	"github.com/carlodf/csvshard/transform"
)

// DiscoverOptions configures Discover.
type DiscoverOptions struct {
	// Comma is the field delimiter of the shards. If zero, ',' is used.
	Comma rune
	// UnionHeaders accepts shards whose columns differ. The merged header
	// is the union of all shard headers, and columns a shard lacks read as
	// empty strings. When false, differing shards fail with
	// ErrHeaderMismatch.
	UnionHeaders bool
	// Logger receives discovery events. Nil disables logging.
	Logger *zap.Logger
}

// Source is one discovered shard opened as a row source. Rows are laid out
// in the column order of the owning Set's merged header.
type Source struct {
	Number int
	Path   string
	Header []string

	rows transform.StructIterator[[]string]
	read int
}

// Next advances to the next row of the shard.
func (s *Source) Next() bool {
	if !s.rows.Next() {
		return false
	}
	s.read++
	return true
}

// Row returns the current row, projected onto the merged header.
func (s *Source) Row() []string { return s.rows.Struct() }

// Err reports the first read or decode error of the shard.
func (s *Source) Err() error { return s.rows.Err() }

// Rows reports the number of rows read so far.
func (s *Source) Rows() int { return s.read }

// Close releases the shard file.
func (s *Source) Close() error { return s.rows.Close() }

// Set is the shards of one base file, keyed by shard number. Shard numbers
// need not be contiguous.
type Set struct {
	base    string
	header  []string
	sources map[int]*Source
	project transform.Mapper[[]string]
}

// NewSet returns an empty Set for base.
func NewSet(base string) *Set {
	return &Set{
		base:    base,
		sources: make(map[int]*Source),
	}
}

// Add registers src under its shard number.
func (s *Set) Add(src *Source) error {
	if prev, ok := s.sources[src.Number]; ok {
		return fmt.Errorf("%w: %03d is claimed by %s and %s", ErrDuplicateShard, src.Number, prev.Path, src.Path)
	}
	s.sources[src.Number] = src
	return nil
}

// Base returns the base file name the shards belong to.
func (s *Set) Base() string { return s.base }

// Header returns the merged header.
func (s *Set) Header() []string { return append([]string(nil), s.header...) }

// Len returns the number of shards.
func (s *Set) Len() int { return len(s.sources) }

// Numbers returns the shard numbers in ascending order.
func (s *Set) Numbers() []int {
	nums := make([]int, 0, len(s.sources))
	for n := range s.sources {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Source returns the shard with number n, or nil.
func (s *Set) Source(n int) *Source { return s.sources[n] }

// Close closes every shard.
func (s *Set) Close() error {
	var err error
	for _, n := range s.Numbers() {
		err = multierr.Append(err, s.sources[n].Close())
	}
	return err
}

// mapRow is the Mapper handed to every shard's transformer. It is only
// called during iteration, after the merged header has been settled.
func (s *Set) mapRow(e transform.Extractor) ([]string, error) {
	return s.project(e)
}

// mergeHeaders settles the merged header from the shard headers in shard
// order, keeping first-seen column order.
func (s *Set) mergeHeaders(union bool, log *zap.Logger) error {
	seen := make(map[string]struct{})
	var first *Source
	for _, n := range s.Numbers() {
		src := s.sources[n]
		if first == nil {
			first = src
		} else if !sameColumns(first.Header, src.Header) {
			if !union {
				return fmt.Errorf("%w: %s has %q, %s has %q", ErrHeaderMismatch, first.Path, first.Header, src.Path, src.Header)
			}
			log.Warn("shard headers differ; missing columns will be empty",
				zap.String("shard", src.Path),
				zap.Strings("header", src.Header))
		}
		for _, col := range src.Header {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			s.header = append(s.header, col)
		}
	}
	s.project = transform.Project(s.header, !union)
	return nil
}

// Discover finds every shard of base next to it, opens each as a row
// source and settles the merged header. The caller owns the returned Set
// and must Close it. On error, every shard opened so far is closed.
func Discover(ctx context.Context, base string, opts DiscoverOptions) (*Set, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	path, err := opener.Path(base)
	if err != nil {
		return nil, err
	}

	pattern := DiscoveryPattern(path)
	ops, err := opener.Glob(pattern)
	if err != nil {
		if errors.Is(err, opener.ErrNoMatch) {
			return nil, fmt.Errorf("%w: %s", ErrNoShardsFound, pattern)
		}
		return nil, err
	}

	type candidate struct {
		n  int
		op opener.Opener
	}
	var found []candidate
	for _, op := range ops {
		b, n, ok := Decompose(op.Name())
		if !ok || b != path {
			log.Debug("skipping non-shard file", zap.String("path", op.Name()))
			continue
		}
		found = append(found, candidate{n: n, op: op})
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoShardsFound, pattern)
	}
	slices.SortStableFunc(found, func(a, b candidate) int { return a.n - b.n })

	set := NewSet(path)
	dec := transform.NewCSVDecoder(transform.CSVDecoderOptions{Comma: opts.Comma})
	tr := transform.NewDecodeMapTransform[[]string](dec)
	for _, c := range found {
		rows, err := tr.Transform(ctx, connector.NewStream(ctx, c.op), set.mapRow)
		if err != nil {
			err = headerError(ctx, c.op.Name(), err)
			return nil, multierr.Append(fmt.Errorf("open shard %03d: %w", c.n, err), set.Close())
		}
		src := &Source{Number: c.n, Path: c.op.Name(), Header: rows.Header(), rows: rows}
		if err := set.Add(src); err != nil {
			return nil, multierr.Combine(err, src.Close(), set.Close())
		}
		log.Debug("discovered shard", zap.String("path", src.Path), zap.Int("number", c.n))
	}

	if err := set.mergeHeaders(opts.UnionHeaders, log); err != nil {
		return nil, multierr.Append(err, set.Close())
	}
	return set, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
