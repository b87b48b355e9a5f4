package connector

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/carlodf/csvshard/opener"
)

// chunkSize is the copy buffer of the pump.
const chunkSize = 32 * 1024

type stream struct {
	name   string
	pr     *io.PipeReader
	offset atomic.Int64
}

// NewStream opens op in a goroutine and pumps its bytes into the returned
// stream.
//
// Open and read failures reach the reader wrapped as "open <name>: ..." and
// "read <name>: ...", with the cause kept for errors.Is. Bytes read before
// a failure are delivered first. The goroutine returns once the source is
// drained, it fails, ctx is done, or the stream is closed, and the source
// is closed in every case.
func NewStream(ctx context.Context, op opener.Opener) SrcAwareStreamer {
	pr, pw := io.Pipe()
	s := &stream{name: op.Name(), pr: pr}
	go func() {
		_ = pw.CloseWithError(s.pump(ctx, op, pw))
	}()
	return s
}

func (s *stream) Read(p []byte) (int, error) { return s.pr.Read(p) }

// Close stops the pump. Reads after Close fail with io.ErrClosedPipe.
func (s *stream) Close() error { return s.pr.Close() }

// Current is safe to call while another goroutine reads.
func (s *stream) Current() SrcMeta {
	return SrcMeta{Name: s.name, ByteOffset: s.offset.Load()}
}

func (s *stream) pump(ctx context.Context, op opener.Opener, w io.Writer) error {
	rc, err := op.Open(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.name, err)
	}
	defer rc.Close()

	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := rc.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return err
			}
			s.offset.Add(int64(n))
		}
		switch {
		case rerr == io.EOF:
			return nil
		case rerr != nil:
			return fmt.Errorf("read %s: %w", s.name, rerr)
		}
	}
}
