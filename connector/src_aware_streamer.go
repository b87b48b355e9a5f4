// Package connector streams the bytes of an opener.Opener through a pipe
// and reports how far into the source the stream has got.
package connector

import "io"

// SrcMeta is the position of a stream within its source.
type SrcMeta struct {
	// Name is the opener's Name, usually a file path.
	Name string
	// ByteOffset counts the bytes handed to the reader so far.
	ByteOffset int64
}

// SrcAwareStreamer is a byte stream that knows its source.
type SrcAwareStreamer interface {
	io.ReadCloser
	Current() SrcMeta
}
