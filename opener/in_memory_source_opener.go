package opener

import (
	"bytes"
	"context"
	"io"
)

// InMemorySource is an Opener over a byte slice. Writers built on it shard
// CSV data that never touched the disk, which is how the connector,
// transform and shard tests feed their inputs:
//
//	src := opener.InMemorySource{SourceName: "data.csv", Data: []byte("id\n1\n")}
//	w, err := shard.NewWriter(ctx, src, shard.WriterOptions{Base: "/tmp/data.csv"})
type InMemorySource struct {
	Data []byte
	// SourceName is reported by Name and shows up in SrcMeta and errors.
	SourceName string
}

// Open never fails. Every call reads Data from the start.
func (s InMemorySource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

func (s InMemorySource) Name() string { return s.SourceName }
