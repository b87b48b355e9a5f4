package shard

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_WritesHeaderOnCreate(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "data.001.csv")

	b, err := NewBuffer(name, []string{"id", "name"}, BufferOptions{MaxRows: 2})
	require.NoError(t, err)
	defer b.Close()

	// The header is on disk before any row is written.
	assert.Equal(t, "id,name\n", readString(t, name))
	assert.Equal(t, name, b.Name())
	assert.Equal(t, 0, b.Rows())
}

func TestBuffer_CapacityIsMaxRows(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "data.001.csv")

	b, err := NewBuffer(name, []string{"id", "name"}, BufferOptions{MaxRows: 2})
	require.NoError(t, err)

	for _, row := range [][]string{{"1", "ada"}, {"2", "grace"}} {
		status, err := b.Write(row)
		require.NoError(t, err)
		assert.Equal(t, Accepted, status)
	}

	status, err := b.Write([]string{"3", "edsger"})
	require.NoError(t, err)
	assert.Equal(t, Full, status)
	assert.Equal(t, 2, b.Rows())

	// Full is sticky and has no side effect.
	status, err = b.Write([]string{"4", "barbara"})
	require.NoError(t, err)
	assert.Equal(t, Full, status)

	require.NoError(t, b.Close())
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "ada"}, {"2", "grace"}}, readCSV(t, name))
}

func TestBuffer_Comma(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "data.001.tsv")

	b, err := NewBuffer(name, []string{"id", "note"}, BufferOptions{MaxRows: 1, Comma: '\t'})
	require.NoError(t, err)
	_, err = b.Write([]string{"1", "a,b"})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	assert.Equal(t, "id\tnote\n1\ta,b\n", readString(t, name))
}

func TestBuffer_InvalidCapacity(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []int{0, -1} {
		_, err := NewBuffer(filepath.Join(dir, "x.001.csv"), []string{"a"}, BufferOptions{MaxRows: n})
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	}
	assert.Empty(t, listDir(t, dir))
}

func TestBuffer_UnwritableDestination(t *testing.T) {
	name := filepath.Join(t.TempDir(), "missing", "data.001.csv")
	_, err := NewBuffer(name, []string{"a"}, BufferOptions{MaxRows: 1})
	assert.ErrorIs(t, err, ErrDestinationUnwritable)
}

func TestBuffer_ColumnCount(t *testing.T) {
	b, err := NewBuffer(filepath.Join(t.TempDir(), "x.001.csv"), []string{"a", "b"}, BufferOptions{MaxRows: 5})
	require.NoError(t, err)
	defer b.Close()

	_, err = b.Write([]string{"only"})
	assert.ErrorIs(t, err, ErrColumnCount)
	assert.Equal(t, 0, b.Rows())
}

func TestBuffer_CloseIsIdempotent(t *testing.T) {
	b, err := NewBuffer(filepath.Join(t.TempDir(), "x.001.csv"), []string{"a"}, BufferOptions{MaxRows: 5})
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err = b.Write([]string{"1"})
	assert.ErrorIs(t, err, ErrBufferClosed)
}

func TestWriteStatus_String(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "full", Full.String())
	assert.Equal(t, "WriteStatus(7)", WriteStatus(7).String())
}
