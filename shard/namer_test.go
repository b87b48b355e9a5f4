package shard

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitExt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, stem, ext string
	}{
		{"data.csv", "data", ".csv"},
		{"data", "data", ""},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{".env", ".env", ""},
		{"..hidden.csv", "..hidden", ".csv"},
		{"data.", "data", "."},
		{filepath.FromSlash("dir.d/file"), filepath.FromSlash("dir.d/file"), ""},
		{filepath.FromSlash("dir.d/file.csv"), filepath.FromSlash("dir.d/file"), ".csv"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			stem, ext := SplitExt(tc.in)
			assert.Equal(t, tc.stem, stem)
			assert.Equal(t, tc.ext, ext)
		})
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base string
		n    int
		want string
	}{
		{"data.csv", 1, "data.001.csv"},
		{"data.csv", 42, "data.042.csv"},
		{"data.csv", 999, "data.999.csv"},
		{"data", 12, "data.012"},
		{".env", 3, ".env.003"},
		{"archive.tar.gz", 2, "archive.tar.002.gz"},
		{filepath.FromSlash("out/data.csv"), 7, filepath.FromSlash("out/data.007.csv")},
		// Past three digits the name widens and discovery no longer matches it.
		{"data.csv", 1000, "data.1000.csv"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Compose(tc.base, tc.n), "Compose(%q, %d)", tc.base, tc.n)
	}
}

func TestDecompose(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		base   string
		n      int
		wantOK bool
	}{
		{"data.001.csv", "data.csv", 1, true},
		{"data.010.csv", "data.csv", 10, true},
		{"data.001", "data", 1, true},
		{"data.001.123", "data.123", 1, true},
		{"data.123.001", "data.001", 123, true},
		{"report.2024.003.csv", "report.2024.csv", 3, true},
		{filepath.FromSlash("out/data.123.csv"), filepath.FromSlash("out/data.csv"), 123, true},
		{"data.csv", "", 0, false},
		{"data.abc.csv", "", 0, false},
		{"data.000.csv", "", 0, false},
		{"data.0001.csv", "", 0, false},
		{"data.01.csv", "", 0, false},
		{"data.csv.bak", "", 0, false},
		{".001.csv", "", 0, false},
		// Shards of "a.b" are "a.001.b", so this is not one of them.
		{"a.b.001", "", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			base, n, ok := Decompose(tc.name)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.base, base)
			assert.Equal(t, tc.n, n)
		})
	}
}

func TestDecomposeComposeRoundTrip(t *testing.T) {
	t.Parallel()

	bases := []string{
		"data.csv",
		"data",
		"my file.tsv",
		"report.2024.csv",
		".env",
		"archive.tar.gz",
		"data.123",
		"log.001",
		filepath.FromSlash("nested/dir.d/rows.csv"),
	}
	for _, base := range bases {
		for n := 1; n <= MaxShardNumber; n++ {
			got, gotN, ok := Decompose(Compose(base, n))
			if !assert.True(t, ok, "Decompose(Compose(%q, %d))", base, n) {
				return
			}
			assert.Equal(t, base, got)
			assert.Equal(t, n, gotN)
		}
	}
}

func TestDiscoveryPattern(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "data.???.csv", DiscoveryPattern("data.csv"))
	assert.Equal(t, "data.???", DiscoveryPattern("data"))
	assert.Equal(t, filepath.FromSlash("out/data.???.csv"), DiscoveryPattern(filepath.FromSlash("out/data.csv")))

	matched, err := filepath.Match(DiscoveryPattern("data.csv"), "data.002.csv")
	assert.NoError(t, err)
	assert.True(t, matched)
	matched, _ = filepath.Match(DiscoveryPattern("data.csv"), "data.csv.bak")
	assert.False(t, matched)

	if runtime.GOOS != "windows" {
		p := DiscoveryPattern("we[ird]*.csv")
		assert.Equal(t, `we\[ird]\*.???.csv`, p)
		matched, err := filepath.Match(p, "we[ird]*.001.csv")
		assert.NoError(t, err)
		assert.True(t, matched)
		matched, _ = filepath.Match(p, "wei.001.csv")
		assert.False(t, matched)
	}
}
