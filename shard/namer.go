// Package shard splits a CSV file into numbered shard files of bounded row
// count and merges them back.
//
// A source "data.csv" produces "data.001.csv", "data.002.csv", ... Each
// shard is a complete CSV file with its own copy of the header. Merge finds
// the shards again by name, so there is no manifest.
package shard

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// MaxShardNumber is the largest shard number that keeps the fixed
// three-digit width discovery relies on.
const MaxShardNumber = 999

// shardNamePatterns are the two readings of "<stem>.<NNN><ext>": with an
// extension, then without one. Both are needed because a three-digit
// extension looks like a shard number ("data.001.123" is shard 1 of
// "data.123"). Stems are greedy so dotted stems ("report.2024") keep their
// dots.
var shardNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*)\.(\d{3})(\.[^.]*)$`),
	regexp.MustCompile(`^(.*)\.(\d{3})()$`),
}

// SplitExt splits path at the extension of its last element. Leading dots
// of the file name do not start an extension, so ".env" has none, and a
// dot in a directory name never counts.
func SplitExt(path string) (stem, ext string) {
	dir, file := filepath.Split(path)
	name := strings.TrimLeft(file, ".")
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return path, ""
	}
	i += len(file) - len(name)
	return dir + file[:i], file[i:]
}

// Compose returns the file name of shard n of base: the shard number,
// zero-padded to three digits, goes before the extension.
//
//	Compose("out/data.csv", 7) == "out/data.007.csv"
//
// Numbers above MaxShardNumber still format, but with more digits, and
// will not be found by discovery.
func Compose(base string, n int) string {
	stem, ext := SplitExt(base)
	return fmt.Sprintf("%s.%03d%s", stem, n, ext)
}

// Decompose recovers the base name and shard number from a shard file
// name. It reports false for names that Compose could not have produced,
// including shard number 000.
func Decompose(name string) (base string, n int, ok bool) {
	dir, file := filepath.Split(name)
	for _, re := range shardNamePatterns {
		m := re.FindStringSubmatch(file)
		if m == nil || m[1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil || n < 1 {
			continue
		}
		base = dir + m[1] + m[3]
		// "a.b.001" parses, but the shards of "a.b" are named "a.001.b".
		if Compose(base, n) == name {
			return base, n, true
		}
	}
	return "", 0, false
}

// DiscoveryPattern returns the glob that matches every possible shard of
// base: "<stem>.???<ext>". Glob metacharacters in base are escaped where
// the platform supports it.
func DiscoveryPattern(base string) string {
	stem, ext := SplitExt(base)
	return escapeGlob(stem) + ".???" + escapeGlob(ext)
}

func escapeGlob(s string) string {
	// filepath.Match has no escape character on Windows.
	if runtime.GOOS == "windows" {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
