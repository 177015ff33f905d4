// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package archive enumerates candidate dump files out of an opaque byte
// source (a zip, a tarball, a directory walk), filtered by path, without
// knowing anything about the container format itself.
package archive

import "regexp"

// Entry is one member of a Source: its path within the container and its
// raw bytes.
type Entry struct {
	Path string
	Data []byte
}

// Source enumerates the members of an archive. Extraction itself - zip,
// tar, plain directory - is out of scope; a Source is handed its entries
// already in memory.
type Source interface {
	// Entries returns every member of the archive, in whatever order the
	// underlying container yields them.
	Entries() ([]Entry, error)
}

// DefaultPathFilter matches the conventional dump file name: "stacks.txt"
// at any depth.
var DefaultPathFilter = regexp.MustCompile(`^(.*/)?stacks\.txt$`)

// Filter returns the subset of src's entries whose path matches filter. A
// nil filter matches everything.
func Filter(src Source, filter *regexp.Regexp) ([]Entry, error) {
	entries, err := src.Entries()
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return entries, nil
	}
	out := entries[:0:0]
	for _, e := range entries {
		if filter.MatchString(e.Path) {
			out = append(out, e)
		}
	}
	return out, nil
}

// SliceSource is an in-memory Source, useful for tests and for feeding the
// CLI files named directly on the command line.
type SliceSource struct {
	entries []Entry
}

// NewSliceSource builds a SliceSource from a fixed list of entries.
func NewSliceSource(entries []Entry) *SliceSource {
	return &SliceSource{entries: entries}
}

// Entries implements Source.
func (s *SliceSource) Entries() ([]Entry, error) {
	return s.entries, nil
}
