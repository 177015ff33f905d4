// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dumpparse

import "github.com/maruel/stackgazer/gostack"

// ParsedGoroutine is one goroutine record found in a per-goroutine dialect
// dump. Aggregated-dialect records never populate this: the whole record is
// represented by its Group, with no individual goroutine identities.
type ParsedGoroutine struct {
	ID          int
	CreatorID   int
	HasCreator  bool
	HeaderState string
	WaitMinutes int
}

// Group is a set of goroutines sharing one (fingerprint, state) pair within
// a single parsed file.
type Group struct {
	Fingerprint string
	Trace       gostack.Trace
	Labels      []string
	Count       int
	Goroutines  []ParsedGoroutine
}

// ParsedFile is the parser's output: the file's own display-name hint and
// the groups discovered in it, ready to be merged into a ProfileCollection.
type ParsedFile struct {
	OriginalName    string
	ExtractedName   string
	TotalGoroutines *int
	Dialect         Dialect
	Groups          []Group
}
