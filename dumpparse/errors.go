// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dumpparse

import "fmt"

// Dialect identifies which of the two textual goroutine-dump grammars a
// ParsedFile was read with.
type Dialect string

const (
	// DialectAggregated is the "N @ 0x... / N goroutines in stack:" format
	// produced by runtime/pprof's goroutine profile writer.
	DialectAggregated Dialect = "aggregated"
	// DialectPerGoroutine is the "goroutine N [state]:" format produced by
	// runtime.Stack or an unrecovered panic.
	DialectPerGoroutine Dialect = "per-goroutine"
)

// ErrorKind enumerates the malformed-input shapes the parser recognizes.
type ErrorKind string

const (
	ErrBadHeader     ErrorKind = "bad_header"
	ErrBadCount      ErrorKind = "bad_count"
	ErrBadWait       ErrorKind = "bad_wait"
	ErrBadLineNumber ErrorKind = "bad_line_number"
	ErrBadLabelsJSON ErrorKind = "bad_labels_json"
	ErrBadFrame      ErrorKind = "bad_frame"
)

// ParseError is returned when a dump cannot be parsed. It carries enough
// context (dialect, section, line) for a caller to point a user at the
// offending input.
type ParseError struct {
	Dialect      Dialect
	SectionIndex int
	LineNumber   int
	Kind         ErrorKind
	Snippet      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s at line %d (section %d): %q", e.Dialect, e.Kind, e.LineNumber, e.SectionIndex, e.Snippet)
}

func newErr(dialect Dialect, section, line int, kind ErrorKind, snippet string) *ParseError {
	return &ParseError{Dialect: dialect, SectionIndex: section, LineNumber: line, Kind: kind, Snippet: snippet}
}
