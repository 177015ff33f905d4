// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dumpparse

import "strings"

const dialectAHeaderPrefix = "goroutine profile:"

// Parse recognizes the dialect of data, tokenizes it, and extracts
// goroutines, creators, labels and frames into a ParsedFile.
//
// Parsing is atomic: on any ParseError the returned ParsedFile is nil.
func Parse(data []byte, originalName string, patterns []NamePattern) (*ParsedFile, error) {
	text := string(data)
	lines := splitLines(text)

	dialect := detectDialect(lines)

	var total *int
	var groups []Group
	var err error
	switch dialect {
	case DialectAggregated:
		total, groups, err = parseDialectA(lines)
	case DialectPerGoroutine:
		groups, err = parseDialectB(lines)
	}
	if err != nil {
		return nil, err
	}

	return &ParsedFile{
		OriginalName:    originalName,
		ExtractedName:   extractName(lines, patterns),
		TotalGoroutines: total,
		Dialect:         dialect,
		Groups:          groups,
	}, nil
}

// detectDialect inspects the first non-empty line: Dialect-B dumps begin
// with a "goroutine N [state]" header; anything else is treated as
// Dialect-A (which tolerates an optional "goroutine profile: total N"
// header of its own). Anything header-shaped but malformed still routes to
// Dialect-B so its parser can report the precise error.
func detectDialect(lines []string) Dialect {
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "goroutine ") && !strings.HasPrefix(t, dialectAHeaderPrefix) && strings.Contains(t, "[") {
			return DialectPerGoroutine
		}
		return DialectAggregated
	}
	return DialectAggregated
}

// splitLines splits text on both LF and CRLF line endings without losing
// a trailing unterminated line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
