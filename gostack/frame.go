// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gostack holds the canonical frame record and the stack
// fingerprinting scheme shared by the dump parser, the naming DSL and the
// categorizer.
package gostack

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Frame is one (function, file, line) triple in a stack trace.
//
// Frame is immutable once parsed: all three fields participate in equality
// and hashing, so a Frame is safe to use as a map key or to compare with ==.
type Frame struct {
	Func string
	File string
	Line int
}

// Trace is an ordered sequence of Frame in dump order: innermost call
// first, outermost caller last.
type Trace []Frame

// Fingerprint returns the stable content-address of a stack trace: the last
// 24 hex characters of the SHA-256 digest of the newline-joined
// "<func> <file>:<line>" sequence.
//
// Fingerprint is deterministic and produces the same value for structurally
// equal traces regardless of which dialect produced them.
func Fingerprint(trace Trace) string {
	sum := sha256.New()
	buf := make([]byte, 0, 128)
	for i, f := range trace {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, f.Func...)
		buf = append(buf, ' ')
		buf = append(buf, f.File...)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(f.Line), 10)
	}
	sum.Write(buf)
	digest := sum.Sum(nil)
	full := hex.EncodeToString(digest)
	const keep = 24
	if len(full) <= keep {
		return full
	}
	return full[len(full)-keep:]
}

// SearchableText is the lower-cased concatenation of each frame's function
// name and file:line, space-separated, used for free-text filtering.
func SearchableText(trace Trace) string {
	out := make([]byte, 0, 32*len(trace))
	for i, f := range trace {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, strings.ToLower(f.Func)...)
		out = append(out, ' ')
		out = append(out, strings.ToLower(f.File)...)
		out = append(out, ':')
		out = strconv.AppendInt(out, int64(f.Line), 10)
	}
	return string(out)
}

// IsStdlib reports whether a fully qualified function name refers to a Go
// standard library symbol, using the same heuristic as the naming DSL's
// "stdlib" sentinel: a name with no "/" is stdlib unless it starts with
// "main"; a name with a "/" is stdlib only if the segment before the first
// "/" contains no ".", since import paths that look like domains
// (e.g. "golang.org/x/sys") never do.
func IsStdlib(fn string) bool {
	slash := strings.IndexByte(fn, '/')
	if slash < 0 {
		return !strings.HasPrefix(fn, "main")
	}
	return !strings.Contains(fn[:slash], ".")
}
