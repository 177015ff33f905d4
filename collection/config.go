// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package collection

import (
	"regexp"

	"github.com/maruel/stackgazer/categorizer"
	"github.com/maruel/stackgazer/dumpparse"
	"github.com/maruel/stackgazer/naming"
)

// PrefixTrim is one entry of an ordered functionPrefixTrims /
// filePrefixTrims list: the first matching anchored regex wins per frame.
type PrefixTrim struct {
	Regexp      *regexp.Regexp
	Replacement string
}

// Config is the effective configuration consumed by the core:
// everything UpdateSettings swaps in one shot. NameExtractionPatterns and
// ArchivePathPattern are consumed at parse/enumeration time by the caller,
// not by the collection itself; they ride along here so one record carries
// the whole effective configuration.
type Config struct {
	FunctionPrefixTrims    []PrefixTrim
	FilePrefixTrims        []PrefixTrim
	NameRules              []naming.Rule
	CategoryRules          []categorizer.Rule
	NameExtractionPatterns []dumpparse.NamePattern
	ArchivePathPattern     *regexp.Regexp
}

// applyPrefixTrims runs the first matching trim against s, or returns s
// unchanged if none match. Only the matched span is replaced; the rest of
// s is kept, so an anchored pattern with an empty replacement strips a
// prefix rather than erasing the whole name.
func applyPrefixTrims(s string, trims []PrefixTrim) string {
	for _, t := range trims {
		if loc := t.Regexp.FindStringSubmatchIndex(s); loc != nil {
			expanded := t.Regexp.ExpandString(nil, t.Replacement, s, loc)
			return s[:loc[0]] + string(expanded) + s[loc[1]:]
		}
	}
	return s
}

// Default returns the built-in rule set: it skips the runtime scheduler's
// own frames when naming and categorizing, folds the most common blocking
// primitives to short names, and buckets everything else by its top-level
// import path segment.
func Default() Config {
	return Config{
		NameRules: []naming.Rule{
			naming.Skip(naming.Literal("runtime.goexit")),
			naming.Skip(naming.Literal("runtime.gopark")),
			naming.Fold(naming.Literal("sync.(*WaitGroup).Wait"), "waitgroup", naming.StdlibSentinel()),
			naming.Fold(naming.Literal("sync.(*Mutex).Lock"), "mutex", naming.StdlibSentinel()),
			naming.Fold(naming.Literal("net/http.(*Server).Serve"), "http.Serve", naming.Pattern{}),
		},
		CategoryRules: []categorizer.Rule{
			categorizer.Skip("runtime."),
			categorizer.Skip("testing."),
		},
	}
}
