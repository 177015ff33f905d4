// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package categorizer evaluates the category DSL: an ordered list
// of Skip/Match rules that pick a coarse category label from a stack
// trace's bottom-most non-skipped frame.
package categorizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/maruel/stackgazer/gostack"
)

// Kind is the tag of the category Rule sum type.
type Kind int

const (
	KindSkip Kind = iota
	KindMatch
)

// Rule is one entry of the ordered category-rule list.
type Rule struct {
	Kind Kind

	// Skip: literal prefix a frame's function must not have to remain a
	// candidate.
	SkipPrefix string

	// Match: expr has the shape "<regex>[#N][ -- comment]".
	Regexp  *regexp.Regexp
	Capture int // which capture group to take; 0 means the whole match.
}

// ParseMatch parses a Match rule's "<regex>[#N][ -- comment]" expression.
func ParseMatch(expr string) (Rule, error) {
	// Strip a trailing " -- comment" first, it's never part of the regex or
	// capture index.
	if idx := strings.Index(expr, " -- "); idx >= 0 {
		expr = expr[:idx]
	}
	capture := 1
	pattern := expr
	if idx := strings.LastIndex(expr, "#"); idx >= 0 {
		if n, err := strconv.Atoi(expr[idx+1:]); err == nil {
			capture = n
			pattern = expr[:idx]
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, err
	}
	return Rule{Kind: KindMatch, Regexp: re, Capture: capture}, nil
}

// Skip builds a Skip rule.
func Skip(prefix string) Rule { return Rule{Kind: KindSkip, SkipPrefix: prefix} }

// Categorize scans trace bottom-up (last frame first, the outermost caller)
// and picks the first frame not dropped by a Skip rule, then applies Match
// rules in order against that frame's function name.
func Categorize(trace gostack.Trace, rules []Rule) string {
	if len(trace) == 0 {
		return "unknown"
	}

	var skips, matches []Rule
	for _, r := range rules {
		switch r.Kind {
		case KindSkip:
			skips = append(skips, r)
		case KindMatch:
			matches = append(matches, r)
		}
	}

	isSkipped := func(fn string) bool {
		for _, r := range skips {
			if strings.HasPrefix(fn, r.SkipPrefix) {
				return true
			}
		}
		return false
	}

	for i := len(trace) - 1; i >= 0; i-- {
		fn := trace[i].Func
		if isSkipped(fn) {
			continue
		}
		return applyMatches(fn, matches)
	}
	// Every frame was skipped: fall back to the top-most frame's name,
	// without consulting the Match rules.
	return fallbackName(trace[0].Func)
}

func applyMatches(fn string, matches []Rule) string {
	for _, r := range matches {
		m := r.Regexp.FindStringSubmatch(fn)
		if m == nil {
			continue
		}
		if r.Capture == 0 {
			return m[0]
		}
		if r.Capture < len(m) {
			return m[r.Capture]
		}
	}
	return fallbackName(fn)
}

// fallbackName truncates fn at its first "/", or returns it whole if there
// is none.
func fallbackName(fn string) string {
	if idx := strings.Index(fn, "/"); idx >= 0 {
		return fn[:idx]
	}
	return fn
}
