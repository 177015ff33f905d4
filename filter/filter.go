// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package filter parses and evaluates the whitespace-tokenized filter
// query language: zero or more "wait:" numeric predicates plus at
// most one free-text token.
package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Filter is a parsed query: an optional free-text substring, an optional
// wait-minutes predicate, and an optional forced goroutine id that always
// matches regardless of the rest of the query.
type Filter struct {
	Text    string
	HasText bool

	MinWait    int
	HasMinWait bool
	MaxWait    int
	HasMaxWait bool
	Exact      int
	HasExact   bool

	// ForcedGoroutine is never produced by Parse; callers set it when the
	// user navigates straight to one goroutine and it must stay visible.
	ForcedGoroutine string
}

// IsZero reports whether f matches everything (an empty query).
func (f Filter) IsZero() bool {
	return !f.HasText && !f.HasMinWait && !f.HasMaxWait && !f.HasExact && f.ForcedGoroutine == ""
}

// ParseError is returned by Parse for a malformed query. The previous
// filter stays in effect: a rejected query never clobbers collection state.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid filter token %q: %s", e.Token, e.Reason)
}

// Parse tokenizes s on whitespace. Each "wait:..." token contributes a
// numeric predicate; at most one other token is allowed, and becomes the
// free-text predicate.
//
// Predicate forms: "wait:N" (exact), "wait:>N" (min N+1), "wait:<N"
// (max N-1), "wait:N+" (min N), "wait:A-B" (inclusive range, A <= B).
// Duplicate bounds on the same side, combining exact with anything else,
// and bounds that leave the range empty are all rejected.
func Parse(s string) (Filter, error) {
	var f Filter
	lastWait := ""
	for _, tok := range strings.Fields(s) {
		if strings.HasPrefix(tok, "wait:") {
			if err := parseWaitToken(&f, tok); err != nil {
				return Filter{}, err
			}
			lastWait = tok
			continue
		}
		if f.HasText {
			return Filter{}, &ParseError{Token: tok, Reason: "only one free-text token is allowed"}
		}
		f.Text = tok
		f.HasText = true
	}
	if f.HasMinWait && f.HasMaxWait && f.MinWait > f.MaxWait {
		return Filter{}, &ParseError{Token: lastWait, Reason: "wait: bounds leave an empty range"}
	}
	return f, nil
}

func parseWaitToken(f *Filter, tok string) error {
	body := tok[len("wait:"):]
	if body == "" {
		return &ParseError{Token: tok, Reason: "missing value"}
	}

	switch {
	case body[0] == '>':
		n, err := parseNonNegative(body[1:])
		if err != nil {
			return &ParseError{Token: tok, Reason: err.Error()}
		}
		if f.HasMinWait || f.HasExact {
			return &ParseError{Token: tok, Reason: "conflicting wait: bounds"}
		}
		f.MinWait = n + 1
		f.HasMinWait = true
		return nil
	case body[0] == '<':
		n, err := parseNonNegative(body[1:])
		if err != nil {
			return &ParseError{Token: tok, Reason: err.Error()}
		}
		if f.HasMaxWait || f.HasExact {
			return &ParseError{Token: tok, Reason: "conflicting wait: bounds"}
		}
		if n == 0 {
			return &ParseError{Token: tok, Reason: "wait: bounds leave an empty range"}
		}
		f.MaxWait = n - 1
		f.HasMaxWait = true
		return nil
	case strings.HasSuffix(body, "+"):
		n, err := parseNonNegative(body[:len(body)-1])
		if err != nil {
			return &ParseError{Token: tok, Reason: err.Error()}
		}
		if f.HasMinWait || f.HasExact {
			return &ParseError{Token: tok, Reason: "conflicting wait: bounds"}
		}
		f.MinWait = n
		f.HasMinWait = true
		return nil
	default:
		if idx := strings.Index(body, "-"); idx > 0 {
			lo, err := parseNonNegative(body[:idx])
			if err != nil {
				return &ParseError{Token: tok, Reason: err.Error()}
			}
			hi, err := parseNonNegative(body[idx+1:])
			if err != nil {
				return &ParseError{Token: tok, Reason: err.Error()}
			}
			if lo > hi {
				return &ParseError{Token: tok, Reason: "range lower bound exceeds upper bound"}
			}
			if f.HasExact || f.HasMinWait || f.HasMaxWait {
				return &ParseError{Token: tok, Reason: "conflicting wait: bounds"}
			}
			f.MinWait, f.HasMinWait = lo, true
			f.MaxWait, f.HasMaxWait = hi, true
			return nil
		}
		n, err := parseNonNegative(body)
		if err != nil {
			return &ParseError{Token: tok, Reason: err.Error()}
		}
		if f.HasMinWait || f.HasMaxWait || f.HasExact {
			return &ParseError{Token: tok, Reason: "conflicting wait: bounds"}
		}
		f.Exact = n
		f.HasExact = true
		return nil
	}
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if n < 0 {
		return 0, fmt.Errorf("negative wait bound")
	}
	return n, nil
}

// MatchesWait reports whether waitMinutes satisfies f's numeric predicate.
// A filter with no wait predicate matches everything.
func (f Filter) MatchesWait(waitMinutes int) bool {
	if f.HasExact {
		return waitMinutes == f.Exact
	}
	if f.HasMinWait && waitMinutes < f.MinWait {
		return false
	}
	if f.HasMaxWait && waitMinutes > f.MaxWait {
		return false
	}
	return true
}

// MatchesText reports whether haystack contains f's free-text token,
// case-insensitively. A filter with no free-text token matches everything.
func (f Filter) MatchesText(haystack string) bool {
	if !f.HasText {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(f.Text))
}
