// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package naming evaluates the ordered rule DSL that turns a stack trace
// into a human-readable stack name.
package naming

import (
	"regexp"
	"strings"

	"github.com/maruel/stackgazer/gostack"
)

// patternKind distinguishes the three forms a rule's match pattern can
// take: a literal prefix, a regular expression, or the "stdlib" sentinel
// which is only meaningful as a Fold/Find rule's While clause.
type patternKind int

const (
	patternLiteral patternKind = iota
	patternRegexp
	patternStdlib
)

// Pattern is a Skip/Fold/Find match expression or a Fold/Find "while"
// clause.
type Pattern struct {
	kind    patternKind
	literal string
	re      *regexp.Regexp
}

// Literal builds a prefix-match pattern.
func Literal(prefix string) Pattern { return Pattern{kind: patternLiteral, literal: prefix} }

// Regex builds a regular-expression pattern.
func Regex(re *regexp.Regexp) Pattern { return Pattern{kind: patternRegexp, re: re} }

// StdlibSentinel builds the "stdlib" sentinel, valid only as a while clause:
// it matches any frame whose function is a Go standard library symbol.
func StdlibSentinel() Pattern { return Pattern{kind: patternStdlib} }

// Matches reports whether fn, a fully qualified function name, satisfies
// the pattern.
func (p Pattern) Matches(fn string) bool {
	switch p.kind {
	case patternLiteral:
		return strings.HasPrefix(fn, p.literal)
	case patternRegexp:
		return p.re != nil && p.re.MatchString(fn)
	case patternStdlib:
		return gostack.IsStdlib(fn)
	default:
		return false
	}
}

// IsZero reports whether the pattern was never set (a nil while-clause).
func (p Pattern) IsZero() bool {
	return p.kind == patternLiteral && p.literal == "" && p.re == nil
}

// TrimSpec is a single transform applied to a function name in Trim step 3:
// either stripping a literal prefix, or a sed-style substitution of the
// form s/pattern/replacement/ or s|pattern|replacement|flags.
type TrimSpec struct {
	prefix      string
	isSub       bool
	re          *regexp.Regexp
	replacement string
	global      bool
}

// TrimPrefix builds a Trim rule that strips a literal prefix.
func TrimPrefix(prefix string) TrimSpec { return TrimSpec{prefix: prefix} }

// ParseSubstitution parses a "s/.../.../ " or "s|...|...|flags" literal into
// a substitution TrimSpec. The delimiter is whatever character follows the
// leading "s"; "i" in flags makes the pattern case-insensitive and "g"
// replaces every occurrence instead of only the first.
func ParseSubstitution(lit string) (TrimSpec, bool) {
	if len(lit) < 2 || lit[0] != 's' {
		return TrimSpec{}, false
	}
	// Any character after the leading "s" works as the delimiter.
	delim := lit[1]
	rest := lit[2:]
	parts := splitUnescaped(rest, delim)
	if len(parts) < 2 {
		return TrimSpec{}, false
	}
	pattern := parts[0]
	replacement := parts[1]
	flags := ""
	if len(parts) > 2 {
		flags = parts[2]
	}
	caseInsensitive := strings.Contains(flags, "i")
	global := strings.Contains(flags, "g")
	reSrc := pattern
	if caseInsensitive {
		reSrc = "(?i)" + reSrc
	}
	re, err := regexp.Compile(reSrc)
	if err != nil {
		return TrimSpec{}, false
	}
	return TrimSpec{isSub: true, re: re, replacement: replacement, global: global}, true
}

// splitUnescaped splits s on delim, ignoring a delim preceded by a
// backslash.
func splitUnescaped(s string, delim byte) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == delim {
			cur.WriteByte(delim)
			i++
			continue
		}
		if s[i] == delim {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	parts = append(parts, cur.String())
	return parts
}

// Applies reports whether this TrimSpec would change fn.
func (t TrimSpec) Applies(fn string) bool {
	if t.isSub {
		return t.re != nil && t.re.MatchString(fn)
	}
	return strings.HasPrefix(fn, t.prefix)
}

// Apply runs the trim spec against fn, returning the transformed name. If
// the spec doesn't apply (prefix not present, regexp doesn't match), fn is
// returned unchanged.
func (t TrimSpec) Apply(fn string) string {
	if t.isSub {
		if t.re == nil {
			return fn
		}
		if t.global {
			if !t.re.MatchString(fn) {
				return fn
			}
			return t.re.ReplaceAllString(fn, t.replacement)
		}
		loc := t.re.FindStringSubmatchIndex(fn)
		if loc == nil {
			return fn
		}
		expanded := t.re.ExpandString(nil, t.replacement, fn, loc)
		return fn[:loc[0]] + string(expanded) + fn[loc[1]:]
	}
	if strings.HasPrefix(fn, t.prefix) {
		return fn[len(t.prefix):]
	}
	return fn
}
