// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package naming

// Kind is the tag of the NameRule sum type, dispatched on explicitly rather
// than through a polymorphic method table (per the "dynamic rule variants"
// design note).
type Kind int

const (
	KindSkip Kind = iota
	KindTrim
	KindFold
	KindFind
)

// Rule is one entry of the ordered name-rule list. Only the fields
// relevant to Kind are populated; the rest are the type's zero value.
type Rule struct {
	Kind Kind

	// Skip, Fold, Find.
	Pattern Pattern
	// Fold, Find.
	To    string
	While Pattern
	// Trim.
	Trim TrimSpec
}

// Skip builds a Skip rule: frames matching pattern are dropped entirely.
func Skip(pattern Pattern) Rule { return Rule{Kind: KindSkip, Pattern: pattern} }

// Trim builds a Trim rule: a matching function name is prefix-stripped or
// run through the substitution.
func Trim(spec TrimSpec) Rule { return Rule{Kind: KindTrim, Trim: spec} }

// Fold builds a Fold rule: a match on pattern collapses the frame (and any
// subsequent frames matched by while) into the single name "to".
func Fold(pattern Pattern, to string, while Pattern) Rule {
	return Rule{Kind: KindFold, Pattern: pattern, To: to, While: while}
}

// Find builds a Find rule: pattern is looked up among frames ahead of the
// current one; the furthest match wins and contributes "to" to the name.
func Find(pattern Pattern, to string, while Pattern) Rule {
	return Rule{Kind: KindFind, Pattern: pattern, To: to, While: while}
}
