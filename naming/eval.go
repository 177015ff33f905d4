// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package naming

import "github.com/maruel/stackgazer/gostack"

// Evaluate produces a human-readable stack name from an ordered rule list
// and a frame sequence.
func Evaluate(trace gostack.Trace, rules []Rule) string {
	if len(trace) == 0 {
		return "empty"
	}

	var skips, trims, folds, finds []Rule
	for _, r := range rules {
		switch r.Kind {
		case KindSkip:
			skips = append(skips, r)
		case KindTrim:
			trims = append(trims, r)
		case KindFold:
			folds = append(folds, r)
		case KindFind:
			finds = append(finds, r)
		}
	}

	matchesSkip := func(fn string) bool {
		for _, r := range skips {
			if r.Pattern.Matches(fn) {
				return true
			}
		}
		return false
	}

	// consumeWhile advances past frames matched by while, silently skipping
	// any frame that a Skip rule would have dropped anyway.
	consumeWhile := func(i int, while Pattern) int {
		if while.IsZero() {
			return i
		}
		for i < len(trace) {
			if matchesSkip(trace[i].Func) {
				i++
				continue
			}
			if !while.Matches(trace[i].Func) {
				break
			}
			i++
		}
		return i
	}

	stackName := ""
	i := 0
	for {
		// Step 1: skip.
		for i < len(trace) && matchesSkip(trace[i].Func) {
			i++
		}
		if i >= len(trace) {
			break
		}

		// Step 2: fold.
		if r, ok := firstFoldMatch(folds, trace[i].Func); ok {
			stackName = combine(stackName, r.To)
			i++
			i = consumeWhile(i, r.While)
			continue
		}

		// Step 3: trim the current frame unconditionally and add it.
		trimmed := applyTrims(trims, trace[i].Func)
		stackName = combine(stackName, trimmed)

		// Step 4: find lookahead.
		if r, idx, ok := findLookahead(finds, trace, i+1); ok {
			stackName = combine(stackName, r.To)
			i = idx + 1
			i = consumeWhile(i, r.While)
			continue
		}

		// Step 5: no more rules fired.
		break
	}

	if stackName == "" {
		stackName = trace[len(trace)-1].Func
	}
	return stackName
}

func firstFoldMatch(folds []Rule, fn string) (Rule, bool) {
	for _, r := range folds {
		if r.Pattern.Matches(fn) {
			return r, true
		}
	}
	return Rule{}, false
}

func applyTrims(trims []Rule, fn string) string {
	out := fn
	for _, r := range trims {
		if r.Trim.Applies(out) {
			out = r.Trim.Apply(out)
		}
	}
	return out
}

// findLookahead scans trace[from:] for the frame matched by a Find rule
// whose match occurs at the largest index; ties keep the earlier rule in
// rule-list order.
func findLookahead(finds []Rule, trace gostack.Trace, from int) (Rule, int, bool) {
	bestIdx := -1
	var bestRule Rule
	for _, r := range finds {
		for j := from; j < len(trace); j++ {
			if r.Pattern.Matches(trace[j].Func) {
				if j > bestIdx {
					bestIdx = j
					bestRule = r
				}
				break
			}
		}
	}
	if bestIdx < 0 {
		return Rule{}, 0, false
	}
	return bestRule, bestIdx, true
}

// combine appends part onto the end of the growing stack name, joined by
// " → ", deduping if stackName already begins with part (the case where a
// Fold's "to" is reapplied after already being the sole content so far).
func combine(stackName, part string) string {
	if part == "" {
		return stackName
	}
	if stackName == "" {
		return part
	}
	if stackName == part || hasPrefixWord(stackName, part) {
		return stackName
	}
	return stackName + " → " + part
}

func hasPrefixWord(s, prefix string) bool {
	const sep = " → "
	return len(s) >= len(prefix)+len(sep) && s[:len(prefix)] == prefix && s[len(prefix):len(prefix)+len(sep)] == sep
}
