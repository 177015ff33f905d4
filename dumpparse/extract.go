// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dumpparse

import (
	"regexp"
	"strconv"
	"strings"
)

// NamePattern is one entry of the nameExtractionPatterns configuration
// list: a regex tried against every input line, with a replacement template
// used to build the extracted file name on the first line that matches.
type NamePattern struct {
	Regexp      *regexp.Regexp
	Replacement string
}

var dollarCapture = regexp.MustCompile(`\$(\d+)`)

// extractName scans the input line by line, trying the patterns in order
// on each; the first pattern hit on the first matching line wins.
// Replacement supports $N capture interpolation; a "hex:" prefix
// reinterprets each interpolated capture as a base-16 integer before
// substitution.
func extractName(lines []string, patterns []NamePattern) string {
	for _, line := range lines {
		for _, p := range patterns {
			m := p.Regexp.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			return applyReplacement(m, p.Replacement)
		}
	}
	return ""
}

func applyReplacement(match []string, replacement string) string {
	hexMode := false
	if strings.HasPrefix(replacement, "hex:") {
		hexMode = true
		replacement = replacement[len("hex:"):]
	}
	return dollarCapture.ReplaceAllStringFunc(replacement, func(tok string) string {
		n, err := strconv.Atoi(tok[1:])
		if err != nil || n >= len(match) {
			return tok
		}
		capture := match[n]
		if hexMode {
			v, err := strconv.ParseInt(capture, 16, 64)
			if err != nil {
				return capture
			}
			return strconv.FormatInt(v, 10)
		}
		return capture
	})
}
