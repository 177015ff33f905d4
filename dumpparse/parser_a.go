// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dumpparse

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/stackgazer/gostack"
)

var (
	reHeaderA     = regexp.MustCompile(`^goroutine profile: total (\d+)$`)
	reCountAtA    = regexp.MustCompile(`^(\d+) @(?: 0x[0-9a-fA-F]+)*$`)
	reCountStackA = regexp.MustCompile(`^(\d+) goroutines?(?: in stack)?:$`)
	reLabelA      = regexp.MustCompile(`^# labels: (\{.*\})$`)
	reFrameA      = regexp.MustCompile(`^#\t0x[0-9a-fA-F]+\t(\S+)\t(.+):(\d+)$`)
	reFuncOffsetA = regexp.MustCompile(`^(.*)\+0x[0-9a-fA-F]+$`)
)

// parseDialectA implements the aggregated profile grammar: an
// optional header, then records of a count line, zero or more label lines,
// and one or more frame lines, separated by blank lines.
func parseDialectA(lines []string) (*int, []Group, error) {
	var total *int
	var groups []Group
	sectionIndex := 0
	i := 0

	if i < len(lines) {
		if m := reHeaderA.FindStringSubmatch(strings.TrimRight(lines[i], "\r")); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, nil, newErr(DialectAggregated, sectionIndex, i+1, ErrBadCount, lines[i])
			}
			total = &n
			i++
			// Header may be followed by a blank line before the first record.
			if i < len(lines) && strings.TrimRight(lines[i], "\r") == "" {
				i++
				sectionIndex++
			}
		}
	}

	for i < len(lines) {
		line := strings.TrimRight(lines[i], "\r")
		if line == "" {
			i++
			sectionIndex++
			continue
		}

		count, ok := matchCountLine(line)
		if !ok {
			return nil, nil, newErr(DialectAggregated, sectionIndex, i+1, ErrBadCount, line)
		}
		i++

		var labels []string
		for i < len(lines) {
			l := strings.TrimRight(lines[i], "\r")
			m := reLabelA.FindStringSubmatch(l)
			if m == nil {
				break
			}
			parsed, err := decodeLabelsJSON(m[1])
			if err != nil {
				return nil, nil, newErr(DialectAggregated, sectionIndex, i+1, ErrBadLabelsJSON, l)
			}
			labels = parsed
			i++
		}

		var trace gostack.Trace
		framesSeen := 0
		for i < len(lines) {
			l := strings.TrimRight(lines[i], "\r")
			if l == "" {
				break
			}
			m := reFrameA.FindStringSubmatch(l)
			if m == nil {
				return nil, nil, newErr(DialectAggregated, sectionIndex, i+1, ErrBadFrame, l)
			}
			fn := m[1]
			if fo := reFuncOffsetA.FindStringSubmatch(fn); fo != nil {
				fn = fo[1]
			}
			lineNum, err := strconv.Atoi(m[3])
			if err != nil {
				return nil, nil, newErr(DialectAggregated, sectionIndex, i+1, ErrBadLineNumber, l)
			}
			trace = append(trace, gostack.Frame{Func: fn, File: m[2], Line: lineNum})
			framesSeen++
			i++
		}
		if framesSeen == 0 {
			return nil, nil, newErr(DialectAggregated, sectionIndex, i+1, ErrBadFrame, line)
		}

		groups = append(groups, Group{
			Fingerprint: gostack.Fingerprint(trace),
			Trace:       trace,
			Labels:      labels,
			Count:       count,
		})
	}

	return total, groups, nil
}

func matchCountLine(line string) (int, bool) {
	if m := reCountAtA.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	if m := reCountStackA.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	return 0, false
}

// decodeLabelsJSON decodes a "# labels: {...}" JSON object into an ordered
// list of "key=value" strings, sorted by key for determinism (JSON objects
// carry no inherent order).
func decodeLabelsJSON(obj string) ([]string, error) {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(obj), &m); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+stringifyLabel(m[k]))
	}
	return out, nil
}

func stringifyLabel(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
