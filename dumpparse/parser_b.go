// Copyright 2015 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dumpparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/maruel/stackgazer/gostack"
)

var (
	reHeaderB    = regexp.MustCompile(`^goroutine (\d+) \[([^\]]*)\]:$`)
	reCreatedByB = regexp.MustCompile(`^created by (.+) in goroutine (\d+)$`)
	reMinutesB   = regexp.MustCompile(`^(\d+) minutes?$`)
)

// recordB is one in-progress per-goroutine record during scanning.
type recordB struct {
	id          int
	state       string
	waitMinutes int
	trace       gostack.Trace
	hasCreator  bool
	creatorID   int
}

// parseDialectB implements the per-goroutine dump grammar:
// a record per goroutine, frame pairs (func line + TAB-indented file:line),
// an optional trailing "created by" line with its own optional location.
func parseDialectB(lines []string) ([]Group, error) {
	var records []recordB
	var cur *recordB
	sectionIndex := 0
	// expectFile indicates the previous line was a function line and the
	// next line must be its file:line; expectCreatedFile is the same for a
	// created-by line, whose location is optional.
	expectFile := false
	expectCreatedFile := false

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")

		if line == "" {
			cur = nil
			expectFile = false
			expectCreatedFile = false
			sectionIndex++
			continue
		}

		if cur == nil {
			m := reHeaderB.FindStringSubmatch(line)
			if m == nil {
				return nil, newErr(DialectPerGoroutine, sectionIndex, lineNo, ErrBadHeader, line)
			}
			id, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, newErr(DialectPerGoroutine, sectionIndex, lineNo, ErrBadHeader, line)
			}
			state, wait := parseHeaderStateB(m[2])
			if wait < 0 {
				return nil, newErr(DialectPerGoroutine, sectionIndex, lineNo, ErrBadWait, line)
			}
			records = append(records, recordB{id: id, state: state, waitMinutes: wait})
			cur = &records[len(records)-1]
			continue
		}

		if expectCreatedFile {
			file, lno, ok := parseFrameFile(line)
			if !ok {
				// The trailing location is optional; if this isn't one, it must
				// be the blank line already handled above, so treat any other
				// content here as a malformed frame.
				return nil, newErr(DialectPerGoroutine, sectionIndex, lineNo, ErrBadFrame, line)
			}
			cur.trace[len(cur.trace)-1].File = file
			cur.trace[len(cur.trace)-1].Line = lno
			expectCreatedFile = false
			continue
		}

		if expectFile {
			file, lno, ok := parseFrameFile(line)
			if !ok {
				return nil, newErr(DialectPerGoroutine, sectionIndex, lineNo, ErrBadFrame, line)
			}
			cur.trace[len(cur.trace)-1].File = file
			cur.trace[len(cur.trace)-1].Line = lno
			expectFile = false
			continue
		}

		if m := reCreatedByB.FindStringSubmatch(line); m != nil {
			id, err := strconv.Atoi(m[2])
			if err != nil {
				return nil, newErr(DialectPerGoroutine, sectionIndex, lineNo, ErrBadHeader, line)
			}
			cur.hasCreator = true
			cur.creatorID = id
			// The creator's func isn't retained as a trace frame (only the
			// goroutine's own stack contributes to its fingerprint); but its
			// optional location line still needs to be consumed.
			cur.trace = append(cur.trace, gostack.Frame{})
			expectCreatedFile = true
			continue
		}

		fn, ok := parseFrameFunc(line)
		if !ok {
			return nil, newErr(DialectPerGoroutine, sectionIndex, lineNo, ErrBadFrame, line)
		}
		cur.trace = append(cur.trace, gostack.Frame{Func: fn})
		expectFile = true
	}

	// The "created by" frame placeholder was appended purely to receive its
	// location; it never contributes to the fingerprint of the goroutine's
	// own stack, so strip it back out now.
	for i := range records {
		if records[i].hasCreator && len(records[i].trace) > 0 {
			records[i].trace = records[i].trace[:len(records[i].trace)-1]
		}
	}

	return fuseDialectB(records), nil
}

// parseHeaderStateB splits "<state>[, N minutes]" into its parts. Returns
// wait < 0 on a malformed minutes suffix.
func parseHeaderStateB(s string) (string, int) {
	parts := strings.Split(s, ", ")
	state := parts[0]
	for _, p := range parts[1:] {
		if m := reMinutesB.FindStringSubmatch(p); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return state, -1
			}
			return state, n
		}
		if strings.HasSuffix(p, " minutes") || strings.HasSuffix(p, " minute") {
			// Minutes suffix present but the figure isn't a plain number.
			return state, -1
		}
		// Other suffixes (e.g. "locked to thread") don't carry a wait time.
	}
	return state, 0
}

var reFrameFuncB = regexp.MustCompile(`^(.+)\((.*)\)$`)
var reFrameFileB = regexp.MustCompile(`^\t(.+):(\d+)(?: \+0x[0-9a-fA-F]+)?$`)

// parseFrameFunc and parseFrameFile are the per-goroutine dialect's
// frame-pair sub-scanner: a function-call line followed by a TAB-indented
// file:line location. The aggregated dialect does not use them; its
// single-line frames are matched by reFrameA.
func parseFrameFunc(line string) (string, bool) {
	m := reFrameFuncB.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func parseFrameFile(line string) (string, int, bool) {
	m := reFrameFileB.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// fuseDialectB merges per-goroutine records sharing an identical
// (fingerprint, state) pair into a single Group.
func fuseDialectB(records []recordB) []Group {
	index := map[string]int{}
	var groups []Group
	for _, r := range records {
		fp := gostack.Fingerprint(r.trace)
		key := fp + "\x00" + r.state
		if i, ok := index[key]; ok {
			groups[i].Count++
			groups[i].Goroutines = append(groups[i].Goroutines, ParsedGoroutine{
				ID: r.id, CreatorID: r.creatorID, HasCreator: r.hasCreator,
				HeaderState: r.state, WaitMinutes: r.waitMinutes,
			})
			continue
		}
		index[key] = len(groups)
		groups = append(groups, Group{
			Fingerprint: fp,
			Trace:       r.trace,
			Labels:      []string{"state=" + r.state},
			Count:       1,
			Goroutines: []ParsedGoroutine{{
				ID: r.id, CreatorID: r.creatorID, HasCreator: r.hasCreator,
				HeaderState: r.state, WaitMinutes: r.waitMinutes,
			}},
		})
	}
	return groups
}
