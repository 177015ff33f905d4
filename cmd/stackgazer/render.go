// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"

	"github.com/maruel/stackgazer/collection"
)

// colorizer applies ansi styling when w is a real terminal, and is a no-op
// otherwise (piped output, redirected to a file).
type colorizer struct {
	enabled bool
}

func newColorizer(w io.Writer) colorizer {
	f, ok := w.(*os.File)
	if !ok {
		return colorizer{}
	}
	return colorizer{enabled: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

func (c colorizer) style(s, style string) string {
	if !c.enabled {
		return s
	}
	return ansi.Color(s, style)
}

// printTaxonomy renders every category, its stacks and their per-file
// goroutine counts, colorizing output when stdout is a terminal.
func printTaxonomy(w io.Writer, coll *collection.Collection) {
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	c := newColorizer(w)

	for _, cat := range coll.Categories() {
		if cat.Counts.Matches == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d/%d)\n", c.style(cat.Name, "yellow+b"), cat.Counts.Matches, cat.Counts.Total)
		for _, st := range cat.Stacks {
			if st.Counts.Matches == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s %s (%d/%d)\n", c.style(st.StackID, "black+h"), st.Name, st.Counts.Matches, st.Counts.Total)
			for _, sec := range st.Files {
				if sec.Counts.Matches == 0 {
					continue
				}
				fmt.Fprintf(w, "    %s: %d goroutine(s)\n", c.style(sec.FileName, "cyan"), sec.Counts.Matches)
			}
		}
	}
}
