// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package collection

import "sort"

// FileStatistics summarizes one loaded file's contribution: total
// goroutines and how many of them the active filter matches.
type FileStatistics struct {
	Name       string
	Goroutines int
	Matching   int
	Stacks     int
}

// StackStatistics summarizes a single UniqueStack: total goroutines and
// how many of them the active filter matches.
type StackStatistics struct {
	StackID    string
	Name       string
	Category   string
	Goroutines int
	Matching   int
	Files      int
}

// GetFileNames returns loaded file display names, sorted.
func (c *Collection) GetFileNames() []string {
	names := c.FileNames()
	sort.Strings(names)
	return names
}

// GetCategoryForGoroutine returns the category the given goroutine's stack
// was filed under, if the goroutine is known.
func (c *Collection) GetCategoryForGoroutine(id string) (*Category, bool) {
	g, ok := c.goroutineByID[id]
	if !ok || g.stack == nil {
		return nil, false
	}
	return g.stack.category, true
}

// GetStackStatistics summarizes every stack currently in the taxonomy.
func (c *Collection) GetStackStatistics() []StackStatistics {
	var out []StackStatistics
	for _, cat := range c.categories {
		for _, st := range cat.Stacks {
			out = append(out, StackStatistics{
				StackID:    st.StackID,
				Name:       st.Name,
				Category:   cat.Name,
				Goroutines: st.Counts.Total,
				Matching:   st.Counts.Matches,
				Files:      len(st.Files),
			})
		}
	}
	return out
}

// GetFileStatistics summarizes every loaded file's contribution to the
// taxonomy.
func (c *Collection) GetFileStatistics() []FileStatistics {
	byFile := map[string]*FileStatistics{}
	var order []string
	for _, name := range c.FileNames() {
		byFile[name] = &FileStatistics{Name: name}
		order = append(order, name)
	}
	for _, cat := range c.categories {
		for _, st := range cat.Stacks {
			for _, sec := range st.Files {
				stat, ok := byFile[sec.FileName]
				if !ok {
					stat = &FileStatistics{Name: sec.FileName}
					byFile[sec.FileName] = stat
					order = append(order, sec.FileName)
				}
				stat.Stacks++
				stat.Goroutines += sec.Counts.Total
				stat.Matching += sec.Counts.Matches
			}
		}
	}
	out := make([]FileStatistics, 0, len(order))
	for _, name := range order {
		out = append(out, *byFile[name])
	}
	return out
}
