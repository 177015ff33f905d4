// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package collection

import "github.com/maruel/stackgazer/filter"

// SetFilter parses query and re-applies it hierarchically across the whole
// taxonomy. For a non-empty query the previous Matches value at every level
// becomes its PriorMatches, so callers can highlight what changed; an empty
// query resets every counter, PriorMatches included, to Total. On a parse error the
// previous filter stays in effect and the taxonomy is untouched.
func (c *Collection) SetFilter(query string) error {
	f, err := filter.Parse(query)
	if err != nil {
		return err
	}
	f.ForcedGoroutine = c.forcedGoroutine
	c.filter = query
	c.parsedFilter = f
	c.filterActive = !f.IsZero()
	c.applyFilter()
	return nil
}

// Filter returns the last successfully applied filter query.
func (c *Collection) Filter() string { return c.filter }

// SetForcedGoroutine marks one goroutine id as always matching, on top of
// whatever filter is active; an empty id clears the override. Used when the
// user jumps straight to a goroutine that the current filter would hide.
func (c *Collection) SetForcedGoroutine(id string) {
	c.forcedGoroutine = id
	c.parsedFilter.ForcedGoroutine = id
	c.filterActive = !c.parsedFilter.IsZero()
	c.applyFilter()
}

// ClearFilterChanges collapses PriorMatches into Matches at every level,
// so a subsequent render no longer needs to diff against the prior filter.
func (c *Collection) ClearFilterChanges() {
	for _, cat := range c.categories {
		cat.Counts.PriorMatches = cat.Counts.Matches
		for _, st := range cat.Stacks {
			st.Counts.PriorMatches = st.Counts.Matches
			for _, sec := range st.Files {
				sec.Counts.PriorMatches = sec.Counts.Matches
				for _, grp := range sec.Groups {
					grp.Counts.PriorMatches = grp.Counts.Matches
				}
			}
		}
	}
}

// recount resets every level's counters as if no filter were active:
// Matches, PriorMatches and FilterMatches all equal Total.
func (c *Collection) recount() {
	for _, cat := range c.categories {
		catTotal := 0
		for _, st := range cat.Stacks {
			stTotal := 0
			for _, sec := range st.Files {
				secTotal := 0
				for _, grp := range sec.Groups {
					n := len(grp.Goroutines)
					grp.Counts = Counts{Total: n, Matches: n, PriorMatches: n, FilterMatches: n}
					for _, g := range grp.Goroutines {
						g.Matches = true
					}
					secTotal += n
				}
				sec.Counts = Counts{Total: secTotal, Matches: secTotal, PriorMatches: secTotal, FilterMatches: secTotal}
				stTotal += secTotal
			}
			st.Counts = Counts{Total: stTotal, Matches: stTotal, PriorMatches: stTotal, FilterMatches: stTotal}
			catTotal += stTotal
		}
		cat.Counts = Counts{Total: catTotal, Matches: catTotal, PriorMatches: catTotal, FilterMatches: catTotal}
	}
}

// applyFilter recomputes Matches/FilterMatches top-down from the current
// parsedFilter, snapshotting the previous Matches as PriorMatches.
//
// A goroutine matches the filter proper when the free text hits its
// stack's searchable text, one of its group's labels, or its own id, and
// its wait time satisfies the wait: predicate; those matches feed both
// Matches and FilterMatches. Pins and the forced-goroutine override add to
// Matches only, so FilterMatches stays an honest count of what the filter
// itself selected.
func (c *Collection) applyFilter() {
	if !c.filterActive {
		c.recount()
		return
	}
	f := c.parsedFilter
	for _, cat := range c.categories {
		catPrior, catTotal, catMatches, catFilterMatches := cat.Counts.Matches, 0, 0, 0
		for _, st := range cat.Stacks {
			stPrior, stTotal, stMatches, stFilterMatches := st.Counts.Matches, 0, 0, 0
			stackText := f.MatchesText(st.SearchableText)
			for _, sec := range st.Files {
				secPrior, secTotal, secMatches, secFilterMatches := sec.Counts.Matches, 0, 0, 0
				for _, grp := range sec.Groups {
					grpPrior := grp.Counts.Matches
					labelHit := stackText || anyLabelMatches(f, grp.Labels)
					pinnedAncestor := cat.Pinned || st.Pinned || grp.Pinned
					total, matches, filterMatches := 0, 0, 0
					for _, g := range grp.Goroutines {
						raw := (labelHit || f.MatchesText(g.ID)) && f.MatchesWait(g.WaitMinutes)
						forced := f.ForcedGoroutine != "" && g.ID == f.ForcedGoroutine
						g.Matches = raw || forced || pinnedAncestor || g.Pinned
						total++
						if raw {
							filterMatches++
						}
						if g.Matches {
							matches++
						}
					}
					grp.Counts = Counts{Total: total, Matches: matches, PriorMatches: grpPrior, FilterMatches: filterMatches}
					secTotal += total
					secMatches += matches
					secFilterMatches += filterMatches
				}
				sec.Counts = Counts{Total: secTotal, Matches: secMatches, PriorMatches: secPrior, FilterMatches: secFilterMatches}
				stTotal += secTotal
				stMatches += secMatches
				stFilterMatches += secFilterMatches
			}
			st.Counts = Counts{Total: stTotal, Matches: stMatches, PriorMatches: stPrior, FilterMatches: stFilterMatches}
			catTotal += stTotal
			catMatches += stMatches
			catFilterMatches += stFilterMatches
		}
		cat.Counts = Counts{Total: catTotal, Matches: catMatches, PriorMatches: catPrior, FilterMatches: catFilterMatches}
	}
}

// anyLabelMatches reports whether the free-text token hits one of a
// group's "k=v" labels.
func anyLabelMatches(f filter.Filter, labels []string) bool {
	if !f.HasText {
		return false
	}
	for _, l := range labels {
		if f.MatchesText(l) {
			return true
		}
	}
	return false
}
