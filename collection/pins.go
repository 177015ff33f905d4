// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package collection

// ToggleCategoryPin flips a category's pin and recomputes filter matches,
// since a pinned category always matches regardless of the active filter.
func (c *Collection) ToggleCategoryPin(cat *Category) {
	cat.Pinned = !cat.Pinned
	c.applyFilter()
}

// ToggleCategoryPinWithChildren flips a category's pin and cascades the
// new state to every descendant, so the whole subtree pins or unpins
// together.
func (c *Collection) ToggleCategoryPinWithChildren(cat *Category) {
	cat.Pinned = !cat.Pinned
	for _, st := range cat.Stacks {
		pinStackSubtree(st, cat.Pinned)
	}
	c.applyFilter()
}

func pinStackSubtree(st *UniqueStack, pinned bool) {
	st.Pinned = pinned
	for _, sec := range st.Files {
		for _, grp := range sec.Groups {
			grp.Pinned = pinned
			for _, g := range grp.Goroutines {
				g.Pinned = pinned
			}
		}
	}
}

// ToggleStackPin flips a stack's pin.
func (c *Collection) ToggleStackPin(st *UniqueStack) {
	st.Pinned = !st.Pinned
	c.applyFilter()
}

// ToggleStackPinWithChildren flips a stack's pin and cascades the new
// state to every group and goroutine beneath its file sections.
func (c *Collection) ToggleStackPinWithChildren(st *UniqueStack) {
	pinStackSubtree(st, !st.Pinned)
	c.applyFilter()
}

// ToggleGroupPin flips a group's pin.
func (c *Collection) ToggleGroupPin(grp *Group) {
	grp.Pinned = !grp.Pinned
	c.applyFilter()
}

// ToggleGroupPinWithChildren flips a group's pin and every goroutine in it.
func (c *Collection) ToggleGroupPinWithChildren(grp *Group) {
	grp.Pinned = !grp.Pinned
	for _, g := range grp.Goroutines {
		g.Pinned = grp.Pinned
	}
	c.applyFilter()
}

// ToggleGoroutinePin flips a single goroutine's pin.
func (c *Collection) ToggleGoroutinePin(g *Goroutine) {
	g.Pinned = !g.Pinned
	c.applyFilter()
}

// UnpinAllItems clears every pin at every level of the taxonomy.
func (c *Collection) UnpinAllItems() {
	for _, cat := range c.categories {
		cat.Pinned = false
		for _, st := range cat.Stacks {
			st.Pinned = false
			for _, sec := range st.Files {
				for _, grp := range sec.Groups {
					grp.Pinned = false
					for _, g := range grp.Goroutines {
						g.Pinned = false
					}
				}
			}
		}
	}
	c.applyFilter()
}

// HasAnyPinnedItems reports whether anything in the taxonomy is pinned.
func (c *Collection) HasAnyPinnedItems() bool {
	for _, cat := range c.categories {
		if cat.Pinned {
			return true
		}
		for _, st := range cat.Stacks {
			if st.Pinned {
				return true
			}
			for _, sec := range st.Files {
				for _, grp := range sec.Groups {
					if grp.Pinned {
						return true
					}
					for _, g := range grp.Goroutines {
						if g.Pinned {
							return true
						}
					}
				}
			}
		}
	}
	return false
}
