// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package collection implements the ProfileCollection: it owns every
// category, stack, file section, group and goroutine loaded from one or
// more dump files, assigns them stable identities, deduplicates stacks by
// fingerprint, and maintains hierarchical filter and pin state.
package collection

import "github.com/maruel/stackgazer/gostack"

// Counts are the four coherence-linked counters every taxonomy level
// carries: 0 <= Matches <= Total, FilterMatches <= Matches.
type Counts struct {
	Total         int
	Matches       int
	PriorMatches  int
	FilterMatches int
}

// Goroutine is the state of one goroutine loaded into the collection.
//
// Goroutine holds a non-owning reference to its UniqueStack: stacks do not
// enumerate goroutines directly, they're reached through file sections.
type Goroutine struct {
	ID            string
	RawID         int
	State         string
	WaitMinutes   int
	CreatorID     string
	CreatorExists bool
	Created       []string
	Matches       bool
	Pinned        bool

	stack *UniqueStack
}

// Stack returns the UniqueStack this goroutine belongs to.
func (g *Goroutine) Stack() *UniqueStack { return g.stack }

// Group is a set of goroutines sharing identical labels (Dialect-A) or
// state (Dialect-B) within one file section.
type Group struct {
	GroupID    int
	Labels     []string
	Goroutines []*Goroutine
	Pinned     bool
	Counts     Counts
}

// FileSection is the portion of a UniqueStack contributed by one loaded
// file.
type FileSection struct {
	SectionID int
	FileID    int
	FileName  string
	Groups    []*Group
	Counts    Counts
}

// UniqueStack is the set of all goroutines sharing a fingerprint, across
// every loaded file.
type UniqueStack struct {
	StackID        string
	Fingerprint    string
	Name           string
	Trace          gostack.Trace
	Files          []*FileSection
	Counts         Counts
	SearchableText string
	Pinned         bool

	category *Category
}

// Category returns the category this stack was filed under.
func (s *UniqueStack) Category() *Category { return s.category }

// Category is a coarse bucket, typically a package prefix, stacks are
// listed under.
type Category struct {
	CategoryID string
	Name       string
	Stacks     []*UniqueStack
	Counts     Counts
	Pinned     bool
}
