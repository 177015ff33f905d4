// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package collection

import (
	"fmt"

	"github.com/maruel/stackgazer/categorizer"
	"github.com/maruel/stackgazer/dumpparse"
	"github.com/maruel/stackgazer/filter"
	"github.com/maruel/stackgazer/gostack"
	"github.com/maruel/stackgazer/naming"
)

// Collection is a profile collection: the hierarchical taxonomy of
// every category, stack, file section, group and goroutine loaded so far,
// kept deduplicated by stack fingerprint and filtered/pinned as one unit.
//
// A Collection owns its entities: everything reachable from Categories is
// an arena entry, and back-references (Goroutine.Stack, UniqueStack.Category)
// are plain pointers into that arena, never a second ownership path.
type Collection struct {
	cfg Config

	categories     []*Category
	categoryByName map[string]*Category
	stackByFP      map[string]*UniqueStack
	goroutineByID  map[string]*Goroutine

	files []*loadedFile

	filter          string
	parsedFilter    filter.Filter
	filterActive    bool
	forcedGoroutine string
	nextFileID      int
	nextSection     int
	nextGroup       int
	nextCategory    int
}

// loadedFile remembers enough about one AddFile call to replay it, in
// order, whenever rebuildFromFiles rebuilds the whole taxonomy from scratch.
type loadedFile struct {
	fileID     int
	name       string
	parsed     *dumpparse.ParsedFile
	customName string
	// forcePrefix keeps this file's goroutine ids file-prefixed even while
	// it is the only file loaded (the RenameFile prefixing policy).
	forcePrefix bool
}

// New creates an empty Collection using cfg as its initial rule set.
func New(cfg Config) *Collection {
	return &Collection{
		cfg:            cfg,
		categoryByName: map[string]*Category{},
		stackByFP:      map[string]*UniqueStack{},
		goroutineByID:  map[string]*Goroutine{},
	}
}

// FileNames returns the display names of loaded files, in load order.
func (c *Collection) FileNames() []string {
	out := make([]string, len(c.files))
	for i, f := range c.files {
		out[i] = f.name
	}
	return out
}

// Categories returns the current category list, in first-seen order.
func (c *Collection) Categories() []*Category { return c.categories }

// GoroutineByID looks up a goroutine by its collection-wide id.
func (c *Collection) GoroutineByID(id string) (*Goroutine, bool) {
	g, ok := c.goroutineByID[id]
	return g, ok
}

// AddFile merges one parsed dump file into the collection under the given
// display name (customName, if non-empty, else parsed.ExtractedName, else
// parsed.OriginalName). It fails with *DuplicateFileName if that name is
// already in use.
func (c *Collection) AddFile(parsed *dumpparse.ParsedFile, customName string) (string, error) {
	name := customName
	if name == "" {
		name = parsed.ExtractedName
	}
	if name == "" {
		name = parsed.OriginalName
	}
	for _, f := range c.files {
		if f.name == name {
			return "", &DuplicateFileName{Name: name}
		}
	}

	wasSingle := len(c.files) == 1
	fileID := c.nextFileID
	c.nextFileID++
	c.files = append(c.files, &loadedFile{fileID: fileID, name: name, parsed: parsed, customName: customName})

	if wasSingle {
		// Transitioning from one to two files: every goroutine id loaded so
		// far must grow its file prefix retroactively, creator/created ids
		// included. Replaying both files is that retroactive re-import.
		c.rebuildFromFiles()
		return name, nil
	}
	c.ingestFile(fileID, name, parsed, len(c.files) > 1)
	c.applyFilter()
	return name, nil
}

// ingestFile merges one already-assigned file's groups into the taxonomy.
// prefixIDs selects the "<fileName>.<rawId>" goroutine id form.
func (c *Collection) ingestFile(fileID int, name string, parsed *dumpparse.ParsedFile, prefixIDs bool) {
	// sectionByStack tracks the FileSection this file has already created for
	// a given fingerprint, so repeated groups against the same stack land in
	// the same section instead of spawning duplicates.
	sectionByStack := map[string]*FileSection{}
	// groupByState tracks the Group within a section already carrying a
	// given resolved state and label list, so two parsed groups that reduce
	// to the same (fingerprint, state, labels) fuse into one Group.
	groupByState := map[*FileSection]map[string]*Group{}
	var added []*Goroutine

	for _, pg := range parsed.Groups {
		trace := c.trimTrace(pg.Trace)
		fp := gostack.Fingerprint(trace)
		stack, ok := c.stackByFP[fp]
		if !ok {
			stack = c.newStack(fp, trace)
		}

		section, ok := sectionByStack[fp]
		if !ok {
			section = &FileSection{SectionID: c.nextSection, FileID: fileID, FileName: name}
			c.nextSection++
			sectionByStack[fp] = section
			stack.Files = append(stack.Files, section)
			groupByState[section] = map[string]*Group{}
		}

		state := c.resolveGroupState(pg)
		key := fmt.Sprintf("%s\x00%q", state, pg.Labels)
		grp, ok := groupByState[section][key]
		if !ok {
			grp = &Group{GroupID: c.nextGroup}
			c.nextGroup++
			grp.Labels = pg.Labels
			groupByState[section][key] = grp
			section.Groups = append(section.Groups, grp)
		}

		newGs := c.addGoroutines(grp, pg, name, state, prefixIDs)
		for _, g := range newGs {
			g.stack = stack
		}
		added = append(added, newGs...)
	}

	// Creator/created linking runs once the whole file is in: a creator
	// recorded in a "created by" line may itself be parsed after its child.
	// CreatorExists holds only when the creator's id resolves within the
	// collection, never merely because the dump named one.
	for _, g := range added {
		if g.CreatorID == "" {
			continue
		}
		if creator, ok := c.goroutineByID[g.CreatorID]; ok {
			g.CreatorExists = true
			creator.Created = append(creator.Created, g.ID)
		}
	}
}

// resolveGroupState picks the state every goroutine synthesized from pg
// will carry: a "state=" label wins, else the dialect-B
// header state, else "unknown".
func (c *Collection) resolveGroupState(pg dumpparse.Group) string {
	for _, l := range pg.Labels {
		if len(l) > 6 && l[:6] == "state=" {
			if v := l[6:]; v != "" {
				return v
			}
		}
	}
	if len(pg.Goroutines) > 0 && pg.Goroutines[0].HeaderState != "" {
		return pg.Goroutines[0].HeaderState
	}
	return "unknown"
}

// addGoroutines appends the goroutines carried by one parsed group to grp,
// synthesizing per-goroutine identities for the aggregated dialect, which
// never enumerates individual ids. It returns the goroutines it created.
func (c *Collection) addGoroutines(grp *Group, pg dumpparse.Group, fileName, state string, prefixIDs bool) []*Goroutine {
	start := len(grp.Goroutines)
	if len(pg.Goroutines) == 0 {
		for n := 0; n < pg.Count; n++ {
			id := fmt.Sprintf("%s:g%d:%d", fileName, grp.GroupID, start+n)
			g := &Goroutine{ID: id, RawID: -1, State: state, Matches: true}
			c.registerGoroutine(grp, g)
		}
		return grp.Goroutines[start:]
	}
	for _, pgo := range pg.Goroutines {
		g := &Goroutine{
			ID:          formatGoroutineID(fileName, pgo.ID, prefixIDs),
			RawID:       pgo.ID,
			State:       state,
			WaitMinutes: pgo.WaitMinutes,
			Matches:     true,
		}
		if pgo.HasCreator {
			g.CreatorID = formatGoroutineID(fileName, pgo.CreatorID, prefixIDs)
		}
		c.registerGoroutine(grp, g)
	}
	return grp.Goroutines[start:]
}

func (c *Collection) registerGoroutine(grp *Group, g *Goroutine) {
	grp.Goroutines = append(grp.Goroutines, g)
	c.goroutineByID[g.ID] = g
}

func (c *Collection) newStack(fp string, trace gostack.Trace) *UniqueStack {
	name := naming.Evaluate(trace, c.cfg.NameRules)
	stack := &UniqueStack{
		StackID:        "s" + fp,
		Fingerprint:    fp,
		Name:           name,
		Trace:          trace,
		SearchableText: gostack.SearchableText(trace),
	}
	c.stackByFP[fp] = stack

	catName := categorizer.Categorize(trace, c.cfg.CategoryRules)
	cat, ok := c.categoryByName[catName]
	if !ok {
		cat = &Category{CategoryID: fmt.Sprintf("c%d", c.nextCategory), Name: catName}
		c.nextCategory++
		c.categoryByName[catName] = cat
		c.categories = append(c.categories, cat)
	}
	cat.Stacks = append(cat.Stacks, stack)
	stack.category = cat
	return stack
}

// trimTrace applies the configured function/file prefix trims to every
// frame of trace, returning a new slice (trace itself is never mutated:
// it may be shared with the parser's own record).
func (c *Collection) trimTrace(trace gostack.Trace) gostack.Trace {
	if len(c.cfg.FunctionPrefixTrims) == 0 && len(c.cfg.FilePrefixTrims) == 0 {
		return trace
	}
	out := make(gostack.Trace, len(trace))
	for i, f := range trace {
		out[i] = gostack.Frame{
			Func: applyPrefixTrims(f.Func, c.cfg.FunctionPrefixTrims),
			File: applyPrefixTrims(f.File, c.cfg.FilePrefixTrims),
			Line: f.Line,
		}
	}
	return out
}

func formatGoroutineID(fileName string, rawID int, prefixIDs bool) string {
	if !prefixIDs {
		return fmt.Sprintf("%d", rawID)
	}
	return fmt.Sprintf("%s.%d", fileName, rawID)
}

// RemoveFile drops every entity contributed by the named file, pruning
// stacks and categories left empty, and reverses file-prefixing if only
// one file remains loaded afterwards.
func (c *Collection) RemoveFile(name string) error {
	idx := -1
	for i, f := range c.files {
		if f.name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &UnknownFile{Name: name}
	}
	c.files = append(c.files[:idx], c.files[idx+1:]...)
	c.rebuildFromFiles()
	return nil
}

// RenameFile changes a loaded file's display name and re-ingests it under
// the new name, keeping the custom-name pin so future UpdateSettings
// replays preserve it. prefixIDs forces the file's goroutine ids to stay
// file-prefixed even while it is the only file loaded.
func (c *Collection) RenameFile(oldName, newName string, prefixIDs bool) error {
	for _, f := range c.files {
		if f.name == newName && f.name != oldName {
			return &DuplicateFileName{Name: newName}
		}
	}
	found := false
	for _, f := range c.files {
		if f.name == oldName {
			f.name = newName
			f.customName = newName
			f.forcePrefix = prefixIDs
			found = true
			break
		}
	}
	if !found {
		return &UnknownFile{Name: oldName}
	}
	c.rebuildFromFiles()
	return nil
}

// UpdateSettings swaps in a new rule set and re-ingests every loaded file
// from scratch, in original load order: names, fingerprints and categories
// may all change since naming/category rules feed directly off them.
func (c *Collection) UpdateSettings(cfg Config) {
	c.cfg = cfg
	c.rebuildFromFiles()
}

// rebuildFromFiles clears all taxonomy state and re-ingests c.files in
// order, reusing each file's originally assigned fileID so external
// references (e.g. a caller holding onto a FileID) stay stable.
func (c *Collection) rebuildFromFiles() {
	c.categories = nil
	c.categoryByName = map[string]*Category{}
	c.stackByFP = map[string]*UniqueStack{}
	c.goroutineByID = map[string]*Goroutine{}
	c.nextSection = 0
	c.nextGroup = 0
	c.nextCategory = 0

	multiFile := len(c.files) > 1
	for _, f := range c.files {
		c.ingestFile(f.fileID, f.name, f.parsed, multiFile || f.forcePrefix)
	}
	c.applyFilter()
}
