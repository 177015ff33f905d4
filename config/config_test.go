// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package config

import "testing"

func TestFromFileBasicRules(t *testing.T) {
	f := File{
		FunctionPrefixTrims: []trimEntry{{Pattern: `^github\.com/acme/`, Replacement: ""}},
		NameRules:           []string{"skip runtime.goexit", "fold sync.(*WaitGroup).Wait -> waitgroup while stdlib"},
		CategoryRules:       []string{"skip runtime.", `match ^github\.com/([^/]+)/#1`},
	}
	cfg, errs := fromFile(f)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(cfg.FunctionPrefixTrims) != 1 {
		t.Fatalf("got %d function trims", len(cfg.FunctionPrefixTrims))
	}
	trim := cfg.FunctionPrefixTrims[0]
	if !trim.Regexp.MatchString("github.com/acme/foo.Bar") || trim.Replacement != "" {
		t.Fatalf("trim compiled wrong: %q -> %q", trim.Regexp, trim.Replacement)
	}
	if len(cfg.NameRules) != 2 {
		t.Fatalf("got %d name rules", len(cfg.NameRules))
	}
	if len(cfg.CategoryRules) != 2 {
		t.Fatalf("got %d category rules", len(cfg.CategoryRules))
	}
}

func TestFromFileBadRuleIsReportedAndSkipped(t *testing.T) {
	f := File{
		NameRules: []string{"fold missing-arrow", "skip runtime.goexit"},
	}
	cfg, errs := fromFile(f)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if len(cfg.NameRules) != 1 {
		t.Fatalf("expected the valid rule to still load, got %d", len(cfg.NameRules))
	}
}

func TestFromFileBadTrimRegexp(t *testing.T) {
	f := File{FunctionPrefixTrims: []trimEntry{{Pattern: "(unclosed"}}}
	_, errs := fromFile(f)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
}

func TestFromFileExtractionAndArchivePatterns(t *testing.T) {
	f := File{
		NameExtractionPatterns: []trimEntry{{Pattern: `host: (\S+)`, Replacement: "$1"}},
		ArchivePathPattern:     `^dumps/.*\.txt$`,
	}
	cfg, errs := fromFile(f)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(cfg.NameExtractionPatterns) != 1 {
		t.Fatalf("got %d extraction patterns", len(cfg.NameExtractionPatterns))
	}
	if !cfg.ArchivePathPattern.MatchString("dumps/a.txt") {
		t.Fatal("archive path pattern should have been compiled from the file")
	}
}

func TestFromFileDefaultArchivePattern(t *testing.T) {
	cfg, errs := fromFile(File{})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if cfg.ArchivePathPattern == nil || !cfg.ArchivePathPattern.MatchString("node1/stacks.txt") {
		t.Fatal("expected the default stacks.txt archive filter")
	}
}

func TestParseFoldFindWithWhile(t *testing.T) {
	pattern, to, while, err := parseFoldFind("sync.(*WaitGroup).Wait -> waitgroup while stdlib")
	if err != nil {
		t.Fatal(err)
	}
	if pattern != "sync.(*WaitGroup).Wait" || to != "waitgroup" {
		t.Fatalf("got pattern=%q to=%q", pattern, to)
	}
	if while.IsZero() {
		t.Fatal("expected a non-zero while clause")
	}
}

func TestParseFoldFindWithoutWhile(t *testing.T) {
	pattern, to, while, err := parseFoldFind("sync.(*Mutex).Lock -> mutex")
	if err != nil {
		t.Fatal(err)
	}
	if pattern != "sync.(*Mutex).Lock" || to != "mutex" {
		t.Fatalf("got pattern=%q to=%q", pattern, to)
	}
	if !while.IsZero() {
		t.Fatal("expected a zero while clause")
	}
}
