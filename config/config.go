// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the user-editable rule file (naming, categorizing
// and prefix-trim rules) that feeds collection.Config.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/maruel/stackgazer/archive"
	"github.com/maruel/stackgazer/categorizer"
	"github.com/maruel/stackgazer/collection"
	"github.com/maruel/stackgazer/dumpparse"
	"github.com/maruel/stackgazer/naming"
)

// File is the on-disk YAML shape. Each rule is one line of the DSL's
// textual form; malformed lines are reported but don't prevent the rest
// of the file from loading.
type File struct {
	FunctionPrefixTrims    []trimEntry `yaml:"functionPrefixTrims"`
	FilePrefixTrims        []trimEntry `yaml:"filePrefixTrims"`
	NameRules              []string    `yaml:"nameRules"`
	CategoryRules          []string    `yaml:"categoryRules"`
	NameExtractionPatterns []trimEntry `yaml:"nameExtractionPatterns"`
	ArchivePathPattern     string      `yaml:"archivePathPattern"`
}

type trimEntry struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// Load reads and parses path into a collection.Config. Any malformed rule
// is reported as a *collection.ConfigError in errs and skipped; the rest
// of the file still applies.
func Load(path string) (collection.Config, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return collection.Config{}, []error{err}
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return collection.Config{}, []error{fmt.Errorf("parsing %s: %w", path, err)}
	}
	return fromFile(f)
}

// Default returns the built-in rule set, unchanged by any file.
func Default() collection.Config {
	cfg := collection.Default()
	cfg.ArchivePathPattern = archive.DefaultPathFilter
	return cfg
}

func fromFile(f File) (collection.Config, []error) {
	var errs []error
	cfg := collection.Config{}

	for _, t := range f.FunctionPrefixTrims {
		pt, err := compileTrim(t)
		if err != nil {
			errs = append(errs, &collection.ConfigError{Rule: t.Pattern, Reason: err.Error()})
			continue
		}
		cfg.FunctionPrefixTrims = append(cfg.FunctionPrefixTrims, pt)
	}
	for _, t := range f.FilePrefixTrims {
		pt, err := compileTrim(t)
		if err != nil {
			errs = append(errs, &collection.ConfigError{Rule: t.Pattern, Reason: err.Error()})
			continue
		}
		cfg.FilePrefixTrims = append(cfg.FilePrefixTrims, pt)
	}
	for _, line := range f.NameRules {
		r, err := parseNameRule(line)
		if err != nil {
			errs = append(errs, &collection.ConfigError{Rule: line, Reason: err.Error()})
			continue
		}
		cfg.NameRules = append(cfg.NameRules, r)
	}
	for _, line := range f.CategoryRules {
		r, err := parseCategoryRule(line)
		if err != nil {
			errs = append(errs, &collection.ConfigError{Rule: line, Reason: err.Error()})
			continue
		}
		cfg.CategoryRules = append(cfg.CategoryRules, r)
	}
	for _, t := range f.NameExtractionPatterns {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			errs = append(errs, &collection.ConfigError{Rule: t.Pattern, Reason: err.Error()})
			continue
		}
		cfg.NameExtractionPatterns = append(cfg.NameExtractionPatterns, dumpparse.NamePattern{Regexp: re, Replacement: t.Replacement})
	}
	cfg.ArchivePathPattern = archive.DefaultPathFilter
	if f.ArchivePathPattern != "" {
		re, err := regexp.Compile(f.ArchivePathPattern)
		if err != nil {
			errs = append(errs, &collection.ConfigError{Rule: f.ArchivePathPattern, Reason: err.Error()})
		} else {
			cfg.ArchivePathPattern = re
		}
	}
	return cfg, errs
}

func compileTrim(t trimEntry) (collection.PrefixTrim, error) {
	re, err := regexp.Compile(t.Pattern)
	if err != nil {
		return collection.PrefixTrim{}, err
	}
	return collection.PrefixTrim{Regexp: re, Replacement: t.Replacement}, nil
}

// parseNameRule parses one textual naming-DSL line:
//
//	skip <prefix>
//	trim <prefix>
//	trim <s/.../.../flags>
//	fold <prefix> -> <name> [while <prefix>]
//	find <prefix> -> <name> [while <prefix>]
func parseNameRule(line string) (naming.Rule, error) {
	kind, rest := splitWord(line)
	switch kind {
	case "skip":
		return naming.Skip(naming.Literal(rest)), nil
	case "trim":
		if spec, ok := naming.ParseSubstitution(rest); ok {
			return naming.Trim(spec), nil
		}
		return naming.Trim(naming.TrimPrefix(rest)), nil
	case "fold", "find":
		pattern, to, while, err := parseFoldFind(rest)
		if err != nil {
			return naming.Rule{}, err
		}
		if kind == "fold" {
			return naming.Fold(naming.Literal(pattern), to, while), nil
		}
		return naming.Find(naming.Literal(pattern), to, while), nil
	default:
		return naming.Rule{}, fmt.Errorf("unknown rule kind %q", kind)
	}
}

func parseFoldFind(rest string) (pattern, to string, while naming.Pattern, err error) {
	arrow := strings.Index(rest, "->")
	if arrow < 0 {
		return "", "", naming.Pattern{}, fmt.Errorf("missing -> in rule %q", rest)
	}
	pattern = strings.TrimSpace(rest[:arrow])
	remainder := strings.TrimSpace(rest[arrow+2:])
	if idx := strings.Index(remainder, " while "); idx >= 0 {
		to = strings.TrimSpace(remainder[:idx])
		whileLit := strings.TrimSpace(remainder[idx+len(" while "):])
		if whileLit == "stdlib" {
			while = naming.StdlibSentinel()
		} else {
			while = naming.Literal(whileLit)
		}
		return pattern, to, while, nil
	}
	return pattern, remainder, naming.Pattern{}, nil
}

// parseCategoryRule parses one textual category-DSL line:
//
//	skip <prefix>
//	match <regex>[#N][ -- comment]
func parseCategoryRule(line string) (categorizer.Rule, error) {
	kind, rest := splitWord(line)
	switch kind {
	case "skip":
		return categorizer.Skip(rest), nil
	case "match":
		return categorizer.ParseMatch(rest)
	default:
		return categorizer.Rule{}, fmt.Errorf("unknown rule kind %q", kind)
	}
}

// splitWord separates a rule line into its leading keyword and the rest.
func splitWord(s string) (string, string) {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
