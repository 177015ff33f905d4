// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command stackgazer loads one or more goroutine dump files, buckets their
// stacks by category, and prints the result, optionally narrowed down by a
// filter query.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/maruel/stackgazer/archive"
	"github.com/maruel/stackgazer/collection"
	"github.com/maruel/stackgazer/config"
	"github.com/maruel/stackgazer/dumpparse"
)

var rulesPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stackgazer",
		Short:         "Analyze Go goroutine dumps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addRuleFlags(root.PersistentFlags())
	root.AddCommand(newAnalyzeCmd(), newFilterCmd())
	return root
}

func addRuleFlags(fs *pflag.FlagSet) {
	fs.StringVar(&rulesPath, "rules", "", "path to a YAML rule file (defaults to the built-in rule set)")
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <dump file>...",
		Short: "Load dump files and print the resulting category/stack breakdown",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coll, err := loadCollection(args)
			if err != nil {
				return err
			}
			printTaxonomy(cmd.OutOrStdout(), coll)
			return nil
		},
	}
}

func newFilterCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "filter <dump file>... -- <query tokens>",
		Short: "Load dump files and print only what matches a filter query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			// Everything after "--" is the query, e.g.
			//   stackgazer filter stacks.txt -- wait:5+ worker
			if at := cmd.ArgsLenAtDash(); at >= 0 {
				files = args[:at]
				query = strings.Join(args[at:], " ")
			}
			if len(files) == 0 {
				return fmt.Errorf("no dump files given")
			}
			coll, err := loadCollection(files)
			if err != nil {
				return err
			}
			if err := coll.SetFilter(query); err != nil {
				return fmt.Errorf("parsing filter: %w", err)
			}
			printTaxonomy(cmd.OutOrStdout(), coll)
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "filter", "", `filter query, e.g. "wait:>5 http.Serve"`)
	return cmd
}

func loadCollection(paths []string) (*collection.Collection, error) {
	cfg := config.Default()
	if rulesPath != "" {
		loaded, errs := config.Load(rulesPath)
		for _, e := range errs {
			log.Printf("rule file: %v", e)
		}
		cfg = loaded
	}

	coll := collection.New(cfg)
	var entries []archive.Entry
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, archive.Entry{Path: p, Data: data})
	}
	for _, e := range entries {
		parsed, err := dumpparse.Parse(e.Data, e.Path, cfg.NameExtractionPatterns)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Path, err)
		}
		if _, err := coll.AddFile(parsed, ""); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Path, err)
		}
	}
	return coll, nil
}
