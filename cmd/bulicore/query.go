/*
Copyright 2011 Google Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/grum999/bulicore/internal/cmdmain"
	"github.com/grum999/bulicore/pkg/pipeline"
	"github.com/grum999/bulicore/pkg/querymodel"
	"github.com/grum999/bulicore/pkg/rule"
)

type queryCmd struct {
	recursive bool
	workers   int
}

func init() {
	cmdmain.RegisterCommand("query", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := new(queryCmd)
		flags.BoolVar(&cmd.recursive, "recursive", false, `used with "new": the saved search descends into subdirectories`)
		flags.IntVar(&cmd.workers, "workers", 0, `used with "run": metadata/filter worker pool size`)
		return cmd
	})
}

func (c *queryCmd) Describe() string {
	return "Build and run saved query-model documents (the node graph a search-authoring UI would edit)."
}

func (c *queryCmd) Usage() {
	cmdmain.Errorf("Usage: bulicore [globalopts] query new <path> <search-dir>\n" +
		"       bulicore [globalopts] query run <path>")
}

func (c *queryCmd) Examples() []string {
	return []string{
		`new ./saved.bcsearch ~/Pictures`,
		`run ./saved.bcsearch`,
	}
}

func (c *queryCmd) RunCommand(args []string) error {
	if len(args) < 2 {
		return cmdmain.ErrUsage
	}
	switch args[0] {
	case "new":
		if len(args) != 3 {
			return cmdmain.ErrUsage
		}
		return c.newQuery(args[1], args[2])
	case "run":
		if len(args) != 2 {
			return cmdmain.ErrUsage
		}
		return c.runQuery(args[1])
	default:
		return cmdmain.UsageError("query: unknown subcommand " + args[0])
	}
}

// newQuery builds the smallest valid document — one SearchEngine node
// wired to one SearchFromPath node — and saves it to path.
func (c *queryCmd) newQuery(path, searchDir string) error {
	engine, err := querymodel.NewNode(querymodel.NodeSearchEngine, struct{}{})
	if err != nil {
		return err
	}
	searchFromPath, err := querymodel.NewNode(querymodel.NodeSearchFromPath, querymodel.SearchFromPathPayload{
		Path: searchDir, Recursive: c.recursive,
	})
	if err != nil {
		return err
	}
	doc := querymodel.Document{
		FormatIdentifier: querymodel.FormatSearchFilterBasic,
		Nodes:            []querymodel.Node{engine, searchFromPath},
		Links: []querymodel.Link{
			{From: searchFromPath.ID + ":" + querymodel.ConnOut, To: engine.ID + ":" + querymodel.ConnPaths},
		},
	}
	if err := querymodel.SaveFile(path, doc); err != nil {
		return err
	}
	fmt.Fprintf(cmdmain.Stdout, "%s\n", path)
	return nil
}

func (c *queryCmd) runQuery(path string) error {
	doc, err := querymodel.LoadFile(path)
	if err != nil {
		return err
	}
	resolved, err := querymodel.Resolve(doc)
	if err != nil {
		return err
	}
	compiled, err := rule.Compile(resolved.Rule)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		Paths: resolved.Paths, IncludeDirs: true,
		Rule: compiled, SortKeys: resolved.SortKeys, Workers: c.workers,
	}
	results, err := pipeline.Run(context.Background(), req, nil)
	if err != nil {
		return err
	}
	for _, d := range results {
		printDescriptor(d)
	}
	return nil
}
