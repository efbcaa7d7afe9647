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
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/grum999/bulicore/internal/cmdmain"
	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/enum"
	"github.com/grum999/bulicore/pkg/pipeline"
	"github.com/grum999/bulicore/pkg/rule"
	"github.com/grum999/bulicore/pkg/sortkey"
)

type scanCmd struct {
	recursive   bool
	hidden      bool
	backups     bool
	managedOnly bool
	includeDirs bool
	sortSpec    string
	workers     int
}

func init() {
	cmdmain.RegisterCommand("scan", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := new(scanCmd)
		flags.BoolVar(&cmd.recursive, "recursive", false, "descend into subdirectories")
		flags.BoolVar(&cmd.hidden, "hidden", false, "include dotfiles")
		flags.BoolVar(&cmd.backups, "backups", false, "include backup files (trailing ~)")
		flags.BoolVar(&cmd.managedOnly, "managed-only", false, "only list formats bulicore recognises")
		flags.BoolVar(&cmd.includeDirs, "dirs", true, "include directory rows in the result")
		flags.StringVar(&cmd.sortSpec, "sort", "", `comma-separated sort keys, e.g. "FILE_NAME,-FILE_SIZE"`)
		flags.IntVar(&cmd.workers, "workers", 0, "metadata/filter worker pool size (0 = runtime.NumCPU())")
		return cmd
	})
}

func (c *scanCmd) Describe() string {
	return "Enumerate one or more directories and print the resulting descriptors."
}

func (c *scanCmd) Usage() {
	cmdmain.Errorf("Usage: bulicore [globalopts] scan [scanopts] <dir> [dir...]")
}

func (c *scanCmd) Examples() []string {
	return []string{
		`-recursive ~/Pictures`,
		`-sort=-FILE_DATE ~/Pictures/shoot-2026`,
	}
}

func (c *scanCmd) RunCommand(args []string) error {
	if len(args) == 0 {
		return cmdmain.ErrUsage
	}

	paths := make([]enum.SearchPath, len(args))
	for i, dir := range args {
		paths[i] = enum.SearchPath{
			Dir: dir, Recursive: c.recursive, IncludeHidden: c.hidden,
			IncludeBackups: c.backups, IncludeManagedOnly: c.managedOnly,
		}
	}

	keys, err := parseSortSpec(c.sortSpec)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		Paths: paths, IncludeDirs: c.includeDirs,
		SortKeys: keys, Workers: c.workers,
	}
	// An empty rule.Node is the identity: it matches everything, so a
	// bare "scan" with no filtering flags lists the full enumeration.
	compiled, err := rule.Compile(rule.Node{})
	if err != nil {
		return err
	}
	req.Rule = compiled

	results, err := pipeline.Run(context.Background(), req, nil)
	if err != nil {
		return err
	}
	for _, d := range results {
		printDescriptor(d)
	}
	return nil
}

func printDescriptor(d descriptor.Descriptor) {
	if d.IsDirectory() {
		fmt.Fprintf(cmdmain.Stdout, "%s/\n", d.FullPath)
		return
	}
	size := "-"
	if !d.Image.IsUnknown() {
		size = fmt.Sprintf("%dx%d", d.Image.Width, d.Image.Height)
	}
	fmt.Fprintf(cmdmain.Stdout, "%s\t%s\t%d\t%s\n", d.FullPath, d.Format, d.ByteSize, size)
}

// parseSortSpec turns a comma-separated list of property names (a
// leading "-" reverses the key) into sort keys, in the vocabulary
// descriptor.PropertyFromName understands.
func parseSortSpec(spec string) ([]sortkey.Key, error) {
	if spec == "" {
		return nil, nil
	}
	var keys []sortkey.Key
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		ascending := true
		if strings.HasPrefix(field, "-") {
			ascending = false
			field = field[1:]
		}
		p, ok := descriptor.PropertyFromName(field)
		if !ok {
			return nil, errors.New("scan: unknown sort property " + field)
		}
		keys = append(keys, sortkey.Key{Property: p, Ascending: ascending})
	}
	return keys, nil
}
