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
	"flag"
	"fmt"

	"github.com/grum999/bulicore/internal/cmdmain"
	"github.com/grum999/bulicore/pkg/bookmark"
	"github.com/grum999/bulicore/pkg/config"
)

type bookmarkCmd struct {
	recursive   bool
	hidden      bool
	backups     bool
	managedOnly bool
}

func init() {
	cmdmain.RegisterCommand("bookmark", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := new(bookmarkCmd)
		flags.BoolVar(&cmd.recursive, "recursive", false, "used with \"add\": the new bookmark is recursive")
		flags.BoolVar(&cmd.hidden, "hidden", false, "used with \"add\": the new bookmark includes hidden files")
		flags.BoolVar(&cmd.backups, "backups", false, "used with \"add\": the new bookmark includes backup files")
		flags.BoolVar(&cmd.managedOnly, "managed-only", false, "used with \"add\": the new bookmark only lists recognised formats")
		return cmd
	})
}

func (c *bookmarkCmd) Describe() string {
	return "List, add, rename, or remove entries in the bookmark registry."
}

func (c *bookmarkCmd) Usage() {
	cmdmain.Errorf("Usage: bulicore [globalopts] bookmark list\n" +
		"       bulicore [globalopts] bookmark add [bookmarkopts] <name> <path>\n" +
		"       bulicore [globalopts] bookmark rename <old-name> <new-name>\n" +
		"       bulicore [globalopts] bookmark remove <name>")
}

func (c *bookmarkCmd) Examples() []string {
	return []string{
		`list`,
		`add -recursive shoots ~/Pictures/shoots`,
		`remove shoots`,
	}
}

func (c *bookmarkCmd) RunCommand(args []string) error {
	if len(args) == 0 {
		return cmdmain.ErrUsage
	}

	reg, err := bookmark.Load(config.Default())
	if err != nil {
		return fmt.Errorf("bookmark: %w", err)
	}

	switch args[0] {
	case "list":
		for _, b := range reg.List() {
			fmt.Fprintf(cmdmain.Stdout, "%s\t%s\n", b.Name, b.Path)
		}
		return nil
	case "add":
		if len(args) != 3 {
			return cmdmain.ErrUsage
		}
		return reg.Append(bookmark.Bookmark{
			Name: args[1], Path: args[2], Recursive: c.recursive,
			IncludeHidden: c.hidden, IncludeBackups: c.backups, IncludeManagedOnly: c.managedOnly,
		})
	case "rename":
		if len(args) != 3 {
			return cmdmain.ErrUsage
		}
		return reg.Rename(args[1], args[2])
	case "remove":
		if len(args) != 2 {
			return cmdmain.ErrUsage
		}
		return reg.Remove(args[1])
	default:
		return cmdmain.UsageError("bookmark: unknown subcommand " + args[0])
	}
}
