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
	"image/jpeg"
	"image/png"
	"os"
	"strconv"

	"github.com/grum999/bulicore/internal/cmdmain"
	"github.com/grum999/bulicore/pkg/config"
	"github.com/grum999/bulicore/pkg/pipeline"
	"github.com/grum999/bulicore/pkg/thumbcache"
)

type thumbnailCmd struct {
	size    string
	noCache bool
	out     string
}

func init() {
	cmdmain.RegisterCommand("thumbnail", func(flags *flag.FlagSet) cmdmain.CommandRunner {
		cmd := new(thumbnailCmd)
		flags.StringVar(&cmd.size, "size", "128", "thumbnail longest side: 64, 128, 256, or 512")
		flags.BoolVar(&cmd.noCache, "no-cache", false, "force regeneration, ignoring any cached thumbnail")
		flags.StringVar(&cmd.out, "out", "", "write the thumbnail to this path (default: <file>.thumb.<ext> beside the source)")
		return cmd
	})
}

func (c *thumbnailCmd) Describe() string {
	return "Generate or fetch the cached thumbnail for a single image file."
}

func (c *thumbnailCmd) Usage() {
	cmdmain.Errorf("Usage: bulicore [globalopts] thumbnail [thumbnailopts] <file>")
}

func (c *thumbnailCmd) Examples() []string {
	return []string{`-size=256 -out=/tmp/preview.png ~/Pictures/sketch.kra`}
}

func (c *thumbnailCmd) RunCommand(args []string) error {
	if len(args) != 1 {
		return cmdmain.ErrUsage
	}
	size, err := parseThumbnailSize(c.size)
	if err != nil {
		return err
	}

	cfg := config.Default()
	cache, err := thumbcache.New(cfg)
	if err != nil {
		return fmt.Errorf("thumbnail: opening cache: %w", err)
	}

	d := pipeline.Describe(args[0])
	if !d.Readable {
		return fmt.Errorf("thumbnail: %s is not readable", args[0])
	}

	im, ext, err := cache.Thumbnail(d, size, !c.noCache)
	if err != nil {
		return fmt.Errorf("thumbnail: %w", err)
	}

	outPath := c.out
	if outPath == "" {
		outPath = args[0] + ".thumb." + ext
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	switch ext {
	case "png":
		err = png.Encode(f, im)
	default:
		err = jpeg.Encode(f, im, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return fmt.Errorf("thumbnail: encoding %s: %w", outPath, err)
	}
	fmt.Fprintf(cmdmain.Stdout, "%s\n", outPath)
	return nil
}

func parseThumbnailSize(s string) (config.ThumbnailSize, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("thumbnail: invalid -size %q", s)
	}
	for _, v := range config.Sizes {
		if int(v) == n {
			return v, nil
		}
	}
	return 0, fmt.Errorf("thumbnail: -size must be one of 64, 128, 256, 512, got %d", n)
}
