// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// mensa queries the menus of canteens contained in the OpenMensa
// database, with user-configured filter and favourites rules and a
// free-form search phrase like "at park no fish on tomorrow vegan".
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"mensa.local/cli/common/cliutil"
	"mensa.local/cli/common/config"
	"mensa.local/cli/common/fetchcache"
	"mensa.local/cli/common/openmensa"
	"mensa.local/cli/common/render"
)

var flagConfig = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to the configuration file",
	EnvVars: []string{"MENSA_CONFIG"},
}

var flagPlain = &cli.BoolFlag{
	Name:    "plain",
	Usage:   "use ascii characters only (does not prune non-ascii text returned by the API)",
	EnvVars: []string{"MENSA_ASCII_ONLY"},
}

var flagColor = &cli.StringFlag{
	Name:  "color",
	Usage: "when to use terminal colors (always|auto|never)",
	Value: "auto",
}

var flagJSON = &cli.BoolFlag{
	Name:  "json",
	Usage: "print machine readable json instead of fancy terminal output",
}

var flagClearCache = &cli.BoolFlag{
	Name:  "clear-cache",
	Usage: "clear the response cache before doing anything",
}

var flagDebug = &cli.BoolFlag{
	Name:  "debug",
	Usage: "enable debug logging",
}

var app = &cli.App{
	Name:  "mensa",
	Usage: "query canteen menus from the OpenMensa database",
	Flags: []cli.Flag{
		flagConfig,
		flagPlain,
		flagColor,
		flagJSON,
		flagClearCache,
		flagDebug,
	},
	HideHelpCommand: true,
	Before: func(c *cli.Context) error {
		if c.Bool(flagDebug.Name) {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
	Commands: []*cli.Command{
		mealsCommand,
		canteensCommand,
		tagsCommand,
	},
	// Bare "mensa [phrase]" behaves like "mensa meals [phrase]".
	Action: mealsAction,
}

// env is the runtime wiring shared by all commands.
type env struct {
	file     *config.File
	cache    *fetchcache.Cache
	client   *openmensa.Client
	renderer *render.Renderer
	json     bool
}

func newEnv(c *cli.Context) (*env, error) {
	mode, err := render.ParseColorMode(c.String(flagColor.Name))
	if err != nil {
		return nil, err
	}

	file := &config.File{}
	path := c.String(flagConfig.Name)
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		} else {
			logrus.Warnf("cannot determine configuration path: %v", err)
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			file, err = config.Load(path)
			if err != nil {
				return nil, err
			}
		} else if c.IsSet(flagConfig.Name) {
			return nil, fmt.Errorf("reading configuration: %w", err)
		}
	}

	dir, err := config.DefaultCacheDir()
	if err != nil {
		logrus.Warnf("cannot determine cache directory, using a temporary one: %v", err)
		dir = filepath.Join(os.TempDir(), "mensa-cache")
	}
	cache, err := fetchcache.New(dir)
	if err != nil {
		return nil, err
	}
	if c.Bool(flagClearCache.Name) {
		if err := cache.Clear(); err != nil {
			return nil, fmt.Errorf("clearing cache: %w", err)
		}
	}

	return &env{
		file:     file,
		cache:    cache,
		client:   openmensa.NewClient(openmensa.DefaultEndpoint, cache),
		renderer: render.New(os.Stdout, c.Bool(flagPlain.Name), mode),
		json:     c.Bool(flagJSON.Name),
	}, nil
}

func main() {
	cliutil.Exit(app.Run(os.Args))
}
