// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"github.com/urfave/cli/v2"

	"mensa.local/cli/common/menu"
)

var tagsCommand = &cli.Command{
	Name:    "tags",
	Aliases: []string{"t"},
	Usage:   "list all known meal tags",
	Action:  tagsAction,
}

func tagsAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}

	if e.json {
		type tagJSON struct {
			ID          int    `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Primary     bool   `json:"primary"`
		}
		var out []tagJSON
		for _, t := range menu.AllTags() {
			out = append(out, tagJSON{
				ID:          t.ID(),
				Name:        t.String(),
				Description: t.Describe(),
				Primary:     t.Primary(),
			})
		}
		return e.renderer.JSON(out)
	}
	e.renderer.Tags()
	return nil
}
