// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/urfave/cli/v2"

	"mensa.local/cli/common/geoip"
	"mensa.local/cli/common/menu"
)

var flagLat = &cli.Float64Flag{
	Name:  "lat",
	Usage: "latitude of your position (default: geoip guess)",
}

var flagLong = &cli.Float64Flag{
	Name:  "long",
	Usage: "longitude of your position (default: geoip guess)",
}

var flagRadius = &cli.Float64Flag{
	Name:    "radius",
	Aliases: []string{"r"},
	Usage:   "maximum distance of canteens from your position in km",
	Value:   10,
}

var flagAllCanteens = &cli.BoolFlag{
	Name:    "all",
	Aliases: []string{"a"},
	Usage:   "ignore the position and list every canteen",
}

var canteensCommand = &cli.Command{
	Name:    "canteens",
	Aliases: []string{"c"},
	Usage:   "list canteens close to you",
	Flags: []cli.Flag{
		flagLat,
		flagLong,
		flagRadius,
		flagAllCanteens,
	},
	Action: canteensAction,
}

func canteensAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}

	var canteens []menu.Canteen
	if c.Bool(flagAllCanteens.Name) {
		canteens, err = e.client.Canteens(c.Context)
	} else {
		lat := c.Float64(flagLat.Name)
		lng := c.Float64(flagLong.Name)
		if !c.IsSet(flagLat.Name) || !c.IsSet(flagLong.Name) {
			hc := cleanhttp.DefaultClient()
			hc.Timeout = 10 * time.Second
			guessedLat, guessedLng, err := geoip.Locate(c.Context, hc, e.cache, geoip.DefaultEndpoint)
			if err != nil {
				return err
			}
			if !c.IsSet(flagLat.Name) {
				lat = guessedLat
			}
			if !c.IsSet(flagLong.Name) {
				lng = guessedLng
			}
		}
		canteens, err = e.client.CanteensNear(c.Context, lat, lng, c.Float64(flagRadius.Name))
	}
	if err != nil {
		return err
	}

	if e.json {
		return e.renderer.JSON(canteens)
	}
	e.renderer.Canteens(canteens)
	return nil
}
