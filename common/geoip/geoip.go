// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package geoip guesses the user's position from their IP address.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mensa.local/cli/common/fetchcache"
)

const DefaultEndpoint = "https://api.geoip.rs"

const ttl = 5 * time.Minute

type position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Locate returns the latitude and longitude guessed for the current
// IP.
func Locate(ctx context.Context, hc *http.Client, cache *fetchcache.Cache, endpoint string) (lat, lng float64, err error) {
	resp, err := cache.Fetch(ctx, hc, endpoint, ttl)
	if err != nil {
		return 0, 0, fmt.Errorf("reading geoip service: %w", err)
	}
	var pos position
	if err := json.Unmarshal(resp.Body, &pos); err != nil {
		return 0, 0, fmt.Errorf("decoding geoip response: %w", err)
	}
	return pos.Latitude, pos.Longitude, nil
}
