// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package openmensa is a client for the OpenMensa v2 API. Every
// request flows through the fetch cache; canteen metadata is cached
// for a day, meal plans for an hour.
package openmensa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"mensa.local/cli/common/fetchcache"
	"mensa.local/cli/common/menu"
)

const DefaultEndpoint = "https://openmensa.org/api/v2"

const (
	TTLCanteens = 24 * time.Hour
	TTLMeals    = time.Hour

	requestTimeout = 10 * time.Second
)

type Client struct {
	hc       *http.Client
	endpoint string
	cache    *fetchcache.Cache
}

func NewClient(endpoint string, cache *fetchcache.Cache) *Client {
	hc := cleanhttp.DefaultClient()
	hc.Timeout = requestTimeout
	return &Client{hc: hc, endpoint: endpoint, cache: cache}
}

// Canteens lists every canteen in the database.
func (c *Client) Canteens(ctx context.Context) ([]menu.Canteen, error) {
	return c.canteenPages(ctx, c.endpoint+"/canteens")
}

// CanteensNear lists canteens within radius kilometers of the given
// position.
func (c *Client) CanteensNear(ctx context.Context, lat, lng, radius float64) ([]menu.Canteen, error) {
	v := url.Values{}
	v.Set("near[lat]", fmt.Sprintf("%v", lat))
	v.Set("near[lng]", fmt.Sprintf("%v", lng))
	v.Set("near[dist]", fmt.Sprintf("%v", radius))
	return c.canteenPages(ctx, c.endpoint+"/canteens?"+v.Encode())
}

// Canteen fetches the metadata of a single canteen.
func (c *Client) Canteen(ctx context.Context, id int) (*menu.Canteen, error) {
	resp, err := c.cache.Fetch(ctx, c.hc, fmt.Sprintf("%s/canteens/%d", c.endpoint, id), TTLCanteens)
	if err != nil {
		return nil, err
	}
	var canteen menu.Canteen
	if err := json.Unmarshal(resp.Body, &canteen); err != nil {
		return nil, fmt.Errorf("decoding canteen %d: %w", id, err)
	}
	return &canteen, nil
}

// Days lists the days a canteen publishes plans for.
func (c *Client) Days(ctx context.Context, id int) ([]menu.Day, error) {
	resp, err := c.cache.Fetch(ctx, c.hc, fmt.Sprintf("%s/canteens/%d/days", c.endpoint, id), TTLMeals)
	if err != nil {
		return nil, err
	}
	var days []menu.Day
	if err := json.Unmarshal(resp.Body, &days); err != nil {
		return nil, fmt.Errorf("decoding days of canteen %d: %w", id, err)
	}
	return days, nil
}

// Meals fetches the meal plan of a canteen for a date. The returned
// order is the API's order and must be preserved by callers.
func (c *Client) Meals(ctx context.Context, id int, date time.Time) ([]menu.Meal, error) {
	u := fmt.Sprintf("%s/canteens/%d/days/%s/meals", c.endpoint, id, date.Format("2006-01-02"))
	resp, err := c.cache.Fetch(ctx, c.hc, u, TTLMeals)
	if err != nil {
		return nil, err
	}
	var meals []menu.Meal
	if err := json.Unmarshal(resp.Body, &meals); err != nil {
		return nil, fmt.Errorf("decoding meals of canteen %d: %w", id, err)
	}
	return meals, nil
}

// canteenPages follows the pagination headers until the last page. The
// API returns empty lists past the end, which also terminates the
// walk.
func (c *Client) canteenPages(ctx context.Context, first string) ([]menu.Canteen, error) {
	var all []menu.Canteen
	next := first
	for next != "" {
		resp, err := c.cache.Fetch(ctx, c.hc, next, TTLCanteens)
		if err != nil {
			return nil, err
		}
		var page []menu.Canteen
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, fmt.Errorf("decoding canteen list: %w", err)
		}
		all = append(all, page...)
		if len(page) == 0 {
			break
		}
		if resp.Page.TotalPages == 0 || resp.Page.CurrentPage >= resp.Page.TotalPages {
			break
		}
		next = resp.Page.NextPage
	}
	return all, nil
}
