// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package geoip_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-cleanhttp"

	"mensa.local/cli/common/fetchcache"
	"mensa.local/cli/common/geoip"
)

func TestLocate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"latitude": 51.34, "longitude": 12.38, "country": "Germany"}`)
	}))
	defer ts.Close()
	cache, err := fetchcache.New(t.TempDir())
	if err != nil {
		t.Fatalf("fetchcache.New: %v", err)
	}

	lat, lng, err := geoip.Locate(context.Background(), cleanhttp.DefaultClient(), cache, ts.URL)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if lat != 51.34 || lng != 12.38 {
		t.Errorf("Locate = (%v, %v); want (51.34, 12.38)", lat, lng)
	}
}

func TestLocate_BadResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer ts.Close()
	cache, err := fetchcache.New(t.TempDir())
	if err != nil {
		t.Fatalf("fetchcache.New: %v", err)
	}

	if _, _, err := geoip.Locate(context.Background(), cleanhttp.DefaultClient(), cache, ts.URL); err == nil {
		t.Error("Locate with a broken response succeeded; want error")
	}
}
