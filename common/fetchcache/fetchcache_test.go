// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fetchcache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-cleanhttp"

	"mensa.local/cli/common/fetchcache"
)

// countingServer serves body with an ETag and answers conditional
// requests with 304. It records how often it was hit.
type countingServer struct {
	body     string
	etag     string
	requests int
	notMods  int
}

func (s *countingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requests++
	if s.etag != "" && r.Header.Get("If-None-Match") == s.etag {
		s.notMods++
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if s.etag != "" {
		w.Header().Set("ETag", s.etag)
	}
	w.Header().Set("X-Current-Page", "1")
	w.Header().Set("X-Total-Pages", "3")
	w.Header().Set("Link", `<http://example.com/page2>; rel="next"`)
	w.Write([]byte(s.body))
}

func newCache(t *testing.T) *fetchcache.Cache {
	t.Helper()
	c, err := fetchcache.New(t.TempDir())
	if err != nil {
		t.Fatalf("fetchcache.New: %v", err)
	}
	return c
}

func TestFetch_MissThenHit(t *testing.T) {
	srv := &countingServer{body: `{"ok": true}`}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	cache := newCache(t)
	hc := cleanhttp.DefaultClient()
	ctx := context.Background()

	got, err := cache.Fetch(ctx, hc, ts.URL, time.Hour)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.FromCache {
		t.Error("first Fetch reported FromCache")
	}
	if string(got.Body) != srv.body {
		t.Errorf("Body = %q; want %q", got.Body, srv.body)
	}
	wantPage := fetchcache.PageHeader{CurrentPage: 1, TotalPages: 3, NextPage: "http://example.com/page2"}
	if diff := cmp.Diff(wantPage, got.Page); diff != "" {
		t.Errorf("Page mismatch (-want +got):\n%s", diff)
	}

	got, err = cache.Fetch(ctx, hc, ts.URL, time.Hour)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if !got.FromCache {
		t.Error("second Fetch did not come from the cache")
	}
	if string(got.Body) != srv.body {
		t.Errorf("cached Body = %q; want %q", got.Body, srv.body)
	}
	if diff := cmp.Diff(wantPage, got.Page); diff != "" {
		t.Errorf("cached Page mismatch (-want +got):\n%s", diff)
	}
	if srv.requests != 1 {
		t.Errorf("server saw %d requests; want 1", srv.requests)
	}
}

func TestFetch_Revalidates(t *testing.T) {
	srv := &countingServer{body: "menu", etag: `"v1"`}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	cache := newCache(t)
	hc := cleanhttp.DefaultClient()
	ctx := context.Background()

	if _, err := cache.Fetch(ctx, hc, ts.URL, time.Hour); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// ttl 0 makes the entry immediately stale and forces a
	// conditional request.
	got, err := cache.Fetch(ctx, hc, ts.URL, 0)
	if err != nil {
		t.Fatalf("stale Fetch: %v", err)
	}
	if !got.FromCache {
		t.Error("revalidated Fetch did not come from the cache")
	}
	if string(got.Body) != srv.body {
		t.Errorf("Body = %q; want %q", got.Body, srv.body)
	}
	if srv.notMods != 1 {
		t.Errorf("server answered %d conditional requests; want 1", srv.notMods)
	}
}

func TestFetch_ServesStaleOnFailure(t *testing.T) {
	srv := &countingServer{body: "menu"}
	ts := httptest.NewServer(srv)
	cache := newCache(t)
	hc := cleanhttp.DefaultClient()
	ctx := context.Background()

	if _, err := cache.Fetch(ctx, hc, ts.URL, time.Hour); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	ts.Close()

	got, err := cache.Fetch(ctx, hc, ts.URL, 0)
	if err != nil {
		t.Fatalf("Fetch with dead server: %v", err)
	}
	if !got.FromCache || string(got.Body) != srv.body {
		t.Errorf("Fetch = %+v; want stale cached body %q", got, srv.body)
	}
}

func TestFetch_ErrorWithoutCache(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	cache := newCache(t)

	if _, err := cache.Fetch(context.Background(), cleanhttp.DefaultClient(), ts.URL, time.Hour); err == nil {
		t.Error("Fetch of a 404 succeeded; want error")
	}
}

func TestClear(t *testing.T) {
	srv := &countingServer{body: "menu"}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	cache := newCache(t)
	hc := cleanhttp.DefaultClient()
	ctx := context.Background()

	if _, err := cache.Fetch(ctx, hc, ts.URL, time.Hour); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := cache.Fetch(ctx, hc, ts.URL, time.Hour)
	if err != nil {
		t.Fatalf("Fetch after Clear: %v", err)
	}
	if got.FromCache {
		t.Error("Fetch after Clear still came from the cache")
	}
	if srv.requests != 2 {
		t.Errorf("server saw %d requests; want 2", srv.requests)
	}
}
