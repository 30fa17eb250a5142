// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fetchcache is a disk cache for GET responses, keyed by the
// request URL. Entries fresher than their TTL are served locally;
// stale entries with an ETag are revalidated with If-None-Match; on a
// fetch failure a stale entry is served rather than nothing.
package fetchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// Probably only applicable to the current version of the OpenMensa
// API.
var linkNextPageRe = regexp.MustCompile(`<([^>]*)>;\s*rel="next"`)

// PageHeader carries the pagination headers of a response.
type PageHeader struct {
	CurrentPage int    `json:"current_page,omitempty"`
	TotalPages  int    `json:"total_pages,omitempty"`
	NextPage    string `json:"next_page,omitempty"`
}

// Response is a possibly cached GET response.
type Response struct {
	Body      []byte
	ETag      string
	FetchedAt time.Time
	Page      PageHeader
	FromCache bool
}

type metadata struct {
	URL       string     `json:"url"`
	ETag      string     `json:"etag,omitempty"`
	FetchedAt time.Time  `json:"fetched_at"`
	Page      PageHeader `json:"page"`
}

// Cache stores response bodies zstd-compressed under dir, one metadata
// sidecar per entry. Writes take a directory-wide file lock so that
// concurrent invocations do not corrupt entries.
type Cache struct {
	dir  string
	now  func() time.Time
	lock *flock.Flock
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &Cache{
		dir:  dir,
		now:  time.Now,
		lock: flock.New(filepath.Join(dir, ".lock")),
		enc:  enc,
		dec:  dec,
	}, nil
}

// Fetch returns the response for url, from disk when fresh enough.
func (c *Cache) Fetch(ctx context.Context, hc *http.Client, url string, ttl time.Duration) (*Response, error) {
	key := cacheKey(url)
	meta, body, err := c.load(key)
	if err != nil {
		logrus.Warnf("discarding unreadable cache entry for %s: %v", url, err)
		meta = nil
	}
	if meta != nil && c.now().Sub(meta.FetchedAt) < ttl {
		logrus.Debugf("cache hit for %s", url)
		return cachedResponse(meta, body), nil
	}

	etag := ""
	if meta != nil {
		etag = meta.ETag
		logrus.Debugf("cache stale for %s", url)
	} else {
		logrus.Debugf("cache miss for %s", url)
	}

	resp, err := c.get(ctx, hc, url, etag)
	if err != nil {
		if meta != nil {
			logrus.Warnf("fetching %s failed, serving stale cache entry: %v", url, err)
			return cachedResponse(meta, body), nil
		}
		return nil, err
	}

	if resp.status == http.StatusNotModified && meta != nil {
		meta.FetchedAt = c.now()
		if err := c.store(key, meta, body); err != nil {
			logrus.Warnf("refreshing cache entry for %s: %v", url, err)
		}
		return cachedResponse(meta, body), nil
	}
	if resp.status != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.status)
	}

	meta = &metadata{
		URL:       url,
		ETag:      resp.etag,
		FetchedAt: c.now(),
		Page:      resp.page,
	}
	if err := c.store(key, meta, resp.body); err != nil {
		logrus.Warnf("writing cache entry for %s: %v", url, err)
	}
	return &Response{
		Body:      resp.body,
		ETag:      resp.etag,
		FetchedAt: meta.FetchedAt,
		Page:      resp.page,
	}, nil
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".zst") && !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func cachedResponse(meta *metadata, body []byte) *Response {
	return &Response{
		Body:      body,
		ETag:      meta.ETag,
		FetchedAt: meta.FetchedAt,
		Page:      meta.Page,
		FromCache: true,
	}
}

func (c *Cache) load(key string) (*metadata, []byte, error) {
	raw, err := os.ReadFile(filepath.Join(c.dir, key+".json"))
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, nil, err
	}
	compressed, err := os.ReadFile(filepath.Join(c.dir, key+".zst"))
	if err != nil {
		return nil, nil, err
	}
	body, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nil, err
	}
	return &meta, body, nil
}

func (c *Cache) store(key string, meta *metadata, body []byte) error {
	if err := c.lock.Lock(); err != nil {
		return err
	}
	defer c.lock.Unlock()

	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.dir, key+".zst"), c.enc.EncodeAll(body, nil), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key+".json"), raw, 0o644)
}

type rawResponse struct {
	status int
	etag   string
	page   PageHeader
	body   []byte
}

func (c *Cache) get(ctx context.Context, hc *http.Client, url, etag string) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &rawResponse{
		status: resp.StatusCode,
		etag:   resp.Header.Get("ETag"),
		page:   pageHeader(resp.Header),
		body:   body,
	}, nil
}

func pageHeader(h http.Header) PageHeader {
	var page PageHeader
	if n, err := strconv.Atoi(h.Get("X-Current-Page")); err == nil {
		page.CurrentPage = n
	}
	if n, err := strconv.Atoi(h.Get("X-Total-Pages")); err == nil {
		page.TotalPages = n
	}
	if m := linkNextPageRe.FindStringSubmatch(h.Get("Link")); m != nil {
		page.NextPage = m[1]
	}
	return page
}
