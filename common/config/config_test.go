// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mensa.local/cli/common/config"
	"mensa.local/cli/common/menu"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[mensa]
default-canteen-id = 106
price-tags = student, employee

[filter.tag]
deny = Fish, Pig

[filter.category]
deny = (?i)grill

[favourites.tag]
allow = Vegan

[favourites.name]
allow = (?i)pasta, (?i)curry
`)
	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	id := 106
	want := &config.File{
		DefaultCanteenID: &id,
		PriceTags:        []config.PriceTag{config.PriceStudent, config.PriceEmployee},
		Filter: config.RuleSpec{
			TagDeny:      []menu.Tag{menu.TagFish, menu.TagPig},
			CategoryDeny: []string{"(?i)grill"},
		},
		Favourites: config.RuleSpec{
			TagAllow:  []menu.Tag{menu.TagVegan},
			NameAllow: []string{"(?i)pasta", "(?i)curry"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Empty(t *testing.T) {
	got, err := config.Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.DefaultCanteenID != nil || len(got.PriceTags) != 0 {
		t.Errorf("Load of empty file = %+v; want zero values", got)
	}
}

func TestLoad_ReportsAllErrors(t *testing.T) {
	path := writeConfig(t, `
[mensa]
price-tags = student, manager

[filter.tag]
deny = Fish, Bacon
`)
	_, err := config.Load(path)
	if err == nil {
		t.Fatal("Load succeeded; want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "manager") || !strings.Contains(msg, "Bacon") {
		t.Errorf("error %q does not mention both bad values", msg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Error("Load of a missing file succeeded; want error")
	}
}

func TestRuleSpecJoin(t *testing.T) {
	a := config.RuleSpec{
		TagDeny:   []menu.Tag{menu.TagFish},
		NameAllow: []string{"pasta"},
	}
	b := config.RuleSpec{
		TagDeny:       []menu.Tag{menu.TagPig},
		CategoryAllow: []string{"grill"},
	}
	got := a.Join(b)
	want := config.RuleSpec{
		TagDeny:       []menu.Tag{menu.TagFish, menu.TagPig},
		CategoryAllow: []string{"grill"},
		NameAllow:     []string{"pasta"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Join mismatch (-want +got):\n%s", diff)
	}
}

func TestRuleSpecCompile(t *testing.T) {
	spec := config.RuleSpec{
		TagDeny:   []menu.Tag{menu.TagFish},
		NameAllow: []string{"(?i)pasta"},
	}
	rs, err := spec.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if rs.IsEmpty() {
		t.Error("compiled rule set is empty")
	}

	bad := config.RuleSpec{CategoryAllow: []string{"("}, NameDeny: []string{"["}}
	if _, err := bad.Compile(); err == nil {
		t.Error("Compile of broken regexes succeeded; want error")
	}
}

func TestParsePriceTag(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want config.PriceTag
	}{
		{"student", config.PriceStudent},
		{"Students", config.PriceStudent},
		{" employee ", config.PriceEmployee},
		{"OTHERS", config.PriceOther},
	} {
		got, err := config.ParsePriceTag(tc.in)
		if err != nil {
			t.Errorf("ParsePriceTag(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePriceTag(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
	if _, err := config.ParsePriceTag("manager"); err == nil {
		t.Error("ParsePriceTag(\"manager\") succeeded; want error")
	}
}
