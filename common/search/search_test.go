// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package search_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mensa.local/cli/common/search"
)

func mustParse(t *testing.T, phrase string) *search.Query {
	t.Helper()
	q, err := search.Parse(phrase)
	if err != nil {
		t.Fatalf("search.Parse(%q): %v", phrase, err)
	}
	return q
}

func restriction(k search.RestrictionKind) *search.RestrictionKind { return &k }

func TestParse_FullPhrase(t *testing.T) {
	got := mustParse(t, "at Park no fish on tomorrow vegan")
	want := &search.Query{
		Canteen:     &search.CanteenRef{ID: search.CanteenAmPark},
		Date:        &search.DateSpec{Kind: search.DateTomorrow},
		Excludes:    search.ExcludeSet{search.ExcludeFish: {}},
		Restriction: restriction(search.RestrictionVegan),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, phrase := range []string{"", "   ", "\t"} {
		got := mustParse(t, phrase)
		want := &search.Query{Excludes: search.ExcludeSet{}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", phrase, diff)
		}
	}
}

func TestParse_FirstLocationWins(t *testing.T) {
	got := mustParse(t, "at park at academica")
	if got.Canteen == nil || got.Canteen.ID != search.CanteenAmPark {
		t.Errorf("Parse kept %v; want canteen %d", got.Canteen, search.CanteenAmPark)
	}
}

func TestParse_FirstDateWins(t *testing.T) {
	got := mustParse(t, "on mon on tue")
	want := &search.DateSpec{Kind: search.DateWeekday, Weekday: time.Monday}
	if diff := cmp.Diff(want, got.Date); diff != "" {
		t.Errorf("Parse date mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ExcludesAccumulate(t *testing.T) {
	got := mustParse(t, "no fish no fish no pig")
	want := search.ExcludeSet{search.ExcludeFish: {}, search.ExcludePig: {}}
	if diff := cmp.Diff(want, got.Excludes); diff != "" {
		t.Errorf("Parse excludes mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RestrictionLastWins(t *testing.T) {
	got := mustParse(t, "vegan flexible veggie")
	if got.Restriction == nil || *got.Restriction != search.RestrictionVegetarian {
		t.Errorf("Parse restriction = %v; want vegetarian", got.Restriction)
	}
}

func TestParse_OrderIndependent(t *testing.T) {
	want := mustParse(t, "at park no fish on tomorrow vegan")
	for _, phrase := range []string{
		"vegan at park no fish on tomorrow",
		"no fish vegan on tomorrow at park",
		"on tomorrow at park vegan no fish",
	} {
		got := mustParse(t, phrase)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", phrase, diff)
		}
	}
}

func TestParse_ExplicitDate(t *testing.T) {
	got := mustParse(t, "on 2022-01-31")
	want := &search.DateSpec{Kind: search.DateExplicit, Year: 2022, Month: time.January, Day: 31}
	if diff := cmp.Diff(want, got.Date); diff != "" {
		t.Errorf("Parse date mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_InvalidExplicitDate(t *testing.T) {
	_, err := search.Parse("on 2021-13-40")
	var perr *search.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse returned %v; want *ParseError", err)
	}
}

func TestParse_UnknownWordFails(t *testing.T) {
	_, err := search.Parse("at Nowhereville")
	var perr *search.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse returned %v; want *ParseError", err)
	}
	if perr.Offset != len("at ") {
		t.Errorf("ParseError offset = %d; want %d", perr.Offset, len("at "))
	}
}

func TestParse_NeverPartial(t *testing.T) {
	if q, err := search.Parse("no fish nonsense"); err == nil {
		t.Fatalf("Parse succeeded with %+v; want error", q)
	}
}

func TestDateSpecResolve(t *testing.T) {
	// A Monday.
	today := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		name string
		spec *search.DateSpec
		want time.Time
	}{
		{"today", &search.DateSpec{Kind: search.DateToday}, today},
		{"tomorrow", &search.DateSpec{Kind: search.DateTomorrow}, today.AddDate(0, 0, 1)},
		{
			"explicit",
			&search.DateSpec{Kind: search.DateExplicit, Year: 2023, Month: time.March, Day: 14},
			time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			"same weekday resolves to today",
			&search.DateSpec{Kind: search.DateWeekday, Weekday: time.Monday},
			today,
		},
		{
			"weekday scans forward",
			&search.DateSpec{Kind: search.DateWeekday, Weekday: time.Sunday},
			today.AddDate(0, 0, 6),
		},
	} {
		if got := tc.spec.Resolve(today); !got.Equal(tc.want) {
			t.Errorf("%s: Resolve = %v; want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want *search.DateSpec
	}{
		{"today", &search.DateSpec{Kind: search.DateToday}},
		{"", &search.DateSpec{Kind: search.DateToday}},
		{"tomorrow", &search.DateSpec{Kind: search.DateTomorrow}},
		{"WED", &search.DateSpec{Kind: search.DateWeekday, Weekday: time.Wednesday}},
		{"saturday", &search.DateSpec{Kind: search.DateWeekday, Weekday: time.Saturday}},
		{"2024-02-29", &search.DateSpec{Kind: search.DateExplicit, Year: 2024, Month: time.February, Day: 29}},
	} {
		got, err := search.ParseDate(tc.in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tc.in, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("ParseDate(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
	for _, in := range []string{"someday", "mo", "2021-13-40"} {
		if _, err := search.ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) succeeded; want error", in)
		}
	}
}
