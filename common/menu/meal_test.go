// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package menu_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"mensa.local/cli/common/menu"
)

func TestMealUnmarshalJSON(t *testing.T) {
	const data = `{
		"id": 5834946,
		"name": "Pasta mit Tomatensoße",
		"category": "Vegetarisches Gericht",
		"notes": [
			"enthält Gluten",
			"vegetarisch",
			"Hausgemachte Pasta",
			"Hausgemachte Pasta"
		],
		"prices": {"students": 2.65, "employees": 4.9, "others": 6.1}
	}`
	var got menu.Meal
	if err := json.Unmarshal([]byte(data), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := menu.Meal{
		ID:       5834946,
		Name:     "Pasta mit Tomatensoße",
		Category: "Vegetarisches Gericht",
		Tags: menu.TagSet{
			menu.TagGluten:     {},
			menu.TagVegetarian: {},
		},
		Descs:  []string{"Hausgemachte Pasta"},
		Prices: menu.Prices{Students: 2.65, Employees: 4.9, Others: 6.1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Meal mismatch (-want +got):\n%s", diff)
	}
}

func TestCivilDateJSON(t *testing.T) {
	var day menu.Day
	if err := json.Unmarshal([]byte(`{"date": "2023-03-14", "closed": true}`), &day); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC)
	if !day.Date.Equal(want) {
		t.Errorf("Date = %v; want %v", day.Date.Time, want)
	}
	if !day.Closed {
		t.Error("Closed = false; want true")
	}

	out, err := json.Marshal(day.Date)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `"2023-03-14"` {
		t.Errorf("Marshal = %s; want %q", out, "2023-03-14")
	}

	if err := json.Unmarshal([]byte(`"14.03.2023"`), &day.Date); err == nil {
		t.Error("Unmarshal of non-ISO date succeeded; want error")
	}
}
