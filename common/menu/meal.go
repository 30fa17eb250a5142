// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package menu

import "encoding/json"

// Prices lists the price of a meal per customer group in euros.
type Prices struct {
	Students  float64 `json:"students"`
	Employees float64 `json:"employees"`
	Others    float64 `json:"others"`
}

// Meal is a single dish served by a canteen on a day.
//
// The API returns dietary information as a flat list of free-text
// notes. Notes that match a known tag pattern become Tags, the rest
// are kept verbatim as Descs.
type Meal struct {
	ID       int
	Name     string
	Category string
	Tags     TagSet
	Descs    []string
	Prices   Prices
}

type rawMeal struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Notes    []string `json:"notes"`
	Prices   Prices   `json:"prices"`
}

func (m *Meal) UnmarshalJSON(data []byte) error {
	var raw rawMeal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = raw.ID
	m.Name = raw.Name
	m.Category = raw.Category
	m.Prices = raw.Prices
	m.Tags = make(TagSet)
	m.Descs = nil
	seen := make(map[string]struct{})
	for _, note := range raw.Notes {
		tags := TagsInNote(note)
		if len(tags) == 0 {
			if _, ok := seen[note]; !ok {
				seen[note] = struct{}{}
				m.Descs = append(m.Descs, note)
			}
			continue
		}
		for _, t := range tags {
			m.Tags.Add(t)
		}
	}
	return nil
}
