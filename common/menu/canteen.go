// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package menu

import (
	"strings"
	"time"
)

// Canteen is the metadata of a canteen as returned by /canteens.
type Canteen struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Address     string    `json:"address"`
	Coordinates []float64 `json:"coordinates"`
}

// Day is one entry of a canteen's /days list.
type Day struct {
	Date   CivilDate `json:"date"`
	Closed bool      `json:"closed"`
}

// CivilDate is a calendar date without a time component, serialized as
// yyyy-mm-dd.
type CivilDate struct {
	time.Time
}

func (d *CivilDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d CivilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}
