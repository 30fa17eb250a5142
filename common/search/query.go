// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package search

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Query is the structured form of a search phrase. Nil or empty fields
// mean the caller's defaults apply; the parser never invents them.
type Query struct {
	Canteen     *CanteenRef
	Date        *DateSpec
	Excludes    ExcludeSet
	Restriction *RestrictionKind
}

// CanteenRef identifies a canteen by OpenMensa id, or all canteens at
// once.
type CanteenRef struct {
	All bool
	ID  int
}

func (r CanteenRef) String() string {
	if r.All {
		return "all"
	}
	return strconv.Itoa(r.ID)
}

// Canteen ids of the Leipzig canteens known to the phrase grammar.
const (
	CanteenAmPark            = 106
	CanteenSchoenauerStr     = 111
	CanteenMedizincampus     = 115
	CanteenAcademica         = 118
	CanteenBotanischerGarten = 127
	CanteenTierklinik        = 140
	CanteenElsterbecken      = 153
	CanteenPeterssteinweg    = 162
	CanteenDittrichring      = 170
)

// DateKind enumerates the forms a date clause can take.
type DateKind int

const (
	DateToday DateKind = iota
	DateTomorrow
	DateExplicit
	DateWeekday
)

// DateSpec is a symbolic date. Resolve turns it into a concrete day.
type DateSpec struct {
	Kind    DateKind
	Year    int
	Month   time.Month
	Day     int
	Weekday time.Weekday
}

// Resolve maps the spec onto a concrete date relative to today.
// Weekdays resolve to the next matching day, today included.
func (d *DateSpec) Resolve(today time.Time) time.Time {
	switch d.Kind {
	case DateTomorrow:
		return today.AddDate(0, 0, 1)
	case DateExplicit:
		return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, today.Location())
	case DateWeekday:
		t := today
		for t.Weekday() != d.Weekday {
			t = t.AddDate(0, 0, 1)
		}
		return t
	default:
		return today
	}
}

// ExcludeKind enumerates the things a meal can be rejected for.
type ExcludeKind int

const (
	ExcludePig ExcludeKind = iota
	ExcludeFish
	ExcludeAlcohol
)

func (k ExcludeKind) String() string {
	switch k {
	case ExcludePig:
		return "pig"
	case ExcludeFish:
		return "fish"
	case ExcludeAlcohol:
		return "alcohol"
	default:
		return fmt.Sprintf("ExcludeKind(%d)", int(k))
	}
}

// ExcludeSet collects exclusions; duplicates collapse.
type ExcludeSet map[ExcludeKind]struct{}

func (s ExcludeSet) Add(k ExcludeKind)      { s[k] = struct{}{} }
func (s ExcludeSet) Has(k ExcludeKind) bool { _, ok := s[k]; return ok }

func (s ExcludeSet) List() []ExcludeKind {
	kinds := make([]ExcludeKind, 0, len(s))
	for k := range s {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// RestrictionKind enumerates dietary restrictions. A query holds at
// most one.
type RestrictionKind int

const (
	RestrictionVegan RestrictionKind = iota
	RestrictionVegetarian
	RestrictionFlexible
)

func (k RestrictionKind) String() string {
	switch k {
	case RestrictionVegan:
		return "vegan"
	case RestrictionVegetarian:
		return "vegetarian"
	case RestrictionFlexible:
		return "flexible"
	default:
		return fmt.Sprintf("RestrictionKind(%d)", int(k))
	}
}
