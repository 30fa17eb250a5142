// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package search turns free-form phrases like
// "at park no fish on tomorrow vegan" into structured queries.
package search

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"

	"mensa.local/cli/common/search/internal/grammer"
)

// ParseError reports the first position at which a phrase could not be
// understood. A phrase is never partially applied.
type ParseError struct {
	Offset  int
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parse interprets a search phrase. An empty phrase is valid and
// yields a query with every field absent.
func Parse(s string) (*Query, error) {
	if strings.TrimSpace(s) == "" {
		return &Query{Excludes: make(ExcludeSet)}, nil
	}
	p, err := grammer.Parse(s)
	if err != nil {
		return nil, wrapParseError(err)
	}
	return compilePhrase(p)
}

func wrapParseError(err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		return &ParseError{
			Offset:  pos.Offset,
			Line:    pos.Line,
			Column:  pos.Column,
			Message: perr.Message(),
		}
	}
	return err
}

// compilePhrase folds the recognized clauses, in phrase order, into a
// Query. Repeated clauses are resolved per kind: location and date
// keep the first occurrence (naming two locations is almost certainly
// a typo, so the rest is ignored rather than rejected), excludes
// accumulate, and restriction keeps the last occurrence.
func compilePhrase(p *grammer.Phrase) (*Query, error) {
	q := &Query{Excludes: make(ExcludeSet)}
	for _, c := range p.Clauses {
		switch {
		case c.Location != nil:
			if q.Canteen == nil {
				ref := compileLocation(c.Location)
				q.Canteen = &ref
			}
		case c.Exclude != nil:
			q.Excludes.Add(compileExclude(c.Exclude))
		case c.Date != nil:
			if q.Date == nil {
				d, err := compileDate(c.Date)
				if err != nil {
					return nil, err
				}
				q.Date = d
			}
		case c.Restriction != nil:
			r := compileRestriction(c.Restriction)
			q.Restriction = &r
		}
	}
	return q, nil
}

func compileLocation(g *grammer.Location) CanteenRef {
	switch {
	case g.Park:
		return CanteenRef{ID: CanteenAmPark}
	case g.Elsterbecken:
		return CanteenRef{ID: CanteenElsterbecken}
	case g.Academica:
		return CanteenRef{ID: CanteenAcademica}
	case g.Botanical:
		return CanteenRef{ID: CanteenBotanischerGarten}
	case g.Medical:
		return CanteenRef{ID: CanteenMedizincampus}
	case g.Peters:
		return CanteenRef{ID: CanteenPeterssteinweg}
	case g.Schoenauer:
		return CanteenRef{ID: CanteenSchoenauerStr}
	case g.Tierklinik:
		return CanteenRef{ID: CanteenTierklinik}
	case g.Dittrichring:
		return CanteenRef{ID: CanteenDittrichring}
	default:
		return CanteenRef{All: true}
	}
}

func compileExclude(g *grammer.Exclude) ExcludeKind {
	switch {
	case g.Pig:
		return ExcludePig
	case g.Fish:
		return ExcludeFish
	default:
		return ExcludeAlcohol
	}
}

func compileDate(g *grammer.Date) (*DateSpec, error) {
	switch {
	case g.Today:
		return &DateSpec{Kind: DateToday}, nil
	case g.Tomorrow:
		return &DateSpec{Kind: DateTomorrow}, nil
	case g.Iso != "":
		t, err := time.Parse("2006-01-02", g.Iso)
		if err != nil {
			return nil, &ParseError{
				Offset:  g.Pos.Offset,
				Line:    g.Pos.Line,
				Column:  g.Pos.Column,
				Message: fmt.Sprintf("invalid date %q", g.Iso),
			}
		}
		return &DateSpec{Kind: DateExplicit, Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
	default:
		day, ok := weekdayFor(g.Weekday)
		if !ok {
			return nil, &ParseError{
				Offset:  g.Pos.Offset,
				Line:    g.Pos.Line,
				Column:  g.Pos.Column,
				Message: fmt.Sprintf("unknown weekday %q", g.Weekday),
			}
		}
		return &DateSpec{Kind: DateWeekday, Weekday: day}, nil
	}
}

func compileRestriction(g *grammer.Restriction) RestrictionKind {
	switch {
	case g.Vegan:
		return RestrictionVegan
	case g.Vegetarian:
		return RestrictionVegetarian
	default:
		return RestrictionFlexible
	}
}

// weekdays is a priority-ordered match list; the first name the input
// is a prefix of wins.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

func weekdayFor(word string) (time.Weekday, bool) {
	w := strings.ToLower(word)
	if w == "" {
		return 0, false
	}
	for _, e := range weekdays {
		if strings.HasPrefix(e.name, w) {
			return e.day, true
		}
	}
	return 0, false
}

// ParseDate understands the date vocabulary of the phrase grammar
// standalone: today, tomorrow, yyyy-mm-dd and weekday names or
// abbreviations. Used for the --date flag.
func ParseDate(s string) (*DateSpec, error) {
	w := strings.ToLower(strings.TrimSpace(s))
	switch w {
	case "", "today":
		return &DateSpec{Kind: DateToday}, nil
	case "tomorrow":
		return &DateSpec{Kind: DateTomorrow}, nil
	}
	if t, err := time.Parse("2006-01-02", w); err == nil {
		return &DateSpec{Kind: DateExplicit, Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
	}
	if len(w) >= 3 {
		if day, ok := weekdayFor(w); ok {
			return &DateSpec{Kind: DateWeekday, Weekday: day}, nil
		}
	}
	return nil, fmt.Errorf("cannot parse date %q", s)
}
