// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package grammer recognizes search phrases like
// "at park no fish on tomorrow vegan". A phrase is zero or more
// clauses in any order; keywords and aliases are case-insensitive.
// Alternatives are tried in declared order and the first match wins,
// so the order of alias alternatives below is a contract, not
// cosmetics.
package grammer

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var lex = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "whitespace", Pattern: `[ \t]+`},
	{Name: "Iso", Pattern: `\d{4}-\d{2}-\d{2}`},
	{Name: "Word", Pattern: `[A-Za-z]+`},
})

var parser = participle.MustBuild[Phrase](
	participle.Lexer(lex),
	participle.CaseInsensitive("Word"),
	participle.UseLookahead(4),
)

func Parse(s string) (*Phrase, error) {
	return parser.ParseString("", s)
}

type Phrase struct {
	Clauses []*Clause `parser:"@@*"`
}

type Clause struct {
	Location    *Location    `parser:"@@"`
	Exclude     *Exclude     `parser:"| @@"`
	Date        *Date        `parser:"| @@"`
	Restriction *Restriction `parser:"| @@"`
}

// Location names a canteen by alias. Several aliases (department
// nicknames included) map to the same canteen.
type Location struct {
	Park         bool `parser:"'at' 'mensa'? ( @('am'? 'park' | 'main')"`
	Elsterbecken bool `parser:"| @('am'? 'elsterbecken' | 'jahnallee')"`
	Academica    bool `parser:"| @'academica'"`
	Botanical    bool `parser:"| @('am'? 'botanischen'? 'garten' | 'botanical' 'garden'? | 'physics' | 'chemistry')"`
	Medical      bool `parser:"| @('am'? 'medizincampus' | 'liebigstrasse' | 'medicine')"`
	Peters       bool `parser:"| @('peterssteinweg' | 'peters')"`
	Schoenauer   bool `parser:"| @('schoenauer' 'strasse'?)"`
	Tierklinik   bool `parser:"| @('tierklinik' | 'vet')"`
	Dittrichring bool `parser:"| @('cafeteria'? 'dittrichring' | 'ring')"`
	All          bool `parser:"| @('all' | 'everywhere') )"`
}

type Exclude struct {
	Pig     bool `parser:"'no' ( @'pig'"`
	Fish    bool `parser:"| @'fish'"`
	Alcohol bool `parser:"| @('alcohol' | 'booze') )"`
}

type Date struct {
	Pos      lexer.Position
	Today    bool   `parser:"'on' ( @'today'"`
	Tomorrow bool   `parser:"| @'tomorrow'"`
	Iso      string `parser:"| @Iso"`
	Weekday  string `parser:"| @('monday' | 'mon' | 'tuesday' | 'tue' | 'wednesday' | 'wed' | 'thursday' | 'thu' | 'friday' | 'fri' | 'saturday' | 'sat' | 'sunday' | 'sun') )"`
}

type Restriction struct {
	Vegan      bool `parser:"@'vegan'"`
	Vegetarian bool `parser:"| @('vegetarian' | 'veggie')"`
	Flexible   bool `parser:"| @'flexible'"`
}
