// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package menu defines the data model shared by the OpenMensa client,
// the filter rules and the renderer: meals, canteens and the tag
// catalog derived from free-text meal notes.
package menu

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Tag describes a dietary or allergen attribute of a meal. The numeric
// value doubles as the tag id shown to users and accepted in
// configuration files.
type Tag int

const (
	TagAlcohol Tag = iota
	TagAntioxidant
	TagBlackened
	TagColoring
	TagCow
	TagEgg
	TagFish
	TagFlavorEnhancer
	TagGarlic
	TagGluten
	TagLupin
	TagMilk
	TagMustard
	TagNuts
	TagPhosphate
	TagPig
	TagPoultry
	TagPreservative
	TagCelery
	TagSesame
	TagSoy
	TagSulfite
	TagSweetener
	TagVegan
	TagVegetarian

	tagCount
)

var tagNames = [...]string{
	"Alcohol",
	"Antioxidant",
	"Blackened",
	"Coloring",
	"Cow",
	"Egg",
	"Fish",
	"FlavorEnhancer",
	"Garlic",
	"Gluten",
	"Lupin",
	"Milk",
	"Mustard",
	"Nuts",
	"Phosphate",
	"Pig",
	"Poultry",
	"Preservative",
	"Celery",
	"Sesame",
	"Soy",
	"Sulfite",
	"Sweetener",
	"Vegan",
	"Vegetarian",
}

// tagPatterns derives tags from the free-text notes returned by the
// OpenMensa API. Must stay in the same order as the Tag constants.
var tagPatterns = [...]*regexp.Regexp{
	regexp.MustCompile(`(?i)alkohol`),
	regexp.MustCompile(`(?i)antioxidation`),
	regexp.MustCompile(`(?i)geschwärzt`),
	regexp.MustCompile(`(?i)farbstoff`),
	regexp.MustCompile(`(?i)rind`),
	regexp.MustCompile(`(?i)eier`),
	regexp.MustCompile(`(?i)fisch`),
	regexp.MustCompile(`(?i)geschmacksverstärker`),
	regexp.MustCompile(`(?i)knoblauch`),
	regexp.MustCompile(`(?i)gluten`),
	regexp.MustCompile(`(?i)lupine?`),
	regexp.MustCompile(`(?i)milch`),
	regexp.MustCompile(`(?i)senf`),
	regexp.MustCompile(`(?i)schalenfrüchte|nüsse`),
	regexp.MustCompile(`(?i)phosphat`),
	regexp.MustCompile(`(?i)schwein`),
	regexp.MustCompile(`(?i)geflügel`),
	regexp.MustCompile(`(?i)konservierung`),
	regexp.MustCompile(`(?i)sellerie`),
	regexp.MustCompile(`(?i)sesam`),
	regexp.MustCompile(`(?i)soja`),
	regexp.MustCompile(`(?i)sulfit|schwefel`),
	regexp.MustCompile(`(?i)süßungsmittel`),
	regexp.MustCompile(`(?i)vegan`),
	regexp.MustCompile(`(?i)fleischlos|vegetarisch|ohne fleisch`),
}

func (t Tag) String() string {
	if t < 0 || t >= tagCount {
		return fmt.Sprintf("Tag(%d)", int(t))
	}
	return tagNames[t]
}

func (t Tag) ID() int { return int(t) }

// Primary reports whether the tag is shown next to the meal name.
// Primary tags have an associated emoji and are not allergy
// information.
func (t Tag) Primary() bool {
	switch t {
	case TagCow, TagFish, TagPig, TagPoultry, TagVegan, TagVegetarian:
		return true
	default:
		return false
	}
}

func (t Tag) Emoji() string {
	switch t {
	case TagVegan:
		return "🌱"
	case TagVegetarian:
		return "🧀"
	case TagPig:
		return "🐖"
	case TagFish:
		return "🐟"
	case TagCow:
		return "🐄"
	case TagPoultry:
		return "🐓"
	default:
		return strconv.Itoa(int(t))
	}
}

// Describe explains the tag in english where the name alone does not
// suffice.
func (t Tag) Describe() string {
	switch t {
	case TagAlcohol:
		return "Contains alcohol"
	case TagAntioxidant:
		return "Contains an antioxidant"
	case TagBlackened:
		return "Contains ingredients that have been blackened, i.e. blackened olives"
	case TagColoring:
		return "Contains food coloring"
	case TagCow:
		return "Contains meat from cattle"
	case TagEgg:
		return "Contains egg"
	case TagFish:
		return "Contains fish"
	case TagFlavorEnhancer:
		return "Contains artificial flavor enhancer"
	case TagGarlic:
		return "Contains garlic"
	case TagGluten:
		return "Contains gluten"
	case TagLupin:
		return "Contains lupin"
	case TagMilk:
		return "Contains milk"
	case TagMustard:
		return "Contains mustard"
	case TagNuts:
		return "Contains nuts"
	case TagPhosphate:
		return "Contains phosphate"
	case TagPig:
		return "Contains meat from pig"
	case TagPoultry:
		return "Contains poultry meat"
	case TagPreservative:
		return "Contains artificial preservatives"
	case TagCelery:
		return "Contains celery"
	case TagSesame:
		return "Contains sesame"
	case TagSoy:
		return "Contains soy"
	case TagSulfite:
		return "Contains sulfite"
	case TagSweetener:
		return "Contains artificial sweetener"
	case TagVegan:
		return "Does not contain any animal produce"
	case TagVegetarian:
		return "Does not contain any meat"
	default:
		return ""
	}
}

// ParseTag resolves a tag name (case-insensitive) or numeric id as
// found in configuration files and CLI flags.
func ParseTag(s string) (Tag, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= int(tagCount) {
			return 0, fmt.Errorf("unknown tag id %d", n)
		}
		return Tag(n), nil
	}
	for i, name := range tagNames {
		if strings.EqualFold(name, s) {
			return Tag(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tag %q", s)
}

// AllTags returns every known tag in id order.
func AllTags() []Tag {
	tags := make([]Tag, tagCount)
	for i := range tags {
		tags[i] = Tag(i)
	}
	return tags
}

// TagsInNote derives tags from a raw note string. A note matching no
// pattern yields nil and is treated as a plain description.
func TagsInNote(note string) []Tag {
	var tags []Tag
	for i, re := range tagPatterns {
		if re.MatchString(note) {
			tags = append(tags, Tag(i))
		}
	}
	return tags
}

// TagSet is the set of tags attached to a meal.
type TagSet map[Tag]struct{}

func (s TagSet) Add(t Tag)      { s[t] = struct{}{} }
func (s TagSet) Has(t Tag) bool { _, ok := s[t]; return ok }

// List returns the tags in id order.
func (s TagSet) List() []Tag {
	tags := make([]Tag, 0, len(s))
	for t := range s {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
