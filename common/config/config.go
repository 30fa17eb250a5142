// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config loads the optional INI configuration file and
// compiles the filter and favourites sections into rule sets.
//
// Example:
//
//	[mensa]
//	default-canteen-id = 106
//	price-tags = student, employee
//
//	[filter.tag]
//	deny = Fish, Pig
//
//	[favourites.category]
//	allow = (?i)vegan
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"

	"mensa.local/cli/common/menu"
	"mensa.local/cli/common/rules"
)

// PriceTag selects which price column to display.
type PriceTag int

const (
	PriceStudent PriceTag = iota
	PriceEmployee
	PriceOther
)

func (p PriceTag) String() string {
	switch p {
	case PriceStudent:
		return "student"
	case PriceEmployee:
		return "employee"
	case PriceOther:
		return "other"
	default:
		return fmt.Sprintf("PriceTag(%d)", int(p))
	}
}

func ParsePriceTag(s string) (PriceTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "students":
		return PriceStudent, nil
	case "employee", "employees":
		return PriceEmployee, nil
	case "other", "others":
		return PriceOther, nil
	default:
		return 0, fmt.Errorf("unknown price tag %q (expected student, employee or other)", s)
	}
}

// RuleSpec is the raw, uncompiled form of one rule set as it appears
// in the configuration file or on the command line.
type RuleSpec struct {
	TagAllow      []menu.Tag
	TagDeny       []menu.Tag
	CategoryAllow []string
	CategoryDeny  []string
	NameAllow     []string
	NameDeny      []string
}

// Join appends o's lists to a copy of s; used to layer CLI flags on
// top of the file.
func (s RuleSpec) Join(o RuleSpec) RuleSpec {
	return RuleSpec{
		TagAllow:      append(append([]menu.Tag(nil), s.TagAllow...), o.TagAllow...),
		TagDeny:       append(append([]menu.Tag(nil), s.TagDeny...), o.TagDeny...),
		CategoryAllow: append(append([]string(nil), s.CategoryAllow...), o.CategoryAllow...),
		CategoryDeny:  append(append([]string(nil), s.CategoryDeny...), o.CategoryDeny...),
		NameAllow:     append(append([]string(nil), s.NameAllow...), o.NameAllow...),
		NameDeny:      append(append([]string(nil), s.NameDeny...), o.NameDeny...),
	}
}

// Compile turns the spec into a rule set. All broken regexes are
// reported at once.
func (s RuleSpec) Compile() (*rules.RuleSet, error) {
	var errs *multierror.Error
	allow, err := rules.CompilePatterns(s.TagAllow, s.CategoryAllow, s.NameAllow)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	deny, err := rules.CompilePatterns(s.TagDeny, s.CategoryDeny, s.NameDeny)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return rules.NewRuleSet(allow, deny), nil
}

// File is the parsed configuration file.
type File struct {
	DefaultCanteenID *int
	PriceTags        []PriceTag
	Filter           RuleSpec
	Favourites       RuleSpec
}

// DefaultPath is ~/.config/mensa/config.ini.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mensa", "config.ini"), nil
}

// DefaultCacheDir is ~/.cache/mensa.
func DefaultCacheDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "mensa"), nil
}

// Load reads and validates the configuration file at path.
func Load(path string) (*File, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	f := &File{}
	var errs *multierror.Error

	mensa := cfg.Section("mensa")
	if key, err := mensa.GetKey("default-canteen-id"); err == nil {
		id, err := key.Int()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("default-canteen-id: %w", err))
		} else {
			f.DefaultCanteenID = &id
		}
	}
	for _, raw := range keyList(mensa, "price-tags") {
		p, err := ParsePriceTag(raw)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		f.PriceTags = append(f.PriceTags, p)
	}

	f.Filter = loadRuleSpec(cfg, "filter", &errs)
	f.Favourites = loadRuleSpec(cfg, "favourites", &errs)

	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func loadRuleSpec(cfg *ini.File, name string, errs **multierror.Error) RuleSpec {
	var spec RuleSpec
	tagSec := cfg.Section(name + ".tag")
	for _, raw := range keyList(tagSec, "allow") {
		t, err := menu.ParseTag(raw)
		if err != nil {
			*errs = multierror.Append(*errs, err)
			continue
		}
		spec.TagAllow = append(spec.TagAllow, t)
	}
	for _, raw := range keyList(tagSec, "deny") {
		t, err := menu.ParseTag(raw)
		if err != nil {
			*errs = multierror.Append(*errs, err)
			continue
		}
		spec.TagDeny = append(spec.TagDeny, t)
	}
	catSec := cfg.Section(name + ".category")
	spec.CategoryAllow = keyList(catSec, "allow")
	spec.CategoryDeny = keyList(catSec, "deny")
	nameSec := cfg.Section(name + ".name")
	spec.NameAllow = keyList(nameSec, "allow")
	spec.NameDeny = keyList(nameSec, "deny")
	return spec
}

func keyList(sec *ini.Section, name string) []string {
	key, err := sec.GetKey(name)
	if err != nil {
		return nil
	}
	var out []string
	for _, v := range key.Strings(",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
