// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package rules classifies meals against user-configured allow/deny
// rule sets. A meal passes a rule set if the allow side is empty or
// any allow pattern matches, and no deny pattern matches.
package rules

import (
	"fmt"
	"regexp"

	"github.com/hashicorp/go-multierror"

	"mensa.local/cli/common/menu"
)

// Pattern matches one aspect of a meal. The implementations form a
// closed set: exact tag equality and regexes over the category or the
// meal name.
type Pattern interface {
	Match(m *menu.Meal) bool
}

type TagPattern struct {
	tag menu.Tag
}

func NewTagPattern(tag menu.Tag) *TagPattern {
	return &TagPattern{tag: tag}
}

func (p *TagPattern) Match(m *menu.Meal) bool { return m.Tags.Has(p.tag) }

func (p *TagPattern) String() string { return "tag:" + p.tag.String() }

type CategoryPattern struct {
	re *regexp.Regexp
}

// NewCategoryPattern compiles expr immediately so that a broken
// configuration fails once instead of degrading every evaluation.
func NewCategoryPattern(expr string) (*CategoryPattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid category pattern %q: %w", expr, err)
	}
	return &CategoryPattern{re: re}, nil
}

func (p *CategoryPattern) Match(m *menu.Meal) bool { return p.re.MatchString(m.Category) }

func (p *CategoryPattern) String() string { return "category:" + p.re.String() }

type NamePattern struct {
	re *regexp.Regexp
}

func NewNamePattern(expr string) (*NamePattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", expr, err)
	}
	return &NamePattern{re: re}, nil
}

func (p *NamePattern) Match(m *menu.Meal) bool { return p.re.MatchString(m.Name) }

func (p *NamePattern) String() string { return "name:" + p.re.String() }

// RuleSet is an immutable allow/deny pair of patterns.
type RuleSet struct {
	allow []Pattern
	deny  []Pattern
}

func NewRuleSet(allow, deny []Pattern) *RuleSet {
	return &RuleSet{allow: allow, deny: deny}
}

func (r *RuleSet) IsEmpty() bool {
	return r == nil || (len(r.allow) == 0 && len(r.deny) == 0)
}

// Evaluate reports whether the meal passes the rule set. An empty
// allow side permits everything; a deny match always rejects.
func (r *RuleSet) Evaluate(m *menu.Meal) bool {
	if r == nil {
		return true
	}
	allowed := len(r.allow) == 0
	for _, p := range r.allow {
		if p.Match(m) {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	for _, p := range r.deny {
		if p.Match(m) {
			return false
		}
	}
	return true
}

// Joined merges two rule sets into a new one; both allow and deny
// sides are concatenated.
func (r *RuleSet) Joined(o *RuleSet) *RuleSet {
	if r == nil {
		return o
	}
	if o == nil {
		return r
	}
	merged := &RuleSet{}
	merged.allow = append(append(merged.allow, r.allow...), o.allow...)
	merged.deny = append(append(merged.deny, r.deny...), o.deny...)
	return merged
}

// CompilePatterns builds patterns from tags and category/name regex
// strings. All invalid regexes are reported together.
func CompilePatterns(tags []menu.Tag, categories, names []string) ([]Pattern, error) {
	var pats []Pattern
	var errs *multierror.Error
	for _, t := range tags {
		pats = append(pats, NewTagPattern(t))
	}
	for _, expr := range categories {
		p, err := NewCategoryPattern(expr)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		pats = append(pats, p)
	}
	for _, expr := range names {
		p, err := NewNamePattern(expr)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		pats = append(pats, p)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return pats, nil
}

// Classification is the derived visibility of a meal; it is recomputed
// per evaluation and never stored.
type Classification struct {
	Visible     bool
	Highlighted bool
}

// Classifier evaluates the filter rule set and the favourites rule set
// independently. A filter deny always hides the meal, no matter what
// the favourites say.
type Classifier struct {
	filter     *RuleSet
	favourites *RuleSet
}

func NewClassifier(filter, favourites *RuleSet) *Classifier {
	return &Classifier{filter: filter, favourites: favourites}
}

func (c *Classifier) Classify(m *menu.Meal) Classification {
	return Classification{
		Visible: c.filter.Evaluate(m),
		// An empty favourites rule set highlights nothing, while an
		// empty filter rule set shows everything.
		Highlighted: !c.favourites.IsEmpty() && c.favourites.Evaluate(m),
	}
}
