// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rules

import (
	"mensa.local/cli/common/menu"
	"mensa.local/cli/common/search"
)

// FromQuery translates the dietary parts of a search phrase into a
// rule set: exclusions become tag denies, restrictions become tag
// allows. Vegetarian also allows vegan meals since those contain no
// meat either; flexible allows everything.
func FromQuery(q *search.Query) *RuleSet {
	var allow, deny []Pattern
	for _, ex := range q.Excludes.List() {
		switch ex {
		case search.ExcludePig:
			deny = append(deny, NewTagPattern(menu.TagPig))
		case search.ExcludeFish:
			deny = append(deny, NewTagPattern(menu.TagFish))
		case search.ExcludeAlcohol:
			deny = append(deny, NewTagPattern(menu.TagAlcohol))
		}
	}
	if q.Restriction != nil {
		switch *q.Restriction {
		case search.RestrictionVegan:
			allow = append(allow, NewTagPattern(menu.TagVegan))
		case search.RestrictionVegetarian:
			allow = append(allow, NewTagPattern(menu.TagVegan), NewTagPattern(menu.TagVegetarian))
		}
	}
	return NewRuleSet(allow, deny)
}
