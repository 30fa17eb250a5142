// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"mensa.local/cli/common/config"
	"mensa.local/cli/common/menu"
	"mensa.local/cli/common/render"
	"mensa.local/cli/common/rules"
	"mensa.local/cli/common/search"
)

var flagID = &cli.IntFlag{
	Name:    "id",
	Aliases: []string{"i"},
	Usage:   "canteen id for which to fetch meals",
	EnvVars: []string{"MENSA_ID"},
}

var flagDate = &cli.StringFlag{
	Name:    "date",
	Aliases: []string{"d"},
	Usage:   "date to display: today, tomorrow, a weekday or yyyy-mm-dd",
	Value:   "today",
	EnvVars: []string{"MENSA_DATE"},
}

var flagPrice = &cli.StringSliceFlag{
	Name:    "price",
	Aliases: []string{"p"},
	Usage:   "price tags to display (student|employee|other)",
	EnvVars: []string{"MENSA_PRICES"},
}

var flagOverwriteFilter = &cli.BoolFlag{
	Name:    "overwrite-filter",
	Usage:   "ignore the filter rules from the configuration file",
	EnvVars: []string{"MENSA_OVERWRITE_FILTER"},
}

var flagOverwriteFavs = &cli.BoolFlag{
	Name:    "overwrite-favs",
	Usage:   "ignore the favourites rules from the configuration file",
	EnvVars: []string{"MENSA_OVERWRITE_FAVS"},
}

// One allow/deny flag pair per pattern kind, for the filter and the
// favourites rule set each.
var (
	flagFilterTag    = &cli.StringSliceFlag{Name: "filter-tag", Usage: "only show meals with one of these tags", EnvVars: []string{"MENSA_FILTER_TAG_ALLOW"}}
	flagNoFilterTag  = &cli.StringSliceFlag{Name: "no-filter-tag", Usage: "hide meals with one of these tags", EnvVars: []string{"MENSA_FILTER_TAG_DENY"}}
	flagFilterCat    = &cli.StringSliceFlag{Name: "filter-category", Usage: "only show meals whose category matches one of these regexes", EnvVars: []string{"MENSA_FILTER_CATEGORY_ALLOW"}}
	flagNoFilterCat  = &cli.StringSliceFlag{Name: "no-filter-category", Usage: "hide meals whose category matches one of these regexes", EnvVars: []string{"MENSA_FILTER_CATEGORY_DENY"}}
	flagFilterName   = &cli.StringSliceFlag{Name: "filter-name", Usage: "only show meals whose name matches one of these regexes", EnvVars: []string{"MENSA_FILTER_NAME_ALLOW"}}
	flagNoFilterName = &cli.StringSliceFlag{Name: "no-filter-name", Usage: "hide meals whose name matches one of these regexes", EnvVars: []string{"MENSA_FILTER_NAME_DENY"}}
	flagFavsTag      = &cli.StringSliceFlag{Name: "favs-tag", Usage: "highlight meals with one of these tags", EnvVars: []string{"MENSA_FAVS_TAG_ALLOW"}}
	flagNoFavsTag    = &cli.StringSliceFlag{Name: "no-favs-tag", Usage: "never highlight meals with one of these tags", EnvVars: []string{"MENSA_FAVS_TAG_DENY"}}
	flagFavsCat      = &cli.StringSliceFlag{Name: "favs-category", Usage: "highlight meals whose category matches one of these regexes", EnvVars: []string{"MENSA_FAVS_CATEGORY_ALLOW"}}
	flagNoFavsCat    = &cli.StringSliceFlag{Name: "no-favs-category", Usage: "never highlight meals whose category matches one of these regexes", EnvVars: []string{"MENSA_FAVS_CATEGORY_DENY"}}
	flagFavsName     = &cli.StringSliceFlag{Name: "favs-name", Usage: "highlight meals whose name matches one of these regexes", EnvVars: []string{"MENSA_FAVS_NAME_ALLOW"}}
	flagNoFavsName   = &cli.StringSliceFlag{Name: "no-favs-name", Usage: "never highlight meals whose name matches one of these regexes", EnvVars: []string{"MENSA_FAVS_NAME_DENY"}}
)

var mealsCommand = &cli.Command{
	Name:      "meals",
	Aliases:   []string{"m"},
	Usage:     "show meals (the default command)",
	ArgsUsage: "[search phrase, e.g. \"at park no fish on tomorrow vegan\"]",
	Flags: []cli.Flag{
		flagID,
		flagDate,
		flagPrice,
		flagOverwriteFilter,
		flagFilterTag,
		flagNoFilterTag,
		flagFilterCat,
		flagNoFilterCat,
		flagFilterName,
		flagNoFilterName,
		flagOverwriteFavs,
		flagFavsTag,
		flagNoFavsTag,
		flagFavsCat,
		flagNoFavsCat,
		flagFavsName,
		flagNoFavsName,
	},
	Action: mealsAction,
}

func mealsAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}

	phrase := strings.Join(c.Args().Slice(), " ")
	q, err := search.Parse(phrase)
	if err != nil {
		return fmt.Errorf("cannot understand %q: %w", phrase, err)
	}

	// The phrase wins over flags, flags over the configuration file.
	spec := q.Date
	if spec == nil {
		spec, err = search.ParseDate(c.String(flagDate.Name))
		if err != nil {
			return err
		}
	}
	date := spec.Resolve(time.Now())

	classifier, err := buildClassifier(c, e.file, q)
	if err != nil {
		return err
	}
	prices, err := selectPrices(c, e.file)
	if err != nil {
		return err
	}
	canteens, all, err := selectCanteens(c, e, q)
	if err != nil {
		return err
	}

	type canteenMeals struct {
		Canteen menu.Canteen      `json:"canteen"`
		Date    string            `json:"date"`
		Meals   []render.MealJSON `json:"meals"`
	}
	var out []canteenMeals

	for i := range canteens {
		canteen := &canteens[i]
		meals, err := e.client.Meals(c.Context, canteen.ID, date)
		if err != nil {
			if !all {
				return err
			}
			// One closed or misbehaving canteen must not kill the
			// whole tour.
			logrus.Warnf("skipping canteen %d: %v", canteen.ID, err)
			continue
		}
		classes := make([]rules.Classification, len(meals))
		for j := range meals {
			classes[j] = classifier.Classify(&meals[j])
		}
		if e.json {
			out = append(out, canteenMeals{
				Canteen: *canteen,
				Date:    date.Format("2006-01-02"),
				Meals:   render.MealsJSON(meals, classes),
			})
			continue
		}
		if i > 0 {
			fmt.Println()
		}
		e.renderer.Meals(canteen, date, meals, classes, prices)
	}
	if e.json {
		return e.renderer.JSON(out)
	}
	return nil
}

// buildClassifier assembles the filter and favourites rule sets from
// the configuration file, the CLI flags and the search phrase.
func buildClassifier(c *cli.Context, file *config.File, q *search.Query) (*rules.Classifier, error) {
	filterSpec := file.Filter
	flagFilter, err := ruleSpecFromFlags(c, flagFilterTag, flagNoFilterTag, flagFilterCat, flagNoFilterCat, flagFilterName, flagNoFilterName)
	if err != nil {
		return nil, err
	}
	if c.Bool(flagOverwriteFilter.Name) {
		filterSpec = flagFilter
	} else {
		filterSpec = filterSpec.Join(flagFilter)
	}
	filter, err := filterSpec.Compile()
	if err != nil {
		return nil, err
	}
	filter = filter.Joined(rules.FromQuery(q))

	favsSpec := file.Favourites
	flagFavs, err := ruleSpecFromFlags(c, flagFavsTag, flagNoFavsTag, flagFavsCat, flagNoFavsCat, flagFavsName, flagNoFavsName)
	if err != nil {
		return nil, err
	}
	if c.Bool(flagOverwriteFavs.Name) {
		favsSpec = flagFavs
	} else {
		favsSpec = favsSpec.Join(flagFavs)
	}
	favs, err := favsSpec.Compile()
	if err != nil {
		return nil, err
	}

	return rules.NewClassifier(filter, favs), nil
}

func ruleSpecFromFlags(c *cli.Context, tagAllow, tagDeny, catAllow, catDeny, nameAllow, nameDeny *cli.StringSliceFlag) (config.RuleSpec, error) {
	var spec config.RuleSpec
	var errs *multierror.Error
	parseTags := func(raws []string) []menu.Tag {
		var tags []menu.Tag
		for _, raw := range raws {
			t, err := menu.ParseTag(raw)
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			tags = append(tags, t)
		}
		return tags
	}
	spec.TagAllow = parseTags(c.StringSlice(tagAllow.Name))
	spec.TagDeny = parseTags(c.StringSlice(tagDeny.Name))
	spec.CategoryAllow = c.StringSlice(catAllow.Name)
	spec.CategoryDeny = c.StringSlice(catDeny.Name)
	spec.NameAllow = c.StringSlice(nameAllow.Name)
	spec.NameDeny = c.StringSlice(nameDeny.Name)
	return spec, errs.ErrorOrNil()
}

func selectPrices(c *cli.Context, file *config.File) ([]config.PriceTag, error) {
	if !c.IsSet(flagPrice.Name) {
		return file.PriceTags, nil
	}
	var prices []config.PriceTag
	for _, raw := range c.StringSlice(flagPrice.Name) {
		p, err := config.ParsePriceTag(raw)
		if err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// selectCanteens resolves which canteens to fetch meals for. The
// phrase wins over --id, --id over the configuration default.
func selectCanteens(c *cli.Context, e *env, q *search.Query) (canteens []menu.Canteen, all bool, err error) {
	if q.Canteen != nil && q.Canteen.All {
		canteens, err := e.client.Canteens(c.Context)
		return canteens, true, err
	}

	var id int
	switch {
	case q.Canteen != nil:
		id = q.Canteen.ID
	case c.IsSet(flagID.Name):
		id = c.Int(flagID.Name)
	case e.file.DefaultCanteenID != nil:
		id = *e.file.DefaultCanteenID
	default:
		return nil, false, errors.New("no canteen given: name one in the phrase, pass --id, or set default-canteen-id in the configuration")
	}
	canteen, err := e.client.Canteen(c.Context, id)
	if err != nil {
		return nil, false, err
	}
	return []menu.Canteen{*canteen}, false, nil
}
