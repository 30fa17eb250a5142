// Copyright 2023 The Mensa Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package render writes meals, canteens and the tag catalog to a
// terminal, with an ASCII-only fallback and optional JSON output.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	isatty "github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
	wordwrap "github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"

	"mensa.local/cli/common/config"
	"mensa.local/cli/common/menu"
	"mensa.local/cli/common/rules"
)

const (
	namePre              = " ╭───╴"
	namePrePlain         = " - "
	nameContinuePre      = " ┊    "
	nameContinuePrePlain = "     "
	categoryPre          = " ├─╴"
	categoryPrePlain     = "   "
	notePre              = " ├╴"
	notePrePlain         = "   "
	noteContinuePre      = " ┊ "
	noteContinuePrePlain = "     "
	pricesPre            = " ╰╴"
	pricesPrePlain       = "   "

	minTermWidth     = 20
	defaultTermWidth = 80
)

// ColorMode says when to colorize output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto", "automatic":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return 0, fmt.Errorf("unknown color mode %q (expected always, auto or never)", s)
	}
}

type Renderer struct {
	out   io.Writer
	plain bool
	color bool
	width int
}

func New(out io.Writer, plain bool, mode ColorMode) *Renderer {
	color := false
	switch mode {
	case ColorAlways:
		color = true
	case ColorAuto:
		color = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
	return &Renderer{out: out, plain: plain, color: color, width: terminalWidth()}
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		if w < minTermWidth {
			return minTermWidth
		}
		return w
	}
	return defaultTermWidth
}

func (r *Renderer) paint(s, style string) string {
	if !r.color {
		return s
	}
	return ansi.Color(s, style)
}

func (r *Renderer) pick(fancy, plain string) string {
	if r.plain {
		return plain
	}
	return fancy
}

// Meals prints the visible meals of one canteen for one day, in the
// order given. Highlighted meals get an accent color, or a star
// suffix in plain mode.
func (r *Renderer) Meals(canteen *menu.Canteen, date time.Time, meals []menu.Meal, classes []rules.Classification, prices []config.PriceTag) {
	fmt.Fprintf(r.out, "%s %s\n",
		r.paint(canteen.Name, "default+b"),
		r.paint(date.Format("Mon, 2006-01-02"), "black+h"))
	shown := 0
	for i := range meals {
		if !classes[i].Visible {
			continue
		}
		r.meal(&meals[i], classes[i].Highlighted, prices)
		shown++
	}
	if shown == 0 {
		fmt.Fprintf(r.out, "%s\n", r.paint("No meals to show.", "black+h"))
	}
}

func (r *Renderer) meal(m *menu.Meal, highlighted bool, prices []config.PriceTag) {
	name := m.Name
	if r.plain && highlighted {
		name += " *"
	}
	style := "default+b"
	if highlighted {
		style = "yellow+b"
	}
	pre := r.pick(namePre, namePrePlain)
	wrapped := wordwrap.WrapString(name, r.wrapWidth(len(namePre)))
	for i, line := range strings.Split(wrapped, "\n") {
		prefix := r.pick(nameContinuePre, nameContinuePrePlain)
		if i == 0 {
			prefix = pre
		}
		fmt.Fprintf(r.out, "%s%s\n", prefix, r.paint(line, style))
	}

	category := r.paint(m.Category, "cyan")
	if marks := r.primaryMarks(m); marks != "" {
		category += " " + marks
	}
	fmt.Fprintf(r.out, "%s%s\n", r.pick(categoryPre, categoryPrePlain), category)

	for _, desc := range m.Descs {
		wrapped := wordwrap.WrapString(desc, r.wrapWidth(len(notePre)))
		for i, line := range strings.Split(wrapped, "\n") {
			prefix := r.pick(noteContinuePre, noteContinuePrePlain)
			if i == 0 {
				prefix = r.pick(notePre, notePrePlain)
			}
			fmt.Fprintf(r.out, "%s%s\n", prefix, r.paint(line, "black+h"))
		}
	}

	fmt.Fprintf(r.out, "%s%s\n", r.pick(pricesPre, pricesPrePlain), r.priceLine(m, prices))
}

// primaryMarks renders the primary tags next to the category, emojis
// unless plain output was requested.
func (r *Renderer) primaryMarks(m *menu.Meal) string {
	var marks []string
	for _, t := range m.Tags.List() {
		if !t.Primary() {
			continue
		}
		if r.plain {
			marks = append(marks, r.paint(t.String(), "green"))
		} else {
			marks = append(marks, t.Emoji())
		}
	}
	return strings.Join(marks, " ")
}

func (r *Renderer) priceLine(m *menu.Meal, prices []config.PriceTag) string {
	if len(prices) == 0 {
		prices = []config.PriceTag{config.PriceStudent, config.PriceEmployee, config.PriceOther}
	}
	var parts []string
	for _, p := range prices {
		var amount float64
		switch p {
		case config.PriceStudent:
			amount = m.Prices.Students
		case config.PriceEmployee:
			amount = m.Prices.Employees
		case config.PriceOther:
			amount = m.Prices.Others
		}
		parts = append(parts, fmt.Sprintf("%.2f€", amount))
	}
	line := r.paint(strings.Join(parts, " / "), "green")
	if ids := r.secondaryIDs(m); ids != "" {
		line += "  " + r.paint(ids, "black+h")
	}
	return line
}

func (r *Renderer) secondaryIDs(m *menu.Meal) string {
	var ids []string
	for _, t := range m.Tags.List() {
		if t.Primary() {
			continue
		}
		ids = append(ids, fmt.Sprintf("%d", t.ID()))
	}
	return strings.Join(ids, " ")
}

func (r *Renderer) wrapWidth(indent int) uint {
	w := r.width - indent
	if w < minTermWidth {
		w = minTermWidth
	}
	return uint(w)
}

const addressIndent = "     "

// Canteens prints a canteen list with ids, names and addresses.
func (r *Renderer) Canteens(canteens []menu.Canteen) {
	for i := range canteens {
		c := &canteens[i]
		fmt.Fprintf(r.out, "%s %s\n",
			r.paint(fmt.Sprintf("%4d", c.ID), "yellow+b"),
			r.paint(c.Name, "default+b"))
		wrapped := wordwrap.WrapString(c.Address, r.wrapWidth(len(addressIndent)))
		for _, line := range strings.Split(wrapped, "\n") {
			fmt.Fprintf(r.out, "%s%s\n", addressIndent, r.paint(line, "black+h"))
		}
	}
}

// Tags prints the tag catalog.
func (r *Renderer) Tags() {
	for _, t := range menu.AllTags() {
		mark := t.Emoji()
		if r.plain {
			mark = fmt.Sprintf("%2d", t.ID())
		}
		fmt.Fprintf(r.out, "%s %s\n", r.paint(mark, "yellow+b"), r.paint(t.String(), "default+b"))
		wrapped := wordwrap.WrapString(t.Describe(), r.wrapWidth(len(addressIndent)))
		for _, line := range strings.Split(wrapped, "\n") {
			fmt.Fprintf(r.out, "%s%s\n", addressIndent, r.paint(line, "black+h"))
		}
	}
}

// JSON writes v pretty-printed.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// MealJSON is the machine readable view of a classified meal. Hidden
// meals are omitted entirely.
type MealJSON struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Category     string      `json:"category"`
	Tags         []string    `json:"tags"`
	Descriptions []string    `json:"descriptions,omitempty"`
	Prices       menu.Prices `json:"prices"`
	Highlighted  bool        `json:"highlighted"`
}

func MealsJSON(meals []menu.Meal, classes []rules.Classification) []MealJSON {
	out := []MealJSON{}
	for i := range meals {
		if !classes[i].Visible {
			continue
		}
		m := &meals[i]
		var tags []string
		for _, t := range m.Tags.List() {
			tags = append(tags, t.String())
		}
		out = append(out, MealJSON{
			ID:           m.ID,
			Name:         m.Name,
			Category:     m.Category,
			Tags:         tags,
			Descriptions: m.Descs,
			Prices:       m.Prices,
			Highlighted:  classes[i].Highlighted,
		})
	}
	return out
}
