// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package paper carries the standard paper-size table, its runtime
// "spaper" extension, and the unit-to-point conversion table.
package paper

import "strings"

// An Orientation constrains how a looked-up paper size's width and height
// are arranged.
type Orientation int

const (
	Auto Orientation = iota
	Portrait
	Landscape
)

// ParseOrientation accepts "portrait"/"horizontal"/"h" for Portrait and
// "landscape"/"vertical"/"v" for Landscape, defaulting to Auto for
// anything else, including "auto" itself and unrecognized names.
func ParseOrientation(s string) Orientation {
	switch strings.ToLower(s) {
	case "portrait", "horizontal", "h":
		return Portrait
	case "landscape", "vertical", "v":
		return Landscape
	default:
		return Auto
	}
}

// Size is a paper's width and height in points, unrotated.
type Size struct {
	Width, Height float64
}

// IsLandscape reports whether s is wider than it is tall.
func (s Size) IsLandscape() bool { return s.Width > s.Height }

// Oriented returns s with width and height swapped as needed so the
// result matches o. Auto leaves s unchanged.
func (s Size) Oriented(o Orientation) Size {
	switch {
	case o == Portrait && s.IsLandscape():
		return Size{s.Height, s.Width}
	case o == Landscape && !s.IsLandscape():
		return Size{s.Height, s.Width}
	default:
		return s
	}
}

// entry names are matched case-insensitively.
type entry struct {
	name string
	size Size
}

// standardSizes is the built-in table, in points (1/72 inch).
var standardSizes = []entry{
	{"a0", Size{2382, 3369}}, {"a1", Size{1684, 2382}}, {"a2", Size{1191, 1684}},
	{"a3", Size{842, 1191}}, {"a4", Size{595, 842}}, {"a5", Size{421, 595}},
	{"a6", Size{297, 420}}, {"a7", Size{210, 297}}, {"a8", Size{148, 210}},
	{"a9", Size{105, 148}}, {"a10", Size{73, 105}},
	{"b0", Size{2835, 4008}}, {"b1", Size{2004, 2835}}, {"b2", Size{1417, 2004}},
	{"b3", Size{1001, 1417}}, {"b4", Size{709, 1001}}, {"b5", Size{499, 709}},
	{"b6", Size{354, 499}},
	{"jisb0", Size{2920, 4127}}, {"jisb1", Size{2064, 2920}}, {"jisb2", Size{1460, 2064}},
	{"jisb3", Size{1032, 1460}}, {"jisb4", Size{729, 1032}}, {"jisb5", Size{516, 729}},
	{"jisb6", Size{363, 516}},
	{"c0", Size{2599, 3677}}, {"c1", Size{1837, 2599}}, {"c2", Size{1298, 1837}},
	{"c3", Size{918, 1298}}, {"c4", Size{649, 918}}, {"c5", Size{459, 649}},
	{"c6", Size{323, 459}},
	{"ledger", Size{1224, 792}}, {"tabloid", Size{792, 1224}},
	{"letter", Size{612, 792}}, {"halfletter", Size{396, 612}},
	{"statement", Size{396, 612}}, {"legal", Size{612, 1008}},
	{"executive", Size{540, 720}}, {"folio", Size{612, 936}},
	{"quarto", Size{610, 780}}, {"10x14", Size{720, 1008}},
	{"arche", Size{2592, 3456}}, {"archd", Size{1728, 2592}},
	{"archc", Size{1296, 1728}}, {"archb", Size{864, 1296}},
	{"archa", Size{648, 864}},
	{"flsa", Size{612, 936}}, {"flse", Size{612, 936}},
}

// A Table is a paper-size lookup, starting from the standard sizes and
// extendable at runtime via Add (the "spaper" command). New entries take
// precedence over the standard table on name collision.
type Table struct {
	custom []entry
}

// NewTable returns a Table preloaded with the standard sizes.
func NewTable() *Table { return &Table{} }

// Add defines (or overrides) a paper size, per "spaper(name, x, y)".
func (t *Table) Add(name string, width, height float64) {
	t.custom = append([]entry{{strings.ToLower(name), Size{width, height}}}, t.custom...)
}

// Lookup finds a paper size by name (case-insensitive) and applies o,
// returning false if name is not in the table.
func (t *Table) Lookup(name string, o Orientation) (Size, bool) {
	lower := strings.ToLower(name)
	for _, e := range t.custom {
		if e.name == lower {
			return e.size.Oriented(o), true
		}
	}
	for _, e := range standardSizes {
		if e.name == lower {
			return e.size.Oriented(o), true
		}
	}
	return Size{}, false
}

// Names returns every standard paper size name, in table order, for the
// "-p"/"--papers" CLI diagnostic.
func Names() []string {
	names := make([]string, len(standardSizes))
	for i, e := range standardSizes {
		names[i] = e.name
	}
	return names
}

// unitEntry pairs a unit suffix with its value in points.
type unitEntry struct {
	name  string
	value float64
}

// units maps each unit suffix to points.
var units = []unitEntry{
	{"cm", 28.346456692913385211},
	{"mm", 2.8346456692913385211},
	{"in", 72.0},
	{"pt", 1},
}

// UnitValue returns the number of points one unit of name is worth, and
// false if name is not a recognized unit.
func UnitValue(name string) (float64, bool) {
	for _, u := range units {
		if u.name == name {
			return u.value, true
		}
	}
	return 0, false
}
