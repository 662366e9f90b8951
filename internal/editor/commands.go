// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package editor

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/ksharindam/pdfcook"
	"github.com/ksharindam/pdfcook/internal/paper"
)

// execFunc runs one command against the live document, with its bound
// arguments and its (still unresolved) page-range set. Each function
// resolves pages itself — "new" needs the raw set to tell the implicit
// "whole document" default from an explicit {...}, so resolution cannot
// happen uniformly before dispatch.
type execFunc func(s *Session, d *pdf.Document, args []bound, cmd *command) error

// cmdDef is one entry of the command table: its declared parameters and
// its implementation.
type cmdDef struct {
	params []paramSpec
	exec   execFunc
}

var commandTable = map[string]*cmdDef{
	"info":   {nil, execInfo},
	"new":    {nil, execNew},
	"del":    {nil, execDel},
	"select": {nil, execSelect},
	"book":   {nil, execBook},
	"read":   {[]paramSpec{{name: "name", kind: pString}}, execRead},
	"write":  {[]paramSpec{{name: "name", kind: pString}}, execWrite},
	"modulo": {[]paramSpec{
		{name: "step", kind: pInt},
		{name: "round", kind: pInt, hasDefault: true, defInt: 1},
	}, execModulo},
	"scale": {[]paramSpec{{name: "scale", kind: pReal}}, execScale},
	"scaleto": {[]paramSpec{
		{name: "paper", kind: pIdent},
		{name: "top", kind: pMeasure, hasDefault: true},
		{name: "right", kind: pMeasure, hasDefault: true},
		{name: "bottom", kind: pMeasure, hasDefault: true},
		{name: "left", kind: pMeasure, hasDefault: true},
		{name: "orient", kind: pIdent, hasDefault: true, defStr: "auto"},
	}, execScaleto},
	"scaleto2": {[]paramSpec{
		{name: "w", kind: pMeasure},
		{name: "h", kind: pMeasure},
		{name: "top", kind: pMeasure, hasDefault: true},
		{name: "right", kind: pMeasure, hasDefault: true},
		{name: "bottom", kind: pMeasure, hasDefault: true},
		{name: "left", kind: pMeasure, hasDefault: true},
	}, execScaleto2},
	"flip": {[]paramSpec{{name: "mode", kind: pIdent, hasDefault: true, defStr: "h"}}, execFlip},
	"number": {[]paramSpec{
		{name: "x", kind: pMeasure, hasDefault: true, defReal: -1},
		{name: "y", kind: pMeasure, hasDefault: true, defReal: -1},
		{name: "start", kind: pInt, hasDefault: true, defInt: 1},
		{name: "text", kind: pString, hasDefault: true, defStr: "%d"},
		{name: "size", kind: pInt, hasDefault: true, defInt: 10},
		{name: "font", kind: pString, hasDefault: true, defStr: "Helvetica"},
	}, execNumber},
	"crop": {[]paramSpec{
		{name: "paper", kind: pIdent},
		{name: "orient", kind: pIdent, hasDefault: true, defStr: "auto"},
	}, execCrop},
	"crop2": {[]paramSpec{
		{name: "lx", kind: pMeasure}, {name: "ly", kind: pMeasure},
		{name: "hx", kind: pMeasure}, {name: "hy", kind: pMeasure},
	}, execCrop2},
	"paper": {[]paramSpec{
		{name: "paper", kind: pIdent},
		{name: "orient", kind: pIdent, hasDefault: true, defStr: "auto"},
	}, execPaper},
	"paper2": {[]paramSpec{
		{name: "w", kind: pMeasure}, {name: "h", kind: pMeasure},
	}, execPaper2},
	"nup": {[]paramSpec{
		{name: "n", kind: pInt, hasDefault: true, defInt: 2},
		{name: "cols", kind: pInt, hasDefault: true, defInt: 2},
		{name: "dx", kind: pMeasure, hasDefault: true},
		{name: "dy", kind: pMeasure, hasDefault: true},
		{name: "paper", kind: pIdent, hasDefault: true, defStr: "a4"},
		{name: "orient", kind: pIdent, hasDefault: true, defStr: "auto"},
	}, execNup},
	"line": {[]paramSpec{
		{name: "lx", kind: pMeasure}, {name: "ly", kind: pMeasure},
		{name: "hx", kind: pMeasure}, {name: "hy", kind: pMeasure},
		{name: "width", kind: pMeasure, hasDefault: true, defReal: 1},
	}, execLine},
	"text": {[]paramSpec{
		{name: "x", kind: pMeasure}, {name: "y", kind: pMeasure},
		{name: "text", kind: pString},
		{name: "size", kind: pInt, hasDefault: true, defInt: 10},
		{name: "font", kind: pString, hasDefault: true, defStr: "Helvetica"},
	}, execText},
	"rotate": {[]paramSpec{{name: "angle", kind: pInt, hasDefault: true, defInt: 270}}, execRotate},
	"move": {[]paramSpec{
		{name: "x", kind: pMeasure, hasDefault: true},
		{name: "y", kind: pMeasure, hasDefault: true},
	}, execMove},
	"matrix": {[]paramSpec{
		{name: "a", kind: pReal, hasDefault: true, defReal: 1},
		{name: "b", kind: pReal, hasDefault: true},
		{name: "c", kind: pReal, hasDefault: true},
		{name: "d", kind: pReal, hasDefault: true, defReal: 1},
		{name: "e", kind: pReal, hasDefault: true},
		{name: "f", kind: pReal, hasDefault: true},
	}, execMatrix},
	"spaper": {[]paramSpec{
		{name: "name", kind: pIdent},
		{name: "x", kind: pMeasure}, {name: "y", kind: pMeasure},
	}, execSpaper},
}

// sortedAsc returns a sorted copy of pages, ascending.
func sortedAsc(pages []int) []int {
	out := append([]int(nil), pages...)
	sort.Ints(out)
	return out
}

func clampOrient(s string) paper.Orientation { return paper.ParseOrientation(s) }

func execInfo(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	for _, n := range cmd.pages.resolve(d.PageCount()) {
		if n < 1 || n > d.PageCount() {
			continue
		}
		p := d.Page(n - 1)
		mb := p.MediaBox()
		bb := p.BBox()
		kind := "TrimBox"
		if p.CropBoxActive() {
			kind = "CropBox"
		}
		fmt.Fprintf(s.Stdout, "%d\n", n)
		fmt.Fprintf(s.Stdout, "    Paper %g %g %g %g\n", mb.Lower.X, mb.Lower.Y, mb.Upper.X, mb.Upper.Y)
		fmt.Fprintf(s.Stdout, "    %s %g %g %g %g\n", kind, bb.Lower.X, bb.Lower.Y, bb.Upper.X, bb.Upper.Y)
	}
	return nil
}

// insertBlankPage inserts a blank page before 1-based pageNum (-1 appends
// at the end), inheriting its paper size, bounding box and CropBox/TrimBox
// state from a reference page: the same index for an odd, non-appended
// position, otherwise the previous page. The very first page of an empty
// document has no reference and falls back to A4 portrait.
func insertBlankPage(d *pdf.Document, pageNum int) {
	n := d.PageCount()
	if pageNum == -1 {
		pageNum = n + 1
	}
	refNum := pageNum
	if pageNum > n || pageNum%2 == 0 {
		refNum = pageNum - 1
	}

	mediaBox := pdf.Rect{Upper: pdf.Point{X: 595, Y: 842}}
	bbox := mediaBox
	cropActive := false
	if refNum >= 1 && refNum <= n {
		ref := d.Page(refNum - 1)
		mediaBox = ref.MediaBox()
		bbox = ref.PageSize()
		cropActive = ref.CropBoxActive()
	}

	idx := pageNum - 1
	if idx < 0 {
		idx = 0
	}
	p := d.InsertBlankPage(idx, mediaBox)
	p.SetBBox(bbox)
	p.SetCropBoxActive(cropActive)
}

func execNew(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	if cmd.pages.isDefaultAll() {
		insertBlankPage(d, -1)
		return nil
	}
	for _, n := range sortedAsc(cmd.pages.resolve(d.PageCount())) {
		insertBlankPage(d, n)
	}
	return nil
}

func execDel(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	deleted := 0
	for _, n := range sortedAsc(cmd.pages.resolve(d.PageCount())) {
		idx := n - 1 - deleted
		if idx < 0 || idx >= d.PageCount() {
			continue
		}
		d.DeletePage(idx)
		deleted++
	}
	return nil
}

// arrangePages builds a fresh page list from nums (1-based, against the
// document's current page count), cloning a source page on every use
// past its first so that later edits to one output position never leak
// into another.
func arrangePages(d *pdf.Document, nums []int) ([]*pdf.Page, error) {
	n := d.PageCount()
	seen := make(map[int]bool, n)
	out := make([]*pdf.Page, 0, len(nums))
	for _, num := range nums {
		if num < 1 || num > n {
			return nil, fmt.Errorf("page %d is out of range (document has %d pages)", num, n)
		}
		idx := num - 1
		if seen[idx] {
			out = append(out, d.ClonePage(idx))
		} else {
			seen[idx] = true
			out = append(out, d.Page(idx))
		}
	}
	return out, nil
}

func execSelect(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	nums := cmd.pages.resolve(d.PageCount())
	pages, err := arrangePages(d, nums)
	if err != nil {
		return err
	}
	d.SetPages(pages)
	return nil
}

// execModulo pads the document to a multiple of round pages (round is
// raised to step when it is smaller), then
// reassembles a new order by walking every block of `step` pages and
// re-running the command's own {page ranges} against each block's local
// offset.
func execModulo(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	step := int(args[0].Int())
	round := int(args[1].Int())
	if round < step {
		round = step
	}
	for round > 0 && d.PageCount()%round != 0 {
		insertBlankPage(d, -1)
	}

	var nums []int
	count := d.PageCount()
	for i := 0; i < count; i += step {
		for _, r := range cmd.pages.ranges {
			begin, end := r.begin, r.end
			if r.kind != setRange {
				// The implicit whole-document set (and ?/+) stand for
				// "every page of the block": first page through last.
				begin, end = 1, -1
			}
			if begin == -1 { // '$' = last page of the block
				begin = int64(step)
			}
			if end == -1 {
				end = int64(step)
			}
			adj := pageRange{kind: setRange, begin: int64(i) + begin, end: int64(i) + end, negative: r.negative}
			nums = append(nums, adj.resolve(count)...)
		}
	}
	pages, err := arrangePages(d, nums)
	if err != nil {
		return err
	}
	d.SetPages(pages)
	return nil
}

// execBook reorders a (page-count padded to a multiple of 4) document
// into centerfold booklet-imposition order.
func execBook(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	for d.PageCount()%4 != 0 {
		insertBlankPage(d, -1)
	}
	count := d.PageCount()
	var nums []int
	for i := 0; i < count/2; i += 2 {
		nums = append(nums, count-i, i+1, i+2, count-i-1)
	}
	pages, err := arrangePages(d, nums)
	if err != nil {
		return err
	}
	d.SetPages(pages)
	return nil
}

func execRead(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	name := args[0].String()
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("read %q: %w", name, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("read %q: %w", name, err)
	}
	other, err := pdf.Open(s.Ctx, f, info.Size())
	if err != nil {
		return fmt.Errorf("read %q: %w", name, err)
	}
	return d.Merge(other)
}

func execWrite(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	name := args[0].String()
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("write %q: %w", name, err)
	}
	defer f.Close()
	return d.Save(f)
}

func forEachPage(d *pdf.Document, cmd *command, fn func(p *pdf.Page)) {
	for _, n := range cmd.pages.resolve(d.PageCount()) {
		if n < 1 || n > d.PageCount() {
			continue
		}
		fn(d.Page(n - 1))
	}
}

func execScale(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	scale := args[0].Real()
	m := pdf.Identity.Scale(scale, scale)
	forEachPage(d, cmd, func(p *pdf.Page) { p.Transform(m) })
	return nil
}

func paperRectFromName(s *Session, paperName string, orient string) (pdf.Rect, error) {
	size, ok := s.Papers.Lookup(paperName, clampOrient(orient))
	if !ok {
		return pdf.Rect{}, fmt.Errorf("%q is unknown paper size", paperName)
	}
	return pdf.Rect{Upper: pdf.Point{X: size.Width, Y: size.Height}}, nil
}

func execScaleto(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	paperRect, err := paperRectFromName(s, args[0].String(), args[5].String())
	if err != nil {
		return err
	}
	scaleToPaper(d, cmd, paperRect, args[1].Real(), args[2].Real(), args[3].Real(), args[4].Real())
	return nil
}

func execScaleto2(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	paperRect := pdf.Rect{Upper: pdf.Point{X: args[0].Real(), Y: args[1].Real()}}
	scaleToPaper(d, cmd, paperRect, args[2].Real(), args[3].Real(), args[4].Real(), args[5].Real())
	return nil
}

// scaleToPaper fits each page's current visible size into the
// margin-inset area of the new paper, centered.
func scaleToPaper(d *pdf.Document, cmd *command, newPaper pdf.Rect, top, right, bottom, left float64) {
	bbox := newPaper
	bbox.Upper.X -= right
	bbox.Upper.Y -= top
	bbox.Lower.X += left
	bbox.Lower.Y += bottom
	availW := bbox.Upper.X - bbox.Lower.X
	availH := bbox.Upper.Y - bbox.Lower.Y

	forEachPage(d, cmd, func(p *pdf.Page) {
		size := p.PageSize()
		oldW := size.Upper.X - size.Lower.X
		oldH := size.Upper.Y - size.Lower.Y
		scale := math.Min(availW/oldW, availH/oldH)

		moveX := bbox.Lower.X + (availW-scale*oldW)/2 - scale*size.Lower.X
		moveY := bbox.Lower.Y + (availH-scale*oldH)/2 - scale*size.Lower.Y

		m := pdf.Identity.Scale(scale, scale).Translate(moveX, moveY)
		p.Transform(m)
		p.SetMediaBox(newPaper)
		p.ClearCropBox()
	})
}

func execFlip(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	mode := args[0].String()
	var err error
	forEachPage(d, cmd, func(p *pdf.Page) {
		if err != nil {
			return
		}
		size := p.PageSize()
		m := pdf.Identity
		switch mode {
		case "v", "vertical", "landscape":
			m[1][1] = -1
			m[2][1] = size.Upper.Y
		case "h", "horizontal", "portrait":
			m[0][0] = -1
			m[2][0] = size.Upper.X
		default:
			err = fmt.Errorf("invalid flip mode %q, use v or h", mode)
			return
		}
		p.Transform(m)
	})
	return err
}

func execMove(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	x, y := args[0].Real(), args[1].Real()
	m := pdf.Identity.Translate(x, y)
	forEachPage(d, cmd, func(p *pdf.Page) {
		size := p.PageSize()
		p.Transform(m)
		p.SetMediaBox(size)
		p.ClearCropBox()
	})
	return nil
}

func execMatrix(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	m := pdf.Matrix{
		{args[0].Real(), args[1].Real(), 0},
		{args[2].Real(), args[3].Real(), 0},
		{args[4].Real(), args[5].Real(), 1},
	}
	forEachPage(d, cmd, func(p *pdf.Page) { p.Transform(m) })
	return nil
}

func execRotate(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	angle := args[0].Int() % 360
	if angle%90 != 0 {
		return fmt.Errorf("rotation angle must be a multiple of 90")
	}
	var err error
	forEachPage(d, cmd, func(p *pdf.Page) {
		if err != nil {
			return
		}
		size := p.PageSize()
		w, h := size.Upper.X, size.Upper.Y
		m := pdf.Identity.Rotate(float64(angle))
		switch angle {
		case 90:
			m = m.Translate(0, w)
		case 180:
			m = m.Translate(w, h)
		case 270:
			m = m.Translate(h, 0)
		}
		p.Transform(m)
	})
	return err
}

func execCrop(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	r, err := paperRectFromName(s, args[0].String(), args[1].String())
	if err != nil {
		return err
	}
	forEachPage(d, cmd, func(p *pdf.Page) { p.Crop(r) })
	return nil
}

func execCrop2(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	r := pdf.Rect{
		Lower: pdf.Point{X: args[0].Real(), Y: args[1].Real()},
		Upper: pdf.Point{X: args[2].Real(), Y: args[3].Real()},
	}
	forEachPage(d, cmd, func(p *pdf.Page) { p.Crop(r) })
	return nil
}

func execPaper(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	r, err := paperRectFromName(s, args[0].String(), args[1].String())
	if err != nil {
		return err
	}
	forEachPage(d, cmd, func(p *pdf.Page) { p.SetMediaBox(r) })
	return nil
}

func execPaper2(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	r := pdf.Rect{Upper: pdf.Point{X: args[0].Real(), Y: args[1].Real()}}
	forEachPage(d, cmd, func(p *pdf.Page) { p.SetMediaBox(r) })
	return nil
}

func execSpaper(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	s.Papers.Add(args[0].String(), args[1].Real(), args[2].Real())
	return nil
}

func execLine(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	begin := pdf.Point{X: args[0].Real(), Y: args[1].Real()}
	end := pdf.Point{X: args[2].Real(), Y: args[3].Real()}
	width := args[4].Real()
	forEachPage(d, cmd, func(p *pdf.Page) { p.DrawLine(begin, end, width) })
	return nil
}

func execText(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	x, y := args[0].Real(), args[1].Real()
	text := args[2].String()
	size := int(args[3].Int())
	font := args[4].String()
	forEachPage(d, cmd, func(p *pdf.Page) {
		box := p.PageSize()
		p.DrawText(text, pdf.Point{X: box.Lower.X + x, Y: box.Lower.Y + y}, size, font)
	})
	return nil
}

// execNumber stamps page numbers: text must contain exactly one "%d"
// (the page number, offset by start-1) and no other '%' — anything else
// is a command error, not a recoverable substitution.
func execNumber(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	x, y := args[0].Real(), args[1].Real()
	start := int(args[2].Int()) - 1
	text := args[3].String()
	size := int(args[4].Int())
	font := args[5].String()

	if err := validateNumberText(text); err != nil {
		return err
	}

	forEachPage(d, cmd, func(p *pdf.Page) {
		n := pageNumberOf(d, p)
		if start+n <= 0 {
			return
		}
		box := p.PageSize()
		poz := pdf.Point{
			X: box.Lower.X + x,
			Y: box.Lower.Y + y,
		}
		if x == -1 {
			poz.X = box.Lower.X + (box.Upper.X-box.Lower.X)/2
		}
		if y == -1 {
			poz.Y = box.Lower.Y + float64(size) + 10
		}
		p.DrawText(fmt.Sprintf(text, start+n), poz, size, font)
	})
	return nil
}

func pageNumberOf(d *pdf.Document, p *pdf.Page) int {
	for i := 0; i < d.PageCount(); i++ {
		if d.Page(i) == p {
			return i + 1
		}
	}
	return 0
}

func validateNumberText(text string) error {
	hasPercentD := false
	for i := 0; i < len(text); i++ {
		if text[i] != '%' {
			continue
		}
		if i+1 < len(text) && text[i+1] == 'd' && !hasPercentD {
			hasPercentD = true
			i++
			continue
		}
		return fmt.Errorf("text does not contain exactly one %%d")
	}
	if !hasPercentD {
		return fmt.Errorf("text does not contain %%d")
	}
	return nil
}

// execNup lays n pages per output page in a cols-by-rows grid, each
// scaled to fit its cell and centered, then merges every n consecutive
// (already-transformed) source pages onto one fresh container page of
// the chosen paper size.
func execNup(s *Session, d *pdf.Document, args []bound, cmd *command) error {
	n := int(args[0].Int())
	cols := int(args[1].Int())
	if n < 1 || cols < 1 {
		return fmt.Errorf("nup: n and cols must be positive")
	}
	rows := n / cols
	if n%cols != 0 {
		rows++
	}
	dx, dy := args[2].Real(), args[3].Real()
	marginX, marginY := dx, dy

	paperRect, err := paperRectFromName(s, args[4].String(), "auto")
	if err != nil {
		return err
	}
	orient := clampOrient(args[5].String())
	if orient == paper.Auto {
		firstLandscape := d.PageCount() > 0 && d.Page(0).MediaBox().IsLandscape()
		if cols > rows || (cols == rows && firstLandscape) {
			orient = paper.Landscape
		} else {
			orient = paper.Portrait
		}
	}
	paperSize := paper.Size{Width: paperRect.Upper.X, Height: paperRect.Upper.Y}.Oriented(orient)
	paperRect = pdf.Rect{Upper: pdf.Point{X: paperSize.Width, Y: paperSize.Height}}

	for d.PageCount()%n != 0 {
		insertBlankPage(d, -1)
	}
	count := d.PageCount()

	cellW := (paperRect.Upper.X - 2*marginX - float64(cols-1)*dx) / float64(cols)
	cellH := (paperRect.Upper.Y - 2*marginY - float64(rows-1)*dy) / float64(rows)

	for i := 0; i < count; i++ {
		p := d.Page(i)
		size := p.PageSize()
		w, h := size.Upper.X-size.Lower.X, size.Upper.Y-size.Lower.Y
		scale := math.Min(cellW/w, cellH/h)
		scaledW, scaledH := scale*w, scale*h

		row := (i % n) / cols
		col := (i % n) % cols
		cellX := marginX + (cellW+dx)*float64(col)
		cellY := marginY + (cellH+dy)*float64(rows-1-row)

		moveX := cellX + (cellW-scaledW)/2 - scale*size.Lower.X
		moveY := cellY + (cellH-scaledH)/2 - scale*size.Lower.Y

		m := pdf.Identity.Scale(scale, scale).Translate(moveX, moveY)
		p.Transform(m)
	}

	loops := count / n
	for i := 0; i < loops; i++ {
		insertBlankPage(d, -1)
		newPage := d.Page(d.PageCount() - 1)
		newPage.SetMediaBox(paperRect)
		newPage.SetBBox(paperRect)
		for j := 0; j < n; j++ {
			newPage.MergePage(d.Page(0))
			d.DeletePage(0)
		}
	}
	return nil
}
