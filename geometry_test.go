// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRectWidthHeight(t *testing.T) {
	r := Rect{Point{0, 0}, Point{612, 792}}
	if r.Width() != 612 || r.Height() != 792 {
		t.Fatalf("got %v x %v, want 612 x 792", r.Width(), r.Height())
	}
	if r.IsLandscape() {
		t.Fatal("letter portrait reported as landscape")
	}
	if !(Rect{Point{0, 0}, Point{792, 612}}).IsLandscape() {
		t.Fatal("letter landscape not reported as landscape")
	}
}

func TestRectIsZero(t *testing.T) {
	if !(Rect{}).IsZero() {
		t.Fatal("zero-value Rect should be zero")
	}
	if (Rect{Point{0, 0}, Point{1, 1}}).IsZero() {
		t.Fatal("non-zero Rect reported as zero")
	}
}

func TestMatrixIdentity(t *testing.T) {
	if !Identity.IsIdentity() {
		t.Fatal("Identity.IsIdentity() == false")
	}
	p := Point{3, 4}
	if got := Identity.Transform(p); got != p {
		t.Fatalf("Identity.Transform(%v) = %v", p, got)
	}
}

func TestMatrixTranslate(t *testing.T) {
	m := Identity.Translate(10, 20)
	got := m.Transform(Point{1, 1})
	want := Point{11, 21}
	if !almostEqual(got.X, want.X) || !almostEqual(got.Y, want.Y) {
		t.Fatalf("Translate: got %v, want %v", got, want)
	}
}

func TestMatrixScale(t *testing.T) {
	m := Identity.Scale(2, 3)
	got := m.Transform(Point{5, 5})
	want := Point{10, 15}
	if !almostEqual(got.X, want.X) || !almostEqual(got.Y, want.Y) {
		t.Fatalf("Scale: got %v, want %v", got, want)
	}
}

func TestMatrixRotate90(t *testing.T) {
	m := Identity.Rotate(90)
	got := m.Transform(Point{1, 0})
	if !almostEqual(got.X, 0) || !almostEqual(got.Y, -1) {
		t.Fatalf("Rotate(90) of (1,0) = %v, want (0,-1)", got)
	}
}

func TestRotateThenTranslateKeepsPageOnPaper(t *testing.T) {
	// A portrait A4 rotated 90 and translated by (0, width) must land
	// exactly on the landscape paper.
	portrait := Rect{Point{0, 0}, Point{595, 842}}
	m := Identity.Rotate(90).Translate(0, 595)
	got := m.TransformRect(portrait)
	if !almostEqual(got.Lower.X, 0) || !almostEqual(got.Lower.Y, 0) ||
		!almostEqual(got.Upper.X, 842) || !almostEqual(got.Upper.Y, 595) {
		t.Fatalf("rotated paper = %+v, want [0 0 842 595]", got)
	}
}

func TestMatrixMulAssociative(t *testing.T) {
	m := Identity.Scale(2, 3)
	n := Identity.Rotate(90)
	p := Identity.Translate(7, -4)
	pt := Point{1.5, -2.5}
	a := m.Mul(n.Mul(p)).Transform(pt)
	b := m.Mul(n).Mul(p).Transform(pt)
	if math.Abs(a.X-b.X) > 1e-5 || math.Abs(a.Y-b.Y) > 1e-5 {
		t.Fatalf("composition not associative: %v vs %v", a, b)
	}
}

func TestMatrixTransformRectAxisAligned(t *testing.T) {
	r := Rect{Point{0, 0}, Point{100, 50}}
	m := Identity.Translate(10, 10)
	got := m.TransformRect(r)
	want := Rect{Point{10, 10}, Point{110, 60}}
	if !almostEqual(got.Lower.X, want.Lower.X) || !almostEqual(got.Upper.Y, want.Upper.Y) {
		t.Fatalf("TransformRect: got %v, want %v", got, want)
	}
}

func TestMatrixCM(t *testing.T) {
	m := Identity.Translate(5, 7)
	a, b, c, d, e, f := m.CM()
	if a != 1 || b != 0 || c != 0 || d != 1 || e != 5 || f != 7 {
		t.Fatalf("CM() = %v %v %v %v %v %v, want 1 0 0 1 5 7", a, b, c, d, e, f)
	}
}

func TestRectFromArrayNormalizesCorners(t *testing.T) {
	d := &Document{}
	arr := d.newArrayValue()
	for _, v := range []int64{100, 50, 0, 0} {
		arr.appendItem(v)
	}
	r, ok := RectFromArray(arr)
	if !ok {
		t.Fatal("RectFromArray returned ok=false for a valid 4-element numeric array")
	}
	if r.Lower != (Point{0, 0}) || r.Upper != (Point{100, 50}) {
		t.Fatalf("RectFromArray did not normalize reversed corners: got %+v", r)
	}
}

func TestRectFromArrayRejectsWrongShape(t *testing.T) {
	d := &Document{}
	arr := d.newArrayValue()
	for _, v := range []int64{1, 2, 3} {
		arr.appendItem(v)
	}
	if _, ok := RectFromArray(arr); ok {
		t.Fatal("RectFromArray should reject a 3-element array")
	}
}
