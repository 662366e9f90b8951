// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"strings"
	"testing"
)

func pageContent(t *testing.T, p *Page) string {
	t.Helper()
	strm, ok := p.contentStream().data.(*stream)
	if !ok {
		t.Fatal("page content is not a single stream")
	}
	return string(strm.raw)
}

func TestPackageIntoXObjectProducesDoOperator(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	p := d.Page(0)
	if !p.compressed {
		t.Fatal("a freshly loaded page should still be in its original content shape")
	}
	p.packageIntoXObject()
	if p.compressed {
		t.Fatal("packageIntoXObject should clear the compressed flag")
	}
	content := pageContent(t, p)
	if !strings.HasPrefix(content, "q /xo") || !strings.HasSuffix(content, " Do Q") {
		t.Fatalf("packaged content = %q, want q /xoN Do Q", content)
	}
}

func TestPackageIntoXObjectIsIdempotent(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	p := d.Page(0)
	p.packageIntoXObject()
	before := pageContent(t, p)
	p.packageIntoXObject()
	if got := pageContent(t, p); got != before {
		t.Fatalf("second packaging changed content: %q -> %q", before, got)
	}
}

func TestApplyTransformationFlushesAndResets(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	p := d.Page(0)
	p.Transform(Identity.Rotate(90).Translate(0, 595))
	p.applyTransformation()

	if !p.matrix.IsIdentity() {
		t.Fatal("applyTransformation should reset the pending matrix")
	}
	content := pageContent(t, p)
	if !strings.HasPrefix(content, "q 0 -1 1 0 0 595 cm\n") {
		t.Fatalf("content = %q, want prefix %q", content, "q 0 -1 1 0 0 595 cm\n")
	}
	if !strings.HasSuffix(content, " Q") {
		t.Fatalf("content = %q, want trailing Q", content)
	}

	// Idempotent: a second call is a no-op.
	before := content
	p.applyTransformation()
	if got := pageContent(t, p); got != before {
		t.Fatal("applyTransformation is not idempotent")
	}
}

func TestTransformUpdatesPaperBox(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	p := d.Page(0)
	p.Transform(Identity.Rotate(90).Translate(0, 595))
	got := p.MediaBox()
	want := Rect{Point{0, 0}, Point{842, 595}}
	if !almostEqual(got.Lower.X, want.Lower.X) || !almostEqual(got.Upper.X, want.Upper.X) ||
		!almostEqual(got.Lower.Y, want.Lower.Y) || !almostEqual(got.Upper.Y, want.Upper.Y) {
		t.Fatalf("rotated MediaBox = %+v, want %+v", got, want)
	}
}

func TestDrawLineAppendsStroke(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	p := d.Page(0)
	p.DrawLine(Point{10, 20}, Point{30, 40}, 2)
	content := pageContent(t, p)
	if !strings.HasSuffix(content, "\nq 2 w 10 20 m 30 40 l S Q") {
		t.Fatalf("content = %q, want a trailing stroke fragment", content)
	}
}

func TestDrawTextRegistersFontAndFallsBack(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	p := d.Page(0)
	p.DrawText("hello", Point{100, 50}, 12, "NoSuchFont")
	content := pageContent(t, p)
	if !strings.Contains(content, "/FHelvetica 12 Tf") {
		t.Fatalf("content = %q, want Helvetica fallback", content)
	}
	if !strings.Contains(content, "(hello) Tj") {
		t.Fatalf("content = %q, want the literal text operand", content)
	}
	font := p.Resources().Key("Font").Key("FHelvetica")
	if font.Key("Subtype").Name() != "Type1" || font.Key("BaseFont").Name() != "Helvetica" {
		t.Fatalf("registered font dict = %v", font)
	}
}

func TestDrawTextEscapesParens(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	p := d.Page(0)
	p.DrawText("a(b)c", Point{0, 0}, 10, "Helvetica")
	if !strings.Contains(pageContent(t, p), `(a\(b\)c) Tj`) {
		t.Fatal("parentheses in stamped text must be escaped")
	}
}

func TestCropWrapsContentInClip(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	p := d.Page(0)
	p.Crop(Rect{Point{10, 10}, Point{110, 60}})
	content := pageContent(t, p)
	if !strings.HasPrefix(content, "q 10 10 100 50 re W n\n") {
		t.Fatalf("content = %q, want a clip prefix", content)
	}
	if !strings.HasSuffix(content, " Q") {
		t.Fatalf("content = %q, want a trailing Q", content)
	}
}

func TestMergePageCombinesContentAndResources(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(2))
	p1, p2 := d.Page(0), d.Page(1)
	p1.MergePage(p2)
	content := pageContent(t, p1)
	if got := strings.Count(content, " Do "); got < 1 || strings.Count(content, "Do") != 2 {
		t.Fatalf("merged content = %q, want exactly two Do operators", content)
	}
	xobjs := p1.Resources().Key("XObject")
	if len(xobjs.Keys()) != 2 {
		t.Fatalf("merged /Resources/XObject has %d entries, want 2", len(xobjs.Keys()))
	}
}

func TestClonedPageEditsDoNotLeak(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	orig := d.Page(0)
	orig.packageIntoXObject()
	before := pageContent(t, orig)

	clone := d.ClonePage(0)
	clone.DrawText("42", Point{300, 20}, 10, "Helvetica")

	if got := pageContent(t, orig); got != before {
		t.Fatalf("editing a clone changed the original: %q -> %q", before, got)
	}
	if !strings.Contains(pageContent(t, clone), "(42) Tj") {
		t.Fatal("clone did not receive the stamped text")
	}
}

func TestEmptyContentStreamRoundTrips(t *testing.T) {
	d := openBytes(t, buildClassicalPDF(1))
	p := d.InsertBlankPage(1, Rect{Point{0, 0}, Point{595, 842}})
	if got := pageContent(t, p); got != "" {
		t.Fatalf("blank page content = %q, want empty", got)
	}
	var out bytes.Buffer
	if err := d.Save(&out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("/Length 0")) {
		t.Error("empty content stream should be written back with /Length 0")
	}
	if d2 := openBytes(t, out.Bytes()); d2.PageCount() != 2 {
		t.Fatalf("round-trip PageCount() = %d, want 2", d2.PageCount())
	}
}

func TestGFormatting(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"}, {595, "595"}, {-1, "-1"}, {0.5, "0.5"}, {28.346457, "28.346457"},
	}
	for _, c := range cases {
		if got := g(c.in); got != c.want {
			t.Errorf("g(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
