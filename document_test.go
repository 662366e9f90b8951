// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "testing"

func newTestDocument() *Document {
	return &Document{ctx: NewContext(true, false), table: newTable(), state: stateReady}
}

func TestNeedsPasswordReflectsState(t *testing.T) {
	d := newTestDocument()
	if d.NeedsPassword() {
		t.Fatal("a ready document should not need a password")
	}
	d.state = stateEncrypted
	if !d.NeedsPassword() {
		t.Fatal("an encrypted document awaiting auth should need a password")
	}
}

func TestCloseWithoutCloserIsNoop(t *testing.T) {
	d := newTestDocument()
	if err := d.Close(); err != nil {
		t.Fatalf("Close() on a Document with no closer should be a no-op, got %v", err)
	}
}

type countingCloser struct{ closed int }

func (c *countingCloser) Close() error {
	c.closed++
	return nil
}

func TestCloseDelegatesToUnderlyingCloser(t *testing.T) {
	d := newTestDocument()
	cc := &countingCloser{}
	d.closer = cc
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if cc.closed != 1 {
		t.Fatalf("underlying Close() called %d times, want 1", cc.closed)
	}
}

func TestInsertBlankPageAppendsAtEnd(t *testing.T) {
	d := newTestDocument()
	paper := Rect{Point{0, 0}, Point{612, 792}}
	p1 := d.InsertBlankPage(d.PageCount(), paper)
	p2 := d.InsertBlankPage(d.PageCount(), paper)
	if d.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", d.PageCount())
	}
	if d.Page(0) != p1 || d.Page(1) != p2 {
		t.Fatal("InsertBlankPage at PageCount() should append in call order")
	}
}

func TestInsertBlankPageAtFront(t *testing.T) {
	d := newTestDocument()
	paper := Rect{Point{0, 0}, Point{612, 792}}
	first := d.InsertBlankPage(0, paper)
	second := d.InsertBlankPage(0, paper)
	if d.Page(0) != second || d.Page(1) != first {
		t.Fatal("InsertBlankPage(0, ...) should insert before the existing page")
	}
}

func TestDeletePageRemovesByIndex(t *testing.T) {
	d := newTestDocument()
	paper := Rect{Point{0, 0}, Point{612, 792}}
	keep := d.InsertBlankPage(0, paper)
	d.InsertBlankPage(1, paper)
	d.DeletePage(1)
	if d.PageCount() != 1 {
		t.Fatalf("PageCount() = %d, want 1", d.PageCount())
	}
	if d.Page(0) != keep {
		t.Fatal("DeletePage removed the wrong page")
	}
}

func TestSetPagesReplacesList(t *testing.T) {
	d := newTestDocument()
	paper := Rect{Point{0, 0}, Point{612, 792}}
	p := d.InsertBlankPage(0, paper)
	d.SetPages([]*Page{p, p})
	if d.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2 after SetPages", d.PageCount())
	}
	if d.state != stateEdited {
		t.Fatal("SetPages should mark the document edited")
	}
}

func TestClonePageIsIndependentObject(t *testing.T) {
	d := newTestDocument()
	paper := Rect{Point{0, 0}, Point{612, 792}}
	d.InsertBlankPage(0, paper)
	clone := d.ClonePage(0)
	if clone.ptr == d.Page(0).ptr {
		t.Fatal("ClonePage should allocate a distinct object number")
	}
	if clone.mediaBox != d.Page(0).mediaBox {
		t.Fatal("ClonePage should preserve the source page's MediaBox")
	}
}

func TestRectToArrayUsesIntegersWhenExact(t *testing.T) {
	d := newTestDocument()
	arr := rectToArray(d, Rect{Point{0, 0}, Point{612, 792}}).(*array)
	for _, item := range arr.items {
		if _, ok := item.(int64); !ok {
			t.Fatalf("expected integer array elements for whole-number coordinates, got %#v", item)
		}
	}
}

func TestRectToArrayKeepsFractionalCoordinates(t *testing.T) {
	d := newTestDocument()
	arr := rectToArray(d, Rect{Point{0, 0}, Point{612.5, 792}}).(*array)
	if _, ok := arr.items[2].(float64); !ok {
		t.Fatalf("expected a float for a fractional coordinate, got %#v", arr.items[2])
	}
}

func TestRoundOrFloat(t *testing.T) {
	if v, ok := roundOrFloat(10).(int64); !ok || v != 10 {
		t.Fatalf("roundOrFloat(10) = %#v, want int64(10)", roundOrFloat(10))
	}
	if v, ok := roundOrFloat(10.5).(float64); !ok || v != 10.5 {
		t.Fatalf("roundOrFloat(10.5) = %#v, want float64(10.5)", roundOrFloat(10.5))
	}
}
