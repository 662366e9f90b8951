// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "testing"

func blankDocument(t *testing.T, pages int) *Document {
	t.Helper()
	d := newTestDocument()
	paper := Rect{Point{0, 0}, Point{595, 842}}
	for i := 0; i < pages; i++ {
		d.InsertBlankPage(d.PageCount(), paper)
	}
	return d
}

func TestRebuildPageTreeSingleNode(t *testing.T) {
	d := blankDocument(t, 3)
	rootID := d.rebuildPageTree()
	root, ok := d.table.get(rootID)
	if !ok {
		t.Fatal("rebuilt root missing from table")
	}
	rd, ok := root.(dict)
	if !ok || rd[name("Type")] != name("Pages") {
		t.Fatalf("root = %v, want a /Type /Pages dict", objfmt(root))
	}
	if rd[name("Count")] != int64(3) {
		t.Errorf("root /Count = %v, want 3", rd[name("Count")])
	}
	if _, ok := rd[name("Parent")]; ok {
		t.Error("root node must not carry /Parent")
	}
	kids := rd[name("Kids")].(*array)
	if len(kids.items) != 3 {
		t.Fatalf("root has %d kids, want 3", len(kids.items))
	}
}

func TestRebuildPageTreeFanout50(t *testing.T) {
	d := blankDocument(t, 120)
	rootID := d.rebuildPageTree()
	root, _ := d.table.get(rootID)
	rd := root.(dict)
	if rd[name("Count")] != int64(120) {
		t.Fatalf("root /Count = %v, want 120", rd[name("Count")])
	}
	kids := rd[name("Kids")].(*array)
	if len(kids.items) != 3 {
		t.Fatalf("root has %d kids, want 3 groups of <=50", len(kids.items))
	}
	first, _ := d.table.get(kids.items[0].(objptr).id)
	fd := first.(dict)
	if fd[name("Count")] != int64(50) {
		t.Errorf("first group /Count = %v, want 50", fd[name("Count")])
	}
	if fd[name("Parent")] != (objptr{rootID, 0}) {
		t.Errorf("first group /Parent = %v, want the root", fd[name("Parent")])
	}
}

func TestRebuildPageTreeWritesBoxesBack(t *testing.T) {
	d := blankDocument(t, 1)
	p := d.Page(0)
	p.SetMediaBox(Rect{Point{0, 0}, Point{842, 595}})
	d.rebuildPageTree()
	mb := p.dict().Key("MediaBox")
	r, ok := RectFromArray(mb)
	if !ok {
		t.Fatalf("page /MediaBox = %v, want a 4-number array", mb)
	}
	if r != (Rect{Point{0, 0}, Point{842, 595}}) {
		t.Fatalf("page /MediaBox = %+v, want the updated paper", r)
	}
}

func TestLoadPagesInheritsMediaBoxFromAncestor(t *testing.T) {
	// buildClassicalPDF puts /MediaBox only on the /Pages node; every
	// leaf must inherit it.
	d := openBytes(t, buildClassicalPDF(2))
	want := Rect{Point{0, 0}, Point{595, 842}}
	for i := 0; i < 2; i++ {
		if d.Page(i).MediaBox() != want {
			t.Fatalf("page %d MediaBox = %+v, want inherited %+v", i+1, d.Page(i).MediaBox(), want)
		}
	}
}

func TestMergeResourcesChildWins(t *testing.T) {
	d := &Document{}
	parent := Value{d, dict{name("Font"): name("parent"), name("Shared"): int64(1)}}
	child := Value{d, dict{name("Font"): name("child")}}
	merged := mergeResources(parent, child)
	if merged.Key("Font").Name() != "child" {
		t.Error("child resource entry must win on conflict")
	}
	if merged.Key("Shared").Int64() != 1 {
		t.Error("parent-only entries must survive the union")
	}
}

func TestNarrowPageDictKeepsCoreKeys(t *testing.T) {
	pg := dict{
		name("Type"):      name("Page"),
		name("Parent"):    objptr{2, 0},
		name("Resources"): dict{},
		name("Contents"):  objptr{4, 0},
		name("Annots"):    &array{},
		name("Rotate"):    int64(90),
	}
	narrowPageDict(Value{nil, pg})
	if _, ok := pg[name("Annots")]; ok {
		t.Error("narrowPageDict should drop /Annots")
	}
	if _, ok := pg[name("Rotate")]; ok {
		t.Error("narrowPageDict should drop /Rotate")
	}
	for _, k := range []string{"Type", "Parent", "Resources", "Contents"} {
		if _, ok := pg[name(k)]; !ok {
			t.Errorf("narrowPageDict dropped /%s", k)
		}
	}
}
