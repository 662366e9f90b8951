// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The page tree: flattening /Root/Pages into the document's ordered page
// list with resource and box inheritance, and rebuilding a balanced tree
// of fan-out 50 from that list before save.
package pdf

import (
	"github.com/pkg/errors"
)

// loadPages walks the catalog's page tree depth-first, building d.pages
// in visual order. Dangling/malformed nodes are recoverable: they are
// logged and skipped rather than aborting the whole load.
func (d *Document) loadPages() error {
	root := d.Root()
	pagesRoot := root.Key("Pages")
	if pagesRoot.Kind() != Dict {
		return errors.New("catalog missing /Pages")
	}

	d.pages = nil
	seen := map[uint32]bool{}
	var rootPtr objptr
	if cat, ok := root.data.(dict); ok {
		rootPtr, _ = cat[name("Pages")].(objptr)
	}
	return d.walkPages(rootPtr, pagesRoot, pagesRoot.Key("MediaBox"), pagesRoot.Key("Resources"), Rect{}, false, seen)
}

// walkPages recurses one /Pages or /Page node, identified by selfPtr so
// a /Type /Page leaf can record its own object identity. inheritedBox is
// the nearest ancestor's CropBox-or-TrimBox (boxIsCrop records which),
// used only when a leaf supplies neither.
func (d *Document) walkPages(selfPtr objptr, node, inheritedMediaBox, inheritedResources Value, inheritedBox Rect, boxIsCrop bool, seen map[uint32]bool) error {
	if _, ok := node.data.(dict); !ok {
		// A stream masquerading as a Pages/Page node, or null: recoverable.
		d.ctx.Logger.Warnf("page tree node is not a dictionary, skipping")
		return nil
	}

	typ := node.Key("Type").Name()
	if typ == "" {
		// Some generators omit /Type on tree nodes; /Kids is the tell.
		if node.Key("Kids").Kind() == Array {
			typ = "Pages"
		} else {
			typ = "Page"
		}
	}
	switch typ {
	case "Pages":
		mediaBox := inheritedMediaBox
		if mb := node.Key("MediaBox"); mb.Kind() == Array {
			mediaBox = mb
		}
		resources := inheritedResources
		if r := node.Key("Resources"); r.Kind() == Dict {
			resources = mergeResources(inheritedResources, r)
		}
		box, boxCrop := inheritedBox, boxIsCrop
		if cb := node.Key("CropBox"); cb.Kind() == Array {
			if r, ok := RectFromArray(cb); ok {
				box, boxCrop = r, true
			}
		} else if tb := node.Key("TrimBox"); tb.Kind() == Array {
			if r, ok := RectFromArray(tb); ok {
				box, boxCrop = r, false
			}
		}

		kids := node.Key("Kids")
		if kids.Kind() != Array {
			return errors.New("Pages node missing /Kids")
		}
		for i := 0; i < kids.Len(); i++ {
			kidPtr, ok := kidObjptr(kids, i)
			if !ok {
				d.ctx.Logger.Warnf("Kids[%d] is not an indirect reference, skipping", i)
				continue
			}
			if seen[kidPtr.id] {
				continue // guard against a cyclic tree
			}
			seen[kidPtr.id] = true
			kid := d.resolve(kidPtr)
			if kid.Kind() != Dict {
				d.ctx.Logger.Warnf("page tree child %v is not a dictionary, skipping", kidPtr)
				continue
			}
			kidResources := mergeResources(resources, kid.Key("Resources"))
			if rd, ok := kid.data.(dict); ok && kidResources.Kind() == Dict {
				rd[name("Resources")] = kidResources.ref()
			}
			if err := d.walkPages(kidPtr, kid, mediaBox, kidResources, box, boxCrop, seen); err != nil {
				d.ctx.Logger.Warnf("%v", err)
			}
		}
		return nil

	case "Page":
		p := &Page{d: d, ptr: selfPtr, matrix: Identity}

		mb := node.Key("MediaBox")
		if mb.Kind() != Array {
			mb = inheritedMediaBox
		}
		if r, ok := RectFromArray(mb); ok {
			p.mediaBox = r
		}

		if cb := node.Key("CropBox"); cb.Kind() == Array {
			if r, ok := RectFromArray(cb); ok {
				p.bbox, p.bboxIsCropBox = r, true
			}
		} else if tb := node.Key("TrimBox"); tb.Kind() == Array {
			if r, ok := RectFromArray(tb); ok {
				p.bbox, p.bboxIsCropBox = r, false
			}
		} else if !inheritedBox.IsZero() {
			p.bbox, p.bboxIsCropBox = inheritedBox, boxIsCrop
		} else {
			p.bbox = p.mediaBox
		}

		// The page's content still sits in its original stream(s) and has
		// not yet been packaged into a form XObject.
		p.compressed = true
		if !d.ctx.RepairMode {
			narrowPageDict(node)
		}
		d.pages = append(d.pages, p)
		return nil
	}
	return errors.New("page tree node has neither /Type /Pages nor /Type /Page")
}

// narrowPageDict keeps only {Type, Parent, Resources, Contents} in a
// loaded Page node's dictionary. Skipped entirely when
// Context.RepairMode is set, so a document whose page tree is otherwise
// damaged keeps every original key for diagnosis.
var pageDictKeep = map[name]bool{
	name("Type"): true, name("Parent"): true, name("Resources"): true, name("Contents"): true,
}

func narrowPageDict(v Value) {
	d, ok := v.data.(dict)
	if !ok {
		return
	}
	for k := range d {
		if !pageDictKeep[k] {
			delete(d, k)
		}
	}
}

func kidObjptr(arr Value, i int) (objptr, bool) {
	a, ok := arr.data.(*array)
	if !ok || i < 0 || i >= len(a.items) {
		return objptr{}, false
	}
	ptr, ok := a.items[i].(objptr)
	return ptr, ok
}

// mergeResources unions parent and child resource dictionaries,
// favoring the child on conflict, without mutating either input.
func mergeResources(parent, child Value) Value {
	if parent.Kind() != Dict {
		return child
	}
	if child.Kind() != Dict {
		return parent
	}
	merged := dict{}
	if pd, ok := parent.data.(dict); ok {
		for k, v := range pd {
			merged[k] = deepCopy(v)
		}
	}
	if cd, ok := child.data.(dict); ok {
		for k, v := range cd {
			merged[k] = deepCopy(v)
		}
	}
	return Value{parent.d, merged}
}

// rebuildPageTree builds a fresh, balanced /Pages tree (fan-out 50) over
// d.pages in their current order and returns the new root
// Pages node's object number. Each page's MediaBox (and CropBox/TrimBox,
// if set) is written back to its dictionary first.
func (d *Document) rebuildPageTree() uint32 {
	const nodeMax = 50

	nodes := make([]uint32, len(d.pages))
	for i, p := range d.pages {
		p.writeBoxesBack()
		nodes[i] = p.ptr.id
	}

	// Every pass wraps the current level's nodes into groups of at most
	// nodeMax, one new /Pages node per group — even a single page gets
	// wrapped in a fresh root on the first pass — and repeats while more
	// than one node remains at the new level.
	for {
		var next []uint32
		for i := 0; i < len(nodes); i += nodeMax {
			end := i + nodeMax
			if end > len(nodes) {
				end = len(nodes)
			}
			next = append(next, d.makePagesNode(nodes[i:end]))
		}
		nodes = next
		if len(nodes) == 1 {
			break
		}
	}
	root := nodes[0]
	if def, ok := d.table.entries[root]; ok {
		if dd, ok := def.obj.(dict); ok {
			delete(dd, name("Parent"))
		}
	}
	return root
}

func (d *Document) makePagesNode(kids []uint32) uint32 {
	count := 0
	items := make([]object, len(kids))
	for i, kidID := range kids {
		def := d.table.entries[kidID]
		if dd, ok := def.obj.(dict); ok {
			if c, ok := dd[name("Count")].(int64); ok {
				count += int(c)
			} else {
				count++
			}
		} else {
			count++
		}
		items[i] = objptr{kidID, 0}
	}

	nodeID := d.table.alloc()
	nodePtr := objptr{nodeID, 0}
	nodeDict := dict{
		name("Type"):  name("Pages"),
		name("Count"): int64(count),
		name("Kids"):  &array{items: items},
	}
	d.table.set(nodePtr, nodeDict)

	for _, kidID := range kids {
		def := d.table.entries[kidID]
		if dd, ok := def.obj.(dict); ok {
			dd[name("Parent")] = nodePtr
		}
	}
	return nodeID
}
