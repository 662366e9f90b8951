// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Page primitives: form-XObject packaging, the draw/crop/merge
// compositing operations, and the pending-transform matrix.
package pdf

import (
	"fmt"
	"strings"
)

// A Page is one page of a Document: the object identity of its PDF Page
// dictionary, its paper and bounding boxes, a pending affine matrix, and
// whether its content still sits in the original content stream(s)
// ("compressed") or has already been repackaged as a single form
// XObject ("q /xoN Do Q").
type Page struct {
	d   *Document
	ptr objptr

	mediaBox      Rect
	bbox          Rect
	bboxIsCropBox bool
	matrix        Matrix
	compressed    bool
}

// PageSize returns the box a viewer treats as the page's visible size:
// the bounding box while it is an active CropBox (see CropBoxActive),
// otherwise the paper (MediaBox). A TrimBox does not change it.
func (p *Page) PageSize() Rect {
	if p.bboxIsCropBox {
		return p.bbox
	}
	return p.mediaBox
}

// MediaBox returns the page's paper rectangle.
func (p *Page) MediaBox() Rect { return p.mediaBox }

// BBox returns the page's effective bounding box (CropBox preferred,
// else TrimBox, else MediaBox — resolved once at load time by
// loadPages).
func (p *Page) BBox() Rect { return p.bbox }

// SetMediaBox replaces the page's paper rectangle directly, without
// touching content, the pending matrix, or an active CropBox/TrimBox —
// the "paper"/"paper2"/"nup"/"scaleto" family resizes the paper without
// otherwise disturbing the page.
func (p *Page) SetMediaBox(r Rect) {
	p.mediaBox = r
}

// ClearCropBox deactivates the CropBox, so PageSize reports MediaBox
// again. The cached box itself is kept and, when it differs from the
// MediaBox, is written back as a TrimBox. Used by "move"/translate: an
// untouched CropBox would otherwise keep hiding the moved content.
func (p *Page) ClearCropBox() {
	p.bboxIsCropBox = false
}

// SetBBox replaces the page's cached CropBox/TrimBox rectangle directly,
// leaving the active/inactive flag (see CropBoxActive) untouched. Used
// by "nup", which overwrites a freshly created container page's box
// without otherwise disturbing whatever it inherited.
func (p *Page) SetBBox(r Rect) {
	p.bbox = r
}

// CropBoxActive reports whether PageSize currently prefers the cached
// bounding box over MediaBox.
func (p *Page) CropBoxActive() bool { return p.bboxIsCropBox }

// SetCropBoxActive sets whether PageSize prefers the cached bounding box
// over MediaBox. Blank-page insertion copies it from a reference page.
func (p *Page) SetCropBoxActive(v bool) { p.bboxIsCropBox = v }

// dict returns the Value wrapping this page's own PDF dictionary.
func (p *Page) dict() Value { return p.d.resolve(p.ptr) }

// Resources returns the page's /Resources dictionary, creating an empty
// one if absent.
func (p *Page) Resources() Value {
	v := p.dict()
	res := v.Key("Resources")
	if res.Kind() != Dict {
		res = p.d.newDictValue()
		v.setKey("Resources", res.ref())
	}
	return res
}

// writeBoxesBack writes the page's current MediaBox (and, if set,
// CropBox or TrimBox) into its own Page dictionary, immediately before
// the page tree is rebuilt around it.
func (p *Page) writeBoxesBack() {
	v := p.dict()
	v.setKey("MediaBox", rectToArray(p.d, p.mediaBox))
	if p.bbox.IsZero() {
		return
	}
	if p.bboxIsCropBox {
		v.setKey("CropBox", rectToArray(p.d, p.bbox))
	} else if p.bbox != p.mediaBox {
		// A bbox that merely defaulted to the paper is not written back
		// as a TrimBox the original never had.
		v.setKey("TrimBox", rectToArray(p.d, p.bbox))
	}
}

// contentStream returns the Value of this page's (already packaged,
// single) content stream. Callers must call packageIntoXObject first.
func (p *Page) contentStream() Value {
	cont := p.dict().Key("Contents")
	return cont
}

func (p *Page) appendContent(s string) {
	strm, ok := p.contentStream().data.(*stream)
	if !ok {
		return
	}
	strm.raw = append(strm.raw, []byte(s)...)
}

func (p *Page) prependContent(s string) {
	strm, ok := p.contentStream().data.(*stream)
	if !ok {
		return
	}
	strm.raw = append([]byte(s), strm.raw...)
}

// packageIntoXObject replaces the page's original content — a null
// stream reference, a single stream, or an array of streams — with a
// fresh Page dictionary whose lone content stream is "q /xoN Do Q",
// where /xoN is a form XObject holding the concatenated original content
// (re-Flate-compressed) and the original /Resources. A no-op if the page
// was already packaged.
func (p *Page) packageIntoXObject() {
	if !p.compressed {
		return
	}
	d := p.d
	pg := p.dict()

	joined, ok := p.joinContentStreams(pg)
	if !ok {
		d.ctx.Logger.Warnf("page %d %d contents is neither stream nor array nor null", p.ptr.id, p.ptr.gen)
	}

	xobjDict := dict{
		name("Type"):    name("XObject"),
		name("Subtype"): name("Form"),
		name("FormType"): int64(1),
		name("BBox"):    rectToArray(d, p.BBox()),
	}
	if res := pg.Key("Resources"); res.Kind() == Dict {
		xobjDict[name("Resources")] = deepCopy(res.ref())
	}
	compressed := deflate(joined)
	xobjDict[name("Filter")] = name("FlateDecode")
	xobjStrm := &stream{hdr: xobjDict, raw: compressed}
	xobjID := d.table.alloc()
	xobjPtr := objptr{xobjID, 0}
	d.table.set(xobjPtr, xobjStrm)

	xobjName := fmt.Sprintf("xo%d", d.ctx.nextRevision())

	newResources := dict{
		name("ProcSet"): &array{items: []object{name("PDF")}},
		name("XObject"): dict{name(xobjName): xobjPtr},
	}
	contentStr := fmt.Sprintf("q /%s Do Q", xobjName)
	contentsStrm := &stream{hdr: dict{}, raw: []byte(contentStr)}
	contentsID := d.table.alloc()
	contentsPtr := objptr{contentsID, 0}
	d.table.set(contentsPtr, contentsStrm)

	newPageDict := dict{
		name("Type"):      name("Page"),
		name("Contents"):  contentsPtr,
		name("Resources"): newResources,
	}
	if parent, ok := pg.data.(dict)[name("Parent")]; ok {
		newPageDict[name("Parent")] = parent
	}
	d.table.set(p.ptr, newPageDict)
	p.compressed = false
}

// joinContentStreams concatenates the page's content stream(s) with a
// single space between array items. The bool result is false when
// /Contents is neither stream, array, nor null, which the engine
// resolves by treating it as empty content and logging.
func (p *Page) joinContentStreams(pg Value) ([]byte, bool) {
	cont := pg.Key("Contents")
	switch cont.Kind() {
	case Null:
		return nil, true
	case Stream:
		s := cont.data.(*stream)
		return append([]byte(nil), s.raw...), true
	case Array:
		var parts [][]byte
		for i := 0; i < cont.Len(); i++ {
			item := cont.Index(i)
			if s, ok := item.data.(*stream); ok {
				parts = append(parts, s.raw)
			}
		}
		return []byte(strings.Join(bytesToStrings(parts), " ")), true
	default:
		return nil, false
	}
}

func bytesToStrings(parts [][]byte) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = string(p)
	}
	return out
}

// DrawLine appends a stroked line segment to the page's content,
// packaging into a form XObject first if necessary.
func (p *Page) DrawLine(begin, end Point, width float64) {
	p.applyTransformation()
	p.packageIntoXObject()
	cmd := fmt.Sprintf("\nq %s w %s %s m %s %s l S Q",
		g(width), g(begin.X), g(begin.Y), g(end.X), g(end.Y))
	p.appendContent(cmd)
}

// DrawText appends a text-showing operator for s at pos, in the named
// standard font, packaging into a form XObject first if necessary.
// Only the 14 base fonts are
// honored; an unrecognized name falls back to Helvetica with a warning.
func (p *Page) DrawText(s string, pos Point, size int, fontName string) {
	p.applyTransformation()
	p.packageIntoXObject()

	fontName = resolveStandardFont(p.d, fontName)
	fontPtr := p.d.ensureFont(fontName)

	res := p.Resources()
	fontDict := res.Key("Font")
	if fontDict.Kind() != Dict {
		fontDict = p.d.newDictValue()
		res.setKey("Font", fontDict.ref())
	}
	fontDict.setKey("F"+fontName, fontPtr)

	cmd := fmt.Sprintf("\nq BT /F%s %d Tf  %s %s Td  %s Tj ET Q",
		fontName, size, g(pos.X), g(pos.Y), pdfLiteral(s))
	p.appendContent(cmd)
}

// Crop prepends a clipping-rectangle operator for box and appends the
// matching " Q", packaging into a form XObject first if necessary. It
// does not alter MediaBox/CropBox: the clip is purely a content-stream
// effect.
func (p *Page) Crop(box Rect) {
	p.applyTransformation()
	p.packageIntoXObject()
	p.prependContent(fmt.Sprintf("q %s %s %s %s re W n\n",
		g(box.Lower.X), g(box.Lower.Y), g(box.Width()), g(box.Height())))
	p.appendContent(" Q")
}

// MergePage appends other's content onto p, unioning their /Resources
// dictionaries (favoring p on conflict, which is safe because both sides
// have just been packaged into XObjects with process-unique names).
func (p *Page) MergePage(other *Page) {
	p.applyTransformation()
	other.applyTransformation()
	p.packageIntoXObject()
	other.packageIntoXObject()

	res1 := p.Resources()
	res2 := other.Resources()
	if rd2, ok := res2.data.(dict); ok {
		rd1, _ := res1.data.(dict)
		for k, v := range rd2 {
			switch k {
			case name("XObject"), name("Font"):
				sub1, ok1 := rd1[k].(dict)
				sub2, ok2 := v.(dict)
				if ok1 && ok2 {
					for sk, sv := range sub2 {
						sub1[sk] = sv
					}
					continue
				}
			}
			rd1[k] = v
		}
	}

	strm1, _ := p.contentStream().data.(*stream)
	strm2, _ := other.contentStream().data.(*stream)
	if strm1 != nil && strm2 != nil {
		strm1.raw = append(strm1.raw, ' ')
		strm1.raw = append(strm1.raw, strm2.raw...)
	}
}

// Transform post-multiplies m onto the page's pending matrix and applies
// m to the page's MediaBox and bounding box immediately (by min/max of
// the transformed corners). The
// content itself is not rewritten until applyTransformation runs.
func (p *Page) Transform(m Matrix) {
	p.packageIntoXObject()
	p.matrix = p.matrix.Mul(m)
	p.mediaBox = m.TransformRect(p.mediaBox)
	p.bbox = m.TransformRect(p.bbox)
}

// applyTransformation flushes the pending matrix into the content
// stream as "q a b c d e f cm ... Q" and resets the matrix to identity.
// A no-op when the matrix is already identity. Invoked
// lazily before every compositing primitive and once more over every
// page just before Save.
func (p *Page) applyTransformation() {
	if p.matrix.IsIdentity() {
		return
	}
	p.packageIntoXObject()
	strm, ok := p.contentStream().data.(*stream)
	if ok && len(strm.raw) > 0 {
		a, b, c, d, e, f := p.matrix.CM()
		prefix := fmt.Sprintf("q %s %s %s %s %s %s cm\n", g(a), g(b), g(c), g(d), g(e), g(f))
		strm.raw = append([]byte(prefix), strm.raw...)
		strm.raw = append(strm.raw, []byte(" Q")...)
	}
	p.matrix = Identity
}

// g formats a float64 for a content stream: no trailing zeros, integral
// values printed without a decimal point.
func g(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", f), "0"), ".")
}

// pdfLiteral renders s as a parenthesized PDF literal string, escaping
// the three characters the format requires.
func pdfLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}
