// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The 14 standard Type1 fonts. The engine only ever references them by
// name; it never embeds a font program.
package pdf

// standardFonts is the set of base-14 font names every PDF viewer is
// required to render without embedding.
var standardFonts = map[string]bool{
	"Times-Roman": true, "Times-Bold": true, "Times-Italic": true, "Times-BoldItalic": true,
	"Helvetica": true, "Helvetica-Bold": true, "Helvetica-Oblique": true, "Helvetica-BoldOblique": true,
	"Courier": true, "Courier-Bold": true, "Courier-Oblique": true, "Courier-BoldOblique": true,
	"Symbol": true, "ZapfDingbats": true,
}

// StandardFontNames returns the 14 base font names, in a stable order,
// for the CLI's "--fonts" diagnostic.
func StandardFontNames() []string {
	names := make([]string, 0, len(standardFonts))
	for _, n := range []string{
		"Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic",
		"Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique",
		"Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique",
		"Symbol", "ZapfDingbats",
	} {
		names = append(names, n)
	}
	return names
}

// resolveStandardFont returns name unchanged if it is one of the 14
// standard fonts, else logs and falls back to Helvetica.
func resolveStandardFont(d *Document, name string) string {
	if name == "" {
		return "Helvetica"
	}
	if standardFonts[name] {
		return name
	}
	d.ctx.Logger.Warnf("%q is not a standard font, using Helvetica instead", name)
	return "Helvetica"
}

// ensureFont returns the object pointer of a Type1 font dictionary for
// fontName, creating and caching one (one per Document, keyed by name)
// if this is the first reference. The dictionary carries
// MacRomanEncoding.
func (d *Document) ensureFont(fontName string) objptr {
	if d.fonts == nil {
		d.fonts = map[string]objptr{}
	}
	if ptr, ok := d.fonts[fontName]; ok {
		return ptr
	}
	fontDict := dict{
		name("Type"):     name("Font"),
		name("Subtype"):  name("Type1"),
		name("BaseFont"): name(fontName),
		name("Name"):     name("F" + fontName),
		name("Encoding"): name("MacRomanEncoding"),
	}
	id := d.table.alloc()
	ptr := objptr{id, 0}
	d.table.set(ptr, fontDict)
	d.fonts[fontName] = ptr
	return ptr
}
