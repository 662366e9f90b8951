// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The Document type: open, decrypt, merge, iterate/mutate pages, save.
package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// docState tracks a document's lifecycle: Empty -> {Encrypted | Ready};
// Encrypted -> Ready once a password is accepted; Ready -> Edited* ->
// Saved.
type docState int

const (
	stateEmpty docState = iota
	stateReady
	stateEncrypted
	stateEdited
	stateSaved
)

// Document is an open PDF file: its object table, trailer, page list and
// (if present) encryption state.
type Document struct {
	ctx *Context

	f      io.ReaderAt
	closer io.Closer
	end    int64

	versionMajor, versionMinor int

	table   *table
	trailer dict
	root    objptr // catalog object number

	crypt *encryptInfo

	pages []*Page
	fonts map[string]objptr

	state docState
}

// Open reads a complete PDF document from f (size bytes long), using ctx
// for logging and configuration. If the trailer names /Encrypt, Open
// automatically tries the empty password, so a user-password-less file
// opens without prompting.
func Open(ctx *Context, f io.ReaderAt, size int64) (*Document, error) {
	d := &Document{ctx: ctx, f: f, end: size, table: newTable()}
	if c, ok := f.(io.Closer); ok {
		d.closer = c
	}

	version, startxref, err := findStartxref(f, size)
	if err != nil {
		entries, trailer, rerr := rebuildXref(f, size)
		if rerr != nil {
			return nil, Fatalf("open", err)
		}
		ctx.Logger.Warnf("recovering malformed PDF via object scan: %v", err)
		if err := d.load(entries, trailer); err != nil {
			return nil, Fatalf("open", err)
		}
		d.versionMajor, d.versionMinor = 1, 7
		return d.finishOpen()
	}
	fmt.Sscanf(version, "%d.%d", &d.versionMajor, &d.versionMinor)
	if d.versionMajor < 1 || (d.versionMajor == 1 && d.versionMinor < 4) {
		d.versionMajor, d.versionMinor = 1, 4
	}

	entries, trailer, err := loadXref(f, size, startxref)
	if err != nil {
		entries, trailer, err = rebuildXref(f, size)
		if err != nil {
			return nil, Fatalf("open", err)
		}
		ctx.Logger.Warnf("recovering malformed PDF via object scan: %v", err)
	}
	if trailer == nil {
		return nil, Fatalf("open", ErrTrailerNotDict)
	}
	if err := d.load(entries, trailer); err != nil {
		return nil, Fatalf("open", err)
	}
	return d.finishOpen()
}

func (d *Document) finishOpen() (*Document, error) {
	root, ok := d.trailer[name("Root")].(objptr)
	if !ok {
		return nil, Fatalf("open", errors.New("trailer missing /Root"))
	}
	d.root = root

	if enc, ok := d.trailer[name("Encrypt")]; ok && enc != nil {
		// The standard handler's per-object walk cannot tell an
		// object-stream member (never separately encrypted) from a
		// direct object once both sit in the table, so files combining
		// encryption with cross-reference streams are refused.
		if d.trailer[name("Type")] == name("XRef") {
			return nil, Fatalf("open", errors.Wrap(ErrUnsupportedCrypto, "encrypted document uses cross-reference streams"))
		}
		var id []byte
		if a, ok := d.trailer[name("ID")].(*array); ok && len(a.items) > 0 {
			if s, ok := a.items[0].(string); ok {
				id = []byte(s)
			}
		}
		encDict, ok := d.resolveRaw(enc).(dict)
		if !ok {
			return nil, Fatalf("open", errors.New("malformed /Encrypt"))
		}
		info, err := parseEncryptDict(encDict, id)
		if err != nil {
			return nil, Fatalf("open", err)
		}
		d.crypt = info
		d.state = stateEncrypted
		if !info.authenticate("") {
			return d, nil // caller must call Decrypt with a real password
		}
		d.decryptAllStrings()
		d.redecodeStreams()
	}

	if err := d.loadPages(); err != nil {
		return nil, Fatalf("open", err)
	}
	d.state = stateReady
	return d, nil
}

// resolveRaw dereferences one indirect hop without requiring the
// decrypted/whole Document machinery — used only while still
// bootstrapping (parsing /Encrypt, before d.state is Ready).
func (d *Document) resolveRaw(x object) object {
	if ptr, ok := x.(objptr); ok {
		obj, _ := d.table.get(ptr.id)
		return obj
	}
	return x
}

// NeedsPassword reports whether d is encrypted and the empty password
// Open already tried did not authenticate, matching the CLI's
// open_document check of "doc.encrypted" before prompting.
func (d *Document) NeedsPassword() bool {
	return d.state == stateEncrypted
}

// Close releases the underlying file if Open's reader was also an
// io.Closer. Open reads every object and stream body into memory, so d
// does not read from the source again after Open returns.
// Closing a Document whose source was not a Closer is a no-op.
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Decrypt tries password as either the user or owner password. It
// returns false (a KindCrypto condition) if authentication
// fails; the caller decides whether to retry or abort.
func (d *Document) Decrypt(password string) bool {
	if d.crypt == nil {
		return true
	}
	if !d.crypt.authenticate(password) {
		return false
	}
	d.decryptAllStrings()
	d.redecodeStreams()
	if err := d.loadPages(); err != nil {
		d.ctx.Logger.Warnf("page tree load after decrypt: %v", err)
	}
	d.state = stateReady
	return true
}

// decryptAllStrings walks every in-use object and decrypts its strings
// and stream bodies in place. Every table entry is decrypted; object-stream
// members are not told apart (finishOpen refuses encrypted files whose
// xref is a stream).
func (d *Document) decryptAllStrings() {
	for id, def := range d.table.entries {
		def.obj = decryptObject(d.crypt.key, objptr{id, def.ptr.gen}, def.obj)
	}
}

// redecodeStreams runs the filter-decode pass that load skipped on an
// encrypted document: the raw bytes only become valid Flate/LZW input
// once decryptAllStrings has run, so decoding happens here instead of in
// parseAt.
func (d *Document) redecodeStreams() {
	for _, def := range d.table.entries {
		s, ok := def.obj.(*stream)
		if !ok {
			continue
		}
		decoded, fullyDecoded, err := decodeStreamFiltersRaw(s.hdr, s.raw)
		if err != nil {
			d.ctx.Logger.Warnf("object %d %d: stream filter decode: %v", def.ptr.id, def.ptr.gen, err)
			continue
		}
		s.raw = decoded
		if fullyDecoded {
			delete(s.hdr, name("Filter"))
			delete(s.hdr, name("DecodeParms"))
		}
	}
}

func decryptObject(key []byte, ptr objptr, x object) object {
	switch t := x.(type) {
	case string:
		return decryptString(key, ptr, t)
	case dict:
		for k, v := range t {
			t[k] = decryptObject(key, ptr, v)
		}
		return t
	case *array:
		for i, v := range t.items {
			t.items[i] = decryptObject(key, ptr, v)
		}
		return t
	case *stream:
		for k, v := range t.hdr {
			t.hdr[k] = decryptObject(key, ptr, v)
		}
		if len(t.raw) > 0 {
			t.raw = decryptStreamBytes(key, ptr, t.raw)
		}
		return t
	default:
		return x
	}
}

// load parses every in-use object named by entries at its file offset,
// decodes object streams, and materializes stream bodies.
// Failed object parses become null and are logged, never fatal.
func (d *Document) load(entries map[uint32]xrefEntry, trailer dict) error {
	d.trailer = trailer

	// Pass 1: direct (non-compressed) objects, including object streams
	// themselves.
	for _, e := range entries {
		if e.free || e.inStream {
			continue
		}
		if e.offset <= 0 {
			d.ctx.Logger.Warnf("object %d %d: in-use entry with offset %d, treating as free", e.ptr.id, e.ptr.gen, e.offset)
			d.table.set(e.ptr, nil)
			continue
		}
		obj, err := d.parseAt(e.offset, entries)
		if err != nil {
			d.ctx.Logger.Warnf("object %d %d: %v", e.ptr.id, e.ptr.gen, err)
			d.table.set(e.ptr, nil)
			continue
		}
		d.table.set(e.ptr, obj)
	}

	// Pass 2: compressed objects, grouped by container so each object
	// stream is decoded once.
	byContainer := map[uint32][]xrefEntry{}
	for id, e := range entries {
		_ = id
		if e.inStream {
			byContainer[e.stream.id] = append(byContainer[e.stream.id], e)
		}
	}
	for containerID, members := range byContainer {
		containerObj, ok := d.table.get(containerID)
		if !ok {
			for _, m := range members {
				d.table.set(m.ptr, nil)
			}
			continue
		}
		strm, ok := containerObj.(*stream)
		if !ok {
			for _, m := range members {
				d.table.set(m.ptr, nil)
			}
			continue
		}
		objs, err := loadObjectStream(strm)
		if err != nil {
			d.ctx.Logger.Warnf("object stream %d: %v", containerID, err)
			for _, m := range members {
				d.table.set(m.ptr, nil)
			}
			continue
		}
		for _, m := range members {
			obj, ok := objs[m.ptr.id]
			if !ok {
				d.table.set(m.ptr, nil)
				continue
			}
			d.table.set(m.ptr, obj)
		}
		// The container is dissolved once its members are hoisted; on
		// save they are all written as plain in-use objects.
		d.table.delete(containerID)
	}

	return nil
}

// parseAt parses one complete "N G obj ... endobj" at offset, resolving
// the stream's /Length (directly, or via the pending entries map if it
// is itself an indirect reference) and decoding its filters.
func (d *Document) parseAt(offset int64, pending map[uint32]xrefEntry) (object, error) {
	b := newBuffer(io.NewSectionReader(d.f, offset, d.end-offset), offset)
	b.allowObjptr = true
	b.allowStream = true
	tok := b.readObject()
	def, ok := tok.(objdef)
	if !ok {
		return nil, errors.Errorf("expected indirect object at offset %d", offset)
	}
	obj := def.obj
	if s, ok := obj.(*stream); ok {
		raw, err := readStreamRaw(d.f, d.end, s, pending)
		if err != nil {
			return nil, err
		}
		s.ptr = def.ptr
		delete(s.hdr, name("Length"))
		if enc, ok := d.trailer[name("Encrypt")]; ok && enc != nil {
			// The body is still RC4 ciphertext; redecodeStreams decodes
			// the filters once a password has authenticated.
			s.raw = raw
			return obj, nil
		}
		decoded, fullyDecoded, err := decodeStreamFiltersRaw(s.hdr, raw)
		if err != nil {
			// Unsupported/corrupt filter: keep the raw bytes, drop Length
			// resolution problems to a warning (recoverable).
			d.ctx.Logger.Warnf("stream filter decode: %v", err)
			decoded, fullyDecoded = raw, false
		}
		s.raw = decoded
		if fullyDecoded {
			// Bytes are now plain; a stale /Filter would make Save emit
			// decoded data under a compressed-data label.
			delete(s.hdr, name("Filter"))
			delete(s.hdr, name("DecodeParms"))
		}
	}
	return obj, nil
}

// Root returns the document's catalog.
func (d *Document) Root() Value { return d.resolve(d.root) }

// PageCount returns the number of pages currently in the document.
func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the i'th page (0-based). It panics if i is out of range;
// callers resolve page numbers against PageCount first, against the page
// count current at the moment their command executes.
func (d *Document) Page(i int) *Page { return d.pages[i] }

// InsertBlankPage inserts a new blank page of the given paper size at
// index i (0-based, i == PageCount() appends), for the editor's "new"
// command.
func (d *Document) InsertBlankPage(i int, paper Rect) *Page {
	contentsID := d.table.alloc()
	contentsPtr := objptr{contentsID, 0}
	d.table.set(contentsPtr, &stream{hdr: dict{}, raw: nil})

	pageDict := dict{
		name("Type"):      name("Page"),
		name("MediaBox"):  rectToArray(d, paper),
		name("Resources"): dict{},
		name("Contents"):  contentsPtr,
	}
	id := d.table.alloc()
	ptr := objptr{id, 0}
	d.table.set(ptr, pageDict)
	p := &Page{d: d, ptr: ptr, mediaBox: paper, bbox: paper, matrix: Identity}
	if i < 0 {
		i = 0
	}
	if i > len(d.pages) {
		i = len(d.pages)
	}
	d.pages = append(d.pages, nil)
	copy(d.pages[i+1:], d.pages[i:])
	d.pages[i] = p
	d.state = stateEdited
	return p
}

// DeletePage removes the page at index i (0-based) from the page list.
// The underlying object stays in the table until the next GC sweep
// (Save), where unreferenced objects are dropped silently.
func (d *Document) DeletePage(i int) {
	d.pages = append(d.pages[:i], d.pages[i+1:]...)
	d.state = stateEdited
}

// SetPages replaces the document's page list wholesale, used by
// selection/reordering commands (select, modulo) that compute a new
// permutation up front.
func (d *Document) SetPages(pages []*Page) {
	d.pages = pages
	d.state = stateEdited
}

// ClonePage returns an independent copy of page i (0-based): a fresh
// object-table entry carrying the same Contents/Resources references and
// box state, so that a later edit to one copy (packageIntoXObject
// forking off its own XObject and content stream) never touches the
// other. Used wherever a source page is placed at more than one output
// position — "select"/"modulo" with a repeated page number, "nup" and
// "book" laying out the same pages into new container pages.
func (d *Document) ClonePage(i int) *Page {
	src := d.pages[i]
	srcDict, _ := src.dict().data.(dict)
	newDict := make(dict, len(srcDict))
	for k, v := range srcDict {
		newDict[k] = v
	}
	id := d.table.alloc()
	ptr := objptr{id, 0}
	d.table.set(ptr, newDict)
	// The clone shares the source's Contents reference, so it is always
	// marked unpackaged: its first mutation re-packages the shared
	// content into a fresh XObject of its own instead of appending to
	// the shared stream.
	return &Page{
		d:             d,
		ptr:           ptr,
		mediaBox:      src.mediaBox,
		bbox:          src.bbox,
		bboxIsCropBox: src.bboxIsCropBox,
		matrix:        Identity,
		compressed:    true,
	}
}

func rectToArray(d *Document, r Rect) object {
	return &array{items: []object{
		roundOrFloat(r.Lower.X), roundOrFloat(r.Lower.Y),
		roundOrFloat(r.Upper.X), roundOrFloat(r.Upper.Y),
	}}
}

func roundOrFloat(f float64) object {
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}

// Merge appends other onto d: other's object table is grown
// into d's starting at the next free object number, every indirect
// reference inside other is rewritten, and other's pages are appended to
// d's page list in order. After Merge, other must not be used again.
func (d *Document) Merge(other *Document) error {
	if other.PageCount() == 0 {
		return errors.New("cannot merge a zero-page document")
	}
	base := d.table.next
	remap := make(map[uint32]uint32, len(other.table.entries))
	for id := range other.table.entries {
		remap[id] = base + id
	}
	for id, def := range other.table.entries {
		newID := remap[id]
		obj := remapRefs(def.obj, remap)
		d.table.set(objptr{newID, 0}, obj)
	}
	if d.table.next < base+other.table.next {
		d.table.next = base + other.table.next
	}
	for _, p := range other.pages {
		p.d = d
		p.ptr = objptr{remap[p.ptr.id], 0}
		d.pages = append(d.pages, p)
	}
	other.pages = nil
	other.table = newTable()
	d.state = stateEdited
	return nil
}

// Save rebuilds the page tree, garbage-collects, renumbers densely, and
// writes a fresh classical-xref PDF to w.
func (d *Document) Save(w io.Writer) error {
	if len(d.pages) == 0 {
		return Fatalf("save", ErrZeroPages)
	}
	for _, p := range d.pages {
		p.applyTransformation()
	}

	newPagesID := d.rebuildPageTree()

	// Repoint the catalog's /Pages at the rebuilt tree. A
	// document recovered without a usable catalog gets a fresh one.
	catalog, _ := d.table.get(d.root.id)
	cat, ok := catalog.(dict)
	if !ok {
		cat = dict{name("Type"): name("Catalog")}
		d.root = objptr{d.table.alloc(), 0}
		d.table.set(d.root, cat)
	}
	cat[name("Pages")] = objptr{newPagesID, 0}

	order := make([]uint32, 0, len(d.pages)+2)
	order = append(order, d.root.id, newPagesID)
	for _, p := range d.pages {
		order = append(order, p.ptr.id)
	}

	delete(d.trailer, name("Encrypt"))
	delete(d.trailer, name("Prev"))
	// A 1.5 document's trailer doubles as its xref stream's dictionary;
	// none of the stream bookkeeping belongs in a classical trailer.
	for _, k := range []string{"Type", "W", "Index", "Filter", "DecodeParms", "Length", "XRefStm"} {
		delete(d.trailer, name(k))
	}
	d.trailer[name("Root")] = d.root

	collectGarbage(d)
	remap := renumberDense(d, order)
	d.root = d.trailer[name("Root")].(objptr)
	d.trailer[name("Size")] = int64(d.table.next)

	// Page records and the font cache hold (major, minor) identities of
	// their own; they must follow the renumbering so a later edit (the
	// "write" command saves mid-batch) still addresses the right objects.
	for _, p := range d.pages {
		if newID, ok := remap[p.ptr.id]; ok {
			p.ptr = objptr{newID, 0}
		}
	}
	for k, ptr := range d.fonts {
		if newID, ok := remap[ptr.id]; ok {
			d.fonts[k] = objptr{newID, 0}
		}
	}

	if err := d.write(w); err != nil {
		return Fatalf("save", err)
	}
	d.state = stateSaved
	return nil
}

// write performs the literal emission sequence: header, a
// six-byte binary marker, objects in ascending major order, classical
// xref, trailer, startxref, %%EOF.
func (d *Document) write(w io.Writer) error {
	cw := &countingWriter{w: w}

	fmt.Fprintf(cw, "%%PDF-%d.%d\n", d.versionMajor, d.versionMinor)
	cw.Write([]byte{0xDE, 0xAD, 0x20, 0xBE, 0xEF, 0x0A})

	ids := make([]uint32, 0, len(d.table.entries))
	for id := range d.table.entries {
		ids = append(ids, id)
	}
	sortUint32s(ids)

	offsets := make(map[uint32]int64, len(ids))
	maxID := uint32(0)
	for _, id := range ids {
		if id > maxID {
			maxID = id
		}
		offsets[id] = cw.n
		def := d.table.entries[id]
		fmt.Fprintf(cw, "%d 0 obj\n", id)
		writeObject(cw, def.obj)
		fmt.Fprintf(cw, "\nendobj\n")
	}

	xrefOffset := cw.n
	fmt.Fprintf(cw, "xref\n0 %d\n", maxID+1)
	fmt.Fprintf(cw, "0000000000 65535 f \n")
	for id := uint32(1); id <= maxID; id++ {
		off, ok := offsets[id]
		if !ok {
			fmt.Fprintf(cw, "0000000000 00000 f \n")
			continue
		}
		fmt.Fprintf(cw, "%010d 00000 n \n", off)
	}

	fmt.Fprintf(cw, "trailer\n")
	writeObject(cw, d.trailer)
	fmt.Fprintf(cw, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	return cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil {
		c.err = err
	}
	return n, err
}

func sortUint32s(a []uint32) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}

// writeObject serializes x in PDF syntax, dispatching on the variant
// tag. Streams emit their current bytes as held (decoded, or encoded
// under whatever /Filter their header still names) with a freshly
// computed /Length.
func writeObject(w io.Writer, x object) {
	switch t := x.(type) {
	case nil:
		io.WriteString(w, "null")
	case bool:
		if t {
			io.WriteString(w, "true")
		} else {
			io.WriteString(w, "false")
		}
	case int64:
		fmt.Fprintf(w, "%d", t)
	case float64:
		fmt.Fprintf(w, "%g", t)
	case string:
		writeLiteralString(w, t)
	case name:
		io.WriteString(w, "/"+escapeName(string(t)))
	case dict:
		writeDict(w, t)
	case *array:
		io.WriteString(w, "[")
		for i, it := range t.items {
			if i > 0 {
				io.WriteString(w, " ")
			}
			writeObject(w, it)
		}
		io.WriteString(w, "]")
	case *stream:
		hdr := make(dict, len(t.hdr)+1)
		for k, v := range t.hdr {
			hdr[k] = v
		}
		hdr[name("Length")] = int64(len(t.raw))
		writeDict(w, hdr)
		io.WriteString(w, "\nstream\n")
		w.Write(t.raw)
		io.WriteString(w, "\nendstream")
	case objptr:
		fmt.Fprintf(w, "%d %d R", t.id, t.gen)
	}
}

func writeDict(w io.Writer, x dict) {
	io.WriteString(w, "<<")
	first := true
	for k, v := range x {
		if !first {
			io.WriteString(w, " ")
		}
		first = false
		io.WriteString(w, "/"+escapeName(string(k))+" ")
		writeObject(w, v)
	}
	io.WriteString(w, ">>")
}

func escapeName(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isDelim(c) || isSpace(c) || c == '#' || c < 0x21 || c > 0x7E {
			fmt.Fprintf(&b, "#%02X", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func writeLiteralString(w io.Writer, s string) {
	io.WriteString(w, "(")
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			w.Write([]byte{'\\', c})
		case '\n':
			io.WriteString(w, `\n`)
		case '\r':
			io.WriteString(w, `\r`)
		default:
			w.Write([]byte{c})
		}
	}
	io.WriteString(w, ")")
}
