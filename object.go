// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// A ValueKind specifies the kind of data underlying a Value.
// Null/Bool/Integer/Real/String/Name/Array/Dict/Stream cover the direct
// variants; indirect objects and references are not separate Kinds
// because Value always dereferences one hop — see resolve below.
type ValueKind int

const (
	Null ValueKind = iota
	Bool
	Integer
	Real
	String
	Name
	Dict
	Array
	Stream
)

// A Value is a PDF object bound to the Document it was read from or
// built for, so that indirect references inside it resolve transparently.
type Value struct {
	d    *Document
	data object
}

// IsNull reports whether v is the PDF null object.
func (v Value) IsNull() bool { return v.data == nil }

// Kind reports v's variant.
func (v Value) Kind() ValueKind {
	switch v.data.(type) {
	default:
		return Null
	case bool:
		return Bool
	case int64:
		return Integer
	case float64:
		return Real
	case string:
		return String
	case name:
		return Name
	case dict:
		return Dict
	case *array:
		return Array
	case *stream:
		return Stream
	}
}

func (v Value) String() string { return objfmt(v.data) }

// Bool returns v's boolean value, or false if v is not a Bool.
func (v Value) Bool() bool {
	x, _ := v.data.(bool)
	return x
}

// Int64 returns v's integer value, or 0 if v is not an Integer.
func (v Value) Int64() int64 {
	x, _ := v.data.(int64)
	return x
}

// Float64 returns v's value as a float64, accepting either Real or
// Integer, or 0 otherwise.
func (v Value) Float64() float64 {
	switch x := v.data.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	}
	return 0
}

// RawString returns v's raw string bytes, or "" if v is not a String.
func (v Value) RawString() string {
	x, _ := v.data.(string)
	return x
}

// Text returns v's string decoded as a PDF "text string" (PDFDocEncoding
// or UTF-16BE with a BOM), or "" if v is not a String.
func (v Value) Text() string {
	x, ok := v.data.(string)
	if !ok {
		return ""
	}
	if isUTF16(x) {
		return utf16Decode(x[2:])
	}
	return pdfDocDecode(x)
}

// Name returns v's name, without the leading slash, or "" if v is not a
// Name.
func (v Value) Name() string {
	x, _ := v.data.(name)
	return string(x)
}

// Key returns the dictionary entry named key, resolving one level of
// indirection. If v is a Stream, Key applies to the stream's header
// dictionary. If v is not a Dict or Stream, or the key is absent, Key
// returns a null Value.
func (v Value) Key(key string) Value {
	x, ok := v.data.(dict)
	if !ok {
		s, ok := v.data.(*stream)
		if !ok {
			return Value{}
		}
		x = s.hdr
	}
	return v.d.resolve(x[name(key)])
}

// Keys returns the sorted dictionary keys of v, or nil if v is not a
// Dict or Stream.
func (v Value) Keys() []string {
	x, ok := v.data.(dict)
	if !ok {
		s, ok := v.data.(*stream)
		if !ok {
			return nil
		}
		x = s.hdr
	}
	keys := make([]string, 0, len(x))
	for k := range x {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// Index returns the i'th array element, resolving one level of
// indirection, or a null Value if v is not an Array or i is out of range.
func (v Value) Index(i int) Value {
	x, ok := v.data.(*array)
	if !ok || i < 0 || i >= len(x.items) {
		return Value{}
	}
	return v.d.resolve(x.items[i])
}

// Len returns the number of elements in v, or 0 if v is not an Array.
func (v Value) Len() int {
	x, ok := v.data.(*array)
	if !ok {
		return 0
	}
	return len(x.items)
}

// resolve dereferences x once if it is an indirect reference, returning a
// Value bound to d. A reference to a missing or out-of-range object
// resolves to null — the dangling-reference recoverable condition is
// handled at load time (xref.go); by the time Value.resolve runs
// the table is already fixed up so this never needs to warn.
func (d *Document) resolve(x object) Value {
	if d == nil {
		// Bootstrap contexts (decoding the xref stream itself, before any
		// Document exists to resolve against) never hand resolve an
		// indirect reference; DecodeParms entries are always direct.
		return Value{nil, x}
	}
	if ptr, ok := x.(objptr); ok {
		obj, ok := d.table.get(ptr.id)
		if !ok {
			return Value{d, nil}
		}
		return Value{d, obj}
	}
	return Value{d, x}
}

// --- mutation (unexported: only xref.go/document.go/pagetree.go/page.go
// build and mutate objects; Document/Page methods are the write surface) ---

// newDictValue wraps a fresh, empty dict as a Value bound to d.
func (d *Document) newDictValue() Value {
	return Value{d, dict{}}
}

// newArrayValue wraps a fresh, empty array as a Value bound to d.
func (d *Document) newArrayValue() Value {
	return Value{d, &array{}}
}

// setKey sets key to val's underlying object directly in v's dict (or
// stream header). v must be a Dict or Stream; it is a no-op otherwise.
func (v Value) setKey(key string, val object) {
	switch x := v.data.(type) {
	case dict:
		x[name(key)] = val
	case *stream:
		x.hdr[name(key)] = val
	}
}

// deleteKey removes key from v's dict (or stream header).
func (v Value) deleteKey(key string) {
	switch x := v.data.(type) {
	case dict:
		delete(x, name(key))
	case *stream:
		delete(x.hdr, name(key))
	}
}

// appendItem appends val's underlying object to v's array. v must be an
// Array; it is a no-op otherwise.
func (v Value) appendItem(val object) {
	if x, ok := v.data.(*array); ok {
		x.items = append(x.items, val)
	}
}

// setIndex replaces the i'th element of v's array.
func (v Value) setIndex(i int, val object) {
	if x, ok := v.data.(*array); ok && i >= 0 && i < len(x.items) {
		x.items[i] = val
	}
}

// ref returns the plain object underlying v — used when a caller needs to
// store v's value inside another container (e.g. an array element) without
// going through the Document.
func (v Value) ref() object { return v.data }

// deepCopy structurally copies x: dicts, arrays and stream headers are
// copied recursively; indirect references are copied by value since they
// never own their referent.
func deepCopy(x object) object {
	switch t := x.(type) {
	case dict:
		y := make(dict, len(t))
		for k, v := range t {
			y[k] = deepCopy(v)
		}
		return y
	case *array:
		y := &array{items: make([]object, len(t.items))}
		for i, v := range t.items {
			y.items[i] = deepCopy(v)
		}
		return y
	case *stream:
		y := &stream{hdr: deepCopy(t.hdr).(dict), raw: append([]byte(nil), t.raw...)}
		return y
	default:
		return x // bool, int64, float64, string, name, objptr, nil are immutable values
	}
}

// clear resets x to the PDF null, preserving nothing of the prior
// payload.
func clear(x *object) { *x = nil }

func objfmt(x object) string {
	switch t := x.(type) {
	default:
		return fmt.Sprint(t)
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	case name:
		return "/" + string(t)
	case dict:
		var keys []string
		for k := range t {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteString("<<")
		for i, k := range keys {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString("/")
			buf.WriteString(k)
			buf.WriteString(" ")
			buf.WriteString(objfmt(t[name(k)]))
		}
		buf.WriteString(">>")
		return buf.String()
	case *array:
		var buf bytes.Buffer
		buf.WriteString("[")
		for i, elem := range t.items {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(objfmt(elem))
		}
		buf.WriteString("]")
		return buf.String()
	case *stream:
		return fmt.Sprintf("%v@%d bytes", objfmt(t.hdr), len(t.raw))
	case objptr:
		return fmt.Sprintf("%d %d R", t.id, t.gen)
	case objdef:
		return fmt.Sprintf("{%d %d obj}%v", t.ptr.id, t.ptr.gen, objfmt(t.obj))
	}
}
