// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Reading of complete PDF objects from a token stream.

package pdf

import "io"

// readObject consumes one complete PDF object from b. A stream's body is
// not read here: the parser only records where the body begins (the
// offset right after the newline that follows the "stream" keyword); the
// object loader (xref.go) resolves /Length — which may itself be an
// indirect reference — once the whole object table is known, and reads
// exactly that many bytes then.
func (b *buffer) readObject() object {
	tok := b.readToken()
	if kw, ok := tok.(keyword); ok {
		switch kw {
		case "null":
			return nil
		case "<<":
			return b.readDict()
		case "[":
			return b.readArray()
		case ">>":
			return nil
		case "endobj", "endstream", "stream":
			// Tolerate these appearing where an object was expected;
			// a soft-format recoverable condition upstream.
			return nil
		}
		return nil
	}

	if str, ok := tok.(string); ok && len(b.key) > 0 && b.objptr.id != 0 {
		tok = decryptString(b.key, b.objptr, str)
	}

	if !b.allowObjptr {
		return tok
	}

	if t1, ok := tok.(int64); ok && int64(uint32(t1)) == t1 {
		tok2 := b.readToken()
		if t2, ok := tok2.(int64); ok && int64(uint16(t2)) == t2 {
			tok3 := b.readToken()
			switch tok3 {
			case keyword("R"):
				return objptr{uint32(t1), uint16(t2)}
			case keyword("obj"):
				old := b.objptr
				b.objptr = objptr{uint32(t1), uint16(t2)}
				obj := b.readObject()
				if _, ok := obj.(*stream); !ok {
					tok4 := b.readToken()
					if tok4 != keyword("endobj") {
						if tok4 != nil && tok4 != io.EOF {
							b.unreadToken(tok4)
						}
					}
				}
				b.objptr = old
				return objdef{objptr{uint32(t1), uint16(t2)}, obj}
			}
			b.unreadToken(tok3)
		}
		b.unreadToken(tok2)
	}
	return tok
}

func (b *buffer) readArray() object {
	x := &array{}
	for {
		tok := b.readToken()
		if tok == nil || tok == keyword("]") {
			break
		}
		if tok == io.EOF {
			break
		}
		if len(x.items) >= maxArrayElements {
			break
		}
		b.unreadToken(tok)
		x.items = append(x.items, b.readObject())
	}
	return x
}

func (b *buffer) readDict() object {
	x := make(dict)
	for {
		tok := b.readToken()
		if tok == nil || tok == keyword(">>") {
			break
		}
		if tok == io.EOF {
			break
		}
		n, ok := tok.(name)
		if !ok {
			// Not a name where a key was expected: skip it and resync at
			// the next name key.
			continue
		}
		x[n] = b.readObject()
	}

	if !b.allowStream {
		return x
	}

	tok := b.readToken()
	if tok != keyword("stream") {
		b.unreadToken(tok)
		return x
	}

	switch b.readByte() {
	case '\r':
		if b.readByte() != '\n' {
			b.unreadByte()
		}
	case '\n':
		// ok
	default:
		b.unreadByte()
	}

	return &stream{hdr: x, ptr: b.objptr, offset: b.readOffset()}
}
