// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The standard security handler, revisions 2 and 3 (RC4/MD5). AES and
// the V5/R5-R6 (SHA-256/384/512) handlers are out of scope: a file whose
// /Encrypt dictionary requests them is rejected with
// ErrUnsupportedCrypto rather than silently mis-decoded.
package pdf

import (
	"bytes"
	"crypto/md5"
	"crypto/rc4"

	"github.com/pkg/errors"
)

// passwordPad is the 32-byte padding string of PDF 32000-1:2008 Algorithm
// 3.2, appended to a user-supplied password shorter than 32 bytes.
var passwordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// encryptInfo holds the parsed /Encrypt dictionary plus the document's
// /ID[0], all a Document needs to derive the file key and decrypt
// strings and streams.
type encryptInfo struct {
	r         int    // Revision: 2 or 3
	length    int    // key length in bits (40..128, multiple of 8)
	o, u      string // O and U entries, 32 raw bytes each
	p         uint32 // P, permission bits as an unsigned 32-bit pattern
	id        []byte // trailer /ID[0]
	encMeta   bool   // /EncryptMetadata, true unless explicitly false
	key       []byte // file encryption key, set once a password authenticates
}

// parseEncryptDict validates and extracts an /Encrypt dictionary's
// standard-security-handler parameters, per Algorithm 3.1's preconditions.
func parseEncryptDict(encrypt dict, id []byte) (*encryptInfo, error) {
	if encrypt[name("Filter")] != name("Standard") {
		return nil, errors.Wrapf(ErrUnsupportedCrypto, "filter %v", objfmt(encrypt[name("Filter")]))
	}
	v, _ := encrypt[name("V")].(int64)
	if v != 1 && v != 2 {
		return nil, errors.Wrapf(ErrUnsupportedCrypto, "V=%d (only RC4 V1/V2 supported)", v)
	}
	r, _ := encrypt[name("R")].(int64)
	if r != 2 && r != 3 {
		return nil, errors.Wrapf(ErrUnsupportedCrypto, "R=%d (only R2/R3 supported)", r)
	}
	n, _ := encrypt[name("Length")].(int64)
	if n == 0 {
		n = 40
	}
	if n%8 != 0 || n < 40 || n > 128 {
		return nil, errors.Errorf("malformed encryption dictionary: %d-bit key", n)
	}
	o, _ := encrypt[name("O")].(string)
	u, _ := encrypt[name("U")].(string)
	if len(o) != 32 || len(u) != 32 {
		return nil, errors.New("malformed encryption dictionary: O/U not 32 bytes")
	}
	p, _ := encrypt[name("P")].(int64)
	encMeta := true
	if b, ok := encrypt[name("EncryptMetadata")].(bool); ok {
		encMeta = b
	}
	return &encryptInfo{
		r: int(r), length: int(n), o: o, u: u, p: uint32(p), id: id, encMeta: encMeta,
	}, nil
}

// authenticate tries password as both user and owner password (Algorithms
// 3.4/3.5 then 3.7) and, on success, sets e.key to the file encryption
// key and returns true. An empty password is the common case of a
// user-password-only file opened with no password at all.
func (e *encryptInfo) authenticate(password string) bool {
	pw := toLatin1(password)
	if key, ok := e.tryUserPassword(pw); ok {
		e.key = key
		return true
	}
	if key, ok := e.tryOwnerPassword(pw); ok {
		e.key = key
		return true
	}
	return false
}

// tryUserPassword implements Algorithm 3.6 (validate a user password by
// recomputing Algorithm 3.4/3.5's U value and comparing it to the
// document's U entry) and, on success, returns the file key computed by
// Algorithm 3.2. pw is already Latin-1 bytes, whether from a caller's
// password or recovered by tryOwnerPassword below.
func (e *encryptInfo) tryUserPassword(pw []byte) ([]byte, bool) {
	key := e.fileKey(pw)

	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, false
	}

	var u []byte
	if e.r == 2 {
		u = append([]byte(nil), passwordPad...)
		c.XORKeyStream(u, u)
	} else {
		h := md5.New()
		h.Write(passwordPad)
		h.Write(e.id)
		u = h.Sum(nil)
		c.XORKeyStream(u, u)
		for i := byte(1); i <= 19; i++ {
			key1 := make([]byte, len(key))
			for j := range key {
				key1[j] = key[j] ^ i
			}
			c, _ := rc4.NewCipher(key1)
			c.XORKeyStream(u, u)
		}
	}

	if !bytes.HasPrefix([]byte(e.u), u) {
		return nil, false
	}
	return key, true
}

// tryOwnerPassword implements Algorithm 3.7: recover the user password
// from the would-be owner password, then validate that as a user
// password. The owner-password-as-key derivation is Algorithm 3.3.
func (e *encryptInfo) tryOwnerPassword(pw []byte) ([]byte, bool) {
	h := md5.New()
	if len(pw) >= 32 {
		h.Write(pw[:32])
	} else {
		h.Write(pw)
		h.Write(passwordPad[:32-len(pw)])
	}
	rc4key := h.Sum(nil)
	if e.r >= 3 {
		for i := 0; i < 50; i++ {
			h.Reset()
			h.Write(rc4key)
			rc4key = h.Sum(nil)
		}
	}
	rc4key = rc4key[:e.length/8]

	userPW := make([]byte, 32)
	copy(userPW, e.o)
	if e.r == 2 {
		c, err := rc4.NewCipher(rc4key)
		if err != nil {
			return nil, false
		}
		c.XORKeyStream(userPW, userPW)
	} else {
		for i := 19; i >= 0; i-- {
			key1 := make([]byte, len(rc4key))
			for j := range rc4key {
				key1[j] = rc4key[j] ^ byte(i)
			}
			c, err := rc4.NewCipher(key1)
			if err != nil {
				return nil, false
			}
			c.XORKeyStream(userPW, userPW)
		}
	}
	return e.tryUserPassword(userPW)
}

// fileKey implements Algorithm 3.2: derive the file encryption key from
// a (possibly padded) password plus O, P and the document ID.
func (e *encryptInfo) fileKey(pw []byte) []byte {
	h := md5.New()
	if len(pw) >= 32 {
		h.Write(pw[:32])
	} else {
		h.Write(pw)
		h.Write(passwordPad[:32-len(pw)])
	}
	h.Write([]byte(e.o))
	h.Write([]byte{byte(e.p), byte(e.p >> 8), byte(e.p >> 16), byte(e.p >> 24)})
	h.Write(e.id)
	if e.r >= 4 && !e.encMeta {
		h.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	}
	key := h.Sum(nil)

	if e.r >= 3 {
		for i := 0; i < 50; i++ {
			h.Reset()
			h.Write(key[:e.length/8])
			key = h.Sum(key[:0])
		}
		return key[:e.length/8]
	}
	return key[:40/8]
}

// objectKey implements Algorithm 3.1: derive the per-object RC4 key from
// the file key and the object's number and generation.
func objectKey(fileKey []byte, ptr objptr) []byte {
	h := md5.New()
	h.Write(fileKey)
	h.Write([]byte{byte(ptr.id), byte(ptr.id >> 8), byte(ptr.id >> 16), byte(ptr.gen), byte(ptr.gen >> 8)})
	sum := h.Sum(nil)
	n := len(fileKey) + 5
	if n > 16 {
		n = 16
	}
	return sum[:n]
}

// decryptString decrypts a string literal or hex string read from a
// non-object-stream indirect object. key is the document's
// file key (nil for an unencrypted document, in which case this is a
// no-op); ptr is the owning object's number/generation.
func decryptString(key []byte, ptr objptr, s string) string {
	if len(key) == 0 {
		return s
	}
	objKey := objectKey(key, ptr)
	c, err := rc4.NewCipher(objKey)
	if err != nil {
		return s
	}
	data := []byte(s)
	c.XORKeyStream(data, data)
	return string(data)
}

// decryptStreamBytes decrypts a stream's raw body: stream bytes are
// decrypted first, then the filters run.
func decryptStreamBytes(key []byte, ptr objptr, raw []byte) []byte {
	if len(key) == 0 {
		return raw
	}
	objKey := objectKey(key, ptr)
	c, err := rc4.NewCipher(objKey)
	if err != nil {
		return raw
	}
	out := make([]byte, len(raw))
	c.XORKeyStream(out, raw)
	return out
}
