// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Stream filters. Only two are decoded: FlateDecode (stdlib
// compress/zlib — PDF's Flate filter is zlib-wrapped deflate, RFC 1950,
// not raw deflate) and LZWDecode, via github.com/hhrutter/lzw because
// stdlib compress/lzw hardcodes the early-change behavior GIF/TIFF want
// and has no way to express PDF's /EarlyChange parameter. CCITTFax,
// JBIG2, DCT, ASCII85, ASCIIHex and RunLength are out of scope and are
// left undecoded: their stream bytes are carried through unchanged.
package pdf

import (
	"bytes"
	"compress/zlib"
	"io"

	hhlzw "github.com/hhrutter/lzw"
	"github.com/pkg/errors"
)

// decodeFilterKnown reports whether decodeFilter actually decodes
// filterName rather than passing it through opaque.
func decodeFilterKnown(filterName string) bool {
	switch filterName {
	case "FlateDecode", "Fl", "LZWDecode", "LZW":
		return true
	default:
		return false
	}
}

// decodeFilter applies the single named filter to raw stream bytes. parms
// carries that filter's /DecodeParms entry (may be null).
func decodeFilter(filterName string, raw []byte, parms Value) ([]byte, error) {
	switch filterName {
	case "FlateDecode", "Fl":
		out, err := inflate(raw)
		if err != nil {
			return nil, errors.Wrap(err, "FlateDecode")
		}
		return applyPredictor(out, parms)
	case "LZWDecode", "LZW":
		out, err := lzwDecode(raw, parms)
		if err != nil {
			return nil, errors.Wrap(err, "LZWDecode")
		}
		return applyPredictor(out, parms)
	default:
		// Unsupported filter (non-goal): carried through opaque.
		return raw, nil
	}
}

// inflate runs PDF's Flate filter (zlib-wrapped deflate) over raw.
func inflate(raw []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// deflate re-encodes decoded bytes with PDF's Flate filter, used whenever
// the engine packages mutated content, so every emitted stream's /Length
// matches its /Filter exactly.
func deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// lzwDecode decodes PDF LZWDecode data honoring /EarlyChange (default 1).
func lzwDecode(raw []byte, parms Value) ([]byte, error) {
	early := 1
	if parms.Kind() == Dict {
		if e := parms.Key("EarlyChange"); e.Kind() == Integer {
			early = int(e.Int64())
		}
	}
	r := hhlzw.NewReader(bytes.NewReader(raw), early == 1)
	defer r.Close()
	return io.ReadAll(r)
}

// applyPredictor undoes the PNG-Up (or other PNG, or TIFF) predictor that
// Flate/LZW streams commonly layer on top of their base compression.
// Predictor 1 (the default) means "no predictor".
func applyPredictor(data []byte, parms Value) ([]byte, error) {
	if parms.Kind() != Dict {
		return data, nil
	}
	predictor := 1
	if p := parms.Key("Predictor"); p.Kind() == Integer {
		predictor = int(p.Int64())
	}
	if predictor <= 1 {
		return data, nil
	}
	colors := 1
	if c := parms.Key("Colors"); c.Kind() == Integer {
		colors = int(c.Int64())
	}
	bpc := 8
	if b := parms.Key("BitsPerComponent"); b.Kind() == Integer {
		bpc = int(b.Int64())
	}
	columns := 1
	if c := parms.Key("Columns"); c.Kind() == Integer {
		columns = int(c.Int64())
	}
	bytesPerPixel := (colors*bpc + 7) / 8
	if bytesPerPixel < 1 {
		bytesPerPixel = 1
	}
	rowBytes := (colors*bpc*columns + 7) / 8

	if predictor == 2 {
		return undoTIFFPredictor(data, rowBytes, bytesPerPixel), nil
	}
	return undoPNGPredictor(data, rowBytes, bytesPerPixel)
}

func undoTIFFPredictor(data []byte, rowBytes, bpp int) []byte {
	out := append([]byte(nil), data...)
	for start := 0; start+rowBytes <= len(out); start += rowBytes {
		row := out[start : start+rowBytes]
		for i := bpp; i < len(row); i++ {
			row[i] += row[i-bpp]
		}
	}
	return out
}

func undoPNGPredictor(data []byte, rowBytes, bpp int) ([]byte, error) {
	var out bytes.Buffer
	prev := make([]byte, rowBytes)
	stride := rowBytes + 1
	for off := 0; off+stride <= len(data); off += stride {
		tag := data[off]
		cur := append([]byte(nil), data[off+1:off+stride]...)
		switch tag {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < len(cur); i++ {
				cur[i] += cur[i-bpp]
			}
		case 2: // Up
			for i := range cur {
				cur[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < len(cur); i++ {
				var a byte
				if i >= bpp {
					a = cur[i-bpp]
				}
				cur[i] += byte((int(a) + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < len(cur); i++ {
				var a, c byte
				if i >= bpp {
					a = cur[i-bpp]
					c = prev[i-bpp]
				}
				cur[i] += paeth(a, prev[i], c)
			}
		default:
			return nil, errors.Errorf("unsupported PNG predictor tag %d", tag)
		}
		out.Write(cur)
		prev = cur
	}
	return out.Bytes(), nil
}

func paeth(a, b, c byte) byte {
	pa := absInt(int(b) - int(c))
	pb := absInt(int(a) - int(c))
	pc := absInt(int(a) + int(b) - 2*int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
