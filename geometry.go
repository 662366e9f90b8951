// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "math"

// A Point is a location in unrotated PDF user space, origin at the
// lower-left corner of the page.
type Point struct {
	X, Y float64
}

// IsZero reports whether p is the origin.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// A Rect is an axis-aligned rectangle, Lower the bottom-left corner and
// Upper the top-right corner. Rect is used for MediaBox, CropBox and
// TrimBox alike.
type Rect struct {
	Lower, Upper Point
}

// Width and Height report the rectangle's extent.
func (r Rect) Width() float64  { return r.Upper.X - r.Lower.X }
func (r Rect) Height() float64 { return r.Upper.Y - r.Lower.Y }

// IsZero reports whether r is the zero Rect (both corners at the origin).
func (r Rect) IsZero() bool {
	return r.Lower.IsZero() && r.Upper.IsZero()
}

// IsLandscape reports whether r is wider than it is tall.
func (r Rect) IsLandscape() bool {
	return r.Width() > r.Height()
}

// RectFromArray builds a Rect from a four-element PDF array object
// [llx lly urx ury], as found in /MediaBox, /CropBox or /TrimBox.
func RectFromArray(a Value) (Rect, bool) {
	if a.Kind() != Array || a.Len() != 4 {
		return Rect{}, false
	}
	v := make([]float64, 4)
	for i := 0; i < 4; i++ {
		e := a.Index(i)
		switch e.Kind() {
		case Integer:
			v[i] = float64(e.Int64())
		case Real:
			v[i] = e.Float64()
		default:
			return Rect{}, false
		}
	}
	return Rect{
		Lower: Point{math.Min(v[0], v[2]), math.Min(v[1], v[3])},
		Upper: Point{math.Max(v[0], v[2]), math.Max(v[1], v[3])},
	}, true
}

// A Matrix is a 3x3 affine transform, stored row-major as in PDF's "cm"
// operator: [a b 0; c d 0; e f 1]. Only the six affine components a, b, c,
// d, e, f are ever meaningful; the third column is always (0, 0, 1).
type Matrix [3][3]float64

// Identity is the identity transform.
var Identity = Matrix{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// IsIdentity reports whether m is (bit-for-bit, within float equality)
// the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity
}

// Mul returns m composed with n so that the result transforms a point p
// as m is applied to p first, then n: Mul(m, n).Transform(p) ==
// n.Transform(m.Transform(p)): appending a matrix appends its operation
// after whatever m already represented.
func (m Matrix) Mul(n Matrix) Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[i][k] * n[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// Translate returns m with a translation by (dx, dy) appended as the next
// operation.
func (m Matrix) Translate(dx, dy float64) Matrix {
	t := Identity
	t[2][0], t[2][1] = dx, dy
	return m.Mul(t)
}

// Scale returns m with a scale by (sx, sy) appended as the next
// operation.
func (m Matrix) Scale(sx, sy float64) Matrix {
	s := Identity
	s[0][0], s[1][1] = sx, sy
	return m.Mul(s)
}

// Rotate returns m with a rotation by degrees appended as the next
// operation. Positive angles
// turn the page content clockwise, so rotating a portrait page by 90 and
// translating by (0, width) lands it upright in landscape.
func (m Matrix) Rotate(degrees float64) Matrix {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	// cos(90°) comes out as 6.1e-17 dust; right-angle rotations must stay
	// exact so transformed boxes keep integral coordinates.
	if s := math.Round(sin); math.Abs(sin-s) < 1e-10 {
		sin = s
	}
	if c := math.Round(cos); math.Abs(cos-c) < 1e-10 {
		cos = c
	}
	r := Identity
	r[0][0], r[0][1] = cos, -sin
	r[1][0], r[1][1] = sin, cos
	return m.Mul(r)
}

// Transform applies m to p.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: p.X*m[0][0] + p.Y*m[1][0] + m[2][0],
		Y: p.X*m[0][1] + p.Y*m[1][1] + m[2][1],
	}
}

// TransformRect applies m to r's four corners and returns the axis-aligned
// bounding box of the transformed corners.
func (m Matrix) TransformRect(r Rect) Rect {
	corners := [4]Point{
		{r.Lower.X, r.Lower.Y},
		{r.Upper.X, r.Lower.Y},
		{r.Lower.X, r.Upper.Y},
		{r.Upper.X, r.Upper.Y},
	}
	out := m.Transform(corners[0])
	minX, minY := out.X, out.Y
	maxX, maxY := out.X, out.Y
	for _, c := range corners[1:] {
		p := m.Transform(c)
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return Rect{Point{minX, minY}, Point{maxX, maxY}}
}

// CM renders the six affine components of m for a content-stream "cm"
// operator, in the order a b c d e f.
func (m Matrix) CM() (a, b, c, d, e, f float64) {
	return m[0][0], m[0][1], m[1][0], m[1][1], m[2][0], m[2][1]
}
