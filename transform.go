package letterfall

import (
	"fmt"
	"math"
)

// Transform is the composed element transform
// translate(TranslateX, TranslateY) rotate(Rotate) scale(Scale), applied
// about the center of the element's box. Rotate is in degrees.
type Transform struct {
	TranslateX, TranslateY float64
	Rotate                 float64
	Scale                  float64
}

// IdentityTransform leaves an element where layout put it.
var IdentityTransform = Transform{Scale: 1}

// IsIdentity reports whether t has no visual effect.
func (t Transform) IsIdentity() bool {
	return t == IdentityTransform
}

// String formats the transform in CSS function syntax.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%gpx, %gpx) rotate(%gdeg) scale(%g)",
		t.TranslateX, t.TranslateY, t.Rotate, t.Scale)
}

// identityAffine is the identity affine matrix.
var identityAffine = [6]float64{1, 0, 0, 1, 0, 0}

// Matrix returns the affine matrix [a, b, c, d, tx, ty] for t applied about
// the origin point (ox, oy).
//
// Composition order:
//
//	Translate(-origin) -> Scale -> Rotate -> Translate(origin + translate)
func (t Transform) Matrix(ox, oy float64) [6]float64 {
	s := t.Scale
	sin, cos := math.Sincos(t.Rotate * math.Pi / 180)

	// After Scale * Translate(-origin): a=s, d=s, tx=-ox*s, ty=-oy*s
	preTx := -ox * s
	preTy := -oy * s

	// After Rotate:
	a := cos * s
	b := sin * s
	c := -sin * s
	d := cos * s
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// After Translate(origin + translate):
	return [6]float64{a, b, c, d, rtx + ox + t.TranslateX, rty + oy + t.TranslateY}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect returns the axis-aligned bounds of r after m.
func transformRect(m [6]float64, r Rect) Rect {
	xs := [4]float64{r.X, r.X + r.Width, r.X, r.X + r.Width}
	ys := [4]float64{r.Y, r.Y, r.Y + r.Height, r.Y + r.Height}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		x, y := transformPoint(m, xs[i], ys[i])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}
