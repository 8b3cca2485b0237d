package letterfall

import (
	"math"
	"testing"
)

func pointNear(t *testing.T, label string, x, y, wantX, wantY float64) {
	t.Helper()
	if math.Abs(x-wantX) > 1e-9 || math.Abs(y-wantY) > 1e-9 {
		t.Errorf("%s = (%v, %v), want (%v, %v)", label, x, y, wantX, wantY)
	}
}

func TestTransformMatrix(t *testing.T) {
	tests := []struct {
		name         string
		xf           Transform
		px, py       float64
		wantX, wantY float64
	}{
		{"identity", IdentityTransform, 3, 4, 3, 4},
		{"translate", Transform{TranslateX: 5, TranslateY: -2, Scale: 1}, 3, 4, 8, 2},
		{"scale about origin", Transform{Scale: 2}, 12, 10, 14, 10},
		{"rotate about origin", Transform{Rotate: 90, Scale: 1}, 11, 10, 10, 11},
		{"origin maps to itself plus translate", Transform{TranslateX: 1, Rotate: 45, Scale: 3}, 10, 10, 11, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.xf.Matrix(10, 10)
			x, y := transformPoint(m, tt.px, tt.py)
			pointNear(t, "point", x, y, tt.wantX, tt.wantY)
		})
	}
}

func TestInvertAffine(t *testing.T) {
	m := Transform{TranslateX: 7, TranslateY: 3, Rotate: 30, Scale: 1.5}.Matrix(4, 2)
	inv := invertAffine(m)
	x, y := transformPoint(m, 12, -5)
	x, y = transformPoint(inv, x, y)
	pointNear(t, "round trip", x, y, 12, -5)

	if got := invertAffine([6]float64{0, 0, 0, 0, 5, 5}); got != identityAffine {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}

func TestMultiplyAffine(t *testing.T) {
	parent := Transform{TranslateX: 10, Scale: 1}.Matrix(0, 0)
	child := Transform{Scale: 2}.Matrix(0, 0)
	x, y := transformPoint(multiplyAffine(parent, child), 1, 1)
	pointNear(t, "parent after child", x, y, 12, 2)
}

func TestTransformRect(t *testing.T) {
	m := Transform{Rotate: 90, Scale: 1}.Matrix(5, 5)
	got := transformRect(m, Rect{0, 4, 10, 2})
	want := Rect{4, 0, 2, 10}
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 ||
		math.Abs(got.Width-want.Width) > 1e-9 || math.Abs(got.Height-want.Height) > 1e-9 {
		t.Errorf("transformRect = %v, want %v", got, want)
	}
}

func TestTransformString(t *testing.T) {
	got := Transform{TranslateX: 1.5, TranslateY: -2, Rotate: 45, Scale: 0.5}.String()
	want := "translate(1.5px, -2px) rotate(45deg) scale(0.5)"
	if got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}
