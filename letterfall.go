package letterfall

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorBlack is the initial value of the color property.
var ColorBlack = Color{0, 0, 0, 1}

// ColorTransparent is the initial value of the background-color property.
var ColorTransparent = Color{}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A)*255 + 0.5),
		G: uint8(clamp01(c.G*c.A)*255 + 0.5),
		B: uint8(clamp01(c.B*c.A)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.toRGBA().RGBA()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Rect is an axis-aligned rectangle in viewport coordinates. The origin is at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Min returns the top-left corner.
func (r Rect) Min() Vec2 {
	return Vec2{r.X, r.Y}
}

// Empty reports whether the rectangle has zero width and zero height.
func (r Rect) Empty() bool {
	return r.Width == 0 && r.Height == 0
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.X+r.Width, o.X+o.Width)
	y1 := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// NodeType distinguishes element nodes from text nodes.
type NodeType uint8

const (
	NodeTypeElement NodeType = iota // tagged element with classes, dataset and inline style
	NodeTypeText                    // run of character data
)

// Display selects the box a node generates during layout.
type Display uint8

const (
	DisplayAuto        Display = iota // tag default (block for div/p/body, inline otherwise)
	DisplayBlock                      // stacked vertically, fills the parent width
	DisplayInline                     // flows within line boxes
	DisplayInlineBlock                // atomic box inside a line
	DisplayNone                       // generates no box
)

// Position selects the positioning scheme.
type Position uint8

const (
	PositionStatic Position = iota // normal flow
	PositionFixed                  // out of flow, placed at Left/Top in viewport space
)

// WhiteSpace controls whitespace collapsing and line wrapping.
type WhiteSpace uint8

const (
	WhiteSpaceNormal WhiteSpace = iota // collapse runs, wrap at whitespace
	WhiteSpaceNowrap                   // collapse runs, never wrap
	WhiteSpacePre                      // preserve runs and newlines, never wrap
)

// FontStyle selects upright or italic faces.
type FontStyle uint8

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
)

// TextTransform changes the case of rendered text.
type TextTransform uint8

const (
	TextTransformNone TextTransform = iota
	TextTransformUppercase
	TextTransformLowercase
	TextTransformCapitalize
)

// FontVariant selects alternate glyph sets.
type FontVariant uint8

const (
	FontVariantNormal FontVariant = iota
	FontVariantSmallCaps
)
