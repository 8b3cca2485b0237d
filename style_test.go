package letterfall

import (
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const colorTol = 1e-6

func colorNear(a, b Color) bool {
	return math.Abs(a.R-b.R) < colorTol && math.Abs(a.G-b.G) < colorTol &&
		math.Abs(a.B-b.B) < colorTol && math.Abs(a.A-b.A) < colorTol
}

// --- Properties ---

func TestPropertyNames(t *testing.T) {
	for p := Property(0); p < propCount; p++ {
		got, ok := PropertyByName(p.String())
		if !ok || got != p {
			t.Errorf("PropertyByName(%q) = %v, %v", p.String(), got, ok)
		}
	}
	if _, ok := PropertyByName("float"); ok {
		t.Error("unknown name resolved")
	}
	if got := Property(200).String(); got != "Property(200)" {
		t.Errorf("String() = %q", got)
	}
}

// --- Inline style ---

func TestStyleSetAndUnset(t *testing.T) {
	n := NewElement("span")
	n.Style().SetOpacity(0.5)
	n.Style().SetColor(Color{1, 0, 0, 1})

	if diff := cmp.Diff([]Property{PropColor, PropOpacity}, n.Style().Declared()); diff != "" {
		t.Errorf("Declared (-want +got):\n%s", diff)
	}
	if a, ok := n.Style().Opacity(); !ok || a != 0.5 {
		t.Errorf("Opacity = %v, %v", a, ok)
	}

	n.Style().Unset(PropOpacity, PropWidth)
	if n.Style().Has(PropOpacity) {
		t.Error("opacity still declared")
	}
	if _, ok := n.Style().Opacity(); ok {
		t.Error("Opacity reports a value after Unset")
	}
	if !n.Style().Has(PropColor) {
		t.Error("color lost")
	}
}

func TestComputedStyleInheritance(t *testing.T) {
	doc := newTestDocument(t)
	div := NewElement("div")
	div.Style().SetFontSize(24)
	div.Style().SetColor(Color{0, 0, 1, 1})
	div.Style().SetOpacity(0.5)
	span := NewElement("span")
	div.AddChild(span)
	doc.Body().AddChild(div)

	cs := doc.ComputedStyle(span)
	if cs.FontSize() != 24 {
		t.Errorf("FontSize = %v, want inherited 24", cs.FontSize())
	}
	if cs.Color() != (Color{0, 0, 1, 1}) {
		t.Errorf("Color = %v", cs.Color())
	}
	if cs.Opacity() != 1 {
		t.Errorf("Opacity = %v, opacity must not inherit", cs.Opacity())
	}
	if cs.Display() != DisplayInline {
		t.Errorf("span Display = %v", cs.Display())
	}
	if doc.ComputedStyle(div).Display() != DisplayBlock {
		t.Error("div is not block")
	}
}

func TestComputedStyleInitialValues(t *testing.T) {
	doc := newTestDocument(t)
	p := NewElement("p")
	doc.Body().AddChild(p)

	cs := doc.ComputedStyle(p)
	if cs.FontSize() != DefaultFontSize || cs.FontWeight() != 400 || cs.FontFamily() != "sans-serif" {
		t.Errorf("font = %v %v %q", cs.FontSize(), cs.FontWeight(), cs.FontFamily())
	}
	if _, ok := cs.Width(); ok {
		t.Error("width is not auto")
	}
	if cs.Transform() != IdentityTransform {
		t.Errorf("Transform = %v", cs.Transform())
	}
	if !cs.PointerEvents() {
		t.Error("pointer events disabled")
	}
	if cs.LineHeight() != 0 {
		t.Errorf("LineHeight = %v, want normal", cs.LineHeight())
	}
}

func TestLineHeightMultiple(t *testing.T) {
	doc := newTestDocument(t)
	p := NewElement("p")
	p.Style().SetFontSize(20)
	p.Style().SetLineHeightMultiple(1.5)
	doc.Body().AddChild(p)

	if got := doc.ComputedStyle(p).LineHeight(); got != 30 {
		t.Errorf("LineHeight = %v, want 30", got)
	}
}

func TestCopyProperty(t *testing.T) {
	doc := newTestDocument(t)
	src := NewElement("p")
	src.Style().SetFontSize(30)
	src.Style().SetFontFamily("monospace")
	doc.Body().AddChild(src)
	cs := doc.ComputedStyle(src)

	dst := NewElement("span")
	for _, p := range []Property{PropFontSize, PropFontFamily, PropLetterSpacing} {
		if err := CopyProperty(dst.Style(), cs, p); err != nil {
			t.Errorf("CopyProperty(%s): %v", p, err)
		}
	}
	doc.Body().AddChild(dst)
	got := doc.ComputedStyle(dst)
	if got.FontSize() != 30 || got.FontFamily() != "monospace" {
		t.Errorf("copied font = %v %q", got.FontSize(), got.FontFamily())
	}
}

func TestCopyPropertyErrors(t *testing.T) {
	cs := initialStyle
	dst := NewElement("span")

	if err := CopyProperty(dst.Style(), &cs, propCount+1); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("unknown property: err = %v", err)
	}
	if err := CopyProperty(dst.Style(), &cs, PropTransition); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("transition: err = %v", err)
	}

	cs.vals[PropFontFamily] = value{}
	if err := CopyProperty(dst.Style(), &cs, PropFontFamily); !errors.Is(err, ErrNoValue) {
		t.Errorf("empty family: err = %v", err)
	}
	cs.vals[PropFontSize] = value{num: math.NaN()}
	if err := CopyProperty(dst.Style(), &cs, PropFontSize); !errors.Is(err, ErrNoValue) {
		t.Errorf("NaN size: err = %v", err)
	}
	if len(dst.Style().Declared()) != 0 {
		t.Errorf("failed copies declared %v", dst.Style().Declared())
	}
}

func TestTransitionFor(t *testing.T) {
	doc := newTestDocument(t)
	n := NewElement("span")
	n.Style().SetTransition(
		Transition{Property: PropOpacity, Duration: time.Second},
		Transition{Property: PropOpacity, Duration: 2 * time.Second},
	)
	doc.Body().AddChild(n)

	tr, ok := doc.ComputedStyle(n).TransitionFor(PropOpacity)
	if !ok || tr.Duration != 2*time.Second {
		t.Errorf("TransitionFor = %+v, %v, want the last declaration", tr, ok)
	}
	if _, ok := doc.ComputedStyle(n).TransitionFor(PropColor); ok {
		t.Error("color transition reported")
	}
}

// --- CSS parsing ---

func TestParseDeclarations(t *testing.T) {
	got := ParseDeclarations(" Color: red ; ;bogus; width:10px !important; height: ")
	want := []Declaration{{"color", "red"}, {"width", "10px"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDeclarations (-want +got):\n%s", diff)
	}
}

func TestApplyCSS(t *testing.T) {
	doc := newTestDocument(t)
	n := NewElement("div")
	doc.Body().AddChild(n)

	err := n.Style().ApplyCSS("font-size: 20px; font-weight: bold; line-height: 1.5; " +
		"letter-spacing: 2px; position: fixed; left: 10; top: 12px; z-index: 3; " +
		"pointer-events: none; display: inline-block; width: 100px; opacity: 2; " +
		"text-transform: uppercase; font-variant: small-caps; white-space: pre; font-stretch: 75%")
	if err != nil {
		t.Fatalf("ApplyCSS: %v", err)
	}

	cs := doc.ComputedStyle(n)
	checks := []struct {
		name      string
		got, want any
	}{
		{"font-size", cs.FontSize(), 20.0},
		{"font-weight", cs.FontWeight(), 700},
		{"line-height", cs.LineHeight(), 30.0},
		{"letter-spacing", cs.LetterSpacing(), 2.0},
		{"position", cs.Position(), PositionFixed},
		{"left", cs.Left(), 10.0},
		{"top", cs.Top(), 12.0},
		{"z-index", cs.ZIndex(), 3},
		{"pointer-events", cs.PointerEvents(), false},
		{"display", cs.Display(), DisplayInlineBlock},
		{"opacity", cs.Opacity(), 1.0},
		{"text-transform", cs.TextTransform(), TextTransformUppercase},
		{"font-variant", cs.FontVariant(), FontVariantSmallCaps},
		{"white-space", cs.WhiteSpace(), WhiteSpacePre},
		{"font-stretch", cs.FontStretch(), 75.0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if w, ok := cs.Width(); !ok || w != 100 {
		t.Errorf("width = %v, %v", w, ok)
	}

	if err := n.Style().SetCSS("width", "auto"); err != nil {
		t.Fatal(err)
	}
	if n.Style().Has(PropWidth) {
		t.Error("width: auto left a declaration")
	}
}

func TestApplyCSSErrors(t *testing.T) {
	n := NewElement("div")
	err := n.Style().ApplyCSS("float: left; color: notacolor; font-size: 14px")
	if !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("err = %v, want the first error", err)
	}
	if !n.Style().Has(PropFontSize) {
		t.Error("later declarations not applied")
	}

	tests := []struct{ prop, val string }{
		{"color", "#12"},
		{"width", "-3px"},
		{"display", "grid"},
		{"position", "absolute"},
		{"font-style", "slanted"},
		{"transform", "none"},
		{"transition", "opacity 1s"},
		{"z-index", "high"},
	}
	for _, tt := range tests {
		if err := n.Style().SetCSS(tt.prop, tt.val); !errors.Is(err, ErrUnsupportedValue) {
			t.Errorf("SetCSS(%s, %q) = %v", tt.prop, tt.val, err)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"red", Color{1, 0, 0, 1}, true},
		{" Transparent ", Color{}, true},
		{"#fff", Color{1, 1, 1, 1}, true},
		{"#0000ff", Color{0, 0, 1, 1}, true},
		{"rgb(255, 0, 0)", Color{1, 0, 0, 1}, true},
		{"rgba(0 0 255 / 0.5)", Color{0, 0, 1, 0.5}, true},
		{"rgb(100%, 0%, 0%)", Color{1, 0, 0, 1}, true},
		{"hsl(0, 100%, 50%)", Color{1, 0, 0, 1}, true},
		{"hsla(120deg, 100%, 50%, 0.25)", Color{0, 1, 0, 0.25}, true},
		{"rgb(1, 2)", Color{}, false},
		{"hsl(x, 1%, 1%)", Color{}, false},
		{"#zzz", Color{}, false},
		{"cmyk(0, 0, 0, 0)", Color{}, false},
		{"chartreuse", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !colorNear(got, tt.want) {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorPremultiplied(t *testing.T) {
	got := Color{1, 0.5, 0, 0.5}.toRGBA()
	if got != (color.RGBA{128, 64, 0, 128}) {
		t.Errorf("toRGBA = %v", got)
	}
}
