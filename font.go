package letterfall

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// Font is the interface for text measurement.
type Font interface {
	// Advance returns the horizontal advance of s on a single line.
	Advance(s string) float64
	// LineHeight returns the vertical distance between baselines.
	LineHeight() float64
}

// textDrawer is implemented by fonts that can rasterize.
type textDrawer interface {
	drawText(dst *ebiten.Image, s string, geo ebiten.GeoM, c Color)
}

// --- TTFFont ---

// TTFFont wraps Ebitengine's text/v2 for TrueType font rendering.
type TTFFont struct {
	face *text.GoTextFace
	lh   float64 // cached line height
}

// LoadTTFFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadTTFFont(ttfData []byte, size float64) (*TTFFont, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("letterfall: failed to parse TTF data: %w", err)
	}
	return newTTFFont(source, size), nil
}

func newTTFFont(source *text.GoTextFaceSource, size float64) *TTFFont {
	face := &text.GoTextFace{Source: source, Size: size}
	m := face.Metrics()
	return &TTFFont{face: face, lh: m.HAscent + m.HDescent + m.HLineGap}
}

// Advance returns the shaped advance of s.
func (f *TTFFont) Advance(s string) float64 {
	return text.Advance(s, f.face)
}

// MeasureString returns the width and height of the rendered text.
func (f *TTFFont) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the vertical distance between baselines.
func (f *TTFFont) LineHeight() float64 {
	return f.lh
}

// Face returns the underlying GoTextFace for direct Ebitengine text/v2 rendering.
func (f *TTFFont) Face() *text.GoTextFace {
	return f.face
}

func (f *TTFFont) drawText(dst *ebiten.Image, s string, geo ebiten.GeoM, c Color) {
	op := &text.DrawOptions{}
	op.GeoM = geo
	op.ColorScale.ScaleWithColor(c)
	op.LineSpacing = f.lh
	text.Draw(dst, s, f.face, op)
}

// --- MonoFont ---

// MonoFont is a fixed-advance font with no glyph data. It measures without
// touching the GPU or parsing font files, which keeps layout deterministic in
// tests and headless tools. It does not draw.
type MonoFont struct {
	advance float64
	lh      float64
}

// NewMonoFont returns a MonoFont whose advance is half of size and whose line
// height is 1.25 × size.
func NewMonoFont(size float64) *MonoFont {
	return &MonoFont{advance: size / 2, lh: size * 1.25}
}

// Advance returns the rune count of s times the fixed advance.
func (f *MonoFont) Advance(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * f.advance
}

func (f *MonoFont) LineHeight() float64 { return f.lh }

// --- FontBook ---

// FaceStyle selects one face within a family.
type FaceStyle struct {
	Bold      bool
	Italic    bool
	SmallCaps bool
}

// FontSource produces sized fonts for one face.
type FontSource interface {
	Font(size float64) Font
}

// TTFSource is a parsed TrueType face that caches fonts per size.
type TTFSource struct {
	src   *text.GoTextFaceSource
	sizes map[float64]*TTFFont
}

// NewTTFSource parses TrueType data.
func NewTTFSource(ttfData []byte) (*TTFSource, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("letterfall: failed to parse TTF data: %w", err)
	}
	return &TTFSource{src: src, sizes: make(map[float64]*TTFFont)}, nil
}

// Font returns the face at size, creating it on first use.
func (s *TTFSource) Font(size float64) Font {
	if f, ok := s.sizes[size]; ok {
		return f
	}
	f := newTTFFont(s.src, size)
	s.sizes[size] = f
	return f
}

// MonoSource produces MonoFonts.
type MonoSource struct{}

func (MonoSource) Font(size float64) Font { return NewMonoFont(size) }

// zeroFont measures everything as empty; used for non-positive sizes.
type zeroFont struct{}

func (zeroFont) Advance(string) float64 { return 0 }
func (zeroFont) LineHeight() float64    { return 0 }

// FontBook maps font-family names and face styles to font sources.
type FontBook struct {
	families map[string]map[FaceStyle]FontSource
	fallback string
}

// NewFontBook returns an empty book whose fallback family is "sans-serif".
func NewFontBook() *FontBook {
	return &FontBook{
		families: make(map[string]map[FaceStyle]FontSource),
		fallback: "sans-serif",
	}
}

// Register adds a face to a family. Family names are case-insensitive.
func (b *FontBook) Register(family string, style FaceStyle, src FontSource) {
	key := normalizeFamily(family)
	fam := b.families[key]
	if fam == nil {
		fam = make(map[FaceStyle]FontSource)
		b.families[key] = fam
	}
	fam[style] = src
}

// RegisterTTF parses ttfData and registers it under family.
func (b *FontBook) RegisterTTF(family string, style FaceStyle, ttfData []byte) error {
	src, err := NewTTFSource(ttfData)
	if err != nil {
		return err
	}
	b.Register(family, style, src)
	return nil
}

// SetFallback selects the family used when no listed family is registered.
func (b *FontBook) SetFallback(family string) {
	b.fallback = normalizeFamily(family)
}

// Resolve picks the font for a computed style: the first registered family of
// the font-family list, the closest face, at the computed size.
func (b *FontBook) Resolve(cs *ComputedStyle) Font {
	size := cs.FontSize()
	if size <= 0 {
		return zeroFont{}
	}
	want := FaceStyle{
		Bold:      cs.FontWeight() >= 600,
		Italic:    cs.FontStyle() == FontStyleItalic,
		SmallCaps: cs.FontVariant() == FontVariantSmallCaps,
	}
	for _, name := range strings.Split(cs.FontFamily(), ",") {
		if fam, ok := b.families[normalizeFamily(name)]; ok {
			if src := closestFace(fam, want); src != nil {
				return src.Font(size)
			}
		}
	}
	if fam, ok := b.families[b.fallback]; ok {
		if src := closestFace(fam, want); src != nil {
			return src.Font(size)
		}
	}
	return zeroFont{}
}

// closestFace drops small-caps, then italic, then bold until a face matches.
func closestFace(fam map[FaceStyle]FontSource, want FaceStyle) FontSource {
	candidates := []FaceStyle{
		want,
		{Bold: want.Bold, Italic: want.Italic},
		{Bold: want.Bold},
		{},
	}
	for _, c := range candidates {
		if src, ok := fam[c]; ok {
			return src
		}
	}
	for _, src := range fam {
		return src
	}
	return nil
}

func normalizeFamily(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, `"'`)
	return strings.ToLower(name)
}

// DefaultFontBook registers the Go font family under "go", "sans-serif" and
// "serif", and Go Mono under "go mono" and "monospace".
func DefaultFontBook() (*FontBook, error) {
	b := NewFontBook()
	faces := []struct {
		families []string
		style    FaceStyle
		data     []byte
	}{
		{[]string{"go", "sans-serif", "serif"}, FaceStyle{}, goregular.TTF},
		{[]string{"go", "sans-serif", "serif"}, FaceStyle{Bold: true}, gobold.TTF},
		{[]string{"go", "sans-serif", "serif"}, FaceStyle{Italic: true}, goitalic.TTF},
		{[]string{"go", "sans-serif", "serif"}, FaceStyle{Bold: true, Italic: true}, gobolditalic.TTF},
		{[]string{"go", "sans-serif", "serif"}, FaceStyle{SmallCaps: true}, gosmallcaps.TTF},
		{[]string{"go mono", "monospace"}, FaceStyle{}, gomono.TTF},
		{[]string{"go mono", "monospace"}, FaceStyle{Bold: true}, gomonobold.TTF},
	}
	for _, f := range faces {
		src, err := NewTTFSource(f.data)
		if err != nil {
			return nil, err
		}
		for _, fam := range f.families {
			b.Register(fam, f.style, src)
		}
	}
	return b, nil
}

// MonoFontBook resolves every family to MonoFont.
func MonoFontBook() *FontBook {
	b := NewFontBook()
	b.Register("sans-serif", FaceStyle{}, MonoSource{})
	return b
}
