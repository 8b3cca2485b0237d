package letterfall

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/tanema/gween/ease"
)

// Property identifies a style property.
type Property uint8

const (
	PropFontFamily Property = iota
	PropFontSize
	PropFontWeight
	PropFontStyle
	PropLetterSpacing
	PropLineHeight
	PropTextTransform
	PropFontVariant
	PropFontStretch
	PropWhiteSpace
	PropColor
	PropBackgroundColor
	PropOpacity
	PropPosition
	PropLeft
	PropTop
	PropWidth
	PropHeight
	PropMargin
	PropPadding
	PropDisplay
	PropVerticalAlign
	PropZIndex
	PropPointerEvents
	PropTransform
	PropTransition
	propCount
)

var propertyNames = [propCount]string{
	PropFontFamily:      "font-family",
	PropFontSize:        "font-size",
	PropFontWeight:      "font-weight",
	PropFontStyle:       "font-style",
	PropLetterSpacing:   "letter-spacing",
	PropLineHeight:      "line-height",
	PropTextTransform:   "text-transform",
	PropFontVariant:     "font-variant",
	PropFontStretch:     "font-stretch",
	PropWhiteSpace:      "white-space",
	PropColor:           "color",
	PropBackgroundColor: "background-color",
	PropOpacity:         "opacity",
	PropPosition:        "position",
	PropLeft:            "left",
	PropTop:             "top",
	PropWidth:           "width",
	PropHeight:          "height",
	PropMargin:          "margin",
	PropPadding:         "padding",
	PropDisplay:         "display",
	PropVerticalAlign:   "vertical-align",
	PropZIndex:          "z-index",
	PropPointerEvents:   "pointer-events",
	PropTransform:       "transform",
	PropTransition:      "transition",
}

// String returns the CSS name of the property.
func (p Property) String() string {
	if p >= propCount {
		return fmt.Sprintf("Property(%d)", uint8(p))
	}
	return propertyNames[p]
}

// PropertyByName looks up a property by its CSS name.
func PropertyByName(name string) (Property, bool) {
	for i, n := range propertyNames {
		if n == name {
			return Property(i), true
		}
	}
	return 0, false
}

// inherited reports whether the property inherits from the parent element.
func (p Property) inherited() bool {
	switch p {
	case PropFontFamily, PropFontSize, PropFontWeight, PropFontStyle,
		PropLetterSpacing, PropLineHeight, PropTextTransform, PropFontVariant,
		PropFontStretch, PropWhiteSpace, PropColor, PropPointerEvents:
		return true
	}
	return false
}

// animatable reports whether the property can be transitioned.
func (p Property) animatable() bool {
	return p == PropTransform || p == PropColor || p == PropOpacity
}

// affectsLayout reports whether changing the property can move boxes.
func (p Property) affectsLayout() bool {
	switch p {
	case PropColor, PropBackgroundColor, PropOpacity, PropTransform,
		PropTransition, PropZIndex, PropPointerEvents:
		return false
	}
	return true
}

var (
	// ErrUnknownProperty is returned for property identifiers outside the known set.
	ErrUnknownProperty = errors.New("letterfall: unknown property")
	// ErrNoValue is returned when a computed value is missing or unusable.
	ErrNoValue = errors.New("letterfall: no usable value")
	// ErrUnsupportedValue is returned for values that cannot be parsed or copied.
	ErrUnsupportedValue = errors.New("letterfall: unsupported value")
)

// Transition declares how changes to one property are animated.
type Transition struct {
	Property Property
	Duration time.Duration
	Easing   ease.TweenFunc // nil selects Ease
}

// value is the storage cell shared by every property kind.
type value struct {
	num   float64
	rel   bool // line-height: num multiplies font-size
	str   string
	color Color
	xf    Transform
	trans []Transition
}

func (v value) equal(o value) bool {
	return v.num == o.num && v.rel == o.rel && v.str == o.str &&
		v.color == o.color && v.xf == o.xf && len(v.trans) == 0 && len(o.trans) == 0
}

// Style holds the inline declarations of a node. Only properties that have
// been set take part in the cascade; everything else is inherited or takes
// its initial value.
type Style struct {
	owner *Node
	set   uint32
	vals  [propCount]value
}

// Has reports whether p is declared inline.
func (s *Style) Has(p Property) bool {
	return p < propCount && s.set&(1<<p) != 0
}

// Declared returns the inline-declared properties in enum order.
func (s *Style) Declared() []Property {
	var out []Property
	for p := Property(0); p < propCount; p++ {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Unset removes inline declarations, restoring inherited or initial values.
func (s *Style) Unset(props ...Property) {
	for _, p := range props {
		if !s.Has(p) {
			continue
		}
		s.update(p, func() {
			s.set &^= 1 << p
			s.vals[p] = value{}
		})
	}
}

func (s *Style) setValue(p Property, v value) {
	s.update(p, func() {
		s.set |= 1 << p
		s.vals[p] = v
	})
}

// update applies a change and notifies the owning document so transitions
// start and layout is invalidated.
func (s *Style) update(p Property, apply func()) {
	n := s.owner
	var doc *Document
	if n != nil {
		doc = n.Document()
	}
	if doc == nil {
		apply()
		return
	}
	before, watch := doc.beforeStyleChange(n, p)
	apply()
	if p.affectsLayout() {
		doc.layoutDirty = true
	}
	doc.afterStyleChange(n, p, before, watch)
}

// --- Setters ---

// SetFontFamily sets a comma-separated family list.
func (s *Style) SetFontFamily(family string) { s.setValue(PropFontFamily, value{str: family}) }

// SetFontSize sets the font size in pixels.
func (s *Style) SetFontSize(px float64) { s.setValue(PropFontSize, value{num: px}) }

// SetFontWeight sets the numeric weight (400 normal, 700 bold).
func (s *Style) SetFontWeight(w int) { s.setValue(PropFontWeight, value{num: float64(w)}) }

func (s *Style) SetFontStyle(fs FontStyle) { s.setValue(PropFontStyle, value{num: float64(fs)}) }

// SetLetterSpacing sets extra advance after every character, in pixels.
func (s *Style) SetLetterSpacing(px float64) { s.setValue(PropLetterSpacing, value{num: px}) }

// SetLineHeight sets the line height in pixels; 0 selects the font's own.
func (s *Style) SetLineHeight(px float64) { s.setValue(PropLineHeight, value{num: px}) }

// SetLineHeightMultiple sets a unitless line height relative to font-size.
func (s *Style) SetLineHeightMultiple(m float64) {
	s.setValue(PropLineHeight, value{num: m, rel: true})
}

func (s *Style) SetTextTransform(t TextTransform) { s.setValue(PropTextTransform, value{num: float64(t)}) }

func (s *Style) SetFontVariant(v FontVariant) { s.setValue(PropFontVariant, value{num: float64(v)}) }

// SetFontStretch sets the stretch percentage (100 is normal).
func (s *Style) SetFontStretch(pct float64) { s.setValue(PropFontStretch, value{num: pct}) }

func (s *Style) SetWhiteSpace(ws WhiteSpace) { s.setValue(PropWhiteSpace, value{num: float64(ws)}) }

func (s *Style) SetColor(c Color) { s.setValue(PropColor, value{color: c}) }

func (s *Style) SetBackgroundColor(c Color) { s.setValue(PropBackgroundColor, value{color: c}) }

func (s *Style) SetOpacity(a float64) { s.setValue(PropOpacity, value{num: a}) }

func (s *Style) SetPosition(p Position) { s.setValue(PropPosition, value{num: float64(p)}) }

func (s *Style) SetLeft(px float64) { s.setValue(PropLeft, value{num: px}) }

func (s *Style) SetTop(px float64) { s.setValue(PropTop, value{num: px}) }

func (s *Style) SetWidth(px float64) { s.setValue(PropWidth, value{num: px}) }

func (s *Style) SetHeight(px float64) { s.setValue(PropHeight, value{num: px}) }

func (s *Style) SetMargin(px float64) { s.setValue(PropMargin, value{num: px}) }

func (s *Style) SetPadding(px float64) { s.setValue(PropPadding, value{num: px}) }

func (s *Style) SetDisplay(d Display) { s.setValue(PropDisplay, value{num: float64(d)}) }

// SetVerticalAlign records the keyword; layout top-aligns every box.
func (s *Style) SetVerticalAlign(v string) { s.setValue(PropVerticalAlign, value{str: v}) }

func (s *Style) SetZIndex(z int) { s.setValue(PropZIndex, value{num: float64(z)}) }

// SetPointerEvents enables or disables hit testing for the element.
func (s *Style) SetPointerEvents(enabled bool) {
	v := 0.0
	if enabled {
		v = 1
	}
	s.setValue(PropPointerEvents, value{num: v})
}

func (s *Style) SetTransform(t Transform) { s.setValue(PropTransform, value{xf: t}) }

// SetTransition replaces the transition list. Running transitions for
// properties no longer listed are cancelled without an end event.
func (s *Style) SetTransition(ts ...Transition) {
	s.setValue(PropTransition, value{trans: slices.Clone(ts)})
}

// --- Inline getters ---

// Color returns the inline color, if declared.
func (s *Style) Color() (Color, bool) { return s.vals[PropColor].color, s.Has(PropColor) }

// Transform returns the inline transform, if declared.
func (s *Style) Transform() (Transform, bool) { return s.vals[PropTransform].xf, s.Has(PropTransform) }

// Opacity returns the inline opacity, if declared.
func (s *Style) Opacity() (float64, bool) { return s.vals[PropOpacity].num, s.Has(PropOpacity) }

// Width returns the inline width, if declared.
func (s *Style) Width() (float64, bool) { return s.vals[PropWidth].num, s.Has(PropWidth) }

// Height returns the inline height, if declared.
func (s *Style) Height() (float64, bool) { return s.vals[PropHeight].num, s.Has(PropHeight) }

// Transitions returns the inline transition list.
func (s *Style) Transitions() []Transition { return s.vals[PropTransition].trans }

// --- Computed style ---

// ComputedStyle is the fully resolved style of a node: inline declarations
// over inherited values over initial values.
type ComputedStyle struct {
	vals [propCount]value
}

// DefaultFontSize is the initial font size in pixels.
const DefaultFontSize = 16

var initialStyle = func() ComputedStyle {
	var cs ComputedStyle
	cs.vals[PropFontFamily] = value{str: "sans-serif"}
	cs.vals[PropFontSize] = value{num: DefaultFontSize}
	cs.vals[PropFontWeight] = value{num: 400}
	cs.vals[PropFontStretch] = value{num: 100}
	cs.vals[PropColor] = value{color: ColorBlack}
	cs.vals[PropOpacity] = value{num: 1}
	cs.vals[PropWidth] = value{num: -1}
	cs.vals[PropHeight] = value{num: -1}
	cs.vals[PropVerticalAlign] = value{str: "baseline"}
	cs.vals[PropPointerEvents] = value{num: 1}
	cs.vals[PropTransform] = value{xf: IdentityTransform}
	return cs
}()

// computeStyle resolves n's style given its parent's computed style
// (nil for the root).
func computeStyle(n *Node, parent *ComputedStyle) ComputedStyle {
	if n.Type == NodeTypeText && parent != nil {
		return *parent
	}
	cs := initialStyle
	if parent != nil {
		for p := Property(0); p < propCount; p++ {
			if p.inherited() {
				cs.vals[p] = parent.vals[p]
			}
		}
	}
	for p := Property(0); p < propCount; p++ {
		if n.style.Has(p) {
			cs.vals[p] = n.style.vals[p]
		}
	}
	if Display(cs.vals[PropDisplay].num) == DisplayAuto {
		cs.vals[PropDisplay].num = float64(defaultDisplay(n.Tag))
	}
	return cs
}

func defaultDisplay(tag string) Display {
	switch tag {
	case "body", "div", "p", "section", "article", "header", "footer", "main",
		"nav", "ul", "ol", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
		return DisplayBlock
	}
	return DisplayInline
}

func (cs *ComputedStyle) FontFamily() string        { return cs.vals[PropFontFamily].str }
func (cs *ComputedStyle) FontSize() float64         { return cs.vals[PropFontSize].num }
func (cs *ComputedStyle) FontWeight() int           { return int(cs.vals[PropFontWeight].num) }
func (cs *ComputedStyle) FontStyle() FontStyle      { return FontStyle(cs.vals[PropFontStyle].num) }
func (cs *ComputedStyle) LetterSpacing() float64    { return cs.vals[PropLetterSpacing].num }
func (cs *ComputedStyle) TextTransform() TextTransform {
	return TextTransform(cs.vals[PropTextTransform].num)
}
func (cs *ComputedStyle) FontVariant() FontVariant { return FontVariant(cs.vals[PropFontVariant].num) }
func (cs *ComputedStyle) FontStretch() float64     { return cs.vals[PropFontStretch].num }
func (cs *ComputedStyle) WhiteSpace() WhiteSpace   { return WhiteSpace(cs.vals[PropWhiteSpace].num) }
func (cs *ComputedStyle) Color() Color             { return cs.vals[PropColor].color }
func (cs *ComputedStyle) BackgroundColor() Color   { return cs.vals[PropBackgroundColor].color }
func (cs *ComputedStyle) Opacity() float64         { return cs.vals[PropOpacity].num }
func (cs *ComputedStyle) Position() Position       { return Position(cs.vals[PropPosition].num) }
func (cs *ComputedStyle) Left() float64            { return cs.vals[PropLeft].num }
func (cs *ComputedStyle) Top() float64             { return cs.vals[PropTop].num }
func (cs *ComputedStyle) Margin() float64          { return cs.vals[PropMargin].num }
func (cs *ComputedStyle) Padding() float64         { return cs.vals[PropPadding].num }
func (cs *ComputedStyle) Display() Display         { return Display(cs.vals[PropDisplay].num) }
func (cs *ComputedStyle) VerticalAlign() string    { return cs.vals[PropVerticalAlign].str }
func (cs *ComputedStyle) ZIndex() int              { return int(cs.vals[PropZIndex].num) }
func (cs *ComputedStyle) PointerEvents() bool      { return cs.vals[PropPointerEvents].num != 0 }
func (cs *ComputedStyle) Transform() Transform     { return cs.vals[PropTransform].xf }
func (cs *ComputedStyle) Transitions() []Transition {
	return cs.vals[PropTransition].trans
}

// LineHeight returns the resolved line height in pixels, or 0 for "normal"
// (the font's own line height).
func (cs *ComputedStyle) LineHeight() float64 {
	v := cs.vals[PropLineHeight]
	if v.rel {
		return v.num * cs.FontSize()
	}
	return v.num
}

// Width returns the declared width; ok is false for auto.
func (cs *ComputedStyle) Width() (w float64, ok bool) {
	w = cs.vals[PropWidth].num
	return w, w >= 0
}

// Height returns the declared height; ok is false for auto.
func (cs *ComputedStyle) Height() (h float64, ok bool) {
	h = cs.vals[PropHeight].num
	return h, h >= 0
}

// TransitionFor returns the last transition declared for p.
func (cs *ComputedStyle) TransitionFor(p Property) (Transition, bool) {
	ts := cs.vals[PropTransition].trans
	for i := len(ts) - 1; i >= 0; i-- {
		if ts[i].Property == p {
			return ts[i], true
		}
	}
	return Transition{}, false
}

// CopyProperty declares on dst the computed value of p from src. It fails
// for unknown properties, for properties that cannot be copied, and for
// computed values that are missing or unusable; the destination is left
// unchanged on failure.
func CopyProperty(dst *Style, src *ComputedStyle, p Property) error {
	if p >= propCount {
		return fmt.Errorf("%w: %d", ErrUnknownProperty, uint8(p))
	}
	v := src.vals[p]
	switch p {
	case PropTransition:
		return fmt.Errorf("%w: %s cannot be copied", ErrUnsupportedValue, p)
	case PropFontFamily:
		if v.str == "" {
			return fmt.Errorf("%w: %s", ErrNoValue, p)
		}
	default:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return fmt.Errorf("%w: %s", ErrNoValue, p)
		}
	}
	dst.setValue(p, v)
	return nil
}
