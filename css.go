package letterfall

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Declaration is one "property: value" pair from a style attribute.
type Declaration struct {
	Property string
	Value    string
}

// ParseDeclarations splits a style attribute into declarations. Empty and
// malformed parts are dropped.
func ParseDeclarations(styleAttr string) []Declaration {
	var decls []Declaration
	for _, part := range strings.Split(styleAttr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
		if prop == "" || val == "" {
			continue
		}
		decls = append(decls, Declaration{Property: prop, Value: val})
	}
	return decls
}

// ApplyCSS declares every parseable property of a style attribute on s.
// The first error is returned after all declarations have been attempted.
func (s *Style) ApplyCSS(styleAttr string) error {
	var first error
	for _, d := range ParseDeclarations(styleAttr) {
		if err := s.SetCSS(d.Property, d.Value); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SetCSS parses a CSS value for the named property and declares it.
func (s *Style) SetCSS(name, val string) error {
	p, ok := PropertyByName(strings.ToLower(name))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	val = strings.TrimSpace(val)
	kw := strings.ToLower(val)
	bad := func() error { return fmt.Errorf("%w: %s: %q", ErrUnsupportedValue, p, val) }

	switch p {
	case PropFontFamily:
		s.SetFontFamily(val)
	case PropFontSize, PropLeft, PropTop, PropMargin, PropPadding:
		px, err := parseLength(kw)
		if err != nil {
			return bad()
		}
		s.setValue(p, value{num: px})
	case PropWidth, PropHeight:
		if kw == "auto" {
			s.Unset(p)
			return nil
		}
		px, err := parseLength(kw)
		if err != nil || px < 0 {
			return bad()
		}
		s.setValue(p, value{num: px})
	case PropLetterSpacing:
		if kw == "normal" {
			s.SetLetterSpacing(0)
			return nil
		}
		px, err := parseLength(kw)
		if err != nil {
			return bad()
		}
		s.SetLetterSpacing(px)
	case PropLineHeight:
		switch {
		case kw == "normal":
			s.SetLineHeight(0)
		case strings.HasSuffix(kw, "px"):
			px, err := parseLength(kw)
			if err != nil {
				return bad()
			}
			s.SetLineHeight(px)
		default:
			m, err := strconv.ParseFloat(kw, 64)
			if err != nil {
				return bad()
			}
			s.SetLineHeightMultiple(m)
		}
	case PropFontWeight:
		switch kw {
		case "normal":
			s.SetFontWeight(400)
		case "bold":
			s.SetFontWeight(700)
		default:
			w, err := strconv.Atoi(kw)
			if err != nil {
				return bad()
			}
			s.SetFontWeight(w)
		}
	case PropFontStyle:
		switch kw {
		case "normal":
			s.SetFontStyle(FontStyleNormal)
		case "italic", "oblique":
			s.SetFontStyle(FontStyleItalic)
		default:
			return bad()
		}
	case PropTextTransform:
		switch kw {
		case "none":
			s.SetTextTransform(TextTransformNone)
		case "uppercase":
			s.SetTextTransform(TextTransformUppercase)
		case "lowercase":
			s.SetTextTransform(TextTransformLowercase)
		case "capitalize":
			s.SetTextTransform(TextTransformCapitalize)
		default:
			return bad()
		}
	case PropFontVariant:
		switch kw {
		case "normal":
			s.SetFontVariant(FontVariantNormal)
		case "small-caps":
			s.SetFontVariant(FontVariantSmallCaps)
		default:
			return bad()
		}
	case PropFontStretch:
		pct, err := strconv.ParseFloat(strings.TrimSuffix(kw, "%"), 64)
		if kw == "normal" {
			pct, err = 100, nil
		}
		if err != nil {
			return bad()
		}
		s.SetFontStretch(pct)
	case PropWhiteSpace:
		switch kw {
		case "normal":
			s.SetWhiteSpace(WhiteSpaceNormal)
		case "nowrap":
			s.SetWhiteSpace(WhiteSpaceNowrap)
		case "pre":
			s.SetWhiteSpace(WhiteSpacePre)
		default:
			return bad()
		}
	case PropColor, PropBackgroundColor:
		c, ok := ParseColor(kw)
		if !ok {
			return bad()
		}
		s.setValue(p, value{color: c})
	case PropOpacity:
		a, err := strconv.ParseFloat(kw, 64)
		if err != nil {
			return bad()
		}
		s.SetOpacity(clamp01(a))
	case PropPosition:
		switch kw {
		case "static":
			s.SetPosition(PositionStatic)
		case "fixed":
			s.SetPosition(PositionFixed)
		default:
			return bad()
		}
	case PropDisplay:
		switch kw {
		case "block":
			s.SetDisplay(DisplayBlock)
		case "inline":
			s.SetDisplay(DisplayInline)
		case "inline-block":
			s.SetDisplay(DisplayInlineBlock)
		case "none":
			s.SetDisplay(DisplayNone)
		default:
			return bad()
		}
	case PropVerticalAlign:
		s.SetVerticalAlign(kw)
	case PropZIndex:
		if kw == "auto" {
			s.SetZIndex(0)
			return nil
		}
		z, err := strconv.Atoi(kw)
		if err != nil {
			return bad()
		}
		s.SetZIndex(z)
	case PropPointerEvents:
		s.SetPointerEvents(kw != "none")
	default:
		// transform and transition are only set programmatically.
		return bad()
	}
	return nil
}

// parseLength accepts "12px", "12" and "0".
func parseLength(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
}

var namedColors = map[string]Color{
	"black":       {0, 0, 0, 1},
	"white":       {1, 1, 1, 1},
	"red":         {1, 0, 0, 1},
	"green":       {0, 128.0 / 255, 0, 1},
	"blue":        {0, 0, 1, 1},
	"yellow":      {1, 1, 0, 1},
	"orange":      {1, 165.0 / 255, 0, 1},
	"purple":      {128.0 / 255, 0, 128.0 / 255, 1},
	"gray":        {128.0 / 255, 128.0 / 255, 128.0 / 255, 1},
	"grey":        {128.0 / 255, 128.0 / 255, 128.0 / 255, 1},
	"navy":        {0, 0, 128.0 / 255, 1},
	"teal":        {0, 128.0 / 255, 128.0 / 255, 1},
	"transparent": {0, 0, 0, 0},
}

// ParseColor parses named colors, #rgb / #rrggbb, rgb()/rgba() and hsl()/hsla().
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return Color{}, false
		}
		return Color{c.R, c.G, c.B, 1}, true
	}
	fn, args, ok := splitFunc(s)
	if !ok {
		return Color{}, false
	}
	switch fn {
	case "rgb", "rgba":
		if len(args) < 3 {
			return Color{}, false
		}
		var ch [3]float64
		for i := range ch {
			v, ok := parseChannel(args[i], 255)
			if !ok {
				return Color{}, false
			}
			ch[i] = v
		}
		a, ok := alphaArg(args)
		if !ok {
			return Color{}, false
		}
		return Color{ch[0], ch[1], ch[2], a}, true
	case "hsl", "hsla":
		if len(args) < 3 {
			return Color{}, false
		}
		h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
		if err != nil {
			return Color{}, false
		}
		sat, ok1 := parseChannel(args[1], 100)
		lum, ok2 := parseChannel(args[2], 100)
		a, ok3 := alphaArg(args)
		if !ok1 || !ok2 || !ok3 {
			return Color{}, false
		}
		c := colorful.Hsl(h, sat, lum).Clamped()
		return Color{c.R, c.G, c.B, a}, true
	}
	return Color{}, false
}

// splitFunc splits "name(a, b c / d)" into name and arguments.
func splitFunc(s string) (string, []string, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, false
	}
	args := strings.FieldsFunc(s[open+1:len(s)-1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	return s[:open], args, true
}

// parseChannel parses a number or percentage into [0, 1], where plain
// numbers are divided by scale.
func parseChannel(s string, scale float64) (float64, bool) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		return clamp01(v / 100), err == nil
	}
	v, err := strconv.ParseFloat(s, 64)
	return clamp01(v / scale), err == nil
}

func alphaArg(args []string) (float64, bool) {
	if len(args) < 4 {
		return 1, true
	}
	return parseChannel(args[3], 1)
}
