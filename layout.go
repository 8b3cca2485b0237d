package letterfall

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// fragment is a laid-out run of text belonging to one text node.
type fragment struct {
	text          string
	rect          Rect
	font          Font
	letterSpacing float64
}

type pieceKind uint8

const (
	pieceWord  pieceKind = iota // non-whitespace text; never broken
	pieceSpace                  // whitespace; a line may break after it
	pieceBreak                  // forced line break (white-space: pre)
	pieceAtom                   // inline-block box
)

// piece is one unit of inline content waiting to be placed on a line.
type piece struct {
	kind        pieceKind
	node        *Node // text node, or the inline-block element
	text        string
	w, h        float64
	margin      float64 // atoms only
	padding     float64 // atoms only
	font        Font
	ls          float64
	wrap        bool // space: a line may break here
	collapsible bool // space: dropped at the start of a line
	owners      []*Node
}

func (p *piece) advance() float64 {
	if p.kind == pieceAtom {
		return p.w + 2*p.padding + 2*p.margin
	}
	return p.w
}

// inlineCtx carries whitespace state across the pieces of one inline
// formatting context.
type inlineCtx struct {
	afterSpace bool // previous piece ended in whitespace (or context start)
}

// layoutState accumulates the results of one layout pass.
type layoutState struct {
	doc   *Document
	rects map[*Node]Rect
	frags map[*Node][]fragment
	fixed []*Node
}

// layout computes boxes for every connected node. Styles must be current.
func (d *Document) layout() {
	l := &layoutState{
		doc:   d,
		rects: make(map[*Node]Rect),
		frags: make(map[*Node][]fragment),
	}
	l.layoutBox(d.body, 0, 0, d.width, false)
	for i := 0; i < len(l.fixed); i++ {
		f := l.fixed[i]
		cs := l.style(f)
		l.layoutBox(f, cs.Left(), cs.Top(), max(0, d.width-cs.Left()), true)
	}
	d.rects = l.rects
	d.frags = l.frags
}

func (l *layoutState) style(n *Node) *ComputedStyle {
	if cs, ok := l.doc.styles[n]; ok {
		return cs
	}
	return &initialStyle
}

func (l *layoutState) font(cs *ComputedStyle) Font {
	return l.doc.Fonts().Resolve(cs)
}

// layoutBox lays out a block-level box at (x, y) within avail width and
// returns its outer size. With shrink, an auto width fits the content.
func (l *layoutState) layoutBox(n *Node, x, y, avail float64, shrink bool) (outerW, outerH float64) {
	cs := l.style(n)
	m, pad := cs.Margin(), cs.Padding()
	contentW, hasW := cs.Width()
	if !hasW {
		contentW = max(0, avail-2*m-2*pad)
	}
	usedW, contentH := l.layoutChildren(n, x+m+pad, y+m+pad, contentW)
	if shrink && !hasW {
		contentW = usedW
	}
	if h, ok := cs.Height(); ok {
		contentH = h
	}
	l.rects[n] = Rect{x + m, y + m, contentW + 2*pad, contentH + 2*pad}
	return contentW + 2*pad + 2*m, contentH + 2*pad + 2*m
}

// layoutChildren stacks block children and flows runs of inline children
// into line boxes. It returns the widest line and the content height.
func (l *layoutState) layoutChildren(n *Node, cx, cy, width float64) (usedW, height float64) {
	cursor := cy
	var group []piece
	ctx := inlineCtx{afterSpace: true}
	flush := func() {
		if len(group) > 0 {
			w, h := l.placeLines(group, cx, cursor, width)
			cursor += h
			usedW = max(usedW, w)
		}
		group = group[:0]
		ctx = inlineCtx{afterSpace: true}
	}
	for _, c := range n.children {
		if c.Type == NodeTypeText {
			group = l.collectText(c, nil, group, &ctx)
			continue
		}
		cs := l.style(c)
		switch {
		case cs.Display() == DisplayNone:
		case cs.Position() == PositionFixed:
			l.fixed = append(l.fixed, c)
		case cs.Display() == DisplayBlock:
			flush()
			w, h := l.layoutBox(c, cx, cursor, width, false)
			cursor += h
			usedW = max(usedW, w)
		default:
			group = l.collectInline(c, nil, group, &ctx)
		}
	}
	flush()
	return usedW, cursor - cy
}

// collectInline appends the pieces of an inline-level element.
func (l *layoutState) collectInline(n *Node, owners []*Node, out []piece, ctx *inlineCtx) []piece {
	cs := l.style(n)
	if cs.Display() != DisplayInline {
		w, h := l.atomSize(n, cs)
		ctx.afterSpace = false
		return append(out, piece{
			kind:    pieceAtom,
			node:    n,
			w:       w,
			h:       h,
			margin:  cs.Margin(),
			padding: cs.Padding(),
			owners:  owners,
		})
	}
	owners = append(owners[:len(owners):len(owners)], n)
	for _, c := range n.children {
		if c.Type == NodeTypeText {
			out = l.collectText(c, owners, out, ctx)
			continue
		}
		ccs := l.style(c)
		switch {
		case ccs.Display() == DisplayNone:
		case ccs.Position() == PositionFixed:
			l.fixed = append(l.fixed, c)
		default:
			out = l.collectInline(c, owners, out, ctx)
		}
	}
	return out
}

// atomSize returns the content size of an inline-block: explicit width and
// height where declared, otherwise the size of its content.
func (l *layoutState) atomSize(n *Node, cs *ComputedStyle) (w, h float64) {
	w, hasW := cs.Width()
	h, hasH := cs.Height()
	if hasW && hasH {
		return w, h
	}
	scratch := &layoutState{doc: l.doc, rects: make(map[*Node]Rect), frags: make(map[*Node][]fragment)}
	avail := l.doc.width
	if hasW {
		avail = w
	}
	usedW, usedH := scratch.layoutChildren(n, 0, 0, avail)
	if !hasW {
		w = usedW
	}
	if !hasH {
		h = usedH
	}
	return w, h
}

// collectText tokenizes a text node into word, space and break pieces
// according to its white-space mode.
func (l *layoutState) collectText(n *Node, owners []*Node, out []piece, ctx *inlineCtx) []piece {
	cs := l.style(n)
	f := l.font(cs)
	lh := lineHeightFor(cs, f)
	ls := cs.LetterSpacing()
	ws := cs.WhiteSpace()
	tt := cs.TextTransform()

	measure := func(s string) float64 {
		return f.Advance(s) + ls*float64(utf8.RuneCountInString(s))
	}
	word := func(s string) {
		s = applyTextTransform(s, tt, ctx.afterSpace)
		out = append(out, piece{kind: pieceWord, node: n, text: s, w: measure(s), h: lh, font: f, ls: ls, owners: owners})
		ctx.afterSpace = false
	}

	if ws == WhiteSpacePre {
		for i, line := range strings.Split(n.text, "\n") {
			if i > 0 {
				out = append(out, piece{kind: pieceBreak, node: n, h: lh, owners: owners})
				ctx.afterSpace = true
			}
			for _, tok := range SplitWhitespaceRuns(line) {
				if tok.Space {
					sp := strings.Repeat(" ", utf8.RuneCountInString(tok.Text))
					out = append(out, piece{kind: pieceSpace, node: n, text: sp, w: measure(sp), h: lh, font: f, ls: ls, owners: owners})
					ctx.afterSpace = true
					continue
				}
				word(tok.Text)
			}
		}
		return out
	}

	for _, tok := range SplitWhitespaceRuns(n.text) {
		if tok.Space {
			if ctx.afterSpace {
				continue
			}
			out = append(out, piece{
				kind: pieceSpace, node: n, text: " ", w: measure(" "), h: lh, font: f, ls: ls,
				wrap: ws == WhiteSpaceNormal, collapsible: true, owners: owners,
			})
			ctx.afterSpace = true
			continue
		}
		word(tok.Text)
	}
	return out
}

// placeLines breaks pieces into lines no wider than avail where possible and
// records fragment and element rects. Breaks happen only at wrapping spaces.
func (l *layoutState) placeLines(pieces []piece, x0, y0, avail float64) (usedW, height float64) {
	lineTop := y0
	x, lineH := 0.0, 0.0
	lineEmpty := true
	newLine := func() {
		lineTop += lineH
		x, lineH = 0, 0
		lineEmpty = true
	}
	place := func(p *piece) {
		r := Rect{x0 + x, lineTop, p.w, p.h}
		switch p.kind {
		case pieceAtom:
			r = Rect{x0 + x + p.margin, lineTop + p.margin, p.w + 2*p.padding, p.h + 2*p.padding}
			l.layoutChildren(p.node, r.X+p.padding, r.Y+p.padding, p.w)
			l.rects[p.node] = r
			lineH = max(lineH, r.Height+2*p.margin)
		default:
			l.frags[p.node] = append(l.frags[p.node], fragment{text: p.text, rect: r, font: p.font, letterSpacing: p.ls})
			l.union(p.node, r)
			lineH = max(lineH, p.h)
		}
		for _, o := range p.owners {
			l.union(o, r)
		}
		x += p.advance()
		usedW = max(usedW, x)
		lineEmpty = false
	}

	for i := 0; i < len(pieces); {
		p := &pieces[i]
		switch p.kind {
		case pieceBreak:
			if lineEmpty {
				lineH = max(lineH, p.h)
			}
			newLine()
			i++
		case pieceSpace:
			if !(lineEmpty && p.collapsible) {
				place(p)
			}
			i++
		default:
			j, w := i, 0.0
			for j < len(pieces) && (pieces[j].kind == pieceWord || pieces[j].kind == pieceAtom) {
				w += pieces[j].advance()
				j++
			}
			if !lineEmpty && x+w > avail && i > 0 && pieces[i-1].kind == pieceSpace && pieces[i-1].wrap {
				newLine()
			}
			for k := i; k < j; k++ {
				place(&pieces[k])
			}
			i = j
		}
	}
	return usedW, lineTop + lineH - y0
}

func (l *layoutState) union(n *Node, r Rect) {
	if cur, ok := l.rects[n]; ok {
		l.rects[n] = cur.Union(r)
		return
	}
	l.rects[n] = r
}

// lineHeightFor resolves a computed line height, falling back to the font's.
func lineHeightFor(cs *ComputedStyle, f Font) float64 {
	if lh := cs.LineHeight(); lh > 0 {
		return lh
	}
	return f.LineHeight()
}

// TextRun is a maximal run of whitespace or non-whitespace characters.
type TextRun struct {
	Text  string
	Space bool
}

// SplitWhitespaceRuns splits s into maximal runs of whitespace and
// non-whitespace, in order. Concatenating the runs gives back s.
func SplitWhitespaceRuns(s string) []TextRun {
	var runs []TextRun
	start := 0
	inSpace := false
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if i == 0 {
			inSpace = sp
			continue
		}
		if sp != inSpace {
			runs = append(runs, TextRun{s[start:i], inSpace})
			start, inSpace = i, sp
		}
	}
	if start < len(s) {
		runs = append(runs, TextRun{s[start:], inSpace})
	}
	return runs
}

// applyTextTransform changes the case of a word. wordStart reports whether
// the word follows whitespace, for capitalize.
func applyTextTransform(s string, tt TextTransform, wordStart bool) string {
	switch tt {
	case TextTransformUppercase:
		return strings.ToUpper(s)
	case TextTransformLowercase:
		return strings.ToLower(s)
	case TextTransformCapitalize:
		if !wordStart {
			return s
		}
		r, size := utf8.DecodeRuneInString(s)
		return string(unicode.ToTitle(r)) + s[size:]
	}
	return s
}
