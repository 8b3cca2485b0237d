package letterfall

import (
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandBackground CommandType = iota // filled element box
	CommandText                          // text fragment
)

// RenderCommand is a single draw instruction emitted during tree traversal.
type RenderCommand struct {
	Type      CommandType
	Transform [6]float64
	Rect      Rect
	Color     Color // alpha includes inherited opacity
	Text      string
	Layer     uint8 // 0 normal flow, 1 positioned
	ZIndex    int
	treeOrder int

	node          *Node // owning element
	font          Font
	letterSpacing float64
	hittable      bool
}

// traverse walks the tree depth-first and emits render commands. With all
// set, transparent backgrounds are emitted too so hit testing sees every box.
func (d *Document) traverse(n *Node, parent [6]float64, parentAlpha float64, layer uint8, z int, all bool, treeOrder *int) {
	cs := d.styles[n]
	if cs == nil {
		return
	}
	if n.Type == NodeTypeText {
		owner := n.Parent
		c := cs.Color()
		c.A *= parentAlpha
		for _, f := range d.frags[n] {
			if isBlank(f.text) {
				continue
			}
			*treeOrder++
			d.commands = append(d.commands, RenderCommand{
				Type:          CommandText,
				Transform:     parent,
				Rect:          f.rect,
				Color:         c,
				Text:          f.text,
				Layer:         layer,
				ZIndex:        z,
				treeOrder:     *treeOrder,
				node:          owner,
				font:          f.font,
				letterSpacing: f.letterSpacing,
				hittable:      cs.PointerEvents(),
			})
		}
		return
	}
	if cs.Display() == DisplayNone {
		return
	}
	if cs.Position() == PositionFixed {
		layer, z = 1, cs.ZIndex()
	}
	rect := d.rects[n]
	m := parent
	if xf := cs.Transform(); !xf.IsIdentity() {
		m = multiplyAffine(parent, xf.Matrix(rect.X+rect.Width/2, rect.Y+rect.Height/2))
	}
	alpha := parentAlpha * cs.Opacity()

	bg := cs.BackgroundColor()
	if (all || bg.A > 0) && !rect.Empty() {
		bg.A *= alpha
		*treeOrder++
		d.commands = append(d.commands, RenderCommand{
			Type:      CommandBackground,
			Transform: m,
			Rect:      rect,
			Color:     bg,
			Layer:     layer,
			ZIndex:    z,
			treeOrder: *treeOrder,
			node:      n,
			hittable:  cs.PointerEvents(),
		})
	}
	for _, child := range n.children {
		d.traverse(child, m, alpha, layer, z, all, treeOrder)
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' {
			return false
		}
	}
	return true
}

// buildCommands refreshes layout and fills d.commands in paint order.
func (d *Document) buildCommands(all bool) {
	d.refresh()
	d.commands = d.commands[:0]
	treeOrder := 0
	d.traverse(d.body, identityAffine, 1, 0, 0, all, &treeOrder)
	d.mergeSort()
}

// Draw renders the document onto screen, then captures queued screenshots.
func (d *Document) Draw(screen *ebiten.Image) {
	var stats debugStats
	var t0 time.Time
	if d.debug {
		t0 = time.Now()
	}

	d.buildCommands(false)

	if d.debug {
		stats.traverseTime = time.Since(t0)
		stats.commandCount = len(d.commands)
		t0 = time.Now()
	}

	screen.Fill(d.Canvas)
	d.submit(screen)

	if d.debug {
		stats.submitTime = time.Since(t0)
		stats.transitionCount = len(d.runs)
		stats.timerCount = len(d.timers)
		d.debugLog(stats)
	}
	d.flushScreenshots(screen)
}

// ElementAt returns the topmost element whose (transformed) box or text
// contains the viewport point (x, y) and whose pointer-events are enabled.
// Returns nil when nothing is hit.
func (d *Document) ElementAt(x, y float64) *Node {
	d.buildCommands(true)
	for i := len(d.commands) - 1; i >= 0; i-- {
		cmd := &d.commands[i]
		if !cmd.hittable || cmd.node == nil {
			continue
		}
		lx, ly := transformPoint(invertAffine(cmd.Transform), x, y)
		if cmd.Rect.Contains(lx, ly) {
			return cmd.node
		}
	}
	return nil
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same position as b.
// Using <= for treeOrder ensures stability.
func commandLessOrEqual(a, b *RenderCommand) bool {
	if a.Layer != b.Layer {
		return a.Layer < b.Layer
	}
	if a.ZIndex != b.ZIndex {
		return a.ZIndex < b.ZIndex
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts d.commands in-place using d.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (d *Document) mergeSort() {
	n := len(d.commands)
	if n <= 1 {
		return
	}
	if cap(d.sortBuf) < n {
		d.sortBuf = make([]RenderCommand, n)
	}
	d.sortBuf = d.sortBuf[:n]

	a := d.commands
	b := d.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(d.commands, d.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for ; i < mid; i, k = i+1, k+1 {
		dst[k] = src[i]
	}
	for ; j < hi; j, k = j+1, k+1 {
		dst[k] = src[j]
	}
}

// --- Submission ---

var (
	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
)

func whitePixel() *ebiten.Image {
	if whiteSubImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
		whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// submit draws the sorted commands.
func (d *Document) submit(dst *ebiten.Image) {
	for i := range d.commands {
		cmd := &d.commands[i]
		if cmd.Color.A <= 0 {
			continue
		}
		switch cmd.Type {
		case CommandBackground:
			drawBox(dst, cmd.Transform, cmd.Rect, cmd.Color)
		case CommandText:
			drawFragment(dst, cmd)
		}
	}
}

// drawBox fills r transformed by m. Axis-aligned boxes take the vector fast
// path; rotated or scaled boxes are filled as a quad.
func drawBox(dst *ebiten.Image, m [6]float64, r Rect, c Color) {
	if m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 {
		vector.DrawFilledRect(dst,
			float32(r.X+m[4]), float32(r.Y+m[5]),
			float32(r.Width), float32(r.Height), c, true)
		return
	}
	var p vector.Path
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y)
	x2, y2 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	x3, y3 := transformPoint(m, r.X, r.Y+r.Height)
	p.MoveTo(float32(x0), float32(y0))
	p.LineTo(float32(x1), float32(y1))
	p.LineTo(float32(x2), float32(y2))
	p.LineTo(float32(x3), float32(y3))
	p.Close()

	vs, is := p.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR = float32(c.R)
		vs[i].ColorG = float32(c.G)
		vs[i].ColorB = float32(c.B)
		vs[i].ColorA = float32(c.A)
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	dst.DrawTriangles(vs, is, whitePixel(), op)
}

// geoM converts an affine matrix to an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// drawFragment draws a text fragment, centering the font's line box in the
// fragment's line height.
func drawFragment(dst *ebiten.Image, cmd *RenderCommand) {
	drawer, ok := cmd.font.(textDrawer)
	if !ok {
		return
	}
	world := geoM(cmd.Transform)
	y := cmd.Rect.Y + (cmd.Rect.Height-cmd.font.LineHeight())/2
	if cmd.letterSpacing == 0 {
		var g ebiten.GeoM
		g.Translate(cmd.Rect.X, y)
		g.Concat(world)
		drawer.drawText(dst, cmd.Text, g, cmd.Color)
		return
	}
	x := cmd.Rect.X
	for _, r := range cmd.Text {
		s := string(r)
		var g ebiten.GeoM
		g.Translate(x, y)
		g.Concat(world)
		drawer.drawText(dst, s, g, cmd.Color)
		x += cmd.font.Advance(s) + cmd.letterSpacing
	}
}
