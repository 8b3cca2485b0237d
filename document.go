package letterfall

import (
	"fmt"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Document is the top-level object that owns the node tree, the clock that
// drives timers and transitions, layout results and render buffers.
//
// A Document is single-threaded: all tree, style and clock operations must
// happen on the goroutine that drives Update and Draw.
type Document struct {
	body          *Node
	width, height float64
	fonts         *FontBook
	log           *zap.Logger
	debug         bool

	// Canvas is the color the screen is cleared to before drawing.
	Canvas Color

	// Clock
	now      time.Duration
	timers   []*Timer
	timerSeq uint64
	runs     map[runKey]*transitionRun
	runSeq   uint64
	hooks    []*updateHook
	loadFns  []func()
	loaded   bool
	quit     bool

	// Layout state
	layoutDirty bool
	stylesDirty bool
	styledAt    time.Duration
	styles      map[*Node]*ComputedStyle
	rects       map[*Node]Rect
	frags       map[*Node][]fragment

	// Render state
	commands []RenderCommand
	sortBuf  []RenderCommand

	input inputState

	// Screenshots and scripted runs
	ScreenshotDir   string
	screenshotQueue []string
	script          *Script
}

// DocumentOption configures a Document at construction.
type DocumentOption func(*Document)

// WithFontBook sets the font book used to resolve computed styles to fonts.
func WithFontBook(b *FontBook) DocumentOption {
	return func(d *Document) { d.fonts = b }
}

// WithLogger sets the document logger.
func WithLogger(l *zap.Logger) DocumentOption {
	return func(d *Document) { d.SetLogger(l) }
}

// NewDocument creates a document with an empty body and the given viewport
// size in pixels.
func NewDocument(width, height float64, opts ...DocumentOption) *Document {
	d := &Document{
		width:         width,
		height:        height,
		log:           zap.NewNop(),
		Canvas:        Color{1, 1, 1, 1},
		runs:          make(map[runKey]*transitionRun),
		layoutDirty:   true,
		ScreenshotDir: "screenshots",
	}
	d.body = NewElement("body")
	d.body.doc = d
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Body returns the document's body element.
func (d *Document) Body() *Node {
	return d.body
}

// Viewport returns the viewport size.
func (d *Document) Viewport() (width, height float64) {
	return d.width, d.height
}

// SetViewport resizes the viewport. Layout is recomputed on next use.
func (d *Document) SetViewport(width, height float64) {
	if d.width == width && d.height == height {
		return
	}
	d.width, d.height = width, height
	d.layoutDirty = true
}

// Fonts returns the font book, loading the Go fonts on first use.
func (d *Document) Fonts() *FontBook {
	if d.fonts == nil {
		b, err := DefaultFontBook()
		if err != nil {
			panic(fmt.Sprintf("letterfall: default fonts: %v", err))
		}
		d.fonts = b
	}
	return d.fonts
}

// SetLogger replaces the document logger. A nil logger discards output.
func (d *Document) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	d.log = l
}

// Logger returns the document logger.
func (d *Document) Logger() *zap.Logger {
	return d.log
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame timing stats are logged at debug level.
func (d *Document) SetDebugMode(enabled bool) {
	d.debug = enabled
	globalDebug = enabled
	debugLogger = zap.NewNop()
	if enabled {
		debugLogger = d.log
	}
}

// globalDebug mirrors the most recently set Document debug flag so that node
// operations (which lack a Document pointer) can check it cheaply. Only valid
// with a single Document; multiple Documents with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// --- Queries ---

// Query returns the first element in document order carrying class, or nil.
func (d *Document) Query(class string) *Node {
	var found *Node
	d.body.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Type == NodeTypeElement && n.HasClass(class) {
			found = n
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every element carrying class in document order.
func (d *Document) QueryAll(class string) []*Node {
	var out []*Node
	d.body.Walk(func(n *Node) bool {
		if n.Type == NodeTypeElement && n.HasClass(class) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// BoundingRect returns the layout box of n in viewport coordinates, without
// transforms. Nodes that are detached or generate no box return a zero Rect.
func (d *Document) BoundingRect(n *Node) Rect {
	d.refresh()
	return d.rects[n]
}

// VisualRect returns the axis-aligned bounds of n's box after the transforms
// of n and its ancestors, as it appears on screen.
func (d *Document) VisualRect(n *Node) Rect {
	d.refresh()
	r, ok := d.rects[n]
	if !ok {
		return Rect{}
	}
	var path []*Node
	for p := n; p != nil; p = p.Parent {
		if p.Type == NodeTypeElement {
			path = append(path, p)
		}
	}
	m := identityAffine
	for _, p := range slices.Backward(path) {
		xf := d.styles[p].Transform()
		if xf.IsIdentity() {
			continue
		}
		pr := d.rects[p]
		m = multiplyAffine(m, xf.Matrix(pr.X+pr.Width/2, pr.Y+pr.Height/2))
	}
	return transformRect(m, r)
}

// ComputedStyle returns a snapshot of n's resolved style, including the
// current values of running transitions. Detached nodes are resolved against
// their own ancestors.
func (d *Document) ComputedStyle(n *Node) *ComputedStyle {
	d.refresh()
	if cs, ok := d.styles[n]; ok {
		c := *cs
		return &c
	}
	var path []*Node
	for p := n; p != nil; p = p.Parent {
		path = append(path, p)
	}
	var parent *ComputedStyle
	for _, p := range slices.Backward(path) {
		cs := computeStyle(p, parent)
		parent = &cs
	}
	return parent
}

// --- Load ---

// OnLoad registers fn to run when the document loads. After the document has
// loaded, fn is scheduled to run on the next Advance.
func (d *Document) OnLoad(fn func()) {
	if d.loaded {
		d.AfterFunc(0, fn)
		return
	}
	d.loadFns = append(d.loadFns, fn)
}

// Load marks the document loaded and runs load callbacks in registration
// order. Subsequent calls do nothing.
func (d *Document) Load() {
	if d.loaded {
		return
	}
	d.loaded = true
	fns := d.loadFns
	d.loadFns = nil
	for _, fn := range fns {
		fn()
	}
}

// Loaded reports whether Load has been called.
func (d *Document) Loaded() bool {
	return d.loaded
}

// Quit asks Run to stop after the current frame.
func (d *Document) Quit() {
	d.quit = true
}

// --- Clock ---

// Now returns the document clock: the total time advanced so far.
func (d *Document) Now() time.Duration {
	return d.now
}

// Advance moves the clock forward by dt. Due timers and transition
// completions are processed in timestamp order, with the clock set to each
// event's time while its callbacks run. Update hooks run last.
func (d *Document) Advance(dt time.Duration) {
	dt = max(dt, 0)
	target := d.now + dt
	for {
		t := d.nextTimer(target)
		r := d.nextRunEnd(target)
		if t == nil && r == nil {
			break
		}
		if r == nil || (t != nil && t.due <= r.end()) {
			d.now = max(d.now, t.due)
			d.timers = slices.Delete(d.timers, 0, 1)
			t.active = false
			t.fn()
			continue
		}
		d.now = max(d.now, r.end())
		d.finishRun(r)
	}
	d.now = target
	if len(d.runs) > 0 {
		d.stylesDirty = true
	}
	for _, h := range slices.Clone(d.hooks) {
		if !h.removed {
			h.fn(dt)
		}
	}
}

// Update dispatches pointer clicks, advances the document by one tick
// (1/TPS seconds) and steps the attached script, if any.
func (d *Document) Update() {
	dt := time.Second / time.Duration(ebiten.TPS())
	d.processInput()
	d.Advance(dt)
	if d.script != nil {
		d.script.step(d)
	}
}

// --- Styles and layout ---

// refresh brings computed styles and layout up to date.
func (d *Document) refresh() {
	if d.layoutDirty {
		d.restyle()
		d.layout()
		d.layoutDirty = false
		return
	}
	if d.stylesDirty || (len(d.runs) > 0 && d.styledAt != d.now) {
		d.restyle()
	}
}

// restyle recomputes every connected node's style, overlaying the current
// values of running transitions.
func (d *Document) restyle() {
	d.styles = make(map[*Node]*ComputedStyle, len(d.styles))
	d.restyleNode(d.body, nil)
	d.stylesDirty = false
	d.styledAt = d.now
}

func (d *Document) restyleNode(n *Node, parent *ComputedStyle) {
	cs := computeStyle(n, parent)
	if n.Type == NodeTypeElement && len(d.runs) > 0 {
		for _, p := range [...]Property{PropTransform, PropColor, PropOpacity} {
			if r := d.runs[runKey{n, p}]; r != nil {
				cs.vals[p] = r.valueAt(d.now)
			}
		}
	}
	d.styles[n] = &cs
	for _, c := range n.children {
		d.restyleNode(c, &cs)
	}
}
