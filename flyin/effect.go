package flyin

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/phanxgames/letterfall"
)

// TransformEasing is the curve used for the flight path,
// cubic-bezier(.2, .7, .2, 1).
var TransformEasing = letterfall.CubicBezier(.2, .7, .2, 1)

// Rand is the source of randomness for placement, color and timing.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Option configures an Effect.
type Option func(*Effect)

// WithRand sets the random source. Tests use a seeded source to make runs
// reproducible.
func WithRand(r Rand) Option {
	return func(e *Effect) { e.rng = r }
}

// WithLogger sets the logger. The default is the document's logger, named
// "flyin".
func WithLogger(l *zap.Logger) Option {
	return func(e *Effect) { e.log = l }
}

// Effect animates the characters of every target container from the origin
// region to their resting positions.
type Effect struct {
	doc *letterfall.Document
	cfg Config
	rng Rand
	log *zap.Logger

	flights    []*flight
	removeHook func()
	installed  bool
}

// New creates an effect for doc. cfg is copied.
func New(doc *letterfall.Document, cfg Config, opts ...Option) *Effect {
	e := &Effect{doc: doc, cfg: cfg, rng: globalRand{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = doc.Logger().Named("flyin")
	}
	return e
}

// Config returns the effect's configuration.
func (e *Effect) Config() Config { return e.cfg }

// Install arranges for Run to be called StartDelay after the document loads.
// Calling it more than once has no further effect.
func (e *Effect) Install() {
	if e.installed {
		return
	}
	e.installed = true
	e.doc.OnLoad(func() {
		e.doc.AfterFunc(e.cfg.StartDelay, func() { e.Run() })
	})
}

// Run starts the effect on every target container and returns the number
// of characters launched. A document without an origin element is left
// untouched.
func (e *Effect) Run() int {
	origin := e.doc.Query(e.cfg.OriginClass)
	if origin == nil {
		e.log.Debug("no origin element", zap.String("class", e.cfg.OriginClass))
		return 0
	}
	originRect := e.doc.BoundingRect(origin)
	targets := e.doc.QueryAll(e.cfg.TargetClass)
	if len(targets) == 0 {
		e.log.Debug("no target containers", zap.String("class", e.cfg.TargetClass))
		return 0
	}

	total := 0
	for _, c := range targets {
		if !c.IsConnected() {
			continue
		}
		total += e.runContainer(c, originRect)
	}
	if total > 0 && e.removeHook == nil {
		e.removeHook = e.doc.AddUpdateHook(e.sweep)
	}
	e.log.Debug("run",
		zap.Int("containers", len(targets)),
		zap.Int("characters", total),
		zap.Stringer("origin", rectField(originRect)),
	)
	return total
}

type measured struct {
	unit  *letterfall.Node
	rect  letterfall.Rect
	style *letterfall.ComputedStyle
}

func (e *Effect) runContainer(c *letterfall.Node, origin letterfall.Rect) int {
	e.settleContainer(c)
	timing := ResolveTiming(c, e.cfg.Timing)
	chars := Decompose(c)

	// Measure everything before detaching anything. Placeholders keep the
	// layout identical, so the results match measuring one at a time.
	ms := make([]measured, 0, len(chars))
	for _, ch := range chars {
		r := e.doc.BoundingRect(ch)
		if r.Width == 0 && r.Height == 0 {
			continue
		}
		ms = append(ms, measured{ch, r, e.doc.ComputedStyle(ch)})
	}
	for i, m := range ms {
		e.launch(c, m, origin, timing, i)
	}
	if skipped := len(chars) - len(ms); skipped > 0 {
		e.log.Debug("skipped empty characters", zap.Int("count", skipped))
	}
	return len(ms)
}

// launch detaches one character and schedules its flight home.
func (e *Effect) launch(c *letterfall.Node, m measured, origin letterfall.Rect, timing Timing, index int) {
	startX := origin.X + e.rng.Float64()*origin.Width
	startY := origin.Y + e.rng.Float64()*origin.Height
	dx := startX - m.rect.X
	dy := startY - m.rect.Y

	ph := letterfall.NewElement("span", ClassPlaceholder)
	ps := ph.Style()
	ps.SetDisplay(letterfall.DisplayInlineBlock)
	ps.SetWidth(m.rect.Width)
	ps.SetHeight(m.rect.Height)
	ps.SetVerticalAlign(m.style.VerticalAlign())
	ps.SetWhiteSpace(letterfall.WhiteSpacePre)
	for _, p := range placeholderFontProps {
		_ = letterfall.CopyProperty(ps, m.style, p)
	}

	m.unit.Parent.ReplaceChild(ph, m.unit)
	e.doc.Body().AddChild(m.unit)

	extraY := e.uniform(e.cfg.ExtraY.Min, e.cfg.ExtraY.Max)
	rot := e.uniform(e.cfg.Rotation.Min, e.cfg.Rotation.Max)
	scale := e.uniform(e.cfg.Scale.Min, e.cfg.Scale.Max)

	us := m.unit.Style()
	us.SetPosition(letterfall.PositionFixed)
	us.SetLeft(m.rect.X)
	us.SetTop(m.rect.Y)
	us.SetMargin(0)
	us.SetPadding(0)
	us.SetTransform(letterfall.Transform{
		TranslateX: dx,
		TranslateY: dy + extraY,
		Rotate:     rot,
		Scale:      scale,
	})
	us.SetColor(randomColor(e.rng))
	us.SetZIndex(e.cfg.ZIndex)
	us.SetPointerEvents(false)
	us.SetWhiteSpace(letterfall.WhiteSpacePre)
	us.SetOpacity(e.cfg.StartOpacity)
	for _, p := range unitFontProps {
		_ = letterfall.CopyProperty(us, m.style, p)
	}

	duration := math.Round(e.uniform(timing.MinDuration, timing.MaxDuration))
	colorDur := math.Round(e.uniform(timing.MinColorDur, timing.MaxColorDur))
	us.SetTransition(
		letterfall.Transition{Property: letterfall.PropTransform, Duration: millis(duration), Easing: TransformEasing},
		letterfall.Transition{Property: letterfall.PropColor, Duration: millis(colorDur), Easing: ease.Linear},
		letterfall.Transition{Property: letterfall.PropOpacity, Duration: millis(math.Round(duration / 2)), Easing: letterfall.Ease},
	)

	delay := e.rng.Float64()*timing.MaxInitialDelay + float64(index)*timing.PerCharStagger

	f := &flight{
		e:           e,
		container:   c,
		unit:        m.unit,
		placeholder: ph,
		finalColor:  m.style.Color(),
		state:       StateFloating,
	}
	f.unlisten = m.unit.AddTransitionEndListener(f.onTransitionEnd)
	f.timer = e.doc.AfterFunc(e.cfg.CommitDelay+millis(delay), f.commit)
	e.flights = append(e.flights, f)
}

// InFlight returns the number of characters still away from home.
func (e *Effect) InFlight() int {
	return len(e.flights)
}

// Finish settles every in-flight character immediately.
func (e *Effect) Finish() {
	for _, f := range slices.Clone(e.flights) {
		f.settle()
	}
}

func (e *Effect) settleContainer(c *letterfall.Node) {
	for _, f := range slices.Clone(e.flights) {
		if f.container == c {
			f.settle()
		}
	}
}

// sweep runs after every clock step and repairs flights whose nodes were
// moved by someone else.
func (e *Effect) sweep(time.Duration) {
	for _, f := range slices.Clone(e.flights) {
		switch {
		case !f.placeholder.IsConnected():
			e.log.Debug("container left the document, cancelling flight")
			f.cancel()
		case !f.unit.IsConnected():
			f.settle()
		}
	}
}

func (e *Effect) forget(f *flight) {
	if i := slices.Index(e.flights, f); i >= 0 {
		e.flights = slices.Delete(e.flights, i, i+1)
	}
	if len(e.flights) == 0 && e.removeHook != nil {
		e.removeHook()
		e.removeHook = nil
	}
}

func (e *Effect) uniform(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}

// randomColor picks a saturated mid-lightness hue.
func randomColor(r Rand) letterfall.Color {
	h := math.Floor(r.Float64() * 360)
	s := 60 + math.Floor(r.Float64()*20)
	l := 45 + math.Floor(r.Float64()*15)
	c := colorful.Hsl(h, s/100, l/100).Clamped()
	return letterfall.Color{R: c.R, G: c.G, B: c.B, A: 1}
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

type rectField letterfall.Rect

func (r rectField) String() string {
	return fmt.Sprintf("%gx%g@%g,%g", r.Width, r.Height, r.X, r.Y)
}
