package letterfall

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 channels simultaneously. Transitions
// sample a group by seeking it to the elapsed document time, so a group never
// keeps its own clock.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	values [4]float64
	Done   bool
}

// NewTweenGroup creates a group that moves each channel from[i] to to[i]
// over duration seconds. A nil fn selects ease.Linear. Panics if the slices
// differ in length or hold more than 4 channels.
func NewTweenGroup(from, to []float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	if len(from) != len(to) || len(from) > 4 {
		panic("letterfall: tween group needs 1 to 4 matching channels")
	}
	if fn == nil {
		fn = ease.Linear
	}
	g := &TweenGroup{count: len(from)}
	for i := range from {
		g.values[i] = from[i]
		if duration <= 0 {
			g.values[i] = to[i]
			continue
		}
		g.tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, fn)
	}
	g.Done = duration <= 0
	return g
}

// Seek positions every tween at t seconds from its start.
func (g *TweenGroup) Seek(t float32) {
	if g.tweens[0] == nil {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Set(t)
		g.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// Value returns the current value of channel i.
func (g *TweenGroup) Value(i int) float64 {
	return g.values[i]
}

// currentValue returns the value of p as currently rendered: the running
// transition value, then the inline value, then the inherited or initial
// value.
func currentValue(n *Node, p Property) value {
	if doc := n.Document(); doc != nil {
		if r := doc.runs[runKey{n, p}]; r != nil {
			return r.valueAt(doc.now)
		}
	}
	if n.style.Has(p) {
		return n.style.vals[p]
	}
	if p.inherited() && n.Parent != nil {
		return currentValue(n.Parent, p)
	}
	return initialStyle.vals[p]
}

// baseValue is currentValue ignoring any running transition on n itself.
func baseValue(n *Node, p Property) value {
	if n.style.Has(p) {
		return n.style.vals[p]
	}
	if p.inherited() && n.Parent != nil {
		return currentValue(n.Parent, p)
	}
	return initialStyle.vals[p]
}
