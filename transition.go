package letterfall

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"
)

// CubicBezier returns an easing curve equivalent to CSS
// cubic-bezier(x1, y1, x2, y2). x1 and x2 are clamped to [0, 1].
func CubicBezier(x1, y1, x2, y2 float64) ease.TweenFunc {
	x1 = clamp01(x1)
	x2 = clamp01(x2)
	// Polynomial coefficients of B(s) = a*s^3 + b*s^2 + c*s.
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(s float64) float64 { return ((ax*s+bx)*s + cx) * s }
	sampleY := func(s float64) float64 { return ((ay*s+by)*s + cy) * s }
	slopeX := func(s float64) float64 { return (3*ax*s+2*bx)*s + cx }

	solve := func(x float64) float64 {
		s := x
		for range 8 {
			dx := sampleX(s) - x
			if math.Abs(dx) < 1e-7 {
				return s
			}
			d := slopeX(s)
			if math.Abs(d) < 1e-6 {
				break
			}
			s -= dx / d
		}
		lo, hi := 0.0, 1.0
		s = x
		for range 40 {
			v := sampleX(s)
			if math.Abs(v-x) < 1e-7 {
				break
			}
			if v < x {
				lo = s
			} else {
				hi = s
			}
			s = (lo + hi) / 2
		}
		return s
	}

	return func(t, b, c, d float32) float32 {
		if d <= 0 {
			return b + c
		}
		x := clamp01(float64(t / d))
		return b + c*float32(sampleY(solve(x)))
	}
}

// Ease is the CSS "ease" curve, cubic-bezier(.25, .1, .25, 1). It is used
// for transitions that declare no easing.
var Ease = CubicBezier(.25, .1, .25, 1)

type runKey struct {
	node *Node
	prop Property
}

// transitionRun is one property transition in progress.
type transitionRun struct {
	node     *Node
	prop     Property
	start    time.Duration
	duration time.Duration
	seq      uint64
	from, to value
	tween    *TweenGroup
}

func (r *transitionRun) end() time.Duration { return r.start + r.duration }

// valueAt samples the transition at document time now.
func (r *transitionRun) valueAt(now time.Duration) value {
	if now >= r.end() {
		return r.to
	}
	r.tween.Seek(float32((now - r.start).Seconds()))
	v := r.to
	switch r.prop {
	case PropTransform:
		v.xf = Transform{
			TranslateX: r.tween.Value(0),
			TranslateY: r.tween.Value(1),
			Rotate:     r.tween.Value(2),
			Scale:      r.tween.Value(3),
		}
	case PropColor:
		v.color = Color{r.tween.Value(0), r.tween.Value(1), r.tween.Value(2), r.tween.Value(3)}
	case PropOpacity:
		v.num = r.tween.Value(0)
	}
	return v
}

// channels flattens an animatable value for tweening.
func channels(p Property, v value) []float64 {
	switch p {
	case PropTransform:
		return []float64{v.xf.TranslateX, v.xf.TranslateY, v.xf.Rotate, v.xf.Scale}
	case PropColor:
		return []float64{v.color.R, v.color.G, v.color.B, v.color.A}
	default:
		return []float64{v.num}
	}
}

// inlineTransitionFor finds the declared transition covering p on n.
func inlineTransitionFor(n *Node, p Property) (Transition, bool) {
	ts := n.style.vals[PropTransition].trans
	for i := len(ts) - 1; i >= 0; i-- {
		if ts[i].Property == p {
			return ts[i], true
		}
	}
	return Transition{}, false
}

// beforeStyleChange captures the rendered value of p when a change to it
// could start a transition.
func (d *Document) beforeStyleChange(n *Node, p Property) (value, bool) {
	if !p.animatable() || n.disposed {
		return value{}, false
	}
	if _, ok := inlineTransitionFor(n, p); !ok {
		return value{}, false
	}
	return currentValue(n, p), true
}

// afterStyleChange starts, retargets or cancels transitions after an inline
// style write.
func (d *Document) afterStyleChange(n *Node, p Property, before value, watch bool) {
	d.stylesDirty = true
	if p == PropTransition {
		for key := range d.runs {
			if key.node != n {
				continue
			}
			if _, ok := inlineTransitionFor(n, key.prop); !ok {
				d.cancelRun(key)
			}
		}
		return
	}
	if !watch {
		return
	}
	key := runKey{n, p}
	after := baseValue(n, p)
	if r := d.runs[key]; r != nil && r.to.equal(after) {
		return
	}
	tr, _ := inlineTransitionFor(n, p)
	if before.equal(after) || tr.Duration <= 0 {
		d.cancelRun(key)
		return
	}
	fn := tr.Easing
	if fn == nil {
		fn = Ease
	}
	d.runSeq++
	d.runs[key] = &transitionRun{
		node:     n,
		prop:     p,
		start:    d.now,
		duration: tr.Duration,
		seq:      d.runSeq,
		from:     before,
		to:       after,
		tween:    NewTweenGroup(channels(p, before), channels(p, after), float32(tr.Duration.Seconds()), fn),
	}
}

func (d *Document) cancelRun(key runKey) {
	if _, ok := d.runs[key]; ok {
		delete(d.runs, key)
		d.stylesDirty = true
	}
}

// nextRunEnd returns the run that completes first at or before limit,
// dropping runs whose node left the document.
func (d *Document) nextRunEnd(limit time.Duration) *transitionRun {
	var best *transitionRun
	for key, r := range d.runs {
		if r.node.disposed || !r.node.IsConnected() {
			delete(d.runs, key)
			d.stylesDirty = true
			continue
		}
		if r.end() > limit {
			continue
		}
		if best == nil || r.end() < best.end() || (r.end() == best.end() && r.seq < best.seq) {
			best = r
		}
	}
	return best
}

// finishRun removes a completed run and notifies listeners on its node.
func (d *Document) finishRun(r *transitionRun) {
	delete(d.runs, runKey{r.node, r.prop})
	d.stylesDirty = true
	r.node.dispatchTransitionEnd(TransitionEvent{
		Target:   r.node,
		Property: r.prop,
		Elapsed:  r.duration,
	})
}

// RunningTransitions returns the number of transitions in progress.
func (d *Document) RunningTransitions() int {
	return len(d.runs)
}

// IsTransitioning reports whether a transition of p is running on n.
func (d *Document) IsTransitioning(n *Node, p Property) bool {
	_, ok := d.runs[runKey{n, p}]
	return ok
}
