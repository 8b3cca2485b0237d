package flyin

import (
	"github.com/phanxgames/letterfall"
)

// State is the lifecycle stage of one character unit.
type State uint8

const (
	StateComposed    State = iota // text not yet split
	StateDecomposed               // wrapped in a char span, not animated
	StateFloating                 // detached to the body and animating
	StateSettled                  // back in place, overrides cleared
	StateCancelled                // abandoned after its container left the document
)

func (s State) String() string {
	switch s {
	case StateComposed:
		return "composed"
	case StateDecomposed:
		return "decomposed"
	case StateFloating:
		return "floating"
	case StateSettled:
		return "settled"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// unitFontProps are carried from a character's resting style to its
// floating unit.
var unitFontProps = [...]letterfall.Property{
	letterfall.PropFontFamily,
	letterfall.PropFontSize,
	letterfall.PropFontWeight,
	letterfall.PropFontStyle,
	letterfall.PropLetterSpacing,
	letterfall.PropLineHeight,
	letterfall.PropTextTransform,
}

// placeholderFontProps are carried to the placeholder, which must take up
// exactly the character's footprint.
var placeholderFontProps = append(unitFontProps[:],
	letterfall.PropFontVariant,
	letterfall.PropFontStretch,
)

// floatingProps are every inline override a floating unit receives. The
// transition list goes first so clearing it cannot start new animations.
var floatingProps = append([]letterfall.Property{
	letterfall.PropTransition,
	letterfall.PropPosition,
	letterfall.PropLeft,
	letterfall.PropTop,
	letterfall.PropTransform,
	letterfall.PropZIndex,
	letterfall.PropPointerEvents,
	letterfall.PropWhiteSpace,
	letterfall.PropMargin,
	letterfall.PropPadding,
	letterfall.PropOpacity,
	letterfall.PropColor,
}, unitFontProps[:]...)

// flight tracks one detached character from launch to reattachment.
type flight struct {
	e           *Effect
	container   *letterfall.Node
	unit        *letterfall.Node
	placeholder *letterfall.Node
	finalColor  letterfall.Color
	timer       *letterfall.Timer
	unlisten    func()
	state       State
}

// commit moves the unit toward its resting state. The document animates the
// change through the unit's declared transitions.
func (f *flight) commit() {
	f.timer = nil
	if f.state != StateFloating {
		return
	}
	s := f.unit.Style()
	s.SetTransform(letterfall.IdentityTransform)
	s.SetColor(f.finalColor)
	s.SetOpacity(1)

	// No transform transition started (zero duration or nothing to move).
	if !f.e.doc.IsTransitioning(f.unit, letterfall.PropTransform) {
		f.settle()
	}
}

func (f *flight) onTransitionEnd(ev letterfall.TransitionEvent) {
	if ev.Property != letterfall.PropTransform {
		return
	}
	f.settle()
}

// release stops the commit timer and the completion listener.
func (f *flight) release() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if f.unlisten != nil {
		f.unlisten()
		f.unlisten = nil
	}
}

// settle clears every override and swaps the unit back in for its
// placeholder.
func (f *flight) settle() {
	if f.state != StateFloating {
		return
	}
	f.release()
	s := f.unit.Style()
	s.Unset(floatingProps...)
	s.SetColor(f.finalColor)

	if parent := f.placeholder.Parent; parent != nil {
		parent.ReplaceChild(f.unit, f.placeholder)
		f.state = StateSettled
	} else {
		f.unit.RemoveFromParent()
		f.state = StateCancelled
	}
	f.e.forget(f)
}

// cancel abandons the flight and drops the floating unit.
func (f *flight) cancel() {
	if f.state != StateFloating {
		return
	}
	f.release()
	f.unit.Style().Unset(floatingProps...)
	f.unit.RemoveFromParent()
	f.state = StateCancelled
	f.e.forget(f)
}
