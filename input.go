package letterfall

import (
	"math"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	maxPointers       = 10  // pointer 0 = mouse, 1-9 = touch
	defaultClickSlop  = 4.0 // pixels a press may travel and still click
	pointerMouse      = 0
	firstTouchPointer = 1
)

// MouseButton identifies the button of a click. Touches report
// MouseButtonLeft.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// ClickEvent is delivered to click listeners. Target is the element that
// was hit; listeners on its ancestors receive the same event.
type ClickEvent struct {
	Target  *Node
	X, Y    float64
	Button  MouseButton
	Pointer int
}

type clickListener struct {
	fn      func(ClickEvent)
	removed bool
}

// AddClickListener registers fn for clicks on this element or any of its
// descendants. Elements with pointer-events disabled are never hit, so a
// click falls through to whatever is under them. The returned function
// deregisters fn.
func (n *Node) AddClickListener(fn func(ClickEvent)) (remove func()) {
	l := &clickListener{fn: fn}
	n.clickListeners = append(n.clickListeners, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		if i := slices.Index(n.clickListeners, l); i >= 0 {
			n.clickListeners = slices.Delete(n.clickListeners, i, i+1)
		}
	}
}

// pointerState tracks one pointer between press and release.
type pointerState struct {
	down           bool
	startX, startY float64
	target         *Node
	button         MouseButton
}

type inputState struct {
	pointers  [maxPointers]pointerState
	touchMap  [maxPointers]ebiten.TouchID
	touchUsed [maxPointers]bool
	touchBuf  []ebiten.TouchID
}

// processInput reads mouse and touch state. Called from Update.
func (d *Document) processInput() {
	mx, my := ebiten.CursorPosition()
	var pressed bool
	var button MouseButton
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		pressed, button = true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		pressed, button = true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		pressed, button = true, MouseButtonMiddle
	}
	d.processPointer(pointerMouse, float64(mx), float64(my), pressed, button)

	in := &d.input
	in.touchBuf = ebiten.AppendTouchIDs(in.touchBuf[:0])
	var active [maxPointers]bool
	for _, tid := range in.touchBuf {
		slot := in.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		d.processPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft)
	}
	for i := firstTouchPointer; i < maxPointers; i++ {
		if in.touchUsed[i] && !active[i] {
			ps := &in.pointers[i]
			if ps.down {
				// Lifted: release where it was pressed unless it moved.
				d.processPointer(i, ps.startX, ps.startY, false, MouseButtonLeft)
			}
			in.touchUsed[i] = false
		}
	}
}

// touchSlot maps a touch to a pointer slot, allocating one if needed.
// Returns -1 when every slot is taken.
func (in *inputState) touchSlot(tid ebiten.TouchID) int {
	for i := firstTouchPointer; i < maxPointers; i++ {
		if in.touchUsed[i] && in.touchMap[i] == tid {
			return i
		}
	}
	for i := firstTouchPointer; i < maxPointers; i++ {
		if !in.touchUsed[i] {
			in.touchUsed[i] = true
			in.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processPointer runs the press/release state machine for one pointer. A
// click fires on release when the pointer stayed within the slop distance
// and is still over the element it pressed.
func (d *Document) processPointer(id int, x, y float64, pressed bool, button MouseButton) {
	ps := &d.input.pointers[id]
	switch {
	case pressed && !ps.down:
		*ps = pointerState{down: true, startX: x, startY: y, target: d.ElementAt(x, y), button: button}
	case !pressed && ps.down:
		ps.down = false
		target := ps.target
		ps.target = nil
		if target == nil || math.Hypot(x-ps.startX, y-ps.startY) > defaultClickSlop {
			return
		}
		if hit := d.ElementAt(x, y); hit == nil || !isAncestor(target, hit) {
			return
		}
		d.dispatchClick(ClickEvent{Target: target, X: x, Y: y, Button: ps.button, Pointer: id})
	}
}

// dispatchClick delivers ev to the target and then to each ancestor.
func (d *Document) dispatchClick(ev ClickEvent) {
	for n := ev.Target; n != nil; n = n.Parent {
		if len(n.clickListeners) == 0 {
			continue
		}
		for _, l := range slices.Clone(n.clickListeners) {
			if !l.removed {
				l.fn(ev)
			}
		}
	}
}
