package letterfall

import (
	"slices"
	"time"
)

// Timer is a one-shot callback scheduled on a document's clock.
type Timer struct {
	doc    *Document
	due    time.Duration
	seq    uint64
	fn     func()
	active bool
}

// Stop prevents the timer from firing. It reports whether the call stopped
// the timer; false means it already fired or was stopped.
func (t *Timer) Stop() bool {
	if !t.active {
		return false
	}
	t.active = false
	if i := slices.Index(t.doc.timers, t); i >= 0 {
		t.doc.timers = slices.Delete(t.doc.timers, i, i+1)
	}
	return true
}

// Due returns the document time at which the timer fires.
func (t *Timer) Due() time.Duration {
	return t.due
}

// AfterFunc schedules fn to run once the document clock has advanced by
// delay. Negative delays count as zero. Timers due at the same instant fire
// in scheduling order.
func (d *Document) AfterFunc(delay time.Duration, fn func()) *Timer {
	if fn == nil {
		panic("letterfall: AfterFunc with nil func")
	}
	delay = max(delay, 0)
	d.timerSeq++
	t := &Timer{doc: d, due: d.now + delay, seq: d.timerSeq, fn: fn, active: true}
	// Keep timers sorted by (due, seq).
	i, _ := slices.BinarySearchFunc(d.timers, t, func(a, b *Timer) int {
		if a.due != b.due {
			if a.due < b.due {
				return -1
			}
			return 1
		}
		if a.seq < b.seq {
			return -1
		}
		return 1
	})
	d.timers = slices.Insert(d.timers, i, t)
	return t
}

// PendingTimers returns the number of timers that have not fired.
func (d *Document) PendingTimers() int {
	return len(d.timers)
}

// nextTimer returns the earliest timer due at or before limit.
func (d *Document) nextTimer(limit time.Duration) *Timer {
	if len(d.timers) == 0 || d.timers[0].due > limit {
		return nil
	}
	return d.timers[0]
}

// AddUpdateHook registers fn to run at the end of every Advance with the
// step length. The returned function removes the hook.
func (d *Document) AddUpdateHook(fn func(dt time.Duration)) (remove func()) {
	h := &updateHook{fn: fn}
	d.hooks = append(d.hooks, h)
	return func() {
		if h.removed {
			return
		}
		h.removed = true
		if i := slices.Index(d.hooks, h); i >= 0 {
			d.hooks = slices.Delete(d.hooks, i, i+1)
		}
	}
}

type updateHook struct {
	fn      func(dt time.Duration)
	removed bool
}
