package letterfall

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestAfterFuncOrder(t *testing.T) {
	doc := newTestDocument(t)
	var got []string
	doc.AfterFunc(20*time.Millisecond, func() { got = append(got, "b") })
	doc.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	doc.AfterFunc(20*time.Millisecond, func() { got = append(got, "c") })

	doc.Advance(15 * time.Millisecond)
	if diff := cmp.Diff([]string{"a"}, got); diff != "" {
		t.Errorf("after 15ms (-want +got):\n%s", diff)
	}
	doc.Advance(5 * time.Millisecond)
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("after 20ms (-want +got):\n%s", diff)
	}
	if doc.PendingTimers() != 0 {
		t.Errorf("PendingTimers = %d", doc.PendingTimers())
	}
}

func TestAfterFuncClockDuringCallback(t *testing.T) {
	doc := newTestDocument(t)
	var at []time.Duration
	doc.AfterFunc(30*time.Millisecond, func() { at = append(at, doc.Now()) })
	doc.AfterFunc(70*time.Millisecond, func() { at = append(at, doc.Now()) })

	doc.Advance(100 * time.Millisecond)
	if diff := cmp.Diff([]time.Duration{30 * time.Millisecond, 70 * time.Millisecond}, at); diff != "" {
		t.Errorf("Now in callbacks (-want +got):\n%s", diff)
	}
	if doc.Now() != 100*time.Millisecond {
		t.Errorf("Now = %v", doc.Now())
	}
}

func TestAfterFuncNested(t *testing.T) {
	doc := newTestDocument(t)
	var got []string
	doc.AfterFunc(10*time.Millisecond, func() {
		got = append(got, "outer")
		doc.AfterFunc(0, func() { got = append(got, "zero") })
		doc.AfterFunc(5*time.Millisecond, func() { got = append(got, "later") })
		doc.AfterFunc(50*time.Millisecond, func() { got = append(got, "next step") })
	})

	doc.Advance(20 * time.Millisecond)
	if diff := cmp.Diff([]string{"outer", "zero", "later"}, got); diff != "" {
		t.Errorf("nested (-want +got):\n%s", diff)
	}
	if doc.PendingTimers() != 1 {
		t.Errorf("PendingTimers = %d, want 1", doc.PendingTimers())
	}
}

func TestAfterFuncNegativeDelay(t *testing.T) {
	doc := newTestDocument(t)
	doc.Advance(time.Second)
	fired := false
	tm := doc.AfterFunc(-time.Hour, func() { fired = true })
	if tm.Due() != time.Second {
		t.Errorf("Due = %v, want now", tm.Due())
	}
	doc.Advance(0)
	if !fired {
		t.Error("negative delay did not fire on the next Advance")
	}
}

func TestTimerStop(t *testing.T) {
	doc := newTestDocument(t)
	fired := false
	tm := doc.AfterFunc(10*time.Millisecond, func() { fired = true })

	if !tm.Stop() {
		t.Error("Stop on a pending timer returned false")
	}
	if tm.Stop() {
		t.Error("second Stop returned true")
	}
	doc.Advance(time.Second)
	if fired {
		t.Error("stopped timer fired")
	}

	done := doc.AfterFunc(0, func() {})
	doc.Advance(0)
	if done.Stop() {
		t.Error("Stop after firing returned true")
	}
}

func TestTimerStopFromEarlierCallback(t *testing.T) {
	doc := newTestDocument(t)
	fired := false
	var victim *Timer
	doc.AfterFunc(10*time.Millisecond, func() { victim.Stop() })
	victim = doc.AfterFunc(10*time.Millisecond, func() { fired = true })

	doc.Advance(time.Second)
	if fired {
		t.Error("timer stopped by an earlier callback still fired")
	}
}

func TestAfterFuncNilPanics(t *testing.T) {
	doc := newTestDocument(t)
	expectPanic(t, "nil func", func() { doc.AfterFunc(0, nil) })
}

func TestAdvanceNegative(t *testing.T) {
	doc := newTestDocument(t)
	doc.Advance(time.Second)
	doc.Advance(-time.Second)
	if doc.Now() != time.Second {
		t.Errorf("Now = %v, the clock must not go back", doc.Now())
	}
}

func TestUpdateHooks(t *testing.T) {
	doc := newTestDocument(t)
	var steps []time.Duration
	var order []string
	doc.AfterFunc(5*time.Millisecond, func() { order = append(order, "timer") })
	remove := doc.AddUpdateHook(func(dt time.Duration) {
		steps = append(steps, dt)
		order = append(order, "hook")
	})

	doc.Advance(10 * time.Millisecond)
	doc.Advance(20 * time.Millisecond)
	remove()
	remove()
	doc.Advance(30 * time.Millisecond)

	if diff := cmp.Diff([]time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, steps); diff != "" {
		t.Errorf("hook steps (-want +got):\n%s", diff)
	}
	if order[0] != "timer" {
		t.Errorf("order = %v, hooks must run after timers", order)
	}
}

func TestUpdateHookRemovesAnother(t *testing.T) {
	doc := newTestDocument(t)
	calls := 0
	var removeSecond func()
	doc.AddUpdateHook(func(time.Duration) { removeSecond() })
	removeSecond = doc.AddUpdateHook(func(time.Duration) { calls++ })

	doc.Advance(time.Millisecond)
	if calls != 0 {
		t.Errorf("hook removed during the step still ran %d times", calls)
	}
}
