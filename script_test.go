package letterfall

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadScriptErrors(t *testing.T) {
	if _, err := LoadScript([]byte(`{"steps": [`)); err == nil {
		t.Error("malformed JSON accepted")
	}
	if _, err := LoadScript([]byte(`{"steps": []}`)); err == nil {
		t.Error("empty script accepted")
	}
}

func TestScriptSteps(t *testing.T) {
	doc := newTestDocument(t)
	s, err := LoadScript([]byte(`{"steps": [
		{"action": "load"},
		{"action": "wait", "frames": 2},
		{"action": "replay"},
		{"action": "wait", "ms": 100},
		{"action": "screenshot", "label": "after"},
		{"action": "quit"}
	]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	replays := 0
	s.Handle("replay", func(*Document) { replays++ })
	doc.SetScript(s)

	frame := func() {
		doc.Advance(50 * time.Millisecond)
		s.step(doc)
	}

	frame() // load
	if !doc.Loaded() {
		t.Fatal("load step did not load")
	}
	frame() // wait, first frame
	frame() // wait, second frame
	if replays != 0 {
		t.Fatal("replay ran during the wait")
	}
	frame() // replay
	if replays != 1 {
		t.Fatalf("replays = %d", replays)
	}
	frame() // wait 100ms from 250ms
	frame() // 300ms
	if len(doc.screenshotQueue) != 0 {
		t.Fatal("screenshot taken before the wait ended")
	}
	frame() // 350ms: screenshot
	if diff := cmp.Diff([]string{"after"}, doc.screenshotQueue); diff != "" {
		t.Errorf("screenshots (-want +got):\n%s", diff)
	}
	frame() // quit
	if !doc.quit || !s.Done() {
		t.Errorf("quit = %v, done = %v", doc.quit, s.Done())
	}
}

func TestScriptUnknownAction(t *testing.T) {
	doc := newTestDocument(t)
	s, err := LoadScript([]byte(`{"steps": [{"action": "dance"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	s.step(doc)
	if !s.Done() {
		t.Error("script not done after its only step")
	}
}
