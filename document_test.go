package letterfall

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadRunsCallbacksOnce(t *testing.T) {
	doc := newTestDocument(t)
	var got []string
	doc.OnLoad(func() { got = append(got, "a") })
	doc.OnLoad(func() { got = append(got, "b") })
	if doc.Loaded() {
		t.Fatal("loaded before Load")
	}

	doc.Load()
	doc.Load()
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("callbacks (-want +got):\n%s", diff)
	}
	if !doc.Loaded() {
		t.Error("Loaded = false")
	}
}

func TestOnLoadAfterLoad(t *testing.T) {
	doc := newTestDocument(t)
	doc.Load()
	fired := false
	doc.OnLoad(func() { fired = true })
	if fired {
		t.Fatal("late OnLoad ran synchronously")
	}
	doc.Advance(0)
	if !fired {
		t.Error("late OnLoad did not run on the next Advance")
	}
}

func TestQuery(t *testing.T) {
	doc := newTestDocument(t)
	outer := NewElement("div", "target")
	inner := NewElement("span", "target", "other")
	outer.AddChild(inner)
	doc.Body().AddChild(outer)
	last := NewElement("p", "target")
	doc.Body().AddChild(last)
	doc.Body().AddChild(NewText("target"))

	if got := doc.Query("target"); got != outer {
		t.Errorf("Query = %v, want the first in document order", got)
	}
	if got := doc.Query("missing"); got != nil {
		t.Errorf("Query(missing) = %v", got)
	}
	if diff := cmp.Diff([]*Node{outer, inner, last}, doc.QueryAll("target")); diff != "" {
		t.Errorf("QueryAll (-want +got):\n%s", diff)
	}
	if got := doc.QueryAll("missing"); len(got) != 0 {
		t.Errorf("QueryAll(missing) = %v", got)
	}
}

func TestComputedStyleDetached(t *testing.T) {
	doc := newTestDocument(t)
	parent := NewElement("div")
	parent.Style().SetFontSize(40)
	child := NewElement("span")
	parent.AddChild(child)

	if got := doc.ComputedStyle(child).FontSize(); got != 40 {
		t.Errorf("FontSize = %v, want 40 from the detached parent", got)
	}
}

func TestComputedStyleIsSnapshot(t *testing.T) {
	doc := newTestDocument(t)
	p := NewElement("p")
	doc.Body().AddChild(p)

	cs := doc.ComputedStyle(p)
	p.Style().SetFontSize(50)
	if cs.FontSize() != DefaultFontSize {
		t.Errorf("snapshot changed to %v", cs.FontSize())
	}
	if got := doc.ComputedStyle(p).FontSize(); got != 50 {
		t.Errorf("FontSize = %v after change", got)
	}
}

func TestNodeDocument(t *testing.T) {
	doc := newTestDocument(t)
	p := NewElement("p")
	if p.Document() != nil {
		t.Error("detached node has a document")
	}
	doc.Body().AddChild(p)
	if p.Document() != doc || !p.IsConnected() {
		t.Error("connected node lost its document")
	}
}

func TestViewport(t *testing.T) {
	doc := newTestDocument(t)
	if w, h := doc.Viewport(); w != 800 || h != 600 {
		t.Errorf("Viewport = %v x %v", w, h)
	}
	doc.SetViewport(320, 200)
	if w, h := doc.Viewport(); w != 320 || h != 200 {
		t.Errorf("Viewport = %v x %v", w, h)
	}
}

func TestSetLoggerNil(t *testing.T) {
	doc := newTestDocument(t)
	doc.SetLogger(nil)
	if doc.Logger() == nil {
		t.Fatal("Logger = nil")
	}
	doc.Logger().Info("discarded")
}

func TestDebugModeLogsDeepTrees(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	doc := NewDocument(800, 600, WithFontBook(MonoFontBook()), WithLogger(zap.New(core)))
	doc.SetDebugMode(true)
	defer doc.SetDebugMode(false)

	n := doc.Body()
	for range debugMaxTreeDepth + 1 {
		c := NewElement("div")
		n.AddChild(c)
		n = c
	}
	if logs.FilterMessage("tree depth exceeds threshold").Len() == 0 {
		t.Errorf("no depth warning; logged %v", logs.All())
	}
}
