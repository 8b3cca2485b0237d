package flyin

import (
	"strings"
	"testing"
	"unicode"

	"github.com/google/go-cmp/cmp"

	"github.com/phanxgames/letterfall"
)

// shape renders a container's children as word groups and whitespace runs.
func shape(container *letterfall.Node) []string {
	var out []string
	for _, c := range container.Children() {
		if c.Type == letterfall.NodeTypeText {
			out = append(out, "text:"+c.Text())
			continue
		}
		var chars []string
		for _, ch := range c.Children() {
			chars = append(chars, ch.TextContent())
		}
		out = append(out, c.Tag+"."+strings.Join(c.Classes(), ".")+":"+strings.Join(chars, "|"))
	}
	return out
}

func TestDecomposeShape(t *testing.T) {
	p := letterfall.NewElement("p")
	p.SetTextContent("Hi  there\n!")

	chars := Decompose(p)

	want := []string{
		"span.word-wrap:H|i",
		"text:  ",
		"span.word-wrap:t|h|e|r|e",
		"text:\n",
		"span.word-wrap:!",
	}
	if diff := cmp.Diff(want, shape(p)); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	if len(chars) != 8 {
		t.Fatalf("chars = %d, want 8", len(chars))
	}
	for _, ch := range chars {
		if !ch.HasClass(ClassChar) {
			t.Errorf("char %q missing class", ch.TextContent())
		}
	}
}

func TestDecomposeIdempotent(t *testing.T) {
	p := letterfall.NewElement("p")
	p.SetTextContent("one two  three")

	Decompose(p)
	first := shape(p)
	Decompose(p)
	if diff := cmp.Diff(first, shape(p)); diff != "" {
		t.Errorf("second decomposition differs (-first +second):\n%s", diff)
	}
}

func TestDecomposePreservesContent(t *testing.T) {
	p := letterfall.NewElement("p")
	p.AddChild(letterfall.NewText("Hello "))
	em := letterfall.NewElement("em")
	em.AddChild(letterfall.NewText("big\t"))
	p.AddChild(em)
	p.AddChild(letterfall.NewText(" wörld "))
	want := p.TextContent()

	chars := Decompose(p)

	if got := p.TextContent(); got != want {
		t.Errorf("TextContent = %q, want %q", got, want)
	}
	// Hello + big + wörld
	if len(chars) != 5+3+5 {
		t.Errorf("chars = %d, want 13", len(chars))
	}
	if em.Parent != p {
		t.Fatal("nested element detached by decomposition")
	}
	if diff := cmp.Diff([]string{"span.word-wrap:b|i|g", "text:\t"}, shape(em)); diff != "" {
		t.Errorf("nested shape (-want +got):\n%s", diff)
	}
}

func TestDecomposeKeepsNestedStyle(t *testing.T) {
	doc := newTestDoc(t)
	p := letterfall.NewElement("p")
	p.AddChild(letterfall.NewText("Hello "))
	b := letterfall.NewElement("b")
	b.Style().SetFontWeight(700)
	b.AddChild(letterfall.NewText("world"))
	p.AddChild(b)
	doc.Body().AddChild(p)

	chars := Decompose(p)

	if b.Parent != p {
		t.Fatal("bold element removed")
	}
	for i, ch := range chars {
		want := 400
		if i >= 5 {
			want = 700
		}
		if got := doc.ComputedStyle(ch).FontWeight(); got != want {
			t.Errorf("%q weight = %d, want %d", ch.TextContent(), got, want)
		}
	}
}

func TestDecomposeNestedIdempotent(t *testing.T) {
	p := letterfall.NewElement("p")
	p.AddChild(letterfall.NewText("a "))
	em := letterfall.NewElement("em")
	em.AddChild(letterfall.NewText("bc d"))
	p.AddChild(em)

	Decompose(p)
	first, firstEm := shape(p), shape(em)
	Decompose(p)
	if diff := cmp.Diff(first, shape(p)); diff != "" {
		t.Errorf("second decomposition differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstEm, shape(em)); diff != "" {
		t.Errorf("nested decomposition differs (-first +second):\n%s", diff)
	}
}

func TestDecomposeWordIntegrity(t *testing.T) {
	p := letterfall.NewElement("p")
	p.SetTextContent(" leading and trailing 　日本 ")

	Decompose(p)

	for _, c := range p.Children() {
		if c.Type == letterfall.NodeTypeText {
			if strings.IndexFunc(c.Text(), func(r rune) bool { return !unicode.IsSpace(r) }) >= 0 {
				t.Errorf("text node %q holds non-whitespace", c.Text())
			}
			continue
		}
		if !c.HasClass(ClassWordWrap) {
			t.Errorf("unexpected element %s", c.Tag)
		}
		for _, ch := range c.Children() {
			s := ch.TextContent()
			if len([]rune(s)) != 1 || unicode.IsSpace([]rune(s)[0]) {
				t.Errorf("char unit %q is not a single non-space rune", s)
			}
		}
	}
}

func TestDecomposeEmpty(t *testing.T) {
	p := letterfall.NewElement("p")
	if chars := Decompose(p); len(chars) != 0 {
		t.Errorf("chars = %d, want 0", len(chars))
	}
	if p.NumChildren() != 0 {
		t.Errorf("NumChildren = %d, want 0", p.NumChildren())
	}
}

func TestFlatten(t *testing.T) {
	p := letterfall.NewElement("p")
	p.SetTextContent("ab cd")
	Decompose(p)

	Flatten(p)

	if p.NumChildren() != 1 || p.ChildAt(0).Type != letterfall.NodeTypeText {
		t.Fatalf("Flatten left %d children", p.NumChildren())
	}
	if got := p.ChildAt(0).Text(); got != "ab cd" {
		t.Errorf("text = %q", got)
	}
}

func TestFlattenKeepsMarkup(t *testing.T) {
	p := letterfall.NewElement("p")
	p.AddChild(letterfall.NewText("go "))
	em := letterfall.NewElement("em")
	em.AddChild(letterfall.NewText("home"))
	p.AddChild(em)

	Flatten(p)
	if p.NumChildren() != 2 || p.ChildAt(1) != em {
		t.Fatal("Flatten changed a container that was never decomposed")
	}

	Decompose(p)
	Flatten(p)
	if diff := cmp.Diff([]string{"text:go ", "em.:home"}, shape(p)); diff != "" {
		t.Errorf("flattened shape (-want +got):\n%s", diff)
	}
	if em.NumChildren() != 1 || em.ChildAt(0).Text() != "home" {
		t.Errorf("em children = %d, text = %q", em.NumChildren(), em.TextContent())
	}
}
