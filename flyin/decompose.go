package flyin

import (
	"slices"

	"github.com/phanxgames/letterfall"
)

// Class names given to the elements the effect creates.
const (
	ClassWordWrap    = "word-wrap"
	ClassChar        = "char"
	ClassPlaceholder = "char-placeholder"
)

// Flatten undoes an earlier decomposition of container. Every word group
// or character unit becomes a plain text node holding its text, and adjacent
// text nodes are merged. Other markup inside the container is kept, and a
// container that was never decomposed is left untouched.
func Flatten(container *letterfall.Node) {
	var wrappers []*letterfall.Node
	container.Walk(func(n *letterfall.Node) bool {
		if n != container && (n.HasClass(ClassWordWrap) || n.HasClass(ClassChar)) {
			wrappers = append(wrappers, n)
			return false
		}
		return true
	})
	if len(wrappers) == 0 {
		return
	}

	var parents []*letterfall.Node
	for _, w := range wrappers {
		parent := w.Parent
		parent.ReplaceChild(letterfall.NewText(w.TextContent()), w)
		if !slices.Contains(parents, parent) {
			parents = append(parents, parent)
		}
	}
	for _, parent := range parents {
		mergeText(parent)
	}
}

// mergeText joins runs of adjacent text children of n and drops empty ones.
func mergeText(n *letterfall.Node) {
	var prev *letterfall.Node
	for _, c := range slices.Clone(n.Children()) {
		if c.Type != letterfall.NodeTypeText {
			prev = nil
			continue
		}
		switch {
		case c.Text() == "":
			n.RemoveChild(c)
		case prev != nil:
			prev.SetText(prev.Text() + c.Text())
			n.RemoveChild(c)
		default:
			prev = c
		}
	}
}

// Decompose flattens container and then splits every descendant text node,
// at any depth, into whitespace text nodes and word groups of one character
// unit per rune. It returns the character units in document order.
//
// The container's text content is unchanged, word groups never contain
// whitespace, whitespace is never wrapped, and elements nested in the
// container stay in place around their decomposed text.
func Decompose(container *letterfall.Node) []*letterfall.Node {
	Flatten(container)

	var texts []*letterfall.Node
	container.Walk(func(n *letterfall.Node) bool {
		if n != container && n.Type == letterfall.NodeTypeText {
			texts = append(texts, n)
		}
		return true
	})

	var chars []*letterfall.Node
	for _, t := range texts {
		parent := t.Parent
		for _, run := range letterfall.SplitWhitespaceRuns(t.Text()) {
			if run.Space {
				parent.InsertBefore(letterfall.NewText(run.Text), t)
				continue
			}
			word := letterfall.NewElement("span", ClassWordWrap)
			for _, r := range run.Text {
				ch := letterfall.NewElement("span", ClassChar)
				ch.AddChild(letterfall.NewText(string(r)))
				word.AddChild(ch)
				chars = append(chars, ch)
			}
			parent.InsertBefore(word, t)
		}
		parent.RemoveChild(t)
	}
	return chars
}
