package letterfall

import (
	"slices"
	"strings"
	"time"
)

// nodeIDCounter is a plain counter (no atomic — documents are single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// TransitionEvent is delivered to transition-end listeners when a property
// transition on the target node runs to completion.
type TransitionEvent struct {
	Target   *Node
	Property Property
	Elapsed  time.Duration
}

type endListener struct {
	fn      func(TransitionEvent)
	removed bool
}

// Node is the fundamental document element. A single flat struct is used for
// both elements and text nodes.
type Node struct {
	// Identity
	ID   uint32
	Type NodeType
	Tag  string // lower-case element name; empty for text nodes

	// Hierarchy
	Parent   *Node
	children []*Node

	// Text fields (NodeTypeText)
	text string

	// Element fields (NodeTypeElement)
	classes []string
	dataset map[string]string
	style   Style

	// Metadata
	UserData any

	// Internal
	doc            *Document // set on the document body only
	endListeners   []*endListener
	clickListeners []*clickListener
	disposed       bool
}

// NewElement creates an element node with the given tag and classes.
func NewElement(tag string, classes ...string) *Node {
	n := &Node{
		ID:   nextNodeID(),
		Type: NodeTypeElement,
		Tag:  strings.ToLower(tag),
	}
	n.style.owner = n
	for _, c := range classes {
		n.AddClass(c)
	}
	return n
}

// NewText creates a text node holding content.
func NewText(content string) *Node {
	n := &Node{
		ID:   nextNodeID(),
		Type: NodeTypeText,
		text: content,
	}
	n.style.owner = n
	return n
}

// --- Text ---

// Text returns the character data of a text node. Elements return "".
func (n *Node) Text() string {
	return n.text
}

// SetText replaces the character data of a text node.
func (n *Node) SetText(s string) {
	if n.Type != NodeTypeText {
		panic("letterfall: SetText on element node")
	}
	if n.text == s {
		return
	}
	n.text = s
	n.invalidate()
}

// TextContent returns the concatenated character data of this node and all
// of its descendants in document order.
func (n *Node) TextContent() string {
	if n.Type == NodeTypeText {
		return n.text
	}
	var b strings.Builder
	n.Walk(func(d *Node) bool {
		if d.Type == NodeTypeText {
			b.WriteString(d.text)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces all children with a single text node holding s.
// An empty string leaves the element without children.
func (n *Node) SetTextContent(s string) {
	if n.Type == NodeTypeText {
		n.SetText(s)
		return
	}
	n.RemoveChildren()
	if s != "" {
		n.AddChild(NewText(s))
	}
}

// --- Classes & dataset ---

// Classes returns the class list. The returned slice MUST NOT be mutated.
func (n *Node) Classes() []string {
	return n.classes
}

// HasClass reports whether the element carries class c.
func (n *Node) HasClass(c string) bool {
	return slices.Contains(n.classes, c)
}

// AddClass adds c to the class list if not already present.
func (n *Node) AddClass(c string) {
	if c == "" || n.HasClass(c) {
		return
	}
	n.classes = append(n.classes, c)
}

// RemoveClass removes c from the class list.
func (n *Node) RemoveClass(c string) {
	if i := slices.Index(n.classes, c); i >= 0 {
		n.classes = slices.Delete(n.classes, i, i+1)
	}
}

// Data returns the dataset value stored under key (camelCase, as produced
// by the data-* attribute mapping).
func (n *Node) Data(key string) (string, bool) {
	v, ok := n.dataset[key]
	return v, ok
}

// SetData stores a dataset value.
func (n *Node) SetData(key, value string) {
	if n.dataset == nil {
		n.dataset = make(map[string]string)
	}
	n.dataset[key] = value
}

// DeleteData removes a dataset value.
func (n *Node) DeleteData(key string) {
	delete(n.dataset, key)
}

// Style returns the node's inline style. Text nodes carry an empty style that
// layout ignores; they inherit from their parent element.
func (n *Node) Style() *Style {
	return &n.style
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil, this is a text node, or child is an ancestor of
// this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.checkInsert(child, "AddChild")
	n.adopt(child)
	n.children = append(n.children, child)
	n.afterInsert(child)
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	n.checkInsert(child, "AddChildAt")
	n.adopt(child)
	if index < 0 || index > len(n.children) {
		panic("letterfall: child index out of range")
	}
	n.children = slices.Insert(n.children, index, child)
	n.afterInsert(child)
}

// InsertBefore inserts child immediately before ref. A nil ref appends.
// Panics if ref is not a child of this node.
func (n *Node) InsertBefore(child, ref *Node) {
	if ref == nil {
		n.AddChild(child)
		return
	}
	if ref.Parent != n {
		panic("letterfall: reference node's parent is not this node")
	}
	if child == ref {
		return
	}
	n.checkInsert(child, "InsertBefore")
	n.adopt(child)
	n.children = slices.Insert(n.children, n.IndexOf(ref), child)
	n.afterInsert(child)
}

// ReplaceChild puts newChild at oldChild's position and detaches oldChild.
// Panics if oldChild is not a child of this node.
func (n *Node) ReplaceChild(newChild, oldChild *Node) {
	if oldChild == nil || oldChild.Parent != n {
		panic("letterfall: child's parent is not this node")
	}
	if newChild == oldChild {
		return
	}
	n.checkInsert(newChild, "ReplaceChild")
	n.adopt(newChild)
	i := n.IndexOf(oldChild)
	n.children[i] = newChild
	oldChild.Parent = nil
	n.afterInsert(newChild)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
		debugCheckDisposed(child, "RemoveChild (child)")
	}
	if child.Parent != n {
		panic("letterfall: child's parent is not this node")
	}
	n.invalidate()
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("letterfall: child index out of range")
	}
	child := n.children[index]
	n.RemoveChild(child)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	if len(n.children) == 0 {
		return
	}
	n.invalidate()
	for i, child := range n.children {
		child.Parent = nil
		n.children[i] = nil
	}
	n.children = n.children[:0]
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// IndexOf returns the index of child among this node's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	return slices.Index(n.children, child)
}

// Walk visits this node and its descendants in document (pre-)order. When fn
// returns false the node's descendants are skipped. The tree must not be
// mutated during the walk.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// Root returns the topmost ancestor of n (n itself when detached).
func (n *Node) Root() *Node {
	r := n
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// Document returns the document this node is connected to, or nil.
func (n *Node) Document() *Document {
	return n.Root().doc
}

// IsConnected reports whether the node is reachable from a document body.
func (n *Node) IsConnected() bool {
	return n.Document() != nil
}

// --- Transition events ---

// AddTransitionEndListener registers fn to be called whenever a property
// transition on this node completes. The returned function deregisters it;
// calling it more than once is harmless, and it may be called from inside fn.
func (n *Node) AddTransitionEndListener(fn func(TransitionEvent)) (remove func()) {
	l := &endListener{fn: fn}
	n.endListeners = append(n.endListeners, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		if i := slices.Index(n.endListeners, l); i >= 0 {
			n.endListeners = slices.Delete(n.endListeners, i, i+1)
		}
	}
}

// dispatchTransitionEnd calls every listener registered at dispatch time.
func (n *Node) dispatchTransitionEnd(ev TransitionEvent) {
	if len(n.endListeners) == 0 {
		return
	}
	snapshot := slices.Clone(n.endListeners)
	for _, l := range snapshot {
		if !l.removed {
			l.fn(ev)
		}
	}
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. Running transitions on disposed
// nodes are dropped without end events.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.endListeners = nil
	n.clickListeners = nil
	n.dataset = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

func (n *Node) checkInsert(child *Node, op string) {
	if child == nil {
		panic("letterfall: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, op+" (parent)")
		debugCheckDisposed(child, op+" (child)")
	}
	if n.Type == NodeTypeText {
		panic("letterfall: text nodes cannot have children")
	}
	if child.doc != nil {
		panic("letterfall: cannot reparent a document body")
	}
	if isAncestor(child, n) {
		panic("letterfall: adding child would create a cycle")
	}
}

// adopt detaches child from its current parent.
func (n *Node) adopt(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
}

func (n *Node) afterInsert(child *Node) {
	n.invalidate()
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// invalidate marks the owning document's layout as stale.
func (n *Node) invalidate() {
	if doc := n.Document(); doc != nil {
		doc.layoutDirty = true
	}
}

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
