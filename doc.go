// Package letterfall is a small retained document engine for [Ebitengine]
// with flow layout, style transitions and a clock you drive yourself. It
// hosts text effects such as the per-character fly-in in letterfall/flyin.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	doc := letterfall.NewDocument(800, 600)
//	p := letterfall.NewElement("p", "flyin-letters")
//	p.SetTextContent("Hello, world")
//	doc.Body().AddChild(p)
//	letterfall.Run(doc, letterfall.RunConfig{Title: "Demo"})
//
// For full control, implement [ebiten.Game] yourself and call
// [Document.Update] and [Document.Draw] directly:
//
//	type Game struct{ doc *letterfall.Document }
//
//	func (g *Game) Update() error         { g.doc.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image)  { g.doc.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// # Document tree
//
// Every element and run of text is a [Node]. Nodes form a tree rooted at
// [Document.Body]. Elements carry a tag, classes, a dataset and an inline
// [Style]; unset inherited properties (fonts, color, white-space) come from
// the parent. Pages can also be loaded from HTML with [ParseHTML].
//
// # Layout
//
// Block elements stack vertically. Inline content flows into line boxes that
// wrap only at whitespace, so a word split across several inline elements
// never breaks. Inline-block elements are atomic boxes and fixed elements are
// placed at their left/top in viewport space. [Document.BoundingRect] and
// [Document.ComputedStyle] query the results.
//
// # Time
//
// Nothing moves until the clock advances. [Document.Advance] (or
// [Document.Update] at one tick per frame) fires timers made with
// [Document.AfterFunc] and completes transitions in timestamp order.
// Transform, color and opacity changes animate when the element declares a
// [Transition] for them; completions are delivered to
// [Node.AddTransitionEndListener]. Easing curves come from [gween]'s ease
// package or [CubicBezier].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package letterfall
