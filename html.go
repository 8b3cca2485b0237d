package letterfall

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is the result of parsing an HTML host page.
type Page struct {
	Title string
	// Body holds the attributes and children of the page's <body>. It is a
	// detached element; LoadPage moves its contents into a document.
	Body *Node
}

// ParseHTML parses an HTML page. Elements keep their tag, class list,
// data-* attributes (as camelCase dataset keys) and inline style; comments,
// <head> content, <script> and <style> are dropped. Style declarations that
// cannot be parsed are skipped and reported through the returned warnings.
func ParseHTML(r io.Reader) (*Page, []error, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("letterfall: parse html: %w", err)
	}
	page := &Page{Body: NewElement("body")}
	var warnings []error

	var convert func(src *html.Node, dst *Node)
	convert = func(src *html.Node, dst *Node) {
		for c := src.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				dst.AddChild(NewText(c.Data))
			case html.ElementNode:
				switch c.DataAtom {
				case atom.Script, atom.Style, atom.Template, atom.Noscript:
					continue
				}
				el := NewElement(c.Data)
				if err := applyAttributes(el, c.Attr); err != nil {
					warnings = append(warnings, err)
				}
				dst.AddChild(el)
				convert(c, el)
			}
		}
	}

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if page.Title == "" && n.FirstChild != nil {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case atom.Body:
				if err := applyAttributes(page.Body, n.Attr); err != nil {
					warnings = append(warnings, err)
				}
				convert(n, page.Body)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	return page, warnings, nil
}

// LoadPage replaces the document body's children, classes, dataset and
// inline style with those of page. The page's body is left empty.
func (d *Document) LoadPage(page *Page) {
	body := d.body
	body.RemoveChildren()
	body.classes = nil
	body.dataset = nil
	body.style.Unset(body.style.Declared()...)

	for _, c := range page.Body.classes {
		body.AddClass(c)
	}
	for k, v := range page.Body.dataset {
		body.SetData(k, v)
	}
	for _, p := range page.Body.style.Declared() {
		body.style.setValue(p, page.Body.style.vals[p])
	}
	for page.Body.NumChildren() > 0 {
		body.AddChild(page.Body.ChildAt(0))
	}
	d.log.Debug("page loaded", zap.String("title", page.Title), zap.Int("nodes", countNodes(body)))
}

func countNodes(n *Node) int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// applyAttributes copies class, data-* and style attributes onto el.
func applyAttributes(el *Node, attrs []html.Attribute) error {
	var styleErr error
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		switch {
		case key == "class":
			for _, c := range strings.Fields(a.Val) {
				el.AddClass(c)
			}
		case strings.HasPrefix(key, "data-"):
			el.SetData(datasetKey(key), a.Val)
		case key == "style":
			if err := el.style.ApplyCSS(a.Val); err != nil {
				styleErr = fmt.Errorf("<%s style=%q>: %w", el.Tag, a.Val, err)
			}
		}
	}
	return styleErr
}

// datasetKey converts "data-min-duration" to "minDuration".
func datasetKey(attr string) string {
	name := strings.TrimPrefix(attr, "data-")
	var b strings.Builder
	upper := false
	for _, r := range name {
		if r == '-' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
