// Package statichtml implements the surface contract over a single parsed
// HTML document. It backs the preview command and the form package tests:
// the same fill logic that drives a live browser runs unmodified against a
// local file, with mutations applied to the in-memory node tree.
package statichtml

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/applypilot/internal/surface"
)

// Surface is a read/write view over one HTML document. The document never
// changes on its own, so waits resolve immediately.
type Surface struct {
	mu      sync.Mutex
	doc     *html.Node
	clicks  []string
	uploads map[*html.Node]string
}

// New parses the document from r.
func New(r io.Reader) (*Surface, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Surface{doc: doc, uploads: make(map[*html.Node]string)}, nil
}

// Clicks returns the visible text of every non-input element clicked so far,
// in order. Tests and the preview command use this to observe navigation
// attempts.
func (s *Surface) Clicks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.clicks))
	copy(out, s.clicks)
	return out
}

// Uploads returns the file path submitted to the given element, if any.
func (s *Surface) Uploads() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.uploads))
	for n, p := range s.uploads {
		out[describeNode(n)] = p
	}
	return out
}

// FindOne resolves an XPath against the document.
func (s *Surface) FindOne(ctx context.Context, xpath string) (surface.Element, error) {
	return s.queryOne(s.doc, xpath)
}

// FindAll resolves an XPath against the document.
func (s *Surface) FindAll(ctx context.Context, xpath string) ([]surface.Element, error) {
	return s.queryAll(s.doc, xpath)
}

// WaitFor resolves immediately: a static document that does not contain the
// target now never will.
func (s *Surface) WaitFor(ctx context.Context, xpath string, timeout time.Duration) (surface.Element, error) {
	el, err := s.queryOne(s.doc, xpath)
	if err != nil {
		return nil, surface.ErrTimeout
	}
	return el, nil
}

func (s *Surface) queryOne(scope *html.Node, xpath string) (surface.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, err := htmlquery.Query(scope, xpath)
	if err != nil {
		return nil, fmt.Errorf("bad xpath %q: %w", xpath, err)
	}
	if node == nil {
		return nil, surface.ErrNotFound
	}
	return &element{s: s, node: node}, nil
}

func (s *Surface) queryAll(scope *html.Node, xpath string) ([]surface.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes, err := htmlquery.QueryAll(scope, xpath)
	if err != nil {
		return nil, fmt.Errorf("bad xpath %q: %w", xpath, err)
	}
	out := make([]surface.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{s: s, node: n})
	}
	return out, nil
}

// element wraps one node of the shared document.
type element struct {
	s    *Surface
	node *html.Node
}

func (e *element) Visible(ctx context.Context) bool {
	if hasAttr(e.node, "hidden") {
		return false
	}
	if e.node.Data == "input" && attrVal(e.node, "type") == "hidden" {
		return false
	}
	return !strings.Contains(attrVal(e.node, "style"), "display:none")
}

func (e *element) Enabled(ctx context.Context) bool {
	return !hasAttr(e.node, "disabled")
}

func (e *element) Selected(ctx context.Context) bool {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if e.node.Data == "option" {
		return hasAttr(e.node, "selected")
	}
	return hasAttr(e.node, "checked")
}

func (e *element) Attr(ctx context.Context, name string) (string, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return attrVal(e.node, name), nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return strings.TrimSpace(htmlquery.InnerText(e.node)), nil
}

func (e *element) FindOne(ctx context.Context, xpath string) (surface.Element, error) {
	return e.s.queryOne(e.node, xpath)
}

func (e *element) FindAll(ctx context.Context, xpath string) ([]surface.Element, error) {
	return e.s.queryAll(e.node, xpath)
}

func (e *element) Clear(ctx context.Context) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	setAttr(e.node, "value", "")
	if e.node.Data == "textarea" {
		setTextContent(e.node, "")
	}
	return nil
}

func (e *element) Type(ctx context.Context, value string) error {
	if !e.Enabled(ctx) {
		return surface.ErrNotInteractable
	}
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	setAttr(e.node, "value", attrVal(e.node, "value")+value)
	if e.node.Data == "textarea" {
		setTextContent(e.node, attrVal(e.node, "value"))
	}
	return nil
}

func (e *element) Click(ctx context.Context) error {
	if !e.Enabled(ctx) || !e.Visible(ctx) {
		return surface.ErrNotInteractable
	}
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	if e.node.Data == "input" {
		switch attrVal(e.node, "type") {
		case "radio":
			name := attrVal(e.node, "name")
			if name != "" {
				peers, _ := htmlquery.QueryAll(e.s.doc,
					fmt.Sprintf(`//input[@type='radio' and @name='%s']`, name))
				for _, p := range peers {
					removeAttr(p, "checked")
				}
			}
			setAttr(e.node, "checked", "checked")
			return nil
		case "checkbox":
			if hasAttr(e.node, "checked") {
				removeAttr(e.node, "checked")
			} else {
				setAttr(e.node, "checked", "checked")
			}
			return nil
		}
	}

	e.s.clicks = append(e.s.clicks, strings.TrimSpace(htmlquery.InnerText(e.node)))
	return nil
}

func (e *element) SelectOption(ctx context.Context, text string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	options, _ := htmlquery.QueryAll(e.node, `.//option`)
	var match *html.Node
	for _, opt := range options {
		if strings.TrimSpace(htmlquery.InnerText(opt)) == text {
			match = opt
			break
		}
	}
	if match == nil {
		return fmt.Errorf("%w: option %q", surface.ErrNotFound, text)
	}
	for _, opt := range options {
		removeAttr(opt, "selected")
	}
	setAttr(match, "selected", "selected")
	setAttr(e.node, "value", attrVal(match, "value"))
	return nil
}

func (e *element) SetFile(ctx context.Context, path string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	e.s.uploads[e.node] = path
	setAttr(e.node, "data-apl-upload", path)
	return nil
}

// -- node helpers --

func attrVal(n *html.Node, name string) string {
	return htmlquery.SelectAttr(n, name)
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, name, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

func removeAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func setTextContent(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func describeNode(n *html.Node) string {
	if id := attrVal(n, "id"); id != "" {
		return n.Data + "#" + id
	}
	if name := attrVal(n, "name"); name != "" {
		return n.Data + "[" + name + "]"
	}
	return n.Data
}
