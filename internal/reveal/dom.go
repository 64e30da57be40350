package reveal

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// MutationKind names the style sink operation a Mutation records.
type MutationKind string

const (
	MutOpacity     MutationKind = "opacity"
	MutTranslate   MutationKind = "translate"
	MutProperty    MutationKind = "property"
	MutText        MutationKind = "text"
	MutClassAdd    MutationKind = "class+"
	MutClassRemove MutationKind = "class-"
)

// Mutation is one journaled write to a Node.
type Mutation struct {
	At      time.Duration
	Element string
	Kind    MutationKind
	Name    string
	Value   string
}

func (m Mutation) String() string {
	if m.Name == "" {
		return fmt.Sprintf("%6dms %s %s %s", m.At.Milliseconds(), m.Element, m.Kind, m.Value)
	}
	return fmt.Sprintf("%6dms %s %s %s=%s", m.At.Milliseconds(), m.Element, m.Kind, m.Name, m.Value)
}

// Page is an in-memory element tree that journals every mutation made
// through its nodes.
type Page struct {
	root    *Node
	ids     map[string]*Node
	labels  map[string]int
	clock   func() time.Duration
	journal []Mutation
}

// NewPage returns an empty page whose journal is stamped with zero time
// until SetClock is called.
func NewPage() *Page {
	p := &Page{
		ids:    make(map[string]*Node),
		labels: make(map[string]int),
		clock:  func() time.Duration { return 0 },
	}
	p.root = &Node{page: p, tag: "#root", label: "#root", attrs: map[string]string{}, props: map[string]string{}, opacity: 1}
	return p
}

// ParsePage builds a Page from HTML markup.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	p := NewPage()
	var walk func(n *html.Node, parent *Node)
	walk = func(n *html.Node, parent *Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			var id string
			var classes []string
			attrs := make(map[string]string)
			for _, a := range c.Attr {
				switch a.Key {
				case "id":
					id = a.Val
				case "class":
					classes = strings.Fields(a.Val)
				default:
					attrs[a.Key] = a.Val
				}
			}
			node := p.Add(parent, c.Data, id, classes...)
			node.attrs = attrs
			node.text = textContent(c)
			walk(c, node)
		}
	}
	walk(doc, p.root)
	return p, nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// SetClock sets the time source used to stamp journal entries.
func (p *Page) SetClock(now func() time.Duration) { p.clock = now }

// Root returns the synthetic root node.
func (p *Page) Root() *Node { return p.root }

// Add appends a new element under parent, or under the root when parent is nil.
func (p *Page) Add(parent *Node, tag, id string, classes ...string) *Node {
	if parent == nil {
		parent = p.root
	}
	n := &Node{
		page:    p,
		tag:     tag,
		id:      id,
		classes: slices.Clone(classes),
		attrs:   make(map[string]string),
		props:   make(map[string]string),
		opacity: 1,
	}
	n.label = p.labelFor(n)
	if id != "" {
		p.ids[id] = n
	}
	parent.children = append(parent.children, n)
	return n
}

func (p *Page) labelFor(n *Node) string {
	if n.id != "" {
		return "#" + n.id
	}
	base := n.tag
	if len(n.classes) > 0 {
		base = "." + n.classes[0]
	}
	i := p.labels[base]
	p.labels[base] = i + 1
	return base + "[" + strconv.Itoa(i) + "]"
}

// ByID implements Document.
func (p *Page) ByID(id string) (Element, bool) {
	n, ok := p.ids[id]
	if !ok {
		return nil, false
	}
	return n, true
}

// Node returns the concrete node for id.
func (p *Page) Node(id string) (*Node, bool) {
	n, ok := p.ids[id]
	return n, ok
}

// Journal returns a copy of all mutations recorded so far.
func (p *Page) Journal() []Mutation { return slices.Clone(p.journal) }

// JournalFor returns the mutations recorded for one element label.
func (p *Page) JournalFor(label string) []Mutation {
	var out []Mutation
	for _, m := range p.journal {
		if m.Element == label {
			out = append(out, m)
		}
	}
	return out
}

func (p *Page) record(n *Node, kind MutationKind, name, value string) {
	p.journal = append(p.journal, Mutation{
		At:      p.clock(),
		Element: n.label,
		Kind:    kind,
		Name:    name,
		Value:   value,
	})
}

// Node is one element of a Page.
type Node struct {
	page     *Page
	tag      string
	id       string
	label    string
	classes  []string
	attrs    map[string]string
	props    map[string]string
	text     string
	opacity  float64
	tx, ty   float64
	children []*Node
	handlers map[string][]func()
}

func (n *Node) ID() string { return n.id }
func (n *Node) Label() string { return n.label }
func (n *Node) Text() string { return n.text }

func (n *Node) Opacity() float64 { return n.opacity }
func (n *Node) Translate() (dx, dy float64) { return n.tx, n.ty }
func (n *Node) Property(name string) string { return n.props[name] }
func (n *Node) Classes() []string { return slices.Clone(n.classes) }
func (n *Node) SetAttr(name, value string) { n.attrs[name] = value }
func (n *Node) HasClass(class string) bool { return slices.Contains(n.classes, class) }
func (n *Node) SetInitialText(s string) { n.text = s }
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *Node) Find(class string) (Element, bool) {
	for _, c := range n.children {
		if c.HasClass(class) {
			return c, true
		}
		if e, ok := c.Find(class); ok {
			return e, true
		}
	}
	return nil, false
}

func (n *Node) FindAll(class string) []Element {
	var out []Element
	var walk func(*Node)
	walk = func(m *Node) {
		for _, c := range m.children {
			if c.HasClass(class) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func (n *Node) SetOpacity(v float64) {
	n.opacity = v
	n.page.record(n, MutOpacity, "", strconv.FormatFloat(v, 'f', -1, 64))
}

func (n *Node) SetTranslate(dx, dy float64) {
	n.tx, n.ty = dx, dy
	n.page.record(n, MutTranslate, "", fmt.Sprintf("%gpx,%gpx", dx, dy))
}

func (n *Node) SetProperty(name, value string) {
	n.props[name] = value
	n.page.record(n, MutProperty, name, value)
}

func (n *Node) SetText(s string) {
	n.text = s
	n.page.record(n, MutText, "", strconv.Quote(s))
}

func (n *Node) AddClass(class string) {
	if !n.HasClass(class) {
		n.classes = append(n.classes, class)
	}
	n.page.record(n, MutClassAdd, "", class)
}

func (n *Node) RemoveClass(class string) {
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool { return c == class })
	n.page.record(n, MutClassRemove, "", class)
}

func (n *Node) On(event string, fn func()) {
	if n.handlers == nil {
		n.handlers = make(map[string][]func())
	}
	n.handlers[event] = append(n.handlers[event], fn)
}

// Dispatch runs the handlers registered for event, in registration order.
func (n *Node) Dispatch(event string) {
	for _, fn := range n.handlers[event] {
		fn()
	}
}
