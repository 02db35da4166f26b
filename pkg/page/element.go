package page

import (
	"html"
	"html/template"
	"sort"
	"strings"
)

// ClassHidden hides an element.
const ClassHidden = "hidden"

// Element is a node of the page tree. An element with an empty Tag is a text node.
type Element struct {
	ID       string
	Tag      string
	Text     string
	Disabled bool
	Attrs    map[string]string
	Children []*Element

	classes []string
}

// NewElement creates an element with the given classes.
func NewElement(tag, id string, classes ...string) *Element {
	el := &Element{ID: id, Tag: tag}
	for _, class := range classes {
		el.AddClass(class)
	}
	return el
}

// TextNode creates a text node.
func TextNode(text string) *Element {
	return &Element{Text: text}
}

func withText(el *Element, text string) *Element {
	el.Text = text
	return el
}

// ClassName returns the space separated class list.
func (e *Element) ClassName() string {
	return strings.Join(e.classes, " ")
}

// SetClassName replaces the class list.
func (e *Element) SetClassName(name string) {
	e.classes = nil
	for _, class := range strings.Fields(name) {
		e.AddClass(class)
	}
}

// HasClass reports whether class is set.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds class unless already present.
func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.classes = append(e.classes, class)
}

// RemoveClass removes class if present.
func (e *Element) RemoveClass(class string) {
	kept := e.classes[:0]
	for _, c := range e.classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	e.classes = kept
}

// Visible reports whether the element lacks the hidden class.
func (e *Element) Visible() bool {
	return !e.HasClass(ClassHidden)
}

// SetChildren replaces all children.
func (e *Element) SetChildren(children ...*Element) {
	e.Children = children
}

// AppendChild adds a child at the end.
func (e *Element) AppendChild(child *Element) {
	e.Children = append(e.Children, child)
}

// TextContent returns the concatenated text of the element and its descendants.
func (e *Element) TextContent() string {
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *Element) writeText(b *strings.Builder) {
	b.WriteString(e.Text)
	for _, child := range e.Children {
		child.writeText(b)
	}
}

// FindByClass returns the first descendant (depth first) carrying class.
func (e *Element) FindByClass(class string) *Element {
	for _, child := range e.Children {
		if child.HasClass(class) {
			return child
		}
		if found := child.FindByClass(class); found != nil {
			return found
		}
	}
	return nil
}

// HTML renders the element and its subtree. All text and attribute values are escaped.
func (e *Element) HTML() template.HTML {
	var b strings.Builder
	e.writeHTML(&b)
	return template.HTML(b.String()) //nolint:gosec // every value is escaped in writeHTML
}

func (e *Element) writeHTML(b *strings.Builder) {
	if e.Tag == "" {
		b.WriteString(html.EscapeString(e.Text))
		return
	}

	b.WriteString("<" + e.Tag)
	if e.ID != "" {
		writeAttr(b, "id", e.ID)
	}
	if len(e.classes) > 0 {
		writeAttr(b, "class", e.ClassName())
	}

	names := make([]string, 0, len(e.Attrs))
	for name := range e.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeAttr(b, name, e.Attrs[name])
	}

	if e.Disabled {
		b.WriteString(" disabled")
	}
	b.WriteString(">")

	b.WriteString(html.EscapeString(e.Text))
	for _, child := range e.Children {
		child.writeHTML(b)
	}

	b.WriteString("</" + e.Tag + ">")
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteString(" " + name + `="` + html.EscapeString(value) + `"`)
}
