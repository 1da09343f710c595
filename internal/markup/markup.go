// Package markup builds single XHTML elements as text.
package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr is a single element attribute.
type Attr struct {
	Key   string
	Value string
}

// Node is one element: a tag, attributes in insertion order, and raw inner markup.
// A node with empty Content renders self-closing.
type Node struct {
	Tag     string
	Content string
	attrs   []Attr
}

// New creates a node for tag.
func New(tag string) *Node {
	return &Node{Tag: tag}
}

// Set assigns an attribute. Setting an existing key replaces its value and keeps its position.
func (n *Node) Set(key, value string) *Node {
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Value = value
			return n
		}
	}
	n.attrs = append(n.attrs, Attr{Key: key, Value: value})
	return n
}

// SetIf assigns an attribute only when value is non-empty.
func (n *Node) SetIf(key, value string) *Node {
	if value == "" {
		return n
	}
	return n.Set(key, value)
}

// Get returns the value of an attribute.
func (n *Node) Get(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns a copy of the attributes in insertion order.
func (n *Node) Attrs() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// WithContent sets the inner markup and returns the node.
func (n *Node) WithContent(content string) *Node {
	n.Content = content
	return n
}

// String renders the element. Attribute values are escaped, content is written as-is.
func (n *Node) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	for _, a := range n.attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(Escape(a.Value))
		sb.WriteByte('"')
	}
	if n.Content == "" {
		sb.WriteString("/>")
		return sb.String()
	}
	sb.WriteByte('>')
	sb.WriteString(n.Content)
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
	return sb.String()
}

// Escape escapes text for use in XHTML content or attribute values.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Classes joins non-empty class names with a space.
func Classes(names ...string) string {
	kept := names[:0:0]
	for _, name := range names {
		if name != "" {
			kept = append(kept, name)
		}
	}
	return strings.Join(kept, " ")
}
