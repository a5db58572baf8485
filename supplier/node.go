package supplier

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// Attr is one XML attribute. Attribute order is preserved.
type Attr struct {
	Name  string
	Value string
}

// Node is a generic element in the supplier's wire tree. The supplier schema
// is ordering-sensitive on requests and loosely typed on responses (the same
// value may arrive as an attribute or a text child, singular or repeated), so
// both directions go through this one representation.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// NewNode creates an element with no children.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// Add appends a text child element and returns the parent for chaining.
func (n *Node) Add(name, text string) *Node {
	n.Children = append(n.Children, &Node{Name: name, Text: text})
	return n
}

// AddChild appends an existing child element and returns the parent.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// SetAttr sets an attribute, replacing any existing value.
func (n *Node) SetAttr(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// Attr returns the named attribute value, or "".
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// First returns the first child element with the given name, or nil.
func (n *Node) First(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// All returns every child element with the given name. A singular wire value
// and a repeated one both come back as a slice, which is the only shape the
// mappers are allowed to see.
func (n *Node) All(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Value normalizes the attribute-vs-text-node ambiguity: it returns the
// named attribute when present, otherwise the trimmed text of the first
// child element with that name.
func (n *Node) Value(name string) string {
	if v := n.Attr(name); v != "" {
		return v
	}
	if c := n.First(name); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// FloatValue parses Value(name) as a float, returning 0 on absence or junk.
func (n *Node) FloatValue(name string) float64 {
	v, _ := strconv.ParseFloat(n.Value(name), 64)
	return v
}

// IntValue parses Value(name) as an int, returning 0 on absence or junk.
func (n *Node) IntValue(name string) int {
	v, _ := strconv.Atoi(n.Value(name))
	return v
}

// MarshalXML writes the node with its attributes and children in insertion
// order. Field ordering is a hard contract of the supplier schema.
func (n *Node) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if n.Text != "" {
		if err := e.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := c.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// UnmarshalXML reads one element subtree into the node.
func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.Name = start.Name.Local
	for _, a := range start.Attr {
		n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child := &Node{}
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			n.Text = strings.TrimSpace(text.String())
			return nil
		}
	}
	n.Text = strings.TrimSpace(text.String())
	return nil
}

// ParseTree decodes an XML document into a node tree rooted at its first
// element.
func ParseTree(data []byte) (*Node, error) {
	root := &Node{}
	if err := xml.Unmarshal(data, root); err != nil {
		return nil, err
	}
	return root, nil
}
