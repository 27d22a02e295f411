package workflow

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

const (
	FormatXML  = "xml"
	FormatJSON = "json"
)

// Node is the generic document tree both formats parse into. Values stay in
// their literal textual form; type coercion happens in the extractors, which
// know what each field is supposed to be.
type Node struct {
	Name     string
	Text     string
	Attrs    map[string]string
	Children []*Node
}

// Child returns the first direct child with the given name (case-insensitive,
// since vendor files disagree on casing).
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// Find walks the path of child names from this node.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, name := range path {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// TextAt returns the trimmed text at the path, or "".
func (n *Node) TextAt(path ...string) string {
	found := n.Find(path...)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text)
}

func (n *Node) Attr(key string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// First does a depth-first search for the first node with the given name.
// Used by dialect detection and the permissive fallback rules, where the
// exact nesting varies between source systems.
func (n *Node) First(name string) *Node {
	if n == nil {
		return nil
	}
	if strings.EqualFold(n.Name, name) {
		return n
	}
	for _, c := range n.Children {
		if found := c.First(name); found != nil {
			return found
		}
	}
	return nil
}

// All collects every node with the given name, in document order.
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	if strings.EqualFold(n.Name, name) {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, c.All(name)...)
	}
	return out
}

// ParseDocument converts raw estimate bytes into the generic tree.
// Malformed input is fatal: it means the caller sent garbage, not a business
// failure worth auditing as a partial import.
func ParseDocument(data []byte, format string) (*Node, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatXML:
		root, err := parseXMLTree(data)
		if err != nil {
			return nil, &ParseError{Format: FormatXML, Err: err}
		}
		return root, nil
	case FormatJSON:
		root, err := parseJSONTree(data)
		if err != nil {
			return nil, &ParseError{Format: FormatJSON, Err: err}
		}
		return root, nil
	default:
		return nil, &ParseError{Format: format, Err: fmt.Errorf("unsupported format %q", format)}
	}
}

func parseXMLTree(data []byte) (*Node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var root *Node
	var stack []*Node

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				node.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					node.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("unbalanced end element")
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				text := strings.TrimSpace(string(t))
				if text != "" {
					cur := stack[len(stack)-1]
					if cur.Text != "" {
						cur.Text += " "
					}
					cur.Text += text
				}
			}
		}
	}

	if len(stack) != 0 {
		return nil, errors.New("unbalanced tags")
	}
	if root == nil {
		return nil, errors.New("empty document")
	}
	return root, nil
}

func parseJSONTree(data []byte) (*Node, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // keep numbers in literal textual form

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	// Reject trailing garbage after the first value.
	if err := decoder.Decode(new(any)); err != io.EOF {
		return nil, errors.New("trailing data after JSON document")
	}

	root := &Node{Name: "root"}
	attachJSONValue(root, value)
	return root, nil
}

func attachJSONValue(node *Node, value any) {
	switch v := value.(type) {
	case map[string]any:
		// Object key order is not preserved by encoding/json; sort so the
		// same document always yields the same tree.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attachJSONChildren(node, k, v[k])
		}
	case []any:
		for _, item := range v {
			child := &Node{Name: "item"}
			attachJSONValue(child, item)
			node.Children = append(node.Children, child)
		}
	default:
		node.Text = jsonScalarText(v)
	}
}

// attachJSONChildren appends children named key; arrays become repeated
// children with that name, matching how repeated XML elements parse.
func attachJSONChildren(parent *Node, key string, value any) {
	if arr, ok := value.([]any); ok {
		for _, item := range arr {
			child := &Node{Name: key}
			attachJSONValue(child, item)
			parent.Children = append(parent.Children, child)
		}
		return
	}
	child := &Node{Name: key}
	attachJSONValue(child, value)
	parent.Children = append(parent.Children, child)
}

func jsonScalarText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", s)
	}
}
