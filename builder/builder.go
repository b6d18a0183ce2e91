// Package builder provides ready-made bpvm.Builder functions.
package builder

import (
	"bytes"
	"fmt"

	"github.com/chronos-tachyon/go-backparse/bpvm"
)

// Node is a generic parse tree node: the name of a rule and the values its
// chosen form produced.
type Node struct {
	Name     string
	Children []interface{}
}

// String renders the node as Name(child,child,...). See Wrap.
func (n *Node) String() string {
	var buf bytes.Buffer
	writeFlat(&buf, n.Name, n.Children)
	return buf.String()
}

// Tree returns a builder that wraps the children of a match into a *Node.
func Tree(name string) bpvm.Builder {
	return func(children []interface{}) (interface{}, bool) {
		return &Node{Name: name, Children: children}, true
	}
}

// Wrap returns a builder that renders a match as a flat string:
//
//   name(child,child,...)
//
// Lists render as [item,item,...], nil renders as "nil", and anything else
// is formatted with %v.
func Wrap(name string) bpvm.Builder {
	return func(children []interface{}) (interface{}, bool) {
		var buf bytes.Buffer
		writeFlat(&buf, name, children)
		return buf.String(), true
	}
}

func writeFlat(buf *bytes.Buffer, name string, children []interface{}) {
	buf.WriteString(name)
	buf.WriteByte('(')
	writeList(buf, children)
	buf.WriteByte(')')
}

func writeList(buf *bytes.Buffer, list []interface{}) {
	for i, item := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		switch x := item.(type) {
		case nil:
			buf.WriteString("nil")
		case []interface{}:
			buf.WriteByte('[')
			writeList(buf, x)
			buf.WriteByte(']')
		default:
			fmt.Fprintf(buf, "%v", x)
		}
	}
}

// Pick returns a builder whose result is the i-th child. It rejects matches
// with too few children.
func Pick(i int) bpvm.Builder {
	return func(children []interface{}) (interface{}, bool) {
		if i < 0 || i >= len(children) {
			return nil, false
		}
		return children[i], true
	}
}

// List returns a builder whose result is the children spliced into a single
// []interface{}: every child that is itself a []interface{} contributes its
// items instead of itself. It suits rules of the form `item (sep item)*`.
func List() bpvm.Builder {
	return func(children []interface{}) (interface{}, bool) {
		out := make([]interface{}, 0, len(children))
		for _, child := range children {
			if list, ok := child.([]interface{}); ok {
				out = append(out, list...)
			} else {
				out = append(out, child)
			}
		}
		return out, true
	}
}

// Func adapts a function that cannot reject into a builder.
func Func(fn func(children []interface{}) interface{}) bpvm.Builder {
	return func(children []interface{}) (interface{}, bool) {
		return fn(children), true
	}
}

// Reject returns a builder that refuses every match for which pred returns
// true, and otherwise defers to build. A nil build keeps the children.
func Reject(pred func(children []interface{}) bool, build bpvm.Builder) bpvm.Builder {
	return func(children []interface{}) (interface{}, bool) {
		if pred(children) {
			return nil, false
		}
		if build == nil {
			return children, true
		}
		return build(children)
	}
}
