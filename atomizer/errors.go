package atomizer

import (
	"github.com/shadowCow/typethon-go/ast"
	"github.com/shadowCow/typethon-go/atom"
)

// AnalyzationError is the external-interface error shape spec.md §6 asks
// for: a category, a message, and an optional AST-node span. The Atomizer
// builds one from each error atom (the in-band UNKNOWN annotation atoms
// carry per spec.md §7) at the point where it reports that error.
type AnalyzationError struct {
	Category atom.ErrorCategory
	Message  string
	Node     ast.Node
}

// WithNode returns a copy of e annotated with the node it occurred at.
func (e AnalyzationError) WithNode(node ast.Node) AnalyzationError {
	e.Node = node
	return e
}

func (e AnalyzationError) Error() string {
	return e.Category.String() + ": " + e.Message
}

// collectErrors walks a, recursing through UNION, and appends one
// AnalyzationError per embedded error atom found.
func collectErrors(a *atom.Atom, node ast.Node, out *[]AnalyzationError) {
	if a == nil {
		return
	}
	if a.Kind == atom.UNKNOWN && a.ErrorMessage != "" {
		*out = append(*out, AnalyzationError{Category: a.ErrorCategory, Message: a.ErrorMessage, Node: node})
		return
	}
	if a.Kind == atom.UNION {
		for _, v := range a.Values {
			collectErrors(v, node, out)
		}
	}
}
