// Package automaton drives a grammar.Table against a token stream: the
// generic shift-reduce loop described in spec.md §4.4, independent of any
// particular language's AST. It is what a grammar description written in
// the `.gram` text format (see grammar.ParseGrammarText) is ultimately
// useful for — the hand-written recursive-descent parser in package
// parser is typethon's own production parser and does not go through
// this table-driven path.
package automaton

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/shadowCow/typethon-go/grammar"
)

// Leaf is one token consumed by the automaton, identified by its terminal
// id and carried through as an opaque payload (typically a token.Token).
type Leaf struct {
	Terminal int
	Payload  interface{}
}

// Node is one node of the parse tree the automaton builds: either a Leaf
// or the result of reducing a production, whose Children are exactly the
// captured symbols of its right-hand side (spec.md §4.3's `!name`
// capture), in left-to-right order.
type Node struct {
	Production int // -1 for a leaf
	Leaf       *Leaf
	Children   []*Node
}

// IsLeaf reports whether n is a terminal leaf rather than a reduced
// production.
func (n *Node) IsLeaf() bool { return n.Leaf != nil }

// RunError is a reject: the automaton found no valid action for the
// current state and lookahead terminal.
type RunError struct {
	State    int
	Terminal int
	Message  string
}

func (e *RunError) Error() string { return e.Message }

// TokenSource supplies the automaton with one terminal id and payload at
// a time; callers adapt their own token stream (e.g. the scanner's
// token.Token) to this interface.
type TokenSource interface {
	// Next returns the next terminal id and its payload. It must keep
	// returning the EOF terminal id once the stream is exhausted.
	Next() (terminal int, payload interface{})
}

// Run executes the shift-reduce loop described in spec.md §4.4: a stack
// of (symbol, state) pairs, consulting table.Actions[state][terminal] to
// decide whether to shift the lookahead, reduce by a production, accept,
// or reject, and table.Gotos[state][nonterminal] to find the state to
// resume in after a reduce.
func Run(table *grammar.Table, src TokenSource, log hclog.Logger) (*Node, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	log = log.Named("automaton")

	type frame struct {
		state int
		node  *Node
	}
	stack := []frame{{state: table.Start}}

	terminal, payload := src.Next()

	for {
		top := stack[len(stack)-1]
		action, ok := table.Actions[top.state][terminal]
		if !ok {
			return nil, &RunError{
				State: top.state, Terminal: terminal,
				Message: fmt.Sprintf("no action for state %d on terminal %d", top.state, terminal),
			}
		}

		switch action.Kind {
		case grammar.Shift:
			log.Trace("shift", "state", top.state, "terminal", terminal, "to", action.Target)
			stack = append(stack, frame{
				state: action.Target,
				node:  &Node{Production: -1, Leaf: &Leaf{Terminal: terminal, Payload: payload}},
			})
			terminal, payload = src.Next()

		case grammar.Reduce:
			prod := table.Productions[action.Target]
			n := len(prod.RHS)
			if n > len(stack)-1 {
				return nil, &RunError{
					State: top.state, Terminal: terminal,
					Message: fmt.Sprintf("stack underflow reducing production %d", action.Target),
				}
			}
			popped := stack[len(stack)-n:]
			stack = stack[:len(stack)-n]

			var children []*Node
			for i, f := range popped {
				if prod.Capture[i] {
					children = append(children, f.node)
				}
			}

			base := stack[len(stack)-1].state
			next, ok := table.Gotos[base][prod.LHS]
			if !ok {
				return nil, &RunError{
					State: base, Terminal: terminal,
					Message: fmt.Sprintf("no goto for state %d on non-terminal %d", base, prod.LHS),
				}
			}
			log.Trace("reduce", "production", action.Target, "to", next)
			stack = append(stack, frame{
				state: next,
				node:  &Node{Production: action.Target, Children: children},
			})

		case grammar.Accept:
			log.Debug("accept")
			return stack[len(stack)-1].node, nil
		}
	}
}
