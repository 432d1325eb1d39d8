package automaton

import (
	"testing"

	"github.com/shadowCow/typethon-go/grammar"
)

func buildTable(t *testing.T, src string) *grammar.Table {
	t.Helper()
	g, entry, err := grammar.ParseGrammarText(src)
	if err != nil {
		t.Fatalf("ParseGrammarText: %v", err)
	}
	gen, err := grammar.NewGenerator(g, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	table, err := gen.Generate(g, entry)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return table
}

func terminalID(t *testing.T, table *grammar.Table, name string) int {
	t.Helper()
	for i, n := range table.Terminals {
		if n == name {
			return i
		}
	}
	t.Fatalf("terminal %q not found in %v", name, table.Terminals)
	return -1
}

// fixedSource feeds a fixed sequence of terminal ids, then repeats EOF.
type fixedSource struct {
	ids []int
	pos int
	eof int
}

func (f *fixedSource) Next() (int, interface{}) {
	if f.pos >= len(f.ids) {
		return f.eof, nil
	}
	id := f.ids[f.pos]
	f.pos++
	return id, nil
}

func TestRunAcceptsAndNestsCapturedChild(t *testing.T) {
	table := buildTable(t, `
@start: stmt

stmt: "(" !inner ")"

inner: "x"
`)
	eof := terminalID(t, table, "EOF")
	src := &fixedSource{
		ids: []int{
			terminalID(t, table, "("),
			terminalID(t, table, "x"),
			terminalID(t, table, ")"),
		},
		eof: eof,
	}

	root, err := Run(table, src, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if root.IsLeaf() {
		t.Fatal("expected the root to be a reduced production node, not a leaf")
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected exactly 1 captured child (the !inner reference), got %d", len(root.Children))
	}
	child := root.Children[0]
	if child.IsLeaf() {
		t.Fatal("expected the captured child to itself be a reduced inner node")
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	table := buildTable(t, `
@start: stmt

stmt: "a" "b"
`)
	eof := terminalID(t, table, "EOF")
	src := &fixedSource{
		ids: []int{terminalID(t, table, "a")}, // missing "b"
		eof: eof,
	}
	if _, err := Run(table, src, nil); err == nil {
		t.Fatal("expected an error for input missing the required \"b\"")
	}
}
