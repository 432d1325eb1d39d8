package grammar

import (
	"strings"
	"testing"
)

// TestEpsilonGrammarAccepts builds `A -> a A | ε` (wrapped by a single-
// alternative entry rule, as Generate requires) and checks that the
// generator produces a table that accepts zero or more "a" followed by
// EOF, with no fatal conflicts.
func TestEpsilonGrammarAccepts(t *testing.T) {
	src := `
@start: A

A: "a" A
 |
`
	g, entry, err := ParseGrammarText(src)
	if err != nil {
		t.Fatalf("ParseGrammarText: %v", err)
	}
	if entry != "start" {
		t.Fatalf("entry = %q, want start", entry)
	}

	gen, err := NewGenerator(g, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	table, err := gen.Generate(g, entry)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(table.Conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %v", table.Conflicts)
	}

	// start state must have a Reduce-on-EOF path (the epsilon alternative)
	// and a Shift-on-"a" path.
	aID := -1
	for i, name := range table.Terminals {
		if name == "a" {
			aID = i
		}
	}
	if aID < 0 {
		t.Fatal(`terminal "a" not found`)
	}
	startActions := table.Actions[table.Start]
	if len(startActions) == 0 {
		t.Fatal("start state has no actions")
	}
	if _, ok := startActions[aID]; !ok {
		t.Fatal(`expected a Shift action on "a" from the start state`)
	}
}

// TestShiftReduceConflictResolvesToShift builds the textbook dangling-else
// analogue: a grammar ambiguous enough to produce a shift/reduce conflict
// that the generator must resolve by shifting (and log, not fail on).
func TestShiftReduceConflictResolvesToShift(t *testing.T) {
	src := `
@start: stmt

stmt: IF stmt ELSE stmt
    | IF stmt
    | OTHER
`
	g, entry, err := ParseGrammarText(src)
	if err != nil {
		t.Fatalf("ParseGrammarText: %v", err)
	}
	gen, err := NewGenerator(g, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	table, err := gen.Generate(g, entry)
	if err != nil {
		t.Fatalf("Generate should succeed despite the shift/reduce conflict: %v", err)
	}
	if len(table.Conflicts) == 0 {
		t.Fatal("expected at least one recorded shift/reduce conflict")
	}
}

// TestReduceReduceConflictIsFatal builds a grammar where the same input
// can be reduced by two different productions under the same lookahead,
// which Generate must reject outright.
func TestReduceReduceConflictIsFatal(t *testing.T) {
	src := `
@start: s

s: a
 | b

a: NAME
b: NAME
`
	g, entry, err := ParseGrammarText(src)
	if err != nil {
		t.Fatalf("ParseGrammarText: %v", err)
	}
	gen, err := NewGenerator(g, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	_, err = gen.Generate(g, entry)
	if err == nil {
		t.Fatal("expected a fatal reduce/reduce conflict error")
	}
	if !strings.Contains(err.Error(), "reduce") {
		t.Fatalf("expected the error to mention the reduce/reduce conflict, got: %v", err)
	}
}

func TestGenerateRejectsMultiAlternativeEntry(t *testing.T) {
	src := `
@start: "a"
       | "b"
`
	g, entry, err := ParseGrammarText(src)
	if err != nil {
		t.Fatalf("ParseGrammarText: %v", err)
	}
	gen, err := NewGenerator(g, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if _, err := gen.Generate(g, entry); err == nil {
		t.Fatal("expected an error for a multi-alternative entry rule")
	}
}

func TestTableDumpIncludesEntryName(t *testing.T) {
	src := `
@start: NAME
`
	g, entry, err := ParseGrammarText(src)
	if err != nil {
		t.Fatalf("ParseGrammarText: %v", err)
	}
	gen, err := NewGenerator(g, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	table, err := gen.Generate(g, entry)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	dump := table.Dump()
	if !strings.Contains(dump, "start") {
		t.Fatalf("dump should mention the entry name, got: %s", dump)
	}
}
