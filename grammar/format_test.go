package grammar

import "testing"

func TestParseGrammarTextBasicRule(t *testing.T) {
	src := `
@start: "(" expr ")"
      | NAME

expr: NAME
`
	g, entry, err := ParseGrammarText(src)
	if err != nil {
		t.Fatalf("ParseGrammarText: %v", err)
	}
	if entry != "start" {
		t.Fatalf("entry = %q, want start", entry)
	}
	if len(g.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(g.Rules))
	}
	found := map[string]bool{}
	for _, term := range g.Terminals {
		found[term] = true
	}
	for _, want := range []string{"EOF", "(", ")", "NAME"} {
		if !found[want] {
			t.Fatalf("terminal %q not collected; got %v", want, g.Terminals)
		}
	}
}

func TestParseGrammarTextRequiresEntry(t *testing.T) {
	src := `
start: NAME
`
	if _, _, err := ParseGrammarText(src); err == nil {
		t.Fatal("expected an error when no rule is marked with '@'")
	}
}

func TestParseGrammarTextCaptureAndGroup(t *testing.T) {
	src := `
@start: "(" !body (NAME ",")* ")"

body: NAME
`
	g, entry, err := ParseGrammarText(src)
	if err != nil {
		t.Fatalf("ParseGrammarText: %v", err)
	}
	gen, err := NewGenerator(g, nil)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if _, err := gen.Generate(g, entry); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestParseGrammarTextRejectsEmptyAlternationMember(t *testing.T) {
	src := `
@start: NAME |
`
	if _, _, err := ParseGrammarText(src); err == nil {
		t.Fatal("expected an error for an empty alternative")
	}
}
