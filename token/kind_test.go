package token

import "testing"

func TestKeywordLookup(t *testing.T) {
	k, ok := Keyword("def")
	if !ok || k != DEF {
		t.Fatalf("got %v, %v", k, ok)
	}
	if _, ok := Keyword("not_a_keyword"); ok {
		t.Fatal("expected no match for a non-keyword identifier")
	}
}

func TestSpellingRoundTripsPunctuation(t *testing.T) {
	s, ok := Spelling(DOUBLESTAR)
	if !ok || s != "**" {
		t.Fatalf("got %q, %v", s, ok)
	}
}

func TestCloserMatchesOpener(t *testing.T) {
	c, ok := Closer(LPAR)
	if !ok || c != RPAR {
		t.Fatalf("got %v, %v", c, ok)
	}
	if _, ok := Closer(RPAR); ok {
		t.Fatal("a closing bracket should not itself be an opener")
	}
}

func TestIsOpenerAndIsCloser(t *testing.T) {
	if !IsOpener(LBRACE) || IsCloser(LBRACE) {
		t.Fatal("LBRACE should be an opener, not a closer")
	}
	if !IsCloser(RBRACE) || IsOpener(RBRACE) {
		t.Fatal("RBRACE should be a closer, not an opener")
	}
}

func TestStringPrefersSpellingOverKeyword(t *testing.T) {
	if got := PLUS.String(); got != "+" {
		t.Fatalf("got %q", got)
	}
	if got := DEF.String(); got != "def" {
		t.Fatalf("got %q", got)
	}
}

func TestStringNamesSyntheticCompareKinds(t *testing.T) {
	if got := ISNOT.String(); got != "is not" {
		t.Fatalf("got %q", got)
	}
	if got := NOTIN.String(); got != "not in" {
		t.Fatalf("got %q", got)
	}
}

func TestStringNamesStructuralKinds(t *testing.T) {
	cases := map[Kind]string{
		EOF:        "EOF",
		INDENT:     "INDENT",
		DEDENT:     "DEDENT",
		IDENTIFIER: "IDENTIFIER",
		STRING:     "STRING",
		NUMBER:     "NUMBER",
		NEWLINE:    "NEWLINE",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
