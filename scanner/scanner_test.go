package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowCow/typethon-go/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	s := New([]byte(src), nil)
	var got []token.Kind
	for {
		tok := s.Next()
		got = append(got, tok.Kind)
		if tok.Kind == token.EOF {
			return got
		}
	}
}

func TestScenarioA_IfPass(t *testing.T) {
	got := kinds(t, "if x:\n    pass\n")
	want := []token.Kind{
		token.IF, token.IDENTIFIER, token.COLON, token.NEWLINE,
		token.INDENT, token.PASS, token.NEWLINE,
		token.DEDENT, token.EOF,
	}
	assert.Equal(t, want, got)
}

func TestEveryTokenSpanRoundTrips(t *testing.T) {
	src := "x = 1 + 2\n"
	s := New([]byte(src), nil)
	var rebuilt strings.Builder
	for {
		tok := s.Next()
		rebuilt.WriteString(src[tok.Span.Start:tok.Span.End])
		if tok.Kind == token.EOF {
			break
		}
	}
	assert.Equal(t, strings.ReplaceAll(src, " ", ""), rebuilt.String())
}

func TestBracketsSuppressNewline(t *testing.T) {
	got := kinds(t, "x = (1,\n2,\n3)\n")
	// no NEWLINE/INDENT/DEDENT tokens should appear inside the parens
	for _, k := range got[:len(got)-2] {
		assert.NotEqual(t, token.NEWLINE, k)
	}
	assert.Equal(t, token.NEWLINE, got[len(got)-2])
	assert.Equal(t, token.EOF, got[len(got)-1])
}

func TestIdentifierTextCaptured(t *testing.T) {
	s := New([]byte("foo_bar"), nil)
	tok := s.Next()
	require.Equal(t, token.IDENTIFIER, tok.Kind)
	assert.Equal(t, "foo_bar", tok.Identifier)
}

func TestStringPrefixFlags(t *testing.T) {
	cases := []struct {
		src   string
		flags token.StringFlags
	}{
		{`r"raw"`, token.Raw},
		{`b"bytes"`, token.Bytes},
		{`f"fmt"`, token.FormatString},
		{`rb"both"`, token.Raw | token.Bytes},
	}
	for _, c := range cases {
		s := New([]byte(c.src), nil)
		tok := s.Next()
		require.Equal(t, token.STRING, tok.Kind, c.src)
		assert.Equal(t, c.flags, tok.StringFlags&(token.Raw|token.Bytes|token.FormatString), c.src)
	}
}

func TestNumberUnderscoreFlags(t *testing.T) {
	s := New([]byte("1__000"), nil)
	tok := s.Next()
	require.Equal(t, token.NUMBER, tok.Kind)
	assert.NotZero(t, tok.NumberFlags&token.ConsecutiveUnderscores)

	s2 := New([]byte("1_"), nil)
	tok2 := s2.Next()
	require.Equal(t, token.NUMBER, tok2.Kind)
	assert.NotZero(t, tok2.NumberFlags&token.TrailingUnderscore)
}

func TestUnterminatedString(t *testing.T) {
	s := New([]byte("\"abc"), nil)
	tok := s.Next()
	require.Equal(t, token.STRING, tok.Kind)
	assert.NotZero(t, tok.StringFlags&token.Unterminated)
}

func TestUnmatchedCloser(t *testing.T) {
	s := New([]byte(")"), nil)
	tok := s.Next()
	assert.Equal(t, token.EUNMATCHED, tok.Kind)
}

func TestBlankLinesDoNotAffectIndentStack(t *testing.T) {
	got := kinds(t, "if x:\n    pass\n\n    pass\n")
	// only one INDENT should appear, not one per non-blank line transition
	count := 0
	for _, k := range got {
		if k == token.INDENT {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
