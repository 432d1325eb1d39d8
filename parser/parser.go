// Package parser implements a hand-written recursive-descent parser that
// converts a scanner token stream into the ast package's tree.
//
// Most of the grammar is an ordinary predictive descent: the next token
// alone picks the production. A handful of constructs are genuinely
// ambiguous looking only one token ahead — `(x)` vs `(x,)` vs `(x for x
// in y)`, `[x]` vs `[x for x in y]`, `{x}` vs `{x for x in y}` vs `{k: v}`
// — and for those the parser commits to one reading, and if it turns out
// wrong, rewinds its position and tries the next. There is no exception
// machinery for this: every parse step returns (value, error), and a
// non-nil error is the reject signal a speculative attempt rewinds on.
package parser

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/shadowCow/typethon-go/ast"
	"github.com/shadowCow/typethon-go/token"
)

// ParseError is a syntax error the parser could not recover from at its
// current position.
type ParseError struct {
	Message string
	Span    ast.Span
}

func (e *ParseError) Error() string { return e.Message }

// Parser holds all state for one parse of a token stream.
type Parser struct {
	log    hclog.Logger
	tokens []token.Token
	pos    int
}

// New builds a Parser over tokens. A nil logger defaults to a no-op
// logger, matching the rest of the module's constructor convention.
func New(tokens []token.Token, log hclog.Logger) *Parser {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Parser{log: log.Named("parser"), tokens: tokens}
}

// Parse parses the entire token stream as a module: a sequence of
// top-level statements up to EOF.
func (p *Parser) Parse() (*ast.Module, error) {
	start := p.here()
	var body []ast.Statement
	for !p.atEOF() {
		p.skipNewlines()
		if p.atEOF() {
			break
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt...)
	}
	mod := &ast.Module{Body: body}
	mod.Span = ast.Span{Start: start, End: p.here()}
	return mod, nil
}

// ---- token navigation ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[idx]
}

func (p *Parser) peekKind() token.Kind { return p.peek().Kind }

func (p *Parser) atEOF() bool { return p.peekKind() == token.EOF }

func (p *Parser) here() int { return p.peek().Span.Start }

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.peekKind() == k }

func (p *Parser) atAny(ks ...token.Kind) bool {
	for _, k := range ks {
		if p.at(k) {
			return true
		}
	}
	return false
}

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.at(k) {
		return token.Token{}, &ParseError{
			Message: fmt.Sprintf("expected %s, got %s at offset %d", k, p.peekKind(), p.here()),
			Span:    ast.Span{Start: p.here(), End: p.here()},
		}
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.at(token.NEWLINE) {
		p.advance()
	}
}

// mark/reset implement the explicit position stack a speculative parse
// rewinds through on rejection.
func (p *Parser) mark() int { return p.pos }

func (p *Parser) reset(mark int) { p.pos = mark }

// attempt runs fn from the current position; on error it rewinds the
// cursor to where it started, so the caller can try an alternative
// production as though fn had never been called.
func attempt[T any](p *Parser, fn func() (T, error)) (T, error) {
	start := p.mark()
	v, err := fn()
	if err != nil {
		p.reset(start)
	}
	return v, err
}

// lookahead runs fn for its boolean result only, always rewinding the
// cursor afterward — it never consumes tokens, matching spec's
// non-consuming accept/reject check.
func (p *Parser) lookahead(fn func() bool) bool {
	start := p.mark()
	ok := fn()
	p.reset(start)
	return ok
}
