package parser

import (
	"github.com/shadowCow/typethon-go/ast"
	"github.com/shadowCow/typethon-go/token"
)

// exprListOrTuple parses one expression, or — if a comma follows — a bare
// tuple of them. This is the production used wherever Python allows an
// implicit tuple without parens: the right side of an assignment, a
// return value, a for-loop's iterable.
func (p *Parser) exprListOrTuple() (ast.Expression, error) {
	start := p.here()
	first, err := p.starExpression()
	if err != nil {
		return nil, err
	}
	if !p.at(token.COMMA) {
		return first, nil
	}
	elements := []ast.Expression{first}
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if p.atStatementEnd() || p.atAny(token.EQUAL, token.COLON, token.RPAR, token.RSQB, token.RBRACE) {
			break
		}
		e, err := p.starExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	n := &ast.Tuple{Elements: elements}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// starExpression allows a leading `*` for unpacking inside a list/call/tuple.
func (p *Parser) starExpression() (ast.Expression, error) {
	if p.at(token.STAR) {
		start := p.here()
		p.advance()
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		n := &ast.Starred{Value: v}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}
	return p.expression()
}

// expression is the top of the precedence ladder: lambda, conditional
// expression, or disjunction.
func (p *Parser) expression() (ast.Expression, error) {
	if p.at(token.LAMBDA) {
		return p.lambdaExpr()
	}
	start := p.here()
	body, err := p.disjunction()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept(token.IF); !ok {
		return body, nil
	}
	test, err := p.disjunction()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ELSE); err != nil {
		return nil, err
	}
	orelse, err := p.expression()
	if err != nil {
		return nil, err
	}
	n := &ast.IfExp{Test: test, Body: body, Orelse: orelse}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) lambdaExpr() (ast.Expression, error) {
	start := p.here()
	p.advance()
	var params []*ast.Parameter
	if !p.at(token.COLON) {
		ps, err := p.parameterList(token.COLON)
		if err != nil {
			return nil, err
		}
		params = ps
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	body, err := p.expression()
	if err != nil {
		return nil, err
	}
	n := &ast.Lambda{Params: params, Body: body}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// binaryLevel is one rung of the precedence ladder: binaryChain parses an
// operand at the next level, then loops while one of kinds follows as an
// infix operator, parsing each right operand at the next level and folding
// the chain to the left.
type binaryLevel struct {
	next func(p *Parser) (ast.Expression, error)
	kinds []token.Kind
}

func (p *Parser) binaryChain(level binaryLevel) (ast.Expression, error) {
	start := p.here()
	left, err := level.next(p)
	if err != nil {
		return nil, err
	}
	for p.atAny(level.kinds...) {
		op := p.advance().Kind
		right, err := level.next(p)
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryOp{Left: left, Op: op, Right: right}
		n.Span = ast.Span{Start: start, End: p.here()}
		left = n
	}
	return left, nil
}

func (p *Parser) disjunction() (ast.Expression, error) {
	start := p.here()
	first, err := p.conjunction()
	if err != nil {
		return nil, err
	}
	if !p.at(token.OR) {
		return first, nil
	}
	values := []ast.Expression{first}
	for {
		if _, ok := p.accept(token.OR); !ok {
			break
		}
		v, err := p.conjunction()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	n := &ast.BoolOp{Op: token.OR, Values: values}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) conjunction() (ast.Expression, error) {
	start := p.here()
	first, err := p.inversion()
	if err != nil {
		return nil, err
	}
	if !p.at(token.AND) {
		return first, nil
	}
	values := []ast.Expression{first}
	for {
		if _, ok := p.accept(token.AND); !ok {
			break
		}
		v, err := p.inversion()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	n := &ast.BoolOp{Op: token.AND, Values: values}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) inversion() (ast.Expression, error) {
	if p.at(token.NOT) {
		start := p.here()
		p.advance()
		operand, err := p.inversion()
		if err != nil {
			return nil, err
		}
		n := &ast.UnaryOp{Op: token.NOT, Operand: operand}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}
	return p.comparison()
}

var compareOps = []token.Kind{
	token.LESS, token.LESSEQUAL, token.GREATER, token.GREATEREQUAL,
	token.EQEQUAL, token.NOTEQUAL, token.IN, token.IS, token.NOT,
}

func (p *Parser) comparison() (ast.Expression, error) {
	start := p.here()
	left, err := p.bitOr()
	if err != nil {
		return nil, err
	}
	var comparators []*ast.Comparator
	for p.atAny(compareOps...) {
		op, ok := p.acceptCompareOp()
		if !ok {
			break
		}
		operand, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		comparators = append(comparators, &ast.Comparator{Op: op, Operand: operand})
	}
	if len(comparators) == 0 {
		return left, nil
	}
	n := &ast.Compare{Left: left, Comparators: comparators}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// acceptCompareOp consumes one comparison operator, including the
// two-token forms `not in` and `is not`.
func (p *Parser) acceptCompareOp() (token.Kind, bool) {
	switch p.peekKind() {
	case token.LESS, token.LESSEQUAL, token.GREATER, token.GREATEREQUAL,
		token.EQEQUAL, token.NOTEQUAL, token.IN:
		return p.advance().Kind, true
	case token.NOT:
		if p.peekN(1).Kind == token.IN {
			p.advance()
			p.advance()
			return token.NOTIN, true
		}
		return 0, false
	case token.IS:
		p.advance()
		if _, ok := p.accept(token.NOT); ok {
			return token.ISNOT, true
		}
		return token.IS, true
	}
	return 0, false
}

func (p *Parser) bitOr() (ast.Expression, error) {
	return p.binaryChain(binaryLevel{next: (*Parser).bitXor, kinds: []token.Kind{token.VBAR}})
}

func (p *Parser) bitXor() (ast.Expression, error) {
	return p.binaryChain(binaryLevel{next: (*Parser).bitAnd, kinds: []token.Kind{token.CIRCUMFLEX}})
}

func (p *Parser) bitAnd() (ast.Expression, error) {
	return p.binaryChain(binaryLevel{next: (*Parser).shift, kinds: []token.Kind{token.AMPER}})
}

func (p *Parser) shift() (ast.Expression, error) {
	return p.binaryChain(binaryLevel{next: (*Parser).sum, kinds: []token.Kind{token.LSHIFT, token.RSHIFT}})
}

func (p *Parser) sum() (ast.Expression, error) {
	return p.binaryChain(binaryLevel{next: (*Parser).term, kinds: []token.Kind{token.PLUS, token.MINUS}})
}

func (p *Parser) term() (ast.Expression, error) {
	return p.binaryChain(binaryLevel{
		next:  (*Parser).factor,
		kinds: []token.Kind{token.STAR, token.SLASH, token.DOUBLESLASH, token.PERCENT, token.AT},
	})
}

func (p *Parser) factor() (ast.Expression, error) {
	if p.atAny(token.PLUS, token.MINUS, token.TILDE) {
		start := p.here()
		op := p.advance().Kind
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		n := &ast.UnaryOp{Op: op, Operand: operand}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}
	return p.power()
}

// power is right-associative: `2 ** 3 ** 2` is `2 ** (3 ** 2)`.
func (p *Parser) power() (ast.Expression, error) {
	start := p.here()
	base, err := p.awaitPrimary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept(token.DOUBLESTAR); !ok {
		return base, nil
	}
	exponent, err := p.factor()
	if err != nil {
		return nil, err
	}
	n := &ast.BinaryOp{Left: base, Op: token.DOUBLESTAR, Right: exponent}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) awaitPrimary() (ast.Expression, error) {
	if p.at(token.AWAIT) {
		start := p.here()
		p.advance()
		v, err := p.primary()
		if err != nil {
			return nil, err
		}
		n := &ast.Await{Value: v}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}
	return p.primary()
}

// primary parses an atom followed by any number of trailers: attribute
// access, call, or subscript.
func (p *Parser) primary() (ast.Expression, error) {
	start := p.here()
	expr, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peekKind() {
		case token.DOT:
			p.advance()
			attr, err := p.expect(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			n := &ast.Attribute{Value: expr, Attr: attr.Identifier}
			n.Span = ast.Span{Start: start, End: p.here()}
			expr = n
		case token.LPAR:
			call, err := p.callTrailer(expr, start)
			if err != nil {
				return nil, err
			}
			expr = call
		case token.LSQB:
			sub, err := p.subscriptTrailer(expr, start)
			if err != nil {
				return nil, err
			}
			expr = sub
		default:
			return expr, nil
		}
	}
}

func (p *Parser) callTrailer(fn ast.Expression, start int) (ast.Expression, error) {
	p.advance()
	var args []ast.Expression
	var keywords []*ast.Keyword

	// A sole generator expression as the only argument may omit the
	// parens a parenthesized genexp would otherwise need: `f(x for x in y)`.
	if !p.at(token.RPAR) {
		if genexp, ok := p.tryBareGeneratorArg(); ok {
			args = append(args, genexp)
			if _, err := p.expect(token.RPAR); err != nil {
				return nil, err
			}
			n := &ast.Call{Func: fn, Args: args, Keywords: keywords}
			n.Span = ast.Span{Start: start, End: p.here()}
			return n, nil
		}
	}

	for !p.at(token.RPAR) {
		if kw, ok := p.tryKeywordArg(); ok {
			keywords = append(keywords, kw)
		} else if p.at(token.DOUBLESTAR) {
			kwstart := p.here()
			p.advance()
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			k := &ast.Keyword{Value: v}
			k.Span = ast.Span{Start: kwstart, End: p.here()}
			keywords = append(keywords, k)
		} else {
			a, err := p.starExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, err := p.expect(token.RPAR); err != nil {
		return nil, err
	}
	n := &ast.Call{Func: fn, Args: args, Keywords: keywords}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// tryBareGeneratorArg speculatively parses `expr for ... in ... [if ...]`
// as the sole, unparenthesized call argument. It rewinds if what follows
// isn't a `for` clause, so an ordinary first argument is unaffected.
func (p *Parser) tryBareGeneratorArg() (ast.Expression, bool) {
	start := p.here()
	result, err := attempt(p, func() (ast.Expression, error) {
		elt, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.at(token.FOR) && !(p.at(token.ASYNC) && p.peekN(1).Kind == token.FOR) {
			return nil, p.unexpected("a 'for' clause")
		}
		generators, err := p.comprehensionClauses()
		if err != nil {
			return nil, err
		}
		n := &ast.GeneratorExp{Elt: elt, Generators: generators}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	})
	if err != nil {
		return nil, false
	}
	return result, true
}

func (p *Parser) tryKeywordArg() (*ast.Keyword, bool) {
	if !p.at(token.IDENTIFIER) || p.peekN(1).Kind != token.EQUAL {
		return nil, false
	}
	start := p.here()
	name := p.advance().Identifier
	p.advance() // '='
	v, err := p.expression()
	if err != nil {
		return nil, false
	}
	k := &ast.Keyword{Name: name, Value: v}
	k.Span = ast.Span{Start: start, End: p.here()}
	return k, true
}

func (p *Parser) subscriptTrailer(value ast.Expression, start int) (ast.Expression, error) {
	p.advance()
	slice, err := p.subscriptList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RSQB); err != nil {
		return nil, err
	}
	n := &ast.Subscript{Value: value, Slice: slice}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// subscriptList parses the contents of `[...]`: a single slice/expression,
// or a comma-separated tuple of them (`m[1, 2]`, `m[:, 1]`).
func (p *Parser) subscriptList() (ast.Expression, error) {
	start := p.here()
	first, err := p.subscriptItem()
	if err != nil {
		return nil, err
	}
	if !p.at(token.COMMA) {
		return first, nil
	}
	elements := []ast.Expression{first}
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if p.at(token.RSQB) {
			break
		}
		e, err := p.subscriptItem()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	n := &ast.Tuple{Elements: elements}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) subscriptItem() (ast.Expression, error) {
	start := p.here()
	var lower, upper, step ast.Expression
	if !p.at(token.COLON) {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if !p.at(token.COLON) {
			return e, nil
		}
		lower = e
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	if !p.atAny(token.COLON, token.RSQB, token.COMMA) {
		u, err := p.expression()
		if err != nil {
			return nil, err
		}
		upper = u
	}
	if _, ok := p.accept(token.COLON); ok {
		if !p.atAny(token.RSQB, token.COMMA) {
			s, err := p.expression()
			if err != nil {
				return nil, err
			}
			step = s
		}
	}
	n := &ast.Slice{Lower: lower, Upper: upper, Step: step}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// ---- atoms ----

func (p *Parser) atom() (ast.Expression, error) {
	start := p.here()
	switch p.peekKind() {
	case token.IDENTIFIER:
		tok := p.advance()
		n := &ast.Name{Identifier: tok.Identifier}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	case token.NUMBER:
		tok := p.advance()
		n := &ast.Constant{Kind: numberConstantKind(tok.NumberFlags), Value: tok.NumberValue}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	case token.STRING:
		return p.stringAtom(start)
	case token.TRUE:
		p.advance()
		n := &ast.Constant{Kind: ast.ConstTrue}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	case token.FALSE:
		p.advance()
		n := &ast.Constant{Kind: ast.ConstFalse}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	case token.NONE:
		p.advance()
		n := &ast.Constant{Kind: ast.ConstNone}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	case token.ELLIPSIS:
		p.advance()
		n := &ast.Constant{Kind: ast.ConstEllipsis}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	case token.LPAR:
		return p.parenAtom(start)
	case token.LSQB:
		return p.listAtom(start)
	case token.LBRACE:
		return p.braceAtom(start)
	case token.YIELD:
		return p.yieldAtom(start)
	default:
		return nil, p.unexpected("an expression")
	}
}

func numberConstantKind(flags token.NumberFlags) ast.ConstantKind {
	switch {
	case flags&token.Imaginary != 0:
		return ast.ConstComplex
	case flags&token.Float != 0:
		return ast.ConstFloat
	default:
		return ast.ConstInt
	}
}

func (p *Parser) stringAtom(start int) (ast.Expression, error) {
	tok := p.advance()
	kind := ast.ConstString
	if tok.StringFlags&token.Bytes != 0 {
		kind = ast.ConstBytes
	}
	value := tok.StringValue
	// adjacent string literals concatenate
	for p.at(token.STRING) {
		next := p.advance()
		value += next.StringValue
	}
	n := &ast.Constant{Kind: kind, Value: value}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) yieldAtom(start int) (ast.Expression, error) {
	p.advance()
	if _, ok := p.accept(token.FROM); ok {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		n := &ast.YieldFrom{Value: v}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}
	var value ast.Expression
	if !p.atStatementEnd() && !p.atAny(token.RPAR, token.RSQB, token.RBRACE) {
		v, err := p.exprListOrTuple()
		if err != nil {
			return nil, err
		}
		value = v
	}
	n := &ast.Yield{Value: value}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// parenAtom disambiguates `()`, `(x)`, `(x,)`, `(x, y)`, and
// `(x for x in y)`: the parenthesized-group and generator-expression
// readings are tried speculatively, since only the token after the first
// expression distinguishes them.
func (p *Parser) parenAtom(start int) (ast.Expression, error) {
	p.advance()
	if _, ok := p.accept(token.RPAR); ok {
		n := &ast.Tuple{}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}

	if genexp, ok := p.tryBareGeneratorArg(); ok {
		if _, err := p.expect(token.RPAR); err != nil {
			return nil, err
		}
		return genexp, nil
	}

	first, err := p.starExpression()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept(token.RPAR); ok {
		return first, nil // a parenthesized group, not a tuple
	}
	elements := []ast.Expression{first}
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if p.at(token.RPAR) {
			break
		}
		e, err := p.starExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	if _, err := p.expect(token.RPAR); err != nil {
		return nil, err
	}
	n := &ast.Tuple{Elements: elements}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// listAtom disambiguates `[]`, `[x, y]`, and `[x for x in y]`.
func (p *Parser) listAtom(start int) (ast.Expression, error) {
	p.advance()
	if _, ok := p.accept(token.RSQB); ok {
		n := &ast.List{}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}
	first, err := p.starExpression()
	if err != nil {
		return nil, err
	}
	if p.at(token.FOR) || (p.at(token.ASYNC) && p.peekN(1).Kind == token.FOR) {
		generators, err := p.comprehensionClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RSQB); err != nil {
			return nil, err
		}
		n := &ast.ListComp{Elt: first, Generators: generators}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}
	elements := []ast.Expression{first}
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if p.at(token.RSQB) {
			break
		}
		e, err := p.starExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	if _, err := p.expect(token.RSQB); err != nil {
		return nil, err
	}
	n := &ast.List{Elements: elements}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// braceAtom disambiguates `{}`, `{k: v, ...}`, `{k: v for ...}`,
// `{x, y}`, and `{x for x in y}`.
func (p *Parser) braceAtom(start int) (ast.Expression, error) {
	p.advance()
	if _, ok := p.accept(token.RBRACE); ok {
		n := &ast.Dict{}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}

	if p.at(token.DOUBLESTAR) {
		return p.dictBody(start)
	}

	first, err := p.starExpression()
	if err != nil {
		return nil, err
	}

	if _, ok := p.accept(token.COLON); ok {
		key := first
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.at(token.FOR) || (p.at(token.ASYNC) && p.peekN(1).Kind == token.FOR) {
			generators, err := p.comprehensionClauses()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACE); err != nil {
				return nil, err
			}
			n := &ast.DictComp{Key: key, Value: value, Generators: generators}
			n.Span = ast.Span{Start: start, End: p.here()}
			return n, nil
		}
		return p.dictBodyFrom(start, &ast.DictEntry{Key: key, Value: value})
	}

	if p.at(token.FOR) || (p.at(token.ASYNC) && p.peekN(1).Kind == token.FOR) {
		generators, err := p.comprehensionClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		n := &ast.SetComp{Elt: first, Generators: generators}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}

	elements := []ast.Expression{first}
	for {
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if p.at(token.RBRACE) {
			break
		}
		e, err := p.starExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	n := &ast.Set{Elements: elements}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) dictBody(start int) (ast.Expression, error) {
	return p.dictBodyFrom(start, nil)
}

func (p *Parser) dictBodyFrom(start int, first *ast.DictEntry) (ast.Expression, error) {
	var entries []*ast.DictEntry
	if first != nil {
		entries = append(entries, first)
		p.accept(token.COMMA)
	}
	for !p.at(token.RBRACE) {
		estart := p.here()
		if _, ok := p.accept(token.DOUBLESTAR); ok {
			v, err := p.expression()
			if err != nil {
				return nil, err
			}
			e := &ast.DictEntry{Value: v}
			e.Span = ast.Span{Start: estart, End: p.here()}
			entries = append(entries, e)
		} else {
			key, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			e := &ast.DictEntry{Key: key, Value: value}
			e.Span = ast.Span{Start: estart, End: p.here()}
			entries = append(entries, e)
		}
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	n := &ast.Dict{Entries: entries}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// comprehensionClauses parses one or more `[async] for ... in ... (if
// ...)*` clauses.
func (p *Parser) comprehensionClauses() ([]*ast.Comprehension, error) {
	var clauses []*ast.Comprehension
	for p.at(token.FOR) || (p.at(token.ASYNC) && p.peekN(1).Kind == token.FOR) {
		start := p.here()
		isAsync := false
		if _, ok := p.accept(token.ASYNC); ok {
			isAsync = true
		}
		p.advance() // 'for'
		target, err := p.targetList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.IN); err != nil {
			return nil, err
		}
		iter, err := p.disjunction()
		if err != nil {
			return nil, err
		}
		var ifs []ast.Expression
		for p.at(token.IF) {
			p.advance()
			cond, err := p.disjunction()
			if err != nil {
				return nil, err
			}
			ifs = append(ifs, cond)
		}
		c := &ast.Comprehension{Target: target, Iter: iter, Ifs: ifs, IsAsync: isAsync}
		c.Span = ast.Span{Start: start, End: p.here()}
		clauses = append(clauses, c)
	}
	return clauses, nil
}
