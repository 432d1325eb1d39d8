package parser

import (
	"fmt"

	"github.com/shadowCow/typethon-go/ast"
	"github.com/shadowCow/typethon-go/token"
)

// statement parses one logical line of source, which may expand to
// several statements when it is a semicolon-separated simple-statement
// line (e.g. `x = 1; y = 2`).
func (p *Parser) statement() ([]ast.Statement, error) {
	if p.atAny(token.DEF, token.CLASS, token.IF, token.WHILE, token.FOR,
		token.TRY, token.WITH, token.ASYNC, token.AT) {
		stmt, err := p.compoundStatement()
		if err != nil {
			return nil, err
		}
		return []ast.Statement{stmt}, nil
	}
	return p.simpleStatementLine()
}

// simpleStatementLine parses `simple_stmt (';' simple_stmt)* [';'] NEWLINE`.
func (p *Parser) simpleStatementLine() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		stmt, err := p.simpleStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if _, ok := p.accept(token.SEMI); ok {
			if p.at(token.NEWLINE) || p.atEOF() {
				break
			}
			continue
		}
		break
	}
	if p.at(token.NEWLINE) {
		p.advance()
	} else if !p.atEOF() {
		return nil, p.unexpected("end of statement")
	}
	return stmts, nil
}

func (p *Parser) simpleStatement() (ast.Statement, error) {
	start := p.here()
	switch p.peekKind() {
	case token.PASS:
		p.advance()
		n := &ast.Pass{}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	case token.BREAK:
		p.advance()
		n := &ast.Break{}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	case token.CONTINUE:
		p.advance()
		n := &ast.Continue{}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	case token.RETURN:
		return p.returnStatement(start)
	case token.DEL:
		return p.deleteStatement(start)
	case token.GLOBAL:
		return p.globalStatement(start)
	case token.NONLOCAL:
		return p.nonlocalStatement(start)
	case token.IMPORT:
		return p.importStatement(start)
	case token.FROM:
		return p.importFromStatement(start)
	case token.ASSERT:
		return p.assertStatement(start)
	default:
		return p.exprOrAssignStatement(start)
	}
}

func (p *Parser) returnStatement(start int) (ast.Statement, error) {
	p.advance()
	var value ast.Expression
	if !p.atStatementEnd() {
		v, err := p.exprListOrTuple()
		if err != nil {
			return nil, err
		}
		value = v
	}
	n := &ast.Return{Value: value}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) deleteStatement(start int) (ast.Statement, error) {
	p.advance()
	var targets []ast.Expression
	for {
		t, err := p.expression()
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	n := &ast.Delete{Targets: targets}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) globalStatement(start int) (ast.Statement, error) {
	p.advance()
	names, err := p.nameList()
	if err != nil {
		return nil, err
	}
	n := &ast.Global{Names: names}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) nonlocalStatement(start int) (ast.Statement, error) {
	p.advance()
	names, err := p.nameList()
	if err != nil {
		return nil, err
	}
	n := &ast.Nonlocal{Names: names}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) nameList() ([]string, error) {
	var names []string
	for {
		tok, err := p.expect(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Identifier)
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	return names, nil
}

func (p *Parser) importStatement(start int) (ast.Statement, error) {
	p.advance()
	var aliases []*ast.Alias
	for {
		a, err := p.dottedAsName()
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	n := &ast.Import{Names: aliases}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) dottedAsName() (*ast.Alias, error) {
	name, err := p.dottedName()
	if err != nil {
		return nil, err
	}
	asName := ""
	if _, ok := p.accept(token.AS); ok {
		tok, err := p.expect(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		asName = tok.Identifier
	}
	return &ast.Alias{Name: name, AsName: asName}, nil
}

func (p *Parser) dottedName() (string, error) {
	tok, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return "", err
	}
	name := tok.Identifier
	for p.at(token.DOT) {
		p.advance()
		tok, err := p.expect(token.IDENTIFIER)
		if err != nil {
			return "", err
		}
		name += "." + tok.Identifier
	}
	return name, nil
}

func (p *Parser) importFromStatement(start int) (ast.Statement, error) {
	p.advance()
	level := 0
	for p.at(token.DOT) || p.at(token.ELLIPSIS) {
		if p.at(token.ELLIPSIS) {
			level += 3
		} else {
			level++
		}
		p.advance()
	}
	module := ""
	if !p.at(token.IMPORT) {
		m, err := p.dottedName()
		if err != nil {
			return nil, err
		}
		module = m
	}
	if _, err := p.expect(token.IMPORT); err != nil {
		return nil, err
	}
	var names []*ast.Alias
	if _, ok := p.accept(token.STAR); ok {
		names = []*ast.Alias{{Name: "*"}}
	} else if _, ok := p.accept(token.LPAR); ok {
		for {
			a, err := p.importAsName()
			if err != nil {
				return nil, err
			}
			names = append(names, a)
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
			if p.at(token.RPAR) {
				break
			}
		}
		if _, err := p.expect(token.RPAR); err != nil {
			return nil, err
		}
	} else {
		for {
			a, err := p.importAsName()
			if err != nil {
				return nil, err
			}
			names = append(names, a)
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}
	}
	n := &ast.ImportFrom{Module: module, Names: names, Level: level}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) importAsName() (*ast.Alias, error) {
	tok, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	asName := ""
	if _, ok := p.accept(token.AS); ok {
		t, err := p.expect(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		asName = t.Identifier
	}
	return &ast.Alias{Name: tok.Identifier, AsName: asName}, nil
}

func (p *Parser) assertStatement(start int) (ast.Statement, error) {
	p.advance()
	test, err := p.expression()
	if err != nil {
		return nil, err
	}
	var msg ast.Expression
	if _, ok := p.accept(token.COMMA); ok {
		m, err := p.expression()
		if err != nil {
			return nil, err
		}
		msg = m
	}
	n := &ast.Assert{Test: test, Msg: msg}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// exprOrAssignStatement parses everything that starts with an expression:
// a bare expression statement, a chained assignment `a = b = value`, an
// augmented assignment `a += value`, or an annotated assignment/binding
// `a: T` / `a: T = value`.
func (p *Parser) exprOrAssignStatement(start int) (ast.Statement, error) {
	first, err := p.exprListOrTuple()
	if err != nil {
		return nil, err
	}

	if _, ok := p.accept(token.COLON); ok {
		annotation, err := p.expression()
		if err != nil {
			return nil, err
		}
		var value ast.Expression
		if _, ok := p.accept(token.EQUAL); ok {
			v, err := p.exprListOrTuple()
			if err != nil {
				return nil, err
			}
			value = v
		}
		n := &ast.AnnAssign{Target: first, Annotation: annotation, Value: value}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}

	if op, ok := p.acceptAugAssign(); ok {
		value, err := p.exprListOrTuple()
		if err != nil {
			return nil, err
		}
		n := &ast.AugAssign{Target: first, Op: op, Value: value}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}

	if p.at(token.EQUAL) {
		targets := []ast.Expression{first}
		var value ast.Expression
		for {
			p.advance()
			v, err := p.exprListOrTuple()
			if err != nil {
				return nil, err
			}
			if p.at(token.EQUAL) {
				targets = append(targets, v)
				continue
			}
			value = v
			break
		}
		n := &ast.Assign{Targets: targets, Value: value}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}

	n := &ast.ExprStatement{Value: first}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) acceptAugAssign() (token.Kind, bool) {
	switch p.peekKind() {
	case token.PLUSEQUAL, token.MINEQUAL, token.STAREQUAL, token.SLASHEQUAL,
		token.DOUBLESLASHEQUAL, token.PERCENTEQUAL, token.DOUBLESTAREQUAL,
		token.AMPEREQUAL, token.VBAREQUAL, token.CIRCUMFLEXEQUAL,
		token.LSHIFTEQUAL, token.RSHIFTEQUAL, token.ATEQUAL:
		return p.advance().Kind, true
	}
	return 0, false
}

func (p *Parser) atStatementEnd() bool {
	return p.at(token.NEWLINE) || p.at(token.SEMI) || p.atEOF()
}

// ---- compound statements ----

func (p *Parser) compoundStatement() (ast.Statement, error) {
	var decorators []ast.Expression
	for p.at(token.AT) {
		p.advance()
		d, err := p.expression()
		if err != nil {
			return nil, err
		}
		decorators = append(decorators, d)
		if _, err := p.expect(token.NEWLINE); err != nil {
			return nil, err
		}
	}

	isAsync := false
	if p.at(token.ASYNC) {
		isAsync = true
		p.advance()
	}

	switch p.peekKind() {
	case token.DEF:
		return p.functionDef(decorators, isAsync)
	case token.CLASS:
		return p.classDef(decorators)
	case token.IF:
		return p.ifStatement()
	case token.WHILE:
		return p.whileStatement()
	case token.FOR:
		return p.forStatement(isAsync)
	case token.TRY:
		return p.tryStatement()
	case token.WITH:
		return p.withStatement(isAsync)
	default:
		return nil, p.unexpected("a compound statement")
	}
}

func (p *Parser) block() ([]ast.Statement, error) {
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	if p.at(token.NEWLINE) {
		p.advance()
		if _, err := p.expect(token.INDENT); err != nil {
			return nil, err
		}
		var body []ast.Statement
		for !p.at(token.DEDENT) && !p.atEOF() {
			p.skipNewlines()
			if p.at(token.DEDENT) || p.atEOF() {
				break
			}
			stmts, err := p.statement()
			if err != nil {
				return nil, err
			}
			body = append(body, stmts...)
		}
		if _, err := p.expect(token.DEDENT); err != nil {
			return nil, err
		}
		return body, nil
	}
	return p.simpleStatementLine()
}

func (p *Parser) functionDef(decorators []ast.Expression, isAsync bool) (ast.Statement, error) {
	start := p.here()
	p.advance()
	name, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAR); err != nil {
		return nil, err
	}
	params, err := p.parameterList(token.RPAR)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAR); err != nil {
		return nil, err
	}
	var returns ast.Expression
	if _, ok := p.accept(token.RARROW); ok {
		r, err := p.expression()
		if err != nil {
			return nil, err
		}
		returns = r
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	n := &ast.FunctionDef{
		Name: name.Identifier, Params: params, Returns: returns,
		Body: body, Decorators: decorators, IsAsync: isAsync,
	}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// parameterList parses a comma-separated parameter list up to (but not
// consuming) terminator, recognizing `/` (end of positional-only) and `*`
// / `*args` / `**kwargs` markers.
func (p *Parser) parameterList(terminator token.Kind) ([]*ast.Parameter, error) {
	var params []*ast.Parameter
	seenStar := false
	for !p.at(terminator) {
		start := p.here()
		if _, ok := p.accept(token.SLASH); ok {
			for i := range params {
				if params[i].Kind == ast.ARG {
					params[i].Kind = ast.POSONLY
				}
			}
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
			continue
		}
		if _, ok := p.accept(token.DOUBLESTAR); ok {
			param, err := p.oneParameter(ast.VARKWARG, start)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			p.accept(token.COMMA)
			break
		}
		if _, ok := p.accept(token.STAR); ok {
			seenStar = true
			if p.at(token.IDENTIFIER) {
				param, err := p.oneParameter(ast.VARARG, start)
				if err != nil {
					return nil, err
				}
				params = append(params, param)
			}
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
			continue
		}
		kind := ast.ARG
		if seenStar {
			kind = ast.KWONLY
		}
		param, err := p.oneParameter(kind, start)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
	}
	return params, nil
}

func (p *Parser) oneParameter(kind ast.ParameterKind, start int) (*ast.Parameter, error) {
	name, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	var annotation ast.Expression
	if _, ok := p.accept(token.COLON); ok {
		a, err := p.expression()
		if err != nil {
			return nil, err
		}
		annotation = a
	}
	var def ast.Expression
	if _, ok := p.accept(token.EQUAL); ok {
		d, err := p.expression()
		if err != nil {
			return nil, err
		}
		def = d
	}
	param := &ast.Parameter{Name: name.Identifier, Annotation: annotation, Kind: kind, Default: def}
	param.Span = ast.Span{Start: start, End: p.here()}
	return param, nil
}

func (p *Parser) classDef(decorators []ast.Expression) (ast.Statement, error) {
	start := p.here()
	p.advance()
	name, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	var bases []ast.Expression
	var keywords []*ast.Keyword
	if _, ok := p.accept(token.LPAR); ok {
		for !p.at(token.RPAR) {
			if kw, ok := p.tryKeywordArg(); ok {
				keywords = append(keywords, kw)
			} else {
				b, err := p.expression()
				if err != nil {
					return nil, err
				}
				bases = append(bases, b)
			}
			if _, ok := p.accept(token.COMMA); !ok {
				break
			}
		}
		if _, err := p.expect(token.RPAR); err != nil {
			return nil, err
		}
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	n := &ast.ClassDef{Name: name.Identifier, Bases: bases, Keywords: keywords, Body: body, Decorators: decorators}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) ifStatement() (ast.Statement, error) {
	start := p.here()
	p.advance()
	test, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	var orelse []ast.Statement
	if p.at(token.ELIF) {
		elif, err := p.ifStatement()
		if err != nil {
			return nil, err
		}
		orelse = []ast.Statement{elif}
	} else if _, ok := p.accept(token.ELSE); ok {
		o, err := p.block()
		if err != nil {
			return nil, err
		}
		orelse = o
	}
	n := &ast.If{Test: test, Body: body, Orelse: orelse}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) whileStatement() (ast.Statement, error) {
	start := p.here()
	p.advance()
	test, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	var orelse []ast.Statement
	if _, ok := p.accept(token.ELSE); ok {
		o, err := p.block()
		if err != nil {
			return nil, err
		}
		orelse = o
	}
	n := &ast.While{Test: test, Body: body, Orelse: orelse}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) forStatement(isAsync bool) (ast.Statement, error) {
	start := p.here()
	p.advance()
	target, err := p.targetList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iter, err := p.exprListOrTuple()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	var orelse []ast.Statement
	if _, ok := p.accept(token.ELSE); ok {
		o, err := p.block()
		if err != nil {
			return nil, err
		}
		orelse = o
	}
	n := &ast.For{Target: target, Iter: iter, Body: body, Orelse: orelse, IsAsync: isAsync}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// targetList parses a for-loop target: a single expression, or a bare
// comma-separated tuple of targets with no enclosing parens.
func (p *Parser) targetList() (ast.Expression, error) {
	start := p.here()
	first, err := p.orExprNoTuple()
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
		if p.at(token.IN) {
			break
		}
		e, err := p.orExprNoTuple()
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	n := &ast.Tuple{Elements: elements}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

// orExprNoTuple parses a single target expression, allowing a leading `*`
// for starred unpacking targets.
func (p *Parser) orExprNoTuple() (ast.Expression, error) {
	if p.at(token.STAR) {
		start := p.here()
		p.advance()
		v, err := p.bitOr()
		if err != nil {
			return nil, err
		}
		n := &ast.Starred{Value: v}
		n.Span = ast.Span{Start: start, End: p.here()}
		return n, nil
	}
	return p.bitOr()
}

func (p *Parser) tryStatement() (ast.Statement, error) {
	start := p.here()
	p.advance()
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	var handlers []*ast.ExceptHandler
	for p.at(token.EXCEPT) {
		hstart := p.here()
		p.advance()
		p.accept(token.STAR) // except* group syntax, treated the same as except
		var typeExpr ast.Expression
		name := ""
		if !p.at(token.COLON) {
			t, err := p.expression()
			if err != nil {
				return nil, err
			}
			typeExpr = t
			if _, ok := p.accept(token.AS); ok {
				n, err := p.expect(token.IDENTIFIER)
				if err != nil {
					return nil, err
				}
				name = n.Identifier
			}
		}
		hbody, err := p.block()
		if err != nil {
			return nil, err
		}
		h := &ast.ExceptHandler{TypeExpr: typeExpr, Name: name, Body: hbody}
		h.Span = ast.Span{Start: hstart, End: p.here()}
		handlers = append(handlers, h)
	}
	var orelse, finally []ast.Statement
	if _, ok := p.accept(token.ELSE); ok {
		o, err := p.block()
		if err != nil {
			return nil, err
		}
		orelse = o
	}
	if _, ok := p.accept(token.FINALLY); ok {
		f, err := p.block()
		if err != nil {
			return nil, err
		}
		finally = f
	}
	n := &ast.Try{Body: body, Handlers: handlers, Orelse: orelse, Finally: finally}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) withStatement(isAsync bool) (ast.Statement, error) {
	start := p.here()
	p.advance()
	parenthesized := false
	if _, ok := p.accept(token.LPAR); ok {
		parenthesized = true
	}
	var items []*ast.WithItem
	for {
		istart := p.here()
		ctx, err := p.expression()
		if err != nil {
			return nil, err
		}
		var v ast.Expression
		if _, ok := p.accept(token.AS); ok {
			target, err := p.expression()
			if err != nil {
				return nil, err
			}
			v = target
		}
		item := &ast.WithItem{ContextExpr: ctx, OptionalVar: v}
		item.Span = ast.Span{Start: istart, End: p.here()}
		items = append(items, item)
		if _, ok := p.accept(token.COMMA); !ok {
			break
		}
		if parenthesized && p.at(token.RPAR) {
			break
		}
	}
	if parenthesized {
		if _, err := p.expect(token.RPAR); err != nil {
			return nil, err
		}
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	n := &ast.With{Items: items, Body: body, IsAsync: isAsync}
	n.Span = ast.Span{Start: start, End: p.here()}
	return n, nil
}

func (p *Parser) unexpected(what string) error {
	return &ParseError{
		Message: fmt.Sprintf("unexpected token %s at offset %d, expected %s", p.peekKind(), p.here(), what),
		Span:    ast.Span{Start: p.here(), End: p.here()},
	}
}
