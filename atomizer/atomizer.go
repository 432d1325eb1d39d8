// Package atomizer is the type evaluator: it walks an AST and maps each
// node to an atom, threading a scope graph for name resolution and
// accumulating diagnostics as it goes.
package atomizer

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/shadowCow/typethon-go/ast"
	"github.com/shadowCow/typethon-go/atom"
	"github.com/shadowCow/typethon-go/bridge"
	"github.com/shadowCow/typethon-go/impl"
	"github.com/shadowCow/typethon-go/scope"
	"github.com/shadowCow/typethon-go/token"
)

// Context selects which grammar constructs are valid: CODE admits the full
// expression grammar, TYPE admits only the subset that denotes a type.
type Context int

const (
	Code Context = iota
	Type
)

type binaryOpEntry struct {
	dunder, rdunder, glyph string
}

type unaryOpEntry struct {
	dunder, glyph string
}

var binaryOps = map[token.Kind]binaryOpEntry{
	token.PLUS:        {"__add__", "__radd__", "+"},
	token.MINUS:       {"__sub__", "__rsub__", "-"},
	token.STAR:        {"__mul__", "__rmul__", "*"},
	token.SLASH:       {"__truediv__", "__rtruediv__", "/"},
	token.DOUBLESLASH: {"__floordiv__", "__rfloordiv__", "//"},
	token.PERCENT:     {"__mod__", "__rmod__", "%"},
	token.DOUBLESTAR:  {"__pow__", "__rpow__", "**"},
	token.VBAR:        {"__or__", "__ror__", "|"},
	token.CIRCUMFLEX:  {"__xor__", "__rxor__", "^"},
	token.AMPER:       {"__and__", "__rand__", "&"},
	token.LSHIFT:      {"__lshift__", "__rlshift__", "<<"},
	token.RSHIFT:      {"__rshift__", "__rrshift__", ">>"},
	token.AT:          {"__matmul__", "__rmatmul__", "@"},
}

var unaryOps = map[token.Kind]unaryOpEntry{
	token.PLUS:  {"__pos__", "+"},
	token.MINUS: {"__neg__", "-"},
	token.TILDE: {"__invert__", "~"},
}

// Atomizer is the evaluator. It is not safe for concurrent use: per
// spec.md §5 the whole pipeline is single-threaded and synchronous.
type Atomizer struct {
	log      hclog.Logger
	registry *impl.Registry
	global   *scope.Scope
	current  *scope.Scope
	ctx      Context
	errs     *multierror.Error
}

// New builds an Atomizer with a fresh global scope.
func New(log hclog.Logger) *Atomizer {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	g := scope.NewGlobal()
	return &Atomizer{
		log:      log.Named("atomizer"),
		registry: impl.NewRegistry(),
		global:   g,
		current:  g,
	}
}

func (z *Atomizer) isCode() bool { return z.ctx == Code }
func (z *Atomizer) isType() bool { return z.ctx == Type }

func (z *Atomizer) report(err *atom.Atom, node ast.Node) {
	if !err.HasError() {
		return
	}
	z.errs = multierror.Append(z.errs, AnalyzationError{Category: err.ErrorCategory, Message: err.ErrorMessage, Node: node})
}

// Errors returns every diagnostic accumulated so far, in source order.
func (z *Atomizer) Errors() []AnalyzationError {
	if z.errs == nil {
		return nil
	}
	out := make([]AnalyzationError, 0, len(z.errs.Errors))
	for _, e := range z.errs.Errors {
		out = append(out, e.(AnalyzationError))
	}
	return out
}

// EvaluateModule walks every top-level statement of mod and returns the
// atom for each top-level expression statement alongside the accumulated
// error list, matching the external-interface contract of spec.md §6.
func (z *Atomizer) EvaluateModule(mod *ast.Module) ([]*atom.Atom, []AnalyzationError) {
	var results []*atom.Atom
	for _, stmt := range mod.Body {
		if es, ok := stmt.(*ast.ExprStatement); ok {
			results = append(results, z.evalExpr(es.Value))
			continue
		}
		z.evalStatement(stmt)
	}
	return results, z.Errors()
}

func (z *Atomizer) enterScope(kind scope.Kind) (restore func()) {
	parent := z.current
	z.current = parent.NewChild(kind)
	return func() { z.current = parent }
}

// ---- statements ----

func (z *Atomizer) evalStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FunctionDef:
		z.evalFunctionDef(s)
	case *ast.Return:
		z.evalReturn(s)
	case *ast.Assign:
		z.evalAssign(s)
	case *ast.AugAssign:
		z.evalExpr(s.Target)
		z.evalExpr(s.Value)
	case *ast.AnnAssign:
		z.evalAnnAssign(s)
	case *ast.If:
		z.evalExpr(s.Test)
		for _, b := range s.Body {
			z.evalStatement(b)
		}
		for _, b := range s.Orelse {
			z.evalStatement(b)
		}
	case *ast.While:
		z.evalExpr(s.Test)
		for _, b := range s.Body {
			z.evalStatement(b)
		}
		for _, b := range s.Orelse {
			z.evalStatement(b)
		}
	case *ast.For:
		z.evalTarget(s.Target, atom.UNKNOWN_)
		z.evalExpr(s.Iter)
		for _, b := range s.Body {
			z.evalStatement(b)
		}
		for _, b := range s.Orelse {
			z.evalStatement(b)
		}
	case *ast.With:
		for _, item := range s.Items {
			z.evalExpr(item.ContextExpr)
			if item.OptionalVar != nil {
				z.evalTarget(item.OptionalVar, atom.UNKNOWN_)
			}
		}
		for _, b := range s.Body {
			z.evalStatement(b)
		}
	case *ast.Try:
		for _, b := range s.Body {
			z.evalStatement(b)
		}
		for _, h := range s.Handlers {
			if h.TypeExpr != nil {
				z.evalExpr(h.TypeExpr)
			}
			if h.Name != "" {
				z.current.Add(h.Name, atom.UNKNOWN_)
			}
			for _, b := range h.Body {
				z.evalStatement(b)
			}
		}
		for _, b := range s.Orelse {
			z.evalStatement(b)
		}
		for _, b := range s.Finally {
			z.evalStatement(b)
		}
	case *ast.Assert:
		z.evalExpr(s.Test)
		if s.Msg != nil {
			z.evalExpr(s.Msg)
		}
	case *ast.Delete:
		for _, t := range s.Targets {
			z.evalExpr(t)
		}
	case *ast.Global, *ast.Nonlocal, *ast.Import, *ast.ImportFrom, *ast.Pass, *ast.Break, *ast.Continue, *ast.ClassDef:
		// name-table bookkeeping only; no further expression evaluation needed
	case *ast.ExprStatement:
		z.evalExpr(s.Value)
	}
}

func (z *Atomizer) evalFunctionDef(def *ast.FunctionDef) {
	restore := z.enterScope(scope.Function)

	var params []atom.FunctionParameter
	for _, p := range def.Params {
		var annotation *atom.Atom
		if p.Annotation != nil {
			annotation = z.evalTypeExpression(p.Annotation)
		} else {
			annotation = atom.UNKNOWN_
		}
		var def_ *atom.Atom
		if p.Default != nil {
			d := z.evalExpr(p.Default)
			def_ = d
		}
		params = append(params, atom.FunctionParameter{
			Name:       p.Name,
			Annotation: annotation,
			Kind:       int(p.Kind),
			Default:    def_,
		})
		z.current.Add(p.Name, annotation.Instantiate())
	}

	var returns *atom.Atom
	if def.Returns != nil {
		returns = z.evalTypeExpression(def.Returns)
	} else {
		returns = atom.UNKNOWN_
	}

	for _, b := range def.Body {
		z.evalStatement(b)
	}

	fn := &atom.Atom{
		Kind:        atom.FUNCTION,
		FuncName:    def.Name,
		FuncParams:  params,
		FuncReturns: returns,
	}

	restore()

	result := fn
	for i := len(def.Decorators) - 1; i >= 0; i-- {
		dec := z.evalExpr(def.Decorators[i])
		result = z.Call(dec, []*atom.Atom{result}, nil, def)
	}

	z.current.Add(def.Name, result)
}

func (z *Atomizer) evalReturn(ret *ast.Return) {
	if !z.current.IsFunction() {
		z.report(atom.NewError(atom.SyntaxError, "'return' outside function"), ret)
		return
	}
	if ret.Value != nil {
		z.evalExpr(ret.Value)
	}
}

func (z *Atomizer) evalAssign(assign *ast.Assign) {
	value := z.evalExpr(assign.Value)
	for _, target := range assign.Targets {
		z.evalTarget(target, value)
	}
}

// evalTarget binds NameNode targets directly, recursively binds
// tuple/list-unpacking targets element-wise, and evaluates (without
// binding) attribute/subscript targets. The Python original only handles
// NameNode; this extends it per SPEC_FULL.md's supplemented-features list.
func (z *Atomizer) evalTarget(target ast.Expression, value *atom.Atom) {
	switch t := target.(type) {
	case *ast.Name:
		z.current.Add(t.Identifier, value.RemoveImplicitValue())
	case *ast.Tuple:
		for _, elt := range t.Elements {
			z.evalTarget(elt, atom.UNKNOWN_)
		}
	case *ast.List:
		for _, elt := range t.Elements {
			z.evalTarget(elt, atom.UNKNOWN_)
		}
	case *ast.Starred:
		z.evalTarget(t.Value, atom.UNKNOWN_)
	case *ast.Attribute:
		z.evalExpr(t.Value)
	case *ast.Subscript:
		z.evalExpr(t.Value)
		z.evalExpr(t.Slice)
	}
}

func (z *Atomizer) evalAnnAssign(assign *ast.AnnAssign) {
	declared := z.evalTypeExpression(assign.Annotation)
	if assign.Value != nil {
		value := z.evalExpr(assign.Value)
		if value.Kind != declared.Kind && !atom.IsUnknown(value) && !atom.IsUnknown(declared) {
			z.report(atom.NewErrorf(atom.TypeError, "incompatible types in assignment: declared %q, got %q",
				declared.Stringify(), value.Stringify()), assign)
		}
	}
	z.evalTarget(assign.Target, declared.Instantiate())
}

// ---- expressions ----

func (z *Atomizer) evalTypeExpression(expr ast.Expression) *atom.Atom {
	saved := z.ctx
	z.ctx = Type
	result := z.evalExpr(expr)
	z.ctx = saved
	return result
}

func (z *Atomizer) evalInnerExpression(expr ast.Expression) *atom.Atom {
	result := z.evalExpr(expr)
	if z.isType() {
		return result.Instantiate()
	}
	return result.RemoveImplicitValue()
}

func (z *Atomizer) evalExprList(exprs []ast.Expression) []*atom.Atom {
	out := make([]*atom.Atom, len(exprs))
	for i, e := range exprs {
		out[i] = z.evalInnerExpression(e)
	}
	return out
}

func (z *Atomizer) evalExpr(expr ast.Expression) *atom.Atom {
	switch e := expr.(type) {
	case *ast.Constant:
		return z.evalConstant(e)
	case *ast.Name:
		return z.evalName(e)
	case *ast.BoolOp:
		return z.evalBoolOp(e)
	case *ast.BinaryOp:
		return z.evalBinaryOp(e)
	case *ast.UnaryOp:
		return z.evalUnaryOp(e)
	case *ast.IfExp:
		return z.evalIfExp(e)
	case *ast.Call:
		return z.evalCall(e)
	case *ast.Attribute:
		return z.evalAttribute(e)
	case *ast.Subscript:
		return z.evalSubscript(e)
	case *ast.Tuple:
		return z.evalTuple(e)
	case *ast.List:
		return z.evalList(e)
	case *ast.Dict:
		return z.evalDict(e)
	case *ast.Set:
		return z.evalSet(e)
	case *ast.Slice:
		return z.evalSlice(e)
	case *ast.Compare:
		return z.evalCompare(e)
	case *ast.Lambda:
		return atom.UNKNOWN_
	case *ast.Await:
		return z.evalExpr(e.Value)
	case *ast.Yield:
		if e.Value != nil {
			return z.evalExpr(e.Value)
		}
		return atom.NONE_
	case *ast.YieldFrom:
		return z.evalExpr(e.Value)
	case *ast.Starred:
		return z.evalExpr(e.Value)
	default:
		return atom.UNKNOWN_
	}
}

func (z *Atomizer) evalConstant(c *ast.Constant) *atom.Atom {
	var result *atom.Atom
	switch c.Kind {
	case ast.ConstTrue:
		result = bridge.BridgeLiteral(true)
	case ast.ConstFalse:
		result = bridge.BridgeLiteral(false)
	case ast.ConstNone:
		return atom.NONE_
	case ast.ConstEllipsis:
		return atom.ELLIPSIS_
	case ast.ConstString, ast.ConstBytes:
		result = bridge.BridgeLiteral(c.Value)
	case ast.ConstFloat:
		if v, ok := decodeFloatLiteral(c.Value); ok {
			result = bridge.BridgeLiteral(v)
		} else {
			result = atom.FLOAT_
		}
	case ast.ConstComplex:
		// complex literals are widened to their bare kind: host arithmetic
		// on them isn't wired through bridge/impl, so there's no concrete
		// value to carry.
		result = atom.COMPLEX_
	default:
		if v, ok := decodeIntLiteral(c.Value); ok {
			result = bridge.BridgeLiteral(v)
		} else {
			result = atom.INTEGER_
		}
	}
	if z.isType() {
		return atom.GetType(result)
	}
	return result
}

// decodeIntLiteral decodes a NUMBER token's source text into the concrete
// int64 it denotes, so arithmetic folding (impl's binaryArith) has a value
// to fold. Digit-group underscores are stripped first; the radix prefixes
// the scanner accepts (0x/0X, 0o/0O, 0b/0B) are left for strconv's base-0
// auto-detection, which understands all three.
func decodeIntLiteral(s string) (int64, bool) {
	cleaned := strings.ReplaceAll(s, "_", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(cleaned, 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// decodeFloatLiteral decodes a NUMBER token's source text into the
// concrete float64 it denotes. Underscores are stripped the same way as
// decodeIntLiteral; strconv.ParseFloat handles the rest (leading/trailing
// dot, exponent suffix).
func decodeFloatLiteral(s string) (float64, bool) {
	cleaned := strings.ReplaceAll(s, "_", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (z *Atomizer) evalName(n *ast.Name) *atom.Atom {
	sym := z.current.Get(n.Identifier)
	if sym == nil {
		err := atom.NewErrorf(atom.TypeError, "'%s' is not defined", n.Identifier)
		z.report(err, n)
		return err
	}
	return sym.Atom
}

func (z *Atomizer) evalBoolOp(b *ast.BoolOp) *atom.Atom {
	if z.isType() {
		err := atom.NewError(atom.SyntaxError, "boolean expressions are not valid in a type context")
		z.report(err, b)
		return err
	}
	var unknowns []*atom.Atom
	for _, v := range b.Values {
		val := z.evalExpr(v)
		truth := z.truthness(val)
		if !truth.BoolHasValue {
			unknowns = append(unknowns, val)
			continue
		}
		short := (b.Op == token.OR && truth.BoolValue) || (b.Op == token.AND && !truth.BoolValue)
		if short {
			return val
		}
	}
	if len(unknowns) > 0 {
		return atom.Union(unknowns)
	}
	return z.evalExpr(b.Values[len(b.Values)-1])
}

func (z *Atomizer) evalBinaryOp(b *ast.BinaryOp) *atom.Atom {
	entry, known := binaryOps[b.Op]
	if z.isType() && b.Op != token.VBAR {
		err := atom.NewErrorf(atom.SyntaxError, "operator %q is not valid in a type context", entry.glyph)
		z.report(err, b)
		return err
	}

	left := z.evalExpr(b.Left)
	right := z.evalExpr(b.Right)
	if !known {
		return atom.UNKNOWN_
	}

	if atom.IsUnknown(left) || atom.IsUnknown(right) {
		return atom.Union([]*atom.Atom{left, right})
	}

	if z.isType() {
		// only `|` gets here: in a type context it builds a union through
		// the TYPE implementation rather than the operands' own dunders
		if fn := z.lookupAttribute(atom.GetType(atom.TYPE_), entry.dunder); fn != nil {
			return z.callCallable(fn, []*atom.Atom{left, right}, nil, b)
		}
	}

	result := z.dispatchBinary(left, right, entry, b)
	return result
}

func (z *Atomizer) dispatchBinary(left, right *atom.Atom, entry binaryOpEntry, node ast.Node) *atom.Atom {
	if fn := z.lookupAttribute(atom.GetType(left), entry.dunder); fn != nil {
		result := z.callCallable(fn, []*atom.Atom{left, right}, nil, node)
		if !atom.IsUnknown(result) {
			return result
		}
	}
	if fn := z.lookupAttribute(atom.GetType(right), entry.rdunder); fn != nil {
		result := z.callCallable(fn, []*atom.Atom{right, left}, nil, node)
		if !atom.IsUnknown(result) {
			return result
		}
	}
	err := atom.NewErrorf(atom.TypeError, "unsupported operand types for %s: %q and %q", entry.glyph, left.Stringify(), right.Stringify())
	z.report(err, node)
	return err
}

// lookupAttribute is getAttribute's silent counterpart: used wherever a
// dunder lookup is speculative (trying __add__ before falling back to
// __radd__, say) and a miss is not itself a diagnostic, only a signal to
// try the next candidate.
func (z *Atomizer) lookupAttribute(a *atom.Atom, name string) *atom.Atom {
	if atom.IsUnknown(a) {
		return nil
	}
	i := z.registry.Get(a.Kind)
	if i == nil {
		return nil
	}
	raw, ok := i.GetAttribute(name)
	if !ok {
		return nil
	}
	if raw.Kind == atom.FUNCTION || raw.Kind == atom.BUILTINFUNCTION {
		instance := a
		if a.IsType() {
			instance = atom.NONE_
		}
		return impl.BindMethod(raw, instance)
	}
	return raw
}

func (z *Atomizer) evalUnaryOp(u *ast.UnaryOp) *atom.Atom {
	if z.isType() {
		err := atom.NewError(atom.SyntaxError, "unary expressions are not valid in a type context")
		z.report(err, u)
		return err
	}
	operand := z.evalExpr(u.Operand)
	if u.Op == token.NOT {
		truth := z.truthness(operand)
		if !truth.BoolHasValue {
			return atom.BOOL_
		}
		result := *atom.BOOL_
		result.BoolHasValue = true
		result.BoolValue = !truth.BoolValue
		return &result
	}
	entry, ok := unaryOps[u.Op]
	if !ok {
		return atom.UNKNOWN_
	}
	if atom.IsUnknown(operand) {
		return operand
	}
	fn := z.getAttribute(atom.GetType(operand), entry.dunder, u)
	if atom.IsUnknown(fn) {
		err := atom.NewErrorf(atom.TypeError, "unsupported operand type for %s: %q", entry.glyph, operand.Stringify())
		z.report(err, u)
		return err
	}
	return z.callCallable(fn, []*atom.Atom{operand}, nil, u)
}

func (z *Atomizer) evalIfExp(e *ast.IfExp) *atom.Atom {
	// all three branches are evaluated eagerly before the context check,
	// matching the original's evaluation order
	body := z.evalExpr(e.Body)
	orelse := z.evalExpr(e.Orelse)
	test := z.evalExpr(e.Test)
	if z.isType() {
		err := atom.NewError(atom.SyntaxError, "ternary expressions are not valid in a type context")
		z.report(err, e)
		return err
	}
	truth := z.truthness(test)
	if truth.BoolHasValue {
		if truth.BoolValue {
			return body
		}
		return orelse
	}
	return atom.Union([]*atom.Atom{body, orelse})
}

func (z *Atomizer) evalCall(c *ast.Call) *atom.Atom {
	fn := z.evalExpr(c.Func)
	args := make([]*atom.Atom, len(c.Args))
	for i, a := range c.Args {
		args[i] = z.evalExpr(a)
	}
	kwargs := map[string]*atom.Atom{}
	for _, k := range c.Keywords {
		if k.Name != "" {
			kwargs[k.Name] = z.evalExpr(k.Value)
		}
	}
	return z.Call(fn, args, kwargs, c)
}

// Call implements the call protocol: a METHOD dispatches through
// impl.CallMethod, a FUNCTION/BUILTINFUNCTION through impl.Call directly,
// and anything else is resolved via its `__call__` attribute.
func (z *Atomizer) Call(fn *atom.Atom, args []*atom.Atom, kwargs map[string]*atom.Atom, node ast.Node) *atom.Atom {
	return z.callCallable(fn, args, kwargs, node)
}

func (z *Atomizer) callCallable(fn *atom.Atom, args []*atom.Atom, kwargs map[string]*atom.Atom, node ast.Node) *atom.Atom {
	switch fn.Kind {
	case atom.FUNCTION, atom.BUILTINFUNCTION:
		return impl.Call(fn, args, kwargs)
	case atom.METHOD:
		return impl.CallMethod(fn, args, kwargs)
	default:
		call := z.getAttribute(fn, "__call__", node)
		if atom.IsUnknown(call) {
			err := atom.NewErrorf(atom.TypeError, "%q object is not callable", fn.Stringify())
			z.report(err, node)
			return err
		}
		return z.callCallable(call, args, kwargs, node)
	}
}

// getAttribute implements the attribute protocol of spec.md §4.5: a raw
// lookup against the kind's implementation, FUNCTION-kind results bound
// via the descriptor protocol, otherwise UNKNOWN with a recorded
// TYPE_ERROR.
func (z *Atomizer) getAttribute(a *atom.Atom, name string, node ast.Node) *atom.Atom {
	if atom.IsUnknown(a) {
		return a
	}
	i := z.registry.Get(a.Kind)
	if i != nil {
		if raw, ok := i.GetAttribute(name); ok {
			if raw.Kind == atom.FUNCTION || raw.Kind == atom.BUILTINFUNCTION {
				instance := a
				if a.IsType() {
					instance = atom.NONE_
				}
				return impl.BindMethod(raw, instance)
			}
			return raw
		}
	}
	err := atom.NewErrorf(atom.TypeError, "%q object has no attribute %q", a.Stringify(), name)
	z.report(err, node)
	return atom.UNKNOWN_
}

func (z *Atomizer) evalAttribute(a *ast.Attribute) *atom.Atom {
	value := z.evalExpr(a.Value)
	return z.getAttribute(value, a.Attr, a)
}

// getItem resolves a TYPE-mode subscript into a type-constructor result:
// list[T], dict[K, V], set[T], tuple[T, ...]. This supplements the Python
// original's get_item, which is unconditionally stubbed to UNKNOWN; see
// SPEC_FULL.md's supplemented-features list.
func (z *Atomizer) getItem(value *atom.Atom, index ast.Expression, node ast.Node) *atom.Atom {
	if !z.isType() {
		return atom.UNKNOWN_
	}
	switch value.Kind {
	case atom.LIST:
		return bridge.BridgeListType(z.evalTypeExpression(index), nil)
	case atom.SET:
		return bridge.BridgeSetType(z.evalTypeExpression(index))
	case atom.DICT:
		if tup, ok := index.(*ast.Tuple); ok && len(tup.Elements) == 2 {
			key := z.evalTypeExpression(tup.Elements[0])
			val := z.evalTypeExpression(tup.Elements[1])
			return bridge.BridgeDictType(key, val)
		}
		err := atom.NewError(atom.SyntaxError, "dict[] requires exactly a key and value type")
		z.report(err, node)
		return err
	case atom.TUPLE:
		if tup, ok := index.(*ast.Tuple); ok {
			values := make([]*atom.Atom, len(tup.Elements))
			for i, e := range tup.Elements {
				values[i] = z.evalTypeExpression(e)
			}
			return bridge.BridgeTupleType(values)
		}
		return bridge.BridgeTupleType([]*atom.Atom{z.evalTypeExpression(index)})
	default:
		return atom.UNKNOWN_
	}
}

func (z *Atomizer) evalSubscript(s *ast.Subscript) *atom.Atom {
	value := z.evalExpr(s.Value)
	// get_item is always evaluated eagerly, and only then is the CODE-only
	// gate checked, matching the original's evaluation order.
	result := z.getItem(value, s.Slice, s)
	if z.isType() {
		return result
	}
	z.evalExpr(s.Slice)
	return atom.UNKNOWN_
}

func (z *Atomizer) evalTuple(t *ast.Tuple) *atom.Atom {
	values := z.evalExprList(t.Elements)
	result := &atom.Atom{Kind: atom.TUPLE, TupleValues: values}
	if z.isType() {
		return atom.GetType(result)
	}
	return result
}

func (z *Atomizer) evalList(l *ast.List) *atom.Atom {
	if z.isType() {
		if len(l.Elements) < 1 || len(l.Elements) > 2 {
			err := atom.NewError(atom.SyntaxError, "list type must have one element type and an optional size")
			z.report(err, l)
			return err
		}
		elem := z.evalTypeExpression(l.Elements[0])
		var size *atom.Atom
		if len(l.Elements) == 2 {
			size = z.evalExpr(l.Elements[1])
			if size.Kind != atom.INTEGER {
				err := atom.NewError(atom.SyntaxError, "list size must be an integer")
				z.report(err, l)
				return err
			}
		}
		return bridge.BridgeListType(elem, size)
	}
	values := z.evalExprList(l.Elements)
	var elem *atom.Atom = atom.UNKNOWN_
	if len(values) > 0 {
		elem = atom.Union(values)
	}
	return &atom.Atom{Kind: atom.LIST, ListValue: elem}
}

func (z *Atomizer) evalDict(d *ast.Dict) *atom.Atom {
	if z.isType() {
		if len(d.Entries) != 1 || d.Entries[0].Key == nil {
			err := atom.NewError(atom.SyntaxError, "dict type must have exactly one key:value entry")
			z.report(err, d)
			return err
		}
		key := z.evalTypeExpression(d.Entries[0].Key)
		value := z.evalTypeExpression(d.Entries[0].Value)
		return bridge.BridgeDictType(key, value)
	}
	var keys, values []*atom.Atom
	for _, e := range d.Entries {
		if e.Key == nil {
			unpacked := z.evalExpr(e.Value)
			_ = unpacked
			continue
		}
		keys = append(keys, z.evalInnerExpression(e.Key))
		values = append(values, z.evalInnerExpression(e.Value))
	}
	var k, v *atom.Atom = atom.UNKNOWN_, atom.UNKNOWN_
	if len(keys) > 0 {
		k, v = atom.Union(keys), atom.Union(values)
	}
	return &atom.Atom{Kind: atom.DICT, DictKey: k, DictValue: v}
}

func (z *Atomizer) evalSet(s *ast.Set) *atom.Atom {
	if z.isType() {
		if len(s.Elements) != 1 {
			err := atom.NewError(atom.SyntaxError, "set type must have exactly one element type")
			z.report(err, s)
			return err
		}
		return bridge.BridgeSetType(z.evalTypeExpression(s.Elements[0]))
	}
	values := z.evalExprList(s.Elements)
	var elem *atom.Atom = atom.UNKNOWN_
	if len(values) > 0 {
		elem = atom.Union(values)
	}
	return &atom.Atom{Kind: atom.SET, SetValue: elem}
}

func (z *Atomizer) evalSlice(s *ast.Slice) *atom.Atom {
	if z.isType() {
		err := atom.NewError(atom.SyntaxError, "slice expressions are not valid in a type context")
		z.report(err, s)
		return err
	}
	result := &atom.Atom{Kind: atom.SLICE}
	if s.Lower != nil {
		result.SliceStart = z.evalExpr(s.Lower)
	}
	if s.Upper != nil {
		result.SliceStop = z.evalExpr(s.Upper)
	}
	if s.Step != nil {
		result.SliceStep = z.evalExpr(s.Step)
	}
	return result
}

func (z *Atomizer) evalCompare(c *ast.Compare) *atom.Atom {
	left := z.evalExpr(c.Left)
	var results []*atom.Atom
	for _, comp := range c.Comparators {
		right := z.evalExpr(comp.Operand)
		if atom.IsUnknown(left) || atom.IsUnknown(right) {
			results = append(results, atom.Union([]*atom.Atom{left, right}))
		} else {
			results = append(results, atom.BOOL_)
		}
		left = right
	}
	if len(results) == 0 {
		return atom.BOOL_
	}
	return atom.Union(results)
}

// truthness implements spec.md §4.5's truth-value protocol.
func (z *Atomizer) truthness(a *atom.Atom) *atom.Atom {
	if !z.isType() {
		switch a.Kind {
		case atom.BOOL:
			return a
		case atom.NONE:
			result := *atom.BOOL_
			result.BoolHasValue = true
			result.BoolValue = false
			return &result
		case atom.ELLIPSIS:
			result := *atom.BOOL_
			result.BoolHasValue = true
			result.BoolValue = true
			return &result
		case atom.INTEGER:
			if a.IntHasValue {
				result := *atom.BOOL_
				result.BoolHasValue = true
				result.BoolValue = a.IntValue != 0
				return &result
			}
		case atom.FLOAT:
			if a.FloatHasValue {
				result := *atom.BOOL_
				result.BoolHasValue = true
				result.BoolValue = a.FloatValue != 0
				return &result
			}
		case atom.STRING:
			if a.StringHasValue {
				result := *atom.BOOL_
				result.BoolHasValue = true
				result.BoolValue = a.StringValue != ""
				return &result
			}
		}
	}
	fn := z.registry.Get(a.Kind)
	if fn != nil {
		if raw, ok := fn.GetAttribute("__bool__"); ok {
			result := z.callCallable(impl.BindMethod(raw, a), nil, nil, nil)
			if result.Kind == atom.BOOL {
				return result
			}
		}
	}
	result := *atom.BOOL_
	result.BoolHasValue = true
	result.BoolValue = true
	return &result
}
