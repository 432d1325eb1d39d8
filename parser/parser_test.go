package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shadowCow/typethon-go/ast"
	"github.com/shadowCow/typethon-go/scanner"
	"github.com/shadowCow/typethon-go/token"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	s := scanner.New([]byte(src), nil)
	var toks []token.Token
	for {
		tok := s.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	mod, err := New(toks, nil).Parse()
	require.NoError(t, err)
	return mod
}

func soleExpr(t *testing.T, mod *ast.Module) ast.Expression {
	t.Helper()
	require.Len(t, mod.Body, 1)
	es, ok := mod.Body[0].(*ast.ExprStatement)
	require.True(t, ok, "expected a single expression statement, got %T", mod.Body[0])
	return es.Value
}

// TestScenarioB_Precedence checks `a + b * c` parses as a + (b * c), with
// `*` binding tighter than `+`.
func TestScenarioB_Precedence(t *testing.T) {
	mod := parseModule(t, "a + b * c\n")
	top, ok := soleExpr(t, mod).(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, token.PLUS, top.Op)

	left, ok := top.Left.(*ast.Name)
	require.True(t, ok)
	require.Equal(t, "a", left.Identifier)

	right, ok := top.Right.(*ast.BinaryOp)
	require.True(t, ok, "right side should itself be a BinaryOp (b * c)")
	require.Equal(t, token.STAR, right.Op)
}

// TestScenarioC_BareGeneratorExprArgument checks that a generator
// expression used as the sole argument to a call parses without its own
// parentheses: `sum(x for x in y)`.
func TestScenarioC_BareGeneratorExprArgument(t *testing.T) {
	mod := parseModule(t, "sum(x for x in y)\n")
	call, ok := soleExpr(t, mod).(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 1)

	gen, ok := call.Args[0].(*ast.GeneratorExp)
	require.True(t, ok, "sole call argument should parse as a GeneratorExp, got %T", call.Args[0])
	require.Len(t, gen.Generators, 1)
}

func TestPowerIsRightAssociative(t *testing.T) {
	mod := parseModule(t, "2 ** 3 ** 2\n")
	top, ok := soleExpr(t, mod).(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, token.DOUBLESTAR, top.Op)

	_, leftIsBinOp := top.Left.(*ast.BinaryOp)
	require.False(t, leftIsBinOp, "left side of ** should be the base, not nested")

	right, ok := top.Right.(*ast.BinaryOp)
	require.True(t, ok, "right side should be the nested 3 ** 2")
	require.Equal(t, token.DOUBLESTAR, right.Op)
}

func TestIsNotAndNotIn(t *testing.T) {
	mod := parseModule(t, "a is not b\n")
	cmp, ok := soleExpr(t, mod).(*ast.Compare)
	require.True(t, ok)
	require.Len(t, cmp.Comparators, 1)
	require.Equal(t, token.ISNOT, cmp.Comparators[0].Op)

	mod2 := parseModule(t, "a not in b\n")
	cmp2, ok := soleExpr(t, mod2).(*ast.Compare)
	require.True(t, ok)
	require.Len(t, cmp2.Comparators, 1)
	require.Equal(t, token.NOTIN, cmp2.Comparators[0].Op)
}

func TestParenthesizedTupleVsGroup(t *testing.T) {
	// (x) is just x, parenthesized
	mod := parseModule(t, "(x)\n")
	_, isName := soleExpr(t, mod).(*ast.Name)
	require.True(t, isName, "(x) should parse as a bare Name, not a Tuple")

	// (x,) is a one-element tuple
	mod2 := parseModule(t, "(x,)\n")
	tup, ok := soleExpr(t, mod2).(*ast.Tuple)
	require.True(t, ok, "(x,) should parse as a Tuple, got %T", soleExpr(t, mod2))
	require.Len(t, tup.Elements, 1)
}

func TestListVsListComprehension(t *testing.T) {
	mod := parseModule(t, "[1, 2, 3]\n")
	list, ok := soleExpr(t, mod).(*ast.List)
	require.True(t, ok)
	require.Len(t, list.Elements, 3)

	mod2 := parseModule(t, "[x for x in y]\n")
	comp, ok := soleExpr(t, mod2).(*ast.ListComp)
	require.True(t, ok, "got %T", soleExpr(t, mod2))
	require.Len(t, comp.Generators, 1)
}

func TestDictVsSetVsComprehension(t *testing.T) {
	mod := parseModule(t, "{1: 2, 3: 4}\n")
	_, ok := soleExpr(t, mod).(*ast.Dict)
	require.True(t, ok)

	mod2 := parseModule(t, "{1, 2, 3}\n")
	_, ok = soleExpr(t, mod2).(*ast.Set)
	require.True(t, ok)

	mod3 := parseModule(t, "{k: v for k, v in pairs}\n")
	_, ok = soleExpr(t, mod3).(*ast.DictComp)
	require.True(t, ok)

	mod4 := parseModule(t, "{x for x in y}\n")
	_, ok = soleExpr(t, mod4).(*ast.SetComp)
	require.True(t, ok)
}

func TestFunctionDefSpanRoundTrips(t *testing.T) {
	src := "def f(x: int) -> int:\n    return x\n"
	mod := parseModule(t, src)
	require.Len(t, mod.Body, 1)
	fn, ok := mod.Body[0].(*ast.FunctionDef)
	require.True(t, ok)
	require.Equal(t, "f", fn.Name)
	require.Equal(t, 0, fn.Span.Start)
	require.Greater(t, fn.Span.End, fn.Span.Start)
	require.LessOrEqual(t, fn.Span.End, len(src))
}

func TestIfElifElse(t *testing.T) {
	src := "if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n"
	mod := parseModule(t, src)
	require.Len(t, mod.Body, 1)
	ifStmt, ok := mod.Body[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Orelse, 1)
	_, elifIsIf := ifStmt.Orelse[0].(*ast.If)
	require.True(t, elifIsIf, "elif should parse as a nested If in Orelse")
}

func TestAssignVsAugAssignVsAnnAssign(t *testing.T) {
	mod := parseModule(t, "x = 1\n")
	_, ok := mod.Body[0].(*ast.Assign)
	require.True(t, ok)

	mod2 := parseModule(t, "x += 1\n")
	_, ok = mod2.Body[0].(*ast.AugAssign)
	require.True(t, ok)

	mod3 := parseModule(t, "x: int = 1\n")
	_, ok = mod3.Body[0].(*ast.AnnAssign)
	require.True(t, ok)
}
