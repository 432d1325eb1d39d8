package ast

import "testing"

func TestSpanFieldIsPromotedAndSettable(t *testing.T) {
	n := &Name{Identifier: "x"}
	n.Span = Span{Start: 3, End: 4}
	if n.Span.Start != 3 || n.Span.End != 4 {
		t.Fatalf("got %+v", n.Span)
	}
	var _ Node = n // satisfies span() via the embedded base
}

func TestConstantSatisfiesExpressionAndTypeExpression(t *testing.T) {
	var _ Expression = &Constant{Kind: ConstInt, Value: "1"}
	var _ TypeExpression = &Constant{Kind: ConstInt, Value: "1"}
}

func TestBinaryOpIsATypeExpressionOnlyForUnion(t *testing.T) {
	// BinaryOp implements IsTypeExpression unconditionally at the type
	// level; it's the atomizer, not the AST, that rejects anything but `|`
	// in a type context.
	var _ TypeExpression = &BinaryOp{}
}

func TestModuleHoldsStatementsOfMixedConcreteType(t *testing.T) {
	mod := &Module{Body: []Statement{
		&Pass{},
		&ExprStatement{Value: &Name{Identifier: "x"}},
	}}
	if len(mod.Body) != 2 {
		t.Fatalf("got %d statements", len(mod.Body))
	}
	if _, ok := mod.Body[1].(*ExprStatement); !ok {
		t.Fatalf("expected *ExprStatement, got %T", mod.Body[1])
	}
}
