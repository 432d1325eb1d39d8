package impl

import (
	"testing"

	"github.com/shadowCow/typethon-go/atom"
)

func intLit(v int64) *atom.Atom {
	return &atom.Atom{Kind: atom.INTEGER, IntHasValue: true, IntValue: v}
}

func floatLit(v float64) *atom.Atom {
	return &atom.Atom{Kind: atom.FLOAT, FloatHasValue: true, FloatValue: v}
}

func callDunder(t *testing.T, r *Registry, kind atom.Kind, name string, args ...*atom.Atom) *atom.Atom {
	t.Helper()
	i := r.Get(kind)
	if i == nil {
		t.Fatalf("no Impl registered for kind %v", kind)
	}
	fn, ok := i.GetAttribute(name)
	if !ok {
		t.Fatalf("no attribute %q on kind %v", name, kind)
	}
	return fn.Builtin(args, nil)
}

func TestIntegerAddFoldsConcreteValues(t *testing.T) {
	r := NewRegistry()
	result := callDunder(t, r, atom.INTEGER, "__add__", intLit(1), intLit(2))
	if result.Kind != atom.INTEGER || !result.IntHasValue || result.IntValue != 3 {
		t.Fatalf("got %+v", result)
	}
	if result.Flags&atom.FlagImplicit == 0 {
		t.Fatal("a folded arithmetic result should carry FlagImplicit")
	}
}

func TestIntegerAddWidensToFloatForFloatOperand(t *testing.T) {
	r := NewRegistry()
	result := callDunder(t, r, atom.INTEGER, "__add__", intLit(1), floatLit(2.0))
	if result.Kind != atom.FLOAT || !result.FloatHasValue || result.FloatValue != 3.0 {
		t.Fatalf("1 + 2.0 should widen to FLOAT(3.0), got %+v", result)
	}
}

func TestIntegerAddRejectsIncompatibleOperand(t *testing.T) {
	r := NewRegistry()
	result := callDunder(t, r, atom.INTEGER, "__add__", intLit(1), atom.STRING_)
	if result.Kind != atom.UNKNOWN {
		t.Fatalf("int.__add__(str) should return UNKNOWN so the caller falls back to the reflected dunder/type error, got %+v", result)
	}
}

func TestIntegerBitwiseOpsStayIntegerOnly(t *testing.T) {
	r := NewRegistry()
	result := callDunder(t, r, atom.INTEGER, "__and__", intLit(1), floatLit(1.0))
	if result.Kind != atom.UNKNOWN {
		t.Fatalf("bitwise ops should not widen to float, got %+v", result)
	}
	ok := callDunder(t, r, atom.INTEGER, "__and__", intLit(6), intLit(3))
	if !ok.IntHasValue || ok.IntValue != 2 {
		t.Fatalf("6 & 3 should be 2, got %+v", ok)
	}
}

func TestFloatAddAcceptsIntOperandSymmetrically(t *testing.T) {
	r := NewRegistry()
	result := callDunder(t, r, atom.FLOAT, "__add__", floatLit(2.0), intLit(1))
	if result.Kind != atom.FLOAT || !result.FloatHasValue || result.FloatValue != 3.0 {
		t.Fatalf("2.0 + 1 should be FLOAT(3.0), got %+v", result)
	}
}

func TestFloatTrueDivByZeroIsBareNotPanic(t *testing.T) {
	r := NewRegistry()
	result := callDunder(t, r, atom.FLOAT, "__truediv__", floatLit(1.0), floatLit(0.0))
	if result.FloatHasValue {
		t.Fatalf("division by zero should widen to a valueless FLOAT, got %+v", result)
	}
}

func TestBindMethodBindsNonNoneInstance(t *testing.T) {
	fn := &atom.Atom{Kind: atom.FUNCTION, FuncName: "f"}
	instance := intLit(1)
	bound := BindMethod(fn, instance)
	if bound.Kind != atom.METHOD || bound.MethodInstance != instance || bound.MethodFunction != fn {
		t.Fatalf("got %+v", bound)
	}
}

func TestBindMethodLeavesNoneInstanceUnbound(t *testing.T) {
	fn := &atom.Atom{Kind: atom.FUNCTION, FuncName: "f"}
	bound := BindMethod(fn, atom.NONE_)
	if bound != fn {
		t.Fatal("binding to NONE (a type-level access) should return the function bare")
	}
}

func TestCallReportsMissingRequiredArgument(t *testing.T) {
	fn := &atom.Atom{
		Kind:        atom.FUNCTION,
		FuncName:    "f",
		FuncReturns: atom.INTEGER_,
		FuncParams:  []atom.FunctionParameter{param("x", posOnly, nil)},
	}
	result := Call(fn, nil, nil)
	// atom.Union treats UNKNOWN as absorbing, so unioning the declared
	// return type with a missing-argument error (itself an UNKNOWN atom)
	// collapses straight to the error, not a 2-member union.
	if !result.HasError() {
		t.Fatalf("expected the missing-argument error to surface, got %+v", result)
	}
	if result.ErrorCategory != atom.TypeError {
		t.Fatalf("got category %v", result.ErrorCategory)
	}
}

func TestCallInvokesBuiltinWhenFullySatisfied(t *testing.T) {
	r := NewRegistry()
	intImpl := r.Get(atom.INTEGER)
	addFn, _ := intImpl.GetAttribute("__add__")
	result := Call(addFn, []*atom.Atom{intLit(4), intLit(5)}, nil)
	if !result.IntHasValue || result.IntValue != 9 {
		t.Fatalf("got %+v", result)
	}
}

func TestCallMethodPrependsBoundInstance(t *testing.T) {
	r := NewRegistry()
	intImpl := r.Get(atom.INTEGER)
	addFn, _ := intImpl.GetAttribute("__add__")
	bound := BindMethod(addFn, intLit(10))
	result := CallMethod(bound, []*atom.Atom{intLit(5)}, nil)
	if !result.IntHasValue || result.IntValue != 15 {
		t.Fatalf("got %+v", result)
	}
}
