package atom

import "testing"

func TestInstantiateClearsFlagTypeWithoutMutatingSource(t *testing.T) {
	typ := GetType(INTEGER_)
	if !typ.IsType() {
		t.Fatal("GetType result should be a type atom")
	}
	val := typ.Instantiate()
	if val.IsType() {
		t.Fatal("Instantiate should clear FlagType")
	}
	if !typ.IsType() {
		t.Fatal("Instantiate must not mutate its receiver")
	}
}

func TestRemoveImplicitValueWidensLiteral(t *testing.T) {
	lit := &Atom{Kind: INTEGER, IntHasValue: true, IntValue: 7, Flags: FlagImplicit}
	widened := lit.RemoveImplicitValue()
	if widened.IntHasValue {
		t.Fatal("widened atom should no longer carry a concrete value")
	}
	if widened.Flags&FlagImplicit != 0 {
		t.Fatal("widened atom should have FlagImplicit cleared")
	}
	if !lit.IntHasValue {
		t.Fatal("RemoveImplicitValue must not mutate its receiver")
	}
}

func TestRemoveImplicitValueNoopWithoutFlag(t *testing.T) {
	got := INTEGER_.RemoveImplicitValue()
	if got != INTEGER_ {
		t.Fatal("a non-implicit atom should be returned unchanged (same pointer)")
	}
}

func TestIsUnknownRecursesThroughUnion(t *testing.T) {
	u := Union([]*Atom{INTEGER_, NewError(TypeError, "boom")})
	if !IsUnknown(u) {
		t.Fatal("a union containing an UNKNOWN member should itself report unknown")
	}
	if IsUnknown(Union([]*Atom{INTEGER_, STRING_})) {
		t.Fatal("a union of known kinds should not report unknown")
	}
}

func TestUnionDedupesAndCollapsesSingleton(t *testing.T) {
	single := Union([]*Atom{INTEGER_, INTEGER_})
	if single.Kind != INTEGER {
		t.Fatalf("deduped union of identical atoms should collapse to that atom, got kind %v", single.Kind)
	}

	mixed := Union([]*Atom{INTEGER_, STRING_})
	if mixed.Kind != UNION || len(mixed.Values) != 2 {
		t.Fatalf("expected a 2-member union, got %+v", mixed)
	}
}

func TestUnionFlattensNestedUnions(t *testing.T) {
	inner := Union([]*Atom{INTEGER_, STRING_})
	outer := Union([]*Atom{inner, BOOL_})
	if outer.Kind != UNION || len(outer.Values) != 3 {
		t.Fatalf("expected nested unions to flatten into 3 members, got %+v", outer)
	}
}

func TestUnionIsAbsorbingForUnknown(t *testing.T) {
	err := NewError(TypeError, "boom")
	result := Union([]*Atom{INTEGER_, err, STRING_})
	if result != err {
		t.Fatal("UNKNOWN should absorb the whole union, returning itself")
	}
}

func TestStringifyNamesEveryKind(t *testing.T) {
	cases := map[*Atom]string{
		UNKNOWN_: "unknown",
		BOOL_:    "bool",
		NONE_:    "None",
		STRING_:  "str",
		INTEGER_: "int",
		FLOAT_:   "float",
	}
	for a, want := range cases {
		if got := a.Stringify(); got != want {
			t.Fatalf("Stringify(%v) = %q, want %q", a.Kind, got, want)
		}
	}
}

func TestErrorCategoryString(t *testing.T) {
	if SyntaxError.String() != "SYNTAX_ERROR" {
		t.Fatalf("got %q", SyntaxError.String())
	}
	if TypeError.String() != "TYPE_ERROR" {
		t.Fatalf("got %q", TypeError.String())
	}
}

func TestHasErrorOnlyTrueForAnnotatedUnknown(t *testing.T) {
	if UNKNOWN_.HasError() {
		t.Fatal("a bare UNKNOWN with no message should not report HasError")
	}
	if !NewError(SyntaxError, "bad").HasError() {
		t.Fatal("an UNKNOWN built via NewError should report HasError")
	}
}
