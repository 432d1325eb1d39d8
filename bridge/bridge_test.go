package bridge

import (
	"testing"

	"github.com/shadowCow/typethon-go/atom"
)

func TestBridgeLiteralBoolBeforeInt(t *testing.T) {
	a := BridgeLiteral(true)
	if a.Kind != atom.BOOL || !a.BoolHasValue || !a.BoolValue {
		t.Fatalf("got %+v", a)
	}
	if a.Flags&atom.FlagImplicit == 0 {
		t.Fatal("bridged literal should carry FlagImplicit")
	}
}

func TestBridgeLiteralNil(t *testing.T) {
	if BridgeLiteral(nil) != atom.NONE_ {
		t.Fatal("nil should bridge to the canonical NONE_ atom")
	}
}

func TestBridgeLiteralString(t *testing.T) {
	a := BridgeLiteral("hi")
	if a.Kind != atom.STRING || !a.StringHasValue || a.StringValue != "hi" {
		t.Fatalf("got %+v", a)
	}
}

func TestBridgeLiteralIntAndPlainInt(t *testing.T) {
	a := BridgeLiteral(int64(42))
	if a.Kind != atom.INTEGER || !a.IntHasValue || a.IntValue != 42 {
		t.Fatalf("got %+v", a)
	}
	b := BridgeLiteral(7)
	if b.Kind != atom.INTEGER || !b.IntHasValue || b.IntValue != 7 {
		t.Fatalf("bare Go int should bridge the same as int64, got %+v", b)
	}
}

func TestBridgeLiteralFloat(t *testing.T) {
	a := BridgeLiteral(3.5)
	if a.Kind != atom.FLOAT || !a.FloatHasValue || a.FloatValue != 3.5 {
		t.Fatalf("got %+v", a)
	}
}

func TestBridgeLiteralTuple(t *testing.T) {
	a := BridgeLiteral([]Literal{int64(1), "x"})
	if a.Kind != atom.TUPLE || len(a.TupleValues) != 2 {
		t.Fatalf("got %+v", a)
	}
	if a.TupleValues[0].Kind != atom.INTEGER || a.TupleValues[1].Kind != atom.STRING {
		t.Fatalf("tuple element kinds wrong: %+v", a.TupleValues)
	}
}

func TestBridgeLiteralUnknownTypeFallsBackToUNKNOWN(t *testing.T) {
	type notALiteral struct{}
	a := BridgeLiteral(notALiteral{})
	if a != atom.UNKNOWN_ {
		t.Fatal("an unrecognized host type should bridge to the canonical UNKNOWN_ atom")
	}
}

func TestBridgeDictSetTupleListTypes(t *testing.T) {
	dt := BridgeDictType(atom.STRING_, atom.INTEGER_)
	if dt.Kind != atom.DICT || !dt.IsType() {
		t.Fatalf("got %+v", dt)
	}
	st := BridgeSetType(atom.INTEGER_)
	if st.Kind != atom.SET || !st.IsType() {
		t.Fatalf("got %+v", st)
	}
	tt := BridgeTupleType([]*atom.Atom{atom.INTEGER_, atom.STRING_})
	if tt.Kind != atom.TUPLE || !tt.IsType() || len(tt.TupleValues) != 2 {
		t.Fatalf("got %+v", tt)
	}
	lt := BridgeListType(atom.INTEGER_, nil)
	if lt.Kind != atom.LIST || !lt.IsType() {
		t.Fatalf("got %+v", lt)
	}
}
