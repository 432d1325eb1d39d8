// Package bridge converts host Go literal values into atoms. Unlike the
// Python original, it does not introspect Go function signatures via
// reflection to build FunctionAtom schemas: Go's static typing gives no
// runtime signature to introspect, so built-in methods are instead
// registered with an explicit declarative parameter schema in package impl
// (see impl.Schema) rather than bridged from a host callable.
package bridge

import "github.com/shadowCow/typethon-go/atom"

// Literal is the set of host Go values bridge_literal accepts: the
// primitive kinds an atom can carry a concrete value for, plus tuples of
// the same.
type Literal interface{}

// BridgeLiteral bridges a host Go literal value to the concrete atom it
// represents, mirroring bridge_literal's dispatch order (bool before int,
// since bool would otherwise be mistaken for a 0/1 integer in a dynamic
// language's type-punning, kept here for fidelity with the source
// algorithm even though Go's static typing makes the distinction free).
func BridgeLiteral(value Literal) *atom.Atom {
	switch v := value.(type) {
	case bool:
		a := *atom.BOOL_
		a.BoolHasValue = true
		a.BoolValue = v
		a.Flags |= atom.FlagImplicit
		return &a
	case nil:
		return atom.NONE_
	case string:
		a := *atom.STRING_
		a.StringHasValue = true
		a.StringValue = v
		a.Flags |= atom.FlagImplicit
		return &a
	case int64:
		a := *atom.INTEGER_
		a.IntHasValue = true
		a.IntValue = v
		a.Flags |= atom.FlagImplicit
		return &a
	case int:
		return BridgeLiteral(int64(v))
	case float64:
		a := *atom.FLOAT_
		a.FloatHasValue = true
		a.FloatValue = v
		a.Flags |= atom.FlagImplicit
		return &a
	case complex128:
		a := *atom.COMPLEX_
		a.ComplexHasValue = true
		a.ComplexValue = v
		a.Flags |= atom.FlagImplicit
		return &a
	case []Literal:
		values := make([]*atom.Atom, len(v))
		for i, e := range v {
			values[i] = BridgeLiteral(e)
		}
		return &atom.Atom{Kind: atom.TUPLE, TupleValues: values, Flags: atom.FlagImplicit}
	default:
		return atom.UNKNOWN_
	}
}

// BridgeDictType builds the TYPE atom for dict[key, value].
func BridgeDictType(key, value *atom.Atom) *atom.Atom {
	a := &atom.Atom{Kind: atom.DICT, DictKey: key.Instantiate(), DictValue: value.Instantiate()}
	return atom.GetType(a)
}

// BridgeSetType builds the TYPE atom for set[value].
func BridgeSetType(value *atom.Atom) *atom.Atom {
	a := &atom.Atom{Kind: atom.SET, SetValue: value.Instantiate()}
	return atom.GetType(a)
}

// BridgeTupleType builds the TYPE atom for tuple[values...].
func BridgeTupleType(values []*atom.Atom) *atom.Atom {
	instantiated := make([]*atom.Atom, len(values))
	for i, v := range values {
		instantiated[i] = v.Instantiate()
	}
	a := &atom.Atom{Kind: atom.TUPLE, TupleValues: instantiated}
	return atom.GetType(a)
}

// BridgeListType builds the TYPE atom for list[value], optionally sized.
func BridgeListType(value *atom.Atom, size *atom.Atom) *atom.Atom {
	a := &atom.Atom{Kind: atom.LIST, ListValue: value.Instantiate(), ListSize: size}
	return atom.GetType(a)
}
