// Package atom implements the abstract value/type lattice the atomizer
// evaluates AST nodes into.
package atom

import "fmt"

// Kind tags which variant an Atom is.
type Kind int

const (
	UNKNOWN Kind = iota
	TYPE
	UNION
	OBJECT
	BOOL
	NONE
	ELLIPSIS
	STRING
	INTEGER
	FLOAT
	COMPLEX
	DICT
	SET
	TUPLE
	LIST
	SLICE
	FUNCTION
	BUILTINFUNCTION
	METHOD
	CLASS
	MODULE
)

// Flags are orthogonal bits carried alongside Kind.
type Flags uint8

const (
	// FlagType marks an atom as representing the type rather than a value
	// of it.
	FlagType Flags = 1 << iota
	// FlagImplicit marks a literal that should widen to its base type
	// outside of TYPE-mode container construction.
	FlagImplicit
)

// ErrorCategory classifies an atomizer diagnostic.
type ErrorCategory int

const (
	SyntaxError ErrorCategory = iota + 1
	TypeError
)

func (c ErrorCategory) String() string {
	switch c {
	case SyntaxError:
		return "SYNTAX_ERROR"
	case TypeError:
		return "TYPE_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Atom is the abstract value every AST expression evaluates to.
//
// It is implemented as a single concrete struct rather than a Go interface
// hierarchy: nearly every kind needs to carry Flags, and a tagged struct
// with a Kind field lets instantiate/uninstantiate/union operate uniformly
// without a type switch at every call site. Kind-specific payload fields
// are zero unless Kind selects them.
type Atom struct {
	Kind  Kind
	Flags Flags

	// UNKNOWN (may also be the zero value: no error attached)
	ErrorCategory ErrorCategory
	ErrorMessage  string

	// TYPE
	Of *Atom

	// UNION
	Values []*Atom

	// OBJECT
	Value *Atom

	// BOOL
	BoolValue    bool
	BoolHasValue bool

	// STRING
	StringValue    string
	StringHasValue bool

	// INTEGER
	IntValue    int64
	IntHasValue bool

	// FLOAT
	FloatValue    float64
	FloatHasValue bool

	// COMPLEX
	ComplexValue    complex128
	ComplexHasValue bool

	// DICT
	DictKey   *Atom
	DictValue *Atom

	// SET
	SetValue *Atom

	// TUPLE
	TupleValues []*Atom

	// LIST
	ListValue *Atom
	ListSize  *Atom // nil if unsized

	// SLICE
	SliceStart *Atom
	SliceStop  *Atom
	SliceStep  *Atom

	// FUNCTION, BUILTINFUNCTION
	FuncName    string
	FuncParams  []FunctionParameter
	FuncReturns *Atom
	FuncScope   interface{} // *scope.Scope; interface{} to avoid an import cycle
	Builtin     BuiltinFunc // non-nil only for BUILTINFUNCTION

	// METHOD
	MethodInstance *Atom
	MethodFunction *Atom
}

// BuiltinFunc is the native Go function a BUILTINFUNCTION atom can invoke
// during constant folding, once its arguments are all known.
type BuiltinFunc func(args []*Atom, kwargs map[string]*Atom) *Atom

// FunctionParameter describes one formal parameter of a FUNCTION atom.
type FunctionParameter struct {
	Name       string
	Annotation *Atom
	Kind       int // mirrors ast.ParameterKind's values as a plain int
	Default    *Atom // nil if no default
}

func simple(k Kind) *Atom { return &Atom{Kind: k} }

var (
	UNKNOWN_ = simple(UNKNOWN)
	BOOL_    = simple(BOOL)
	NONE_    = simple(NONE)
	ELLIPSIS_ = simple(ELLIPSIS)
	STRING_  = simple(STRING)
	INTEGER_ = simple(INTEGER)
	FLOAT_   = simple(FLOAT)
	COMPLEX_ = simple(COMPLEX)
	TYPE_    = simple(TYPE)
	OBJECT_  = simple(OBJECT)
	SLICE_   = simple(SLICE)
)

// NewError builds an UNKNOWN atom carrying a diagnostic.
func NewError(category ErrorCategory, message string) *Atom {
	return &Atom{Kind: UNKNOWN, ErrorCategory: category, ErrorMessage: message}
}

// NewErrorf is NewError with Printf-style formatting.
func NewErrorf(category ErrorCategory, format string, args ...interface{}) *Atom {
	return NewError(category, fmt.Sprintf(format, args...))
}

// HasError reports whether a is an UNKNOWN atom carrying a diagnostic (as
// opposed to a plain unannotated UNKNOWN).
func (a *Atom) HasError() bool {
	return a.Kind == UNKNOWN && a.ErrorMessage != ""
}

// IsType reports whether a represents a type rather than a value of it.
func (a *Atom) IsType() bool {
	return a.Flags&FlagType != 0 || a.Kind == TYPE
}

// Instantiate returns a copy of a with FlagType cleared: "the type" becomes
// "a value of the type". Copy-on-write: a itself is never mutated.
func (a *Atom) Instantiate() *Atom {
	cp := *a
	cp.Flags &^= FlagType
	return &cp
}

// Uninstantiate returns a copy of a with FlagType set: "a value" becomes
// "the type of it".
func (a *Atom) Uninstantiate() *Atom {
	cp := *a
	cp.Flags |= FlagType
	return &cp
}

// GetType is the type-of operator: it is uninstantiate by another name,
// kept distinct because callers read "get the type of this atom" more
// naturally than "uninstantiate this atom".
func GetType(a *Atom) *Atom { return a.Uninstantiate() }

// RemoveImplicitValue widens an IMPLICIT literal atom to its base type
// (clearing both the concrete value and the flag) and is a no-op on
// anything else. Container literals apply this to their elements so that
// e.g. `[1, 2]` has element type INTEGER, not a union of two singletons.
func (a *Atom) RemoveImplicitValue() *Atom {
	if a.Flags&FlagImplicit == 0 {
		return a
	}
	cp := *a
	cp.Flags &^= FlagImplicit
	cp.BoolHasValue = false
	cp.StringHasValue = false
	cp.IntHasValue = false
	cp.FloatHasValue = false
	cp.ComplexHasValue = false
	return &cp
}

// IsUnknown reports whether a is UNKNOWN, recursively through UNION: a
// union with any UNKNOWN member is itself treated as UNKNOWN so that
// downstream decisions can suppress cascading reports.
func IsUnknown(a *Atom) bool {
	if a.Kind == UNKNOWN {
		return true
	}
	if a.Kind == UNION {
		for _, v := range a.Values {
			if IsUnknown(v) {
				return true
			}
		}
	}
	return false
}

// Union builds a canonical UNION atom: nested unions are flattened,
// duplicates are removed (bool/int/float/str atoms compare by kind, flags
// and value; every other kind by identity), and a
// single-element result collapses to that element. UNKNOWN is absorbing.
func Union(atoms []*Atom) *Atom {
	var flat []*Atom
	var flatten func(*Atom)
	flatten = func(a *Atom) {
		if a.Kind == UNION {
			for _, v := range a.Values {
				flatten(v)
			}
			return
		}
		flat = append(flat, a)
	}
	for _, a := range atoms {
		flatten(a)
	}

	for _, a := range flat {
		if a.Kind == UNKNOWN {
			return a
		}
	}

	var deduped []*Atom
	for _, a := range flat {
		dup := false
		for _, existing := range deduped {
			if sameShallow(existing, a) {
				dup = true
				break
			}
		}
		if !dup {
			deduped = append(deduped, a)
		}
	}

	if len(deduped) == 1 {
		return deduped[0]
	}
	return &Atom{Kind: UNION, Values: deduped}
}

func sameShallow(a, b *Atom) bool {
	if a.Kind != b.Kind || a.Flags != b.Flags {
		return false
	}
	switch a.Kind {
	case BOOL:
		return a.BoolHasValue == b.BoolHasValue && (!a.BoolHasValue || a.BoolValue == b.BoolValue)
	case INTEGER:
		return a.IntHasValue == b.IntHasValue && (!a.IntHasValue || a.IntValue == b.IntValue)
	case FLOAT:
		return a.FloatHasValue == b.FloatHasValue && (!a.FloatHasValue || a.FloatValue == b.FloatValue)
	case STRING:
		return a.StringHasValue == b.StringHasValue && (!a.StringHasValue || a.StringValue == b.StringValue)
	default:
		return a == b
	}
}

// Stringify renders a human-readable name for a, used in diagnostics (e.g.
// `unsupported operand types for +: "int" and "str"`) and in the
// parser-generator-style pretty dump of atom trees.
func (a *Atom) Stringify() string {
	switch a.Kind {
	case UNKNOWN:
		return "unknown"
	case TYPE:
		return "type"
	case UNION:
		s := ""
		for i, v := range a.Values {
			if i > 0 {
				s += " | "
			}
			s += v.Stringify()
		}
		return s
	case OBJECT:
		return "object"
	case BOOL:
		return "bool"
	case NONE:
		return "None"
	case ELLIPSIS:
		return "ellipsis"
	case STRING:
		return "str"
	case INTEGER:
		return "int"
	case FLOAT:
		return "float"
	case COMPLEX:
		return "complex"
	case DICT:
		return "dict"
	case SET:
		return "set"
	case TUPLE:
		return "tuple"
	case LIST:
		return "list"
	case SLICE:
		return "slice"
	case FUNCTION, BUILTINFUNCTION:
		return "function"
	case METHOD:
		return "method"
	case CLASS:
		return "class"
	case MODULE:
		return "module"
	default:
		return "?"
	}
}
