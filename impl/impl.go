// Package impl is the per-atom-kind method registry: for each Kind that
// supports attribute access beyond "not found", it holds a table mapping
// attribute names (mostly dunders) to built-in function atoms, plus the
// parameter-binding call protocol shared by every callable atom.
//
// The Python original (typethon/atomize/impls.py) builds this table by
// reflecting over decorated methods at class-definition time. Go has no
// equivalent introspection, so per spec design notes this is instead an
// explicit declarative schema: each entry names its parameters up front
// (see Schema) rather than being inferred from a host function signature.
package impl

import (
	"github.com/shadowCow/typethon-go/atom"
)

// Schema is the declared parameter vector for one built-in method,
// standing in for the reflected host signature the Python original reads
// via inspect.signature.
type Schema struct {
	Name    string
	Params  []atom.FunctionParameter
	Returns *atom.Atom
}

func builtin(name string, returns *atom.Atom, fn atom.BuiltinFunc, params ...atom.FunctionParameter) *atom.Atom {
	return &atom.Atom{
		Kind:        atom.BUILTINFUNCTION,
		FuncName:    name,
		FuncParams:  params,
		FuncReturns: returns,
		Builtin:     fn,
	}
}

func param(name string, kind int, annotation *atom.Atom) atom.FunctionParameter {
	return atom.FunctionParameter{Name: name, Kind: kind, Annotation: annotation}
}

// ParameterKind mirrors ast.ParameterKind's values as plain ints, so impl
// does not import ast.
const (
	posOnly = iota
	arg
	vararg
	kwonly
	varkwarg
)

// Impl is one atom kind's attribute table.
type Impl struct {
	attrs map[string]*atom.Atom
}

func newImpl() *Impl { return &Impl{attrs: map[string]*atom.Atom{}} }

func (i *Impl) define(fn *atom.Atom) { i.attrs[fn.FuncName] = fn }

// GetAttribute returns the raw (unbound) attribute named name, if this
// impl defines one.
func (i *Impl) GetAttribute(name string) (*atom.Atom, bool) {
	a, ok := i.attrs[name]
	return a, ok
}

// Registry maps an atom Kind to its Impl. Unregistered kinds have no
// Impl, matching get_implementation's "return None for unregistered
// kinds".
type Registry struct {
	impls map[atom.Kind]*Impl
}

// NewRegistry builds the registry with every kind that has an
// implementation in this module: TYPE (the `|` union constructor),
// INTEGER and FLOAT (arithmetic, each widening to the other), FUNCTION
// (descriptor binding + call), and METHOD (call with bound instance).
func NewRegistry() *Registry {
	r := &Registry{impls: map[atom.Kind]*Impl{}}
	r.impls[atom.TYPE] = newTypeImpl()
	r.impls[atom.INTEGER] = newIntegerImpl()
	r.impls[atom.FLOAT] = newFloatImpl()
	r.impls[atom.FUNCTION] = newFunctionImpl()
	r.impls[atom.BUILTINFUNCTION] = newFunctionImpl()
	r.impls[atom.METHOD] = newMethodImpl()
	return r
}

// Get returns the Impl for kind, or nil if that kind has none.
func (r *Registry) Get(kind atom.Kind) *Impl {
	return r.impls[kind]
}

// ---- TYPE: union construction ----

func newTypeImpl() *Impl {
	i := newImpl()
	i.define(builtin("__or__", atom.GetType(atom.TYPE_), func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		if len(args) != 2 {
			return atom.NewError(atom.TypeError, "__or__ expects exactly one operand")
		}
		return atom.Union([]*atom.Atom{args[0], args[1]})
	}, param("self", posOnly, nil), param("other", posOnly, nil)))
	return i
}

// ---- INTEGER: arithmetic + bit helpers ----

func newIntegerImpl() *Impl {
	i := newImpl()

	// binaryArith defines a strictly-integer dunder: a non-INTEGER other
	// operand isn't handled here at all (returns UNKNOWN, so dispatchBinary
	// moves on to the reflected dunder or the final type-error), matching
	// that floor division, modulo, power, and the bitwise operators don't
	// widen to float the way +, -, and * do.
	binaryArith := func(name string, apply func(a, b int64) int64) {
		i.define(builtin(name, atom.INTEGER_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
			left, right := args[0], args[1]
			if right.Kind != atom.INTEGER {
				return atom.UNKNOWN_
			}
			if !left.IntHasValue || !right.IntHasValue {
				return atom.INTEGER_
			}
			result := *atom.INTEGER_
			result.IntHasValue = true
			result.IntValue = apply(left.IntValue, right.IntValue)
			result.Flags |= atom.FlagImplicit
			return &result
		}, param("self", posOnly, nil), param("other", posOnly, nil)))
	}

	// binaryArithWidening defines +, -, and * on INTEGER: a FLOAT other
	// operand widens the whole computation to float (mirroring Python's
	// int.__add__ returning NotImplemented so float.__radd__ takes over,
	// collapsed into one step since the widened result is the same either
	// way), any other kind is left to the next candidate dunder.
	binaryArithWidening := func(name string, intApply func(a, b int64) int64, floatApply func(a, b float64) float64) {
		i.define(builtin(name, atom.INTEGER_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
			left, right := args[0], args[1]
			switch right.Kind {
			case atom.INTEGER:
				if !left.IntHasValue || !right.IntHasValue {
					return atom.INTEGER_
				}
				result := *atom.INTEGER_
				result.IntHasValue = true
				result.IntValue = intApply(left.IntValue, right.IntValue)
				result.Flags |= atom.FlagImplicit
				return &result
			case atom.FLOAT:
				leftFloat := float64(left.IntValue)
				if !left.IntHasValue || !right.FloatHasValue {
					return atom.FLOAT_
				}
				result := *atom.FLOAT_
				result.FloatHasValue = true
				result.FloatValue = floatApply(leftFloat, right.FloatValue)
				result.Flags |= atom.FlagImplicit
				return &result
			default:
				return atom.UNKNOWN_
			}
		}, param("self", posOnly, nil), param("other", posOnly, nil)))
	}

	binaryArithWidening("__add__", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	binaryArithWidening("__radd__", func(a, b int64) int64 { return b + a }, func(a, b float64) float64 { return b + a })
	binaryArithWidening("__sub__", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	binaryArithWidening("__rsub__", func(a, b int64) int64 { return b - a }, func(a, b float64) float64 { return b - a })
	binaryArithWidening("__mul__", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	binaryArithWidening("__rmul__", func(a, b int64) int64 { return b * a }, func(a, b float64) float64 { return b * a })
	binaryArith("__mod__", func(a, b int64) int64 {
		if b == 0 {
			return 0
		}
		return a % b
	})
	binaryArith("__floordiv__", func(a, b int64) int64 {
		if b == 0 {
			return 0
		}
		return a / b
	})
	binaryArith("__pow__", func(a, b int64) int64 {
		result := int64(1)
		for n := int64(0); n < b; n++ {
			result *= a
		}
		return result
	})
	binaryArith("__or__", func(a, b int64) int64 { return a | b })
	binaryArith("__xor__", func(a, b int64) int64 { return a ^ b })
	binaryArith("__and__", func(a, b int64) int64 { return a & b })
	binaryArith("__lshift__", func(a, b int64) int64 { return a << uint(b) })
	binaryArith("__rshift__", func(a, b int64) int64 { return a >> uint(b) })

	i.define(builtin("__truediv__", atom.FLOAT_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		left, right := args[0], args[1]
		switch right.Kind {
		case atom.INTEGER:
			if !left.IntHasValue || !right.IntHasValue || right.IntValue == 0 {
				return atom.FLOAT_
			}
			result := *atom.FLOAT_
			result.FloatHasValue = true
			result.FloatValue = float64(left.IntValue) / float64(right.IntValue)
			result.Flags |= atom.FlagImplicit
			return &result
		case atom.FLOAT:
			if !left.IntHasValue || !right.FloatHasValue || right.FloatValue == 0 {
				return atom.FLOAT_
			}
			result := *atom.FLOAT_
			result.FloatHasValue = true
			result.FloatValue = float64(left.IntValue) / right.FloatValue
			result.Flags |= atom.FlagImplicit
			return &result
		default:
			return atom.UNKNOWN_
		}
	}, param("self", posOnly, nil), param("other", posOnly, nil)))

	i.define(builtin("__pos__", atom.INTEGER_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		return args[0]
	}, param("self", posOnly, nil)))
	i.define(builtin("__neg__", atom.INTEGER_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		self := args[0]
		if !self.IntHasValue {
			return atom.INTEGER_
		}
		result := *atom.INTEGER_
		result.IntHasValue = true
		result.IntValue = -self.IntValue
		result.Flags |= atom.FlagImplicit
		return &result
	}, param("self", posOnly, nil)))

	i.define(builtin("bit_length", atom.INTEGER_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		self := args[0]
		if !self.IntHasValue {
			return atom.INTEGER_
		}
		n, length := self.IntValue, 0
		if n < 0 {
			n = -n
		}
		for n > 0 {
			length++
			n >>= 1
		}
		result := *atom.INTEGER_
		result.IntHasValue = true
		result.IntValue = int64(length)
		result.Flags |= atom.FlagImplicit
		return &result
	}, param("self", posOnly, nil)))

	i.define(builtin("bit_count", atom.INTEGER_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		self := args[0]
		if !self.IntHasValue {
			return atom.INTEGER_
		}
		n, count := self.IntValue, 0
		if n < 0 {
			n = -n
		}
		for n > 0 {
			count += int(n & 1)
			n >>= 1
		}
		result := *atom.INTEGER_
		result.IntHasValue = true
		result.IntValue = int64(count)
		result.Flags |= atom.FlagImplicit
		return &result
	}, param("self", posOnly, nil)))

	i.define(builtin("as_integer_ratio", &atom.Atom{Kind: atom.TUPLE, TupleValues: []*atom.Atom{atom.INTEGER_, atom.INTEGER_}},
		func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
			self := args[0]
			if !self.IntHasValue {
				return &atom.Atom{Kind: atom.TUPLE, TupleValues: []*atom.Atom{atom.INTEGER_, atom.INTEGER_}}
			}
			numerator := *atom.INTEGER_
			numerator.IntHasValue = true
			numerator.IntValue = self.IntValue
			denominator := *atom.INTEGER_
			denominator.IntHasValue = true
			denominator.IntValue = 1
			return &atom.Atom{Kind: atom.TUPLE, TupleValues: []*atom.Atom{&numerator, &denominator}, Flags: atom.FlagImplicit}
		}, param("self", posOnly, nil)))

	return i
}

// ---- FLOAT: arithmetic, accepting either a FLOAT or an INTEGER operand ----

func newFloatImpl() *Impl {
	i := newImpl()

	asFloat := func(a *atom.Atom) (float64, bool) {
		switch a.Kind {
		case atom.FLOAT:
			return a.FloatValue, a.FloatHasValue
		case atom.INTEGER:
			return float64(a.IntValue), a.IntHasValue
		default:
			return 0, false
		}
	}

	binaryArith := func(name string, apply func(a, b float64) float64) {
		i.define(builtin(name, atom.FLOAT_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
			left, right := args[0], args[1]
			if right.Kind != atom.FLOAT && right.Kind != atom.INTEGER {
				return atom.UNKNOWN_
			}
			leftVal, leftOK := asFloat(left)
			rightVal, rightOK := asFloat(right)
			if !leftOK || !rightOK {
				return atom.FLOAT_
			}
			result := *atom.FLOAT_
			result.FloatHasValue = true
			result.FloatValue = apply(leftVal, rightVal)
			result.Flags |= atom.FlagImplicit
			return &result
		}, param("self", posOnly, nil), param("other", posOnly, nil)))
	}

	binaryArith("__add__", func(a, b float64) float64 { return a + b })
	binaryArith("__radd__", func(a, b float64) float64 { return b + a })
	binaryArith("__sub__", func(a, b float64) float64 { return a - b })
	binaryArith("__rsub__", func(a, b float64) float64 { return b - a })
	binaryArith("__mul__", func(a, b float64) float64 { return a * b })
	binaryArith("__rmul__", func(a, b float64) float64 { return b * a })
	i.define(builtin("__truediv__", atom.FLOAT_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		left, right := args[0], args[1]
		if right.Kind != atom.FLOAT && right.Kind != atom.INTEGER {
			return atom.UNKNOWN_
		}
		leftVal, leftOK := asFloat(left)
		rightVal, rightOK := asFloat(right)
		if !leftOK || !rightOK || rightVal == 0 {
			return atom.FLOAT_
		}
		result := *atom.FLOAT_
		result.FloatHasValue = true
		result.FloatValue = leftVal / rightVal
		result.Flags |= atom.FlagImplicit
		return &result
	}, param("self", posOnly, nil), param("other", posOnly, nil)))
	i.define(builtin("__rtruediv__", atom.FLOAT_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		left, right := args[0], args[1]
		if right.Kind != atom.FLOAT && right.Kind != atom.INTEGER {
			return atom.UNKNOWN_
		}
		leftVal, leftOK := asFloat(left)
		rightVal, rightOK := asFloat(right)
		if !leftOK || !rightOK || leftVal == 0 {
			return atom.FLOAT_
		}
		result := *atom.FLOAT_
		result.FloatHasValue = true
		result.FloatValue = rightVal / leftVal
		result.Flags |= atom.FlagImplicit
		return &result
	}, param("self", posOnly, nil), param("other", posOnly, nil)))
	i.define(builtin("__neg__", atom.FLOAT_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		self := args[0]
		if !self.FloatHasValue {
			return atom.FLOAT_
		}
		result := *atom.FLOAT_
		result.FloatHasValue = true
		result.FloatValue = -self.FloatValue
		result.Flags |= atom.FlagImplicit
		return &result
	}, param("self", posOnly, nil)))
	i.define(builtin("__pos__", atom.FLOAT_, func(args []*atom.Atom, _ map[string]*atom.Atom) *atom.Atom {
		return args[0]
	}, param("self", posOnly, nil)))

	return i
}

// ---- FUNCTION / BUILTINFUNCTION: descriptor binding + call ----

func newFunctionImpl() *Impl {
	return newImpl()
}

// BindMethod implements the FUNCTION descriptor protocol's `__get__`:
// bound to instance when instance is not NONE, otherwise returned bare.
func BindMethod(fn *atom.Atom, instance *atom.Atom) *atom.Atom {
	if instance == nil || instance.Kind == atom.NONE {
		return fn
	}
	return &atom.Atom{Kind: atom.METHOD, MethodInstance: instance, MethodFunction: fn}
}

// CallError accumulates one missing/overflowing-argument diagnostic; a
// multierror is built from these by the caller.
type CallError struct {
	Message string
}

func (e *CallError) Error() string { return e.Message }

// Call implements the FUNCTION/BUILTINFUNCTION call protocol: positional
// arguments fill POSONLY/ARG parameters in order, overflow spills to
// VARARG if present else errors; keyword arguments fill ARG/KWONLY
// parameters by name, overflow spills to VARKWARG if present else errors;
// any parameter without a default that never got filled is reported
// missing. A BUILTINFUNCTION with no unknown arguments and no errors is
// invoked natively; otherwise the declared return type is returned, unioned
// with any accumulated errors.
func Call(fn *atom.Atom, args []*atom.Atom, kwargs map[string]*atom.Atom) *atom.Atom {
	var errs []*atom.Atom
	filled := map[string]*atom.Atom{}

	var positional, varargParam, kwonlyParams []atom.FunctionParameter
	var varkwargParam *atom.FunctionParameter
	for idx := range fn.FuncParams {
		p := fn.FuncParams[idx]
		switch p.Kind {
		case vararg:
			varargParam = append(varargParam, p)
		case varkwarg:
			varkwargParam = &fn.FuncParams[idx]
		case kwonly:
			kwonlyParams = append(kwonlyParams, p)
		default:
			positional = append(positional, p)
		}
	}

	var extraPositional []*atom.Atom
	ai := 0
	for _, p := range positional {
		if ai < len(args) {
			filled[p.Name] = args[ai]
			ai++
		}
	}
	for ; ai < len(args); ai++ {
		extraPositional = append(extraPositional, args[ai])
	}
	if len(extraPositional) > 0 {
		if len(varargParam) > 0 {
			filled[varargParam[0].Name] = &atom.Atom{Kind: atom.TUPLE, TupleValues: extraPositional}
		} else {
			errs = append(errs, atom.NewErrorf(atom.TypeError, "too many positional arguments for %q", fn.FuncName))
		}
	}

	extraKeyword := map[string]*atom.Atom{}
	for name, v := range kwargs {
		matched := false
		for _, p := range positional {
			if p.Name == name && p.Kind != posOnly {
				filled[name] = v
				matched = true
				break
			}
		}
		if !matched {
			for _, p := range kwonlyParams {
				if p.Name == name {
					filled[name] = v
					matched = true
					break
				}
			}
		}
		if !matched {
			extraKeyword[name] = v
		}
	}
	if len(extraKeyword) > 0 {
		if varkwargParam != nil {
			filled[varkwargParam.Name] = &atom.Atom{Kind: atom.DICT}
		} else {
			for name := range extraKeyword {
				errs = append(errs, atom.NewErrorf(atom.TypeError, "unexpected keyword argument %q for %q", name, fn.FuncName))
			}
		}
	}

	allParams := append(append([]atom.FunctionParameter{}, positional...), kwonlyParams...)
	for _, p := range allParams {
		if _, ok := filled[p.Name]; ok {
			continue
		}
		if p.Default != nil {
			continue
		}
		errs = append(errs, atom.NewErrorf(atom.TypeError, "missing argument for parameter %q of %q", p.Name, fn.FuncName))
	}

	anyUnknown := false
	for _, v := range args {
		if atom.IsUnknown(v) {
			anyUnknown = true
		}
	}
	for _, v := range kwargs {
		if atom.IsUnknown(v) {
			anyUnknown = true
		}
	}

	if len(errs) == 0 && !anyUnknown && fn.Kind == atom.BUILTINFUNCTION && fn.Builtin != nil {
		return fn.Builtin(args, kwargs)
	}

	result := fn.FuncReturns
	if result == nil {
		result = atom.UNKNOWN_
	}
	if len(errs) == 0 {
		return result
	}
	return atom.Union(append([]*atom.Atom{result}, errs...))
}

// ---- METHOD: call with bound instance ----

func newMethodImpl() *Impl {
	return newImpl()
}

// CallMethod prepends the bound instance to args and forwards to Call.
func CallMethod(method *atom.Atom, args []*atom.Atom, kwargs map[string]*atom.Atom) *atom.Atom {
	full := append([]*atom.Atom{method.MethodInstance}, args...)
	return Call(method.MethodFunction, full, kwargs)
}
