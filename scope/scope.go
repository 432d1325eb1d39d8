// Package scope implements the name-resolution graph the atomizer threads
// through a module: a tree of scopes with parent-chain lookup.
package scope

import "github.com/shadowCow/typethon-go/atom"

// Kind identifies what a Scope was opened for.
type Kind int

const (
	Global Kind = iota
	Class
	Function
)

// Symbol is a single name->atom binding.
type Symbol struct {
	Name string
	Atom *atom.Atom
}

// Scope is a mutable symbol table with an immutable parent pointer. Scopes
// are created on entering a definition and discarded on leaving it; the
// atomizer owns their lifetime.
type Scope struct {
	Kind    Kind
	Parent  *Scope
	symbols map[string]*Symbol
}

// NewGlobal builds the root scope, seeded with the fixed set of builtin
// names every module starts with.
func NewGlobal() *Scope {
	s := &Scope{Kind: Global, symbols: map[string]*Symbol{}}
	s.Add("None", atom.NONE_)
	s.Add("Ellipsis", atom.ELLIPSIS_)
	s.Add("type", atom.GetType(atom.TYPE_))
	s.Add("bool", atom.GetType(atom.BOOL_))
	s.Add("str", atom.GetType(atom.STRING_))
	s.Add("int", atom.GetType(atom.INTEGER_))
	s.Add("float", atom.GetType(atom.FLOAT_))
	s.Add("complex", atom.GetType(atom.COMPLEX_))
	s.Add("list", atom.GetType(&atom.Atom{Kind: atom.LIST}))
	s.Add("dict", atom.GetType(&atom.Atom{Kind: atom.DICT}))
	s.Add("set", atom.GetType(&atom.Atom{Kind: atom.SET}))
	s.Add("tuple", atom.GetType(&atom.Atom{Kind: atom.TUPLE}))
	return s
}

// NewChild opens a scope of the given kind with s as its parent.
func (s *Scope) NewChild(kind Kind) *Scope {
	return &Scope{Kind: kind, Parent: s, symbols: map[string]*Symbol{}}
}

func (s *Scope) IsGlobal() bool   { return s.Kind == Global }
func (s *Scope) IsClass() bool    { return s.Kind == Class }
func (s *Scope) IsFunction() bool { return s.Kind == Function }

// Add binds name to atom in this scope, shadowing any parent binding.
func (s *Scope) Add(name string, a *atom.Atom) {
	s.symbols[name] = &Symbol{Name: name, Atom: a}
}

// Get looks up name in this scope, walking to the parent on miss. It
// returns nil if no binding is found anywhere in the chain.
func (s *Scope) Get(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	if s.Parent != nil {
		return s.Parent.Get(name)
	}
	return nil
}
