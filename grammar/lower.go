package grammar

import "fmt"

// rawSymbol is a not-yet-resolved reference to a terminal or non-terminal
// by name, with a capture bit carried through from the source grammar
// expression.
type rawSymbol struct {
	Terminal bool
	Name     string
	Captured bool
}

// rawProduction is a not-yet-resolved production: a left-hand-side name
// and an ordered right-hand side of rawSymbols. Tag records which
// desugaring rule synthesized it ("" for a production written directly in
// the source grammar), kept for diagnostics.
type rawProduction struct {
	LHS string
	RHS []rawSymbol
	Tag string
}

// synthesizer accumulates the fresh non-terminals and productions that
// lowering star/plus/optional/alternative/group expressions introduces.
type synthesizer struct {
	counter          int
	productions      []rawProduction
	nonterminalOrder []string
	seen             map[string]bool
}

func newSynthesizer() *synthesizer {
	return &synthesizer{seen: map[string]bool{}}
}

func (s *synthesizer) freshName(prefix string) string {
	s.counter++
	return fmt.Sprintf("@%s%d", prefix, s.counter)
}

func (s *synthesizer) addNonterminal(n string) {
	if !s.seen[n] {
		s.seen[n] = true
		s.nonterminalOrder = append(s.nonterminalOrder, n)
	}
}

func (s *synthesizer) addProduction(p rawProduction) {
	s.productions = append(s.productions, p)
	s.addNonterminal(p.LHS)
}

// itemsOf returns the flat item list an alternative or group stands for. A
// single-symbol alternative isn't wrapped at all (see gramParser.sequence),
// so it comes back as a one-element slice; a Sequence or Group node
// already holds its items directly.
func itemsOf(e *Expr) []*Expr {
	if e.Kind == ExprGroup || e.Kind == ExprSequence {
		return e.Items
	}
	return []*Expr{e}
}

// lowerSequence flattens a sequence of grammar-expression items into a
// flat rawSymbol list: a nested group is spliced in place without
// introducing a new non-terminal, while every other construct contributes
// exactly one (possibly synthesized) symbol.
func lowerSequence(items []*Expr, s *synthesizer) []rawSymbol {
	var out []rawSymbol
	for _, it := range items {
		if it.Kind == ExprGroup {
			out = append(out, lowerSequence(it.Items, s)...)
			continue
		}
		out = append(out, lowerSingle(it, s))
	}
	return out
}

// lowerSingle lowers one grammar-expression item to a single rawSymbol,
// synthesizing fresh non-terminals for star/plus/optional/alternative
// constructs per spec.md §4.3.
func lowerSingle(it *Expr, s *synthesizer) rawSymbol {
	switch it.Kind {
	case ExprToken, ExprKeyword:
		return rawSymbol{Terminal: true, Name: it.Text}
	case ExprName:
		return rawSymbol{Terminal: false, Name: it.Text}
	case ExprCapture:
		sym := lowerSingle(it.Inner, s)
		sym.Captured = true
		return sym
	case ExprOptional:
		n := s.freshName("option")
		inner := lowerSingle(it.Inner, s)
		s.addProduction(rawProduction{LHS: n, Tag: "@option"})
		s.addProduction(rawProduction{LHS: n, RHS: []rawSymbol{inner}, Tag: "@option"})
		return rawSymbol{Terminal: false, Name: n}
	case ExprStar:
		return addStar(it.Inner, s)
	case ExprPlus:
		tail := addStar(it.Inner, s)
		head := lowerSingle(it.Inner, s)
		n := s.freshName("plus")
		s.addProduction(rawProduction{LHS: n, RHS: []rawSymbol{head}, Tag: "@prepend"})
		s.addProduction(rawProduction{LHS: n, RHS: []rawSymbol{head, tail}, Tag: "@prepend"})
		return rawSymbol{Terminal: false, Name: n}
	case ExprAlternative:
		n := s.freshName("alt")
		for _, arm := range it.Items {
			rhs := lowerSequence(itemsOf(arm), s)
			s.addProduction(rawProduction{LHS: n, RHS: rhs})
		}
		return rawSymbol{Terminal: false, Name: n}
	case ExprSequence, ExprGroup:
		rhs := lowerSequence(it.Items, s)
		n := s.freshName("seq")
		s.addProduction(rawProduction{LHS: n, RHS: rhs})
		return rawSymbol{Terminal: false, Name: n}
	default:
		panic(fmt.Sprintf("grammar: unhandled expression kind %d", it.Kind))
	}
}

// addStar synthesizes `N -> epsilon | N x` for a starred sub-expression
// and returns a reference to N.
func addStar(inner *Expr, s *synthesizer) rawSymbol {
	n := s.freshName("star")
	x := lowerSingle(inner, s)
	s.addProduction(rawProduction{LHS: n, Tag: "@sequence"})
	s.addProduction(rawProduction{LHS: n, RHS: []rawSymbol{{Terminal: false, Name: n}, x}, Tag: "@sequence"})
	return rawSymbol{Terminal: false, Name: n}
}

// lowerGrammar desugars every rule in g into a flat list of rawProductions
// and the full ordered non-terminal name list (user rules first, in
// source order, then synthesized helpers in creation order).
func lowerGrammar(g *Grammar) ([]rawProduction, []string) {
	s := newSynthesizer()
	for _, r := range g.Rules {
		s.addNonterminal(r.Name)
	}
	var productions []rawProduction
	for _, r := range g.Rules {
		for _, arm := range r.Alternatives {
			rhs := lowerSequence(itemsOf(arm), s)
			productions = append(productions, rawProduction{LHS: r.Name, RHS: rhs})
		}
	}
	productions = append(productions, s.productions...)
	return productions, s.nonterminalOrder
}
