package grammar

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// GeneratorError is returned for every non-recoverable failure: a
// reduce/reduce conflict, a state with no actions, an unknown symbol or
// entry rule, or an entry-point rule with more than one alternative.
type GeneratorError struct {
	Message string
}

func (e *GeneratorError) Error() string { return e.Message }

// Production is a resolved grammar rule: a left-hand-side non-terminal id
// and an ordered right-hand side of combined symbol ids (see symbolSpace).
type Production struct {
	ID      int
	LHS     int
	RHS     []int
	Capture []bool
	Tag     string
}

type item struct {
	production int
	dot        int
}

// symbolSpace assigns a single flat id space to terminals (first) and
// non-terminals (second), the way the source generator interns both
// alongside each other.
type symbolSpace struct {
	terminalNames    []string
	terminalIDs      map[string]int
	nonterminalNames []string
	nonterminalIDs   map[string]int
}

func (sp *symbolSpace) numTerminals() int    { return len(sp.terminalNames) }
func (sp *symbolSpace) numNonterminals() int { return len(sp.nonterminalNames) }
func (sp *symbolSpace) numSymbols() int      { return sp.numTerminals() + sp.numNonterminals() }

func (sp *symbolSpace) terminalSymbol(id int) int    { return id }
func (sp *symbolSpace) nonterminalSymbol(id int) int { return sp.numTerminals() + id }
func (sp *symbolSpace) isTerminal(sym int) bool      { return sym < sp.numTerminals() }
func (sp *symbolSpace) nontermOf(sym int) int        { return sym - sp.numTerminals() }

func (sp *symbolSpace) symbolName(sym int) string {
	if sp.isTerminal(sym) {
		return sp.terminalNames[sym]
	}
	return sp.nonterminalNames[sp.nontermOf(sym)]
}

// Table is the frozen, dense action/goto table a canonical collection
// construction produces, keyed by state id.
type Table struct {
	EntryName    string
	Start        int
	Actions      []map[int]Action // [state][terminalID]
	Gotos        []map[int]int    // [state][nontermID]
	Productions  []*Production
	Terminals    []string
	Nonterminals []string
	Conflicts    []string // recoverable shift/reduce resolutions, for logging
}

type ActionKind int

const (
	Shift ActionKind = iota
	Reduce
	Accept
)

type Action struct {
	Kind   ActionKind
	Target int // state id for Shift, production id for Reduce, unused for Accept
}

// Generator builds canonical LR(1) tables. It owns all interning state for
// one grammar; it is not reusable across independent generation runs.
type Generator struct {
	log hclog.Logger

	sp          *symbolSpace
	productions []*Production
	byLHS       map[int][]int // nonterm id -> production ids

	nullable []bool
	first    []bitset

	itemIDs  map[item]int
	items    []item
	ccIDs    map[string]int
	ccItems  [][]int
	ccLook   [][]bitset
	gotoMemo map[int]int

	conflicts []string
}

// NewGenerator lowers g's rules and builds the production catalogue and
// FIRST/nullable sets, ready for Generate to be called once per
// entry-point rule.
func NewGenerator(g *Grammar, log hclog.Logger) (*Generator, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	raw, nontermOrder := lowerGrammar(g)

	sp := &symbolSpace{
		terminalNames:    append([]string{}, g.Terminals...),
		terminalIDs:      map[string]int{},
		nonterminalNames: nontermOrder,
		nonterminalIDs:   map[string]int{},
	}
	for i, t := range sp.terminalNames {
		sp.terminalIDs[t] = i
	}
	for i, n := range sp.nonterminalNames {
		sp.nonterminalIDs[n] = i
	}

	gen := &Generator{
		log:   log.Named("grammar"),
		sp:    sp,
		byLHS: map[int][]int{},
	}

	for _, rp := range raw {
		lhsID, ok := sp.nonterminalIDs[rp.LHS]
		if !ok {
			return nil, &GeneratorError{Message: fmt.Sprintf("unknown non-terminal %q", rp.LHS)}
		}
		rhs := make([]int, len(rp.RHS))
		capture := make([]bool, len(rp.RHS))
		for i, s := range rp.RHS {
			capture[i] = s.Captured
			if s.Terminal {
				id, ok := sp.terminalIDs[s.Name]
				if !ok {
					return nil, &GeneratorError{Message: fmt.Sprintf("unknown terminal %q", s.Name)}
				}
				rhs[i] = sp.terminalSymbol(id)
			} else {
				id, ok := sp.nonterminalIDs[s.Name]
				if !ok {
					return nil, &GeneratorError{Message: fmt.Sprintf("unknown non-terminal %q", s.Name)}
				}
				rhs[i] = sp.nonterminalSymbol(id)
			}
		}
		p := &Production{ID: len(gen.productions), LHS: lhsID, RHS: rhs, Capture: capture, Tag: rp.Tag}
		gen.productions = append(gen.productions, p)
		gen.byLHS[lhsID] = append(gen.byLHS[lhsID], p.ID)
	}

	gen.computeNullable()
	gen.computeFirstSets()

	return gen, nil
}

func (g *Generator) computeNullable() {
	g.nullable = make([]bool, g.sp.numNonterminals())
	for changed := true; changed; {
		changed = false
		for _, p := range g.productions {
			if g.nullable[p.LHS] {
				continue
			}
			allNullable := true
			for _, sym := range p.RHS {
				if g.sp.isTerminal(sym) || !g.nullable[g.sp.nontermOf(sym)] {
					allNullable = false
					break
				}
			}
			if allNullable {
				g.nullable[p.LHS] = true
				changed = true
			}
		}
	}
}

func (g *Generator) computeFirstSets() {
	n := g.sp.numTerminals()
	g.first = make([]bitset, g.sp.numNonterminals())
	for i := range g.first {
		g.first[i] = newBitset(n)
	}
	for changed := true; changed; {
		changed = false
		for _, p := range g.productions {
			set := g.first[p.LHS]
			for _, sym := range p.RHS {
				if g.sp.isTerminal(sym) {
					if !set.test(sym) {
						set.set(sym)
						changed = true
					}
					break
				}
				nt := g.sp.nontermOf(sym)
				if set.or(g.first[nt]) {
					changed = true
				}
				if !g.nullable[nt] {
					break
				}
			}
		}
	}
}

// firstOfSequence computes FIRST(symbols, followed-by lookahead): the
// terminals that can begin symbols, folding in lookahead if every symbol
// in the sequence is nullable.
func (g *Generator) firstOfSequence(symbols []int, lookahead bitset) bitset {
	result := newBitset(g.sp.numTerminals())
	allNullable := true
	for _, sym := range symbols {
		if g.sp.isTerminal(sym) {
			result.set(sym)
			allNullable = false
			break
		}
		nt := g.sp.nontermOf(sym)
		result.or(g.first[nt])
		if !g.nullable[nt] {
			allNullable = false
			break
		}
	}
	if allNullable {
		result.or(lookahead)
	}
	return result
}

func (g *Generator) internItem(it item) int {
	if g.itemIDs == nil {
		g.itemIDs = map[item]int{}
	}
	if id, ok := g.itemIDs[it]; ok {
		return id
	}
	id := len(g.items)
	g.items = append(g.items, it)
	g.itemIDs[it] = id
	return id
}

func ccSortedKey(itemIDs []int, look []bitset) string {
	// items are sorted by caller before interning; key concatenates item
	// ids and lookahead words so structurally identical collections merge.
	buf := make([]byte, 0, len(itemIDs)*8)
	for _, id := range itemIDs {
		buf = append(buf, byte(id), byte(id>>8), byte(id>>16), byte(id>>24))
	}
	for _, l := range look {
		buf = append(buf, []byte(l.key())...)
	}
	return string(buf)
}

// closure computes the LR(1) closure of a seed set of (item, lookahead)
// pairs: whenever an item has the dot before a non-terminal B, every
// production of B is added with lookahead FIRST(trailing symbols,
// current lookahead), iterating to a fixpoint.
func (g *Generator) closure(seedItems []int, seedLook []bitset) ([]int, []bitset) {
	idx := map[int]int{}
	var items []int
	var look []bitset
	add := func(itID int, lh bitset) (grew bool) {
		if i, ok := idx[itID]; ok {
			return look[i].or(lh)
		}
		idx[itID] = len(items)
		items = append(items, itID)
		look = append(look, lh.clone())
		return true
	}
	for i, itID := range seedItems {
		add(itID, seedLook[i])
	}

	for changed := true; changed; {
		changed = false
		for pos := 0; pos < len(items); pos++ {
			it := g.items[items[pos]]
			p := g.productions[it.production]
			if it.dot >= len(p.RHS) {
				continue
			}
			sym := p.RHS[it.dot]
			if g.sp.isTerminal(sym) {
				continue
			}
			nt := g.sp.nontermOf(sym)
			trailing := append([]int{}, p.RHS[it.dot+1:]...)
			nextLook := g.firstOfSequence(trailing, look[pos])
			for _, prodID := range g.byLHS[nt] {
				newItem := g.internItem(item{production: prodID, dot: 0})
				if add(newItem, nextLook) {
					changed = true
				}
			}
		}
	}
	return items, look
}

func sortItems(items []int, look []bitset) {
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && items[j-1] > items[j] {
			items[j-1], items[j] = items[j], items[j-1]
			look[j-1], look[j] = look[j], look[j-1]
			j--
		}
	}
}

func (g *Generator) internCC(items []int, look []bitset) int {
	sortItems(items, look)
	key := ccSortedKey(items, look)
	if g.ccIDs == nil {
		g.ccIDs = map[string]int{}
	}
	if id, ok := g.ccIDs[key]; ok {
		// merge lookaheads into the existing collection in case this path
		// reaches it with a wider lookahead set than before
		for i, l := range look {
			g.ccLook[id][i].or(l)
		}
		return id
	}
	id := len(g.ccItems)
	g.ccIDs[key] = id
	g.ccItems = append(g.ccItems, items)
	g.ccLook = append(g.ccLook, look)
	return id
}

func (g *Generator) gotoState(ccID int, sym int) int {
	key := ccID*g.sp.numSymbols() + sym
	if g.gotoMemo == nil {
		g.gotoMemo = map[int]int{}
	}
	if id, ok := g.gotoMemo[key]; ok {
		return id
	}
	var seedItems []int
	var seedLook []bitset
	items := g.ccItems[ccID]
	look := g.ccLook[ccID]
	for i, itID := range items {
		it := g.items[itID]
		p := g.productions[it.production]
		if it.dot < len(p.RHS) && p.RHS[it.dot] == sym {
			advanced := g.internItem(item{production: it.production, dot: it.dot + 1})
			seedItems = append(seedItems, advanced)
			seedLook = append(seedLook, look[i])
		}
	}
	if len(seedItems) == 0 {
		g.gotoMemo[key] = -1
		return -1
	}
	closedItems, closedLook := g.closure(seedItems, seedLook)
	id := g.internCC(closedItems, closedLook)
	g.gotoMemo[key] = id
	return id
}

// Generate builds the canonical collection and frozen table for the named
// entry rule. rule must have exactly one alternative — an entry point
// with more than one production is ambiguous about where parsing starts
// and is a fatal error, per spec.md §4.3.
func (g *Generator) Generate(grammar *Grammar, entryName string) (*Table, error) {
	var entryRule *Rule
	for _, r := range grammar.Rules {
		if r.Name == entryName {
			entryRule = r
			break
		}
	}
	if entryRule == nil {
		return nil, &GeneratorError{Message: fmt.Sprintf("unknown entry rule %q", entryName)}
	}
	if len(entryRule.Alternatives) != 1 {
		return nil, &GeneratorError{Message: fmt.Sprintf("entry rule %q must have exactly one alternative", entryName)}
	}

	entryNontermID, ok := g.sp.nonterminalIDs[entryName]
	if !ok {
		return nil, &GeneratorError{Message: fmt.Sprintf("entry rule %q was not lowered", entryName)}
	}
	entryProds := g.byLHS[entryNontermID]
	if len(entryProds) != 1 {
		return nil, &GeneratorError{Message: fmt.Sprintf("entry rule %q must lower to exactly one production", entryName)}
	}
	entryProdID := entryProds[0]

	eofID, ok := g.sp.terminalIDs["EOF"]
	if !ok {
		return nil, &GeneratorError{Message: "terminal vocabulary must include EOF"}
	}
	eofSet := newBitset(g.sp.numTerminals())
	eofSet.set(eofID)

	seedItem := g.internItem(item{production: entryProdID, dot: 0})
	startItems, startLook := g.closure([]int{seedItem}, []bitset{eofSet})
	startCC := g.internCC(startItems, startLook)

	// BFS over every reachable canonical collection, computing goto for
	// every symbol that appears after some item's dot.
	for pos := 0; pos < len(g.ccItems); pos++ {
		symsSeen := map[int]bool{}
		for _, itID := range g.ccItems[pos] {
			it := g.items[itID]
			p := g.productions[it.production]
			if it.dot < len(p.RHS) {
				symsSeen[p.RHS[it.dot]] = true
			}
		}
		for sym := range symsSeen {
			g.gotoState(pos, sym)
		}
	}

	table := &Table{
		EntryName:    entryName,
		Start:        startCC,
		Actions:      make([]map[int]Action, len(g.ccItems)),
		Gotos:        make([]map[int]int, len(g.ccItems)),
		Productions:  g.productions,
		Terminals:    g.sp.terminalNames,
		Nonterminals: g.sp.nonterminalNames,
	}
	for i := range table.Actions {
		table.Actions[i] = map[int]Action{}
		table.Gotos[i] = map[int]int{}
	}

	var merr *multierror.Error

	for ccID := 0; ccID < len(g.ccItems); ccID++ {
		items := g.ccItems[ccID]
		look := g.ccLook[ccID]
		for i, itID := range items {
			it := g.items[itID]
			p := g.productions[it.production]
			if it.dot >= len(p.RHS) {
				// final item: ACCEPT for the entry production on EOF,
				// REDUCE on every terminal in its lookahead set otherwise
				if it.production == entryProdID {
					if err := g.setAction(table, ccID, eofID, Action{Kind: Accept}); err != nil {
						merr = multierror.Append(merr, err)
					}
					continue
				}
				look[i].forEach(func(t int) {
					if err := g.setAction(table, ccID, t, Action{Kind: Reduce, Target: it.production}); err != nil {
						merr = multierror.Append(merr, err)
					}
				})
				continue
			}
			sym := p.RHS[it.dot]
			if g.sp.isTerminal(sym) {
				next := g.gotoState(ccID, sym)
				if next >= 0 {
					if err := g.setAction(table, ccID, sym, Action{Kind: Shift, Target: next}); err != nil {
						merr = multierror.Append(merr, err)
					}
				}
			}
		}
		for nt := 0; nt < g.sp.numNonterminals(); nt++ {
			next := g.gotoState(ccID, g.sp.nonterminalSymbol(nt))
			if next >= 0 {
				table.Gotos[ccID][nt] = next
			}
		}
		if len(table.Actions[ccID]) == 0 {
			merr = multierror.Append(merr, &GeneratorError{Message: fmt.Sprintf("state %d has no actions", ccID)})
		}
	}

	table.Conflicts = g.conflicts
	if merr != nil {
		return nil, merr.ErrorOrNil()
	}
	return table, nil
}

// setAction records an action, applying spec.md §4.3's conflict policy:
// SHIFT wins over an existing REDUCE (logged as a recoverable warning, and
// recorded in table.Conflicts); REDUCE/REDUCE and SHIFT/SHIFT-to-different-
// states are fatal and returned as an error.
func (g *Generator) setAction(table *Table, state, terminal int, action Action) error {
	existing, had := table.Actions[state][terminal]
	if !had {
		table.Actions[state][terminal] = action
		return nil
	}
	if existing == action {
		return nil
	}
	switch {
	case existing.Kind == Reduce && action.Kind == Shift:
		msg := fmt.Sprintf("state %d: shift/reduce conflict on %q resolved in favor of shift", state, table.Terminals[terminal])
		g.conflicts = append(g.conflicts, msg)
		g.log.Debug(msg)
		table.Actions[state][terminal] = action
		return nil
	case existing.Kind == Shift && action.Kind == Reduce:
		msg := fmt.Sprintf("state %d: shift/reduce conflict on %q resolved in favor of shift", state, table.Terminals[terminal])
		g.conflicts = append(g.conflicts, msg)
		g.log.Debug(msg)
		// keep existing shift
		return nil
	default:
		g.log.Error("fatal parser conflict", "state", state, "terminal", table.Terminals[terminal])
		return &GeneratorError{Message: fmt.Sprintf(
			"state %d: reduce/reduce conflict on %q", state, table.Terminals[terminal])}
	}
}
