package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// Dump renders t as a human-readable listing of its productions, states,
// and actions, in the spirit of the generator's own debug trace. Kernel
// items are not reconstructed here (the table itself does not retain them
// after Generate returns); every shift, reduce, accept, and goto entry is
// listed per state instead.
func (t *Table) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "entry: %s (state %d)\n", t.EntryName, t.Start)
	fmt.Fprintf(&b, "productions:\n")
	for _, p := range t.Productions {
		fmt.Fprintf(&b, "  %3d: %s -> %s\n", p.ID, t.Nonterminals[p.LHS], t.rhsString(p.RHS))
	}
	fmt.Fprintf(&b, "states: %d\n", len(t.Actions))
	for state := range t.Actions {
		fmt.Fprintf(&b, "state %d:\n", state)
		for _, term := range sortedActionKeys(t.Actions[state]) {
			a := t.Actions[state][term]
			switch a.Kind {
			case Shift:
				fmt.Fprintf(&b, "  on %s: shift %d\n", t.Terminals[term], a.Target)
			case Reduce:
				fmt.Fprintf(&b, "  on %s: reduce %d\n", t.Terminals[term], a.Target)
			case Accept:
				fmt.Fprintf(&b, "  on %s: accept\n", t.Terminals[term])
			}
		}
		for _, nt := range sortedKeys(t.Gotos[state]) {
			fmt.Fprintf(&b, "  goto %s: %d\n", t.Nonterminals[nt], t.Gotos[state][nt])
		}
	}
	if len(t.Conflicts) > 0 {
		fmt.Fprintf(&b, "conflicts (resolved in favor of shift):\n")
		for _, c := range t.Conflicts {
			fmt.Fprintf(&b, "  %s\n", c)
		}
	}
	return b.String()
}

func (t *Table) rhsString(rhs []int) string {
	if len(rhs) == 0 {
		return "\u03b5"
	}
	parts := make([]string, len(rhs))
	n := len(t.Terminals)
	for i, sym := range rhs {
		if sym < n {
			parts[i] = t.Terminals[sym]
		} else {
			parts[i] = t.Nonterminals[sym-n]
		}
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	insertionSort(keys)
	return keys
}

func sortedActionKeys(m map[int]Action) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	insertionSort(keys)
	return keys
}

func insertionSort(xs []int) {
	for i := 1; i < len(xs); i++ {
		j := i
		for j > 0 && xs[j-1] > xs[j] {
			xs[j-1], xs[j] = xs[j], xs[j-1]
			j--
		}
	}
}

// ParseGrammarText parses the `.gram` textual grammar description format:
//
//	[@] name ':' alternative ('|' alternative)*
//
// A rule ends at the first line break that is not followed by a line
// starting with `|` (such a line adds further alternatives to the rule);
// rules are usually separated by blank lines. Each alternative is a
// sequence of items: a quoted string denotes a token literal and an
// all-uppercase bare identifier a keyword terminal; any other bare
// identifier is a non-terminal reference when it matches a rule name and a
// terminal otherwise; `!name` captures an
// item under that name; `(...)` groups a sub-sequence; a trailing `*`,
// `+`, or `?` applies star/plus/optional to the preceding item. A rule
// name prefixed with `@` is the grammar's entry point.
func ParseGrammarText(src string) (*Grammar, string, error) {
	p := &gramParser{src: src}
	g := &Grammar{}
	entry := ""
	ruleNames := map[string]bool{}

	for {
		p.skipBlank()
		if p.atEOF() {
			break
		}
		entryMark := false
		if p.peekByte() == '@' {
			entryMark = true
			p.pos++
		}
		name, err := p.identifier()
		if err != nil {
			return nil, "", err
		}
		p.skipSpaces()
		if err := p.expect(':'); err != nil {
			return nil, "", err
		}
		var alts []*Expr
		for {
			p.skipSpaces()
			alt, err := p.sequence()
			if err != nil {
				return nil, "", err
			}
			alts = append(alts, alt)
			p.skipSpaces()
			if p.peekByte() == '|' {
				p.pos++
				continue
			}
			save := p.pos
			if p.peekByte() == '\r' {
				p.pos++
			}
			if p.peekByte() == '\n' {
				p.pos++
				p.skipSpaces()
				if p.peekByte() == '|' {
					p.pos++
					continue
				}
			}
			p.pos = save
			break
		}
		rule := &Rule{Name: name, Entry: entryMark, Alternatives: alts}
		g.Rules = append(g.Rules, rule)
		ruleNames[name] = true
		if entryMark {
			if entry != "" {
				return nil, "", fmt.Errorf("grammar: multiple entry rules (%q and %q)", entry, name)
			}
			entry = name
		}
	}

	if entry == "" {
		return nil, "", fmt.Errorf("grammar: no entry rule marked with '@'")
	}

	g.Terminals = collectTerminals(g, ruleNames)
	return g, entry, nil
}

func collectTerminals(g *Grammar, ruleNames map[string]bool) []string {
	seen := map[string]bool{"EOF": true}
	terms := []string{"EOF"}
	var walk func(e *Expr)
	walk = func(e *Expr) {
		switch e.Kind {
		case ExprToken, ExprKeyword:
			if !seen[e.Text] {
				seen[e.Text] = true
				terms = append(terms, e.Text)
			}
		case ExprName:
			if !ruleNames[e.Text] && !seen[e.Text] {
				seen[e.Text] = true
				terms = append(terms, e.Text)
			}
		case ExprOptional, ExprStar, ExprPlus, ExprCapture:
			walk(e.Inner)
		case ExprSequence, ExprAlternative, ExprGroup:
			for _, it := range e.Items {
				walk(it)
			}
		}
	}
	for _, r := range g.Rules {
		for _, alt := range r.Alternatives {
			walk(alt)
		}
	}
	return terms
}

type gramParser struct {
	src string
	pos int
}

func (p *gramParser) atEOF() bool    { return p.pos >= len(p.src) }
func (p *gramParser) peekByte() byte {
	if p.atEOF() {
		return 0
	}
	return p.src[p.pos]
}

func (p *gramParser) skipSpaces() {
	for !p.atEOF() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *gramParser) skipBlank() {
	for !p.atEOF() {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		if c == '#' {
			for !p.atEOF() && p.src[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

func (p *gramParser) expect(c byte) error {
	if p.atEOF() || p.src[p.pos] != c {
		return fmt.Errorf("grammar: expected %q at offset %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *gramParser) identifier() (string, error) {
	start := p.pos
	for !p.atEOF() && isGramIdentChar(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("grammar: expected identifier at offset %d", start)
	}
	return p.src[start:p.pos], nil
}

func isGramIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// sequence parses one alternative: a run of items up to '|', newline, a
// group's closing ')', or EOF.
func (p *gramParser) sequence() (*Expr, error) {
	var items []*Expr
	for {
		p.skipSpaces()
		if p.atEOF() {
			break
		}
		c := p.peekByte()
		if c == '|' || c == '\n' || c == '\r' || c == ')' {
			break
		}
		it, err := p.item()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("grammar: empty alternative at offset %d", p.pos)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &Expr{Kind: ExprSequence, Items: items}, nil
}

func (p *gramParser) item() (*Expr, error) {
	var e *Expr
	var err error

	switch p.peekByte() {
	case '"', '\'':
		e, err = p.quoted()
	case '(':
		p.pos++
		inner, ierr := p.alternation()
		if ierr != nil {
			return nil, ierr
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		e = &Expr{Kind: ExprGroup, Items: []*Expr{inner}}
	case '!':
		p.pos++
		name, nerr := p.identifier()
		if nerr != nil {
			return nil, nerr
		}
		e = &Expr{Kind: ExprCapture, Inner: &Expr{Kind: ExprName, Text: name}}
	default:
		name, nerr := p.identifier()
		if nerr != nil {
			return nil, nerr
		}
		if isAllUpper(name) {
			e = &Expr{Kind: ExprKeyword, Text: name}
		} else {
			e = &Expr{Kind: ExprName, Text: name}
		}
	}
	if err != nil {
		return nil, err
	}

	for {
		switch p.peekByte() {
		case '*':
			p.pos++
			e = &Expr{Kind: ExprStar, Inner: e}
		case '+':
			p.pos++
			e = &Expr{Kind: ExprPlus, Inner: e}
		case '?':
			p.pos++
			e = &Expr{Kind: ExprOptional, Inner: e}
		default:
			return e, nil
		}
	}
}

// alternation parses a '|'-separated list of sequences, used inside a
// parenthesized group.
func (p *gramParser) alternation() (*Expr, error) {
	var arms []*Expr
	for {
		p.skipSpaces()
		seq, err := p.sequence()
		if err != nil {
			return nil, err
		}
		arms = append(arms, seq)
		p.skipSpaces()
		if p.peekByte() == '|' {
			p.pos++
			continue
		}
		break
	}
	if len(arms) == 1 {
		return arms[0], nil
	}
	return &Expr{Kind: ExprAlternative, Items: arms}, nil
}

func (p *gramParser) quoted() (*Expr, error) {
	quote := p.src[p.pos]
	p.pos++
	start := p.pos
	for !p.atEOF() && p.src[p.pos] != quote {
		p.pos++
	}
	if p.atEOF() {
		return nil, fmt.Errorf("grammar: unterminated quoted literal at offset %d", start)
	}
	text := p.src[start:p.pos]
	p.pos++
	unquoted, err := strconv.Unquote(string(quote) + text + string(quote))
	if err != nil {
		unquoted = text
	}
	return &Expr{Kind: ExprToken, Text: unquoted}, nil
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}
