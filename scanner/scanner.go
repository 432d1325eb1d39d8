// Package scanner turns source text into a stream of tokens. It is an
// indentation-sensitive, hand-written lexer: no tokenizer-generator table
// drives it, because its rules (indent stacks, bracket matching, string
// prefixes) don't fit a regular grammar cleanly.
package scanner

import (
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/shadowCow/typethon-go/token"
)

const (
	eof         byte = 0
	tabSize          = 8
	altTabSize       = 1
)

type indentFrame struct {
	spaces    int
	altSpaces int
}

// Scanner produces one token per call to Next. It owns all lexical state:
// the current offset, the pending indent/dedent queue, the indent stack,
// and the bracket-match stack.
type Scanner struct {
	log hclog.Logger

	src []byte
	pos int

	atLineStart  bool
	isNewline    bool
	indentStack  []indentFrame
	pendingToks  []token.Token
	matchStack   []token.Kind
}

// New constructs a Scanner over src. A nil logger is replaced with a null
// logger, matching the constructor-injection convention used throughout
// this module.
func New(src []byte, log hclog.Logger) *Scanner {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Scanner{
		log:         log.Named("scanner"),
		src:         src,
		atLineStart: true,
		indentStack: []indentFrame{{0, 0}},
	}
}

func (s *Scanner) isEOF() bool { return s.pos >= len(s.src) }

func (s *Scanner) charAt(i int) byte {
	if i < 0 || i >= len(s.src) {
		return eof
	}
	return s.src[i]
}

func (s *Scanner) peek(skip int) byte { return s.charAt(s.pos + skip) }

func (s *Scanner) consume(n int) {
	s.pos += n
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
}

func (s *Scanner) consumeWhile(pred func(byte) bool) {
	for !s.isEOF() && pred(s.charAt(s.pos)) {
		s.consume(1)
	}
}

func isWhitespace(c byte) bool  { return c == ' ' || c == '\t' }
func isDigit(c byte) bool       { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool    { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }
func isOctalDigit(c byte) bool  { return c >= '0' && c <= '7' }
func isBinaryDigit(c byte) bool { return c == '0' || c == '1' }
func isIdentStart(c byte) bool {
	return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') || c >= 0x80
}
func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

// Next returns the next token in the stream. Once an EOF token has been
// returned, subsequent calls keep returning EOF.
func (s *Scanner) Next() token.Token {
	if len(s.pendingToks) > 0 {
		t := s.pendingToks[0]
		s.pendingToks = s.pendingToks[1:]
		return t
	}

	if s.atLineStart && len(s.matchStack) == 0 {
		s.scanIndentation()
		s.atLineStart = false
		if len(s.pendingToks) > 0 {
			t := s.pendingToks[0]
			s.pendingToks = s.pendingToks[1:]
			return t
		}
	}
	s.atLineStart = false

	s.consumeWhile(isWhitespace)

	start := s.pos
	if s.isEOF() {
		// close every open indentation level before the final EOF
		for len(s.indentStack) > 1 {
			s.indentStack = s.indentStack[:len(s.indentStack)-1]
			s.pendingToks = append(s.pendingToks, token.Token{Kind: token.DEDENT, Span: token.Span{Start: start, End: start}})
		}
		if len(s.pendingToks) > 0 {
			t := s.pendingToks[0]
			s.pendingToks = s.pendingToks[1:]
			return t
		}
		return s.finish(token.EOF, start)
	}

	c := s.charAt(s.pos)
	switch {
	case c == '#':
		return s.comment(start)
	case c == '\n' || c == '\r':
		return s.newline(start)
	case isIdentStart(c):
		return s.identifierOrString(start)
	case isDigit(c):
		return s.number(start)
	case c == '.' && isDigit(s.peek(1)):
		return s.number(start)
	case c == '\'' || c == '"':
		return s.stringLiteral(start, 0)
	}

	return s.punctuation(start)
}

func (s *Scanner) finish(kind token.Kind, start int) token.Token {
	s.isNewline = kind == token.NEWLINE
	return token.Token{Kind: kind, Span: token.Span{Start: start, End: s.pos}}
}

// scanIndentation implements the dual-weight indent/dedent algorithm: a
// space counts one column in both measures, while a tab advances the
// primary measure to the next multiple of tabSize and the alternate one by
// altTabSize. The two measures are compared independently so a file mixing
// tabs and spaces inconsistently is flagged rather than silently
// misinterpreted.
func (s *Scanner) scanIndentation() {
	lineStart := s.pos
	spaces, altSpaces := 0, 0
	for !s.isEOF() {
		c := s.charAt(s.pos)
		if c == ' ' {
			spaces++
			altSpaces += altTabSize
			s.consume(1)
		} else if c == '\t' {
			spaces += tabSize - (spaces % tabSize)
			altSpaces += altTabSize
			s.consume(1)
		} else {
			break
		}
	}

	// blank lines (comment, bare newline, line continuation) do not affect
	// the indent stack
	c := s.charAt(s.pos)
	if s.isEOF() || c == '\n' || c == '\r' || c == '#' {
		return
	}

	top := s.indentStack[len(s.indentStack)-1]
	switch {
	case spaces == top.spaces:
		if altSpaces != top.altSpaces {
			s.log.Debug("indentation ambiguous but matches at primary weight", "offset", lineStart)
		}
	case spaces > top.spaces:
		inconsistent := altSpaces <= top.altSpaces
		s.indentStack = append(s.indentStack, indentFrame{spaces, altSpaces})
		s.pendingToks = append(s.pendingToks, token.Token{
			Kind:               token.INDENT,
			Span:               token.Span{Start: lineStart, End: s.pos},
			IndentInconsistent: inconsistent,
		})
	default:
		diverges := false
		for len(s.indentStack) > 1 && s.indentStack[len(s.indentStack)-1].spaces > spaces {
			s.indentStack = s.indentStack[:len(s.indentStack)-1]
			newTop := s.indentStack[len(s.indentStack)-1]
			inconsistent := altSpaces >= newTop.altSpaces && newTop.spaces != spaces
			if newTop.spaces < spaces {
				diverges = true
			}
			s.pendingToks = append(s.pendingToks, token.Token{
				Kind:               token.DEDENT,
				Span:               token.Span{Start: lineStart, End: s.pos},
				DedentInconsistent: inconsistent,
				DedentDiverges:     diverges,
			})
		}
	}
}

func (s *Scanner) newline(start int) token.Token {
	s.consume(1)
	if s.charAt(start) == '\r' && s.charAt(s.pos) == '\n' {
		s.consume(1)
	}
	s.atLineStart = true
	if len(s.matchStack) > 0 || s.isNewline {
		// suppressed: fall through to scan the next real token
		return s.Next()
	}
	return s.finish(token.NEWLINE, start)
}

func (s *Scanner) comment(start int) token.Token {
	s.consumeWhile(func(c byte) bool { return c != '\n' && c != '\r' })
	text := string(s.src[start:s.pos])
	if strings.HasPrefix(text, "#[") {
		open := strings.IndexByte(text, '[')
		close := strings.IndexByte(text, ']')
		if open >= 0 && close > open {
			content := text[open+1 : close]
			return token.Token{
				Kind:             token.DIRECTIVE,
				Span:             token.Span{Start: start, End: s.pos},
				DirectiveContent: content,
			}
		}
	}
	return s.Next()
}

// identifierOrString scans an identifier; if it is immediately followed by
// a quote character, its letters are reinterpreted as a string-prefix
// (r/b/f), falling back to a plain identifier if any letter is not a valid
// prefix character.
func (s *Scanner) identifierOrString(start int) token.Token {
	s.consumeWhile(isIdentChar)
	word := string(s.src[start:s.pos])

	if c := s.charAt(s.pos); c == '\'' || c == '"' {
		var flags token.StringFlags
		seen := map[byte]bool{}
		valid := true
		for _, ch := range []byte(word) {
			switch ch | 0x20 {
			case 'r':
				if seen['r'] {
					flags |= token.DuplicatePrefix
				}
				seen['r'] = true
				flags |= token.Raw
			case 'b':
				if seen['b'] {
					flags |= token.DuplicatePrefix
				}
				seen['b'] = true
				flags |= token.Bytes
			case 'f':
				if seen['f'] {
					flags |= token.DuplicatePrefix
				}
				seen['f'] = true
				flags |= token.FormatString
			default:
				valid = false
			}
			if !valid {
				break
			}
		}
		if valid {
			return s.stringLiteral(start, flags)
		}
	}

	if kw, ok := token.Keyword(word); ok {
		t := s.finish(kw, start)
		return t
	}
	t := s.finish(token.IDENTIFIER, start)
	t.Identifier = word
	return t
}

// number implements the full numeric-literal grammar: radix prefixes,
// underscore-separated digit runs (flagging doubled or trailing
// underscores), a decimal point, an exponent, and an imaginary suffix.
func (s *Scanner) number(start int) token.Token {
	var flags token.NumberFlags

	if s.charAt(s.pos) == '0' && (s.peek(1)|0x20 == 'x' || s.peek(1)|0x20 == 'o' || s.peek(1)|0x20 == 'b') {
		radixChar := s.peek(1) | 0x20
		s.consume(2)
		digitStart := s.pos
		var pred func(byte) bool
		switch radixChar {
		case 'x':
			flags |= token.Hexadecimal
			pred = isHexDigit
		case 'o':
			flags |= token.Octal
			pred = isOctalDigit
		default:
			flags |= token.Binary
			pred = isBinaryDigit
		}
		s.scanDigitRun(pred, &flags)
		if s.pos == digitStart {
			flags |= token.Empty
		}
		return s.finishNumber(start, flags)
	}

	if s.charAt(s.pos) == '0' && isDigit(s.peek(1)) {
		flags |= token.LeadingZero
	}
	s.scanDigitRun(isDigit, &flags)

	if s.charAt(s.pos) == '.' && isDigit(s.peek(1)) || (s.charAt(s.pos) == '.' && s.pos == start) {
		s.consume(1)
		flags |= token.Float
		s.scanDigitRun(isDigit, &flags)
	}

	if c := s.charAt(s.pos); c|0x20 == 'e' {
		save := s.pos
		s.consume(1)
		if s.charAt(s.pos) == '+' || s.charAt(s.pos) == '-' {
			s.consume(1)
		}
		expDigitsStart := s.pos
		s.scanDigitRun(isDigit, &flags)
		if s.pos == expDigitsStart {
			flags |= token.InvalidExponent
			s.pos = save
		} else {
			flags |= token.Float
		}
	}

	if c := s.charAt(s.pos); c|0x20 == 'j' {
		s.consume(1)
		flags |= token.Imaginary
	}

	return s.finishNumber(start, flags)
}

func (s *Scanner) scanDigitRun(pred func(byte) bool, flags *token.NumberFlags) {
	lastWasUnderscore := false
	for !s.isEOF() {
		c := s.charAt(s.pos)
		if c == '_' {
			if lastWasUnderscore {
				*flags |= token.ConsecutiveUnderscores
			}
			lastWasUnderscore = true
			s.consume(1)
			continue
		}
		if !pred(c) {
			break
		}
		lastWasUnderscore = false
		s.consume(1)
	}
	if lastWasUnderscore {
		*flags |= token.TrailingUnderscore
	}
}

func (s *Scanner) finishNumber(start int, flags token.NumberFlags) token.Token {
	t := s.finish(token.NUMBER, start)
	t.NumberValue = string(s.src[start:s.pos])
	t.NumberFlags = flags
	return t
}

// stringLiteral scans a single- or triple-quoted string starting at the
// current position (the prefix, if any, has already been consumed and its
// flags passed in).
func (s *Scanner) stringLiteral(start int, flags token.StringFlags) token.Token {
	quote := s.charAt(s.pos)
	s.consume(1)
	triple := s.charAt(s.pos) == quote && s.peek(1) == quote
	if triple {
		s.consume(2)
	}

	for {
		if s.isEOF() {
			flags |= token.Unterminated
			break
		}
		c := s.charAt(s.pos)
		if c == '\\' {
			s.consume(2)
			continue
		}
		if !triple && (c == '\n' || c == '\r') {
			flags |= token.Unterminated
			break
		}
		if c == quote {
			if !triple {
				s.consume(1)
				break
			}
			if s.peek(1) == quote && s.peek(2) == quote {
				s.consume(3)
				break
			}
		}
		s.consume(1)
	}

	t := s.finish(token.STRING, start)
	t.StringValue = string(s.src[start:s.pos])
	t.StringFlags = flags
	return t
}

// punctuation resolves operators and brackets by comparing the input
// against every known spelling, taking the longest match found. A bracket
// opener/closer additionally updates the match stack.
func (s *Scanner) punctuation(start int) token.Token {
	best := token.EINVALID
	bestLen := 0
	for kind, spelling := range punctuationSpellings {
		if len(spelling) <= bestLen {
			continue
		}
		if s.pos+len(spelling) > len(s.src) {
			continue
		}
		if string(s.src[s.pos:s.pos+len(spelling)]) == spelling {
			best = kind
			bestLen = len(spelling)
		}
	}

	if best == token.EINVALID {
		s.consumeWhile(func(c byte) bool {
			return !isWhitespace(c) && !isIdentStart(c) && !isDigit(c) && c != '\'' && c != '"' && c != '\n' && c != '\r' && c != '#'
		})
		if s.pos == start {
			s.consume(1)
		}
		return s.finish(token.EINVALID, start)
	}

	s.consume(bestLen)

	if token.IsOpener(best) {
		s.matchStack = append(s.matchStack, best)
	} else if token.IsCloser(best) {
		if len(s.matchStack) == 0 {
			return s.finish(token.EUNMATCHED, start)
		}
		opener := s.matchStack[len(s.matchStack)-1]
		closer, _ := token.Closer(opener)
		if closer != best {
			return s.finish(token.EUNMATCHED, start)
		}
		s.matchStack = s.matchStack[:len(s.matchStack)-1]
	}

	return s.finish(best, start)
}

var punctuationSpellings = buildSpellingTable()

func buildSpellingTable() map[token.Kind]string {
	table := map[token.Kind]string{}
	for _, k := range []token.Kind{
		token.LPAR, token.RPAR, token.LSQB, token.RSQB, token.LBRACE, token.RBRACE,
		token.COLON, token.DOUBLECOLON, token.COMMA, token.SEMI, token.DOT, token.ELLIPSIS,
		token.PLUS, token.PLUSEQUAL, token.MINUS, token.MINEQUAL, token.RARROW,
		token.STAR, token.STAREQUAL, token.DOUBLESTAR, token.DOUBLESTAREQUAL,
		token.SLASH, token.SLASHEQUAL, token.DOUBLESLASH, token.DOUBLESLASHEQUAL,
		token.PERCENT, token.PERCENTEQUAL, token.AT, token.ATEQUAL,
		token.AMPER, token.AMPEREQUAL, token.VBAR, token.VBAREQUAL,
		token.CIRCUMFLEX, token.CIRCUMFLEXEQUAL, token.TILDE,
		token.LSHIFT, token.LSHIFTEQUAL, token.RSHIFT, token.RSHIFTEQUAL,
		token.LESS, token.LESSEQUAL, token.GREATER, token.GREATEREQUAL,
		token.EQUAL, token.EQEQUAL, token.NOTEQUAL, token.TICK,
	} {
		if sp, ok := token.Spelling(k); ok {
			table[k] = sp
		}
	}
	return table
}
