// Package lexer is the byte-level tokenizer: given a source buffer, a string
// store and a Lexer's own line-span sink (the File it reads from), it
// produces Tokens into a fixed-size ring buffer with guaranteed lookahead
// (spec.md §4.1). It never allocates AST nodes and never reports errors
// itself — a malformed lexeme becomes an ERROR token and it is the parser's
// job to surface a diagnostic for it.
package lexer

import (
	"strconv"

	"orelang/internal/source"
	"orelang/internal/strstore"
)

const (
	// TokenBufferSize is the ring's total capacity.
	TokenBufferSize = 64
	// TokenLookahead is the number of valid tokens guaranteed buffered ahead
	// of the read cursor after any call into the Lexer. The parser's deepest
	// lookahead (top-level declaration dispatch) is 3 tokens.
	TokenLookahead = 4
)

// Lexer scans one source File into a ring of Tokens.
type Lexer struct {
	file   *source.File
	strs   *strstore.Store
	cursor int
	buf    [TokenBufferSize]Token
	pos    int
	filled bool
}

func New(file *source.File, strs *strstore.Store) *Lexer {
	lx := &Lexer{file: file, strs: strs}
	file.OpenLine(0)
	lx.fillBuffer()
	return lx
}

// Peek returns the token offset slots ahead of the read cursor without
// consuming it. offset must be < TokenLookahead.
func (lx *Lexer) Peek(offset int) Token {
	return lx.buf[lx.pos+offset]
}

// Next consumes and returns the token at the read cursor, refilling the ring
// once only TokenLookahead tokens remain buffered ahead of the cursor.
func (lx *Lexer) Next() Token {
	t := lx.buf[lx.pos]
	lx.pos++
	if lx.pos >= TokenBufferSize-TokenLookahead {
		lx.fillBuffer()
	}
	return t
}

// fillBuffer refills the ring. On every call after the first, it carries the
// last TokenLookahead still-buffered tokens to the front before lexing fresh
// ones into the rest, so Peek/Next never observe a discontinuity.
func (lx *Lexer) fillBuffer() {
	copyCount := 0
	if lx.filled {
		copyCount = TokenLookahead
		for k := 0; k < copyCount; k++ {
			lx.buf[k] = lx.buf[TokenBufferSize-TokenLookahead+k]
		}
	}
	lx.filled = true

	for k := copyCount; k < TokenBufferSize; k++ {
		lx.skipSpaceAndComments()
		if lx.cursor >= len(lx.file.Input) {
			lx.file.CloseLine(lx.cursor)
			end := source.Span{File: lx.file, Start: lx.cursor, End: lx.cursor}
			for i := k; i < TokenBufferSize; i++ {
				lx.buf[i] = Token{Kind: InputEnd, Span: end}
			}
			lx.pos = 0
			return
		}
		lx.buf[k] = lx.lexToken()
	}
	lx.pos = 0
}

func (lx *Lexer) byteAt(offset int) (byte, bool) {
	i := lx.cursor + offset
	if i >= len(lx.file.Input) {
		return 0, false
	}
	return lx.file.Input[i], true
}

func (lx *Lexer) peekByte() (byte, bool) { return lx.byteAt(0) }

func (lx *Lexer) consume() { lx.cursor++ }

func (lx *Lexer) skipSpaceAndComments() {
	for {
		c, ok := lx.peekByte()
		if !ok {
			return
		}
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			lx.consume()
		case c == '\n':
			lx.file.CloseLine(lx.cursor)
			lx.consume()
			lx.file.OpenLine(lx.cursor)
		case c == '/' && peekIs(lx, 1, '/'):
			lx.consume()
			lx.consume()
			for {
				c, ok := lx.peekByte()
				if !ok || c == '\n' {
					break
				}
				lx.consume()
			}
		case c == '/' && peekIs(lx, 1, '*'):
			lx.skipBlockComment()
		default:
			return
		}
	}
}

func peekIs(lx *Lexer, offset int, want byte) bool {
	c, ok := lx.byteAt(offset)
	return ok && c == want
}

// skipBlockComment consumes a nestable /* ... */ comment, tracking depth so
// "/* /* */ */" returns to code mode exactly once (spec.md §8 boundary
// behavior).
func (lx *Lexer) skipBlockComment() {
	lx.consume() // '/'
	lx.consume() // '*'
	depth := 1
	for depth > 0 {
		c, ok := lx.peekByte()
		if !ok {
			return
		}
		if c == '\n' {
			lx.file.CloseLine(lx.cursor)
			lx.consume()
			lx.file.OpenLine(lx.cursor)
			continue
		}
		if c == '/' && peekIs(lx, 1, '*') {
			lx.consume()
			lx.consume()
			depth++
			continue
		}
		if c == '*' && peekIs(lx, 1, '/') {
			lx.consume()
			lx.consume()
			depth--
			continue
		}
		lx.consume()
	}
}

func (lx *Lexer) lexToken() Token {
	start := lx.cursor
	c, _ := lx.peekByte()

	var tok Token
	switch {
	case c == '\'':
		tok = lx.lexChar()
	case c == '"':
		tok = lx.lexString()
	case isDigit(c):
		tok = lx.lexNumber()
	case isIdentStart(c):
		tok = lx.lexIdentOrKeyword()
	default:
		tok = lx.lexSymbol()
	}
	tok.Span = source.Span{File: lx.file, Start: start, End: lx.cursor}
	return tok
}

func isDigit(c byte) bool       { return c >= '0' && c <= '9' }
func isLetter(c byte) bool      { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentStart(c byte) bool  { return c == '_' || isLetter(c) }
func isIdentMiddle(c byte) bool { return c == '_' || isLetter(c) || isDigit(c) }

var charEscapes = map[byte]byte{
	't':  '\t',
	'r':  '\r',
	'n':  '\n',
	'0':  0,
	'\\': '\\',
	'\'': '\'',
}

func (lx *Lexer) lexChar() Token {
	lx.consume() // opening '
	c, ok := lx.peekByte()
	if !ok {
		return Token{Kind: Error, Reason: ErrInvalidCharLiteral}
	}
	var value byte
	if c == '\\' {
		lx.consume()
		esc, ok := lx.peekByte()
		if !ok {
			return Token{Kind: Error, Reason: ErrInvalidCharLiteral}
		}
		mapped, known := charEscapes[esc]
		if !known {
			return Token{Kind: Error, Reason: ErrInvalidEscape}
		}
		value = mapped
		lx.consume()
	} else if c == '\'' {
		return Token{Kind: Error, Reason: ErrInvalidCharLiteral}
	} else {
		value = c
		lx.consume()
	}
	if closing, ok := lx.peekByte(); !ok || closing != '\'' {
		return Token{Kind: Error, Reason: ErrInvalidCharLiteral}
	}
	lx.consume()
	return Token{Kind: IntLit, Int: uint64(value)}
}

var stringEscapes = map[byte]byte{
	't':  '\t',
	'r':  '\r',
	'n':  '\n',
	'0':  0,
	'\\': '\\',
	'"':  '"',
}

func (lx *Lexer) lexString() Token {
	lx.consume() // opening "
	var sb []byte
	for {
		c, ok := lx.peekByte()
		if !ok || c == '\n' {
			return Token{Kind: Error, Reason: ErrUnterminatedString}
		}
		if c == '"' {
			lx.consume()
			break
		}
		if c == '\\' {
			lx.consume()
			esc, ok := lx.peekByte()
			if !ok {
				return Token{Kind: Error, Reason: ErrUnterminatedString}
			}
			mapped, known := stringEscapes[esc]
			if !known {
				return Token{Kind: Error, Reason: ErrInvalidEscape}
			}
			sb = append(sb, mapped)
			lx.consume()
			continue
		}
		sb = append(sb, c)
		lx.consume()
	}
	h := lx.strs.Intern(string(sb))
	return Token{Kind: StringLit, Str: h, HasStr: true}
}

// lexNumber measures the lexeme length first (spec.md §4.1: "the lexer must
// terminate the lexeme before calling the numeric parser"), switching to
// float mode on exactly one '.'.
func (lx *Lexer) lexNumber() Token {
	start := lx.cursor
	isFloat := false
	offset := 0
	for {
		c, ok := lx.byteAt(offset)
		if !ok {
			break
		}
		if c == '.' && !isFloat {
			isFloat = true
		} else if !isDigit(c) {
			break
		}
		offset++
	}
	lexeme := lx.file.Input[start : start+offset]
	for i := 0; i < offset; i++ {
		lx.consume()
	}

	if isFloat {
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return Token{Kind: Error, Reason: ErrInvalidFloat}
		}
		return Token{Kind: FloatLit, Float: f}
	}

	// Integer literals accumulate into a 64-bit unsigned; 2^64 and beyond
	// overflows and is rejected per spec.md §9's resolved open question
	// (LEX_INTEGER_OVERFLOW).
	var v uint64
	for i := 0; i < len(lexeme); i++ {
		d := uint64(lexeme[i] - '0')
		next := v*10 + d
		if next < v || (next-d)/10 != v {
			return Token{Kind: Error, Reason: ErrIntegerOverflow}
		}
		v = next
	}
	return Token{Kind: IntLit, Int: v}
}

func (lx *Lexer) lexIdentOrKeyword() Token {
	start := lx.cursor
	lx.consume()
	for {
		c, ok := lx.peekByte()
		if !ok || !isIdentMiddle(c) {
			break
		}
		lx.consume()
	}
	ident := lx.file.Input[start:lx.cursor]
	if ident == "true" {
		return Token{Kind: BoolLit, Bool: true}
	}
	if ident == "false" {
		return Token{Kind: BoolLit, Bool: false}
	}
	if k, ok := lookupKeyword(ident); ok {
		return Token{Kind: k}
	}
	return Token{Kind: Ident}
}

// level1 is the maximal-munch base: one byte, one token kind.
var level1 = map[byte]Kind{
	'.': Dot, ':': Colon, ',': Comma, ';': Semicolon,
	'{': BlockStart, '}': BlockEnd,
	'[': BracketStart, ']': BracketEnd,
	'(': ParenStart, ')': ParenEnd,
	'@': At, '=': Assign,
	'+': Plus, '-': Minus, '*': Star, '/': Slash, '%': Percent,
	'&': Amp, '|': Pipe, '^': Caret,
	'<': Less, '>': Greater, '!': Bang, '~': Tilde,
}

// level2 extends a level-1 kind by one more byte.
func level2(prev Kind, c byte) (Kind, bool) {
	switch c {
	case ':':
		if prev == Colon {
			return DoubleColon, true
		}
	case '.':
		if prev == Dot {
			return DoubleDot, true
		}
	case '&':
		if prev == Amp {
			return AmpAmp, true
		}
	case '|':
		if prev == Pipe {
			return PipePipe, true
		}
	case '<':
		if prev == Less {
			return BitshiftLeft, true
		}
	case '>':
		switch prev {
		case Minus:
			return Arrow, true
		case Greater:
			return BitshiftRight, true
		}
	case '=':
		switch prev {
		case Assign:
			return IsEquals, true
		case Plus:
			return PlusEquals, true
		case Minus:
			return MinusEquals, true
		case Star:
			return StarEquals, true
		case Slash:
			return SlashEquals, true
		case Percent:
			return PercentEquals, true
		case Amp:
			return AmpEquals, true
		case Pipe:
			return PipeEquals, true
		case Caret:
			return CaretEquals, true
		case Less:
			return LessEquals, true
		case Greater:
			return GreaterEquals, true
		case Bang:
			return NotEquals, true
		}
	}
	return 0, false
}

// level3 extends a level-2 kind by one more byte. Only <<= and >>= exist.
func level3(prev Kind, c byte) (Kind, bool) {
	if c != '=' {
		return 0, false
	}
	switch prev {
	case BitshiftLeft:
		return BitshiftLeftEquals, true
	case BitshiftRight:
		return BitshiftRightEquals, true
	}
	return 0, false
}

func (lx *Lexer) lexSymbol() Token {
	c, _ := lx.peekByte()
	kind, ok := level1[c]
	lx.consume()
	if !ok {
		return Token{Kind: Error, Reason: ErrUnknownSymbol}
	}

	c2, ok2 := lx.peekByte()
	if !ok2 {
		return Token{Kind: kind}
	}
	kind2, ok2 := level2(kind, c2)
	if !ok2 {
		return Token{Kind: kind}
	}
	lx.consume()

	c3, ok3 := lx.peekByte()
	if !ok3 {
		return Token{Kind: kind2}
	}
	kind3, ok3 := level3(kind2, c3)
	if !ok3 {
		return Token{Kind: kind2}
	}
	lx.consume()
	return Token{Kind: kind3}
}
