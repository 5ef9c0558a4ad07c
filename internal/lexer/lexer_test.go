package lexer

import (
	"testing"

	"orelang/internal/source"
	"orelang/internal/strstore"
)

func lexAll(input string) ([]Token, *strstore.Store) {
	var strs strstore.Store
	file := source.NewFile("<test>", input)
	lx := New(file, &strs)

	var out []Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == InputEnd {
			return out, &strs
		}
	}
}

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestIdentAndKeywords(t *testing.T) {
	toks, _ := lexAll("struct foo i32 self")
	got := kinds(toks)
	want := []Kind{KwStruct, Ident, TyI32, KwSelf, InputEnd}
	if !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestBoolLiteralRewrite(t *testing.T) {
	toks, _ := lexAll("true false")
	if toks[0].Kind != BoolLit || toks[0].Bool != true {
		t.Fatalf("expected BoolLit(true), got %+v", toks[0])
	}
	if toks[1].Kind != BoolLit || toks[1].Bool != false {
		t.Fatalf("expected BoolLit(false), got %+v", toks[1])
	}
}

func TestIntegerAndFloatLiterals(t *testing.T) {
	toks, _ := lexAll("42 3.14 0")
	if toks[0].Kind != IntLit || toks[0].Int != 42 {
		t.Fatalf("token0 = %+v", toks[0])
	}
	if toks[1].Kind != FloatLit || toks[1].Float != 3.14 {
		t.Fatalf("token1 = %+v", toks[1])
	}
	if toks[2].Kind != IntLit || toks[2].Int != 0 {
		t.Fatalf("token2 = %+v", toks[2])
	}
}

func TestIntegerOverflowIsError(t *testing.T) {
	toks, _ := lexAll("99999999999999999999999999")
	if toks[0].Kind != Error || toks[0].Reason != ErrIntegerOverflow {
		t.Fatalf("expected overflowing integer literal to lex as Error/ErrIntegerOverflow, got %+v", toks[0])
	}
}

func TestStringLiteralInternsAndUnescapes(t *testing.T) {
	toks, strs := lexAll(`"hi\tthere"`)
	if toks[0].Kind != StringLit || !toks[0].HasStr {
		t.Fatalf("token0 = %+v", toks[0])
	}
	if got := strs.Get(toks[0].Str); got != "hi\tthere" {
		t.Fatalf("interned string = %q, want %q", got, "hi\tthere")
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	toks, _ := lexAll("\"oops\nnext")
	if toks[0].Kind != Error {
		t.Fatalf("expected unterminated string to lex as Error, got %+v", toks[0])
	}
}

func TestCharLiteralBecomesIntLit(t *testing.T) {
	toks, _ := lexAll(`'a' '\n'`)
	if toks[0].Kind != IntLit || toks[0].Int != uint64('a') {
		t.Fatalf("token0 = %+v", toks[0])
	}
	if toks[1].Kind != IntLit || toks[1].Int != uint64('\n') {
		t.Fatalf("token1 = %+v", toks[1])
	}
}

func TestMaximalMunchOperators(t *testing.T) {
	toks, _ := lexAll("<<= << < <= -> - = ==")
	got := kinds(toks)
	want := []Kind{
		BitshiftLeftEquals, BitshiftLeft, Less, LessEquals,
		Arrow, Minus, Assign, IsEquals, InputEnd,
	}
	if !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLineCommentSkipped(t *testing.T) {
	toks, _ := lexAll("foo // trailing comment\nbar")
	got := kinds(toks)
	want := []Kind{Ident, Ident, InputEnd}
	if !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestNestedBlockComments(t *testing.T) {
	toks, _ := lexAll("a /* outer /* inner */ still-comment */ b")
	got := kinds(toks)
	want := []Kind{Ident, Ident, InputEnd}
	if !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestRingBufferSpansManyRefills(t *testing.T) {
	input := ""
	for i := 0; i < TokenBufferSize*3; i++ {
		input += "x "
	}
	toks, _ := lexAll(input)
	if len(toks) != TokenBufferSize*3+1 {
		t.Fatalf("got %d tokens, want %d", len(toks), TokenBufferSize*3+1)
	}
	for _, tok := range toks[:len(toks)-1] {
		if tok.Kind != Ident {
			t.Fatalf("expected all Ident tokens, got %+v", tok)
		}
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	var strs strstore.Store
	file := source.NewFile("<test>", "one two three")
	lx := New(file, &strs)

	if lx.Peek(0).Lexeme() != "one" {
		t.Fatalf("Peek(0) = %q", lx.Peek(0).Lexeme())
	}
	if lx.Peek(1).Lexeme() != "two" {
		t.Fatalf("Peek(1) = %q", lx.Peek(1).Lexeme())
	}
	// Peeking must not advance the read cursor.
	if lx.Peek(0).Lexeme() != "one" {
		t.Fatalf("Peek(0) after Peek(1) = %q", lx.Peek(0).Lexeme())
	}
	if lx.Next().Lexeme() != "one" {
		t.Fatalf("Next() = %q", lx.Next().Lexeme())
	}
}

func equalKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
