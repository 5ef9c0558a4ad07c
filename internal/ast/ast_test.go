package ast

import (
	"testing"

	"orelang/internal/arena"
	"orelang/internal/source"
)

func TestArenaAllocatedNodesSurviveTypeSwitch(t *testing.T) {
	a := arena.NewArena()
	sp := source.Span{}

	lit := arena.New[LiteralTerm](a)
	*lit = LiteralTerm{Kind: LitInt, Int: 7, S: sp}

	term := arena.New[TermExpr](a)
	*term = TermExpr{Term: lit}

	bin := arena.New[BinaryExpr](a)
	*bin = BinaryExpr{Op: BinAdd, Lhs: term, Rhs: term}

	var got Expr = bin
	switch e := got.(type) {
	case *BinaryExpr:
		inner, ok := e.Lhs.(*TermExpr)
		if !ok {
			t.Fatalf("expected Lhs to be a TermExpr, got %T", e.Lhs)
		}
		litTerm, ok := inner.Term.(*LiteralTerm)
		if !ok || litTerm.Int != 7 {
			t.Fatalf("expected literal term with Int=7, got %+v", inner.Term)
		}
	default:
		t.Fatalf("expected *BinaryExpr, got %T", got)
	}
}

func TestResolvedTypeRoundTrips(t *testing.T) {
	var e Expr = &TermExpr{}
	if e.ResolvedType() != nil {
		t.Fatalf("expected nil resolved type before pass 5")
	}
	ty := &Type{Kind: &BasicType{Kind: I32}}
	e.SetResolvedType(ty)
	if e.ResolvedType() != ty {
		t.Fatalf("expected ResolvedType to return the type just set")
	}
}

func TestSomethingEndsInCall(t *testing.T) {
	plain := &Something{Ident: "x"}
	if plain.EndsInCall() {
		t.Fatalf("bare ident should not end in a call")
	}

	call := &Something{Ident: "f", IsCall: true}
	if !call.EndsInCall() {
		t.Fatalf("ident(args) should end in a call")
	}

	chained := &Something{
		Ident: "obj",
		Chain: []AccessLink{
			{Kind: AccessField, Ident: "field"},
			{Kind: AccessCall, Ident: "method"},
		},
	}
	if !chained.EndsInCall() {
		t.Fatalf("chain ending in .method(...) should end in a call")
	}

	indexed := &Something{
		Ident: "arr",
		Chain: []AccessLink{
			{Kind: AccessCall, Ident: "get"},
			{Kind: AccessIndex, Index: &TermExpr{}},
		},
	}
	if indexed.EndsInCall() {
		t.Fatalf("chain ending in [expr] should not end in a call")
	}
}

func TestBasicKindClassification(t *testing.T) {
	if !I32.IsInteger() || I32.IsUnsigned() {
		t.Fatalf("i32 should be integer, signed")
	}
	if !U32.IsInteger() || !U32.IsUnsigned() {
		t.Fatalf("u32 should be integer, unsigned")
	}
	if !F64.IsFloat() {
		t.Fatalf("f64 should be float")
	}
	if Bool.IsInteger() || Bool.IsFloat() {
		t.Fatalf("bool should be neither integer nor float")
	}
}

func TestTypeIsBasicRespectsPointerDepth(t *testing.T) {
	ty := &Type{Kind: &BasicType{Kind: I32}}
	if !ty.IsBasic(I32) {
		t.Fatalf("expected zero-pointer i32 type to match IsBasic(I32)")
	}
	ptr := &Type{Pointer: 1, Kind: &BasicType{Kind: I32}}
	if ptr.IsBasic(I32) {
		t.Fatalf("*i32 must not match IsBasic(I32)")
	}
}
