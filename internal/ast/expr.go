package ast

import (
	"orelang/internal/source"
	"orelang/internal/strstore"
)

// Expr is the tag every expression variant satisfies (spec.md §3: Term,
// Unary, Binary, Folded).
type Expr interface {
	exprNode()
	Span() source.Span

	// ResolvedType returns the type pass 5 attached to this expression, or
	// nil before that pass runs. Every Expr variant carries its own slot for
	// this rather than a side table, so type-checking never needs a lookup
	// keyed off node identity.
	ResolvedType() *Type
	SetResolvedType(*Type)
}

type exprBase struct {
	S  source.Span
	Ty *Type
}

func (e *exprBase) Span() source.Span      { return e.S }
func (e *exprBase) ResolvedType() *Type    { return e.Ty }
func (e *exprBase) SetResolvedType(t *Type) { e.Ty = t }

type UnaryOp int

const (
	UnaryNeg UnaryOp = iota // -x
	UnaryNot                // !x
	UnaryBitNot             // ~x
	UnaryAddr               // &x
	UnaryDeref              // *x
)

type UnaryExpr struct {
	exprBase
	Op  UnaryOp
	Rhs Expr
}

func (*UnaryExpr) exprNode() {}

type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNotEq
	BinLess
	BinLessEq
	BinGreater
	BinGreaterEq
	BinAnd // &&
	BinOr  // ||
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
)

type BinaryExpr struct {
	exprBase
	Op  BinaryOp
	Lhs Expr
	Rhs Expr
}

func (*BinaryExpr) exprNode() {}

// FoldedExpr is written in place over whatever Expr a Consteval_Expr wrapped
// once pass 4 successfully evaluates it (spec.md §4.3). Idempotence
// (spec.md §8) falls out naturally: a FoldedExpr has no sub-expressions left
// to re-fold.
type FoldedExpr struct {
	exprBase
	Value FoldedValue
}

func (*FoldedExpr) exprNode() {}

// TermExpr wraps any Term as an Expr, the leaf of the Unary/Binary
// recursion.
type TermExpr struct {
	exprBase
	Term Term
}

func (*TermExpr) exprNode() {}

// Term is the tag every term variant satisfies (spec.md §3: Var, Enum,
// Sizeof, Literal, Cast, ProcCall, StructInit, ArrayInit, Something). Var
// and Enum are not distinct parse-time tags here: both are SomethingTerm
// designators whose ResolvedKind pass 5 fills in once it knows whether the
// name refers to a variable or a qualified enum variant — see DESIGN.md.
type Term interface {
	termNode()
	Span() source.Span
}

type LiteralKind int

const (
	LitBool LiteralKind = iota
	LitInt
	LitFloat
	LitString
)

// LiteralTerm is the raw, unfolded literal the parser produces. Integer
// literals default to unsigned per spec.md §9's resolved open question;
// pass 4 may still re-tag the folded result as Int on unary negation.
type LiteralTerm struct {
	Kind  LiteralKind
	Bool  bool
	Int   uint64
	Float float64
	Str   strstore.Handle
	S     source.Span
}

func (*LiteralTerm) termNode()       {}
func (t *LiteralTerm) Span() source.Span { return t.S }

type SizeofTerm struct {
	Type *Type
	S    source.Span
}

func (*SizeofTerm) termNode()       {}
func (t *SizeofTerm) Span() source.Span { return t.S }

type CastTerm struct {
	Type  *Type
	Value Expr
	S     source.Span
}

func (*CastTerm) termNode()       {}
func (t *CastTerm) Span() source.Span { return t.S }

type CallTerm struct {
	Call *ProcCallNode
	S    source.Span
}

func (*CallTerm) termNode()       {}
func (t *CallTerm) Span() source.Span { return t.S }

type StructInitField struct {
	Ident string
	Value Expr
	S     source.Span
}

type StructInitTerm struct {
	Type   *Type
	Fields []StructInitField
	S      source.Span
}

func (*StructInitTerm) termNode()       {}
func (t *StructInitTerm) Span() source.Span { return t.S }

type ArrayInitTerm struct {
	Type  *Type
	Elems []Expr
	S     source.Span
}

func (*ArrayInitTerm) termNode()       {}
func (t *ArrayInitTerm) Span() source.Span { return t.S }

// ResolvedKind records what pass 5 decided a Something designator actually
// names, once resolution has happened.
type ResolvedKind int

const (
	ResolvedNone ResolvedKind = iota
	ResolvedLocal
	ResolvedGlobal
	ResolvedEnumVariant
	ResolvedParam
)

// AccessLinkKind tags one postfix element of an access chain.
type AccessLinkKind int

const (
	AccessField AccessLinkKind = iota // .ident
	AccessCall                        // .ident(args)
	AccessIndex                       // [expr]
)

// AccessLink is one `.ident`, `.ident(...)`, or `[expr]` step applied after
// a Something's first segment (spec.md §3 "Access chain").
type AccessLink struct {
	Kind  AccessLinkKind
	Ident string // AccessField, AccessCall
	Args  []Expr // AccessCall
	Index Expr   // AccessIndex
	S     source.Span

	// Filled by pass 5's access-chain resolution.
	FieldID int
	Ty      *Type
}

// Something is the designator spec.md §4.2 describes: an optional
// `module::module::` prefix, a first segment that is either a bare ident or
// a call `ident(args)`, and a chain of further postfix accesses.
type Something struct {
	ModulePath []string
	Ident      string
	IsCall     bool
	CallArgs   []Expr // populated when IsCall
	Chain      []AccessLink
	S          source.Span

	// Filled by pass 5.
	Resolved ResolvedKind
	Ty       *Type
}

type SomethingTerm struct {
	Something *Something
	S         source.Span
}

func (*SomethingTerm) termNode()       {}
func (t *SomethingTerm) Span() source.Span { return t.S }

// EndsInCall reports whether the last link of the chain (or the first
// segment, if the chain is empty) is itself a call — the rule spec.md §4.2
// uses to decide whether a Something is a value-producing call or a plain
// l-value.
func (s *Something) EndsInCall() bool {
	if len(s.Chain) == 0 {
		return s.IsCall
	}
	return s.Chain[len(s.Chain)-1].Kind == AccessCall
}
