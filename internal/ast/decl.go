package ast

import (
	"orelang/internal/source"
	"orelang/internal/strstore"
)

// Module is one source file's syntax: a flat, source-ordered declaration
// list. The checker's pass 1 builds the per-kind symbol tables on top of
// this; ast itself makes no uniqueness promise (spec.md §4.3 pass 1 is what
// establishes invariant I1, not the parser).
type Module struct {
	Name  string
	File  *source.File
	Strs  *strstore.Store
	Decls []TopLevelDecl
}

// TopLevelDecl is the tag every module-level declaration satisfies, so the
// checker can walk Module.Decls once in source order regardless of kind
// (spec.md §5's "source declaration order" ordering guarantee).
type TopLevelDecl interface {
	topLevelNode()
	Span() source.Span
}

type ImportMode int

const (
	ImportBare ImportMode = iota // import path;
	ImportNamed                  // import path::{a,b}  or  import path::name;
	ImportAll                    // import path::*
)

type ImportDecl struct {
	Path  []string
	Mode  ImportMode
	Names []string // populated when Mode == ImportNamed
	S     source.Span

	// Filled by pass 1's import resolution.
	ResolvedModule string
	ImpliedName    string // set when Mode==ImportBare and the last Path segment turned out to name a symbol rather than a module suffix
}

func (*ImportDecl) topLevelNode()          {}
func (d *ImportDecl) Span() source.Span    { return d.S }

// UseDecl aliases a single symbol pulled from an already-imported module:
// `use alias = path::symbol;`
type UseDecl struct {
	Alias      string
	ImportPath []string
	Symbol     string
	S          source.Span
}

func (*UseDecl) topLevelNode()       {}
func (d *UseDecl) Span() source.Span { return d.S }

type FieldDecl struct {
	Ident   string
	Type    *Type
	Default *ConstevalExpr // optional field default, CONST_BIT per spec.md §4.2

	// Filled by pass 3.
	Offset int
	S      source.Span
}

type StructDecl struct {
	Ident  string
	Fields []FieldDecl

	// Filled by pass 1/3.
	StructID int
	Sized    bool
	Size     int
	Align    int

	S source.Span
}

func (*StructDecl) topLevelNode()       {}
func (d *StructDecl) Span() source.Span { return d.S }

type EnumVariant struct {
	Ident string
	Value *ConstevalExpr // the `= expr` initializer; every variant has one

	S source.Span
}

type EnumDecl struct {
	Ident    string
	BaseType *Type // optional `::type`; nil means the checker picks a default integer kind
	Variants []EnumVariant

	EnumID int

	S source.Span
}

func (*EnumDecl) topLevelNode()       {}
func (d *EnumDecl) Span() source.Span { return d.S }

type ParamDecl struct {
	Ident string
	Type  *Type
	S     source.Span
}

// ProcDecl covers both ordinary and external (`@`-bodied) procedures; Body
// is nil exactly when External is true. Receiver is set when the procedure
// was declared inside an ImplDecl ("" otherwise), and its symbol-table
// identity is the qualified name Receiver+"."+Ident rather than bare Ident
// (spec.md §4.2: an impl-block is "a namespaced group of member
// procedures").
type ProcDecl struct {
	Ident    string
	Receiver string
	Params   []ParamDecl
	Ret      *Type // nil if the procedure returns nothing
	External bool
	Variadic bool // trailing `..` in the parameter list; accepts extra arguments beyond Params
	Body     *BlockStmt

	ProcID int

	S source.Span
}

func (*ProcDecl) topLevelNode()       {}
func (d *ProcDecl) Span() source.Span { return d.S }

// QualifiedName is the symbol-table key for this procedure: "recv.ident"
// for impl-block methods, bare "ident" at module scope.
func (d *ProcDecl) QualifiedName() string {
	if d.Receiver == "" {
		return d.Ident
	}
	return d.Receiver + "." + d.Ident
}

// ImplDecl groups a type's member procedures under one namespace
// (spec.md §4.2 "impl begins an impl-block, a namespaced group of member
// procedures"). It contributes no declaration of its own to a module's
// symbol table; each Method does, under its QualifiedName.
type ImplDecl struct {
	TypeName string
	Methods  []*ProcDecl
	S        source.Span
}

func (*ImplDecl) topLevelNode()       {}
func (d *ImplDecl) Span() source.Span { return d.S }

// GlobalDecl is a typed global constant: `Ident :: expr;`. Its Expr is
// always a Consteval_Expr — every global initializer is a compile-time
// constant per spec.md §4.2.
type GlobalDecl struct {
	Ident string
	Expr  *ConstevalExpr

	// Filled once the checker resolves the global's declared type, either
	// from context or from the folded constant's inferred type.
	ResolvedType *Type
	GlobalID     int

	S source.Span
}

func (*GlobalDecl) topLevelNode()       {}
func (d *GlobalDecl) Span() source.Span { return d.S }

// ConstevalState is the folding state machine spec.md §3 and §4.3 pass 4
// describe; the evaluator advances a Consteval_Expr through it.
type ConstevalState int

const (
	NotEvaluated ConstevalState = iota
	Evaluating
	Invalid
	ValidLiteral
	ValidEnum
)

type FoldedKind int

const (
	FoldedBool FoldedKind = iota
	FoldedInt
	FoldedUInt
	FoldedFloat
	FoldedEnum
)

// FoldedValue is the 64-bit payload a successful fold produces, plus the
// basic type inferred from context (spec.md §4.3: "the wrapping Expr is
// rewritten in place to a Folded term carrying the basic type inferred from
// context and the payload").
type FoldedValue struct {
	Kind FoldedKind

	Bool  bool
	Int   int64
	UInt  uint64
	Float float64

	EnumID  int
	Variant int

	Type *Type
}

// ConstevalExpr wraps any Expr that must be a compile-time constant:
// an enum variant value, a global initializer, an array-type size, or a
// struct field default (spec.md §4.2 "Constant-expression marking"). Its
// existence is itself the CONST_BIT signal pass 4 looks for.
type ConstevalExpr struct {
	Expr  Expr
	State ConstevalState
	Value FoldedValue

	S source.Span
}

func (c *ConstevalExpr) Span() source.Span { return c.S }
