package lexer

import (
	"orelang/internal/source"
	"orelang/internal/strstore"
)

// Kind tags a Token. Keywords, type keywords, punctuation and operators are
// all listed here; INPUT_END is the ring-buffer termination sentinel and
// ERROR is the lexer's only in-band error signal (spec.md §4.1).
type Kind int

const (
	InputEnd Kind = iota
	Error

	Ident
	IntLit
	FloatLit
	BoolLit
	StringLit

	// Keywords
	KwStruct
	KwEnum
	KwImpl
	KwImport
	KwUse
	KwIf
	KwElse
	KwFor
	KwDefer
	KwBreak
	KwReturn
	KwSwitch
	KwContinue
	KwCast
	KwSizeof
	KwSelf

	// Type keywords (≤8 bytes, live in the same keyword table as keywords)
	TyI8
	TyU8
	TyI16
	TyU16
	TyI32
	TyU32
	TyI64
	TyU64
	TyF32
	TyF64
	TyBool
	TyString

	// Punctuation (level 1)
	Dot
	Colon
	Comma
	Semicolon
	BlockStart
	BlockEnd
	BracketStart
	BracketEnd
	ParenStart
	ParenEnd
	At
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Less
	Greater
	Bang
	Tilde

	// Level 2
	DoubleColon
	DoubleDot
	AmpAmp
	PipePipe
	BitshiftLeft
	Arrow
	BitshiftRight
	IsEquals
	PlusEquals
	MinusEquals
	StarEquals
	SlashEquals
	PercentEquals
	AmpEquals
	PipeEquals
	CaretEquals
	LessEquals
	GreaterEquals
	NotEquals

	// Level 3
	BitshiftLeftEquals
	BitshiftRightEquals
)

// ErrorReason distinguishes why a token came back Error, so the parser can
// surface the specific diagnostic kind spec.md §7/§9 names instead of one
// generic "bad token" message — without the lexer itself knowing about the
// diagnostic taxonomy (spec.md §4.1: "never reports errors in-band other
// than emitting ERROR tokens").
type ErrorReason int

const (
	ErrNone ErrorReason = iota
	ErrUnterminatedString
	ErrIntegerOverflow
	ErrInvalidEscape
	ErrInvalidCharLiteral
	ErrUnknownSymbol
	ErrInvalidFloat
)

// Token is a tagged value: its Kind plus, at most, one payload field.
type Token struct {
	Kind   Kind
	Span   source.Span
	Bool   bool
	Int    uint64
	Signed int64
	Float  float64
	Str    strstore.Handle
	HasStr bool
	Reason ErrorReason
}

func (t Token) Is(k Kind) bool { return t.Kind == k }

func (t Token) Lexeme() string { return t.Span.Text() }

// keywords is the fixed table spec.md §4.1 describes: a map over up-to-8-byte
// ASCII identifiers. Idents longer than 8 bytes can never be keywords, so the
// lexer doesn't even probe this table for them.
var keywords = map[string]Kind{
	"struct":   KwStruct,
	"enum":     KwEnum,
	"impl":     KwImpl,
	"import":   KwImport,
	"use":      KwUse,
	"if":       KwIf,
	"else":     KwElse,
	"for":      KwFor,
	"defer":    KwDefer,
	"break":    KwBreak,
	"return":   KwReturn,
	"switch":   KwSwitch,
	"continue": KwContinue,
	"cast":     KwCast,
	"sizeof":   KwSizeof,
	"self":     KwSelf,
	"i8":       TyI8,
	"u8":       TyU8,
	"i16":      TyI16,
	"u16":      TyU16,
	"i32":      TyI32,
	"u32":      TyU32,
	"i64":      TyI64,
	"u64":      TyU64,
	"f32":      TyF32,
	"f64":      TyF64,
	"bool":     TyBool,
	"string":   TyString,
}

func lookupKeyword(ident string) (Kind, bool) {
	if len(ident) > 8 {
		return 0, false
	}
	k, ok := keywords[ident]
	return k, ok
}
