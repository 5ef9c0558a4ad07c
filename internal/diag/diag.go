// Package diag is the error reporter: a pure sink that accumulates
// diagnostics tagged with a closed Kind enumeration (spec.md §7) plus
// optional span context, and exposes a single "any error ever" query. It
// never halts the pipeline itself — the checker queries HasErrors between
// passes to decide whether to proceed (spec.md §4.4).
package diag

import (
	"fmt"
	"io"

	"orelang/internal/source"
)

// Kind is the closed diagnostic taxonomy spec.md §7 partitions by pass.
type Kind int

const (
	// I/O
	OsDirCreateFailed Kind = iota
	OsFileOpenFailed
	OsFileReadFailed

	// Lex (spec.md §9's resolved open questions, surfaced by the parser
	// since the lexer itself only emits in-band ERROR tokens)
	LexInvalidToken
	LexIntegerOverflow
	LexUnterminatedString

	// Parse
	ParseExpectedToken

	// Declaration
	SymbolAlreadyDeclared
	ImportPathNotFound
	UseSymbolNotFound
	StructDuplicateField
	EnumZeroVariants
	EnumNonIntegerType
	EnumDuplicateVariant
	ProcDuplicateParam
	StructInfiniteSize

	// Resolution
	ResolveTypeNotFound
	ResolveProcNotFound
	ResolveEnumVariantNotFound
	ResolveStructFieldNotFound
	ResolveArrayWrongContext
	ResolveArrayTypeMismatch
	ResolveArrayNoContext
	ResolveStructWrongContext
	ResolveStructTypeMismatch
	ResolveStructNoContext

	// Main procedure
	MainFileNotFound
	MainProcNotFound
	MainProcExternal
	MainProcVariadic
	MainNotZeroParams
	MainProcNoReturnType
	MainProcWrongReturnType

	// CFG
	CfgNotAllPathsReturn
	CfgUnreachableStatement
	CfgNestedDefer
	CfgReturnInsideDefer
	CfgBreakInsideDefer
	CfgContinueInsideDefer
	CfgBreakOutsideLoop
	CfgContinueOutsideLoop

	// Types/values
	TypeMismatch
	ExprExpectedConstant
	VarLocalNotFound
	VarDeclAlreadyIsGlobal
	VarDeclAlreadyInScope
	ReturnExpectedExpr
	ReturnExpectedNoExpr
	SwitchIncorrectExprType
	SwitchZeroCases

	// Cast/fold
	CastExprNonBasicBasicType
	CastExprBoolBasicType
	CastExprStringBasicType
	CastIntoBoolBasicType
	CastIntoStringBasicType
	CastRedundantFloatCast
	CastRedundantIntegerCast
	ConstevalDependencyCycle
	ConstevalZeroDiv
	ConstevalOverflow
	ConstevalNan
	ConstProcIsNotConst
	ConstVarIsNotGlobal

	// Internal
	CompilerInternal
)

var names = map[Kind]string{
	OsDirCreateFailed:          "OS_DIR_CREATE_FAILED",
	OsFileOpenFailed:           "OS_FILE_OPEN_FAILED",
	OsFileReadFailed:           "OS_FILE_READ_FAILED",
	LexInvalidToken:            "LEX_INVALID_TOKEN",
	LexIntegerOverflow:         "LEX_INTEGER_OVERFLOW",
	LexUnterminatedString:      "LEX_UNTERMINATED_STRING",
	ParseExpectedToken:         "PARSE_EXPECTED_TOKEN",
	SymbolAlreadyDeclared:      "SYMBOL_ALREADY_DECLARED",
	ImportPathNotFound:         "IMPORT_PATH_NOT_FOUND",
	UseSymbolNotFound:          "USE_SYMBOL_NOT_FOUND",
	StructDuplicateField:       "STRUCT_DUPLICATE_FIELD",
	EnumZeroVariants:           "ENUM_ZERO_VARIANTS",
	EnumNonIntegerType:         "ENUM_NON_INTEGER_TYPE",
	EnumDuplicateVariant:       "ENUM_DUPLICATE_VARIANT",
	ProcDuplicateParam:         "PROC_DUPLICATE_PARAM",
	StructInfiniteSize:         "STRUCT_INFINITE_SIZE",
	ResolveTypeNotFound:        "RESOLVE_TYPE_NOT_FOUND",
	ResolveProcNotFound:        "RESOLVE_PROC_NOT_FOUND",
	ResolveEnumVariantNotFound: "RESOLVE_ENUM_VARIANT_NOT_FOUND",
	ResolveStructFieldNotFound: "RESOLVE_STRUCT_FIELD_NOT_FOUND",
	ResolveArrayWrongContext:   "RESOLVE_ARRAY_WRONG_CONTEXT",
	ResolveArrayTypeMismatch:   "RESOLVE_ARRAY_TYPE_MISMATCH",
	ResolveArrayNoContext:      "RESOLVE_ARRAY_NO_CONTEXT",
	ResolveStructWrongContext:  "RESOLVE_STRUCT_WRONG_CONTEXT",
	ResolveStructTypeMismatch:  "RESOLVE_STRUCT_TYPE_MISMATCH",
	ResolveStructNoContext:     "RESOLVE_STRUCT_NO_CONTEXT",
	MainFileNotFound:           "MAIN_FILE_NOT_FOUND",
	MainProcNotFound:           "MAIN_PROC_NOT_FOUND",
	MainProcExternal:           "MAIN_PROC_EXTERNAL",
	MainProcVariadic:           "MAIN_PROC_VARIADIC",
	MainNotZeroParams:          "MAIN_NOT_ZERO_PARAMS",
	MainProcNoReturnType:       "MAIN_PROC_NO_RETURN_TYPE",
	MainProcWrongReturnType:    "MAIN_PROC_WRONG_RETURN_TYPE",
	CfgNotAllPathsReturn:       "CFG_NOT_ALL_PATHS_RETURN",
	CfgUnreachableStatement:    "CFG_UNREACHABLE_STATEMENT",
	CfgNestedDefer:             "CFG_NESTED_DEFER",
	CfgReturnInsideDefer:       "CFG_RETURN_INSIDE_DEFER",
	CfgBreakInsideDefer:        "CFG_BREAK_INSIDE_DEFER",
	CfgContinueInsideDefer:     "CFG_CONTINUE_INSIDE_DEFER",
	CfgBreakOutsideLoop:        "CFG_BREAK_OUTSIDE_LOOP",
	CfgContinueOutsideLoop:     "CFG_CONTINUE_OUTSIDE_LOOP",
	TypeMismatch:               "TYPE_MISMATCH",
	ExprExpectedConstant:       "EXPR_EXPECTED_CONSTANT",
	VarLocalNotFound:           "VAR_LOCAL_NOT_FOUND",
	VarDeclAlreadyIsGlobal:     "VAR_DECL_ALREADY_IS_GLOBAL",
	VarDeclAlreadyInScope:      "VAR_DECL_ALREADY_IN_SCOPE",
	ReturnExpectedExpr:         "RETURN_EXPECTED_EXPR",
	ReturnExpectedNoExpr:       "RETURN_EXPECTED_NO_EXPR",
	SwitchIncorrectExprType:    "SWITCH_INCORRECT_EXPR_TYPE",
	SwitchZeroCases:            "SWITCH_ZERO_CASES",
	CastExprNonBasicBasicType:  "CAST_EXPR_NON_BASIC_BASIC_TYPE",
	CastExprBoolBasicType:      "CAST_EXPR_BOOL_BASIC_TYPE",
	CastExprStringBasicType:    "CAST_EXPR_STRING_BASIC_TYPE",
	CastIntoBoolBasicType:      "CAST_INTO_BOOL_BASIC_TYPE",
	CastIntoStringBasicType:    "CAST_INTO_STRING_BASIC_TYPE",
	CastRedundantFloatCast:     "CAST_REDUNDANT_FLOAT_CAST",
	CastRedundantIntegerCast:   "CAST_REDUNDANT_INTEGER_CAST",
	ConstevalDependencyCycle:   "CONSTEVAL_DEPENDENCY_CYCLE",
	ConstevalZeroDiv:           "CONSTEVAL_ZERO_DIV",
	ConstevalOverflow:          "CONSTEVAL_OVERFLOW",
	ConstevalNan:               "CONSTEVAL_NAN",
	ConstProcIsNotConst:        "CONST_PROC_IS_NOT_CONST",
	ConstVarIsNotGlobal:        "CONST_VAR_IS_NOT_GLOBAL",
	CompilerInternal:           "COMPILER_INTERNAL",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "UNKNOWN_ERROR_KIND"
}

// Item is one recorded diagnostic.
type Item struct {
	Kind    Kind
	Span    source.Span
	Message string
	Hint    string
}

// Bag accumulates diagnostics append-only. It deliberately never reorders
// them: spec.md §5's ordering guarantee makes emission order ("the order in
// which diagnostics are emitted") part of the test suite's contract, so
// sorting by file/line here would be an observable correctness bug, not a
// cosmetic one.
type Bag struct {
	Items    []Item
	anyError bool
}

func (b *Bag) Report(kind Kind, span source.Span, message string) {
	b.Items = append(b.Items, Item{Kind: kind, Span: span, Message: message})
	b.anyError = true
}

func (b *Bag) ReportHint(kind Kind, span source.Span, message, hint string) {
	b.Items = append(b.Items, Item{Kind: kind, Span: span, Message: message, Hint: hint})
	b.anyError = true
}

// HasErrors is the "any error ever" flag the checker's between-pass gate
// queries (spec.md §4.4, §5 "Cancellation and timeouts").
func (b *Bag) HasErrors() bool { return b.anyError }

// Write renders every accumulated diagnostic in emission order. Coloring is
// a cmd/orec concern, not this package's (spec.md §6-E "Logging
// discipline"): this renderer is plain text so it is equally usable from
// tests that assert on diagnostic text.
func Write(w io.Writer, b *Bag) {
	for _, it := range b.Items {
		filename, line, col := it.Span.LocStart()
		if it.Hint != "" {
			fmt.Fprintf(w, "%s:%d:%d: error: [%s] %s (%s)\n", filename, line, col, it.Kind, it.Message, it.Hint)
			continue
		}
		fmt.Fprintf(w, "%s:%d:%d: error: [%s] %s\n", filename, line, col, it.Kind, it.Message)
	}
}
