// Package parser is the recursive-descent parser: each module yields either
// a fully built *ast.Module (allocated in the module's arena) or one with a
// diagnostic recorded for every unit it couldn't parse (spec.md §4.2). It
// performs no name resolution — that is the checker's job.
package parser

import (
	"orelang/internal/arena"
	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/lexer"
	"orelang/internal/source"
	"orelang/internal/strstore"
)

// lookahead is the constant window spec.md §4.2 requires ("a small constant
// (≥3 tokens) exposed via peek(offset)"); it must not exceed the lexer's own
// TOKEN_LOOKAHEAD guarantee.
const lookahead = 3

type Parser struct {
	file  *source.File
	lex   *lexer.Lexer
	arena *arena.Arena
	strs  *strstore.Store
	diags *diag.Bag

	cur [lookahead]lexer.Token
}

// Parse builds one module's AST from its source file. The returned Module
// is non-nil even when diagnostics were recorded, so the checker can still
// walk whatever declarations parsed successfully (spec.md §4.2's recovery
// policy: "continue scanning for more errors of the same class").
func Parse(name string, file *source.File, diags *diag.Bag) *ast.Module {
	strs := &strstore.Store{}
	p := &Parser{
		file:  file,
		lex:   lexer.New(file, strs),
		arena: arena.NewArena(),
		strs:  strs,
		diags: diags,
	}
	for i := range p.cur {
		p.cur[i] = p.lex.Next()
	}

	mod := &ast.Module{Name: name, File: file, Strs: strs}
	for !p.at(lexer.InputEnd) {
		decl := p.parseTopLevel()
		if decl != nil {
			mod.Decls = append(mod.Decls, decl)
		} else {
			p.advance()
		}
	}
	return mod
}

// --- token cursor -----------------------------------------------------

func (p *Parser) peek(offset int) lexer.Token { return p.cur[offset] }

func (p *Parser) at(k lexer.Kind) bool { return p.cur[0].Kind == k }

func (p *Parser) atN(offset int, k lexer.Kind) bool { return p.cur[offset].Kind == k }

func (p *Parser) advance() lexer.Token {
	t := p.cur[0]
	for i := 0; i < lookahead-1; i++ {
		p.cur[i] = p.cur[i+1]
	}
	if t.Kind != lexer.InputEnd {
		p.cur[lookahead-1] = p.lex.Next()
	} else {
		p.cur[lookahead-1] = t
	}
	return t
}

func (p *Parser) match(k lexer.Kind) (lexer.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

// expect is the single primitive every forced consume goes through
// (spec.md §7: "expected-token-kind with an 'in' context string; emitted by
// a single primitive the parser wraps around every forced consume").
func (p *Parser) expect(k lexer.Kind, context string) lexer.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errorHere(diag.ParseExpectedToken, "expected a different token "+context)
	return p.cur[0]
}

func (p *Parser) errorHere(kind diag.Kind, msg string) {
	p.diags.Report(kind, p.cur[0].Span, msg)
}

func (p *Parser) errorAt(kind diag.Kind, span source.Span, msg string) {
	p.diags.Report(kind, span, msg)
}

func joinSpan(a, b source.Span) source.Span { return source.Join(a, b) }

func newNode[T any](p *Parser) *T { return arena.New[T](p.arena) }

// --- top-level dispatch -------------------------------------------------

// parseTopLevel keys on the first up-to-three tokens per spec.md §4.2.
func (p *Parser) parseTopLevel() ast.TopLevelDecl {
	switch p.cur[0].Kind {
	case lexer.KwImport:
		return p.parseImportDecl()
	case lexer.KwUse:
		return p.parseUseDecl()
	case lexer.KwImpl:
		return p.parseImplDecl()
	case lexer.Ident:
		if p.atN(1, lexer.DoubleColon) {
			switch p.cur[2].Kind {
			case lexer.KwStruct:
				return p.parseStructDecl()
			case lexer.KwEnum:
				return p.parseEnumDecl()
			case lexer.ParenStart:
				return p.parseProcDecl("")
			default:
				return p.parseGlobalDecl()
			}
		}
		p.errorHere(diag.ParseExpectedToken, "in top-level declaration: expected `::` after identifier")
		return nil
	default:
		p.errorHere(diag.ParseExpectedToken, "in top-level declaration: expected `import`, `impl`, or an identifier")
		return nil
	}
}
