package parser

import (
	"orelang/internal/ast"
	"orelang/internal/lexer"
)

var basicKeywords = map[lexer.Kind]ast.BasicKind{
	lexer.TyI8:     ast.I8,
	lexer.TyU8:     ast.U8,
	lexer.TyI16:    ast.I16,
	lexer.TyU16:    ast.U16,
	lexer.TyI32:    ast.I32,
	lexer.TyU32:    ast.U32,
	lexer.TyI64:    ast.I64,
	lexer.TyU64:    ast.U64,
	lexer.TyF32:    ast.F32,
	lexer.TyF64:    ast.F64,
	lexer.TyBool:   ast.Bool,
	lexer.TyString: ast.String,
}

// parseType handles `*T` (pointer), `[expr]T` (fixed array), the twelve
// basic type keywords, and a module-qualified named type (spec.md §6).
func (p *Parser) parseType() *ast.Type {
	start := p.cur[0].Span
	pointer := 0
	for {
		if _, ok := p.match(lexer.Star); ok {
			pointer++
			continue
		}
		break
	}

	if arrTok, ok := p.match(lexer.BracketStart); ok {
		size := p.parseConstevalExpr()
		p.expect(lexer.BracketEnd, "to end an array type's size")
		elem := p.parseType()
		return &ast.Type{
			Pointer: pointer,
			Kind:    &ast.ArrayType{Size: size, Elem: elem},
			S:       joinSpan(arrTok.Span, elem.Span()),
		}
	}

	if k, ok := basicKeywords[p.cur[0].Kind]; ok {
		tok := p.advance()
		return &ast.Type{Pointer: pointer, Kind: &ast.BasicType{Kind: k}, S: joinSpan(start, tok.Span)}
	}

	var path []string
	nameTok := p.expect(lexer.Ident, "as a type name")
	end := nameTok.Span
	path = append(path, nameTok.Lexeme())
	for p.at(lexer.DoubleColon) && p.atN(1, lexer.Ident) {
		p.advance()
		seg := p.advance()
		end = seg.Span
		path = append(path, seg.Lexeme())
	}
	ident := path[len(path)-1]
	modulePath := path[:len(path)-1]
	return &ast.Type{
		Pointer: pointer,
		Kind:    &ast.UnresolvedType{ModulePath: modulePath, Ident: ident},
		S:       joinSpan(start, end),
	}
}
