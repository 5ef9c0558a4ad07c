package parser

import (
	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/lexer"
)

// parseImportDecl handles `import path;`, `import path::{a,b}`,
// `import path::*`, and `import path::name;` (spec.md §6). The last form is
// syntactically indistinguishable from a longer bare module path; pass 1/2
// disambiguates by trying the full chain against the module map first, per
// DESIGN.md.
func (p *Parser) parseImportDecl() ast.TopLevelDecl {
	start := p.expect(lexer.KwImport, "at the start of an import declaration")

	decl := &ast.ImportDecl{Mode: ast.ImportBare}
	first := p.expect(lexer.Ident, "as the first segment of an import path")
	decl.Path = append(decl.Path, first.Lexeme())

	for {
		if _, ok := p.match(lexer.DoubleColon); !ok {
			break
		}
		if p.at(lexer.BlockStart) {
			decl.Mode = ast.ImportNamed
			decl.Names = p.parseNamedImportList()
			break
		}
		if _, ok := p.match(lexer.Star); ok {
			decl.Mode = ast.ImportAll
			break
		}
		seg := p.expect(lexer.Ident, "as an import path segment")
		decl.Path = append(decl.Path, seg.Lexeme())
	}

	end := p.expect(lexer.Semicolon, "to end an import declaration")
	decl.S = joinSpan(start.Span, end.Span)
	return decl
}

func (p *Parser) parseNamedImportList() []string {
	p.expect(lexer.BlockStart, "to start a named import list")
	var names []string
	if !p.at(lexer.BlockEnd) {
		for {
			id := p.expect(lexer.Ident, "in a named import list")
			names = append(names, id.Lexeme())
			if _, ok := p.match(lexer.Comma); ok {
				continue
			}
			break
		}
	}
	p.expect(lexer.BlockEnd, "to end a named import list")
	return names
}

// parseUseDecl handles `use alias = path::symbol;` (spec.md §4.3 pass 2).
func (p *Parser) parseUseDecl() ast.TopLevelDecl {
	start := p.expect(lexer.KwUse, "at the start of a use declaration")
	alias := p.expect(lexer.Ident, "as a use alias")
	p.expect(lexer.Assign, "after a use alias")

	var segments []string
	segments = append(segments, p.expect(lexer.Ident, "as the first segment of a use path").Lexeme())
	for {
		if _, ok := p.match(lexer.DoubleColon); !ok {
			break
		}
		seg := p.expect(lexer.Ident, "as a use path segment")
		segments = append(segments, seg.Lexeme())
	}
	end := p.expect(lexer.Semicolon, "to end a use declaration")

	if len(segments) < 2 {
		p.errorAt(diag.UseSymbolNotFound, joinSpan(start.Span, end.Span), "use declaration needs at least one module segment and a symbol")
		return &ast.UseDecl{Alias: alias.Lexeme(), S: joinSpan(start.Span, end.Span)}
	}
	return &ast.UseDecl{
		Alias:      alias.Lexeme(),
		ImportPath: segments[:len(segments)-1],
		Symbol:     segments[len(segments)-1],
		S:          joinSpan(start.Span, end.Span),
	}
}

// parseStructDecl handles `Ident :: struct { ident: Type [= default]; ... }`.
func (p *Parser) parseStructDecl() ast.TopLevelDecl {
	nameTok := p.expect(lexer.Ident, "as a struct name")
	p.expect(lexer.DoubleColon, "after a struct name")
	p.expect(lexer.KwStruct, "in a struct declaration")
	p.expect(lexer.BlockStart, "to start a struct body")

	decl := newNode[ast.StructDecl](p)
	decl.Ident = nameTok.Lexeme()

	for !p.at(lexer.BlockEnd) && !p.at(lexer.InputEnd) {
		fieldStart := p.expect(lexer.Ident, "as a struct field name")
		p.expect(lexer.Colon, "after a struct field name")
		ty := p.parseType()
		var def *ast.ConstevalExpr
		fieldEnd := ty.Span()
		if _, ok := p.match(lexer.Assign); ok {
			def = p.parseConstevalExpr()
			fieldEnd = def.Span()
		}
		semi := p.expect(lexer.Semicolon, "to end a struct field")
		fieldEnd = semi.Span
		for _, existing := range decl.Fields {
			if existing.Ident == fieldStart.Lexeme() {
				p.errorAt(diag.StructDuplicateField, fieldStart.Span, "duplicate struct field "+fieldStart.Lexeme())
			}
		}
		decl.Fields = append(decl.Fields, ast.FieldDecl{
			Ident:   fieldStart.Lexeme(),
			Type:    ty,
			Default: def,
			S:       joinSpan(fieldStart.Span, fieldEnd),
		})
	}
	end := p.expect(lexer.BlockEnd, "to end a struct body")
	decl.S = joinSpan(nameTok.Span, end.Span)
	return decl
}

// parseEnumDecl handles `Ident :: enum[::type] { v = expr; ... }`.
func (p *Parser) parseEnumDecl() ast.TopLevelDecl {
	nameTok := p.expect(lexer.Ident, "as an enum name")
	p.expect(lexer.DoubleColon, "after an enum name")
	p.expect(lexer.KwEnum, "in an enum declaration")

	decl := newNode[ast.EnumDecl](p)
	decl.Ident = nameTok.Lexeme()

	if _, ok := p.match(lexer.DoubleColon); ok {
		decl.BaseType = p.parseType()
	}

	p.expect(lexer.BlockStart, "to start an enum body")
	for !p.at(lexer.BlockEnd) && !p.at(lexer.InputEnd) {
		vname := p.expect(lexer.Ident, "as an enum variant name")
		p.expect(lexer.Assign, "after an enum variant name")
		value := p.parseConstevalExpr()
		semi := p.expect(lexer.Semicolon, "to end an enum variant")
		for _, existing := range decl.Variants {
			if existing.Ident == vname.Lexeme() {
				p.errorAt(diag.EnumDuplicateVariant, vname.Span, "duplicate enum variant "+vname.Lexeme())
			}
		}
		decl.Variants = append(decl.Variants, ast.EnumVariant{
			Ident: vname.Lexeme(),
			Value: value,
			S:     joinSpan(vname.Span, semi.Span),
		})
	}
	end := p.expect(lexer.BlockEnd, "to end an enum body")
	if len(decl.Variants) == 0 {
		p.errorAt(diag.EnumZeroVariants, joinSpan(nameTok.Span, end.Span), "enum "+decl.Ident+" has zero variants")
	}
	decl.S = joinSpan(nameTok.Span, end.Span)
	return decl
}

// parseProcDecl handles `Ident :: (params) [-> T] { ... } | @`. receiver is
// "" for module-level procedures and the enclosing impl-block's type name
// for methods.
func (p *Parser) parseProcDecl(receiver string) *ast.ProcDecl {
	nameTok := p.expect(lexer.Ident, "as a procedure name")
	p.expect(lexer.DoubleColon, "after a procedure name")

	decl := newNode[ast.ProcDecl](p)
	decl.Ident = nameTok.Lexeme()
	decl.Receiver = receiver

	p.expect(lexer.ParenStart, "to start a procedure parameter list")
	if !p.at(lexer.ParenEnd) {
		for {
			if _, ok := p.match(lexer.DoubleDot); ok {
				decl.Variadic = true
				break
			}
			if receiver != "" && len(decl.Params) == 0 && p.at(lexer.KwSelf) && !p.atN(1, lexer.Colon) {
				selfTok := p.advance()
				decl.Params = append(decl.Params, ast.ParamDecl{Ident: "self", S: selfTok.Span})
			} else {
				pname := p.expect(lexer.Ident, "as a parameter name")
				p.expect(lexer.Colon, "after a parameter name")
				ty := p.parseType()
				for _, existing := range decl.Params {
					if existing.Ident == pname.Lexeme() {
						p.errorAt(diag.ProcDuplicateParam, pname.Span, "duplicate parameter "+pname.Lexeme())
					}
				}
				decl.Params = append(decl.Params, ast.ParamDecl{Ident: pname.Lexeme(), Type: ty, S: joinSpan(pname.Span, ty.Span())})
			}
			if _, ok := p.match(lexer.Comma); ok {
				continue
			}
			break
		}
	}
	p.expect(lexer.ParenEnd, "to end a procedure parameter list")

	if _, ok := p.match(lexer.Arrow); ok {
		decl.Ret = p.parseType()
	}

	if at, ok := p.match(lexer.At); ok {
		decl.External = true
		decl.S = joinSpan(nameTok.Span, at.Span)
		return decl
	}
	decl.Body = p.parseBlockStmt()
	decl.S = joinSpan(nameTok.Span, decl.Body.Span())
	return decl
}

// parseImplDecl handles `impl TypeName { proc_decl* }` (spec.md §4.2). Each
// method's implicit `self` parameter's type is filled in here once
// TypeName is known.
func (p *Parser) parseImplDecl() ast.TopLevelDecl {
	start := p.expect(lexer.KwImpl, "at the start of an impl block")
	typeTok := p.expect(lexer.Ident, "as the type an impl block attaches to")
	p.expect(lexer.BlockStart, "to start an impl block body")

	decl := newNode[ast.ImplDecl](p)
	decl.TypeName = typeTok.Lexeme()

	for !p.at(lexer.BlockEnd) && !p.at(lexer.InputEnd) {
		if !p.at(lexer.Ident) || !p.atN(1, lexer.DoubleColon) || p.cur[2].Kind != lexer.ParenStart {
			p.errorHere(diag.ParseExpectedToken, "in impl block: expected a procedure declaration")
			p.advance()
			continue
		}
		method := p.parseProcDecl(decl.TypeName)
		for i, param := range method.Params {
			if param.Ident == "self" && param.Type == nil {
				method.Params[i].Type = &ast.Type{Pointer: 1, Kind: &ast.UnresolvedType{Ident: decl.TypeName}, S: param.S}
			}
		}
		decl.Methods = append(decl.Methods, method)
	}
	end := p.expect(lexer.BlockEnd, "to end an impl block body")
	decl.S = joinSpan(start.Span, end.Span)
	return decl
}

// parseGlobalDecl handles `Ident :: expr;`.
func (p *Parser) parseGlobalDecl() ast.TopLevelDecl {
	nameTok := p.expect(lexer.Ident, "as a global constant name")
	p.expect(lexer.DoubleColon, "after a global constant name")

	decl := newNode[ast.GlobalDecl](p)
	decl.Ident = nameTok.Lexeme()
	decl.Expr = p.parseConstevalExpr()
	end := p.expect(lexer.Semicolon, "to end a global constant declaration")
	decl.S = joinSpan(nameTok.Span, end.Span)
	return decl
}
