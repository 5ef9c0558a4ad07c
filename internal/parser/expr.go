package parser

import (
	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/lexer"
	"orelang/internal/source"
)

// parseConstevalExpr wraps any expression that spec.md §4.2 requires to be
// compile-time constant: enum variant values, global initializers, array
// sizes, struct field defaults.
func (p *Parser) parseConstevalExpr() *ast.ConstevalExpr {
	e := p.parseExpr()
	c := newNode[ast.ConstevalExpr](p)
	c.Expr = e
	c.State = ast.NotEvaluated
	c.S = e.Span()
	return c
}

func (p *Parser) parseExpr() ast.Expr { return p.parseBinExpr(0) }

type binOpInfo struct {
	op   ast.BinaryOp
	prec int
}

var binaryOps = map[lexer.Kind]binOpInfo{
	lexer.PipePipe:      {ast.BinOr, 1},
	lexer.AmpAmp:        {ast.BinAnd, 2},
	lexer.Pipe:          {ast.BinBitOr, 3},
	lexer.Caret:         {ast.BinBitXor, 4},
	lexer.Amp:           {ast.BinBitAnd, 5},
	lexer.IsEquals:      {ast.BinEq, 6},
	lexer.NotEquals:     {ast.BinNotEq, 6},
	lexer.Less:          {ast.BinLess, 7},
	lexer.LessEquals:    {ast.BinLessEq, 7},
	lexer.Greater:       {ast.BinGreater, 7},
	lexer.GreaterEquals: {ast.BinGreaterEq, 7},
	lexer.BitshiftLeft:  {ast.BinShl, 8},
	lexer.BitshiftRight: {ast.BinShr, 8},
	lexer.Plus:          {ast.BinAdd, 9},
	lexer.Minus:         {ast.BinSub, 9},
	lexer.Star:          {ast.BinMul, 10},
	lexer.Slash:         {ast.BinDiv, 10},
	lexer.Percent:       {ast.BinMod, 10},
}

var unaryOps = map[lexer.Kind]ast.UnaryOp{
	lexer.Minus: ast.UnaryNeg,
	lexer.Bang:  ast.UnaryNot,
	lexer.Tilde: ast.UnaryBitNot,
	lexer.Amp:   ast.UnaryAddr,
	lexer.Star:  ast.UnaryDeref,
}

// parseBinExpr is precedence climbing per spec.md §4.2:
// parse_sub_expr(min_prec) recurses with prec+1, so every operator here is
// left-associative.
func (p *Parser) parseBinExpr(minPrec int) ast.Expr {
	left := p.parseUnaryExpr()
	for {
		info, ok := binaryOps[p.cur[0].Kind]
		if !ok || info.prec < minPrec {
			break
		}
		p.advance()
		right := p.parseBinExpr(info.prec + 1)
		bin := newNode[ast.BinaryExpr](p)
		bin.Op = info.op
		bin.Lhs = left
		bin.Rhs = right
		bin.S = joinSpan(left.Span(), right.Span())
		left = bin
	}
	return left
}

// parseUnaryExpr: "unary operators bind tighter than any binary and recurse
// via parse_primary_expr" (spec.md §4.2) — implemented as recursion into
// parseUnaryExpr itself so nested prefixes like `-!x` compose, bottoming out
// at parsePrimaryExpr once no more prefix operators remain.
func (p *Parser) parseUnaryExpr() ast.Expr {
	if op, ok := unaryOps[p.cur[0].Kind]; ok {
		tok := p.advance()
		rhs := p.parseUnaryExpr()
		u := newNode[ast.UnaryExpr](p)
		u.Op = op
		u.Rhs = rhs
		u.S = joinSpan(tok.Span, rhs.Span())
		return u
	}
	return p.parsePrimaryExpr()
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	switch p.cur[0].Kind {
	case lexer.ParenStart:
		p.advance()
		inner := p.parseBinExpr(0)
		p.expect(lexer.ParenEnd, "to close a parenthesized expression")
		return inner
	case lexer.IntLit:
		tok := p.advance()
		return p.wrapTerm(&ast.LiteralTerm{Kind: ast.LitInt, Int: tok.Int, S: tok.Span})
	case lexer.FloatLit:
		tok := p.advance()
		return p.wrapTerm(&ast.LiteralTerm{Kind: ast.LitFloat, Float: tok.Float, S: tok.Span})
	case lexer.BoolLit:
		tok := p.advance()
		return p.wrapTerm(&ast.LiteralTerm{Kind: ast.LitBool, Bool: tok.Bool, S: tok.Span})
	case lexer.StringLit:
		tok := p.advance()
		return p.wrapTerm(&ast.LiteralTerm{Kind: ast.LitString, Str: tok.Str, S: tok.Span})
	case lexer.KwCast:
		return p.wrapTerm(p.parseCastTerm())
	case lexer.KwSizeof:
		return p.wrapTerm(p.parseSizeofTerm())
	case lexer.BlockStart:
		return p.wrapTerm(p.parseStructInitBody(nil, p.cur[0].Span))
	case lexer.BracketStart:
		return p.wrapTerm(p.parseArrayInitTerm())
	case lexer.Ident, lexer.KwSelf:
		return p.parseSomethingOrStructInit()
	default:
		tok := p.cur[0]
		p.errorHere(diag.ParseExpectedToken, "expected an expression")
		if tok.Kind != lexer.InputEnd {
			p.advance()
		}
		return p.wrapTerm(&ast.LiteralTerm{Kind: ast.LitInt, Int: 0, S: tok.Span})
	}
}

func (p *Parser) wrapTerm(t ast.Term) ast.Expr {
	e := newNode[ast.TermExpr](p)
	e.Term = t
	e.S = t.Span()
	return e
}

func (p *Parser) parseCastTerm() *ast.CastTerm {
	start := p.expect(lexer.KwCast, "at the start of a cast expression")
	p.expect(lexer.ParenStart, "after cast")
	ty := p.parseType()
	p.expect(lexer.Comma, "between a cast's type and its value")
	val := p.parseExpr()
	end := p.expect(lexer.ParenEnd, "to close a cast expression")
	return &ast.CastTerm{Type: ty, Value: val, S: joinSpan(start.Span, end.Span)}
}

func (p *Parser) parseSizeofTerm() *ast.SizeofTerm {
	start := p.expect(lexer.KwSizeof, "at the start of a sizeof expression")
	p.expect(lexer.ParenStart, "after sizeof")
	ty := p.parseType()
	end := p.expect(lexer.ParenEnd, "to close a sizeof expression")
	return &ast.SizeofTerm{Type: ty, S: joinSpan(start.Span, end.Span)}
}

// parseSomethingOrStructInit disambiguates an identifier-led primary
// expression: a module-path-prefixed designator (optionally a call,
// optionally followed by an access chain) versus an explicitly-typed
// struct-init literal `TypeName{ ident: expr, ... }`. `Ident {` is read as a
// struct-init literal only when the brace is followed by `ident :`; otherwise
// the brace is left to the enclosing statement, so `if x { }` and
// `switch x { ... }` parse as control flow, and an empty `TypeName{}` is not
// a struct-init literal. `self` is accepted as the first segment.
func (p *Parser) parseSomethingOrStructInit() ast.Expr {
	startSpan := p.cur[0].Span
	var path []string
	first := p.advance()
	path = append(path, first.Lexeme())
	for p.at(lexer.DoubleColon) && p.atN(1, lexer.Ident) {
		p.advance()
		seg := p.advance()
		path = append(path, seg.Lexeme())
	}
	ident := path[len(path)-1]
	modulePath := path[:len(path)-1]

	if p.at(lexer.BlockStart) && p.atN(1, lexer.Ident) && p.atN(2, lexer.Colon) {
		ty := &ast.Type{Kind: &ast.UnresolvedType{ModulePath: modulePath, Ident: ident}, S: startSpan}
		return p.wrapTerm(p.parseStructInitBody(ty, startSpan))
	}

	something := &ast.Something{ModulePath: modulePath, Ident: ident, S: startSpan}
	if _, ok := p.match(lexer.ParenStart); ok {
		something.IsCall = true
		if !p.at(lexer.ParenEnd) {
			something.CallArgs = p.parseExprList()
		}
		closeTok := p.expect(lexer.ParenEnd, "to close a call's argument list")
		something.S = joinSpan(startSpan, closeTok.Span)
	}
	p.parseAccessChain(something)
	return p.wrapTerm(&ast.SomethingTerm{Something: something, S: something.S})
}

func (p *Parser) parseAccessChain(s *ast.Something) {
	for {
		if _, ok := p.match(lexer.Dot); ok {
			id := p.expect(lexer.Ident, "after `.` in an access chain")
			if _, ok := p.match(lexer.ParenStart); ok {
				var args []ast.Expr
				if !p.at(lexer.ParenEnd) {
					args = p.parseExprList()
				}
				end := p.expect(lexer.ParenEnd, "to close a method call's argument list")
				s.Chain = append(s.Chain, ast.AccessLink{Kind: ast.AccessCall, Ident: id.Lexeme(), Args: args, S: joinSpan(id.Span, end.Span)})
				s.S = joinSpan(s.S, end.Span)
				continue
			}
			s.Chain = append(s.Chain, ast.AccessLink{Kind: ast.AccessField, Ident: id.Lexeme(), S: id.Span})
			s.S = joinSpan(s.S, id.Span)
			continue
		}
		if _, ok := p.match(lexer.BracketStart); ok {
			idx := p.parseExpr()
			end := p.expect(lexer.BracketEnd, "to close an index access")
			s.Chain = append(s.Chain, ast.AccessLink{Kind: ast.AccessIndex, Index: idx, S: joinSpan(idx.Span(), end.Span)})
			s.S = joinSpan(s.S, end.Span)
			continue
		}
		break
	}
}

func (p *Parser) parseExprList() []ast.Expr {
	var exprs []ast.Expr
	for {
		exprs = append(exprs, p.parseExpr())
		if _, ok := p.match(lexer.Comma); ok {
			continue
		}
		break
	}
	return exprs
}

// parseStructInitBody parses `{ ident: expr, ... }`; ty is nil for a bare,
// context-inferred struct literal (spec.md §7's RESOLVE_STRUCT_NO_CONTEXT
// family exists precisely for this form).
func (p *Parser) parseStructInitBody(ty *ast.Type, start source.Span) *ast.StructInitTerm {
	p.expect(lexer.BlockStart, "to start a struct-init literal")
	var fields []ast.StructInitField
	if !p.at(lexer.BlockEnd) {
		for {
			name := p.expect(lexer.Ident, "as a struct-init field name")
			p.expect(lexer.Colon, "after a struct-init field name")
			val := p.parseExpr()
			fields = append(fields, ast.StructInitField{Ident: name.Lexeme(), Value: val, S: joinSpan(name.Span, val.Span())})
			if _, ok := p.match(lexer.Comma); ok {
				if p.at(lexer.BlockEnd) {
					break
				}
				continue
			}
			break
		}
	}
	end := p.expect(lexer.BlockEnd, "to end a struct-init literal")
	return &ast.StructInitTerm{Type: ty, Fields: fields, S: joinSpan(start, end.Span)}
}

func (p *Parser) parseArrayInitTerm() *ast.ArrayInitTerm {
	start := p.expect(lexer.BracketStart, "to start an array-init literal")
	var elems []ast.Expr
	if !p.at(lexer.BracketEnd) {
		elems = p.parseExprList()
	}
	end := p.expect(lexer.BracketEnd, "to end an array-init literal")
	return &ast.ArrayInitTerm{Elems: elems, S: joinSpan(start.Span, end.Span)}
}
