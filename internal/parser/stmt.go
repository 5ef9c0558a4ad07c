package parser

import (
	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/lexer"
)

// parseBlockStmt handles `{ stmt* }`. A statement that fails to parse is
// skipped by advancing one token, the same recovery policy parseTopLevel
// uses (spec.md §4.2: "continue scanning for more errors of the same
// class").
func (p *Parser) parseBlockStmt() *ast.BlockStmt {
	start := p.expect(lexer.BlockStart, "to start a block")
	blk := newNode[ast.BlockStmt](p)
	for !p.at(lexer.BlockEnd) && !p.at(lexer.InputEnd) {
		s := p.parseStmt()
		if s != nil {
			blk.Stmts = append(blk.Stmts, s)
		} else {
			p.advance()
		}
	}
	end := p.expect(lexer.BlockEnd, "to end a block")
	blk.S = joinSpan(start.Span, end.Span)
	return blk
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur[0].Kind {
	case lexer.KwIf:
		return p.parseIfStmt()
	case lexer.KwFor:
		return p.parseForStmt()
	case lexer.BlockStart:
		return p.parseBlockStmt()
	case lexer.KwDefer:
		return p.parseDeferStmt()
	case lexer.KwBreak:
		tok := p.advance()
		end := p.expect(lexer.Semicolon, "to end a break statement")
		return &ast.BreakStmt{S: joinSpan(tok.Span, end.Span)}
	case lexer.KwContinue:
		tok := p.advance()
		end := p.expect(lexer.Semicolon, "to end a continue statement")
		return &ast.ContinueStmt{S: joinSpan(tok.Span, end.Span)}
	case lexer.KwReturn:
		return p.parseReturnStmt()
	case lexer.KwSwitch:
		return p.parseSwitchStmt()
	case lexer.Ident:
		return p.parseIdentLedStmt()
	default:
		p.errorHere(diag.ParseExpectedToken, "expected a statement")
		return nil
	}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.expect(lexer.KwIf, "at the start of an if statement")
	cond := p.parseExpr()
	then := p.parseBlockStmt()
	stmt := &ast.IfStmt{Cond: cond, Then: then, S: joinSpan(start.Span, then.Span())}
	if _, ok := p.match(lexer.KwElse); ok {
		if p.at(lexer.KwIf) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlockStmt()
		}
		stmt.S = joinSpan(stmt.S, stmt.Else.Span())
	}
	return stmt
}

// parseForStmt handles `for [init]; cond; [step] { }`, matching spec.md §6's
// three-clause loop where every clause is optional.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.expect(lexer.KwFor, "at the start of a for statement")
	stmt := &ast.ForStmt{}

	if !p.at(lexer.Semicolon) {
		stmt.Init = p.parseVarDeclStmtNoSemi()
	}
	p.expect(lexer.Semicolon, "after a for statement's init clause")

	if !p.at(lexer.Semicolon) {
		stmt.Cond = p.parseExpr()
	}
	p.expect(lexer.Semicolon, "after a for statement's condition")

	if !p.at(lexer.BlockStart) {
		stmt.Step = p.parseVarAssignStmtNoSemi()
	}
	stmt.Body = p.parseBlockStmt()
	stmt.S = joinSpan(start.Span, stmt.Body.Span())
	return stmt
}

func (p *Parser) parseDeferStmt() ast.Stmt {
	start := p.expect(lexer.KwDefer, "at the start of a defer statement")
	body := p.parseBlockStmt()
	return &ast.DeferStmt{Body: body, S: joinSpan(start.Span, body.Span())}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.expect(lexer.KwReturn, "at the start of a return statement")
	stmt := &ast.ReturnStmt{S: start.Span}
	if !p.at(lexer.Semicolon) {
		stmt.Expr = p.parseExpr()
	}
	end := p.expect(lexer.Semicolon, "to end a return statement")
	stmt.S = joinSpan(start.Span, end.Span)
	return stmt
}

// parseSwitchStmt handles `switch expr { case_expr [:] { } ... }`, each case
// guarded by a compile-time-constant discriminant value; the colon after a
// case expression is optional.
func (p *Parser) parseSwitchStmt() ast.Stmt {
	start := p.expect(lexer.KwSwitch, "at the start of a switch statement")
	disc := p.parseExpr()
	p.expect(lexer.BlockStart, "to start a switch body")

	stmt := &ast.SwitchStmt{Discriminant: disc}
	for !p.at(lexer.BlockEnd) && !p.at(lexer.InputEnd) {
		caseExpr := p.parseConstevalExpr()
		p.match(lexer.Colon)
		body := p.parseBlockStmt()
		stmt.Cases = append(stmt.Cases, ast.SwitchCase{CaseExpr: caseExpr, Body: body, S: joinSpan(caseExpr.Span(), body.Span())})
	}
	end := p.expect(lexer.BlockEnd, "to end a switch body")
	if len(stmt.Cases) == 0 {
		p.errorAt(diag.SwitchZeroCases, joinSpan(start.Span, end.Span), "switch statement has zero cases")
	}
	stmt.S = joinSpan(start.Span, end.Span)
	return stmt
}

// parseIdentLedStmt disambiguates the three ident-led statement forms:
// `ident: Type [= expr];` (VarDecl), `something op= expr;` (VarAssign), and
// `something(args);` (a call used as a statement, its value discarded).
func (p *Parser) parseIdentLedStmt() ast.Stmt {
	if p.atN(1, lexer.Colon) {
		s := p.parseVarDeclStmtNoSemi()
		end := p.expect(lexer.Semicolon, "to end a variable declaration")
		s.S = joinSpan(s.S, end.Span)
		return s
	}

	target := p.parseDesignator()
	if op, ok := assignOps[p.cur[0].Kind]; ok {
		p.advance()
		expr := p.parseExpr()
		end := p.expect(lexer.Semicolon, "to end an assignment")
		return &ast.VarAssignStmt{Target: target, Op: op, Expr: expr, S: joinSpan(target.S, end.Span)}
	}
	if target.EndsInCall() {
		end := p.expect(lexer.Semicolon, "to end a call statement")
		call := &ast.ProcCallNode{Target: target, S: joinSpan(target.S, end.Span)}
		return &ast.ProcCallStmt{Call: call, S: call.S}
	}
	p.errorAt(diag.ParseExpectedToken, target.S, "expected an assignment or a call, found a bare designator")
	p.expect(lexer.Semicolon, "to end a statement")
	return nil
}

var assignOps = map[lexer.Kind]ast.AssignOp{
	lexer.Assign:              ast.AssignSet,
	lexer.PlusEquals:          ast.AssignAdd,
	lexer.MinusEquals:         ast.AssignSub,
	lexer.StarEquals:          ast.AssignMul,
	lexer.SlashEquals:         ast.AssignDiv,
	lexer.PercentEquals:       ast.AssignMod,
	lexer.AmpEquals:           ast.AssignAnd,
	lexer.PipeEquals:          ast.AssignOr,
	lexer.CaretEquals:         ast.AssignXor,
	lexer.BitshiftLeftEquals:  ast.AssignShl,
	lexer.BitshiftRightEquals: ast.AssignShr,
}

// parseVarDeclStmtNoSemi parses `ident: Type [= expr]` without the trailing
// `;`, so it can be reused for a for statement's init clause.
func (p *Parser) parseVarDeclStmtNoSemi() *ast.VarDeclStmt {
	nameTok := p.expect(lexer.Ident, "as a variable name")
	p.expect(lexer.Colon, "after a variable name")
	s := &ast.VarDeclStmt{Ident: nameTok.Lexeme(), S: nameTok.Span}
	if !p.at(lexer.Assign) {
		s.AnnType = p.parseType()
		s.S = joinSpan(s.S, s.AnnType.Span())
	}
	if _, ok := p.match(lexer.Assign); ok {
		s.Init = p.parseExpr()
		s.S = joinSpan(s.S, s.Init.Span())
	}
	return s
}

// parseVarAssignStmtNoSemi parses `something op= expr` without the trailing
// `;`, for a for statement's step clause.
func (p *Parser) parseVarAssignStmtNoSemi() *ast.VarAssignStmt {
	target := p.parseDesignator()
	op, ok := assignOps[p.cur[0].Kind]
	if !ok {
		p.errorHere(diag.ParseExpectedToken, "expected an assignment operator in a for statement's step clause")
		return &ast.VarAssignStmt{Target: target, Op: ast.AssignSet, S: target.S}
	}
	p.advance()
	expr := p.parseExpr()
	return &ast.VarAssignStmt{Target: target, Op: op, Expr: expr, S: joinSpan(target.S, expr.Span())}
}

// parseDesignator parses the module-path-prefixed, optionally-called,
// optionally-chained Something that appears in l-value and call-statement
// position (spec.md §4.2's "Designators and calls"). Unlike
// parseSomethingOrStructInit, a designator here can never lead into a
// struct-init literal — that form is expression-only.
func (p *Parser) parseDesignator() *ast.Something {
	startSpan := p.cur[0].Span
	var path []string
	first := p.expect(lexer.Ident, "as a designator")
	path = append(path, first.Lexeme())
	for p.at(lexer.DoubleColon) && p.atN(1, lexer.Ident) {
		p.advance()
		seg := p.advance()
		path = append(path, seg.Lexeme())
	}
	ident := path[len(path)-1]
	modulePath := path[:len(path)-1]

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
	return something
}
