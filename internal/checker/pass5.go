package checker

import (
	"fmt"
	"strings"

	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/source"
)

// pass5 is the checker's last pass, run once per non-external procedure
// body: a CFG walk that fills in every Block_Stmt's Terminator and catches
// unreachable code and illegal break/continue/return/defer nesting, followed
// by a type/resolution walk over the same body that resolves every
// designator, access chain and call, using the combined declaration tables
// pass 1 built. Grounded on the teacher's Block-Stack/Var-Stack scope model.
func (c *Checker) pass5() {
	for _, pi := range c.Prog.Procs {
		if pi.Decl.External || pi.Decl.Body == nil {
			continue
		}
		c.checkProcCFG(pi.Decl)
	}

	for _, pi := range c.Prog.Procs {
		if pi.Decl.External || pi.Decl.Body == nil {
			continue
		}
		pc := &procChecker{c: c, modInfo: c.infoFor(pi.Module), proc: pi.Decl}
		pc.pushBlock()
		for i := range pi.Decl.Params {
			p := &pi.Decl.Params[i]
			c.resolveType(pc.modInfo, p.Type)
			pc.declareVar(p.Ident, p.Type, true, p.S)
		}
		pc.checkBlock(pi.Decl.Body)
		pc.popBlock()
		pi.Checked = true
	}
}

// --- CFG walk ---

// checkProcCFG computes proc.Body's Terminator bottom-up and requires it to
// be Return when the procedure declares a return type (invariant: a
// procedure with a return type has no path that falls off the end).
func (c *Checker) checkProcCFG(proc *ast.ProcDecl) {
	term := c.cfgBlock(proc.Body, false, false)
	if proc.Ret != nil && term != ast.TermReturn {
		c.Diags.Report(diag.CfgNotAllPathsReturn, proc.Body.Span(), "not every path through "+proc.Ident+" returns a value")
	}
}

// cfgBlock sets b.Terminator to the terminator of its last syntactically
// reachable statement, flagging everything after the first terminating
// statement as unreachable rather than skipping it — spec.md's CFG pass
// still visits unreachable statements' own nested blocks so a later one
// doesn't hide a second class of error.
func (c *Checker) cfgBlock(b *ast.BlockStmt, insideLoop, insideDefer bool) ast.Terminator {
	term := ast.TermNone
	terminated := false
	for _, s := range b.Stmts {
		if terminated {
			c.Diags.Report(diag.CfgUnreachableStatement, s.Span(), "unreachable statement")
		}
		st := c.cfgStmt(s, insideLoop, insideDefer)
		if !terminated {
			term = st
		}
		if st != ast.TermNone {
			terminated = true
		}
		if ds, ok := s.(*ast.DeferStmt); ok {
			b.Deferred = append(b.Deferred, ds)
		}
	}
	// LIFO: the last defer declared in this block runs first at block exit.
	for i, j := 0, len(b.Deferred)-1; i < j; i, j = i+1, j-1 {
		b.Deferred[i], b.Deferred[j] = b.Deferred[j], b.Deferred[i]
	}
	b.Terminator = term
	return term
}

func (c *Checker) cfgStmt(s ast.Stmt, insideLoop, insideDefer bool) ast.Terminator {
	switch st := s.(type) {
	case *ast.BlockStmt:
		return c.cfgBlock(st, insideLoop, insideDefer)
	case *ast.IfStmt:
		thenTerm := c.cfgBlock(st.Then, insideLoop, insideDefer)
		if st.Else == nil {
			return ast.TermNone
		}
		elseTerm := c.cfgStmt(st.Else, insideLoop, insideDefer)
		if thenTerm == elseTerm {
			return thenTerm
		}
		return ast.TermNone
	case *ast.ForStmt:
		c.cfgBlock(st.Body, true, insideDefer)
		return ast.TermNone
	case *ast.DeferStmt:
		if insideDefer {
			c.Diags.Report(diag.CfgNestedDefer, st.S, "defer inside a deferred block")
		}
		c.cfgBlock(st.Body, false, true)
		return ast.TermNone
	case *ast.BreakStmt:
		if insideDefer {
			c.Diags.Report(diag.CfgBreakInsideDefer, st.S, "break inside a deferred block")
		} else if !insideLoop {
			c.Diags.Report(diag.CfgBreakOutsideLoop, st.S, "break outside a loop")
		}
		return ast.TermBreak
	case *ast.ContinueStmt:
		if insideDefer {
			c.Diags.Report(diag.CfgContinueInsideDefer, st.S, "continue inside a deferred block")
		} else if !insideLoop {
			c.Diags.Report(diag.CfgContinueOutsideLoop, st.S, "continue outside a loop")
		}
		return ast.TermContinue
	case *ast.ReturnStmt:
		if insideDefer {
			c.Diags.Report(diag.CfgReturnInsideDefer, st.S, "return inside a deferred block")
		}
		return ast.TermReturn
	case *ast.SwitchStmt:
		result := ast.TermNone
		for i, cs := range st.Cases {
			t := c.cfgBlock(cs.Body, insideLoop, insideDefer)
			if i == 0 {
				result = t
			} else if t != result {
				result = ast.TermNone
			}
		}
		return result
	default:
		return ast.TermNone
	}
}

// --- type/resolution walk ---

// localVar is one entry of the Var_Stack spec.md §4.3 pass 5 describes: a
// name visible from the point of its declaration to the end of its
// enclosing block.
type localVar struct {
	name    string
	ty      *ast.Type
	isParam bool
}

// blockFrame marks where in vars a scope started, so popBlock can pop every
// local a block introduced in one slice truncation.
type blockFrame struct {
	startVarCount int
}

// procChecker walks one procedure body, threading its own Block_Stack/
// Var_Stack rather than sharing one across procedures — each procedure's
// scope is independent.
type procChecker struct {
	c       *Checker
	modInfo *moduleInfo
	proc    *ast.ProcDecl
	vars    []localVar
	blocks  []blockFrame
}

func (pc *procChecker) pushBlock() {
	pc.blocks = append(pc.blocks, blockFrame{startVarCount: len(pc.vars)})
}

func (pc *procChecker) popBlock() {
	top := pc.blocks[len(pc.blocks)-1]
	pc.vars = pc.vars[:top.startVarCount]
	pc.blocks = pc.blocks[:len(pc.blocks)-1]
}

func (pc *procChecker) lookupVar(name string) (*ast.Type, bool, bool) {
	for i := len(pc.vars) - 1; i >= 0; i-- {
		if pc.vars[i].name == name {
			return pc.vars[i].ty, pc.vars[i].isParam, true
		}
	}
	return nil, false, false
}

func (pc *procChecker) declareVar(name string, ty *ast.Type, isParam bool, span source.Span) {
	if _, ok := pc.modInfo.globals[name]; ok {
		pc.c.Diags.Report(diag.VarDeclAlreadyIsGlobal, span, "variable "+name+" has the same name as a global")
		return
	}
	if _, _, ok := pc.lookupVar(name); ok {
		pc.c.Diags.Report(diag.VarDeclAlreadyInScope, span, "variable "+name+" is already declared in an enclosing scope")
		return
	}
	pc.vars = append(pc.vars, localVar{name: name, ty: ty, isParam: isParam})
}

func (pc *procChecker) checkBlock(b *ast.BlockStmt) {
	pc.pushBlock()
	pc.checkStmts(b.Stmts)
	pc.popBlock()
}

func (pc *procChecker) checkStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		pc.checkStmt(s)
	}
}

func (pc *procChecker) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.BlockStmt:
		pc.checkBlock(st)
	case *ast.IfStmt:
		ct := pc.typeOfExpr(st.Cond)
		if ct != nil && !ct.IsBasic(ast.Bool) {
			pc.c.Diags.Report(diag.TypeMismatch, st.Cond.Span(), "if condition must be a bool")
		}
		pc.checkBlock(st.Then)
		if st.Else != nil {
			pc.checkStmt(st.Else)
		}
	case *ast.ForStmt:
		pc.checkFor(st)
	case *ast.DeferStmt:
		pc.checkBlock(st.Body)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// legality is the CFG walk's job; nothing to resolve here.
	case *ast.ReturnStmt:
		pc.checkReturn(st)
	case *ast.SwitchStmt:
		pc.checkSwitch(st)
	case *ast.ProcCallStmt:
		pc.checkProcCallStmt(st)
	case *ast.VarDeclStmt:
		pc.checkVarDecl(st)
	case *ast.VarAssignStmt:
		pc.checkVarAssign(st)
	}
}

// checkFor gives the init clause's variable a scope that spans the whole
// loop (condition, step and body), and gives the body its own nested scope
// so a shadowing local declared inside it doesn't leak into the step
// clause.
func (pc *procChecker) checkFor(f *ast.ForStmt) {
	pc.pushBlock()
	if f.Init != nil {
		pc.checkVarDecl(f.Init)
	}
	if f.Cond != nil {
		ct := pc.typeOfExpr(f.Cond)
		if ct != nil && !ct.IsBasic(ast.Bool) {
			pc.c.Diags.Report(diag.TypeMismatch, f.Cond.Span(), "for condition must be a bool")
		}
	}
	pc.pushBlock()
	pc.checkStmts(f.Body.Stmts)
	pc.popBlock()
	if f.Step != nil {
		pc.checkVarAssign(f.Step)
	}
	pc.popBlock()
}

func (pc *procChecker) checkReturn(s *ast.ReturnStmt) {
	if s.Expr == nil {
		if pc.proc.Ret != nil {
			pc.c.Diags.Report(diag.ReturnExpectedExpr, s.S, "return must produce a value of the declared return type")
		}
		return
	}
	if pc.proc.Ret == nil {
		pc.c.Diags.Report(diag.ReturnExpectedNoExpr, s.S, "return must not produce a value")
		pc.typeOfExpr(s.Expr)
		return
	}
	rt := pc.typeOfExprExpected(s.Expr, pc.proc.Ret)
	if rt != nil && !pc.assignable(pc.proc.Ret, rt) {
		pc.c.Diags.Report(diag.TypeMismatch, s.Expr.Span(), "return type mismatch")
	}
}

func (pc *procChecker) checkVarDecl(s *ast.VarDeclStmt) {
	var ty *ast.Type
	if s.AnnType != nil {
		pc.c.resolveType(pc.modInfo, s.AnnType)
		ty = s.AnnType
		if s.Init != nil {
			it := pc.typeOfExprExpected(s.Init, ty)
			if it != nil && !pc.assignable(ty, it) {
				pc.c.Diags.Report(diag.TypeMismatch, s.Init.Span(), "initializer type mismatch")
			}
		}
	} else if s.Init != nil {
		ty = pc.typeOfExpr(s.Init)
	}
	s.ResolvedType = ty
	pc.declareVar(s.Ident, ty, false, s.S)
}

func isNumericType(t *ast.Type) bool {
	if t == nil || t.Pointer != 0 {
		return false
	}
	b, ok := t.Kind.(*ast.BasicType)
	return ok && (b.Kind.IsInteger() || b.Kind.IsFloat())
}

func (pc *procChecker) checkVarAssign(s *ast.VarAssignStmt) {
	ty := pc.resolveSomething(s.Target)
	if ty == nil {
		pc.typeOfExpr(s.Expr)
		return
	}
	if s.Op != ast.AssignSet && !isNumericType(ty) {
		pc.c.Diags.Report(diag.TypeMismatch, s.Target.S, "compound assignment requires a numeric target")
	}
	rt := pc.typeOfExprExpected(s.Expr, ty)
	if rt != nil && !pc.assignable(ty, rt) {
		pc.c.Diags.Report(diag.TypeMismatch, s.Expr.Span(), "assignment type mismatch")
	}
}

func (pc *procChecker) checkSwitch(s *ast.SwitchStmt) {
	dt := pc.typeOfExpr(s.Discriminant)
	valid := dt != nil && dt.Pointer == 0
	if valid {
		switch k := dt.Kind.(type) {
		case *ast.BasicType:
			valid = k.Kind.IsInteger()
		case *ast.EnumType:
			valid = true
		default:
			valid = false
		}
	}
	if !valid {
		pc.c.Diags.Report(diag.SwitchIncorrectExprType, s.Discriminant.Span(), "switch discriminant must be an integer or enum value")
	}
	for i := range s.Cases {
		cs := &s.Cases[i]
		key := constKey(fmt.Sprintf("switchcase:%p", cs.CaseExpr))
		pc.c.evalConst(cs.CaseExpr, key, nil, typeContext{module: pc.modInfo, expected: dt})
		pc.checkBlock(cs.Body)
	}
}

func (pc *procChecker) checkProcCallStmt(s *ast.ProcCallStmt) {
	ty := pc.resolveSomething(s.Call.Target)
	if s.Call.Target.IsCall && len(s.Call.Target.Chain) == 0 {
		info := pc.modInfo
		if len(s.Call.Target.ModulePath) > 0 {
			if mod, ok := pc.c.ByName[strings.Join(s.Call.Target.ModulePath, "/")]; ok {
				info = pc.c.infoFor(mod.Name)
			}
		}
		if proc, ok := info.procs[s.Call.Target.Ident]; ok {
			s.Call.ProcID = proc.ProcID
		}
	}
	if ty != nil {
		pc.c.Diags.Report(diag.TypeMismatch, s.S, "a call used as a statement must not produce a value")
	}
}

// --- expression typing ---

func (pc *procChecker) typeOfExpr(e ast.Expr) *ast.Type {
	return pc.typeOfExprExpected(e, nil)
}

func (pc *procChecker) typeOfExprExpected(e ast.Expr, expected *ast.Type) *ast.Type {
	var ty *ast.Type
	switch ex := e.(type) {
	case *ast.TermExpr:
		ty = pc.typeOfTerm(ex.Term, expected)
	case *ast.UnaryExpr:
		ty = pc.typeOfUnary(ex, expected)
	case *ast.BinaryExpr:
		ty = pc.typeOfBinary(ex, expected)
	case *ast.FoldedExpr:
		ty = ex.Value.Type
	}
	e.SetResolvedType(ty)
	return ty
}

func (pc *procChecker) typeOfTerm(t ast.Term, expected *ast.Type) *ast.Type {
	switch term := t.(type) {
	case *ast.LiteralTerm:
		return pc.typeOfLiteral(term, expected)
	case *ast.SizeofTerm:
		pc.c.resolveType(pc.modInfo, term.Type)
		return u64Type()
	case *ast.CastTerm:
		return pc.typeOfCast(term)
	case *ast.StructInitTerm:
		return pc.typeOfStructInit(term, expected)
	case *ast.ArrayInitTerm:
		return pc.typeOfArrayInit(term, expected)
	case *ast.SomethingTerm:
		return pc.resolveSomething(term.Something)
	case *ast.CallTerm:
		return pc.resolveSomething(term.Call.Target)
	}
	return nil
}

// typeOfLiteral mirrors const.go's foldLiteral defaulting rule for the
// non-constant case: a type context narrows a raw numeric literal, absent
// one it defaults to u64/f64.
func (pc *procChecker) typeOfLiteral(lit *ast.LiteralTerm, expected *ast.Type) *ast.Type {
	switch lit.Kind {
	case ast.LitBool:
		return basicType(ast.Bool)
	case ast.LitString:
		return basicType(ast.String)
	case ast.LitFloat:
		if expected != nil && expected.Pointer == 0 {
			if b, ok := expected.Kind.(*ast.BasicType); ok && b.Kind.IsFloat() {
				return expected
			}
		}
		return basicType(ast.F64)
	case ast.LitInt:
		if expected != nil && expected.Pointer == 0 {
			if b, ok := expected.Kind.(*ast.BasicType); ok && (b.Kind.IsInteger() || b.Kind.IsFloat()) {
				return expected
			}
		}
		return basicType(ast.U64)
	}
	return nil
}

func (pc *procChecker) typeOfCast(term *ast.CastTerm) *ast.Type {
	pc.c.resolveType(pc.modInfo, term.Type)
	pc.typeOfExpr(term.Value)
	if term.Type.Pointer != 0 {
		pc.c.Diags.Report(diag.CastExprNonBasicBasicType, term.Type.S, "cast target must be a basic type")
		return term.Type
	}
	if _, ok := term.Type.Kind.(*ast.BasicType); !ok {
		pc.c.Diags.Report(diag.CastExprNonBasicBasicType, term.Type.S, "cast target must be a basic type")
	}
	return term.Type
}

func (pc *procChecker) typeOfStructInit(term *ast.StructInitTerm, expected *ast.Type) *ast.Type {
	ty := term.Type
	if ty == nil {
		if expected == nil {
			pc.c.Diags.Report(diag.ResolveStructNoContext, term.S, "struct-init literal has no declared type and no context to infer one")
			return nil
		}
		ty = expected
	} else {
		pc.c.resolveType(pc.modInfo, ty)
	}
	st, ok := ty.Kind.(*ast.StructType)
	if !ok || ty.Pointer != 0 {
		pc.c.Diags.Report(diag.ResolveStructWrongContext, term.S, "struct-init literal's type is not a struct")
		for i := range term.Fields {
			pc.typeOfExpr(term.Fields[i].Value)
		}
		return ty
	}
	for i := range term.Fields {
		f := &term.Fields[i]
		var ft *ast.Type
		for _, fd := range st.Decl.Fields {
			if fd.Ident == f.Ident {
				ft = fd.Type
				break
			}
		}
		if ft == nil {
			pc.c.Diags.Report(diag.ResolveStructFieldNotFound, f.S, "struct "+st.Decl.Ident+" has no field "+f.Ident)
			pc.typeOfExpr(f.Value)
			continue
		}
		vt := pc.typeOfExprExpected(f.Value, ft)
		if vt != nil && !pc.assignable(ft, vt) {
			pc.c.Diags.Report(diag.ResolveStructTypeMismatch, f.Value.Span(), "field "+f.Ident+" type mismatch")
		}
	}
	term.Type = ty
	return ty
}

// typeOfArrayInit infers the element type from context when present,
// otherwise from the literal's own first element, per spec.md §4.3's
// RESOLVE_ARRAY_* family. A bare array-init with no context and no elements
// has nothing to infer from at all.
func (pc *procChecker) typeOfArrayInit(term *ast.ArrayInitTerm, expected *ast.Type) *ast.Type {
	var elemTy *ast.Type
	var expectedIsArray bool
	if expected != nil && expected.Pointer == 0 {
		if at, ok := expected.Kind.(*ast.ArrayType); ok {
			elemTy = at.Elem
			expectedIsArray = true
		}
	}
	if elemTy == nil && len(term.Elems) > 0 {
		elemTy = pc.typeOfExpr(term.Elems[0])
	}
	if elemTy == nil {
		pc.c.Diags.Report(diag.ResolveArrayNoContext, term.S, "array-init literal has no context to infer its element type")
		return nil
	}
	for _, el := range term.Elems {
		et := pc.typeOfExprExpected(el, elemTy)
		if et != nil && !pc.assignable(elemTy, et) {
			pc.c.Diags.Report(diag.ResolveArrayTypeMismatch, el.Span(), "array element type mismatch")
		}
	}
	if expectedIsArray {
		term.Type = expected
		return expected
	}
	sizeLit := &ast.LiteralTerm{Kind: ast.LitInt, Int: uint64(len(term.Elems)), S: term.S}
	sizeExpr := &ast.TermExpr{Term: sizeLit}
	sizeExpr.S = term.S
	ce := &ast.ConstevalExpr{
		Expr:  sizeExpr,
		State: ast.ValidLiteral,
		Value: ast.FoldedValue{Kind: ast.FoldedUInt, UInt: uint64(len(term.Elems)), Type: u64Type()},
		S:     term.S,
	}
	ty := &ast.Type{Kind: &ast.ArrayType{Size: ce, Elem: elemTy}, S: term.S}
	term.Type = ty
	return ty
}

func (pc *procChecker) typeOfUnary(u *ast.UnaryExpr, expected *ast.Type) *ast.Type {
	switch u.Op {
	case ast.UnaryAddr:
		rt := pc.typeOfExpr(u.Rhs)
		if rt == nil {
			return nil
		}
		return &ast.Type{Pointer: rt.Pointer + 1, Kind: rt.Kind, S: u.S}
	case ast.UnaryDeref:
		rt := pc.typeOfExpr(u.Rhs)
		if rt == nil {
			return nil
		}
		if rt.Pointer == 0 {
			pc.c.Diags.Report(diag.TypeMismatch, u.S, "cannot dereference a non-pointer value")
			return nil
		}
		return &ast.Type{Pointer: rt.Pointer - 1, Kind: rt.Kind, S: u.S}
	default:
		return pc.typeOfExprExpected(u.Rhs, expected)
	}
}

func (pc *procChecker) typeOfBinary(b *ast.BinaryExpr, expected *ast.Type) *ast.Type {
	switch b.Op {
	case ast.BinEq, ast.BinNotEq, ast.BinLess, ast.BinLessEq, ast.BinGreater, ast.BinGreaterEq, ast.BinAnd, ast.BinOr:
		pc.typeOfExpr(b.Lhs)
		pc.typeOfExpr(b.Rhs)
		return basicType(ast.Bool)
	default:
		lt := pc.typeOfExprExpected(b.Lhs, expected)
		rt := pc.typeOfExprExpected(b.Rhs, lt)
		if lt != nil && rt != nil && !pc.sameType(lt, rt) {
			pc.c.Diags.Report(diag.TypeMismatch, b.S, "operands of a binary expression must have the same type")
		}
		if lt != nil {
			return lt
		}
		return rt
	}
}

func (pc *procChecker) sameType(a, b *ast.Type) bool {
	if a == nil || b == nil || a.Pointer != b.Pointer {
		return false
	}
	switch ak := a.Kind.(type) {
	case *ast.BasicType:
		bk, ok := b.Kind.(*ast.BasicType)
		return ok && ak.Kind == bk.Kind
	case *ast.StructType:
		bk, ok := b.Kind.(*ast.StructType)
		return ok && ak.StructID == bk.StructID
	case *ast.EnumType:
		bk, ok := b.Kind.(*ast.EnumType)
		return ok && ak.EnumID == bk.EnumID
	case *ast.ArrayType:
		bk, ok := b.Kind.(*ast.ArrayType)
		return ok && pc.sameType(ak.Elem, bk.Elem)
	case *ast.ProcedureType:
		_, ok := b.Kind.(*ast.ProcedureType)
		return ok
	}
	return false
}

func (pc *procChecker) assignable(target, value *ast.Type) bool {
	return pc.sameType(target, value)
}

// --- designator/access-chain resolution ---

// resolveSomething resolves a full designator: its base segment (a bare
// call, or a variable/param/global reference, or an enum type name leading
// into a variant access), then every further field/index/call link in its
// access chain in order, per spec.md §4.2's "Designators and calls".
func (pc *procChecker) resolveSomething(s *ast.Something) *ast.Type {
	if !s.IsCall && len(s.Chain) > 0 && s.Chain[0].Kind == ast.AccessField {
		if _, ed, ok := pc.lookupEnum(s.ModulePath, s.Ident); ok {
			return pc.resolveEnumVariantAccess(s, ed)
		}
	}

	var curTy *ast.Type
	if s.IsCall {
		ty, ok := pc.resolveProcCall(s.ModulePath, s.Ident, s.CallArgs, s.S)
		if !ok {
			return nil
		}
		curTy = ty
	} else {
		ty, ok := pc.resolveBaseIdent(s)
		if !ok {
			return nil
		}
		curTy = ty
	}

	for i := range s.Chain {
		link := &s.Chain[i]
		next, ok := pc.applyLink(curTy, link)
		if !ok {
			return nil
		}
		curTy = next
		link.Ty = curTy
	}
	s.Ty = curTy
	return curTy
}

func (pc *procChecker) lookupEnum(modulePath []string, ident string) (*moduleInfo, *ast.EnumDecl, bool) {
	info := pc.modInfo
	if len(modulePath) > 0 {
		mod, ok := pc.c.ByName[strings.Join(modulePath, "/")]
		if !ok {
			return nil, nil, false
		}
		info = pc.c.infoFor(mod.Name)
	}
	ed, ok := info.enums[ident]
	return info, ed, ok
}

func (pc *procChecker) resolveEnumVariantAccess(s *ast.Something, ed *ast.EnumDecl) *ast.Type {
	link := &s.Chain[0]
	idx := -1
	for i, v := range ed.Variants {
		if v.Ident == link.Ident {
			idx = i
			break
		}
	}
	if idx < 0 {
		pc.c.Diags.Report(diag.ResolveEnumVariantNotFound, link.S, "enum "+ed.Ident+" has no variant "+link.Ident)
		return nil
	}
	s.Resolved = ast.ResolvedEnumVariant
	curTy := &ast.Type{Kind: &ast.EnumType{EnumID: ed.EnumID, Decl: ed}, S: link.S}
	link.Ty = curTy
	for i := 1; i < len(s.Chain); i++ {
		l := &s.Chain[i]
		next, ok := pc.applyLink(curTy, l)
		if !ok {
			return nil
		}
		curTy = next
		l.Ty = curTy
	}
	s.Ty = curTy
	return curTy
}

func (pc *procChecker) resolveBaseIdent(s *ast.Something) (*ast.Type, bool) {
	if len(s.ModulePath) == 0 {
		if ty, isParam, ok := pc.lookupVar(s.Ident); ok {
			if isParam {
				s.Resolved = ast.ResolvedParam
			} else {
				s.Resolved = ast.ResolvedLocal
			}
			return ty, true
		}
	}
	info := pc.modInfo
	if len(s.ModulePath) > 0 {
		modName := strings.Join(s.ModulePath, "/")
		mod, ok := pc.c.ByName[modName]
		if !ok {
			pc.c.Diags.Report(diag.ResolveTypeNotFound, s.S, "unknown module "+strings.Join(s.ModulePath, "::"))
			return nil, false
		}
		info = pc.c.infoFor(mod.Name)
	}
	if g, ok := info.globals[s.Ident]; ok {
		s.Resolved = ast.ResolvedGlobal
		return g.ResolvedType, true
	}
	pc.c.Diags.Report(diag.VarLocalNotFound, s.S, "undeclared identifier "+s.Ident)
	return nil, false
}

func (pc *procChecker) applyLink(curTy *ast.Type, link *ast.AccessLink) (*ast.Type, bool) {
	switch link.Kind {
	case ast.AccessField:
		return pc.resolveFieldAccess(curTy, link)
	case ast.AccessIndex:
		return pc.resolveIndexAccess(curTy, link)
	case ast.AccessCall:
		return pc.resolveMethodCall(curTy, link)
	}
	return nil, false
}

// resolveFieldAccess dereferences exactly one level of pointer indirection
// transparently, matching spec.md §4.3's access-chain resolution rule, and
// rejects a deeper pointer chain as needing an explicit `*` first.
func (pc *procChecker) resolveFieldAccess(curTy *ast.Type, link *ast.AccessLink) (*ast.Type, bool) {
	if curTy == nil {
		return nil, false
	}
	t := curTy
	if t.Pointer == 1 {
		t = &ast.Type{Pointer: 0, Kind: t.Kind}
	} else if t.Pointer > 1 {
		pc.c.Diags.Report(diag.TypeMismatch, link.S, "field access requires at most one level of pointer indirection")
		return nil, false
	}
	st, ok := t.Kind.(*ast.StructType)
	if !ok {
		pc.c.Diags.Report(diag.ResolveStructFieldNotFound, link.S, "field access on a non-struct type")
		return nil, false
	}
	for i, f := range st.Decl.Fields {
		if f.Ident == link.Ident {
			link.FieldID = i
			return f.Type, true
		}
	}
	pc.c.Diags.Report(diag.ResolveStructFieldNotFound, link.S, "struct "+st.Decl.Ident+" has no field "+link.Ident)
	return nil, false
}

func (pc *procChecker) resolveIndexAccess(curTy *ast.Type, link *ast.AccessLink) (*ast.Type, bool) {
	it := pc.typeOfExpr(link.Index)
	if it != nil {
		b, ok := it.Kind.(*ast.BasicType)
		if !ok || it.Pointer != 0 || !b.Kind.IsInteger() {
			pc.c.Diags.Report(diag.TypeMismatch, link.Index.Span(), "array index must be an integer")
		}
	}
	if curTy == nil || curTy.Pointer != 0 {
		pc.c.Diags.Report(diag.TypeMismatch, link.S, "index access requires an array value")
		return nil, false
	}
	at, ok := curTy.Kind.(*ast.ArrayType)
	if !ok {
		pc.c.Diags.Report(diag.TypeMismatch, link.S, "index access on a non-array type")
		return nil, false
	}
	return at.Elem, true
}

// resolveMethodCall looks the method up by QualifiedName in the receiver
// struct's own module: impl-blocks are not cross-module in this language,
// so a method call always resolves against the struct's declaring module.
func (pc *procChecker) resolveMethodCall(curTy *ast.Type, link *ast.AccessLink) (*ast.Type, bool) {
	if curTy == nil || curTy.Pointer > 1 {
		if curTy != nil {
			pc.c.Diags.Report(diag.TypeMismatch, link.S, "method call requires at most one level of pointer indirection")
		}
		return nil, false
	}
	st, ok := curTy.Kind.(*ast.StructType)
	if !ok {
		pc.c.Diags.Report(diag.ResolveProcNotFound, link.S, "method call on a non-struct type")
		return nil, false
	}
	modInfo := pc.c.infoFor(pc.c.Prog.Structs[st.StructID].Module)
	proc, ok := modInfo.procs[st.Decl.Ident+"."+link.Ident]
	if !ok {
		pc.c.Diags.Report(diag.ResolveProcNotFound, link.S, "struct "+st.Decl.Ident+" has no method "+link.Ident)
		for _, a := range link.Args {
			pc.typeOfExpr(a)
		}
		return nil, false
	}
	// proc.Params[0] is the implicit self receiver; a method call's argument
	// list never spells it out.
	params := proc.Params
	if len(params) > 0 && params[0].Ident == "self" {
		params = params[1:]
	}
	pc.checkCallArgsAgainst(params, proc.QualifiedName(), link.Args, link.S)
	return proc.Ret, true
}

func (pc *procChecker) resolveProcCall(modulePath []string, ident string, args []ast.Expr, span source.Span) (*ast.Type, bool) {
	info := pc.modInfo
	if len(modulePath) > 0 {
		modName := strings.Join(modulePath, "/")
		mod, ok := pc.c.ByName[modName]
		if !ok {
			pc.c.Diags.Report(diag.ResolveTypeNotFound, span, "unknown module "+strings.Join(modulePath, "::"))
			return nil, false
		}
		info = pc.c.infoFor(mod.Name)
	}
	proc, ok := info.procs[ident]
	if !ok {
		pc.c.Diags.Report(diag.ResolveProcNotFound, span, "undeclared procedure "+ident)
		for _, a := range args {
			pc.typeOfExpr(a)
		}
		return nil, false
	}
	pc.checkCallArgs(proc, args, span)
	return proc.Ret, true
}

func (pc *procChecker) checkCallArgs(proc *ast.ProcDecl, args []ast.Expr, span source.Span) {
	pc.checkCallArgsAgainstVariadic(proc.Params, proc.Variadic, proc.QualifiedName(), args, span)
}

func (pc *procChecker) checkCallArgsAgainst(params []ast.ParamDecl, calleeName string, args []ast.Expr, span source.Span) {
	pc.checkCallArgsAgainstVariadic(params, false, calleeName, args, span)
}

// checkCallArgsAgainstVariadic matches a call's arguments against a
// procedure's declared parameters. A variadic callee accepts any argument
// count at or above len(params) (spec.md §4.3's designator/call rule); extra
// arguments past the declared params carry no expected type to check
// against.
func (pc *procChecker) checkCallArgsAgainstVariadic(params []ast.ParamDecl, variadic bool, calleeName string, args []ast.Expr, span source.Span) {
	if variadic {
		if len(args) < len(params) {
			pc.c.Diags.Report(diag.TypeMismatch, span, fmt.Sprintf("%s expects at least %d argument(s), got %d", calleeName, len(params), len(args)))
			for _, a := range args {
				pc.typeOfExpr(a)
			}
			return
		}
	} else if len(args) != len(params) {
		pc.c.Diags.Report(diag.TypeMismatch, span, fmt.Sprintf("%s expects %d argument(s), got %d", calleeName, len(params), len(args)))
		for _, a := range args {
			pc.typeOfExpr(a)
		}
		return
	}
	for i, a := range args {
		if i >= len(params) {
			pc.typeOfExpr(a)
			continue
		}
		at := pc.typeOfExprExpected(a, params[i].Type)
		if at != nil && !pc.assignable(params[i].Type, at) {
			pc.c.Diags.Report(diag.TypeMismatch, a.Span(), "argument type mismatch for parameter "+params[i].Ident)
		}
	}
}
