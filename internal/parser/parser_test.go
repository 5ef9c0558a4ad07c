package parser

import (
	"testing"

	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/source"
)

func parseModule(t *testing.T, input string) (*ast.Module, *diag.Bag) {
	t.Helper()
	file := source.NewFile("<test>", input)
	bag := &diag.Bag{}
	mod := Parse("test", file, bag)
	return mod, bag
}

func mustNoErrors(t *testing.T, bag *diag.Bag) {
	t.Helper()
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items)
	}
}

func TestParseImportForms(t *testing.T) {
	mod, bag := parseModule(t, `
		import std;
		import std::io;
		import std::io::{read, write};
		import std::io::*;
	`)
	mustNoErrors(t, bag)
	if len(mod.Decls) != 4 {
		t.Fatalf("got %d decls, want 4", len(mod.Decls))
	}
	bare := mod.Decls[0].(*ast.ImportDecl)
	if bare.Mode != ast.ImportBare || len(bare.Path) != 1 || bare.Path[0] != "std" {
		t.Fatalf("bare import = %+v", bare)
	}
	longer := mod.Decls[1].(*ast.ImportDecl)
	if longer.Mode != ast.ImportBare || len(longer.Path) != 2 {
		t.Fatalf("ambiguous import = %+v", longer)
	}
	named := mod.Decls[2].(*ast.ImportDecl)
	if named.Mode != ast.ImportNamed || len(named.Names) != 2 {
		t.Fatalf("named import = %+v", named)
	}
	all := mod.Decls[3].(*ast.ImportDecl)
	if all.Mode != ast.ImportAll {
		t.Fatalf("star import = %+v", all)
	}
}

func TestParseStructDecl(t *testing.T) {
	mod, bag := parseModule(t, `
		Point :: struct {
			x: i32;
			y: i32 = 0;
		}
	`)
	mustNoErrors(t, bag)
	decl := mod.Decls[0].(*ast.StructDecl)
	if decl.Ident != "Point" || len(decl.Fields) != 2 {
		t.Fatalf("struct decl = %+v", decl)
	}
	if decl.Fields[1].Default == nil {
		t.Fatalf("expected field default on y")
	}
}

func TestParseStructDuplicateFieldIsDiagnosed(t *testing.T) {
	_, bag := parseModule(t, `
		Point :: struct {
			x: i32;
			x: i32;
		}
	`)
	if !bag.HasErrors() {
		t.Fatalf("expected a duplicate-field diagnostic")
	}
	if bag.Items[0].Kind != diag.StructDuplicateField {
		t.Fatalf("kind = %v, want StructDuplicateField", bag.Items[0].Kind)
	}
}

func TestParseEnumDecl(t *testing.T) {
	mod, bag := parseModule(t, `
		Color :: enum::u8 {
			Red = 0;
			Green = 1;
			Blue = 2;
		}
	`)
	mustNoErrors(t, bag)
	decl := mod.Decls[0].(*ast.EnumDecl)
	if decl.Ident != "Color" || len(decl.Variants) != 3 {
		t.Fatalf("enum decl = %+v", decl)
	}
	if decl.BaseType == nil {
		t.Fatalf("expected a base type")
	}
}

func TestParseEnumZeroVariantsIsDiagnosed(t *testing.T) {
	_, bag := parseModule(t, `Color :: enum { }`)
	if !bag.HasErrors() || bag.Items[0].Kind != diag.EnumZeroVariants {
		t.Fatalf("bag = %+v", bag.Items)
	}
}

func TestParseProcDeclWithBody(t *testing.T) {
	mod, bag := parseModule(t, `
		add :: (a: i32, b: i32) -> i32 {
			return a + b;
		}
	`)
	mustNoErrors(t, bag)
	decl := mod.Decls[0].(*ast.ProcDecl)
	if decl.Ident != "add" || len(decl.Params) != 2 || decl.Ret == nil {
		t.Fatalf("proc decl = %+v", decl)
	}
	if len(decl.Body.Stmts) != 1 {
		t.Fatalf("body = %+v", decl.Body.Stmts)
	}
	ret, ok := decl.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("stmt = %T", decl.Body.Stmts[0])
	}
	bin, ok := ret.Expr.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.BinAdd {
		t.Fatalf("return expr = %+v", ret.Expr)
	}
}

func TestParseExternalProcDecl(t *testing.T) {
	mod, bag := parseModule(t, `puts :: (s: string) -> i32 @`)
	mustNoErrors(t, bag)
	decl := mod.Decls[0].(*ast.ProcDecl)
	if !decl.External || decl.Body != nil {
		t.Fatalf("external proc decl = %+v", decl)
	}
}

func TestParseImplDeclBackfillsSelf(t *testing.T) {
	mod, bag := parseModule(t, `
		impl Point {
			length :: (self) -> i32 {
				return self.x;
			}
		}
	`)
	mustNoErrors(t, bag)
	impl := mod.Decls[0].(*ast.ImplDecl)
	if impl.TypeName != "Point" || len(impl.Methods) != 1 {
		t.Fatalf("impl decl = %+v", impl)
	}
	method := impl.Methods[0]
	if method.QualifiedName() != "Point.length" {
		t.Fatalf("qualified name = %s", method.QualifiedName())
	}
	self := method.Params[0]
	if self.Ident != "self" || self.Type == nil || self.Type.Pointer != 1 {
		t.Fatalf("self param = %+v", self)
	}
}

func TestParseGlobalDecl(t *testing.T) {
	mod, bag := parseModule(t, `Max :: 100;`)
	mustNoErrors(t, bag)
	decl := mod.Decls[0].(*ast.GlobalDecl)
	if decl.Ident != "Max" || decl.Expr == nil {
		t.Fatalf("global decl = %+v", decl)
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () -> i32 {
			return 1 + 2 * 3;
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	ret := proc.Body.Stmts[0].(*ast.ReturnStmt)
	top, ok := ret.Expr.(*ast.BinaryExpr)
	if !ok || top.Op != ast.BinAdd {
		t.Fatalf("top = %+v", ret.Expr)
	}
	rhs, ok := top.Rhs.(*ast.BinaryExpr)
	if !ok || rhs.Op != ast.BinMul {
		t.Fatalf("rhs = %+v, want a multiply nested under the add", top.Rhs)
	}
}

func TestParseUnaryChain(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () -> i32 {
			return -!x;
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	ret := proc.Body.Stmts[0].(*ast.ReturnStmt)
	outer, ok := ret.Expr.(*ast.UnaryExpr)
	if !ok || outer.Op != ast.UnaryNeg {
		t.Fatalf("outer = %+v", ret.Expr)
	}
	inner, ok := outer.Rhs.(*ast.UnaryExpr)
	if !ok || inner.Op != ast.UnaryNot {
		t.Fatalf("inner = %+v", outer.Rhs)
	}
}

func TestParseAccessChainAndCall(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () -> i32 {
			return foo.bar(1, 2)[0];
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	ret := proc.Body.Stmts[0].(*ast.ReturnStmt)
	term := ret.Expr.(*ast.TermExpr).Term.(*ast.SomethingTerm)
	s := term.Something
	if s.Ident != "foo" || len(s.Chain) != 2 {
		t.Fatalf("something = %+v", s)
	}
	if s.Chain[0].Kind != ast.AccessCall || len(s.Chain[0].Args) != 2 {
		t.Fatalf("chain[0] = %+v", s.Chain[0])
	}
	if s.Chain[1].Kind != ast.AccessIndex {
		t.Fatalf("chain[1] = %+v", s.Chain[1])
	}
	if s.EndsInCall() {
		t.Fatalf("expected chain to end in an index, not a call")
	}
}

func TestParseCallStatement(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () {
			doit(1, 2);
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	stmt, ok := proc.Body.Stmts[0].(*ast.ProcCallStmt)
	if !ok {
		t.Fatalf("stmt = %T", proc.Body.Stmts[0])
	}
	if stmt.Call.Target.Ident != "doit" || !stmt.Call.Target.IsCall {
		t.Fatalf("call target = %+v", stmt.Call.Target)
	}
}

func TestParseVarDeclAndAssign(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () {
			x: i32 = 1;
			x += 2;
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	decl, ok := proc.Body.Stmts[0].(*ast.VarDeclStmt)
	if !ok || decl.Ident != "x" || decl.AnnType == nil || decl.Init == nil {
		t.Fatalf("decl = %+v", proc.Body.Stmts[0])
	}
	assign, ok := proc.Body.Stmts[1].(*ast.VarAssignStmt)
	if !ok || assign.Op != ast.AssignAdd || assign.Target.Ident != "x" {
		t.Fatalf("assign = %+v", proc.Body.Stmts[1])
	}
}

func TestParseForLoop(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () {
			for i: i32 = 0; i < 10; i += 1 {
			}
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	forStmt, ok := proc.Body.Stmts[0].(*ast.ForStmt)
	if !ok || forStmt.Init == nil || forStmt.Cond == nil || forStmt.Step == nil {
		t.Fatalf("for stmt = %+v", proc.Body.Stmts[0])
	}
}

func TestParseIfElseIf(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () {
			if x {
			} else if y {
			} else {
			}
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	top, ok := proc.Body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("stmt = %T", proc.Body.Stmts[0])
	}
	elseIf, ok := top.Else.(*ast.IfStmt)
	if !ok || elseIf.Else == nil {
		t.Fatalf("else-if chain = %+v", top.Else)
	}
}

func TestParseSwitchStmt(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () {
			switch x {
				1 { }
				2 { }
			}
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	sw, ok := proc.Body.Stmts[0].(*ast.SwitchStmt)
	if !ok || len(sw.Cases) != 2 {
		t.Fatalf("switch = %+v", proc.Body.Stmts[0])
	}
}

func TestParseDeferAndSizeofAndCast(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () -> u64 {
			defer {
				x: i32 = sizeof(i32);
			}
			return cast(u64, 1);
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	deferStmt, ok := proc.Body.Stmts[0].(*ast.DeferStmt)
	if !ok {
		t.Fatalf("stmt0 = %T", proc.Body.Stmts[0])
	}
	inner := deferStmt.Body.Stmts[0].(*ast.VarDeclStmt)
	sizeofTerm := inner.Init.(*ast.TermExpr).Term.(*ast.SizeofTerm)
	if sizeofTerm.Type.Kind.(*ast.BasicType).Kind != ast.I32 {
		t.Fatalf("sizeof type = %+v", sizeofTerm.Type)
	}
	ret := proc.Body.Stmts[1].(*ast.ReturnStmt)
	castTerm := ret.Expr.(*ast.TermExpr).Term.(*ast.CastTerm)
	if castTerm.Type.Kind.(*ast.BasicType).Kind != ast.U64 {
		t.Fatalf("cast type = %+v", castTerm.Type)
	}
}

func TestParseStructInitWithAndWithoutTypeName(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () {
			a: Point = Point{ x: 1, y: 2 };
			b: Point = { x: 3, y: 4 };
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	a := proc.Body.Stmts[0].(*ast.VarDeclStmt)
	aInit := a.Init.(*ast.TermExpr).Term.(*ast.StructInitTerm)
	if aInit.Type == nil || len(aInit.Fields) != 2 {
		t.Fatalf("a init = %+v", aInit)
	}
	b := proc.Body.Stmts[1].(*ast.VarDeclStmt)
	bInit := b.Init.(*ast.TermExpr).Term.(*ast.StructInitTerm)
	if bInit.Type != nil || len(bInit.Fields) != 2 {
		t.Fatalf("b init = %+v", bInit)
	}
}

func TestParseArrayInitLiteral(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () {
			a: [3]i32 = [1, 2, 3];
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	decl := proc.Body.Stmts[0].(*ast.VarDeclStmt)
	arrTy := decl.AnnType.Kind.(*ast.ArrayType)
	if arrTy.Elem.Kind.(*ast.BasicType).Kind != ast.I32 {
		t.Fatalf("array elem type = %+v", arrTy.Elem)
	}
	init := decl.Init.(*ast.TermExpr).Term.(*ast.ArrayInitTerm)
	if len(init.Elems) != 3 {
		t.Fatalf("array init = %+v", init)
	}
}

func TestParseModulePathInDesignator(t *testing.T) {
	mod, bag := parseModule(t, `
		f :: () {
			io::println(1);
		}
	`)
	mustNoErrors(t, bag)
	proc := mod.Decls[0].(*ast.ProcDecl)
	stmt := proc.Body.Stmts[0].(*ast.ProcCallStmt)
	if len(stmt.Call.Target.ModulePath) != 1 || stmt.Call.Target.ModulePath[0] != "io" {
		t.Fatalf("module path = %+v", stmt.Call.Target.ModulePath)
	}
	if stmt.Call.Target.Ident != "println" {
		t.Fatalf("ident = %s", stmt.Call.Target.Ident)
	}
}

func TestParseRecoversFromBadTopLevelDecl(t *testing.T) {
	mod, bag := parseModule(t, `
		%%%
		Max :: 1;
	`)
	if !bag.HasErrors() {
		t.Fatalf("expected a recovery diagnostic")
	}
	found := false
	for _, d := range mod.Decls {
		if _, ok := d.(*ast.GlobalDecl); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("decls = %+v, want the Max decl to still parse", mod.Decls)
	}
}
