package checker

import (
	"testing"

	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/ir"
	"orelang/internal/parser"
	"orelang/internal/source"
)

type moduleSource struct {
	name string
	src  string
}

func runChecker(t *testing.T, sources []moduleSource, mainModule string) (*Checker, *diag.Bag) {
	t.Helper()
	bag := &diag.Bag{}
	prog := &ir.Program{}
	var mods []*ast.Module
	for _, m := range sources {
		file := source.NewFile(m.name+".ore", m.src)
		mod := parser.Parse(m.name, file, bag)
		if bag.HasErrors() {
			t.Fatalf("parse errors in %s: %+v", m.name, bag.Items)
		}
		mods = append(mods, mod)
	}
	c := New(mods, mainModule, prog, bag)
	c.Run()
	return c, bag
}

func hasKind(bag *diag.Bag, kind diag.Kind) bool {
	for _, it := range bag.Items {
		if it.Kind == kind {
			return true
		}
	}
	return false
}

func TestCheckerValidProgram(t *testing.T) {
	src := `
		Point :: struct {
			x: i32;
			y: i32;
		}

		Color :: enum {
			Red = 0;
			Green = 1;
		}

		Origin :: Color.Red;

		add :: (a: i32, b: i32) -> i32 {
			return a + b;
		}

		main :: () -> i32 {
			p: Point = Point{ x: 1, y: 2 };
			return add(p.x, p.y);
		}
	`
	c, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items)
	}
	if len(c.Prog.Structs) != 1 {
		t.Fatalf("got %d structs, want 1", len(c.Prog.Structs))
	}
	point := c.Prog.Structs[0]
	if !point.Sized || point.Decl.Size != 8 || point.Decl.Align != 4 {
		t.Fatalf("Point layout = size %d align %d sized %v, want size 8 align 4 sized true", point.Decl.Size, point.Decl.Align, point.Sized)
	}
	for _, pi := range c.Prog.Procs {
		if pi.Decl.External {
			continue
		}
		if !pi.Checked {
			t.Fatalf("procedure %s was never checked", pi.Decl.Ident)
		}
	}
}

func TestCheckerStructInfiniteSize(t *testing.T) {
	src := `
		Node :: struct {
			child: Node;
		}

		main :: () -> i32 {
			return 0;
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if !hasKind(bag, diag.StructInfiniteSize) {
		t.Fatalf("expected StructInfiniteSize, got: %+v", bag.Items)
	}
}

func TestCheckerMainProcNoReturnType(t *testing.T) {
	src := `
		main :: () {
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if !hasKind(bag, diag.MainProcNoReturnType) {
		t.Fatalf("expected MainProcNoReturnType, got: %+v", bag.Items)
	}
}

func TestCheckerNotAllPathsReturn(t *testing.T) {
	src := `
		f :: (x: i32) -> i32 {
			if x > 0 {
				return x;
			}
		}

		main :: () -> i32 {
			return f(1);
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if !hasKind(bag, diag.CfgNotAllPathsReturn) {
		t.Fatalf("expected CfgNotAllPathsReturn, got: %+v", bag.Items)
	}
}

func TestCheckerUnreachableStatement(t *testing.T) {
	src := `
		f :: (x: i32) -> i32 {
			return x;
			return 0;
		}

		main :: () -> i32 {
			return f(1);
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if !hasKind(bag, diag.CfgUnreachableStatement) {
		t.Fatalf("expected CfgUnreachableStatement, got: %+v", bag.Items)
	}
}

func TestCheckerUndeclaredIdentifier(t *testing.T) {
	src := `
		main :: () -> i32 {
			return missing;
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if !hasKind(bag, diag.VarLocalNotFound) {
		t.Fatalf("expected VarLocalNotFound, got: %+v", bag.Items)
	}
}

func TestCheckerBreakOutsideLoop(t *testing.T) {
	src := `
		f :: () -> i32 {
			break;
			return 0;
		}

		main :: () -> i32 {
			return f();
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if !hasKind(bag, diag.CfgBreakOutsideLoop) {
		t.Fatalf("expected CfgBreakOutsideLoop, got: %+v", bag.Items)
	}
}

func TestCheckerUseAcrossModules(t *testing.T) {
	geomSrc := `
		Point :: struct {
			x: i32;
			y: i32;
		}
	`
	mainSrc := `
		import geom;
		use Point = geom::Point;

		main :: () -> i32 {
			p: Point = Point{ x: 3, y: 4 };
			return p.x;
		}
	`
	_, bag := runChecker(t, []moduleSource{
		{name: "geom", src: geomSrc},
		{name: "main", src: mainSrc},
	}, "main")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items)
	}
}

func TestCheckerMainProcVariadic(t *testing.T) {
	src := `
		main :: (..) -> i32 {
			return 0;
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if !hasKind(bag, diag.MainProcVariadic) {
		t.Fatalf("expected MainProcVariadic, got: %+v", bag.Items)
	}
}

func TestCheckerVariadicCallAcceptsExtraArgs(t *testing.T) {
	src := `
		log :: (level: i32, ..) @

		main :: () -> i32 {
			log(1, 2, 3);
			return 0;
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items)
	}
}

func TestCheckerVariadicCallRejectsTooFewArgs(t *testing.T) {
	src := `
		log :: (level: i32, ..) @

		main :: () -> i32 {
			log();
			return 0;
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if !hasKind(bag, diag.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got: %+v", bag.Items)
	}
}

func TestCheckerStringFieldReportsCompilerInternal(t *testing.T) {
	src := `
		Message :: struct {
			text: string;
		}

		main :: () -> i32 {
			return 0;
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if !hasKind(bag, diag.CompilerInternal) {
		t.Fatalf("expected CompilerInternal, got: %+v", bag.Items)
	}
}

func TestCheckerRecordsDeferredStatementsInLIFOOrder(t *testing.T) {
	src := `
		first :: () -> i32 {
			defer {
				a: i32 = 1;
			}
			defer {
				b: i32 = 2;
			}
			return 0;
		}

		main :: () -> i32 {
			return first();
		}
	`
	c, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items)
	}
	var body *ast.BlockStmt
	for _, pi := range c.Prog.Procs {
		if pi.Decl.Ident == "first" {
			body = pi.Decl.Body
		}
	}
	if body == nil {
		t.Fatalf("procedure first not found")
	}
	if len(body.Deferred) != 2 {
		t.Fatalf("got %d deferred statements, want 2", len(body.Deferred))
	}
	first := body.Deferred[0].Body.Stmts[0].(*ast.VarDeclStmt)
	second := body.Deferred[1].Body.Stmts[0].(*ast.VarDeclStmt)
	if first.Ident != "b" || second.Ident != "a" {
		t.Fatalf("expected LIFO order [b, a], got [%s, %s]", first.Ident, second.Ident)
	}
}

func TestCheckerMethodCall(t *testing.T) {
	src := `
		Counter :: struct {
			value: i32;
		}

		impl Counter {
			get :: (self) -> i32 {
				return self.value;
			}
		}

		main :: () -> i32 {
			c: Counter = Counter{ value: 7 };
			return c.get();
		}
	`
	_, bag := runChecker(t, []moduleSource{{name: "main", src: src}}, "main")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items)
	}
}
