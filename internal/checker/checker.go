// Package checker is the five-pass semantic checker spec.md §4.3 describes,
// running over the whole program's module set in strict pass order with a
// between-pass error gate (spec.md §5 "the pipeline halts cleanly and no
// later pass runs"). Grounded on the teacher's internal/typecheck package's
// two-pass-forward-reference collection idiom (collect.go), scope-stack
// shape (scope.go) and Type-string/comparison helpers (util.go), adapted to
// operate directly on *ast.Type and *ast.Expr rather than a parallel Type
// system — pass 2 already rewrites ast.Type.Kind in place, so a second
// checker-owned type representation would just be a second source of truth.
package checker

import (
	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/ir"
	"orelang/internal/source"
	"orelang/internal/tree"
)

// declKind tags which of a module's six combined-namespace declaration
// kinds a symbol-table entry belongs to.
type declKind int

const (
	declImport declKind = iota
	declUse
	declStruct
	declEnum
	declProc
	declGlobal
)

// moduleInfo is one module's pass-1 output: its combined declaration
// namespace plus per-kind lookup tables used by every later pass.
type moduleInfo struct {
	mod *ast.Module

	// names is the single flat namespace invariant I1 establishes: every
	// import alias, use alias, struct/enum/proc/global ident (methods keyed
	// by ProcDecl.QualifiedName) competes for the same name within one
	// module. spec.md §4.3 pass 1 says "its combined declaration
	// namespace", read literally here rather than splitting per kind —
	// recorded as an Open Question resolution in DESIGN.md.
	names map[string]declInfo

	imports []*ast.ImportDecl
	uses    map[string]*ast.UseDecl
	structs map[string]*ast.StructDecl
	enums   map[string]*ast.EnumDecl
	procs   map[string]*ast.ProcDecl
	globals map[string]*ast.GlobalDecl
}

type declInfo struct {
	kind declKind
	span source.Span
}

func newModuleInfo(mod *ast.Module) *moduleInfo {
	return &moduleInfo{
		mod:     mod,
		names:   map[string]declInfo{},
		uses:    map[string]*ast.UseDecl{},
		structs: map[string]*ast.StructDecl{},
		enums:   map[string]*ast.EnumDecl{},
		procs:   map[string]*ast.ProcDecl{},
		globals: map[string]*ast.GlobalDecl{},
	}
}

// Checker walks the whole module set. Modules must already be in
// program-module-list order (the filesystem walk order spec.md §5 demands)
// before Run is called; the checker never reorders them.
type Checker struct {
	Modules []*ast.Module
	ByName  map[string]*ast.Module
	Prog    *ir.Program
	Diags   *diag.Bag

	// MainModule is the logical module name ("main") spec.md §6 designates
	// the compilation entry point.
	MainModule string

	infos map[string]*moduleInfo

	// constTree is pass 4's cycle-detection structure; constInFlight maps a
	// constant's key to the tree node representing its in-progress
	// evaluation, so a reference to a constant still in flight is caught by
	// a direct key lookup and its chain is printed from that node.
	constTree     *tree.Tree[constKey]
	constInFlight map[constKey]*tree.Node[constKey]
	constOwner    map[constKey]*ast.ConstevalExpr
}

func New(modules []*ast.Module, mainModule string, prog *ir.Program, diags *diag.Bag) *Checker {
	byName := make(map[string]*ast.Module, len(modules))
	for _, m := range modules {
		byName[m.Name] = m
	}
	return &Checker{
		Modules:       modules,
		ByName:        byName,
		Prog:          prog,
		Diags:         diags,
		MainModule:    mainModule,
		infos:         map[string]*moduleInfo{},
		constTree:     tree.New[constKey]("root"),
		constInFlight: map[constKey]*tree.Node[constKey]{},
		constOwner:    map[constKey]*ast.ConstevalExpr{},
	}
}

// Run drives all five passes in order, stopping at the first between-pass
// gate that finds an error recorded (spec.md §4.3, §5).
func (c *Checker) Run() {
	c.pass1()
	if c.Diags.HasErrors() {
		return
	}
	c.pass2()
	if c.Diags.HasErrors() {
		return
	}
	c.pass3()
	if c.Diags.HasErrors() {
		return
	}
	c.pass4()
	if c.Diags.HasErrors() {
		return
	}
	c.pass5()
}

func (c *Checker) infoFor(moduleName string) *moduleInfo {
	return c.infos[moduleName]
}
