package ir

import (
	"testing"

	"orelang/internal/ast"
)

func TestAddProcAssignsStableIndexAndID(t *testing.T) {
	prog := &Program{}
	a := &ast.ProcDecl{Ident: "a"}
	b := &ast.ProcDecl{Ident: "b"}
	idA := prog.AddProc(a, "main")
	idB := prog.AddProc(b, "main")
	if idA != 0 || idB != 1 {
		t.Fatalf("ids = %d, %d", idA, idB)
	}
	if a.ProcID != 0 || b.ProcID != 1 {
		t.Fatalf("decl ProcID not backfilled: %d, %d", a.ProcID, b.ProcID)
	}
	if prog.Procs[idA].Decl != a || prog.Procs[idB].Decl != b {
		t.Fatalf("registry entries don't point back at their decls")
	}
}

func TestAddStructAndEnumAndGlobal(t *testing.T) {
	prog := &Program{}
	s := &ast.StructDecl{Ident: "Point"}
	e := &ast.EnumDecl{Ident: "Color"}
	g := &ast.GlobalDecl{Ident: "Max"}

	if id := prog.AddStruct(s, "geo"); id != 0 || s.StructID != 0 {
		t.Fatalf("struct id = %d, decl.StructID = %d", id, s.StructID)
	}
	if id := prog.AddEnum(e, "geo"); id != 0 || e.EnumID != 0 {
		t.Fatalf("enum id = %d, decl.EnumID = %d", id, e.EnumID)
	}
	if id := prog.AddGlobal(g, "geo"); id != 0 || g.GlobalID != 0 {
		t.Fatalf("global id = %d, decl.GlobalID = %d", id, g.GlobalID)
	}
	if len(prog.Structs) != 1 || len(prog.Enums) != 1 || len(prog.Globals) != 1 {
		t.Fatalf("registry sizes = %d, %d, %d", len(prog.Structs), len(prog.Enums), len(prog.Globals))
	}
}
