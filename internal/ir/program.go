// Package ir is the Program registry spec.md §4.5 describes: four flat,
// append-only vectors of "IR info" records, one per declaration kind.
// Insertion happens only in pass 1; later passes mutate the records in place
// (struct layout, folded globals, checked procedures) but never reorder or
// remove them. A (kind, index) pair is the canonical cross-module identity
// for the rest of compilation — the index is recorded back onto the owning
// AST node (ProcID/StructID/EnumID/GlobalID) the moment it is assigned.
package ir

import "orelang/internal/ast"

// ProcInfo is one procedure's IR-facing record.
type ProcInfo struct {
	Decl   *ast.ProcDecl
	Module string

	// Checked is set once pass 5 has walked this procedure's body.
	Checked bool
}

// StructInfo is one struct's IR-facing record; Sized/Infinite are pass 3's
// output.
type StructInfo struct {
	Decl   *ast.StructDecl
	Module string

	Visiting bool // pass 3's DFS marker, to detect a cycle through this node
	Sized    bool
	Infinite bool
}

type EnumInfo struct {
	Decl   *ast.EnumDecl
	Module string
}

type GlobalInfo struct {
	Decl   *ast.GlobalDecl
	Module string
}

// Program owns the four vectors. Cross-module references are always
// (kind, index); index stability across the whole pipeline is the point of
// this type existing at all, rather than resolving declarations through
// live AST pointers everywhere.
type Program struct {
	Procs   []*ProcInfo
	Structs []*StructInfo
	Enums   []*EnumInfo
	Globals []*GlobalInfo
}

func (p *Program) AddProc(d *ast.ProcDecl, module string) int {
	id := len(p.Procs)
	p.Procs = append(p.Procs, &ProcInfo{Decl: d, Module: module})
	d.ProcID = id
	return id
}

func (p *Program) AddStruct(d *ast.StructDecl, module string) int {
	id := len(p.Structs)
	p.Structs = append(p.Structs, &StructInfo{Decl: d, Module: module})
	d.StructID = id
	return id
}

func (p *Program) AddEnum(d *ast.EnumDecl, module string) int {
	id := len(p.Enums)
	p.Enums = append(p.Enums, &EnumInfo{Decl: d, Module: module})
	d.EnumID = id
	return id
}

func (p *Program) AddGlobal(d *ast.GlobalDecl, module string) int {
	id := len(p.Globals)
	p.Globals = append(p.Globals, &GlobalInfo{Decl: d, Module: module})
	d.GlobalID = id
	return id
}
