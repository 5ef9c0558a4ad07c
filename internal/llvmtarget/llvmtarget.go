// Package llvmtarget is the one place this repo touches LLVM IR directly:
// a signatures-only hand-off from a checked ir.Program to an
// github.com/llir/llvm module. It declares struct layouts, procedure
// signatures, and globals, and stops there — no instruction is ever
// appended to a function body. Turning Declare's output into an object
// file is the external emitter's job (spec.md §1's non-goal: this repo does
// not emit machine code).
package llvmtarget

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"orelang/internal/ast"
	orir "orelang/internal/ir"
)

// Target keeps track of top-level entities while lowering ir.Program to
// LLVM IR, mirroring the index-maps-over-a-module shape the pack's
// mewspring-toy Generator uses for the same job.
type Target struct {
	prog *orir.Program
	m    *ir.Module

	typeDefs map[int]*types.StructType // keyed by StructID
	funcs    map[int]*ir.Func      // keyed by ProcID
	globals  map[int]*ir.Global        // keyed by GlobalID
}

// Declare builds an LLVM IR module populated with type definitions for
// every sized struct, declarations for every procedure signature, and
// declarations for every global — the full extent of this repo's LLVM
// involvement.
func Declare(prog *orir.Program) *ir.Module {
	t := &Target{
		prog:     prog,
		m:        ir.NewModule(),
		typeDefs: make(map[int]*types.StructType),
		funcs:    make(map[int]*ir.Func),
		globals:  make(map[int]*ir.Global),
	}
	t.declareStructs()
	t.declareProcs()
	t.declareGlobals()
	return t.m
}

func (t *Target) declareStructs() {
	for _, si := range t.prog.Structs {
		if si.Infinite {
			continue
		}
		st := types.NewStruct()
		t.m.NewTypeDef(qualifiedName(si.Module, si.Decl.Ident), st)
		t.typeDefs[si.Decl.StructID] = st
	}
	// Field types are filled in a second pass so a struct that stores
	// another struct by value can resolve a forward reference regardless
	// of declaration order across the program's flat Structs vector.
	for _, si := range t.prog.Structs {
		if si.Infinite {
			continue
		}
		st := t.typeDefs[si.Decl.StructID]
		for _, f := range si.Decl.Fields {
			st.Fields = append(st.Fields, t.llvmType(f.Type))
		}
	}
}

func (t *Target) declareProcs() {
	for _, pi := range t.prog.Procs {
		var ret types.Type = types.Void
		if pi.Decl.Ret != nil {
			ret = t.llvmType(pi.Decl.Ret)
		}
		params := make([]*ir.Param, 0, len(pi.Decl.Params))
		for _, p := range pi.Decl.Params {
			params = append(params, ir.NewParam(p.Ident, t.llvmType(p.Type)))
		}
		fn := t.m.NewFunc(qualifiedName(pi.Module, pi.Decl.QualifiedName()), ret, params...)
		t.funcs[pi.Decl.ProcID] = fn
	}
}

func (t *Target) declareGlobals() {
	for _, gi := range t.prog.Globals {
		var typ types.Type = types.I64
		if gi.Decl.ResolvedType != nil {
			typ = t.llvmType(gi.Decl.ResolvedType)
		}
		g := t.m.NewGlobal(qualifiedName(gi.Module, gi.Decl.Ident), typ)
		g.Init = constant.NewZeroInitializer(typ)
		t.globals[gi.Decl.GlobalID] = g
	}
}

// llvmType maps a resolved *ast.Type to its LLVM IR counterpart. Called
// only after the checker has run, so every reachable Type's Kind is one of
// BasicType/ArrayType/StructType/EnumType/ProcedureType — never
// UnresolvedType (pass 2 rewrites every one of those, invariant I2).
func (t *Target) llvmType(ty *ast.Type) types.Type {
	var base types.Type
	switch k := ty.Kind.(type) {
	case *ast.BasicType:
		base = basicLLVMType(k.Kind)
	case *ast.ArrayType:
		count := uint64(0)
		if k.Size != nil && (k.Size.State == ast.ValidLiteral || k.Size.State == ast.ValidEnum) {
			count = k.Size.Value.UInt
		}
		base = types.NewArray(count, t.llvmType(k.Elem))
	case *ast.StructType:
		if st, ok := t.typeDefs[k.StructID]; ok {
			base = st
		} else {
			base = types.NewStruct()
		}
	case *ast.EnumType:
		if b, ok := k.Decl.BaseType.Kind.(*ast.BasicType); ok {
			base = basicLLVMType(b.Kind)
		} else {
			base = types.I32
		}
	case *ast.ProcedureType:
		var ret types.Type = types.Void
		if k.Ret != nil {
			ret = t.llvmType(k.Ret)
		}
		params := make([]types.Type, 0, len(k.Params))
		for _, p := range k.Params {
			params = append(params, t.llvmType(p))
		}
		base = types.NewPointer(types.NewFunc(ret, params...))
	default:
		base = types.I8
	}
	for i := 0; i < ty.Pointer; i++ {
		base = types.NewPointer(base)
	}
	return base
}

func basicLLVMType(k ast.BasicKind) types.Type {
	switch k {
	case ast.I8, ast.U8:
		return types.I8
	case ast.I16, ast.U16:
		return types.I16
	case ast.I32, ast.U32:
		return types.I32
	case ast.I64, ast.U64:
		return types.I64
	case ast.F32:
		return types.Float
	case ast.F64:
		return types.Double
	case ast.Bool:
		return types.I1
	default:
		// ast.String falls here too: no representation is chosen yet
		// (spec.md §9), so the checker already rejects any struct or array
		// that stores one by value before Declare ever sees it.
		return types.I8
	}
}

func qualifiedName(module, ident string) string {
	return module + "." + ident
}
