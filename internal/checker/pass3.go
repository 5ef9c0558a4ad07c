package checker

import (
	"strings"

	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/ir"
)

// pass3 computes every struct's layout via a depth-first walk through its
// value-typed fields, detecting structs that transitively store themselves
// (invariant I3). Array-type sizes and sizeof expressions encountered along
// the way are folded on demand through the same evalConst machinery pass 4
// formalizes as a named sweep — spec.md's pass ordering puts layout before
// the constant-folding pass, but a struct's array-field sizes are
// themselves constant expressions, so this pass must be able to invoke the
// evaluator early rather than wait for pass 4 to run.
func (c *Checker) pass3() {
	for _, si := range c.Prog.Structs {
		if si.Sized || si.Infinite {
			continue
		}
		c.sizeStruct(si, nil)
	}
}

func (c *Checker) sizeStruct(si *ir.StructInfo, chain []string) {
	if si.Sized {
		return
	}
	if si.Visiting {
		c.Diags.Report(diag.StructInfiniteSize, si.Decl.S, "struct "+si.Decl.Ident+" stores itself by value: "+strings.Join(chain, " -> "))
		si.Infinite = true
		return
	}

	si.Visiting = true
	modInfo := c.infoFor(si.Module)

	offset := 0
	maxAlign := 1
	ok := true
	for i := range si.Decl.Fields {
		f := &si.Decl.Fields[i]
		nextChain := append(append([]string{}, chain...), si.Decl.Ident+"."+f.Ident)
		fsize, falign, fok := c.typeSizeAlign(f.Type, modInfo, nextChain)
		if !fok {
			ok = false
			break
		}
		if falign > 1 && offset%falign != 0 {
			offset += falign - offset%falign
		}
		f.Offset = offset
		offset += fsize
		if falign > maxAlign {
			maxAlign = falign
		}
	}
	si.Visiting = false

	if !ok || si.Infinite {
		return
	}
	if maxAlign > 1 && offset%maxAlign != 0 {
		offset += maxAlign - offset%maxAlign
	}
	si.Decl.Size = offset
	si.Decl.Align = maxAlign
	si.Decl.Sized = true
	si.Sized = true
}

// typeSizeAlign gives t's size and alignment, recursing through arrays and
// struct references (a struct reference triggers sizeStruct on the
// referenced struct if it is not already sized, which is also how the
// infinite-size cycle check above gets exercised for struct-in-struct
// storage). A pointer of any kind has fixed pointer size/alignment and is
// never walked further, per spec.md §4.3's "treating arrays as their
// element type" rule applying only to the value-typed portion of a field.
func (c *Checker) typeSizeAlign(t *ast.Type, modInfo *moduleInfo, chain []string) (int, int, bool) {
	if t.Pointer > 0 {
		return ptrSize, ptrAlign, true
	}
	switch k := t.Kind.(type) {
	case *ast.BasicType:
		if k.Kind == ast.String {
			c.Diags.Report(diag.CompilerInternal, t.S, "string has no representation chosen yet; cannot size it by value")
			return 0, 1, false
		}
		s, a := basicSizeAlign(k.Kind)
		return s, a, true
	case *ast.ArrayType:
		key := constKey(arraySizeLabel(k.Size))
		if !c.evalConst(k.Size, key, nil, typeContext{module: modInfo, expected: u64Type()}) {
			return 0, 1, false
		}
		count := int(k.Size.Value.UInt)
		esize, ealign, ok := c.typeSizeAlign(k.Elem, modInfo, chain)
		if !ok {
			return 0, 1, false
		}
		return esize * count, ealign, true
	case *ast.StructType:
		other := c.Prog.Structs[k.StructID]
		c.sizeStruct(other, chain)
		if other.Infinite {
			return 0, 1, false
		}
		return other.Decl.Size, other.Decl.Align, true
	case *ast.EnumType:
		other := c.Prog.Enums[k.EnumID]
		if b, ok := other.Decl.BaseType.Kind.(*ast.BasicType); ok {
			s, a := basicSizeAlign(b.Kind)
			return s, a, true
		}
		return 4, 4, true
	case *ast.ProcedureType:
		return ptrSize, ptrAlign, true
	default: // *ast.UnresolvedType: pass 2 already marked its owner invalid.
		return 0, 1, false
	}
}
