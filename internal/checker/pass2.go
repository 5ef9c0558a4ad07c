package checker

import (
	"strings"

	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/source"
)

// pass2 resolves every `use`, validates every declared signature (rewriting
// reachable ast.Type.Kind values from *ast.UnresolvedType to *ast.StructType
// or *ast.EnumType per invariant I2), and locates/validates the main
// procedure. Struct duplicate fields, enum duplicate variants and proc
// duplicate params are diagnosed earlier, at parse time, by decl.go — one
// recovery-unit-scoped check per declaration body, the same place the
// teacher's own parser catches shape errors it can see without a symbol
// table. Only the checks that need cross-module knowledge (use resolution,
// type resolution, enum base-type integerness, main-procedure shape) wait
// for this pass.
func (c *Checker) pass2() {
	for _, mod := range c.Modules {
		info := c.infoFor(mod.Name)
		for _, d := range info.uses {
			c.resolveUse(info, d)
		}
	}

	for _, mod := range c.Modules {
		info := c.infoFor(mod.Name)
		for _, d := range info.structs {
			for i := range d.Fields {
				c.resolveType(info, d.Fields[i].Type)
			}
		}
		for _, d := range info.enums {
			c.checkEnumBaseType(info, d)
		}
		for _, d := range info.procs {
			for i := range d.Params {
				c.resolveType(info, d.Params[i].Type)
			}
			if d.Ret != nil {
				c.resolveType(info, d.Ret)
			}
		}
	}

	c.checkMainProc()
}

// resolveUse looks up d.Symbol in the imported module's struct, enum, proc,
// then global tables in that order (spec.md §4.3 pass 2) and records the
// match by aliasing it into the local module's namespace under d.Alias.
func (c *Checker) resolveUse(info *moduleInfo, d *ast.UseDecl) {
	modName := strings.Join(d.ImportPath, "/")
	target, ok := c.ByName[modName]
	if !ok {
		c.Diags.Report(diag.UseSymbolNotFound, d.S, "use: module not found: "+strings.Join(d.ImportPath, "::"))
		return
	}
	targetInfo := c.infoFor(target.Name)

	if st, ok := targetInfo.structs[d.Symbol]; ok {
		info.structs[d.Alias] = st
		return
	}
	if en, ok := targetInfo.enums[d.Symbol]; ok {
		info.enums[d.Alias] = en
		return
	}
	if pr, ok := targetInfo.procs[d.Symbol]; ok {
		info.procs[d.Alias] = pr
		return
	}
	if gl, ok := targetInfo.globals[d.Symbol]; ok {
		info.globals[d.Alias] = gl
		return
	}
	c.Diags.Report(diag.UseSymbolNotFound, d.S, "use: symbol not found: "+d.Symbol)
}

// resolveType recursively resolves t and everything it wraps (array element,
// procedure-type params/return), rewriting any reachable *ast.UnresolvedType
// to *ast.StructType or *ast.EnumType. The containing declaration is left
// with an unresolved type, and invariant I2 excuses it, exactly when this
// reports ResolveTypeNotFound.
func (c *Checker) resolveType(info *moduleInfo, t *ast.Type) {
	if t == nil {
		return
	}
	switch k := t.Kind.(type) {
	case *ast.ArrayType:
		c.resolveType(info, k.Elem)
	case *ast.ProcedureType:
		for _, p := range k.Params {
			c.resolveType(info, p)
		}
		if k.Ret != nil {
			c.resolveType(info, k.Ret)
		}
	case *ast.UnresolvedType:
		c.resolveUnresolvedType(info, t, k)
	}
}

func (c *Checker) resolveUnresolvedType(info *moduleInfo, t *ast.Type, u *ast.UnresolvedType) {
	target := info
	if len(u.ModulePath) > 0 {
		modName := strings.Join(u.ModulePath, "/")
		mod, ok := c.ByName[modName]
		if !ok {
			c.Diags.Report(diag.ResolveTypeNotFound, t.S, "module not found in type reference: "+strings.Join(u.ModulePath, "::"))
			return
		}
		target = c.infoFor(mod.Name)
	}
	if st, ok := target.structs[u.Ident]; ok {
		t.Kind = &ast.StructType{StructID: st.StructID, Decl: st}
		return
	}
	if en, ok := target.enums[u.Ident]; ok {
		t.Kind = &ast.EnumType{EnumID: en.EnumID, Decl: en}
		return
	}
	c.Diags.Report(diag.ResolveTypeNotFound, t.S, "type not found: "+u.Ident)
}

// checkEnumBaseType resolves an enum's optional base type (recursively, the
// same as any other type reference) and rejects anything but a basic
// integer kind; a missing base type defaults to I32, the same width the
// main procedure's return type is required to be.
func (c *Checker) checkEnumBaseType(info *moduleInfo, d *ast.EnumDecl) {
	if d.BaseType == nil {
		d.BaseType = &ast.Type{Kind: &ast.BasicType{Kind: ast.I32}, S: d.S}
		return
	}
	c.resolveType(info, d.BaseType)
	b, ok := d.BaseType.Kind.(*ast.BasicType)
	if !ok || !b.Kind.IsInteger() || d.BaseType.Pointer != 0 {
		c.Diags.Report(diag.EnumNonIntegerType, d.BaseType.S, "enum base type must be an integer type")
	}
}

// checkMainProc locates "main" in the designated main module and enforces
// spec.md §4.3 pass 2's shape requirements.
func (c *Checker) checkMainProc() {
	mod, ok := c.ByName[c.MainModule]
	if !ok {
		c.Diags.Report(diag.MainFileNotFound, source.Span{}, "main module not found: "+c.MainModule)
		return
	}
	info := c.infoFor(mod.Name)
	main, ok := info.procs["main"]
	if !ok {
		c.Diags.Report(diag.MainProcNotFound, source.Span{}, "no main procedure in module "+c.MainModule)
		return
	}
	if main.External {
		c.Diags.Report(diag.MainProcExternal, main.S, "main must not be external")
	}
	if len(main.Params) != 0 {
		c.Diags.Report(diag.MainNotZeroParams, main.S, "main must take zero parameters")
	}
	if main.Variadic {
		c.Diags.Report(diag.MainProcVariadic, main.S, "main must not be variadic")
	}
	if main.Ret == nil {
		c.Diags.Report(diag.MainProcNoReturnType, main.S, "main must declare a return type")
		return
	}
	if !main.Ret.IsBasic(ast.I32) {
		c.Diags.Report(diag.MainProcWrongReturnType, main.Ret.S, "main must return a 4-byte signed integer")
	}
}
