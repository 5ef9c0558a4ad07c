package checker

import "orelang/internal/ast"

// pass4 forces the constant evaluator over every enum-variant value, every
// struct-field default, and every global initializer. Array-type sizes are
// not part of this sweep: pass 3's layout walk folds the ones it meets while
// sizing struct fields, and a `sizeof` folds the ones under its type, but an
// array size reached by neither (for example in a local variable's type
// annotation) is still NotEvaluated after this pass.
func (c *Checker) pass4() {
	for _, ei := range c.Prog.Enums {
		for i := range ei.Decl.Variants {
			v := &ei.Decl.Variants[i]
			key := enumVariantConstKey(ei.Decl.Ident, v.Ident)
			c.evalConst(v.Value, key, nil, typeContext{expected: ei.Decl.BaseType})
		}
	}

	for _, si := range c.Prog.Structs {
		modInfo := c.infoFor(si.Module)
		for i := range si.Decl.Fields {
			f := &si.Decl.Fields[i]
			if f.Default == nil {
				continue
			}
			key := fieldDefaultConstKey(si.Decl.Ident, f.Ident)
			c.evalConst(f.Default, key, nil, typeContext{module: modInfo, expected: f.Type})
		}
	}

	for _, gi := range c.Prog.Globals {
		modInfo := c.infoFor(gi.Module)
		key := globalConstKey(gi.Module, gi.Decl.Ident)
		c.evalConst(gi.Decl.Expr, key, nil, typeContext{module: modInfo})
		if gi.Decl.Expr.State == ast.ValidLiteral || gi.Decl.Expr.State == ast.ValidEnum {
			gi.Decl.ResolvedType = gi.Decl.Expr.Value.Type
		}
	}
}
