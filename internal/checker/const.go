package checker

import (
	"strings"

	"orelang/internal/ast"
	"orelang/internal/diag"
	"orelang/internal/source"
	"orelang/internal/tree"
)

// constKey identifies one Consteval_Expr's position in the dependency tree
// pass 4 uses for cycle detection (spec.md §4.3 pass 4, grounded on
// internal/tree, itself grounded on original_source/compiler/src/general/
// tree.h). Named constants get a readable dotted label; an array-type size
// has no declared name of its own, so it falls back to its node's pointer
// identity.
type constKey string

// typeContext is the Type_Context spec.md §4.3 pass 4 describes: the
// expected target type (nil when the caller has none to offer) and whether
// the position additionally demands a compile-time-constant result (every
// caller in this package does, since only Consteval_Expr ever reaches
// evalConst — the field is carried for parity with the spec's data model).
type typeContext struct {
	module         *moduleInfo
	expected       *ast.Type
	expectConstant bool
}

// evalConst folds ce in place. A prior ValidLiteral/ValidEnum state is the
// memo hit (every Consteval_Expr carries its own folding state, so no
// separate cache is needed); Invalid fails fast. key anchors ce in the
// dependency tree; parent is the in-progress evaluation that needed ce, nil
// when called directly from pass 3's layout walk or pass 4's top-level
// sweep over queued constants.
func (c *Checker) evalConst(ce *ast.ConstevalExpr, key constKey, parent *tree.Node[constKey], ctx typeContext) bool {
	switch ce.State {
	case ast.ValidLiteral, ast.ValidEnum:
		return true
	case ast.Invalid:
		return false
	}

	if isStringLiteral(ce.Expr) {
		ce.State = ast.ValidLiteral
		return true
	}

	if parent == nil {
		parent = c.constTree.Root
	}
	node := tree.AddChild(parent, key)
	c.constInFlight[key] = node
	c.constOwner[key] = ce
	ce.State = ast.Evaluating

	val, ok := c.foldExpr(ce.Expr, node, ctx)
	delete(c.constInFlight, key)
	if !ok {
		ce.State = ast.Invalid
		return false
	}

	ce.Value = val
	if val.Kind == ast.FoldedEnum {
		ce.State = ast.ValidEnum
	} else {
		ce.State = ast.ValidLiteral
	}
	folded := &ast.FoldedExpr{Value: val}
	folded.S = ce.S
	folded.Ty = val.Type
	ce.Expr = folded
	return true
}

func isStringLiteral(e ast.Expr) bool {
	te, ok := e.(*ast.TermExpr)
	if !ok {
		return false
	}
	lit, ok := te.Term.(*ast.LiteralTerm)
	return ok && lit.Kind == ast.LitString
}

func (c *Checker) foldExpr(e ast.Expr, node *tree.Node[constKey], ctx typeContext) (ast.FoldedValue, bool) {
	switch x := e.(type) {
	case *ast.FoldedExpr:
		return x.Value, true
	case *ast.TermExpr:
		return c.foldTerm(x.Term, x.Span(), node, ctx)
	case *ast.UnaryExpr:
		return c.foldUnary(x, node, ctx)
	case *ast.BinaryExpr:
		return c.foldBinary(x, node, ctx)
	}
	c.Diags.Report(diag.ExprExpectedConstant, e.Span(), "expected a compile-time constant expression")
	return ast.FoldedValue{}, false
}

func (c *Checker) foldTerm(t ast.Term, span source.Span, node *tree.Node[constKey], ctx typeContext) (ast.FoldedValue, bool) {
	switch term := t.(type) {
	case *ast.LiteralTerm:
		return c.foldLiteral(term, ctx)
	case *ast.CastTerm:
		return c.foldCast(term, node, ctx)
	case *ast.SizeofTerm:
		return c.foldSizeof(term, ctx)
	case *ast.SomethingTerm:
		return c.foldSomethingConst(term.Something, node, ctx)
	case *ast.CallTerm:
		c.Diags.Report(diag.ConstProcIsNotConst, span, "a procedure call is not a compile-time constant")
		return ast.FoldedValue{}, false
	default:
		c.Diags.Report(diag.ExprExpectedConstant, span, "expression is not a compile-time constant")
		return ast.FoldedValue{}, false
	}
}

// foldLiteral produces a literal's default-typed payload: raw integer
// tokens default to the widest unsigned kind unless the caller's context
// asks for something narrower, floats default to F64 (spec.md §4.3's
// "raw number tokens default to UInt").
func (c *Checker) foldLiteral(lit *ast.LiteralTerm, ctx typeContext) (ast.FoldedValue, bool) {
	switch lit.Kind {
	case ast.LitBool:
		return ast.FoldedValue{Kind: ast.FoldedBool, Bool: lit.Bool, Type: basicType(ast.Bool)}, true
	case ast.LitInt:
		want := ast.U64
		if ctx.expected != nil {
			if b, ok := ctx.expected.Kind.(*ast.BasicType); ok && b.Kind.IsInteger() {
				want = b.Kind
			}
		}
		if !fitsUnsigned(lit.Int, intBits(want)) {
			c.Diags.Report(diag.ConstevalOverflow, lit.S, "integer literal overflows its target type")
			return ast.FoldedValue{}, false
		}
		return ast.FoldedValue{Kind: ast.FoldedUInt, UInt: lit.Int, Type: basicType(want)}, true
	case ast.LitFloat:
		want := ast.F64
		if ctx.expected != nil {
			if b, ok := ctx.expected.Kind.(*ast.BasicType); ok && b.Kind.IsFloat() {
				want = b.Kind
			}
		}
		return ast.FoldedValue{Kind: ast.FoldedFloat, Float: lit.Float, Type: basicType(want)}, true
	default:
		c.Diags.Report(diag.ExprExpectedConstant, lit.S, "literal kind is not foldable")
		return ast.FoldedValue{}, false
	}
}

func (c *Checker) foldUnary(x *ast.UnaryExpr, node *tree.Node[constKey], ctx typeContext) (ast.FoldedValue, bool) {
	val, ok := c.foldExpr(x.Rhs, node, ctx)
	if !ok {
		return ast.FoldedValue{}, false
	}
	switch x.Op {
	case ast.UnaryNot:
		if val.Kind != ast.FoldedBool {
			c.Diags.Report(diag.TypeMismatch, x.Span(), "! requires a bool operand")
			return ast.FoldedValue{}, false
		}
		return ast.FoldedValue{Kind: ast.FoldedBool, Bool: !val.Bool, Type: val.Type}, true
	case ast.UnaryNeg:
		switch val.Kind {
		case ast.FoldedFloat:
			return ast.FoldedValue{Kind: ast.FoldedFloat, Float: -val.Float, Type: val.Type}, true
		case ast.FoldedInt:
			return ast.FoldedValue{Kind: ast.FoldedInt, Int: -val.Int, Type: val.Type}, true
		case ast.FoldedUInt:
			// widening rule: negating a UInt that fits in i64 widens to Int.
			if val.UInt > 1<<63-1 {
				c.Diags.Report(diag.ConstevalOverflow, x.Span(), "negated literal overflows a signed 64-bit integer")
				return ast.FoldedValue{}, false
			}
			return ast.FoldedValue{Kind: ast.FoldedInt, Int: -int64(val.UInt), Type: basicType(ast.I64)}, true
		default:
			c.Diags.Report(diag.TypeMismatch, x.Span(), "- requires a numeric operand")
			return ast.FoldedValue{}, false
		}
	case ast.UnaryBitNot:
		switch val.Kind {
		case ast.FoldedUInt:
			return ast.FoldedValue{Kind: ast.FoldedUInt, UInt: ^val.UInt, Type: val.Type}, true
		case ast.FoldedInt:
			return ast.FoldedValue{Kind: ast.FoldedInt, Int: ^val.Int, Type: val.Type}, true
		default:
			c.Diags.Report(diag.TypeMismatch, x.Span(), "~ requires an integer operand")
			return ast.FoldedValue{}, false
		}
	default: // UnaryAddr, UnaryDeref
		c.Diags.Report(diag.ExprExpectedConstant, x.Span(), "cannot take the address of or dereference a temporary in a constant expression")
		return ast.FoldedValue{}, false
	}
}

func (c *Checker) foldBinary(x *ast.BinaryExpr, node *tree.Node[constKey], ctx typeContext) (ast.FoldedValue, bool) {
	lv, lok := c.foldExpr(x.Lhs, node, ctx)
	rv, rok := c.foldExpr(x.Rhs, node, ctx)
	if !lok || !rok {
		return ast.FoldedValue{}, false
	}
	switch x.Op {
	case ast.BinAnd, ast.BinOr:
		if lv.Kind != ast.FoldedBool || rv.Kind != ast.FoldedBool {
			c.Diags.Report(diag.TypeMismatch, x.Span(), "&&/|| require bool operands")
			return ast.FoldedValue{}, false
		}
		if x.Op == ast.BinAnd {
			return ast.FoldedValue{Kind: ast.FoldedBool, Bool: lv.Bool && rv.Bool, Type: lv.Type}, true
		}
		return ast.FoldedValue{Kind: ast.FoldedBool, Bool: lv.Bool || rv.Bool, Type: lv.Type}, true
	case ast.BinEq, ast.BinNotEq, ast.BinLess, ast.BinLessEq, ast.BinGreater, ast.BinGreaterEq:
		return c.foldCompare(x, lv, rv)
	case ast.BinBitAnd, ast.BinBitOr, ast.BinBitXor, ast.BinShl, ast.BinShr:
		return c.foldBitwise(x, lv, rv)
	default:
		return c.foldArith(x, lv, rv)
	}
}

func (c *Checker) foldCompare(x *ast.BinaryExpr, lv, rv ast.FoldedValue) (ast.FoldedValue, bool) {
	if lv.Kind != rv.Kind {
		c.Diags.Report(diag.TypeMismatch, x.Span(), "comparison requires operands of the same kind")
		return ast.FoldedValue{}, false
	}
	var result bool
	switch lv.Kind {
	case ast.FoldedBool:
		result = compareBool(x.Op, lv.Bool, rv.Bool)
	case ast.FoldedInt:
		result = compareOrdered(x.Op, lv.Int, rv.Int)
	case ast.FoldedUInt:
		result = compareOrdered(x.Op, lv.UInt, rv.UInt)
	case ast.FoldedFloat:
		result = compareOrdered(x.Op, lv.Float, rv.Float)
	default:
		c.Diags.Report(diag.TypeMismatch, x.Span(), "operand kind is not comparable")
		return ast.FoldedValue{}, false
	}
	return ast.FoldedValue{Kind: ast.FoldedBool, Bool: result, Type: basicType(ast.Bool)}, true
}

func compareBool(op ast.BinaryOp, a, b bool) bool {
	switch op {
	case ast.BinEq:
		return a == b
	case ast.BinNotEq:
		return a != b
	default:
		return false
	}
}

type ordered interface{ ~int64 | ~uint64 | ~float64 }

func compareOrdered[T ordered](op ast.BinaryOp, a, b T) bool {
	switch op {
	case ast.BinEq:
		return a == b
	case ast.BinNotEq:
		return a != b
	case ast.BinLess:
		return a < b
	case ast.BinLessEq:
		return a <= b
	case ast.BinGreater:
		return a > b
	case ast.BinGreaterEq:
		return a >= b
	default:
		return false
	}
}

// foldBitwise requires unsigned-integer operands for every bitwise form
// (spec.md §4.3: "bitwise & | ^ << >> are unsigned-integer only").
func (c *Checker) foldBitwise(x *ast.BinaryExpr, lv, rv ast.FoldedValue) (ast.FoldedValue, bool) {
	if lv.Kind != ast.FoldedUInt || rv.Kind != ast.FoldedUInt {
		c.Diags.Report(diag.TypeMismatch, x.Span(), "bitwise operators require unsigned integer operands")
		return ast.FoldedValue{}, false
	}
	var result uint64
	switch x.Op {
	case ast.BinBitAnd:
		result = lv.UInt & rv.UInt
	case ast.BinBitOr:
		result = lv.UInt | rv.UInt
	case ast.BinBitXor:
		result = lv.UInt ^ rv.UInt
	case ast.BinShl:
		result = lv.UInt << rv.UInt
	case ast.BinShr:
		result = lv.UInt >> rv.UInt
	}
	return ast.FoldedValue{Kind: ast.FoldedUInt, UInt: result, Type: lv.Type}, true
}

func (c *Checker) foldArith(x *ast.BinaryExpr, lv, rv ast.FoldedValue) (ast.FoldedValue, bool) {
	if lv.Kind == ast.FoldedBool || rv.Kind == ast.FoldedBool {
		c.Diags.Report(diag.TypeMismatch, x.Span(), "arithmetic requires a non-bool operand")
		return ast.FoldedValue{}, false
	}
	if x.Op == ast.BinMod {
		if lv.Kind != ast.FoldedUInt && lv.Kind != ast.FoldedInt {
			c.Diags.Report(diag.TypeMismatch, x.Span(), "%% requires integer operands")
			return ast.FoldedValue{}, false
		}
	}
	if lv.Kind != rv.Kind {
		c.Diags.Report(diag.TypeMismatch, x.Span(), "arithmetic requires operands of the same kind")
		return ast.FoldedValue{}, false
	}
	switch lv.Kind {
	case ast.FoldedFloat:
		return c.foldArithFloat(x, lv, rv)
	case ast.FoldedInt:
		return c.foldArithInt(x, lv, rv)
	case ast.FoldedUInt:
		return c.foldArithUInt(x, lv, rv)
	default:
		c.Diags.Report(diag.TypeMismatch, x.Span(), "operand kind does not support arithmetic")
		return ast.FoldedValue{}, false
	}
}

func (c *Checker) foldArithFloat(x *ast.BinaryExpr, lv, rv ast.FoldedValue) (ast.FoldedValue, bool) {
	var r float64
	switch x.Op {
	case ast.BinAdd:
		r = lv.Float + rv.Float
	case ast.BinSub:
		r = lv.Float - rv.Float
	case ast.BinMul:
		r = lv.Float * rv.Float
	case ast.BinDiv:
		if rv.Float == 0 {
			c.Diags.Report(diag.ConstevalZeroDiv, x.Span(), "division by zero")
			return ast.FoldedValue{}, false
		}
		r = lv.Float / rv.Float
	default:
		c.Diags.Report(diag.TypeMismatch, x.Span(), "operator does not apply to float operands")
		return ast.FoldedValue{}, false
	}
	if r != r { // NaN
		c.Diags.Report(diag.ConstevalNan, x.Span(), "operation produced NaN")
		return ast.FoldedValue{}, false
	}
	return ast.FoldedValue{Kind: ast.FoldedFloat, Float: r, Type: lv.Type}, true
}

func (c *Checker) foldArithInt(x *ast.BinaryExpr, lv, rv ast.FoldedValue) (ast.FoldedValue, bool) {
	var r int64
	switch x.Op {
	case ast.BinAdd:
		r = lv.Int + rv.Int
	case ast.BinSub:
		r = lv.Int - rv.Int
	case ast.BinMul:
		r = lv.Int * rv.Int
	case ast.BinDiv:
		if rv.Int == 0 {
			c.Diags.Report(diag.ConstevalZeroDiv, x.Span(), "division by zero")
			return ast.FoldedValue{}, false
		}
		r = lv.Int / rv.Int
	case ast.BinMod:
		if rv.Int == 0 {
			c.Diags.Report(diag.ConstevalZeroDiv, x.Span(), "modulo by zero")
			return ast.FoldedValue{}, false
		}
		r = lv.Int % rv.Int
	default:
		c.Diags.Report(diag.TypeMismatch, x.Span(), "operator does not apply to integer operands")
		return ast.FoldedValue{}, false
	}
	return ast.FoldedValue{Kind: ast.FoldedInt, Int: r, Type: lv.Type}, true
}

func (c *Checker) foldArithUInt(x *ast.BinaryExpr, lv, rv ast.FoldedValue) (ast.FoldedValue, bool) {
	var r uint64
	switch x.Op {
	case ast.BinAdd:
		r = lv.UInt + rv.UInt
	case ast.BinSub:
		if rv.UInt > lv.UInt {
			c.Diags.Report(diag.ConstevalOverflow, x.Span(), "unsigned subtraction underflows")
			return ast.FoldedValue{}, false
		}
		r = lv.UInt - rv.UInt
	case ast.BinMul:
		r = lv.UInt * rv.UInt
	case ast.BinDiv:
		if rv.UInt == 0 {
			c.Diags.Report(diag.ConstevalZeroDiv, x.Span(), "division by zero")
			return ast.FoldedValue{}, false
		}
		r = lv.UInt / rv.UInt
	case ast.BinMod:
		if rv.UInt == 0 {
			c.Diags.Report(diag.ConstevalZeroDiv, x.Span(), "modulo by zero")
			return ast.FoldedValue{}, false
		}
		r = lv.UInt % rv.UInt
	default:
		c.Diags.Report(diag.TypeMismatch, x.Span(), "operator does not apply to unsigned operands")
		return ast.FoldedValue{}, false
	}
	return ast.FoldedValue{Kind: ast.FoldedUInt, UInt: r, Type: lv.Type}, true
}

func (c *Checker) foldCast(term *ast.CastTerm, node *tree.Node[constKey], ctx typeContext) (ast.FoldedValue, bool) {
	val, ok := c.foldExpr(term.Value, node, typeContext{module: ctx.module})
	if !ok {
		return ast.FoldedValue{}, false
	}
	bt, isBasic := term.Type.Kind.(*ast.BasicType)
	if !isBasic || term.Type.Pointer != 0 {
		c.Diags.Report(diag.CastExprNonBasicBasicType, term.Span(), "cast target must be a basic type")
		return ast.FoldedValue{}, false
	}
	if val.Kind == ast.FoldedBool {
		c.Diags.Report(diag.CastExprBoolBasicType, term.Span(), "cannot cast a bool operand")
		return ast.FoldedValue{}, false
	}
	if bt.Kind == ast.Bool {
		c.Diags.Report(diag.CastIntoBoolBasicType, term.Span(), "cannot cast into bool")
		return ast.FoldedValue{}, false
	}
	if bt.Kind == ast.String {
		c.Diags.Report(diag.CastIntoStringBasicType, term.Span(), "cannot cast into string")
		return ast.FoldedValue{}, false
	}
	if bt.Kind.IsFloat() {
		if val.Kind == ast.FoldedFloat && val.Type != nil && val.Type.IsBasic(bt.Kind) {
			c.Diags.Report(diag.CastRedundantFloatCast, term.Span(), "redundant cast to the same float type")
		}
		var f float64
		switch val.Kind {
		case ast.FoldedFloat:
			f = val.Float
		case ast.FoldedInt:
			f = float64(val.Int)
		case ast.FoldedUInt:
			f = float64(val.UInt)
		}
		return ast.FoldedValue{Kind: ast.FoldedFloat, Float: f, Type: term.Type}, true
	}
	if (val.Kind == ast.FoldedInt || val.Kind == ast.FoldedUInt) && val.Type != nil && val.Type.IsBasic(bt.Kind) {
		c.Diags.Report(diag.CastRedundantIntegerCast, term.Span(), "redundant cast to the same integer type")
	}
	if bt.Kind.IsUnsigned() {
		var u uint64
		switch val.Kind {
		case ast.FoldedInt:
			u = uint64(val.Int)
		case ast.FoldedUInt:
			u = val.UInt
		case ast.FoldedFloat:
			u = uint64(val.Float)
		}
		if !fitsUnsigned(u, intBits(bt.Kind)) {
			c.Diags.Report(diag.ConstevalOverflow, term.Span(), "cast result overflows target type")
			return ast.FoldedValue{}, false
		}
		return ast.FoldedValue{Kind: ast.FoldedUInt, UInt: u, Type: term.Type}, true
	}
	var i int64
	switch val.Kind {
	case ast.FoldedInt:
		i = val.Int
	case ast.FoldedUInt:
		i = int64(val.UInt)
	case ast.FoldedFloat:
		i = int64(val.Float)
	}
	if !fitsSigned(i, intBits(bt.Kind)) {
		c.Diags.Report(diag.ConstevalOverflow, term.Span(), "cast result overflows target type")
		return ast.FoldedValue{}, false
	}
	return ast.FoldedValue{Kind: ast.FoldedInt, Int: i, Type: term.Type}, true
}

func (c *Checker) foldSizeof(term *ast.SizeofTerm, ctx typeContext) (ast.FoldedValue, bool) {
	size, _, ok := c.typeSizeAlign(term.Type, ctx.module, nil)
	if !ok {
		return ast.FoldedValue{}, false
	}
	return ast.FoldedValue{Kind: ast.FoldedUInt, UInt: uint64(size), Type: u64Type()}, true
}

// foldSomethingConst resolves a bare or module-prefixed designator that must
// name either a global constant or, when followed by a single `.variant`
// link, an enum's variant.
func (c *Checker) foldSomethingConst(s *ast.Something, node *tree.Node[constKey], ctx typeContext) (ast.FoldedValue, bool) {
	target := ctx.module
	if len(s.ModulePath) > 0 {
		modName := strings.Join(s.ModulePath, "/")
		mod, ok := c.ByName[modName]
		if !ok {
			c.Diags.Report(diag.ConstVarIsNotGlobal, s.S, "module not found: "+strings.Join(s.ModulePath, "::"))
			return ast.FoldedValue{}, false
		}
		target = c.infoFor(mod.Name)
	}

	if len(s.Chain) == 1 && s.Chain[0].Kind == ast.AccessField && !s.IsCall {
		if en, ok := target.enums[s.Ident]; ok {
			return c.foldEnumVariantRef(en, s.Chain[0].Ident, node, s.S)
		}
	}

	if len(s.Chain) == 0 && !s.IsCall {
		if g, ok := target.globals[s.Ident]; ok {
			return c.foldGlobalRef(g, target, node)
		}
		if pr, ok := target.procs[s.Ident]; ok {
			c.Diags.Report(diag.ConstProcIsNotConst, s.S, "procedure "+pr.Ident+" is not a compile-time constant")
			return ast.FoldedValue{}, false
		}
	}

	c.Diags.Report(diag.ConstVarIsNotGlobal, s.S, "reference is not a compile-time constant")
	return ast.FoldedValue{}, false
}

func (c *Checker) foldGlobalRef(g *ast.GlobalDecl, modInfo *moduleInfo, parent *tree.Node[constKey]) (ast.FoldedValue, bool) {
	key := globalConstKey(modInfo.mod.Name, g.Ident)
	if n, inflight := c.constInFlight[key]; inflight {
		c.reportCycle(n)
		g.Expr.State = ast.Invalid
		return ast.FoldedValue{}, false
	}
	if !c.evalConst(g.Expr, key, parent, typeContext{module: modInfo}) {
		return ast.FoldedValue{}, false
	}
	return g.Expr.Value, true
}

func (c *Checker) foldEnumVariantRef(en *ast.EnumDecl, variantName string, parent *tree.Node[constKey], span source.Span) (ast.FoldedValue, bool) {
	idx := -1
	for i, v := range en.Variants {
		if v.Ident == variantName {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.Diags.Report(diag.ResolveEnumVariantNotFound, span, "enum "+en.Ident+" has no variant "+variantName)
		return ast.FoldedValue{}, false
	}
	variant := &en.Variants[idx]
	key := enumVariantConstKey(en.Ident, variant.Ident)
	if n, inflight := c.constInFlight[key]; inflight {
		c.reportCycle(n)
		variant.Value.State = ast.Invalid
		return ast.FoldedValue{}, false
	}
	if !c.evalConst(variant.Value, key, parent, typeContext{expected: en.BaseType}) {
		return ast.FoldedValue{}, false
	}
	base := variant.Value.Value
	return ast.FoldedValue{
		Kind:    ast.FoldedEnum,
		UInt:    base.UInt,
		Int:     base.Int,
		EnumID:  en.EnumID,
		Variant: idx,
		Type:    &ast.Type{Kind: &ast.EnumType{EnumID: en.EnumID, Decl: en}},
	}, true
}

// reportCycle prints the dependency chain root-first (spec.md §4.3 pass 4)
// and marks every constant on it Invalid, so no later reference re-derives
// the same cycle.
func (c *Checker) reportCycle(n *tree.Node[constKey]) {
	path := tree.PathToRoot(n)
	parts := make([]string, 0, len(path))
	for _, k := range path {
		parts = append(parts, string(k))
	}
	c.Diags.Report(diag.ConstevalDependencyCycle, source.Span{}, "constant dependency cycle: "+strings.Join(parts, " -> "))
	for _, k := range path {
		if owner, ok := c.constOwner[k]; ok {
			owner.State = ast.Invalid
		}
	}
}
