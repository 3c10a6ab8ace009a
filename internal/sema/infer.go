package sema

import (
	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/diag"
	"github.com/OwlyNest/owlyc/internal/types"
)

// inferExpr computes expr's type, annotates expr.Type/IsLValue/
// Addressable, and runs every expression-level check spec section 4.3
// lists. It always returns a (possibly nil) type so callers can keep
// walking without nil-checking at every call site; nil means a
// diagnostic was already reported and the caller should not cascade a
// second one off the same expression.
func (a *Analyzer) inferExpr(scope *ast.Scope, expr *ast.Expr) *types.Type {
	var t *types.Type
	switch e := expr.Data.(type) {
	case *ast.ELiteral:
		t = a.inferLiteral(e)

	case *ast.EIdentifier:
		sym := scope.Lookup(e.Name)
		if sym == nil {
			a.errorf(expr.Loc, diag.IDUndefinedIdentifier, "undefined identifier %q", e.Name)
			return nil
		}
		e.Symbol = sym
		t = sym.Type
		expr.IsLValue = sym.Kind == ast.SymVariable || sym.Kind == ast.SymParameter
		expr.Addressable = expr.IsLValue || sym.Kind == ast.SymFunction

	case *ast.EGrouping:
		t = a.inferExpr(scope, &e.Value)
		expr.IsLValue = e.Value.IsLValue
		expr.Addressable = e.Value.Addressable

	case *ast.EUnary:
		t = a.inferUnary(scope, expr, e)

	case *ast.EBinary:
		t = a.inferBinary(scope, expr, e)

	case *ast.ETernary:
		ct := a.inferExpr(scope, &e.Cond)
		if ct != nil && !ct.IsScalar() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "ternary condition must be scalar, got %s", ct)
		}
		yt := a.inferExpr(scope, &e.Yes)
		nt := a.inferExpr(scope, &e.No)
		if yt != nil && nt != nil && !types.Compatible(yt, nt) {
			a.errorf(expr.Loc, diag.IDTypeMismatch, "ternary branches have incompatible types %s and %s", yt, nt)
		}
		t = yt
		if t == nil {
			t = nt
		}

	case *ast.ECall:
		t = a.inferCall(scope, expr, e)

	case *ast.EMember:
		t = a.inferMember(scope, expr, e)

	case *ast.ESizeof:
		t = a.inferSizeof(scope, e)

	case *ast.ECast:
		t = a.inferCast(scope, expr, e)

	case *ast.ESet:
		for i := range e.Elements {
			a.inferExpr(scope, &e.Elements[i])
		}

	case *ast.EIndex:
		t = a.inferIndex(scope, expr, e)
	}

	expr.Type = t
	return t
}

func (a *Analyzer) inferLiteral(e *ast.ELiteral) *types.Type {
	switch e.Kind {
	case ast.LitInt:
		return a.reg.Builtin("int")
	case ast.LitFloat:
		return a.reg.Builtin("double")
	case ast.LitChar:
		return a.reg.Builtin("char")
	case ast.LitBool:
		return a.reg.Builtin("bool")
	case ast.LitString:
		return a.reg.Pointer(a.reg.Builtin("char"))
	default:
		return nil
	}
}

func (a *Analyzer) inferUnary(scope *ast.Scope, expr *ast.Expr, e *ast.EUnary) *types.Type {
	vt := a.inferExpr(scope, &e.Value)

	switch e.Op {
	case ast.UnOpAddr:
		if !e.Value.IsLValue && !e.Value.Addressable {
			a.errorf(expr.Loc, diag.IDNotAddressable, "cannot take the address of this expression")
			return nil
		}
		if vt == nil {
			return nil
		}
		return a.reg.Pointer(vt)

	case ast.UnOpDeref:
		if vt == nil || !vt.IsPointer() {
			a.errorf(expr.Loc, diag.IDNotAnArrayOrPointer, "cannot dereference a non-pointer")
			return nil
		}
		expr.IsLValue = true
		expr.Addressable = true
		return vt.Pointer.Base

	case ast.UnOpPreInc, ast.UnOpPreDec, ast.UnOpPostInc, ast.UnOpPostDec:
		if !e.Value.IsLValue {
			a.errorf(expr.Loc, diag.IDNotAnLValue, "increment/decrement operand must be an lvalue")
		}
		return vt

	case ast.UnOpNot:
		if vt != nil && !vt.IsScalar() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "'!' requires a scalar operand, got %s", vt)
		}
		return a.reg.Builtin("int")

	case ast.UnOpBitNot:
		if vt != nil && !vt.IsIntegral() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "'~' requires an integral operand, got %s", vt)
		}
		return vt

	case ast.UnOpNeg, ast.UnOpPos:
		if vt != nil && !vt.IsScalar() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "unary %s requires a numeric operand, got %s", e.Op, vt)
		}
		return vt
	}
	return vt
}

func (a *Analyzer) inferBinary(scope *ast.Scope, expr *ast.Expr, e *ast.EBinary) *types.Type {
	if e.Op.IsAssign() {
		lt := a.inferExpr(scope, &e.Left)
		rt := a.inferExpr(scope, &e.Right)
		if !e.Left.IsLValue {
			a.errorf(expr.Loc, diag.IDNotAnLValue, "left side of assignment must be an lvalue")
		}
		if e.Op.IsCompoundAssign() {
			a.checkArithOperands(expr.Loc, e.Op.BinaryOpToCompound(), lt, rt)
		} else {
			a.checkAssignable(expr.Loc, lt, rt, &e.Right)
		}
		return lt
	}

	lt := a.inferExpr(scope, &e.Left)
	rt := a.inferExpr(scope, &e.Right)

	switch e.Op {
	case ast.BinOpLogicalAnd, ast.BinOpLogicalOr:
		if lt != nil && !lt.IsScalar() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "logical operator requires a scalar operand, got %s", lt)
		}
		if rt != nil && !rt.IsScalar() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "logical operator requires a scalar operand, got %s", rt)
		}
		return a.reg.Builtin("int")

	case ast.BinOpEquals, ast.BinOpNotEquals, ast.BinOpLessThan, ast.BinOpLessThanEquals,
		ast.BinOpGreaterThan, ast.BinOpGreaterThanEquals:
		if lt != nil && !lt.IsScalar() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "comparison requires a scalar operand, got %s", lt)
		}
		if rt != nil && !rt.IsScalar() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "comparison requires a scalar operand, got %s", rt)
		}
		return a.reg.Builtin("int")

	case ast.BinOpBitwiseAnd, ast.BinOpBitwiseOr, ast.BinOpBitwiseXor, ast.BinOpShl, ast.BinOpShr:
		if lt != nil && !lt.IsIntegral() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "bitwise operator requires an integral operand, got %s", lt)
		}
		if rt != nil && !rt.IsIntegral() {
			a.errorf(expr.Loc, diag.IDInvalidOperandType, "bitwise operator requires an integral operand, got %s", rt)
		}
		if lt != nil {
			return lt
		}
		return a.reg.Builtin("int")

	default: // +, -, *, /, %
		return a.checkArithOperands(expr.Loc, e.Op, lt, rt)
	}
}

// checkArithOperands validates (and computes the result type of) an
// arithmetic operator's operands, including pointer arithmetic: pointer
// +/- integer yields the pointer type (the integer is scaled by the
// pointee size during lowering, per P10), and pointer-minus-pointer
// yields a signed integer (ptrdiff).
func (a *Analyzer) checkArithOperands(loc ast.Loc, op ast.BinOp, lt, rt *types.Type) *types.Type {
	if lt == nil || rt == nil {
		if lt != nil {
			return lt
		}
		return rt
	}

	if lt.IsPointer() && rt.IsIntegral() && (op == ast.BinOpAdd || op == ast.BinOpSub) {
		return lt
	}
	if rt.IsPointer() && lt.IsIntegral() && op == ast.BinOpAdd {
		return rt
	}
	if lt.IsPointer() && rt.IsPointer() && op == ast.BinOpSub {
		return a.reg.Builtin("long")
	}

	if !lt.IsScalar() || lt.IsPointer() {
		a.errorf(loc, diag.IDInvalidOperandType, "arithmetic operator requires a numeric operand, got %s", lt)
		return rt
	}
	if !rt.IsScalar() || rt.IsPointer() {
		a.errorf(loc, diag.IDInvalidOperandType, "arithmetic operator requires a numeric operand, got %s", rt)
		return lt
	}

	return arithResultType(lt, rt)
}

// arithResultType is Owly's simplified "usual arithmetic conversions":
// float beats int, and within a kind the wider operand wins.
func arithResultType(lt, rt *types.Type) *types.Type {
	if lt.IsFloating() != rt.IsFloating() {
		if lt.IsFloating() {
			return lt
		}
		return rt
	}
	if lt.Size() >= rt.Size() {
		return lt
	}
	return rt
}

func (a *Analyzer) inferCall(scope *ast.Scope, expr *ast.Expr, e *ast.ECall) *types.Type {
	ct := a.inferExpr(scope, &e.Callee)
	for i := range e.Args {
		a.inferExpr(scope, &e.Args[i])
	}
	if ct == nil || ct.Kind != types.KFunction {
		a.errorf(expr.Loc, diag.IDNotCallable, "called object is not a function")
		return nil
	}
	fn := ct.Function
	if len(e.Args) != len(fn.Params) && !(fn.Variadic && len(e.Args) >= len(fn.Params)) {
		a.errorf(expr.Loc, diag.IDArgumentCountMismatch, "expected %d argument(s), got %d", len(fn.Params), len(e.Args))
	}
	for i := range fn.Params {
		if i >= len(e.Args) {
			break
		}
		at := e.Args[i].Type
		if at != nil && !types.Compatible(at, fn.Params[i]) {
			a.errorf(e.Args[i].Loc, diag.IDArgumentTypeMismatch, "argument %d has type %s, expected %s", i+1, at, fn.Params[i])
		}
	}
	return fn.Return
}

func (a *Analyzer) inferMember(scope *ast.Scope, expr *ast.Expr, e *ast.EMember) *types.Type {
	ot := a.inferExpr(scope, &e.Object)
	if ot == nil {
		return nil
	}

	var agg *types.Type
	if e.Arrow {
		if !ot.IsPointer() || !ot.Pointer.Base.IsStructOrUnion() {
			a.errorf(expr.Loc, diag.IDNotAnArrayOrPointer, "'->' requires a pointer to struct/union, got %s", ot)
			return nil
		}
		agg = ot.Pointer.Base
	} else {
		if !ot.IsStructOrUnion() {
			a.errorf(expr.Loc, diag.IDMemberOfNonAggregate, "'.' requires a struct/union, got %s", ot)
			return nil
		}
		if !e.Object.IsLValue && !e.Object.Addressable {
			a.errorf(expr.Loc, diag.IDNotAnLValue, "member access requires an addressable struct/union")
		}
		agg = ot
	}

	var members []types.Field
	if agg.Kind == types.KStruct {
		members = agg.Struct.Members
	} else {
		members = agg.Union.Members
	}
	for i := range members {
		if members[i].Name == e.Name {
			e.Offset = members[i].Offset
			expr.IsLValue = true
			expr.Addressable = true
			return members[i].Type
		}
	}
	a.errorf(expr.Loc, diag.IDNoSuchMember, "no member named %q", e.Name)
	return nil
}

// ensureTypeSpecResolved resolves a TypeSpec that lives inside an
// expression (sizeof's or a cast's type operand) rather than a
// declaration. These never went through pass 1's declaration collection,
// so an inline struct/union/enum needs its tag and scope created here,
// on first use, before resolveTypeSpec can look anything up in it.
func (a *Analyzer) ensureTypeSpecResolved(scope *ast.Scope, ts *ast.TypeSpec) *types.Type {
	if ts.NestedDecl != nil && ts.NestedDecl.Scope == nil {
		a.collectStmt(scope, ts.NestedDecl)
	}
	return a.resolveTypeSpec(scope, ts)
}

func (a *Analyzer) inferSizeof(scope *ast.Scope, e *ast.ESizeof) *types.Type {
	var size uint32
	if e.TypeOperand != nil {
		t := a.ensureTypeSpecResolved(scope, e.TypeOperand)
		if t != nil && t.IsStructOrUnion() {
			complete := t.Struct != nil && t.Struct.Complete
			if t.Kind == types.KUnion {
				complete = t.Union.Complete
			}
			if !complete {
				a.errorf(e.TypeOperand.Loc, diag.IDIncompleteType, "sizeof applied to an incomplete type")
			}
		}
		if t != nil {
			size = t.Size()
		}
	} else if e.ExprOperand != nil {
		et := a.inferExpr(scope, e.ExprOperand)
		if et != nil {
			size = et.Size()
		}
	}
	e.Size = uint64(size)
	return a.reg.Builtin("unsigned long")
}

func (a *Analyzer) inferCast(scope *ast.Scope, expr *ast.Expr, e *ast.ECast) *types.Type {
	vt := a.inferExpr(scope, &e.Value)
	target := a.ensureTypeSpecResolved(scope, e.Target)

	badOperand := func(t *types.Type) bool {
		return t != nil && (t.IsStructOrUnion() || t.Kind == types.KFunction || t.Kind == types.KArray)
	}
	if badOperand(target) {
		a.errorf(expr.Loc, diag.IDInvalidOperandType, "cannot cast to %s", target)
	}
	if badOperand(vt) {
		a.errorf(expr.Loc, diag.IDInvalidOperandType, "cannot cast a value of type %s", vt)
	}
	return target
}

func (a *Analyzer) inferIndex(scope *ast.Scope, expr *ast.Expr, e *ast.EIndex) *types.Type {
	at := a.inferExpr(scope, &e.Array)
	it := a.inferExpr(scope, &e.Index)
	if it != nil && !it.IsIntegral() {
		a.errorf(expr.Loc, diag.IDInvalidOperandType, "array index must be an integer, got %s", it)
	}
	if at == nil {
		return nil
	}
	switch {
	case at.IsArray():
		expr.IsLValue = true
		expr.Addressable = true
		return at.Array.Elem
	case at.IsPointer():
		expr.IsLValue = true
		expr.Addressable = true
		return at.Pointer.Base
	default:
		a.errorf(expr.Loc, diag.IDNotAnArrayOrPointer, "cannot index a value of type %s", at)
		return nil
	}
}
