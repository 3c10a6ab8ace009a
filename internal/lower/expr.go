package lower

import (
	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/ir"
	"github.com/OwlyNest/owlyc/internal/types"
)

// lowerExpr lowers expr into b (or whatever block control has moved to
// by the time it returns -- short-circuit and ternary operators split
// control flow mid-expression) and returns the resulting value. When
// wantLValueAddr is true the caller wants expr's address rather than its
// loaded value: lowerExpr returns a pointer-typed Value pointing at the
// storage the expression names, and the caller is responsible for
// issuing its own Load or Store against it. Every lvalue-producing case
// below (identifier, deref, member, index) branches on wantLValueAddr at
// its own leaf rather than the caller wrapping a generic "take the
// address of whatever came back", since each one computes its address
// differently.
func (l *Lowerer) lowerExpr(f *ir.Function, b *ir.Block, expr *ast.Expr, wantLValueAddr bool) (*ir.Value, *ir.Block) {
	switch e := expr.Data.(type) {
	case *ast.ELiteral:
		return l.lowerLiteral(expr, e), b

	case *ast.EIdentifier:
		return l.lowerIdentifier(f, b, expr, e, wantLValueAddr)

	case *ast.EGrouping:
		return l.lowerExpr(f, b, &e.Value, wantLValueAddr)

	case *ast.EUnary:
		return l.lowerUnary(f, b, expr, e, wantLValueAddr)

	case *ast.EBinary:
		return l.lowerBinary(f, b, expr, e)

	case *ast.ETernary:
		return l.lowerTernary(f, b, expr, e)

	case *ast.ECall:
		return l.lowerCall(f, b, expr, e)

	case *ast.EMember:
		return l.lowerMember(f, b, expr, e, wantLValueAddr)

	case *ast.ESizeof:
		return ir.ConstInt(int64(e.Size), expr.Type), b

	case *ast.ECast:
		return l.lowerCast(f, b, expr, e)

	case *ast.EIndex:
		return l.lowerIndex(f, b, expr, e, wantLValueAddr)

	case *ast.ESet:
		// A brace set only reaches lowerExpr as a standalone expression
		// (array-initializer sets are consumed directly by
		// lowerLocalArrayDecl); lower elements for any side effects and
		// produce undef, since a bare compound literal has no single
		// scalar value to hand back.
		cur := b
		for i := range e.Elements {
			_, cur = l.lowerExpr(f, cur, &e.Elements[i], false)
		}
		return ir.Undef(expr.Type), cur

	default:
		return ir.Undef(expr.Type), b
	}
}

func (l *Lowerer) lowerLiteral(expr *ast.Expr, e *ast.ELiteral) *ir.Value {
	switch e.Kind {
	case ast.LitInt, ast.LitChar, ast.LitBool:
		return ir.ConstInt(e.Int, expr.Type)
	case ast.LitFloat:
		return ir.ConstFloat(e.Float, expr.Type)
	case ast.LitString:
		return l.mod.InternString(e.Str, expr.Type)
	default:
		return ir.Undef(expr.Type)
	}
}

// lowerIdentifier resolves a name reference via the Symbol sema attached
// to it in pass 3 (internal/sema/infer.go), rather than re-walking the
// scope tree: an enum member short-circuits straight to an immediate
// constant, a function name becomes a bare global reference (only a call
// site loads through it), and a variable/parameter goes through its
// alloca'd slot -- the local VarMap first, falling back to a module
// global for a name lowerFunction's own VarMap never bound.
func (l *Lowerer) lowerIdentifier(f *ir.Function, b *ir.Block, expr *ast.Expr, e *ast.EIdentifier, wantLValueAddr bool) (*ir.Value, *ir.Block) {
	sym := e.Symbol
	if sym != nil && sym.IsConstant {
		return ir.ConstInt(sym.ConstValue, expr.Type), b
	}
	if sym != nil && sym.Kind == ast.SymFunction {
		return ir.Global(e.Name, expr.Type), b
	}

	slot, ok := f.VarMap[e.Name]
	if !ok {
		slot, ok = l.globals[e.Name]
	}
	if !ok {
		// Undeclared by the time lowering runs means sema already reported
		// it; hand back undef so lowering can keep walking the rest of the
		// function instead of panicking on a nil slot.
		return ir.Undef(expr.Type), b
	}
	if wantLValueAddr {
		return slot, b
	}
	return b.Load(f, slot, expr.Type), b
}

func (l *Lowerer) lowerUnary(f *ir.Function, b *ir.Block, expr *ast.Expr, e *ast.EUnary, wantLValueAddr bool) (*ir.Value, *ir.Block) {
	switch e.Op {
	case ast.UnOpAddr:
		return l.lowerExpr(f, b, &e.Value, true)

	case ast.UnOpDeref:
		ptr, b := l.lowerExpr(f, b, &e.Value, false)
		if wantLValueAddr {
			return ptr, b
		}
		return b.Load(f, ptr, expr.Type), b

	case ast.UnOpPreInc, ast.UnOpPreDec, ast.UnOpPostInc, ast.UnOpPostDec:
		addr, b := l.lowerExpr(f, b, &e.Value, true)
		old := b.Load(f, addr, e.Value.Type)
		step := l.stepValue(e.Value.Type)
		op := ir.OpAdd
		if e.Op == ast.UnOpPreDec || e.Op == ast.UnOpPostDec {
			op = ir.OpSub
		}
		updated := b.BinOp(f, op, old, step, e.Value.Type)
		b.Store(addr, updated)
		if e.Op == ast.UnOpPreInc || e.Op == ast.UnOpPreDec {
			return updated, b
		}
		return old, b

	case ast.UnOpNot:
		val, b := l.lowerExpr(f, b, &e.Value, false)
		zero := ir.ConstInt(0, e.Value.Type)
		return b.Cmp(f, ir.OpEq, val, zero, expr.Type), b

	case ast.UnOpBitNot:
		val, b := l.lowerExpr(f, b, &e.Value, false)
		return b.UnOp(f, ir.OpNot, val, expr.Type), b

	case ast.UnOpNeg:
		val, b := l.lowerExpr(f, b, &e.Value, false)
		return b.UnOp(f, ir.OpNeg, val, expr.Type), b

	case ast.UnOpPos:
		return l.lowerExpr(f, b, &e.Value, false)

	default:
		return l.lowerExpr(f, b, &e.Value, false)
	}
}

// stepValue is the +1/-1 operand ++/-- combine with: for a pointer
// operand it's the pointee size (P10's pointer-arithmetic scaling), for
// everything else it's a plain 1 of the operand's own type.
func (l *Lowerer) stepValue(t *types.Type) *ir.Value {
	if t != nil && t.IsPointer() {
		return ir.ConstInt(int64(t.Pointer.Base.Size()), l.reg.Builtin("long"))
	}
	return ir.ConstInt(1, t)
}

func (l *Lowerer) lowerBinary(f *ir.Function, b *ir.Block, expr *ast.Expr, e *ast.EBinary) (*ir.Value, *ir.Block) {
	switch {
	case e.Op == ast.BinOpAssign:
		addr, b := l.lowerExpr(f, b, &e.Left, true)
		val, b2 := l.lowerExpr(f, b, &e.Right, false)
		b2.Store(addr, val)
		return val, b2

	case e.Op.IsCompoundAssign():
		addr, b := l.lowerExpr(f, b, &e.Left, true)
		cur := b.Load(f, addr, e.Left.Type)
		rhs, b2 := l.lowerExpr(f, b, &e.Right, false)
		combined := l.arith(f, b2, e.Op.BinaryOpToCompound(), e.Left.Type, e.Right.Type, expr.Type, cur, rhs)
		b2.Store(addr, combined)
		return combined, b2

	case e.Op == ast.BinOpLogicalAnd:
		return l.lowerLogical(f, b, expr, e, true)

	case e.Op == ast.BinOpLogicalOr:
		return l.lowerLogical(f, b, expr, e, false)

	default:
		lv, b := l.lowerExpr(f, b, &e.Left, false)
		rv, b2 := l.lowerExpr(f, b, &e.Right, false)
		return l.arith(f, b2, e.Op, e.Left.Type, e.Right.Type, expr.Type, lv, rv), b2
	}
}

// lowerLogical lowers `&&`/`||` through a merge block with a phi (P9),
// short-circuiting so the right operand is never evaluated once the
// left side already decided the result.
func (l *Lowerer) lowerLogical(f *ir.Function, b *ir.Block, expr *ast.Expr, e *ast.EBinary, isAnd bool) (*ir.Value, *ir.Block) {
	lhs, b := l.lowerExpr(f, b, &e.Left, false)

	rhsB := f.NewBlock("logic.rhs")
	cont := f.NewBlock("logic.cont")

	var shortCircuit *ir.Value
	if isAnd {
		shortCircuit = ir.ConstInt(0, expr.Type)
		b.Branch(lhs, rhsB, cont)
	} else {
		shortCircuit = ir.ConstInt(1, expr.Type)
		b.Branch(lhs, cont, rhsB)
	}
	shortCircuitPred := b

	rhs, rhsOut := l.lowerExpr(f, rhsB, &e.Right, false)
	zero := ir.ConstInt(0, e.Right.Type)
	rhsBool := rhsOut.Cmp(f, ir.OpNe, rhs, zero, expr.Type)
	if !rhsOut.Terminated() {
		rhsOut.Jump(cont)
	}

	result := cont.Phi(f, expr.Type, []ir.PhiEdge{
		{Block: shortCircuitPred, Value: shortCircuit},
		{Block: rhsOut, Value: rhsBool},
	})
	return result, cont
}

// arith lowers a non-assignment, non-logical binary operator, handling
// the opcode choice by signedness/floating-ness and pointer-arithmetic
// scaling (P10): pointer +/- integer scales the integer operand by the
// pointee size before adding, and pointer-minus-pointer divides the raw
// byte difference by the pointee size to produce an element count.
func (l *Lowerer) arith(f *ir.Function, b *ir.Block, op ast.BinOp, lt, rt, resultType *types.Type, lv, rv *ir.Value) *ir.Value {
	if lt != nil && lt.IsPointer() && rt != nil && rt.IsIntegral() && (op == ast.BinOpAdd || op == ast.BinOpSub) {
		scaled := l.scaleIndex(f, b, rv, lt.Pointer.Base)
		return b.BinOp(f, opForBinary(op, lt), lv, scaled, resultType)
	}
	if rt != nil && rt.IsPointer() && lt != nil && lt.IsIntegral() && op == ast.BinOpAdd {
		scaled := l.scaleIndex(f, b, lv, rt.Pointer.Base)
		return b.BinOp(f, ir.OpAdd, rv, scaled, resultType)
	}
	if lt != nil && lt.IsPointer() && rt != nil && rt.IsPointer() && op == ast.BinOpSub {
		elemSize := int64(lt.Pointer.Base.Size())
		if elemSize == 0 {
			elemSize = 1
		}
		diff := b.BinOp(f, ir.OpSub, lv, rv, resultType)
		return b.BinOp(f, ir.OpSDiv, diff, ir.ConstInt(elemSize, resultType), resultType)
	}

	switch op {
	case ast.BinOpEquals, ast.BinOpNotEquals, ast.BinOpLessThan, ast.BinOpLessThanEquals,
		ast.BinOpGreaterThan, ast.BinOpGreaterThanEquals:
		signed := lt == nil || lt.IsSigned()
		return b.Cmp(f, opForCompare(op, signed), lv, rv, resultType)
	default:
		return b.BinOp(f, opForBinary(op, lt), lv, rv, resultType)
	}
}

// scaleIndex multiplies an integer index/offset operand by elem's size,
// the scaling P10 requires before pointer arithmetic's underlying add.
func (l *Lowerer) scaleIndex(f *ir.Function, b *ir.Block, idx *ir.Value, elem *types.Type) *ir.Value {
	size := int64(elem.Size())
	if size == 1 {
		return idx
	}
	return b.BinOp(f, ir.OpMul, idx, ir.ConstInt(size, idx.Type), idx.Type)
}

func opForBinary(op ast.BinOp, t *types.Type) ir.Op {
	switch op {
	case ast.BinOpAdd:
		return ir.OpAdd
	case ast.BinOpSub:
		return ir.OpSub
	case ast.BinOpMul:
		return ir.OpMul
	case ast.BinOpDiv:
		if t != nil && !t.IsSigned() {
			return ir.OpUDiv
		}
		return ir.OpSDiv
	case ast.BinOpMod:
		if t != nil && !t.IsSigned() {
			return ir.OpUMod
		}
		return ir.OpSMod
	case ast.BinOpBitwiseAnd:
		return ir.OpAnd
	case ast.BinOpBitwiseOr:
		return ir.OpOr
	case ast.BinOpBitwiseXor:
		return ir.OpXor
	case ast.BinOpShl:
		return ir.OpShl
	case ast.BinOpShr:
		if t != nil && !t.IsSigned() {
			return ir.OpShr
		}
		return ir.OpSar
	default:
		return ir.OpAdd
	}
}

func opForCompare(op ast.BinOp, signed bool) ir.Op {
	switch op {
	case ast.BinOpEquals:
		return ir.OpEq
	case ast.BinOpNotEquals:
		return ir.OpNe
	case ast.BinOpLessThan:
		if signed {
			return ir.OpSlt
		}
		return ir.OpUlt
	case ast.BinOpLessThanEquals:
		if signed {
			return ir.OpSle
		}
		return ir.OpUle
	case ast.BinOpGreaterThan:
		if signed {
			return ir.OpSgt
		}
		return ir.OpUgt
	case ast.BinOpGreaterThanEquals:
		if signed {
			return ir.OpSge
		}
		return ir.OpUge
	default:
		return ir.OpEq
	}
}

// lowerTernary lowers `cond ? yes : no` through branch+phi, exactly like
// the short-circuit operators: both arms get their own block so only the
// taken one runs, and the result merges at a shared continuation.
func (l *Lowerer) lowerTernary(f *ir.Function, b *ir.Block, expr *ast.Expr, e *ast.ETernary) (*ir.Value, *ir.Block) {
	cond, b := l.lowerExpr(f, b, &e.Cond, false)

	yesB := f.NewBlock("tern.yes")
	noB := f.NewBlock("tern.no")
	cont := f.NewBlock("tern.cont")
	b.Branch(cond, yesB, noB)

	yesVal, yesOut := l.lowerExpr(f, yesB, &e.Yes, false)
	if !yesOut.Terminated() {
		yesOut.Jump(cont)
	}
	noVal, noOut := l.lowerExpr(f, noB, &e.No, false)
	if !noOut.Terminated() {
		noOut.Jump(cont)
	}

	result := cont.Phi(f, expr.Type, []ir.PhiEdge{
		{Block: yesOut, Value: yesVal},
		{Block: noOut, Value: noVal},
	})
	return result, cont
}

// lowerCall only supports a directly-named callee (no function-pointer
// calls). The parser accepts any postfix expression as a callee; only a
// bare identifier gives the call a name, and any other callee (such as a
// parenthesized name) is emitted with an empty callee name.
func (l *Lowerer) lowerCall(f *ir.Function, b *ir.Block, expr *ast.Expr, e *ast.ECall) (*ir.Value, *ir.Block) {
	var calleeName string
	if id, ok := e.Callee.Data.(*ast.EIdentifier); ok {
		calleeName = id.Name
	}

	args := make([]*ir.Value, len(e.Args))
	cur := b
	for i := range e.Args {
		args[i], cur = l.lowerExpr(f, cur, &e.Args[i], false)
	}
	return cur.Call(f, calleeName, args, expr.Type), cur
}

// lowerMember computes the field's address as a byte offset off the
// aggregate's address (`.`) or off the loaded pointer value (`->`), then
// loads through it unless the caller wants the address itself.
func (l *Lowerer) lowerMember(f *ir.Function, b *ir.Block, expr *ast.Expr, e *ast.EMember, wantLValueAddr bool) (*ir.Value, *ir.Block) {
	var base *ir.Value
	if e.Arrow {
		base, b = l.lowerExpr(f, b, &e.Object, false)
	} else {
		base, b = l.lowerExpr(f, b, &e.Object, true)
	}

	addr := l.gepByteOffset(f, b, base, int64(e.Offset), l.reg.Pointer(expr.Type))
	if wantLValueAddr {
		return addr, b
	}
	return b.Load(f, addr, expr.Type), b
}

// lowerIndex computes `array[index]`'s address: the array operand's
// address (for a true array, which decays to its first element) or the
// loaded pointer value (for a pointer operand), plus the index scaled by
// the element size.
func (l *Lowerer) lowerIndex(f *ir.Function, b *ir.Block, expr *ast.Expr, e *ast.EIndex, wantLValueAddr bool) (*ir.Value, *ir.Block) {
	arrType := e.Array.Type
	var base *ir.Value
	if arrType != nil && arrType.IsArray() {
		base, b = l.lowerExpr(f, b, &e.Array, true)
	} else {
		base, b = l.lowerExpr(f, b, &e.Array, false)
	}

	idx, b := l.lowerExpr(f, b, &e.Index, false)
	scaled := l.scaleIndex(f, b, idx, expr.Type)
	// The address's pointer type names the element, not whatever
	// aggregate base's own Type describes (an array identifier's address
	// is pointer-to-array, but indexing always decays to pointer-to-
	// element); reg.Pointer(expr.Type) gets that right regardless of
	// whether base came from an array or a pointer operand.
	addr := b.BinOp(f, ir.OpAdd, base, scaled, l.reg.Pointer(expr.Type))

	if wantLValueAddr {
		return addr, b
	}
	return b.Load(f, addr, expr.Type), b
}

// gepByteOffset adds a constant byte offset to base, reusing base
// unchanged for a zero offset (the common case of a struct's first
// member) instead of emitting a pointless add-zero instruction.
func (l *Lowerer) gepByteOffset(f *ir.Function, b *ir.Block, base *ir.Value, bytes int64, resultType *types.Type) *ir.Value {
	if bytes == 0 {
		return base
	}
	off := ir.ConstInt(bytes, l.reg.Builtin("long"))
	return b.BinOp(f, ir.OpAdd, base, off, resultType)
}

// lowerCast lowers a C-style cast by selecting a conversion opcode from
// the source/target type pair, then letting Block.Convert no-op it away
// if castOp decided the bit pattern doesn't actually need to change.
func (l *Lowerer) lowerCast(f *ir.Function, b *ir.Block, expr *ast.Expr, e *ast.ECast) (*ir.Value, *ir.Block) {
	val, b := l.lowerExpr(f, b, &e.Value, false)
	op := castOp(e.Value.Type, expr.Type)
	return b.Convert(f, op, val, expr.Type), b
}

// castOp picks the conversion opcode for a cast from src to dst. Owly's
// IR opcode set (internal/ir/ir.go) has no dedicated float-widen/narrow
// instruction, so a float<->float precision change is routed through
// OpBitcast; this is a deliberate simplification, not a correctness claim
// that the bit pattern is actually preserved, and is called out in
// DESIGN.md.
func castOp(src, dst *types.Type) ir.Op {
	if src == nil || dst == nil {
		return ir.OpNop
	}
	if types.Equal(src, dst) {
		return ir.OpNop
	}
	switch {
	case src.IsPointer() && dst.IsPointer():
		return ir.OpBitcast
	case src.IsIntegral() && dst.IsIntegral():
		switch {
		case dst.Size() > src.Size():
			if src.IsSigned() {
				return ir.OpSExt
			}
			return ir.OpZExt
		case dst.Size() < src.Size():
			return ir.OpTrunc
		default:
			return ir.OpBitcast
		}
	case src.IsFloating() && dst.IsIntegral():
		if dst.IsSigned() {
			return ir.OpFPToSI
		}
		return ir.OpFPToUI
	case src.IsIntegral() && dst.IsFloating():
		if src.IsSigned() {
			return ir.OpSIToFP
		}
		return ir.OpUIToFP
	case src.IsFloating() && dst.IsFloating():
		return ir.OpBitcast
	case src.IsPointer() && dst.IsIntegral(), src.IsIntegral() && dst.IsPointer():
		return ir.OpBitcast
	default:
		return ir.OpNop
	}
}
