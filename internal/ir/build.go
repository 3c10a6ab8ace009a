package ir

import "github.com/OwlyNest/owlyc/internal/types"

// This file is the emit/branch/jump/call/return/phi helper family
// internal/lower drives: one method per instruction shape, each
// creating the Instr, appending it to the block, and (for value-
// producing opcodes) returning the fresh Value lowering should thread
// into the next expression.

// Alloca emits a stack-slot allocation for a value of type elem and
// returns the pointer-typed temp that holds its address. internal/lower
// gives every parameter one of these in the function's entry block and
// every local variable one in the block where its declaration is
// lowered, mirroring how a real SSA front end keeps
// mutable locals out of the value graph until mem2reg-style promotion
// -- which this compiler doesn't perform, so loads/stores to the
// alloca'd slot stand in for the variable throughout. ptrSize/ptrAlign
// come from the target Registry internal/lower holds, so the slot's
// pointer type carries the real target pointer width instead of a
// hardcoded one.
func (b *Block) Alloca(f *Function, elem *types.Type, ptrSize, ptrAlign uint32) *Value {
	ptr := f.NewTemp(&types.Type{Kind: types.KPointer, Pointer: &types.Pointer{Base: elem, Size: ptrSize, Align: ptrAlign}})
	b.append(&Instr{Op: OpAlloca, Result: ptr})
	return ptr
}

// Load emits a load from ptr, producing a fresh temp of type t.
func (b *Block) Load(f *Function, ptr *Value, t *types.Type) *Value {
	v := f.NewTemp(t)
	b.append(&Instr{Op: OpLoad, Result: v, Args: []*Value{ptr}})
	return v
}

// Store emits a store of val into ptr. Stores produce no value.
func (b *Block) Store(ptr, val *Value) {
	b.append(&Instr{Op: OpStore, Args: []*Value{ptr, val}})
}

// BinOp emits a two-operand arithmetic or bitwise instruction.
func (b *Block) BinOp(f *Function, op Op, lhs, rhs *Value, t *types.Type) *Value {
	v := f.NewTemp(t)
	b.append(&Instr{Op: op, Result: v, Args: []*Value{lhs, rhs}})
	return v
}

// UnOp emits a one-operand arithmetic instruction (negate/bitwise-not).
func (b *Block) UnOp(f *Function, op Op, val *Value, t *types.Type) *Value {
	v := f.NewTemp(t)
	b.append(&Instr{Op: op, Result: v, Args: []*Value{val}})
	return v
}

// Cmp emits a comparison; the result is always a 4-byte signed int
// (Owly's stand-in for _Bool-as-int) regardless of the operand type.
func (b *Block) Cmp(f *Function, op Op, lhs, rhs *Value, resultType *types.Type) *Value {
	v := f.NewTemp(resultType)
	b.append(&Instr{Op: op, Result: v, Args: []*Value{lhs, rhs}})
	return v
}

// Convert emits a conversion instruction selecting op by the source and
// target type pair; internal/lower's cast-opcode-selection table picks
// op, this just emits whatever it picked.
func (b *Block) Convert(f *Function, op Op, val *Value, to *types.Type) *Value {
	if op == OpNop {
		return val
	}
	v := f.NewTemp(to)
	b.append(&Instr{Op: op, Result: v, Args: []*Value{val}})
	return v
}

// Call emits a call to callee with the given arguments, producing a
// fresh temp of type ret (or returning nil for a void call).
func (b *Block) Call(f *Function, callee string, args []*Value, ret *types.Type) *Value {
	var result *Value
	if ret != nil && !ret.IsVoid() {
		result = f.NewTemp(ret)
	}
	b.append(&Instr{Op: OpCall, Result: result, Args: append([]*Value(nil), args...), Callee: callee})
	return result
}

// ConstInt materializes an integer constant into a register, for the
// rarer case a consumer needs an instruction-backed value rather than a
// bare constant operand (most call sites just use ir.ConstInt directly).
func (b *Block) ConstInt(f *Function, v int64, t *types.Type) *Value {
	result := f.NewTemp(t)
	b.append(&Instr{Op: OpConstInt, Result: result, Args: []*Value{{Kind: VConstInt, IntVal: v, Type: t}}})
	return result
}

// Jump terminates b with an unconditional jump to target and links the
// predecessor/successor edge (P8's "break/continue targets" and every
// loop/if's fallthrough edge route through this).
func (b *Block) Jump(target *Block) {
	b.append(&Instr{Op: OpJump, Targets: []*Block{target}})
	b.link(target)
}

// Branch terminates b with a conditional branch, true to thenB and
// false to elseB.
func (b *Block) Branch(cond *Value, thenB, elseB *Block) {
	b.append(&Instr{Op: OpBranch, Args: []*Value{cond}, Targets: []*Block{thenB, elseB}})
	b.link(thenB)
	b.link(elseB)
}

// Return terminates b with a return; val is nil for a void return.
func (b *Block) Return(val *Value) {
	var args []*Value
	if val != nil {
		args = []*Value{val}
	}
	b.append(&Instr{Op: OpReturn, Args: args})
}

// Phi emits a phi instruction merging edges into a fresh temp of type t,
// the mechanism P9 ("short-circuit operators materialize through a
// merge block with a phi") and the ternary operator both lower through.
func (b *Block) Phi(f *Function, t *types.Type, edges []PhiEdge) *Value {
	v := f.NewTemp(t)
	b.append(&Instr{Op: OpPhi, Result: v, Phi: append([]PhiEdge(nil), edges...)})
	return v
}
