package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OwlyNest/owlyc/internal/types"
)

func TestNewFunctionCreatesEntryBlock(t *testing.T) {
	m := NewModule("<test>")
	reg := types.NewRegistry(8, 8)
	intT := reg.Builtin("int")

	f := m.NewFunction("add", intT, []*types.Type{intT, intT}, []string{"a", "b"})
	require.Len(t, f.Blocks, 1)
	assert.Same(t, f.Entry, f.Blocks[0])
	assert.Equal(t, "entry.0", f.Entry.Name)
	require.Len(t, f.Params, 2)
	assert.Equal(t, 0, f.Params[0].ID)
	assert.Equal(t, 1, f.Params[1].ID)
}

func TestBlockTerminatedTracksControlInstructions(t *testing.T) {
	m := NewModule("<test>")
	reg := types.NewRegistry(8, 8)
	intT := reg.Builtin("int")
	f := m.NewFunction("f", intT, nil, nil)

	assert.False(t, f.Entry.Terminated())
	f.Entry.Return(ConstInt(0, intT))
	assert.True(t, f.Entry.Terminated())
}

func TestJumpLinksPredecessorSuccessor(t *testing.T) {
	m := NewModule("<test>")
	reg := types.NewRegistry(8, 8)
	intT := reg.Builtin("int")
	f := m.NewFunction("f", intT, nil, nil)

	target := f.NewBlock("target")
	f.Entry.Jump(target)

	assert.Equal(t, []*Block{target}, f.Entry.Succs)
	assert.Equal(t, []*Block{f.Entry}, target.Preds)
}

func TestBranchLinksBothTargets(t *testing.T) {
	m := NewModule("<test>")
	reg := types.NewRegistry(8, 8)
	intT := reg.Builtin("int")
	f := m.NewFunction("f", intT, nil, nil)

	thenB := f.NewBlock("then")
	elseB := f.NewBlock("else")
	f.Entry.Branch(ConstInt(1, intT), thenB, elseB)

	assert.ElementsMatch(t, []*Block{thenB, elseB}, f.Entry.Succs)
	assert.Contains(t, thenB.Preds, f.Entry)
	assert.Contains(t, elseB.Preds, f.Entry)
}

func TestInternStringReusesTheSameGlobal(t *testing.T) {
	m := NewModule("<test>")
	reg := types.NewRegistry(8, 8)
	charPtr := reg.Pointer(reg.Builtin("char"))

	a := m.InternString("hello", charPtr)
	b := m.InternString("hello", charPtr)
	c := m.InternString("world", charPtr)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Len(t, m.Globals, 2)
}

func TestPhiCollectsIncomingEdges(t *testing.T) {
	m := NewModule("<test>")
	reg := types.NewRegistry(8, 8)
	intT := reg.Builtin("int")
	f := m.NewFunction("f", intT, nil, nil)

	left := f.NewBlock("left")
	right := f.NewBlock("right")
	merge := f.NewBlock("merge")

	v := merge.Phi(f, intT, []PhiEdge{
		{Block: left, Value: ConstInt(1, intT)},
		{Block: right, Value: ConstInt(2, intT)},
	})

	require.Len(t, merge.Instrs, 1)
	assert.Equal(t, OpPhi, merge.Instrs[0].Op)
	assert.Same(t, v, merge.Instrs[0].Result)
	assert.Len(t, merge.Instrs[0].Phi, 2)
}

func TestAllocaProducesPointerType(t *testing.T) {
	m := NewModule("<test>")
	reg := types.NewRegistry(8, 8)
	intT := reg.Builtin("int")
	f := m.NewFunction("f", intT, nil, nil)

	ptr := f.Entry.Alloca(f, intT, 8, 8)
	require.True(t, ptr.Type.IsPointer())
	assert.Same(t, intT, ptr.Type.Pointer.Base)
	assert.Equal(t, OpAlloca, f.Entry.Instrs[0].Op)
}
