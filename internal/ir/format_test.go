package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OwlyNest/owlyc/internal/types"
)

func TestModuleStringRendersFunctionAndGlobal(t *testing.T) {
	m := NewModule("<test>")
	reg := types.NewRegistry(8, 8)
	intT := reg.Builtin("int")

	m.Globals = append(m.Globals, &Value{Kind: VGlobal, Name: "counter", Type: intT, Init: ConstInt(0, intT)})

	f := m.NewFunction("add", intT, []*types.Type{intT, intT}, []string{"a", "b"})
	sum := f.Entry.BinOp(f, OpAdd, f.Params[0], f.Params[1], intT)
	f.Entry.Return(sum)

	out := m.String()
	assert.True(t, strings.HasPrefix(out, "global counter = 0\n"))
	assert.Contains(t, out, "func add(a, b) {")
	assert.Contains(t, out, "entry.0:")
	assert.Contains(t, out, "= add %t0 %t1")
	assert.Contains(t, out, "return %t2")
}

func TestOpStringKnowsEveryOpcode(t *testing.T) {
	for op := OpAlloca; op <= OpPhi; op++ {
		assert.NotEqual(t, "?", op.String(), "opcode %d missing from opNames", op)
	}
}
