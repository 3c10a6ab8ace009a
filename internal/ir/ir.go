// Package ir is Owly's SSA intermediate representation: the value,
// instruction, basic-block, function, and module types plus the
// construction primitives (NewModule/NewFunction/NewBlock/NewTemp and a
// small family of per-opcode emit helpers) that internal/lower drives.
// esbuild has no equivalent data model (a JS bundler has no SSA lowering
// stage), so the shapes here are original work done in the same plain-
// struct, constructor-does-the-real-work idiom internal/types already
// uses for resolved types, rather than copied from any one teacher file.
package ir

import "github.com/OwlyNest/owlyc/internal/types"

// ValueKind tags what an operand refers to: a temporary this function
// computed, a named global (function or module-level string), one of
// the three literal-constant forms, a block label (used as a phi/branch
// operand), or the uninitialized sentinel undef.
type ValueKind uint8

const (
	VTemp ValueKind = iota
	VGlobal
	VConstInt
	VConstFloat
	VConstString
	VLabel
	VUndef
)

// Value is an SSA value: every instruction's result and every
// instruction's operands are *Value. Values are never mutated in place
// once created (the "static" half of static single assignment) --
// lowering always asks for a fresh temp rather than reusing one.
type Value struct {
	Kind ValueKind
	Type *types.Type

	ID   int    // VTemp: this function's temp number, used only for printing
	Name string // VGlobal: the symbol name; VLabel: the block's name

	IntVal   int64   // VConstInt
	FloatVal float64 // VConstFloat
	StrVal   string  // VConstString: the decoded string contents

	Block *Block // VLabel: the block this label names
	Init  *Value // VGlobal: optional constant initializer
}

func (v *Value) String() string {
	switch v.Kind {
	case VTemp:
		return tempName(v.ID)
	case VGlobal:
		return "@" + v.Name
	case VConstInt:
		return itoa(v.IntVal)
	case VConstFloat:
		return ftoa(v.FloatVal)
	case VConstString:
		return quote(v.StrVal)
	case VLabel:
		return "%" + v.Name
	case VUndef:
		return "undef"
	default:
		return "?"
	}
}

// Op identifies an instruction's opcode. The families below follow the
// IR entities laid out for memory, arithmetic, bitwise, comparison,
// control, call, conversion, constant-materialization, and phi
// instructions.
type Op uint8

const (
	// Memory.
	OpAlloca Op = iota
	OpLoad
	OpStore

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpSDiv
	OpUDiv
	OpSMod
	OpUMod
	OpNeg

	// Bitwise.
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr // logical (unsigned) right shift
	OpSar // arithmetic (signed) right shift
	OpNot // bitwise complement

	// Comparison (all produce a 0/1 int result).
	OpEq
	OpNe
	OpSlt
	OpSle
	OpSgt
	OpSge
	OpUlt
	OpUle
	OpUgt
	OpUge

	// Control flow. Every block must end in exactly one of these.
	OpJump
	OpBranch
	OpReturn

	// Call.
	OpCall

	// Conversion.
	OpSExt   // sign-extend a narrower integer
	OpZExt   // zero-extend a narrower integer
	OpTrunc  // truncate a wider integer
	OpSIToFP // signed int -> float
	OpUIToFP // unsigned int -> float
	OpFPToSI // float -> signed int
	OpFPToUI // float -> unsigned int
	OpBitcast
	OpNop // cast between two types lowering treats as a no-op (e.g. compatible pointers)

	// Constant materialization.
	OpConstInt
	OpConstFloat
	OpConstString

	// Phi, for short-circuit/ternary merge points (P9).
	OpPhi
)

// PhiEdge is one (predecessor block, incoming value) pair of a phi
// instruction.
type PhiEdge struct {
	Block *Block
	Value *Value
}

// Instr is one SSA instruction. Result is nil for instructions with no
// value (store/jump/branch/return); Targets holds the successor blocks
// for jump/branch; Callee names the called function for OpCall.
type Instr struct {
	Op     Op
	Result *Value
	Args   []*Value
	Targets []*Block
	Phi    []PhiEdge
	Callee string
}

// Block is a basic block: a straight-line instruction list ending in
// exactly one terminator (jump/branch/return), satisfying P7 ("every
// block is terminated") once lowering finishes with it.
type Block struct {
	ID    int
	Name  string
	Func  *Function
	Instrs []*Instr

	Preds []*Block
	Succs []*Block
}

// Terminated reports whether b already ends in a control instruction;
// lowering checks this before appending to a block reached through a
// short-circuit/loop edge the AST walk already terminated another way.
func (b *Block) Terminated() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	switch b.Instrs[len(b.Instrs)-1].Op {
	case OpJump, OpBranch, OpReturn:
		return true
	default:
		return false
	}
}

func (b *Block) append(in *Instr) *Instr {
	b.Instrs = append(b.Instrs, in)
	return in
}

func (b *Block) link(succ *Block) {
	b.Succs = append(b.Succs, succ)
	succ.Preds = append(succ.Preds, b)
}

// Label returns a VLabel value referring to b, the operand form a phi
// edge or an explicit block reference needs.
func (b *Block) Label() *Value {
	return &Value{Kind: VLabel, Name: b.Name, Block: b}
}

// Function is one compiled function: its signature, its blocks in
// creation order (Blocks[0] is always the entry block), and the
// counters NewTemp/NewBlock draw fresh names from.
type Function struct {
	Name       string
	ReturnType *types.Type
	Params     []*Value
	ParamNames []string

	Entry  *Block
	Blocks []*Block

	Module *Module

	tempCounter  int
	blockCounter int

	// VarMap is the per-function variable map lowering maintains: a
	// local (or parameter) name to the alloca'd pointer holding it. Owned
	// by the function so nested blocks created later can still look a
	// name up without threading a separate map through lower_stmt.
	VarMap map[string]*Value
}

// Module is the root IR object for one compiled source file: every
// function plus every module-level global (interned string constants
// and the globals internal/lower emits for top-level variables).
type Module struct {
	SourceName string
	Functions  []*Function
	Globals    []*Value

	stringInterning map[string]*Value
	globalCounter   int
}

// NewModule is the create_module primitive: one Module per compiled
// source file, matching the single-threaded synchronous pipeline's
// resource model (no state shared between compilations).
func NewModule(sourceName string) *Module {
	return &Module{
		SourceName:      sourceName,
		stringInterning: make(map[string]*Value),
	}
}

// NewFunction is the create_function primitive.
func (m *Module) NewFunction(name string, returnType *types.Type, paramTypes []*types.Type, paramNames []string) *Function {
	f := &Function{
		Name:       name,
		ReturnType: returnType,
		ParamNames: append([]string(nil), paramNames...),
		Module:     m,
		VarMap:     make(map[string]*Value),
	}
	f.Params = make([]*Value, len(paramTypes))
	for i, t := range paramTypes {
		f.Params[i] = &Value{Kind: VTemp, Type: t, ID: f.nextTemp()}
	}
	entry := f.NewBlock("entry")
	f.Entry = entry
	m.Functions = append(m.Functions, f)
	return f
}

func (f *Function) nextTemp() int {
	id := f.tempCounter
	f.tempCounter++
	return id
}

// NewBlock is the create_block primitive: a fresh basic block appended
// to f's block list (not linked to any predecessor yet -- the caller
// wires that up with Jump/Branch).
func (f *Function) NewBlock(name string) *Block {
	id := f.blockCounter
	f.blockCounter++
	if name == "" {
		name = tempName(id)
	} else {
		name = name + "." + itoa(int64(id))
	}
	b := &Block{ID: id, Name: name, Func: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewTemp is the create_temp primitive: a fresh SSA temporary of type t,
// not yet bound to any instruction's result.
func (f *Function) NewTemp(t *types.Type) *Value {
	return &Value{Kind: VTemp, Type: t, ID: f.nextTemp()}
}

// InternString returns the module-global Value for string constant s,
// creating (and registering as a Global) the first time s is seen and
// reusing it on every later request -- string literals are materialized
// as module globals rather than re-emitted inline at every use site.
func (m *Module) InternString(s string, charPtr *types.Type) *Value {
	if v, ok := m.stringInterning[s]; ok {
		return v
	}
	id := m.globalCounter
	m.globalCounter++
	v := &Value{Kind: VConstString, Type: charPtr, Name: ".str." + itoa(int64(id)), StrVal: s}
	m.stringInterning[s] = v
	m.Globals = append(m.Globals, v)
	return v
}

// ConstInt builds an integer constant operand; it does not allocate an
// instruction -- constants are pure operand values, materialized into a
// register only where a consumer (e.g. a phi edge needing a concrete
// predecessor value) requires an instruction, via Block.ConstInt in
// build.go.
func ConstInt(v int64, t *types.Type) *Value {
	return &Value{Kind: VConstInt, IntVal: v, Type: t}
}

func ConstFloat(v float64, t *types.Type) *Value {
	return &Value{Kind: VConstFloat, FloatVal: v, Type: t}
}

func Undef(t *types.Type) *Value {
	return &Value{Kind: VUndef, Type: t}
}

// Global returns an operand referring to a named function or module
// variable (not a local), used for the callee operand of a call and for
// address-of on a top-level declaration.
func Global(name string, t *types.Type) *Value {
	return &Value{Kind: VGlobal, Name: name, Type: t}
}
