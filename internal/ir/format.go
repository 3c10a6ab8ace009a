package ir

import (
	"strconv"
	"strings"
)

// Formatting a Value is stdlib-only: it's strconv.Itoa/FormatFloat and
// a quoting call, a handful of lines with nothing in the retrieval pack
// to reach for instead.
func tempName(id int) string { return "%t" + strconv.Itoa(id) }
func itoa(v int64) string    { return strconv.FormatInt(v, 10) }
func ftoa(v float64) string  { return strconv.FormatFloat(v, 'g', -1, 64) }
func quote(s string) string  { return strconv.Quote(s) }

var opNames = map[Op]string{
	OpAlloca: "alloca", OpLoad: "load", OpStore: "store",
	OpAdd: "add", OpSub: "sub", OpMul: "mul",
	OpSDiv: "sdiv", OpUDiv: "udiv", OpSMod: "smod", OpUMod: "umod", OpNeg: "neg",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpShl: "shl", OpShr: "shr", OpSar: "sar", OpNot: "not",
	OpEq: "eq", OpNe: "ne", OpSlt: "slt", OpSle: "sle", OpSgt: "sgt", OpSge: "sge",
	OpUlt: "ult", OpUle: "ule", OpUgt: "ugt", OpUge: "uge",
	OpJump: "jump", OpBranch: "branch", OpReturn: "return",
	OpCall: "call",
	OpSExt: "sext", OpZExt: "zext", OpTrunc: "trunc",
	OpSIToFP: "sitofp", OpUIToFP: "uitofp", OpFPToSI: "fptosi", OpFPToUI: "fptoui",
	OpBitcast: "bitcast", OpNop: "nop",
	OpConstInt: "const.int", OpConstFloat: "const.float", OpConstString: "const.string",
	OpPhi: "phi",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "?"
}

// String renders m as a flat textual listing -- one function per
// paragraph, one instruction per line -- intended for --emit-ir output
// and for tests that want to assert on shape without walking *Instr
// slices by hand. There is no corresponding parser; this is a dump
// format, not a serialization format.
func (m *Module) String() string {
	var sb strings.Builder
	for _, g := range m.Globals {
		sb.WriteString("global ")
		sb.WriteString(g.Name)
		if g.Init != nil {
			sb.WriteString(" = ")
			sb.WriteString(g.Init.String())
		}
		sb.WriteByte('\n')
	}
	if len(m.Globals) > 0 && len(m.Functions) > 0 {
		sb.WriteByte('\n')
	}
	for i, f := range m.Functions {
		if i > 0 {
			sb.WriteByte('\n')
		}
		f.writeTo(&sb)
	}
	return sb.String()
}

func (f *Function) writeTo(sb *strings.Builder) {
	sb.WriteString("func ")
	sb.WriteString(f.Name)
	sb.WriteString("(")
	for i, name := range f.ParamNames {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
	}
	sb.WriteString(") {\n")
	for _, b := range f.Blocks {
		b.writeTo(sb)
	}
	sb.WriteString("}\n")
}

func (b *Block) writeTo(sb *strings.Builder) {
	sb.WriteString(b.Name)
	sb.WriteString(":\n")
	for _, in := range b.Instrs {
		sb.WriteString("    ")
		in.writeTo(sb)
		sb.WriteByte('\n')
	}
}

func (in *Instr) writeTo(sb *strings.Builder) {
	if in.Result != nil {
		sb.WriteString(in.Result.String())
		sb.WriteString(" = ")
	}
	sb.WriteString(in.Op.String())
	if in.Callee != "" {
		sb.WriteString(" @")
		sb.WriteString(in.Callee)
	}
	for _, a := range in.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}
	for _, t := range in.Targets {
		sb.WriteString(" -> ")
		sb.WriteString(t.Name)
	}
	for _, e := range in.Phi {
		sb.WriteString(" [")
		sb.WriteString(e.Block.Name)
		sb.WriteString(": ")
		sb.WriteString(e.Value.String())
		sb.WriteString("]")
	}
}
