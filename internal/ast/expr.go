package ast

import "github.com/OwlyNest/owlyc/internal/types"

// E is the marker interface every expression-node payload implements,
// mirroring js_ast.E in esbuild's internal/js_ast/js_ast.go.
type E interface{ isExpr() }

// Expr is the common wrapper every expression carries: a source location
// plus its tagged-union payload. Type is filled in during pass 3 (spec
// section 3: "Every expression carries an optional inferred-type
// pointer").
type Expr struct {
	Loc  Loc
	Data E

	Type        *types.Type
	IsLValue    bool
	Addressable bool
}

type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitChar
	LitString
	LitBool
)

// ELiteral holds a parsed literal value alongside its raw source text, per
// spec section 3: "Literal (integer/float/char/string/bool with parsed
// value and raw text)."
type ELiteral struct {
	Kind LiteralKind
	Raw  string

	Int    int64
	Float  float64
	Str    string
	Bool   bool
	Suffix string // discarded u/l/ll/f suffix text, kept only for diagnostics (see spec's Open Question on literal suffixes)
}

func (*ELiteral) isExpr() {}

// EIdentifier is a name reference. Symbol is filled in during pass 3
// alongside Expr.Type, so internal/lower can tell a local from a global
// from an enum constant without re-running scope lookup itself.
type EIdentifier struct {
	Name   string
	Symbol *Symbol
}

func (*EIdentifier) isExpr() {}

type EUnary struct {
	Op      UnOp
	Value   Expr
	Postfix bool
}

func (*EUnary) isExpr() {}

type EBinary struct {
	Op    BinOp
	Left  Expr
	Right Expr
}

func (*EBinary) isExpr() {}

// EGrouping is a parenthesized expression, kept as its own node (rather
// than collapsed away) so printers/diagnostics can point at the original
// parens; lowering treats it as transparent.
type EGrouping struct {
	Value Expr
}

func (*EGrouping) isExpr() {}

type ECall struct {
	Callee Expr
	Args   []Expr
}

func (*ECall) isExpr() {}

type ETernary struct {
	Cond Expr
	Yes  Expr
	No   Expr
}

func (*ETernary) isExpr() {}

// EMember is `.member` or `->member`; Offset is filled in during pass 3
// once the base's struct/union layout is known.
type EMember struct {
	Object Expr
	Name   string
	Arrow  bool
	Offset uint32
}

func (*EMember) isExpr() {}

// ESizeof wraps either a type operand or an expression operand; Size is
// computed in pass 3 and reused verbatim by lowering (spec section 9:
// "this keeps IR lowering free of type machinery").
type ESizeof struct {
	TypeOperand *TypeSpec
	ExprOperand *Expr
	Size        uint64
}

func (*ESizeof) isExpr() {}

type ECast struct {
	Target *TypeSpec
	Value  Expr
}

func (*ECast) isExpr() {}

// ESet is a brace-enclosed comma-separated element list, used both as a
// standalone compound-literal expression and as an array initializer.
type ESet struct {
	Elements []Expr
}

func (*ESet) isExpr() {}

type EIndex struct {
	Array Expr
	Index Expr
}

func (*EIndex) isExpr() {}
