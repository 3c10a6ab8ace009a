package ast

import "github.com/OwlyNest/owlyc/internal/types"

// S is the marker interface every statement/declaration payload
// implements, mirroring js_ast.S in esbuild's internal/js_ast/js_ast.go.
type S interface{ isStmt() }

// Stmt is the common wrapper every top-level declaration or body
// statement carries. ResolvedType is populated during pass 2 for
// declaration variants (spec section 3: "Every AST node carries an
// optional resolved-type pointer, populated during pass 2").
type Stmt struct {
	Loc  Loc
	Data S

	ResolvedType *types.Type

	// Scope is the scope pass 1 created for this node (if any), recorded so
	// passes 2 and 3 can re-enter it directly rather than re-deriving it by
	// walking children in lockstep — spec section 9 recommends this as the
	// more robust of its two suggested strategies.
	Scope *Scope

	// Symbol is the single symbol pass 1 created for this declaration, if
	// any (spec section 3 invariant: "Every declaration node has at most
	// one symbol").
	Symbol *Symbol
}

// Program is the parser's top-level output: an ordered sequence of
// top-level statements (spec section 3).
type Program struct {
	Stmts []Stmt
}

// SVarDecl is `var <type> <name> [= <init>];`.
type SVarDecl struct {
	Type *TypeSpec
	Name string
	Init *Expr
}

func (*SVarDecl) isStmt() {}

// SParam is a function parameter; it reuses the var-decl shape (spec
// section 3: "parameter list (each a var decl)").
type SParam struct {
	Type *TypeSpec
	Name string
}

func (*SParam) isStmt() {}

type SFuncDecl struct {
	ReturnType *TypeSpec
	Name       string
	Params     []SParam
	Prototype  bool // true for a declaration with no body
	Body       []Stmt
}

func (*SFuncDecl) isStmt() {}

type SReturn struct {
	Value *Expr
}

func (*SReturn) isStmt() {}

type SExprStmt struct {
	Value Expr
}

func (*SExprStmt) isStmt() {}

type EnumMember struct {
	Loc   Loc
	Name  string
	Value *Expr

	// ConstValue is the member's resolved constant, computed in pass 2 per
	// SPEC_FULL section 12 (defaulting to "previous value + 1" starting at
	// 0 when Value is nil, the rule read out of original_source/V3/src/
	// middle/SA.c).
	ConstValue int64
	Symbol     *Symbol
}

type SEnumDecl struct {
	Tag     string // may be empty for an anonymous enum
	Members []EnumMember

	// IsReference marks a bodiless `enum Tag` mention (spec section 4.1's
	// inline-declaration production requires braces; without them this
	// node only names an already-declared tag for pass 2 to look up).
	IsReference bool
}

func (*SEnumDecl) isStmt() {}

type SStructDecl struct {
	Tag         string
	Members     []SVarDecl
	IsReference bool
}

func (*SStructDecl) isStmt() {}

type SUnionDecl struct {
	Tag         string
	Members     []SVarDecl
	IsReference bool
}

func (*SUnionDecl) isStmt() {}

type SWhile struct {
	Cond Expr
	Body []Stmt
}

func (*SWhile) isStmt() {}

type SDoWhile struct {
	Cond Expr
	Body []Stmt
}

func (*SDoWhile) isStmt() {}

// SFor holds the three optional clauses as statements/expressions: Init is
// a statement (usually a var decl or expression statement), Cond is an
// expression, Inc is an expression.
type SFor struct {
	Init *Stmt
	Cond *Expr
	Inc  *Expr
	Body []Stmt
}

func (*SFor) isStmt() {}

// ElseIf is one `elif` arm chained off an If. Scope is the block scope
// pass 1 creates for Body, re-entered by passes 2 and 3.
type ElseIf struct {
	Cond  Expr
	Body  []Stmt
	Scope *Scope
}

type SIf struct {
	Cond    Expr
	Body    []Stmt
	ElseIfs []ElseIf

	ElseBody []Stmt // nil if there is no else

	BodyScope     *Scope
	ElseBodyScope *Scope
}

func (*SIf) isStmt() {}

// SwitchCase's Scope is the block scope pass 1 creates for Body.
type SwitchCase struct {
	Loc   Loc
	Expr  Expr
	Body  []Stmt
	Scope *Scope
}

type SSwitch struct {
	Scrutinee   Expr
	Cases       []SwitchCase
	DefaultBody []Stmt // nil if there is no default
	HasDefault  bool

	DefaultScope *Scope
}

func (*SSwitch) isStmt() {}

type STypedef struct {
	Name string
	Type *TypeSpec
}

func (*STypedef) isStmt() {}

// SArrayDecl is `arr <elem-type> <name>[dims...] [= {...}];`.
type SArrayDecl struct {
	ElemType *TypeSpec
	Name     string
	Dims     []int64
	Init     *Expr // an *ESet, if present
}

func (*SArrayDecl) isStmt() {}

type MiscKind uint8

const (
	MiscBreak MiscKind = iota
	MiscContinue
)

type SMisc struct {
	Kind MiscKind
}

func (*SMisc) isStmt() {}

// SBlock groups a nested statement list without introducing declarations
// of its own kind (used by the parser for brace-delimited bodies that
// aren't already one of the loop/if/switch/function constructs above).
type SBlock struct {
	Body []Stmt
}

func (*SBlock) isStmt() {}
