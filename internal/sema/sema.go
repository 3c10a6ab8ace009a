// Package sema is Owly's semantic analyzer: the three-pass walk over the
// parsed ast.Program that populates the scope tree, attaches resolved
// types to every declaration, and then type-checks every expression and
// statement. The three-pass split (collect declarations, resolve types,
// check semantics) mirrors the way esbuild itself separates parsing from
// resolution: internal/js_parser builds the AST in one pass and
// internal/resolver/internal/linker walk it again afterward rather than
// trying to resolve everything while still parsing. Owly's version folds
// that into three explicit walks over the same tree instead of a
// scan-then-bundle pipeline, since there's no bundling concept here.
package sema

import (
	"fmt"

	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/diag"
	"github.com/OwlyNest/owlyc/internal/types"
)

// Analyzer owns the scope tree and the symbols declared in it for the
// duration of one compilation; resolved types are owned by the
// declarations and symbols they're attached to (Registry just builds
// them). Nothing here is reused across compilations.
type Analyzer struct {
	log    diag.Log
	source *diag.Source
	reg    *types.Registry

	global *ast.Scope

	// resolving tracks typedef Stmt pointers currently being resolved, to
	// turn an infinite typedef cycle into a diagnostic instead of a stack
	// overflow.
	resolving map[*ast.Stmt]bool

	// enumValues records the resolved constant for every enum-member
	// symbol, so a later member's initializer (or a later enum's) can
	// reference an earlier one by name (SPEC_FULL section 12).
	enumValues map[*ast.Symbol]int64

	// loopDepth counts enclosing while/do-while/for constructs, for
	// continue's "must be inside a loop" check. breakDepth additionally
	// counts switch, since break may also target a switch body.
	loopDepth  int
	breakDepth int

	// returnType is the resolved return type of the function pass 3 is
	// currently walking, or nil at top level.
	returnType *types.Type
	sawReturn  bool
}

// New builds an Analyzer. reg supplies builtin construction and
// struct/union/array layout for the target pointer width (spec section
// 4.2's cross-compilation Open Question, resolved as a Registry
// parameter rather than a global constant).
func New(log diag.Log, source *diag.Source, reg *types.Registry) *Analyzer {
	return &Analyzer{
		log:       log,
		source:    source,
		reg:       reg,
		resolving:  make(map[*ast.Stmt]bool),
		enumValues: make(map[*ast.Symbol]int64),
	}
}

// Analyze runs all three passes over prog and returns the global scope,
// the root of the scope tree every symbol in the program hangs off of.
func (a *Analyzer) Analyze(prog *ast.Program) *ast.Scope {
	a.global = &ast.Scope{Kind: ast.ScopeGlobal}

	a.collectStmts(a.global, prog.Stmts)
	a.resolveStmts(a.global, prog.Stmts)
	a.checkStmts(a.global, prog.Stmts)

	return a.global
}

func (a *Analyzer) errorf(loc ast.Loc, id diag.ID, format string, args ...interface{}) {
	a.log.AddErrorWithID(a.source, loc, id, fmt.Sprintf(format, args...))
}

func (a *Analyzer) warnf(loc ast.Loc, id diag.ID, format string, args ...interface{}) {
	a.log.AddWarningWithID(a.source, loc, id, fmt.Sprintf(format, args...))
}

// declare adds sym to scope, reporting a redefinition diagnostic and
// returning the pre-existing symbol when the name already bears a
// symbol in scope (ast.Scope.Declare's "at most one symbol per name"
// invariant). Callers should still record whatever Declare returns as
// the declaration's Symbol, so later passes always have a non-nil
// symbol to hang a resolved type off of even when the program redefines
// a name.
func (a *Analyzer) declare(scope *ast.Scope, sym *ast.Symbol, loc ast.Loc) *ast.Symbol {
	if existing, ok := scope.Declare(sym); !ok {
		a.errorf(loc, diag.IDDuplicateDeclaration, "redefinition of %q", sym.Name)
		return existing
	}
	return sym
}

// ===== Pass 1: collect declarations =====

func (a *Analyzer) collectStmts(scope *ast.Scope, stmts []ast.Stmt) {
	for i := range stmts {
		a.collectStmt(scope, &stmts[i])
	}
}

// collectTypeSpec walks into a TypeSpec's inline struct/union/enum
// declaration, if any, so that its tag and members get symbols and a
// scope exactly as if it had appeared as a standalone top-level
// declaration (spec section 4.1's inline-declaration production).
func (a *Analyzer) collectTypeSpec(scope *ast.Scope, ts *ast.TypeSpec) {
	if ts != nil && ts.NestedDecl != nil {
		a.collectStmt(scope, ts.NestedDecl)
	}
}

func (a *Analyzer) collectStmt(scope *ast.Scope, stmt *ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *ast.SVarDecl:
		a.collectTypeSpec(scope, s.Type)
		sym := &ast.Symbol{Kind: ast.SymVariable, Name: s.Name, Decl: stmt}
		stmt.Symbol = a.declare(scope, sym, stmt.Loc)

	case *ast.SArrayDecl:
		a.collectTypeSpec(scope, s.ElemType)
		sym := &ast.Symbol{Kind: ast.SymVariable, Name: s.Name, Decl: stmt}
		stmt.Symbol = a.declare(scope, sym, stmt.Loc)

	case *ast.STypedef:
		a.collectTypeSpec(scope, s.Type)
		sym := &ast.Symbol{Kind: ast.SymTypedef, Name: s.Name, Decl: stmt}
		stmt.Symbol = a.declare(scope, sym, stmt.Loc)

	case *ast.SFuncDecl:
		a.collectTypeSpec(scope, s.ReturnType)
		sym := &ast.Symbol{Kind: ast.SymFunction, Name: s.Name, Decl: stmt}
		stmt.Symbol = a.declare(scope, sym, stmt.Loc)

		fnScope := scope.PushChild(ast.ScopeFunction)
		stmt.Scope = fnScope

		sym.Params = make([]*ast.Symbol, len(s.Params))
		for i := range s.Params {
			p := &s.Params[i]
			a.collectTypeSpec(fnScope, p.Type)
			psym := &ast.Symbol{Kind: ast.SymParameter, Name: p.Name, Decl: stmt}
			sym.Params[i] = a.declare(fnScope, psym, stmt.Loc)
		}

		if !s.Prototype {
			a.collectStmts(fnScope, s.Body)
		}

	case *ast.SEnumDecl:
		if s.IsReference {
			return
		}
		if s.Tag != "" {
			tagSym := &ast.Symbol{Kind: ast.SymEnum, Name: s.Tag, Decl: stmt}
			stmt.Symbol = a.declare(scope, tagSym, stmt.Loc)
		}
		enumScope := scope.PushChild(ast.ScopeEnum)
		stmt.Scope = enumScope
		for i := range s.Members {
			m := &s.Members[i]
			sym := &ast.Symbol{Kind: ast.SymEnumMember, Name: m.Name, Decl: stmt}
			// Enum members live in both the enum's own scope and the
			// enclosing scope (spec section 3's symbol-table invariant on
			// enum-member visibility), so they're declared in each
			// independently; a name collision in either is reported.
			a.declare(enumScope, sym, m.Loc)
			m.Symbol = a.declare(scope, &ast.Symbol{Kind: ast.SymEnumMember, Name: m.Name, Decl: stmt}, m.Loc)
			if stmt.Symbol != nil {
				stmt.Symbol.Members = append(stmt.Symbol.Members, m.Symbol)
			}
		}

	case *ast.SStructDecl:
		if s.IsReference {
			return
		}
		if s.Tag != "" {
			tagSym := &ast.Symbol{Kind: ast.SymStruct, Name: s.Tag, Decl: stmt}
			stmt.Symbol = a.declare(scope, tagSym, stmt.Loc)
		}
		structScope := scope.PushChild(ast.ScopeStruct)
		stmt.Scope = structScope
		for i := range s.Members {
			a.collectTypeSpec(structScope, s.Members[i].Type)
		}

	case *ast.SUnionDecl:
		if s.IsReference {
			return
		}
		if s.Tag != "" {
			tagSym := &ast.Symbol{Kind: ast.SymUnion, Name: s.Tag, Decl: stmt}
			stmt.Symbol = a.declare(scope, tagSym, stmt.Loc)
		}
		unionScope := scope.PushChild(ast.ScopeUnion)
		stmt.Scope = unionScope
		for i := range s.Members {
			a.collectTypeSpec(unionScope, s.Members[i].Type)
		}

	case *ast.SBlock:
		blockScope := scope.PushChild(ast.ScopeBlock)
		stmt.Scope = blockScope
		a.collectStmts(blockScope, s.Body)

	case *ast.SIf:
		bodyScope := scope.PushChild(ast.ScopeBlock)
		s.BodyScope = bodyScope
		a.collectStmts(bodyScope, s.Body)
		for i := range s.ElseIfs {
			ei := &s.ElseIfs[i]
			ei.Scope = scope.PushChild(ast.ScopeBlock)
			a.collectStmts(ei.Scope, ei.Body)
		}
		if s.ElseBody != nil {
			s.ElseBodyScope = scope.PushChild(ast.ScopeBlock)
			a.collectStmts(s.ElseBodyScope, s.ElseBody)
		}

	case *ast.SWhile:
		bodyScope := scope.PushChild(ast.ScopeBlock)
		stmt.Scope = bodyScope
		a.collectStmts(bodyScope, s.Body)

	case *ast.SDoWhile:
		bodyScope := scope.PushChild(ast.ScopeBlock)
		stmt.Scope = bodyScope
		a.collectStmts(bodyScope, s.Body)

	case *ast.SFor:
		forScope := scope.PushChild(ast.ScopeBlock)
		stmt.Scope = forScope
		if s.Init != nil {
			a.collectStmt(forScope, s.Init)
		}
		a.collectStmts(forScope, s.Body)

	case *ast.SSwitch:
		for i := range s.Cases {
			c := &s.Cases[i]
			c.Scope = scope.PushChild(ast.ScopeBlock)
			a.collectStmts(c.Scope, c.Body)
		}
		if s.DefaultBody != nil {
			s.DefaultScope = scope.PushChild(ast.ScopeBlock)
			a.collectStmts(s.DefaultScope, s.DefaultBody)
		}

	case *ast.SReturn, *ast.SExprStmt, *ast.SMisc, *ast.SParam:
		// No declarations of their own.
	}
}
