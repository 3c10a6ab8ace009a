package sema

import (
	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/diag"
	"github.com/OwlyNest/owlyc/internal/types"
)

// ===== Pass 3: check semantics =====
//
// Pass 3 re-enters the scope tree a third time, this time computing an
// inferred type (plus lvalue-ness and addressability) for every
// expression and running every check spec section 4.3 lists: initializer
// and return-type compatibility, call arity/argument types, member
// access, index expressions, address-of/dereference/increment operand
// requirements, sizeof, cast validity, and array-initializer element
// checks. A set literal outside an array initializer only has its
// elements inferred; their types are not compared with one another.

func (a *Analyzer) checkStmts(scope *ast.Scope, stmts []ast.Stmt) {
	for i := range stmts {
		a.checkStmt(scope, &stmts[i])
	}
}

func (a *Analyzer) checkStmt(scope *ast.Scope, stmt *ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *ast.SVarDecl:
		if s.Init != nil {
			it := a.inferExpr(scope, s.Init)
			a.checkAssignable(stmt.Loc, stmt.ResolvedType, it, s.Init)
		}

	case *ast.SArrayDecl:
		if s.Init != nil {
			a.checkArrayInitializer(scope, stmt.Loc, stmt.ResolvedType, s.Init)
		}

	case *ast.SFuncDecl:
		if s.Prototype {
			return
		}
		savedRet, savedLoop, savedBreak, savedSaw := a.returnType, a.loopDepth, a.breakDepth, a.sawReturn
		a.returnType = s.ReturnType.Resolved
		a.loopDepth, a.breakDepth, a.sawReturn = 0, 0, false

		a.checkStmts(stmt.Scope, s.Body)

		if !a.returnType.IsVoid() && !a.sawReturn {
			a.errorf(stmt.Loc, diag.IDMissingReturn, "function %q must return a value of type %s on every path", s.Name, a.returnType)
		}

		a.returnType, a.loopDepth, a.breakDepth, a.sawReturn = savedRet, savedLoop, savedBreak, savedSaw

	case *ast.SReturn:
		a.sawReturn = true
		if a.returnType == nil {
			return
		}
		if s.Value == nil {
			if !a.returnType.IsVoid() {
				a.errorf(stmt.Loc, diag.IDReturnTypeMismatch, "missing return value, function returns %s", a.returnType)
			}
			return
		}
		vt := a.inferExpr(scope, s.Value)
		if a.returnType.IsVoid() {
			a.errorf(stmt.Loc, diag.IDReturnTypeMismatch, "void function must not return a value")
			return
		}
		if vt != nil && !types.Compatible(vt, a.returnType) {
			a.errorf(stmt.Loc, diag.IDReturnTypeMismatch, "cannot return %s from a function returning %s", vt, a.returnType)
		} else if types.IsNarrowing(vt, a.returnType) {
			a.warnf(stmt.Loc, diag.IDNarrowingConversion, "returning %s narrows to %s", vt, a.returnType)
		}

	case *ast.SExprStmt:
		a.inferExpr(scope, &s.Value)

	case *ast.SIf:
		a.inferExpr(scope, &s.Cond)
		a.checkStmts(s.BodyScope, s.Body)
		for i := range s.ElseIfs {
			a.inferExpr(scope, &s.ElseIfs[i].Cond)
			a.checkStmts(s.ElseIfs[i].Scope, s.ElseIfs[i].Body)
		}
		if s.ElseBody != nil {
			a.checkStmts(s.ElseBodyScope, s.ElseBody)
		}

	case *ast.SWhile:
		a.inferExpr(scope, &s.Cond)
		a.loopDepth++
		a.breakDepth++
		a.checkStmts(stmt.Scope, s.Body)
		a.loopDepth--
		a.breakDepth--

	case *ast.SDoWhile:
		a.loopDepth++
		a.breakDepth++
		a.checkStmts(stmt.Scope, s.Body)
		a.loopDepth--
		a.breakDepth--
		a.inferExpr(scope, &s.Cond)

	case *ast.SFor:
		if s.Init != nil {
			a.checkStmt(stmt.Scope, s.Init)
		}
		if s.Cond != nil {
			a.inferExpr(stmt.Scope, s.Cond)
		}
		if s.Inc != nil {
			a.inferExpr(stmt.Scope, s.Inc)
		}
		a.loopDepth++
		a.breakDepth++
		a.checkStmts(stmt.Scope, s.Body)
		a.loopDepth--
		a.breakDepth--

	case *ast.SSwitch:
		a.inferExpr(scope, &s.Scrutinee)
		a.breakDepth++
		for i := range s.Cases {
			a.inferExpr(scope, &s.Cases[i].Expr)
			a.checkStmts(s.Cases[i].Scope, s.Cases[i].Body)
		}
		if s.DefaultBody != nil {
			a.checkStmts(s.DefaultScope, s.DefaultBody)
		}
		a.breakDepth--

	case *ast.SMisc:
		switch s.Kind {
		case ast.MiscBreak:
			if a.breakDepth == 0 {
				a.errorf(stmt.Loc, diag.IDBreakOutsideLoop, "'break' outside a loop or switch")
			}
		case ast.MiscContinue:
			if a.loopDepth == 0 {
				a.errorf(stmt.Loc, diag.IDContinueOutsideLoop, "'continue' outside a loop")
			}
		}

	case *ast.SBlock:
		a.checkStmts(stmt.Scope, s.Body)

	case *ast.SEnumDecl, *ast.SStructDecl, *ast.SUnionDecl, *ast.STypedef, *ast.SParam:
		// Nothing further to check: declarations were type-checked in pass 2.
	}
}

// checkAssignable reports a type-mismatch error (incompatible) or a
// narrowing warning (compatible but lossy) for assigning a value of type
// from into a destination of type to. loc anchors the diagnostic; expr
// is nil-safe and only used so a future caller can add more context.
func (a *Analyzer) checkAssignable(loc ast.Loc, to, from *types.Type, expr *ast.Expr) {
	if to == nil || from == nil {
		return
	}
	if !types.Compatible(from, to) {
		a.errorf(loc, diag.IDTypeMismatch, "cannot initialize %s from %s", to, from)
		return
	}
	if types.IsNarrowing(from, to) {
		a.warnf(loc, diag.IDNarrowingConversion, "initializing %s from %s narrows the value", to, from)
	}
}

// checkArrayInitializer validates a `{...}` array initializer against
// its declared array type: the element count must not exceed the
// array's, and every element must be assignment-compatible with the
// element type.
func (a *Analyzer) checkArrayInitializer(scope *ast.Scope, loc ast.Loc, arrType *types.Type, init *ast.Expr) {
	set, ok := init.Data.(*ast.ESet)
	if !ok {
		it := a.inferExpr(scope, init)
		a.checkAssignable(loc, arrType, it, init)
		return
	}
	if arrType == nil || arrType.Kind != types.KArray {
		return
	}
	if int64(len(set.Elements)) > arrType.Array.Count {
		a.errorf(loc, diag.IDTypeMismatch, "array initializer has %d elements, array holds %d", len(set.Elements), arrType.Array.Count)
	}
	for i := range set.Elements {
		et := a.inferExpr(scope, &set.Elements[i])
		a.checkAssignable(loc, arrType.Array.Elem, et, &set.Elements[i])
	}
}
