package sema

import "github.com/OwlyNest/owlyc/internal/ast"

// evalConstInt evaluates expr as a compile-time integer constant,
// following SPEC_FULL section 12's enum-value rule (read out of
// original_source/V3/src/middle/SA.c): literals, +/-/!/~ of a constant,
// +-*/% and &|^<<>> of two constants, parens, and a reference to an earlier enum
// member already recorded in a.enumValues. Anything else (a variable, a
// function call, a float) is not a constant expression here.
func (a *Analyzer) evalConstInt(scope *ast.Scope, expr ast.Expr) (int64, bool) {
	switch e := expr.Data.(type) {
	case *ast.ELiteral:
		switch e.Kind {
		case ast.LitInt, ast.LitChar:
			return e.Int, true
		case ast.LitBool:
			if e.Bool {
				return 1, true
			}
			return 0, true
		}
		return 0, false

	case *ast.EGrouping:
		return a.evalConstInt(scope, e.Value)

	case *ast.EUnary:
		if e.Postfix {
			return 0, false
		}
		v, ok := a.evalConstInt(scope, e.Value)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case ast.UnOpPos:
			return v, true
		case ast.UnOpNeg:
			return -v, true
		case ast.UnOpBitNot:
			return ^v, true
		case ast.UnOpNot:
			if v == 0 {
				return 1, true
			}
			return 0, true
		}
		return 0, false

	case *ast.EBinary:
		l, lok := a.evalConstInt(scope, e.Left)
		r, rok := a.evalConstInt(scope, e.Right)
		if !lok || !rok {
			return 0, false
		}
		switch e.Op {
		case ast.BinOpAdd:
			return l + r, true
		case ast.BinOpSub:
			return l - r, true
		case ast.BinOpMul:
			return l * r, true
		case ast.BinOpDiv:
			if r == 0 {
				return 0, false
			}
			return l / r, true
		case ast.BinOpMod:
			if r == 0 {
				return 0, false
			}
			return l % r, true
		case ast.BinOpBitwiseAnd:
			return l & r, true
		case ast.BinOpBitwiseOr:
			return l | r, true
		case ast.BinOpBitwiseXor:
			return l ^ r, true
		case ast.BinOpShl:
			return l << uint(r), true
		case ast.BinOpShr:
			return l >> uint(r), true
		}
		return 0, false

	case *ast.EIdentifier:
		sym := scope.Lookup(e.Name)
		if sym == nil {
			return 0, false
		}
		v, ok := a.enumValues[sym]
		return v, ok
	}

	return 0, false
}
