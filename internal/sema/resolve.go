package sema

import (
	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/diag"
	"github.com/OwlyNest/owlyc/internal/types"
)

// ===== Pass 2: resolve types =====
//
// Pass 2 re-enters the same scopes pass 1 created, by reading them back
// off Stmt.Scope/ElseIf.Scope/SwitchCase.Scope rather than re-deriving
// them by walking children in lockstep; it's the "record scope/symbol
// back-references during pass 1" strategy the data model calls for.

func (a *Analyzer) resolveStmts(scope *ast.Scope, stmts []ast.Stmt) {
	for i := range stmts {
		a.resolveStmt(scope, &stmts[i])
	}
}

func (a *Analyzer) resolveStmt(scope *ast.Scope, stmt *ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *ast.SVarDecl:
		t := a.resolveTypeSpec(scope, s.Type)
		stmt.ResolvedType = t
		if stmt.Symbol != nil {
			stmt.Symbol.Type = t
		}

	case *ast.SArrayDecl:
		elem := a.resolveTypeSpec(scope, s.ElemType)
		t := a.reg.Array(elem, s.Dims)
		stmt.ResolvedType = t
		if stmt.Symbol != nil {
			stmt.Symbol.Type = t
		}

	case *ast.STypedef:
		if a.resolving[stmt] {
			a.errorf(stmt.Loc, diag.IDRecursiveTypedef, "typedef %q refers to itself", s.Name)
			t := a.reg.Builtin("int")
			stmt.ResolvedType = t
			return
		}
		a.resolving[stmt] = true
		t := a.resolveTypeSpec(scope, s.Type)
		delete(a.resolving, stmt)
		stmt.ResolvedType = t
		if stmt.Symbol != nil {
			stmt.Symbol.Type = t
		}

	case *ast.SFuncDecl:
		ret := a.resolveTypeSpec(stmt.Scope, s.ReturnType)
		params := make([]*types.Type, len(s.Params))
		for i := range s.Params {
			p := &s.Params[i]
			pt := a.resolveTypeSpec(stmt.Scope, p.Type)
			params[i] = pt
			if stmt.Symbol != nil && i < len(stmt.Symbol.Params) {
				stmt.Symbol.Params[i].Type = pt
			}
		}
		fnType := a.reg.Function(ret, params, false)
		stmt.ResolvedType = fnType
		if stmt.Symbol != nil {
			stmt.Symbol.Type = fnType
		}
		if !s.Prototype {
			a.resolveStmts(stmt.Scope, s.Body)
		}

	case *ast.SEnumDecl:
		if s.IsReference {
			stmt.ResolvedType = a.resolveTagReference(scope, stmt.Loc, s.Tag, ast.SymEnum)
			return
		}
		enumType := a.reg.NewEnum(s.Tag, stmt)
		stmt.ResolvedType = enumType
		if stmt.Symbol != nil {
			stmt.Symbol.Type = enumType
		}
		var prev int64 = -1
		for i := range s.Members {
			m := &s.Members[i]
			if m.Value != nil {
				if v, ok := a.evalConstInt(scope, *m.Value); ok {
					m.ConstValue = v
				} else {
					a.errorf(stmt.Loc, diag.IDNonConstantEnumValue, "enum member %q's value must be a constant expression", m.Name)
					m.ConstValue = prev + 1
				}
			} else {
				m.ConstValue = prev + 1
			}
			prev = m.ConstValue
			if m.Symbol != nil {
				m.Symbol.Type = enumType
				m.Symbol.IsConstant = true
				m.Symbol.ConstValue = m.ConstValue
				a.enumValues[m.Symbol] = m.ConstValue
			}
		}

	case *ast.SStructDecl:
		if s.IsReference {
			stmt.ResolvedType = a.resolveTagReference(scope, stmt.Loc, s.Tag, ast.SymStruct)
			return
		}
		fields := make([]types.Field, len(s.Members))
		for i := range s.Members {
			m := &s.Members[i]
			fields[i] = types.Field{Name: m.Name, Type: a.resolveTypeSpec(stmt.Scope, m.Type)}
		}
		structType := a.reg.NewStruct(s.Tag, stmt, fields)
		stmt.ResolvedType = structType
		if stmt.Symbol != nil {
			stmt.Symbol.Type = structType
		}

	case *ast.SUnionDecl:
		if s.IsReference {
			stmt.ResolvedType = a.resolveTagReference(scope, stmt.Loc, s.Tag, ast.SymUnion)
			return
		}
		fields := make([]types.Field, len(s.Members))
		for i := range s.Members {
			m := &s.Members[i]
			fields[i] = types.Field{Name: m.Name, Type: a.resolveTypeSpec(stmt.Scope, m.Type)}
		}
		unionType := a.reg.NewUnion(s.Tag, stmt, fields)
		stmt.ResolvedType = unionType
		if stmt.Symbol != nil {
			stmt.Symbol.Type = unionType
		}

	case *ast.SBlock:
		a.resolveStmts(stmt.Scope, s.Body)

	case *ast.SIf:
		a.resolveStmts(s.BodyScope, s.Body)
		for i := range s.ElseIfs {
			a.resolveStmts(s.ElseIfs[i].Scope, s.ElseIfs[i].Body)
		}
		if s.ElseBody != nil {
			a.resolveStmts(s.ElseBodyScope, s.ElseBody)
		}

	case *ast.SWhile:
		a.resolveStmts(stmt.Scope, s.Body)

	case *ast.SDoWhile:
		a.resolveStmts(stmt.Scope, s.Body)

	case *ast.SFor:
		if s.Init != nil {
			a.resolveStmt(stmt.Scope, s.Init)
		}
		a.resolveStmts(stmt.Scope, s.Body)

	case *ast.SSwitch:
		for i := range s.Cases {
			a.resolveStmts(s.Cases[i].Scope, s.Cases[i].Body)
		}
		if s.DefaultBody != nil {
			a.resolveStmts(s.DefaultScope, s.DefaultBody)
		}
	}
}

// resolveTagReference looks up a bodiless `struct Foo`/`union Foo`/`enum
// Foo` mention against the already-declared tag symbol. Owly requires
// the tagged declaration to precede its reference (no two-pass forward
// resolution across tags), matching the single-pass-of-type-resolution
// shape pass 2 implements; an unresolved forward reference is reported
// as an undefined type rather than silently treated as opaque.
func (a *Analyzer) resolveTagReference(scope *ast.Scope, loc ast.Loc, tag string, kind ast.SymbolKind) *types.Type {
	sym := scope.Lookup(tag)
	if sym == nil || sym.Kind != kind {
		a.errorf(loc, diag.IDUndefinedType, "undefined tag %q", tag)
		switch kind {
		case ast.SymUnion:
			return a.reg.NewOpaqueUnion(tag, nil)
		default:
			return a.reg.NewOpaqueStruct(tag, nil)
		}
	}
	return sym.Type
}

// resolveTypeSpec computes the resolved types.Type a TypeSpec denotes:
// an inline struct/union/enum, a builtin name, or a typedef name, with
// qualifiers and pointer depth applied last (spec section 4.2's
// resolution order).
func (a *Analyzer) resolveTypeSpec(scope *ast.Scope, ts *ast.TypeSpec) *types.Type {
	if ts == nil {
		return nil
	}

	var base *types.Type
	switch {
	case ts.NestedDecl != nil:
		a.resolveStmt(scope, ts.NestedDecl)
		base = ts.NestedDecl.ResolvedType
	case ts.BaseName != "":
		name := ts.BaseName
		if name == "int" {
			switch ts.Length {
			case ast.LengthShort:
				name = "short"
			case ast.LengthLong:
				name = "long"
			case ast.LengthLongLong:
				name = "long long"
			}
		}
		if ts.Sign == ast.SignUnsigned {
			name = "unsigned " + name
		}
		if b := a.reg.Builtin(name); b != nil {
			base = b
		} else if sym := scope.Lookup(ts.BaseName); sym != nil && sym.Kind == ast.SymTypedef {
			if sym.Type == nil && sym.Decl != nil {
				// Not resolved yet (or naming itself): resolve it now so the
				// STypedef case's resolving guard can catch a cycle.
				a.resolveStmt(sym.Scope, sym.Decl)
			}
			base = types.Clone(sym.Type)
			if base == nil {
				base = a.reg.Builtin("int")
			}
		} else {
			a.errorf(ts.Loc, diag.IDUndefinedType, "undefined type %q", ts.BaseName)
			base = a.reg.Builtin("int")
		}
	default:
		base = a.reg.Builtin("int")
	}

	t := a.reg.PointerDepth(base, ts.PointerDepth)
	if ts.Const || ts.Volatile {
		t = t.WithQualifiers(types.Qualifiers{Const: ts.Const, Volatile: ts.Volatile})
	}
	ts.Resolved = t
	return t
}
