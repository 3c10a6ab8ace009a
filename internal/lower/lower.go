// Package lower turns a type-checked ast.Program (internal/sema has
// already attached a resolved type to every declaration and expression)
// into internal/ir's SSA form. esbuild has no analogous stage -- a JS
// bundler never lowers to a register IR -- so the walk here is modeled
// after the only shape esbuild does use repeatedly: a recursive visitor
// that threads a little bit of ambient state (js_parser's scope stack is
// the closest analogue) through a switch over the AST's tagged union,
// rather than building a separate visitor-pattern interface per node.
//
// Two pieces of ambient state thread through every call instead of
// living on the Lowerer: the current basic block (statement and
// expression lowering both return whatever block control now continues
// in, since if/while/for/switch/short-circuit/ternary all split control
// flow into new blocks) and the current loopCtx (for break/continue
// target resolution).
package lower

import (
	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/ir"
	"github.com/OwlyNest/owlyc/internal/types"
)

// Lowerer holds the state shared across one module's worth of lowering:
// the target registry (for pointer width and builtin lookups) and the
// module being built. Nothing here is reused across compilations.
type Lowerer struct {
	reg *types.Registry
	mod *ir.Module

	// globals maps a top-level variable/array name to the ir.Value
	// naming it, so a function body referencing a global (rather than a
	// local found in its own ir.Function.VarMap) can be lowered without
	// re-walking the scope tree sema already resolved.
	globals map[string]*ir.Value
}

// New builds a Lowerer targeting reg's pointer width.
func New(reg *types.Registry) *Lowerer {
	return &Lowerer{reg: reg, globals: make(map[string]*ir.Value)}
}

// loopCtx is the per-loop (and per-switch) break/continue target frame,
// linked back to its enclosing one so a nested construct can find an
// outer loop's continue target without re-deriving it. A switch pushes
// its own breakTarget but reuses the enclosing loop's continueTarget
// unchanged, since `continue` inside a switch targets the loop around
// it, not the switch itself.
type loopCtx struct {
	continueTarget *ir.Block
	breakTarget    *ir.Block
	parent         *loopCtx
}

// LowerProgram lowers every top-level declaration in prog into one
// ir.Module named sourceName.
func (l *Lowerer) LowerProgram(prog *ast.Program, sourceName string) *ir.Module {
	l.mod = ir.NewModule(sourceName)
	for i := range prog.Stmts {
		l.lowerTopLevel(&prog.Stmts[i])
	}
	return l.mod
}

func (l *Lowerer) lowerTopLevel(stmt *ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *ast.SFuncDecl:
		l.lowerFunction(stmt, s)

	case *ast.SVarDecl:
		g := &ir.Value{Kind: ir.VGlobal, Name: s.Name, Type: stmt.ResolvedType}
		if s.Init != nil {
			g.Init = l.constFoldGlobalInit(stmt.ResolvedType, s.Init)
		}
		l.mod.Globals = append(l.mod.Globals, g)
		l.globals[s.Name] = g

	case *ast.SArrayDecl:
		g := &ir.Value{Kind: ir.VGlobal, Name: s.Name, Type: stmt.ResolvedType}
		// Array initializers are lowered only for locals (see
		// lowerLocalArrayDecl); a global array's `{...}` initializer is a
		// known limitation -- see DESIGN.md -- since the module format has
		// nowhere to hang a list of per-element constants off a Value yet.
		l.mod.Globals = append(l.mod.Globals, g)
		l.globals[s.Name] = g

	case *ast.STypedef, *ast.SEnumDecl, *ast.SStructDecl, *ast.SUnionDecl:
		// Type-only declarations: nothing to lower, their types were
		// already consumed by sema.

	default:
		// SReturn/SExprStmt/SMisc/SParam/SIf/SWhile/SDoWhile/SFor/SSwitch/
		// SBlock never appear at top level; the parser wouldn't produce one.
	}
}

// lowerFunction builds f's entry block, binds every parameter into its
// VarMap (each parameter gets an alloca'd slot like every other local,
// since this lowering never promotes locals out of memory -- see
// internal/ir/build.go's Alloca doc comment), lowers the body, and
// appends a bare return if the last block isn't already terminated.
func (l *Lowerer) lowerFunction(stmt *ast.Stmt, s *ast.SFuncDecl) {
	if s.Prototype {
		return
	}

	retType := s.ReturnType.Resolved
	paramTypes := make([]*types.Type, len(s.Params))
	paramNames := make([]string, len(s.Params))
	for i := range s.Params {
		paramTypes[i] = s.Params[i].Type.Resolved
		paramNames[i] = s.Params[i].Name
	}

	f := l.mod.NewFunction(s.Name, retType, paramTypes, paramNames)
	b := f.Entry

	ptrSize, ptrAlign := l.reg.SizeOfPointer()
	for i, name := range f.ParamNames {
		slot := b.Alloca(f, paramTypes[i], ptrSize, ptrAlign)
		b.Store(slot, f.Params[i])
		f.VarMap[name] = slot
	}

	final := l.lowerStmts(f, b, s.Body, nil)
	if !final.Terminated() {
		if retType == nil || retType.IsVoid() {
			final.Return(nil)
		} else {
			final.Return(ir.Undef(retType))
		}
	}
}

// constFoldGlobalInit materializes a global's initializer when it's a
// bare literal, the only shape a module-level Value can carry today; a
// non-literal global initializer is left unfolded (Init stays nil).
func (l *Lowerer) constFoldGlobalInit(t *types.Type, e *ast.Expr) *ir.Value {
	switch d := e.Data.(type) {
	case *ast.ELiteral:
		switch d.Kind {
		case ast.LitInt, ast.LitChar, ast.LitBool:
			return ir.ConstInt(d.Int, t)
		case ast.LitFloat:
			return ir.ConstFloat(d.Float, t)
		}
		return nil
	case *ast.EGrouping:
		return l.constFoldGlobalInit(t, &d.Value)
	default:
		return nil
	}
}

// ptrSize is a convenience the statement/expression lowering files reach
// for whenever they need to alloca a new slot.
func (l *Lowerer) ptrSize() (uint32, uint32) {
	return l.reg.SizeOfPointer()
}
