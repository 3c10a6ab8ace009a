package lower

import (
	"github.com/OwlyNest/owlyc/internal/ast"
	"github.com/OwlyNest/owlyc/internal/ir"
)

// lowerStmts lowers a statement list in order, threading the current
// block from one statement to the next. It stops early (without
// lowering the remaining statements) once a statement has terminated
// the block -- dead code after an unconditional return/break/continue
// has nowhere left to attach to.
func (l *Lowerer) lowerStmts(f *ir.Function, b *ir.Block, stmts []ast.Stmt, lc *loopCtx) *ir.Block {
	for i := range stmts {
		if b.Terminated() {
			break
		}
		b = l.lowerStmt(f, b, &stmts[i], lc)
	}
	return b
}

func (l *Lowerer) lowerStmt(f *ir.Function, b *ir.Block, stmt *ast.Stmt, lc *loopCtx) *ir.Block {
	switch s := stmt.Data.(type) {
	case *ast.SVarDecl:
		return l.lowerLocalVarDecl(f, b, stmt, s)

	case *ast.SArrayDecl:
		return l.lowerLocalArrayDecl(f, b, stmt, s)

	case *ast.STypedef, *ast.SEnumDecl, *ast.SStructDecl, *ast.SUnionDecl:
		return b // type-only, nothing to emit

	case *ast.SReturn:
		if s.Value == nil {
			b.Return(nil)
			return b
		}
		val, b := l.lowerExpr(f, b, s.Value, false)
		b.Return(val)
		return b

	case *ast.SExprStmt:
		_, b = l.lowerExpr(f, b, &s.Value, false)
		return b

	case *ast.SBlock:
		return l.lowerStmts(f, b, s.Body, lc)

	case *ast.SIf:
		return l.lowerIf(f, b, s, lc)

	case *ast.SWhile:
		return l.lowerWhile(f, b, s, lc)

	case *ast.SDoWhile:
		return l.lowerDoWhile(f, b, s, lc)

	case *ast.SFor:
		return l.lowerFor(f, b, s, lc)

	case *ast.SSwitch:
		return l.lowerSwitch(f, b, s, lc)

	case *ast.SMisc:
		switch s.Kind {
		case ast.MiscBreak:
			if lc != nil {
				b.Jump(lc.breakTarget)
			}
		case ast.MiscContinue:
			if lc != nil {
				b.Jump(lc.continueTarget)
			}
		}
		return b

	default:
		return b
	}
}

// lowerLocalVarDecl allocas a stack slot for the variable, stores its
// initializer (if any) into it, and binds the name in the function's
// variable map.
func (l *Lowerer) lowerLocalVarDecl(f *ir.Function, b *ir.Block, stmt *ast.Stmt, s *ast.SVarDecl) *ir.Block {
	ptrSize, ptrAlign := l.ptrSize()
	slot := b.Alloca(f, stmt.ResolvedType, ptrSize, ptrAlign)
	f.VarMap[s.Name] = slot
	if s.Init != nil {
		var val *ir.Value
		val, b = l.lowerExpr(f, b, s.Init, false)
		b.Store(slot, val)
	}
	return b
}

// lowerLocalArrayDecl allocas a slot for the whole array and, for a
// brace initializer, flattens nested sets into one element sequence and
// stores element i at byte offset i*elemSize. A non-set initializer
// (checkArrayInitializer accepts one only when its type is a compatible
// array) is stored as a single value into the slot.
func (l *Lowerer) lowerLocalArrayDecl(f *ir.Function, b *ir.Block, stmt *ast.Stmt, s *ast.SArrayDecl) *ir.Block {
	ptrSize, ptrAlign := l.ptrSize()
	slot := b.Alloca(f, stmt.ResolvedType, ptrSize, ptrAlign)
	f.VarMap[s.Name] = slot
	if s.Init == nil {
		return b
	}

	elemType := stmt.ResolvedType.Array.Elem
	elemSize := int64(elemType.Size())
	longType := l.reg.Builtin("long")

	set, ok := s.Init.Data.(*ast.ESet)
	if !ok {
		var val *ir.Value
		val, b = l.lowerExpr(f, b, s.Init, false)
		b.Store(slot, val)
		return b
	}
	var elems []*ast.Expr
	var flatten func(es []ast.Expr)
	flatten = func(es []ast.Expr) {
		for i := range es {
			if inner, ok := es[i].Data.(*ast.ESet); ok {
				flatten(inner.Elements)
				continue
			}
			elems = append(elems, &es[i])
		}
	}
	flatten(set.Elements)
	for i, elem := range elems {
		var val *ir.Value
		val, b = l.lowerExpr(f, b, elem, false)
		addr := slot
		if off := int64(i) * elemSize; off != 0 {
			addr = b.BinOp(f, ir.OpAdd, slot, ir.ConstInt(off, longType), l.reg.Pointer(elemType))
		}
		b.Store(addr, val)
	}
	return b
}

// lowerIf branches on the condition, lowers the taken body into a fresh
// block per arm, and joins every arm that didn't already terminate
// (via return/break/continue) at a shared continuation block. An if
// with no else (and no elseifs) branches straight to the continuation
// on the false edge.
func (l *Lowerer) lowerIf(f *ir.Function, b *ir.Block, s *ast.SIf, lc *loopCtx) *ir.Block {
	cond, b := l.lowerExpr(f, b, &s.Cond, false)

	thenB := f.NewBlock("if.then")
	var elseEntry *ir.Block
	if len(s.ElseIfs) > 0 {
		elseEntry = f.NewBlock("if.elseif")
	} else if s.ElseBody != nil {
		elseEntry = f.NewBlock("if.else")
	}
	cont := f.NewBlock("if.cont")

	if elseEntry != nil {
		b.Branch(cond, thenB, elseEntry)
	} else {
		b.Branch(cond, thenB, cont)
	}

	thenOut := l.lowerStmts(f, thenB, s.Body, lc)
	if !thenOut.Terminated() {
		thenOut.Jump(cont)
	}

	cur := elseEntry
	for i := range s.ElseIfs {
		ei := &s.ElseIfs[i]
		econd, nextCur := l.lowerExpr(f, cur, &ei.Cond, false)
		cur = nextCur

		armThen := f.NewBlock("if.elseif.then")
		var armNext *ir.Block
		switch {
		case i+1 < len(s.ElseIfs):
			armNext = f.NewBlock("if.elseif")
		case s.ElseBody != nil:
			armNext = f.NewBlock("if.else")
		default:
			armNext = cont
		}
		cur.Branch(econd, armThen, armNext)

		armOut := l.lowerStmts(f, armThen, ei.Body, lc)
		if !armOut.Terminated() {
			armOut.Jump(cont)
		}
		cur = armNext
	}

	if s.ElseBody != nil {
		elseOut := l.lowerStmts(f, cur, s.ElseBody, lc)
		if !elseOut.Terminated() {
			elseOut.Jump(cont)
		}
	}

	return cont
}

// lowerWhile lowers `while (cond) body` as: jump to a condition block,
// branch on the condition into the body or out to the continuation, and
// jump back to the condition block at the bottom of the body.
func (l *Lowerer) lowerWhile(f *ir.Function, b *ir.Block, s *ast.SWhile, lc *loopCtx) *ir.Block {
	condB := f.NewBlock("while.cond")
	bodyB := f.NewBlock("while.body")
	cont := f.NewBlock("while.end")

	b.Jump(condB)

	cond, condOut := l.lowerExpr(f, condB, &s.Cond, false)
	condOut.Branch(cond, bodyB, cont)

	inner := &loopCtx{continueTarget: condB, breakTarget: cont, parent: lc}
	bodyOut := l.lowerStmts(f, bodyB, s.Body, inner)
	if !bodyOut.Terminated() {
		bodyOut.Jump(condB)
	}

	return cont
}

// lowerDoWhile lowers `do body while (cond)`: the body always runs once,
// then the condition gates whether control loops back.
func (l *Lowerer) lowerDoWhile(f *ir.Function, b *ir.Block, s *ast.SDoWhile, lc *loopCtx) *ir.Block {
	bodyB := f.NewBlock("do.body")
	condB := f.NewBlock("do.cond")
	cont := f.NewBlock("do.end")

	b.Jump(bodyB)

	inner := &loopCtx{continueTarget: condB, breakTarget: cont, parent: lc}
	bodyOut := l.lowerStmts(f, bodyB, s.Body, inner)
	if !bodyOut.Terminated() {
		bodyOut.Jump(condB)
	}

	cond, condOut := l.lowerExpr(f, condB, &s.Cond, false)
	condOut.Branch(cond, bodyB, cont)

	return cont
}

// lowerFor lowers `for (init; cond; inc) body`. A missing cond is
// treated as always-true (an infinite loop the program must break out
// of); a missing inc just skips straight back to the condition.
func (l *Lowerer) lowerFor(f *ir.Function, b *ir.Block, s *ast.SFor, lc *loopCtx) *ir.Block {
	if s.Init != nil {
		b = l.lowerStmt(f, b, s.Init, lc)
	}

	condB := f.NewBlock("for.cond")
	bodyB := f.NewBlock("for.body")
	incB := f.NewBlock("for.inc")
	cont := f.NewBlock("for.end")

	b.Jump(condB)

	if s.Cond != nil {
		cond, condOut := l.lowerExpr(f, condB, s.Cond, false)
		condOut.Branch(cond, bodyB, cont)
	} else {
		condB.Jump(bodyB)
	}

	// continue jumps to the increment clause, not straight back to the
	// condition, so `continue` still runs inc before re-testing cond.
	inner := &loopCtx{continueTarget: incB, breakTarget: cont, parent: lc}
	bodyOut := l.lowerStmts(f, bodyB, s.Body, inner)
	if !bodyOut.Terminated() {
		bodyOut.Jump(incB)
	}

	if s.Inc != nil {
		_, incOut := l.lowerExpr(f, incB, s.Inc, false)
		if !incOut.Terminated() {
			incOut.Jump(condB)
		}
	} else {
		incB.Jump(condB)
	}

	return cont
}

// lowerSwitch lowers a switch with no fallthrough (unlike C): each case
// is a chained equality comparison against the scrutinee, and every
// case/default body unconditionally jumps to the after-block unless it
// already terminated itself (via break/return). A switch pushes its own
// breakTarget but passes the enclosing loop's continueTarget through
// unchanged, since switch isn't a loop for `continue`'s purposes.
func (l *Lowerer) lowerSwitch(f *ir.Function, b *ir.Block, s *ast.SSwitch, lc *loopCtx) *ir.Block {
	scrutinee, b := l.lowerExpr(f, b, &s.Scrutinee, false)
	cont := f.NewBlock("switch.end")

	var parentContinue *ir.Block
	if lc != nil {
		parentContinue = lc.continueTarget
	}
	inner := &loopCtx{continueTarget: parentContinue, breakTarget: cont, parent: lc}

	cur := b
	for i := range s.Cases {
		c := &s.Cases[i]
		caseVal, nextCur := l.lowerExpr(f, cur, &c.Expr, false)
		cur = nextCur

		matchB := f.NewBlock("switch.case")
		nextTestB := f.NewBlock("switch.next")
		eq := cur.Cmp(f, ir.OpEq, scrutinee, caseVal, l.reg.Builtin("int"))
		cur.Branch(eq, matchB, nextTestB)

		caseOut := l.lowerStmts(f, matchB, c.Body, inner)
		if !caseOut.Terminated() {
			caseOut.Jump(cont)
		}
		cur = nextTestB
	}

	if s.DefaultBody != nil {
		defOut := l.lowerStmts(f, cur, s.DefaultBody, inner)
		if !defOut.Terminated() {
			defOut.Jump(cont)
		}
	} else if !cur.Terminated() {
		cur.Jump(cont)
	}

	return cont
}
