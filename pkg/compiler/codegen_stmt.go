package compiler

import "fmt"

// genBlock generates every statement in b in order. assertRegsFree runs
// after each one, enforcing spec.md §5's invariant that no register stays
// bound across a statement boundary.
func (cg *CodeGen) genBlock(b *Block) {
	for _, s := range b.Stmts {
		cg.genStmt(s)
		cg.assertRegsFree()
	}
}

func (cg *CodeGen) genStmt(s Stmt) {
	switch n := s.(type) {
	case *SimpleStmt:
		if n.X != nil {
			cg.release(cg.evalDiscard(n.X))
		}
	case *Assignment:
		cg.genAssignment(n)
	case *Return:
		cg.genReturn(n)
	case *Break:
		cg.genBreak()
	case *While:
		cg.genWhile(n)
	case *For:
		cg.genFor(n)
	case *If:
		cg.genIf(n)
	case *Block:
		cg.genBlock(n)
	default:
		panic(fmt.Sprintf("compiler: genStmt: unhandled statement %T", s))
	}
}

// evalDiscard evaluates e purely for its side effects and returns it so the
// caller can release its register; used for expression-statements such as a
// bare function call.
func (cg *CodeGen) evalDiscard(e Expr) Expr {
	cg.gen(e)
	return e
}

// genAssignment stores rhs's value into lhs's storage: a plain variable
// (Identifier) or the target of a pointer (Dereference).
func (cg *CodeGen) genAssignment(a *Assignment) {
	r := cg.gen(a.RHS)
	size := a.RHS.Base().Typ.Size()
	if id, ok := a.LHS.(*Identifier); ok {
		cg.emit("mov%s %s, %s", sizeSuffix(size), r.nameForSize(size), cg.addr(id.Sym))
		cg.release(a.RHS)
		return
	}
	target, ok := isDereference(a.LHS)
	if !ok {
		panic("compiler: genAssignment: lhs is not an lvalue")
	}
	ptr := cg.gen(target)
	cg.emit("mov%s %s, (%s)", sizeSuffix(size), r.nameForSize(size), ptr.Name64)
	cg.release(target)
	cg.release(a.RHS)
}

// genReturn evaluates the return expression (if any), moves it into %rax if
// it isn't already there, and jumps to the function's shared exit label so
// every return runs the same epilogue (spec.md §4.H).
func (cg *CodeGen) genReturn(ret *Return) {
	if ret.X != nil {
		r := cg.gen(ret.X)
		rax := cg.findReg("%rax")
		if r != rax {
			size := ret.X.Base().Typ.Size()
			cg.emit("mov%s %s, %s", sizeSuffix(size), r.nameForSize(size), rax.nameForSize(size))
		}
		cg.release(ret.X)
	}
	cg.emit("jmp %s", cg.exitLabel)
}

// genBreak jumps to the innermost enclosing loop's end label. The parser
// guarantees breakStack is non-empty here (CheckBreak already diagnosed a
// break outside any loop, in which case the statement generated is simply
// never reachable from a valid program).
func (cg *CodeGen) genBreak() {
	if len(cg.breakStack) == 0 {
		return
	}
	cg.emit("jmp %s", cg.breakStack[len(cg.breakStack)-1])
}

func (cg *CodeGen) pushBreak(l Label) { cg.breakStack = append(cg.breakStack, l) }
func (cg *CodeGen) popBreak()         { cg.breakStack = cg.breakStack[:len(cg.breakStack)-1] }

// genWhile lowers `while (cond) body` to a test-at-top loop.
func (cg *CodeGen) genWhile(w *While) {
	top := cg.labels.New()
	end := cg.labels.New()
	cg.label(top)
	cg.test(w.Cond, end, false)
	cg.pushBreak(end)
	cg.genStmt(w.Body)
	cg.assertRegsFree()
	cg.popBreak()
	cg.emit("jmp %s", top)
	cg.label(end)
}

// genFor lowers `for (init; cond; incr) body`; an omitted cond is always
// true (spec.md §3), so no test is emitted for it.
func (cg *CodeGen) genFor(f *For) {
	if f.Init != nil {
		cg.genStmt(f.Init)
		cg.assertRegsFree()
	}
	top := cg.labels.New()
	end := cg.labels.New()
	cg.label(top)
	if f.Cond != nil {
		cg.test(f.Cond, end, false)
	}
	cg.pushBreak(end)
	cg.genStmt(f.Body)
	cg.assertRegsFree()
	cg.popBreak()
	if f.Incr != nil {
		cg.genStmt(f.Incr)
		cg.assertRegsFree()
	}
	cg.emit("jmp %s", top)
	cg.label(end)
}

// genIf lowers `if (cond) then [else elseStmt]`.
func (cg *CodeGen) genIf(f *If) {
	elseLabel := cg.labels.New()
	cg.test(f.Cond, elseLabel, false)
	cg.genStmt(f.Then)
	cg.assertRegsFree()
	if f.Else == nil {
		cg.label(elseLabel)
		return
	}
	end := cg.labels.New()
	cg.emit("jmp %s", end)
	cg.label(elseLabel)
	cg.genStmt(f.Else)
	cg.assertRegsFree()
	cg.label(end)
}
