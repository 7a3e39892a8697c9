package compiler

// genCall implements the System V call sequence from spec.md §4.H:
// arguments are evaluated right-to-left so side effects run in the order a
// reader expects for a stack-growing-down ABI, every live register is
// spilled before the call since this generator tracks no callee-saved
// registers, the first six arguments go in the fixed parameter registers,
// any further arguments are pushed right-to-left with padding to keep the
// stack 16-byte aligned at the `call` instruction, and a variadic callee
// gets `%eax=0` to say no vector registers were used for float arguments.
func (cg *CodeGen) genCall(c *Call) *Register {
	for i := len(c.Args) - 1; i >= 0; i-- {
		cg.gen(c.Args[i])
	}

	for _, r := range cg.regs {
		if r.Node != nil {
			cg.spill(r.Node)
		}
	}

	n := len(c.Args)
	regCount := cg.cfg.RegisterParams
	if n < regCount {
		regCount = n
	}
	paramRegs := cg.paramRegs()
	for i := 0; i < regCount; i++ {
		size := c.Args[i].Base().Typ.Size()
		cg.emit("mov%s %s, %s", sizeSuffix(size), cg.operand(c.Args[i]), paramRegs[i].nameForSize(size))
	}

	extra := n - regCount
	if extra > 0 && extra%2 == 1 {
		cg.emit("subq $%d, %%rsp", cg.cfg.PointerSize)
	}
	for i := n - 1; i >= regCount; i-- {
		cg.emit("pushq %s", cg.widenToPointer(c.Args[i]))
	}

	if c.Callee.Type.Variadic() {
		cg.emit("movl $0, %%eax")
	}
	cg.emit("call %s", cg.symbolName(c.Callee.Name))

	if extra > 0 {
		delta := extra * cg.cfg.PointerSize
		if extra%2 == 1 {
			delta += cg.cfg.PointerSize
		}
		cg.emit("addq $%d, %%rsp", delta)
	}

	for _, arg := range c.Args {
		cg.release(arg)
	}

	rax := cg.findReg("%rax")
	cg.assignReg(c, rax)
	return rax
}

// widenToPointer produces a pointer-width (%rax-based) operand suitable for
// pushq from a narrower argument: pushq always moves a full 8-byte slot, so
// a char or int argument must first be widened into a scratch register.
// %rax is never one of the six parameter registers (spec.md §4.C), so it is
// guaranteed free at this point regardless of how many register arguments
// preceded it.
func (cg *CodeGen) widenToPointer(v Expr) string {
	rax := cg.findReg("%rax")
	size := v.Base().Typ.Size()
	switch size {
	case cg.cfg.PointerSize:
		cg.emit("movq %s, %s", cg.operand(v), rax.Name64)
	case cg.cfg.IntSize:
		cg.emit("movslq %s, %s", cg.operand(v), rax.Name64)
	default:
		cg.emit("movsbq %s, %s", cg.operand(v), rax.Name64)
	}
	return rax.Name64
}
