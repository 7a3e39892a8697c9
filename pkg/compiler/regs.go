package compiler

// Register is one slot in the fixed general-purpose pool. It exposes its
// three ABI-relevant names and a nullable back-pointer to the expression
// currently holding it. At most one Expr may point back at a given
// Register, and at most one Register may point at a given Expr; assignReg
// is the only place that link is created or broken (spec.md §4.G).
type Register struct {
	Name64 string
	Name32 string
	Name8  string
	Node   Expr
}

// nameForSize returns the register's name at the given operand width (1,
// 4, or 8 bytes), matching the size-suffix table in spec.md §4.H.
func (r *Register) nameForSize(size int) string {
	switch size {
	case 1:
		return r.Name8
	case 4:
		return r.Name32
	default:
		return r.Name64
	}
}

// newRegisterPool builds the fixed pool from spec.md §4.G, in the fixed
// order the generator and getreg() rely on: rax first (so getreg() prefers
// it), then the argument-passing registers in calling-convention order,
// then the two scratch registers.
func newRegisterPool() []*Register {
	return []*Register{
		{Name64: "%rax", Name32: "%eax", Name8: "%al"},
		{Name64: "%rdi", Name32: "%edi", Name8: "%dil"},
		{Name64: "%rsi", Name32: "%esi", Name8: "%sil"},
		{Name64: "%rdx", Name32: "%edx", Name8: "%dl"},
		{Name64: "%rcx", Name32: "%ecx", Name8: "%cl"},
		{Name64: "%r8", Name32: "%r8d", Name8: "%r8b"},
		{Name64: "%r9", Name32: "%r9d", Name8: "%r9b"},
		{Name64: "%r10", Name32: "%r10d", Name8: "%r10b"},
		{Name64: "%r11", Name32: "%r11d", Name8: "%r11b"},
	}
}

// paramRegisterNames names the registers, in argument order, that hold the
// first six integer/pointer parameters under the System V calling
// convention (spec.md §4.C, §4.H). paramRegs below resolves these against
// the pool built by newRegisterPool so indexing stays consistent.
var paramRegisterNames = [...]string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

// paramRegs returns the parameter-passing subset of cg's pool, in argument
// order.
func (cg *CodeGen) paramRegs() []*Register {
	out := make([]*Register, 0, len(paramRegisterNames))
	for _, name := range paramRegisterNames {
		for _, r := range cg.regs {
			if r.Name64 == name {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// assignReg establishes (or, when e and r are both non-nil is redundant
// with, and when either is nil merely tears down) the bidirectional link
// between an expression and a register. Either argument may be nil to
// detach the other's current partner without creating a new link.
func (cg *CodeGen) assignReg(e Expr, r *Register) {
	if r != nil && r.Node != nil {
		r.Node.Base().Reg = nil
	}
	if e != nil && e.Base().Reg != nil {
		e.Base().Reg.Node = nil
	}
	if r != nil {
		r.Node = e
	}
	if e != nil {
		e.Base().Reg = r
	}
}

// loadReg implements spec.md §4.G's `load`: if r already holds another
// node, that node is spilled to a fresh stack slot; then, unless e is nil,
// a load from e's operand location into r is emitted; finally the
// bidirectional link between e and r is established.
func (cg *CodeGen) loadReg(e Expr, r *Register) {
	if r.Node != nil && r.Node != e {
		cg.spill(r.Node)
	}
	if e != nil {
		size := e.Base().Typ.Size()
		cg.emit("mov%s %s, %s", sizeSuffix(size), cg.operand(e), r.nameForSize(size))
	}
	cg.assignReg(e, r)
}

// spill writes node's current register value to a freshly allocated
// negative stack slot, decrementing the running frame offset by the
// node's size, and detaches it from its register.
func (cg *CodeGen) spill(node Expr) {
	size := node.Base().Typ.Size()
	cg.offset -= size
	node.Base().SpillOffset = cg.offset
	cg.emit("mov%s %s, %d(%%rbp)", sizeSuffix(size), node.Base().Reg.nameForSize(size), cg.offset)
	cg.assignReg(nil, node.Base().Reg)
}

// getReg implements spec.md §4.G's `getreg`: the first free register in
// the pool, or the result of spilling the first register if the pool is
// full.
func (cg *CodeGen) getReg() *Register {
	for _, r := range cg.regs {
		if r.Node == nil {
			return r
		}
	}
	first := cg.regs[0]
	cg.loadReg(nil, first)
	return first
}

// assertRegsFree panics if any register is still bound, enforcing the
// invariant from spec.md §4.G/§5 that every register is free once a
// statement has finished generating.
func (cg *CodeGen) assertRegsFree() {
	for _, r := range cg.regs {
		if r.Node != nil {
			panic("compiler: register " + r.Name64 + " still bound after statement")
		}
	}
}
