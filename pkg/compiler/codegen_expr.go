package compiler

import "fmt"

// gen fully evaluates e and returns the register now holding its value.
// Every case leaves exactly one register bound to e on return, matching the
// invariant that assertRegsFree checks between statements (spec.md §4.G/§5).
func (cg *CodeGen) gen(e Expr) *Register {
	switch n := e.(type) {
	case *Number:
		r := cg.getReg()
		cg.emit("mov%s $%d, %s", sizeSuffix(n.Typ.Size()), n.Value, r.nameForSize(n.Typ.Size()))
		cg.assignReg(e, r)
		return r
	case *String:
		l := cg.intern(n)
		n.Label = l
		r := cg.getReg()
		cg.emit("leaq %s(%%rip), %s", l, r.Name64)
		cg.assignReg(e, r)
		return r
	case *Identifier:
		return cg.genIdentifier(n)
	case *Unary:
		return cg.genUnary(n)
	case *Cast:
		return cg.genCast(n)
	case *Binary:
		return cg.genBinary(n)
	case *Logical:
		return cg.genLogicalValue(n)
	case *Call:
		return cg.genCall(n)
	default:
		panic(fmt.Sprintf("compiler: gen: unhandled expression %T", e))
	}
}

func (cg *CodeGen) genIdentifier(id *Identifier) *Register {
	size := id.Typ.Size()
	r := cg.getReg()
	cg.emit("mov%s %s, %s", sizeSuffix(size), cg.addr(id.Sym), r.nameForSize(size))
	cg.assignReg(id, r)
	return r
}

func (cg *CodeGen) genUnary(u *Unary) *Register {
	switch u.Op {
	case OpAddress:
		return cg.genAddress(u)
	case OpDereference:
		ptr := cg.gen(u.X)
		size := u.Typ.Size()
		cg.emit("mov%s (%s), %s", sizeSuffix(size), ptr.Name64, ptr.nameForSize(size))
		cg.release(u.X)
		cg.assignReg(u, ptr)
		return ptr
	case OpNot:
		r := cg.gen(u.X)
		cg.release(u.X)
		cg.emit("cmp%s $0, %s", sizeSuffix(u.X.Base().Typ.Size()), r.nameForSize(u.X.Base().Typ.Size()))
		cg.emit("sete %s", r.Name8)
		cg.emit("movzbl %s, %s", r.Name8, r.Name32)
		cg.assignReg(u, r)
		return r
	case OpNegate:
		r := cg.gen(u.X)
		cg.release(u.X)
		cg.emit("neg%s %s", sizeSuffix(u.Typ.Size()), r.nameForSize(u.Typ.Size()))
		cg.assignReg(u, r)
		return r
	default:
		panic("compiler: genUnary: unhandled operator")
	}
}

// genAddress evaluates &X. Taking the address of an Identifier emits a
// `lea`; taking the address of a dereference is the `&*p ≡ p` identity from
// spec.md §4.D, so it just returns p's own value with no extra instruction.
func (cg *CodeGen) genAddress(u *Unary) *Register {
	if inner, ok := isDereference(u.X); ok {
		r := cg.gen(inner)
		cg.assignReg(u, r)
		return r
	}
	id, ok := u.X.(*Identifier)
	if !ok {
		panic("compiler: genAddress: operand is not an lvalue")
	}
	r := cg.getReg()
	cg.emit("leaq %s, %s", cg.addr(id.Sym), r.Name64)
	cg.assignReg(u, r)
	return r
}

// genCast narrows or widens X's value in place: a widening extend/promote
// uses the sign-extending move matching the source and destination
// sizes; a narrowing cast is a no-op at the bit level since the
// register already holds the wider value and later reads take the
// destination's own size suffix.
func (cg *CodeGen) genCast(c *Cast) *Register {
	r := cg.gen(c.X)
	from, to := c.X.Base().Typ, c.Typ
	if to.Size() > from.Size() {
		mnemonic := extendMnemonic(from, to)
		cg.emit("%s %s, %s", mnemonic, r.nameForSize(from.Size()), r.nameForSize(to.Size()))
	}
	cg.release(c.X)
	cg.assignReg(c, r)
	return r
}

// extendMnemonic picks the sign-extending move for widening from to to:
// every widening on the integer ladder char→int→long sign-extends, since
// Simple C's char is a signed 8-bit integer. Pointers are already full
// width and never reach here; no zero-extending move is ever chosen.
func extendMnemonic(from, to Type) string {
	if from.Size() == 1 {
		if to.Size() == 4 {
			return "movsbl"
		}
		return "movsbq"
	}
	return "movslq"
}

func (cg *CodeGen) genBinary(b *Binary) *Register {
	if b.Op.IsComparison() {
		return cg.genComparison(b)
	}
	l := cg.gen(b.L)
	r := cg.gen(b.R)
	size := b.Typ.Size()
	switch b.Op {
	case OpAdd:
		cg.emit("add%s %s, %s", sizeSuffix(size), r.nameForSize(size), l.nameForSize(size))
	case OpSubtract:
		cg.emit("sub%s %s, %s", sizeSuffix(size), r.nameForSize(size), l.nameForSize(size))
	case OpMultiply:
		cg.emit("imul%s %s, %s", sizeSuffix(size), r.nameForSize(size), l.nameForSize(size))
	case OpDivide, OpRemainder:
		return cg.genDivide(b, l, r)
	default:
		panic("compiler: genBinary: unhandled operator")
	}
	cg.release(b.R)
	cg.release(b.L)
	cg.assignReg(b, l)
	return l
}

// genDivide implements integer division and remainder. The dividend must be
// in %rax/%eax, sign-extended into %rdx/%edx via cqto/cltd, before idiv; the
// quotient ends up in %rax, the remainder in %rdx (spec.md §4.H). Both
// operand registers, plus %rax and %rdx, are freed and reclaimed around the
// sequence since idiv's register requirements are fixed regardless of which
// registers l and r started in.
func (cg *CodeGen) genDivide(b *Binary, l, r *Register) *Register {
	size := b.Typ.Size()
	suffix := sizeSuffix(size)
	raxReg, rdxReg := cg.findReg("%rax"), cg.findReg("%rdx")

	// Relocate the divisor out of rax/rdx before those are claimed by the
	// dividend and remainder below.
	divisor := r
	if divisor == raxReg || divisor == rdxReg {
		spare := cg.pickSpare(raxReg, rdxReg)
		cg.emit("mov%s %s, %s", suffix, r.nameForSize(size), spare.nameForSize(size))
		cg.assignReg(b.R, spare)
		divisor = spare
	}

	cg.loadReg(b.L, raxReg)
	if rdxReg.Node != nil && rdxReg.Node != b.L {
		cg.spill(rdxReg.Node)
	}
	if suffix == "q" {
		cg.emit("cqto")
	} else {
		cg.emit("cltd")
	}
	cg.emit("idiv%s %s", suffix, divisor.nameForSize(size))

	cg.release(b.L)
	cg.release(b.R)
	var result *Register
	if b.Op == OpDivide {
		result = raxReg
		cg.assignReg(nil, rdxReg)
	} else {
		result = rdxReg
		cg.assignReg(nil, raxReg)
	}
	cg.assignReg(b, result)
	return result
}

func (cg *CodeGen) findReg(name string) *Register {
	for _, r := range cg.regs {
		if r.Name64 == name {
			return r
		}
	}
	panic("compiler: no register named " + name)
}

// pickSpare returns a free register other than any of exclude, spilling the
// first eligible occupied one if none is free. Used by genDivide to relocate
// a value that would otherwise collide with idiv's fixed %rax/%rdx usage.
func (cg *CodeGen) pickSpare(exclude ...*Register) *Register {
	excluded := func(r *Register) bool {
		for _, e := range exclude {
			if r == e {
				return true
			}
		}
		return false
	}
	for _, r := range cg.regs {
		if !excluded(r) && r.Node == nil {
			return r
		}
	}
	for _, r := range cg.regs {
		if !excluded(r) {
			cg.loadReg(nil, r)
			return r
		}
	}
	panic("compiler: no spare register available")
}

// condSet maps a comparison operator to the setcc mnemonic used once the
// operands have been compared with cmp (spec.md §4.H).
var condSet = map[BinaryOp]string{
	OpLessThan:        "setl",
	OpGreaterThan:     "setg",
	OpLessOrEqual:     "setle",
	OpGreaterOrEqual:  "setge",
	OpEqual:           "sete",
	OpNotEqual:        "setne",
}

// condJump maps a comparison operator to the jcc mnemonic that jumps when
// the comparison holds, used by test().
var condJump = map[BinaryOp]string{
	OpLessThan:       "jl",
	OpGreaterThan:    "jg",
	OpLessOrEqual:    "jle",
	OpGreaterOrEqual: "jge",
	OpEqual:          "je",
	OpNotEqual:       "jne",
}

// invertCond maps a comparison operator to its logical negation, used by
// test() when branching on the condition being false.
var invertCond = map[BinaryOp]BinaryOp{
	OpLessThan: OpGreaterOrEqual, OpGreaterOrEqual: OpLessThan,
	OpGreaterThan: OpLessOrEqual, OpLessOrEqual: OpGreaterThan,
	OpEqual: OpNotEqual, OpNotEqual: OpEqual,
}

func (cg *CodeGen) genComparison(b *Binary) *Register {
	l := cg.gen(b.L)
	r := cg.gen(b.R)
	size := b.L.Base().Typ.Size()
	cg.emit("cmp%s %s, %s", sizeSuffix(size), r.nameForSize(size), l.nameForSize(size))
	cg.emit("%s %s", condSet[b.Op], l.Name8)
	cg.emit("movzbl %s, %s", l.Name8, l.Name32)
	cg.release(b.R)
	cg.release(b.L)
	cg.assignReg(b, l)
	return l
}

// genLogicalValue evaluates a Logical (&&, ||) into an int-valued 0/1
// result, used wherever the boolean result is itself a value rather than a
// direct branch condition (e.g. `x = a && b;`).
func (cg *CodeGen) genLogicalValue(l *Logical) *Register {
	trueLabel := cg.labels.New()
	endLabel := cg.labels.New()
	cg.test(l, trueLabel, true)
	r := cg.getReg()
	cg.emit("movl $0, %s", r.Name32)
	cg.emit("jmp %s", endLabel)
	cg.label(trueLabel)
	cg.emit("movl $1, %s", r.Name32)
	cg.label(endLabel)
	cg.assignReg(l, r)
	return r
}

// test emits the branch primitive every conditional construct is built
// from (spec.md §4.G "test"): a jump to label taken exactly when e's truth
// value equals sense. Comparisons and short-circuit logical expressions are
// lowered directly into jumps instead of first materializing a 0/1 value.
func (cg *CodeGen) test(e Expr, label Label, sense bool) {
	switch n := e.(type) {
	case *Logical:
		cg.testLogical(n, label, sense)
	case *Binary:
		if n.Op.IsComparison() {
			cg.testComparison(n, label, sense)
			return
		}
		cg.testDefault(e, label, sense)
	case *Unary:
		if n.Op == OpNot {
			cg.test(n.X, label, !sense)
			return
		}
		cg.testDefault(e, label, sense)
	default:
		cg.testDefault(e, label, sense)
	}
}

func (cg *CodeGen) testComparison(b *Binary, label Label, sense bool) {
	l := cg.gen(b.L)
	r := cg.gen(b.R)
	size := b.L.Base().Typ.Size()
	cg.emit("cmp%s %s, %s", sizeSuffix(size), r.nameForSize(size), l.nameForSize(size))
	cg.release(b.R)
	cg.release(b.L)
	op := b.Op
	if !sense {
		op = invertCond[op]
	}
	cg.emit("%s %s", condJump[op], label)
}

func (cg *CodeGen) testDefault(e Expr, label Label, sense bool) {
	r := cg.gen(e)
	cg.release(e)
	cg.emit("cmp%s $0, %s", sizeSuffix(e.Base().Typ.Size()), r.nameForSize(e.Base().Typ.Size()))
	if sense {
		cg.emit("jne %s", label)
	} else {
		cg.emit("je %s", label)
	}
}

// testLogical implements short-circuit evaluation. Branching on `a && b`
// being true requires both to hold; branching on it being false only
// requires one to fail, so the two operators invert which sub-branch is a
// fallthrough versus a jump depending on sense (spec.md §4.H).
func (cg *CodeGen) testLogical(l *Logical, label Label, sense bool) {
	if (l.Op == OpLogicalAnd) == sense {
		fail := cg.labels.New()
		cg.test(l.L, fail, !sense)
		cg.test(l.R, label, sense)
		cg.label(fail)
		return
	}
	cg.test(l.L, label, sense)
	cg.test(l.R, label, sense)
}
