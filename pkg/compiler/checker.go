package compiler

import "github.com/smasonuk/simplecc/pkg/diag"

// Checker holds the single piece of state the semantic rules in spec.md
// §4.D need beyond the raw expression trees they operate on: the sink
// diagnostics are reported through. Every method is otherwise a pure
// function from raw fragments to a checked fragment; none of them consult
// or mutate a symbol table, which is why Scope lookups happen in the
// parser and are passed in as already-resolved Symbols or Types.
type Checker struct {
	rep *diag.Reporter
}

// NewChecker creates a Checker reporting through rep.
func NewChecker(rep *diag.Reporter) *Checker {
	return &Checker{rep: rep}
}

func (c *Checker) errorf(format string, args ...string) {
	c.rep.Errorf(format, args...)
}

// errored is a shorthand for "conjure a fresh error-typed expression" so a
// caller can keep returning an Expr after a diagnosed failure.
func errored() Expr {
	return &Number{ExprBase: ExprBase{Typ: ErrorType}}
}

// anyError reports whether any of es carries ErrorType, in which case
// spec.md §4.D says to propagate silently: produce another error-typed
// node without a new diagnostic.
func anyError(es ...Expr) bool {
	for _, e := range es {
		if e.Base().Typ.IsError() {
			return true
		}
	}
	return false
}

//  Conversion helpers (spec.md §4.D)

// promote wraps *e in a Cast to int if its type is char. It mutates the
// slot in place, matching the source's "wrap child pointers" strategy.
func promote(e *Expr) {
	t := (*e).Base().Typ
	if t.Kind() == KindScalar && t.Specifier() == SpecChar && t.Indirection() == 0 {
		*e = newCast(*e, t.Promote())
	}
}

// decay wraps *e in an Address whose result type is the array's decayed
// pointer type, if *e is an array.
func decay(e *Expr) {
	t := (*e).Base().Typ
	if t.Kind() != KindArray {
		return
	}
	decayed := t.Decay()
	*e = &Unary{ExprBase: ExprBase{Typ: decayed}, Op: OpAddress, X: *e}
}

// extend widens *e to t: to long with sign-extension if *e is char or int
// and t is long; otherwise it just promotes char to int.
func extend(e *Expr, t Type) {
	et := (*e).Base().Typ
	if et.Kind() == KindScalar && (et.Specifier() == SpecChar || et.Specifier() == SpecInt) && et.Indirection() == 0 &&
		t.Kind() == KindScalar && t.Specifier() == SpecLong && t.Indirection() == 0 {
		*e = newCast(*e, NewScalar(SpecLong, 0))
		return
	}
	promote(e)
}

// cast prepares *e for an explicit or implicit conversion to t: an int
// literal being widened to long is folded directly into a long literal
// (its value is preserved exactly, since Simple C literals never overflow
// an int); anything else is wrapped in an explicit Cast node unless it is
// already of type t.
func cast(e *Expr, t Type) {
	if n, ok := (*e).(*Number); ok && n.Typ.Equal(NewScalar(SpecInt, 0)) && t.Equal(NewScalar(SpecLong, 0)) {
		*e = &Number{ExprBase: ExprBase{Typ: t}, Value: n.Value}
		return
	}
	if !(*e).Base().Typ.Equal(t) {
		*e = newCast(*e, t)
	}
}

// scale prepares *e to be added to a pointer-sized index: pointer
// arithmetic by `size` bytes per element. A size of 1 is just a long
// extension; a literal index is constant-folded; otherwise the scaling
// multiply is emitted as an explicit long Binary node.
func scale(e *Expr, size int) {
	if size == 1 {
		extend(e, NewScalar(SpecLong, 0))
		return
	}
	if v, ok := (*e).(*Number); ok {
		*e = &Number{ExprBase: ExprBase{Typ: NewScalar(SpecLong, 0)}, Value: v.Value * int64(size)}
		return
	}
	extend(e, NewScalar(SpecLong, 0))
	scaleLit := &Number{ExprBase: ExprBase{Typ: NewScalar(SpecLong, 0)}, Value: int64(size)}
	*e = &Binary{ExprBase: ExprBase{Typ: NewScalar(SpecLong, 0)}, Op: OpMultiply, L: *e, R: scaleLit}
}

func newCast(e Expr, t Type) Expr {
	return &Cast{ExprBase: ExprBase{Typ: t}, X: e}
}

//  Expression rules (spec.md §4.D)

// CheckIndex checks a[b], desugaring to *(a + scale(b, sizeof *a)) per the
// table in spec.md §4.D.
func (c *Checker) CheckIndex(a, b Expr) Expr {
	decay(&a)
	promote(&a)
	decay(&b)
	promote(&b)
	if anyError(a, b) {
		return errored()
	}
	if !a.Base().Typ.IsPointer() || !b.Base().Typ.IsNumeric() {
		c.errorf("invalid operands to binary %s", "[]")
		return errored()
	}
	extend(&b, NewScalar(SpecLong, 0))
	target := a.Base().Typ.Dereference()
	scale(&b, target.Size())
	sum := &Binary{ExprBase: ExprBase{Typ: a.Base().Typ}, Op: OpAdd, L: a, R: b}
	return &Unary{ExprBase: ExprBase{Typ: target}, Op: OpDereference, X: sum}
}

// CheckNot checks !e.
func (c *Checker) CheckNot(e Expr) Expr {
	decay(&e)
	promote(&e)
	if anyError(e) {
		return errored()
	}
	if !e.Base().Typ.IsScalar() {
		c.errorf("invalid operand to unary %s", "!")
		return errored()
	}
	return &Unary{ExprBase: ExprBase{Typ: NewScalar(SpecInt, 0)}, Op: OpNot, X: e}
}

// CheckNegate checks -e.
func (c *Checker) CheckNegate(e Expr) Expr {
	decay(&e)
	promote(&e)
	if anyError(e) {
		return errored()
	}
	if !e.Base().Typ.IsNumeric() {
		c.errorf("invalid operand to unary %s", "-")
		return errored()
	}
	return &Unary{ExprBase: ExprBase{Typ: e.Base().Typ}, Op: OpNegate, X: e}
}

// CheckDereference checks *e.
func (c *Checker) CheckDereference(e Expr) Expr {
	decay(&e)
	if anyError(e) {
		return errored()
	}
	if !e.Base().Typ.IsPointer() {
		c.errorf("invalid operand to unary %s", "*")
		return errored()
	}
	return &Unary{ExprBase: ExprBase{Typ: e.Base().Typ.Dereference()}, Op: OpDereference, X: e}
}

// CheckAddress checks &e.
func (c *Checker) CheckAddress(e Expr) Expr {
	if anyError(e) {
		return errored()
	}
	if !lvalue(e) {
		c.errorf("lvalue required in expression")
		return errored()
	}
	return &Unary{ExprBase: ExprBase{Typ: e.Base().Typ.AddressOf()}, Op: OpAddress, X: e}
}

// CheckSizeof checks sizeof e, folding directly to a Number rather than
// producing a Sizeof node (spec.md §4.D).
func (c *Checker) CheckSizeof(e Expr) Expr {
	if anyError(e) {
		return errored()
	}
	if e.Base().Typ.Kind() == KindFunction {
		c.errorf("invalid operand in sizeof expression")
		return errored()
	}
	return &Number{ExprBase: ExprBase{Typ: NewScalar(SpecLong, 0)}, Value: int64(e.Base().Typ.Size())}
}

// CheckCast checks (T) e.
func (c *Checker) CheckCast(t Type, e Expr) Expr {
	decay(&e)
	if anyError(e) {
		return errored()
	}
	et := e.Base().Typ
	ok := (et.IsNumeric() && t.IsNumeric()) ||
		(et.IsPointer() && t.IsPointer()) ||
		(et.Specifier() == SpecLong && et.Indirection() == 0 && t.IsPointer()) ||
		(et.IsPointer() && t.Specifier() == SpecLong && t.Indirection() == 0)
	if !ok {
		c.errorf("invalid operand in cast expression")
		return errored()
	}
	cast(&e, t)
	return e
}

// prepareArith applies the "extend each to other's type, then decay" rule
// shared by *, /, % and the numeric branches of + and -: each operand is
// extended toward the OTHER operand's pre-extension type, so (int, long)
// both become long while (int, int) stays int.
func prepareArith(a, b *Expr) {
	aType, bType := (*a).Base().Typ, (*b).Base().Typ
	extend(a, bType)
	extend(b, aType)
	decay(a)
	decay(b)
}

// checkArith implements *, /, % (spec.md §4.D: both numeric, result is
// the type of left after extension).
func (c *Checker) checkArith(op BinaryOp, a, b Expr) Expr {
	if !a.Base().Typ.IsNumeric() || !b.Base().Typ.IsNumeric() {
		if !anyError(a, b) {
			c.errorf("invalid operands to binary %s", op.String())
		}
		return errored()
	}
	prepareArith(&a, &b)
	if anyError(a, b) {
		return errored()
	}
	return &Binary{ExprBase: ExprBase{Typ: a.Base().Typ}, Op: op, L: a, R: b}
}

// CheckMultiply checks a*b.
func (c *Checker) CheckMultiply(a, b Expr) Expr { return c.checkArith(OpMultiply, a, b) }

// CheckDivide checks a/b.
func (c *Checker) CheckDivide(a, b Expr) Expr { return c.checkArith(OpDivide, a, b) }

// CheckRemainder checks a%b.
func (c *Checker) CheckRemainder(a, b Expr) Expr { return c.checkArith(OpRemainder, a, b) }

// CheckAdd checks a+b: numeric+numeric is arithmetic; pointer+numeric (in
// either order) scales the numeric side by the pointee size and yields a
// pointer.
func (c *Checker) CheckAdd(a, b Expr) Expr {
	if anyError(a, b) {
		return errored()
	}
	extend(&a, b.Base().Typ)
	extend(&b, a.Base().Typ)
	decay(&a)
	decay(&b)
	switch {
	case a.Base().Typ.IsNumeric() && b.Base().Typ.IsNumeric():
		prepareArith(&a, &b)
		return &Binary{ExprBase: ExprBase{Typ: a.Base().Typ}, Op: OpAdd, L: a, R: b}
	case a.Base().Typ.IsPointer() && b.Base().Typ.IsNumeric():
		scale(&b, a.Base().Typ.Dereference().Size())
		return &Binary{ExprBase: ExprBase{Typ: a.Base().Typ}, Op: OpAdd, L: a, R: b}
	case a.Base().Typ.IsNumeric() && b.Base().Typ.IsPointer():
		scale(&a, b.Base().Typ.Dereference().Size())
		return &Binary{ExprBase: ExprBase{Typ: b.Base().Typ}, Op: OpAdd, L: b, R: a}
	default:
		c.errorf("invalid operands to binary %s", "+")
		return errored()
	}
}

// CheckSubtract checks a-b: numeric-numeric is arithmetic; pointer-numeric
// scales; pointer-pointer (of equal type) yields a long element count via
// a synthesized Divide by the element size.
func (c *Checker) CheckSubtract(a, b Expr) Expr {
	if anyError(a, b) {
		return errored()
	}
	extend(&a, b.Base().Typ)
	extend(&b, a.Base().Typ)
	decay(&a)
	decay(&b)
	switch {
	case a.Base().Typ.IsNumeric() && b.Base().Typ.IsNumeric():
		prepareArith(&a, &b)
		return &Binary{ExprBase: ExprBase{Typ: a.Base().Typ}, Op: OpSubtract, L: a, R: b}
	case a.Base().Typ.IsPointer() && b.Base().Typ.IsNumeric():
		scale(&b, a.Base().Typ.Dereference().Size())
		return &Binary{ExprBase: ExprBase{Typ: a.Base().Typ}, Op: OpSubtract, L: a, R: b}
	case a.Base().Typ.IsPointer() && b.Base().Typ.IsPointer():
		if !a.Base().Typ.Equal(b.Base().Typ) {
			c.errorf("invalid operands to binary %s", "-")
			return errored()
		}
		elemSize := a.Base().Typ.Dereference().Size()
		diff := &Binary{ExprBase: ExprBase{Typ: NewScalar(SpecLong, 0)}, Op: OpSubtract, L: a, R: b}
		divisor := &Number{ExprBase: ExprBase{Typ: NewScalar(SpecLong, 0)}, Value: int64(elemSize)}
		return &Binary{ExprBase: ExprBase{Typ: NewScalar(SpecLong, 0)}, Op: OpDivide, L: diff, R: divisor}
	default:
		c.errorf("invalid operands to binary %s", "-")
		return errored()
	}
}

// CheckRelational checks <, >, <=, >=, ==, != — all require compatible
// operands after extension and decay, and always produce int.
func (c *Checker) CheckRelational(op BinaryOp, a, b Expr) Expr {
	if anyError(a, b) {
		return errored()
	}
	extend(&a, b.Base().Typ)
	extend(&b, a.Base().Typ)
	decay(&a)
	decay(&b)
	if !a.Base().Typ.IsCompatibleWith(b.Base().Typ) {
		c.errorf("invalid operands to binary %s", op.String())
		return errored()
	}
	return &Binary{ExprBase: ExprBase{Typ: NewScalar(SpecInt, 0)}, Op: op, L: a, R: b}
}

// CheckLogical checks && and ||: both operands must be scalar after
// decay/promote; result is always int.
func (c *Checker) CheckLogical(op LogicalOp, a, b Expr) Expr {
	decay(&a)
	promote(&a)
	decay(&b)
	promote(&b)
	if anyError(a, b) {
		return errored()
	}
	if !a.Base().Typ.IsScalar() || !b.Base().Typ.IsScalar() {
		c.errorf("invalid operands to binary %s", op.String())
		return errored()
	}
	return &Logical{ExprBase: ExprBase{Typ: NewScalar(SpecInt, 0)}, Op: op, L: a, R: b}
}

// CheckCall checks callee(args...). calleeType must be KindFunction (the
// parser resolves the callee symbol via Scope.Lookup and reports
// "'X' undeclared" itself before ever reaching here).
func (c *Checker) CheckCall(callee *Symbol, args []Expr) Expr {
	if callee.Type.Kind() != KindFunction {
		c.errorf("called object is not a function")
		return errored()
	}
	params := callee.Type.Params()
	if len(args) < len(params) || (len(args) > len(params) && !callee.Type.Variadic()) {
		c.errorf("invalid arguments to called function")
		return errored()
	}
	checked := make([]Expr, len(args))
	for i, arg := range args {
		decay(&arg)
		promote(&arg)
		if anyError(arg) {
			return errored()
		}
		if i < len(params) {
			if !arg.Base().Typ.IsCompatibleWith(params[i]) {
				c.errorf("invalid arguments to called function")
				return errored()
			}
			cast(&arg, params[i])
		} else if !arg.Base().Typ.IsScalar() {
			c.errorf("invalid arguments to called function")
			return errored()
		}
		checked[i] = arg
	}
	resultType := NewScalar(callee.Type.Specifier(), callee.Type.Indirection())
	return &Call{ExprBase: ExprBase{Typ: resultType}, Callee: callee, Args: checked, ResultType: resultType}
}

//  Statement rules (spec.md §4.D)

// CheckReturn checks `return e;` against fn's declared return type.
func (c *Checker) CheckReturn(e Expr, retType Type) Stmt {
	decay(&e)
	if !anyError(e) {
		if !e.Base().Typ.IsCompatibleWith(retType) {
			c.errorf("invalid return type")
			e = errored()
		} else {
			cast(&e, retType)
		}
	}
	return &Return{X: e}
}

// CheckAssign checks `lhs = rhs;`.
func (c *Checker) CheckAssign(lhs, rhs Expr) Stmt {
	if anyError(lhs, rhs) {
		return &Assignment{LHS: lhs, RHS: rhs}
	}
	if !lvalue(lhs) {
		c.errorf("lvalue required in expression")
		return &Assignment{LHS: lhs, RHS: errored()}
	}
	decay(&rhs)
	if !rhs.Base().Typ.IsCompatibleWith(lhs.Base().Typ) {
		c.errorf("invalid operands to binary %s", "=")
		return &Assignment{LHS: lhs, RHS: errored()}
	}
	cast(&rhs, lhs.Base().Typ)
	return &Assignment{LHS: lhs, RHS: rhs}
}

// CheckBreak diagnoses a break statement outside any loop (spec.md §4.D,
// §7). loopDepth is maintained by the parser.
func (c *Checker) CheckBreak(loopDepth int) Stmt {
	if loopDepth == 0 {
		c.errorf("break statement not within loop")
	}
	return &Break{}
}

// CheckTest validates a while/for/if condition: it must be scalar after
// decay/promote (spec.md §7: "scalar type required in statement").
func (c *Checker) CheckTest(e Expr) Expr {
	decay(&e)
	promote(&e)
	if anyError(e) {
		return e
	}
	if !e.Base().Typ.IsScalar() {
		c.errorf("scalar type required in statement")
		return errored()
	}
	return e
}
