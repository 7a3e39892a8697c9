package compiler

import "fmt"

// Expr is implemented by every checked expression node. Each carries a
// result Type (possibly ErrorType), plus the two mutable codegen
// annotations from spec.md §3: the register currently holding its value
// (nil when none) and the stack slot it has been spilled to (0 when none).
// Base returns a pointer into the concrete node so callers can read or
// mutate those shared fields without a type switch.
type Expr interface {
	exprNode()
	Base() *ExprBase
	String() string
}

// ExprBase holds the fields common to every expression node. It is
// embedded by value in each concrete type; Base() returns its address.
type ExprBase struct {
	Typ         Type
	Reg         *Register
	SpillOffset int
}

func (b *ExprBase) Base() *ExprBase { return b }

// Number is an integer literal. Its Typ is set by the checker: plain
// literals are int, literals produced by long-widening (spec.md's `cast`
// and `scale` helpers) are long.
type Number struct {
	ExprBase
	Value int64
}

func (*Number) exprNode() {}
func (n *Number) String() string { return fmt.Sprintf("%d", n.Value) }

// String is a string-literal expression. Label is assigned when the
// literal is interned into the code generator's string pool (codegen.go);
// it is the empty Label until then.
type String struct {
	ExprBase
	Value string
	Label Label
}

func (*String) exprNode() {}
func (s *String) String() string { return fmt.Sprintf("%q", s.Value) }

// Identifier is a reference to a declared symbol.
type Identifier struct {
	ExprBase
	Sym *Symbol
}

func (*Identifier) exprNode() {}
func (i *Identifier) String() string { return i.Sym.Name }

// Call is a function invocation. ResultType duplicates ExprBase.Typ for
// documentation purposes (spec.md §3 names it explicitly); it is always
// kept equal to Typ.
type Call struct {
	ExprBase
	Callee     *Symbol
	Args       []Expr
	ResultType Type
}

func (*Call) exprNode() {}
func (c *Call) String() string { return fmt.Sprintf("%s(...)", c.Callee.Name) }

// UnaryOp distinguishes the unary expression forms that share a single
// operand slot.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNegate
	OpDereference
	OpAddress
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNegate:
		return "-"
	case OpDereference:
		return "*"
	case OpAddress:
		return "&"
	default:
		return "?"
	}
}

// Unary covers !e, -e, *e, and &e.
type Unary struct {
	ExprBase
	Op UnaryOp
	X  Expr
}

func (*Unary) exprNode() {}
func (u *Unary) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.X) }

// Cast is an explicit (T) e conversion, also used internally by the
// checker to insert implicit promotions/extensions.
type Cast struct {
	ExprBase
	X Expr
}

func (*Cast) exprNode() {}
func (c *Cast) String() string { return fmt.Sprintf("(%s)(%s)", c.Typ, c.X) }

// BinaryOp enumerates the arithmetic and comparison binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
	OpLessThan
	OpGreaterThan
	OpLessOrEqual
	OpGreaterOrEqual
	OpEqual
	OpNotEqual
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpRemainder:
		return "%"
	case OpLessThan:
		return "<"
	case OpGreaterThan:
		return ">"
	case OpLessOrEqual:
		return "<="
	case OpGreaterOrEqual:
		return ">="
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	default:
		return "?"
	}
}

// IsComparison reports whether op is one of the six relational/equality
// operators, all of which produce int results (spec.md §4.D).
func (op BinaryOp) IsComparison() bool {
	return op >= OpLessThan && op <= OpNotEqual
}

// Binary covers the arithmetic and comparison binary operators.
type Binary struct {
	ExprBase
	Op   BinaryOp
	L, R Expr
}

func (*Binary) exprNode() {}
func (b *Binary) String() string { return fmt.Sprintf("(%s %s %s)", b.L, b.Op, b.R) }

// LogicalOp distinguishes the two short-circuit operators.
type LogicalOp int

const (
	OpLogicalAnd LogicalOp = iota
	OpLogicalOr
)

func (op LogicalOp) String() string {
	if op == OpLogicalAnd {
		return "&&"
	}
	return "||"
}

// Logical covers && and ||, which the generator lowers with short-circuit
// branches rather than the compare-and-set sequence used for Binary.
type Logical struct {
	ExprBase
	Op   LogicalOp
	L, R Expr
}

func (*Logical) exprNode() {}
func (l *Logical) String() string { return fmt.Sprintf("(%s %s %s)", l.L, l.Op, l.R) }

// lvalue implements spec.md §3's predicate: true for a non-array
// Identifier, or any Dereference (a Unary with Op == OpDereference); false
// otherwise.
func lvalue(e Expr) bool {
	switch n := e.(type) {
	case *Identifier:
		return n.Sym.Type.Kind() != KindArray
	case *Unary:
		return n.Op == OpDereference
	default:
		return false
	}
}

// isNumber reports whether e is a Number literal and, if so, writes its
// value to *out.
func isNumber(e Expr, out *int64) bool {
	n, ok := e.(*Number)
	if !ok {
		return false
	}
	if out != nil {
		*out = n.Value
	}
	return true
}

// isDereference reports whether e is a Dereference expression and, if so,
// yields its operand.
func isDereference(e Expr) (Expr, bool) {
	u, ok := e.(*Unary)
	if !ok || u.Op != OpDereference {
		return nil, false
	}
	return u.X, true
}

//  Statements

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
}

// SimpleStmt is a bare expression evaluated for its side effect, e.g. a
// function call statement.
type SimpleStmt struct{ X Expr }

func (*SimpleStmt) stmtNode() {}

// Assignment is `lhs = rhs;`.
type Assignment struct{ LHS, RHS Expr }

func (*Assignment) stmtNode() {}

// Return is `return e;` (e may be nil for a void function, though Simple C
// as specified always has a value-returning form).
type Return struct{ X Expr }

func (*Return) stmtNode() {}

// Break is `break;`.
type Break struct{}

func (*Break) stmtNode() {}

// While is `while (cond) body`.
type While struct {
	Cond Expr
	Body Stmt
}

func (*While) stmtNode() {}

// For is `for (init; cond; incr) body`. Init and Incr are nil when the
// corresponding clause was omitted; Cond is nil when the middle clause was
// omitted (an omitted condition is always true).
type For struct {
	Init Stmt
	Cond Expr
	Incr Stmt
	Body Stmt
}

func (*For) stmtNode() {}

// If is `if (cond) then [else elseStmt]`. Else is nil when absent.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

func (*If) stmtNode() {}

// Block is a brace-delimited statement sequence with its own Scope.
type Block struct {
	Scope *Scope
	Stmts []Stmt
}

func (*Block) stmtNode() {}

//  Top level

// Function is a top-level function definition. Params holds the parameter
// symbols in declaration order, already inserted into Body.Scope; the
// allocator (alloc.go) walks Params directly rather than re-deriving them
// from the scope so on-stack vs. register-passed layout stays a single
// pass over a known-ordered slice.
type Function struct {
	Sym    *Symbol
	Params []*Symbol
	Body   *Block
}

// Program is the checked result of an entire translation unit: every
// function definition plus the global scope (which holds both function
// symbols and file-scope variable declarations for the final `.comm`
// emission pass, spec.md §4.H "Globals").
type Program struct {
	Functions []*Function
	Global    *Scope
}
