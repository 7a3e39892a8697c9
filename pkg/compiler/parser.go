package compiler

import (
	"strconv"
	"strings"

	"github.com/smasonuk/simplecc/pkg/diag"
)

// Parser is a recursive-descent, single-token-lookahead parser that builds
// a fully checked AST directly: every expression and statement is handed to
// the Checker as soon as its subexpressions are parsed, so there is no
// separate "raw AST then check" pass (spec.md §1's "single forward pass").
type Parser struct {
	lex *Lexer
	rep *diag.Reporter
	chk *Checker

	tok Token

	global  *Scope
	scope   *Scope
	fn      *Symbol // current function, for return-type checking
	loop    int     // nesting depth of while/for, for break validation
	funcs   map[string]bool

	lines []string // source split by line, for syntax-error snippets
}

// NewParser creates a Parser reading src, reporting through rep.
func NewParser(src string, rep *diag.Reporter) *Parser {
	p := &Parser{
		lex:   NewLexer(src, rep),
		rep:   rep,
		chk:   NewChecker(rep),
		funcs: make(map[string]bool),
		lines: strings.Split(src, "\n"),
	}
	p.global = NewScope(nil)
	p.scope = p.global
	p.tok = p.lex.Next()
	return p
}

// lineText returns the 1-indexed source line n, or "" if out of range;
// used to attach a snippet to a syntax-error diagnostic.
func (p *Parser) lineText(n int) string {
	if n < 1 || n > len(p.lines) {
		return ""
	}
	return p.lines[n-1]
}

// syntaxErrorf reports a parse error annotated with the current token's
// source line (spec.md §7). The message starts with "syntax error at 'X'"
// (or "syntax error at end of file"), followed by the description.
func (p *Parser) syntaxErrorf(format string, args ...string) {
	at := "end of file"
	if !p.at(EOF) {
		at = "'" + p.tok.Lexeme + "'"
	}
	p.rep.ErrorfLine(p.lineText(p.tok.Line), "syntax error at %s: "+format, append([]string{at}, args...)...)
}

// syntaxErrorfAt is syntaxErrorf for a line other than the current token's,
// used where the diagnostic names a token already consumed.
func (p *Parser) syntaxErrorfAt(line int, format string, args ...string) {
	p.rep.ErrorfLine(p.lineText(line), format, args...)
}

func (p *Parser) advance() { p.tok = p.lex.Next() }

func (p *Parser) at(tt TokenType) bool { return p.tok.Type == tt }

// expect consumes the current token if it matches tt, else reports a syntax
// error naming what was expected (spec.md §7's "source line + description"
// diagnostic shape) and does not advance, so the caller's recovery point is
// the offending token itself.
func (p *Parser) expect(tt TokenType) Token {
	if p.tok.Type != tt {
		p.syntaxErrorf("expected %s", tt.String())
		return p.tok
	}
	t := p.tok
	p.advance()
	return t
}

func (p *Parser) errorf(format string, args ...string) { p.rep.Errorf(format, args...) }

//  Program

// ParseProgram parses an entire translation unit into a checked *Program.
func ParseProgram(src string, rep *diag.Reporter) *Program {
	p := NewParser(src, rep)
	prog := &Program{Global: p.global}
	for !p.at(EOF) {
		if fn := p.parseTopLevel(); fn != nil {
			prog.Functions = append(prog.Functions, fn)
		}
	}
	return prog
}

// isTypeStart reports whether tt begins a type specifier.
func isTypeStart(tt TokenType) bool {
	switch tt {
	case KW_CHAR, KW_INT, KW_LONG, KW_VOID:
		return true
	default:
		return false
	}
}

// baseSpecifier consumes one of the four leading type keywords and returns
// the Specifier it names; 'void' is only legal as a return type or in an
// empty parameter list, callers that reach it in a variable declaration
// context report their own diagnostic.
func (p *Parser) baseSpecifier() (Specifier, bool) {
	switch p.tok.Type {
	case KW_CHAR:
		p.advance()
		return SpecChar, false
	case KW_INT:
		p.advance()
		return SpecInt, false
	case KW_LONG:
		p.advance()
		return SpecLong, false
	case KW_VOID:
		p.advance()
		return SpecInt, true // caller checks isVoid before using the specifier
	default:
		p.syntaxErrorf("expected type specifier")
		return SpecInt, false
	}
}

func (p *Parser) stars() int {
	n := 0
	for p.at(STAR) {
		n++
		p.advance()
	}
	return n
}

// parseTopLevel parses one global declaration: a variable, or a function
// prototype/definition. It returns a *Function only for a definition (a
// body with braces); prototypes and globals are inserted into the global
// scope and nil is returned.
func (p *Parser) parseTopLevel() *Function {
	spec, isVoid := p.baseSpecifier()
	indirection := p.stars()

	if !p.at(IDENT) {
		p.syntaxErrorf("expected identifier")
		p.advance()
		return nil
	}
	name := p.tok.Lexeme
	p.advance()

	if p.at(LPAREN) {
		return p.parseFunction(name, spec, indirection, isVoid)
	}

	if isVoid {
		p.errorf("variable '%s' declared void", name)
	}
	p.declareGlobalVar(name, spec, indirection)
	for p.at(COMMA) {
		p.advance()
		indirection2 := p.stars()
		if !p.at(IDENT) {
			p.syntaxErrorf("expected identifier")
			break
		}
		n2 := p.tok.Lexeme
		p.advance()
		p.declareGlobalVar(n2, spec, indirection2)
	}
	p.expect(SEMI)
	return nil
}

func (p *Parser) declareGlobalVar(name string, spec Specifier, indirection int) {
	t := NewScalar(spec, indirection)
	if p.at(LBRACKET) {
		p.advance()
		lit := p.expect(INT_LIT)
		n, _ := strconv.Atoi(lit.Lexeme)
		p.expect(RBRACKET)
		t = NewArray(spec, indirection, n)
	}
	if sym, exists := p.global.Find(name); exists {
		if !sym.Type.Equal(t) {
			p.errorf("conflicting types for '%s'", name)
		}
		return
	}
	p.global.Insert(&Symbol{Name: name, Type: t})
}

// parseFunction parses the parameter list and, if present, the body of a
// function whose name and return type have already been consumed.
func (p *Parser) parseFunction(name string, spec Specifier, indirection int, isVoid bool) *Function {
	p.expect(LPAREN)
	params, variadic := p.parseParams()
	p.expect(RPAREN)

	paramTypes := make([]Type, len(params))
	for i, sym := range params {
		paramTypes[i] = sym.Type
	}
	retSpec := spec
	if isVoid {
		retSpec = SpecInt // Simple C has no void scalar type; a void-returning function is modeled as returning int and its callers never use the value.
	}
	fnType := NewFunction(retSpec, indirection, paramTypes, variadic)

	sym, exists := p.global.Find(name)
	if exists {
		if sym.Type.Kind() != KindFunction {
			p.errorf("redefinition of '%s'", name)
		} else if !sym.Type.Equal(fnType) {
			p.errorf("conflicting types for '%s'", name)
		}
	} else {
		sym = &Symbol{Name: name, Type: fnType}
		p.global.Insert(sym)
	}

	if p.at(SEMI) {
		p.advance()
		return nil
	}

	if p.funcs[name] {
		p.errorf("redefinition of '%s'", name)
	}
	p.funcs[name] = true

	prevFn := p.fn
	p.fn = sym
	bodyScope := NewScope(p.global)
	p.scope = bodyScope
	for _, param := range params {
		bodyScope.Insert(param)
	}
	body := p.parseBlockBody(bodyScope)
	p.scope = p.global
	p.fn = prevFn

	return &Function{Sym: sym, Params: params, Body: body}
}

// parseParams parses a parameter list: `void` (meaning none), a
// comma-separated list of `type '*'* name`, optionally ending in `, ...`.
func (p *Parser) parseParams() ([]*Symbol, bool) {
	var params []*Symbol
	if p.at(KW_VOID) {
		// Lookahead: `(void)` means no parameters; `(void x)` is void x.
		save := p.tok
		p.advance()
		if p.at(RPAREN) {
			return nil, false
		}
		// Not the empty-parameter-list form; treat 'void' as this
		// parameter's (invalid) type and continue normally.
		p.tok = save
	}
	if p.at(RPAREN) {
		return nil, false
	}
	for {
		if p.at(ELLIPSIS) {
			p.advance()
			return params, true
		}
		spec, isVoid := p.baseSpecifier()
		if isVoid {
			p.errorf("parameter has void type")
		}
		indirection := p.stars()
		name := ""
		if p.at(IDENT) {
			name = p.tok.Lexeme
			p.advance()
		} else {
			p.syntaxErrorf("expected identifier")
		}
		params = append(params, &Symbol{Name: name, Type: NewScalar(spec, indirection)})
		if !p.at(COMMA) {
			break
		}
		p.advance()
	}
	return params, false
}

//  Statements

func (p *Parser) parseBlockBody(scope *Scope) *Block {
	p.expect(LBRACE)
	b := &Block{Scope: scope}
	for !p.at(RBRACE) && !p.at(EOF) {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	p.expect(RBRACE)
	return b
}

func (p *Parser) parseBlock() *Block {
	scope := NewScope(p.scope)
	prev := p.scope
	p.scope = scope
	b := p.parseBlockBody(scope)
	p.scope = prev
	return b
}

// parseStmt parses one statement, including a local variable declaration
// (Simple C allows declarations to appear anywhere a statement can,
// supplementing the strict declarations-first-in-block form of minimal C
// subsets: spec.md's original distillation left this unstated, and the
// original implementation's parser accepts declarations throughout a
// block).
func (p *Parser) parseStmt() Stmt {
	switch p.tok.Type {
	case LBRACE:
		return p.parseBlock()
	case KW_IF:
		return p.parseIf()
	case KW_WHILE:
		return p.parseWhile()
	case KW_FOR:
		return p.parseFor()
	case KW_BREAK:
		p.advance()
		p.expect(SEMI)
		return p.chk.CheckBreak(p.loop)
	case KW_RETURN:
		return p.parseReturn()
	case SEMI:
		p.advance()
		return &SimpleStmt{}
	default:
		if isTypeStart(p.tok.Type) {
			return p.parseLocalDecl()
		}
		return p.parseExprStmt()
	}
}

func (p *Parser) parseIf() Stmt {
	p.advance()
	p.expect(LPAREN)
	cond := p.chk.CheckTest(p.parseExpr())
	p.expect(RPAREN)
	then := p.parseStmt()
	var els Stmt
	if p.at(KW_ELSE) {
		p.advance()
		els = p.parseStmt()
	}
	return &If{Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() Stmt {
	p.advance()
	p.expect(LPAREN)
	cond := p.chk.CheckTest(p.parseExpr())
	p.expect(RPAREN)
	p.loop++
	body := p.parseStmt()
	p.loop--
	return &While{Cond: cond, Body: body}
}

func (p *Parser) parseFor() Stmt {
	p.advance()
	p.expect(LPAREN)
	var init Stmt
	if !p.at(SEMI) {
		init = p.parseSimpleOrAssign()
	}
	p.expect(SEMI)
	var cond Expr
	if !p.at(SEMI) {
		cond = p.chk.CheckTest(p.parseExpr())
	}
	p.expect(SEMI)
	var incr Stmt
	if !p.at(RPAREN) {
		incr = p.parseSimpleOrAssign()
	}
	p.expect(RPAREN)
	p.loop++
	body := p.parseStmt()
	p.loop--
	return &For{Init: init, Cond: cond, Incr: incr, Body: body}
}

func (p *Parser) parseReturn() Stmt {
	p.advance()
	var e Expr
	if !p.at(SEMI) {
		e = p.parseExpr()
	} else {
		e = &Number{ExprBase: ExprBase{Typ: NewScalar(SpecInt, 0)}, Value: 0}
	}
	p.expect(SEMI)
	retType := NewScalar(p.fn.Type.Specifier(), p.fn.Type.Indirection())
	return p.chk.CheckReturn(e, retType)
}

// parseLocalDecl parses `type '*'* name ('[' int ']')? (',' ...)* ';'` and
// inserts each declared symbol into the current scope.
func (p *Parser) parseLocalDecl() Stmt {
	spec, isVoid := p.baseSpecifier()
	if isVoid {
		p.errorf("variable declared void")
	}
	for {
		indirection := p.stars()
		if !p.at(IDENT) {
			p.syntaxErrorf("expected identifier")
			break
		}
		name := p.tok.Lexeme
		p.advance()
		t := NewScalar(spec, indirection)
		if p.at(LBRACKET) {
			p.advance()
			lit := p.expect(INT_LIT)
			n, _ := strconv.Atoi(lit.Lexeme)
			p.expect(RBRACKET)
			t = NewArray(spec, indirection, n)
		}
		if _, exists := p.scope.Find(name); exists {
			p.errorf("redeclaration of '%s'", name)
		} else {
			p.scope.Insert(&Symbol{Name: name, Type: t})
		}
		if !p.at(COMMA) {
			break
		}
		p.advance()
	}
	p.expect(SEMI)
	return &SimpleStmt{}
}

// parseSimpleOrAssign parses the init/increment clause of a for statement:
// either a bare expression or an assignment, without a trailing semicolon.
func (p *Parser) parseSimpleOrAssign() Stmt {
	e := p.parseExpr()
	if p.at(ASSIGN) {
		p.advance()
		rhs := p.parseExpr()
		return p.chk.CheckAssign(e, rhs)
	}
	return &SimpleStmt{X: e}
}

func (p *Parser) parseExprStmt() Stmt {
	s := p.parseSimpleOrAssign()
	p.expect(SEMI)
	return s
}

//  Expressions (precedence climbing)

func (p *Parser) parseExpr() Expr { return p.parseLogicalOr() }

func (p *Parser) parseLogicalOr() Expr {
	e := p.parseLogicalAnd()
	for p.at(OR_OR) {
		p.advance()
		rhs := p.parseLogicalAnd()
		e = p.chk.CheckLogical(OpLogicalOr, e, rhs)
	}
	return e
}

func (p *Parser) parseLogicalAnd() Expr {
	e := p.parseEquality()
	for p.at(AND_AND) {
		p.advance()
		rhs := p.parseEquality()
		e = p.chk.CheckLogical(OpLogicalAnd, e, rhs)
	}
	return e
}

func (p *Parser) parseEquality() Expr {
	e := p.parseRelational()
	for p.at(EQ) || p.at(NE) {
		op := OpEqual
		if p.at(NE) {
			op = OpNotEqual
		}
		p.advance()
		rhs := p.parseRelational()
		e = p.chk.CheckRelational(op, e, rhs)
	}
	return e
}

func (p *Parser) parseRelational() Expr {
	e := p.parseAdditive()
	for p.at(LT) || p.at(GT) || p.at(LE) || p.at(GE) {
		var op BinaryOp
		switch p.tok.Type {
		case LT:
			op = OpLessThan
		case GT:
			op = OpGreaterThan
		case LE:
			op = OpLessOrEqual
		case GE:
			op = OpGreaterOrEqual
		}
		p.advance()
		rhs := p.parseAdditive()
		e = p.chk.CheckRelational(op, e, rhs)
	}
	return e
}

func (p *Parser) parseAdditive() Expr {
	e := p.parseMultiplicative()
	for p.at(PLUS) || p.at(MINUS) {
		isAdd := p.at(PLUS)
		p.advance()
		rhs := p.parseMultiplicative()
		if isAdd {
			e = p.chk.CheckAdd(e, rhs)
		} else {
			e = p.chk.CheckSubtract(e, rhs)
		}
	}
	return e
}

func (p *Parser) parseMultiplicative() Expr {
	e := p.parseUnary()
	for p.at(STAR) || p.at(SLASH) || p.at(PERCENT) {
		switch p.tok.Type {
		case STAR:
			p.advance()
			e = p.chk.CheckMultiply(e, p.parseUnary())
		case SLASH:
			p.advance()
			e = p.chk.CheckDivide(e, p.parseUnary())
		case PERCENT:
			p.advance()
			e = p.chk.CheckRemainder(e, p.parseUnary())
		}
	}
	return e
}

// looksLikeCastAhead reports whether the parser is positioned at `( type )`,
// distinguishing a cast from a parenthesized expression.
func (p *Parser) looksLikeCastAhead() bool {
	return p.at(LPAREN) && p.lookaheadIsType()
}

// lookaheadIsType peeks past the current '(' token by scanning the lexer's
// raw source directly; the lexer has no token-pushback, so a small
// throwaway sub-lexer positioned at the same offset resolves the
// ambiguity without disturbing the parser's real token stream.
func (p *Parser) lookaheadIsType() bool {
	sub := &Lexer{src: p.lex.src, pos: p.lex.pos, line: p.lex.line, rep: p.rep}
	// sub starts right after '(' has NOT yet been consumed by p; back it up
	// to just after the current token's start is unnecessary since p.tok
	// already holds '(' and sub.pos is the lexer's position after having
	// produced p.tok, i.e. exactly where the next token starts.
	next := sub.Next()
	return isTypeStart(next.Type)
}

func (p *Parser) parseUnary() Expr {
	switch p.tok.Type {
	case BANG:
		p.advance()
		return p.chk.CheckNot(p.parseUnary())
	case MINUS:
		p.advance()
		return p.chk.CheckNegate(p.parseUnary())
	case STAR:
		p.advance()
		return p.chk.CheckDereference(p.parseUnary())
	case AMP:
		p.advance()
		return p.chk.CheckAddress(p.parseUnary())
	case KW_SIZEOF:
		p.advance()
		return p.parseSizeof()
	case LPAREN:
		if p.looksLikeCastAhead() {
			p.advance()
			t := p.parseTypeName()
			p.expect(RPAREN)
			return p.chk.CheckCast(t, p.parseUnary())
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parseSizeof() Expr {
	p.expect(LPAREN)
	if isTypeStart(p.tok.Type) {
		t := p.parseTypeName()
		p.expect(RPAREN)
		dummy := &Number{ExprBase: ExprBase{Typ: t}}
		return p.chk.CheckSizeof(dummy)
	}
	e := p.parseExpr()
	p.expect(RPAREN)
	return p.chk.CheckSizeof(e)
}

// parseTypeName parses a bare type used inside a cast or sizeof: a base
// specifier plus any number of '*'.
func (p *Parser) parseTypeName() Type {
	spec, _ := p.baseSpecifier()
	indirection := p.stars()
	return NewScalar(spec, indirection)
}

func (p *Parser) parsePostfix() Expr {
	e := p.parsePrimary()
	for {
		switch p.tok.Type {
		case LBRACKET:
			p.advance()
			idx := p.parseExpr()
			p.expect(RBRACKET)
			e = p.chk.CheckIndex(e, idx)
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() Expr {
	switch p.tok.Type {
	case INT_LIT:
		v, _ := strconv.ParseInt(p.tok.Lexeme, 10, 64)
		p.advance()
		return &Number{ExprBase: ExprBase{Typ: NewScalar(SpecInt, 0)}, Value: v}
	case STRING_LIT:
		s := &String{ExprBase: ExprBase{Typ: NewScalar(SpecChar, 1)}, Value: p.tok.Lexeme}
		p.advance()
		return s
	case IDENT:
		return p.parseIdentOrCall()
	case LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(RPAREN)
		return e
	default:
		p.syntaxErrorf("expected expression")
		p.advance()
		return errored()
	}
}

func (p *Parser) parseIdentOrCall() Expr {
	name := p.tok.Lexeme
	line := p.tok.Line
	p.advance()

	sym, ok := p.scope.Lookup(name)
	if p.at(LPAREN) {
		p.advance()
		var args []Expr
		if !p.at(RPAREN) {
			args = append(args, p.parseExpr())
			for p.at(COMMA) {
				p.advance()
				args = append(args, p.parseExpr())
			}
		}
		p.expect(RPAREN)
		if !ok {
			p.syntaxErrorfAt(line, "'%s' undeclared", name)
			p.scope.Insert(&Symbol{Name: name, Type: ErrorType})
			return errored()
		}
		return p.chk.CheckCall(sym, args)
	}

	if !ok {
		p.syntaxErrorfAt(line, "'%s' undeclared", name)
		p.scope.Insert(&Symbol{Name: name, Type: ErrorType})
		return errored()
	}
	return &Identifier{ExprBase: ExprBase{Typ: sym.Type}, Sym: sym}
}
