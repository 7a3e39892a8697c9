package compiler

import "github.com/smasonuk/simplecc/pkg/config"

// allocator assigns every symbol in a function body a frame offset and
// computes the function's frame size (spec.md §4.C/§4.E). It carries a
// single running negative-offset counter shared by register-passed
// parameters and locals; on-stack parameters are laid out separately
// since they live above %rbp rather than below it and never contribute to
// frame size.
type allocator struct {
	cfg    *config.Config
	offset int // running negative offset shared by reg-params and locals
	min    int // most negative offset reached anywhere in the function
}

// Allocate assigns frame offsets to every parameter and local symbol of
// fn, then returns the frame size: the absolute value of the lowest
// offset reached, rounded up to cfg.StackAlign.
func Allocate(fn *Function, cfg *config.Config) int {
	a := &allocator{cfg: cfg}

	// Register-passed parameters (index < R) get negative offsets, in
	// ascending index order, each decremented by its own size.
	regCount := len(fn.Params)
	if regCount > cfg.RegisterParams {
		regCount = cfg.RegisterParams
	}
	for i := 0; i < regCount; i++ {
		sym := fn.Params[i]
		a.offset -= sym.Type.Size()
		sym.Offset = a.offset
	}
	a.min = a.offset

	// On-stack parameters (index >= R) get ascending positive offsets in
	// a completely independent counter: they live above the return
	// address, not below %rbp, and never affect frame size.
	if len(fn.Params) > cfg.RegisterParams {
		stackOffset := 2 * cfg.PointerSize // saved %rbp + return address
		for i := cfg.RegisterParams; i < len(fn.Params); i++ {
			sym := fn.Params[i]
			sym.Offset = stackOffset
			stackOffset = alignUp(stackOffset+sym.Type.Size(), cfg.ParamAlign)
		}
	}

	a.allocateBlock(fn.Body)

	return alignUp(-a.min, cfg.StackAlign)
}

// allocateBlock allocates every symbol declared directly in b, then walks
// each contained statement, tracking the lowest offset reached across all
// of them (spec.md §4.C: "Block first allocates all of its own
// declarations, then recurses into each contained statement").
func (a *allocator) allocateBlock(b *Block) {
	for _, sym := range b.Scope.Symbols() {
		if sym.Offset == 0 {
			a.offset -= sym.Type.Size()
			sym.Offset = a.offset
			if a.offset < a.min {
				a.min = a.offset
			}
		}
	}
	for _, stmt := range b.Stmts {
		a.allocateStmt(stmt)
	}
}

// allocateStmt recurses into control-flow containers using the
// save/restore pattern from spec.md §4.C: each branch starts from the
// offset the statement was entered with, so sibling branches may reuse the
// same stack space, while a.min tracks the deepest point reached by any
// of them.
func (a *allocator) allocateStmt(s Stmt) {
	switch n := s.(type) {
	case *Block:
		saved := a.offset
		a.allocateBlock(n)
		a.offset = saved
	case *While:
		saved := a.offset
		a.allocateStmt(n.Body)
		a.offset = saved
	case *For:
		saved := a.offset
		a.allocateStmt(n.Body)
		a.offset = saved
	case *If:
		saved := a.offset
		a.allocateStmt(n.Then)
		a.offset = saved
		if n.Else != nil {
			a.allocateStmt(n.Else)
			a.offset = saved
		}
	default:
		// SimpleStmt, Assignment, Return, Break: no nested scopes.
	}
}

// alignUp rounds n up to the next multiple of align. A non-positive n still
// gets one full alignment unit rather than an empty frame: a function with
// no locals and no register parameters reserves the same minimal frame a
// real one would (spec.md's S1: "main.size, 16 (frame rounded up from 0)").
func alignUp(n, align int) int {
	if n <= 0 {
		return align
	}
	return (n + align - 1) / align * align
}
