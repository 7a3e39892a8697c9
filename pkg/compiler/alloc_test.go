package compiler

import (
	"testing"

	"github.com/smasonuk/simplecc/pkg/config"
)

func makeFunc(params []*Symbol, locals []*Symbol) *Function {
	scope := NewScope(nil)
	for _, p := range params {
		scope.Insert(p)
	}
	for _, l := range locals {
		scope.Insert(l)
	}
	body := &Block{Scope: scope}
	return &Function{Sym: &Symbol{Name: "f", Type: NewScalar(SpecInt, 0)}, Params: params, Body: body}
}

func TestAllocateRegisterParams(t *testing.T) {
	cfg := config.Default()
	p0 := &Symbol{Name: "a", Type: NewScalar(SpecInt, 0)} // size 4
	p1 := &Symbol{Name: "b", Type: NewScalar(SpecLong, 0)} // size 8
	fn := makeFunc([]*Symbol{p0, p1}, nil)

	frame := Allocate(fn, cfg)

	if p0.Offset != -4 {
		t.Errorf("p0.Offset = %d, want -4", p0.Offset)
	}
	if p1.Offset != -12 {
		t.Errorf("p1.Offset = %d, want -12", p1.Offset)
	}
	if frame != 16 {
		t.Errorf("frame size = %d, want 16 (12 rounded up to 16)", frame)
	}
}

func TestAllocateOnStackParams(t *testing.T) {
	cfg := config.Default()
	params := make([]*Symbol, 7)
	for i := range params {
		params[i] = &Symbol{Name: string(rune('a' + i)), Type: NewScalar(SpecInt, 0)}
	}
	fn := makeFunc(params, nil)
	Allocate(fn, cfg)

	for i := 0; i < 6; i++ {
		if params[i].Offset >= 0 {
			t.Errorf("register param %d offset = %d, want negative", i, params[i].Offset)
		}
	}
	if params[6].Offset != 16 {
		t.Errorf("first on-stack param offset = %d, want 16", params[6].Offset)
	}
}

func TestAllocateEmptyFunctionFrameIsSixteen(t *testing.T) {
	cfg := config.Default()
	fn := makeFunc(nil, nil)
	if got := Allocate(fn, cfg); got != 16 {
		t.Errorf("frame size for int main(void) = %d, want 16 (S1)", got)
	}
}

func TestAllocateSiblingBranchesReuseOffsets(t *testing.T) {
	cfg := config.Default()
	thenScope := NewScope(nil)
	thenLocal := &Symbol{Name: "t", Type: NewScalar(SpecLong, 0)}
	thenScope.Insert(thenLocal)
	elseScope := NewScope(nil)
	elseLocal := &Symbol{Name: "e", Type: NewScalar(SpecLong, 0)}
	elseScope.Insert(elseLocal)

	body := &Block{Scope: NewScope(nil), Stmts: []Stmt{
		&If{
			Cond: &Number{ExprBase: ExprBase{Typ: NewScalar(SpecInt, 0)}, Value: 1},
			Then: &Block{Scope: thenScope},
			Else: &Block{Scope: elseScope},
		},
	}}
	fn := &Function{Sym: &Symbol{Name: "f", Type: NewScalar(SpecInt, 0)}, Body: body}

	Allocate(fn, cfg)

	if thenLocal.Offset != elseLocal.Offset {
		t.Errorf("sibling branch locals should reuse the same offset: then=%d else=%d", thenLocal.Offset, elseLocal.Offset)
	}
}
