package compiler

import "testing"

func TestScopeFindIsLocalOnly(t *testing.T) {
	outer := NewScope(nil)
	outer.Insert(&Symbol{Name: "x", Type: NewScalar(SpecInt, 0)})
	inner := NewScope(outer)

	if _, ok := inner.Find("x"); ok {
		t.Error("Find should not see the enclosing scope's symbols")
	}
	if _, ok := outer.Find("x"); !ok {
		t.Error("Find should see the declaring scope's own symbol")
	}
}

func TestScopeLookupWalksEnclosingChain(t *testing.T) {
	global := NewScope(nil)
	global.Insert(&Symbol{Name: "g", Type: NewScalar(SpecInt, 0)})
	fn := NewScope(global)
	fn.Insert(&Symbol{Name: "p", Type: NewScalar(SpecInt, 0)})
	block := NewScope(fn)
	block.Insert(&Symbol{Name: "l", Type: NewScalar(SpecInt, 0)})

	for _, name := range []string{"g", "p", "l"} {
		if _, ok := block.Lookup(name); !ok {
			t.Errorf("Lookup(%q) from innermost scope should find it", name)
		}
	}
	if _, ok := block.Lookup("nope"); ok {
		t.Error("Lookup of an undeclared name should fail")
	}
}

func TestScopeShadowing(t *testing.T) {
	outer := NewScope(nil)
	outerX := &Symbol{Name: "x", Type: NewScalar(SpecInt, 0)}
	outer.Insert(outerX)
	inner := NewScope(outer)
	innerX := &Symbol{Name: "x", Type: NewScalar(SpecChar, 0)}
	inner.Insert(innerX)

	got, ok := inner.Lookup("x")
	if !ok || got != innerX {
		t.Errorf("Lookup should resolve to the innermost declaration, got %+v", got)
	}
}

func TestScopeIsGlobal(t *testing.T) {
	global := NewScope(nil)
	if !global.IsGlobal() {
		t.Error("a scope with no enclosing scope should be global")
	}
	child := NewScope(global)
	if child.IsGlobal() {
		t.Error("a scope with an enclosing scope should not be global")
	}
}

func TestScopeSymbolsPreservesInsertionOrder(t *testing.T) {
	s := NewScope(nil)
	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		s.Insert(&Symbol{Name: n, Type: NewScalar(SpecInt, 0)})
	}
	syms := s.Symbols()
	if len(syms) != len(names) {
		t.Fatalf("got %d symbols, want %d", len(syms), len(names))
	}
	for i, n := range names {
		if syms[i].Name != n {
			t.Errorf("Symbols()[%d] = %q, want %q", i, syms[i].Name, n)
		}
	}
}
