package compiler

import "testing"

func TestLabelSourceIsMonotonic(t *testing.T) {
	s := NewLabelSource(".L")
	a := s.New()
	b := s.New()
	c := s.New()
	if a.String() != ".L0" || b.String() != ".L1" || c.String() != ".L2" {
		t.Errorf("got %s, %s, %s, want .L0, .L1, .L2", a, b, c)
	}
}

func TestLabelSourceRespectsConfiguredPrefix(t *testing.T) {
	s := NewLabelSource("LBL")
	if got := s.New().String(); got != "LBL0" {
		t.Errorf("New() = %q, want %q", got, "LBL0")
	}
}

func TestLabelZeroValueIsEmpty(t *testing.T) {
	var l Label
	if !l.IsZero() {
		t.Error("zero-value Label should report IsZero")
	}
	if l.String() != "" {
		t.Errorf("zero-value Label.String() = %q, want empty", l.String())
	}
}
