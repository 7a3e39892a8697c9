package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestErrorfIncrementsCount(t *testing.T) {
	var buf bytes.Buffer
	rep := New(&buf, "test")
	if rep.HasErrors() {
		t.Fatal("a fresh Reporter should report no errors")
	}
	rep.Errorf("something went wrong: %s", "reason")
	if !rep.HasErrors() || rep.Count() != 1 {
		t.Errorf("Count() = %d, HasErrors() = %v; want 1, true", rep.Count(), rep.HasErrors())
	}
	if !strings.Contains(buf.String(), "test: error: something went wrong: reason") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestErrorfLineAppendsSnippet(t *testing.T) {
	var buf bytes.Buffer
	rep := New(&buf, "test")
	rep.ErrorfLine("int main(void) { return }", "expected %s", "expression")
	out := buf.String()
	if !strings.Contains(out, "expected expression") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "|> int main(void) { return }") {
		t.Errorf("output missing source snippet: %q", out)
	}
}

func TestReset(t *testing.T) {
	var buf bytes.Buffer
	rep := New(&buf, "test")
	rep.Errorf("one")
	rep.Errorf("two")
	if rep.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", rep.Count())
	}
	rep.Reset()
	if rep.HasErrors() || rep.Count() != 0 {
		t.Errorf("Reset() should clear the error count")
	}
}

func TestNoColorWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	rep := New(&buf, "test")
	rep.Errorf("plain")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("a plain bytes.Buffer is not a terminal; output should have no ANSI codes: %q", buf.String())
	}
}
