package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smasonuk/simplecc/pkg/diag"
)

func parseSrc(t *testing.T, src string) (*Program, *diag.Reporter, string) {
	t.Helper()
	var buf bytes.Buffer
	rep := diag.New(&buf, "test")
	prog := ParseProgram(src, rep)
	return prog, rep, buf.String()
}

func TestParseSimpleFunction(t *testing.T) {
	prog, rep, _ := parseSrc(t, "int main(void) { return 0; }")
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
	if len(prog.Functions) != 1 || prog.Functions[0].Sym.Name != "main" {
		t.Fatalf("expected one function named main, got %+v", prog.Functions)
	}
}

func TestParseVariadicPrototypeAndCall(t *testing.T) {
	_, rep, _ := parseSrc(t, `
		int printf(char *fmt, ...);
		int main(void) { printf("%d", 1); return 0; }
	`)
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
}

func TestParseEmptyParamList(t *testing.T) {
	prog, rep, _ := parseSrc(t, "int f(void) { return 1; }")
	if rep.HasErrors() {
		t.Fatalf("unexpected parse errors")
	}
	if len(prog.Functions[0].Params) != 0 {
		t.Errorf("(void) should mean zero parameters, got %d", len(prog.Functions[0].Params))
	}
}

func TestParseUndeclaredIdentifierReportsError(t *testing.T) {
	_, rep, out := parseSrc(t, "int main(void) { return y; }")
	if !rep.HasErrors() {
		t.Fatal("expected an error for an undeclared identifier")
	}
	if !strings.Contains(out, "'y' undeclared") {
		t.Errorf("diagnostic = %q, want it to name the undeclared identifier", out)
	}
}

func TestParseRepeatedUndeclaredIdentifierReportsOnce(t *testing.T) {
	_, rep, out := parseSrc(t, "int main(void) { return y + y; }")
	if !rep.HasErrors() {
		t.Fatal("expected an error for an undeclared identifier")
	}
	if got := strings.Count(out, "'y' undeclared"); got != 1 {
		t.Errorf("expected exactly one diagnostic for repeated uses of 'y', got %d:\n%s", got, out)
	}
}

func TestParseSyntaxErrorIncludesSourceLineSnippet(t *testing.T) {
	_, rep, out := parseSrc(t, "int main(void) { return }")
	if !rep.HasErrors() {
		t.Fatal("expected a syntax error")
	}
	if !strings.Contains(out, "|>") {
		t.Errorf("diagnostic = %q, want a source-line snippet marker", out)
	}
	if !strings.Contains(out, "return }") {
		t.Errorf("diagnostic = %q, want the offending line quoted", out)
	}
}

func TestParseBreakOutsideLoopIsAnError(t *testing.T) {
	_, rep, out := parseSrc(t, "int h(void) { break; return 0; }")
	if !rep.HasErrors() {
		t.Fatal("expected an error for break outside a loop (S4)")
	}
	if !strings.Contains(out, "break statement not within loop") {
		t.Errorf("diagnostic = %q, want the exact S4 message", out)
	}
}

func TestParseBreakInsideWhileIsFine(t *testing.T) {
	_, rep, _ := parseSrc(t, "int f(void) { while (1) { break; } return 0; }")
	if rep.HasErrors() {
		t.Fatal("break inside a while loop should not be an error")
	}
}

func TestParseCastVsParenDisambiguation(t *testing.T) {
	_, rep, _ := parseSrc(t, `
		int f(int *p) {
			long l;
			l = (long) p;
			return (int)(l + 1);
		}
	`)
	if rep.HasErrors() {
		t.Fatal("cast expressions should parse without error")
	}
}

func TestParseArrayDeclarationAndIndex(t *testing.T) {
	_, rep, _ := parseSrc(t, `
		int f(void) {
			int a[4];
			a[0] = 1;
			return a[0];
		}
	`)
	if rep.HasErrors() {
		t.Fatal("array declaration and indexing should parse without error")
	}
}

func TestParseRepeatedGlobalWithSameTypeIsSilentlyAccepted(t *testing.T) {
	_, rep, out := parseSrc(t, "int x; int x;")
	if rep.HasErrors() {
		t.Fatalf("re-declaring a global with an identical type should not be an error, got:\n%s", out)
	}
}

func TestParseGlobalRedeclaredWithDifferentTypeConflicts(t *testing.T) {
	_, rep, out := parseSrc(t, "int x; long x;")
	if !rep.HasErrors() {
		t.Fatal("expected a conflicting-types error")
	}
	if !strings.Contains(out, "conflicting types for 'x'") {
		t.Errorf("diagnostic = %q, want the exact conflicting-types message", out)
	}
}

func TestParseFunctionPrototypeRedeclaredWithDifferentSignatureConflicts(t *testing.T) {
	_, rep, out := parseSrc(t, "int f(int a); int f(long a);")
	if !rep.HasErrors() {
		t.Fatal("expected a conflicting-types error for the mismatched prototype")
	}
	if !strings.Contains(out, "conflicting types for 'f'") {
		t.Errorf("diagnostic = %q, want the exact conflicting-types message", out)
	}
}

func TestParseFunctionPrototypeRedeclaredWithSameSignatureIsFine(t *testing.T) {
	_, rep, out := parseSrc(t, "int f(int a); int f(int a) { return a; }")
	if rep.HasErrors() {
		t.Fatalf("a matching prototype followed by its definition should not be an error, got:\n%s", out)
	}
}

func TestParseLocalRedeclarationInSameScopeIsAnError(t *testing.T) {
	_, rep, out := parseSrc(t, "int f(void) { int x; int x; return x; }")
	if !rep.HasErrors() {
		t.Fatal("expected a redeclaration error")
	}
	if !strings.Contains(out, "redeclaration of 'x'") {
		t.Errorf("diagnostic = %q, want the exact redeclaration message", out)
	}
}

func TestParseForLoopWithOmittedClauses(t *testing.T) {
	_, rep, _ := parseSrc(t, `
		int f(void) {
			int i;
			for (i = 0; ; i = i + 1) {
				if (i > 10) break;
			}
			return i;
		}
	`)
	if rep.HasErrors() {
		t.Fatal("a for loop with an omitted condition should parse without error")
	}
}
