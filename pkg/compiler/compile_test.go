package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smasonuk/simplecc/pkg/config"
	"github.com/smasonuk/simplecc/pkg/diag"
)

func compileSrc(t *testing.T, src string) Result {
	t.Helper()
	var buf bytes.Buffer
	rep := diag.New(&buf, "test")
	return Compile(src, config.Default(), rep)
}

// TestS1FunctionIdentity mirrors spec.md's S1 testable property: the
// simplest possible function produces exactly the expected label and
// frame-size shape.
func TestS1FunctionIdentity(t *testing.T) {
	result := compileSrc(t, "int main(void) { return 0; }")
	if result.Errors != 0 {
		t.Fatalf("unexpected errors: %d", result.Errors)
	}
	asm := result.Assembly

	if got := strings.Count(asm, "main:\n"); got != 1 {
		t.Errorf("expected exactly one main: label, got %d\n%s", got, asm)
	}
	if got := strings.Count(asm, "main.exit:\n"); got != 1 {
		t.Errorf("expected exactly one main.exit: label, got %d\n%s", got, asm)
	}
	if !strings.Contains(asm, ".set main.size, 16") {
		t.Errorf("expected `.set main.size, 16`, got:\n%s", asm)
	}
	if !strings.Contains(asm, ".globl main") {
		t.Errorf("expected `.globl main`, got:\n%s", asm)
	}
	if !strings.Contains(asm, "jmp main.exit") {
		t.Errorf("expected `return` to jump to the literal main.exit label, got:\n%s", asm)
	}
}

// TestS2PointerIndexScaling mirrors S2: p[i] scales i by sizeof(int)
// before adding it to p, and the final load uses the 4-byte suffix.
func TestS2PointerIndexScaling(t *testing.T) {
	result := compileSrc(t, "int f(int *p, int i) { return p[i]; }")
	if result.Errors != 0 {
		t.Fatalf("unexpected errors: %d", result.Errors)
	}
	asm := result.Assembly
	// The index is widened to long for pointer arithmetic, so the scaling
	// multiply is a 64-bit imulq against a register loaded with the literal
	// 4 (sizeof(int)); every literal is materialized into a register before
	// use, so the immediate itself shows up in a preceding movq.
	if !strings.Contains(asm, "movq $4,") {
		t.Errorf("expected the element size 4 to be loaded as a literal, got:\n%s", asm)
	}
	if !strings.Contains(asm, "imulq") {
		t.Errorf("expected a 64-bit scaling multiply of the index, got:\n%s", asm)
	}
	if !strings.Contains(asm, "movl (%") {
		t.Errorf("expected a 4-byte-suffixed load through the pointer, got:\n%s", asm)
	}
}

// TestS3CharPromotion mirrors S3: c + 1 sign-extends c to int (movsbl)
// before the add, and the expression's static type is int.
func TestS3CharPromotion(t *testing.T) {
	result := compileSrc(t, "int g(char c) { return c + 1; }")
	if result.Errors != 0 {
		t.Fatalf("unexpected errors: %d", result.Errors)
	}
	if !strings.Contains(result.Assembly, "movsbl") {
		t.Errorf("expected a movsbl sign-extension of the char operand, got:\n%s", result.Assembly)
	}
}

// TestS4BreakOutsideLoop mirrors S4: no assembly is emitted for a program
// with a semantic error.
func TestS4BreakOutsideLoop(t *testing.T) {
	result := compileSrc(t, "int h(void) { break; return 0; }")
	if result.Errors == 0 {
		t.Fatal("expected an error for break outside a loop")
	}
	if result.Assembly != "" {
		t.Errorf("expected no assembly for a program with a semantic error, got:\n%s", result.Assembly)
	}
}

// TestS5VariadicCallZeroesEax mirrors S5: a variadic call sets %eax to 0
// before the call instruction, per the System V vector-register-count
// convention.
func TestS5VariadicCallZeroesEax(t *testing.T) {
	result := compileSrc(t, `
		int printf(char *fmt, ...);
		int main(void) { printf("%d", 1); return 0; }
	`)
	if result.Errors != 0 {
		t.Fatalf("unexpected errors: %d", result.Errors)
	}
	asm := result.Assembly
	movIdx := strings.Index(asm, "movl $0, %eax")
	callIdx := strings.Index(asm, "call printf")
	if movIdx == -1 || callIdx == -1 || movIdx > callIdx {
		t.Errorf("expected `movl $0, %%eax` immediately before `call printf`, got:\n%s", asm)
	}
}

// TestS6PointerDifference mirrors S6: a - b for two pointers produces a
// long result and divides the raw byte difference by the element size.
func TestS6PointerDifference(t *testing.T) {
	result := compileSrc(t, "int d(int *a, int *b) { return a - b; }")
	if result.Errors != 0 {
		t.Fatalf("unexpected errors: %d", result.Errors)
	}
	asm := result.Assembly
	if !strings.Contains(asm, "cqto") && !strings.Contains(asm, "idivq") {
		t.Errorf("expected a 64-bit divide sequence for the pointer difference, got:\n%s", asm)
	}
}

func TestCompileStopsBeforeCodegenOnSemanticError(t *testing.T) {
	result := compileSrc(t, "int f(void) { return z; }")
	if result.Errors == 0 {
		t.Fatal("expected an error for an undeclared identifier")
	}
	if result.Assembly != "" {
		t.Error("codegen must not run once a diagnostic has been reported")
	}
}

func TestCompileStringLiteralsAreInternedAndDeduplicated(t *testing.T) {
	result := compileSrc(t, `
		int puts(char *s);
		int main(void) {
			puts("hi");
			puts("hi");
			return 0;
		}
	`)
	if result.Errors != 0 {
		t.Fatalf("unexpected errors: %d", result.Errors)
	}
	if got := strings.Count(result.Assembly, `.string "hi"`); got != 1 {
		t.Errorf("expected the repeated string literal to be interned once, got %d occurrences", got)
	}
}

func TestCompileGlobalsEmitCommDirectives(t *testing.T) {
	result := compileSrc(t, "int counter; int main(void) { counter = 1; return counter; }")
	if result.Errors != 0 {
		t.Fatalf("unexpected errors: %d", result.Errors)
	}
	if !strings.Contains(result.Assembly, ".comm counter, 4, 4") {
		t.Errorf("expected a .comm directive for the global, got:\n%s", result.Assembly)
	}
}
