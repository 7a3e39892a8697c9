// Package compiler implements the single-pass Simple C to x86-64 System V
// assembly translation: lexing, recursive-descent parsing with inline
// semantic checking, per-function frame allocation, and code generation
// (spec.md §1).
package compiler

import (
	"github.com/smasonuk/simplecc/pkg/config"
	"github.com/smasonuk/simplecc/pkg/diag"
)

// Result is what Compile returns: the generated assembly text (empty if
// any diagnostic was reported, per spec.md §6 "code generation never runs
// on a program that has already reported an error") plus the number of
// diagnostics reported.
type Result struct {
	Assembly string
	Errors   int
}

// Compile translates src, a complete Simple C translation unit, using cfg
// for every machine-dependent constant and rep as the diagnostic sink.
// Parsing and checking always run to completion so every error in the
// program is reported in one pass; code generation only runs if no error
// was reported, matching the source's own gate against generating assembly
// for a program that failed to typecheck.
func Compile(src string, cfg *config.Config, rep *diag.Reporter) Result {
	prog := ParseProgram(src, rep)
	if rep.HasErrors() {
		return Result{Errors: rep.Count()}
	}
	labels := NewLabelSource(cfg.LabelPrefix)
	asm := Generate(prog, cfg, labels)
	return Result{Assembly: asm, Errors: rep.Count()}
}
