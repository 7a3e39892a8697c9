package compiler

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/smasonuk/simplecc/pkg/config"
)

// CodeGen walks a checked *Program and emits x86-64 System V assembly text
// (spec.md §4.H). It owns every piece of process-wide mutable state spec.md
// §5 names: the register file, the label source, the interned string pool,
// and the break-target stack for the loop currently being generated.
type CodeGen struct {
	cfg    *config.Config
	labels *LabelSource
	out    strings.Builder

	regs   []*Register
	offset int // running negative frame offset; spill grows it further

	breakStack []Label
	strings    map[uint64][]internedString // digest -> candidates, for dedup lookup
	stringPool []internedString            // same entries, in the order they were interned
	exitLabel  string                      // "<funcname>.exit", spec.md §4.H
}

type internedString struct {
	label Label
	value string
}

// NewCodeGen creates a generator using cfg's machine parameters and labels
// as the (shared, process-wide) label source.
func NewCodeGen(cfg *config.Config, labels *LabelSource) *CodeGen {
	return &CodeGen{cfg: cfg, labels: labels, regs: newRegisterPool(), strings: make(map[uint64][]internedString)}
}

// sizeSuffix returns the AT&T mnemonic suffix for an operand of the given
// width, per the table in spec.md §4.H.
func sizeSuffix(size int) string {
	switch size {
	case 1:
		return "b"
	case 4:
		return "l"
	default:
		return "q"
	}
}

func (cg *CodeGen) emit(format string, args ...any) {
	fmt.Fprintf(&cg.out, "\t"+format+"\n", args...)
}

func (cg *CodeGen) label(l Label) {
	fmt.Fprintf(&cg.out, "%s:\n", l)
}

func (cg *CodeGen) comment(s string) {
	fmt.Fprintf(&cg.out, "\t# %s\n", s)
}

// symbolName decorates a global symbol with the configured OS/assembler
// affixes (spec.md §6: empty on Linux, non-empty on targets whose
// assembler mangles global names).
func (cg *CodeGen) symbolName(name string) string {
	return cg.cfg.SymbolPrefix + name + cg.cfg.SymbolSuffix
}

// addr returns the memory operand naming sym's storage: an %rbp-relative
// offset for a parameter or local, or a %rip-relative global reference
// otherwise (spec.md §4.C: "Offset of 0 identifies a global").
func (cg *CodeGen) addr(sym *Symbol) string {
	if sym.Offset != 0 {
		return fmt.Sprintf("%d(%%rbp)", sym.Offset)
	}
	return fmt.Sprintf("%s(%%rip)", cg.symbolName(sym.Name))
}

// operand returns the location currently holding e's already-computed
// value: its register, its spill slot, or (for a literal that was never
// materialized) an immediate. regs.go's loadReg relies on this to relocate
// a value that has been bumped out of its register.
func (cg *CodeGen) operand(e Expr) string {
	if e.Base().Reg != nil {
		return e.Base().Reg.nameForSize(e.Base().Typ.Size())
	}
	if e.Base().SpillOffset != 0 {
		return fmt.Sprintf("%d(%%rbp)", e.Base().SpillOffset)
	}
	if n, ok := e.(*Number); ok {
		return fmt.Sprintf("$%d", n.Value)
	}
	panic("compiler: operand of unmaterialized expression")
}

// release detaches e from whatever register it holds, without spilling: the
// value has already been consumed by whoever asked for it. Every statement
// generator calls this on each subexpression's result once it is no longer
// needed, so assertRegsFree holds between statements (spec.md §5).
func (cg *CodeGen) release(e Expr) {
	if e != nil && e.Base().Reg != nil {
		cg.assignReg(nil, e.Base().Reg)
	}
}

// intern adds s to the process-wide string-literal pool, deduplicating
// identical literals, and returns the label to reference it by. Candidates
// are bucketed by their xxhash-64 digest so a source file with many
// repeated string constants interns each one in near-O(1) time rather than
// comparing against every literal seen so far.
func (cg *CodeGen) intern(s *String) Label {
	h := xxhash.Sum64String(s.Value)
	for _, is := range cg.strings[h] {
		if is.value == s.Value {
			return is.label
		}
	}
	l := cg.labels.New()
	entry := internedString{label: l, value: s.Value}
	cg.strings[h] = append(cg.strings[h], entry)
	cg.stringPool = append(cg.stringPool, entry)
	return l
}

// Generate lowers an entire checked program to assembly text: every
// function definition, then the interned string pool, then every
// file-scope non-function symbol as a .comm directive (spec.md §4.H
// "Globals").
func Generate(prog *Program, cfg *config.Config, labels *LabelSource) string {
	cg := NewCodeGen(cfg, labels)
	for _, fn := range prog.Functions {
		cg.genFunction(fn)
	}
	cg.emitStringPool()
	cg.emitGlobals(prog.Global)
	return cg.out.String()
}

// genFunction emits one function's prologue, body, and epilogue. The
// allocator has already assigned every parameter and local a frame offset
// and returned the frame's size in bytes; cg.offset starts at the negated
// frame size (at or below the allocator's lowest offset) so any register
// spills during code generation claim fresh slots beyond it, and the final
// `.set` accounts for those too.
func (cg *CodeGen) genFunction(fn *Function) {
	frameSize := Allocate(fn, cg.cfg)
	cg.offset = -frameSize

	name := cg.symbolName(fn.Sym.Name)
	cg.exitLabel = name + ".exit"
	fmt.Fprintf(&cg.out, ".globl %s\n", name)
	fmt.Fprintf(&cg.out, "%s:\n", name)
	cg.emit("pushq %%rbp")
	cg.emit("movq %%rsp, %%rbp")
	cg.emit("movl $%s.size, %%eax", name)
	cg.emit("subq %%rax, %%rsp")

	cg.spillParams(fn)
	cg.genBlock(fn.Body)

	fmt.Fprintf(&cg.out, "%s:\n", cg.exitLabel)
	cg.emit("movq %%rbp, %%rsp")
	cg.emit("popq %%rbp")
	cg.emit("ret")
	fmt.Fprintf(&cg.out, ".set %s.size, %d\n\n", name, alignUp(-cg.offset, cg.cfg.StackAlign))
}

// spillParams stores every register-passed parameter into its assigned
// frame slot; on-stack parameters already live at a fixed positive offset
// from entry and need no copy (spec.md §4.H prologue).
func (cg *CodeGen) spillParams(fn *Function) {
	regs := cg.paramRegs()
	n := len(fn.Params)
	if n > len(regs) {
		n = len(regs)
	}
	for i := 0; i < n; i++ {
		p := fn.Params[i]
		size := p.Type.Size()
		cg.emit("mov%s %s, %s", sizeSuffix(size), regs[i].nameForSize(size), cg.addr(p))
	}
}

// emitStringPool writes every interned string literal as a null-terminated
// byte sequence in the read-only data section.
func (cg *CodeGen) emitStringPool() {
	if len(cg.stringPool) == 0 {
		return
	}
	fmt.Fprintf(&cg.out, ".section .rodata\n")
	for _, is := range cg.stringPool {
		cg.label(is.label)
		fmt.Fprintf(&cg.out, "\t.string %q\n", is.value)
	}
}

// emitGlobals emits a `.comm` directive for every file-scope symbol that
// isn't a function, sized and aligned per its type (spec.md §4.H).
func (cg *CodeGen) emitGlobals(global *Scope) {
	for _, sym := range global.Symbols() {
		if sym.Type.Kind() == KindFunction {
			continue
		}
		fmt.Fprintf(&cg.out, ".comm %s, %d, %d\n", cg.symbolName(sym.Name), sym.Type.Size(), sym.Type.Alignment())
	}
}
