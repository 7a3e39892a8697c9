// Command simplecc reads a Simple C translation unit from stdin and writes
// the x86-64 System V assembly it compiles to on stdout (spec.md §1).
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/smasonuk/simplecc/pkg/compiler"
	"github.com/smasonuk/simplecc/pkg/config"
	"github.com/smasonuk/simplecc/pkg/diag"
)

var (
	configPath string
	dumpTokens bool
	dumpAST    bool
	dumpFrames bool
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		return 1
	}
	return exitCode
}

// exitCode carries the process exit status out of RunE, which cobra itself
// only distinguishes as "err or no err": 1 when any diagnostic was reported
// (or the config overlay could not be loaded), 0 otherwise. The number of
// diagnostics is not encoded in the status.
var exitCode int

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "simplecc",
		Short:         "simplecc compiles Simple C source (stdin) to x86-64 assembly (stdout)",
		Args:          cobra.MaximumNArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compileStdin(in, out, errOut)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML machine-parameter overlay")
	cmd.Flags().BoolVar(&dumpTokens, "dump-tokens", false, "print the token stream to stderr before compiling")
	cmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the checked AST to stderr before code generation")
	cmd.Flags().BoolVar(&dumpFrames, "dump-frame", false, "print each function's frame size to stderr after compiling")
	return cmd
}

func compileStdin(in io.Reader, out, errOut io.Writer) error {
	src, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("simplecc: reading stdin: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(errOut, "simplecc: %v\n", err)
		exitCode = 1
		return err
	}

	rep := diag.New(errOut, "simplecc")

	if dumpTokens {
		dumpTokenStream(string(src), errOut)
	}
	if dumpAST {
		dumpProgramAST(string(src), errOut)
	}

	result := compiler.Compile(string(src), cfg, rep)
	if dumpFrames {
		dumpFrameSizes(string(src), cfg, errOut)
	}

	if rep.HasErrors() {
		exitCode = 1
		return fmt.Errorf("simplecc: %d error(s)", result.Errors)
	}
	fmt.Fprint(out, result.Assembly)
	exitCode = 0
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("opening config overlay: %w", err)
	}
	defer f.Close()
	return config.LoadOverlay(f)
}

// dumpTokenStream is a debugging aid: it re-lexes src (lexing has no
// observable side effects, so doing it twice for a debug flag is harmless)
// and prints every token to errOut.
func dumpTokenStream(src string, errOut io.Writer) {
	rep := diag.New(errOut, "simplecc")
	lex := compiler.NewLexer(src, rep)
	for {
		tok := lex.Next()
		fmt.Fprintln(errOut, tok)
		if tok.Type == compiler.EOF {
			return
		}
	}
}

// dumpProgramAST is a debugging aid: it re-parses src (its own diagnostics,
// if any, are discarded here since the real compile pass below reports
// them) and prints every function's checked statement tree to errOut.
func dumpProgramAST(src string, errOut io.Writer) {
	rep := diag.New(io.Discard, "simplecc")
	prog := compiler.ParseProgram(src, rep)
	for _, fn := range prog.Functions {
		fmt.Fprintf(errOut, "func %s\n", fn.Sym.Name)
		dumpStmt(errOut, fn.Body, 1)
	}
}

func dumpStmt(w io.Writer, s compiler.Stmt, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := s.(type) {
	case *compiler.Block:
		for _, inner := range n.Stmts {
			dumpStmt(w, inner, depth)
		}
	case *compiler.SimpleStmt:
		if n.X != nil {
			fmt.Fprintf(w, "%s%s;\n", indent, n.X)
		}
	case *compiler.Assignment:
		fmt.Fprintf(w, "%s%s = %s;\n", indent, n.LHS, n.RHS)
	case *compiler.Return:
		fmt.Fprintf(w, "%sreturn %s;\n", indent, n.X)
	case *compiler.Break:
		fmt.Fprintf(w, "%sbreak;\n", indent)
	case *compiler.If:
		fmt.Fprintf(w, "%sif (%s)\n", indent, n.Cond)
		dumpStmt(w, n.Then, depth+1)
		if n.Else != nil {
			fmt.Fprintf(w, "%selse\n", indent)
			dumpStmt(w, n.Else, depth+1)
		}
	case *compiler.While:
		fmt.Fprintf(w, "%swhile (%s)\n", indent, n.Cond)
		dumpStmt(w, n.Body, depth+1)
	case *compiler.For:
		fmt.Fprintf(w, "%sfor (...)\n", indent)
		dumpStmt(w, n.Body, depth+1)
	}
}

// dumpFrameSizes is a debugging aid: it re-parses and re-allocates src (a
// pass with no observable side effects on the eventual codegen output) and
// prints each function's computed frame size, humanized, to errOut.
func dumpFrameSizes(src string, cfg *config.Config, errOut io.Writer) {
	rep := diag.New(errOut, "simplecc")
	prog := compiler.ParseProgram(src, rep)
	if rep.HasErrors() {
		return
	}
	for _, fn := range prog.Functions {
		size := compiler.Allocate(fn, cfg)
		fmt.Fprintf(errOut, "simplecc: frame %s: %s\n", fn.Sym.Name, humanize.Bytes(uint64(size)))
	}
}
