// Package config holds the build-time constants spec.md §6 describes as
// "machine parameters": sizes and alignments of primitives, the number of
// register parameters, parameter-slot and stack alignment, and the label
// and symbol affixes that vary between assembler/OS conventions.
//
// The teacher and the wider retrieval pack hardcode values like these as
// Go constants; this package instead exposes a Config value with sane
// System V/Linux defaults that can optionally be overridden from a YAML
// document, matching ralph-cc's own use of gopkg.in/yaml.v3 for tool
// configuration.
package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config carries every build-time constant the code generator and
// allocator consult. Zero-value Config is not meaningful; use Default.
type Config struct {
	// CharSize, IntSize, LongSize, PointerSize are the sizes in bytes of
	// each primitive Simple C type (spec.md §3).
	CharSize    int `yaml:"char_size"`
	IntSize     int `yaml:"int_size"`
	LongSize    int `yaml:"long_size"`
	PointerSize int `yaml:"pointer_size"`

	// RegisterParams is the number of leading parameters passed in
	// registers under the target calling convention (spec.md §4.C: 6).
	RegisterParams int `yaml:"register_params"`
	// ParamAlign is the alignment, in bytes, of each on-stack parameter
	// slot (spec.md §4.C: 8).
	ParamAlign int `yaml:"param_align"`
	// StackAlign is the required alignment of a function's frame size
	// (spec.md §4.H: 16).
	StackAlign int `yaml:"stack_align"`

	// LabelPrefix precedes every generated jump-target label (spec.md
	// §4.F: typically ".L").
	LabelPrefix string `yaml:"label_prefix"`
	// SymbolPrefix and SymbolSuffix decorate every global symbol name
	// referenced in emitted assembly (spec.md §6: empty on Linux; ELF
	// vs. Mach-O naming conventions differ here).
	SymbolPrefix string `yaml:"symbol_prefix"`
	SymbolSuffix string `yaml:"symbol_suffix"`
}

// Default returns the System V/Linux configuration spec.md assumes
// throughout: char=1, int=4, long=8, pointer=8 bytes; 6 register
// parameters; 8-byte parameter alignment; 16-byte stack alignment; ".L"
// label prefix; empty symbol prefix/suffix.
func Default() *Config {
	return &Config{
		CharSize:       1,
		IntSize:        4,
		LongSize:       8,
		PointerSize:    8,
		RegisterParams: 6,
		ParamAlign:     8,
		StackAlign:     16,
		LabelPrefix:    ".L",
		SymbolPrefix:   "",
		SymbolSuffix:   "",
	}
}

// LoadOverlay reads a YAML document from r and merges any fields it sets
// on top of Default(), returning the result. A field the document omits
// keeps its default value. This backs the CLI's optional --config flag;
// it is never required to compile a program.
func LoadOverlay(r io.Reader) (*Config, error) {
	cfg := Default()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: reading overlay: %w", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing overlay: %w", err)
	}
	return cfg, nil
}
