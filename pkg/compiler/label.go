package compiler

import "fmt"

// Label is a jump target. It is a thin, value-copyable wrapper around the
// integer a LabelSource hands out; printing it yields the assembler-visible
// name (spec.md §4.F: "<label_prefix><n>").
type Label struct {
	n      int
	prefix string
}

// String renders the label as it appears in emitted assembly, e.g. ".L3".
func (l Label) String() string {
	if l.prefix == "" && l.n == 0 {
		return "" // zero value: "no label"
	}
	return fmt.Sprintf("%s%d", l.prefix, l.n)
}

// IsZero reports whether l is the zero value, the "not yet assigned" label
// a String node carries until it is interned.
func (l Label) IsZero() bool { return l.prefix == "" && l.n == 0 }

// LabelSource is a monotonically increasing generator of jump-target
// labels, process-wide within a single compilation (spec.md §4.F, §5).
type LabelSource struct {
	next   int
	prefix string
}

// NewLabelSource creates a generator using prefix for every label it
// issues (typically ".L", per spec.md §6).
func NewLabelSource(prefix string) *LabelSource {
	return &LabelSource{next: 0, prefix: prefix}
}

// New issues the next label in sequence.
func (s *LabelSource) New() Label {
	l := Label{n: s.next, prefix: s.prefix}
	s.next++
	return l
}
