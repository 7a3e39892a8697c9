package compiler

import (
	"fmt"
	"strings"
)

// Kind discriminates the four shapes a Simple C type can take.
type Kind int

const (
	KindError Kind = iota
	KindScalar
	KindArray
	KindFunction
)

// Specifier is the base word of a declaration: char, int, or long.
type Specifier int

const (
	SpecChar Specifier = iota
	SpecInt
	SpecLong
)

func (s Specifier) String() string {
	switch s {
	case SpecChar:
		return "char"
	case SpecInt:
		return "int"
	case SpecLong:
		return "long"
	default:
		return fmt.Sprintf("Specifier(%d)", int(s))
	}
}

// specSize is the storage size in bytes of each base specifier.
var specSize = map[Specifier]int{
	SpecChar: 1,
	SpecInt:  4,
	SpecLong: 8,
}

// pointerSize is the width of every pointer value, regardless of pointee.
const pointerSize = 8

// Type is an immutable value describing a Simple C type. The zero Type is
// KindError. Every method that builds a new Type returns a fresh value;
// none of them mutate the receiver.
type Type struct {
	kind        Kind
	specifier   Specifier
	indirection int // number of '*' levels; 0 for a plain scalar

	length int // KindArray only: element count, > 0

	params   []Type // KindFunction only: parameter types in order
	variadic bool   // KindFunction only
}

// ErrorType is the sentinel type assigned to any expression whose checking
// failed. It compares equal only to itself.
var ErrorType = Type{kind: KindError}

// NewScalar builds a scalar (or pointer, when indirection > 0) type.
func NewScalar(spec Specifier, indirection int) Type {
	return Type{kind: KindScalar, specifier: spec, indirection: indirection}
}

// NewArray builds an array-of-length type. length must be positive.
func NewArray(spec Specifier, indirection int, length int) Type {
	return Type{kind: KindArray, specifier: spec, indirection: indirection, length: length}
}

// NewFunction builds a function type with the given return specifier,
// return-indirection, parameter list, and variadic flag.
func NewFunction(spec Specifier, indirection int, params []Type, variadic bool) Type {
	return Type{
		kind:        KindFunction,
		specifier:   spec,
		indirection: indirection,
		params:      params,
		variadic:    variadic,
	}
}

func (t Type) Kind() Kind             { return t.kind }
func (t Type) Specifier() Specifier   { return t.specifier }
func (t Type) Indirection() int       { return t.indirection }
func (t Type) Length() int            { return t.length }
func (t Type) Params() []Type         { return t.params }
func (t Type) Variadic() bool         { return t.variadic }
func (t Type) IsError() bool          { return t.kind == KindError }

// IsNumeric holds for any non-pointer scalar (char, int, or long with no
// indirection).
func (t Type) IsNumeric() bool {
	return t.kind == KindScalar && t.indirection == 0
}

// IsPointer holds for any scalar with at least one level of indirection.
func (t Type) IsPointer() bool {
	return t.kind == KindScalar && t.indirection > 0
}

// IsScalar holds for anything that is not an array and not a function; this
// is the "scalar type required in statement" category from spec.md §7.
func (t Type) IsScalar() bool {
	return t.kind == KindScalar
}

// IsCompatibleWith implements spec.md §4.A's compatibility rule: any two
// numeric types are compatible with each other, and two scalar types are
// compatible when they are equal (so two int* operands are compatible,
// while a pointer is never compatible with a numeric type or with a
// pointer to a different target).
func (t Type) IsCompatibleWith(other Type) bool {
	if t.IsNumeric() && other.IsNumeric() {
		return true
	}
	if t.kind == KindScalar && other.kind == KindScalar {
		return t.Equal(other)
	}
	return false
}

// Equal implements the equality law from spec.md §3: error types compare
// equal only to themselves; otherwise kind, specifier, indirection, and the
// kind-specific payload (array length, or function parameter list plus
// variadic flag) must all match.
func (t Type) Equal(o Type) bool {
	if t.kind == KindError || o.kind == KindError {
		return t.kind == KindError && o.kind == KindError
	}
	if t.kind != o.kind || t.specifier != o.specifier || t.indirection != o.indirection {
		return false
	}
	switch t.kind {
	case KindArray:
		return t.length == o.length
	case KindFunction:
		if t.variadic != o.variadic || len(t.params) != len(o.params) {
			return false
		}
		for i := range t.params {
			if !t.params[i].Equal(o.params[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Decay converts an array type into a pointer to its element type. Every
// other kind of type is returned unchanged, per spec.md §4.A.
func (t Type) Decay() Type {
	if t.kind != KindArray {
		return t
	}
	return NewScalar(t.specifier, t.indirection+1)
}

// Promote widens a plain char to int. Every other type, including
// pointer-to-char, is returned unchanged.
func (t Type) Promote() Type {
	if t.kind == KindScalar && t.specifier == SpecChar && t.indirection == 0 {
		return NewScalar(SpecInt, 0)
	}
	return t
}

// Dereference strips one level of indirection from a pointer type. Calling
// it on anything else is a programmer error, matching spec.md's invariant
// that dereference is only legal on pointers (the checker never calls this
// without first verifying IsPointer).
func (t Type) Dereference() Type {
	if !t.IsPointer() {
		panic("compiler: Dereference of non-pointer type " + t.String())
	}
	return NewScalar(t.specifier, t.indirection-1)
}

// AddressOf returns the type of &e for an operand of this type.
func (t Type) AddressOf() Type {
	return NewScalar(t.specifier, t.indirection+1)
}

// Size returns the storage size in bytes. Calling it on a function or error
// type is a programmer error per spec.md §3.
func (t Type) Size() int {
	switch t.kind {
	case KindScalar:
		if t.indirection > 0 {
			return pointerSize
		}
		return specSize[t.specifier]
	case KindArray:
		return t.elementSize() * t.length
	default:
		panic("compiler: Size of " + t.kindName() + " type")
	}
}

// elementSize is the size of one element of an array type, i.e. the size
// its Decay()'d pointer would target.
func (t Type) elementSize() int {
	if t.indirection > 0 {
		return pointerSize
	}
	return specSize[t.specifier]
}

// Alignment equals Size for every scalar type (char, int, long, pointer);
// an array aligns to its element size, not to its total size.
func (t Type) Alignment() int {
	switch t.kind {
	case KindScalar:
		if t.indirection > 0 {
			return pointerSize
		}
		return specSize[t.specifier]
	case KindArray:
		return t.elementSize()
	default:
		panic("compiler: Alignment of " + t.kindName() + " type")
	}
}

func (t Type) kindName() string {
	switch t.kind {
	case KindError:
		return "error"
	case KindFunction:
		return "function"
	default:
		return "scalar/array"
	}
}

// String renders a Type the way it would appear in a diagnostic, e.g.
// "int", "char*", "int[4]", "long(int, char*)".
func (t Type) String() string {
	switch t.kind {
	case KindError:
		return "<error>"
	case KindScalar:
		return t.specifier.String() + strings.Repeat("*", t.indirection)
	case KindArray:
		return fmt.Sprintf("%s%s[%d]", t.specifier, strings.Repeat("*", t.indirection), t.length)
	case KindFunction:
		parts := make([]string, len(t.params))
		for i, p := range t.params {
			parts[i] = p.String()
		}
		if t.variadic {
			parts = append(parts, "...")
		}
		return fmt.Sprintf("%s%s(%s)", t.specifier, strings.Repeat("*", t.indirection), strings.Join(parts, ", "))
	default:
		return "<unknown type>"
	}
}
