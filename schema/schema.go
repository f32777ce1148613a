// Package schema describes the shape, layout, and constraints of a native
// data structure: the immutable description tree that the load, save, and
// free engines walk. It is modelled as a Go sum type (a Kind tag plus the
// fields relevant to that kind) rather than raw offsets into foreign memory
// (see DESIGN.md).
package schema

import (
	"fmt"

	"github.com/willabides/yamlkit/yamlerr"
)

// Kind tags the variant a Schema node holds.
type Kind int

const (
	Int Kind = iota
	Uint
	Bool
	Float
	Enum
	Flags
	Bitfield
	String
	Binary
	Mapping
	Sequence
	SequenceFixed
	Ignore
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Bool:
		return "bool"
	case Float:
		return "float"
	case Enum:
		return "enum"
	case Flags:
		return "flags"
	case Bitfield:
		return "bitfield"
	case String:
		return "string"
	case Binary:
		return "binary"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	case SequenceFixed:
		return "sequence_fixed"
	case Ignore:
		return "ignore"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Flags is the per-node bit-set controlling pointer semantics, optionality,
// and case policy.
type Flags uint32

const (
	None Flags = 0

	// Pointer marks the slot as an owning pointer to the value rather than
	// an inline instance.
	Pointer Flags = 1 << iota
	// PointerNull additionally accepts an empty YAML scalar as a null
	// pointer.
	PointerNull
	// PointerNullStr additionally accepts the literal tokens null/Null/
	// NULL/~ as a null pointer.
	PointerNullStr
	// Optional means a missing mapping field is not an error.
	Optional
	// Strict disables numeric fallback for enum/flags and forces
	// case-sensitive name matching regardless of ambient configuration.
	Strict
	// CaseSensitive overrides the ambient case policy for this node.
	CaseSensitive
	// CaseInsensitive overrides the ambient case policy for this node.
	CaseInsensitive
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// EffectiveCaseInsensitive resolves the node's case policy: Strict always
// forces case-sensitive; otherwise an explicit CaseSensitive/CaseInsensitive
// flag on the node overrides the ambient configuration.
func (f Flags) EffectiveCaseInsensitive(ambientCaseInsensitive bool) bool {
	if f.Has(Strict) {
		return false
	}
	if f.Has(CaseSensitive) {
		return false
	}
	if f.Has(CaseInsensitive) {
		return true
	}
	return ambientCaseInsensitive
}

// IsPointer reports whether the slot is any of the three pointer variants.
func (f Flags) IsPointer() bool {
	return f.Has(Pointer) || f.Has(PointerNull) || f.Has(PointerNullStr)
}

// Unlimited marks a String/Binary/Sequence upper bound as unbounded.
const Unlimited = -1

// EnumValue is one name/value pair of an Enum or Flags table.
type EnumValue struct {
	Name  string
	Value int64
}

// BitSlice is one named bit-range of a Bitfield schema.
type BitSlice struct {
	Name   string
	Offset int
	Bits   int
}

// ValidateFunc is the user-supplied predicate invoked after a value is
// fully populated at its slot. It receives the dotted path to the value and
// its populated Go-native representation (int64/uint64/float64/bool/string/
// []byte/map[string]any/[]any depending on Kind). Returning false aborts
// the load with DataValidErr.
type ValidateFunc func(path string, v any) bool

// Field is one entry of a Mapping schema. DataOffset/CountOffset/CountSize
// are carried for API fidelity with the original byte-addressed design and
// are used only for diagnostics; the engine never performs raw memory
// addressing with them (see DESIGN.md).
type Field struct {
	Key         string
	Value       *Schema
	DataOffset  int
	HasCount    bool
	CountOffset int
	CountSize   int

	// HasMissing marks that Missing is a default to apply when Optional
	// and the key is absent. For a pointer-valued field, MissingIsZero
	// means "leave the pointer null" rather than allocate-and-populate.
	HasMissing    bool
	MissingIsZero bool
	Missing       any
}

// Schema is the tagged-union description of a value's type, layout, and
// constraints.
type Schema struct {
	Kind  Kind
	Flags Flags

	// DataSize is the byte width for Int/Uint/Bool/Bitfield (1,2,4,8) and
	// Float (4,8).
	DataSize int

	// Int range (signed). Nil means unconstrained beyond DataSize.
	Min, Max *int64

	// Uint range (unsigned). Nil means unconstrained beyond DataSize.
	UMin, UMax *uint64

	// Enum/Flags table.
	EnumTable []EnumValue

	// Bitfield layout, declaration order.
	Bits []BitSlice

	// String/Binary codepoint-length bounds. Max == Unlimited permitted
	// only when Flags has a pointer bit.
	LenMin, LenMax int

	// Mapping fields, declaration order.
	Fields []Field

	// Sequence/SequenceFixed element schema and count bounds. The count
	// slot (if any) lives on the enclosing mapping Field, not here -- a
	// sequence only needs a count slot when it is itself a mapping field's
	// value.
	Entry    *Schema
	CountMin int
	CountMax int

	// Validate is invoked bottom-up after the value is populated.
	Validate ValidateFunc
}

// Check validates schema structure. It is safe to call repeatedly (it
// caches nothing and is idempotent) and the engine calls it lazily on entry
// to the first operation that traverses a node.
func Check(s *Schema) *yamlerr.Error {
	return checkAt(s, "$")
}

func checkAt(s *Schema, path string) *yamlerr.Error {
	if s == nil {
		return yamlerr.New(yamlerr.NullSchema, path, 0, 0, "")
	}
	if s.Flags.Has(Pointer) && (s.Flags.Has(PointerNull) || s.Flags.Has(PointerNullStr)) {
		return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "only one of Pointer/PointerNull/PointerNullStr may be set")
	}
	if s.Flags.Has(PointerNull) && s.Flags.Has(PointerNullStr) {
		return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "only one of Pointer/PointerNull/PointerNullStr may be set")
	}
	if s.Flags.Has(CaseSensitive) && s.Flags.Has(CaseInsensitive) {
		return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "CaseSensitive and CaseInsensitive are mutually exclusive")
	}

	switch s.Kind {
	case Int, Uint, Bool:
		if !validIntSize(s.DataSize) {
			return yamlerr.New(yamlerr.InvalidDataSize, path, 0, 0, "data_size %d not in {1,2,4,8}", s.DataSize)
		}
		if s.Kind == Int && s.Min != nil && s.Max != nil && *s.Min > *s.Max {
			return yamlerr.New(yamlerr.BadMinMaxSchema, path, 0, 0, "min %d > max %d", *s.Min, *s.Max)
		}
		if s.Kind == Uint && s.UMin != nil && s.UMax != nil && *s.UMin > *s.UMax {
			return yamlerr.New(yamlerr.BadMinMaxSchema, path, 0, 0, "min %d > max %d", *s.UMin, *s.UMax)
		}
	case Float:
		if s.DataSize != 4 && s.DataSize != 8 {
			return yamlerr.New(yamlerr.InvalidDataSize, path, 0, 0, "float data_size %d not in {4,8}", s.DataSize)
		}
	case Enum:
		if err := checkEnumTable(s, path); err != nil {
			return err
		}
		if !validIntSize(s.DataSize) {
			return yamlerr.New(yamlerr.InvalidDataSize, path, 0, 0, "data_size %d not in {1,2,4,8}", s.DataSize)
		}
	case Flags:
		if err := checkEnumTable(s, path); err != nil {
			return err
		}
		if !validIntSize(s.DataSize) {
			return yamlerr.New(yamlerr.InvalidDataSize, path, 0, 0, "data_size %d not in {1,2,4,8}", s.DataSize)
		}
	case Bitfield:
		if !validIntSize(s.DataSize) {
			return yamlerr.New(yamlerr.InvalidDataSize, path, 0, 0, "data_size %d not in {1,2,4,8}", s.DataSize)
		}
		if err := checkBitfield(s, path); err != nil {
			return err
		}
	case String, Binary:
		if s.LenMax == Unlimited && !s.Flags.IsPointer() {
			return yamlerr.New(yamlerr.BadMinMaxSchema, path, 0, 0, "unlimited max length requires a pointer flag")
		}
		if s.LenMax != Unlimited && s.LenMin > s.LenMax {
			return yamlerr.New(yamlerr.BadMinMaxSchema, path, 0, 0, "min %d > max %d", s.LenMin, s.LenMax)
		}
	case Mapping:
		seen := make(map[string]bool, len(s.Fields))
		for i := range s.Fields {
			f := &s.Fields[i]
			if f.Key == "" {
				return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "mapping field %d has an empty key", i)
			}
			if seen[f.Key] {
				return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "duplicate mapping field key %q", f.Key)
			}
			seen[f.Key] = true
			if err := checkAt(f.Value, path+"."+f.Key); err != nil {
				return err
			}
		}
	case Sequence, SequenceFixed:
		if s.Entry == nil {
			return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "sequence schema has no entry schema")
		}
		if s.Kind == SequenceFixed && s.CountMin != s.CountMax {
			return yamlerr.New(yamlerr.SequenceFixedCount, path, 0, 0, "sequence_fixed requires min == max (got %d, %d)", s.CountMin, s.CountMax)
		}
		if s.CountMax != Unlimited && s.CountMin > s.CountMax {
			return yamlerr.New(yamlerr.BadMinMaxSchema, path, 0, 0, "min %d > max %d", s.CountMin, s.CountMax)
		}
		if err := checkAt(s.Entry, path+"[]"); err != nil {
			return err
		}
	case Ignore:
		// no constraints
	default:
		return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "unknown schema kind %d", int(s.Kind))
	}
	return nil
}

func validIntSize(n int) bool {
	return n == 1 || n == 2 || n == 4 || n == 8
}

func checkEnumTable(s *Schema, path string) *yamlerr.Error {
	if len(s.EnumTable) == 0 {
		return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "enum/flags schema has an empty table")
	}
	seen := make(map[string]bool, len(s.EnumTable))
	for _, e := range s.EnumTable {
		if e.Name == "" {
			return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "enum/flags entry has an empty name")
		}
		if seen[e.Name] {
			return yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "duplicate enum/flags entry %q", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

func checkBitfield(s *Schema, path string) *yamlerr.Error {
	if len(s.Bits) == 0 {
		return yamlerr.New(yamlerr.BadBitfield, path, 0, 0, "bitfield schema has no bit slices")
	}
	total := 8 * s.DataSize
	occupied := make([]bool, total)
	seen := make(map[string]bool, len(s.Bits))
	for _, b := range s.Bits {
		if b.Name == "" {
			return yamlerr.New(yamlerr.BadBitValInSchema, path, 0, 0, "bit slice has an empty name")
		}
		if seen[b.Name] {
			return yamlerr.New(yamlerr.BadBitValInSchema, path, 0, 0, "duplicate bit slice name %q", b.Name)
		}
		seen[b.Name] = true
		if b.Bits < 1 || b.Bits > 64 {
			return yamlerr.New(yamlerr.BadBitValInSchema, path, 0, 0, "bit slice %q has bits=%d, want 1..64", b.Name, b.Bits)
		}
		if b.Offset < 0 || b.Offset+b.Bits > total {
			return yamlerr.New(yamlerr.BadBitValInSchema, path, 0, 0, "bit slice %q at offset %d width %d overflows %d-bit word", b.Name, b.Offset, b.Bits, total)
		}
		for i := b.Offset; i < b.Offset+b.Bits; i++ {
			if occupied[i] {
				return yamlerr.New(yamlerr.BadBitfield, path, 0, 0, "bit slice %q overlaps another slice at bit %d", b.Name, i)
			}
			occupied[i] = true
		}
	}
	return nil
}
