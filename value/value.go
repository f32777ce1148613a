package value

import (
	"bytes"
	"sort"

	"github.com/willabides/yamlkit/schema"
)

// Value is one populated node of the target graph the load engine builds
// and the save/free engines walk. It is the Go-native "builder" stand-in
// for the caller-owned buffer the reference design writes into (see
// DESIGN.md): every Value owns whatever it references, so freeing the root
// releases exactly the graph load produced.
type Value struct {
	Kind schema.Kind

	// Null is set when the slot is a pointer slot and currently holds no
	// value.
	Null bool

	I   int64  // Int, Enum, Bitfield accumulator
	U   uint64 // Uint, Flags accumulator
	F   float64
	B   bool
	S   string
	Bin []byte

	Fields map[string]*Value // Mapping, keyed by Field.Key
	Seq    []*Value          // Sequence / SequenceFixed entries

	// Alloc is engine bookkeeping, not payload: the slice handed back by
	// Config.MemFn when this node was built, returned to MemFn by the free
	// engine. It lets a caller-supplied allocator observe a real
	// alloc/free pairing per graph node, even though the node's actual
	// field data above lives in ordinary GC-managed Go memory (see
	// DESIGN.md).
	Alloc []byte
}

// NewNull returns a null pointer-slot placeholder of the given kind.
func NewNull(k schema.Kind) *Value {
	return &Value{Kind: k, Null: true}
}

// Native converts a populated Value into the plain Go representation passed
// to a schema.ValidateFunc and used for default-equality comparison.
func (v *Value) Native() any {
	if v == nil || v.Null {
		return nil
	}
	switch v.Kind {
	case schema.Int, schema.Enum, schema.Bitfield:
		return v.I
	case schema.Uint, schema.Flags:
		return v.U
	case schema.Bool:
		return v.B
	case schema.Float:
		return v.F
	case schema.String:
		return v.S
	case schema.Binary:
		return v.Bin
	case schema.Mapping:
		m := make(map[string]any, len(v.Fields))
		for k, fv := range v.Fields {
			m[k] = fv.Native()
		}
		return m
	case schema.Sequence, schema.SequenceFixed:
		s := make([]any, len(v.Seq))
		for i, e := range v.Seq {
			s[i] = e.Native()
		}
		return s
	default:
		return nil
	}
}

// Clone deep-copies v (used by the copy engine).
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := &Value{Kind: v.Kind, Null: v.Null, I: v.I, U: v.U, F: v.F, B: v.B, S: v.S}
	if v.Bin != nil {
		c.Bin = append([]byte(nil), v.Bin...)
	}
	if v.Fields != nil {
		c.Fields = make(map[string]*Value, len(v.Fields))
		for k, fv := range v.Fields {
			c.Fields[k] = fv.Clone()
		}
	}
	if v.Seq != nil {
		c.Seq = make([]*Value, len(v.Seq))
		for i, e := range v.Seq {
			c.Seq[i] = e.Clone()
		}
	}
	return c
}

// Equal reports structural equality, used for the round-trip property and
// for the save engine's "missing" default comparison.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.Kind != o.Kind || v.Null != o.Null {
		return false
	}
	if v.Null {
		return true
	}
	switch v.Kind {
	case schema.Int, schema.Enum, schema.Bitfield:
		return v.I == o.I
	case schema.Uint, schema.Flags:
		return v.U == o.U
	case schema.Bool:
		return v.B == o.B
	case schema.Float:
		return v.F == o.F
	case schema.String:
		return v.S == o.S
	case schema.Binary:
		return bytes.Equal(v.Bin, o.Bin)
	case schema.Mapping:
		if len(v.Fields) != len(o.Fields) {
			return false
		}
		for k, fv := range v.Fields {
			ov, ok := o.Fields[k]
			if !ok || !fv.Equal(ov) {
				return false
			}
		}
		return true
	case schema.Sequence, schema.SequenceFixed:
		if len(v.Seq) != len(o.Seq) {
			return false
		}
		for i := range v.Seq {
			if !v.Seq[i].Equal(o.Seq[i]) {
				return false
			}
		}
		return true
	case schema.Ignore:
		return true
	default:
		return false
	}
}

// SortedFieldKeys returns a Mapping value's field keys sorted for
// deterministic diagnostics; iteration for emission itself follows schema
// declaration order via the Fields slice, never this helper.
func (v *Value) SortedFieldKeys() []string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
