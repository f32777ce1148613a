package yamlkit

import (
	"strings"

	"github.com/willabides/yamlkit/internal/yamlh"
	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/value"
	"github.com/willabides/yamlkit/yamlerr"
)

// loader holds the state threaded through one load_data call: the document's
// event feed and the configuration it runs under.
type loader struct {
	feed *eventFeed
	cfg  *Config
}

// isNullLiteral reports whether raw is one of the recognized null tokens.
func isNullLiteral(raw string) bool {
	switch raw {
	case "null", "Null", "NULL", "~":
		return true
	default:
		return false
	}
}

// isNullScalar reports whether ev is a scalar this pointer-flagged schema
// treats as a null slot: PointerNull accepts an empty scalar, PointerNullStr
// additionally accepts the literal null tokens.
func isNullScalar(s *schema.Schema, ev yamlh.Event) bool {
	if ev.Type != yamlh.SCALAR_EVENT {
		return false
	}
	raw := string(ev.Value)
	if s.Flags.Has(schema.PointerNull) && raw == "" {
		return true
	}
	if s.Flags.Has(schema.PointerNullStr) && (raw == "" || isNullLiteral(raw)) {
		return true
	}
	return false
}

// loadValue loads one schema-described slot starting at the next event.
// path is the dotted diagnostic path of the slot being populated. On error
// the partially built v (if any) has already been freed by the caller that
// owns it; loadValue itself frees only what it allocated after the error
// point.
func (l *loader) loadValue(s *schema.Schema, path string) (*value.Value, *yamlerr.Error) {
	if err := schema.Check(s); err != nil {
		return nil, err
	}

	ev, err := l.feed.next()
	if err != nil {
		return nil, err
	}

	if s.Kind == schema.Ignore {
		if serr := l.skipSubtree(ev); serr != nil {
			return nil, serr
		}
		return &value.Value{Kind: schema.Ignore}, nil
	}

	if s.Flags.IsPointer() && isNullScalar(s, ev) {
		v := value.NewNull(s.Kind)
		if aerr := allocNode(l.cfg, v); aerr != nil {
			return nil, aerr
		}
		return v, nil
	}

	v, lerr := l.loadFromEvent(s, ev, path)
	if lerr != nil {
		return nil, lerr
	}
	if s.Validate != nil && !s.Validate(path, v.Native()) {
		freeValue(l.cfg, v)
		return nil, yamlerr.New(yamlerr.DataValidErr, path, 0, 0, "validation rejected value at %s", path)
	}
	return v, nil
}

// loadFromEvent dispatches on the schema kind now that the slot is known not
// to be a null pointer.
func (l *loader) loadFromEvent(s *schema.Schema, ev yamlh.Event, path string) (*value.Value, *yamlerr.Error) {
	switch s.Kind {
	case schema.Int, schema.Uint, schema.Bool, schema.Float, schema.Enum, schema.String, schema.Binary:
		return l.loadScalarLeaf(s, ev, path)
	case schema.Flags:
		return l.loadFlags(s, ev, path)
	case schema.Bitfield:
		return l.loadBitfield(s, ev, path)
	case schema.Mapping:
		return l.loadMapping(s, ev, path)
	case schema.Sequence, schema.SequenceFixed:
		return l.loadSequence(s, ev, path)
	default:
		return nil, yamlerr.New(yamlerr.BadTypeInSchema, path, 0, 0, "unhandled schema kind %s", s.Kind)
	}
}

func unexpected(path string, ev yamlh.Event) *yamlerr.Error {
	return yamlerr.New(yamlerr.UnexpectedEvent, path, ev.Start_mark.Line+1, ev.Start_mark.Column+1, "unexpected %s", ev.Type)
}

func (l *loader) loadScalarLeaf(s *schema.Schema, ev yamlh.Event, path string) (*value.Value, *yamlerr.Error) {
	if ev.Type != yamlh.SCALAR_EVENT {
		return nil, unexpected(path, ev)
	}
	raw := string(ev.Value)
	v := &value.Value{Kind: s.Kind}
	var perr *yamlerr.Error
	switch s.Kind {
	case schema.Int:
		v.I, perr = value.ParseInt(path, raw, s.DataSize, s.Min, s.Max)
	case schema.Uint:
		v.U, perr = value.ParseUint(path, raw, s.DataSize, s.UMin, s.UMax)
	case schema.Bool:
		v.B, perr = value.ParseBool(path, raw)
	case schema.Float:
		v.F, perr = value.ParseFloat(path, raw, s.DataSize)
	case schema.Enum:
		v.I, perr = value.ParseEnum(path, raw, s, s.Flags.EffectiveCaseInsensitive(l.cfg.caseInsensitive()))
	case schema.String:
		v.S, perr = value.ParseString(path, raw, s.LenMin, s.LenMax)
	case schema.Binary:
		v.Bin, perr = value.DecodeBase64Lenient(path, raw, s.LenMin, s.LenMax)
	}
	if perr != nil {
		return nil, perr
	}
	if aerr := allocNode(l.cfg, v); aerr != nil {
		return nil, aerr
	}
	return v, nil
}

// loadFlags reads a sequence of enum-table names/numeric literals, OR-ing
// them into a single accumulator.
func (l *loader) loadFlags(s *schema.Schema, ev yamlh.Event, path string) (*value.Value, *yamlerr.Error) {
	if ev.Type != yamlh.SEQUENCE_START_EVENT {
		return nil, unexpected(path, ev)
	}
	caseInsensitive := s.Flags.EffectiveCaseInsensitive(l.cfg.caseInsensitive())
	var acc uint64
	for {
		next, err := l.feed.next()
		if err != nil {
			return nil, err
		}
		if next.Type == yamlh.SEQUENCE_END_EVENT {
			break
		}
		if next.Type != yamlh.SCALAR_EVENT {
			return nil, unexpected(path, next)
		}
		entry, perr := value.ParseFlagsEntry(path, string(next.Value), s, caseInsensitive)
		if perr != nil {
			return nil, perr
		}
		acc = value.PackBits(acc, 0, 64, entry)
	}
	v := &value.Value{Kind: schema.Flags, U: acc}
	if aerr := allocNode(l.cfg, v); aerr != nil {
		return nil, aerr
	}
	return v, nil
}

// loadBitfield reads a mapping of slice-name -> value entries, packing each
// into a single accumulator with last-value-wins semantics for duplicate
// keys.
func (l *loader) loadBitfield(s *schema.Schema, ev yamlh.Event, path string) (*value.Value, *yamlerr.Error) {
	if ev.Type != yamlh.MAPPING_START_EVENT {
		return nil, unexpected(path, ev)
	}
	caseInsensitive := s.Flags.EffectiveCaseInsensitive(l.cfg.caseInsensitive())
	var acc uint64
	for {
		keyEv, err := l.feed.next()
		if err != nil {
			return nil, err
		}
		if keyEv.Type == yamlh.MAPPING_END_EVENT {
			break
		}
		if keyEv.Type != yamlh.SCALAR_EVENT {
			return nil, unexpected(path, keyEv)
		}
		name := string(keyEv.Value)
		slice, ok := value.FindBitSlice(s, name, caseInsensitive)
		if !ok {
			return nil, yamlerr.New(yamlerr.InvalidKey, path, keyEv.Start_mark.Line+1, keyEv.Start_mark.Column+1, "%q is not a declared bit slice", name)
		}
		valEv, err := l.feed.next()
		if err != nil {
			return nil, err
		}
		if valEv.Type != yamlh.SCALAR_EVENT {
			return nil, unexpected(path+"."+name, valEv)
		}
		bits, perr := value.ParseBitfieldValue(path+"."+name, string(valEv.Value), slice.Bits)
		if perr != nil {
			return nil, perr
		}
		acc = value.SetBits(acc, slice.Offset, slice.Bits, bits)
	}
	v := &value.Value{Kind: schema.Bitfield, I: int64(acc)}
	if aerr := allocNode(l.cfg, v); aerr != nil {
		return nil, aerr
	}
	return v, nil
}

// findField resolves a mapping key against a schema's field table under the
// ambient/node case policy.
func findField(s *schema.Schema, key string, caseInsensitive bool) (*schema.Field, int) {
	for i := range s.Fields {
		f := &s.Fields[i]
		if strOrFold(f.Key, key, caseInsensitive) {
			return f, i
		}
	}
	return nil, -1
}

func strOrFold(a, b string, caseInsensitive bool) bool {
	if caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// defaultValue materialises a schema.Field's Missing default as a fresh
// *value.Value, used when an Optional field is absent from the mapping.
func (l *loader) defaultValue(f *schema.Field) (*value.Value, *yamlerr.Error) {
	s := f.Value
	if f.MissingIsZero || f.Missing == nil {
		if s.Flags.IsPointer() {
			v := value.NewNull(s.Kind)
			if aerr := allocNode(l.cfg, v); aerr != nil {
				return nil, aerr
			}
			return v, nil
		}
		v := zeroValue(s)
		if aerr := allocNode(l.cfg, v); aerr != nil {
			return nil, aerr
		}
		return v, nil
	}
	v := &value.Value{Kind: s.Kind}
	switch m := f.Missing.(type) {
	case int64:
		v.I = m
	case uint64:
		v.U = m
	case float64:
		v.F = m
	case bool:
		v.B = m
	case string:
		v.S = m
	case []byte:
		v.Bin = append([]byte(nil), m...)
	}
	if aerr := allocNode(l.cfg, v); aerr != nil {
		return nil, aerr
	}
	return v, nil
}

// zeroValue builds the zero-valued instance of a non-pointer schema kind,
// used as an Optional field's implicit default when no explicit Missing
// value was configured.
func zeroValue(s *schema.Schema) *value.Value {
	switch s.Kind {
	case schema.Mapping:
		v := &value.Value{Kind: schema.Mapping, Fields: make(map[string]*value.Value, len(s.Fields))}
		for i := range s.Fields {
			v.Fields[s.Fields[i].Key] = zeroValue(s.Fields[i].Value)
		}
		return v
	case schema.Sequence, schema.SequenceFixed:
		return &value.Value{Kind: s.Kind, Seq: nil}
	default:
		return &value.Value{Kind: s.Kind}
	}
}

// loadMapping loads a MAPPING_START..MAPPING_END run, matching keys against
// the schema's field table, applying defaults for absent Optional fields,
// and honouring IgnoreUnknownKeys/IgnoredKeyWarning.
func (l *loader) loadMapping(s *schema.Schema, ev yamlh.Event, path string) (*value.Value, *yamlerr.Error) {
	if ev.Type != yamlh.MAPPING_START_EVENT {
		return nil, unexpected(path, ev)
	}
	caseInsensitive := s.Flags.EffectiveCaseInsensitive(l.cfg.caseInsensitive())
	v := &value.Value{Kind: schema.Mapping, Fields: make(map[string]*value.Value, len(s.Fields))}
	seen := make(map[string]bool, len(s.Fields))

	for {
		keyEv, err := l.feed.next()
		if err != nil {
			freeValue(l.cfg, v)
			return nil, err
		}
		if keyEv.Type == yamlh.MAPPING_END_EVENT {
			break
		}
		if keyEv.Type != yamlh.SCALAR_EVENT {
			freeValue(l.cfg, v)
			return nil, unexpected(path, keyEv)
		}
		key := string(keyEv.Value)
		f, _ := findField(s, key, caseInsensitive)
		if f == nil {
			if !l.cfg.Flags.Has(IgnoreUnknownKeys) {
				freeValue(l.cfg, v)
				return nil, yamlerr.New(yamlerr.InvalidKey, path, keyEv.Start_mark.Line+1, keyEv.Start_mark.Column+1, "unknown key %q", key)
			}
			if l.cfg.Flags.Has(IgnoredKeyWarning) {
				l.cfg.log(Warning, "ignoring unknown key %q at %s", key, path)
			}
			skipEv, serr := l.feed.next()
			if serr != nil {
				freeValue(l.cfg, v)
				return nil, serr
			}
			if serr := l.skipSubtree(skipEv); serr != nil {
				freeValue(l.cfg, v)
				return nil, serr
			}
			continue
		}
		seen[f.Key] = true
		fv, lerr := l.loadValue(f.Value, path+"."+f.Key)
		if lerr != nil {
			freeValue(l.cfg, v)
			return nil, lerr
		}
		v.Fields[f.Key] = fv
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		if seen[f.Key] {
			continue
		}
		if !f.Value.Flags.Has(schema.Optional) {
			freeValue(l.cfg, v)
			return nil, yamlerr.New(yamlerr.MappingFieldMissing, path+"."+f.Key, 0, 0, "required field %q is missing", f.Key)
		}
		dv, derr := l.defaultValue(f)
		if derr != nil {
			freeValue(l.cfg, v)
			return nil, derr
		}
		v.Fields[f.Key] = dv
	}

	if aerr := allocNode(l.cfg, v); aerr != nil {
		freeValue(l.cfg, v)
		return nil, aerr
	}
	return v, nil
}

// loadSequence loads a SEQUENCE_START..SEQUENCE_END run of entries, each
// conforming to s.Entry, enforcing CountMin/CountMax.
func (l *loader) loadSequence(s *schema.Schema, ev yamlh.Event, path string) (*value.Value, *yamlerr.Error) {
	if ev.Type != yamlh.SEQUENCE_START_EVENT {
		return nil, unexpected(path, ev)
	}
	v := &value.Value{Kind: s.Kind}
	i := 0
	for {
		next, err := l.feed.next()
		if err != nil {
			freeValue(l.cfg, v)
			return nil, err
		}
		if next.Type == yamlh.SEQUENCE_END_EVENT {
			break
		}
		if s.CountMax != schema.Unlimited && i >= s.CountMax {
			freeValue(l.cfg, v)
			return nil, yamlerr.New(yamlerr.SequenceEntriesMax, path, next.Start_mark.Line+1, next.Start_mark.Column+1, "sequence has more than %d entries", s.CountMax)
		}
		ev2, lerr := l.loadFromEvent(s.Entry, next, entryPath(path, i))
		if lerr != nil {
			freeValue(l.cfg, v)
			return nil, lerr
		}
		v.Seq = append(v.Seq, ev2)
		i++
	}
	if i < s.CountMin {
		freeValue(l.cfg, v)
		return nil, yamlerr.New(yamlerr.SequenceEntriesMin, path, 0, 0, "sequence has %d entries, want at least %d", i, s.CountMin)
	}
	if aerr := allocNode(l.cfg, v); aerr != nil {
		freeValue(l.cfg, v)
		return nil, aerr
	}
	return v, nil
}

func entryPath(parent string, i int) string {
	return parent + "[" + value.EmitInt(int64(i)) + "]"
}

// skipSubtree discards one already-started event subtree: a scalar is
// already fully consumed by ev itself, a collection is consumed down to its
// matching END event. Used for Ignore-kind schema fields and for unknown
// keys under IgnoreUnknownKeys.
func (l *loader) skipSubtree(ev yamlh.Event) *yamlerr.Error {
	depth := 0
	switch ev.Type {
	case yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
		depth = 1
	default:
		return nil
	}
	for depth > 0 {
		next, err := l.feed.next()
		if err != nil {
			return err
		}
		switch next.Type {
		case yamlh.SEQUENCE_START_EVENT, yamlh.MAPPING_START_EVENT:
			depth++
		case yamlh.SEQUENCE_END_EVENT, yamlh.MAPPING_END_EVENT:
			depth--
		}
	}
	return nil
}
