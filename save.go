package yamlkit

import (
	"io"

	"github.com/willabides/yamlkit/internal/emitter"
	"github.com/willabides/yamlkit/internal/yamlh"
	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/value"
	"github.com/willabides/yamlkit/yamlerr"
)

// saver drives an emitter.Emitter from a schema-described *value.Value tree,
// the save-side mirror of loader. Grounded on the event engine's own
// Encoder, which drives the same Emitter.Emit(event, final) API from a
// reflect-walked Go value; here the walk is schema-directed instead.
type saver struct {
	em  *emitter.Emitter
	cfg *Config
}

func (s *saver) emit(ev *yamlh.Event) *yamlerr.Error {
	if err := s.em.Emit(ev, false); err != nil {
		return yamlerr.New(yamlerr.Parser, "", 0, 0, "%v", err)
	}
	return nil
}

func scalarStyle(cfg *Config) yamlh.YamlScalarStyle {
	return yamlh.PLAIN_SCALAR_STYLE
}

func collectionStyle(cfg *Config) (yamlh.YamlSequenceStyle, yamlh.YamlMappingStyle) {
	if cfg.Flags.Has(StyleFlow) {
		return yamlh.FLOW_SEQUENCE_STYLE, yamlh.FLOW_MAPPING_STYLE
	}
	return yamlh.BLOCK_SEQUENCE_STYLE, yamlh.BLOCK_MAPPING_STYLE
}

// saveValue emits v per s, honouring the Optional "omit when equal to the
// configured default" rule.
func (s *saver) saveValue(sch *schema.Schema, v *value.Value) *yamlerr.Error {
	if sch.Kind == schema.Ignore {
		return s.emit(scalarEvent("", yamlh.NULL_TAG, scalarStyle(s.cfg)))
	}
	if v.Null {
		if !sch.Flags.Has(schema.PointerNull) && !sch.Flags.Has(schema.PointerNullStr) {
			return yamlerr.New(yamlerr.DataTargetNonNullPtrReq, "", 0, 0, "non-nullable pointer slot is null")
		}
		return s.emit(scalarEvent("", yamlh.NULL_TAG, scalarStyle(s.cfg)))
	}
	switch sch.Kind {
	case schema.Int:
		return s.emit(scalarEvent(value.EmitInt(v.I), yamlh.INT_TAG, scalarStyle(s.cfg)))
	case schema.Uint:
		return s.emit(scalarEvent(value.EmitUint(v.U), yamlh.INT_TAG, scalarStyle(s.cfg)))
	case schema.Bool:
		return s.emit(scalarEvent(value.EmitBool(v.B), yamlh.BOOL_TAG, scalarStyle(s.cfg)))
	case schema.Float:
		return s.emit(scalarEvent(value.EmitFloat(v.F, sch.DataSize), yamlh.FLOAT_TAG, scalarStyle(s.cfg)))
	case schema.Enum:
		return s.emit(scalarEvent(value.EmitEnum(sch, v.I), yamlh.STR_TAG, scalarStyle(s.cfg)))
	case schema.String:
		return s.emit(scalarEvent(v.S, yamlh.STR_TAG, scalarStyle(s.cfg)))
	case schema.Binary:
		return s.emit(scalarEvent(value.EncodeBase64(v.Bin), yamlh.STR_TAG, scalarStyle(s.cfg)))
	case schema.Flags:
		return s.saveFlags(sch, v)
	case schema.Bitfield:
		return s.saveBitfield(sch, v)
	case schema.Mapping:
		return s.saveMapping(sch, v)
	case schema.Sequence, schema.SequenceFixed:
		return s.saveSequence(sch, v)
	default:
		return yamlerr.New(yamlerr.BadTypeInSchema, "", 0, 0, "unhandled schema kind %s", sch.Kind)
	}
}

func (s *saver) saveFlags(sch *schema.Schema, v *value.Value) *yamlerr.Error {
	seqStyle, _ := collectionStyle(s.cfg)
	if err := s.emit(sequenceStartEvent(seqStyle)); err != nil {
		return err
	}
	for _, name := range value.EmitFlags(sch, v.U) {
		if err := s.emit(scalarEvent(name, yamlh.STR_TAG, scalarStyle(s.cfg))); err != nil {
			return err
		}
	}
	return s.emit(sequenceEndEvent())
}

func (s *saver) saveBitfield(sch *schema.Schema, v *value.Value) *yamlerr.Error {
	_, mapStyle := collectionStyle(s.cfg)
	if err := s.emit(mappingStartEvent(mapStyle)); err != nil {
		return err
	}
	for _, slice := range value.EmitBitfield(sch, uint64(v.I)) {
		if err := s.emit(scalarEvent(slice.Name, yamlh.STR_TAG, scalarStyle(s.cfg))); err != nil {
			return err
		}
		if err := s.emit(scalarEvent(value.EmitUint(slice.Value), yamlh.INT_TAG, scalarStyle(s.cfg))); err != nil {
			return err
		}
	}
	return s.emit(mappingEndEvent())
}

// fieldOmitted reports whether a mapping field equals its Optional default
// and should be omitted from the emitted mapping.
func fieldOmitted(f *schema.Field, fv *value.Value) bool {
	if !f.Value.Flags.Has(schema.Optional) || !f.HasMissing {
		return false
	}
	if f.MissingIsZero {
		return fv.Null || fv.Equal(zeroValue(f.Value))
	}
	def := &value.Value{Kind: f.Value.Kind}
	switch m := f.Missing.(type) {
	case int64:
		def.I = m
	case uint64:
		def.U = m
	case float64:
		def.F = m
	case bool:
		def.B = m
	case string:
		def.S = m
	case []byte:
		def.Bin = m
	}
	return fv.Equal(def)
}

func (s *saver) saveMapping(sch *schema.Schema, v *value.Value) *yamlerr.Error {
	_, mapStyle := collectionStyle(s.cfg)
	if err := s.emit(mappingStartEvent(mapStyle)); err != nil {
		return err
	}
	for i := range sch.Fields {
		f := &sch.Fields[i]
		fv := v.Fields[f.Key]
		if fv == nil || fieldOmitted(f, fv) {
			continue
		}
		if err := s.emit(scalarEvent(f.Key, yamlh.STR_TAG, scalarStyle(s.cfg))); err != nil {
			return err
		}
		if err := s.saveValue(f.Value, fv); err != nil {
			return err
		}
	}
	return s.emit(mappingEndEvent())
}

func (s *saver) saveSequence(sch *schema.Schema, v *value.Value) *yamlerr.Error {
	seqStyle, _ := collectionStyle(s.cfg)
	if err := s.emit(sequenceStartEvent(seqStyle)); err != nil {
		return err
	}
	for _, ev := range v.Seq {
		if err := s.saveValue(sch.Entry, ev); err != nil {
			return err
		}
	}
	return s.emit(sequenceEndEvent())
}

// saveDocument drives one full stream containing a single document:
// STREAM_START, DOCUMENT_START, the schema-directed value walk, DOCUMENT_END,
// STREAM_END. w is flushed by the final Emit(..., true) call.
func saveDocument(cfg *Config, sch *schema.Schema, v *value.Value, w io.Writer) *yamlerr.Error {
	if err := schema.Check(sch); err != nil {
		return err
	}
	em := emitter.New(w)
	s := &saver{em: em, cfg: cfg}
	if err := s.emit(streamStartEvent()); err != nil {
		return err
	}
	if err := s.emit(documentStartEvent()); err != nil {
		return err
	}
	if err := s.saveValue(sch, v); err != nil {
		return err
	}
	if err := s.emit(documentEndEvent()); err != nil {
		return err
	}
	if err := em.Emit(streamEndEvent(), true); err != nil {
		return yamlerr.New(yamlerr.Parser, "", 0, 0, "%v", err)
	}
	return nil
}
