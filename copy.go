package yamlkit

import (
	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/value"
)

// Copy deep-clones a loaded value tree, requesting a fresh allocation from
// cfg for every node so the clone's allocator bookkeeping is independent of
// the source's: Copy must produce a graph Free can release on its own,
// without touching the original.
func Copy(cfg *Config, sch *schema.Schema, v *value.Value) (*value.Value, error) {
	if err := schema.Check(sch); err != nil {
		return nil, err
	}
	return copyValue(cfg, sch, v)
}

func copyValue(cfg *Config, sch *schema.Schema, v *value.Value) (*value.Value, error) {
	if v == nil {
		return nil, nil
	}

	var c *value.Value
	switch sch.Kind {
	case schema.Mapping:
		c = &value.Value{Kind: v.Kind, Null: v.Null, Fields: make(map[string]*value.Value, len(v.Fields))}
		for i := range sch.Fields {
			f := &sch.Fields[i]
			src, ok := v.Fields[f.Key]
			if !ok {
				continue
			}
			cv, err := copyValue(cfg, f.Value, src)
			if err != nil {
				freeValue(cfg, c)
				return nil, err
			}
			c.Fields[f.Key] = cv
		}
	case schema.Sequence, schema.SequenceFixed:
		c = &value.Value{Kind: v.Kind, Null: v.Null, Seq: make([]*value.Value, 0, len(v.Seq))}
		for _, e := range v.Seq {
			cv, err := copyValue(cfg, sch.Entry, e)
			if err != nil {
				freeValue(cfg, c)
				return nil, err
			}
			c.Seq = append(c.Seq, cv)
		}
	default:
		c = v.Clone()
	}

	if err := allocNode(cfg, c); err != nil {
		freeValue(cfg, c)
		return nil, err
	}
	return c, nil
}
