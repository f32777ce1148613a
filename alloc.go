package yamlkit

import (
	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/value"
	"github.com/willabides/yamlkit/yamlerr"
)

// nodeByteCost is a rough size estimate passed to Config.MemFn when a graph
// node is created. The engine allocates exactly once per *value.Value node
// and frees exactly once per node (see DESIGN.md): in a memory-safe host
// language the real storage is ordinary GC-managed Go memory, so MemFn's
// role is the pluggable accounting hook that net-allocator-balance
// properties exercise, not the node's actual backing store. The estimate
// only needs to be deterministic and non-negative; it is never interpreted
// as a real buffer.
func nodeByteCost(v *value.Value) int {
	switch v.Kind {
	case schema.String:
		return len(v.S) + 1
	case schema.Binary:
		n := len(v.Bin)
		if n == 0 {
			n = 1
		}
		return n
	case schema.Mapping:
		n := len(v.Fields)
		if n == 0 {
			n = 1
		}
		return n * 8
	case schema.Sequence, schema.SequenceFixed:
		n := len(v.Seq)
		if n == 0 {
			n = 1
		}
		return n * 8
	default:
		return 8
	}
}

// allocNode requests backing storage for v from the configured allocator
// and records the handle on v.Alloc for the free engine to return later.
func allocNode(cfg *Config, v *value.Value) *yamlerr.Error {
	buf, err := cfg.alloc(nodeByteCost(v))
	if err != nil {
		return yamlerr.New(yamlerr.AllocFailed, "", 0, 0, "%v", err)
	}
	v.Alloc = buf
	return nil
}

// freeValue is the free engine: a bottom-up walk that releases every
// allocation the load engine produced, tolerant of partially-built graphs
// (nil children are simply skipped) so it doubles as the load engine's
// rollback mechanism.
func freeValue(cfg *Config, v *value.Value) {
	if v == nil {
		return
	}
	switch v.Kind {
	case schema.Mapping:
		for _, fv := range v.Fields {
			freeValue(cfg, fv)
		}
	case schema.Sequence, schema.SequenceFixed:
		for _, e := range v.Seq {
			freeValue(cfg, e)
		}
	}
	cfg.free(v.Alloc)
	v.Alloc = nil
}
