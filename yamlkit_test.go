package yamlkit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/yamlkit"
	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/value"
	"github.com/willabides/yamlkit/yamlerr"
)

// countingAllocator wraps DefaultMemFunc and tracks net alloc/free calls,
// used to exercise the net-allocator-balance-zero properties.
type countingAllocator struct {
	balance int
}

func (c *countingAllocator) memFn(ctx any, old []byte, newSize int) ([]byte, error) {
	if newSize == 0 {
		if old != nil {
			c.balance--
		}
		return nil, nil
	}
	if old == nil {
		c.balance++
	}
	return yamlkit.DefaultMemFunc(ctx, old, newSize)
}

func newConfig(c *countingAllocator) *yamlkit.Config {
	return &yamlkit.Config{MemFn: c.memFn}
}

func TestScenarioS1PositiveInt(t *testing.T) {
	sch := &schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "test_int", Value: &schema.Schema{Kind: schema.Int, DataSize: 4}},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)
	root, err := yamlkit.LoadBytes(cfg, sch, []byte("test_int: 90\n"))
	require.NoError(t, err)
	require.Equal(t, int64(90), root.Fields["test_int"].I)

	yamlkit.Free(cfg, root)
	require.Zero(t, c.balance)
}

func TestScenarioS2Flags(t *testing.T) {
	sch := &schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "test_flags", Value: &schema.Schema{
				Kind: schema.Flags, DataSize: 4,
				EnumTable: []schema.EnumValue{
					{Name: "first", Value: 1}, {Name: "second", Value: 2}, {Name: "third", Value: 4},
					{Name: "fourth", Value: 8}, {Name: "fifth", Value: 16}, {Name: "sixth", Value: 32},
				},
			}},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)
	root, err := yamlkit.LoadBytes(cfg, sch, []byte("test_flags:\n  - second\n  - fifth\n  - 1024\n"))
	require.NoError(t, err)
	require.Equal(t, uint64(2|16|1024), root.Fields["test_flags"].U)
	yamlkit.Free(cfg, root)
	require.Zero(t, c.balance)
}

func TestScenarioS3Bitfield(t *testing.T) {
	sch := &schema.Schema{
		Kind: schema.Bitfield, DataSize: 8,
		Bits: []schema.BitSlice{
			{Name: "a", Offset: 0, Bits: 3},
			{Name: "b", Offset: 3, Bits: 7},
			{Name: "c", Offset: 10, Bits: 32},
			{Name: "d", Offset: 42, Bits: 8},
			{Name: "e", Offset: 50, Bits: 14},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)
	root, err := yamlkit.LoadBytes(cfg, sch, []byte("a: 7\nb: 0x7f\nc: 0xffffffff\nd: 0xff\ne: 0x3fff\n"))
	require.NoError(t, err)
	require.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), uint64(root.I))
	yamlkit.Free(cfg, root)
	require.Zero(t, c.balance)
}

func TestScenarioS5OptionalDefault(t *testing.T) {
	missing := uint64(0x55)
	sch := &schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "before", Value: &schema.Schema{Kind: schema.Uint, DataSize: 4}},
			{
				Key:        "test",
				Value:      &schema.Schema{Kind: schema.Uint, DataSize: 4, Flags: schema.Optional},
				HasMissing: true,
				Missing:    missing,
			},
			{Key: "after", Value: &schema.Schema{Kind: schema.Uint, DataSize: 4}},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)
	root, err := yamlkit.LoadBytes(cfg, sch, []byte("before: 1\nafter: 0xff\n"))
	require.NoError(t, err)
	require.Equal(t, uint64(0x55), root.Fields["test"].U)
	yamlkit.Free(cfg, root)
	require.Zero(t, c.balance)
}

func TestScenarioS6UnknownKey(t *testing.T) {
	sch := &schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "key", Value: &schema.Schema{Kind: schema.Int, DataSize: 4}},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)
	_, err := yamlkit.LoadBytes(cfg, sch, []byte("wrong_key: 2\n"))
	require.Error(t, err)
	require.Zero(t, c.balance) // rollback leaves no net allocations

	cfg.Flags = yamlkit.IgnoreUnknownKeys
	sch.Fields[0].Value.Flags = schema.Optional
	sch.Fields[0].HasMissing = true
	sch.Fields[0].MissingIsZero = true
	root, err := yamlkit.LoadBytes(cfg, sch, []byte("wrong_key: 2\n"))
	require.NoError(t, err)
	yamlkit.Free(cfg, root)
	require.Zero(t, c.balance)
}

func TestScenarioS7AnchorLastWins(t *testing.T) {
	sch := &schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "a", Value: &schema.Schema{Kind: schema.String, LenMax: 64}},
			{Key: "b", Value: &schema.Schema{Kind: schema.String, LenMax: 64}},
			{Key: "c", Value: &schema.Schema{Kind: schema.String, LenMax: 64}},
			{Key: "d", Value: &schema.Schema{Kind: schema.String, LenMax: 64}},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)
	root, err := yamlkit.LoadBytes(cfg, sch, []byte("a: &x Hello Me!\nb: *x\nc: &x Hello World!\nd: *x\n"))
	require.NoError(t, err)
	require.Equal(t, "Hello Me!", root.Fields["a"].S)
	require.Equal(t, "Hello Me!", root.Fields["b"].S)
	require.Equal(t, "Hello World!", root.Fields["c"].S)
	require.Equal(t, "Hello World!", root.Fields["d"].S)
	yamlkit.Free(cfg, root)
	require.Zero(t, c.balance)
}

func TestRoundTrip(t *testing.T) {
	sch := &schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "name", Value: &schema.Schema{Kind: schema.String, LenMax: 64}},
			{Key: "age", Value: &schema.Schema{Kind: schema.Uint, DataSize: 1}},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)
	root, err := yamlkit.LoadBytes(cfg, sch, []byte("name: Ada\nage: 36\n"))
	require.NoError(t, err)

	out, err := yamlkit.SaveBytes(cfg, sch, root)
	require.NoError(t, err)

	root2, err := yamlkit.LoadBytes(cfg, sch, out)
	require.NoError(t, err)
	require.True(t, root.Equal(root2))

	yamlkit.Free(cfg, root)
	yamlkit.Free(cfg, root2)
	require.Zero(t, c.balance)
}

func TestRequiredFieldMissing(t *testing.T) {
	sch := &schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "required", Value: &schema.Schema{Kind: schema.Int, DataSize: 4}},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)
	_, err := yamlkit.LoadBytes(cfg, sch, []byte("{}\n"))
	require.Error(t, err)
	require.Zero(t, c.balance)
}

func TestCopyProducesIndependentGraph(t *testing.T) {
	sch := &schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "n", Value: &schema.Schema{Kind: schema.Int, DataSize: 4}},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)
	root, err := yamlkit.LoadBytes(cfg, sch, []byte("n: 1\n"))
	require.NoError(t, err)

	clone, err := yamlkit.Copy(cfg, sch, root)
	require.NoError(t, err)
	require.True(t, root.Equal(clone))

	yamlkit.Free(cfg, root)
	yamlkit.Free(cfg, clone)
	require.Zero(t, c.balance)
}

func TestSaveRejectsNullInNonNullableSlot(t *testing.T) {
	sch := &schema.Schema{Kind: schema.Int, DataSize: 4, Flags: schema.Pointer}
	root := value.NewNull(schema.Int)

	c := &countingAllocator{}
	cfg := newConfig(c)
	_, err := yamlkit.SaveBytes(cfg, sch, root)
	require.Error(t, err)
	yerr, ok := err.(*yamlerr.Error)
	require.True(t, ok)
	require.Equal(t, yamlerr.DataTargetNonNullPtrReq, yerr.Kind)
}

func TestBinaryLengthBounds(t *testing.T) {
	sch := &schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "blob", Value: &schema.Schema{Kind: schema.Binary, LenMin: 2, LenMax: 4}},
		},
	}
	c := &countingAllocator{}
	cfg := newConfig(c)

	root, err := yamlkit.LoadBytes(cfg, sch, []byte("blob: Q2F0cw==\n")) // decodes to "Cats", 4 bytes, ok
	require.NoError(t, err)
	yamlkit.Free(cfg, root)
	require.Zero(t, c.balance)

	_, err = yamlkit.LoadBytes(cfg, sch, []byte("blob: QQ==\n")) // decodes to "A", 1 byte, below min
	require.Error(t, err)
	require.Zero(t, c.balance)
}
