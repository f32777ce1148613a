package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/yamlerr"
)

func TestCheckNilSchema(t *testing.T) {
	err := schema.Check(nil)
	require.NotNil(t, err)
	require.Equal(t, yamlerr.NullSchema, err.Kind)
}

func TestCheckIntDataSize(t *testing.T) {
	err := schema.Check(&schema.Schema{Kind: schema.Int, DataSize: 3})
	require.NotNil(t, err)
	require.Equal(t, yamlerr.InvalidDataSize, err.Kind)
}

func TestCheckMinMax(t *testing.T) {
	lo, hi := int64(10), int64(1)
	err := schema.Check(&schema.Schema{Kind: schema.Int, DataSize: 4, Min: &lo, Max: &hi})
	require.NotNil(t, err)
	require.Equal(t, yamlerr.BadMinMaxSchema, err.Kind)
}

func TestCheckSequenceFixedCount(t *testing.T) {
	err := schema.Check(&schema.Schema{
		Kind: schema.SequenceFixed, CountMin: 2, CountMax: 3,
		Entry: &schema.Schema{Kind: schema.Int, DataSize: 4},
	})
	require.NotNil(t, err)
	require.Equal(t, yamlerr.SequenceFixedCount, err.Kind)
}

func TestCheckBitfieldOverlap(t *testing.T) {
	err := schema.Check(&schema.Schema{
		Kind: schema.Bitfield, DataSize: 8,
		Bits: []schema.BitSlice{
			{Name: "a", Offset: 0, Bits: 4},
			{Name: "b", Offset: 2, Bits: 4},
		},
	})
	require.NotNil(t, err)
	require.Equal(t, yamlerr.BadBitfield, err.Kind)
}

func TestCheckBitfieldOK(t *testing.T) {
	err := schema.Check(&schema.Schema{
		Kind: schema.Bitfield, DataSize: 8,
		Bits: []schema.BitSlice{
			{Name: "a", Offset: 0, Bits: 3},
			{Name: "b", Offset: 3, Bits: 7},
		},
	})
	require.Nil(t, err)
}

func TestCheckMappingDuplicateKey(t *testing.T) {
	leaf := &schema.Schema{Kind: schema.Int, DataSize: 4}
	err := schema.Check(&schema.Schema{
		Kind: schema.Mapping,
		Fields: []schema.Field{
			{Key: "x", Value: leaf},
			{Key: "x", Value: leaf},
		},
	})
	require.NotNil(t, err)
	require.Equal(t, yamlerr.BadTypeInSchema, err.Kind)
}

func TestCheckUnlimitedStringRequiresPointer(t *testing.T) {
	err := schema.Check(&schema.Schema{Kind: schema.String, LenMax: schema.Unlimited})
	require.NotNil(t, err)
	require.Equal(t, yamlerr.BadMinMaxSchema, err.Kind)

	err = schema.Check(&schema.Schema{Kind: schema.String, LenMax: schema.Unlimited, Flags: schema.Pointer})
	require.Nil(t, err)
}

func TestCheckIdempotent(t *testing.T) {
	s := &schema.Schema{Kind: schema.Int, DataSize: 4}
	require.Nil(t, schema.Check(s))
	require.Nil(t, schema.Check(s))
}

func TestEffectiveCaseInsensitive(t *testing.T) {
	require.True(t, schema.Flags(0).EffectiveCaseInsensitive(true))
	require.False(t, schema.Flags(0).EffectiveCaseInsensitive(false))
	require.False(t, schema.CaseSensitive.EffectiveCaseInsensitive(true))
	require.True(t, schema.CaseInsensitive.EffectiveCaseInsensitive(false))
	require.False(t, schema.Strict.EffectiveCaseInsensitive(true))
}

func TestMutuallyExclusivePointerFlags(t *testing.T) {
	err := schema.Check(&schema.Schema{
		Kind: schema.Int, DataSize: 4,
		Flags: schema.Pointer | schema.PointerNull,
	})
	require.NotNil(t, err)
	require.Equal(t, yamlerr.BadTypeInSchema, err.Kind)
}
