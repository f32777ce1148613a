package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/value"
	"github.com/willabides/yamlkit/yamlerr"
)

func TestParseIntBasesAndSeparators(t *testing.T) {
	iv, err := value.ParseInt("$", "0x1_0", 2, nil, nil)
	require.Nil(t, err)
	require.Equal(t, int64(16), iv)

	iv, err = value.ParseInt("$", "0b1010", 1, nil, nil)
	require.Nil(t, err)
	require.Equal(t, int64(10), iv)

	iv, err = value.ParseInt("$", "-5", 1, nil, nil)
	require.Nil(t, err)
	require.Equal(t, int64(-5), iv)
}

func TestParseIntRangeBoundaries(t *testing.T) {
	min, max := int64(0), int64(100)
	_, err := value.ParseInt("$", "100", 4, &min, &max)
	require.Nil(t, err)
	_, err = value.ParseInt("$", "101", 4, &min, &max)
	require.NotNil(t, err)
	require.Equal(t, yamlerr.InvalidValue, err.Kind)
	_, err = value.ParseInt("$", "0", 4, &min, &max)
	require.Nil(t, err)
	_, err = value.ParseInt("$", "-1", 4, &min, &max)
	require.NotNil(t, err)
}

func TestParseUintRejectsNegative(t *testing.T) {
	_, err := value.ParseUint("$", "-1", 4, nil, nil)
	require.NotNil(t, err)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "YES", "y", "On", "enable", "enabled", "1"} {
		b, err := value.ParseBool("$", s)
		require.Nil(t, err, s)
		require.True(t, b, s)
	}
	for _, s := range []string{"false", "NO", "n", "Off", "disable", "disabled", "0"} {
		b, err := value.ParseBool("$", s)
		require.Nil(t, err, s)
		require.False(t, b, s)
	}
	_, err := value.ParseBool("$", "maybe")
	require.NotNil(t, err)
}

func TestParseFloatRejectsInfAndNaN(t *testing.T) {
	_, err := value.ParseFloat("$", "Inf", 8)
	require.NotNil(t, err)
	_, err = value.ParseFloat("$", "NaN", 8)
	require.NotNil(t, err)
	f, err := value.ParseFloat("$", "1e400", 8)
	require.NotNil(t, err)
	_ = f
}

func TestParseFloatAcceptsSubnormal(t *testing.T) {
	f, err := value.ParseFloat("$", "5e-320", 8)
	require.Nil(t, err)
	require.Greater(t, f, 0.0)
}

func TestParseEnumFallsBackToInteger(t *testing.T) {
	s := &schema.Schema{
		Kind: schema.Enum, DataSize: 4,
		EnumTable: []schema.EnumValue{{Name: "first", Value: 1}},
	}
	v, err := value.ParseEnum("$", "first", s, false)
	require.Nil(t, err)
	require.Equal(t, int64(1), v)

	v, err = value.ParseEnum("$", "42", s, false)
	require.Nil(t, err)
	require.Equal(t, int64(42), v)
}

func TestParseEnumStrictRejectsFallback(t *testing.T) {
	s := &schema.Schema{
		Kind: schema.Enum, DataSize: 4, Flags: schema.Strict,
		EnumTable: []schema.EnumValue{{Name: "first", Value: 1}},
	}
	_, err := value.ParseEnum("$", "42", s, false)
	require.NotNil(t, err)
}

func TestParseEnumCaseInsensitive(t *testing.T) {
	s := &schema.Schema{
		Kind: schema.Enum, DataSize: 4,
		EnumTable: []schema.EnumValue{{Name: "First", Value: 1}},
	}
	v, err := value.ParseEnum("$", "FIRST", s, true)
	require.Nil(t, err)
	require.Equal(t, int64(1), v)
	_, err = value.ParseEnum("$", "FIRST", s, false)
	require.NotNil(t, err)
}

func TestParseStringCodepointLength(t *testing.T) {
	_, err := value.ParseString("$", "hi", 3, 10)
	require.NotNil(t, err)
	require.Equal(t, yamlerr.StringLengthMin, err.Kind)

	_, err = value.ParseString("$", "too long", 0, 3)
	require.NotNil(t, err)
	require.Equal(t, yamlerr.StringLengthMax, err.Kind)

	s, err := value.ParseString("$", "héllo", 5, 5)
	require.Nil(t, err)
	require.Equal(t, "héllo", s)
}

func TestBase64ScenarioS4(t *testing.T) {
	require.Equal(t, "Q2F0cw==", value.EncodeBase64([]byte("Cats")))

	out, err := value.DecodeBase64Lenient("$", "8J+YuA==", 0, schema.Unlimited)
	require.Nil(t, err)
	require.Equal(t, []byte{0xF0, 0x9F, 0x98, 0xB8}, out)

	_, err = value.DecodeBase64Lenient("$", "C", 0, schema.Unlimited)
	require.NotNil(t, err)
	require.Equal(t, yamlerr.InvalidBase64, err.Kind)

	out, err = value.DecodeBase64Lenient("$", "Q2F0!", 0, schema.Unlimited)
	require.Nil(t, err)
	require.Equal(t, []byte("Cat"), out)
}

func TestBase64RejectsInternalPadding(t *testing.T) {
	_, err := value.DecodeBase64Lenient("$", "Q2=F0", 0, schema.Unlimited)
	require.NotNil(t, err)
	require.Equal(t, yamlerr.InvalidBase64, err.Kind)
}

func TestBase64LengthBounds(t *testing.T) {
	_, err := value.DecodeBase64Lenient("$", "Q2F0", 5, schema.Unlimited)
	require.NotNil(t, err)
	require.Equal(t, yamlerr.StringLengthMin, err.Kind)

	_, err = value.DecodeBase64Lenient("$", "Q2F0cw==", 0, 3)
	require.NotNil(t, err)
	require.Equal(t, yamlerr.StringLengthMax, err.Kind)
}

func TestEmitFlagsScenarioS2(t *testing.T) {
	s := &schema.Schema{
		Kind: schema.Flags, DataSize: 4,
		EnumTable: []schema.EnumValue{
			{Name: "first", Value: 1}, {Name: "second", Value: 2}, {Name: "third", Value: 4},
			{Name: "fourth", Value: 8}, {Name: "fifth", Value: 16}, {Name: "sixth", Value: 32},
		},
	}
	names := value.EmitFlags(s, 2|16|1024)
	require.Equal(t, []string{"second", "fifth", "1024"}, names)
}

func TestEmitBitfieldOmitsZeroSlices(t *testing.T) {
	s := &schema.Schema{
		Kind: schema.Bitfield, DataSize: 8,
		Bits: []schema.BitSlice{{Name: "a", Offset: 0, Bits: 4}, {Name: "b", Offset: 4, Bits: 4}},
	}
	slices := value.EmitBitfield(s, 0x5)
	require.Len(t, slices, 1)
	require.Equal(t, "a", slices[0].Name)
	require.Equal(t, uint64(5), slices[0].Value)
}
