package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/yamlkit/value"
)

func TestTruncateAndSignExtend(t *testing.T) {
	require.Equal(t, uint64(0xff), value.TruncateUint(0xffff, 1))
	require.Equal(t, int64(-1), value.SignExtend(0xff, 1))
	require.Equal(t, int64(127), value.SignExtend(0x7f, 1))
}

func TestFits(t *testing.T) {
	require.True(t, value.FitsUint(255, 1))
	require.False(t, value.FitsUint(256, 1))
	require.True(t, value.FitsInt(127, 1))
	require.False(t, value.FitsInt(128, 1))
	require.True(t, value.FitsInt(-128, 1))
	require.False(t, value.FitsInt(-129, 1))
}

func TestExtractAndPackBits(t *testing.T) {
	var acc uint64
	acc = value.PackBits(acc, 0, 4, 0x7)
	acc = value.PackBits(acc, 4, 4, 0x9)
	require.Equal(t, uint64(0x97), acc)
	require.Equal(t, uint64(0x7), value.ExtractBits(acc, 0, 4))
	require.Equal(t, uint64(0x9), value.ExtractBits(acc, 4, 4))
}

func TestSetBitsOverwritesRatherThanUnions(t *testing.T) {
	var acc uint64
	acc = value.SetBits(acc, 0, 4, 0xf)
	acc = value.SetBits(acc, 0, 4, 0x1) // last value wins, not OR
	require.Equal(t, uint64(0x1), acc)
}

func TestBitfieldPackingScenarioS3(t *testing.T) {
	var acc uint64
	acc = value.SetBits(acc, 0, 3, 7)
	acc = value.SetBits(acc, 3, 7, 0x7f)
	acc = value.SetBits(acc, 10, 32, 0xffffffff)
	acc = value.SetBits(acc, 42, 8, 0xff)
	acc = value.SetBits(acc, 50, 14, 0x3fff)
	require.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), acc)
}
