package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/yamlkit/schema"
	"github.com/willabides/yamlkit/value"
)

func TestCloneIsDeepAndIndependent(t *testing.T) {
	orig := &value.Value{
		Kind: schema.Mapping,
		Fields: map[string]*value.Value{
			"a": {Kind: schema.String, S: "x"},
		},
		Seq: []*value.Value{{Kind: schema.Int, I: 1}},
	}
	clone := orig.Clone()
	clone.Fields["a"].S = "y"
	clone.Seq[0].I = 2

	require.Equal(t, "x", orig.Fields["a"].S)
	require.Equal(t, int64(1), orig.Seq[0].I)
	require.True(t, orig.Equal(orig.Clone()))
	require.False(t, orig.Equal(clone))
}

func TestEqualNullHandling(t *testing.T) {
	a := value.NewNull(schema.String)
	b := value.NewNull(schema.String)
	require.True(t, a.Equal(b))

	c := &value.Value{Kind: schema.String, S: "hi"}
	require.False(t, a.Equal(c))
}

func TestNativeConversion(t *testing.T) {
	v := &value.Value{
		Kind: schema.Mapping,
		Fields: map[string]*value.Value{
			"n": {Kind: schema.Int, I: 5},
			"s": {Kind: schema.String, S: "hi"},
		},
	}
	native, ok := v.Native().(map[string]any)
	require.True(t, ok)
	require.Equal(t, int64(5), native["n"])
	require.Equal(t, "hi", native["s"])
}
