package yamlerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/yamlkit/yamlerr"
)

func TestErrorString(t *testing.T) {
	err := yamlerr.New(yamlerr.InvalidValue, "$.age", 3, 5, "%q is not a valid integer", "nope")
	require.Contains(t, err.Error(), "$.age")
	require.Contains(t, err.Error(), "nope")
	require.Equal(t, yamlerr.InvalidValue, err.Kind)
}

func TestErrorIs(t *testing.T) {
	err := yamlerr.New(yamlerr.InvalidKey, "$.x", 0, 0, "unknown key")
	require.True(t, errors.Is(err, yamlerr.New(yamlerr.InvalidKey, "", 0, 0, "")))
	require.False(t, errors.Is(err, yamlerr.New(yamlerr.InvalidValue, "", 0, 0, "")))
}

func TestStrerrorStable(t *testing.T) {
	for _, k := range []yamlerr.Kind{
		yamlerr.OK, yamlerr.NullData, yamlerr.NullConfig, yamlerr.NullMemFn, yamlerr.NullSchema,
		yamlerr.BadTypeInSchema, yamlerr.InvalidDataSize, yamlerr.BadMinMaxSchema,
		yamlerr.SequenceFixedCount, yamlerr.BadBitValInSchema, yamlerr.BadBitfield,
		yamlerr.InvalidValue, yamlerr.InvalidBase64, yamlerr.StringLengthMin, yamlerr.StringLengthMax,
		yamlerr.MappingFieldMissing, yamlerr.InvalidKey, yamlerr.SequenceEntriesMin,
		yamlerr.SequenceEntriesMax, yamlerr.UnexpectedEvent, yamlerr.InvalidAlias,
		yamlerr.AllocFailed, yamlerr.Parser, yamlerr.DataValidErr, yamlerr.DataTargetNonNullPtrReq,
	} {
		require.NotEmpty(t, yamlerr.Strerror(k))
	}
}
