package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntBuilderRoundTrip(t *testing.T) {
	b := NewIntBuilder(Int64)
	seq := []int64{1, 2, 3, -7, 0}
	for _, v := range seq {
		b.Append(v)
	}
	arr := b.Finish()
	require.Equal(t, len(seq), arr.Len())
	for i, v := range seq {
		require.False(t, arr.IsNull(i))
		require.Equal(t, IntScalar(Int64, v), arr.ScalarValue(i))
	}
}

func TestFloatBuilderNulls(t *testing.T) {
	b := NewFloatBuilder(Float64)
	b.Append(1.5)
	b.AppendNull()
	b.Append(2.5)
	arr := b.Finish()

	require.Equal(t, 3, arr.Len())
	require.False(t, arr.IsNull(0))
	require.True(t, arr.IsNull(1))
	require.False(t, arr.IsNull(2))
	require.Equal(t, NullScalar(Float64), arr.ScalarValue(1))
	require.Equal(t, FloatScalar(Float64, 2.5), arr.ScalarValue(2))
}

func TestStringBuilderRoundTrip(t *testing.T) {
	b := NewStringBuilder()
	seq := []string{"alpha", "", "beta gamma"}
	for _, s := range seq {
		b.Append(s)
	}
	b.AppendNull()
	arr := b.Finish()

	require.Equal(t, 4, arr.Len())
	for i, s := range seq {
		require.False(t, arr.IsNull(i))
		require.Equal(t, s, arr.Value(i))
	}
	require.True(t, arr.IsNull(3))
	require.Equal(t, NullScalar(String), arr.ScalarValue(3))
}

func TestBooleanBuilderAppendOpt(t *testing.T) {
	b := NewBooleanBuilder()
	tru, fls := true, false
	b.AppendOpt(&tru)
	b.AppendOpt(nil)
	b.AppendOpt(&fls)
	arr := b.Finish()

	require.Equal(t, BooleanScalar(true), arr.ScalarValue(0))
	require.Equal(t, NullScalar(Boolean), arr.ScalarValue(1))
	require.Equal(t, BooleanScalar(false), arr.ScalarValue(2))
}

func TestNullArray(t *testing.T) {
	b := NewNullBuilder()
	b.AppendNull()
	b.AppendNull()
	arr := b.Finish()

	require.Equal(t, 2, arr.Len())
	require.True(t, arr.IsNull(0))
	require.Equal(t, NullScalar(Null), arr.ScalarValue(0))
}

func TestSchemaRejectsDuplicateNames(t *testing.T) {
	_, err := NewSchema([]Field{
		NewField("a", Int64Type),
		NewField("a", StringType),
	})
	require.Error(t, err)
}

func TestSchemaIndexOf(t *testing.T) {
	s, err := NewSchema([]Field{
		NewField("k", StringType),
		NewField("v", Int64Type),
	})
	require.NoError(t, err)
	require.Equal(t, 0, s.IndexOf("k"))
	require.Equal(t, 1, s.IndexOf("v"))
	require.Equal(t, -1, s.IndexOf("missing"))
}
