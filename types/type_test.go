package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataTypeEqualIgnoresUnitForNonTimestampKinds(t *testing.T) {
	a := DataType{Kind: Float64, Unit: Millisecond}
	b := DataType{Kind: Float64, Unit: Second}
	assert.True(t, a.Equal(b))
}

func TestDataTypeEqualComparesUnitForTimestamp(t *testing.T) {
	a := TimestampType(Millisecond)
	b := TimestampType(Second)
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(TimestampType(Millisecond)))
}

func TestDataTypeStringIncludesUnitOnlyForTimestamp(t *testing.T) {
	assert.Equal(t, "Float64", Float64Type.String())
	assert.Equal(t, "Timestamp(ms)", TimestampType(Millisecond).String())
}

func TestTimestampBuilderRoundTrip(t *testing.T) {
	b := NewTimestampBuilder(Millisecond)
	b.Append(100)
	b.AppendNull()
	b.Append(200)
	arr := b.Finish()

	assert.Equal(t, 3, arr.Len())
	assert.False(t, arr.IsNull(0))
	assert.True(t, arr.IsNull(1))
	assert.Equal(t, TimestampScalar(100), arr.ScalarValue(0))
	assert.Equal(t, TimestampType(Millisecond), arr.DataType())
}
