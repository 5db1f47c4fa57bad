package types

// Array is an immutable column of one DataType with a length and a null
// bitmap. It is produced by a Builder's Finish and never mutated afterward.
type Array interface {
	DataType() DataType
	Len() int
	IsNull(i int) bool
	ScalarValue(i int) Scalar
}

// NullArray is a column of all-null values; it carries no payload beyond
// its length.
type NullArray struct {
	length int
}

func (a *NullArray) DataType() DataType      { return NullType }
func (a *NullArray) Len() int                { return a.length }
func (a *NullArray) IsNull(i int) bool       { return true }
func (a *NullArray) ScalarValue(i int) Scalar { return NullScalar(Null) }

// IntArray backs Int8, Int16, Int32 and Int64 columns; Kind distinguishes
// the logical width (the engine never needs to truncate on read since
// upstream builders only ever append values that fit the declared width).
type IntArray struct {
	kind   Kind
	values []int64
	valid  nullBitmap
}

func (a *IntArray) DataType() DataType { return DataType{Kind: a.kind} }
func (a *IntArray) Len() int           { return len(a.values) }
func (a *IntArray) IsNull(i int) bool  { return a.valid.isNull(i) }
func (a *IntArray) ScalarValue(i int) Scalar {
	if a.valid.isNull(i) {
		return NullScalar(a.kind)
	}
	return IntScalar(a.kind, a.values[i])
}

// Value returns the raw value at i, regardless of nullity.
func (a *IntArray) Value(i int) int64 { return a.values[i] }

// FloatArray backs Float32 and Float64 columns.
type FloatArray struct {
	kind   Kind
	values []float64
	valid  nullBitmap
}

func (a *FloatArray) DataType() DataType { return DataType{Kind: a.kind} }
func (a *FloatArray) Len() int           { return len(a.values) }
func (a *FloatArray) IsNull(i int) bool  { return a.valid.isNull(i) }
func (a *FloatArray) ScalarValue(i int) Scalar {
	if a.valid.isNull(i) {
		return NullScalar(a.kind)
	}
	return FloatScalar(a.kind, a.values[i])
}

func (a *FloatArray) Value(i int) float64 { return a.values[i] }

// BooleanArray backs Boolean columns.
type BooleanArray struct {
	values []bool
	valid  nullBitmap
}

func (a *BooleanArray) DataType() DataType { return BooleanType }
func (a *BooleanArray) Len() int           { return len(a.values) }
func (a *BooleanArray) IsNull(i int) bool  { return a.valid.isNull(i) }
func (a *BooleanArray) ScalarValue(i int) Scalar {
	if a.valid.isNull(i) {
		return NullScalar(Boolean)
	}
	return BooleanScalar(a.values[i])
}

func (a *BooleanArray) Value(i int) bool { return a.values[i] }

// TimestampArray backs a Timestamp(unit) column.
type TimestampArray struct {
	unit   TimeUnit
	values []int64
	valid  nullBitmap
}

func (a *TimestampArray) DataType() DataType { return TimestampType(a.unit) }
func (a *TimestampArray) Len() int           { return len(a.values) }
func (a *TimestampArray) IsNull(i int) bool  { return a.valid.isNull(i) }
func (a *TimestampArray) ScalarValue(i int) Scalar {
	if a.valid.isNull(i) {
		return NullScalar(Timestamp)
	}
	return TimestampScalar(a.values[i])
}

func (a *TimestampArray) Value(i int) int64 { return a.values[i] }

// StringArray backs a String column: an offsets vector into a shared byte
// buffer, mirroring Array's documented layout for variable-width data.
type StringArray struct {
	offsets []int // len(values)+1 entries
	data    []byte
	valid   nullBitmap
}

func (a *StringArray) DataType() DataType { return StringType }
func (a *StringArray) Len() int           { return len(a.offsets) - 1 }
func (a *StringArray) IsNull(i int) bool  { return a.valid.isNull(i) }
func (a *StringArray) ScalarValue(i int) Scalar {
	if a.valid.isNull(i) {
		return NullScalar(String)
	}
	return StringScalar(a.Value(i))
}

func (a *StringArray) Value(i int) string {
	return string(a.data[a.offsets[i]:a.offsets[i+1]])
}
