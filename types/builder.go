package types

// NewBuilder returns the Builder appropriate for dataType, dispatching on
// Kind the way the original's BuilderFactory picks a PrimitiveBuilder<T>.
func NewBuilder(dataType DataType) any {
	switch dataType.Kind {
	case Int8, Int16, Int32, Int64:
		return NewIntBuilder(dataType.Kind)
	case Float32, Float64:
		return NewFloatBuilder(dataType.Kind)
	case Boolean:
		return NewBooleanBuilder()
	case Timestamp:
		return NewTimestampBuilder(dataType.Unit)
	case String:
		return NewStringBuilder()
	default:
		return NewNullBuilder()
	}
}

// NullBuilder accumulates a run of null values with no payload.
type NullBuilder struct {
	length int
}

func NewNullBuilder() *NullBuilder { return &NullBuilder{} }

func (b *NullBuilder) AppendNull() { b.length++ }

func (b *NullBuilder) Finish() *NullArray {
	a := &NullArray{length: b.length}
	b.length = 0
	return a
}

// IntBuilder accumulates Int8/Int16/Int32/Int64 values.
type IntBuilder struct {
	kind   Kind
	values []int64
	valid  nullBitmap
}

func NewIntBuilder(kind Kind) *IntBuilder {
	return &IntBuilder{kind: kind, valid: newNullBitmap(0)}
}

func (b *IntBuilder) Append(v int64) {
	b.values = append(b.values, v)
	b.valid.append(false)
}

func (b *IntBuilder) AppendNull() {
	b.values = append(b.values, 0)
	b.valid.append(true)
}

func (b *IntBuilder) AppendOpt(v *int64) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

func (b *IntBuilder) Finish() *IntArray {
	a := &IntArray{kind: b.kind, values: b.values, valid: b.valid}
	b.values = nil
	b.valid = newNullBitmap(0)
	return a
}

// FloatBuilder accumulates Float32/Float64 values.
type FloatBuilder struct {
	kind   Kind
	values []float64
	valid  nullBitmap
}

func NewFloatBuilder(kind Kind) *FloatBuilder {
	return &FloatBuilder{kind: kind, valid: newNullBitmap(0)}
}

func (b *FloatBuilder) Append(v float64) {
	b.values = append(b.values, v)
	b.valid.append(false)
}

func (b *FloatBuilder) AppendNull() {
	b.values = append(b.values, 0)
	b.valid.append(true)
}

func (b *FloatBuilder) AppendOpt(v *float64) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

func (b *FloatBuilder) Finish() *FloatArray {
	a := &FloatArray{kind: b.kind, values: b.values, valid: b.valid}
	b.values = nil
	b.valid = newNullBitmap(0)
	return a
}

// BooleanBuilder accumulates Boolean values.
type BooleanBuilder struct {
	values []bool
	valid  nullBitmap
}

func NewBooleanBuilder() *BooleanBuilder {
	return &BooleanBuilder{valid: newNullBitmap(0)}
}

func (b *BooleanBuilder) Append(v bool) {
	b.values = append(b.values, v)
	b.valid.append(false)
}

func (b *BooleanBuilder) AppendNull() {
	b.values = append(b.values, false)
	b.valid.append(true)
}

func (b *BooleanBuilder) AppendOpt(v *bool) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

func (b *BooleanBuilder) Finish() *BooleanArray {
	a := &BooleanArray{values: b.values, valid: b.valid}
	b.values = nil
	b.valid = newNullBitmap(0)
	return a
}

// TimestampBuilder accumulates Timestamp(unit) values.
type TimestampBuilder struct {
	unit   TimeUnit
	values []int64
	valid  nullBitmap
}

func NewTimestampBuilder(unit TimeUnit) *TimestampBuilder {
	return &TimestampBuilder{unit: unit, valid: newNullBitmap(0)}
}

func (b *TimestampBuilder) Append(v int64) {
	b.values = append(b.values, v)
	b.valid.append(false)
}

func (b *TimestampBuilder) AppendNull() {
	b.values = append(b.values, 0)
	b.valid.append(true)
}

func (b *TimestampBuilder) AppendOpt(v *int64) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

func (b *TimestampBuilder) Finish() *TimestampArray {
	a := &TimestampArray{unit: b.unit, values: b.values, valid: b.valid}
	b.values = nil
	b.valid = newNullBitmap(0)
	return a
}

// StringBuilder accumulates String values into an offsets vector over a
// shared byte buffer.
type StringBuilder struct {
	offsets []int
	data    []byte
	valid   nullBitmap
}

func NewStringBuilder() *StringBuilder {
	return &StringBuilder{offsets: []int{0}, valid: newNullBitmap(0)}
}

func (b *StringBuilder) Append(v string) {
	b.data = append(b.data, v...)
	b.offsets = append(b.offsets, len(b.data))
	b.valid.append(false)
}

func (b *StringBuilder) AppendNull() {
	b.offsets = append(b.offsets, len(b.data))
	b.valid.append(true)
}

func (b *StringBuilder) AppendOpt(v *string) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

func (b *StringBuilder) Finish() *StringArray {
	a := &StringArray{offsets: b.offsets, data: b.data, valid: b.valid}
	b.offsets = []int{0}
	b.data = nil
	b.valid = newNullBitmap(0)
	return a
}
