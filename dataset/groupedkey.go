package dataset

import (
	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/streamql/streamql/types"
)

// GroupedKey is an ordered tuple of scalars, one per GROUP BY expression.
// Hash and equality are structural; a key with a Null element is still a
// valid grouping key (Null equals Null for grouping, per types.Scalar.Equal).
type GroupedKey struct {
	Values []types.Scalar

	canon []byte // lazily computed canonical encoding
	hash  uint64
	ready bool
}

// NewGroupedKey builds a key from values, in GROUP BY expression order.
func NewGroupedKey(values []types.Scalar) GroupedKey {
	return GroupedKey{Values: values}
}

// scalarWire is the canonical, array-encoded wire form of a Scalar: only
// the discriminant and the one field it carries, so two structurally equal
// scalars always encode identically regardless of which other fields
// happen to be zeroed in memory.
type scalarWire struct {
	_msgpack struct{} `msgpack:",as_array"`
	Kind     types.Kind
	Null     bool
	Value    any
}

func toWire(s types.Scalar) scalarWire {
	w := scalarWire{Kind: s.Kind, Null: s.Null}
	if s.Null {
		return w
	}
	switch s.Kind {
	case types.Int8, types.Int16, types.Int32, types.Int64:
		w.Value = s.Int
	case types.Float32, types.Float64:
		w.Value = s.Float
	case types.Boolean:
		w.Value = s.Boolean
	case types.Timestamp:
		w.Value = s.Timestamp
	case types.String:
		w.Value = s.Str
	}
	return w
}

// Canonical returns the key's canonical msgpack encoding, computing and
// caching it on first use.
func (k *GroupedKey) Canonical() []byte {
	if k.ready {
		return k.canon
	}
	wire := make([]scalarWire, len(k.Values))
	for i, v := range k.Values {
		wire[i] = toWire(v)
	}
	b, err := msgpack.Marshal(wire)
	if err != nil {
		// Every scalarWire field is a primitive msgpack type; marshaling
		// cannot fail.
		panic(err)
	}
	k.canon = b
	k.hash = xxhash.Sum64(b)
	k.ready = true
	return k.canon
}

// Hash returns the xxhash of the key's canonical encoding, computing it if
// necessary.
func (k *GroupedKey) Hash() uint64 {
	if !k.ready {
		k.Canonical()
	}
	return k.hash
}

// Equal reports whether k and other carry the same ordered scalar values.
func (k GroupedKey) Equal(other GroupedKey) bool {
	if len(k.Values) != len(other.Values) {
		return false
	}
	for i := range k.Values {
		if !k.Values[i].Equal(other.Values[i]) {
			return false
		}
	}
	return true
}
