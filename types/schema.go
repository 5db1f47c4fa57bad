package types

import "github.com/streamql/streamql/errkind"

// Schema is an ordered, shared-immutable sequence of fields. Once
// constructed it is never mutated; every operator downstream of the
// constructor holds the same instance.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a Schema from fields, failing with InvalidSchema if any
// two fields share a name.
func NewSchema(fields []Field) (*Schema, error) {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := index[f.Name]; dup {
			return nil, errkind.InvalidSchema.New(f.Name)
		}
		index[f.Name] = i
	}
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return &Schema{fields: cp, index: index}, nil
}

// Fields returns the schema's fields in order. The caller must not mutate
// the returned slice.
func (s *Schema) Fields() []Field {
	return s.fields
}

func (s *Schema) Len() int {
	return len(s.fields)
}

func (s *Schema) Field(i int) Field {
	return s.fields[i]
}

// IndexOf returns the position of name, or -1 if not present.
func (s *Schema) IndexOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}
