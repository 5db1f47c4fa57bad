package planner

import (
	"strings"

	"github.com/streamql/streamql/errkind"
	"github.com/streamql/streamql/types"
)

// scope is the current relational scope a Column{qualifier?, name} resolves
// against: one schema, optionally reachable under an alias.
type scope struct {
	schema *types.Schema
	alias  string // "" if the source has no alias
}

// resolve finds the single field matching qualifier/name, case-sensitively
// (SQL identifiers here are not folded), failing with NameError on zero or
// ambiguous matches.
func (s scope) resolve(qualifier *string, name string) (int, types.DataType, error) {
	if qualifier != nil && s.alias != "" && !strings.EqualFold(*qualifier, s.alias) {
		return 0, types.DataType{}, errkind.NameError.New(qualifiedName(qualifier, name))
	}
	idx := s.schema.IndexOf(name)
	if idx < 0 {
		return 0, types.DataType{}, errkind.NameError.New(qualifiedName(qualifier, name))
	}
	return idx, s.schema.Field(idx).DataType, nil
}

func qualifiedName(qualifier *string, name string) string {
	if qualifier == nil {
		return name
	}
	return *qualifier + "." + name
}
