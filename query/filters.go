package q

import (
	"github.com/teamkeel/dataservice/runtime/common"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// KeyDescriptor maps key property names to literal values.
type KeyDescriptor map[string]any

// ApplyKeyFilters adds an equality clause for every field of the key
// descriptor. Uniqueness of the resulting lookup is not enforced here.
func (query *QueryBuilder) ApplyKeyFilters(key KeyDescriptor) error {
	return query.applyEqualityFilters(key)
}

// ApplyWhere adds an equality clause for every entry of a raw field/value map.
func (query *QueryBuilder) ApplyWhere(where map[string]any) error {
	return query.applyEqualityFilters(where)
}

func (query *QueryBuilder) applyEqualityFilters(values map[string]any) error {
	// Sorted so the generated statement is deterministic.
	fields := maps.Keys(values)
	slices.Sort(fields)

	for _, field := range fields {
		if field == "" {
			return common.NewInvalidArgumentError("filter field name cannot be empty")
		}
		query.WhereEquals(field, values[field])
	}

	return nil
}
