package actions

import (
	q "github.com/teamkeel/dataservice/query"
)

// GetInput describes a single resource lookup. Either ResourceSet or
// Source must be set.
type GetInput struct {
	ResourceSet string
	Source      *EntitySource

	Key    q.KeyDescriptor
	Where  map[string]any
	Expand []string
}

// Get returns the first resource matching the input, or nil if there is none.
// Ordering and paging do not apply to single resource lookups.
func Get(scope *Scope, input GetInput) (*q.Entity, error) {
	statement, err := GenerateGetStatement(scope, input)
	if err != nil {
		return nil, err
	}

	return statement.First(scope.Context)
}

// GenerateGetStatement validates the input, authorises the read and returns
// a cursor constrained by the key and where filters.
func GenerateGetStatement(scope *Scope, input GetInput) (*q.QueryBuilder, error) {
	source, err := resolveSource(scope, input.ResourceSet, input.Source)
	if err != nil {
		return nil, err
	}

	eagerLoad, err := resolveEagerLoad(source, input.Expand)
	if err != nil {
		return nil, err
	}

	err = AuthoriseRead(scope, source.TypeName(), source.subject())
	if err != nil {
		return nil, err
	}

	cursor := source.Cursor(scope.Database)

	err = cursor.ApplyKeyFilters(input.Key)
	if err != nil {
		return nil, err
	}

	err = cursor.ApplyWhere(input.Where)
	if err != nil {
		return nil, err
	}

	return cursor.WithEagerLoad(eagerLoad), nil
}
