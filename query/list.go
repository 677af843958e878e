package q

import (
	"github.com/teamkeel/dataservice/runtime/common"
)

// OrderBy is one segment of an ordering, by declared property name.
type OrderBy struct {
	Field     string
	Ascending bool
}

// AppendOrderBy adds a sort key after any already applied.
func (query *QueryBuilder) AppendOrderBy(field string, ascending bool) *QueryBuilder {
	query.orderBy = append(query.orderBy, OrderBy{Field: field, Ascending: ascending})
	return query
}

// ApplyOrdering applies each segment in turn, so the first segment is the
// primary sort key.
func (query *QueryBuilder) ApplyOrdering(orderBy []OrderBy) error {
	for _, o := range orderBy {
		if o.Field == "" {
			return common.NewInvalidArgumentError("order by field cannot be empty")
		}
		if query.Model.FindProperty(o.Field) == nil && o.Field != query.Model.Key {
			return common.NewInvalidArgumentError("cannot order '%s' by unknown property '%s'", query.Model.Name, o.Field)
		}

		query.AppendOrderBy(o.Field, o.Ascending)
	}

	return nil
}
