package q

import (
	"github.com/teamkeel/dataservice/runtime/common"
	"github.com/teamkeel/dataservice/schema"
	"gorm.io/gorm/clause"
)

// Navigate returns a cursor over the rows reachable from owner through the
// given navigation property.
func (query *QueryBuilder) Navigate(owner *Entity, nav *schema.NavigationProperty) (*QueryBuilder, error) {
	if nav == nil || nav.Target == nil {
		return nil, common.NewInvalidOperationError("navigation property is not linked to a resource type")
	}

	related := NewQuery(query.db, nav.Target)

	if nav.Many {
		key := owner.Values[query.Model.Key]
		related.WhereExpression(clause.Eq{
			Column: clause.Column{Table: nav.Target.Table, Name: nav.ForeignKey},
			Value:  normaliseValue(key),
		})
	} else {
		fk := owner.Values[nav.ForeignKey]
		related.WhereExpression(clause.Eq{
			Column: clause.Column{Table: nav.Target.Table, Name: nav.Target.Key},
			Value:  normaliseValue(fk),
		})
	}

	return related, nil
}
