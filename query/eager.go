package q

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/teamkeel/dataservice/runtime/common"
	"github.com/teamkeel/dataservice/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolveEagerLoadPaths translates caller-facing expansion paths such as
// "Customer_Person/Address_Address" into store-facing relation paths such
// as "Customer.Address".
func ResolveEagerLoadPaths(paths []string) ([]string, error) {
	resolved := make([]string, 0, len(paths))

	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			return nil, common.NewInvalidOperationError("eager load path cannot be empty")
		}

		segments := strings.Split(path, "/")
		for i, segment := range segments {
			if segment == "" {
				return nil, common.NewInvalidOperationError("eager load path '%s' has an empty segment", path)
			}
			segments[i] = schema.RelationName(segment)
		}

		resolved = append(resolved, strings.Join(segments, "."))
	}

	return lo.Uniq(resolved), nil
}

// MergeEagerLoad combines requested paths with a type's default eager load set.
func MergeEagerLoad(requested []string, defaults []string) []string {
	return lo.Uniq(append(append([]string{}, defaults...), requested...))
}

// loadRelations loads the given dotted relation paths for all rows, one
// query per relation per level.
func loadRelations(ctx context.Context, db *gorm.DB, model *schema.ResourceType, rows []*Entity, paths []string) error {
	if len(rows) == 0 || len(paths) == 0 {
		return nil
	}

	// Group nested paths under their first segment so each relation is loaded once.
	nested := map[string][]string{}
	order := []string{}
	for _, path := range paths {
		head, rest, _ := strings.Cut(path, ".")
		if _, ok := nested[head]; !ok {
			order = append(order, head)
			nested[head] = []string{}
		}
		if rest != "" {
			nested[head] = append(nested[head], rest)
		}
	}

	for _, relation := range order {
		nav := model.FindRelation(relation)
		if nav == nil {
			return common.NewInvalidOperationError("'%s' has no relation named '%s'", model.Name, relation)
		}

		related, err := loadRelation(ctx, db, model, nav, rows)
		if err != nil {
			return err
		}

		if err := loadRelations(ctx, db, nav.Target, related, nested[relation]); err != nil {
			return err
		}
	}

	return nil
}

func loadRelation(ctx context.Context, db *gorm.DB, model *schema.ResourceType, nav *schema.NavigationProperty, rows []*Entity) ([]*Entity, error) {
	// Owner-side column holding the join value, and the target-side column it matches.
	ownerColumn, targetColumn := nav.ForeignKey, nav.Target.Key
	if nav.Many {
		ownerColumn, targetColumn = model.Key, nav.ForeignKey
	}

	values := lo.Uniq(lo.Filter(lo.Map(rows, func(e *Entity, _ int) any {
		return normaliseValue(e.Values[ownerColumn])
	}), func(v any, _ int) bool {
		return v != nil
	}))

	var related []*Entity
	if len(values) > 0 {
		var results []map[string]any
		err := db.WithContext(ctx).
			Table(nav.Target.Table).
			Where(clause.IN{Column: clause.Column{Table: nav.Target.Table, Name: targetColumn}, Values: values}).
			Order(clause.OrderByColumn{Column: clause.Column{Table: nav.Target.Table, Name: nav.Target.Key}}).
			Find(&results).Error
		if err != nil {
			return nil, errors.Wrapf(err, "eager load %s.%s", model.Name, nav.Relation)
		}

		for _, values := range results {
			related = append(related, newEntity(nav.Target, values))
		}
	}

	byValue := lo.GroupBy(related, func(e *Entity) string {
		return joinKey(e.Values[targetColumn])
	})

	for _, row := range rows {
		matches := byValue[joinKey(row.Values[ownerColumn])]
		if row.Values[ownerColumn] == nil {
			matches = nil
		}

		if nav.Many {
			if matches == nil {
				matches = []*Entity{}
			}
			row.Relations[nav.Relation] = matches
		} else if len(matches) > 0 {
			row.Relations[nav.Relation] = matches[0]
		} else {
			row.Relations[nav.Relation] = (*Entity)(nil)
		}
	}

	return related, nil
}

// joinKey renders a column value so that values of differing driver types
// (e.g. int64 and int32) group together.
func joinKey(v any) string {
	return fmt.Sprint(normaliseValue(v))
}
