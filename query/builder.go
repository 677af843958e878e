package q

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/teamkeel/dataservice/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryBuilder is a cursor over the rows of one resource type. Clauses are
// accumulated on the builder and only turned into a statement when the
// rows are materialised, counted or chunked.
//
// A QueryBuilder is owned by a single call and must not be shared.
type QueryBuilder struct {
	db    *gorm.DB
	Model *schema.ResourceType

	wheres  []clause.Expression
	orderBy []OrderBy
	offset  int
	limit   *int
	eager   []string
}

// NewQuery creates a cursor over all rows of the given resource type.
func NewQuery(db *gorm.DB, model *schema.ResourceType) *QueryBuilder {
	return &QueryBuilder{
		db:    db,
		Model: model,
	}
}

// Table returns the backing table of the cursor.
func (query *QueryBuilder) Table() string {
	return query.Model.Table
}

// KeyField returns the key column of the cursor's resource type.
func (query *QueryBuilder) KeyField() string {
	return query.Model.Key
}

// OrderBy returns the ordering applied so far.
func (query *QueryBuilder) OrderBy() []OrderBy {
	return query.orderBy
}

// EffectiveOrderBy returns the ordering rows are actually sorted by: the
// applied ordering followed by the key, unless the key is already ordered.
func (query *QueryBuilder) EffectiveOrderBy() []OrderBy {
	effective := append([]OrderBy{}, query.orderBy...)
	for _, o := range query.orderBy {
		if query.Column(o.Field).Name == query.Model.Key {
			return effective
		}
	}
	return append(effective, OrderBy{Field: query.Model.KeyProperty(), Ascending: true})
}

// EagerLoad returns the relation paths which will be loaded with each row.
func (query *QueryBuilder) EagerLoad() []string {
	return query.eager
}

// Column qualifies a declared property name with the cursor's table.
func (query *QueryBuilder) Column(field string) clause.Column {
	return clause.Column{
		Table: query.Model.Table,
		Name:  query.Model.Column(field),
	}
}

// WhereEquals constrains the cursor to rows where field equals value.
func (query *QueryBuilder) WhereEquals(field string, value any) *QueryBuilder {
	query.wheres = append(query.wheres, clause.Eq{Column: query.Column(field), Value: value})
	return query
}

// WhereExpression constrains the cursor with an arbitrary clause expression.
func (query *QueryBuilder) WhereExpression(expr clause.Expression) *QueryBuilder {
	if expr != nil {
		query.wheres = append(query.wheres, expr)
	}
	return query
}

func (query *QueryBuilder) Skip(n int) *QueryBuilder {
	query.offset = n
	return query
}

func (query *QueryBuilder) Take(n int) *QueryBuilder {
	query.limit = &n
	return query
}

// WithEagerLoad adds store-facing dotted relation paths to load alongside each row.
func (query *QueryBuilder) WithEagerLoad(paths []string) *QueryBuilder {
	query.eager = lo.Uniq(append(query.eager, paths...))
	return query
}

// Materialise executes the cursor and returns the matching rows with their
// eager-loaded relations.
func (query *QueryBuilder) Materialise(ctx context.Context) ([]*Entity, error) {
	if query.limit != nil && *query.limit == 0 {
		return []*Entity{}, nil
	}

	tx := query.statement(ctx).Offset(query.offset)
	if query.limit != nil {
		tx = tx.Limit(*query.limit)
	}

	return query.find(ctx, tx)
}

// First materialises the cursor and returns the first row, or nil if none matched.
func (query *QueryBuilder) First(ctx context.Context) (*Entity, error) {
	rows, err := query.Materialise(ctx)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rows[0], nil
}

// Count returns the number of rows matching the cursor's constraints,
// ignoring any skip and take.
func (query *QueryBuilder) Count(ctx context.Context) (int64, error) {
	var count int64
	err := query.db.WithContext(ctx).
		Table(query.Model.Table).
		Clauses(query.where()...).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", query.Model.Table)
	}

	return count, nil
}

// Chunk iterates over every row matching the cursor's constraints in
// batches of the given size, ignoring any skip and take. Each batch is
// handed to visit before the next one is read.
func (query *QueryBuilder) Chunk(ctx context.Context, size int, visit func(batch []*Entity) error) error {
	if size <= 0 {
		return errors.Errorf("invalid chunk size %d", size)
	}

	for page := 0; ; page++ {
		tx := query.statement(ctx).Offset(page * size).Limit(size)

		batch, err := query.find(ctx, tx)
		if err != nil {
			return err
		}

		if len(batch) > 0 {
			if err := visit(batch); err != nil {
				return err
			}
		}

		if len(batch) < size {
			return nil
		}
	}
}

// statement builds an ordered, filtered select over the cursor's table.
// The key column is always a sort key so that paging is stable.
func (query *QueryBuilder) statement(ctx context.Context) *gorm.DB {
	tx := query.db.WithContext(ctx).
		Table(query.Model.Table).
		Clauses(query.where()...)

	for _, o := range query.EffectiveOrderBy() {
		tx = tx.Order(clause.OrderByColumn{Column: query.Column(o.Field), Desc: !o.Ascending})
	}

	return tx
}

func (query *QueryBuilder) where() []clause.Expression {
	if len(query.wheres) == 0 {
		return nil
	}
	return []clause.Expression{clause.Where{Exprs: query.wheres}}
}

func (query *QueryBuilder) find(ctx context.Context, tx *gorm.DB) ([]*Entity, error) {
	var results []map[string]any
	if err := tx.Find(&results).Error; err != nil {
		return nil, errors.Wrapf(err, "select %s", query.Model.Table)
	}

	rows := make([]*Entity, 0, len(results))
	for _, values := range results {
		rows = append(rows, newEntity(query.Model, values))
	}

	if err := loadRelations(ctx, query.db, query.Model, rows, query.eager); err != nil {
		return nil, err
	}

	return rows, nil
}
