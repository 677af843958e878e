package actions

import (
	q "github.com/teamkeel/dataservice/query"
	"github.com/teamkeel/dataservice/runtime/common"
)

type QueryKind int

const (
	QueryKindEntities QueryKind = iota
	QueryKindCount
	QueryKindEntitiesWithCount
)

func (k QueryKind) String() string {
	switch k {
	case QueryKindCount:
		return "count"
	case QueryKindEntitiesWithCount:
		return "entities_with_count"
	default:
		return "entities"
	}
}

// ListInput describes a query over a resource set. Either ResourceSet or
// Source must be set.
type ListInput struct {
	Kind        QueryKind
	ResourceSet string
	Source      *EntitySource

	Filter    q.Expression
	OrderBy   []q.OrderBy
	Top       *int
	Skip      *int
	SkipToken q.SkipToken
	Expand    []string
}

type QueryResult struct {
	// Rows is set for QueryKindEntities and QueryKindEntitiesWithCount.
	Rows []*q.Entity
	// Count is the number of matching rows ignoring skip and top. It is set
	// for QueryKindCount and QueryKindEntitiesWithCount.
	Count   *int64
	HasMore bool
	// NextSkipToken is positioned at the last returned row when there are
	// more rows. It is aligned with OrderBy, which is the ordering the next
	// page must be requested with.
	NextSkipToken q.SkipToken
	OrderBy       []q.OrderBy
}

// ListStatement is a validated, authorised query ready to be executed.
type ListStatement struct {
	Cursor    *q.QueryBuilder
	Predicate q.Predicate
	EagerLoad []string
	Skip      int
	Top       int
}

func List(scope *Scope, input ListInput) (*QueryResult, error) {
	statement, err := GenerateListStatement(scope, input)
	if err != nil {
		return nil, err
	}

	result, err := applyFilteringStrategy(scope, statement.Cursor, statement.Predicate, statement.EagerLoad, statement.Skip, statement.Top)
	if err != nil {
		return nil, err
	}

	rows := result.rows
	if len(rows) > statement.Top {
		rows = rows[:statement.Top]
	}

	res := &QueryResult{
		HasMore: result.total > int64(statement.Skip)+int64(len(rows)),
	}

	switch input.Kind {
	case QueryKindEntities:
		res.Rows = rows
	case QueryKindCount:
		res.Count = &result.matched
	case QueryKindEntitiesWithCount:
		res.Rows = rows
		res.Count = &result.matched
	}

	if res.HasMore && len(rows) > 0 {
		res.OrderBy = statement.Cursor.EffectiveOrderBy()
		res.NextSkipToken = statement.Cursor.NextSkipToken(rows[len(rows)-1])
	}

	return res, nil
}

// GenerateListStatement validates the input, authorises the read and
// prepares an ordered cursor. Nothing is read from the store.
func GenerateListStatement(scope *Scope, input ListInput) (*ListStatement, error) {
	if input.Kind < QueryKindEntities || input.Kind > QueryKindEntitiesWithCount {
		return nil, common.NewInvalidArgumentError("unknown query kind %d", input.Kind)
	}

	if err := input.SkipToken.Validate(); err != nil {
		return nil, err
	}

	skip, top, err := normalisePaging(input.Skip, input.Top)
	if err != nil {
		return nil, err
	}

	source, err := resolveSource(scope, input.ResourceSet, input.Source)
	if err != nil {
		return nil, err
	}

	predicate, err := q.Compile(source.Model(), input.Filter)
	if err != nil {
		return nil, err
	}

	eagerLoad, err := resolveEagerLoad(source, input.Expand)
	if err != nil {
		return nil, err
	}
	// Relations referenced by the filter must be loaded to evaluate it.
	eagerLoad = q.MergeEagerLoad(q.RequiredRelations(source.Model(), input.Filter), eagerLoad)

	if source.KeyField() == "" || source.Table() == "" {
		return nil, common.NewInvalidOperationError("cannot determine the key field of '%s'", source.TypeName())
	}

	err = AuthoriseRead(scope, source.TypeName(), source.subject())
	if err != nil {
		return nil, err
	}

	cursor := source.Cursor(scope.Database)

	err = cursor.ApplyOrdering(input.OrderBy)
	if err != nil {
		return nil, err
	}

	if len(input.SkipToken) > 0 {
		err = cursor.ApplySkipToken(input.SkipToken)
		if err != nil {
			return nil, err
		}
	}

	return &ListStatement{
		Cursor:    cursor,
		Predicate: predicate,
		EagerLoad: eagerLoad,
		Skip:      skip,
		Top:       top,
	}, nil
}
