package actions

import (
	q "github.com/teamkeel/dataservice/query"
	"github.com/teamkeel/dataservice/runtime/common"
	"github.com/teamkeel/dataservice/schema"
	"gorm.io/gorm"
)

// EntitySource is the starting point of a query: either every row of a
// resource type, or the rows reachable from one entity through a
// navigation property.
type EntitySource struct {
	model *schema.ResourceType

	// Only set for scoped sources.
	owner      *q.Entity
	navigation *schema.NavigationProperty
	cursor     *q.QueryBuilder
}

// Bare is a source over every row of a resource type.
func Bare(model *schema.ResourceType) *EntitySource {
	return &EntitySource{model: model}
}

// Scoped is a source over a relation cursor already positioned on one owner.
func Scoped(owner *q.Entity, navigation *schema.NavigationProperty, cursor *q.QueryBuilder) *EntitySource {
	return &EntitySource{
		model:      cursor.Model,
		owner:      owner,
		navigation: navigation,
		cursor:     cursor,
	}
}

func (s *EntitySource) IsScoped() bool {
	return s.cursor != nil
}

func (s *EntitySource) Model() *schema.ResourceType {
	return s.model
}

func (s *EntitySource) TypeName() string {
	return s.model.Name
}

func (s *EntitySource) Table() string {
	return s.model.Table
}

func (s *EntitySource) KeyField() string {
	return s.model.Key
}

func (s *EntitySource) DefaultEagerLoad() []string {
	return s.model.DefaultEagerLoad
}

// Owner returns the entity a scoped source navigates from.
func (s *EntitySource) Owner() *q.Entity {
	return s.owner
}

func (s *EntitySource) Navigation() *schema.NavigationProperty {
	return s.navigation
}

// Cursor returns the cursor to start the query from.
func (s *EntitySource) Cursor(db *gorm.DB) *q.QueryBuilder {
	if s.cursor != nil {
		return s.cursor
	}
	return q.NewQuery(db, s.model)
}

// subject is the narrowest thing read authorisation can be decided on.
func (s *EntitySource) subject() any {
	if s.IsScoped() {
		return s
	}
	return s.model
}

// resolveSource returns the supplied source, or a bare source over the
// named resource set's type.
func resolveSource(scope *Scope, resourceSet string, source *EntitySource) (*EntitySource, error) {
	if source != nil {
		if source.model == nil {
			return nil, common.NewInvalidArgumentError("entity source has no resource type")
		}
		return source, nil
	}

	if resourceSet == "" {
		return nil, common.NewInvalidArgumentError("either a resource set or an entity source must be provided")
	}

	set := scope.Schema.FindResourceSet(resourceSet)
	if set == nil {
		return nil, common.NewInvalidArgumentError("unknown resource set '%s'", resourceSet)
	}

	return Bare(set.Type), nil
}

// resolveEagerLoad normalises requested expansion paths and merges them
// with the source type's defaults.
func resolveEagerLoad(source *EntitySource, expand []string) ([]string, error) {
	requested, err := q.ResolveEagerLoadPaths(expand)
	if err != nil {
		return nil, err
	}

	return q.MergeEagerLoad(requested, source.DefaultEagerLoad()), nil
}
