package actions

import (
	q "github.com/teamkeel/dataservice/query"
	"github.com/teamkeel/dataservice/runtime/common"
	"github.com/teamkeel/dataservice/schema"
)

// RelatedInput identifies a navigation property of one entity.
type RelatedInput struct {
	Owner      *q.Entity
	Navigation string
	Expand     []string
}

// GetRelatedReference follows a to-one navigation property. It returns nil
// if nothing is related, or if the related entity is not of the
// navigation's declared target type.
func GetRelatedReference(scope *Scope, input RelatedInput) (*q.Entity, error) {
	ownerType, nav, err := resolveNavigation(scope, input)
	if err != nil {
		return nil, err
	}

	err = AuthoriseRead(scope, ownerType.Name, input.Owner)
	if err != nil {
		return nil, err
	}

	if nav.Many {
		return nil, common.NewInvalidOperationError("navigation property '%s' on '%s' does not reference a single entity", nav.Name, ownerType.Name)
	}

	cursor, err := q.NewQuery(scope.Database, ownerType).Navigate(input.Owner, nav)
	if err != nil {
		return nil, err
	}

	requested, err := q.ResolveEagerLoadPaths(input.Expand)
	if err != nil {
		return nil, err
	}

	related, err := cursor.WithEagerLoad(q.MergeEagerLoad(requested, nav.Target.DefaultEagerLoad)).First(scope.Context)
	if err != nil {
		return nil, err
	}

	if related == nil || related.Type != nav.Target.Name {
		return nil, nil
	}

	return related, nil
}

// GetFromRelatedSet looks up one entity by key among those reachable
// through a navigation property.
func GetFromRelatedSet(scope *Scope, input RelatedInput, key q.KeyDescriptor) (*q.Entity, error) {
	source, err := navigate(scope, input)
	if err != nil {
		return nil, err
	}

	return Get(scope, GetInput{
		Source: source,
		Key:    key,
		Expand: input.Expand,
	})
}

// ListRelated queries the entities reachable through a navigation property
// exactly as a top level resource set query. Authorisation is carried out
// once, by List, against the scoped relation.
func ListRelated(scope *Scope, input RelatedInput, list ListInput) (*QueryResult, error) {
	source, err := navigate(scope, input)
	if err != nil {
		return nil, err
	}

	list.ResourceSet = ""
	list.Source = source
	if len(list.Expand) == 0 {
		list.Expand = input.Expand
	}

	return List(scope, list)
}

func navigate(scope *Scope, input RelatedInput) (*EntitySource, error) {
	ownerType, nav, err := resolveNavigation(scope, input)
	if err != nil {
		return nil, err
	}

	cursor, err := q.NewQuery(scope.Database, ownerType).Navigate(input.Owner, nav)
	if err != nil {
		return nil, err
	}

	return Scoped(input.Owner, nav, cursor), nil
}

func resolveNavigation(scope *Scope, input RelatedInput) (*schema.ResourceType, *schema.NavigationProperty, error) {
	if input.Owner == nil {
		return nil, nil, common.NewInvalidArgumentError("a source entity must be provided")
	}

	// A discriminator may name a type the schema does not declare, in which
	// case the row is navigated as the type it was read as.
	ownerType := scope.Schema.FindResourceType(input.Owner.Type)
	if ownerType == nil && input.Owner.DeclaredType != "" {
		ownerType = scope.Schema.FindResourceType(input.Owner.DeclaredType)
	}
	if ownerType == nil {
		return nil, nil, common.NewInvalidArgumentError("unknown resource type '%s'", input.Owner.Type)
	}

	nav := ownerType.FindNavigation(input.Navigation)
	if nav == nil {
		return nil, nil, common.NewInvalidArgumentError("'%s' has no navigation property '%s'", ownerType.Name, input.Navigation)
	}

	return ownerType, nav, nil
}
