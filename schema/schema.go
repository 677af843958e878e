package schema

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// Schema describes the resource sets exposed by the service and the
// resource types backing them.
type Schema struct {
	ResourceTypes []*ResourceType `yaml:"resourceTypes"`
	ResourceSets  []*ResourceSet  `yaml:"resourceSets"`
}

// ResourceSet is a named, addressable collection of one resource type.
type ResourceSet struct {
	Name     string `yaml:"name"`
	TypeName string `yaml:"type"`

	Type *ResourceType `yaml:"-"`
}

// ResourceType maps an entity type onto a backing table.
type ResourceType struct {
	Name  string `yaml:"name"`
	Table string `yaml:"table"`
	Key   string `yaml:"key"`

	// Discriminator is an optional column holding the runtime type name
	// of each row, used when several types share a table.
	Discriminator string `yaml:"discriminator"`

	// DefaultEagerLoad holds store-facing dotted relation paths which are
	// always loaded alongside this type.
	DefaultEagerLoad []string `yaml:"defaultEagerLoad"`

	Properties  []*Property           `yaml:"properties"`
	Navigations []*NavigationProperty `yaml:"navigations"`
}

type Property struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
}

// NavigationProperty is a typed relation from one resource type to another.
//
// For a to-one navigation ForeignKey is a column on the owning type which
// references the target's key. For a to-many navigation ForeignKey is a
// column on the target type which references the owner's key.
type NavigationProperty struct {
	Name       string `yaml:"name"`
	Relation   string `yaml:"relation"`
	TargetName string `yaml:"target"`
	ForeignKey string `yaml:"foreignKey"`
	Many       bool   `yaml:"many"`

	Target *ResourceType `yaml:"-"`
}

// Prepare fills in defaults and links resource sets and navigations to
// their resource types. It must be called before the schema is used.
func (s *Schema) Prepare() error {
	for _, t := range s.ResourceTypes {
		if t.Table == "" {
			t.Table = strcase.ToSnake(t.Name)
		}
		for _, p := range t.Properties {
			if p.Column == "" {
				p.Column = strcase.ToSnake(p.Name)
			}
		}
	}

	for _, t := range s.ResourceTypes {
		for _, n := range t.Navigations {
			n.Target = s.FindResourceType(n.TargetName)
			if n.Target == nil {
				return fmt.Errorf("navigation '%s' on '%s' targets unknown type '%s'", n.Name, t.Name, n.TargetName)
			}
			if n.Relation == "" {
				n.Relation = RelationName(n.Name)
			}
		}
	}

	for _, set := range s.ResourceSets {
		set.Type = s.FindResourceType(set.TypeName)
		if set.Type == nil {
			return fmt.Errorf("resource set '%s' has unknown type '%s'", set.Name, set.TypeName)
		}
	}

	return nil
}

func (s *Schema) FindResourceSet(name string) *ResourceSet {
	for _, set := range s.ResourceSets {
		if set.Name == name {
			return set
		}
	}
	return nil
}

func (s *Schema) FindResourceType(name string) *ResourceType {
	for _, t := range s.ResourceTypes {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// FindProperty looks up a property by its declared name.
func (t *ResourceType) FindProperty(name string) *Property {
	for _, p := range t.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// FindNavigation looks up a navigation property by its declared name.
func (t *ResourceType) FindNavigation(name string) *NavigationProperty {
	for _, n := range t.Navigations {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// FindRelation looks up a navigation property by its store-facing relation name.
func (t *ResourceType) FindRelation(relation string) *NavigationProperty {
	for _, n := range t.Navigations {
		if n.Relation == relation {
			return n
		}
	}
	return nil
}

// KeyProperty returns the name of the property mapped to the key column,
// or the key column itself if no property maps it.
func (t *ResourceType) KeyProperty() string {
	for _, p := range t.Properties {
		if p.Column == t.Key {
			return p.Name
		}
	}
	return t.Key
}

// Column resolves a declared property name to its column, falling back to
// the name itself so that raw column names are forwarded untouched.
func (t *ResourceType) Column(name string) string {
	if p := t.FindProperty(name); p != nil {
		return p.Column
	}
	return name
}
