package q

import (
	"fmt"

	"github.com/teamkeel/dataservice/schema"
)

// Entity is a materialised row of a resource type.
type Entity struct {
	// Type is the runtime resource type name. It differs from the queried
	// type only when the type declares a discriminator column.
	Type string
	// DeclaredType is the name of the resource type the row was read as.
	DeclaredType string
	// Values holds column values keyed by column name.
	Values map[string]any
	// Relations holds eager-loaded relations keyed by relation name, each
	// either a *Entity (possibly nil) or a []*Entity.
	Relations map[string]any
}

func newEntity(t *schema.ResourceType, values map[string]any) *Entity {
	e := &Entity{
		Type:         t.Name,
		DeclaredType: t.Name,
		Values:       values,
		Relations:    map[string]any{},
	}

	if t.Discriminator != "" {
		if d, ok := values[t.Discriminator]; ok && d != nil {
			e.Type = fmt.Sprint(normaliseValue(d))
		}
	}

	return e
}

// Key returns the value of the entity's key column.
func (e *Entity) Key(t *schema.ResourceType) any {
	return e.Values[t.Key]
}

// Related returns a to-one relation if it has been loaded.
func (e *Entity) Related(relation string) (*Entity, bool) {
	v, ok := e.Relations[relation]
	if !ok {
		return nil, false
	}
	related, ok := v.(*Entity)
	return related, ok
}

// RelatedMany returns a to-many relation if it has been loaded.
func (e *Entity) RelatedMany(relation string) ([]*Entity, bool) {
	v, ok := e.Relations[relation]
	if !ok {
		return nil, false
	}
	related, ok := v.([]*Entity)
	return related, ok
}

// ToMap flattens the entity and its loaded relations into a plain map.
func (e *Entity) ToMap() map[string]any {
	m := make(map[string]any, len(e.Values)+len(e.Relations))
	for k, v := range e.Values {
		m[k] = normaliseValue(v)
	}

	for name, rel := range e.Relations {
		switch r := rel.(type) {
		case *Entity:
			if r == nil {
				m[name] = nil
			} else {
				m[name] = r.ToMap()
			}
		case []*Entity:
			items := make([]map[string]any, 0, len(r))
			for _, item := range r {
				items = append(items, item.ToMap())
			}
			m[name] = items
		}
	}

	return m
}

// normaliseValue converts driver specific representations into plain Go values.
func normaliseValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
