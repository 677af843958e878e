package q

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/teamkeel/dataservice/runtime/common"
	"github.com/teamkeel/dataservice/schema"
	"golang.org/x/exp/constraints"
)

// Predicate is a compiled filter expression, evaluated against one
// materialised entity.
type Predicate func(e *Entity) bool

// fieldAccessor reads a value from an entity, following to-one relations.
type fieldAccessor struct {
	relations []string
	column    string
}

func (a fieldAccessor) value(e *Entity) (any, bool) {
	for _, relation := range a.relations {
		related, ok := e.Related(relation)
		if !ok || related == nil {
			return nil, false
		}
		e = related
	}

	v, ok := e.Values[a.column]
	return normaliseValue(v), ok
}

// Compile resolves the field references in expr against the model and
// returns a predicate. A nil expression compiles to a nil predicate.
func Compile(model *schema.ResourceType, expr Expression) (Predicate, error) {
	if expr == nil {
		return nil, nil
	}

	switch e := expr.(type) {
	case Comparison:
		return compileComparison(model, e)
	case *Comparison:
		if e == nil {
			return nil, errNilExpression(expr)
		}
		return compileComparison(model, *e)
	case And:
		return compileAnd(model, e.Operands)
	case *And:
		if e == nil {
			return nil, errNilExpression(expr)
		}
		return compileAnd(model, e.Operands)
	case Or:
		return compileOr(model, e.Operands)
	case *Or:
		if e == nil {
			return nil, errNilExpression(expr)
		}
		return compileOr(model, e.Operands)
	case Not:
		return compileNot(model, e.Operand)
	case *Not:
		if e == nil {
			return nil, errNilExpression(expr)
		}
		return compileNot(model, e.Operand)
	default:
		return nil, common.NewInvalidArgumentError("unsupported filter expression %T", expr)
	}
}

func errNilExpression(expr Expression) error {
	return common.NewInvalidArgumentError("filter expression %T is nil", expr)
}

// RequiredRelations returns the store-facing relation paths which must be
// eager loaded for expr to be evaluated.
func RequiredRelations(model *schema.ResourceType, expr Expression) []string {
	paths := []string{}
	var walk func(Expression)
	walk = func(expr Expression) {
		switch e := expr.(type) {
		case Comparison:
			if a, err := resolveField(model, e.Field); err == nil && len(a.relations) > 0 {
				paths = append(paths, strings.Join(a.relations, "."))
			}
		case *Comparison:
			if e != nil {
				walk(*e)
			}
		case And:
			for _, o := range e.Operands {
				walk(o)
			}
		case *And:
			if e != nil {
				walk(*e)
			}
		case Or:
			for _, o := range e.Operands {
				walk(o)
			}
		case *Or:
			if e != nil {
				walk(*e)
			}
		case Not:
			walk(e.Operand)
		case *Not:
			if e != nil {
				walk(*e)
			}
		}
	}
	walk(expr)
	return paths
}

func resolveField(model *schema.ResourceType, field string) (fieldAccessor, error) {
	segments := strings.Split(field, "/")
	accessor := fieldAccessor{}

	current := model
	for _, segment := range segments[:len(segments)-1] {
		nav := current.FindNavigation(segment)
		if nav == nil {
			return accessor, common.NewInvalidArgumentError("'%s' has no navigation property '%s'", current.Name, segment)
		}
		if nav.Many {
			return accessor, common.NewInvalidArgumentError("cannot filter through to-many navigation property '%s'", segment)
		}
		accessor.relations = append(accessor.relations, nav.Relation)
		current = nav.Target
	}

	name := segments[len(segments)-1]
	property := current.FindProperty(name)
	if property == nil {
		return accessor, common.NewInvalidArgumentError("'%s' has no property '%s'", current.Name, name)
	}
	accessor.column = property.Column

	return accessor, nil
}

func compileComparison(model *schema.ResourceType, c Comparison) (Predicate, error) {
	accessor, err := resolveField(model, c.Field)
	if err != nil {
		return nil, err
	}

	if c.Operator < Equals || c.Operator > GreaterThanOrEquals {
		return nil, common.NewInvalidArgumentError("unsupported operator %d", c.Operator)
	}

	literal := normaliseValue(c.Value)

	return func(e *Entity) bool {
		v, _ := accessor.value(e)
		return compare(v, c.Operator, literal)
	}, nil
}

func compileAnd(model *schema.ResourceType, operands []Expression) (Predicate, error) {
	predicates, err := compileAll(model, operands)
	if err != nil {
		return nil, err
	}

	return func(e *Entity) bool {
		for _, p := range predicates {
			if !p(e) {
				return false
			}
		}
		return true
	}, nil
}

func compileOr(model *schema.ResourceType, operands []Expression) (Predicate, error) {
	predicates, err := compileAll(model, operands)
	if err != nil {
		return nil, err
	}

	return func(e *Entity) bool {
		for _, p := range predicates {
			if p(e) {
				return true
			}
		}
		return false
	}, nil
}

func compileNot(model *schema.ResourceType, operand Expression) (Predicate, error) {
	if operand == nil {
		return nil, common.NewInvalidArgumentError("not expression requires an operand")
	}

	p, err := Compile(model, operand)
	if err != nil {
		return nil, err
	}

	return func(e *Entity) bool {
		return !p(e)
	}, nil
}

func compileAll(model *schema.ResourceType, operands []Expression) ([]Predicate, error) {
	predicates := make([]Predicate, 0, len(operands))
	for _, o := range operands {
		if o == nil {
			return nil, common.NewInvalidArgumentError("logical expression has a nil operand")
		}
		p, err := Compile(model, o)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, p)
	}
	return predicates, nil
}

func compare(v any, op Operator, literal any) bool {
	if v == nil || literal == nil {
		both := v == nil && literal == nil
		switch op {
		case Equals:
			return both
		case NotEquals:
			return !both
		default:
			return false
		}
	}

	c, ok := compareValues(v, literal)
	if !ok {
		// Values of unrelated types are never equal and never ordered.
		return op == NotEquals
	}

	switch op {
	case Equals:
		return c == 0
	case NotEquals:
		return c != 0
	case LessThan:
		return c < 0
	case LessThanOrEquals:
		return c <= 0
	case GreaterThan:
		return c > 0
	case GreaterThanOrEquals:
		return c >= 0
	}

	return false
}

// compareValues orders two values, returning false if they are not comparable.
func compareValues(a, b any) (int, bool) {
	// Integers compare exactly; float64 loses precision above 2^53.
	if x, ok := toInt64(a); ok {
		if y, ok := toInt64(b); ok {
			return compareOrdered(x, y), true
		}
	}

	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return compareOrdered(x, y), true
		}
		return 0, false
	}

	// Times compare with times, or with ISO 8601 strings.
	if x, ok := toTime(a); ok {
		if y, ok := parseTime(b); ok {
			return x.Compare(y), true
		}
		return 0, false
	}
	if y, ok := toTime(b); ok {
		if x, ok := parseTime(a); ok {
			return x.Compare(y), true
		}
		return 0, false
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			if x == y {
				return 0, true
			}
			if !x {
				return -1, true
			}
			return 1, true
		}
	}

	if fmt.Sprint(a) == fmt.Sprint(b) {
		return 0, true
	}

	return 0, false
}

func compareOrdered[T constraints.Ordered](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

func parseTime(v any) (time.Time, bool) {
	if s, ok := v.(string); ok {
		t, err := iso8601.ParseString(s)
		return t, err == nil
	}
	return toTime(v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
