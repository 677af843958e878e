package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	q "github.com/teamkeel/dataservice/query"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

var filterOperators = map[string]q.Operator{
	"eq": q.Equals,
	"ne": q.NotEquals,
	"lt": q.LessThan,
	"le": q.LessThanOrEquals,
	"gt": q.GreaterThan,
	"ge": q.GreaterThanOrEquals,
}

// parseFilters builds the conjunction of "field op value" comparisons.
func parseFilters(filters []string) (q.Expression, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	operands := make([]q.Expression, 0, len(filters))
	for _, f := range filters {
		parts := strings.SplitN(strings.TrimSpace(f), " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("filter %q must be of the form 'field op value'", f)
		}

		op, ok := filterOperators[parts[1]]
		if !ok {
			return nil, fmt.Errorf("filter %q has unknown operator %q", f, parts[1])
		}

		operands = append(operands, q.Comparison{
			Field:    parts[0],
			Operator: op,
			Value:    parseLiteral(parts[2]),
		})
	}

	if len(operands) == 1 {
		return operands[0], nil
	}
	return q.And{Operands: operands}, nil
}

// parseOrderBy parses "field" or "field:asc|desc" segments.
func parseOrderBy(segments []string) ([]q.OrderBy, error) {
	orderBy := make([]q.OrderBy, 0, len(segments))
	for _, s := range segments {
		field, direction, _ := strings.Cut(s, ":")
		switch strings.ToLower(direction) {
		case "", "asc":
			orderBy = append(orderBy, q.OrderBy{Field: field, Ascending: true})
		case "desc":
			orderBy = append(orderBy, q.OrderBy{Field: field, Ascending: false})
		default:
			return nil, fmt.Errorf("order by %q has unknown direction %q", s, direction)
		}
	}
	return orderBy, nil
}

func formatOrderBy(orderBy []q.OrderBy) []string {
	segments := make([]string, 0, len(orderBy))
	for _, o := range orderBy {
		direction := "asc"
		if !o.Ascending {
			direction = "desc"
		}
		segments = append(segments, o.Field+":"+direction)
	}
	return segments
}

func tokenOrderBy(token q.SkipToken) []q.OrderBy {
	orderBy := make([]q.OrderBy, 0, len(token))
	for _, v := range token {
		orderBy = append(orderBy, q.OrderBy{Field: v.Field, Ascending: v.Ascending})
	}
	return orderBy
}

// parseKey parses "field=value" pairs into a key descriptor.
func parseKey(pairs []string) (q.KeyDescriptor, error) {
	key := q.KeyDescriptor{}
	for _, p := range pairs {
		field, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("key %q must be of the form 'field=value'", p)
		}
		key[field] = parseLiteral(value)
	}
	return key, nil
}

func parseLiteral(s string) any {
	if s == "null" {
		return nil
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return strings.Trim(s, `'"`)
}
