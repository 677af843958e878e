package q

import (
	"encoding/base64"
	"encoding/json"

	"github.com/teamkeel/dataservice/runtime/common"
	"gorm.io/gorm/clause"
)

// A SkipToken describes a position in an ordered collection: the sort key
// values of the last row seen. Rows strictly after this position form the
// next page, so unlike an offset it is stable under inserts and deletes
// elsewhere in the collection.
//
// A token has one value per ordering segment, aligned with the ordering.
type SkipToken []SkipTokenValue

type SkipTokenValue struct {
	Field     string `json:"f"`
	Ascending bool   `json:"a"`
	Value     any    `json:"v"`
}

// Validate checks the token is well formed. It does not check alignment
// with an ordering, which is done when the token is applied.
func (token SkipToken) Validate() error {
	for i, v := range token {
		if v.Field == "" {
			return common.NewInvalidArgumentError("skip token value %d has no field", i)
		}
	}
	return nil
}

// ApplySkipToken constrains the cursor to rows ordered strictly after the
// token's position. The token must have one value per ordering segment
// already applied to the cursor.
//
// For an ordering (a, b, c) the constraint is
//
//	a > ta OR (a = ta AND b > tb) OR (a = ta AND b = tb AND c > tc)
//
// with < in place of > for descending segments.
func (query *QueryBuilder) ApplySkipToken(token SkipToken) error {
	if len(token) != len(query.orderBy) {
		return common.NewInvalidOperationError("skip token does not match the ordering. Expected %d, got %d", len(query.orderBy), len(token))
	}

	query.WhereExpression(query.keyset(token))
	return nil
}

func (query *QueryBuilder) keyset(token SkipToken) clause.Expression {
	disjuncts := make([]clause.Expression, 0, len(token))
	equal := make([]clause.Expression, 0, len(token))

	for _, v := range token {
		column := query.Column(v.Field)

		var after clause.Expression = clause.Gt{Column: column, Value: v.Value}
		if !v.Ascending {
			after = clause.Lt{Column: column, Value: v.Value}
		}

		conjuncts := append(append([]clause.Expression{}, equal...), after)
		disjuncts = append(disjuncts, clause.And(conjuncts...))

		equal = append(equal, clause.Eq{Column: column, Value: v.Value})
	}

	switch len(disjuncts) {
	case 0:
		return nil
	case 1:
		return disjuncts[0]
	default:
		return clause.Or(disjuncts...)
	}
}

// NextSkipToken builds the token positioned at the given row for the
// cursor's effective ordering, so rows tied on the applied ordering are
// still told apart by the key. The next page must be requested with
// EffectiveOrderBy as its ordering.
func (query *QueryBuilder) NextSkipToken(last *Entity) SkipToken {
	orderBy := query.EffectiveOrderBy()
	token := make(SkipToken, 0, len(orderBy))
	for _, o := range orderBy {
		token = append(token, SkipTokenValue{
			Field:     o.Field,
			Ascending: o.Ascending,
			Value:     normaliseValue(last.Values[query.Model.Column(o.Field)]),
		})
	}
	return token
}

// EncodeSkipToken renders a token as an opaque, URL safe string.
func EncodeSkipToken(token SkipToken) (string, error) {
	b, err := json.Marshal(token)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ParseSkipToken decodes a token produced by EncodeSkipToken.
func ParseSkipToken(s string) (SkipToken, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, common.NewInvalidArgumentError("malformed skip token")
	}

	var token SkipToken
	if err := json.Unmarshal(b, &token); err != nil {
		return nil, common.NewInvalidArgumentError("malformed skip token")
	}

	if err := token.Validate(); err != nil {
		return nil, err
	}

	return token, nil
}
