package actions

import (
	"context"
	"testing"

	q "github.com/teamkeel/dataservice/query"
	"github.com/teamkeel/dataservice/testhelpers"
	"gorm.io/gorm"
)

type denyAll struct{}

func (denyAll) CanAuthoriseRead(context.Context, string, any) (bool, error) {
	return false, nil
}

// recordingAuthoriser allows every read and records what was authorised.
type recordingAuthoriser struct {
	types    []string
	subjects []any
}

func (a *recordingAuthoriser) CanAuthoriseRead(_ context.Context, typeName string, subject any) (bool, error) {
	a.types = append(a.types, typeName)
	a.subjects = append(a.subjects, subject)
	return true, nil
}

func newScope(t *testing.T, authoriser Authoriser, options Options) (*Scope, *gorm.DB) {
	db := testhelpers.NewDatabase(t)
	return NewScope(context.Background(), testhelpers.NewSchema(t), db, authoriser, options), db
}

func seed(t *testing.T, db *gorm.DB) {
	testhelpers.Exec(t, db,
		`INSERT INTO vehicles (id, kind, wheels) VALUES (1, 'Vehicle', 4), (2, 'Truck', 18)`,
		`INSERT INTO customers (id, name, vehicle_id) VALUES (1, 'Ada', 1), (2, 'Grace', 2), (3, 'Linus', NULL)`,
		`INSERT INTO orders (id, customer_id, status, total, created_at) VALUES
			(1, 1, 'open', 10, '2019-06-01T00:00:00Z'),
			(2, 1, 'shipped', 25, '2020-03-01T00:00:00Z'),
			(3, 2, 'open', 5, '2018-01-01T00:00:00Z'),
			(4, 2, 'open', 40, '2020-01-01T00:00:00Z'),
			(5, NULL, 'cancelled', 0, '2021-01-01T00:00:00Z')`,
		`INSERT INTO order_lines (id, order_id, sku) VALUES (1, 1, 'A'), (2, 1, 'B'), (3, 2, 'C'), (4, 4, 'A')`,
	)
}

func ids(rows []*q.Entity) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Values["id"].(int64))
	}
	return out
}

func intPtr(i int) *int {
	return &i
}

func flagged() q.Expression {
	return q.Comparison{Field: "Status", Operator: q.Equals, Value: "flagged"}
}
