package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	q "github.com/teamkeel/dataservice/query"
	"github.com/teamkeel/dataservice/runtime/actions"
	"github.com/teamkeel/dataservice/runtime/common"
	"github.com/teamkeel/dataservice/runtime/permissions"
	"github.com/teamkeel/dataservice/runtime/runtimectx"
	"github.com/teamkeel/dataservice/testhelpers"
)

func newRuntime(t *testing.T) *Runtime {
	db := testhelpers.NewDatabase(t)
	testhelpers.Exec(t, db,
		`INSERT INTO customers (id, name) VALUES (1, 'Ada'), (2, 'Grace')`,
		`INSERT INTO orders (id, customer_id, status, total, created_at) VALUES
			(1, 1, 'open', 10, '2019-06-01T00:00:00Z'),
			(2, 1, 'shipped', 25, '2020-03-01T00:00:00Z'),
			(3, 2, 'open', 5, '2018-01-01T00:00:00Z')`,
	)

	enforcer, err := permissions.NewEnforcer()
	require.NoError(t, err)
	require.NoError(t, enforcer.AllowRead("clerk", "Order"))
	require.NoError(t, enforcer.AllowRead("admin", "*"))

	return New(testhelpers.NewSchema(t), db, enforcer, actions.DefaultOptions())
}

func as(role string) context.Context {
	return runtimectx.WithIdentity(context.Background(), runtimectx.Identity{Role: role})
}

func TestRuntime_ListResourceSet(t *testing.T) {
	rt := newRuntime(t)

	res, err := rt.ListResourceSet(as("clerk"), actions.ListInput{
		Kind:        actions.QueryKindEntitiesWithCount,
		ResourceSet: "Orders",
		Filter:      q.Comparison{Field: "Status", Operator: q.Equals, Value: "open"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.Equal(t, int64(2), *res.Count)

	_, err = rt.ListResourceSet(as("clerk"), actions.ListInput{ResourceSet: "Customers"})
	assert.True(t, common.IsCode(err, common.ErrPermissionDenied))

	_, err = rt.ListResourceSet(context.Background(), actions.ListInput{ResourceSet: "Orders"})
	assert.True(t, common.IsCode(err, common.ErrPermissionDenied))
}

func TestRuntime_GetResourceByKey(t *testing.T) {
	rt := newRuntime(t)

	customer, err := rt.GetResourceByKey(as("admin"), "Customers", q.KeyDescriptor{"Id": 1}, []string{"Orders_Order"})
	require.NoError(t, err)
	require.NotNil(t, customer)

	orders, ok := customer.RelatedMany("Orders")
	require.True(t, ok)
	assert.Len(t, orders, 2)

	missing, err := rt.GetResourceByKey(as("admin"), "Customers", q.KeyDescriptor{"Id": 9}, nil)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRuntime_Related(t *testing.T) {
	rt := newRuntime(t)
	ctx := as("admin")

	customer, err := rt.GetResourceByKey(ctx, "Customers", q.KeyDescriptor{"Id": 1}, nil)
	require.NoError(t, err)
	related := actions.RelatedInput{Owner: customer, Navigation: "Orders_Order"}

	set, err := rt.GetRelatedSet(ctx, related, actions.ListInput{Kind: actions.QueryKindCount})
	require.NoError(t, err)
	assert.Equal(t, int64(2), *set.Count)

	order, err := rt.GetRelatedByKey(ctx, related, q.KeyDescriptor{"Id": 2})
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "shipped", order.Values["status"])

	owner, err := rt.GetRelatedReference(ctx, actions.RelatedInput{Owner: order, Navigation: "Customer_Customer"})
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "Ada", owner.Values["name"])
}

func TestRuntime_RelatedDeniedForRole(t *testing.T) {
	rt := newRuntime(t)

	order, err := rt.GetResourceByKey(as("clerk"), "Orders", q.KeyDescriptor{"Id": 1}, nil)
	require.NoError(t, err)
	require.NotNil(t, order)

	// Following a reference authorises the owning entity.
	_, err = rt.GetRelatedReference(as("clerk"), actions.RelatedInput{Owner: order, Navigation: "Customer_Customer"})
	require.NoError(t, err)

	customer := &q.Entity{Type: "Customer", Values: map[string]any{"id": int64(1)}, Relations: map[string]any{}}
	_, err = rt.GetRelatedSet(as("clerk"), actions.RelatedInput{Owner: customer, Navigation: "Orders_Order"}, actions.ListInput{})
	require.NoError(t, err)

	_, err = rt.GetRelatedReference(as("clerk"), actions.RelatedInput{Owner: customer, Navigation: "Vehicle_Vehicle"})
	assert.True(t, common.IsCode(err, common.ErrPermissionDenied))
}
