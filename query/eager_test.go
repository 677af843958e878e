package q

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamkeel/dataservice/runtime/common"
)

func TestResolveEagerLoadPaths(t *testing.T) {
	paths, err := ResolveEagerLoadPaths([]string{"A_1/B_2", "Customer_Person/Address_Address", "Lines"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A.B", "Customer.Address", "Lines"}, paths)

	again, err := ResolveEagerLoadPaths(paths)
	require.NoError(t, err)
	assert.Equal(t, paths, again)

	paths, err = ResolveEagerLoadPaths([]string{"A_1", "A_2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, paths)
}

func TestResolveEagerLoadPaths_Empty(t *testing.T) {
	_, err := ResolveEagerLoadPaths([]string{""})
	assert.True(t, common.IsCode(err, common.ErrInvalidOperation))

	_, err = ResolveEagerLoadPaths([]string{"A_1//B_2"})
	assert.EqualError(t, err, "ERR_INVALID_OPERATION: eager load path 'A_1//B_2' has an empty segment")

	paths, err := ResolveEagerLoadPaths(nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestMergeEagerLoad(t *testing.T) {
	assert.Equal(t, []string{"Customer", "Lines"}, MergeEagerLoad([]string{"Lines", "Customer"}, []string{"Customer"}))
	assert.Empty(t, MergeEagerLoad(nil, nil))
}

func TestEagerLoad_ToMany(t *testing.T) {
	s, db := setup(t)

	rows, err := NewQuery(db, s.FindResourceType("Customer")).
		WithEagerLoad([]string{"Orders"}).
		Materialise(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	orders, ok := rows[0].RelatedMany("Orders")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, ids(orders))

	orders, ok = rows[2].RelatedMany("Orders")
	require.True(t, ok)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestEagerLoad_ToOne(t *testing.T) {
	s, db := setup(t)

	rows, err := NewQuery(db, s.FindResourceType("Order")).
		WithEagerLoad([]string{"Customer"}).
		Materialise(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 5)

	customer, ok := rows[2].Related("Customer")
	require.True(t, ok)
	assert.Equal(t, "Grace", customer.Values["name"])

	customer, ok = rows[4].Related("Customer")
	require.True(t, ok)
	assert.Nil(t, customer)
}

func TestEagerLoad_Nested(t *testing.T) {
	s, db := setup(t)

	rows, err := NewQuery(db, s.FindResourceType("Customer")).
		WithEagerLoad([]string{"Orders.Lines", "Orders.Customer", "Vehicle"}).
		Materialise(context.Background())
	require.NoError(t, err)

	orders, _ := rows[0].RelatedMany("Orders")
	require.Len(t, orders, 2)

	lines, ok := orders[0].RelatedMany("Lines")
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2}, ids(lines))

	owner, ok := orders[1].Related("Customer")
	require.True(t, ok)
	assert.Equal(t, "Ada", owner.Values["name"])

	vehicle, ok := rows[1].Related("Vehicle")
	require.True(t, ok)
	assert.Equal(t, "Truck", vehicle.Type)

	m := rows[0].ToMap()
	assert.Equal(t, "Ada", m["name"])
	assert.Len(t, m["Orders"], 2)
}

func TestEagerLoad_UnknownRelation(t *testing.T) {
	s, db := setup(t)

	_, err := NewQuery(db, s.FindResourceType("Order")).
		WithEagerLoad([]string{"Warehouse"}).
		Materialise(context.Background())
	assert.EqualError(t, err, "ERR_INVALID_OPERATION: 'Order' has no relation named 'Warehouse'")
}

func TestNavigate(t *testing.T) {
	s, db := setup(t)
	customerType := s.FindResourceType("Customer")
	orderType := s.FindResourceType("Order")

	customer, err := NewQuery(db, customerType).WhereEquals("Id", 2).First(context.Background())
	require.NoError(t, err)

	orders, err := NewQuery(db, customerType).Navigate(customer, customerType.FindNavigation("Orders_Order"))
	require.NoError(t, err)
	rows, err := orders.Materialise(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 4}, ids(rows))

	order, err := NewQuery(db, orderType).WhereEquals("Id", 1).First(context.Background())
	require.NoError(t, err)

	owner, err := NewQuery(db, orderType).Navigate(order, orderType.FindNavigation("Customer_Customer"))
	require.NoError(t, err)
	row, err := owner.First(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", row.Values["name"])

	_, err = NewQuery(db, orderType).Navigate(order, nil)
	assert.True(t, common.IsCode(err, common.ErrInvalidOperation))
}
