package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	q "github.com/teamkeel/dataservice/query"
	"github.com/teamkeel/dataservice/runtime/common"
	"github.com/teamkeel/dataservice/testhelpers"
)

func TestGet(t *testing.T) {
	scope, db := newScope(t, AllowAll{}, DefaultOptions())
	seed(t, db)

	order, err := Get(scope, GetInput{
		ResourceSet: "Orders",
		Key:         q.KeyDescriptor{"Id": 4},
		Expand:      []string{"Customer_Customer", "Lines"},
	})
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, int64(4), order.Values["id"])

	customer, ok := order.Related("Customer")
	require.True(t, ok)
	assert.Equal(t, "Grace", customer.Values["name"])

	lines, ok := order.RelatedMany("Lines")
	require.True(t, ok)
	assert.Equal(t, []int64{4}, ids(lines))
}

func TestGet_Where(t *testing.T) {
	scope, db := newScope(t, AllowAll{}, DefaultOptions())
	seed(t, db)

	order, err := Get(scope, GetInput{
		ResourceSet: "Orders",
		Key:         q.KeyDescriptor{"Id": 4},
		Where:       map[string]any{"status": "shipped"},
	})
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestGet_NotFound(t *testing.T) {
	scope, db := newScope(t, AllowAll{}, DefaultOptions())
	seed(t, db)

	order, err := Get(scope, GetInput{ResourceSet: "Orders", Key: q.KeyDescriptor{"Id": 99}})
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestGet_PermissionDeniedDoesNotQuery(t *testing.T) {
	scope, db := newScope(t, denyAll{}, DefaultOptions())
	seed(t, db)
	queries := testhelpers.CountQueries(t, db)

	order, err := Get(scope, GetInput{ResourceSet: "Orders", Key: q.KeyDescriptor{"Id": 1}})
	assert.Nil(t, order)
	assert.True(t, common.IsCode(err, common.ErrPermissionDenied))
	assert.Equal(t, int64(0), queries.Load())
}

func TestGet_UnknownSet(t *testing.T) {
	scope, _ := newScope(t, AllowAll{}, DefaultOptions())

	_, err := Get(scope, GetInput{ResourceSet: "Invoices", Key: q.KeyDescriptor{"Id": 1}})
	assert.EqualError(t, err, "ERR_INVALID_ARGUMENT: unknown resource set 'Invoices'")
}
