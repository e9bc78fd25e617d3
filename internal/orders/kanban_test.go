package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perrada/internal/models"
)

func TestGroupKanban(t *testing.T) {
	orders := boardOrders(
		newOrder(models.StatusPendingPayment, base),
		newOrder(models.StatusPendingPayment, base),
		newOrder(models.StatusReadyDelivery, base),
		newOrder(models.StatusCancelled, base),
	)

	k := GroupKanban(orders)

	require.Len(t, k.Columns, 4)
	assert.Equal(t, models.StatusPendingPayment, k.Columns[0].Status)
	assert.Equal(t, "Nuevos Pedidos", k.Columns[0].Title)
	assert.Equal(t, 2, k.Columns[0].Count)
	assert.Equal(t, 0, k.Columns[1].Count)
	assert.NotNil(t, k.Columns[1].Orders)
	assert.Equal(t, 1, k.Columns[2].Count)
	assert.Equal(t, 0, k.Columns[3].Count)
	assert.Len(t, k.Cancelled, 1)
}
