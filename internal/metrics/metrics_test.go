package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
)

var now = time.Date(2024, time.October, 17, 20, 0, 0, 0, time.UTC)

func order(status models.OrderStatus, total int64, at time.Time, items ...models.OrderItem) models.Order {
	return models.Order{
		ID:          primitive.NewObjectID(),
		Status:      status,
		TotalAmount: total,
		OrderDate:   at,
		Items:       items,
	}
}

func item(id primitive.ObjectID, name string, qty int, price int64) models.OrderItem {
	return models.OrderItem{ProductID: id, ProductName: name, Quantity: qty, UnitPrice: price}
}

func TestComputeAverageTicketZeroWithoutCompletedOrders(t *testing.T) {
	orders := []models.Order{
		order(models.StatusPendingPayment, 10000, now.Add(-time.Hour)),
		order(models.StatusPreparing, 20000, now.Add(-time.Hour)),
	}

	d := Compute(orders, models.ShopSettings{}, now, time.UTC)

	assert.Zero(t, d.AverageTicket)
	assert.Zero(t, d.TotalRevenue)
	assert.Equal(t, 2, d.ActiveOrders)
	assert.Equal(t, "$ 0", d.Formatted.AverageTicket)
}

func TestComputeEmptyOrderSet(t *testing.T) {
	d := Compute(nil, models.ShopSettings{}, now, time.UTC)

	assert.Zero(t, d.AverageTicket)
	assert.Empty(t, d.TopProducts)
	assert.Len(t, d.RecentSales, 7)
	assert.Empty(t, d.RecentOrders)
}

func TestComputeActiveVersusCompleted(t *testing.T) {
	orders := []models.Order{
		order(models.StatusPendingPayment, 1, now),
		order(models.StatusPreparing, 1, now),
		order(models.StatusReadyDelivery, 1, now),
		order(models.StatusCompleted, 1000, now),
		order(models.StatusCancelled, 5000, now),
	}

	d := Compute(orders, models.ShopSettings{}, now, time.UTC)

	assert.Equal(t, 3, d.ActiveOrders)
	assert.Equal(t, 1, d.CompletedOrders)
	assert.Equal(t, int64(1000), d.TotalRevenue)
}

func TestComputeShiftRevenueOnlyCountsOrdersSinceShiftStart(t *testing.T) {
	shiftStart := now.Add(-2 * time.Hour)
	settings := models.ShopSettings{IsOpen: true, ShiftStartAt: &shiftStart}
	orders := []models.Order{
		order(models.StatusCompleted, 10000, now.Add(-3*time.Hour)),
		order(models.StatusCompleted, 20000, shiftStart),
		order(models.StatusCompleted, 30000, now.Add(-time.Hour)),
		order(models.StatusPreparing, 40000, now.Add(-time.Hour)),
	}

	d := Compute(orders, settings, now, time.UTC)

	assert.True(t, d.HasActiveShift)
	assert.Equal(t, int64(50000), d.ShiftRevenue)
	assert.Equal(t, 2, d.ShiftOrders)
	assert.Equal(t, int64(60000), d.TotalRevenue)
}

func TestComputeShiftRevenueZeroWhenClosed(t *testing.T) {
	shiftStart := now.Add(-2 * time.Hour)
	settings := models.ShopSettings{IsOpen: false, ShiftStartAt: &shiftStart}
	orders := []models.Order{order(models.StatusCompleted, 10000, now)}

	d := Compute(orders, settings, now, time.UTC)

	assert.False(t, d.HasActiveShift)
	assert.Zero(t, d.ShiftRevenue)
}

func TestComputeAverageTicketRounds(t *testing.T) {
	orders := []models.Order{
		order(models.StatusCompleted, 10000, now),
		order(models.StatusCompleted, 10001, now),
	}

	d := Compute(orders, models.ShopSettings{}, now, time.UTC)

	assert.Equal(t, int64(10001), d.AverageTicket)
}

func TestComputeTodaySales(t *testing.T) {
	orders := []models.Order{
		order(models.StatusCompleted, 10000, now.Add(-30*time.Hour)),
		order(models.StatusCompleted, 20000, time.Date(2024, time.October, 17, 0, 0, 0, 0, time.UTC)),
		order(models.StatusPendingPayment, 5000, now),
	}

	d := Compute(orders, models.ShopSettings{}, now, time.UTC)

	assert.Equal(t, int64(20000), d.TodaySales)
	assert.Equal(t, 1, d.TodayOrders)
	assert.Equal(t, "$ 20.000", d.Formatted.TodaySales)
}

func TestComputeTopProductsRankedByUnits(t *testing.T) {
	ids := make([]primitive.ObjectID, 7)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}
	orders := []models.Order{
		order(models.StatusCompleted, 0, now,
			item(ids[0], "Perro", 1, 10000),
			item(ids[1], "Salchipapa", 6, 18000),
			item(ids[2], "Gaseosa", 3, 4000),
		),
		order(models.StatusCompleted, 0, now,
			item(ids[0], "Perro", 4, 10000),
			item(ids[3], "Hamburguesa", 2, 20000),
			item(ids[4], "Papas", 2, 6000),
			item(ids[5], "Jugo", 1, 5000),
		),
		order(models.StatusPendingPayment, 0, now, item(ids[6], "Malteada", 50, 9000)),
	}

	d := Compute(orders, models.ShopSettings{}, now, time.UTC)

	require.Len(t, d.TopProducts, 5)
	names := make([]string, 0, 5)
	for _, p := range d.TopProducts {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Salchipapa", "Perro", "Gaseosa", "Hamburguesa", "Papas"}, names)
	assert.Equal(t, 5, d.TopProducts[1].Units)
	assert.Equal(t, int64(50000), d.TopProducts[1].Revenue)
}

func TestComputeRecentSalesSeries(t *testing.T) {
	orders := []models.Order{
		order(models.StatusCompleted, 1000, now),
		order(models.StatusCompleted, 2000, now.AddDate(0, 0, -1)),
		order(models.StatusCompleted, 4000, now.AddDate(0, 0, -6)),
		order(models.StatusCompleted, 8000, now.AddDate(0, 0, -7)),
		order(models.StatusCancelled, 9999, now),
	}

	d := Compute(orders, models.ShopSettings{}, now, time.UTC)

	require.Len(t, d.RecentSales, 7)
	assert.Equal(t, DailySales{Date: "11 oct", Total: 4000}, d.RecentSales[0])
	assert.Equal(t, DailySales{Date: "16 oct", Total: 2000}, d.RecentSales[5])
	assert.Equal(t, DailySales{Date: "17 oct", Total: 1000}, d.RecentSales[6])
}

func TestComputeRecentOrdersNewestFirst(t *testing.T) {
	var orders []models.Order
	for i := 0; i < 7; i++ {
		orders = append(orders, order(models.StatusPendingPayment, int64(i), now.Add(time.Duration(i)*time.Minute)))
	}

	d := Compute(orders, models.ShopSettings{}, now, time.UTC)

	require.Len(t, d.RecentOrders, 5)
	assert.Equal(t, int64(6), d.RecentOrders[0].TotalAmount)
	assert.Equal(t, int64(2), d.RecentOrders[4].TotalAmount)
}
