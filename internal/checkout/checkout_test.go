package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"perrada/internal/cart"
	"perrada/internal/models"
	"perrada/internal/store/mock_store"
)

var details = Details{
	CustomerName:    "Ana Pérez",
	CustomerPhone:   "3001234567",
	CustomerAddress: "Calle 10 # 5-20",
	PaymentMethod:   models.PaymentCash,
}

func setup(t *testing.T) (*Service, *cart.Registry, *mock_store.MockOrderRepository, *mock_store.MockSettingsRepository) {
	ctrl := gomock.NewController(t)
	orders := mock_store.NewMockOrderRepository(ctrl)
	settings := mock_store.NewMockSettingsRepository(ctrl)
	carts := cart.NewRegistry()
	return NewService(carts, orders, settings), carts, orders, settings
}

func TestSubmitCreatesPendingOrderWithCartTotals(t *testing.T) {
	svc, carts, orders, settings := setup(t)
	a := models.Product{ID: primitive.NewObjectID(), Name: "A", Price: 8000}
	b := models.Product{ID: primitive.NewObjectID(), Name: "B", Price: 15000}
	carts.Add("s1", a)
	carts.Add("s1", a)
	carts.Add("s1", b)

	settings.EXPECT().Get(gomock.Any()).Return(models.ShopSettings{IsOpen: true}, nil)
	orders.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, o models.Order) (models.Order, error) {
			o.ID = primitive.NewObjectID()
			return o, nil
		})

	order, err := svc.Submit(context.Background(), "s1", details)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPendingPayment, order.Status)
	assert.Equal(t, int64(31000), order.TotalAmount)
	assert.Equal(t, models.PaymentCash, order.PaymentMethod)
	assert.Equal(t, "s1", order.CustomerID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int64(8000), order.Items[0].UnitPrice)

	assert.Zero(t, carts.Snapshot("s1").TotalItems)
}

func TestSubmitRefusedWhenShopClosed(t *testing.T) {
	svc, carts, _, settings := setup(t)
	carts.Add("s1", models.Product{ID: primitive.NewObjectID(), Price: 1})
	settings.EXPECT().Get(gomock.Any()).Return(models.ShopSettings{IsOpen: false}, nil)

	_, err := svc.Submit(context.Background(), "s1", details)

	assert.ErrorIs(t, err, cart.ErrShopClosed)
	assert.Equal(t, 1, carts.Snapshot("s1").TotalItems)
}

func TestSubmitRefusesEmptyCart(t *testing.T) {
	svc, _, _, settings := setup(t)
	settings.EXPECT().Get(gomock.Any()).Return(models.ShopSettings{IsOpen: true}, nil)

	_, err := svc.Submit(context.Background(), "s1", details)

	assert.ErrorIs(t, err, cart.ErrEmptyCart)
}

func TestSubmitKeepsCartWhenStoreFails(t *testing.T) {
	svc, carts, orders, settings := setup(t)
	carts.Add("s1", models.Product{ID: primitive.NewObjectID(), Price: 1})
	settings.EXPECT().Get(gomock.Any()).Return(models.ShopSettings{IsOpen: true}, nil)
	orders.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.Order{}, errors.New("insert failed"))

	_, err := svc.Submit(context.Background(), "s1", details)

	assert.Error(t, err)
	assert.Equal(t, 1, carts.Snapshot("s1").TotalItems)
}

func TestInstructionsFor(t *testing.T) {
	accounts := []models.PaymentAccount{{Bank: "Nequi", Number: "316-123-4567"}}

	transfer := InstructionsFor(models.PaymentTransfer, accounts)
	assert.Equal(t, accounts, transfer.Accounts)
	assert.Contains(t, transfer.Message, "comprobante")

	cash := InstructionsFor(models.PaymentCash, accounts)
	assert.Empty(t, cash.Accounts)
	assert.Contains(t, cash.Message, "efectivo")
}
