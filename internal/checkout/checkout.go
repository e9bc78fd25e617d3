// Package checkout turns a session cart into an order.
package checkout

import (
	"context"
	"log"
	"strings"

	"perrada/internal/cart"
	"perrada/internal/models"
	"perrada/internal/store"
)

type Details struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	PaymentMethod   models.PaymentMethod
	Notes           string
}

type Service struct {
	carts    *cart.Registry
	orders   store.OrderRepository
	settings store.SettingsRepository
}

func NewService(carts *cart.Registry, orders store.OrderRepository, settings store.SettingsRepository) *Service {
	return &Service{carts: carts, orders: orders, settings: settings}
}

// Submit stores an order for the session cart and empties the cart. The
// order starts waiting for payment with the cart's prices frozen in.
func (s *Service) Submit(ctx context.Context, sessionID string, d Details) (models.Order, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.Order{}, err
	}
	if !settings.IsOpen {
		return models.Order{}, cart.ErrShopClosed
	}

	var created models.Order
	err = s.carts.Checkout(sessionID, func(c *cart.Cart) error {
		if c.IsEmpty() {
			return cart.ErrEmptyCart
		}

		order := models.Order{
			CustomerID:      sessionID,
			CustomerName:    strings.TrimSpace(d.CustomerName),
			CustomerPhone:   strings.TrimSpace(d.CustomerPhone),
			CustomerAddress: strings.TrimSpace(d.CustomerAddress),
			Items:           c.OrderItems(),
			TotalAmount:     c.TotalPrice(),
			PaymentMethod:   d.PaymentMethod,
			Status:          models.StatusPendingPayment,
			Notes:           strings.TrimSpace(d.Notes),
		}

		var err error
		created, err = s.orders.Create(ctx, order)
		return err
	})
	if err != nil {
		return models.Order{}, err
	}

	log.Printf("[CHECKOUT] [INFO] order %s created: %d items, total %d", created.ID.Hex(), len(created.Items), created.TotalAmount)
	return created, nil
}
