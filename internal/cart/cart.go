// Package cart keeps session-scoped shopping carts in memory. Carts are
// never persisted: a restart empties every cart.
package cart

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
)

var (
	ErrShopClosed = errors.New("shop is closed")
	ErrEmptyCart  = errors.New("cart is empty")
)

// Line is one product in the cart with the snapshot taken when it was
// first added.
type Line struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal is quantity times the snapshot price.
func (l Line) Subtotal() int64 {
	return int64(l.Quantity) * l.Product.Price
}

type Cart struct {
	lines map[primitive.ObjectID]*Line
	order []primitive.ObjectID
}

func New() *Cart {
	return &Cart{lines: make(map[primitive.ObjectID]*Line)}
}

// Add increments the quantity of a product already in the cart, or
// inserts it with quantity 1.
func (c *Cart) Add(product models.Product) {
	if line, ok := c.lines[product.ID]; ok {
		line.Quantity++
		return
	}
	c.lines[product.ID] = &Line{Product: product, Quantity: 1}
	c.order = append(c.order, product.ID)
}

func (c *Cart) Remove(productID primitive.ObjectID) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// SetQuantity sets the quantity of a line; zero or less removes it.
// It reports false when the product is not in the cart.
func (c *Cart) SetQuantity(productID primitive.ObjectID, quantity int) bool {
	line, ok := c.lines[productID]
	if !ok {
		return false
	}
	if quantity <= 0 {
		c.Remove(productID)
		return true
	}
	line.Quantity = quantity
	return true
}

func (c *Cart) Clear() {
	c.lines = make(map[primitive.ObjectID]*Line)
	c.order = nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Snapshot is the JSON view of a cart.
type Snapshot struct {
	Lines      []Line `json:"items"`
	TotalItems int    `json:"totalItems"`
	TotalPrice int64  `json:"totalPrice"`
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Lines:      c.Lines(),
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}

// OrderItems converts the cart into the immutable price snapshot stored
// on an order.
func (c *Cart) OrderItems() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.order))
	for _, line := range c.Lines() {
		items = append(items, models.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.Price,
		})
	}
	return items
}
