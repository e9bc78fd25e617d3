package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "EFECTIVO"
	PaymentTransfer PaymentMethod = "TRANSFERENCIA"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentTransfer
}

// PaymentAccount is a bank or wallet account shown to customers who pay
// by transfer.
type PaymentAccount struct {
	Bank   string `json:"bank"`
	Number string `json:"number"`
}

// OrderItem is the price snapshot taken at checkout. It never changes.
type OrderItem struct {
	ProductID   primitive.ObjectID `bson:"productId" json:"productId"`
	ProductName string             `bson:"productName" json:"productName"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	UnitPrice   int64              `bson:"unitPrice" json:"unitPrice"`
}

// Order defines the persisted order document.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID      string             `bson:"customerId" json:"customerId"`
	CustomerName    string             `bson:"customerName" json:"customerName"`
	CustomerPhone   string             `bson:"customerPhone" json:"customerPhone"`
	CustomerAddress string             `bson:"customerAddress" json:"customerAddress"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     int64              `bson:"totalAmount" json:"totalAmount"`
	PaymentMethod   PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Status          OrderStatus        `bson:"status" json:"status"`
	OrderDate       time.Time          `bson:"orderDate" json:"orderDate"`
	ConfirmedAt     *time.Time         `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	ReadyAt         *time.Time         `bson:"readyAt,omitempty" json:"readyAt,omitempty"`
	CompletedAt     *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ShortID is the five character prefix printed on tickets.
func (o Order) ShortID() string {
	hex := o.ID.Hex()
	if len(hex) < 5 {
		return hex
	}
	return hex[:5]
}

// WithStatus returns a copy of o moved to status, stamping the
// transition timestamp at.
func (o Order) WithStatus(status OrderStatus, at time.Time) Order {
	o.Status = status
	ts := at
	switch status {
	case StatusPreparing:
		o.ConfirmedAt = &ts
	case StatusReadyDelivery:
		o.ReadyAt = &ts
	case StatusCompleted:
		o.CompletedAt = &ts
	}
	return o
}
