package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "PENDIENTE_PAGO"
	StatusPreparing      OrderStatus = "EN_PREPARACION"
	StatusReadyDelivery  OrderStatus = "LISTO_REPARTO"
	StatusCompleted      OrderStatus = "COMPLETADO"
	StatusCancelled      OrderStatus = "CANCELADO"
)

// KanbanColumns lists the statuses shown as board columns, in order.
// CANCELADO is a valid status but never gets a column.
var KanbanColumns = []OrderStatus{
	StatusPendingPayment,
	StatusPreparing,
	StatusReadyDelivery,
	StatusCompleted,
}

var nextStatus = map[OrderStatus]OrderStatus{
	StatusPendingPayment: StatusPreparing,
	StatusPreparing:      StatusReadyDelivery,
	StatusReadyDelivery:  StatusCompleted,
}

var prevStatus = map[OrderStatus]OrderStatus{
	StatusPreparing:     StatusPendingPayment,
	StatusReadyDelivery: StatusPreparing,
	StatusCompleted:     StatusReadyDelivery,
}

// legacyStatus maps values written by older storefront builds.
var legacyStatus = map[string]OrderStatus{
	"PENDIENTE":          StatusPendingPayment,
	"PAGADO":             StatusPreparing,
	"EN_COCINA":          StatusPreparing,
	"EN_CAMINO":          StatusReadyDelivery,
	"LISTO_PARA_RECOGER": StatusReadyDelivery,
	"ENTREGADO":          StatusCompleted,
}

// ParseOrderStatus accepts current and legacy spellings.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch s := OrderStatus(value); s {
	case StatusPendingPayment, StatusPreparing, StatusReadyDelivery, StatusCompleted, StatusCancelled:
		return s, nil
	}
	if s, ok := legacyStatus[value]; ok {
		return s, nil
	}
	return "", fmt.Errorf("unknown order status: %q", raw)
}

// Valid reports whether s is one of the five lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusPreparing, StatusReadyDelivery, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Next returns the forward transition, if one is offered.
func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

// Prev returns the "move back" transition, if one is offered.
func (s OrderStatus) Prev() (OrderStatus, bool) {
	p, ok := prevStatus[s]
	return p, ok
}

// IsTerminal is true for COMPLETADO and CANCELADO.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsActive is true while the kitchen still has work to do.
func (s OrderStatus) IsActive() bool {
	return s == StatusPendingPayment || s == StatusPreparing || s == StatusReadyDelivery
}

// TimestampField is the order field stamped when entering s.
func (s OrderStatus) TimestampField() string {
	switch s {
	case StatusPreparing:
		return "confirmedAt"
	case StatusReadyDelivery:
		return "readyAt"
	case StatusCompleted:
		return "completedAt"
	}
	return ""
}

// UnmarshalBSONValue lets old documents with legacy status names decode.
func (s *OrderStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null {
		*s = ""
		return nil
	}
	if t != bsontype.String {
		return fmt.Errorf("cannot decode %s into OrderStatus", t)
	}
	var raw string
	if err := bson.UnmarshalValue(t, data, &raw); err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalBSONValue always writes the canonical name.
func (s OrderStatus) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(string(s))
}
