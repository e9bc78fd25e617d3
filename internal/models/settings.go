package models

import "time"

// ShopSettings is the singleton settings/shop document. It is read per
// request and passed explicitly to whatever needs it.
type ShopSettings struct {
	IsOpen       bool       `bson:"isOpen" json:"isOpen"`
	ShiftStartAt *time.Time `bson:"shiftStartAt,omitempty" json:"shiftStartAt,omitempty"`
}

// HasActiveShift is true when the shop is open and a shift start exists.
func (s ShopSettings) HasActiveShift() bool {
	return s.IsOpen && s.ShiftStartAt != nil && !s.ShiftStartAt.IsZero()
}
