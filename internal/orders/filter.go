package orders

import (
	"time"

	"perrada/internal/models"
	"perrada/internal/money"
)

type FilterMode string

const (
	FilterCurrentShift FilterMode = "current-shift"
	FilterToday        FilterMode = "today"
	FilterLast7Days    FilterMode = "last-7-days"
	FilterAll          FilterMode = "all"

	DefaultFilter = FilterCurrentShift
)

// FilterCookie stores the admin's last filter choice.
const FilterCookie = "order_filter"

func ParseFilterMode(raw string) (FilterMode, bool) {
	switch mode := FilterMode(raw); mode {
	case FilterCurrentShift, FilterToday, FilterLast7Days, FilterAll:
		return mode, true
	}
	return "", false
}

type FilterResult struct {
	Mode           FilterMode   `json:"mode"`
	Orders         []BoardOrder `json:"orders"`
	Count          int          `json:"count"`
	HasActiveShift bool         `json:"hasActiveShift"`
	// NoActiveShift is set when current-shift was asked for while no
	// shift is running. Orders is empty in that case; it never falls
	// back to another mode.
	NoActiveShift bool       `json:"noActiveShift"`
	Since         *time.Time `json:"since,omitempty"`
}

// Cutoff returns the lower orderDate bound for mode. ok is false when
// mode is current-shift and there is no active shift.
func Cutoff(mode FilterMode, settings models.ShopSettings, now time.Time, loc *time.Location) (since *time.Time, ok bool) {
	switch mode {
	case FilterCurrentShift:
		if !settings.HasActiveShift() {
			return nil, false
		}
		start := *settings.ShiftStartAt
		return &start, true
	case FilterToday:
		start := money.StartOfDay(now, loc)
		return &start, true
	case FilterLast7Days:
		start := money.StartOfDay(now, loc).AddDate(0, 0, -6)
		return &start, true
	}
	return nil, true
}

// ApplyFilter keeps the orders whose orderDate falls inside mode.
func ApplyFilter(orders []BoardOrder, mode FilterMode, settings models.ShopSettings, now time.Time, loc *time.Location) FilterResult {
	result := FilterResult{
		Mode:           mode,
		Orders:         []BoardOrder{},
		HasActiveShift: settings.HasActiveShift(),
	}

	since, ok := Cutoff(mode, settings, now, loc)
	if !ok {
		result.NoActiveShift = true
		return result
	}
	result.Since = since

	for _, order := range orders {
		if since != nil && order.OrderDate.Before(*since) {
			continue
		}
		result.Orders = append(result.Orders, order)
	}
	result.Count = len(result.Orders)
	return result
}
