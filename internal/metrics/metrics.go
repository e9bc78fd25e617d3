// Package metrics aggregates the admin dashboard from the full order set.
package metrics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"perrada/internal/models"
	"perrada/internal/money"
)

const (
	topProductsLimit  = 5
	recentOrdersLimit = 5
	salesSeriesDays   = 7
)

type ProductSales struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Units     int    `json:"sales"`
	Revenue   int64  `json:"revenue"`
}

type DailySales struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

type Dashboard struct {
	ActiveOrders    int   `json:"activeOrders"`
	CompletedOrders int   `json:"completedOrders"`
	TodaySales      int64 `json:"todaySales"`
	TodayOrders     int   `json:"todayOrders"`
	ShiftRevenue    int64 `json:"shiftRevenue"`
	ShiftOrders     int   `json:"shiftOrders"`
	HasActiveShift  bool  `json:"hasActiveShift"`
	TotalRevenue    int64 `json:"totalSales"`
	AverageTicket   int64 `json:"avgTicket"`

	TopProducts  []ProductSales `json:"topProducts"`
	RecentSales  []DailySales   `json:"recentSales"`
	RecentOrders []models.Order `json:"recentOrders"`

	Formatted Formatted `json:"formatted"`
}

// Formatted holds the money fields rendered as es-CO currency.
type Formatted struct {
	TodaySales    string `json:"todaySales"`
	ShiftRevenue  string `json:"shiftRevenue"`
	TotalRevenue  string `json:"totalSales"`
	AverageTicket string `json:"avgTicket"`
}

// Compute aggregates orders for the dashboard. Revenue only counts
// COMPLETADO orders; active means any non-terminal status. Days are cut
// at midnight in loc.
func Compute(orders []models.Order, settings models.ShopSettings, now time.Time, loc *time.Location) Dashboard {
	today := money.StartOfDay(now, loc)
	seriesStart := today.AddDate(0, 0, -(salesSeriesDays - 1))

	d := Dashboard{HasActiveShift: settings.HasActiveShift()}

	series := make([]DailySales, salesSeriesDays)
	seriesIndex := make(map[string]int, salesSeriesDays)
	for i := 0; i < salesSeriesDays; i++ {
		day := seriesStart.AddDate(0, 0, i)
		series[i] = DailySales{Date: money.DayLabel(day)}
		seriesIndex[money.DayKey(day)] = i
	}

	byProduct := make(map[string]*ProductSales)

	for _, order := range orders {
		if order.Status.IsActive() {
			d.ActiveOrders++
		}
		if order.Status != models.StatusCompleted {
			continue
		}

		d.CompletedOrders++
		d.TotalRevenue += order.TotalAmount

		if !order.OrderDate.Before(today) {
			d.TodaySales += order.TotalAmount
			d.TodayOrders++
		}
		if d.HasActiveShift && !order.OrderDate.Before(*settings.ShiftStartAt) {
			d.ShiftRevenue += order.TotalAmount
			d.ShiftOrders++
		}
		if i, ok := seriesIndex[money.DayKey(order.OrderDate.In(loc))]; ok {
			series[i].Total += order.TotalAmount
		}

		for _, item := range order.Items {
			key := item.ProductID.Hex()
			entry, ok := byProduct[key]
			if !ok {
				entry = &ProductSales{ProductID: key, Name: item.ProductName}
				byProduct[key] = entry
			}
			entry.Units += item.Quantity
			entry.Revenue += int64(item.Quantity) * item.UnitPrice
		}
	}

	if d.CompletedOrders > 0 {
		d.AverageTicket = decimal.NewFromInt(d.TotalRevenue).
			Div(decimal.NewFromInt(int64(d.CompletedOrders))).
			Round(0).
			IntPart()
	}

	d.TopProducts = topProducts(byProduct)
	d.RecentSales = series
	d.RecentOrders = recentOrders(orders)
	d.Formatted = Formatted{
		TodaySales:    money.Format(d.TodaySales),
		ShiftRevenue:  money.Format(d.ShiftRevenue),
		TotalRevenue:  money.Format(d.TotalRevenue),
		AverageTicket: money.Format(d.AverageTicket),
	}
	return d
}

func topProducts(byProduct map[string]*ProductSales) []ProductSales {
	ranked := make([]ProductSales, 0, len(byProduct))
	for _, entry := range byProduct {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Units != b.Units {
			return a.Units > b.Units
		}
		if a.Revenue != b.Revenue {
			return a.Revenue > b.Revenue
		}
		return a.Name < b.Name
	})
	if len(ranked) > topProductsLimit {
		ranked = ranked[:topProductsLimit]
	}
	return ranked
}

func recentOrders(orders []models.Order) []models.Order {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderDate.After(sorted[j].OrderDate)
	})
	if len(sorted) > recentOrdersLimit {
		sorted = sorted[:recentOrdersLimit]
	}
	return sorted
}
