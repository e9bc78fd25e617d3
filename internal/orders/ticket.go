package orders

import (
	"fmt"
	"strings"
	"time"

	"perrada/internal/models"
	"perrada/internal/money"
)

const (
	ticketShop  = "LA PERRADA DE WILLIAM"
	ticketWidth = 32
)

// Ticket renders the kitchen ticket for order as plain text.
func Ticket(order models.Order, loc *time.Location) string {
	var b strings.Builder
	rule := strings.Repeat("-", ticketWidth)

	center(&b, ticketShop)
	center(&b, "TICKET DE COCINA")
	center(&b, "Pedido: #"+order.ShortID())
	if order.OrderDate.IsZero() {
		center(&b, "N/A")
	} else {
		center(&b, order.OrderDate.In(loc).Format("02/01/2006, 15:04"))
	}
	b.WriteString(rule + "\n")

	b.WriteString("CLIENTE:\n")
	for _, line := range []string{order.CustomerName, order.CustomerAddress, order.CustomerPhone} {
		if line != "" {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString(rule + "\n")

	if notes := strings.TrimSpace(order.Notes); notes != "" {
		b.WriteString("NOTA:\n")
		b.WriteString(notes + "\n")
		b.WriteString(rule + "\n")
	}

	for _, item := range order.Items {
		left := fmt.Sprintf("%dx %s", item.Quantity, item.ProductName)
		right := money.Format(item.UnitPrice)
		pad := ticketWidth - len([]rune(left)) - len([]rune(right))
		if pad < 1 {
			pad = 1
		}
		b.WriteString(left + strings.Repeat(" ", pad) + right + "\n")
	}
	b.WriteString(rule + "\n")

	b.WriteString("TOTAL: " + money.Format(order.TotalAmount) + "\n")
	b.WriteString("Método: " + string(order.PaymentMethod) + "\n")
	return b.String()
}

func center(b *strings.Builder, text string) {
	pad := (ticketWidth - len([]rune(text))) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(text + "\n")
}
