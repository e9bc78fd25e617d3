// Package money formats whole-peso amounts and day labels for the
// es-CO locale.
package money

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var locale = language.MustParse("es-CO")

// Format renders amount as Colombian pesos with no decimals, for example
// "$ 1.500.000".
func Format(amount int64) string {
	p := message.NewPrinter(locale)
	if amount < 0 {
		return "-$ " + p.Sprint(number.Decimal(-amount, number.MaxFractionDigits(0)))
	}
	return "$ " + p.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
}

var shortMonths = [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// DayLabel renders t as a short day and month, "17 oct".
func DayLabel(t time.Time) string {
	return fmt.Sprintf("%d %s", t.Day(), shortMonths[t.Month()-1])
}

// DayKey identifies the calendar day of t in its own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// StartOfDay is local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
