// Package formatter renders storefront values for the terminal.
package formatter

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

var (
	Bold    = color.New(color.Bold)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
	Faint   = color.New(color.Faint)
)

// Money formats an amount in đồng: rounded to the unit, dot-grouped
// thousands, trailing ₫. 1250000 becomes "1.250.000 ₫".
func Money(amount decimal.Decimal) string {
	s := amount.Round(0).String()

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteString(" ₫")
	return b.String()
}

// Price shows the effective price, followed by the list price when a
// discount applies.
func Price(p models.Product) string {
	effective := p.EffectivePrice()
	if effective.Equal(p.Price) {
		return Money(p.Price)
	}
	return Money(effective) + " (was " + Money(p.Price) + ")"
}

// OrderStatus returns a colored label for an order status
func OrderStatus(status string) string {
	switch status {
	case models.OrderDelivered:
		return Success.Sprint(status)
	case models.OrderCancelled:
		return Error.Sprint(status)
	case models.OrderShipping, models.OrderPreparing:
		return Info.Sprint(status)
	case models.OrderPending, models.OrderConfirmed:
		return Warning.Sprint(status)
	default:
		return status
	}
}

// Stars renders a 1-5 rating
func Stars(rating float64) string {
	n := int(rating + 0.5)
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// Stock describes availability
func Stock(stock int) string {
	switch {
	case stock <= 0:
		return Error.Sprint("out of stock")
	case stock < 5:
		return Warning.Sprintf("only %d left", stock)
	default:
		return Success.Sprintf("%d in stock", stock)
	}
}

// Date formats t as dd/mm/yyyy, empty for nil
func Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Local().Format("02/01/2006")
}

// Truncate shortens s to max runes, ending with an ellipsis
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
