package formatter

import (
	"testing"
	"time"

	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

func init() {
	color.NoColor = true
}

func TestMoney(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "0 ₫"},
		{"999", "999 ₫"},
		{"1000", "1.000 ₫"},
		{"150000", "150.000 ₫"},
		{"1250000", "1.250.000 ₫"},
		{"1250000.6", "1.250.001 ₫"},
		{"-45000", "-45.000 ₫"},
		{"123456789", "123.456.789 ₫"},
	}

	for _, tt := range tests {
		got := Money(decimal.RequireFromString(tt.amount))
		if got != tt.want {
			t.Errorf("Money(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestPrice(t *testing.T) {
	plain := models.Product{Price: decimal.NewFromInt(200000)}
	if got := Price(plain); got != "200.000 ₫" {
		t.Errorf("Price(plain) = %q", got)
	}

	discounted := models.Product{Price: decimal.NewFromInt(450000), DiscountPrice: decimal.NewFromInt(400000)}
	if got := Price(discounted); got != "400.000 ₫ (was 450.000 ₫)" {
		t.Errorf("Price(discounted) = %q", got)
	}
}

func TestStars(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{0, "☆☆☆☆☆"},
		{3, "★★★☆☆"},
		{4.6, "★★★★★"},
		{7, "★★★★★"},
		{-1, "☆☆☆☆☆"},
	}
	for _, tt := range tests {
		if got := Stars(tt.rating); got != tt.want {
			t.Errorf("Stars(%v) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}

func TestStock(t *testing.T) {
	tests := []struct {
		stock int
		want  string
	}{
		{0, "out of stock"},
		{3, "only 3 left"},
		{12, "12 in stock"},
	}
	for _, tt := range tests {
		if got := Stock(tt.stock); got != tt.want {
			t.Errorf("Stock(%d) = %q, want %q", tt.stock, got, tt.want)
		}
	}
}

func TestOrderStatus(t *testing.T) {
	for _, status := range models.OrderStatuses {
		if got := OrderStatus(status); got != status {
			t.Errorf("OrderStatus(%q) = %q without color", status, got)
		}
	}
}

func TestDate(t *testing.T) {
	if got := Date(nil); got != "" {
		t.Errorf("Date(nil) = %q", got)
	}
	d := time.Date(2024, 3, 9, 12, 0, 0, 0, time.Local)
	if got := Date(&d); got != "09/03/2024" {
		t.Errorf("Date = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Áo thun", 10, "Áo thun"},
		{"Áo thun cổ tròn", 7, "Áo thu…"},
		{"abc", 1, "…"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
