package cmd

import (
	"strconv"

	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/shopspring/decimal"
)

func parseQuantity(s string) (int, error) {
	return parseInt("quantity", s)
}

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, clierrors.ValidationError(name, "must be a whole number")
	}
	return n, nil
}

// parseMoney reads a VND amount; empty means zero
func parseMoney(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, clierrors.ValidationError(name, "must be a non-negative amount")
	}
	return d, nil
}
