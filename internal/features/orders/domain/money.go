package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// minorDigits is the number of fractional digits of every supported currency.
const minorDigits = 2

// ErrAmountOutOfRange is returned when an amount does not fit in int64 minor units.
var ErrAmountOutOfRange = errors.New("amount out of range")

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ToMinor converts an amount to integer minor units, rounding half away from zero.
func ToMinor(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(minorDigits).Round(0)
	if shifted.GreaterThan(maxMinor) || shifted.LessThan(minMinor) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount.String())
	}
	return shifted.IntPart(), nil
}

// FromMinor converts integer minor units back to an amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorDigits)
}

// CheckAmounts reports every order amount that cannot be stored in minor units,
// including each item's unit price and line total.
func (o *Order) CheckAmounts() error {
	var problems []string
	check := func(field string, amount decimal.Decimal) {
		if _, err := ToMinor(amount); err != nil {
			problems = append(problems, field+": amount is too large")
		}
	}

	for i, item := range o.Items {
		check(fmt.Sprintf("items[%d].unit_price", i), item.UnitPrice)
		check(fmt.Sprintf("items[%d].line_total", i), item.LineTotal())
	}
	check("subtotal", o.Subtotal)
	check("shipping", o.Shipping)
	check("tax", o.Tax)
	check("total", o.Total)

	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}
