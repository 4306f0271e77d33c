package domain

import "github.com/shopspring/decimal"

var (
	// ShippingThreshold is the subtotal above which shipping is free.
	ShippingThreshold = decimal.NewFromInt(100)
	// FlatShippingFee applies to subtotals at or below ShippingThreshold.
	FlatShippingFee = decimal.NewFromInt(10)
)

// PricedLine is a line item with its resolved unit price.
type PricedLine struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals is the computed price breakdown of an order.
type Totals struct {
	Currency Currency
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals prices lines under the fixed storefront policy:
// free shipping strictly above ShippingThreshold, otherwise FlatShippingFee,
// and zero tax. The currency is only a label.
func CalculateTotals(lines []PricedLine, currency Currency) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(minorDigits)

	shipping := FlatShippingFee
	if subtotal.GreaterThan(ShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := decimal.Zero

	return Totals{
		Currency: currency,
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
