package core

import (
	"github.com/shopspring/decimal"

	"storefront-backend-go/internal/models"
)

// PricingRules holds the checkout constants.
type PricingRules struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFlatFee       decimal.Decimal
	TaxFixed              decimal.Decimal
}

// NewPricingRules builds rules from configuration amounts.
func NewPricingRules(freeShippingThreshold, shippingFlatFee, taxFixed float64) PricingRules {
	return PricingRules{
		FreeShippingThreshold: decimal.NewFromFloat(freeShippingThreshold),
		ShippingFlatFee:       decimal.NewFromFloat(shippingFlatFee),
		TaxFixed:              decimal.NewFromFloat(taxFixed),
	}
}

// PricedLine is the minimal input of ComputeTotals.
type PricedLine struct {
	Price float64
	Qty   int
}

// LineTotal returns price * qty rounded to cents.
func LineTotal(price float64, qty int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))).Round(2).InexactFloat64()
}

// ComputeTotals sums the lines and applies the shipping and tax rules.
// An empty set of lines totals zero.
func (r PricingRules) ComputeTotals(lines []PricedLine) models.Totals {
	if len(lines) == 0 {
		return models.Totals{}
	}

	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	subtotal = subtotal.Round(2)

	shipping := r.ShippingFlatFee
	if subtotal.GreaterThanOrEqual(r.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	total := subtotal.Add(shipping).Add(r.TaxFixed).Round(2)

	return models.Totals{
		Subtotal: subtotal.InexactFloat64(),
		Shipping: shipping.Round(2).InexactFloat64(),
		Tax:      r.TaxFixed.Round(2).InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}
