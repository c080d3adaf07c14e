package services

import (
	"github.com/shopspring/decimal"

	"nyumba/internal/domain"
)

// Totals is the money breakdown shared by cart quotes and orders.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// ShippingFor charges the flat fee below the free-shipping threshold.
func ShippingFor(subtotal int64, s domain.Settings) int64 {
	if subtotal < s.FreeShippingThreshold {
		return s.ShippingFee
	}
	return 0
}

// TaxFor rounds subtotal*rate half away from zero.
func TaxFor(subtotal int64, rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart()
}

// Price computes the totals for subtotal; discount is clamped to [0, subtotal].
func Price(subtotal, discount int64, s domain.Settings) Totals {
	discount = max(0, min(discount, subtotal))
	t := Totals{
		Subtotal: subtotal,
		Shipping: ShippingFor(subtotal, s),
		Tax:      TaxFor(subtotal, s.TaxRate),
		Discount: discount,
	}
	t.Total = decimal.NewFromInt(t.Subtotal).
		Add(decimal.NewFromInt(t.Shipping)).
		Add(decimal.NewFromInt(t.Tax)).
		Sub(decimal.NewFromInt(t.Discount)).
		IntPart()
	return t
}
