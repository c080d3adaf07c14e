package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyumba/internal/domain"
)

func TestSettingsPartialUpdate(t *testing.T) {
	f := newFixture(t)
	s, err := f.settings.Get(ctx())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings().SiteName, s.SiteName)

	s, err = f.settings.Update(ctx(), SettingsInput{
		Currency:    ptr("usd"),
		ShippingFee: ptr(int64(500)),
		Features:    map[string]bool{"tips": false},
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, int64(500), s.ShippingFee)
	assert.False(t, s.Features["tips"])
	assert.True(t, s.Features["testimonials"])

	again, err := f.settings.Get(ctx())
	require.NoError(t, err)
	assert.Equal(t, s.Currency, again.Currency)
	assert.Equal(t, s.SiteName, again.SiteName)
}

func TestSettingsValidation(t *testing.T) {
	f := newFixture(t)
	cases := map[string]SettingsInput{
		"Site name is required":               {SiteName: ptr("  ")},
		"Invalid contact email":               {ContactEmail: ptr("nope")},
		"Shipping amounts cannot be negative": {ShippingFee: ptr(int64(-1))},
		"Tax rate must be between 0 and 1":    {TaxRate: ptr(1.5)},
	}
	for want, in := range cases {
		_, err := f.settings.Update(ctx(), in)
		assert.EqualError(t, err, want)
	}
}

func TestSettingsFeedOrderPricing(t *testing.T) {
	f := newFixture(t)
	_, err := f.settings.Update(ctx(), SettingsInput{FreeShippingThreshold: ptr(int64(10000)), TaxRate: ptr(0.16)})
	require.NoError(t, err)

	o, err := f.orders.Place(ctx(), orderInput(OrderItemInput{ProductID: tableID, Quantity: 1}))
	require.NoError(t, err)
	assert.Equal(t, int64(0), o.Shipping)
	assert.Equal(t, int64(5120), o.Tax)
	assert.Equal(t, int64(37120), o.Total)
}
