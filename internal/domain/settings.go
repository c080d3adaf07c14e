package domain

import (
	"database/sql/driver"
	"encoding/json"
)

type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	TikTok    string `json:"tiktok,omitempty"`
}

// Settings is the singleton site configuration document.
type Settings struct {
	SiteName              string          `json:"siteName"`
	SiteDescription       string          `json:"siteDescription"`
	ContactEmail          string          `json:"contactEmail"`
	ContactPhone          string          `json:"contactPhone"`
	WhatsAppNumber        string          `json:"whatsappNumber"`
	Address               string          `json:"address"`
	Currency              string          `json:"currency"`
	ShippingFee           int64           `json:"shippingFee"`
	FreeShippingThreshold int64           `json:"freeShippingThreshold"`
	TaxRate               float64         `json:"taxRate"`
	Social                SocialLinks     `json:"social"`
	Features              map[string]bool `json:"features"`
	UpdatedAt             string          `json:"updatedAt,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		SiteName:              "Nyumba Furniture",
		SiteDescription:       "Handcrafted furniture for every room",
		ContactEmail:          "hello@nyumba.test",
		ContactPhone:          "+254700000000",
		WhatsAppNumber:        "254700000000",
		Address:               "Nairobi, Kenya",
		Currency:              "KES",
		ShippingFee:           15000,
		FreeShippingThreshold: 100000,
		TaxRate:               0,
		Features: map[string]bool{
			"whatsappCheckout": true,
			"testimonials":     true,
			"tips":             true,
		},
	}
}

func (s Settings) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *Settings) Scan(src any) error { return scanJSON(src, s) }
