package services

import (
	"context"
	"strings"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
	"nyumba/internal/repos"
	"nyumba/internal/validate"
)

// SettingsInput carries a partial update; nil fields keep their value.
type SettingsInput struct {
	SiteName              *string             `json:"siteName"`
	SiteDescription       *string             `json:"siteDescription"`
	ContactEmail          *string             `json:"contactEmail"`
	ContactPhone          *string             `json:"contactPhone"`
	WhatsAppNumber        *string             `json:"whatsappNumber"`
	Address               *string             `json:"address"`
	Currency              *string             `json:"currency"`
	ShippingFee           *int64              `json:"shippingFee"`
	FreeShippingThreshold *int64              `json:"freeShippingThreshold"`
	TaxRate               *float64            `json:"taxRate"`
	Social                *domain.SocialLinks `json:"social"`
	Features              map[string]bool     `json:"features"`
}

type SettingsService struct {
	Repo *repos.SettingsRepo
}

func NewSettingsService(repo *repos.SettingsRepo) *SettingsService {
	return &SettingsService{Repo: repo}
}

// Get returns the settings, creating the default document on first use.
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	st, err := s.Repo.Load(ctx)
	if err != nil {
		return domain.Settings{}, apperr.Upstream("Failed to fetch settings", err)
	}
	return st, nil
}

func (s *SettingsService) Update(ctx context.Context, in SettingsInput) (domain.Settings, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	setString(&st.SiteName, in.SiteName)
	setString(&st.SiteDescription, in.SiteDescription)
	setString(&st.ContactEmail, in.ContactEmail)
	setString(&st.ContactPhone, in.ContactPhone)
	setString(&st.WhatsAppNumber, in.WhatsAppNumber)
	setString(&st.Address, in.Address)
	setString(&st.Currency, in.Currency)
	if in.ShippingFee != nil {
		st.ShippingFee = *in.ShippingFee
	}
	if in.FreeShippingThreshold != nil {
		st.FreeShippingThreshold = *in.FreeShippingThreshold
	}
	if in.TaxRate != nil {
		st.TaxRate = *in.TaxRate
	}
	if in.Social != nil {
		st.Social = *in.Social
	}
	if st.Features == nil {
		st.Features = map[string]bool{}
	}
	for k, v := range in.Features {
		st.Features[k] = v
	}

	if st.SiteName == "" {
		return domain.Settings{}, apperr.Validation("Site name is required")
	}
	if st.ContactEmail != "" {
		if _, ok := validate.Email(st.ContactEmail); !ok {
			return domain.Settings{}, apperr.Validation("Invalid contact email")
		}
	}
	if st.ShippingFee < 0 || st.FreeShippingThreshold < 0 {
		return domain.Settings{}, apperr.Validation("Shipping amounts cannot be negative")
	}
	if st.TaxRate < 0 || st.TaxRate > 1 {
		return domain.Settings{}, apperr.Validation("Tax rate must be between 0 and 1")
	}
	st.Currency = strings.ToUpper(st.Currency)
	st.UpdatedAt = domain.Now()

	if err := s.Repo.Save(ctx, st); err != nil {
		return domain.Settings{}, apperr.Upstream("Failed to update settings", err)
	}
	return st, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
