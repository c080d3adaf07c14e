package handlers

import (
	"nyumba/internal/config"
	"nyumba/internal/media"
	"nyumba/internal/repos"
	"nyumba/internal/services"
)

type Deps struct {
	Pool               *repos.Pool
	Auth               *services.AuthService
	AuthHandler        *AuthHandler
	CategoryHandler    *CategoryHandler
	ProductHandler     *ProductHandler
	OrderHandler       *OrderHandler
	AdminHandler       *AdminHandler
	CartHandler        *CartHandler
	TipHandler         *TipHandler
	TestimonialHandler *TestimonialHandler
	SettingsHandler    *SettingsHandler
	UploadHandler      *UploadHandler
}

// NewDeps wires repositories, services and handlers over the pool's shared
// handle. The first caller to need the database opens it here.
func NewDeps(pool *repos.Pool, cfg config.Config) (*Deps, error) {
	db, err := pool.DB()
	if err != nil {
		return nil, err
	}
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	tipRepo := repos.NewTipRepo(db)
	testimonialRepo := repos.NewTestimonialRepo(db)
	settingsRepo := repos.NewSettingsRepo(db)
	userRepo := repos.NewUserRepo(db)

	authSvc := &services.AuthService{Users: userRepo}
	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	settingsSvc := services.NewSettingsService(settingsRepo)
	orderSvc := services.NewOrderService(orderRepo, prodRepo, settingsSvc)
	cartSvc := services.NewCartService(prodRepo, orderSvc, settingsSvc)

	return &Deps{
		Pool:               pool,
		Auth:               authSvc,
		AuthHandler:        &AuthHandler{Auth: authSvc, CookieSecure: cfg.CookieSecure},
		CategoryHandler:    &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:     &ProductHandler{Catalog: catalogSvc},
		OrderHandler:       &OrderHandler{Order: orderSvc},
		AdminHandler:       &AdminHandler{Orders: orderSvc},
		CartHandler:        &CartHandler{Cart: cartSvc},
		TipHandler:         &TipHandler{Tips: services.NewTipService(tipRepo)},
		TestimonialHandler: &TestimonialHandler{Testimonials: services.NewTestimonialService(testimonialRepo)},
		SettingsHandler:    &SettingsHandler{Settings: settingsSvc},
		UploadHandler:      &UploadHandler{Media: media.New(cfg.MediaDir)},
	}, nil
}
