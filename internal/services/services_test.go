package services

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"nyumba/internal/repos"
)

const (
	livingRoomID = "65f000000000000000000001"
	outdoorID    = "65f000000000000000000005"
	sofaID       = "65f100000000000000000001" // 85000, stock 4
	tableID      = "65f100000000000000000002" // 32000, stock 10
	diningID     = "65f100000000000000000004" // 145000, stock 2
)

type fixture struct {
	db       *sqlx.DB
	catalog  *CatalogService
	orders   *OrderService
	cart     *CartService
	tips     *TipService
	reviews  *TestimonialService
	settings *SettingsService
	auth     *AuthService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	prods := repos.NewProductRepo(db)
	settings := NewSettingsService(repos.NewSettingsRepo(db))
	orders := NewOrderService(repos.NewOrderRepo(db), prods, settings)
	return fixture{
		db:       db,
		catalog:  NewCatalogService(repos.NewCategoryRepo(db), prods),
		orders:   orders,
		cart:     NewCartService(prods, orders, settings),
		tips:     NewTipService(repos.NewTipRepo(db)),
		reviews:  NewTestimonialService(repos.NewTestimonialRepo(db)),
		settings: settings,
		auth:     &AuthService{Users: repos.NewUserRepo(db)},
	}
}

func ctx() context.Context { return context.Background() }
