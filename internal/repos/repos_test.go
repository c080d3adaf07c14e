package repos

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyumba/internal/domain"
	"nyumba/internal/query"
)

const (
	livingRoom = "65f000000000000000000001"
	sofa       = "65f100000000000000000001"
	table      = "65f100000000000000000002"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newOrder(email, name string, items ...domain.OrderItem) *domain.Order {
	now := domain.Now()
	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotal()
	}
	return &domain.Order{
		ID:              domain.NewID(),
		Customer:        domain.CustomerInfo{Name: name, Email: email, Phone: "+254711000000"},
		ShippingAddress: domain.Address{Street: "1 Moi Ave", City: "Nairobi", Country: "Kenya"},
		BillingAddress:  domain.Address{Street: "1 Moi Ave", City: "Nairobi", Country: "Kenya"},
		Items:           items,
		Subtotal:        subtotal,
		Total:           subtotal,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		PaymentMethod:   "mpesa",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestOpenDBSeedsOnce(t *testing.T) {
	db := memdb(t)
	require.NoError(t, seedIfEmpty(db))

	var cats, prods int
	require.NoError(t, db.Get(&cats, `SELECT COUNT(*) FROM categories`))
	require.NoError(t, db.Get(&prods, `SELECT COUNT(*) FROM products`))
	assert.Equal(t, 5, cats)
	assert.Equal(t, 6, prods)
}

func TestPoolOpensOnce(t *testing.T) {
	pool := NewPool(":memory:")
	defer pool.Close()

	var wg sync.WaitGroup
	handles := make([]*sqlx.DB, 8)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := pool.DB()
			assert.NoError(t, err)
			handles[i] = db
		}(i)
	}
	wg.Wait()
	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
	assert.NoError(t, pool.Ping(context.Background()))
}

func TestPoolRemembersOpenFailure(t *testing.T) {
	pool := NewPool(filepath.Join(t.TempDir(), "missing", "nyumba.db"))
	defer pool.Close()

	_, err := pool.DB()
	require.Error(t, err)
	_, again := pool.DB()
	assert.Equal(t, err, again)
	assert.Error(t, pool.Ping(context.Background()))
}

func TestProductListPriceRange(t *testing.T) {
	db := memdb(t)
	r := NewProductRepo(db)
	ctx := context.Background()

	p := query.Params{"minPrice": "30000", "maxPrice": "85000", "sortBy": "price", "sortOrder": "asc"}
	pg := query.ResolvePage(p, query.ProductSort)
	items, total, err := r.List(ctx, query.ProductFilter(p), pg)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 4)
	for _, it := range items {
		assert.GreaterOrEqual(t, it.Price, int64(30000))
		assert.LessOrEqual(t, it.Price, int64(85000))
	}
	assert.Equal(t, int64(32000), items[0].Price)
	assert.Equal(t, int64(85000), items[3].Price)
}

func TestProductListByCategorySlugOrID(t *testing.T) {
	db := memdb(t)
	r := NewProductRepo(db)
	ctx := context.Background()

	for _, cat := range []string{livingRoom, "living-room"} {
		p := query.Params{"category": cat}
		_, total, err := r.List(ctx, query.ProductFilter(p), query.ResolvePage(p, query.ProductSort))
		require.NoError(t, err)
		assert.Equal(t, 2, total, cat)
	}
}

func TestTopByCategory(t *testing.T) {
	db := memdb(t)
	r := NewProductRepo(db)

	top, err := r.TopByCategory(context.Background(), []string{livingRoom, "65f000000000000000000002"}, 1)
	require.NoError(t, err)
	require.Len(t, top[livingRoom], 1)
	assert.Equal(t, sofa, top[livingRoom][0].ID, "featured product ranks first")
	assert.Len(t, top["65f000000000000000000002"], 1)
}

func TestCategoryListCounts(t *testing.T) {
	db := memdb(t)
	r := NewCategoryRepo(db)
	ctx := context.Background()

	p := query.Params{}
	items, total, err := r.List(ctx, query.CategoryFilter(p, true), query.ResolvePage(p, query.CategorySort), true)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 5)
	assert.Equal(t, "living-room", items[0].Slug)
	require.NotNil(t, items[0].ProductCount)
	assert.Equal(t, 2, *items[0].ProductCount)

	items, _, err = r.List(ctx, query.CategoryFilter(p, true), query.ResolvePage(p, query.CategorySort), false)
	require.NoError(t, err)
	assert.Nil(t, items[0].ProductCount)
}

func TestCategoryDuplicateSlug(t *testing.T) {
	db := memdb(t)
	r := NewCategoryRepo(db)
	now := domain.Now()
	err := r.Create(context.Background(), domain.Category{ID: domain.NewID(), Name: "Again", Slug: "bedroom", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestOrderNumbersAreSequential(t *testing.T) {
	db := memdb(t)
	r := NewOrderRepo(db)
	ctx := context.Background()

	item := domain.OrderItem{ProductID: sofa, Quantity: 1, Price: 85000, Name: "Sofa"}
	first := newOrder("a@example.com", "A", item)
	second := newOrder("b@example.com", "B", item)
	require.NoError(t, r.Create(ctx, first))
	require.NoError(t, r.Create(ctx, second))
	assert.Equal(t, "ORD-000001", first.OrderNumber)
	assert.Equal(t, "ORD-000002", second.OrderNumber)

	got, err := r.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-000002", got.OrderNumber)
	require.Len(t, got.Items, 1)
	assert.Equal(t, item, got.Items[0])
}

func TestOrderSaveRestocksInTransaction(t *testing.T) {
	db := memdb(t)
	orders := NewOrderRepo(db)
	prods := NewProductRepo(db)
	ctx := context.Background()

	o := newOrder("a@example.com", "A",
		domain.OrderItem{ProductID: sofa, Quantity: 2, Price: 85000, Name: "Sofa"},
		domain.OrderItem{ProductID: table, Quantity: 1, Price: 32000, Name: "Table"},
	)
	require.NoError(t, orders.Create(ctx, o))

	o.Status = domain.StatusCancelled
	o.CancelledAt = ptr(domain.Now())
	o.UpdatedAt = *o.CancelledAt
	require.NoError(t, orders.Save(ctx, o, o.Items))

	s, err := prods.Get(ctx, sofa)
	require.NoError(t, err)
	assert.Equal(t, 6, s.StockQuantity)
	tb, err := prods.Get(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, 11, tb.StockQuantity)

	got, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)
}

func TestOrderSaveUnknownRollsBack(t *testing.T) {
	db := memdb(t)
	orders := NewOrderRepo(db)
	prods := NewProductRepo(db)
	ctx := context.Background()

	ghost := newOrder("x@example.com", "X")
	err := orders.Save(ctx, ghost, []domain.OrderItem{{ProductID: sofa, Quantity: 3}})
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	s, err := prods.Get(ctx, sofa)
	require.NoError(t, err)
	assert.Equal(t, 4, s.StockQuantity)
}

func TestCustomersRollup(t *testing.T) {
	db := memdb(t)
	r := NewOrderRepo(db)
	ctx := context.Background()

	item := domain.OrderItem{ProductID: table, Quantity: 1, Price: 32000, Name: "Table"}
	first := newOrder("jane@example.com", "Jane First", item)
	first.CreatedAt = "2025-01-01T10:00:00.000000Z"
	second := newOrder("jane@example.com", "Jane Renamed", item, item)
	second.CreatedAt = "2025-02-01T10:00:00.000000Z"
	other := newOrder("otto@example.com", "Otto", item)
	other.CreatedAt = "2025-03-01T10:00:00.000000Z"
	for _, o := range []*domain.Order{first, second, other} {
		require.NoError(t, r.Create(ctx, o))
	}

	p := query.Params{"sortBy": "totalSpent"}
	out, total, err := r.Customers(ctx, query.CustomerFilter(p), query.ResolvePage(p, query.CustomerSort))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, out, 2)
	jane := out[0]
	assert.Equal(t, "jane@example.com", jane.Email)
	assert.Equal(t, "Jane First", jane.Name)
	assert.Equal(t, 2, jane.OrderCount)
	assert.Equal(t, int64(96000), jane.TotalSpent)
	assert.Equal(t, first.CreatedAt, jane.FirstOrderDate)
	assert.Equal(t, second.CreatedAt, jane.LastOrderDate)

	p = query.Params{"search": "OTTO"}
	out, total, err = r.Customers(ctx, query.CustomerFilter(p), query.ResolvePage(p, query.CustomerSort))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "otto@example.com", out[0].Email)
}

func TestTipViewPublishedCounts(t *testing.T) {
	db := memdb(t)
	r := NewTipRepo(db)
	ctx := context.Background()
	now := domain.Now()

	draft := domain.Tip{ID: domain.NewID(), Slug: "draft", Title: "Draft", Content: "x", CreatedAt: now, UpdatedAt: now}
	live := domain.Tip{ID: domain.NewID(), Slug: "live", Title: "Live", Content: "x", Published: true, PublishedAt: &now, Category: "care", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, r.Create(ctx, draft))
	require.NoError(t, r.Create(ctx, live))

	_, err := r.ViewPublished(ctx, "draft")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	got, err := r.ViewPublished(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	got, err = r.ViewPublished(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	cats, err := r.Categories(ctx, query.TipFilter(query.Params{}, true))
	require.NoError(t, err)
	assert.Equal(t, []string{"care"}, cats)
}

func TestSettingsLazyDefault(t *testing.T) {
	db := memdb(t)
	r := NewSettingsRepo(db)
	ctx := context.Background()

	s, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), s.ShippingFee)
	assert.Equal(t, int64(100000), s.FreeShippingThreshold)

	s.ShippingFee = 20000
	require.NoError(t, r.Save(ctx, s))
	s, err = r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), s.ShippingFee)
}

func TestSettingsLoadDoesNotWriteOnceStored(t *testing.T) {
	db := memdb(t)
	r := NewSettingsRepo(db)
	ctx := context.Background()

	_, err := r.Load(ctx)
	require.NoError(t, err)

	db.MustExec(`PRAGMA query_only = ON`)
	defer db.MustExec(`PRAGMA query_only = OFF`)
	s, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), s.ShippingFee)
	assert.Error(t, r.Save(ctx, s), "store is read-only")
}

func TestSessions(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	require.NoError(t, SeedAdmin(ctx, db, "Admin@Example.com", "Admin", "Passw0rd!"))
	require.NoError(t, SeedAdmin(ctx, db, "admin@example.com", "Admin", "other"))

	users := NewUserRepo(db)
	u, err := users.ByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	require.NoError(t, users.BindSession(ctx, "sid-1", u.ID))
	got, err := users.SessionUser(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, users.UnbindSession(ctx, "sid-1"))
	_, err = users.SessionUser(ctx, "sid-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func ptr[T any](v T) *T { return &v }
