package repos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"nyumba/internal/domain"
	"nyumba/internal/query"
)

const orderCols = `o.id, o.order_number, o.customer_name, o.customer_email, o.customer_phone,
  o.shipping_address, o.billing_address, o.subtotal, o.tax, o.shipping, o.discount, o.total,
  o.status, o.payment_status, o.payment_method, o.notes, o.delivered_at, o.cancelled_at,
  o.refunded_at, o.created_at, o.updated_at`

// OrderNumberFormat renders the order sequence value.
const OrderNumberFormat = "ORD-%06d"

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// orderRow is the flat header row; items live in order_items.
type orderRow struct {
	ID              string         `db:"id"`
	OrderNumber     string         `db:"order_number"`
	CustomerName    string         `db:"customer_name"`
	CustomerEmail   string         `db:"customer_email"`
	CustomerPhone   string         `db:"customer_phone"`
	ShippingAddress domain.Address `db:"shipping_address"`
	BillingAddress  domain.Address `db:"billing_address"`
	Subtotal        int64          `db:"subtotal"`
	Tax             int64          `db:"tax"`
	Shipping        int64          `db:"shipping"`
	Discount        int64          `db:"discount"`
	Total           int64          `db:"total"`
	Status          string         `db:"status"`
	PaymentStatus   string         `db:"payment_status"`
	PaymentMethod   string         `db:"payment_method"`
	Notes           string         `db:"notes"`
	DeliveredAt     *string        `db:"delivered_at"`
	CancelledAt     *string        `db:"cancelled_at"`
	RefundedAt      *string        `db:"refunded_at"`
	CreatedAt       string         `db:"created_at"`
	UpdatedAt       string         `db:"updated_at"`
}

func fromDomain(o *domain.Order) orderRow {
	return orderRow{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		CustomerPhone:   o.Customer.Phone,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Shipping:        o.Shipping,
		Discount:        o.Discount,
		Total:           o.Total,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   o.PaymentMethod,
		Notes:           o.Notes,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		RefundedAt:      o.RefundedAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (row orderRow) toDomain(items []domain.OrderItem) domain.Order {
	if items == nil {
		items = []domain.OrderItem{}
	}
	return domain.Order{
		ID:              row.ID,
		OrderNumber:     row.OrderNumber,
		Customer:        domain.CustomerInfo{Name: row.CustomerName, Email: row.CustomerEmail, Phone: row.CustomerPhone},
		ShippingAddress: row.ShippingAddress,
		BillingAddress:  row.BillingAddress,
		Items:           items,
		Subtotal:        row.Subtotal,
		Tax:             row.Tax,
		Shipping:        row.Shipping,
		Discount:        row.Discount,
		Total:           row.Total,
		Status:          domain.OrderStatus(row.Status),
		PaymentStatus:   domain.PaymentStatus(row.PaymentStatus),
		PaymentMethod:   row.PaymentMethod,
		Notes:           row.Notes,
		DeliveredAt:     row.DeliveredAt,
		CancelledAt:     row.CancelledAt,
		RefundedAt:      row.RefundedAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

// Create assigns the next order number and inserts the header and its items
// in one transaction. o.OrderNumber is filled in on success.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.GetContext(ctx, &seq, `
	  INSERT INTO sequences(name, value) VALUES('orders', 1)
	  ON CONFLICT(name) DO UPDATE SET value = value + 1
	  RETURNING value
	`); err != nil {
		return err
	}
	o.OrderNumber = fmt.Sprintf(OrderNumberFormat, seq)

	if _, err := tx.NamedExecContext(ctx, `
	  INSERT INTO orders
	    (id, order_number, customer_name, customer_email, customer_phone, shipping_address, billing_address,
	     subtotal, tax, shipping, discount, total, status, payment_status, payment_method, notes,
	     delivered_at, cancelled_at, refunded_at, created_at, updated_at)
	  VALUES
	    (:id, :order_number, :customer_name, :customer_email, :customer_phone, :shipping_address, :billing_address,
	     :subtotal, :tax, :shipping, :discount, :total, :status, :payment_status, :payment_method, :notes,
	     :delivered_at, :cancelled_at, :refunded_at, :created_at, :updated_at)
	`, fromDomain(o)); err != nil {
		return err
	}

	for i, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, position, product_id, quantity, price, name, image)
		  VALUES(?, ?, ?, ?, ?, ?, ?)
		`, o.ID, i, it.ProductID, it.Quantity, it.Price, it.Name, it.Image); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+orderCols+` FROM orders o WHERE o.id = ?`, id); err != nil {
		return domain.Order{}, err
	}
	items, err := r.items(ctx, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	return row.toDomain(items[id]), nil
}

// List pages orders matching f, items included.
func (r *OrderRepo) List(ctx context.Context, f query.Filter, pg query.Page) ([]domain.Order, int, error) {
	var rows []orderRow
	total, err := query.Aggregate("orders o", orderCols).
		Match(f).
		Paginate(pg, "id ASC").
		Fetch(ctx, r.db, &rows)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Order, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain(items[row.ID])
	}
	return out, total, nil
}

type itemRow struct {
	OrderID string `db:"order_id"`
	domain.OrderItem
}

func (r *OrderRepo) items(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	out := map[string][]domain.OrderItem{}
	if len(orderIDs) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`
	  SELECT order_id, product_id, quantity, price, name, image
	  FROM order_items
	  WHERE order_id IN (?)
	  ORDER BY order_id, position
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.OrderID] = append(out[row.OrderID], row.OrderItem)
	}
	return out, nil
}

// Save persists the mutable fields of o (status, payment status, notes and
// lifecycle stamps) and returns restock quantities to their products, all in
// one transaction.
func (r *OrderRepo) Save(ctx context.Context, o *domain.Order, restockItems []domain.OrderItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.NamedExecContext(ctx, `
	  UPDATE orders SET
	    status=:status, payment_status=:payment_status, notes=:notes,
	    delivered_at=:delivered_at, cancelled_at=:cancelled_at, refunded_at=:refunded_at,
	    updated_at=:updated_at
	  WHERE id=:id
	`, fromDomain(o))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNoRows
	}

	for _, it := range restockItems {
		if err := restock(ctx, tx, it.ProductID, it.Quantity, o.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Customers rolls orders up per customer email. f filters the grouped rows.
func (r *OrderRepo) Customers(ctx context.Context, f query.Filter, pg query.Page) ([]domain.Customer, int, error) {
	out := []domain.Customer{}
	total, err := query.Aggregate("orders o", "o.customer_email AS email").
		AddFields(
			`(SELECT f.customer_name FROM orders f WHERE f.customer_email = o.customer_email ORDER BY f.created_at ASC, f.id ASC LIMIT 1) AS name`,
			`(SELECT f.customer_phone FROM orders f WHERE f.customer_email = o.customer_email ORDER BY f.created_at ASC, f.id ASC LIMIT 1) AS phone`,
			"COUNT(*) AS order_count",
			"SUM(o.total) AS total_spent",
			"MIN(o.created_at) AS first_order_date",
			"MAX(o.created_at) AS last_order_date",
		).
		Group("o.customer_email").
		MatchGrouped(f).
		Paginate(pg, "email ASC").
		Fetch(ctx, r.db, &out)
	return out, total, err
}

// Stats summarizes order volume for the admin dashboard.
type Stats struct {
	Orders   int            `db:"orders" json:"orders"`
	Revenue  int64          `db:"revenue" json:"revenue"`
	Pending  int            `db:"pending" json:"pending"`
	ByStatus map[string]int `db:"-" json:"byStatus"`
}

func (r *OrderRepo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := r.db.GetContext(ctx, &s, `
	  SELECT COUNT(*) AS orders,
	         COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN total ELSE 0 END), 0) AS revenue,
	         COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending
	  FROM orders
	`); err != nil {
		return Stats{}, err
	}
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS n FROM orders GROUP BY status`); err != nil {
		return Stats{}, err
	}
	s.ByStatus = map[string]int{}
	for _, row := range rows {
		s.ByStatus[row.Status] = row.N
	}
	return s, nil
}
