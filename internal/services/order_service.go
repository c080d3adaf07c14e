package services

import (
	"context"
	"strings"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
	"nyumba/internal/query"
	"nyumba/internal/repos"
	"nyumba/internal/validate"
)

const (
	maxItemQuantity = 100
	defaultCountry  = "Kenya"
)

type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type OrderInput struct {
	Customer        domain.CustomerInfo `json:"customer"`
	ShippingAddress domain.Address      `json:"shippingAddress"`
	BillingAddress  *domain.Address     `json:"billingAddress"`
	Items           []OrderItemInput    `json:"items"`
	PaymentMethod   string              `json:"paymentMethod"`
	Discount        int64               `json:"discount"`
	Notes           string              `json:"notes"`
}

type OrderService struct {
	Orders   *repos.OrderRepo
	Prods    *repos.ProductRepo
	Settings *SettingsService
}

func NewOrderService(orders *repos.OrderRepo, prods *repos.ProductRepo, settings *SettingsService) *OrderService {
	return &OrderService{Orders: orders, Prods: prods, Settings: settings}
}

// Place validates in, snapshots product prices and names onto the items,
// prices the order and stores it with a fresh order number.
func (s *OrderService) Place(ctx context.Context, in OrderInput) (domain.Order, error) {
	if err := in.validate(); err != nil {
		return domain.Order{}, err
	}

	ids := make([]string, len(in.Items))
	for i, it := range in.Items {
		ids[i] = it.ProductID
	}
	prods, err := s.Prods.ByIDs(ctx, ids)
	if err != nil {
		return domain.Order{}, apperr.Upstream("Failed to load products", err)
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	var subtotal int64
	for _, it := range in.Items {
		p, ok := prods[it.ProductID]
		if !ok {
			return domain.Order{}, apperr.Validation("Product %s not found", it.ProductID)
		}
		item := domain.OrderItem{ProductID: p.ID, Quantity: it.Quantity, Price: p.Price, Name: p.Name}
		if len(p.Images) > 0 {
			item.Image = p.Images[0]
		}
		subtotal += item.LineTotal()
		items = append(items, item)
	}

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if in.Discount > subtotal {
		return domain.Order{}, apperr.Validation("Discount cannot exceed subtotal")
	}
	totals := Price(subtotal, in.Discount, settings)

	billing := in.ShippingAddress
	if in.BillingAddress != nil {
		billing = *in.BillingAddress
	}
	now := domain.Now()
	o := domain.Order{
		ID: domain.NewID(),
		Customer: domain.CustomerInfo{
			Name:  strings.TrimSpace(in.Customer.Name),
			Email: strings.ToLower(strings.TrimSpace(in.Customer.Email)),
			Phone: strings.TrimSpace(in.Customer.Phone),
		},
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  billing,
		Items:           items,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Shipping:        totals.Shipping,
		Discount:        totals.Discount,
		Total:           totals.Total,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		PaymentMethod:   in.PaymentMethod,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Orders.Create(ctx, &o); err != nil {
		return domain.Order{}, apperr.Upstream("Failed to create order", err)
	}
	return o, nil
}

func (in *OrderInput) validate() error {
	var ok bool
	if in.Customer.Name, ok = validate.Name(in.Customer.Name, 100); !ok {
		return apperr.Validation("Customer name is required")
	}
	if in.Customer.Email, ok = validate.Email(in.Customer.Email); !ok {
		return apperr.Validation("Valid customer email is required")
	}
	if in.Customer.Phone, ok = validate.Phone(in.Customer.Phone); !ok {
		return apperr.Validation("Valid customer phone is required")
	}
	if err := normalizeAddress(&in.ShippingAddress, "Shipping"); err != nil {
		return err
	}
	if in.BillingAddress != nil {
		if err := normalizeAddress(in.BillingAddress, "Billing"); err != nil {
			return err
		}
	}
	if len(in.Items) == 0 {
		return apperr.Validation("Order must contain at least one item")
	}
	for _, it := range in.Items {
		if !domain.IsID(it.ProductID) {
			return apperr.Validation("Invalid product ID format")
		}
		if it.Quantity < 1 || it.Quantity > maxItemQuantity {
			return apperr.Validation("Quantity must be between 1 and %d", maxItemQuantity)
		}
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = "cash_on_delivery"
	}
	if !validate.OneOf(in.PaymentMethod, domain.PaymentMethods) {
		return apperr.Validation("Invalid payment method: %s", in.PaymentMethod)
	}
	if in.Discount < 0 {
		return apperr.Validation("Discount cannot be negative")
	}
	return nil
}

func normalizeAddress(a *domain.Address, label string) error {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.County = strings.TrimSpace(a.County)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Street == "" || a.City == "" {
		return apperr.Validation("%s address requires street and city", label)
	}
	if a.Country == "" {
		a.Country = defaultCountry
	}
	return nil
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	if err := checkID(id, "Order"); err != nil {
		return domain.Order{}, err
	}
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, lookupErr(err, "Order")
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, p query.Params) ([]domain.Order, query.Meta, error) {
	pg := query.ResolvePage(p, query.OrderSort)
	out, total, err := s.Orders.List(ctx, query.OrderFilter(p), pg)
	if err != nil {
		return nil, query.Meta{}, apperr.Upstream("Failed to fetch orders", err)
	}
	return out, query.NewMeta(pg, total), nil
}

// Update applies a status, payment status and/or notes change. Moving to
// cancelled gives the items' stock back in the same transaction.
func (s *OrderService) Update(ctx context.Context, id string, t Transition) (domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	restock, err := applyTransition(&o, t, domain.Now())
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.Orders.Save(ctx, &o, restock); err != nil {
		return domain.Order{}, apperr.Upstream("Failed to update order", err)
	}
	return o, nil
}

// Cancel moves an order to cancelled and restocks its items. Delivered,
// cancelled and refunded orders cannot be cancelled.
func (s *OrderService) Cancel(ctx context.Context, id, reason string) (domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if !Cancellable(o.Status) {
		return domain.Order{}, apperr.Validation("Cannot cancel order with status %s", o.Status)
	}
	t := Transition{Status: ptr(domain.StatusCancelled)}
	if reason = strings.TrimSpace(reason); reason != "" {
		notes := "Cancelled: " + reason
		if o.Notes != "" {
			notes = o.Notes + "\n" + notes
		}
		t.Notes = &notes
	}
	restock, err := applyTransition(&o, t, domain.Now())
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.Orders.Save(ctx, &o, restock); err != nil {
		return domain.Order{}, apperr.Upstream("Failed to cancel order", err)
	}
	return o, nil
}

// Customers lists the per-email rollup of all orders.
func (s *OrderService) Customers(ctx context.Context, p query.Params) ([]domain.Customer, query.Meta, error) {
	pg := query.ResolvePage(p, query.CustomerSort)
	out, total, err := s.Orders.Customers(ctx, query.CustomerFilter(p), pg)
	if err != nil {
		return nil, query.Meta{}, apperr.Upstream("Failed to fetch customers", err)
	}
	return out, query.NewMeta(pg, total), nil
}

func (s *OrderService) Stats(ctx context.Context) (repos.Stats, error) {
	st, err := s.Orders.Stats(ctx)
	if err != nil {
		return repos.Stats{}, apperr.Upstream("Failed to compute order stats", err)
	}
	return st, nil
}
