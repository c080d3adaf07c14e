package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
	"nyumba/internal/repos"
)

// Cart is the client-held cart. Lines are keyed by item id.
type Cart struct {
	Items []domain.CartItem `json:"items"`
}

// Add merges it into the cart: an existing id has its quantity increased,
// a new id is appended. A non-positive quantity removes the line.
func (c *Cart) Add(it domain.CartItem) {
	for i := range c.Items {
		if c.Items[i].ID == it.ID {
			c.SetQuantity(it.ID, c.Items[i].Quantity+it.Quantity)
			return
		}
	}
	if it.Quantity > 0 {
		c.Items = append(c.Items, it)
	}
}

// SetQuantity overwrites a line's quantity; zero or less removes it.
func (c *Cart) SetQuantity(id string, qty int) {
	if qty <= 0 {
		c.Remove(id)
		return
	}
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity = qty
		}
	}
}

func (c *Cart) Remove(id string) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// Quote is a server-priced cart.
type Quote struct {
	Items    []domain.CartItem `json:"items"`
	Count    int               `json:"count"`
	Currency string            `json:"currency"`
	Totals
}

type CartService struct {
	Prods    *repos.ProductRepo
	Orders   *OrderService
	Settings *SettingsService
}

func NewCartService(prods *repos.ProductRepo, orders *OrderService, settings *SettingsService) *CartService {
	return &CartService{Prods: prods, Orders: orders, Settings: settings}
}

// Quote normalizes the submitted lines (merging duplicates, dropping empty
// ones), reprices them from the catalog and adds shipping and tax.
func (s *CartService) Quote(ctx context.Context, items []domain.CartItem) (Quote, error) {
	var cart Cart
	for _, it := range items {
		if it.ProductID == "" {
			it.ProductID = it.ID
		}
		if it.ID == "" {
			it.ID = it.ProductID
		}
		cart.Add(it)
	}
	if len(cart.Items) == 0 {
		return Quote{}, apperr.Validation("Cart is empty")
	}

	ids := make([]string, 0, len(cart.Items))
	for _, it := range cart.Items {
		if !domain.IsID(it.ProductID) {
			return Quote{}, apperr.Validation("Invalid product ID format")
		}
		ids = append(ids, it.ProductID)
	}
	prods, err := s.Prods.ByIDs(ctx, ids)
	if err != nil {
		return Quote{}, apperr.Upstream("Failed to load products", err)
	}
	for i, it := range cart.Items {
		p, ok := prods[it.ProductID]
		if !ok {
			return Quote{}, apperr.Validation("Product %s not found", it.ProductID)
		}
		if it.Quantity > maxItemQuantity {
			return Quote{}, apperr.Validation("Quantity must be between 1 and %d", maxItemQuantity)
		}
		cart.Items[i].Name = p.Name
		cart.Items[i].Price = p.Price
		cart.Items[i].InStock = p.InStock && p.StockQuantity >= it.Quantity
		if len(p.Images) > 0 {
			cart.Items[i].Image = p.Images[0]
		}
	}

	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Items:    cart.Items,
		Count:    cart.Count(),
		Currency: settings.Currency,
		Totals:   Price(cart.Subtotal(), 0, settings),
	}, nil
}

type WhatsAppCheckout struct {
	Order domain.Order `json:"order"`
	Link  string       `json:"whatsappUrl"`
}

// CheckoutWhatsApp places the order and returns a wa.me link whose message
// summarizes it.
func (s *CartService) CheckoutWhatsApp(ctx context.Context, in OrderInput) (WhatsAppCheckout, error) {
	if in.PaymentMethod == "" {
		in.PaymentMethod = "whatsapp"
	}
	o, err := s.Orders.Place(ctx, in)
	if err != nil {
		return WhatsAppCheckout{}, err
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return WhatsAppCheckout{}, err
	}
	return WhatsAppCheckout{Order: o, Link: WhatsAppLink(settings.WhatsAppNumber, OrderSummary(o, settings.Currency))}, nil
}

// WhatsAppLink builds a click-to-chat URL; number keeps digits only.
func WhatsAppLink(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(text)
}

func OrderSummary(o domain.Order, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n", o.OrderNumber)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s %d\n", it.Name, it.Quantity, currency, it.Price)
	}
	fmt.Fprintf(&b, "Subtotal: %s %d\n", currency, o.Subtotal)
	if o.Shipping > 0 {
		fmt.Fprintf(&b, "Shipping: %s %d\n", currency, o.Shipping)
	}
	if o.Tax > 0 {
		fmt.Fprintf(&b, "Tax: %s %d\n", currency, o.Tax)
	}
	fmt.Fprintf(&b, "Total: %s %d\n", currency, o.Total)
	fmt.Fprintf(&b, "Name: %s\nPhone: %s\n", o.Customer.Name, o.Customer.Phone)
	fmt.Fprintf(&b, "Deliver to: %s, %s", o.ShippingAddress.Street, o.ShippingAddress.City)
	return b.String()
}
