package query

import (
	"time"

	"nyumba/internal/domain"
)

var ProductSort = SortSpec{Default: "createdAt", Columns: map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"price":         "price",
	"name":          "name",
	"stockQuantity": "stock_quantity",
	"featured":      "featured",
}}

var CategorySort = SortSpec{Default: "sortOrder", Order: "asc", Columns: map[string]string{
	"sortOrder":    "sort_order",
	"name":         "name",
	"createdAt":    "created_at",
	"productCount": "product_count",
}}

var TipSort = SortSpec{Default: "createdAt", Columns: map[string]string{
	"createdAt":   "created_at",
	"publishedAt": "published_at",
	"views":       "views",
	"title":       "title",
	"readTime":    "read_time",
}}

var TestimonialSort = SortSpec{Default: "createdAt", Columns: map[string]string{
	"createdAt": "created_at",
	"rating":    "rating",
	"name":      "name",
}}

var OrderSort = SortSpec{Default: "createdAt", Columns: map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"total":       "total",
	"orderNumber": "order_number",
	"status":      "status",
}}

var CustomerSort = SortSpec{Default: "lastOrderDate", Columns: map[string]string{
	"lastOrderDate":  "last_order_date",
	"firstOrderDate": "first_order_date",
	"totalSpent":     "total_spent",
	"orderCount":     "order_count",
	"name":           "name",
	"email":          "email",
}}

// ProductFilter reads category, search, minPrice, maxPrice, featured, onSale,
// inStock, material and color. Columns are qualified with alias "p".
func ProductFilter(p Params) Filter {
	var f Filter
	if cat := p.Get("category"); cat != "" {
		if domain.IsID(cat) {
			f.Eq("p.category_id", cat)
		} else {
			f.Where("p.category_id IN (SELECT id FROM categories WHERE slug = ?)", cat)
		}
	}
	f.Search(p.Get("search"), []string{"p.name", "p.description"})
	if n, ok := Number(p.Get("minPrice")); ok {
		f.Gte("p.price", n)
	}
	if n, ok := Number(p.Get("maxPrice")); ok {
		f.Lte("p.price", n)
	}
	f.Bool("p.featured", p.Get("featured"))
	f.Bool("p.on_sale", p.Get("onSale"))
	f.Bool("p.in_stock", p.Get("inStock"))
	f.EqIf("p.material", p.Get("material"))
	f.EqIf("p.color", p.Get("color"))
	return f
}

// TipFilter reads search, category, tag, featured and published. The public
// listing treats an absent published parameter as "true"; the admin listing
// leaves it unconstrained.
func TipFilter(p Params, public bool) Filter {
	var f Filter
	f.Search(p.Get("search"), []string{"t.title", "t.content", "t.excerpt"}, "t.tags")
	f.EqIf("t.category", p.Get("category"))
	f.ListContains("t.tags", p.Get("tag"))
	f.Bool("t.featured", p.Get("featured"))
	published := p.Get("published")
	if public {
		// a public caller can never see drafts
		published = "true"
	}
	f.Bool("t.published", published)
	return f
}

// TestimonialFilter reads status, featured, verified, rating (minimum) and
// search. No status filter applies unless one is requested.
func TestimonialFilter(p Params) Filter {
	var f Filter
	f.EqIf("ts.status", p.Get("status"))
	f.Bool("ts.featured", p.Get("featured"))
	f.Bool("ts.verified", p.Get("verified"))
	if n, ok := Number(p.Get("rating")); ok {
		f.Gte("ts.rating", n)
	}
	f.Search(p.Get("search"), []string{"ts.name", "ts.text", "ts.location"})
	return f
}

// OrderFilter reads status, paymentStatus, paymentMethod, search, dateFrom
// and dateTo. dateTo is inclusive of the whole day when given as a date.
func OrderFilter(p Params) Filter {
	var f Filter
	f.EqIf("o.status", p.Get("status"))
	f.EqIf("o.payment_status", p.Get("paymentStatus"))
	f.EqIf("o.payment_method", p.Get("paymentMethod"))
	f.Search(p.Get("search"), []string{"o.order_number", "o.customer_name", "o.customer_email", "o.customer_phone"})
	if t, ok := parseDate(p.Get("dateFrom")); ok {
		f.Gte("o.created_at", domain.FormatTime(t))
	}
	if raw := p.Get("dateTo"); raw != "" {
		if t, err := time.Parse(time.DateOnly, raw); err == nil {
			f.Lt("o.created_at", domain.FormatTime(t.AddDate(0, 0, 1)))
		} else if t, ok := parseDate(raw); ok {
			f.Lte("o.created_at", domain.FormatTime(t))
		}
	}
	return f
}

// CategoryFilter reads isActive, parent and search. The public listing only
// ever sees active categories.
func CategoryFilter(p Params, public bool) Filter {
	var f Filter
	active := p.Get("isActive")
	if public {
		active = "true"
	}
	f.Bool("c.is_active", active)
	switch parent := p.Get("parent"); {
	case parent == "null":
		f.Where("c.parent_id IS NULL")
	case parent != "":
		f.Eq("c.parent_id", parent)
	}
	f.Search(p.Get("search"), []string{"c.name", "c.description"})
	return f
}

// CustomerFilter matches grouped customer rows, so columns are the rollup's
// output names.
func CustomerFilter(p Params) Filter {
	var f Filter
	f.Search(p.Get("search"), []string{"name", "email", "phone"})
	if n, ok := Number(p.Get("minOrders")); ok {
		f.Gte("order_count", n)
	}
	return f
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
