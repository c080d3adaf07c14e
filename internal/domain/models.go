package domain

var Materials = []string{"wood", "metal", "fabric", "leather", "glass", "rattan", "marble", "plastic"}

var Colors = []string{"brown", "black", "white", "grey", "beige", "natural", "blue", "green", "red"}

type Product struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Description   string     `db:"description" json:"description"`
	Price         int64      `db:"price" json:"price"`
	OriginalPrice *int64     `db:"original_price" json:"originalPrice,omitempty"`
	OnSale        bool       `db:"on_sale" json:"onSale"`
	CategoryID    string     `db:"category_id" json:"categoryId"`
	Material      string     `db:"material" json:"material,omitempty"`
	Color         string     `db:"color" json:"color,omitempty"`
	Dimensions    Dimensions `db:"dimensions" json:"dimensions"`
	Images        StringList `db:"images" json:"images"`
	InStock       bool       `db:"in_stock" json:"inStock"`
	Featured      bool       `db:"featured" json:"featured"`
	StockQuantity int        `db:"stock_quantity" json:"stockQuantity"`
	CreatedAt     string     `db:"created_at" json:"createdAt"`
	UpdatedAt     string     `db:"updated_at" json:"updatedAt"`
}

type Category struct {
	ID              string  `db:"id" json:"id"`
	Name            string  `db:"name" json:"name"`
	Slug            string  `db:"slug" json:"slug"`
	Description     string  `db:"description" json:"description"`
	Image           string  `db:"image" json:"image,omitempty"`
	ParentID        *string `db:"parent_id" json:"parentId"`
	SortOrder       int     `db:"sort_order" json:"sortOrder"`
	IsActive        bool    `db:"is_active" json:"isActive"`
	MetaTitle       string  `db:"meta_title" json:"metaTitle,omitempty"`
	MetaDescription string  `db:"meta_description" json:"metaDescription,omitempty"`
	CreatedAt       string  `db:"created_at" json:"createdAt"`
	UpdatedAt       string  `db:"updated_at" json:"updatedAt"`
}

// CategoryWithCount is a category row enriched by the product lookup.
type CategoryWithCount struct {
	Category
	ProductCount *int      `db:"product_count" json:"productCount,omitempty"`
	Products     []Product `db:"-" json:"products,omitempty"`
}

type Tip struct {
	ID          string     `db:"id" json:"id"`
	Slug        string     `db:"slug" json:"slug"`
	Title       string     `db:"title" json:"title"`
	Content     string     `db:"content" json:"content"`
	Excerpt     string     `db:"excerpt" json:"excerpt"`
	Author      string     `db:"author" json:"author"`
	Category    string     `db:"category" json:"category"`
	Tags        StringList `db:"tags" json:"tags"`
	Featured    bool       `db:"featured" json:"featured"`
	Published   bool       `db:"published" json:"published"`
	PublishedAt *string    `db:"published_at" json:"publishedAt"`
	Views       int        `db:"views" json:"views"`
	ReadTime    int        `db:"read_time" json:"readTime"`
	Image       string     `db:"image" json:"image,omitempty"`
	CreatedAt   string     `db:"created_at" json:"createdAt"`
	UpdatedAt   string     `db:"updated_at" json:"updatedAt"`
}

const (
	TestimonialPending  = "pending"
	TestimonialApproved = "approved"
	TestimonialRejected = "rejected"
)

var TestimonialStatuses = []string{TestimonialPending, TestimonialApproved, TestimonialRejected}

type Testimonial struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Location  string  `db:"location" json:"location"`
	Rating    int     `db:"rating" json:"rating"`
	Text      string  `db:"text" json:"text"`
	ProductID *string `db:"product_id" json:"productId,omitempty"`
	Image     string  `db:"image" json:"image,omitempty"`
	Verified  bool    `db:"verified" json:"verified"`
	Featured  bool    `db:"featured" json:"featured"`
	Status    string  `db:"status" json:"status"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
	UpdatedAt string  `db:"updated_at" json:"updatedAt"`
}

// Customer is the rollup of all orders sharing one email.
type Customer struct {
	Email          string `db:"email" json:"email"`
	Name           string `db:"name" json:"name"`
	Phone          string `db:"phone" json:"phone"`
	OrderCount     int    `db:"order_count" json:"orderCount"`
	TotalSpent     int64  `db:"total_spent" json:"totalSpent"`
	FirstOrderDate string `db:"first_order_date" json:"firstOrderDate"`
	LastOrderDate  string `db:"last_order_date" json:"lastOrderDate"`
}

// CartItem mirrors the client-held cart line.
type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color,omitempty"`
	Image     string `json:"image,omitempty"`
	Category  string `json:"category,omitempty"`
	InStock   bool   `json:"inStock"`
}
