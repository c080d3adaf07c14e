package domain

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
	StatusDelivered, StatusCancelled, StatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

var PaymentMethods = []string{"mpesa", "cash_on_delivery", "card", "bank_transfer", "whatsapp"}

// CustomerInfo is the customer snapshot copied onto an order.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type OrderItem struct {
	ProductID string `db:"product_id" json:"productId"`
	Quantity  int    `db:"quantity" json:"quantity"`
	Price     int64  `db:"price" json:"price"`
	Name      string `db:"name" json:"name"`
	Image     string `db:"image" json:"image,omitempty"`
}

func (it OrderItem) LineTotal() int64 { return it.Price * int64(it.Quantity) }

type Order struct {
	ID              string        `json:"id"`
	OrderNumber     string        `json:"orderNumber"`
	Customer        CustomerInfo  `json:"customer"`
	ShippingAddress Address       `json:"shippingAddress"`
	BillingAddress  Address       `json:"billingAddress"`
	Items           []OrderItem   `json:"items"`
	Subtotal        int64         `json:"subtotal"`
	Tax             int64         `json:"tax"`
	Shipping        int64         `json:"shipping"`
	Discount        int64         `json:"discount"`
	Total           int64         `json:"total"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentMethod   string        `json:"paymentMethod"`
	Notes           string        `json:"notes,omitempty"`
	DeliveredAt     *string       `json:"deliveredAt"`
	CancelledAt     *string       `json:"cancelledAt"`
	RefundedAt      *string       `json:"refundedAt"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
}
