package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ShippingAddress struct {
	Street  string `json:"street" gorm:"size:255"`
	City    string `json:"city" gorm:"size:128"`
	State   string `json:"state" gorm:"size:128"`
	Zip     string `json:"zip" gorm:"size:32"`
	Country string `json:"country" gorm:"size:64"`
}

func (a ShippingAddress) Validate() error {
	var missing []string
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return Validationf("shipping address is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

type Order struct {
	ID              int64           `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	UserID          int64           `json:"user,string" gorm:"not null;index"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(14,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"size:16;not null;index;default:'pending'"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"size:16;not null;index;default:'pending'"`
	PaymentID       string          `json:"payment_id" gorm:"size:128"`
	CreatedAt       time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is the immutable record of one purchased line; PriceAtTime is never re-read from Product.
type OrderItem struct {
	ID          int64           `json:"-" gorm:"primaryKey;autoIncrement:false"`
	OrderID     int64           `json:"-" gorm:"not null;index"`
	ProductID   int64           `json:"product,string" gorm:"not null;index"`
	ProductName string          `json:"product_name" gorm:"size:255"`
	Quantity    int64           `json:"quantity" gorm:"not null"`
	PriceAtTime decimal.Decimal `json:"price_at_time" gorm:"type:decimal(12,2);not null"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtTime.Mul(decimal.NewFromInt(i.Quantity))
}

// SumItems returns the exact sum of price_at_time × quantity over items.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (o *Order) OwnedBy(userID int64) bool { return o.UserID == userID }

// OrderState is the pair of statuses a stored order is compared against
// before a status or payment change is written.
type OrderState struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
}

func (o *Order) State() OrderState {
	return OrderState{Status: o.Status, PaymentStatus: o.PaymentStatus}
}
