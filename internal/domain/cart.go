package domain

import "time"

type Cart struct {
	ID        int64      `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	UserID    int64      `json:"user,string" gorm:"not null;uniqueIndex"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is a line of a cart; a cart holds at most one line per product.
type CartItem struct {
	ID        int64     `json:"-" gorm:"primaryKey;autoIncrement:false"`
	CartID    int64     `json:"-" gorm:"not null;uniqueIndex:idx_cart_items_cart_product,priority:1"`
	ProductID int64     `json:"product,string" gorm:"not null;uniqueIndex:idx_cart_items_cart_product,priority:2;index"`
	Quantity  int64     `json:"quantity" gorm:"not null"`
	AddedAt   time.Time `json:"added_at"`
}

// Line returns the line for productID, or nil.
func (c *Cart) Line(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }
