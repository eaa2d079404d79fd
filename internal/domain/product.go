package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id,string" gorm:"primaryKey;autoIncrement:false"`
	Name        string          `json:"name" gorm:"size:255;not null;index;index:idx_products_name_category,priority:1"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;check:chk_products_price,price >= 0"`
	CategoryID  int64           `json:"category,string" gorm:"not null;index;index:idx_products_name_category,priority:2"`
	Stock       int64           `json:"stock" gorm:"not null;default:0;check:chk_products_stock,stock >= 0"`
	Images      []string        `json:"images" gorm:"serializer:json;type:text"`
	Reviews     []Review        `json:"reviews" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	SellerID    int64           `json:"seller,string" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Review is unique per (product, user); a second review from the same user replaces the first.
type Review struct {
	ID        int64     `json:"-" gorm:"primaryKey;autoIncrement:false"`
	ProductID int64     `json:"-" gorm:"not null;uniqueIndex:idx_reviews_product_user,priority:1"`
	UserID    int64     `json:"user,string" gorm:"not null;uniqueIndex:idx_reviews_product_user,priority:2"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// OwnedBy reports whether u may mutate the product: admins always, sellers only their own listings.
func (p *Product) OwnedBy(u *User) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin() || (u.Role == RoleSeller && p.SellerID == u.ID)
}
