package gormrepo

import (
	"context"
	"time"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepo struct {
	db  *gorm.DB
	ids *snowflake.Node
}

func (r *cartRepo) FindByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		First(&c).Error
	if err != nil {
		return nil, translate(err, "cart")
	}
	return &c, nil
}

func (r *cartRepo) Create(ctx context.Context, c *domain.Cart) error {
	if c.ID == 0 {
		c.ID = r.ids.Generate().Int64()
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error, "cart")
}

func (r *cartRepo) SaveItem(ctx context.Context, item *domain.CartItem) error {
	db := r.db.WithContext(ctx)
	if item.ID == 0 {
		item.ID = r.ids.Generate().Int64()
		return translate(db.Create(item).Error, "cart item")
	}
	err := db.Model(item).Updates(map[string]interface{}{
		"quantity": item.Quantity,
		"added_at": item.AddedAt,
	}).Error
	return translate(err, "cart item")
}

func (r *cartRepo) DeleteItem(ctx context.Context, cartID, productID int64) error {
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&domain.CartItem{}).Error
	return translate(err, "cart item")
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID int64) error {
	err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error
	return translate(err, "cart item")
}

func (r *cartRepo) DeleteItemsByProduct(ctx context.Context, productID int64) error {
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&domain.CartItem{}).Error
	return translate(err, "cart item")
}

func (r *cartRepo) Touch(ctx context.Context, cartID int64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.Cart{}).Where("id = ?", cartID).Update("updated_at", at).Error
	return translate(err, "cart")
}
