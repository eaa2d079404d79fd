package gormrepo

import (
	"context"
	"time"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct {
	db  *gorm.DB
	ids *snowflake.Node
}

// Create inserts the order and its items. Callers run it inside a Store
// transaction together with the stock changes it accounts for.
func (r *orderRepo) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == 0 {
		o.ID = r.ids.Generate().Int64()
	}
	for i := range o.Items {
		if o.Items[i].ID == 0 {
			o.Items[i].ID = r.ids.Generate().Int64()
		}
		o.Items[i].OrderID = o.ID
	}

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(o).Error; err != nil {
		return translate(err, "order")
	}
	if len(o.Items) == 0 {
		return nil
	}
	res := db.Create(&o.Items)
	if res.Error != nil {
		return translate(res.Error, "order items")
	}
	if res.RowsAffected != int64(len(o.Items)) {
		return errors.Errorf("order %d: saved %d of %d items", o.ID, res.RowsAffected, len(o.Items))
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, id).Error
	if err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64, f repository.OrderFilter) ([]domain.Order, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "order count")
	}

	offset, limit := paginate(f.Page, f.PerPage)
	var out []domain.Order
	err := r.db.WithContext(ctx).Scopes(filter).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, translate(err, "order list")
	}
	return out, total, nil
}

func (r *orderRepo) UpdateState(ctx context.Context, o *domain.Order, from domain.OrderState) error {
	o.UpdatedAt = time.Now()
	db := r.db.WithContext(ctx)
	res := db.Model(&domain.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?", o.ID, from.Status, from.PaymentStatus).
		Updates(map[string]interface{}{
			"status":         o.Status,
			"payment_status": o.PaymentStatus,
			"payment_id":     o.PaymentID,
			"updated_at":     o.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error, "order")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := db.Model(&domain.Order{}).Where("id = ?", o.ID).Count(&n).Error; err != nil {
		return translate(err, "order")
	}
	if n == 0 {
		return domain.NotFoundf("order not found")
	}
	return errors.WithMessagef(domain.ErrInvalidStateTransition,
		"order %d was changed by another request, reload and retry", o.ID)
}
