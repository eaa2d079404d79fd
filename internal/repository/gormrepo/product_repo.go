package gormrepo

import (
	"context"
	"strings"
	"time"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepo struct {
	db  *gorm.DB
	ids *snowflake.Node
}

var editableProductColumns = []string{"name", "description", "price", "category_id", "stock", "images"}

var productSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == 0 {
		p.ID = r.ids.Generate().Int64()
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error, "product")
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product, columns ...string) error {
	if len(columns) == 0 {
		columns = editableProductColumns
	}
	p.UpdatedAt = time.Now()
	cols := append([]string{"updated_at"}, columns...)
	err := r.db.WithContext(ctx).Model(p).Omit(clause.Associations).Select(cols).Updates(p).Error
	return translate(err, "product")
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
		return translate(err, "review")
	}
	res := db.Delete(&domain.Product{}, id)
	if res.Error != nil {
		return translate(res.Error, "product")
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("product not found")
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&p, id).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if f.CategoryID != 0 {
			db = db.Where("category_id = ?", f.CategoryID)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			db = db.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
		}
		if f.MinPrice != nil {
			db = db.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("price <= ?", *f.MaxPrice)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "product count")
	}

	col, ok := productSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	offset, limit := paginate(f.Page, f.PerPage)

	var out []domain.Product
	err := r.db.WithContext(ctx).Scopes(filter).
		Preload("Reviews").
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: f.Desc}).
		Order("id").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, translate(err, "product list")
	}
	return out, total, nil
}

func (r *productRepo) All(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, translate(err, "product list")
	}
	return out, nil
}

func (r *productRepo) NewestIDs(ctx context.Context, n int) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Order("created_at DESC").Limit(n).Pluck("id", &ids).Error
	return ids, translate(err, "product list")
}

func (r *productRepo) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, translate(err, "product count")
}

func (r *productRepo) DecrementStock(ctx context.Context, id int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, translate(res.Error, "product stock")
	}
	return res.RowsAffected == 1, nil
}

func (r *productRepo) IncrementStock(ctx context.Context, id int64, qty int64) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error, "product stock")
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("product %d not found", id)
	}
	return nil
}

func (r *productRepo) SaveReview(ctx context.Context, rv *domain.Review) error {
	if rv.ID == 0 {
		rv.ID = r.ids.Generate().Int64()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "created_at"}),
	}).Create(rv).Error
	return translate(err, "review")
}

func (r *productRepo) FindReview(ctx context.Context, productID, userID int64) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).Where("product_id = ? AND user_id = ?", productID, userID).First(&rv).Error
	if err != nil {
		return nil, translate(err, "review")
	}
	return &rv, nil
}

func (r *productRepo) DeleteReview(ctx context.Context, productID, userID int64) error {
	err := r.db.WithContext(ctx).Where("product_id = ? AND user_id = ?", productID, userID).Delete(&domain.Review{}).Error
	return translate(err, "review")
}
