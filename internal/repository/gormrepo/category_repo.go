package gormrepo

import (
	"context"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type categoryRepo struct {
	db  *gorm.DB
	ids *snowflake.Node
}

func (r *categoryRepo) Create(ctx context.Context, c *domain.Category) error {
	if c.ID == 0 {
		c.ID = r.ids.Generate().Int64()
	}
	return translate(r.db.WithContext(ctx).Create(c).Error, "category")
}

func (r *categoryRepo) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &c, nil
}

func (r *categoryRepo) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, translate(err, "category list")
	}
	return out, nil
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Category{}, id)
	if res.Error != nil {
		return translate(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("category not found")
	}
	return nil
}
