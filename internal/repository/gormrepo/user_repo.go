package gormrepo

import (
	"context"
	"time"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type userRepo struct {
	db  *gorm.DB
	ids *snowflake.Node
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == 0 {
		u.ID = r.ids.Generate().Int64()
	}
	return translate(r.db.WithContext(ctx).Create(u).Error, "user")
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now()
	return translate(r.db.WithContext(ctx).Save(u).Error, "user")
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepo) FindByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return r.first(ctx, "verification_token = ?", token)
}

func (r *userRepo) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	return r.first(ctx, "reset_token = ? AND reset_token_expires > ?", token, now)
}

func (r *userRepo) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("reset_token IS NOT NULL AND reset_token_expires <= ?", now).
		Updates(map[string]interface{}{"reset_token": nil, "reset_token_expires": nil})
	return res.RowsAffected, translate(res.Error, "user")
}

func (r *userRepo) first(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}
