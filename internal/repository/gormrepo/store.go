package gormrepo

import (
	"context"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type store struct {
	db  *gorm.DB
	ids *snowflake.Node
}

// NewStore returns a gorm-backed Store. Entity ids are generated from ids.
func NewStore(db *gorm.DB, ids *snowflake.Node) repository.Store {
	return &store{db: db, ids: ids}
}

var _ repository.Store = (*store)(nil)

func (s *store) Products() repository.ProductRepository {
	return &productRepo{db: s.db, ids: s.ids}
}

func (s *store) Categories() repository.CategoryRepository {
	return &categoryRepo{db: s.db, ids: s.ids}
}

func (s *store) Users() repository.UserRepository {
	return &userRepo{db: s.db, ids: s.ids}
}

func (s *store) Carts() repository.CartRepository {
	return &cartRepo{db: s.db, ids: s.ids}
}

func (s *store) Orders() repository.OrderRepository {
	return &orderRepo{db: s.db, ids: s.ids}
}

func (s *store) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx, ids: s.ids})
	})
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFoundf("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.WithMessagef(domain.ErrConflict, "%s already exists", what)
	default:
		return errors.Wrap(err, what)
	}
}

func paginate(page, perPage int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	return (page - 1) * perPage, perPage
}
