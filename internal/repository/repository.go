package repository

import (
	"context"
	"time"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/shopspring/decimal"
)

// Store groups the repositories. Repositories obtained inside Transaction share
// the transaction; any error returned by fn rolls every write back.
type Store interface {
	Products() ProductRepository
	Categories() CategoryRepository
	Users() UserRepository
	Carts() CartRepository
	Orders() OrderRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type ProductFilter struct {
	Page       int
	PerPage    int
	CategoryID int64
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
	Desc       bool
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	// Update writes the named columns (all editable columns when none are given).
	Update(ctx context.Context, p *domain.Product, columns ...string) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, f ProductFilter) ([]domain.Product, int64, error)
	All(ctx context.Context) ([]domain.Product, error)
	NewestIDs(ctx context.Context, n int) ([]int64, error)
	CountByCategory(ctx context.Context, categoryID int64) (int64, error)

	// DecrementStock subtracts qty only if at least qty units remain and
	// reports whether the row was updated.
	DecrementStock(ctx context.Context, id int64, qty int64) (bool, error)
	IncrementStock(ctx context.Context, id int64, qty int64) error

	SaveReview(ctx context.Context, r *domain.Review) error
	FindReview(ctx context.Context, productID, userID int64) (*domain.Review, error)
	DeleteReview(ctx context.Context, productID, userID int64) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	Create(ctx context.Context, c *domain.Cart) error
	SaveItem(ctx context.Context, item *domain.CartItem) error
	DeleteItem(ctx context.Context, cartID, productID int64) error
	ClearItems(ctx context.Context, cartID int64) error
	DeleteItemsByProduct(ctx context.Context, productID int64) error
	Touch(ctx context.Context, cartID int64, at time.Time) error
}

type OrderFilter struct {
	Status  domain.OrderStatus
	Page    int
	PerPage int
}

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64, f OrderFilter) ([]domain.Order, int64, error)
	// UpdateState writes o's status and payment fields only while the stored
	// row still holds from; otherwise it fails with ErrInvalidStateTransition.
	UpdateState(ctx context.Context, o *domain.Order, from domain.OrderState) error
}
