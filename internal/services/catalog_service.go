package services

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/infra"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	warmupWorkers  = 8

	productFillTimeout = 5 * time.Second
)

type CatalogService struct {
	store repository.Store
	cache infra.ProductCache
	log   *zap.Logger
	group singleflight.Group

	// generation counts invalidations; a fill that overlaps one never leaves
	// its value in the cache.
	generation atomic.Uint64
}

func NewCatalogService(store repository.Store, cache infra.ProductCache, log *zap.Logger) *CatalogService {
	if cache == nil {
		cache = infra.NopCache{}
	}
	return &CatalogService{store: store, cache: cache, log: log}
}

type ProductQuery struct {
	Page       int
	PerPage    int
	CategoryID int64
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
	SortOrder  string
}

type ProductPage struct {
	Products   []domain.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int64            `json:"total_pages"`
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func totalPages(total int64, perPage int) int64 {
	return (total + int64(perPage) - 1) / int64(perPage)
}

func (u *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page, perPage := normalizePage(q.Page, q.PerPage)
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, domain.Validationf("min_price must not exceed max_price")
	}
	sortBy := q.SortBy
	switch sortBy {
	case "name", "price", "created_at":
	default:
		sortBy = "created_at"
	}

	products, total, err := u.store.Products().List(ctx, repository.ProductFilter{
		Page:       page,
		PerPage:    perPage,
		CategoryID: q.CategoryID,
		Search:     q.Search,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		SortBy:     sortBy,
		Desc:       !strings.EqualFold(q.SortOrder, "asc"),
	})
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return &ProductPage{
		Products:   products,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	}, nil
}

// GetProduct serves product details from the cache, collapsing concurrent
// misses for the same id into one store read. The shared read runs on a
// context detached from the first caller's cancellation.
func (u *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if p, ok, err := u.cache.Get(ctx, id); err != nil {
		u.log.Warn("product cache read failed", zap.Int64("product_id", id), zap.Error(err))
	} else if ok {
		return p, nil
	}

	v, err, _ := u.group.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), productFillTimeout)
		defer cancel()

		gen := u.generation.Load()
		p, err := u.store.Products().FindByID(fillCtx, id)
		if err != nil {
			return nil, err
		}
		if err := u.fill(fillCtx, p, gen); err != nil {
			u.log.Warn("product cache write failed", zap.Int64("product_id", id), zap.Error(err))
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// fill caches p, read from the store when the invalidation generation was gen.
// A newer invalidation either skips the write or removes it again.
func (u *CatalogService) fill(ctx context.Context, p *domain.Product, gen uint64) error {
	if u.generation.Load() != gen {
		return nil
	}
	if err := u.cache.Set(ctx, p); err != nil {
		return err
	}
	if u.generation.Load() != gen {
		return u.cache.Invalidate(ctx, p.ID)
	}
	return nil
}

// InvalidateProducts drops cached details; failures are only logged.
func (u *CatalogService) InvalidateProducts(ctx context.Context, ids ...int64) {
	if len(ids) == 0 {
		return
	}
	u.generation.Add(1)
	if err := u.cache.Invalidate(ctx, ids...); err != nil {
		u.log.Warn("product cache invalidation failed", zap.Int64s("product_ids", ids), zap.Error(err))
	}
}

type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  int64
	Stock       int64
	Images      []string
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" {
		return domain.Validationf("name and description are required")
	}
	if in.Price.IsNegative() {
		return domain.Validationf("price must not be negative")
	}
	if in.Stock < 0 {
		return domain.Validationf("stock must not be negative")
	}
	return nil
}

func (u *CatalogService) checkCategory(ctx context.Context, id int64) error {
	if _, err := u.store.Categories().FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validationf("invalid category")
		}
		return err
	}
	return nil
}

func (u *CatalogService) CreateProduct(ctx context.Context, actor *domain.User, in ProductInput) (*domain.Product, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.CanSell() {
		return nil, errors.WithMessage(domain.ErrUnauthorized, "only sellers and admins can create products")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := u.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	images := in.Images
	if images == nil {
		images = []string{}
	}
	p := &domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		Stock:       in.Stock,
		Images:      images,
		SellerID:    actor.ID,
		Reviews:     []domain.Review{},
	}
	if err := u.store.Products().Create(ctx, p); err != nil {
		return nil, err
	}
	u.log.Info("product created", zap.Int64("product_id", p.ID), zap.Int64("seller_id", actor.ID))
	return p, nil
}

// ProductPatch carries a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *int64
	Stock       *int64
	Images      []string
}

func (u *CatalogService) loadOwned(ctx context.Context, store repository.Store, actor *domain.User, id int64) (*domain.Product, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	p, err := store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(actor) {
		return nil, errors.WithMessage(domain.ErrUnauthorized, "not allowed to modify this product")
	}
	return p, nil
}

func (u *CatalogService) UpdateProduct(ctx context.Context, actor *domain.User, id int64, patch ProductPatch) (*domain.Product, error) {
	p, err := u.loadOwned(ctx, u.store, actor, id)
	if err != nil {
		return nil, err
	}

	var cols []string
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, domain.Validationf("name must not be empty")
		}
		p.Name = strings.TrimSpace(*patch.Name)
		cols = append(cols, "name")
	}
	if patch.Description != nil {
		p.Description = *patch.Description
		cols = append(cols, "description")
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, domain.Validationf("price must not be negative")
		}
		p.Price = *patch.Price
		cols = append(cols, "price")
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, domain.Validationf("stock must not be negative")
		}
		p.Stock = *patch.Stock
		cols = append(cols, "stock")
	}
	if patch.CategoryID != nil {
		if err := u.checkCategory(ctx, *patch.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = *patch.CategoryID
		cols = append(cols, "category_id")
	}
	if patch.Images != nil {
		p.Images = patch.Images
		cols = append(cols, "images")
	}
	if len(cols) == 0 {
		return p, nil
	}

	if err := u.store.Products().Update(ctx, p, cols...); err != nil {
		return nil, err
	}
	u.InvalidateProducts(ctx, p.ID)
	return p, nil
}

// DeleteProduct removes the product together with its reviews and any cart
// lines pointing at it. Orders keep their snapshot.
func (u *CatalogService) DeleteProduct(ctx context.Context, actor *domain.User, id int64) error {
	err := u.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := u.loadOwned(ctx, tx, actor, id); err != nil {
			return err
		}
		if err := tx.Carts().DeleteItemsByProduct(ctx, id); err != nil {
			return err
		}
		return tx.Products().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	u.InvalidateProducts(ctx, id)
	u.log.Info("product deleted", zap.Int64("product_id", id), zap.Int64("actor_id", actor.ID))
	return nil
}

func (u *CatalogService) AddReview(ctx context.Context, actor *domain.User, productID int64, rating int, comment string) (*domain.Product, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, domain.Validationf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	if _, err := u.store.Products().FindByID(ctx, productID); err != nil {
		return nil, err
	}
	err := u.store.Products().SaveReview(ctx, &domain.Review{
		ProductID: productID,
		UserID:    actor.ID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	u.InvalidateProducts(ctx, productID)
	return u.store.Products().FindByID(ctx, productID)
}

// DeleteReview removes the caller's review; removing a missing review succeeds.
func (u *CatalogService) DeleteReview(ctx context.Context, actor *domain.User, productID int64) (*domain.Product, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := u.store.Products().FindByID(ctx, productID); err != nil {
		return nil, err
	}
	if err := u.store.Products().DeleteReview(ctx, productID, actor.ID); err != nil {
		return nil, err
	}
	u.InvalidateProducts(ctx, productID)
	return u.store.Products().FindByID(ctx, productID)
}

type productRow struct {
	ID         int64  `csv:"id"`
	Name       string `csv:"name"`
	Price      string `csv:"price"`
	Stock      int64  `csv:"stock"`
	CategoryID int64  `csv:"category_id"`
	SellerID   int64  `csv:"seller_id"`
	CreatedAt  string `csv:"created_at"`
}

// ExportProducts writes the whole catalog as CSV.
func (u *CatalogService) ExportProducts(ctx context.Context, actor *domain.User, w io.Writer) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return errors.WithMessage(domain.ErrUnauthorized, "admin only")
	}
	products, err := u.store.Products().All(ctx)
	if err != nil {
		return err
	}
	rows := make([]*productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &productRow{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price.StringFixed(2),
			Stock:      p.Stock,
			CategoryID: p.CategoryID,
			SellerID:   p.SellerID,
			CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return errors.Wrap(gocsv.Marshal(rows, w), "write csv")
}

// WarmupCache loads the n newest products into the cache and returns how many
// were stored.
func (u *CatalogService) WarmupCache(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	ids, err := u.store.Products().NewestIDs(ctx, n)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmupWorkers)
	loaded := make([]bool, len(ids))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			gen := u.generation.Load()
			p, err := u.store.Products().FindByID(gctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil
				}
				return err
			}
			if err := u.fill(gctx, p, gen); err != nil {
				u.log.Warn("cache warmup write failed", zap.Int64("product_id", id), zap.Error(err))
				return nil
			}
			loaded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	count := 0
	for _, ok := range loaded {
		if ok {
			count++
		}
	}
	u.log.Info("product cache warmed", zap.Int("requested", n), zap.Int("loaded", count))
	return count, nil
}

func (u *CatalogService) CreateCategory(ctx context.Context, actor *domain.User, name, description string) (*domain.Category, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, errors.WithMessage(domain.ErrUnauthorized, "admin only")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("category name is required")
	}
	if _, err := u.store.Categories().FindByName(ctx, name); err == nil {
		return nil, errors.WithMessage(domain.ErrConflict, "category already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	c := &domain.Category{Name: name, Description: description}
	if err := u.store.Categories().Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, errors.WithMessage(domain.ErrConflict, "category already exists")
		}
		return nil, err
	}
	return c, nil
}

func (u *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := u.store.Categories().List(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

// DeleteCategory refuses while any product still references the category.
func (u *CatalogService) DeleteCategory(ctx context.Context, actor *domain.User, id int64) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return errors.WithMessage(domain.ErrUnauthorized, "admin only")
	}
	return u.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Categories().FindByID(ctx, id); err != nil {
			return err
		}
		n, err := tx.Products().CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.Validationf("category is referenced by %d products", n)
		}
		return tx.Categories().Delete(ctx, id)
	})
}
