package services

import (
	"context"
	"time"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CartService keeps one cart per user. Stock is checked when lines are added
// or changed but nothing is reserved; the order engine re-checks at checkout.
type CartService struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewCartService(store repository.Store, log *zap.Logger) *CartService {
	return &CartService{store: store, log: log, now: time.Now}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	return getOrCreateCart(ctx, s.store, userID)
}

func getOrCreateCart(ctx context.Context, store repository.Store, userID int64) (*domain.Cart, error) {
	c, err := store.Carts().FindByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	c = &domain.Cart{UserID: userID, Items: []domain.CartItem{}}
	if err := store.Carts().Create(ctx, c); err != nil {
		// lost a race with a concurrent first access
		if errors.Is(err, domain.ErrConflict) {
			return store.Carts().FindByUser(ctx, userID)
		}
		return nil, err
	}
	return c, nil
}

func (s *CartService) checkLine(ctx context.Context, tx repository.Store, productID, quantity int64) (*domain.Product, error) {
	p, err := tx.Products().FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return nil, &domain.StockError{ProductID: p.ID, ProductName: p.Name, Requested: quantity, Available: p.Stock}
	}
	return p, nil
}

// AddItem merges quantity into the product's line, or appends a new line.
// The merged quantity must still fit the product's current stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID, quantity int64) (*domain.Cart, error) {
	var out *domain.Cart
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		p, err := s.checkLine(ctx, tx, productID, quantity)
		if err != nil {
			return err
		}
		cart, err := getOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}

		now := s.now()
		line := cart.Line(productID)
		if line != nil {
			total := line.Quantity + quantity
			if total > p.Stock {
				return &domain.StockError{ProductID: p.ID, ProductName: p.Name, Requested: total, Available: p.Stock}
			}
			line.Quantity = total
			line.AddedAt = now
			if err := tx.Carts().SaveItem(ctx, line); err != nil {
				return err
			}
		} else {
			item := domain.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity, AddedAt: now}
			if err := tx.Carts().SaveItem(ctx, &item); err != nil {
				return err
			}
			cart.Items = append(cart.Items, item)
		}
		if err := tx.Carts().Touch(ctx, cart.ID, now); err != nil {
			return err
		}
		cart.UpdatedAt = now
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateItem replaces the quantity of an existing line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID, quantity int64) (*domain.Cart, error) {
	var out *domain.Cart
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := s.checkLine(ctx, tx, productID, quantity); err != nil {
			return err
		}
		cart, err := getOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		line := cart.Line(productID)
		if line == nil {
			return domain.ErrItemNotInCart
		}

		now := s.now()
		line.Quantity = quantity
		line.AddedAt = now
		if err := tx.Carts().SaveItem(ctx, line); err != nil {
			return err
		}
		if err := tx.Carts().Touch(ctx, cart.ID, now); err != nil {
			return err
		}
		cart.UpdatedAt = now
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveItem drops the product's line; a missing line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) (*domain.Cart, error) {
	var out *domain.Cart
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		cart, err := getOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cart.Line(productID) == nil {
			out = cart
			return nil
		}
		if err := tx.Carts().DeleteItem(ctx, cart.ID, productID); err != nil {
			return err
		}
		kept := cart.Items[:0]
		for _, it := range cart.Items {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		cart.Items = kept
		now := s.now()
		if err := tx.Carts().Touch(ctx, cart.ID, now); err != nil {
			return err
		}
		cart.UpdatedAt = now
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CartService) Clear(ctx context.Context, userID int64) (*domain.Cart, error) {
	var out *domain.Cart
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		cart, err := getOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := tx.Carts().ClearItems(ctx, cart.ID); err != nil {
			return err
		}
		if err := tx.Carts().Touch(ctx, cart.ID, now); err != nil {
			return err
		}
		cart.Items = []domain.CartItem{}
		cart.UpdatedAt = now
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
