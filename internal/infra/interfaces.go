package infra

import (
	"context"

	"github.com/ManishSRawat/e-sell/internal/domain"
)

// Notifier delivers a plain-text message to one recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// ProductCache holds rendered product details. A miss is reported as ok=false
// with a nil error.
type ProductCache interface {
	Get(ctx context.Context, id int64) (p *domain.Product, ok bool, err error)
	Set(ctx context.Context, p *domain.Product) error
	Invalidate(ctx context.Context, ids ...int64) error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, int64) (*domain.Product, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, *domain.Product) error                { return nil }
func (NopCache) Invalidate(context.Context, ...int64) error                { return nil }

var _ ProductCache = NopCache{}
