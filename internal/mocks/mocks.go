package mocks

import (
	"context"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockProductCache struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	args := m.Called(ctx, recipient, subject, body)
	return args.Error(0)
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message interface{}) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockProductCache) Get(ctx context.Context, id int64) (*domain.Product, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Product), args.Bool(1), args.Error(2)
}

func (m *MockProductCache) Set(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductCache) Invalidate(ctx context.Context, ids ...int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}
