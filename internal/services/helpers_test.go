package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ManishSRawat/e-sell/internal/auth"
	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/infra"
	"github.com/ManishSRawat/e-sell/internal/mocks"
	"github.com/ManishSRawat/e-sell/internal/notify"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/ManishSRawat/e-sell/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type invalidations struct {
	mu  sync.Mutex
	ids []int64
}

func (r *invalidations) InvalidateProducts(_ context.Context, ids ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, ids...)
}

type fixture struct {
	store     repository.Store
	notifier  *mocks.MockNotifier
	publisher *mocks.MockPublisher
	invalid   *invalidations

	catalog *CatalogService
	carts   *CartService
	orders  *OrderService
	users   *UserService

	category *domain.Category
	seller   *domain.User
	buyer    *domain.User
	admin    *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	store := testutil.NewStore(t)
	f := &fixture{
		store:     store,
		notifier:  new(mocks.MockNotifier),
		publisher: new(mocks.MockPublisher),
		invalid:   &invalidations{},
	}
	runner := notify.Inline{Log: log}
	authCfg := config.AuthConfig{
		JWTSecret:     "test-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		ResetTokenTTL: time.Hour,
	}

	f.catalog = NewCatalogService(store, infra.NopCache{}, log)
	f.carts = NewCartService(store, log)
	f.orders = NewOrderService(store, f.invalid, f.notifier, f.publisher, runner, log)
	f.users = NewUserService(store, auth.NewTokenManager(authCfg, "e-sell"), f.notifier, runner, authCfg, "http://shop.test", log)

	f.category = testutil.SeedCategory(t, store, "Books")
	f.seller = testutil.SeedUser(t, store, "seller@shop.test", domain.RoleSeller)
	f.buyer = testutil.SeedUser(t, store, "buyer@shop.test", domain.RoleBuyer)
	f.admin = testutil.SeedUser(t, store, "admin@shop.test", domain.RoleAdmin)
	return f
}

func (f *fixture) product(t *testing.T, name, price string, stock int64) *domain.Product {
	t.Helper()
	return testutil.SeedProduct(t, f.store, name, price, stock, f.category.ID, f.seller.ID)
}

func (f *fixture) stockOf(t *testing.T, id int64) int64 {
	t.Helper()
	p, err := f.store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) addToCart(t *testing.T, user *domain.User, productID, qty int64) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), user.ID, productID, qty)
	require.NoError(t, err)
}

var testAddress = domain.ShippingAddress{
	Street:  "1 Main St",
	City:    "Springfield",
	State:   "IL",
	Zip:     "62701",
	Country: "US",
}
