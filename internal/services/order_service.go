package services

import (
	"context"
	"sort"
	"time"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/infra"
	rabbit "github.com/ManishSRawat/e-sell/internal/infra/rabbitmq"
	"github.com/ManishSRawat/e-sell/internal/notify"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrOrderNotFound = domain.NotFoundf("order not found")

// ProductInvalidator drops cached product details after stock changes.
type ProductInvalidator interface {
	InvalidateProducts(ctx context.Context, ids ...int64)
}

// OrderService turns carts into order snapshots and drives the order and
// payment state machines. Every stock movement runs in the same transaction
// as the order write it belongs to.
type OrderService struct {
	store     repository.Store
	products  ProductInvalidator
	notifier  infra.Notifier
	publisher rabbit.PublisherInterface
	runner    notify.Runner
	log       *zap.Logger
}

func NewOrderService(store repository.Store, products ProductInvalidator, notifier infra.Notifier,
	pub rabbit.PublisherInterface, runner notify.Runner, log *zap.Logger) *OrderService {
	return &OrderService{
		store:     store,
		products:  products,
		notifier:  notifier,
		publisher: pub,
		runner:    runner,
		log:       log,
	}
}

// CreateOrder checks out the caller's cart. Lines are taken in product-id
// order; each decrement is conditional on sufficient stock, and the first
// line that cannot be satisfied rolls back the whole checkout.
func (u *OrderService) CreateOrder(ctx context.Context, actor *domain.User, addr domain.ShippingAddress) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	var order *domain.Order
	err := u.store.Transaction(ctx, func(tx repository.Store) error {
		cart, err := tx.Carts().FindByUser(ctx, actor.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if cart.IsEmpty() {
			return domain.ErrEmptyCart
		}

		lines := append([]domain.CartItem(nil), cart.Items...)
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			p, err := tx.Products().FindByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			ok, err := tx.Products().DecrementStock(ctx, p.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &domain.StockError{ProductID: p.ID, ProductName: p.Name, Requested: line.Quantity, Available: p.Stock}
			}
			items = append(items, domain.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				PriceAtTime: p.Price,
			})
		}

		o := &domain.Order{
			UserID:          actor.ID,
			Items:           items,
			TotalAmount:     domain.SumItems(items),
			Status:          domain.StatusPending,
			ShippingAddress: addr,
			PaymentStatus:   domain.PaymentPending,
		}
		if err := tx.Orders().Create(ctx, o); err != nil {
			return err
		}
		if err := tx.Carts().ClearItems(ctx, cart.ID); err != nil {
			return err
		}
		if err := tx.Carts().Touch(ctx, cart.ID, time.Now()); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", actor.ID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(order.Items)))

	u.products.InvalidateProducts(ctx, productIDs(order)...)
	u.sendEmail(orderConfirmationEmail(actor, order))
	u.publish(domain.EventOrderCreated, order)
	return order, nil
}

// CancelOrder cancels one of the caller's own orders and puts its stock back.
func (u *OrderService) CancelOrder(ctx context.Context, actor *domain.User, orderID int64) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	var order *domain.Order
	err := u.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.OwnedBy(actor.ID) {
			return ErrOrderNotFound
		}
		if !o.Status.Cancellable() {
			return errors.WithMessagef(domain.ErrInvalidStateTransition,
				"order cannot be cancelled in its current status (%s)", o.Status)
		}
		if err := u.cancel(ctx, tx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("order cancelled", zap.Int64("order_id", order.ID), zap.Int64("user_id", actor.ID))
	u.products.InvalidateProducts(ctx, productIDs(order)...)
	u.sendEmail(orderCancelledEmail(actor, order))
	u.publish(domain.EventOrderCancelled, order)
	return order, nil
}

// cancel moves o to cancelled and restores the stock each line consumed. The
// guarded state write goes first so a request working from a stale read of o
// fails before it touches stock.
func (u *OrderService) cancel(ctx context.Context, tx repository.Store, o *domain.Order) error {
	from := o.State()
	if _, err := o.ApplyStatus(domain.StatusCancelled); err != nil {
		return err
	}
	if err := tx.Orders().UpdateState(ctx, o, from); err != nil {
		return err
	}
	for _, it := range o.Items {
		err := tx.Products().IncrementStock(ctx, it.ProductID, it.Quantity)
		if errors.Is(err, domain.ErrNotFound) {
			// product was removed from the catalog since the order was placed
			u.log.Warn("stock not restored for deleted product",
				zap.Int64("order_id", o.ID), zap.Int64("product_id", it.ProductID))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus is the administrative status change. Moving to the current
// status is a no-op; moving to cancelled restores stock like CancelOrder.
func (u *OrderService) UpdateStatus(ctx context.Context, actor *domain.User, orderID int64, status string) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return nil, errors.WithMessage(domain.ErrUnauthorized, "admin only")
	}
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var (
		order   *domain.Order
		changed bool
	)
	err = u.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		order = o
		if o.Status == next {
			return nil
		}
		changed = true
		if next == domain.StatusCancelled {
			return u.cancel(ctx, tx, o)
		}
		from := o.State()
		if _, err := o.ApplyStatus(next); err != nil {
			return err
		}
		return tx.Orders().UpdateState(ctx, o, from)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return order, nil
	}

	u.log.Info("order status updated",
		zap.Int64("order_id", order.ID), zap.String("status", string(order.Status)), zap.Int64("admin_id", actor.ID))

	event := domain.EventOrderStatusUpdated
	if next == domain.StatusCancelled {
		event = domain.EventOrderCancelled
		u.products.InvalidateProducts(ctx, productIDs(order)...)
	}
	if owner, err := u.store.Users().FindByID(ctx, order.UserID); err != nil {
		u.log.Warn("order owner lookup failed", zap.Int64("order_id", order.ID), zap.Error(err))
	} else {
		u.sendEmail(orderStatusEmail(owner, order))
	}
	u.publish(event, order)
	return order, nil
}

// UpdatePayment records a payment outcome on an order owned by the caller
// (admins may update any order).
func (u *OrderService) UpdatePayment(ctx context.Context, actor *domain.User, orderID int64, status, paymentID string) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if paymentID == "" {
		return nil, domain.Validationf("payment status and payment ID are required")
	}
	next, err := domain.ParsePaymentStatus(status)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	err = u.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.OwnedBy(actor.ID) && !actor.IsAdmin() {
			return ErrOrderNotFound
		}
		from := o.State()
		if err := o.ApplyPayment(next, paymentID); err != nil {
			return err
		}
		order = o
		return tx.Orders().UpdateState(ctx, o, from)
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("order payment updated",
		zap.Int64("order_id", order.ID),
		zap.String("payment_status", string(order.PaymentStatus)),
		zap.String("status", string(order.Status)))
	u.publish(domain.EventOrderPaymentUpdated, order)
	return order, nil
}

func (u *OrderService) GetOrder(ctx context.Context, actor *domain.User, orderID int64) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	o, err := u.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(actor.ID) && !actor.IsAdmin() {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

type OrderPage struct {
	Orders     []domain.Order `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int64          `json:"total_pages"`
}

// ListOrders pages through the caller's orders, newest first.
func (u *OrderService) ListOrders(ctx context.Context, actor *domain.User, status string, page, perPage int) (*OrderPage, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	var st domain.OrderStatus
	if status != "" {
		parsed, err := domain.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		st = parsed
	}
	page, perPage = normalizePage(page, perPage)
	orders, total, err := u.store.Orders().ListByUser(ctx, actor.ID, repository.OrderFilter{
		Status:  st,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return &OrderPage{
		Orders:     orders,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages(total, perPage),
	}, nil
}

func (u *OrderService) sendEmail(m email) {
	u.runner.Go("email: "+m.Subject, func(ctx context.Context) error {
		return u.notifier.Send(ctx, m.To, m.Subject, m.Body)
	})
}

func (u *OrderService) publish(pattern string, o *domain.Order) {
	evt := domain.NewOrderEvent(o)
	u.runner.Go("event: "+pattern, func(ctx context.Context) error {
		return u.publisher.Publish(ctx, pattern, evt)
	})
}

func productIDs(o *domain.Order) []int64 {
	ids := make([]int64, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
