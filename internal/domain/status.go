package domain

import (
	"strings"

	"github.com/pkg/errors"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// position along the fulfilment chain; cancelled sits outside it.
var fulfilmentStep = map[OrderStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fulfilmentStep[st]; ok || st == StatusCancelled {
		return st, nil
	}
	return "", errors.WithMessagef(ErrInvalidStatus, "invalid status %q", s)
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// CanTransitionTo allows forward moves along pending→processing→shipped→delivered
// (skipping ahead is allowed) and cancellation from pending or processing.
// Terminal states accept nothing; a same-state move is not a transition.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || s == next {
		return false
	}
	if next == StatusCancelled {
		return s.Cancellable()
	}
	from, ok1 := fulfilmentStep[s]
	to, ok2 := fulfilmentStep[next]
	return ok1 && ok2 && to > from
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {PaymentRefunded},
	PaymentFailed:    nil,
	PaymentRefunded:  nil,
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	ps := PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := paymentTransitions[ps]; ok {
		return ps, nil
	}
	return "", errors.WithMessagef(ErrInvalidStatus, "invalid payment status %q", s)
}

func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

func transitionError(kind string, from, to string) error {
	return errors.WithMessagef(ErrInvalidStateTransition, "cannot move %s from %s to %s", kind, from, to)
}

// ApplyStatus moves the order to next, or fails with ErrInvalidStateTransition.
// It reports false when next equals the current status.
func (o *Order) ApplyStatus(next OrderStatus) (bool, error) {
	if o.Status == next {
		return false, nil
	}
	if !o.Status.CanTransitionTo(next) {
		return false, transitionError("order", string(o.Status), string(next))
	}
	o.Status = next
	return true, nil
}

// ApplyPayment moves payment status to next and records paymentID. Completing
// payment on a pending order advances it to processing.
func (o *Order) ApplyPayment(next PaymentStatus, paymentID string) error {
	if o.PaymentStatus != next && !o.PaymentStatus.CanTransitionTo(next) {
		return transitionError("payment", string(o.PaymentStatus), string(next))
	}
	o.PaymentStatus = next
	o.PaymentID = paymentID
	if next == PaymentCompleted && o.Status == StatusPending {
		o.Status = StatusProcessing
	}
	return nil
}
