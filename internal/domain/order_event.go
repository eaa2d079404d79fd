package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated        = "order.created"
	EventOrderCancelled      = "order.cancelled"
	EventOrderStatusUpdated  = "order.status_updated"
	EventOrderPaymentUpdated = "order.payment_updated"
)

type OrderEvent struct {
	OrderID       int64           `json:"orderId,string"`
	UserID        int64           `json:"userId,string"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func NewOrderEvent(o *Order) OrderEvent {
	return OrderEvent{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		OccurredAt:    time.Now(),
	}
}
