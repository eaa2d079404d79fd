package domain

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusDelivered, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusPending, false},
		{StatusProcessing, StatusPending, false},
		{StatusDelivered, StatusShipped, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
		{StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseOrderStatus("returned")
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestParsePaymentStatus(t *testing.T) {
	for _, s := range []string{"pending", "completed", "failed", "refunded"} {
		_, err := ParsePaymentStatus(s)
		assert.NoError(t, err, s)
	}
	_, err := ParsePaymentStatus("paid")
	assert.True(t, errors.Is(err, ErrInvalidStatus))
}

func TestOrder_ApplyStatus(t *testing.T) {
	o := &Order{Status: StatusPending}

	changed, err := o.ApplyStatus(StatusShipped)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusShipped, o.Status)

	changed, err = o.ApplyStatus(StatusShipped)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = o.ApplyStatus(StatusCancelled)
	assert.True(t, errors.Is(err, ErrInvalidStateTransition))
	assert.Equal(t, StatusShipped, o.Status)
}

func TestOrder_ApplyPayment(t *testing.T) {
	t.Run("completed advances pending order to processing", func(t *testing.T) {
		o := &Order{Status: StatusPending, PaymentStatus: PaymentPending}
		require.NoError(t, o.ApplyPayment(PaymentCompleted, "pay_1"))
		assert.Equal(t, StatusProcessing, o.Status)
		assert.Equal(t, PaymentCompleted, o.PaymentStatus)
		assert.Equal(t, "pay_1", o.PaymentID)
	})

	t.Run("completed leaves shipped order alone", func(t *testing.T) {
		o := &Order{Status: StatusShipped, PaymentStatus: PaymentPending}
		require.NoError(t, o.ApplyPayment(PaymentCompleted, "pay_2"))
		assert.Equal(t, StatusShipped, o.Status)
	})

	t.Run("refund requires completed", func(t *testing.T) {
		o := &Order{Status: StatusPending, PaymentStatus: PaymentPending}
		err := o.ApplyPayment(PaymentRefunded, "pay_3")
		assert.True(t, errors.Is(err, ErrInvalidStateTransition))
		assert.Equal(t, PaymentPending, o.PaymentStatus)
		assert.Empty(t, o.PaymentID)
	})

	t.Run("failed is terminal", func(t *testing.T) {
		o := &Order{Status: StatusPending, PaymentStatus: PaymentFailed}
		err := o.ApplyPayment(PaymentCompleted, "pay_4")
		assert.True(t, errors.Is(err, ErrInvalidStateTransition))
	})

	t.Run("same status records payment id", func(t *testing.T) {
		o := &Order{Status: StatusProcessing, PaymentStatus: PaymentCompleted, PaymentID: "old"}
		require.NoError(t, o.ApplyPayment(PaymentCompleted, "new"))
		assert.Equal(t, "new", o.PaymentID)
	})
}
