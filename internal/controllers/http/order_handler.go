package http

import (
	"net/http"

	"github.com/ManishSRawat/e-sell/internal/auth"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) orderID(c *gin.Context) (int64, bool) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.fail(c, services.ErrOrderNotFound)
	}
	return id, ok
}

func orderView(o *domain.Order) *domain.Order {
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return o
}

func (h *Handler) ListOrders(c *gin.Context) {
	page, ok1 := queryInt(c, "page", 1)
	perPage, ok2 := queryInt(c, "per_page", services.DefaultPerPage)
	if !ok1 || !ok2 {
		badRequest(c, "invalid query parameters")
		return
	}
	res, err := h.orders.ListOrders(c.Request.Context(), auth.CurrentUser(c), c.Query("status"), page, perPage)
	if err != nil {
		h.fail(c, err)
		return
	}
	for i := range res.Orders {
		orderView(&res.Orders[i])
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView(o))
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "shipping address is required")
		return
	}
	o, err := h.orders.CreateOrder(c.Request.Context(), auth.CurrentUser(c), *req.ShippingAddress)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": orderView(o)})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	o, err := h.orders.CancelOrder(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": orderView(o)})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), auth.CurrentUser(c), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": orderView(o)})
}

func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payment status and payment ID are required")
		return
	}
	o, err := h.orders.UpdatePayment(c.Request.Context(), auth.CurrentUser(c), id, req.PaymentStatus, req.PaymentID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment status updated successfully", "order": orderView(o)})
}
