package http

import (
	"net/http"

	"github.com/ManishSRawat/e-sell/internal/auth"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(cart))
}

func (h *Handler) bindCartItem(c *gin.Context) (int64, int64, bool) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "product ID and quantity are required")
		return 0, 0, false
	}
	id, ok := parseID(req.ProductID)
	if !ok {
		h.fail(c, domain.NotFoundf("product not found"))
		return 0, 0, false
	}
	return id, *req.Quantity, true
}

func (h *Handler) AddToCart(c *gin.Context) {
	productID, qty, ok := h.bindCartItem(c)
	if !ok {
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), auth.CurrentUser(c).ID, productID, qty)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart successfully", "cart": cartView(cart)})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	productID, qty, ok := h.bindCartItem(c)
	if !ok {
		return
	}
	cart, err := h.carts.UpdateItem(c.Request.Context(), auth.CurrentUser(c).ID, productID, qty)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated successfully", "cart": cartView(cart)})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	// an unparseable id cannot be in the cart, so removal is a no-op
	productID, _ := parseID(c.Param("product_id"))
	cart, err := h.carts.RemoveItem(c.Request.Context(), auth.CurrentUser(c).ID, productID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed from cart successfully", "cart": cartView(cart)})
}

func (h *Handler) ClearCart(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully", "cart": cartView(cart)})
}
