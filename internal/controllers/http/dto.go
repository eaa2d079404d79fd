package http

import (
	"strconv"
	"strings"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Category    string           `json:"category" binding:"required"`
	Stock       *int64           `json:"stock" binding:"required"`
	Images      []string         `json:"images"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Stock       *int64           `json:"stock"`
	Images      []string         `json:"images"`
}

type ReviewRequest struct {
	Rating  *int   `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  *int64 `json:"quantity" binding:"required"`
}

type CreateOrderRequest struct {
	ShippingAddress *domain.ShippingAddress `json:"shipping_address" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
	PaymentID     string `json:"payment_id" binding:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil && id > 0
}

func cartView(c *domain.Cart) *domain.Cart {
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return c
}

func productView(p *domain.Product) *domain.Product {
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}
