package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrInsufficientStock, http.StatusBadRequest},
	{domain.ErrInvalidQuantity, http.StatusBadRequest},
	{domain.ErrEmptyCart, http.StatusBadRequest},
	{domain.ErrInvalidStatus, http.StatusBadRequest},
	{domain.ErrInvalidStateTransition, http.StatusBadRequest},
	{domain.ErrConflict, http.StatusBadRequest},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusForbidden},
	{domain.ErrItemNotInCart, http.StatusNotFound},
	{domain.ErrNotFound, http.StatusNotFound},
}

// classify maps an error onto a status code and the message shown to clients.
func classify(err error) (int, string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, publicMessage(err, e.err)
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// publicMessage drops the trailing sentinel text that pkg/errors appends
// after a WithMessage annotation.
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimSuffix(msg, ": "+sentinel.Error()); trimmed != "" {
		msg = trimmed
	}
	return msg
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, msg := classify(err)
	body := gin.H{"error": msg}

	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		body["product_id"] = strconv.FormatInt(stockErr.ProductID, 10)
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
