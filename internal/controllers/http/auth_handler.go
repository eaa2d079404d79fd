package http

import (
	"net/http"

	"github.com/ManishSRawat/e-sell/internal/auth"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "missing required fields")
		return
	}
	u, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email for verification.",
		"user":    u,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "missing email or password")
		return
	}
	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  res.Tokens.AccessToken,
		"refresh_token": res.Tokens.RefreshToken,
		"expires_in":    res.Tokens.ExpiresIn,
		"user":          res.User,
	})
}

// Refresh accepts the refresh token in the body or as the bearer token.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	_ = c.ShouldBindJSON(&req)
	raw := req.RefreshToken
	if raw == "" {
		raw = bearerToken(c)
	}
	if raw == "" {
		h.fail(c, errors.WithMessage(domain.ErrUnauthenticated, "refresh token required"))
		return
	}
	access, err := h.users.Refresh(c.Request.Context(), raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	v := c.GetHeader("Authorization")
	if len(v) > len(prefix) && v[:len(prefix)] == prefix {
		return v[len(prefix):]
	}
	return v
}

func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.users.Profile(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), auth.CurrentUser(c), services.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": u})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	if err := h.users.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Email verified successfully"})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email is required")
		return
	}
	if err := h.users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.fail(c, err)
			return
		}
		h.log.Error("forgot password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send reset email"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: services.ForgotPasswordMessage})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "new password is required")
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successful"})
}
