package http

import (
	"net/http"
	"time"

	"github.com/ManishSRawat/e-sell/internal/auth"
	"github.com/ManishSRawat/e-sell/internal/config"
	"github.com/ManishSRawat/e-sell/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	users   *services.UserService
	catalog *services.CatalogService
	carts   *services.CartService
	orders  *services.OrderService
	tokens  *auth.TokenManager
	loader  auth.UserLoader
	log     *zap.Logger
}

func NewHandler(users *services.UserService, catalog *services.CatalogService, carts *services.CartService,
	orders *services.OrderService, tokens *auth.TokenManager, loader auth.UserLoader, log *zap.Logger) *Handler {
	return &Handler{
		users:   users,
		catalog: catalog,
		carts:   carts,
		orders:  orders,
		tokens:  tokens,
		loader:  loader,
		log:     log,
	}
}

// NewRouter builds the gin engine with recovery, request logging and CORS.
func NewRouter(h *Handler, cfg config.WebConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg.AllowOrigins)))
	h.RegisterRoutes(r)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	}
	return cfg
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	requireAuth := auth.RequireAuth(h.tokens, h.loader)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")

	a := api.Group("/auth")
	a.POST("/register", h.Register)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.GET("/profile", requireAuth, h.GetProfile)
	a.PUT("/profile", requireAuth, h.UpdateProfile)
	a.GET("/verify-email/:token", h.VerifyEmail)
	a.POST("/forgot-password", h.ForgotPassword)
	a.POST("/reset-password/:token", h.ResetPassword)

	p := api.Group("/products")
	p.GET("/", h.ListProducts)
	p.GET("/export", requireAuth, h.ExportProducts)
	p.GET("/:id", h.GetProduct)
	p.POST("/", requireAuth, h.CreateProduct)
	p.PUT("/:id", requireAuth, h.UpdateProduct)
	p.DELETE("/:id", requireAuth, h.DeleteProduct)
	p.POST("/:id/review", requireAuth, h.AddReview)
	p.DELETE("/:id/review", requireAuth, h.DeleteReview)

	cat := api.Group("/categories")
	cat.GET("/", h.ListCategories)
	cat.POST("/", requireAuth, h.CreateCategory)
	cat.DELETE("/:id", requireAuth, h.DeleteCategory)

	cart := api.Group("/cart", requireAuth)
	cart.GET("/", h.GetCart)
	cart.POST("/add", h.AddToCart)
	cart.PUT("/update", h.UpdateCartItem)
	cart.DELETE("/remove/:product_id", h.RemoveFromCart)
	cart.DELETE("/clear", h.ClearCart)

	o := api.Group("/orders", requireAuth)
	o.GET("/", h.ListOrders)
	o.GET("/:id", h.GetOrder)
	o.POST("/create", h.CreateOrder)
	o.POST("/:id/cancel", h.CancelOrder)
	o.PUT("/:id/status", h.UpdateOrderStatus)
	o.POST("/:id/payment", h.UpdatePayment)
}
