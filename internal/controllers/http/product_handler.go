package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/ManishSRawat/e-sell/internal/auth"
	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, false
	}
	return &d, true
}

func (h *Handler) ListProducts(c *gin.Context) {
	page, ok1 := queryInt(c, "page", 1)
	perPage, ok2 := queryInt(c, "per_page", services.DefaultPerPage)
	minPrice, ok3 := queryDecimal(c, "min_price")
	maxPrice, ok4 := queryDecimal(c, "max_price")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		badRequest(c, "invalid query parameters")
		return
	}
	var categoryID int64
	if v := c.Query("category"); v != "" {
		id, ok := parseID(v)
		if !ok {
			badRequest(c, "invalid category")
			return
		}
		categoryID = id
	}

	res, err := h.catalog.ListProducts(c.Request.Context(), services.ProductQuery{
		Page:       page,
		PerPage:    perPage,
		CategoryID: categoryID,
		Search:     c.Query("search"),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		SortBy:     c.DefaultQuery("sort_by", "created_at"),
		SortOrder:  c.DefaultQuery("sort_order", "desc"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	for i := range res.Products {
		productView(&res.Products[i])
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) productID(c *gin.Context) (int64, bool) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.fail(c, domain.NotFoundf("product not found"))
	}
	return id, ok
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, productView(p))
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "missing required fields")
		return
	}
	categoryID, ok := parseID(req.Category)
	if !ok {
		badRequest(c, "invalid category")
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), auth.CurrentUser(c), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  categoryID,
		Stock:       *req.Stock,
		Images:      req.Images,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": productView(p)})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	patch := services.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
	}
	if req.Category != nil {
		categoryID, ok := parseID(*req.Category)
		if !ok {
			badRequest(c, "invalid category")
			return
		}
		patch.CategoryID = &categoryID
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), auth.CurrentUser(c), id, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": productView(p)})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), auth.CurrentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

func (h *Handler) AddReview(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "rating is required")
		return
	}
	p, err := h.catalog.AddReview(c.Request.Context(), auth.CurrentUser(c), id, *req.Rating, req.Comment)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review added successfully", "product": productView(p)})
}

func (h *Handler) DeleteReview(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	p, err := h.catalog.DeleteReview(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully", "product": productView(p)})
}

func (h *Handler) ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.catalog.ExportProducts(c.Request.Context(), auth.CurrentUser(c), &buf); err != nil {
		h.fail(c, err)
		return
	}
	name := "products-" + time.Now().UTC().Format("20060102") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "category name is required")
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), auth.CurrentUser(c), req.Name, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": cat})
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		h.fail(c, domain.NotFoundf("category not found"))
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), auth.CurrentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted"})
}
