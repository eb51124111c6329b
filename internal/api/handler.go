package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"crm-service/internal/models"
	"crm-service/internal/service"
	"crm-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const statsCacheTTL = 30 * time.Second

// Querier serves the read side of the boundary. *store.Store
// implements it.
type Querier interface {
	GetStats(ctx context.Context) (*models.Stats, error)
	FilterOrders(ctx context.Context, status string, orderDateGte *time.Time) ([]models.OrderSummary, error)
}

// StatsCache caches the aggregate stats snapshot. *redisclient.Client
// implements it; a nil cache disables caching.
type StatsCache interface {
	GetCachedStats(ctx context.Context) (*models.Stats, error)
	CacheStats(ctx context.Context, stats *models.Stats, ttl time.Duration) error
	InvalidateStats(ctx context.Context) error
}

// Handler contains HTTP handlers for the query/mutation boundary
type Handler struct {
	engine      *service.MutationEngine
	replenisher *service.StockReplenisher
	querier     Querier
	cache       StatsCache
	logger      *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(engine *service.MutationEngine, replenisher *service.StockReplenisher, querier Querier, cache StatsCache) *Handler {
	return &Handler{
		engine:      engine,
		replenisher: replenisher,
		querier:     querier,
		cache:       cache,
		logger:      util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/customers", h.createCustomer)
		v1.POST("/customers/bulk", h.createCustomersBulk)
		v1.POST("/products", h.createProduct)
		v1.POST("/orders", h.createOrder)

		v1.GET("/stats", h.getStats)
		v1.GET("/orders", h.listOrders)

		v1.POST("/products/low-stock/restock", h.restockLowStock)
		v1.PUT("/products/by-name/:name", h.updateProduct)
	}
}

// healthCheck answers the heartbeat query
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"hello":  "Hello, CRM!",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createCustomer handles single customer creation
func (h *Handler) createCustomer(c *gin.Context) {
	var input service.CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	customer, err := h.engine.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateStats(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{
		"customer": customer,
		"message":  "Customer created successfully.",
	})
}

// createCustomersBulk handles the batch customer mutation
func (h *Handler) createCustomersBulk(c *gin.Context) {
	var req struct {
		Customers []*service.CreateCustomerInput `json:"customers" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.engine.CreateCustomersBulk(c.Request.Context(), req.Customers)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateStats(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// createProduct handles product creation
func (h *Handler) createProduct(c *gin.Context) {
	var input service.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, err := h.engine.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	order, err := h.engine.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateStats(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// getStats serves the aggregate counters, cached with a short TTL
func (h *Handler) getStats(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		cached, err := h.cache.GetCachedStats(ctx)
		if err != nil {
			h.logger.Warn("Stats cache read failed", zap.Error(err))
		}
		if cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	stats, err := h.querier.GetStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats", "details": err.Error()})
		return
	}

	if h.cache != nil {
		if err := h.cache.CacheStats(ctx, stats, statsCacheTTL); err != nil {
			h.logger.Warn("Stats cache write failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, stats)
}

// listOrders serves filtered orders with customer emails resolved
func (h *Handler) listOrders(c *gin.Context) {
	status := c.Query("status")

	var orderDateGte *time.Time
	if raw := c.Query("order_date_gte"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order_date_gte", "details": err.Error()})
			return
		}
		orderDateGte = &parsed
	}

	orders, err := h.querier.FilterOrders(c.Request.Context(), status, orderDateGte)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders", "details": err.Error()})
		return
	}
	if orders == nil {
		orders = []models.OrderSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// restockLowStock runs the catalog-wide low-stock bump
func (h *Handler) restockLowStock(c *gin.Context) {
	var req struct {
		RestockAmount int `json:"restock_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.replenisher.ReplenishLowStock(c.Request.Context(), req.RestockAmount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// updateProduct runs the name-targeted update with the floor rule
func (h *Handler) updateProduct(c *gin.Context) {
	var input service.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	product, message, err := h.replenisher.UpdateProduct(c.Request.Context(), c.Param("name"), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product, "message": message})
}

// respondError maps typed mutation failures to HTTP statuses
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidStock),
		errors.Is(err, service.ErrNoValidProducts):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}

func (h *Handler) invalidateStats(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateStats(ctx); err != nil {
		h.logger.Warn("Stats cache invalidation failed", zap.Error(err))
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
