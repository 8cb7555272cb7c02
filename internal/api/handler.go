package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"sgp-service/internal/apperr"
	"sgp-service/internal/service"
	"sgp-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService     *service.OrderService
	customerService  *service.CustomerService
	productService   *service.ProductService
	inventoryService *service.InventoryService
	catalogService   *service.CatalogService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	customerService *service.CustomerService,
	productService *service.ProductService,
	inventoryService *service.InventoryService,
	catalogService *service.CatalogService,
) *Handler {
	return &Handler{
		orderService:     orderService,
		customerService:  customerService,
		productService:   productService,
		inventoryService: inventoryService,
		catalogService:   catalogService,
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
		v1.POST("/orders", h.placeOrder)
		v1.GET("/orders/:id", h.getOrder)

		v1.POST("/customers", h.registerCustomer)
		v1.GET("/customers", h.listCustomers)
		v1.GET("/customers/count", h.customerCount)
		v1.GET("/customers/:id/:company/:type", h.getCustomer)
		v1.PUT("/customers/:id/:company/:type", h.updateCustomer)
		v1.DELETE("/customers/:id/:company/:type", h.deleteCustomer)
		v1.GET("/customers/:id/:company/:type/orders", h.listCustomerOrders)

		v1.POST("/products", h.registerProduct)
		v1.GET("/products/:id/:unit", h.getProduct)
		v1.PUT("/products/:id/:unit", h.updateProduct)
		v1.DELETE("/products/:id/:unit", h.deleteProduct)

		v1.GET("/inventory", h.listInventory)
		v1.GET("/inventory/:product/:unit", h.currentQuantity)
		v1.PUT("/inventory/:id/:product/:unit", h.adjustInventory)

		v1.GET("/catalog/customers", h.customerRefs)
		v1.GET("/catalog/products", h.productRefs)
		v1.GET("/catalog/units", h.listUnits)

		v1.GET("/reports/orders-by-customer", h.ordersByCustomer)
		v1.GET("/reports/inventory-value", h.inventoryValue)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
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

// actor reads the identity stamped into audit columns. Empty means the
// service falls back to its system actor.
func actor(c *gin.Context) string {
	return c.GetHeader("X-Actor")
}

// renderError maps tagged failures to HTTP statuses. Untagged errors
// and persistence failures stay opaque to the client.
func renderError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindInvalidRequest, apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound, apperr.KindReferenceNotFound:
		status = http.StatusNotFound
	case apperr.KindInsufficientStock, apperr.KindReferentialConflict, apperr.KindUniqueConflict:
		status = http.StatusConflict
	}

	body := gin.H{"code": kind.String()}
	if status == http.StatusInternalServerError {
		body["error"] = "internal error"
	} else {
		body["error"] = err.Error()
	}

	var tagged *apperr.Error
	if errors.As(err, &tagged) && tagged.Kind == apperr.KindInsufficientStock {
		body["available"] = strconv.FormatInt(tagged.Available, 10)
	}

	c.JSON(status, body)
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    apperr.KindInvalidRequest.String(),
		"error":   "invalid request body",
		"details": err.Error(),
	})
}

// placeOrder handles order placement
func (h *Handler) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.orderService.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) listCustomerOrders(c *gin.Context) {
	orders, err := h.orderService.ListCustomerOrders(
		c.Request.Context(), c.Param("id"), c.Param("company"), c.Param("type"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// registerCustomer handles customer registration
func (h *Handler) registerCustomer(c *gin.Context) {
	var req service.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	customer, err := h.customerService.Register(c.Request.Context(), &req, actor(c))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.customerService.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *Handler) customerCount(c *gin.Context) {
	count, err := h.customerService.Count(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) getCustomer(c *gin.Context) {
	customer, err := h.customerService.Get(
		c.Request.Context(), c.Param("id"), c.Param("company"), c.Param("type"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, customer)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.Actor = actor(c)

	err := h.customerService.Update(
		c.Request.Context(), c.Param("id"), c.Param("company"), c.Param("type"), &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	err := h.customerService.Delete(
		c.Request.Context(), c.Param("id"), c.Param("company"), c.Param("type"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// registerProduct handles product registration
func (h *Handler) registerProduct(c *gin.Context) {
	var req service.RegisterProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.Register(c.Request.Context(), &req, actor(c))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("id"), c.Param("unit"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.Actor = actor(c)

	err := h.productService.Update(c.Request.Context(), c.Param("id"), c.Param("unit"), &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	err := h.productService.Delete(c.Request.Context(), c.Param("id"), c.Param("unit"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) listInventory(c *gin.Context) {
	listings, err := h.inventoryService.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"inventory": listings})
}

func (h *Handler) currentQuantity(c *gin.Context) {
	quantity, err := h.inventoryService.GetCurrentQuantity(
		c.Request.Context(), c.Param("product"), c.Param("unit"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, quantity)
}

// adjustInventory handles administrative quantity overwrites
func (h *Handler) adjustInventory(c *gin.Context) {
	var req service.AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.Actor = actor(c)

	err := h.inventoryService.Adjust(
		c.Request.Context(), c.Param("id"), c.Param("product"), c.Param("unit"), &req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "adjusted"})
}

func (h *Handler) customerRefs(c *gin.Context) {
	refs, err := h.catalogService.CustomerRefs(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": refs})
}

func (h *Handler) productRefs(c *gin.Context) {
	refs, err := h.catalogService.ProductRefs(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": refs})
}

func (h *Handler) listUnits(c *gin.Context) {
	units, err := h.catalogService.Units(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"units": units})
}

func (h *Handler) ordersByCustomer(c *gin.Context) {
	summaries, err := h.catalogService.OrdersByCustomer(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": summaries})
}

func (h *Handler) inventoryValue(c *gin.Context) {
	value, err := h.catalogService.TotalInventoryValue(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, value)
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
