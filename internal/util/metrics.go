package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed successfully",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Total number of rejected order placements",
	}, []string{"reason"})

	OrderPlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_placement_latency_seconds",
		Help:    "Latency of the order placement transaction",
		Buckets: prometheus.DefBuckets,
	})

	InventoryAdjustmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_adjustments_total",
		Help: "Total number of administrative inventory adjustments",
	})

	CustomersRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "customers_registered_total",
		Help: "Total number of customers registered",
	})

	ProductsRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_registered_total",
		Help: "Total number of products registered",
	})

	CatalogCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Catalog cache hits",
	})

	CatalogCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Catalog cache misses",
	})

	ReportRefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "report_refresh_total",
		Help: "Total number of report cache refreshes triggered by events",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
