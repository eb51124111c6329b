package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CustomersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "customers_created_total",
		Help: "Total number of customers created",
	})

	CustomersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "customers_failed_total",
		Help: "Total number of failed customer creations",
	}, []string{"reason"})

	BatchItemsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "batch_items_failed_total",
		Help: "Total number of failed items in bulk mutations",
	})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed orders",
	}, []string{"reason"})

	ProductsRestockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_restocked_total",
		Help: "Total number of low-stock bumps applied",
	})

	JobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "job_runs_total",
		Help: "Total number of job runs by outcome",
	}, []string{"job", "outcome"})

	JobRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "job_retries_total",
		Help: "Total number of scheduled job retries",
	}, []string{"job"})

	JobTerminalFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "job_terminal_failures_total",
		Help: "Total number of job runs that exhausted the retry budget",
	}, []string{"job"})

	JobRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_run_duration_seconds",
		Help:    "Duration of job runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

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
