package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipway_orders_created_total",
		Help: "Total number of orders created through the single-order endpoint.",
	})

	OrdersImportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipway_orders_imported_total",
		Help: "Total number of orders persisted through spreadsheet imports.",
	})

	ImportsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipway_imports_rejected_total",
		Help: "Total number of spreadsheet imports rejected before commit.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipway_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipway_http_requests_total",
		Help: "Total number of HTTP requests by route and status code.",
	},
		[]string{"method", "route", "status"},
	)
)
