package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Calculator names used as label values.
const (
	CalculatorScore          = "score"
	CalculatorAcquisitionTax = "acquisition_tax"
	CalculatorHoldingTax     = "holding_tax"
	CalculatorArea           = "area"
)

var (
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculations_total",
			Help: "Total number of calculations served per calculator",
		},
		[]string{"calculator"},
	)

	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculation_errors_total",
			Help: "Total number of rejected calculation requests per calculator",
		},
		[]string{"calculator"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	ApartmentsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apartments_imported_total",
			Help: "Total number of apartments stored from uploads and feed syncs",
		},
		[]string{"source"},
	)

	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_job_runs_total",
			Help: "Total number of scheduled job runs by outcome",
		},
		[]string{"job", "outcome"},
	)
)
