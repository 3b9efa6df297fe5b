package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "bizdesk_"

	resultSuccess = "success"
	resultError   = "error"

	conversionComplete = "complete"
	conversionPartial  = "partial"
	conversionFailed   = "failed"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	documentsCreated *prometheus.CounterVec
	conversions      *prometheus.CounterVec
	paymentsRecorded prometheus.Counter
	statusChanges    *prometheus.CounterVec
	overdueMarked    prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	receiptsPrinted *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
)

// Init registers application metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)

		documentsCreated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "documents_created_total",
				Help: "Total records created by collection",
			},
			[]string{"collection"},
		)
		conversions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "conversions_total",
				Help: "Total conversions by kind and outcome",
			},
			[]string{"kind", "outcome"},
		)
		paymentsRecorded = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "payments_recorded_total",
				Help: "Total payments recorded against invoices",
			},
		)
		statusChanges = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_status_changes_total",
				Help: "Total invoice payment status changes by new status",
			},
			[]string{"status"},
		)
		overdueMarked = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "invoices_marked_overdue_total",
				Help: "Total invoices moved to overdue by the sweep",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total document exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Document export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		receiptsPrinted = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "receipts_printed_total",
				Help: "Total receipts sent to the thermal printer by result",
			},
			[]string{"result"},
		)
		eventsPublished = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_published_total",
				Help: "Total domain events published by type and result",
			},
			[]string{"type", "result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			documentsCreated,
			conversions,
			paymentsRecorded,
			statusChanges,
			overdueMarked,
			exportTotal,
			exportLatency,
			receiptsPrinted,
			eventsPublished,
		)
	})
}

// ObserveHTTP records one handled request.
func ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}

// IncDocumentCreated increments the created counter for collection.
func IncDocumentCreated(collection string) {
	if documentsCreated != nil {
		documentsCreated.WithLabelValues(collection).Inc()
	}
}

// ObserveConversion records a conversion by how far it got.
func ObserveConversion(kind string, created, sourceUpdated bool) {
	outcome := conversionFailed
	switch {
	case created && sourceUpdated:
		outcome = conversionComplete
	case created:
		outcome = conversionPartial
	}
	if conversions != nil {
		conversions.WithLabelValues(kind, outcome).Inc()
	}
}

// IncPaymentRecorded increments the payments counter.
func IncPaymentRecorded() {
	if paymentsRecorded != nil {
		paymentsRecorded.Inc()
	}
}

// IncStatusChange increments the payment status change counter.
func IncStatusChange(status string) {
	if statusChanges != nil {
		statusChanges.WithLabelValues(status).Inc()
	}
}

// AddOverdueMarked adds count to the overdue sweep counter.
func AddOverdueMarked(count int) {
	if count <= 0 {
		return
	}
	if overdueMarked != nil {
		overdueMarked.Add(float64(count))
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format string, err error, duration time.Duration) {
	result := resultOf(err)
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncReceiptPrinted counts a print attempt.
func IncReceiptPrinted(err error) {
	if receiptsPrinted != nil {
		receiptsPrinted.WithLabelValues(resultOf(err)).Inc()
	}
}

// IncEventPublished counts a publish attempt.
func IncEventPublished(eventType string, err error) {
	if eventsPublished != nil {
		eventsPublished.WithLabelValues(eventType, resultOf(err)).Inc()
	}
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
