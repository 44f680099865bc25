package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	WebhookMessages  *prometheus.CounterVec
	WebhookStatuses  *prometheus.CounterVec
	OutgoingMessages *prometheus.CounterVec
	GraphLatency     *prometheus.HistogramVec
	SheetOperations  *prometheus.CounterVec
	Errors           *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
// Only the namespace of the first call is used.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			WebhookMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wa_webhook_messages_total",
				Help:      "Inbound WhatsApp messages received via webhook, by message type.",
			}, []string{"type"}),
			WebhookStatuses: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wa_webhook_statuses_total",
				Help:      "Delivery status updates received via webhook, by status.",
			}, []string{"status"}),
			OutgoingMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wa_outgoing_messages_total",
				Help:      "Outgoing WhatsApp messages by kind and outcome.",
			}, []string{"kind", "outcome"}),
			GraphLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "wa_graph_request_duration_seconds",
				Help:      "Latency distribution for Graph API send calls.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"kind"}),
			SheetOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sheet_operations_total",
				Help:      "Spreadsheet operations by sheet, operation and outcome.",
			}, []string{"sheet", "op", "outcome"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.WebhookMessages,
			metricsInstance.WebhookStatuses,
			metricsInstance.OutgoingMessages,
			metricsInstance.GraphLatency,
			metricsInstance.SheetOperations,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}

// Outcome maps an error to the "ok"/"error" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
