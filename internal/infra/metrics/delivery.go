package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(deliveriesTotal, deliveryRecipientsTotal, attachmentsSkippedTotal, deliveryDurationMs)
}

var deliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "deliveries_total",
		Help: "Delivery invocations by outcome (completed/setup_failed/skipped).",
	},
	[]string{"outcome"},
)

var deliveryRecipientsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "delivery_recipients_total",
		Help: "Per-recipient send results across all deliveries.",
	},
	[]string{"result"}, // 'sent' | 'failed'
)

var attachmentsSkippedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "delivery_attachments_skipped_total",
		Help: "Attachment paths skipped because the file was missing on disk.",
	},
)

var deliveryDurationMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "delivery_duration_ms",
		Help:    "End-to-end duration of one delivery invocation in milliseconds.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	},
)

func IncDelivery(outcome string) {
	deliveriesTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddRecipientResults(sent, failed int) {
	deliveryRecipientsTotal.WithLabelValues("sent").Add(float64(sent))
	deliveryRecipientsTotal.WithLabelValues("failed").Add(float64(failed))
}

func IncAttachmentSkipped() { attachmentsSkippedTotal.Inc() }

func ObserveDeliveryDuration(ms int64) { deliveryDurationMs.Observe(float64(ms)) }
