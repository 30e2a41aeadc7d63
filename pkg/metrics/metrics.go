// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devocional_webhook_requests_total",
		Help: "Inbound webhook calls by reported status and reason.",
	}, []string{"status", "reason"})

	AssistantRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devocional_assistant_runs_total",
		Help: "Assistant runs by terminal outcome.",
	}, []string{"outcome"})

	AssistantRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "devocional_assistant_run_duration_seconds",
		Help:    "Wall time from run start to terminal state.",
		Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 45},
	})

	ReplySources = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devocional_reply_source_total",
		Help: "Which tier produced the reply: assistant, completion or canned.",
	}, []string{"source"})

	OutboundMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devocional_outbound_messages_total",
		Help: "Outbound WhatsApp sends by kind and result.",
	}, []string{"kind", "result"})
)
