package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terminal_tool_calls_total",
		Help: "Total number of voice-agent tool calls, labelled by tool and outcome code.",
	}, []string{"tool", "outcome"})

	ToolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "terminal_tool_call_duration_ms",
		Help:    "Tool call latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"tool"})

	EventsBroadcast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terminal_events_broadcast_total",
		Help: "Total number of events pushed to the viewer hub, labelled by event type.",
	}, []string{"type"})

	Viewers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terminal_viewers",
		Help: "Number of live dashboard viewer sessions.",
	})

	SessionsPruned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terminal_sessions_pruned_total",
		Help: "Total number of viewer sessions removed after a failed or overflowing push.",
	}, []string{"reason"})

	ObserverDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terminal_observer_events_dropped_total",
		Help: "Total number of events not delivered to observers because the fan-out queue was full.",
	})

	ObserverErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terminal_observer_errors_total",
		Help: "Total number of observer failures, labelled by observer.",
	}, []string{"observer"})

	PushNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terminal_push_notifications_total",
		Help: "Total number of web push notifications attempted, labelled by status.",
	}, []string{"status"})
)
