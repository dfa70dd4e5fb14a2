// Package metrics registers the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbot_pipeline_frames_total",
			Help: "Pipeline iterations by outcome",
		},
		[]string{"outcome"},
	)

	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbot_stabilizer_decisions_total",
			Help: "Stabilizer decisions that produced a response, by kind",
		},
		[]string{"kind"},
	)

	ResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbot_responses_total",
			Help: "Responses emitted by emotion",
		},
		[]string{"emotion"},
	)

	IterationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodbot_pipeline_iteration_seconds",
			Help:    "Time spent capturing, classifying and dispatching one frame",
			Buckets: []float64{.002, .005, .01, .02, .033, .05, .1, .25, .5},
		},
	)

	PipelineRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moodbot_pipeline_running",
			Help: "1 while the capture loop is active",
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moodbot_ui_queue_depth",
			Help: "Events waiting for the UI loop",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moodbot_active_sessions",
			Help: "Number of logged in sessions",
		},
	)

	WebsocketClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodbot_websocket_clients",
			Help: "Connected websocket clients by stream",
		},
		[]string{"stream"},
	)

	WebsocketDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodbot_websocket_dropped_total",
			Help: "Messages dropped for slow websocket clients",
		},
		[]string{"stream"},
	)
)
