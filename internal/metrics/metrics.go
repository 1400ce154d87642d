// Package metrics declares the Prometheus collectors for the chat app.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
	"github.com/duynguyendang/maya/pkg/extract"
)

var (
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maya_chat_requests_total",
			Help: "Chat messages sent to the model, by provider and outcome",
		},
		[]string{"provider", "status"},
	)
	ChatLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maya_chat_latency_seconds",
			Help:    "Latency of model replies in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider"},
	)
	ExtractedFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maya_extracted_files_total",
			Help: "Files extracted from model replies, by language",
		},
		[]string{"language"},
	)
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maya_github_uploads_total",
			Help: "Files pushed to GitHub, by outcome",
		},
		[]string{"status"},
	)
	SpeechRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maya_speech_requests_total",
			Help: "Text-to-speech requests, by outcome",
		},
		[]string{"status"},
	)
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "maya_active_sessions",
			Help: "Chat sessions currently held in memory",
		},
	)
)

// Status is the label value for an outcome.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

// ObserveChat records one chat round trip. Its signature matches ai.Observer.
func ObserveChat(provider string, err error, elapsed time.Duration, files []extract.ExtractedFile) {
	ChatRequestsTotal.WithLabelValues(provider, Status(err)).Inc()
	ChatLatencySeconds.WithLabelValues(provider).Observe(elapsed.Seconds())
	for _, f := range files {
		ExtractedFilesTotal.WithLabelValues(f.Language).Inc()
	}
}

func ObserveUploads(ok, failed int) {
	UploadsTotal.WithLabelValues("ok").Add(float64(ok))
	UploadsTotal.WithLabelValues("failed").Add(float64(failed))
}

func ObserveSpeech(err error) {
	SpeechRequestsTotal.WithLabelValues(Status(err)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
