package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/solutyics/loanform/internal/form"
	"github.com/solutyics/loanform/internal/predict"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanform_submissions_total",
			Help: "Form submissions by source and result (sent, invalid)",
		},
		[]string{"source", "result"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanform_predictions_total",
			Help: "Prediction requests by outcome (success, server_error, network_error, client_error)",
		},
		[]string{"outcome"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loanform_prediction_duration_seconds",
			Help:    "Duration of prediction requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loanform_active_sessions",
			Help: "Number of open web form sessions",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loanform_http_requests_total",
			Help: "HTTP requests handled by route and status code",
		},
		[]string{"method", "route", "status"},
	)
)

// instrumentedPredictor records prediction metrics around another Predictor.
type instrumentedPredictor struct {
	next predict.Predictor
}

func (p instrumentedPredictor) Predict(ctx context.Context, payload form.Payload) (*form.Result, error) {
	start := time.Now()
	result, err := p.next.Predict(ctx, payload)

	outcome := outcomeLabel(err)
	PredictionsTotal.WithLabelValues(outcome).Inc()
	PredictionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return result, err
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case predict.IsServerError(err):
		return "server_error"
	case predict.IsNetworkError(err):
		return "network_error"
	default:
		return "client_error"
	}
}

func recordSubmission(source string, sent bool) {
	result := "invalid"
	if sent {
		result = "sent"
	}
	SubmissionsTotal.WithLabelValues(source, result).Inc()
}
