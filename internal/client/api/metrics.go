package api

import (
	"errors"

	"github.com/and161185/sales-intel/internal/errs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salesintel_client",
			Name:      "requests_total",
			Help:      "Backend calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salesintel_client",
			Name:      "request_duration_seconds",
			Help:      "Backend call latency, including fresh site analyses.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"op"},
	)
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrUnauthorized):
		return "auth_rejected"
	case errors.Is(err, errs.ErrRejected):
		return "rejected"
	case errors.Is(err, errs.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, errs.ErrServer):
		return "server_error"
	case errors.Is(err, errs.ErrInvalidInput):
		return "invalid_input"
	default:
		return "transport"
	}
}
