package identity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// verification results
const (
	resultOK             = "ok"
	resultCacheHit       = "cache_hit"
	resultInvalid        = "invalid"
	resultExpired        = "expired"
	resultProviderError  = "provider_error"
	resultNotProvisioned = "not_provisioned"
)

var verificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "identity_verifications_total",
		Help: "Bearer credential verifications by source and result",
	},
	[]string{"source", "result"},
)

func observe(source Source, result string) {
	verificationsTotal.WithLabelValues(string(source), result).Inc()
}
