package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(tokensIssued, tokensConsumed, redeemsTotal, tokensGauge)
}

var (
	tokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tokens_issued_total",
			Help: "Access tokens issued by the admin.",
		},
	)

	tokensConsumed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "token_uses_total",
			Help: "Successful generations charged to a token.",
		},
	)

	redeemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_redeems_total",
			Help: "Redeem attempts by outcome (valid/expired/invalid/limited).",
		},
		[]string{"outcome"},
	)

	tokensGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tokens_in_ledger",
			Help: "Tokens currently in the ledger by state (valid/expired).",
		},
		[]string{"state"},
	)
)

func IncTokenIssued()   { tokensIssued.Inc() }
func IncTokenConsumed() { tokensConsumed.Inc() }

func IncRedeem(outcome string) {
	redeemsTotal.WithLabelValues(norm(outcome)).Inc()
}

func SetLedgerTokens(valid, expired int) {
	tokensGauge.WithLabelValues("valid").Set(float64(valid))
	tokensGauge.WithLabelValues("expired").Set(float64(expired))
}
