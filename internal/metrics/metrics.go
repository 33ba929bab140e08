package metrics

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"GoLex/internal/lexer"
)

const (
	golexNamespace = "golex"

	rulesetLabelName = "ruleset"
	statusLabelName  = "status"
)

// Run status label values.
const (
	StatusOK      = "ok"
	StatusNoMatch = "no_match"
	StatusError   = "error"
)

var (
	// TokenizeRuns counts completed tokenizer runs by outcome.
	TokenizeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: golexNamespace,
			Name:      "tokenize_runs_total",
			Help:      "Counter of tokenizer runs",
		}, []string{rulesetLabelName, statusLabelName})

	// TokensEmitted counts tokens produced by successful runs.
	TokensEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: golexNamespace,
			Name:      "tokens_emitted_total",
			Help:      "Counter of tokens emitted",
		}, []string{rulesetLabelName})

	TokenizeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: golexNamespace,
			Name:      "tokenize_duration_seconds",
			Help:      "Latency of tokenizer runs",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{rulesetLabelName})

	RulesetsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: golexNamespace,
			Name:      "rulesets_loaded",
			Help:      "Number of rule sets in the registry, built-ins included",
		})
)

// Register registers all golex collectors with r.
func Register(r prometheus.Registerer) {
	r.MustRegister(TokenizeRuns)
	r.MustRegister(TokensEmitted)
	r.MustRegister(TokenizeDuration)
	r.MustRegister(RulesetsLoaded)
}

// Observer returns a lexer.Observer that records runs under the given rule
// set label.
func Observer(ruleset string) lexer.Observer {
	return runObserver{ruleset: ruleset}
}

type runObserver struct {
	ruleset string
}

func (o runObserver) ObserveRun(tokens int, elapsed time.Duration, err error) {
	TokenizeRuns.WithLabelValues(o.ruleset, status(err)).Inc()
	TokenizeDuration.WithLabelValues(o.ruleset).Observe(elapsed.Seconds())
	if err == nil {
		TokensEmitted.WithLabelValues(o.ruleset).Add(float64(tokens))
	}
}

func status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, lexer.ErrAllMatchersMatchNothing):
		return StatusNoMatch
	default:
		return StatusError
	}
}
