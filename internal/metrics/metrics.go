package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Instruction metrics
	InstructionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sollpay_instructions_total",
			Help: "Total number of executed instructions",
		},
		[]string{"instruction", "result"},
	)
	InstructionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sollpay_instruction_duration_seconds",
			Help:    "Duration of instruction execution including commit",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"instruction"},
	)

	// Claim metrics
	ClaimedAmountTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sollpay_claimed_amount_total",
			Help: "Total token amount transferred by claims",
		},
	)

	// Storage metrics
	CommittedAccountsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sollpay_committed_accounts_total",
			Help: "Total number of account writes committed to storage",
		},
	)
)

var collectors = []prometheus.Collector{
	InstructionsTotal,
	InstructionDuration,
	ClaimedAmountTotal,
	CommittedAccountsTotal,
}

// Register registers every collector with reg. Collectors that are already
// registered are skipped.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// InitMetrics registers the collectors with the default registry
func InitMetrics() {
	if err := Register(prometheus.DefaultRegisterer); err != nil {
		panic(err)
	}
}

// ObserveInstruction records one executed instruction
func ObserveInstruction(instruction, result string, elapsed time.Duration) {
	InstructionsTotal.WithLabelValues(instruction, result).Inc()
	InstructionDuration.WithLabelValues(instruction).Observe(elapsed.Seconds())
}

// WriteTextfile dumps the default registry in the node exporter textfile format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
