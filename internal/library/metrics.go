// internal/library/metrics.go
package library

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// borrowsTotal counts borrow attempts by outcome.
	// Labels: result (success, book_not_found, unavailable,
	// member_not_found, error)
	borrowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "librabot",
			Subsystem: "library",
			Name:      "borrows_total",
			Help:      "Total number of borrow attempts by outcome",
		},
		[]string{"result"},
	)

	// returnsTotal counts return attempts by outcome.
	// Labels: result (success, no_active_loan, error)
	returnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "librabot",
			Subsystem: "library",
			Name:      "returns_total",
			Help:      "Total number of return attempts by outcome",
		},
		[]string{"result"},
	)
)
