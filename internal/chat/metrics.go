// internal/chat/metrics.go
package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// messagesTotal counts every inbound message handled.
	messagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "librabot",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total number of inbound messages handled",
		},
	)

	// commandsTotal counts dispatches of recognized commands.
	// Labels: command (the command or button text)
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "librabot",
			Subsystem: "chat",
			Name:      "commands_total",
			Help:      "Total number of recognized command dispatches",
		},
		[]string{"command"},
	)
)
