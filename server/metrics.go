package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesRead = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stompd",
			Subsystem: "frames",
			Name:      "read_total",
			Help:      "Frames read from clients.",
		},
		[]string{"command"},
	)
	framesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stompd",
			Subsystem: "frames",
			Name:      "written_total",
			Help:      "Frames written to clients.",
		},
		[]string{"command"},
	)
	connectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stompd",
			Subsystem: "connections",
			Name:      "accepted_total",
			Help:      "Accepted client connections.",
		},
	)
)

// RegisterMetrics registers the server's collectors with reg, once.
func RegisterMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(framesRead, framesWritten, connectionsTotal)
	})
}
