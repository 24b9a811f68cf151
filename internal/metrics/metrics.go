package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business counters for the ceremony flow. Registered on the default
// registry and exposed via /metrics.
var (
	CheckIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ceremony_checkins_total",
		Help: "Graduates marked attended at the check-in desk.",
	})
	GownCollections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ceremony_gown_collections_total",
		Help: "Gown desk submissions marking a gown collected.",
	})
	GownReturns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ceremony_gown_returns_total",
		Help: "Gown desk submissions marking a gown returned.",
	})
	StageAdvances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ceremony_stage_advances_total",
		Help: "NEXT presses on the stage control panel.",
	})
)
