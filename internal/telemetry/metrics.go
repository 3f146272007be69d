// Package telemetry holds the simulation metrics. It has no dependencies on
// the game so both the loop and the API can record into it.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contact outcomes. Bounded label values only.
const (
	OutcomePlayerHit    = "player_hit"
	OutcomeAnnihilation = "annihilation"
	OutcomeTriggerMatch = "trigger_match"
)

var (
	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_frame_duration_seconds",
		Help:    "Time spent in one frame (update and draw)",
		Buckets: []float64{0.001, 0.002, 0.005, 0.01, 0.016, 0.033, 0.05, 0.1},
	})

	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_physics_step_duration_seconds",
		Help:    "Time spent in the physics step, contact resolution included",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.025},
	})

	frameDelta = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_frame_delta_seconds",
		Help:    "Clamped frame delta fed to entity updates",
		Buckets: []float64{0.005, 0.01, 0.016, 0.02, 0.025, 0.0334},
	})

	entityCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_entity_count",
		Help: "Entities in the registry",
	})

	bodyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_body_count",
		Help: "Bodies in the physics world",
	})

	contactsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_contacts_total",
		Help: "Resolved contacts by outcome",
	}, []string{"outcome"}) // Bounded: player_hit, annihilation, trigger_match

	removalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_removals_total",
		Help: "Entities removed by the end-of-frame flush",
	})

	explosionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_explosions_total",
		Help: "Explosions spawned",
	})
)

// RecordFrame records frame timing.
func RecordFrame(duration time.Duration, dt float64) {
	frameDuration.Observe(duration.Seconds())
	frameDelta.Observe(dt)
}

// RecordStep records physics step timing.
func RecordStep(duration time.Duration) {
	stepDuration.Observe(duration.Seconds())
}

// UpdateCounts updates the entity and body gauges.
func UpdateCounts(entities, bodies int) {
	entityCount.Set(float64(entities))
	bodyCount.Set(float64(bodies))
}

// RecordContact counts a resolved contact. outcome must be one of the Outcome constants.
func RecordContact(outcome string) {
	contactsTotal.WithLabelValues(outcome).Inc()
}

// RecordRemovals counts flushed removals.
func RecordRemovals(n int) {
	if n > 0 {
		removalsTotal.Add(float64(n))
	}
}

// RecordExplosion counts a spawned explosion.
func RecordExplosion() {
	explosionsTotal.Inc()
}
