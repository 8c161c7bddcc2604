package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SyncMetrics counts library link and sync activity. A nil *SyncMetrics is
// valid and records nothing.
type SyncMetrics struct {
	Links        *prometheus.CounterVec
	Unlinks      *prometheus.CounterVec
	Propagations *prometheus.CounterVec
	AutoDetaches *prometheus.CounterVec
	Clones       prometheus.Counter
}

func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)
	return &SyncMetrics{
		Links: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "author_library_links_total",
			Help: "Linked copies created from library sources",
		}, []string{"entity"}),
		Unlinks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "author_library_unlinks_total",
			Help: "Linked copies turned into independent content",
		}, []string{"entity"}),
		Propagations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "author_sync_propagations_total",
			Help: "Source updates pushed to linked copies by outcome",
		}, []string{"entity", "outcome"}),
		AutoDetaches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "author_sync_auto_detaches_total",
			Help: "Linked copies detached because they were edited directly",
		}, []string{"entity"}),
		Clones: factory.NewCounter(prometheus.CounterOpts{
			Name: "author_activity_clones_total",
			Help: "Activity subtrees cloned",
		}),
	}
}

func (m *SyncMetrics) RecordLink(entity string) {
	if m != nil {
		m.Links.WithLabelValues(entity).Inc()
	}
}

func (m *SyncMetrics) RecordUnlink(entity string) {
	if m != nil {
		m.Unlinks.WithLabelValues(entity).Inc()
	}
}

func (m *SyncMetrics) RecordPropagation(entity, outcome string, count int) {
	if m != nil && count > 0 {
		m.Propagations.WithLabelValues(entity, outcome).Add(float64(count))
	}
}

func (m *SyncMetrics) RecordAutoDetach(entity string) {
	if m != nil {
		m.AutoDetaches.WithLabelValues(entity).Inc()
	}
}

func (m *SyncMetrics) RecordClone() {
	if m != nil {
		m.Clones.Inc()
	}
}
