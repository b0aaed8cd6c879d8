package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics tracks session synchronization outcomes.
type SessionMetrics struct {
	profileRetries prometheus.Counter
	forcedSignOuts prometheus.Counter
	syncOutcomes   *prometheus.CounterVec
}

// NewSessionMetrics registers the session metrics on the provided registerer.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		return &SessionMetrics{}
	}
	profileRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_profile_fetch_retries_total",
		Help: "Profile fetch attempts retried because the profile row was not yet visible.",
	})
	forcedSignOuts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_forced_sign_outs_total",
		Help: "Sessions revoked because the profile never materialized.",
	})
	syncOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_sync_outcomes_total",
		Help: "Terminal session synchronization outcomes.",
	}, []string{"outcome"})
	reg.MustRegister(profileRetries, forcedSignOuts, syncOutcomes)
	return &SessionMetrics{
		profileRetries: profileRetries,
		forcedSignOuts: forcedSignOuts,
		syncOutcomes:   syncOutcomes,
	}
}

// IncProfileRetry counts a retried profile fetch.
func (s *SessionMetrics) IncProfileRetry() {
	if s == nil || s.profileRetries == nil {
		return
	}
	s.profileRetries.Inc()
}

// IncForcedSignOut counts a forced sign-out after retry exhaustion.
func (s *SessionMetrics) IncForcedSignOut() {
	if s == nil || s.forcedSignOuts == nil {
		return
	}
	s.forcedSignOuts.Inc()
}

// IncSyncOutcome counts a terminal synchronization outcome.
func (s *SessionMetrics) IncSyncOutcome(outcome string) {
	if s == nil || s.syncOutcomes == nil {
		return
	}
	s.syncOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}
