package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/metrics"
)

const (
	defaultFetchAttempts = 3
	defaultRetryBackoff  = 500 * time.Millisecond
)

// State describes where the synchronizer is in its lifecycle.
type State string

const (
	StateLoading         State = "loading"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// ProfileFetcher looks up the application profile for an authenticated user.
// A missing row is reported with pkgerrors.CodeNotFound.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// SessionRevoker force-terminates the backing session.
type SessionRevoker interface {
	Revoke(ctx context.Context, accessID string) error
}

// Synchronizer keeps a cached profile consistent with the authentication
// session. Profile rows are materialized asynchronously after signup, so a
// fetch racing a fresh signup is retried before the session is given up on.
type Synchronizer struct {
	fetcher ProfileFetcher
	revoker SessionRevoker
	logg    *logger.Logger
	metrics *metrics.SessionMetrics

	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	state   State
	profile *models.Profile
}

// Option tweaks synchronizer construction.
type Option func(*Synchronizer)

// WithRetryPolicy overrides the fetch attempt bound and backoff delay.
func WithRetryPolicy(attempts int, backoff time.Duration) Option {
	return func(s *Synchronizer) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if backoff > 0 {
			s.backoff = backoff
		}
	}
}

// WithSleeper replaces the retry delay, used by tests to avoid real waits.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Synchronizer) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithMetrics attaches session metrics.
func WithMetrics(m *metrics.SessionMetrics) Option {
	return func(s *Synchronizer) {
		s.metrics = m
	}
}

// NewSynchronizer wires the synchronizer dependencies.
func NewSynchronizer(fetcher ProfileFetcher, revoker SessionRevoker, logg *logger.Logger, opts ...Option) (*Synchronizer, error) {
	if fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "profile fetcher required")
	}
	if revoker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session revoker required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}

	s := &Synchronizer{
		fetcher:  fetcher,
		revoker:  revoker,
		logg:     logg,
		attempts: defaultFetchAttempts,
		backoff:  defaultRetryBackoff,
		state:    StateLoading,
		sleep:    sleepWithContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OnSessionEstablished resolves the profile for a freshly authenticated user.
// A missing profile row is retried with a fixed backoff; genuine query errors
// are logged and retried the same way. When every attempt fails the session
// is revoked exactly once and the synchronizer lands in unauthenticated, so
// consumers never observe an authenticated state with no profile.
func (s *Synchronizer) OnSessionEstablished(ctx context.Context, userID uuid.UUID, accessID string) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	ctx = s.logg.WithUserID(ctx, userID.String())

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		profile, err := s.fetcher.FetchProfile(ctx, userID)
		if err == nil {
			s.setAuthenticated(profile)
			s.metrics.IncSyncOutcome(string(StateAuthenticated))
			return profile, nil
		}

		lastErr = err
		if pkgerrors.IsNotFound(err) {
			s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "profile not yet materialized")
		} else {
			s.logg.Error(s.logg.WithField(ctx, "attempt", attempt), "profile fetch failed", err)
		}

		if attempt < s.attempts {
			s.metrics.IncProfileRetry()
			if err := s.sleep(ctx, s.backoff); err != nil {
				s.setUnauthenticated()
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "profile fetch aborted")
			}
		}
	}

	// Retries exhausted: clear partial state and force sign-out so the
	// caller is never left holding a session without a profile.
	s.setUnauthenticated()
	s.metrics.IncForcedSignOut()
	s.metrics.IncSyncOutcome(string(StateUnauthenticated))
	if accessID != "" {
		if err := s.revoker.Revoke(ctx, accessID); err != nil {
			s.logg.Error(ctx, "revoking session after profile fetch exhaustion", err)
		}
	}

	return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, lastErr, "profile unavailable after retries")
}

// OnSessionCleared drops the cached profile immediately. No retries.
func (s *Synchronizer) OnSessionCleared() {
	s.setUnauthenticated()
}

// OnStartupWithoutSession records that no session existed at startup.
func (s *Synchronizer) OnStartupWithoutSession() {
	s.setUnauthenticated()
}

// SwitchToSeller optimistically flips the cached role. The authoritative
// write happens in the seller onboarding flow; the cache is re-fetched on the
// next auth transition.
func (s *Synchronizer) SwitchToSeller() {
	s.switchRole(enums.ProfileRoleSeller)
}

// SwitchToBuyer optimistically flips the cached role back to buyer.
func (s *Synchronizer) SwitchToBuyer() {
	s.switchRole(enums.ProfileRoleBuyer)
}

// State reports the current lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Profile returns a copy of the cached profile, or nil outside authenticated.
func (s *Synchronizer) Profile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	copied := *s.profile
	return &copied
}

func (s *Synchronizer) setAuthenticated(profile *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.profile = profile
}

func (s *Synchronizer) setUnauthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUnauthenticated
	s.profile = nil
}

func (s *Synchronizer) switchRole(role enums.ProfileRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated || s.profile == nil {
		return
	}
	s.profile.Role = role
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
