package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

type fakeFetcher struct {
	calls   int
	fetchFn func(call int, userID uuid.UUID) (*models.Profile, error)
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	f.calls++
	return f.fetchFn(f.calls, userID)
}

type fakeRevoker struct {
	calls     int
	accessIDs []string
}

func (f *fakeRevoker) Revoke(ctx context.Context, accessID string) error {
	f.calls++
	f.accessIDs = append(f.accessIDs, accessID)
	return nil
}

func newTestSynchronizer(t *testing.T, fetcher *fakeFetcher, revoker *fakeRevoker) *Synchronizer {
	t.Helper()
	sync, err := NewSynchronizer(
		fetcher,
		revoker,
		logger.New(logger.Options{Level: zerolog.ErrorLevel}),
		WithSleeper(func(ctx context.Context, d time.Duration) error { return nil }),
	)
	if err != nil {
		t.Fatalf("new synchronizer: %v", err)
	}
	return sync
}

func TestOnSessionEstablishedRetriesUntilProfileAppears(t *testing.T) {
	userID := uuid.New()
	fetcher := &fakeFetcher{
		fetchFn: func(call int, id uuid.UUID) (*models.Profile, error) {
			if call < 3 {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
			}
			return &models.Profile{ID: id, FullName: "Yaz Buyer", Role: enums.ProfileRoleBuyer}, nil
		},
	}
	revoker := &fakeRevoker{}
	sync := newTestSynchronizer(t, fetcher, revoker)

	profile, err := sync.OnSessionEstablished(context.Background(), userID, "access-1")
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if fetcher.calls != 3 {
		t.Fatalf("expected exactly 3 fetch attempts, got %d", fetcher.calls)
	}
	if sync.State() != StateAuthenticated {
		t.Fatalf("expected authenticated state, got %s", sync.State())
	}
	if profile == nil || profile.ID != userID {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if revoker.calls != 0 {
		t.Fatalf("no revoke expected, got %d", revoker.calls)
	}
}

func TestOnSessionEstablishedExhaustionForcesSingleSignOut(t *testing.T) {
	fetcher := &fakeFetcher{
		fetchFn: func(call int, id uuid.UUID) (*models.Profile, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		},
	}
	revoker := &fakeRevoker{}
	sync := newTestSynchronizer(t, fetcher, revoker)

	_, err := sync.OnSessionEstablished(context.Background(), uuid.New(), "access-9")
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
	if fetcher.calls != 3 {
		t.Fatalf("expected 3 fetch attempts, got %d", fetcher.calls)
	}
	if revoker.calls != 1 {
		t.Fatalf("expected exactly one forced sign-out, got %d", revoker.calls)
	}
	if revoker.accessIDs[0] != "access-9" {
		t.Fatalf("revoked wrong session %q", revoker.accessIDs[0])
	}
	if sync.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated state, got %s", sync.State())
	}
	if sync.Profile() != nil {
		t.Fatal("expected cleared profile after exhaustion")
	}
}

func TestOnSessionEstablishedRetriesGenuineQueryErrors(t *testing.T) {
	userID := uuid.New()
	fetcher := &fakeFetcher{
		fetchFn: func(call int, id uuid.UUID) (*models.Profile, error) {
			if call == 1 {
				return nil, pkgerrors.New(pkgerrors.CodeDependency, "connection reset")
			}
			return &models.Profile{ID: id, Role: enums.ProfileRoleBuyer}, nil
		},
	}
	revoker := &fakeRevoker{}
	sync := newTestSynchronizer(t, fetcher, revoker)

	if _, err := sync.OnSessionEstablished(context.Background(), userID, "access-2"); err != nil {
		t.Fatalf("expected recovery after query error, got %v", err)
	}
	if fetcher.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", fetcher.calls)
	}
}

func TestOnSessionClearedDropsProfileImmediately(t *testing.T) {
	userID := uuid.New()
	fetcher := &fakeFetcher{
		fetchFn: func(call int, id uuid.UUID) (*models.Profile, error) {
			return &models.Profile{ID: id, Role: enums.ProfileRoleBuyer}, nil
		},
	}
	sync := newTestSynchronizer(t, fetcher, &fakeRevoker{})

	if _, err := sync.OnSessionEstablished(context.Background(), userID, "access-3"); err != nil {
		t.Fatalf("establish: %v", err)
	}
	sync.OnSessionCleared()
	if sync.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated after clear, got %s", sync.State())
	}
	if sync.Profile() != nil {
		t.Fatal("expected nil profile after clear")
	}
	if fetcher.calls != 1 {
		t.Fatalf("clear must not trigger fetches, got %d calls", fetcher.calls)
	}
}

func TestStartupWithoutSessionEndsUnauthenticated(t *testing.T) {
	fetcher := &fakeFetcher{fetchFn: func(int, uuid.UUID) (*models.Profile, error) { return nil, nil }}
	sync := newTestSynchronizer(t, fetcher, &fakeRevoker{})

	if sync.State() != StateLoading {
		t.Fatalf("expected initial loading state, got %s", sync.State())
	}
	sync.OnStartupWithoutSession()
	if sync.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", sync.State())
	}
}

func TestRoleSwitchesAreOptimisticAndScoped(t *testing.T) {
	userID := uuid.New()
	fetcher := &fakeFetcher{
		fetchFn: func(call int, id uuid.UUID) (*models.Profile, error) {
			return &models.Profile{ID: id, Role: enums.ProfileRoleBuyer}, nil
		},
	}
	sync := newTestSynchronizer(t, fetcher, &fakeRevoker{})

	// Switching before authentication is a no-op.
	sync.SwitchToSeller()
	if sync.Profile() != nil {
		t.Fatal("no profile expected before authentication")
	}

	if _, err := sync.OnSessionEstablished(context.Background(), userID, "access-4"); err != nil {
		t.Fatalf("establish: %v", err)
	}

	sync.SwitchToSeller()
	if got := sync.Profile().Role; got != enums.ProfileRoleSeller {
		t.Fatalf("expected seller role, got %s", got)
	}
	sync.SwitchToBuyer()
	if got := sync.Profile().Role; got != enums.ProfileRoleBuyer {
		t.Fatalf("expected buyer role, got %s", got)
	}

	// Returned profiles are copies; mutating them must not leak back.
	p := sync.Profile()
	p.Role = enums.ProfileRoleSeller
	if got := sync.Profile().Role; got != enums.ProfileRoleBuyer {
		t.Fatalf("cached profile mutated through copy, got %s", got)
	}
}
