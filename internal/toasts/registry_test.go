package toasts

import (
	"testing"
	"time"

	"github.com/yazbox/yazbox-backend/pkg/enums"
)

func TestForSessionIsolatesFeeds(t *testing.T) {
	registry := NewRegistry(WithScheduler(func(d time.Duration, fn func()) {}))

	first := registry.ForSession("access-1")
	if got := registry.ForSession("access-1"); got != first {
		t.Fatal("expected the same queue for the same session")
	}

	first.Add("Added to cart", enums.ToastSeveritySuccess)
	second := registry.ForSession("access-2")
	if second.Len() != 0 {
		t.Fatalf("expected an empty feed for a fresh session, got %d toasts", second.Len())
	}
	if first.Len() != 1 {
		t.Fatalf("expected 1 toast in the first feed, got %d", first.Len())
	}
}

func TestDropForgetsTheSessionFeed(t *testing.T) {
	registry := NewRegistry(WithScheduler(func(d time.Duration, fn func()) {}))

	registry.ForSession("access-1").Add("Order placed", enums.ToastSeveritySuccess)
	registry.Drop("access-1")
	if registry.Len() != 0 {
		t.Fatalf("expected no tracked sessions after drop, got %d", registry.Len())
	}
	if got := registry.ForSession("access-1").Len(); got != 0 {
		t.Fatalf("expected a fresh feed after drop, got %d toasts", got)
	}

	// Dropping a session that was never tracked is a no-op.
	registry.Drop("access-9")
}
