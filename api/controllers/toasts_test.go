package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yazbox/yazbox-backend/internal/toasts"
	"github.com/yazbox/yazbox-backend/pkg/enums"
)

func newTestToastFeed() *toasts.Registry {
	return toasts.NewRegistry(toasts.WithScheduler(func(d time.Duration, fn func()) {}))
}

func TestListToastsScopedToSession(t *testing.T) {
	feed := newTestToastFeed()
	feed.ForSession("session-1").Add("Order placed", enums.ToastSeveritySuccess)
	feed.ForSession("session-other").Add("Added to cart", enums.ToastSeveritySuccess)

	req := sessionRequest(http.MethodGet, "/api/v1/toasts", "")
	resp := httptest.NewRecorder()
	ListToasts(feed, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data []toasts.Toast `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected 1 toast for the session, got %d", len(envelope.Data))
	}
	if envelope.Data[0].Message != "Order placed" {
		t.Fatalf("unexpected message %q", envelope.Data[0].Message)
	}
}

func TestListToastsRequiresSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/toasts", nil)
	resp := httptest.NewRecorder()
	ListToasts(newTestToastFeed(), testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestDismissToastRemovesOnlyThatToast(t *testing.T) {
	feed := newTestToastFeed()
	queue := feed.ForSession("session-1")
	first := queue.Add("Added to cart", enums.ToastSeveritySuccess)

	req := sessionRequest(http.MethodPost, "/api/v1/toasts/"+strconv.FormatInt(first.ID, 10)+"/dismiss", "")
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("toastId", strconv.FormatInt(first.ID, 10))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	resp := httptest.NewRecorder()
	DismissToast(feed, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if queue.Len() != 0 {
		t.Fatalf("expected empty feed after dismiss, got %d", queue.Len())
	}
}

func TestDismissToastRejectsBadID(t *testing.T) {
	req := sessionRequest(http.MethodPost, "/api/v1/toasts/nope/dismiss", "")
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("toastId", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	resp := httptest.NewRecorder()
	DismissToast(newTestToastFeed(), testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
