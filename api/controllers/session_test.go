package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yazbox/yazbox-backend/internal/auth"
	"github.com/yazbox/yazbox-backend/internal/session"
	"github.com/yazbox/yazbox-backend/internal/toasts"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
)

type testAuthService struct {
	loginFn   func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	refreshFn func(ctx context.Context, accessToken, refreshToken string) (*auth.RefreshResponse, error)
	logoutFn  func(ctx context.Context, accessToken string) (string, error)
}

func (s *testAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return &auth.LoginResponse{}, nil
}

func (s *testAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.RefreshResponse, error) {
	if s.refreshFn != nil {
		return s.refreshFn(ctx, accessToken, refreshToken)
	}
	return &auth.RefreshResponse{}, nil
}

func (s *testAuthService) Logout(ctx context.Context, accessToken string) (string, error) {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, accessToken)
	}
	return "", nil
}

func TestAuthRefreshPassesTokens(t *testing.T) {
	var gotAccess, gotRefresh string
	svc := &testAuthService{
		refreshFn: func(ctx context.Context, accessToken, refreshToken string) (*auth.RefreshResponse, error) {
			gotAccess = accessToken
			gotRefresh = refreshToken
			return &auth.RefreshResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"old-refresh"}`))
	req.Header.Set("Authorization", "Bearer old-access")
	resp := httptest.NewRecorder()
	AuthRefresh(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotAccess != "old-access" {
		t.Fatalf("unexpected access token %q", gotAccess)
	}
	if gotRefresh != "old-refresh" {
		t.Fatalf("unexpected refresh token %q", gotRefresh)
	}
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"old-refresh"}`))
	resp := httptest.NewRecorder()
	AuthRefresh(&testAuthService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRefreshRejectsMissingBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer old-access")
	resp := httptest.NewRecorder()
	AuthRefresh(&testAuthService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	var gotToken string
	svc := &testAuthService{
		logoutFn: func(ctx context.Context, accessToken string) (string, error) {
			gotToken = accessToken
			return "access-1", nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer the-access-token")
	resp := httptest.NewRecorder()
	AuthLogout(svc, nil, nil, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotToken != "the-access-token" {
		t.Fatalf("unexpected token %q", gotToken)
	}
}

func TestAuthLogoutDropsSessionState(t *testing.T) {
	svc := &testAuthService{
		logoutFn: func(ctx context.Context, accessToken string) (string, error) {
			return "access-1", nil
		},
	}
	sessions := testSessionRegistry(t, &stubProfileFetcher{}, &stubSessionRevoker{})
	feed := toasts.NewRegistry()

	sync := sessions.ForSession("access-1")
	feed.ForSession("access-1").Add("Added to cart", enums.ToastSeveritySuccess)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer the-access-token")
	resp := httptest.NewRecorder()
	AuthLogout(svc, sessions, feed, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if sessions.Len() != 0 {
		t.Fatalf("expected the synchronizer to be dropped, %d tracked", sessions.Len())
	}
	if sync.State() != session.StateUnauthenticated {
		t.Fatalf("expected cleared synchronizer, got %s", sync.State())
	}
	if feed.Len() != 0 {
		t.Fatalf("expected the toast feed to be dropped, %d tracked", feed.Len())
	}
}

func TestAuthLoginSurfacesUnauthorized(t *testing.T) {
	svc := &testAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.com","password":"password123"}`))
	resp := httptest.NewRecorder()
	AuthLogin(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
