package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/internal/auth"
	"github.com/yazbox/yazbox-backend/internal/catalog"
	"github.com/yazbox/yazbox-backend/internal/messaging"
	"github.com/yazbox/yazbox-backend/internal/notifications"
	"github.com/yazbox/yazbox-backend/internal/orders"
	"github.com/yazbox/yazbox-backend/internal/sellers"
	sessionsync "github.com/yazbox/yazbox-backend/internal/session"
	"github.com/yazbox/yazbox-backend/internal/toasts"
	pkgAuth "github.com/yazbox/yazbox-backend/pkg/auth"
	"github.com/yazbox/yazbox-backend/pkg/auth/session"
	"github.com/yazbox/yazbox-backend/pkg/config"
	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/pagination"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessToken string) (string, error) {
	return "", nil
}

type stubRegisterService struct{}

func (stubRegisterService) Signup(ctx context.Context, req auth.SignupRequest) (*auth.UserDTO, error) {
	return &auth.UserDTO{}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	return nil
}

func (stubCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) ListProducts(ctx context.Context, input catalog.ListProductsInput) (*catalog.ProductListResult, error) {
	return &catalog.ProductListResult{}, nil
}

func (stubCatalogService) ListCategories(ctx context.Context) ([]catalog.CategoryDTO, error) {
	return nil, nil
}

func (stubCatalogService) SignImageUpload(ctx context.Context, sellerID uuid.UUID, filename, contentType string) (*catalog.ImageUploadDTO, error) {
	return &catalog.ImageUploadDTO{}, nil
}

type stubCartStorage struct{}

func (stubCartStorage) Load(ctx context.Context, sessionID string) ([]byte, error) {
	return nil, nil
}

func (stubCartStorage) Save(ctx context.Context, sessionID string, blob []byte) error {
	return nil
}

func (stubCartStorage) Delete(ctx context.Context, sessionID string) error {
	return nil
}

type stubOrdersService struct{}

func (stubOrdersService) CreateOrder(ctx context.Context, buyerID uuid.UUID, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) GetOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) ListOrders(ctx context.Context, buyerID uuid.UUID, limit int, cursor *pagination.Cursor) (*orders.OrderListResult, error) {
	return &orders.OrderListResult{}, nil
}

type stubMessagingService struct{}

func (stubMessagingService) GetOrCreateConversation(ctx context.Context, userID, counterpartID uuid.UUID) (*messaging.ConversationDTO, error) {
	return &messaging.ConversationDTO{}, nil
}

func (stubMessagingService) ListConversations(ctx context.Context, userID uuid.UUID) ([]messaging.ConversationDTO, error) {
	return nil, nil
}

func (stubMessagingService) SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, content string) (*messaging.MessageDTO, error) {
	return &messaging.MessageDTO{}, nil
}

func (stubMessagingService) ListMessages(ctx context.Context, readerID, conversationID uuid.UUID, limit int, cursor *pagination.Cursor) (*messaging.MessageListResult, error) {
	return &messaging.MessageListResult{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubSellersService struct{}

func (stubSellersService) Onboard(ctx context.Context, profileID uuid.UUID, input sellers.OnboardInput) (*sellers.SellerDTO, error) {
	return &sellers.SellerDTO{}, nil
}

func (stubSellersService) GetSeller(ctx context.Context, sellerID uuid.UUID) (*sellers.SellerDTO, error) {
	return &sellers.SellerDTO{}, nil
}

func (stubSellersService) UpdateStorefront(ctx context.Context, sellerID uuid.UUID, input sellers.UpdateStorefrontInput) (*sellers.SellerDTO, error) {
	return &sellers.SellerDTO{}, nil
}

type stubProfileFetcher struct{}

func (stubProfileFetcher) FetchProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return &models.Profile{ID: userID, Role: enums.ProfileRoleBuyer}, nil
}

type stubSessionRevoker struct{}

func (stubSessionRevoker) Revoke(ctx context.Context, accessID string) error {
	return nil
}

func testRouter(t *testing.T, jwt config.JWTConfig) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = jwt
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	sessions, err := sessionsync.NewRegistry(stubProfileFetcher{}, stubSessionRevoker{}, logg)
	if err != nil {
		t.Fatalf("new session registry: %v", err)
	}
	return NewRouter(RouterParams{
		Config:          cfg,
		Logger:          logg,
		SessionChecker:  stubSessionChecker{},
		Sessions:        sessions,
		Toasts:          toasts.NewRegistry(),
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		CatalogService:  stubCatalogService{},
		CartStorage:     stubCartStorage{},
		OrdersService:   stubOrdersService{},
		MessagingSvc:    stubMessagingService{},
		Notifications:   stubNotificationsService{},
		SellersService:  stubSellersService{},
	})
}

func mintToken(t *testing.T, cfg config.JWTConfig, role enums.ProfileRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterPublicRoutes(t *testing.T) {
	jwt := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	router := testRouter(t, jwt)

	for _, path := range []string{"/health/live", "/api/v1/products/", "/api/v1/categories"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, resp.Code)
		}
	}
}

func TestRouterRequiresAuthForCart(t *testing.T) {
	jwt := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	router := testRouter(t, jwt)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRouterAllowsAuthedCart(t *testing.T) {
	jwt := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	router := testRouter(t, jwt)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwt, enums.ProfileRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterBlocksBuyerFromSellerRoutes(t *testing.T) {
	jwt := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	router := testRouter(t, jwt)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/seller/products/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwt, enums.ProfileRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRouterServesSessionProfile(t *testing.T) {
	jwt := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	router := testRouter(t, jwt)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwt, enums.ProfileRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.Code)
	}
}

func TestRouterServesToastFeed(t *testing.T) {
	jwt := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	router := testRouter(t, jwt)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/toasts/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwt, enums.ProfileRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
