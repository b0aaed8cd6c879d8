package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yazbox/yazbox-backend/api/controllers"
	"github.com/yazbox/yazbox-backend/api/middleware"
	"github.com/yazbox/yazbox-backend/internal/auth"
	"github.com/yazbox/yazbox-backend/internal/cart"
	"github.com/yazbox/yazbox-backend/internal/catalog"
	"github.com/yazbox/yazbox-backend/internal/messaging"
	"github.com/yazbox/yazbox-backend/internal/notifications"
	"github.com/yazbox/yazbox-backend/internal/orders"
	"github.com/yazbox/yazbox-backend/internal/sellers"
	sessionsync "github.com/yazbox/yazbox-backend/internal/session"
	"github.com/yazbox/yazbox-backend/internal/toasts"
	"github.com/yazbox/yazbox-backend/pkg/auth/session"
	"github.com/yazbox/yazbox-backend/pkg/config"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

// RouterParams collects every dependency the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	SessionChecker session.AccessSessionChecker
	ReadinessDeps  map[string]controllers.Pinger

	Sessions        *sessionsync.Registry
	Toasts          *toasts.Registry
	AuthService     auth.Service
	RegisterService auth.RegisterService
	CatalogService  catalog.Service
	CartStorage     cart.Storage
	OrdersService   orders.Service
	MessagingSvc    messaging.Service
	Notifications   notifications.Service
	SellersService  sellers.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.ReadinessDeps))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", controllers.AuthSignup(p.RegisterService, logg))
		r.Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, p.Sessions, p.Toasts, logg))
	})

	// Public catalog surface.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(p.CatalogService, logg))
		r.Get("/{productId}", controllers.GetProduct(p.CatalogService, logg))
	})
	r.Get("/api/v1/categories", controllers.ListCategories(p.CatalogService, logg))
	r.Get("/api/v1/sellers/{sellerId}", controllers.GetSeller(p.SellersService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))

		r.Get("/me", controllers.Me(p.Sessions, logg))

		r.Route("/toasts", func(r chi.Router) {
			r.Get("/", controllers.ListToasts(p.Toasts, logg))
			r.Post("/{toastId}/dismiss", controllers.DismissToast(p.Toasts, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(p.CartStorage, logg))
			r.Delete("/", controllers.CartClear(p.CartStorage, logg))
			r.Post("/items", controllers.CartAdd(p.CartStorage, p.CatalogService, p.Toasts, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateQuantity(p.CartStorage, logg))
			r.Delete("/items/{itemId}", controllers.CartRemove(p.CartStorage, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.Checkout(p.OrdersService, p.CartStorage, p.Toasts, logg))
			r.Get("/", controllers.ListOrders(p.OrdersService, logg))
			r.Get("/{orderId}", controllers.GetOrder(p.OrdersService, logg))
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", controllers.OpenConversation(p.MessagingSvc, logg))
			r.Get("/", controllers.ListConversations(p.MessagingSvc, logg))
			r.Get("/{conversationId}/messages", controllers.ListMessages(p.MessagingSvc, logg))
			r.Post("/{conversationId}/messages", controllers.SendMessage(p.MessagingSvc, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(p.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})

		r.Post("/sellers/onboard", controllers.OnboardSeller(p.SellersService, p.Sessions, logg))

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ProfileRoleSeller), logg))
			r.Put("/storefront", controllers.UpdateStorefront(p.SellersService, logg))
			r.Post("/products", controllers.SellerCreateProduct(p.CatalogService, logg))
			r.Patch("/products/{productId}", controllers.SellerUpdateProduct(p.CatalogService, logg))
			r.Delete("/products/{productId}", controllers.SellerDeleteProduct(p.CatalogService, logg))
			r.Post("/products/images/sign", controllers.SellerSignImageUpload(p.CatalogService, logg))
		})
	})

	return r
}
