package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kapilraj10/pos-storefront/api/controllers"
	"github.com/kapilraj10/pos-storefront/api/middleware"
	cartsvc "github.com/kapilraj10/pos-storefront/internal/cart"
	checkoutsvc "github.com/kapilraj10/pos-storefront/internal/checkout"
	"github.com/kapilraj10/pos-storefront/internal/payments"
	"github.com/kapilraj10/pos-storefront/internal/session"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
	"github.com/kapilraj10/pos-storefront/pkg/config"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
	"github.com/kapilraj10/pos-storefront/pkg/metrics"
)

// BackendClient is the gateway surface the routes need, satisfied by
// *backend.Client.
type BackendClient interface {
	Login(ctx context.Context, params backend.LoginParams) (*backend.LoginResult, error)
	Register(ctx context.Context, params backend.RegisterParams) error
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	Categories(ctx context.Context) ([]backend.Category, error)
	Items(ctx context.Context) ([]backend.Item, error)
	CreateCategory(ctx context.Context, token string, upload backend.Upload) error
	DeleteCategory(ctx context.Context, token, categoryID string) error
	CreateItem(ctx context.Context, token string, upload backend.Upload) error
	UpdateItem(ctx context.Context, token, itemID string, upload backend.Upload) error
	DeleteItem(ctx context.Context, token, itemID string) error
	PurchaseItem(ctx context.Context, itemID string, quantity int) error
	MyOrders(ctx context.Context, token string) ([]backend.OrderRecord, error)
	Dashboard(ctx context.Context, token string) (*backend.DashboardSummary, error)
	ListOrders(ctx context.Context, token string) ([]backend.OrderRecord, error)
	UpdateOrderStatus(ctx context.Context, token, orderID, status string) error
	DeleteOrder(ctx context.Context, token, orderID string) error
	RevenueStats(ctx context.Context, token string) (*backend.RevenueStats, error)
	Ping(ctx context.Context) error
}

type sessionManager interface {
	StartGuest(ctx context.Context) (*session.Session, error)
	StartAuthenticated(ctx context.Context, backendToken, rawRole string) (*session.Session, error)
	Resolve(ctx context.Context, tokenString string) (string, *session.Record, error)
	Revoke(ctx context.Context, sessionID string) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient redisPinger,
	backendClient BackendClient,
	sessions sessionManager,
	carts *cartsvc.Store,
	checkoutService *checkoutsvc.Service,
	reconciler *payments.Reconciler,
	snapshots *payments.SnapshotStore,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(registry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient, backendClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", controllers.StartSession(sessions, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(backendClient, sessions, logg))
			r.Post("/register", controllers.AuthRegister(backendClient, logg))
			r.Post("/register/request-otp", controllers.AuthRequestOTP(backendClient, logg))
			r.Post("/register/verify-otp", controllers.AuthVerifyOTP(backendClient, logg))
		})

		r.Get("/categories", controllers.ListCategories(backendClient, logg))
		r.Get("/items", controllers.ListItems(backendClient, logg))
		r.Post("/items/{itemId}/purchase", controllers.PurchaseItem(backendClient, logg))

		// Everything below needs a session, guest or signed in.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(sessions, logg))

			r.Delete("/session", controllers.EndSession(sessions, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(carts, logg))
				r.Post("/", controllers.ReplaceCart(carts, backendClient, logg))
				r.Delete("/", controllers.ClearCart(carts, logg))
				r.Post("/items", controllers.AddCartItem(carts, backendClient, logg))
				r.Patch("/items/{itemId}", controllers.SetCartItemQuantity(carts, logg))
				r.Delete("/items/{itemId}", controllers.RemoveCartItem(carts, logg))
			})

			r.Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Get("/payment/callback", controllers.PaymentCallback(reconciler, logg))
			r.Post("/payment/recheck", controllers.PaymentRecheck(reconciler, snapshots, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireBackendToken(logg))
				r.Get("/orders/my-orders", controllers.MyOrders(backendClient, logg))
				r.Get("/dashboard", controllers.Dashboard(backendClient, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Session(sessions, logg),
			middleware.RequireRole(session.RoleAdmin, logg),
			middleware.RequireBackendToken(logg),
		)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(backendClient, logg))
			r.Get("/stats/revenue", controllers.AdminRevenueStats(backendClient, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(backendClient, logg))
			r.Delete("/{orderId}", controllers.AdminDeleteOrder(backendClient, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateCategory(backendClient, logg))
			r.Delete("/{categoryId}", controllers.AdminDeleteCategory(backendClient, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateItem(backendClient, logg))
			r.Put("/{itemId}", controllers.AdminUpdateItem(backendClient, logg))
			r.Delete("/{itemId}", controllers.AdminDeleteItem(backendClient, logg))
		})
	})

	return r
}
