package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ivdgroup/medlab-backend/api/controllers"
	"github.com/ivdgroup/medlab-backend/api/middleware"
	adminsvc "github.com/ivdgroup/medlab-backend/internal/admin"
	authsvc "github.com/ivdgroup/medlab-backend/internal/auth"
	"github.com/ivdgroup/medlab-backend/internal/bulkorder"
	cartsvc "github.com/ivdgroup/medlab-backend/internal/cart"
	"github.com/ivdgroup/medlab-backend/internal/catalog"
	exhibitionsvc "github.com/ivdgroup/medlab-backend/internal/exhibitions"
	ordersvc "github.com/ivdgroup/medlab-backend/internal/orders"
	"github.com/ivdgroup/medlab-backend/pkg/config"
	"github.com/ivdgroup/medlab-backend/pkg/db"
	"github.com/ivdgroup/medlab-backend/pkg/logger"
	"github.com/ivdgroup/medlab-backend/pkg/metrics"
	"github.com/ivdgroup/medlab-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	catalogService catalog.Service,
	exhibitionService exhibitionsvc.Service,
	authService authsvc.Service,
	cartService cartsvc.Service,
	orderService ordersvc.Service,
	bulkOrderService bulkorder.Service,
	adminService adminsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(catalogService, logg))
			r.Get("/search", controllers.ProductSearch(catalogService, logg))
			r.Get("/{slug}", controllers.ProductDetail(catalogService, logg))
		})
		r.Get("/categories", controllers.CategoryList(catalogService, logg))
		r.Get("/manufacturers", controllers.ManufacturerList(catalogService, logg))
		r.Route("/exhibitions", func(r chi.Router) {
			r.Get("/", controllers.ExhibitionList(exhibitionService, logg))
			r.Get("/{exhibitionId}", controllers.ExhibitionDetail(exhibitionService, logg))
		})

		r.Post("/signup", controllers.AuthSignup(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Route("/auth/magic-link", func(r chi.Router) {
			r.Post("/", controllers.MagicLinkRequest(authService, logg))
			r.Get("/verify", controllers.MagicLinkVerify(authService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartToken(logg))
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).
				Post("/reorder", controllers.CartReorder(cartService, logg))
		})

		r.Post("/bulk-order", controllers.BulkOrder(bulkOrderService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.OptionalAuth(cfg.JWT, logg)).
				Post("/", controllers.Checkout(orderService, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).
				Get("/", controllers.OrderHistory(orderService, logg))
			r.Get("/{orderNumber}", controllers.OrderDetail(orderService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireAdmin(logg))
			r.Get("/stats", controllers.AdminStats(adminService, logg))
			r.Patch("/orders/{orderId}/status", controllers.AdminOrderStatus(orderService, logg))
			r.Route("/exhibitions", func(r chi.Router) {
				r.Post("/", controllers.ExhibitionCreate(exhibitionService, logg))
				r.Put("/{exhibitionId}", controllers.ExhibitionUpdate(exhibitionService, logg))
				r.Delete("/{exhibitionId}", controllers.ExhibitionDelete(exhibitionService, logg))
			})
		})
	})

	return r
}
