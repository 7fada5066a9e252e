package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/narekgrig/shopfront-backend/api/controllers"
	"github.com/narekgrig/shopfront-backend/api/middleware"
	"github.com/narekgrig/shopfront-backend/internal/cart"
	"github.com/narekgrig/shopfront-backend/internal/catalog"
	"github.com/narekgrig/shopfront-backend/internal/orders"
	"github.com/narekgrig/shopfront-backend/internal/users"
	"github.com/narekgrig/shopfront-backend/internal/wishlist"
	"github.com/narekgrig/shopfront-backend/pkg/config"
	"github.com/narekgrig/shopfront-backend/pkg/db"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
	"github.com/narekgrig/shopfront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	cartService cart.Service,
	wishlistService wishlist.Service,
	ordersService orders.Service,
	ordersRepo *orders.Repository,
	usersRepo *users.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Guest surface: no credentials, session-scoped state plus quoting and
	// guest checkout.
	r.Route("/api/v1/guest", func(r chi.Router) {
		r.Use(middleware.GuestSession())
		r.Get("/cart", controllers.GuestCartFetch(cartService, logg))
		r.Put("/cart", controllers.GuestCartSave(cartService, logg))
		r.Put("/wishlist", controllers.GuestWishlistSave(cartService, logg))
	})

	// Checkout and quoting accept both authenticated and anonymous callers.
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Post("/quote", controllers.OrderQuote(ordersService, logg))
		r.Post("/", controllers.OrderCreate(ordersService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.ProfileFetch(usersRepo, logg))
			r.Put("/", controllers.ProfileSync(usersRepo, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Put("/items", controllers.CartSetItem(cartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
			r.With(middleware.GuestSession()).Post("/merge", controllers.CartMerge(cartService, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(wishlistService, logg))
			r.Post("/", controllers.WishlistAdd(wishlistService, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(wishlistService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(ordersRepo, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersRepo, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Post("/products", controllers.ProductCreate(catalogService, logg))
	})

	return r
}
