// Package server assembles the HTTP application: middleware, routes and the
// view resolvers that let templates check staff capabilities.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"gorm.io/gorm"

	"github.com/diewo77/go-bookstore/auth"
	"github.com/diewo77/go-bookstore/gate"
	"github.com/diewo77/go-bookstore/httpx"
	"github.com/diewo77/go-bookstore/internal/config"
	"github.com/diewo77/go-bookstore/internal/db"
	"github.com/diewo77/go-bookstore/internal/handlers"
	"github.com/diewo77/go-bookstore/internal/metrics"
	"github.com/diewo77/go-bookstore/internal/policy"
	"github.com/diewo77/go-bookstore/view"
)

// App is the application handler.
type App struct {
	router    chi.Router
	db        *gorm.DB
	cfg       *config.Config
	routerCfg *policy.RouterConfig
	staticDir string
}

// Option customises an App.
type Option func(*App)

// WithStaticDir serves /static/ from dir instead of "static".
func WithStaticDir(dir string) Option {
	return func(a *App) { a.staticDir = dir }
}

// NewApp creates the application with all routes configured.
func NewApp(gdb *gorm.DB, cfg *config.Config, routerCfg *policy.RouterConfig, opts ...Option) *App {
	a := &App{
		router:    chi.NewRouter(),
		db:        gdb,
		cfg:       cfg,
		routerCfg: routerCfg,
		staticDir: "static",
	}
	for _, o := range opts {
		o(a)
	}

	ag := routerCfg.AuthGate
	view.SetCanResolver(func(r *http.Request, resource, action string) bool {
		return ag.Can(r, resource, gate.Action(action))
	})
	view.SetIsStaffResolver(func(r *http.Request) bool {
		uid, ok := auth.UserIDFromContext(r.Context())
		return ok && ag.IsStaff(r.Context(), uid)
	})
	auth.SetUserVerifier(routerCfg.Accounts.Exists)

	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	r := a.router
	r.Use(requestID, middleware.RealIP, accessLog, middleware.Recoverer, metrics.Middleware, auth.Middleware)

	r.Get("/health", a.health)
	r.Get("/healthz", a.healthz)
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(a.staticDir))))

	ch := a.routerCfg.CatalogHandler
	ah := a.routerCfg.AccountHandler
	cart := a.routerCfg.CartHandler

	// Public routes
	r.Get("/", ch.List)
	r.Get("/search", ch.Search)
	r.Get("/search/", ch.Search)
	r.Get("/login/", ah.Login)
	r.With(a.loginLimiter()).Post("/login/", ah.Login)
	r.Get("/register/", ah.Register)
	r.Post("/register/", ah.Register)
	r.Get("/logout/", ah.Logout)
	r.Post("/logout/", ah.Logout)

	// Customer routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/profile/", ah.Profile)
		r.Get("/cart/", cart.Cart)
		r.Get("/add-to-cart/{bookID}/", cart.AddToCart)
		r.Post("/add-to-cart/{bookID}/", cart.AddToCart)
		r.Get("/remove-from-cart/{itemID}/", cart.RemoveFromCart)
		r.Post("/remove-from-cart/{itemID}/", cart.RemoveFromCart)
		r.Get("/checkout/", cart.Checkout)
		r.HandleFunc("/place-order/", cart.PlaceOrder)
		r.Get("/history/", cart.History)
		r.Get("/recommendations/", cart.Recommendations)
		r.Post("/{bookID}/rate/", ch.Rate)
	})

	// Back office
	r.Route("/staff", func(r chi.Router) {
		ag := a.routerCfg.AuthGate
		sh := a.routerCfg.StaffHandler
		rh := a.routerCfg.StaffRoleHandler
		r.Use(auth.RequireAuth, ag.RequireStaff())

		r.Get("/", sh.Dashboard)
		r.With(ag.RequirePermission("book", gate.ActionCreate)).Get("/add-book/", sh.AddBook)
		r.With(ag.RequirePermission("book", gate.ActionCreate)).Post("/add-book/", sh.AddBook)
		r.With(ag.RequirePermission("inventory", gate.ActionList)).Get("/inventory/", sh.Inventory)
		r.With(ag.RequirePermission("order", gate.ActionList)).Get("/orders/", sh.Orders)
		r.With(ag.RequirePermission("order", gate.ActionUpdate)).Post("/orders/{orderID}/status/", sh.UpdateOrderStatus)
		r.With(ag.RequirePermission("import", gate.ActionList)).Get("/import/", sh.Import)
		r.With(ag.RequirePermission("import", gate.ActionCreate)).Post("/import/", sh.Import)
		r.With(ag.RequirePermission("profile", gate.ActionList)).Get("/roles/", rh.List)
		r.With(ag.RequirePermission("profile", gate.ActionUpdate)).Post("/roles/{userID}/", rh.Assign)
	})

	r.Get("/{bookID}/", ch.Detail)
	r.NotFound(handlers.NotFound)
}

// loginLimiter throttles login attempts per client IP. A zero limit
// disables it.
func (a *App) loginLimiter() func(http.Handler) http.Handler {
	limit := a.cfg.Shop.LoginRateLimit
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(limit, a.cfg.Shop.LoginRateWindow)
}

func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// healthz also checks the database.
func (a *App) healthz(w http.ResponseWriter, _ *http.Request) {
	if err := db.Ping(a.db); err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}
