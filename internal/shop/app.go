package shop

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"MiniShop/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	LoginLimitPerMin  int
	SignupLimitPerMin int
}

const (
	defaultLoginLimitPerMin  = 20
	defaultSignupLimitPerMin = 10
	limitWindow              = 60 * time.Second
)

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupRoutes(r, s, deps)

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	r.Use(cors.AllowAll().Handler)
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupRoutes(r *chi.Mux, s *Server, deps HTTPDeps) {
	loginLimit := deps.LoginLimitPerMin
	if loginLimit <= 0 {
		loginLimit = defaultLoginLimitPerMin
	}
	signupLimit := deps.SignupLimitPerMin
	if signupLimit <= 0 {
		signupLimit = defaultSignupLimitPerMin
	}

	loginLimiter := kit.NewIPRateLimiter(loginLimit, int(limitWindow.Seconds()))
	signupLimiter := kit.NewIPRateLimiter(signupLimit, int(limitWindow.Seconds()))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.With(signupLimiter.Middleware).Post("/signup", s.handleSignup)
		api.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
		api.Post("/logout", s.handleLogout)

		api.Group(func(pr chi.Router) {
			pr.Use(s.RequireSession)
			pr.Get("/products", s.handleProducts)
			pr.Post("/cart/add", s.handleCartAdd)
			pr.Get("/cart", s.handleCart)
			pr.Post("/checkout", s.handleCheckout)
		})
	})
}
