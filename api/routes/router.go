package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webyarden/webyarden-backend/api/controllers"
	"github.com/webyarden/webyarden-backend/api/middleware"
	"github.com/webyarden/webyarden-backend/internal/auth"
	"github.com/webyarden/webyarden-backend/internal/contacts"
	"github.com/webyarden/webyarden-backend/internal/discounts"
	"github.com/webyarden/webyarden-backend/internal/packs"
	"github.com/webyarden/webyarden-backend/internal/projects"
	"github.com/webyarden/webyarden-backend/internal/quotes"
	"github.com/webyarden/webyarden-backend/internal/services"
	"github.com/webyarden/webyarden-backend/pkg/auth/session"
	"github.com/webyarden/webyarden-backend/pkg/config"
	"github.com/webyarden/webyarden-backend/pkg/enums"
	"github.com/webyarden/webyarden-backend/pkg/logger"
	"github.com/webyarden/webyarden-backend/pkg/metrics"
	pkgredis "github.com/webyarden/webyarden-backend/pkg/redis"
)

// Store is the redis surface used by the rate limiters and the idempotency guard.
type Store interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Params bundles everything the HTTP surface depends on.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Store    Store
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Auth      auth.Service
	Register  auth.RegisterService
	Quotes    quotes.Service
	Discounts discounts.Service
	Services  services.Service
	Packs     packs.Service
	Projects  projects.Service
	Contacts  contacts.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTP),
		middleware.CORS(cfg.CORS),
	)

	var rateStore interface {
		IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	}
	var idemStore pkgredis.IdempotencyStore
	if p.Store != nil {
		rateStore = p.Store
		idemStore = p.Store
	}
	idempotent := middleware.Idempotency(idemStore, logg)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": p.DB,
			"redis":    p.Redis,
		}))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, rateStore, logg))

		r.Post("/quotes/calculate", controllers.QuoteCalculate(p.Quotes, logg))
		r.With(idempotent).Post("/quotes", controllers.QuoteCreate(p.Quotes, logg))

		r.Route("/discounts", func(r chi.Router) {
			r.Get("/active", controllers.DiscountsActive(p.Discounts, logg))
			r.Post("/validate", controllers.DiscountValidate(p.Discounts, logg))
			r.With(idempotent).Post("/apply", controllers.DiscountApply(p.Discounts, logg))
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", controllers.ServicesList(p.Services, logg))
			r.Get("/{slug}", controllers.ServiceBySlug(p.Services, logg))
		})
		r.Route("/packs", func(r chi.Router) {
			r.Get("/", controllers.PacksList(p.Packs, logg))
			r.Get("/{slug}", controllers.PackBySlug(p.Packs, logg))
		})
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ProjectsList(p.Projects, logg))
			r.Get("/{slug}", controllers.ProjectBySlug(p.Projects, logg))
		})

		r.With(idempotent).Post("/contact", controllers.ContactSubmit(p.Contacts, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(p.Register, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, p.Sessions, logg)).Get("/me", controllers.AuthMe(p.Auth, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", controllers.AdminQuotesList(p.Quotes, logg))
				r.Get("/{id}", controllers.AdminQuoteGet(p.Quotes, logg))
				r.Patch("/{id}", controllers.AdminQuoteUpdate(p.Quotes, logg))
			})
			r.Route("/discounts", func(r chi.Router) {
				r.Get("/", controllers.AdminDiscountsList(p.Discounts, logg))
				r.Post("/", controllers.AdminDiscountCreate(p.Discounts, logg))
				r.Put("/{id}", controllers.AdminDiscountUpdate(p.Discounts, logg))
				r.Delete("/{id}", controllers.AdminDiscountDelete(p.Discounts, logg))
			})
			r.Route("/services", func(r chi.Router) {
				r.Get("/", controllers.AdminServicesList(p.Services, logg))
				r.Post("/", controllers.AdminServiceCreate(p.Services, logg))
				r.Put("/{id}", controllers.AdminServiceUpdate(p.Services, logg))
				r.Delete("/{id}", controllers.AdminServiceDelete(p.Services, logg))
			})
			r.Route("/packs", func(r chi.Router) {
				r.Get("/", controllers.AdminPacksList(p.Packs, logg))
				r.Post("/", controllers.AdminPackCreate(p.Packs, logg))
				r.Put("/{id}", controllers.AdminPackUpdate(p.Packs, logg))
				r.Delete("/{id}", controllers.AdminPackDelete(p.Packs, logg))
			})
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", controllers.AdminProjectsList(p.Projects, logg))
				r.Post("/", controllers.AdminProjectCreate(p.Projects, logg))
				r.Put("/{id}", controllers.AdminProjectUpdate(p.Projects, logg))
				r.Delete("/{id}", controllers.AdminProjectDelete(p.Projects, logg))
			})
			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", controllers.AdminContactsList(p.Contacts, logg))
				r.Patch("/{id}", controllers.AdminContactUpdate(p.Contacts, logg))
				r.Delete("/{id}", controllers.AdminContactDelete(p.Contacts, logg))
			})
		})
	})

	return r
}
