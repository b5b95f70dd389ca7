package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/kickstock-backend/api/controllers"
	"github.com/angelmondragon/kickstock-backend/api/middleware"
	"github.com/angelmondragon/kickstock-backend/internal/audit"
	"github.com/angelmondragon/kickstock-backend/internal/queue"
	"github.com/angelmondragon/kickstock-backend/internal/shoes"
	"github.com/angelmondragon/kickstock-backend/internal/users"
	"github.com/angelmondragon/kickstock-backend/pkg/config"
	"github.com/angelmondragon/kickstock-backend/pkg/db"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
	"github.com/angelmondragon/kickstock-backend/pkg/redis"
)

// Services groups the domain services the HTTP surface exposes.
type Services struct {
	Users users.Service
	Queue queue.Service
	Shoes shoes.Service
	Audit audit.Service
}

// NewRouter mounts every route. redisClient may be nil, in which case
// idempotency replay and intake rate limiting are disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	// A typed nil *redis.Client must not leak into the interfaces below.
	var (
		redisP      redis.Pinger
		idemStore   redis.IdempotencyStore
		rateLimiter redis.RateLimiter
	)
	if redisClient != nil {
		redisP, idemStore, rateLimiter = redisClient, redisClient, redisClient
	}

	intakePolicy := middleware.NewRateLimitPolicy("intake", cfg.RateLimit.IntakeWindow, cfg.RateLimit.IntakeLimit)
	intakeLimit := middleware.RateLimit(intakePolicy, rateLimiter, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/api/status", controllers.APIStatus())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", controllers.UserCreate(svcs.Users, logg))
			r.Get("/{userId}", controllers.UserGet(svcs.Users, logg))
		})

		r.Route("/queue", func(r chi.Router) {
			r.With(intakeLimit).Post("/", controllers.QueueEnqueue(svcs.Queue, logg))
			r.Get("/", controllers.QueueList(svcs.Queue, logg))
			r.Route("/{queueId}", func(r chi.Router) {
				r.Get("/", controllers.QueueGet(svcs.Queue, logg))
				r.With(intakeLimit).Post("/images", controllers.QueueAttachImages(svcs.Queue, cfg.Media, logg))
				r.Post("/start", controllers.QueueStart(svcs.Queue, logg))
				r.Post("/cancel", controllers.QueueCancel(svcs.Queue, logg))
				r.Post("/archive", controllers.QueueArchive(svcs.Queue, logg))
				r.Post("/promote", controllers.QueuePromote(svcs.Queue, logg))
			})
		})

		r.Route("/shoes", func(r chi.Router) {
			r.Post("/", controllers.ShoeCreate(svcs.Shoes, logg))
			r.Get("/", controllers.ShoeList(svcs.Shoes, logg))
			r.Route("/{shoeId}", func(r chi.Router) {
				r.Get("/", controllers.ShoeGet(svcs.Shoes, logg))
				r.Patch("/", controllers.ShoeUpdate(svcs.Shoes, logg))
				r.Post("/listing", controllers.ShoeTransitionListing(svcs.Shoes, logg))
				r.Post("/payment", controllers.ShoeTransitionPayment(svcs.Shoes, logg))
				r.Post("/shipping", controllers.ShoeTransitionShipping(svcs.Shoes, logg))
				r.Get("/transactions", controllers.ShoeTransactions(svcs.Shoes, logg))
				r.Get("/audits", controllers.AuditTrail(svcs.Audit, logg))
				r.Post("/audits", controllers.AuditRecord(svcs.Audit, logg))
			})
		})
	})

	return r
}
