package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trustflow/trustflow-backend/api/controllers"
	"github.com/trustflow/trustflow-backend/api/middleware"
	"github.com/trustflow/trustflow-backend/internal/spaces"
	"github.com/trustflow/trustflow-backend/internal/testimonials"
	"github.com/trustflow/trustflow-backend/pkg/config"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/metrics"
	"github.com/trustflow/trustflow-backend/pkg/redis"
)

// RedisClient is the slice of the redis client the HTTP layer needs.
type RedisClient interface {
	redis.Pinger
	redis.RateLimiter
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP redis.Pinger,
	redisClient RedisClient,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	spaceService spaces.Service,
	testimonialService testimonials.Service,
	publicData controllers.PublicDataReader,
	streams controllers.StreamServer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.DashboardOrigins),
	)

	submitPolicy := middleware.SubmitPolicy(
		cfg.RateLimit.SubmitWindow,
		cfg.RateLimit.SubmitIPLimit,
		cfg.RateLimit.SubmitEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]redis.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}, logg))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Everything below is loaded by third-party sites.
	r.Group(func(r chi.Router) {
		r.Get("/embed.js", controllers.EmbedScript(cfg.App.PublicBaseURL))
		r.Get("/widget/{spaceId}", controllers.WidgetPage(testimonialService, cfg.Popup.AvatarBaseURL, logg))

		r.Route("/api/public", func(r chi.Router) {
			r.Get("/ping", controllers.PublicPing())
			r.Get("/spaces/by-slug/{slug}", controllers.SpacePublicForm(spaceService, logg))
			r.With(middleware.RateLimit(submitPolicy, redisClient, logg)).
				Post("/spaces/{spaceId}/testimonials", controllers.TestimonialSubmit(testimonialService, logg))
		})

		r.Route("/api/spaces/{spaceId}", func(r chi.Router) {
			r.Get("/public-data", controllers.PublicData(publicData, logg))
			r.Get("/wall", controllers.TestimonialWall(testimonialService, logg))
			r.Get("/popups/stream", controllers.PopupStream(streams, publicData, logg))
		})
		r.Post("/api/popups/streams/{streamId}/pause", controllers.PopupPause(streams, logg))
		r.Get("/api/avatars", controllers.Avatar(logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/spaces", func(r chi.Router) {
			r.Get("/", controllers.SpaceList(spaceService, logg))
			r.Post("/", controllers.SpaceCreate(spaceService, logg))
			r.Get("/slug-availability", controllers.SpaceSlugAvailability(spaceService, logg))

			r.Route("/{spaceId}", func(r chi.Router) {
				r.Get("/", controllers.SpaceGet(spaceService, logg))
				r.Patch("/", controllers.SpaceUpdate(spaceService, logg))
				r.Delete("/", controllers.SpaceDelete(spaceService, logg))
				r.Put("/widget-settings", controllers.SpaceWidgetSettings(spaceService, logg))

				r.Route("/testimonials", func(r chi.Router) {
					r.Get("/", controllers.TestimonialList(testimonialService, logg))
					r.Get("/export", controllers.TestimonialExport(testimonialService, logg))
					r.Post("/{testimonialId}/like", controllers.TestimonialLike(testimonialService, logg))
					r.Delete("/{testimonialId}", controllers.TestimonialDelete(testimonialService, logg))
				})
			})
		})
	})

	return r
}
