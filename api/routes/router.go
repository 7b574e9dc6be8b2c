package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/datalinea/dataspace-backend/api/controllers"
	assetcontrollers "github.com/datalinea/dataspace-backend/api/controllers/assets"
	requestcontrollers "github.com/datalinea/dataspace-backend/api/controllers/requests"
	"github.com/datalinea/dataspace-backend/api/middleware"
	"github.com/datalinea/dataspace-backend/internal/drafts"
	"github.com/datalinea/dataspace-backend/internal/grants"
	internalrequests "github.com/datalinea/dataspace-backend/internal/requests"
	"github.com/datalinea/dataspace-backend/pkg/bigquery"
	"github.com/datalinea/dataspace-backend/pkg/config"
	"github.com/datalinea/dataspace-backend/pkg/db"
	"github.com/datalinea/dataspace-backend/pkg/logger"
	"github.com/datalinea/dataspace-backend/pkg/pubsub"
	"github.com/datalinea/dataspace-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	pubsubClient *pubsub.Client,
	bigqueryClient bigquery.Pinger,
	requestsService internalrequests.Service,
	grantsService grants.Service,
	draftsService drafts.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadyProbes(dbClient, redisClient, pubsubClient, bigqueryClient)))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", requestcontrollers.Create(requestsService, draftsService, logg))
			r.Get("/", requestcontrollers.List(requestsService, logg))
			r.Get("/{requestId}", requestcontrollers.Detail(requestsService, logg))
			r.Post("/{requestId}/transitions", requestcontrollers.Transition(requestsService, logg))
			r.Get("/{requestId}/history", requestcontrollers.History(requestsService, logg))
		})

		r.Route("/assets/{assetId}", func(r chi.Router) {
			r.Get("/terms", assetcontrollers.Terms(grantsService, logg))
			r.Route("/draft", func(r chi.Router) {
				r.Get("/", assetcontrollers.DraftGet(draftsService, logg))
				r.Put("/", assetcontrollers.DraftSave(draftsService, logg))
				r.Delete("/", assetcontrollers.DraftClear(draftsService, logg))
			})
		})
	})

	return r
}
