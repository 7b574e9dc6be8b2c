package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/datalinea/dataspace-backend/api/responses"
	"github.com/datalinea/dataspace-backend/pkg/config"
	"github.com/datalinea/dataspace-backend/pkg/logger"
)

const readyProbeTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dataspace-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes each wired dependency. A nil probe is skipped so the
// binary stays usable when an optional backend is not configured.
func HealthReady(cfg *config.Config, logg *logger.Logger, probes map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dataspace-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		for name, probe := range probes {
			if probe == nil {
				checks[name] = "skipped"
				continue
			}
			if err := probe.Ping(ctx); err != nil {
				checks[name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness probe failed", err)
				}
				continue
			}
			checks[name] = "up"
		}

		status := http.StatusOK
		state := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": state,
			"checks": checks,
		})
	}
}

// ReadyProbes assembles the probe set from whatever clients are wired.
func ReadyProbes(db, redis, pubsub, bigquery pinger) map[string]pinger {
	return map[string]pinger{
		"postgres": db,
		"redis":    redis,
		"pubsub":   pubsub,
		"bigquery": bigquery,
	}
}
