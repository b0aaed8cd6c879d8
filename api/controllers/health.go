package controllers

import (
	"context"
	"net/http"

	"github.com/yazbox/yazbox-backend/api/responses"
	"github.com/yazbox/yazbox-backend/pkg/config"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

const envHeader = "X-Yazbox-Env"

// Pinger is the health check surface every backing client exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing service and reports the first failure.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

// ReadinessDeps assembles the named dependency set for HealthReady. Nil
// entries are skipped so callers can wire a subset in tests.
func ReadinessDeps(db, redis, pubsub, gcs Pinger) map[string]Pinger {
	return map[string]Pinger{
		"database": db,
		"redis":    redis,
		"pubsub":   pubsub,
		"gcs":      gcs,
	}
}
