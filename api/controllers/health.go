package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/trustflow/trustflow-backend/api/responses"
	"github.com/trustflow/trustflow-backend/pkg/config"
	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/redis"
)

const readyTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TrustFlow-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency. A failing check answers 503 with the
// failing names in the error details.
func HealthReady(cfg *config.Config, checks map[string]redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TrustFlow-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		failed := map[string]any{}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Ping(ctx); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(failed)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
