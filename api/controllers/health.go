package controllers

import (
	"context"
	"net/http"

	"github.com/mealbridge/mealbridge-backend/api/responses"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
)

// Pingable is the health-check surface of a backing dependency.
type Pingable interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MealBridge-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every named dependency answers a ping.
// Nil entries are skipped so optional dependencies can stay unwired in dev.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pingable) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MealBridge-Env", cfg.App.Env)

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				if logg != nil {
					logg.Error(r.Context(), "readiness check failed: "+name, err)
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
