package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/kickstock-backend/api/responses"
	"github.com/angelmondragon/kickstock-backend/pkg/config"
	"github.com/angelmondragon/kickstock-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/kickstock-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KickStock-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KickStock-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok"}
		failed := false
		if dbP == nil {
			checks["database"] = "missing"
			failed = true
		} else if err := dbP.Ping(ctx); err != nil {
			checks["database"] = "unreachable"
			failed = true
		}
		if redisP != nil {
			checks["redis"] = "ok"
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "unreachable"
				failed = true
			}
		}

		if failed {
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithField(ctx, "checks", checks)
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeStorage, "dependency check failed"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
