package middleware

import (
	"net/http"

	"github.com/angelmondragon/kickstock-backend/api/responses"
	"github.com/angelmondragon/kickstock-backend/api/validators"
	pkgAuth "github.com/angelmondragon/kickstock-backend/pkg/auth"
	"github.com/angelmondragon/kickstock-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the actor
// that audit entries are attributed to.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithActor(r.Context(), claims.Actor())
			if claims.UserID != 0 {
				ctx = WithUserID(ctx, claims.UserID)
			}
			if logg != nil {
				ctx = logg.WithActor(ctx, claims.Actor())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
