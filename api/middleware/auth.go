package middleware

import (
	"net/http"

	"github.com/trustflow/trustflow-backend/api/responses"
	"github.com/trustflow/trustflow-backend/api/validators"
	pkgAuth "github.com/trustflow/trustflow-backend/pkg/auth"
	"github.com/trustflow/trustflow-backend/pkg/config"
	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
	"github.com/trustflow/trustflow-backend/pkg/logger"
)

// Auth validates the identity provider's bearer token and seeds the request
// context with the owner id.
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
			ownerID, err := claims.OwnerID()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithOwnerID(r.Context(), ownerID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, ownerID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
