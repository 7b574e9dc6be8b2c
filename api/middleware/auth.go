package middleware

import (
	"net/http"
	"strings"

	"github.com/datalinea/dataspace-backend/api/responses"
	pkgauth "github.com/datalinea/dataspace-backend/pkg/auth"
	"github.com/datalinea/dataspace-backend/pkg/config"
	pkgerrors "github.com/datalinea/dataspace-backend/pkg/errors"
	"github.com/datalinea/dataspace-backend/pkg/logger"
)

// Auth validates a bearer token minted by the platform identity service and
// seeds the request context with the claims. Tokens are stateless; revocation
// happens upstream at the identity provider.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithOrgID(ctx, claims.OrgID.String())
			ctx = withRole(ctx, string(claims.Role))

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				ctx = logg.WithOrgID(ctx, claims.OrgID.String())
				ctx = logg.WithField(ctx, "member_role", string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
