package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/mirefield/gatherspace/internal/errors"
	"github.com/mirefield/gatherspace/internal/services/gathering/app"
)

type principalContextKey struct{}

// Authenticate resolves the caller's principal from a bearer JWT.
//
// Tokens are HS256-signed; the subject claim carries the user id and the
// "org" claim carries the org id. Token issuance and session management live
// upstream, this middleware only extracts and verifies claims.
func Authenticate(secret []byte) Middleware {
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := principalFromRequest(r, secret)
			if err != nil {
				WriteError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// principalFromRequest verifies the bearer token and extracts its claims.
func principalFromRequest(r *http.Request, secret []byte) (app.Principal, error) {
	if len(secret) == 0 {
		return app.Principal{}, apperrors.E(apperrors.CodePrincipalInvalid, "token verification is not configured")
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return app.Principal{}, apperrors.E(apperrors.CodePrincipalRequired, "authorization header is required")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return app.Principal{}, apperrors.E(apperrors.CodePrincipalRequired, "bearer token is required")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(
		strings.TrimSpace(token),
		claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return app.Principal{}, apperrors.E(apperrors.CodePrincipalInvalid, "bearer token is invalid")
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return app.Principal{}, apperrors.E(apperrors.CodePrincipalInvalid, "token subject is required")
	}
	orgID, _ := claims["org"].(string)
	if strings.TrimSpace(orgID) == "" {
		return app.Principal{}, apperrors.E(apperrors.CodePrincipalInvalid, "token org claim is required")
	}
	return app.Principal{
		UserID: strings.TrimSpace(subject),
		OrgID:  strings.TrimSpace(orgID),
	}, nil
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (app.Principal, bool) {
	if ctx == nil {
		return app.Principal{}, false
	}
	principal, ok := ctx.Value(principalContextKey{}).(app.Principal)
	return principal, ok
}
