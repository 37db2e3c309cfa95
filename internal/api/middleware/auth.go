package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/teamscore/internal/api/apierr"
	"github.com/mcoot/teamscore/internal/services/auth"
	"github.com/mcoot/teamscore/internal/services/guard"
)

type contextKey string

const (
	claimsContextKey      contextKey = "claims"
	competitionContextKey contextKey = "competition"
)

// CompetitionHeader carries the competition id for callers whose token has none
const CompetitionHeader = "X-Competition-ID"

// Authenticate validates a bearer token when one is present. Requests without
// a token continue anonymously; a bad token is rejected.
func Authenticate(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.Validate(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that carry no valid token
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaims(r.Context()) == nil {
			apierr.WriteError(w, apierr.NewUnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Competition resolves the competition the request acts on and attaches it.
// The token's competition claim wins over the header.
func Competition(g *guard.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			caller, err := guard.CallerFromClaims(claims)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			claimed := ""
			if claims != nil {
				claimed = claims.CompetitionID
			}

			gc, err := g.Resolve(r.Context(), caller, claimed, extractCompetitionID(r))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), competitionContextKey, gc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the bearer token. Browsers cannot set headers on
// EventSource or WebSocket requests, so the query string is a fallback.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("access_token")
}

func extractCompetitionID(r *http.Request) string {
	if id := r.Header.Get(CompetitionHeader); id != "" {
		return id
	}
	return r.URL.Query().Get("competitionId")
}

// GetClaims returns the validated token claims, or nil for anonymous requests
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// GetCompetition returns the resolved competition context
func GetCompetition(ctx context.Context) *guard.Context {
	gc, _ := ctx.Value(competitionContextKey).(*guard.Context)
	return gc
}

// MustGetCompetition returns the resolved competition context or panics
func MustGetCompetition(ctx context.Context) *guard.Context {
	gc := GetCompetition(ctx)
	if gc == nil {
		panic("no competition in context - competition middleware not applied?")
	}
	return gc
}
