package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/lingo-labs/lingo/internal/httputil"
	"github.com/lingo-labs/lingo/internal/logging"
	"github.com/lingo-labs/lingo/internal/user"
)

// contextKey is unexported so only this package can read or write the
// authenticated user in a request context.
type contextKey string

const currentUserKey contextKey = "current_user"

// Middleware is the server-side auth gate: it turns the session cookie into
// a loaded user in the request context, or rejects with 401.
type Middleware struct {
	tokenService TokenService
	userRepo     UserRepository
}

func NewMiddleware(tokenService TokenService, userRepo UserRepository) *Middleware {
	return &Middleware{
		tokenService: tokenService,
		userRepo:     userRepo,
	}
}

// RequireAuth validates the session cookie, resolves the embedded user ID
// against the store, and injects the user into the request context. This is
// the sole authorization primitive; downstream handlers do not re-check.
//
// Store failures during resolution are treated as Unauthorized, not as a
// server fault - the gate fails closed.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, err := GetSessionTokenFromCookie(r)
		if err != nil {
			httputil.RespondErrorWithCode(w, "Unauthorized - No token provided", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokenService.VerifyToken(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondErrorWithCode(w, "Unauthorized - Token expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "Unauthorized - Invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "Unauthorized - Invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		currentUser, err := m.userRepo.GetByID(r.Context(), userID)
		if err != nil {
			// A valid token only proves the user existed at issuance time.
			// Lookup failures of any kind resolve to Unauthorized.
			logger.Warn("auth gate could not resolve user", "user_id", userID, "error", err)
			httputil.RespondErrorWithCode(w, "Unauthorized - User not found", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, currentUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser retrieves the authenticated user from the request context.
// Returns (nil, false) on requests that did not pass RequireAuth.
func CurrentUser(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(currentUserKey).(*user.User)
	return u, ok
}
