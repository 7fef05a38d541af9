package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"invoice-backend/internal/auth"
	"invoice-backend/internal/logger"
	"invoice-backend/internal/models"
	"invoice-backend/pkg/utils"
)

type contextKey string

const AccountIDKey contextKey = "account_id"
const EmailKey contextKey = "email"

// AccountLookup confirms a token's account still exists
type AccountLookup interface {
	Get(ctx context.Context, id string) (*models.Account, error)
}

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	cookies    *auth.SessionCookies
	accounts   AccountLookup
}

// NewAuthMiddleware wires token verification. accounts may be nil, in which
// case a valid signature is enough.
func NewAuthMiddleware(jwtManager *auth.JWTManager, cookies *auth.SessionCookies, accounts AccountLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		cookies:    cookies,
		accounts:   accounts,
	}
}

// resolve returns the session claims carried by r. A nil result with a nil
// error means "no session"; an error means the account lookup itself failed.
// The cookie wins over an Authorization: Bearer header.
func (m *AuthMiddleware) resolve(r *http.Request) (*auth.Claims, error) {
	token, ok := m.cookies.Read(r)
	if !ok {
		parts := strings.Fields(r.Header.Get("Authorization"))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return nil, nil
		}
		token = parts[1]
	}

	claims, err := m.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, nil
	}

	if m.accounts != nil {
		_, err := m.accounts.Get(r.Context(), claims.AccountID)
		if errors.Is(err, models.ErrAccountNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return claims, nil
}

func lookupFailed(w http.ResponseWriter, err error) {
	log := logger.WithComponent("auth")
	log.Error().Err(err).Msg("session account lookup failed")
	utils.Error(w, http.StatusInternalServerError, "Internal Server Error")
}

// RequireSession rejects requests without a valid session with 401
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.resolve(r)
		if err != nil {
			lookupFailed(w, err)
			return
		}
		if claims == nil {
			utils.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), claims.AccountID, claims.Email)))
	})
}

// OptionalSession attaches the account when there is one and continues either way
func (m *AuthMiddleware) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.resolve(r)
		if err != nil {
			lookupFailed(w, err)
			return
		}
		if claims != nil {
			r = r.WithContext(WithAccount(r.Context(), claims.AccountID, claims.Email))
		}
		next.ServeHTTP(w, r)
	})
}

// WithAccount stores the calling account on ctx
func WithAccount(ctx context.Context, accountID, email string) context.Context {
	ctx = context.WithValue(ctx, AccountIDKey, accountID)
	return context.WithValue(ctx, EmailKey, email)
}

// AccountIDFromContext extracts the calling account id
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AccountIDKey).(string)
	return id, ok && id != ""
}

// EmailFromContext extracts the calling account's email
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}
