package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const SessionCookieName = "barber_session"

type contextKey string

const sessionIDKey contextKey = "sessionID"

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SessionMiddlewareConfig struct {
	Duration     time.Duration
	SecureCookie bool
}

// SessionMiddleware resolves the shopper's session from the signed cookie. A
// missing, tampered or expired cookie starts a new session with a fresh id.
func SessionMiddleware(manager SessionTokenManagerInterface, cfg SessionMiddlewareConfig, log logrus.FieldLogger) func(http.Handler) http.Handler {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultSessionDuration
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				sessionID, err := manager.ValidateSessionToken(cookie.Value)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
					return
				}
				log.WithError(err).Debug("Discarding session cookie")
			}

			sessionID := uuid.NewString()
			token, err := manager.GenerateSessionJWT(sessionID, cfg.Duration)
			if err != nil {
				log.WithError(err).Error("Failed to sign session token")
				writeJSONError(w, http.StatusInternalServerError, "Failed to start session")
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(cfg.Duration.Seconds()),
				HttpOnly: true,
				Secure:   cfg.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey).(string)
	return sessionID, ok && sessionID != ""
}

// writeJSONError writes an error response in JSON format
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Message: message,
	})
}
