package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sungwon/newsletter/internal/auth"
	"github.com/sungwon/newsletter/internal/logger"
	"github.com/sungwon/newsletter/internal/metrics"
	"github.com/sungwon/newsletter/internal/storage"
)

// loginRequest is the JSON body for POST /api/v1/auth/login. Either username
// or email identifies the admin.
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

// tokenResponse is the JSON response of a successful login.
type tokenResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     adminResponse `json:"admin"`
}

// LoginHandler handles POST /api/v1/auth/login.
// Verifies the admin's bcrypt password and returns a signed token. Repeated
// failures for the same login are locked out by the rate limiter.
func LoginHandler(admins AdminLookup, tokens TokenIssuer, limiter *auth.RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		login := strings.TrimSpace(req.Username)
		if login == "" {
			login = strings.TrimSpace(req.Email)
		}
		var details []string
		if login == "" {
			details = append(details, "username or email is required")
		}
		if req.Password == "" {
			details = append(details, "password is required")
		}
		if len(details) > 0 {
			respondValidationErrors(w, details)
			return
		}

		if err := limiter.CheckLogin(r.Context(), login); err != nil {
			if errors.Is(err, auth.ErrLoginLocked) {
				metrics.APIAuthFailuresTotal.Inc()
				respondError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
				return
			}
			log.Warn().Err(err).Msg("login rate limit check failed")
		}

		admin, err := admins.GetByLogin(r.Context(), login)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Error().Err(err).Msg("admin lookup failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if err != nil || !auth.PasswordMatches(admin.PasswordHash, req.Password) {
			metrics.APIAuthFailuresTotal.Inc()
			if err := limiter.RecordFailedLogin(r.Context(), login); err != nil {
				log.Warn().Err(err).Msg("record failed login")
			}
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		if err := limiter.ClearFailedLogins(r.Context(), login); err != nil {
			log.Warn().Err(err).Msg("clear failed logins")
		}

		token, expiresAt, err := tokens.Issue(auth.Principal{
			ID:       admin.ID,
			Username: admin.Username,
			Email:    admin.Email,
			Role:     admin.Role,
		})
		if err != nil {
			log.Error().Err(err).Msg("issue token failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		log.Info().Stringer("admin_id", admin.ID).Msg("admin logged in")
		respondJSON(w, http.StatusOK, tokenResponse{
			Token:     token,
			TokenType: "Bearer",
			ExpiresAt: expiresAt,
			Admin: adminResponse{
				ID:       admin.ID,
				Username: admin.Username,
				Email:    admin.Email,
				Role:     admin.Role,
			},
		})
	}
}
