package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sungwon/newsletter/internal/logger"
	"github.com/sungwon/newsletter/internal/storage"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=320"`
}

type recipientResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toRecipientResponse(r storage.Recipient) recipientResponse {
	return recipientResponse{ID: r.ID, Email: r.Email, CreatedAt: r.CreatedAt}
}

// SubscribeHandler handles POST /api/v1/subscribe.
func SubscribeHandler(recipients RecipientStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		if err := validate.Struct(req); err != nil {
			respondValidationErrors(w, []string{"email must be a valid email address"})
			return
		}

		rec, err := recipients.Create(r.Context(), req.Email)
		if err != nil {
			if errors.Is(err, storage.ErrConflict) {
				respondError(w, http.StatusConflict, "email already subscribed")
				return
			}
			reqLog := logger.FromContext(r.Context())
			reqLog.Error().Err(err).Msg("create recipient failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		respondJSON(w, http.StatusCreated, toRecipientResponse(rec))
	}
}

// ListRecipientsHandler handles GET /api/v1/recipients.
func ListRecipientsHandler(recipients RecipientStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := recipients.List(r.Context())
		if err != nil {
			reqLog := logger.FromContext(r.Context())
			reqLog.Error().Err(err).Msg("list recipients failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		out := make([]recipientResponse, len(list))
		for i, rec := range list {
			out[i] = toRecipientResponse(rec)
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"recipients": out})
	}
}

// DeleteRecipientHandler handles DELETE /api/v1/recipients/{id}.
func DeleteRecipientHandler(recipients RecipientStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid recipient id")
			return
		}

		if err := recipients.Delete(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respondError(w, http.StatusNotFound, "recipient not found")
				return
			}
			reqLog := logger.FromContext(r.Context())
			reqLog.Error().Err(err).Stringer("recipient_id", id).Msg("delete recipient failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
