package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sungwon/newsletter/internal/assets"
	"github.com/sungwon/newsletter/internal/auth"
	"github.com/sungwon/newsletter/internal/logger"
	"github.com/sungwon/newsletter/internal/newsletter"
)

// DefaultMaxUploadSize bounds a multipart publish request when none is configured.
const DefaultMaxUploadSize = 10 << 20

// ListNewslettersHandler handles GET /api/v1/newsletters.
// Missing or non-numeric page and limit values fall back to the defaults.
func ListNewslettersHandler(svc NewsletterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		res, err := svc.List(r.Context(), newsletter.PageRequest{Page: page, Limit: limit})
		if err != nil {
			reqLog := logger.FromContext(r.Context())
			reqLog.Error().Err(err).Msg("list newsletters failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// GetNewsletterHandler handles GET /api/v1/newsletters/{id}.
func GetNewsletterHandler(svc NewsletterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid newsletter id")
			return
		}

		rec, err := svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, newsletter.ErrNotFound) {
				respondError(w, http.StatusNotFound, "newsletter not found")
				return
			}
			reqLog := logger.FromContext(r.Context())
			reqLog.Error().Err(err).Stringer("newsletter_id", id).Msg("get newsletter failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

// CreateNewsletterHandler handles POST /api/v1/newsletters.
// Accepts multipart form fields subject and description plus an optional
// image file, and publishes the newsletter to every recipient.
func CreateNewsletterHandler(svc NewsletterService, limiter *auth.RateLimiter, maxUploadSize int64) http.HandlerFunc {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if p, ok := auth.PrincipalFromContext(r.Context()); ok {
			if err := limiter.AllowPublish(r.Context(), p.ID.String()); err != nil {
				if errors.Is(err, auth.ErrRateLimited) {
					w.Header().Set("Retry-After", strconv.Itoa(int(limiter.PublishWindow().Seconds())))
					respondError(w, http.StatusTooManyRequests, "publish rate limit exceeded")
					return
				}
				log.Warn().Err(err).Msg("publish rate limit check failed")
			}
		}

		req, status, msg := parsePublishForm(w, r, maxUploadSize)
		if status != 0 {
			respondError(w, status, msg)
			return
		}

		if err := newsletter.ValidatePublishRequest(req); err != nil {
			var verr *newsletter.ValidationError
			if errors.As(err, &verr) {
				respondValidationErrors(w, verr.Details)
				return
			}
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := svc.Publish(r.Context(), req)
		if err != nil {
			status, msg := publishErrorStatus(err)
			body := map[string]interface{}{"error": msg}
			if res != nil {
				body["newsletter"] = res.Newsletter
			}
			respondJSON(w, status, body)
			return
		}

		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message":    "Newsletter created and sent successfully",
			"newsletter": res.Newsletter,
			"summary":    res.Summary,
		})
	}
}

// parsePublishForm reads the multipart body. A non-zero status reports a
// client error.
func parsePublishForm(w http.ResponseWriter, r *http.Request, maxUploadSize int64) (newsletter.PublishRequest, int, string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return newsletter.PublishRequest{}, http.StatusRequestEntityTooLarge, "upload too large"
		}
		return newsletter.PublishRequest{}, http.StatusBadRequest, "invalid multipart form"
	}

	req := newsletter.PublishRequest{
		Subject:     r.FormValue("subject"),
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, 0, ""
	}
	if err != nil {
		return req, http.StatusBadRequest, "invalid image upload"
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, http.StatusBadRequest, "invalid image upload"
	}
	req.Image = &newsletter.Asset{Data: data, Filename: header.Filename}
	return req, 0, ""
}

// publishErrorStatus maps publish errors to an HTTP status and client message.
func publishErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, newsletter.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, assets.ErrUnsupportedFormat), errors.Is(err, assets.ErrEmptyAsset):
		return http.StatusBadRequest, "unsupported image format"
	case errors.Is(err, newsletter.ErrUploadFailed):
		return http.StatusInternalServerError, "image upload failed"
	case errors.Is(err, newsletter.ErrPersistenceFailed):
		return http.StatusInternalServerError, "failed to save newsletter"
	case errors.Is(err, newsletter.ErrDirectoryUnavailable):
		return http.StatusInternalServerError, "newsletter saved but recipients could not be loaded"
	default:
		return http.StatusInternalServerError, "error creating newsletter"
	}
}

// DeleteNewsletterHandler handles DELETE /api/v1/newsletters/{id}.
func DeleteNewsletterHandler(svc NewsletterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid newsletter id")
			return
		}

		res, err := svc.Delete(r.Context(), id)
		if err != nil {
			if errors.Is(err, newsletter.ErrNotFound) {
				respondError(w, http.StatusNotFound, "newsletter not found")
				return
			}
			reqLog := logger.FromContext(r.Context())
			reqLog.Error().Err(err).Stringer("newsletter_id", id).Msg("delete newsletter failed")
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message":  "Newsletter deleted successfully",
			"warnings": res.Warnings,
		})
	}
}
