package newsletter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sungwon/newsletter/internal/assets"
	"github.com/sungwon/newsletter/internal/broadcast"
	"github.com/sungwon/newsletter/internal/logger"
	"github.com/sungwon/newsletter/internal/metrics"
	"github.com/sungwon/newsletter/internal/storage"
)

// cleanupTimeout bounds the compensating asset delete after a failed insert.
const cleanupTimeout = 10 * time.Second

// Options configures a Service.
type Options struct {
	// AssetFolder is the folder hint passed to the asset store.
	AssetFolder string
}

// Service runs the publish, list and delete flows.
type Service struct {
	repo        Repository
	directory   Directory
	assets      AssetStore
	broadcaster Broadcaster
	renderer    *Renderer
	opts        Options
	log         zerolog.Logger
}

// NewService wires the collaborators of the publish pipeline.
func NewService(
	repo Repository,
	directory Directory,
	assetStore AssetStore,
	broadcaster Broadcaster,
	renderer *Renderer,
	opts Options,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		directory:   directory,
		assets:      assetStore,
		broadcaster: broadcaster,
		renderer:    renderer,
		opts:        opts,
		log:         log,
	}
}

// Publish uploads the optional image, persists the newsletter, and
// broadcasts it to every current recipient.
//
// Upload and persistence failures abort before anything is sent. A directory
// failure returns the persisted record and an empty summary together with
// ErrDirectoryUnavailable. Failed deliveries are reported in the summary and
// never turn into an error.
func (s *Service) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	log := logger.FromContextOr(ctx, s.log)

	var imageURL string
	if req.Image != nil && len(req.Image.Data) > 0 {
		url, err := s.assets.Upload(ctx, req.Image.Data, s.opts.AssetFolder)
		if err != nil {
			metrics.NewslettersPublishedTotal.WithLabelValues("upload_failed").Inc()
			log.Error().Err(err).
				Str("filename", req.Image.Filename).
				Int("size", len(req.Image.Data)).
				Msg("asset upload failed")
			return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
		}
		imageURL = url
	}

	n, err := s.repo.Create(ctx, storage.CreateNewsletterParams{
		Subject:     req.Subject,
		Description: req.Description,
		ImageURL:    imageURL,
	})
	if err != nil {
		metrics.NewslettersPublishedTotal.WithLabelValues("persist_failed").Inc()
		log.Error().Err(err).Str("image_url", imageURL).Msg("newsletter insert failed")
		if imageURL != "" {
			s.discardAsset(ctx, log, imageURL)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	result := &PublishResult{
		Newsletter: recordFrom(n),
		Summary:    broadcast.Summarize(nil),
	}
	log = log.With().Stringer("newsletter_id", n.ID).Logger()

	recipients, err := s.directory.ListAddresses(ctx)
	if err != nil {
		metrics.NewslettersPublishedTotal.WithLabelValues("directory_unavailable").Inc()
		log.Error().Err(err).Msg("recipient lookup failed, newsletter saved without broadcast")
		return result, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	body, err := s.renderer.Render(n.Subject, n.Description, n.ImageURL)
	if err != nil {
		log.Error().Err(err).Msg("render failed, newsletter saved without broadcast")
		return result, err
	}

	outcomes := s.broadcaster.Broadcast(logger.WithBoundLogger(ctx, log), recipients, n.Subject, body)
	result.Summary = broadcast.Summarize(outcomes)

	metrics.NewslettersPublishedTotal.WithLabelValues("published").Inc()
	log.Info().
		Int("recipients", result.Summary.RecipientCount).
		Int("failed", result.Summary.FailureCount).
		Msg("newsletter published")
	return result, nil
}

// discardAsset removes an uploaded image whose record was never written.
// Failure leaves an orphan and is only logged.
func (s *Service) discardAsset(ctx context.Context, log zerolog.Logger, imageURL string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	id := assets.DeriveID(imageURL)
	if err := s.assets.Delete(ctx, id); err != nil {
		log.Warn().Err(err).
			Str("derived_id", id).
			Str("image_url", imageURL).
			Msg("orphaned asset could not be removed")
	}
}

// List returns one page of newsletters, newest first.
func (s *Service) List(ctx context.Context, req PageRequest) (*PageResult, error) {
	page, limit := req.Page, req.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	items, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list newsletters: %w", err)
	}

	records := make([]Record, len(items))
	for i, n := range items {
		records[i] = recordFrom(n)
	}
	return &PageResult{
		Newsletters: records,
		Total:       total,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		CurrentPage: page,
		Limit:       limit,
	}, nil
}

// Get returns a single newsletter.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get newsletter: %w", err)
	}
	r := recordFrom(n)
	return &r, nil
}

// Delete removes a newsletter and, best effort, its image. An image that
// cannot be removed is reported in DeleteResult.Warnings and does not stop
// the record from being deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	log := logger.FromContextOr(ctx, s.log).With().Stringer("newsletter_id", id).Logger()

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get newsletter: %w", err)
	}

	result := &DeleteResult{Warnings: []string{}}
	if n.ImageURL != "" {
		derived := assets.DeriveID(n.ImageURL)
		if derived == "" {
			result.Warnings = append(result.Warnings, "image url has no asset id: "+n.ImageURL)
			log.Warn().Str("image_url", n.ImageURL).Msg("cannot derive asset id")
		} else if err := s.assets.Delete(ctx, derived); err != nil {
			result.Warnings = append(result.Warnings, "image cleanup failed: "+err.Error())
			log.Warn().Err(err).Str("derived_id", derived).Msg("asset delete failed")
		}
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("delete newsletter: %w", err)
	}

	log.Info().Int("warnings", len(result.Warnings)).Msg("newsletter deleted")
	return result, nil
}
