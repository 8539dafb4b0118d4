// Package assets stores uploaded newsletter images and hands back a public URL.
package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sungwon/newsletter/internal/metrics"
)

var (
	// ErrUnsupportedFormat is returned when uploaded bytes are not a known image format.
	ErrUnsupportedFormat = errors.New("assets: unsupported image format")
	// ErrEmptyAsset is returned when Upload is called with no data.
	ErrEmptyAsset = errors.New("assets: empty asset")
	// ErrInvalidID is returned when a derived id could address more than one asset.
	ErrInvalidID = errors.New("assets: invalid asset id")
)

// Store converts image bytes into a durable, publicly fetchable URL and
// removes assets by the id derived from that URL.
type Store interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
	Delete(ctx context.Context, derivedID string) error
}

// Config holds configuration for creating a Store.
type Config struct {
	Type          string // "local" or "s3"
	Folder        string // default folder for uploads and deletes
	LocalPath     string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3Prefix      string
}

// New creates a Store based on the provided configuration.
// An empty or unsupported Type falls back to local storage with a warning.
func New(cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStore(cfg.LocalPath, cfg.PublicBaseURL, cfg.Folder, logger)
	case "s3":
		return NewS3StoreFromConfig(cfg, logger)
	default:
		logger.Warn().
			Str("type", cfg.Type).
			Msg("unsupported or empty asset store type, defaulting to local")
		return NewLocalStore(cfg.LocalPath, cfg.PublicBaseURL, cfg.Folder, logger)
	}
}

// DeriveID recovers the asset id from a URL produced by Upload: the last path
// segment up to its first dot. ".../newsletters/abcd123.jpg" yields
// "abcd123". It returns "" when no id can be derived, including URLs that
// end in a slash.
func DeriveID(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base
}

// isAssetFile reports whether name is a stored file for id.
func isAssetFile(name, id string) bool {
	return strings.HasPrefix(name, id+".")
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\*?[]`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// cleanFolder normalizes a folder hint, falling back to def. Folders never
// escape the store root.
func cleanFolder(folder, def string) string {
	if folder == "" {
		folder = def
	}
	folder = strings.Trim(path.Clean("/"+folder), "/")
	return folder
}

func joinURL(base string, parts ...string) string {
	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}

func observe(op string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.AssetOperationsTotal.WithLabelValues(op, result).Inc()
}
