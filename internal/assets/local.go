package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStore writes assets below a base directory that is served publicly
// under publicBaseURL (default "/uploads", served by the API router).
type LocalStore struct {
	basePath      string
	publicBaseURL string
	folder        string
	logger        zerolog.Logger
}

// NewLocalStore creates a LocalStore, creating basePath if it does not exist.
func NewLocalStore(basePath, publicBaseURL, folder string, logger zerolog.Logger) (*LocalStore, error) {
	if basePath == "" {
		return nil, errors.New("assets: local path is required")
	}
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("assets: create base directory: %w", err)
	}
	if publicBaseURL == "" {
		publicBaseURL = "/uploads"
	}
	return &LocalStore{
		basePath:      basePath,
		publicBaseURL: publicBaseURL,
		folder:        cleanFolder(folder, "newsletters"),
		logger:        logger,
	}, nil
}

// BasePath returns the directory assets are written under.
func (s *LocalStore) BasePath() string { return s.basePath }

// Upload writes data to <base>/<folder>/<uuid>.<ext> with an atomic rename.
func (s *LocalStore) Upload(_ context.Context, data []byte, folder string) (url string, err error) {
	defer func() { observe("upload", err) }()

	format, err := DetectFormat(data)
	if err != nil {
		return "", err
	}

	folder = cleanFolder(folder, s.folder)
	dir := filepath.Join(s.basePath, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("assets: create folder: %w", err)
	}

	name := uuid.NewString() + "." + format.Ext
	if err := writeAtomic(dir, name, data); err != nil {
		return "", err
	}

	s.logger.Debug().
		Str("folder", folder).
		Str("file", name).
		Int("size", len(data)).
		Msg("asset stored")
	return joinURL(s.publicBaseURL, folder, name), nil
}

// Delete removes every file named <derivedID>.* in the default folder. When
// nothing matches there, the other folders under the base path are searched,
// so assets uploaded with a different folder hint are found too. Deleting a
// missing asset is not an error.
func (s *LocalStore) Delete(_ context.Context, derivedID string) (err error) {
	defer func() { observe("delete", err) }()

	if err := validateID(derivedID); err != nil {
		return err
	}
	dir := filepath.Join(s.basePath, filepath.FromSlash(s.folder))
	matches, err := filepath.Glob(filepath.Join(dir, derivedID+".*"))
	if err != nil {
		return fmt.Errorf("assets: glob: %w", err)
	}
	if len(matches) == 0 {
		matches, err = s.findAsset(derivedID)
		if err != nil {
			return err
		}
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("assets: remove file: %w", err)
		}
	}
	return nil
}

func (s *LocalStore) findAsset(id string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(s.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() && isAssetFile(d.Name(), id) {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assets: search %s: %w", id, err)
	}
	return matches, nil
}

func writeAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("assets: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("assets: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("assets: close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("assets: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("assets: rename temp file: %w", err)
	}
	return nil
}
