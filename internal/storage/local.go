package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalURLPrefix is the path under which the local driver's files are served
const LocalURLPrefix = "/uploads"

// LocalStorage keeps assets on the local filesystem. Development only.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	err := os.MkdirAll(root, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	slog.Info("initializing local storage", "root", root, "base_url", baseURL)
	return &LocalStorage{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root is the directory served under LocalURLPrefix
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Upload(ctx context.Context, in UploadInput) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	publicID := in.Folder + "/" + uuid.New().String()
	key := objectKey(publicID, in.Format)
	dst := filepath.Join(s.root, filepath.FromSlash(key))

	err := os.MkdirAll(filepath.Dir(dst), 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset file: %w", err)
	}

	_, err = io.Copy(f, in.Body)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("failed to write asset file: %w", err)
	}

	return &Asset{
		PublicID: publicID,
		URL:      s.baseURL + "/" + key,
	}, nil
}

func (s *LocalStorage) Destroy(ctx context.Context, publicID string, resourceType ResourceType) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	base := filepath.Join(s.root, filepath.FromSlash(publicID))
	matches, err := filepath.Glob(base + ".*")
	if err != nil {
		return fmt.Errorf("failed to look up asset: %w", err)
	}
	if _, statErr := os.Stat(base); statErr == nil {
		matches = append(matches, base)
	}

	if len(matches) == 0 {
		return fmt.Errorf("%w: %s (%s)", ErrAssetNotFound, publicID, resourceType)
	}

	for _, m := range matches {
		err = os.Remove(m)
		if err != nil {
			return fmt.Errorf("failed to delete asset: %w", err)
		}
	}

	return nil
}
