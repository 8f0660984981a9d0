package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/templui/bookshelf/internal/config"
)

// ResourceType tells the store how to treat an object.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	// ResourceRaw is for opaque bytes such as book documents.
	ResourceRaw ResourceType = "raw"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrInvalidURL    = errors.New("asset url has no public id")
)

// UploadInput describes one object to store
type UploadInput struct {
	Folder       string
	Format       string // extension without dot, e.g. "png" or "pdf"
	Filename     string // original filename, kept as metadata
	ContentType  string
	ResourceType ResourceType
	Body         io.Reader
	Size         int64
}

// Asset is a stored object. PublicID is "<folder>/<name>" without extension.
type Asset struct {
	PublicID string
	URL      string
}

// Storage defines the interface for remote asset operations
type Storage interface {
	// Upload stores the object and returns its durable URL
	Upload(ctx context.Context, in UploadInput) (*Asset, error)

	// Destroy removes the object identified by publicID
	Destroy(ctx context.Context, publicID string, resourceType ResourceType) error
}

// New builds the storage selected by STORAGE_DRIVER
func New(c *config.Config) (Storage, error) {
	switch c.StorageDriver {
	case config.StorageDriverLocal:
		return NewLocalStorage(c.LocalStorageDir, strings.TrimSuffix(c.AppURL, "/")+LocalURLPrefix)
	case config.StorageDriverS3:
		return NewFromConfig(c)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// PublicID derives the object identifier from an asset URL: the last two
// path segments with the extension of the final one removed.
func PublicID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse asset url: %w", err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[len(segments)-1] == "" || segments[len(segments)-2] == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	folder := segments[len(segments)-2]
	name := segments[len(segments)-1]
	if folder == ".." || name == ".." || folder == "." || name == "." {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	return folder + "/" + name, nil
}

func objectKey(publicID, format string) string {
	if format == "" {
		return publicID
	}
	return publicID + "." + format
}
