package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/templui/bookshelf/internal/apperror"
	"github.com/templui/bookshelf/internal/model"
	"github.com/templui/bookshelf/internal/storage"
)

type AssetKind string

const (
	AssetImage    AssetKind = "image"
	AssetDocument AssetKind = "document"
)

// AssetTarget says how and where a staged file is stored remotely
type AssetTarget struct {
	Kind   AssetKind
	Folder string
}

var (
	CoverTarget    = AssetTarget{Kind: AssetImage, Folder: "book-covers"}
	DocumentTarget = AssetTarget{Kind: AssetDocument, Folder: "book-files"}
	// Documents replaced through an update land in a separate folder
	UpdatedDocumentTarget = AssetTarget{Kind: AssetDocument, Folder: "book-pdfs"}
)

const documentFormat = "pdf"

// AssetService moves staged uploads to remote storage and cleans up after them
type AssetService struct {
	storage storage.Storage
}

func NewAssetService(storage storage.Storage) *AssetService {
	return &AssetService{storage: storage}
}

// Upload pushes a staged file to remote storage and returns its URL.
// The staged file is left in place; call ReleaseStage once the URL is persisted.
func (s *AssetService) Upload(ctx context.Context, stage *model.StagedUpload, target AssetTarget) (string, error) {
	f, err := os.Open(stage.Path)
	if err != nil {
		return "", apperror.Upload("Error while uploading", fmt.Errorf("open staged file: %w", err))
	}
	defer func() { _ = f.Close() }()

	in := storage.UploadInput{
		Folder:      target.Folder,
		Filename:    stage.OriginalName,
		ContentType: stage.MimeType,
		Body:        f,
		Size:        stage.Size,
	}

	switch target.Kind {
	case AssetDocument:
		in.ResourceType = storage.ResourceRaw
		in.Format = documentFormat
	default:
		in.ResourceType = storage.ResourceImage
		in.Format = imageFormat(stage)
	}

	asset, err := s.storage.Upload(ctx, in)
	if err != nil {
		return "", apperror.Upload("Error while uploading", err)
	}

	return asset.URL, nil
}

// Delete removes the remote asset behind url
func (s *AssetService) Delete(ctx context.Context, url string, kind AssetKind) error {
	publicID, err := storage.PublicID(url)
	if err != nil {
		return apperror.Upload("Error while deleting asset", err)
	}

	resourceType := storage.ResourceImage
	if kind == AssetDocument {
		resourceType = storage.ResourceRaw
	}

	err = s.storage.Destroy(ctx, publicID, resourceType)
	if err != nil {
		return apperror.Upload("Error while deleting asset", err)
	}

	return nil
}

// ReleaseStage deletes the local staging copy of an upload
func (s *AssetService) ReleaseStage(stage *model.StagedUpload) error {
	err := os.Remove(stage.Path)
	if err != nil {
		return apperror.Cleanup("Error while removing staged file", err)
	}
	return nil
}

// ReleaseStages releases every stage, even after a failure, and reports all failures
func (s *AssetService) ReleaseStages(stages ...*model.StagedUpload) error {
	var errs []error
	for _, stage := range stages {
		err := s.ReleaseStage(stage)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return apperror.Cleanup("Error while removing staged files", errors.Join(errs...))
	}
	return nil
}

// imageFormat is the MIME subtype ("image/png" -> "png"), falling back to the
// original file extension when no usable MIME type was declared
func imageFormat(stage *model.StagedUpload) string {
	mimeType, _, _ := strings.Cut(stage.MimeType, ";")
	if idx := strings.LastIndex(mimeType, "/"); idx != -1 && idx < len(mimeType)-1 {
		return strings.TrimSpace(mimeType[idx+1:])
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(stage.OriginalName)), ".")
}
