package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/bookshelf/internal/apperror"
	"github.com/templui/bookshelf/internal/model"
	"github.com/templui/bookshelf/internal/repository"
	"github.com/templui/bookshelf/internal/validation"
	"golang.org/x/sync/errgroup"
)

const (
	maxTitleLength = 200
	maxGenreLength = 100
)

type CreateBookInput struct {
	Title       string
	Genre       string
	Description string
	Uploads     model.BookUploads
}

type UpdateBookInput struct {
	Patch   model.BookPatch
	Uploads model.BookUploads
}

type BookService struct {
	repo   repository.BookRepository
	assets *AssetService
	now    func() time.Time
}

func NewBookService(repo repository.BookRepository, assets *AssetService) *BookService {
	return &BookService{
		repo:   repo,
		assets: assets,
		now:    time.Now,
	}
}

// Create uploads the cover and document, stores the book and releases the
// staged files. A non-nil book with a cleanup error means the book exists but
// staged files were left behind.
func (s *BookService) Create(ctx context.Context, ownerID string, in CreateBookInput) (*model.Book, error) {
	title := strings.TrimSpace(in.Title)
	genre := strings.TrimSpace(in.Genre)

	err := validation.ValidateBookText("title", title, maxTitleLength)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	err = validation.ValidateBookText("genre", genre, maxGenreLength)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if in.Uploads.CoverImage == nil || in.Uploads.Document == nil {
		return nil, apperror.Validation("coverImage and file are required")
	}

	coverURL, err := s.assets.Upload(ctx, in.Uploads.CoverImage, CoverTarget)
	if err != nil {
		return nil, err
	}

	fileURL, err := s.assets.Upload(ctx, in.Uploads.Document, DocumentTarget)
	if err != nil {
		slog.Warn("remote asset orphaned after failed upload", "url", coverURL)
		return nil, err
	}

	now := s.now().UTC()
	book := &model.Book{
		ID:          uuid.New().String(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Genre:       genre,
		AuthorID:    ownerID,
		CoverImage:  coverURL,
		File:        fileURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.Create(ctx, book)
	if err != nil {
		slog.Warn("remote assets orphaned after failed insert", "cover_image", coverURL, "file", fileURL)
		return nil, apperror.Persistence("Error while creating book", err)
	}

	err = s.assets.ReleaseStages(in.Uploads.CoverImage, in.Uploads.Document)
	if err != nil {
		return book, err
	}

	slog.Info("book created", "book_id", book.ID, "author_id", ownerID)
	return book, nil
}

// Update applies the patch and any replacement files. Only the author may update.
func (s *BookService) Update(ctx context.Context, bookID, requesterID string, in UpdateBookInput) (*model.Book, error) {
	book, err := s.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.AuthorID != requesterID {
		return nil, apperror.Forbidden("You can not update others book.")
	}

	if in.Patch.Title != nil {
		title := strings.TrimSpace(*in.Patch.Title)
		err = validation.ValidateBookText("title", title, maxTitleLength)
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		book.Title = title
	}
	if in.Patch.Genre != nil {
		genre := strings.TrimSpace(*in.Patch.Genre)
		err = validation.ValidateBookText("genre", genre, maxGenreLength)
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		book.Genre = genre
	}
	if in.Patch.Description != nil {
		book.Description = strings.TrimSpace(*in.Patch.Description)
	}

	var coverURL string
	if in.Uploads.CoverImage != nil {
		coverURL, err = s.assets.Upload(ctx, in.Uploads.CoverImage, CoverTarget)
		if err != nil {
			return nil, err
		}
	}
	if in.Uploads.Document != nil {
		fileURL, err := s.assets.Upload(ctx, in.Uploads.Document, UpdatedDocumentTarget)
		if err != nil {
			if coverURL != "" {
				slog.Warn("remote asset orphaned after failed upload", "url", coverURL)
			}
			return nil, err
		}
		book.File = fileURL
	}
	if coverURL != "" {
		book.CoverImage = coverURL
	}

	book.UpdatedAt = s.now().UTC()

	err = s.repo.Update(ctx, book)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, apperror.NotFound("Book not found")
		}
		return nil, apperror.Persistence("Error while updating book", err)
	}

	err = s.assets.ReleaseStages(in.Uploads.Staged()...)
	if err != nil {
		return book, err
	}

	slog.Info("book updated", "book_id", book.ID)
	return book, nil
}

// Books returns all books in storage order
func (s *BookService) Books(ctx context.Context) ([]*model.Book, error) {
	books, err := s.repo.Books(ctx)
	if err != nil {
		return nil, apperror.Persistence("Error while getting books", err)
	}
	return books, nil
}

func (s *BookService) ByID(ctx context.Context, bookID string) (*model.Book, error) {
	book, err := s.repo.ByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, apperror.NotFound("Book not found")
		}
		return nil, apperror.Persistence("Error while getting book", err)
	}
	return book, nil
}

// Delete removes both remote assets and then the record. Remote delete
// failures are logged and do not stop the record from being deleted.
func (s *BookService) Delete(ctx context.Context, bookID, requesterID string) error {
	book, err := s.ByID(ctx, bookID)
	if err != nil {
		return err
	}

	if book.AuthorID != requesterID {
		return apperror.Forbidden("You can not delete others book.")
	}

	s.deleteAssets(ctx, book)

	err = s.repo.Delete(ctx, book.ID)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return apperror.NotFound("Book not found")
		}
		return apperror.Persistence("Error while deleting book", err)
	}

	slog.Info("book deleted", "book_id", book.ID)
	return nil
}

// deleteAssets removes the cover and the document concurrently. Both deletes
// are always attempted; failures are only logged.
func (s *BookService) deleteAssets(ctx context.Context, book *model.Book) {
	var g errgroup.Group

	g.Go(func() error {
		err := s.assets.Delete(ctx, book.CoverImage, AssetImage)
		if err != nil {
			slog.Error("failed to delete cover image from storage", "error", err, "book_id", book.ID, "url", book.CoverImage)
		}
		return nil
	})
	g.Go(func() error {
		err := s.assets.Delete(ctx, book.File, AssetDocument)
		if err != nil {
			slog.Error("failed to delete book file from storage", "error", err, "book_id", book.ID, "url", book.File)
		}
		return nil
	})

	_ = g.Wait()
}
