package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/bookshelf/internal/model"
)

var (
	ErrBookNotFound = errors.New("book not found")
)

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	ByID(ctx context.Context, id string) (*model.Book, error)
	Books(ctx context.Context) ([]*model.Book, error)
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id string) error
}

type bookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	query := `INSERT INTO books (id, title, description, genre, author_id, cover_image, file, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		book.ID,
		book.Title,
		book.Description,
		book.Genre,
		book.AuthorID,
		book.CoverImage,
		book.File,
		book.CreatedAt,
		book.UpdatedAt,
	)

	return err
}

func (r *bookRepository) ByID(ctx context.Context, id string) (*model.Book, error) {
	book := &model.Book{}
	query := `SELECT * FROM books WHERE id = $1`

	err := r.db.GetContext(ctx, book, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	return book, nil
}

// Books returns every book. No ORDER BY: callers must not rely on ordering.
func (r *bookRepository) Books(ctx context.Context) ([]*model.Book, error) {
	books := []*model.Book{}
	query := `SELECT * FROM books`

	err := r.db.SelectContext(ctx, &books, query)
	if err != nil {
		return nil, err
	}

	return books, nil
}

// Update writes the mutable columns. author_id is never touched.
func (r *bookRepository) Update(ctx context.Context, book *model.Book) error {
	query := `UPDATE books
	          SET title = $1, description = $2, genre = $3, cover_image = $4, file = $5, updated_at = $6
	          WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		book.Title,
		book.Description,
		book.Genre,
		book.CoverImage,
		book.File,
		book.UpdatedAt,
		book.ID,
	)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrBookNotFound)
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM books WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return expectOneRow(result, ErrBookNotFound)
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return notFound
	}

	return nil
}
