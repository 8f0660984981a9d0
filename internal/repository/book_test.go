package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/bookshelf/internal/model"
)

func newTestBook(authorID, title string) *model.Book {
	now := time.Now().UTC()
	return &model.Book{
		ID:         uuid.New().String(),
		Title:      title,
		Genre:      "fiction",
		AuthorID:   authorID,
		CoverImage: "https://cdn.example.com/book-covers/" + title + ".png",
		File:       "https://cdn.example.com/book-files/" + title + ".pdf",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestBookRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	users := NewUserRepository(database)
	books := NewBookRepository(database)

	author := newTestUser("a@x.com")
	require.NoError(t, users.Create(ctx, author))

	book := newTestBook(author.ID, "dune")
	require.NoError(t, books.Create(ctx, book))

	got, err := books.ByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "dune", got.Title)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.Equal(t, book.CoverImage, got.CoverImage)
	assert.Empty(t, got.Description)

	got.Title = "Dune Messiah"
	got.Description = "sequel"
	got.AuthorID = "someone-else"
	got.UpdatedAt = time.Now().UTC()
	require.NoError(t, books.Update(ctx, got))

	updated, err := books.ByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, "sequel", updated.Description)
	assert.Equal(t, author.ID, updated.AuthorID, "author must not change on update")

	require.NoError(t, books.Delete(ctx, book.ID))

	_, err = books.ByID(ctx, book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestBookRepository_Books(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	books := NewBookRepository(database)

	all, err := books.Books(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	first := newTestBook("u1", "first")
	second := newTestBook("u2", "second")
	require.NoError(t, books.Create(ctx, first))
	require.NoError(t, books.Create(ctx, second))

	all, err = books.Books(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(all))
	for _, b := range all {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
}

func TestBookRepository_MissingRows(t *testing.T) {
	ctx := context.Background()
	books := NewBookRepository(setupTestDB(t))

	err := books.Update(ctx, newTestBook("u1", "ghost"))
	assert.ErrorIs(t, err, ErrBookNotFound)

	err = books.Delete(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrBookNotFound)
}
