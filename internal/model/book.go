package model

import (
	"time"
)

type Book struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Genre       string    `db:"genre" json:"genre"`
	AuthorID    string    `db:"author_id" json:"author"` // Owning user, never changes
	CoverImage  string    `db:"cover_image" json:"coverImage"`
	File        string    `db:"file" json:"file"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// BookPatch carries the optional text fields of a book update.
// Nil means "keep the stored value".
type BookPatch struct {
	Title       *string
	Description *string
	Genre       *string
}
