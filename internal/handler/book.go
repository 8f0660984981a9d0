package handler

import (
	"net/http"

	"github.com/templui/bookshelf/internal/apperror"
	"github.com/templui/bookshelf/internal/ctxkeys"
	"github.com/templui/bookshelf/internal/model"
	"github.com/templui/bookshelf/internal/service"
)

type createdResponse struct {
	ID string `json:"id"`
}

type bookResponse struct {
	Book *model.Book `json:"book"`
}

type booksResponse struct {
	Book []*model.Book `json:"book"`
}

type BookHandler struct {
	bookService *service.BookService
	intake      *intake
}

func NewBookHandler(bookService *service.BookService, uploadDir string, maxUploadBytes int64) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		intake:      newIntake(uploadDir, maxUploadBytes),
	}
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxkeys.UserID(r.Context())
	if !ok {
		writeError(w, r, apperror.Auth("Authorization token is required", nil))
		return
	}

	form, uploads, err := h.intake.parse(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.bookService.Create(r.Context(), userID, service.CreateBookInput{
		Title:       deref(form.Title),
		Genre:       deref(form.Genre),
		Description: deref(form.Description),
		Uploads:     uploads,
	})
	if err != nil {
		h.discardRejected(err, uploads)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{ID: book.ID})
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxkeys.UserID(r.Context())
	if !ok {
		writeError(w, r, apperror.Auth("Authorization token is required", nil))
		return
	}

	form, uploads, err := h.intake.parse(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.bookService.Update(r.Context(), r.PathValue("bookId"), userID, service.UpdateBookInput{
		Patch: model.BookPatch{
			Title:       form.Title,
			Description: form.Description,
			Genre:       form.Genre,
		},
		Uploads: uploads,
	})
	if err != nil {
		h.discardRejected(err, uploads)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookService.Books(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, booksResponse{Book: books})
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.bookService.ByID(r.Context(), r.PathValue("bookId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookResponse{Book: book})
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxkeys.UserID(r.Context())
	if !ok {
		writeError(w, r, apperror.Auth("Authorization token is required", nil))
		return
	}

	err := h.bookService.Delete(r.Context(), r.PathValue("bookId"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// discardRejected drops staged files of requests refused before any upload.
// After an upload or persistence failure the stages stay for inspection.
func (h *BookHandler) discardRejected(err error, uploads model.BookUploads) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindForbidden, apperror.KindNotFound:
		h.intake.discard(uploads)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
