package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/templui/bookshelf/internal/apperror"
	"github.com/templui/bookshelf/internal/model"
	"github.com/templui/bookshelf/internal/validation"
)

const (
	fieldCoverImage = "coverImage"
	fieldFile       = "file"

	// multipart parts above this are spooled to disk by the parser
	multipartMemory = 10 << 20
	// room for the text fields next to two files at the size limit
	multipartOverhead = 1 << 20
)

// intake parses multipart book forms and stages their files on local disk
type intake struct {
	uploadDir      string
	maxUploadBytes int64
}

// newIntake expects uploadDir to exist
func newIntake(uploadDir string, maxUploadBytes int64) *intake {
	if maxUploadBytes <= 0 {
		maxUploadBytes = validation.DefaultMaxUploadSize
	}
	return &intake{uploadDir: uploadDir, maxUploadBytes: maxUploadBytes}
}

// bookForm is the parsed text part of a create or update request.
// A nil field was not sent at all.
type bookForm struct {
	Title       *string
	Description *string
	Genre       *string
}

// parse reads the request form and stages the coverImage and file parts.
// On error nothing is left staged.
func (in *intake) parse(w http.ResponseWriter, r *http.Request) (bookForm, model.BookUploads, error) {
	var form bookForm
	var uploads model.BookUploads

	r.Body = http.MaxBytesReader(w, r.Body, 2*in.maxUploadBytes+multipartOverhead)

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return form, uploads, apperror.New(apperror.KindValidation, "request body too large", err)
		}
		return form, uploads, apperror.New(apperror.KindValidation, "invalid multipart form", err)
	}
	if r.MultipartForm != nil {
		defer func() {
			if removeErr := r.MultipartForm.RemoveAll(); removeErr != nil {
				slog.Warn("failed to remove multipart temp files", "error", removeErr)
			}
		}()
	}

	form.Title = formValue(r, "title")
	form.Description = formValue(r, "description")
	form.Genre = formValue(r, "genre")

	uploads.CoverImage, err = in.stage(r, fieldCoverImage, validation.CoverImageConstraints.WithMaxSize(in.maxUploadBytes))
	if err != nil {
		return form, uploads, err
	}

	uploads.Document, err = in.stage(r, fieldFile, validation.DocumentConstraints.WithMaxSize(in.maxUploadBytes))
	if err != nil {
		in.discard(uploads)
		return form, model.BookUploads{}, err
	}

	return form, uploads, nil
}

func formValue(r *http.Request, key string) *string {
	var values []string
	if r.MultipartForm != nil {
		values = r.MultipartForm.Value[key]
	}
	if len(values) == 0 {
		values = r.PostForm[key]
	}
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

// stage validates one file field and copies it into the upload dir.
// A missing field is not an error.
func (in *intake) stage(r *http.Request, field string, constraints validation.FileConstraints) (*model.StagedUpload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	header := r.MultipartForm.File[field][0]

	err := validation.ValidateFile(header, constraints)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("%s: %s", field, err.Error()))
	}

	src, err := header.Open()
	if err != nil {
		return nil, apperror.New(apperror.KindInternal, "failed to read upload", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.CreateTemp(in.uploadDir, field+"-*")
	if err != nil {
		return nil, apperror.New(apperror.KindInternal, "failed to stage upload", err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return nil, apperror.New(apperror.KindInternal, "failed to read upload", err)
	}

	size, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head[:n]), src))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, apperror.New(apperror.KindInternal, "failed to stage upload", err)
	}

	return &model.StagedUpload{
		Path:         dst.Name(),
		MimeType:     mimeType(header, head[:n]),
		OriginalName: header.Filename,
		Size:         size,
	}, nil
}

// mimeType prefers the declared type and sniffs the content when none was sent
func mimeType(header *multipart.FileHeader, head []byte) string {
	declared := strings.TrimSpace(header.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(head)
}

// discard removes staged files of a request that will not reach storage
func (in *intake) discard(uploads model.BookUploads) {
	for _, stage := range uploads.Staged() {
		err := os.Remove(stage.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove staged upload", "error", err, "path", stage.Path)
		}
	}
}
