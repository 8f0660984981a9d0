package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// DefaultMaxUploadSize is the per-field upload limit
const DefaultMaxUploadSize = 30_000_000

// FileConstraints defines validation rules for file uploads.
// Nil allow-lists accept any type.
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

var (
	// CoverImageConstraints defines validation rules for book cover uploads
	CoverImageConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
		},
		AllowedExtensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
			".gif":  true,
		},
		MaxSize: DefaultMaxUploadSize,
	}

	// DocumentConstraints only limits size: book documents are stored as raw bytes
	DocumentConstraints = FileConstraints{
		MaxSize: DefaultMaxUploadSize,
	}
)

// WithMaxSize returns a copy of c with a different size limit
func (c FileConstraints) WithMaxSize(max int64) FileConstraints {
	c.MaxSize = max
	return c
}

// ValidateFile validates a file upload against one or more constraint sets
// If multiple constraints are provided, file must match at least one (OR logic)
func ValidateFile(header *multipart.FileHeader, constraints ...FileConstraints) error {
	if len(constraints) == 0 {
		return fmt.Errorf("no file constraints provided")
	}

	var lastErr error
	for _, constraint := range constraints {
		err := validateAgainstConstraint(header, constraint)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	return lastErr
}

// validateAgainstConstraint validates a file against a single constraint set
func validateAgainstConstraint(header *multipart.FileHeader, constraints FileConstraints) error {
	// Check file size first (before reading content)
	if constraints.MaxSize > 0 && header.Size > constraints.MaxSize {
		return fmt.Errorf("file too large: maximum size is %d bytes", constraints.MaxSize)
	}

	if constraints.AllowedMimeTypes == nil && constraints.AllowedExtensions == nil {
		return nil
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Detected from content (magic numbers), not from the client's Content-Type
	detectedType := http.DetectContentType(buffer[:n])

	if constraints.AllowedMimeTypes != nil && !constraints.AllowedMimeTypes[detectedType] {
		return fmt.Errorf("invalid file type (detected: %s)", detectedType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if constraints.AllowedExtensions != nil && !constraints.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}

	return nil
}
