package model

// StagedUpload is a file received from a client and held on local disk
// until it is pushed to remote storage. It belongs to a single request.
type StagedUpload struct {
	Path         string
	MimeType     string
	OriginalName string
	Size         int64
}

// BookUploads holds the files submitted with a book create or update request.
type BookUploads struct {
	CoverImage *StagedUpload
	Document   *StagedUpload
}

// Staged returns the non-nil uploads in submission order.
func (u BookUploads) Staged() []*StagedUpload {
	var staged []*StagedUpload
	if u.CoverImage != nil {
		staged = append(staged, u.CoverImage)
	}
	if u.Document != nil {
		staged = append(staged, u.Document)
	}
	return staged
}
