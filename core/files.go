package core

import (
	"bytes"

	"github.com/pkg/errors"
)

var (
	ErrMissingFile  = errors.New("Missing file")
	ErrEmptyFile    = errors.New("Empty file")
	ErrFileTooLarge = errors.New("File too large (10MB max)")
)

// Attachment is a file selected by the user, held in memory until it is
// shipped to the API as multipart form data.
type Attachment struct {
	Content     *bytes.Buffer
	ContentType string
	Filename    string
}

func (a *Attachment) Size() int64 {
	if a == nil || a.Content == nil {
		return 0
	}
	return int64(a.Content.Len())
}

// CheckUpload rejects bad attachments before any network call: the API would
// refuse them anyway, with the same messages.
func CheckUpload(a *Attachment, maxSize int64) error {
	if a == nil || a.Filename == "" {
		return NewValidationError(ErrMissingFile, FieldError{Field: "file", Error: ErrMissingFile.Error()})
	}
	if a.Size() == 0 {
		return NewValidationError(ErrEmptyFile, FieldError{Field: "file", Error: ErrEmptyFile.Error()})
	}
	if a.Size() > maxSize {
		return NewValidationError(ErrFileTooLarge, FieldError{Field: "file", Error: ErrFileTooLarge.Error()})
	}
	return nil
}
