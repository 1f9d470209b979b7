package prescription

import (
	"errors"
	"time"
)

// Prescription describes an uploaded file. The file itself lives in Storage
// under StoredName.
type Prescription struct {
	ID           int64     `json:"id"`
	UserID       *string   `json:"userId,omitempty"`
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"storedName"`
	PreviewName  *string   `json:"previewName,omitempty"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

var (
	ErrMissingFile     = errors.New("no file uploaded")
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("only JPEG, PNG and PDF files are accepted")
	ErrDuplicateName   = errors.New("stored file name already recorded")
)

// extensions maps accepted sniffed content types to the stored file suffix.
var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}
