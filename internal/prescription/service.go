package prescription

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// sniffLen is how much of the upload http.DetectContentType looks at.
const sniffLen = 512

type Service struct {
	repo     Repository
	storage  Storage
	maxBytes int64
	now      func() time.Time
}

func NewService(repo Repository, storage Storage, maxBytes int64) *Service {
	return &Service{
		repo:     repo,
		storage:  storage,
		maxBytes: maxBytes,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Upload is one file as received from the client.
type Upload struct {
	UserID   string
	Filename string
	Size     int64
	Body     io.Reader
}

// Upload validates the file by size and sniffed content type, stores it under
// a random name and records its metadata. The stored file is removed again if
// the metadata cannot be written.
func (s *Service) Upload(ctx context.Context, up Upload) (Prescription, error) {
	if up.Body == nil {
		return Prescription{}, ErrMissingFile
	}
	if up.Size > s.maxBytes {
		return Prescription{}, ErrTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Prescription{}, err
	}
	if n == 0 {
		return Prescription{}, ErrMissingFile
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := extensions[contentType]
	if !ok {
		return Prescription{}, ErrUnsupportedType
	}

	stored := uuid.NewString() + ext
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), up.Body), s.maxBytes+1)
	size, err := s.storage.Save(stored, body)
	if err != nil {
		return Prescription{}, err
	}
	if size > s.maxBytes {
		s.discard(stored)
		return Prescription{}, ErrTooLarge
	}

	p := Prescription{
		OriginalName: up.Filename,
		StoredName:   stored,
		ContentType:  contentType,
		Size:         size,
		UploadedAt:   s.now(),
	}
	if up.UserID != "" {
		p.UserID = &up.UserID
	}
	if hasPreview(contentType) {
		if name, err := s.savePreview(stored, contentType); err != nil {
			slog.Warn("prescription preview skipped", "file", stored, "error", err)
		} else {
			p.PreviewName = &name
		}
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		s.discard(stored)
		if p.PreviewName != nil {
			s.discard(*p.PreviewName)
		}
		return Prescription{}, err
	}
	return created, nil
}

// savePreview renders a thumbnail of the stored image next to it.
func (s *Service) savePreview(stored, contentType string) (string, error) {
	head, err := s.storage.Open(stored)
	if err != nil {
		return "", err
	}
	err = checkPreviewBounds(head)
	head.Close()
	if err != nil {
		return "", err
	}

	f, err := s.storage.Open(stored)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf, err := renderPreview(contentType, f)
	if err != nil {
		return "", err
	}
	name := previewName(stored)
	if _, err := s.storage.Save(name, buf); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Service) List(ctx context.Context) ([]Prescription, error) {
	return s.repo.List(ctx)
}

func (s *Service) discard(name string) {
	if err := s.storage.Remove(name); err != nil {
		slog.Warn("failed to remove orphaned upload", "file", name, "error", err)
	}
}
