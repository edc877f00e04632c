package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/document"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/sibarkumen/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// ObjectStorage stores scan files. *storage.S3ObjectStorage implements it.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}

// ErrStorageUnavailable is returned when no object storage is configured.
var ErrStorageUnavailable = shared.NewDomainError("STORAGE_UNAVAILABLE", "Attachment storage is not configured")

// scanTypes are the accepted content types and their file extensions.
var scanTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// Upload is a scan file received from a client
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachmentService keeps the signed scan of a BAST in
type AttachmentService struct {
	handovers document.HandoverRepository
	storage   ObjectStorage
	maxSize   int64
	logger    *zap.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(handovers document.HandoverRepository, store ObjectStorage, maxSize int64, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{handovers: handovers, storage: store, maxSize: maxSize, logger: logger}
}

// Attach stores the scan and replaces any previous one
func (s *AttachmentService) Attach(ctx context.Context, id uuid.UUID, up Upload) (*AttachmentResponse, error) {
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(up.ContentType, ";")[0]))
	ext, ok := scanTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "Scan must be a PDF, JPEG or PNG file")
	}
	if up.Size <= 0 {
		return nil, shared.NewDomainError("INVALID_FILE", "Scan file is empty")
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", fmt.Sprintf("Scan must not exceed %d bytes", s.maxSize))
	}

	h, err := s.incoming(ctx, id)
	if err != nil {
		return nil, err
	}
	key := path.Join("bast-in", h.ID.String(), uuid.NewString()+ext)
	if err := s.storage.Put(ctx, key, up.Body, up.Size, contentType); err != nil {
		return nil, s.storageError(err)
	}
	if err := s.handovers.UpdateAttachment(ctx, h.ID, key); err != nil {
		// Best effort: the object is unreachable without the key.
		if derr := s.storage.Delete(ctx, key); derr != nil {
			s.logger.Warn("Failed to remove orphaned scan", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}
	if h.AttachmentKey != "" {
		if err := s.storage.Delete(ctx, h.AttachmentKey); err != nil {
			s.logger.Warn("Failed to remove replaced scan", zap.String("key", h.AttachmentKey), zap.Error(err))
		}
	}
	s.logger.Info("BAST scan attached",
		zap.String("id", h.ID.String()),
		zap.String("key", key),
		zap.String("filename", up.Filename),
		zap.Int64("size", up.Size))
	return s.link(ctx, key)
}

// Link returns a temporary download URL for the stored scan
func (s *AttachmentService) Link(ctx context.Context, id uuid.UUID) (*AttachmentResponse, error) {
	h, err := s.incoming(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.AttachmentKey == "" {
		return nil, shared.NewDomainError("NOT_FOUND", "No scan has been attached")
	}
	return s.link(ctx, h.AttachmentKey)
}

func (s *AttachmentService) link(ctx context.Context, key string) (*AttachmentResponse, error) {
	url, expires, err := s.storage.PresignGet(ctx, key)
	if err != nil {
		return nil, s.storageError(err)
	}
	return &AttachmentResponse{URL: url, ExpiresAt: expires}, nil
}

func (s *AttachmentService) incoming(ctx context.Context, id uuid.UUID) (*document.Handover, error) {
	h, err := s.handovers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Direction != document.DirectionIn {
		return nil, shared.ErrNotFound
	}
	return h, nil
}

func (s *AttachmentService) storageError(err error) error {
	if errors.Is(err, storage.ErrDisabled) {
		return ErrStorageUnavailable
	}
	return err
}
