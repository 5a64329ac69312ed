package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/datalake/server/internal/shared/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMimeType = "application/octet-stream"

// Service manages uploads.
type Service struct {
	repo    Repository
	store   storage.Storage
	maxSize int64
	logger  *zap.Logger
}

// NewService creates a new file service. maxSize <= 0 disables the limit.
func NewService(repo Repository, store storage.Storage, maxSize int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		store:   store,
		maxSize: maxSize,
		logger:  logger,
	}
}

// Upload stores the blob under user/{uid}/{type}/ and records its metadata.
func (s *Service) Upload(ctx context.Context, userID uint, in *UploadInput, body io.Reader) (*File, error) {
	if in.Size == 0 {
		return nil, ErrEmptyFile
	}
	if s.maxSize > 0 && in.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = defaultMimeType
	}
	fileType := DetectType(in.Filename, contentType)
	ext := filepath.Ext(in.Filename)
	storedName := uuid.NewString() + ext
	key := StorageKey(userID, fileType, storedName)

	if err := s.store.Put(ctx, key, body, in.Size, contentType); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	f := &File{
		Filename:         storedName,
		OriginalFilename: in.Filename,
		FileType:         fileType,
		FileExtension:    strings.ToLower(ext),
		FileSize:         in.Size,
		FilePath:         key,
		MimeType:         contentType,
		UserID:           userID,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned blob", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		zap.Uint("file_id", f.ID),
		zap.Uint("user_id", userID),
		zap.String("type", string(fileType)),
		zap.Int64("size", in.Size),
	)
	return f, nil
}

// List returns the user's files, newest first.
func (s *Service) List(ctx context.Context, userID uint, fileType string) ([]*File, error) {
	if fileType == "" {
		return s.repo.ListForUser(ctx, userID, nil)
	}
	t := Type(fileType)
	if !t.IsValid() {
		return nil, ErrInvalidFileType
	}
	return s.repo.ListForUser(ctx, userID, &t)
}

// Get returns a file owned by the user.
func (s *Service) Get(ctx context.Context, id, userID uint) (*File, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

// Open returns the file metadata and a reader over its blob.
func (s *Service) Open(ctx context.Context, id, userID uint) (*File, io.ReadCloser, int64, error) {
	f, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, nil, 0, err
	}
	rc, size, err := s.store.Get(ctx, f.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, 0, ErrFileNotFound
		}
		return nil, nil, 0, err
	}
	return f, rc, size, nil
}

// Delete removes the blob and its metadata.
func (s *Service) Delete(ctx context.Context, id, userID uint) error {
	f, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, f.FilePath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return s.repo.Delete(ctx, f.ID)
}
