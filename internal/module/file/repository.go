package file

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository defines the interface for file metadata access.
// Every lookup is scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, f *File) error
	GetForUser(ctx context.Context, id, userID uint) (*File, error)
	ListForUser(ctx context.Context, userID uint, fileType *Type) ([]*File, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new file repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f *File) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

func (r *repository) GetForUser(ctx context.Context, id, userID uint) (*File, error) {
	var f File
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &f, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uint, fileType *Type) ([]*File, error) {
	var files []*File
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if fileType != nil {
		query = query.Where("file_type = ?", *fileType)
	}
	if err := query.Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&File{}, id).Error; err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
