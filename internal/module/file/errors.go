package file

import (
	"errors"

	apperrors "github.com/datalake/server/internal/shared/errors"
)

// Module errors.
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrEmptyFile       = errors.New("file is empty")

	// ErrFileTooLarge renders as 413 PAYLOAD_TOO_LARGE without a mapping.
	ErrFileTooLarge = apperrors.TooLarge("file exceeds the maximum upload size")
)
