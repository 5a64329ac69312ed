// Package file stores user uploads and their metadata.
package file

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// Type is the coarse category of an uploaded file.
type Type string

const (
	TypeImage    Type = "image"
	TypeDocument Type = "document"
	TypeVideo    Type = "video"
	TypeAudio    Type = "audio"
	TypeArchive  Type = "archive"
	TypeOther    Type = "other"
)

// AllTypes lists every file type.
var AllTypes = []Type{TypeImage, TypeDocument, TypeVideo, TypeAudio, TypeArchive, TypeOther}

// IsValid checks if the type is known.
func (t Type) IsValid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

var extensionTypes = map[string]Type{
	".jpg": TypeImage, ".jpeg": TypeImage, ".png": TypeImage, ".gif": TypeImage,
	".bmp": TypeImage, ".webp": TypeImage, ".svg": TypeImage,

	".pdf": TypeDocument, ".doc": TypeDocument, ".docx": TypeDocument,
	".txt": TypeDocument, ".rtf": TypeDocument, ".odt": TypeDocument,

	".mp4": TypeVideo, ".avi": TypeVideo, ".mov": TypeVideo,
	".wmv": TypeVideo, ".flv": TypeVideo, ".webm": TypeVideo,

	".mp3": TypeAudio, ".wav": TypeAudio, ".flac": TypeAudio,
	".aac": TypeAudio, ".ogg": TypeAudio,

	".zip": TypeArchive, ".rar": TypeArchive, ".7z": TypeArchive,
	".tar": TypeArchive, ".gz": TypeArchive,
}

// DetectType classifies a file by extension, then by MIME type.
func DetectType(filename, mimeType string) Type {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}

	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(mimeType)
	}
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return TypeImage
	case strings.HasPrefix(mediaType, "video/"):
		return TypeVideo
	case strings.HasPrefix(mediaType, "audio/"):
		return TypeAudio
	case mediaType == "application/pdf", mediaType == "application/msword":
		return TypeDocument
	case mediaType == "application/zip":
		return TypeArchive
	default:
		return TypeOther
	}
}

// StorageKey builds the blob key for a stored file name.
func StorageKey(userID uint, t Type, storedName string) string {
	return fmt.Sprintf("user/%d/%s/%s", userID, t, storedName)
}

// File is the metadata row for an uploaded blob.
type File struct {
	ID               uint   `gorm:"primaryKey"`
	Filename         string `gorm:"not null"`
	OriginalFilename string `gorm:"not null"`
	FileType         Type   `gorm:"column:file_type;not null;index"`
	FileExtension    string `gorm:"not null"`
	FileSize         int64  `gorm:"not null"`
	FilePath         string `gorm:"not null"`
	MimeType         string `gorm:"not null"`
	UserID           uint   `gorm:"not null;index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}

// DownloadURL returns the API path that streams the file.
func (f *File) DownloadURL() string {
	return fmt.Sprintf("/api/v1/files/%d/download", f.ID)
}

// ToResponse converts the file to its API representation.
func (f *File) ToResponse() *Response {
	return &Response{
		ID:               f.ID,
		Filename:         f.Filename,
		OriginalFilename: f.OriginalFilename,
		FileType:         f.FileType,
		FileExtension:    f.FileExtension,
		FileSize:         f.FileSize,
		FilePath:         f.FilePath,
		MimeType:         f.MimeType,
		UserID:           f.UserID,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
		URL:              f.DownloadURL(),
	}
}
