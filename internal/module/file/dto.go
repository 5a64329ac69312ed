package file

import "time"

// Response represents a file in API responses.
type Response struct {
	ID               uint      `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FileType         Type      `json:"file_type"`
	FileExtension    string    `json:"file_extension"`
	FileSize         int64     `json:"file_size"`
	FilePath         string    `json:"file_path"`
	MimeType         string    `json:"mime_type"`
	UserID           uint      `json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	URL              string    `json:"url"`
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Message string    `json:"message"`
	File    *Response `json:"file"`
}

// ListResponse wraps a list of files.
type ListResponse struct {
	Files []*Response `json:"files"`
	Total int         `json:"total"`
}

// UploadInput describes an incoming blob.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
}
