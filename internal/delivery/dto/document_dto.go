package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// UploadDocumentRequest holds the multipart form values of an upload
type UploadDocumentRequest struct {
	OwnerCoreID string `json:"owner_core_id" validate:"required,max=20"`
	Title       string `json:"title" validate:"required,max=255"`
	Category    string `json:"category" validate:"required,oneof=IDENTITY CERTIFICATE HEALTH OTHER"`
}

// Response DTOs

type DocumentResponse struct {
	ID           uuid.UUID `json:"id"`
	OwnerCoreID  string    `json:"owner_core_id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	UploaderID   uuid.UUID `json:"uploader_id"`
	UploaderName string    `json:"uploader_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}
