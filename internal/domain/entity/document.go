package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document categories accepted by the upload endpoint
const (
	DocumentCategoryIdentity    = "IDENTITY"
	DocumentCategoryCertificate = "CERTIFICATE"
	DocumentCategoryHealth      = "HEALTH"
	DocumentCategoryOther       = "OTHER"
)

// Document is an uploaded file attached to a person's core id
type Document struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerCoreID  string    `gorm:"type:varchar(20);not null;index" json:"owner_core_id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Category     string    `gorm:"type:varchar(30);not null;index" json:"category"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	StorageKey   string    `gorm:"type:text;not null" json:"-"`
	FileURL      string    `gorm:"type:text;not null" json:"file_url"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	MimeType     string    `gorm:"type:varchar(100)" json:"mime_type"`
	UploaderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"uploader_id"`
	UploaderName string    `gorm:"type:varchar(255)" json:"uploader_name"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
