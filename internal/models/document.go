package models

import "time"

// Document statuses.
const (
	DocumentStatusActive   = "active"
	DocumentStatusArchived = "archived"
)

// Document is a file stored inside a data room.
type Document struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	DataRoomID uint       `gorm:"not null;index" json:"data_room_id"`
	UploaderID uint       `gorm:"not null" json:"uploader_id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	Category   string     `gorm:"size:64" json:"category"`
	MimeType   string     `gorm:"size:128" json:"mime_type"`
	SizeBytes  int64      `json:"size_bytes"`
	FileURL    string     `gorm:"size:512" json:"file_url"`
	Status     string     `gorm:"size:32;not null;default:active" json:"status"`
	DeletedAt  *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
