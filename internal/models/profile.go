package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile stores the user-editable account fields. The user id doubles as
// the primary key; rows are created lazily on first update.
type Profile struct {
	UserID      uint              `gorm:"primaryKey" json:"user_id"`
	FullName    string            `gorm:"size:255" json:"full_name"`
	Title       string            `gorm:"size:128" json:"title"`
	Company     string            `gorm:"size:255" json:"company"`
	Bio         string            `gorm:"type:text" json:"bio"`
	Preferences datatypes.JSONMap `gorm:"type:json" json:"preferences"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
