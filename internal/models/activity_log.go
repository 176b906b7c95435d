package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is the immutable audit record appended after every data-room
// mutation. Rows are never updated or deleted.
type ActivityLog struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	DataRoomID   uint              `gorm:"not null;index" json:"data_room_id"`
	ResourceType string            `gorm:"size:64;not null" json:"resource_type"`
	ResourceID   *uint             `json:"resource_id,omitempty"`
	ActorID      uint              `gorm:"not null" json:"actor_id"`
	Action       string            `gorm:"size:64;not null" json:"action"`
	Detail       datatypes.JSONMap `gorm:"type:json" json:"detail"`
	CreatedAt    time.Time         `json:"created_at"`
}
