package models

import "time"

// Data room lifecycle states.
const (
	DataRoomStatusActive   = "active"
	DataRoomStatusArchived = "archived"
)

// DataRoom is the tenant-owned container that scopes documents, tasks,
// workflows, approvals, access grants and the activity trail.
type DataRoom struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	CompanyName string     `gorm:"size:255" json:"company_name"`
	DealType    string     `gorm:"size:64" json:"deal_type"`
	OwnerID     uint       `gorm:"not null;index" json:"owner_id"`
	Status      string     `gorm:"size:32;not null;default:active" json:"status"`
	DeletedAt   *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsDeleted reports whether the room has been soft-deleted.
func (d DataRoom) IsDeleted() bool {
	return d.DeletedAt != nil
}
