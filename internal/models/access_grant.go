package models

import "time"

// PermissionLevel orders the capabilities a user holds on a data room.
type PermissionLevel string

// Permission levels, ordered by capability.
const (
	PermissionViewer PermissionLevel = "viewer"
	PermissionEditor PermissionLevel = "editor"
	PermissionOwner  PermissionLevel = "owner"
)

var permissionRank = map[PermissionLevel]int{
	PermissionViewer: 1,
	PermissionEditor: 2,
	PermissionOwner:  3,
}

// AtLeast reports whether the level grants the capabilities of minimum.
func (l PermissionLevel) AtLeast(minimum PermissionLevel) bool {
	return permissionRank[l] >= permissionRank[minimum]
}

// Valid reports whether the level is one of the known permission levels.
func (l PermissionLevel) Valid() bool {
	_, ok := permissionRank[l]
	return ok
}

// AccessGrant associates a user with a data room at a permission level.
// Grants are never hard-deleted; revocation sets RevokedAt so the audit
// trail stays intact.
type AccessGrant struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	DataRoomID  uint            `gorm:"not null;index:idx_grant_room_user,priority:1" json:"data_room_id"`
	UserID      uint            `gorm:"not null;index:idx_grant_room_user,priority:2" json:"user_id"`
	InviteEmail string          `gorm:"size:255" json:"invite_email"`
	Level       PermissionLevel `gorm:"size:16;not null" json:"permission_level"`
	GrantedBy   uint            `gorm:"not null" json:"granted_by"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	RevokedAt   *time.Time      `json:"revoked_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ActiveAt reports whether the grant confers access at the given instant.
func (g AccessGrant) ActiveAt(now time.Time) bool {
	if g.RevokedAt != nil {
		return false
	}
	if g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
		return false
	}
	return true
}
