package models

import "time"

// Company is an entry in the intelligence catalogue, usually created through
// a bulk CSV import.
type Company struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	RegistrationNo string    `gorm:"size:64;uniqueIndex" json:"registration_no"`
	Domain         string    `gorm:"size:255" json:"domain"`
	Sector         string    `gorm:"size:128" json:"sector"`
	Country        string    `gorm:"size:64" json:"country"`
	ImportJobID    string    `gorm:"size:36;index" json:"import_job_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
