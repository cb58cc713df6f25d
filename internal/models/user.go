package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the shared account row. Customers author reviews; admins and
// moderators triage them. Accounts are created by the auth service.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	FullName  string         `gorm:"size:255" json:"full_name"`
	Role      string         `gorm:"size:20;default:'customer'" json:"role"` // customer, venue_owner, moderator, admin
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
