package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a directed inbox message between two users.
type Message struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SenderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	ReviewID    *uuid.UUID `gorm:"type:uuid;index" json:"review_id,omitempty"`
	Subject     string     `gorm:"size:255;not null" json:"subject"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
