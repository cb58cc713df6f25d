package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating of a venue. Comment holds the rendered
// text including any moderation markers; OriginalComment keeps the
// reviewer's words as submitted once a moderator has touched the row.
type Review struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Rating     int        `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment    string     `gorm:"type:text" json:"comment"`
	ReviewType string     `gorm:"size:30;not null;default:'venue_review';index" json:"review_type"`
	AuthorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	VenueID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"venue_id"`
	BookingID  *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	ModerationStatus string     `gorm:"size:30;index" json:"moderation_status,omitempty"`
	StatusReason     string     `gorm:"size:500" json:"status_reason,omitempty"`
	FlagSeverity     string     `gorm:"size:10" json:"flag_severity,omitempty"`
	OriginalComment  *string    `gorm:"type:text" json:"original_comment,omitempty"`
	ModeratedBy      *uuid.UUID `gorm:"type:uuid" json:"moderated_by,omitempty"`
	ModeratedAt      *time.Time `json:"moderated_at,omitempty"`

	Author User  `gorm:"foreignKey:AuthorID" json:"-"`
	Venue  Venue `gorm:"foreignKey:VenueID" json:"-"`
}

// SubmittedText returns the reviewer's own words, independent of any
// markers a moderator has added since.
func (r *Review) SubmittedText() string {
	if r.OriginalComment != nil {
		return *r.OriginalComment
	}
	return r.Comment
}
