package moderation

import (
	"time"

	"github.com/google/uuid"
)

// Status is the triage state of a review.
type Status string

const (
	StatusPending                Status = "pending"
	StatusApproved               Status = "approved"
	StatusRejected               Status = "rejected"
	StatusFlagged                Status = "flagged"
	StatusEscalated              Status = "escalated"
	StatusClarificationRequested Status = "clarification_requested"
)

var AllStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusFlagged,
	StatusEscalated,
	StatusClarificationRequested,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type Action string

const (
	ActionApprove              Action = "approve"
	ActionReject               Action = "reject"
	ActionFlag                 Action = "flag"
	ActionRequestClarification Action = "request_clarification"
	ActionEscalate             Action = "escalate"
)

func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionFlag, ActionRequestClarification, ActionEscalate:
		return true
	}
	return false
}

// operation names the action the way it is reported on failure.
func (a Action) operation() string {
	switch a {
	case ActionApprove:
		return "approve_review"
	case ActionReject:
		return "reject_review"
	case ActionFlag:
		return "flag_review"
	case ActionRequestClarification:
		return "request_clarification"
	case ActionEscalate:
		return "escalate_review"
	}
	return string(a)
}

type ReviewType string

const (
	TypeVenueReview     ReviewType = "venue_review"
	TypeServiceFeedback ReviewType = "service_feedback"
	TypeDisputeComment  ReviewType = "dispute_comment"
)

func (t ReviewType) Valid() bool {
	switch t {
	case TypeVenueReview, TypeServiceFeedback, TypeDisputeComment:
		return true
	}
	return false
}

// RejectReasons is the controlled vocabulary of rejection reasons per
// review type.
var RejectReasons = map[ReviewType][]string{
	TypeVenueReview:     {"inappropriate_content", "spam", "fake_review", "personal_attack", "irrelevant"},
	TypeServiceFeedback: {"inappropriate_content", "spam", "irrelevant", "personal_attack"},
	TypeDisputeComment:  {"inappropriate_content", "personal_attack", "unsubstantiated", "irrelevant"},
}

// AllowedRejectReason reports whether reason is in the vocabulary for the
// given review type. Unknown or empty types use the venue review list.
func AllowedRejectReason(t ReviewType, reason string) bool {
	reasons, ok := RejectReasons[t]
	if !ok {
		reasons = RejectReasons[TypeVenueReview]
	}
	for _, r := range reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// AuditEntry is an append-only record of one moderation decision.
type AuditEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReviewID  uuid.UUID `gorm:"type:uuid;not null;index:idx_moderation_audit_review_time,priority:1" json:"review_id"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action    Action    `gorm:"size:30;not null;index" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"`
	Timestamp time.Time `gorm:"not null;index:idx_moderation_audit_review_time,priority:2" json:"timestamp"`
}

func (AuditEntry) TableName() string {
	return "moderation_audit_log"
}
