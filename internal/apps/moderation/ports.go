package moderation

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/models"
	"github.com/google/uuid"
)

// ReviewFilter narrows a review listing on indexed columns.
type ReviewFilter struct {
	VenueID  *uuid.UUID
	AuthorID *uuid.UUID
}

// ReviewStore is the durable review collection. Get and List return
// reviews with Author and Venue populated.
type ReviewStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Review, error)
	List(ctx context.Context, filter ReviewFilter) ([]models.Review, error)
	// Save writes the comment and moderation columns. There is no version
	// check: concurrent saves of the same review end with the last one.
	Save(ctx context.Context, review *models.Review) error
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

// AuditLog is the append-only store of moderation decisions.
type AuditLog interface {
	Append(ctx context.Context, entry *AuditEntry) error
	// ForReview returns the review's entries oldest first.
	ForReview(ctx context.Context, reviewID uuid.UUID) ([]AuditEntry, error)
	// LatestActions maps each review id to its most recent audited action.
	LatestActions(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID]Action, error)
	// Recent returns the latest entries across all reviews, newest first.
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)
}

// Messenger delivers a directed message to a user.
type Messenger interface {
	Send(ctx context.Context, msg *models.Message) error
}

// Inbox lists the messages addressed to a user, newest first.
type Inbox interface {
	Inbox(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]models.Message, int64, error)
}
