package moderation

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// latestActionsChunk bounds the IN list of a single LatestActions query.
const latestActionsChunk = 1000

// ForVenue returns a GORM scope that narrows reviews to one venue.
func ForVenue(venueID *uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if venueID == nil {
			return db
		}
		return db.Where("reviews.venue_id = ?", *venueID)
	}
}

// ForAuthor returns a GORM scope that narrows reviews to one customer.
func ForAuthor(authorID *uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if authorID == nil {
			return db
		}
		return db.Where("reviews.author_id = ?", *authorID)
	}
}

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Get(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Venue").
		First(&review, "reviews.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) List(ctx context.Context, filter ReviewFilter) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Scopes(ForVenue(filter.VenueID), ForAuthor(filter.AuthorID)).
		Preload("Author").
		Preload("Venue").
		Order("reviews.created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *models.Review) error {
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"comment":           review.Comment,
			"moderation_status": review.ModerationStatus,
			"status_reason":     review.StatusReason,
			"flag_severity":     review.FlagSeverity,
			"original_comment":  review.OriginalComment,
			"moderated_by":      review.ModeratedBy,
			"moderated_at":      review.ModeratedAt,
			"updated_at":        review.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (a *AuditRepository) Append(ctx context.Context, entry *AuditEntry) error {
	return a.db.WithContext(ctx).Create(entry).Error
}

func (a *AuditRepository) ForReview(ctx context.Context, reviewID uuid.UUID) ([]AuditEntry, error) {
	var entries []AuditEntry
	err := a.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}

func (a *AuditRepository) LatestActions(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID]Action, error) {
	type row struct {
		ReviewID uuid.UUID
		Action   Action
	}

	out := make(map[uuid.UUID]Action, len(reviewIDs))
	for start := 0; start < len(reviewIDs); start += latestActionsChunk {
		end := min(start+latestActionsChunk, len(reviewIDs))

		var rows []row
		err := a.db.WithContext(ctx).Raw(`
			SELECT DISTINCT ON (review_id) review_id, action
			FROM moderation_audit_log
			WHERE review_id IN ?
			ORDER BY review_id, timestamp DESC`, reviewIDs[start:end]).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			out[r.ReviewID] = r.Action
		}
	}
	return out, nil
}

func (a *AuditRepository) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	var entries []AuditEntry
	err := a.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// MessageRepository is the inbox store; it doubles as the Messenger that
// delivers clarification requests.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (m *MessageRepository) Send(ctx context.Context, msg *models.Message) error {
	return m.db.WithContext(ctx).Create(msg).Error
}

func (m *MessageRepository) Inbox(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]models.Message, int64, error) {
	var messages []models.Message
	var total int64

	query := m.db.WithContext(ctx).Model(&models.Message{}).Where("recipient_id = ?", recipientID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

var (
	_ ReviewStore = (*ReviewRepository)(nil)
	_ AuditLog    = (*AuditRepository)(nil)
	_ Messenger   = (*MessageRepository)(nil)
	_ Inbox       = (*MessageRepository)(nil)
)
