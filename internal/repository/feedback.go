package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"

	"gorm.io/gorm"
)

// VoteAdded and VoteRemoved are the two outcomes of a vote toggle.
const (
	VoteAdded   = "added"
	VoteRemoved = "removed"
)

// FeedbackFilter carries list filtering, search, ordering and pagination.
type FeedbackFilter struct {
	Status   models.FeedbackStatus
	Priority models.FeedbackPriority
	BoardID  uint
	AuthorID uint
	Query    string // free-text over title, content, author username
	Ordering string // created_at | updated_at | upvote_count | title, "-" prefix for descending
	Limit    int
	Offset   int
}

// StatusCounts aggregates feedback counts over an actor's visible subset.
type StatusCounts struct {
	Total       int64 `json:"total"`
	Active      int64 `json:"active"`
	Completed   int64 `json:"completed"`
	InProgress  int64 `json:"in_progress"`
	UnderReview int64 `json:"under_review"`
}

// TrendPoint is a per-day submission count. Days with no submissions are
// omitted rather than zero-filled.
type TrendPoint struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// FeedbackRepository defines persistence operations for feedback items.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	// GetByID returns the item only if the actor's scope admits it.
	GetByID(ctx context.Context, id uint, actor authz.Actor) (*models.Feedback, error)
	// GetAny bypasses visibility scoping. For internal resolution only.
	GetAny(ctx context.Context, id uint) (*models.Feedback, error)
	List(ctx context.Context, actor authz.Actor, filter FeedbackFilter) ([]*models.Feedback, error)
	Update(ctx context.Context, feedback *models.Feedback) error
	Delete(ctx context.Context, id uint) error
	ReplaceTags(ctx context.Context, feedbackID uint, tagIDs []uint) error
	// ToggleVote flips the user's membership in the upvote set inside one
	// transaction and returns the outcome plus the new count.
	ToggleVote(ctx context.Context, feedbackID, userID uint) (string, int64, error)
	CountsByStatus(ctx context.Context, actor authz.Actor) (*StatusCounts, error)
	TopVoted(ctx context.Context, actor authz.Actor, limit int) ([]*models.Feedback, error)
	Trends(ctx context.Context, actor authz.Actor, since time.Time) ([]TrendPoint, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository returns a new FeedbackRepository implementation.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// applyFeedbackDetails adds subqueries computing counts and the upvoted flag
// in a single query.
func (r *feedbackRepository) applyFeedbackDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "feedbacks.*, " +
		"(SELECT COUNT(*) FROM feedback_upvotes WHERE feedback_upvotes.feedback_id = feedbacks.id) AS upvote_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.feedback_id = feedbacks.id) AS comment_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM feedback_upvotes WHERE feedback_upvotes.feedback_id = feedbacks.id AND feedback_upvotes.user_id = ?) AS upvoted", currentUserID)
	}
	return db.Select(selectQuery + ", 0 AS upvoted")
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Omit("Tags", "Upvoters").Create(feedback).Error
}

func (r *feedbackRepository) GetByID(ctx context.Context, id uint, actor authz.Actor) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.applyFeedbackDetails(r.db.WithContext(ctx), actor.ID).
		Scopes(authz.FeedbackScope(actor)).
		Preload("Author").
		Preload("Tags").
		First(&feedback, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same response whether the item is absent or merely invisible.
			return nil, models.NewNotFoundError("Feedback", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &feedback, nil
}

func (r *feedbackRepository) GetAny(ctx context.Context, id uint) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).First(&feedback, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Feedback", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &feedback, nil
}

// orderingColumns whitelists user-supplied ordering fields.
var orderingColumns = map[string]string{
	"created_at":   "feedbacks.created_at",
	"updated_at":   "feedbacks.updated_at",
	"upvote_count": "upvote_count",
	"title":        "feedbacks.title",
}

// applyOrdering appends ORDER BY for the requested field. A "-" prefix means
// descending. Unknown fields fall back to newest-first. A trailing id
// tie-break keeps pagination stable.
func applyOrdering(db *gorm.DB, ordering string) *gorm.DB {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")

	col, ok := orderingColumns[field]
	if !ok {
		return db.Order("feedbacks.created_at DESC, feedbacks.id DESC")
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return db.Order(col + " " + dir + ", feedbacks.id ASC")
}

func (r *feedbackRepository) List(ctx context.Context, actor authz.Actor, filter FeedbackFilter) ([]*models.Feedback, error) {
	db := r.applyFeedbackDetails(r.db.WithContext(ctx), actor.ID).
		Scopes(authz.FeedbackScope(actor)).
		Preload("Author").
		Preload("Tags")

	if filter.Status != "" {
		db = db.Where("feedbacks.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		db = db.Where("feedbacks.priority = ?", filter.Priority)
	}
	if filter.BoardID != 0 {
		db = db.Where("feedbacks.board_id = ?", filter.BoardID)
	}
	if filter.AuthorID != 0 {
		db = db.Where("feedbacks.author_id = ?", filter.AuthorID)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		db = db.Where(
			"LOWER(feedbacks.title) LIKE ? OR LOWER(feedbacks.content) LIKE ? OR feedbacks.author_id IN (SELECT id FROM users WHERE LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)",
			like, like, like, like, like,
		)
	}

	ordering := filter.Ordering
	if ordering == "" {
		ordering = "-created_at"
	}
	db = applyOrdering(db, ordering)

	var feedbacks []*models.Feedback
	err := db.Limit(filter.Limit).Offset(filter.Offset).Find(&feedbacks).Error
	return feedbacks, err
}

func (r *feedbackRepository) Update(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Omit("Tags", "Upvoters").Save(feedback).Error
}

// Delete removes the item plus its comments, votes and tag links in one
// transaction.
func (r *feedbackRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feedback_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM feedback_upvotes WHERE feedback_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM feedback_tags WHERE feedback_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Feedback{}, id).Error
	})
	return err
}

// ReplaceTags sets the item's tag associations to exactly tagIDs.
func (r *feedbackRepository) ReplaceTags(ctx context.Context, feedbackID uint, tagIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM feedback_tags WHERE feedback_id = ?", feedbackID).Error; err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if err := tx.Exec("INSERT INTO feedback_tags (feedback_id, tag_id) VALUES (?, ?)", feedbackID, tagID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *feedbackRepository) ToggleVote(ctx context.Context, feedbackID, userID uint) (string, int64, error) {
	var action string
	var total int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Table("feedback_upvotes").
			Where("feedback_id = ? AND user_id = ?", feedbackID, userID).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing > 0 {
			if err := tx.Exec("DELETE FROM feedback_upvotes WHERE feedback_id = ? AND user_id = ?", feedbackID, userID).Error; err != nil {
				return err
			}
			action = VoteRemoved
		} else {
			if err := tx.Exec("INSERT INTO feedback_upvotes (feedback_id, user_id) VALUES (?, ?)", feedbackID, userID).Error; err != nil {
				return err
			}
			action = VoteAdded
		}

		return tx.Table("feedback_upvotes").
			Where("feedback_id = ?", feedbackID).
			Count(&total).Error
	})
	if err != nil {
		return "", 0, err
	}
	return action, total, nil
}

func (r *feedbackRepository) CountsByStatus(ctx context.Context, actor authz.Actor) (*StatusCounts, error) {
	type row struct {
		Status models.FeedbackStatus
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Scopes(authz.FeedbackScope(actor)).
		Select("feedbacks.status AS status, COUNT(*) AS n").
		Group("feedbacks.status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := &StatusCounts{}
	for _, r := range rows {
		counts.Total += r.N
		switch r.Status {
		case models.StatusOpen:
			counts.Active = r.N
		case models.StatusCompleted:
			counts.Completed = r.N
		case models.StatusInProgress:
			counts.InProgress = r.N
		case models.StatusUnderReview:
			counts.UnderReview = r.N
		}
	}
	return counts, nil
}

// TopVoted returns the most-upvoted visible items. Ties are broken by lower
// ID first (insertion order).
func (r *feedbackRepository) TopVoted(ctx context.Context, actor authz.Actor, limit int) ([]*models.Feedback, error) {
	var feedbacks []*models.Feedback
	err := r.applyFeedbackDetails(r.db.WithContext(ctx), actor.ID).
		Scopes(authz.FeedbackScope(actor)).
		Preload("Author").
		Preload("Tags").
		Order("upvote_count DESC, feedbacks.id ASC").
		Limit(limit).
		Find(&feedbacks).Error
	return feedbacks, err
}

// Trends returns per-day submission counts since the given time, ascending
// by day. Days with zero submissions are omitted.
func (r *feedbackRepository) Trends(ctx context.Context, actor authz.Actor, since time.Time) ([]TrendPoint, error) {
	var points []TrendPoint
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Scopes(authz.FeedbackScope(actor)).
		Select("DATE(feedbacks.created_at) AS day, COUNT(*) AS count").
		Where("feedbacks.created_at >= ?", since).
		Group("DATE(feedbacks.created_at)").
		Order("day ASC").
		Find(&points).Error
	return points, err
}
