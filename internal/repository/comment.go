package repository

import (
	"context"
	"errors"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetByID returns the comment only if the actor can see the board it
	// transitively belongs to.
	GetByID(ctx context.Context, id uint, actor authz.Actor) (*models.Comment, error)
	ListByFeedback(ctx context.Context, feedbackID uint, actor authz.Actor, limit, offset int) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint, actor authz.Actor) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Scopes(authz.CommentScope(actor)).
		Preload("Author").
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListByFeedback returns comments oldest-first so threads read top to bottom.
func (r *commentRepository) ListByFeedback(ctx context.Context, feedbackID uint, actor authz.Actor, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Scopes(authz.CommentScope(actor)).
		Where("comments.feedback_id = ?", feedbackID).
		Preload("Author").
		Order("comments.created_at ASC, comments.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}
