package service

import (
	"context"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"
	"pulseboard/internal/observability"
	"pulseboard/internal/repository"
	"pulseboard/internal/validation"
)

// CommentService handles discussion on feedback items. Visibility is
// inherited from the feedback's board.
type CommentService struct {
	commentRepo  repository.CommentRepository
	feedbackRepo repository.FeedbackRepository
	boardRepo    repository.BoardRepository
}

type CreateCommentInput struct {
	Actor      authz.Actor
	FeedbackID uint
	Content    string
}

type UpdateCommentInput struct {
	Actor     authz.Actor
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	feedbackRepo repository.FeedbackRepository,
	boardRepo repository.BoardRepository,
) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		feedbackRepo: feedbackRepo,
		boardRepo:    boardRepo,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if !in.Actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	// The scoped lookup makes an invisible parent read as not found.
	feedback, err := s.feedbackRepo.GetByID(ctx, in.FeedbackID, in.Actor)
	if err != nil {
		return nil, err
	}
	board, err := s.boardRepo.GetAny(ctx, feedback.BoardID)
	if err != nil {
		return nil, err
	}
	isMember, err := s.boardRepo.IsMember(ctx, board.ID, in.Actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanContribute(in.Actor, board.Visibility, isMember) {
		observability.RecordAuthzDenial("comment", "create")
		return nil, models.NewForbiddenError("You cannot comment on this board")
	}

	content, err := validation.ValidateCommentContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{
		Content:    content,
		FeedbackID: in.FeedbackID,
		AuthorID:   in.Actor.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID, in.Actor)
}

func (s *CommentService) GetComment(ctx context.Context, id uint, actor authz.Actor) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id, actor)
}

// ListComments is open to anonymous actors on public boards. The parent
// feedback must be visible or the listing reads as not found.
func (s *CommentService) ListComments(ctx context.Context, feedbackID uint, actor authz.Actor, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.feedbackRepo.GetByID(ctx, feedbackID, actor); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByFeedback(ctx, feedbackID, actor, limit, offset)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID, in.Actor)
	if err != nil {
		return nil, err
	}
	if !authz.CanModifyContent(in.Actor, comment.AuthorID) {
		observability.RecordAuthzDenial("comment", "update")
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}

	content, err := validation.ValidateCommentContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	comment.Content = content

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, in.CommentID, in.Actor)
}

func (s *CommentService) DeleteComment(ctx context.Context, id uint, actor authz.Actor) error {
	comment, err := s.commentRepo.GetByID(ctx, id, actor)
	if err != nil {
		return err
	}
	if !authz.CanModifyContent(actor, comment.AuthorID) {
		observability.RecordAuthzDenial("comment", "delete")
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, id)
}
