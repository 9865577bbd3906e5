package service

import (
	"context"
	"time"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"
	"pulseboard/internal/observability"
	"pulseboard/internal/repository"
	"pulseboard/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// TopVotedLimit is how many items the top-voted panel shows.
const TopVotedLimit = 5

// TrendWindow is the lookback for submission trends.
const TrendWindow = 30 * 24 * time.Hour

// FeedbackService handles feedback lifecycle, voting and analytics.
type FeedbackService struct {
	feedbackRepo repository.FeedbackRepository
	boardRepo    repository.BoardRepository
	tagRepo      repository.TagRepository
}

type CreateFeedbackInput struct {
	Actor    authz.Actor
	BoardID  uint
	Title    string
	Content  string
	Priority models.FeedbackPriority
	TagIDs   []uint
}

// UpdateFeedbackInput uses pointer fields so absent fields are left
// untouched. TagIDs, when present, replaces the whole tag set.
type UpdateFeedbackInput struct {
	Actor      authz.Actor
	FeedbackID uint
	Title      *string
	Content    *string
	Status     *models.FeedbackStatus
	Priority   *models.FeedbackPriority
	TagIDs     *[]uint
}

// VoteResult reports the outcome of a vote toggle.
type VoteResult struct {
	Action      string `json:"action"`
	UpvoteCount int64  `json:"upvote_count"`
}

func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	boardRepo repository.BoardRepository,
	tagRepo repository.TagRepository,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		boardRepo:    boardRepo,
		tagRepo:      tagRepo,
	}
}

// resolveTagIDs checks that every requested tag exists.
func (s *FeedbackService) resolveTagIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[uint]bool, len(ids))
	var unique []uint
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	tags, err := s.tagRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(unique) {
		return nil, models.NewValidationError("One or more tags do not exist")
	}
	return unique, nil
}

// CreateFeedback requires the target board to be visible to the actor.
// An invisible board reads as not found, never as forbidden.
func (s *FeedbackService) CreateFeedback(ctx context.Context, in CreateFeedbackInput) (*models.Feedback, error) {
	if !in.Actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	board, err := s.boardRepo.GetByID(ctx, in.BoardID, in.Actor)
	if err != nil {
		return nil, err
	}
	isMember, err := s.boardRepo.IsMember(ctx, board.ID, in.Actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanContribute(in.Actor, board.Visibility, isMember) {
		observability.RecordAuthzDenial("feedback", "create")
		return nil, models.NewForbiddenError("You cannot post to this board")
	}

	title, err := validation.ValidateFeedbackTitle(in.Title)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	content, err := validation.ValidateFeedbackContent(in.Content)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, models.NewValidationError("Invalid priority")
	}
	tagIDs, err := s.resolveTagIDs(ctx, in.TagIDs)
	if err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		Title:    title,
		Content:  content,
		Status:   models.StatusOpen,
		Priority: priority,
		BoardID:  in.BoardID,
		AuthorID: in.Actor.ID,
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, err
	}
	if len(tagIDs) > 0 {
		if err := s.feedbackRepo.ReplaceTags(ctx, feedback.ID, tagIDs); err != nil {
			return nil, err
		}
	}
	return s.feedbackRepo.GetByID(ctx, feedback.ID, in.Actor)
}

func (s *FeedbackService) GetFeedback(ctx context.Context, id uint, actor authz.Actor) (*models.Feedback, error) {
	return s.feedbackRepo.GetByID(ctx, id, actor)
}

// ListFeedback is open to anonymous actors; the scope limits them to public
// boards.
func (s *FeedbackService) ListFeedback(ctx context.Context, actor authz.Actor, filter repository.FeedbackFilter) ([]*models.Feedback, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("Invalid status filter")
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, models.NewValidationError("Invalid priority filter")
	}
	return s.feedbackRepo.List(ctx, actor, filter)
}

func (s *FeedbackService) UpdateFeedback(ctx context.Context, in UpdateFeedbackInput) (*models.Feedback, error) {
	feedback, err := s.feedbackRepo.GetByID(ctx, in.FeedbackID, in.Actor)
	if err != nil {
		return nil, err
	}
	if !authz.CanModifyContent(in.Actor, feedback.AuthorID) {
		observability.RecordAuthzDenial("feedback", "update")
		return nil, models.NewForbiddenError("You can only edit your own feedback")
	}

	if in.Title != nil {
		title, err := validation.ValidateFeedbackTitle(*in.Title)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		feedback.Title = title
	}
	if in.Content != nil {
		content, err := validation.ValidateFeedbackContent(*in.Content)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		feedback.Content = content
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewValidationError("Invalid status")
		}
		feedback.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, models.NewValidationError("Invalid priority")
		}
		feedback.Priority = *in.Priority
	}

	if err := s.feedbackRepo.Update(ctx, feedback); err != nil {
		return nil, err
	}

	if in.TagIDs != nil {
		tagIDs, err := s.resolveTagIDs(ctx, *in.TagIDs)
		if err != nil {
			return nil, err
		}
		if err := s.feedbackRepo.ReplaceTags(ctx, feedback.ID, tagIDs); err != nil {
			return nil, err
		}
	}

	return s.feedbackRepo.GetByID(ctx, in.FeedbackID, in.Actor)
}

func (s *FeedbackService) DeleteFeedback(ctx context.Context, id uint, actor authz.Actor) error {
	feedback, err := s.feedbackRepo.GetByID(ctx, id, actor)
	if err != nil {
		return err
	}
	if !authz.CanModifyContent(actor, feedback.AuthorID) {
		observability.RecordAuthzDenial("feedback", "delete")
		return models.NewForbiddenError("You can only delete your own feedback")
	}
	return s.feedbackRepo.Delete(ctx, id)
}

// ToggleVote flips the actor's upvote on the item. Contribution rules apply:
// the item's board must be visible to the actor.
func (s *FeedbackService) ToggleVote(ctx context.Context, feedbackID uint, actor authz.Actor) (*VoteResult, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	feedback, err := s.feedbackRepo.GetByID(ctx, feedbackID, actor)
	if err != nil {
		return nil, err
	}
	board, err := s.boardRepo.GetAny(ctx, feedback.BoardID)
	if err != nil {
		return nil, err
	}
	isMember, err := s.boardRepo.IsMember(ctx, board.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanVote(actor, board.Visibility, isMember) {
		observability.RecordAuthzDenial("feedback", "vote")
		return nil, models.NewForbiddenError("You cannot vote on this board")
	}

	span, ctx := observability.NewSpan(ctx, "FeedbackService.ToggleVote")
	defer span.End()

	action, count, err := s.feedbackRepo.ToggleVote(ctx, feedbackID, actor.ID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.String("vote.outcome", action))
	observability.RecordVoteToggle(action)
	return &VoteResult{Action: action, UpvoteCount: count}, nil
}

// Counts aggregates feedback by status over the actor's visible subset.
func (s *FeedbackService) Counts(ctx context.Context, actor authz.Actor) (*repository.StatusCounts, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.feedbackRepo.CountsByStatus(ctx, actor)
}

// TopVoted returns the actor's most-upvoted visible items.
func (s *FeedbackService) TopVoted(ctx context.Context, actor authz.Actor) ([]*models.Feedback, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.feedbackRepo.TopVoted(ctx, actor, TopVotedLimit)
}

// Trends returns per-day submission counts over the trailing window.
func (s *FeedbackService) Trends(ctx context.Context, actor authz.Actor) ([]repository.TrendPoint, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	since := time.Now().UTC().Add(-TrendWindow).Truncate(24 * time.Hour)
	return s.feedbackRepo.Trends(ctx, actor, since)
}
