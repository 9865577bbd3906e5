package service

import (
	"context"
	"strings"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"
	"pulseboard/internal/observability"
	"pulseboard/internal/repository"
	"pulseboard/internal/validation"
)

// BoardService handles board lifecycle and membership.
type BoardService struct {
	boardRepo repository.BoardRepository
	userRepo  repository.UserRepository
}

type CreateBoardInput struct {
	Actor       authz.Actor
	Name        string
	Description string
	Visibility  models.Visibility
}

// UpdateBoardInput uses pointer fields so absent fields are left untouched.
type UpdateBoardInput struct {
	Actor       authz.Actor
	BoardID     uint
	Name        *string
	Description *string
	Visibility  *models.Visibility
}

type AddMemberInput struct {
	Actor    authz.Actor
	BoardID  uint
	Username string
}

func NewBoardService(boardRepo repository.BoardRepository, userRepo repository.UserRepository) *BoardService {
	return &BoardService{boardRepo: boardRepo, userRepo: userRepo}
}

func (s *BoardService) CreateBoard(ctx context.Context, in CreateBoardInput) (*models.Board, error) {
	if !authz.CanCreateBoard(in.Actor) {
		observability.RecordAuthzDenial("board", "create")
		return nil, models.NewForbiddenError("Only admins and moderators can create boards")
	}

	name, err := validation.ValidateBoardName(in.Name)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, models.NewValidationError("Invalid visibility")
	}

	board := &models.Board{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Visibility:  visibility,
	}
	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, err
	}
	return s.boardRepo.GetByID(ctx, board.ID, in.Actor)
}

// GetBoard returns the board if the actor can see it, 404 otherwise.
func (s *BoardService) GetBoard(ctx context.Context, id uint, actor authz.Actor) (*models.Board, error) {
	return s.boardRepo.GetByID(ctx, id, actor)
}

// ListBoards requires authentication; the repository scope narrows results
// to boards the actor can see.
func (s *BoardService) ListBoards(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Board, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.boardRepo.List(ctx, actor, limit, offset)
}

func (s *BoardService) UpdateBoard(ctx context.Context, in UpdateBoardInput) (*models.Board, error) {
	if !authz.CanUpdateBoard(in.Actor) {
		observability.RecordAuthzDenial("board", "update")
		return nil, models.NewForbiddenError("Only admins and moderators can update boards")
	}

	board, err := s.boardRepo.GetByID(ctx, in.BoardID, in.Actor)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name, err := validation.ValidateBoardName(*in.Name)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		board.Name = name
	}
	if in.Description != nil {
		board.Description = strings.TrimSpace(*in.Description)
	}
	if in.Visibility != nil {
		if !in.Visibility.Valid() {
			return nil, models.NewValidationError("Invalid visibility")
		}
		board.Visibility = *in.Visibility
	}

	if err := s.boardRepo.Update(ctx, board); err != nil {
		return nil, err
	}
	return s.boardRepo.GetByID(ctx, in.BoardID, in.Actor)
}

// DeleteBoard removes the board and everything under it. Admin only.
func (s *BoardService) DeleteBoard(ctx context.Context, id uint, actor authz.Actor) error {
	if !authz.CanDeleteBoard(actor) {
		observability.RecordAuthzDenial("board", "delete")
		return models.NewForbiddenError("Only admins can delete boards")
	}
	if _, err := s.boardRepo.GetByID(ctx, id, actor); err != nil {
		return err
	}
	return s.boardRepo.Delete(ctx, id)
}

// Join adds the actor to a public board. Joining twice is a no-op. Private
// boards are invite-only, so self-joining one is rejected; if the board is
// invisible to the actor the lookup already reported not found.
func (s *BoardService) Join(ctx context.Context, boardID uint, actor authz.Actor) error {
	if !actor.Authenticated {
		return models.NewUnauthorizedError("Authentication required")
	}
	board, err := s.boardRepo.GetByID(ctx, boardID, actor)
	if err != nil {
		return err
	}
	if board.Visibility != models.VisibilityPublic {
		return models.NewForbiddenError("Private boards are invite-only")
	}
	return s.boardRepo.AddMember(ctx, boardID, actor.ID)
}

// Leave removes the actor from the board's member set. Leaving a board the
// actor is not a member of is a no-op.
func (s *BoardService) Leave(ctx context.Context, boardID uint, actor authz.Actor) error {
	if !actor.Authenticated {
		return models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.boardRepo.GetByID(ctx, boardID, actor); err != nil {
		return err
	}
	return s.boardRepo.RemoveMember(ctx, boardID, actor.ID)
}

// AddMember adds the named user to the board. Admin or moderator only; this
// is the only way into a private board.
func (s *BoardService) AddMember(ctx context.Context, in AddMemberInput) error {
	if !authz.CanManageMembers(in.Actor) {
		observability.RecordAuthzDenial("board", "manage_members")
		return models.NewForbiddenError("Only admins and moderators can manage members")
	}
	if _, err := s.boardRepo.GetByID(ctx, in.BoardID, in.Actor); err != nil {
		return err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return models.NewValidationError("username is required")
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", username)
	}
	return s.boardRepo.AddMember(ctx, in.BoardID, user.ID)
}

// Members lists the board's member users, visible-board rule applied first.
func (s *BoardService) Members(ctx context.Context, boardID uint, actor authz.Actor) ([]models.User, error) {
	if !actor.Authenticated {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if _, err := s.boardRepo.GetByID(ctx, boardID, actor); err != nil {
		return nil, err
	}
	return s.boardRepo.Members(ctx, boardID)
}
