package repository

import (
	"context"
	"errors"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"

	"gorm.io/gorm"
)

// BoardRepository defines persistence operations for boards and membership.
type BoardRepository interface {
	Create(ctx context.Context, board *models.Board) error
	// GetByID returns the board only if the actor's scope admits it;
	// invisible boards are reported as not found.
	GetByID(ctx context.Context, id uint, actor authz.Actor) (*models.Board, error)
	// GetAny bypasses visibility scoping. For internal resolution only.
	GetAny(ctx context.Context, id uint) (*models.Board, error)
	List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Board, error)
	Update(ctx context.Context, board *models.Board) error
	Delete(ctx context.Context, id uint) error
	IsMember(ctx context.Context, boardID, userID uint) (bool, error)
	AddMember(ctx context.Context, boardID, userID uint) error
	RemoveMember(ctx context.Context, boardID, userID uint) error
	Members(ctx context.Context, boardID uint) ([]models.User, error)
}

type boardRepository struct {
	db *gorm.DB
}

// NewBoardRepository returns a new BoardRepository implementation.
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &boardRepository{db: db}
}

// applyBoardDetails adds subqueries computing member and feedback counts.
func (r *boardRepository) applyBoardDetails(db *gorm.DB) *gorm.DB {
	return db.Select("boards.*, " +
		"(SELECT COUNT(*) FROM board_members WHERE board_members.board_id = boards.id) AS member_count, " +
		"(SELECT COUNT(*) FROM feedbacks WHERE feedbacks.board_id = boards.id) AS feedback_count")
}

func (r *boardRepository) Create(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *boardRepository) GetByID(ctx context.Context, id uint, actor authz.Actor) (*models.Board, error) {
	var board models.Board
	err := r.applyBoardDetails(r.db.WithContext(ctx)).
		Scopes(authz.BoardScope(actor)).
		First(&board, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same response whether the board is absent or merely invisible.
			return nil, models.NewNotFoundError("Board", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &board, nil
}

func (r *boardRepository) GetAny(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	err := r.applyBoardDetails(r.db.WithContext(ctx)).First(&board, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Board", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &board, nil
}

func (r *boardRepository) List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Board, error) {
	var boards []*models.Board
	err := r.applyBoardDetails(r.db.WithContext(ctx)).
		Scopes(authz.BoardScope(actor)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&boards).Error
	return boards, err
}

func (r *boardRepository) Update(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Save(board).Error
}

// Delete removes the board and everything under it: feedback, comments,
// votes, tag links and membership rows, all in one transaction.
func (r *boardRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		feedbackIDs := tx.Model(&models.Feedback{}).Select("id").Where("board_id = ?", id)

		if err := tx.Where("feedback_id IN (?)", feedbackIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM feedback_upvotes WHERE feedback_id IN (SELECT id FROM feedbacks WHERE board_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM feedback_tags WHERE feedback_id IN (SELECT id FROM feedbacks WHERE board_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM board_members WHERE board_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Board{}, id).Error
	})
	return err
}

func (r *boardRepository) IsMember(ctx context.Context, boardID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("board_members").
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddMember is idempotent: adding an existing member is a no-op.
func (r *boardRepository) AddMember(ctx context.Context, boardID, userID uint) error {
	member, err := r.IsMember(ctx, boardID, userID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("INSERT INTO board_members (board_id, user_id) VALUES (?, ?)", boardID, userID).Error
}

func (r *boardRepository) RemoveMember(ctx context.Context, boardID, userID uint) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM board_members WHERE board_id = ? AND user_id = ?", boardID, userID).Error
}

// Members returns the board's members ordered by username.
func (r *boardRepository) Members(ctx context.Context, boardID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.user_id = users.id").
		Where("board_members.board_id = ?", boardID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}
