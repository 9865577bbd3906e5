// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"pulseboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "Password123!abc"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rng  *rand.Rand
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())

	// One bcrypt hash reused across all seeded users keeps seeding fast.
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &Factory{
		db:   db,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		hash: string(hashed),
	}
}

// CreateUser persists a user with the given role and a generated identity.
func (f *Factory) CreateUser(role models.Role) (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, f.rng.Intn(10000)))

	user := &models.User{
		Username:  username,
		Email:     strings.ToLower(fmt.Sprintf("%s@%s", username, gofakeit.DomainName())),
		Password:  f.hash,
		FirstName: first,
		LastName:  last,
		Role:      role,
		Active:    true,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateBoard persists a board with a product-flavored name.
func (f *Factory) CreateBoard(visibility models.Visibility) (*models.Board, error) {
	board := &models.Board{
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(12),
		Visibility:  visibility,
	}
	if err := f.db.Create(board).Error; err != nil {
		return nil, err
	}
	return board, nil
}

var statuses = []models.FeedbackStatus{
	models.StatusOpen, models.StatusOpen, models.StatusOpen,
	models.StatusInProgress, models.StatusUnderReview,
	models.StatusCompleted, models.StatusRejected,
}

var priorities = []models.FeedbackPriority{
	models.PriorityLow, models.PriorityMedium, models.PriorityMedium, models.PriorityHigh,
}

// CreateFeedback persists a feedback item spread over the trailing 60 days so
// trend queries have something to show.
func (f *Factory) CreateFeedback(board *models.Board, author *models.User) (*models.Feedback, error) {
	feedback := &models.Feedback{
		Title:    gofakeit.Sentence(6),
		Content:  gofakeit.Paragraph(1, 3, 8, "\n"),
		Status:   statuses[f.rng.Intn(len(statuses))],
		Priority: priorities[f.rng.Intn(len(priorities))],
		BoardID:  board.ID,
		AuthorID: author.ID,
	}
	feedback.CreatedAt = time.Now().Add(-time.Duration(f.rng.Intn(60*24)) * time.Hour)
	feedback.UpdatedAt = feedback.CreatedAt

	if err := f.db.Create(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// CreateComment persists a comment on the given feedback item.
func (f *Factory) CreateComment(feedback *models.Feedback, author *models.User) (*models.Comment, error) {
	comment := &models.Comment{
		Content:    gofakeit.Sentence(10),
		FeedbackID: feedback.ID,
		AuthorID:   author.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateTag persists a tag, skipping silently on name collision.
func (f *Factory) CreateTag(name string) (*models.Tag, error) {
	tag := &models.Tag{Name: strings.ToLower(name)}
	err := f.db.Where("name = ?", tag.Name).FirstOrCreate(tag).Error
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// AddMember inserts a board membership row if absent.
func (f *Factory) AddMember(board *models.Board, user *models.User) error {
	var n int64
	if err := f.db.Table("board_members").
		Where("board_id = ? AND user_id = ?", board.ID, user.ID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return f.db.Exec("INSERT INTO board_members (board_id, user_id) VALUES (?, ?)", board.ID, user.ID).Error
}

// Upvote inserts an upvote row if absent.
func (f *Factory) Upvote(feedback *models.Feedback, user *models.User) error {
	var n int64
	if err := f.db.Table("feedback_upvotes").
		Where("feedback_id = ? AND user_id = ?", feedback.ID, user.ID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return f.db.Exec("INSERT INTO feedback_upvotes (feedback_id, user_id) VALUES (?, ?)", feedback.ID, user.ID).Error
}

// AttachTag links a tag to a feedback item if absent.
func (f *Factory) AttachTag(feedback *models.Feedback, tag *models.Tag) error {
	var n int64
	if err := f.db.Table("feedback_tags").
		Where("feedback_id = ? AND tag_id = ?", feedback.ID, tag.ID).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return f.db.Exec("INSERT INTO feedback_tags (feedback_id, tag_id) VALUES (?, ?)", feedback.ID, tag.ID).Error
}
