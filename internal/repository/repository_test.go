package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Board{},
		&models.Tag{},
		&models.Feedback{},
		&models.Comment{},
	))
	return db
}

// userSeq keeps usernames unique across parallel tests.
var userSeq atomic.Int64

func mustUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	n := userSeq.Add(1)
	user := &models.User{
		Username: fmt.Sprintf("user_%d", n),
		Email:    fmt.Sprintf("user%d@example.com", n),
		Password: "irrelevant-hash",
		Role:     role,
		Active:   true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func mustBoard(t *testing.T, db *gorm.DB, visibility models.Visibility) *models.Board {
	t.Helper()
	board := &models.Board{Name: "Board " + t.Name(), Visibility: visibility}
	require.NoError(t, db.Create(board).Error)
	return board
}

func mustFeedback(t *testing.T, db *gorm.DB, boardID, authorID uint) *models.Feedback {
	t.Helper()
	feedback := &models.Feedback{
		Title:    "Feedback title",
		Content:  "Feedback content long enough",
		Status:   models.StatusOpen,
		Priority: models.PriorityMedium,
		BoardID:  boardID,
		AuthorID: authorID,
	}
	require.NoError(t, db.Omit("Tags", "Upvoters").Create(feedback).Error)
	return feedback
}

func actorFor(u *models.User) authz.Actor {
	return authz.FromUser(u)
}

func testCtx() context.Context {
	return context.Background()
}
