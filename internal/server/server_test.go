package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"pulseboard/internal/config"
	"pulseboard/internal/models"
	"pulseboard/internal/repository"
	"pulseboard/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testPassword satisfies the registration password policy.
const testPassword = "SecurePass12!@"

func setupServerTestDB(t *testing.T) *gorm.DB {
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

// newTestServer wires a Server against in-memory SQLite and miniredis. The
// Prometheus middleware is left out so repeated construction in one test
// binary does not re-register collectors.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db := setupServerTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret: "test-secret-not-for-production",
		Env:       "test",
	}

	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)

	s := &Server{
		config:       cfg,
		db:           db,
		redis:        rdb,
		userRepo:     userRepo,
		boardRepo:    boardRepo,
		feedbackRepo: feedbackRepo,
		commentRepo:  commentRepo,
		tagRepo:      tagRepo,
	}
	s.userService = service.NewUserService(userRepo)
	s.boardService = service.NewBoardService(boardRepo, userRepo)
	s.feedbackService = service.NewFeedbackService(feedbackRepo, boardRepo, tagRepo)
	s.commentService = service.NewCommentService(commentRepo, feedbackRepo, boardRepo)
	s.tagService = service.NewTagService(tagRepo)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

var serverUserSeq atomic.Int64

// seedUser inserts a user directly. The password column holds a placeholder,
// so seeded users authenticate via issued tokens, not login.
func seedUser(t *testing.T, s *Server, role models.Role) *models.User {
	t.Helper()
	n := serverUserSeq.Add(1)
	user := &models.User{
		Username: fmt.Sprintf("seeded_%d", n),
		Email:    fmt.Sprintf("seeded%d@example.com", n),
		Password: "not-a-real-hash",
		Role:     role,
		Active:   true,
	}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

func seedBoard(t *testing.T, s *Server, visibility models.Visibility) *models.Board {
	t.Helper()
	board := &models.Board{Name: "Board " + string(visibility), Visibility: visibility}
	require.NoError(t, s.db.Create(board).Error)
	return board
}

func seedFeedback(t *testing.T, s *Server, boardID, authorID uint) *models.Feedback {
	t.Helper()
	feedback := &models.Feedback{
		Title:    "Seeded feedback item",
		Content:  "Seeded feedback content for tests",
		Status:   models.StatusOpen,
		Priority: models.PriorityMedium,
		BoardID:  boardID,
		AuthorID: authorID,
	}
	require.NoError(t, s.db.Omit("Tags", "Upvoters").Create(feedback).Error)
	return feedback
}

// bearerFor issues a real access token for the user.
func bearerFor(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	pair, err := s.generateTokenPair(user.ID, user.Username)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

// doRequest performs a JSON request against the app. token may be empty.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
