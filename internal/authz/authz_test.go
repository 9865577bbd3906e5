package authz

import (
	"testing"

	"pulseboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthzTestDB(t *testing.T) *gorm.DB {
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

func TestCanSeeBoard(t *testing.T) {
	t.Parallel()

	admin := Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true}
	moderator := Actor{ID: 2, Role: models.RoleModerator, Authenticated: true}
	contributor := Actor{ID: 3, Role: models.RoleContributor, Authenticated: true}

	// Public boards are visible to everyone, members or not.
	assert.True(t, CanSeeBoard(Anonymous, models.VisibilityPublic, false))
	assert.True(t, CanSeeBoard(contributor, models.VisibilityPublic, false))
	assert.True(t, CanSeeBoard(admin, models.VisibilityPublic, false))

	// Private boards require membership or a privileged role.
	assert.False(t, CanSeeBoard(Anonymous, models.VisibilityPrivate, false))
	assert.False(t, CanSeeBoard(contributor, models.VisibilityPrivate, false))
	assert.True(t, CanSeeBoard(contributor, models.VisibilityPrivate, true))
	assert.True(t, CanSeeBoard(moderator, models.VisibilityPrivate, false))
	assert.True(t, CanSeeBoard(admin, models.VisibilityPrivate, false))
}

func TestRoleMonotonicity(t *testing.T) {
	t.Parallel()

	// Promotion along contributor -> moderator -> admin never loses a
	// permission, for any visibility/membership/authorship combination.
	ladder := []models.Role{models.RoleContributor, models.RoleModerator, models.RoleAdmin}

	for _, visibility := range []models.Visibility{models.VisibilityPublic, models.VisibilityPrivate} {
		for _, isMember := range []bool{false, true} {
			for _, authorID := range []uint{7, 99} {
				var prev []bool
				for _, role := range ladder {
					a := Actor{ID: 7, Role: role, Authenticated: true}
					cur := []bool{
						CanSeeBoard(a, visibility, isMember),
						CanCreateBoard(a),
						CanUpdateBoard(a),
						CanDeleteBoard(a),
						CanManageMembers(a),
						CanContribute(a, visibility, isMember),
						CanModifyContent(a, authorID),
					}
					for i := range cur {
						if prev != nil && prev[i] {
							assert.True(t, cur[i],
								"permission %d lost on promotion to %s", i, role)
						}
					}
					prev = cur
				}
			}
		}
	}
}

func TestCanContribute(t *testing.T) {
	t.Parallel()

	admin := Actor{ID: 1, Role: models.RoleAdmin, Authenticated: true}
	moderator := Actor{ID: 2, Role: models.RoleModerator, Authenticated: true}
	contributor := Actor{ID: 3, Role: models.RoleContributor, Authenticated: true}

	// Public boards accept posts from any authenticated actor.
	assert.True(t, CanContribute(contributor, models.VisibilityPublic, false))
	assert.True(t, CanContribute(admin, models.VisibilityPublic, false))
	assert.False(t, CanContribute(Anonymous, models.VisibilityPublic, false))

	// Private boards require actual membership, role notwithstanding.
	assert.False(t, CanContribute(contributor, models.VisibilityPrivate, false))
	assert.False(t, CanContribute(moderator, models.VisibilityPrivate, false))
	assert.False(t, CanContribute(admin, models.VisibilityPrivate, false))
	assert.True(t, CanContribute(contributor, models.VisibilityPrivate, true))
	assert.True(t, CanContribute(admin, models.VisibilityPrivate, true))
}

func TestCanVote(t *testing.T) {
	t.Parallel()

	moderator := Actor{ID: 2, Role: models.RoleModerator, Authenticated: true}
	contributor := Actor{ID: 3, Role: models.RoleContributor, Authenticated: true}

	// Voting follows visibility, so privileged roles vote without joining.
	assert.True(t, CanVote(moderator, models.VisibilityPrivate, false))
	assert.True(t, CanVote(contributor, models.VisibilityPrivate, true))
	assert.True(t, CanVote(contributor, models.VisibilityPublic, false))
	assert.False(t, CanVote(contributor, models.VisibilityPrivate, false))
	assert.False(t, CanVote(Anonymous, models.VisibilityPublic, false))
}

func TestCanModifyContent(t *testing.T) {
	t.Parallel()

	author := Actor{ID: 5, Role: models.RoleContributor, Authenticated: true}
	other := Actor{ID: 6, Role: models.RoleContributor, Authenticated: true}
	moderator := Actor{ID: 7, Role: models.RoleModerator, Authenticated: true}

	assert.True(t, CanModifyContent(author, 5))
	assert.False(t, CanModifyContent(other, 5))
	assert.True(t, CanModifyContent(moderator, 5))
	assert.False(t, CanModifyContent(Anonymous, 5))
}

// TestScopesMatchPredicate verifies the core invariant: for every actor and
// board, the board is admitted by BoardScope exactly when CanSeeBoard says it
// should be, and feedback/comment scopes inherit the same answer.
func TestScopesMatchPredicate(t *testing.T) {
	t.Parallel()

	db := setupAuthzTestDB(t)

	users := map[string]*models.User{
		"admin":       {Username: "admin", Email: "admin@x.dev", Password: "x", Role: models.RoleAdmin, Active: true},
		"moderator":   {Username: "mod", Email: "mod@x.dev", Password: "x", Role: models.RoleModerator, Active: true},
		"member":      {Username: "member", Email: "member@x.dev", Password: "x", Role: models.RoleContributor, Active: true},
		"contributor": {Username: "outsider", Email: "out@x.dev", Password: "x", Role: models.RoleContributor, Active: true},
	}
	for _, u := range users {
		require.NoError(t, db.Create(u).Error)
	}

	boards := []*models.Board{
		{Name: "public board", Visibility: models.VisibilityPublic},
		{Name: "private board", Visibility: models.VisibilityPrivate},
		{Name: "private joined", Visibility: models.VisibilityPrivate},
	}
	for _, b := range boards {
		require.NoError(t, db.Create(b).Error)
	}

	// "member" belongs to the second private board only.
	require.NoError(t, db.Exec(
		"INSERT INTO board_members (board_id, user_id) VALUES (?, ?)",
		boards[2].ID, users["member"].ID).Error)

	// One feedback item and one comment per board.
	for _, b := range boards {
		fb := &models.Feedback{
			Title:    "needs inspection",
			Content:  "some detail here",
			Status:   models.StatusOpen,
			Priority: models.PriorityMedium,
			BoardID:  b.ID,
			AuthorID: users["admin"].ID,
		}
		require.NoError(t, db.Create(fb).Error)
		require.NoError(t, db.Create(&models.Comment{
			Content:    "a comment",
			FeedbackID: fb.ID,
			AuthorID:   users["admin"].ID,
		}).Error)
	}

	actors := map[string]Actor{
		"anonymous":   Anonymous,
		"admin":       FromUser(users["admin"]),
		"moderator":   FromUser(users["moderator"]),
		"member":      FromUser(users["member"]),
		"contributor": FromUser(users["contributor"]),
	}

	for name, actor := range actors {
		var visible []models.Board
		require.NoError(t, db.Scopes(BoardScope(actor)).Find(&visible).Error)
		inScope := make(map[uint]bool, len(visible))
		for _, b := range visible {
			inScope[b.ID] = true
		}

		var visibleFeedback []models.Feedback
		require.NoError(t, db.Scopes(FeedbackScope(actor)).Find(&visibleFeedback).Error)
		feedbackBoards := make(map[uint]bool)
		for _, fb := range visibleFeedback {
			feedbackBoards[fb.BoardID] = true
		}

		var visibleComments []models.Comment
		require.NoError(t, db.Scopes(CommentScope(actor)).Find(&visibleComments).Error)
		commentFeedback := make(map[uint]bool)
		for _, cm := range visibleComments {
			commentFeedback[cm.FeedbackID] = true
		}

		for _, b := range boards {
			isMember := false
			if actor.Authenticated {
				var n int64
				require.NoError(t, db.Table("board_members").
					Where("board_id = ? AND user_id = ?", b.ID, actor.ID).
					Count(&n).Error)
				isMember = n > 0
			}
			want := CanSeeBoard(actor, b.Visibility, isMember)
			assert.Equal(t, want, inScope[b.ID],
				"%s on %q: scope and predicate disagree", name, b.Name)
			assert.Equal(t, want, feedbackBoards[b.ID],
				"%s on %q: feedback scope drifted", name, b.Name)

			var fb models.Feedback
			require.NoError(t, db.Where("board_id = ?", b.ID).First(&fb).Error)
			assert.Equal(t, want, commentFeedback[fb.ID],
				"%s on %q: comment scope drifted", name, b.Name)
		}

		// EXISTS-based membership test must not duplicate rows.
		seen := make(map[uint]int)
		for _, b := range visible {
			seen[b.ID]++
		}
		for id, n := range seen {
			assert.Equal(t, 1, n, "%s: board %d returned %d times", name, id, n)
		}
	}
}

// A member of a public board must see it exactly once even though both
// halves of the OR admit it.
func TestBoardScopeNoDuplicatesForPublicMember(t *testing.T) {
	t.Parallel()

	db := setupAuthzTestDB(t)

	user := &models.User{Username: "dup", Email: "dup@x.dev", Password: "x", Role: models.RoleContributor, Active: true}
	require.NoError(t, db.Create(user).Error)
	board := &models.Board{Name: "public joined", Visibility: models.VisibilityPublic}
	require.NoError(t, db.Create(board).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO board_members (board_id, user_id) VALUES (?, ?)",
		board.ID, user.ID).Error)

	var rows []models.Board
	require.NoError(t, db.Scopes(BoardScope(FromUser(user))).Find(&rows).Error)
	assert.Len(t, rows, 1)
}
