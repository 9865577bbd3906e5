package repository

import (
	"testing"
	"time"

	"pulseboard/internal/authz"
	"pulseboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackRepository_ToggleVote(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := testCtx()

	author := mustUser(t, db, models.RoleContributor)
	voterA := mustUser(t, db, models.RoleContributor)
	voterB := mustUser(t, db, models.RoleContributor)
	board := mustBoard(t, db, models.VisibilityPublic)
	feedback := mustFeedback(t, db, board.ID, author.ID)

	action, count, err := repo.ToggleVote(ctx, feedback.ID, voterA.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteAdded, action)
	assert.Equal(t, int64(1), count)

	action, count, err = repo.ToggleVote(ctx, feedback.ID, voterB.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteAdded, action)
	assert.Equal(t, int64(2), count)

	// Toggling again removes only the caller's vote.
	action, count, err = repo.ToggleVote(ctx, feedback.ID, voterA.ID)
	require.NoError(t, err)
	assert.Equal(t, VoteRemoved, action)
	assert.Equal(t, int64(1), count)

	got, err := repo.GetByID(ctx, feedback.ID, actorFor(voterB))
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpvoteCount)
	assert.True(t, got.Upvoted)

	got, err = repo.GetByID(ctx, feedback.ID, actorFor(voterA))
	require.NoError(t, err)
	assert.False(t, got.Upvoted)
}

func TestFeedbackRepository_GetByID_Visibility(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	boardRepo := NewBoardRepository(db)
	ctx := testCtx()

	author := mustUser(t, db, models.RoleContributor)
	outsider := mustUser(t, db, models.RoleContributor)
	member := mustUser(t, db, models.RoleContributor)
	moderator := mustUser(t, db, models.RoleModerator)
	board := mustBoard(t, db, models.VisibilityPrivate)
	feedback := mustFeedback(t, db, board.ID, author.ID)

	require.NoError(t, boardRepo.AddMember(ctx, board.ID, member.ID))

	// Invisible and absent read the same.
	_, err := repo.GetByID(ctx, feedback.ID, actorFor(outsider))
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	_, err = repo.GetByID(ctx, feedback.ID, authz.Anonymous)
	require.Error(t, err)

	_, err = repo.GetByID(ctx, feedback.ID, actorFor(member))
	assert.NoError(t, err)

	_, err = repo.GetByID(ctx, feedback.ID, actorFor(moderator))
	assert.NoError(t, err)
}

func TestFeedbackRepository_List_Filters(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := testCtx()

	alice := mustUser(t, db, models.RoleContributor)
	bob := mustUser(t, db, models.RoleContributor)
	board := mustBoard(t, db, models.VisibilityPublic)
	other := mustBoard(t, db, models.VisibilityPublic)

	darkMode := &models.Feedback{
		Title: "Dark mode support", Content: "Please add a dark theme to the app",
		Status: models.StatusOpen, Priority: models.PriorityHigh,
		BoardID: board.ID, AuthorID: alice.ID,
	}
	exportCSV := &models.Feedback{
		Title: "Export to CSV", Content: "Allow exporting the feedback list",
		Status: models.StatusCompleted, Priority: models.PriorityLow,
		BoardID: board.ID, AuthorID: bob.ID,
	}
	search := &models.Feedback{
		Title: "Faster search", Content: "Search feels sluggish on big boards",
		Status: models.StatusOpen, Priority: models.PriorityMedium,
		BoardID: other.ID, AuthorID: alice.ID,
	}
	for _, f := range []*models.Feedback{darkMode, exportCSV, search} {
		require.NoError(t, db.Omit("Tags", "Upvoters").Create(f).Error)
	}

	list := func(filter FeedbackFilter) []*models.Feedback {
		t.Helper()
		filter.Limit = 50
		items, err := repo.List(ctx, authz.Anonymous, filter)
		require.NoError(t, err)
		return items
	}

	assert.Len(t, list(FeedbackFilter{}), 3)
	assert.Len(t, list(FeedbackFilter{Status: models.StatusOpen}), 2)
	assert.Len(t, list(FeedbackFilter{Priority: models.PriorityLow}), 1)
	assert.Len(t, list(FeedbackFilter{BoardID: board.ID}), 2)
	assert.Len(t, list(FeedbackFilter{AuthorID: alice.ID}), 2)
	assert.Len(t, list(FeedbackFilter{BoardID: board.ID, Status: models.StatusOpen}), 1)

	// Case-insensitive search over title and content.
	found := list(FeedbackFilter{Query: "DARK"})
	require.Len(t, found, 1)
	assert.Equal(t, darkMode.ID, found[0].ID)

	assert.Len(t, list(FeedbackFilter{Query: "sluggish"}), 1)

	// Search also matches the author's username and real name.
	byAuthor := list(FeedbackFilter{Query: alice.Username})
	assert.Len(t, byAuthor, 2)

	require.NoError(t, db.Model(bob).Updates(map[string]any{"first_name": "Robert", "last_name": "Ferguson"}).Error)
	byFirstName := list(FeedbackFilter{Query: "robert"})
	require.Len(t, byFirstName, 1)
	assert.Equal(t, exportCSV.ID, byFirstName[0].ID)
	assert.Len(t, list(FeedbackFilter{Query: "FERGUSON"}), 1)

	assert.Empty(t, list(FeedbackFilter{Query: "no such phrase"}))
}

func TestFeedbackRepository_List_Ordering(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := testCtx()

	author := mustUser(t, db, models.RoleContributor)
	voter := mustUser(t, db, models.RoleContributor)
	board := mustBoard(t, db, models.VisibilityPublic)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	titles := []string{"banana", "apple", "cherry"}
	var ids []uint
	for i, title := range titles {
		f := &models.Feedback{
			Title: title, Content: "content long enough here",
			Status: models.StatusOpen, Priority: models.PriorityMedium,
			BoardID: board.ID, AuthorID: author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Omit("Tags", "Upvoters").Create(f).Error)
		ids = append(ids, f.ID)
	}
	_, _, err := repo.ToggleVote(ctx, ids[1], voter.ID)
	require.NoError(t, err)

	titlesOf := func(items []*models.Feedback) []string {
		var out []string
		for _, f := range items {
			out = append(out, f.Title)
		}
		return out
	}

	items, err := repo.List(ctx, authz.Anonymous, FeedbackFilter{Ordering: "title", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana", "cherry"}, titlesOf(items))

	items, err = repo.List(ctx, authz.Anonymous, FeedbackFilter{Ordering: "-created_at", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"cherry", "apple", "banana"}, titlesOf(items))

	items, err = repo.List(ctx, authz.Anonymous, FeedbackFilter{Ordering: "-upvote_count", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "apple", items[0].Title)

	// Unknown ordering fields fall back to newest-first instead of erroring.
	items, err = repo.List(ctx, authz.Anonymous, FeedbackFilter{Ordering: "password; DROP TABLE users", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"cherry", "apple", "banana"}, titlesOf(items))
}

func TestFeedbackRepository_ReplaceTags(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	tagRepo := NewTagRepository(db)
	ctx := testCtx()

	author := mustUser(t, db, models.RoleContributor)
	board := mustBoard(t, db, models.VisibilityPublic)
	feedback := mustFeedback(t, db, board.ID, author.ID)

	bug := &models.Tag{Name: "bug"}
	ux := &models.Tag{Name: "ux"}
	perf := &models.Tag{Name: "perf"}
	for _, tag := range []*models.Tag{bug, ux, perf} {
		require.NoError(t, tagRepo.Create(ctx, tag))
	}

	require.NoError(t, repo.ReplaceTags(ctx, feedback.ID, []uint{bug.ID, ux.ID}))
	got, err := repo.GetByID(ctx, feedback.ID, authz.Anonymous)
	require.NoError(t, err)
	require.Len(t, got.Tags, 2)

	// Replacement swaps the whole set.
	require.NoError(t, repo.ReplaceTags(ctx, feedback.ID, []uint{perf.ID}))
	got, err = repo.GetByID(ctx, feedback.ID, authz.Anonymous)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "perf", got.Tags[0].Name)

	// Empty set clears all tags.
	require.NoError(t, repo.ReplaceTags(ctx, feedback.ID, nil))
	got, err = repo.GetByID(ctx, feedback.ID, authz.Anonymous)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestFeedbackRepository_Delete_Cascades(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	tagRepo := NewTagRepository(db)
	ctx := testCtx()

	author := mustUser(t, db, models.RoleContributor)
	board := mustBoard(t, db, models.VisibilityPublic)
	feedback := mustFeedback(t, db, board.ID, author.ID)
	keep := mustFeedback(t, db, board.ID, author.ID)

	tag := &models.Tag{Name: "bug"}
	require.NoError(t, tagRepo.Create(ctx, tag))
	require.NoError(t, repo.ReplaceTags(ctx, feedback.ID, []uint{tag.ID}))
	_, _, err := repo.ToggleVote(ctx, feedback.ID, author.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Comment{Content: "a comment", FeedbackID: feedback.ID, AuthorID: author.ID}).Error)

	require.NoError(t, repo.Delete(ctx, feedback.ID))

	_, err = repo.GetByID(ctx, feedback.ID, actorFor(author))
	assert.Error(t, err)

	var comments, votes, links int64
	require.NoError(t, db.Model(&models.Comment{}).Where("feedback_id = ?", feedback.ID).Count(&comments).Error)
	require.NoError(t, db.Table("feedback_upvotes").Where("feedback_id = ?", feedback.ID).Count(&votes).Error)
	require.NoError(t, db.Table("feedback_tags").Where("feedback_id = ?", feedback.ID).Count(&links).Error)
	assert.Zero(t, comments)
	assert.Zero(t, votes)
	assert.Zero(t, links)

	// The tag itself and sibling feedback survive.
	_, err = tagRepo.GetByID(ctx, tag.ID)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, keep.ID, actorFor(author))
	assert.NoError(t, err)
}

func TestFeedbackRepository_CountsByStatus(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := testCtx()

	author := mustUser(t, db, models.RoleContributor)
	outsider := mustUser(t, db, models.RoleContributor)
	public := mustBoard(t, db, models.VisibilityPublic)
	private := mustBoard(t, db, models.VisibilityPrivate)

	create := func(boardID uint, status models.FeedbackStatus) {
		t.Helper()
		f := &models.Feedback{
			Title: "Counted item", Content: "content long enough here",
			Status: status, Priority: models.PriorityMedium,
			BoardID: boardID, AuthorID: author.ID,
		}
		require.NoError(t, db.Omit("Tags", "Upvoters").Create(f).Error)
	}

	create(public.ID, models.StatusOpen)
	create(public.ID, models.StatusOpen)
	create(public.ID, models.StatusCompleted)
	create(public.ID, models.StatusInProgress)
	create(public.ID, models.StatusUnderReview)
	create(public.ID, models.StatusRejected)
	create(private.ID, models.StatusOpen)

	// Non-member sees only the public board's items.
	counts, err := repo.CountsByStatus(ctx, actorFor(outsider))
	require.NoError(t, err)
	assert.Equal(t, int64(6), counts.Total)
	assert.Equal(t, int64(2), counts.Active)
	assert.Equal(t, int64(1), counts.Completed)
	assert.Equal(t, int64(1), counts.InProgress)
	assert.Equal(t, int64(1), counts.UnderReview)

	// An admin sees the private board too.
	admin := mustUser(t, db, models.RoleAdmin)
	counts, err = repo.CountsByStatus(ctx, actorFor(admin))
	require.NoError(t, err)
	assert.Equal(t, int64(7), counts.Total)
	assert.Equal(t, int64(3), counts.Active)
}

func TestFeedbackRepository_TopVoted(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := testCtx()

	author := mustUser(t, db, models.RoleContributor)
	voters := []*models.User{
		mustUser(t, db, models.RoleContributor),
		mustUser(t, db, models.RoleContributor),
		mustUser(t, db, models.RoleContributor),
	}
	board := mustBoard(t, db, models.VisibilityPublic)

	// votes: first=1, second=3, third=1, fourth=0
	first := mustFeedback(t, db, board.ID, author.ID)
	second := mustFeedback(t, db, board.ID, author.ID)
	third := mustFeedback(t, db, board.ID, author.ID)
	mustFeedback(t, db, board.ID, author.ID)

	vote := func(feedbackID, userID uint) {
		t.Helper()
		_, _, err := repo.ToggleVote(ctx, feedbackID, userID)
		require.NoError(t, err)
	}
	vote(first.ID, voters[0].ID)
	for _, v := range voters {
		vote(second.ID, v.ID)
	}
	vote(third.ID, voters[1].ID)

	top, err := repo.TopVoted(ctx, actorFor(author), 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, second.ID, top[0].ID)
	assert.Equal(t, 3, top[0].UpvoteCount)
	// Equal counts break ties by lower ID.
	assert.Equal(t, first.ID, top[1].ID)
	assert.Equal(t, third.ID, top[2].ID)
}

func TestFeedbackRepository_Trends(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)
	ctx := testCtx()

	author := mustUser(t, db, models.RoleContributor)
	board := mustBoard(t, db, models.VisibilityPublic)

	day := func(offset int) time.Time {
		return time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}
	create := func(at time.Time) {
		t.Helper()
		f := &models.Feedback{
			Title: "Trend item", Content: "content long enough here",
			Status: models.StatusOpen, Priority: models.PriorityMedium,
			BoardID: board.ID, AuthorID: author.ID,
			CreatedAt: at,
		}
		require.NoError(t, db.Omit("Tags", "Upvoters").Create(f).Error)
	}

	create(day(-10)) // outside the window
	create(day(0))
	create(day(0))
	create(day(3)) // day(1) and day(2) stay empty

	since := day(-5)
	points, err := repo.Trends(ctx, actorFor(author), since)
	require.NoError(t, err)

	// Sparse: empty days are omitted, not zero-filled.
	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-10", points[0].Day)
	assert.Equal(t, int64(2), points[0].Count)
	assert.Equal(t, "2026-08-13", points[1].Day)
	assert.Equal(t, int64(1), points[1].Count)
}
