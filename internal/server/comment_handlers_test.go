package server

import (
	"fmt"
	"net/http"
	"testing"

	"pulseboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	s, app := newTestServer(t)
	alice := seedUser(t, s, models.RoleContributor)
	bob := seedUser(t, s, models.RoleContributor)
	moderator := seedUser(t, s, models.RoleModerator)
	board := seedBoard(t, s, models.VisibilityPublic)
	item := seedFeedback(t, s, board.ID, alice.ID)

	resp := doRequest(t, app, http.MethodPost, "/api/comments", bearerFor(t, s, alice), map[string]any{
		"feedback_id": item.ID,
		"content":     "  First!  ",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeBody(t, resp, &comment)
	assert.Equal(t, "First!", comment.Content)
	assert.Equal(t, alice.ID, comment.AuthorID)

	resp = doRequest(t, app, http.MethodPost, "/api/comments", bearerFor(t, s, bob), map[string]any{
		"feedback_id": item.ID,
		"content":     "Seconded, this would help a lot",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// Listing is public and ordered oldest first.
	resp = doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/comments?feedback_id=%d", item.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []models.Comment
	decodeBody(t, resp, &comments)
	require.Len(t, comments, 2)
	assert.Equal(t, "First!", comments[0].Content)

	resp = doRequest(t, app, http.MethodGet, "/api/comments", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	path := fmt.Sprintf("/api/comments/%d", comment.ID)

	resp = doRequest(t, app, http.MethodPatch, path,
		bearerFor(t, s, bob), map[string]string{"content": "Edited by someone else"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPatch, path,
		bearerFor(t, s, alice), map[string]string{"content": "First! (edited)"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var edited models.Comment
	decodeBody(t, resp, &edited)
	assert.Equal(t, "First! (edited)", edited.Content)

	// Moderators can remove any comment.
	resp = doRequest(t, app, http.MethodDelete, path, bearerFor(t, s, moderator), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCommentOnInvisibleFeedback(t *testing.T) {
	s, app := newTestServer(t)
	alice := seedUser(t, s, models.RoleContributor)
	bob := seedUser(t, s, models.RoleContributor)
	private := seedBoard(t, s, models.VisibilityPrivate)
	require.NoError(t, s.db.Exec(
		"INSERT INTO board_members (board_id, user_id) VALUES (?, ?)", private.ID, alice.ID).Error)
	item := seedFeedback(t, s, private.ID, alice.ID)

	body := map[string]any{
		"feedback_id": item.ID,
		"content":     "Can outsiders even see this?",
	}

	resp := doRequest(t, app, http.MethodPost, "/api/comments", bearerFor(t, s, bob), body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodPost, "/api/comments", bearerFor(t, s, alice), body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	// The listing hides comments whose parent is invisible.
	resp = doRequest(t, app, http.MethodGet,
		fmt.Sprintf("/api/comments?feedback_id=%d", item.ID), bearerFor(t, s, bob), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}
