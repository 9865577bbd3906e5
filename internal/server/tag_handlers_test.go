package server

import (
	"fmt"
	"net/http"
	"testing"

	"pulseboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagEndpoints(t *testing.T) {
	s, app := newTestServer(t)
	alice := seedUser(t, s, models.RoleContributor)
	token := bearerFor(t, s, alice)

	resp := doRequest(t, app, http.MethodGet, "/api/tags", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	// Names are normalized on create.
	resp = doRequest(t, app, http.MethodPost, "/api/tags", token,
		map[string]string{"name": "  Dark-Mode  "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tag models.Tag
	decodeBody(t, resp, &tag)
	assert.Equal(t, "dark-mode", tag.Name)

	resp = doRequest(t, app, http.MethodPost, "/api/tags", token,
		map[string]string{"name": "DARK-MODE"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()

	path := fmt.Sprintf("/api/tags/%d", tag.ID)

	resp = doRequest(t, app, http.MethodPatch, path, token,
		map[string]string{"name": "Theming"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var renamed models.Tag
	decodeBody(t, resp, &renamed)
	assert.Equal(t, "theming", renamed.Name)

	resp = doRequest(t, app, http.MethodGet, "/api/tags", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tags []models.Tag
	decodeBody(t, resp, &tags)
	require.Len(t, tags, 1)

	resp = doRequest(t, app, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}
