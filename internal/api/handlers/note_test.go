package handlers_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesNewestFirst(t *testing.T) {
	app := newTestApp()
	token := registerUser(t, app, uniqueName("noter"))
	projectID := createProject(t, app, token, uniqueName("proj"))
	target := "/api/projects/" + strconv.Itoa(projectID) + "/notes"

	status, _ := doJSON(t, app, http.MethodPost, target, token, map[string]string{
		"content": "first note",
	})
	require.Equal(t, http.StatusCreated, status)
	time.Sleep(20 * time.Millisecond)
	status, _ = doJSON(t, app, http.MethodPost, target, token, map[string]string{
		"content": "second note",
	})
	require.Equal(t, http.StatusCreated, status)

	status, notes := doJSONList(t, app, target, token)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, notes, 2)
	assert.Equal(t, "second note", notes[0]["content"])
	assert.Equal(t, "first note", notes[1]["content"])
}

func TestNoteRequiresContent(t *testing.T) {
	app := newTestApp()
	token := registerUser(t, app, uniqueName("noter"))
	projectID := createProject(t, app, token, uniqueName("proj"))

	status, result := doJSON(t, app, http.MethodPost,
		"/api/projects/"+strconv.Itoa(projectID)+"/notes", token, map[string]string{})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Note content is required", result["message"])
}

func TestNoteRecordsAuthor(t *testing.T) {
	app := newTestApp()
	ownerToken := registerUser(t, app, uniqueName("owner"))
	memberName := uniqueName("member")
	memberToken := registerUser(t, app, memberName)

	projectID := createProject(t, app, ownerToken, uniqueName("proj"))
	idStr := strconv.Itoa(projectID)

	status, _ := doJSON(t, app, http.MethodPost, "/api/projects/"+idStr+"/invite", ownerToken,
		map[string]string{"username": memberName})
	require.Equal(t, http.StatusCreated, status)

	status, note := doJSON(t, app, http.MethodPost, "/api/projects/"+idStr+"/notes", memberToken,
		map[string]string{"content": "from the member"})
	require.Equal(t, http.StatusCreated, status)
	assert.NotNil(t, note["user_id"])

	// The owner sees the member's note.
	status, notes := doJSONList(t, app, "/api/projects/"+idStr+"/notes", ownerToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, notes, 1)
	assert.Equal(t, "from the member", notes[0]["content"])
	assert.Equal(t, note["user_id"], notes[0]["user_id"])
}
