package handlers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProjectRequiresName(t *testing.T) {
	app := newTestApp()
	token := registerUser(t, app, uniqueName("pname"))

	status, result := doJSON(t, app, http.MethodPost, "/api/projects", token, map[string]string{
		"description": "no name given",
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Project name is required", result["message"])
}

func TestProjectOwnerVisibility(t *testing.T) {
	app := newTestApp()
	ownerToken := registerUser(t, app, uniqueName("owner"))
	otherToken := registerUser(t, app, uniqueName("other"))

	name := uniqueName("project")
	projectID := createProject(t, app, ownerToken, name)
	target := "/api/projects/" + strconv.Itoa(projectID)

	// Owner sees it in the list, with a files count.
	status, list := doJSONList(t, app, "/api/projects", ownerToken)
	require.Equal(t, http.StatusOK, status)
	var found bool
	for _, p := range list {
		if int(p["id"].(float64)) == projectID {
			found = true
			assert.Equal(t, name, p["name"])
			assert.Equal(t, float64(0), p["files_count"])
		}
	}
	assert.True(t, found, "expected project in owner's list")

	// Owner fetches the detail, files nested.
	status, detail := doJSON(t, app, http.MethodGet, target, ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, name, detail["name"])
	assert.NotNil(t, detail["files"])

	// A stranger gets a 404, not a 403.
	status, _ = doJSON(t, app, http.MethodGet, target, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// And the stranger's list stays empty of it.
	_, otherList := doJSONList(t, app, "/api/projects", otherToken)
	for _, p := range otherList {
		assert.NotEqual(t, projectID, int(p["id"].(float64)))
	}
}

// Membership grants access to sub-resources but not to the project list or
// detail; those stay owner-only.
func TestMembershipDoesNotExposeProjectDetail(t *testing.T) {
	app := newTestApp()
	ownerToken := registerUser(t, app, uniqueName("owner"))
	memberName := uniqueName("member")
	memberToken := registerUser(t, app, memberName)

	projectID := createProject(t, app, ownerToken, uniqueName("shared"))
	idStr := strconv.Itoa(projectID)

	status, _ := doJSON(t, app, http.MethodPost, "/api/projects/"+idStr+"/invite", ownerToken, map[string]string{
		"username": memberName,
	})
	require.Equal(t, http.StatusCreated, status)

	// Member can reach the task list...
	status, _ = doJSONList(t, app, "/api/projects/"+idStr+"/tasks", memberToken)
	assert.Equal(t, http.StatusOK, status)

	// ...but the project detail and list behave as if it did not exist.
	status, _ = doJSON(t, app, http.MethodGet, "/api/projects/"+idStr, memberToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, list := doJSONList(t, app, "/api/projects", memberToken)
	for _, p := range list {
		assert.NotEqual(t, projectID, int(p["id"].(float64)))
	}
}
