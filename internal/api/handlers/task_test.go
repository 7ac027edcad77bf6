package handlers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskDefaults(t *testing.T) {
	app := newTestApp()
	token := registerUser(t, app, uniqueName("tasker"))
	projectID := createProject(t, app, token, uniqueName("proj"))
	target := "/api/projects/" + strconv.Itoa(projectID) + "/tasks"

	status, task := doJSON(t, app, http.MethodPost, target, token, map[string]string{
		"title": "Just a title",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "todo", task["status"])
	assert.Equal(t, "medium", task["priority"])
	assert.Equal(t, float64(0), task["progress"])
	assert.Nil(t, task["due_date"])
	assert.Nil(t, task["assigned_to"])
}

func TestCreateTaskWithFields(t *testing.T) {
	app := newTestApp()
	token := registerUser(t, app, uniqueName("tasker"))
	projectID := createProject(t, app, token, uniqueName("proj"))
	target := "/api/projects/" + strconv.Itoa(projectID) + "/tasks"

	status, task := doJSON(t, app, http.MethodPost, target, token, map[string]interface{}{
		"title":       "Ship it",
		"description": "with everything set",
		"status":      "in_progress",
		"priority":    "high",
		"progress":    40,
		"due_date":    "2026-09-15",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "in_progress", task["status"])
	assert.Equal(t, "high", task["priority"])
	assert.Equal(t, float64(40), task["progress"])
	assert.NotNil(t, task["due_date"])

	status, list := doJSONList(t, app, target, token)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "Ship it", list[0]["title"])
}

func TestCreateTaskValidation(t *testing.T) {
	app := newTestApp()
	token := registerUser(t, app, uniqueName("tasker"))
	projectID := createProject(t, app, token, uniqueName("proj"))
	target := "/api/projects/" + strconv.Itoa(projectID) + "/tasks"

	// Missing title.
	status, _ := doJSON(t, app, http.MethodPost, target, token, map[string]string{
		"description": "no title",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Progress outside 0..100.
	status, _ = doJSON(t, app, http.MethodPost, target, token, map[string]interface{}{
		"title":    "too far along",
		"progress": 150,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Unknown status value.
	status, _ = doJSON(t, app, http.MethodPost, target, token, map[string]string{
		"title":  "odd status",
		"status": "blocked",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTasksRequireMembership(t *testing.T) {
	app := newTestApp()
	ownerToken := registerUser(t, app, uniqueName("owner"))
	memberName := uniqueName("member")
	memberToken := registerUser(t, app, memberName)
	strangerToken := registerUser(t, app, uniqueName("stranger"))

	projectID := createProject(t, app, ownerToken, uniqueName("proj"))
	idStr := strconv.Itoa(projectID)
	target := "/api/projects/" + idStr + "/tasks"

	status, _ := doJSON(t, app, http.MethodPost, "/api/projects/"+idStr+"/invite", ownerToken,
		map[string]string{"username": memberName})
	require.Equal(t, http.StatusCreated, status)

	// Members may create tasks.
	status, _ = doJSON(t, app, http.MethodPost, target, memberToken, map[string]string{
		"title": "member task",
	})
	assert.Equal(t, http.StatusCreated, status)

	// Strangers may not, and a missing project is a 404 rather than 403.
	status, _ = doJSON(t, app, http.MethodPost, target, strangerToken, map[string]string{
		"title": "stranger task",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = doJSONList(t, app, "/api/projects/999999/tasks", strangerToken)
	assert.Equal(t, http.StatusNotFound, status)
}
