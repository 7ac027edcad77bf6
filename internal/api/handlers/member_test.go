package handlers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteUnknownUser(t *testing.T) {
	app := newTestApp()
	ownerToken := registerUser(t, app, uniqueName("inviter"))
	projectID := createProject(t, app, ownerToken, uniqueName("proj"))

	status, result := doJSON(t, app, http.MethodPost,
		"/api/projects/"+strconv.Itoa(projectID)+"/invite", ownerToken,
		map[string]string{"username": uniqueName("nobody")})
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", result["message"])
}

func TestInviteFlow(t *testing.T) {
	app := newTestApp()
	ownerToken := registerUser(t, app, uniqueName("owner"))
	inviteeName := uniqueName("invitee")
	inviteeToken := registerUser(t, app, inviteeName)
	strangerToken := registerUser(t, app, uniqueName("stranger"))

	projectID := createProject(t, app, ownerToken, uniqueName("proj"))
	idStr := strconv.Itoa(projectID)
	inviteTarget := "/api/projects/" + idStr + "/invite"

	// First invite succeeds.
	status, result := doJSON(t, app, http.MethodPost, inviteTarget, ownerToken,
		map[string]string{"username": inviteeName})
	require.Equal(t, http.StatusCreated, status)
	member, ok := result["member"].(map[string]interface{})
	require.True(t, ok, "expected member in invite response")
	assert.Equal(t, inviteeName, member["username"])
	assert.Equal(t, "member", member["role"])

	// Second invite of the same user is a conflict.
	status, result = doJSON(t, app, http.MethodPost, inviteTarget, ownerToken,
		map[string]string{"username": inviteeName})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User is already a project member", result["message"])

	// The new member now passes the membership check on sub-resources.
	status, _ = doJSONList(t, app, "/api/projects/"+idStr+"/tasks", inviteeToken)
	assert.Equal(t, http.StatusOK, status)

	// Strangers still do not.
	status, _ = doJSONList(t, app, "/api/projects/"+idStr+"/tasks", strangerToken)
	assert.Equal(t, http.StatusForbidden, status)

	// And the member shows up in the member list with its username.
	status, members := doJSONList(t, app, "/api/projects/"+idStr+"/members", ownerToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, members, 1)
	assert.Equal(t, inviteeName, members[0]["username"])
}

func TestInviteByNonOwner(t *testing.T) {
	app := newTestApp()
	ownerToken := registerUser(t, app, uniqueName("owner"))
	memberName := uniqueName("member")
	memberToken := registerUser(t, app, memberName)
	outsiderName := uniqueName("outsider")
	registerUser(t, app, outsiderName)

	projectID := createProject(t, app, ownerToken, uniqueName("proj"))
	inviteTarget := "/api/projects/" + strconv.Itoa(projectID) + "/invite"

	status, _ := doJSON(t, app, http.MethodPost, inviteTarget, ownerToken,
		map[string]string{"username": memberName})
	require.Equal(t, http.StatusCreated, status)

	// Even a member cannot invite; only the owner may.
	status, _ = doJSON(t, app, http.MethodPost, inviteTarget, memberToken,
		map[string]string{"username": outsiderName})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestInviteMissingProject(t *testing.T) {
	app := newTestApp()
	token := registerUser(t, app, uniqueName("lost"))

	status, _ := doJSON(t, app, http.MethodPost, "/api/projects/999999/invite", token,
		map[string]string{"username": "whoever"})
	assert.Equal(t, http.StatusNotFound, status)
}
