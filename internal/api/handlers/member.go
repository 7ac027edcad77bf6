package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"taskflow/internal/models"
	"taskflow/pkg/logger"
)

func (h *Handler) ListMembers(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.identityError(c, err)
	}
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid project ID",
		})
	}
	if err := h.projectAccess(projectID, user.ID); err != nil {
		return h.accessError(c, err, user.ID, projectID)
	}

	rows, err := h.DB.Query(`
        SELECT m.id, m.user_id, u.username, m.role, m.joined_at
        FROM project_members m
        JOIN users u ON u.id = m.user_id
        WHERE m.project_id = $1
        ORDER BY m.id`, projectID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching members", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching members",
		})
	}
	defer rows.Close()

	members := []models.ProjectMember{}
	for rows.Next() {
		var m models.ProjectMember
		if err := rows.Scan(&m.ID, &m.UserID, &m.Username, &m.Role, &m.JoinedAt); err != nil {
			logger.ErrorLogger.Error("Error scanning members", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error fetching members",
			})
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over members", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching members",
		})
	}

	return c.JSON(members)
}

// InviteMember adds a user to the project by username. Only the owner may
// invite; members cannot grow the member set.
func (h *Handler) InviteMember(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.identityError(c, err)
	}
	projectID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid project ID",
		})
	}

	var ownerID int
	err = h.DB.QueryRow(
		"SELECT owner_id FROM projects WHERE id = $1",
		projectID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Project not found",
		})
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching project", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching project",
		})
	}
	if ownerID != user.ID {
		logger.SecurityLogger.Warn("Invite by non-owner",
			zap.Int("user_id", user.ID), zap.Int("project_id", projectID))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Forbidden",
		})
	}

	type InviteRequest struct {
		Username string `json:"username" validate:"required"`
	}

	var req InviteRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in invite", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during invite", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username is required",
		})
	}

	var invitee models.User
	err = h.DB.QueryRow(
		"SELECT id, username FROM users WHERE username = $1",
		req.Username).Scan(&invitee.ID, &invitee.Username)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching invitee", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching user",
		})
	}

	var alreadyMember bool
	err = h.DB.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)",
		projectID, invitee.ID).Scan(&alreadyMember)
	if err != nil {
		logger.ErrorLogger.Error("Error checking membership", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error checking membership",
		})
	}
	if alreadyMember {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "User is already a project member",
		})
	}

	member := models.ProjectMember{
		ProjectID: projectID,
		UserID:    invitee.ID,
		Username:  invitee.Username,
		Role:      "member",
	}
	err = h.DB.QueryRow(`
        INSERT INTO project_members (project_id, user_id, role)
        VALUES ($1, $2, 'member')
        RETURNING id, joined_at`,
		projectID, invitee.ID).Scan(&member.ID, &member.JoinedAt)
	if err != nil {
		// Concurrent invite of the same user trips the unique pair
		// constraint; answer as if the pre-check had caught it.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "User is already a project member",
			})
		}
		logger.ErrorLogger.Error("Error inviting member", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error inviting member",
		})
	}

	logger.AuditLogger.Info("Member invited",
		zap.Int("project_id", projectID), zap.Int("user_id", invitee.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User invited successfully",
		"member":  member,
	})
}
