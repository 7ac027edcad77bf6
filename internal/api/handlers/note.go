package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskflow/internal/models"
	"taskflow/pkg/logger"
)

func (h *Handler) ListNotes(c *fiber.Ctx) error {
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
        SELECT id, content, created_at, updated_at, user_id
        FROM notes
        WHERE project_id = $1
        ORDER BY created_at DESC`, projectID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching notes", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching notes",
		})
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Content, &n.CreatedAt, &n.UpdatedAt, &n.UserID); err != nil {
			logger.ErrorLogger.Error("Error scanning notes", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error fetching notes",
			})
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over notes", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching notes",
		})
	}

	return c.JSON(notes)
}

func (h *Handler) CreateNote(c *fiber.Ctx) error {
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

	type NoteRequest struct {
		Content string `json:"content" validate:"required"`
	}

	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create note", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during create note", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Note content is required",
		})
	}

	note := models.Note{
		Content:   req.Content,
		ProjectID: projectID,
		UserID:    user.ID,
	}
	err = h.DB.QueryRow(`
        INSERT INTO notes (content, project_id, user_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`,
		note.Content, note.ProjectID, note.UserID,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating note", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating note",
		})
	}

	logger.AuditLogger.Info("Note created",
		zap.Int("note_id", note.ID), zap.Int("project_id", projectID))
	return c.Status(fiber.StatusCreated).JSON(note)
}
