package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskflow/internal/models"
	"taskflow/pkg/logger"
)

func (h *Handler) ListMeetings(c *fiber.Ctx) error {
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
        SELECT id, title, description, date, time, duration, location, created_at
        FROM meetings
        WHERE project_id = $1
        ORDER BY date, time, id`, projectID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching meetings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching meetings",
		})
	}
	defer rows.Close()

	meetings := []models.Meeting{}
	for rows.Next() {
		var m models.Meeting
		err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Date, &m.Time,
			&m.Duration, &m.Location, &m.CreatedAt)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning meetings", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error fetching meetings",
			})
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over meetings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching meetings",
		})
	}

	return c.JSON(meetings)
}

func (h *Handler) CreateMeeting(c *fiber.Ctx) error {
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

	type MeetingRequest struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Date        string `json:"date" validate:"required,datetime=2006-01-02"`
		Time        string `json:"time" validate:"omitempty,datetime=15:04"`
		Duration    int    `json:"duration" validate:"omitempty,gt=0"`
		Location    string `json:"location"`
	}

	var req MeetingRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create meeting", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during create meeting", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}
	if req.Duration == 0 {
		req.Duration = 60
	}

	meeting := models.Meeting{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Duration:    req.Duration,
		Location:    req.Location,
		ProjectID:   projectID,
	}
	err = h.DB.QueryRow(`
        INSERT INTO meetings (title, description, date, time, duration, location, project_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`,
		meeting.Title, meeting.Description, meeting.Date, meeting.Time,
		meeting.Duration, meeting.Location, meeting.ProjectID,
	).Scan(&meeting.ID, &meeting.CreatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating meeting", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating meeting",
		})
	}

	logger.AuditLogger.Info("Meeting created",
		zap.Int("meeting_id", meeting.ID), zap.Int("project_id", projectID))
	return c.Status(fiber.StatusCreated).JSON(meeting)
}
