package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskflow/internal/models"
	"taskflow/pkg/logger"
)

// combineDateTime builds a timestamp from the separate date and time
// fields calendar clients send. Time may be empty (all-day events).
func combineDateTime(date, clock string) (time.Time, error) {
	if clock == "" {
		return time.Parse("2006-01-02", date)
	}
	return time.Parse("2006-01-02 15:04", date+" "+clock)
}

// ListCalendarEvents returns the caller's own events; calendar entries are
// strictly per-user.
func (h *Handler) ListCalendarEvents(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.identityError(c, err)
	}

	rows, err := h.DB.Query(`
        SELECT id, title, description, start_time, end_time, event_type, created_at
        FROM calendar_events
        WHERE user_id = $1
        ORDER BY start_time, id`, user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching events", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching events",
		})
	}
	defer rows.Close()

	events := []models.CalendarEvent{}
	for rows.Next() {
		var e models.CalendarEvent
		err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.StartTime,
			&e.EndTime, &e.EventType, &e.CreatedAt)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning events", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error fetching events",
			})
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over events", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching events",
		})
	}

	return c.JSON(events)
}

func (h *Handler) CreateCalendarEvent(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.identityError(c, err)
	}

	type EventRequest struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
		StartTime   string `json:"startTime" validate:"omitempty,datetime=15:04"`
		EndDate     string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
		EndTime     string `json:"endTime" validate:"omitempty,datetime=15:04"`
		Type        string `json:"type"`
	}

	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create event", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during create event", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}
	if req.Type == "" {
		req.Type = "meeting"
	}

	start, err := combineDateTime(req.StartDate, req.StartTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid start date",
		})
	}
	var end *time.Time
	if req.EndDate != "" {
		t, err := combineDateTime(req.EndDate, req.EndTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid end date",
			})
		}
		end = &t
	}

	event := models.CalendarEvent{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		EventType:   req.Type,
		UserID:      user.ID,
	}
	err = h.DB.QueryRow(`
        INSERT INTO calendar_events (title, description, start_time, end_time, event_type, user_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`,
		event.Title, event.Description, event.StartTime, event.EndTime,
		event.EventType, event.UserID,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating event", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating event",
		})
	}

	logger.AuditLogger.Info("Calendar event created",
		zap.Int("event_id", event.ID), zap.Int("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(event)
}
