package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskflow/internal/models"
	"taskflow/pkg/logger"
)

// parseDueDate accepts either a full timestamp or a bare date.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid due date")
}

func (h *Handler) ListTasks(c *fiber.Ctx) error {
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
        SELECT id, title, description, status, priority, progress, due_date,
               created_at, updated_at, assigned_to
        FROM tasks
        WHERE project_id = $1
        ORDER BY id`, projectID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching tasks",
		})
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
			&t.Progress, &t.DueDate, &t.CreatedAt, &t.UpdatedAt, &t.AssignedTo)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning tasks", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error fetching tasks",
			})
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over tasks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching tasks",
		})
	}

	return c.JSON(tasks)
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
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

	type TaskRequest struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Status      string `json:"status" validate:"omitempty,oneof=todo in_progress done"`
		Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
		Progress    *int   `json:"progress" validate:"omitempty,gte=0,lte=100"`
		DueDate     string `json:"due_date"`
		AssignedTo  *int   `json:"assigned_to"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during create task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   projectID,
		AssignedTo:  req.AssignedTo,
	}
	if task.Status == "" {
		task.Status = "todo"
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if req.Progress != nil {
		task.Progress = *req.Progress
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid due date",
		})
	}
	task.DueDate = dueDate

	err = h.DB.QueryRow(`
        INSERT INTO tasks (title, description, status, priority, progress, due_date, project_id, assigned_to)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`,
		task.Title, task.Description, task.Status, task.Priority, task.Progress,
		task.DueDate, task.ProjectID, task.AssignedTo,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating task",
		})
	}

	logger.AuditLogger.Info("Task created",
		zap.Int("task_id", task.ID), zap.Int("project_id", projectID))
	return c.Status(fiber.StatusCreated).JSON(task)
}
