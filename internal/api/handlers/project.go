package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskflow/internal/models"
	"taskflow/pkg/logger"
)

// ListProjects returns the projects the caller owns. Projects the caller
// only belongs to as a member are deliberately absent; membership grants
// access to sub-resources, not to the project list.
func (h *Handler) ListProjects(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.identityError(c, err)
	}

	rows, err := h.DB.Query(`
        SELECT p.id, p.name, p.description, p.created_at, p.updated_at,
               (SELECT COUNT(*) FROM project_files f WHERE f.project_id = p.id)
        FROM projects p
        WHERE p.owner_id = $1
        ORDER BY p.id`, user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching projects", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching projects",
		})
	}
	defer rows.Close()

	projects := []fiber.Map{}
	for rows.Next() {
		var (
			p          models.Project
			filesCount int
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt, &filesCount); err != nil {
			logger.ErrorLogger.Error("Error scanning projects", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error scanning projects",
			})
		}
		projects = append(projects, fiber.Map{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"created_at":  p.CreatedAt,
			"updated_at":  p.UpdatedAt,
			"files_count": filesCount,
		})
	}
	if err := rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over projects", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching projects",
		})
	}

	return c.JSON(projects)
}

func (h *Handler) CreateProject(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return h.identityError(c, err)
	}

	type ProjectRequest struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	}

	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create project", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during create project", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Project name is required",
		})
	}

	var p models.Project
	err = h.DB.QueryRow(`
        INSERT INTO projects (name, description, owner_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`,
		req.Name, req.Description, user.ID).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating project", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating project",
		})
	}

	logger.AuditLogger.Info("Project created",
		zap.Int("project_id", p.ID), zap.Int("owner_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":          p.ID,
		"name":        req.Name,
		"description": req.Description,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	})
}

// GetProject is an owner-only fetch: a member of the project gets the same
// 404 a stranger does.
func (h *Handler) GetProject(c *fiber.Ctx) error {
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

	cacheKey := fmt.Sprintf("project:%d", projectID)

	var p models.Project
	err = h.DB.QueryRow(`
        SELECT id, name, description, created_at, updated_at
        FROM projects
        WHERE id = $1 AND owner_id = $2`,
		projectID, user.ID).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
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

	// Detail payload is cached after the owner check so the cache can never
	// answer for a non-owner.
	if cached, err := h.Redis.Get(c.Context(), cacheKey).Result(); err == nil {
		return c.Type("json").SendString(cached)
	}

	rows, err := h.DB.Query(`
        SELECT id, filename, uploaded_at
        FROM project_files
        WHERE project_id = $1
        ORDER BY id`, projectID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching project files", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching project files",
		})
	}
	defer rows.Close()

	files := []models.ProjectFile{}
	for rows.Next() {
		var f models.ProjectFile
		if err := rows.Scan(&f.ID, &f.Filename, &f.UploadedAt); err != nil {
			logger.ErrorLogger.Error("Error scanning project files", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error fetching project files",
			})
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over project files", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching project files",
		})
	}

	resp := fiber.Map{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
		"files":       files,
	}
	if payload, err := json.Marshal(resp); err == nil {
		h.Redis.SetEX(c.Context(), cacheKey, payload, time.Hour)
	}
	return c.JSON(resp)
}
