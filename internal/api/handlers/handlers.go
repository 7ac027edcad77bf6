package handlers

import (
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskflow/configs"
	"taskflow/internal/models"
	"taskflow/internal/ws"
	"taskflow/pkg/logger"
)

var (
	errProjectNotFound = errors.New("project not found")
	errForbidden       = errors.New("forbidden")
)

// Handler carries the dependencies every endpoint needs. It is built once
// in main and shared across requests; all fields are read-only after New.
type Handler struct {
	DB       *sql.DB
	Redis    *redis.Client
	Validate *validator.Validate
	Hub      *ws.Hub
	Cfg      configs.Config
}

func New(db *sql.DB, redisClient *redis.Client, hub *ws.Hub, cfg configs.Config) *Handler {
	return &Handler{
		DB:       db,
		Redis:    redisClient,
		Validate: validator.New(),
		Hub:      hub,
		Cfg:      cfg,
	}
}

// currentUser resolves the token's username claim to a user row. The claim
// only names an identity; the row is looked up fresh on every request so a
// deleted account stops working immediately.
func (h *Handler) currentUser(c *fiber.Ctx) (models.User, error) {
	username, _ := c.Locals("username").(string)
	var user models.User
	err := h.DB.QueryRow(
		"SELECT id, username, email FROM users WHERE username = $1",
		username).Scan(&user.ID, &user.Username, &user.Email)
	return user, err
}

// identityError maps a currentUser failure: a missing row means the
// token no longer names a known identity, anything else is a store
// fault.
func (h *Handler) identityError(c *fiber.Ctx, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		logger.SecurityLogger.Warn("Token identity no longer exists",
			zap.Any("username", c.Locals("username")))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unknown identity",
		})
	}
	logger.ErrorLogger.Error("Error resolving identity", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Error resolving identity",
	})
}

// projectAccess is the membership check guarding project sub-resources:
// the caller passes when they own the project or hold a project_members
// row. Project list/get and file upload do NOT use this check; those
// stay owner-only.
func (h *Handler) projectAccess(projectID, userID int) error {
	var ownerID int
	err := h.DB.QueryRow(
		"SELECT owner_id FROM projects WHERE id = $1",
		projectID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return errProjectNotFound
	}
	if err != nil {
		return err
	}
	if ownerID == userID {
		return nil
	}

	var member bool
	err = h.DB.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)",
		projectID, userID).Scan(&member)
	if err != nil {
		return err
	}
	if !member {
		return errForbidden
	}
	return nil
}

// accessError maps a projectAccess failure onto the HTTP taxonomy.
func (h *Handler) accessError(c *fiber.Ctx, err error, userID, projectID int) error {
	switch {
	case errors.Is(err, errProjectNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Project not found",
		})
	case errors.Is(err, errForbidden):
		logger.SecurityLogger.Warn("Project access denied",
			zap.Int("user_id", userID), zap.Int("project_id", projectID))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Forbidden",
		})
	default:
		logger.ErrorLogger.Error("Error checking project access", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error checking project access",
		})
	}
}
