package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskflow/internal/middleware"
	"taskflow/internal/models"
	"taskflow/internal/ws"
	"taskflow/pkg/logger"
)

// ListMessages returns a project's chat history, oldest first, with the
// author username joined in.
func (h *Handler) ListMessages(c *fiber.Ctx) error {
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
        SELECT m.id, m.content, m.created_at, m.user_id, u.username
        FROM chat_messages m
        JOIN users u ON u.id = m.user_id
        WHERE m.project_id = $1
        ORDER BY m.created_at, m.id`, projectID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching messages", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching messages",
		})
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.Content, &m.CreatedAt, &m.UserID, &m.Username); err != nil {
			logger.ErrorLogger.Error("Error scanning messages", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error fetching messages",
			})
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over messages", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching messages",
		})
	}

	return c.JSON(messages)
}

func (h *Handler) CreateMessage(c *fiber.Ctx) error {
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

	type MessageRequest struct {
		Content string `json:"content" validate:"required"`
	}

	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create message", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during create message", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Message content is required",
		})
	}

	message := models.ChatMessage{
		Content:   req.Content,
		ProjectID: projectID,
		UserID:    user.ID,
		Username:  user.Username,
	}
	err = h.DB.QueryRow(`
        INSERT INTO chat_messages (content, project_id, user_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`,
		message.Content, message.ProjectID, message.UserID,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating message", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating message",
		})
	}

	// Notify the project's open chat sockets; REST polling remains the
	// source of truth.
	if h.Hub != nil {
		if payload, err := json.Marshal(message); err == nil {
			h.Hub.Publish(projectID, payload)
		}
	}

	logger.AuditLogger.Info("Message created",
		zap.Int("message_id", message.ID), zap.Int("project_id", projectID))
	return c.Status(fiber.StatusCreated).JSON(message)
}

// ChatSocketGate authenticates a websocket upgrade for a project chat.
// Browsers cannot set an Authorization header on a socket, so the token
// rides in the query string.
func (h *Handler) ChatSocketGate(c *fiber.Ctx) error {
	username, err := middleware.ParseToken(c.Query("token"), h.Cfg.SecretKey)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid token",
		})
	}
	c.Locals("username", username)

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
	c.Locals("projectID", projectID)
	return c.Next()
}

// ChatSocket keeps a client registered with the hub until the connection
// drops. Inbound frames are ignored; messages are posted over REST.
func (h *Handler) ChatSocket(c *websocket.Conn) {
	projectID, _ := c.Locals("projectID").(int)
	client := &ws.Client{ProjectID: projectID, Conn: c}
	h.Hub.Register <- client
	defer func() {
		h.Hub.Unregister <- client
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
