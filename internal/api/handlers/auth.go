package handlers

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskflow/pkg/logger"
)

// generateToken issues an HS256 token keyed on the username.
func generateToken(username string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": "Taskflow API is running",
	})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,excludesall=@?"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	// Username and email each get their own duplicate message, checked in
	// that order.
	var exists bool
	if err := h.DB.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)",
		req.Username).Scan(&exists); err != nil {
		logger.ErrorLogger.Error("Error checking username", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating user",
		})
	}
	if exists {
		logger.SecurityLogger.Warn("Duplicate username", zap.String("username", req.Username))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Username already taken",
		})
	}
	if err := h.DB.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)",
		req.Email).Scan(&exists); err != nil {
		logger.ErrorLogger.Error("Error checking email", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating user",
		})
	}
	if exists {
		logger.SecurityLogger.Warn("Duplicate email", zap.String("email", req.Email))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email already registered",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error hashing password",
		})
	}

	var userID int
	err = h.DB.QueryRow(
		"INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING id",
		req.Username, req.Email, string(hashedPassword)).Scan(&userID)
	if err != nil {
		// Concurrent registration can slip past the pre-checks; the unique
		// constraints answer the same way.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			logger.SecurityLogger.Warn("Duplicate user on insert", zap.String("username", req.Username))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Username already taken",
			})
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating user",
		})
	}

	tokenString, err := generateToken(req.Username, h.Cfg.SecretKey, h.Cfg.TokenTTL)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error generating token",
		})
	}

	logger.AuditLogger.Info("User registered", zap.Int("user_id", userID), zap.String("username", req.Username))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "User registered successfully",
		"token":    tokenString,
		"username": req.Username,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad request",
		})
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during login", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
		})
	}

	var (
		userID         int
		hashedPassword string
	)
	err := h.DB.QueryRow(
		"SELECT id, password FROM users WHERE username = $1",
		req.Username).Scan(&userID, &hashedPassword)
	if err == sql.ErrNoRows {
		logger.SecurityLogger.Warn("Login for unknown user", zap.String("username", req.Username))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching user for login", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching user",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)); err != nil {
		logger.SecurityLogger.Warn("Invalid password", zap.String("username", req.Username))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	tokenString, err := generateToken(req.Username, h.Cfg.SecretKey, h.Cfg.TokenTTL)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error generating token",
		})
	}

	logger.AuditLogger.Info("Login success", zap.Int("user_id", userID), zap.String("username", req.Username))
	return c.JSON(fiber.Map{
		"message":  "Login successful",
		"token":    tokenString,
		"username": req.Username,
	})
}

func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)

	// Always hit the row: an account deleted out-of-band must turn into a
	// 404 on the next request, so this endpoint is never cached.
	var email string
	err := h.DB.QueryRow(
		"SELECT email FROM users WHERE username = $1",
		username).Scan(&email)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching user",
		})
	}

	return c.JSON(fiber.Map{
		"username": username,
		"email":    email,
	})
}
