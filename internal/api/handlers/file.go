package handlers

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskflow/internal/models"
	"taskflow/pkg/logger"
)

// sanitizeFilename flattens a client-supplied filename to a single safe
// path segment: separators and whitespace collapse to underscores, only
// ASCII letters, digits, underscore, dot and dash survive, and leading or
// trailing dots, dashes and underscores are stripped. "../../etc/passwd"
// becomes "etc_passwd".
func sanitizeFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '.' || r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._-")
}

// UploadFile stores an attachment for a project the caller owns. Like the
// project detail, upload is owner-only; members get a 404.
func (h *Handler) UploadFile(c *fiber.Ctx) error {
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

	var owned bool
	err = h.DB.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1 AND owner_id = $2)",
		projectID, user.ID).Scan(&owned)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching project", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error fetching project",
		})
	}
	if !owned {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Project not found",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file uploaded",
		})
	}
	if file.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file selected",
		})
	}
	filename := sanitizeFilename(file.Filename)
	if filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid filename",
		})
	}

	projectDir := filepath.Join(h.Cfg.UploadDir, strconv.Itoa(projectID))
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		logger.ErrorLogger.Error("Error creating upload directory", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error creating upload directory",
		})
	}
	if err := c.SaveFile(file, filepath.Join(projectDir, filename)); err != nil {
		logger.ErrorLogger.Error("Error saving file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error saving file",
		})
	}

	record := models.ProjectFile{
		Filename:  filename,
		FilePath:  path.Join(h.Cfg.UploadDir, strconv.Itoa(projectID), filename),
		ProjectID: projectID,
	}
	err = h.DB.QueryRow(`
        INSERT INTO project_files (filename, file_path, project_id)
        VALUES ($1, $2, $3)
        RETURNING id, uploaded_at`,
		record.Filename, record.FilePath, record.ProjectID,
	).Scan(&record.ID, &record.UploadedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error saving file metadata", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Error saving file metadata",
		})
	}

	// The cached project detail embeds the file list.
	h.Redis.Del(c.Context(), fmt.Sprintf("project:%d", projectID))

	logger.AuditLogger.Info("File uploaded",
		zap.Int("project_id", projectID), zap.String("filename", filename))
	return c.Status(fiber.StatusCreated).JSON(record)
}

// ServeUpload returns raw file bytes for any authenticated caller. The
// path is not scoped to the caller's projects; only escapes from the
// upload root itself are rejected.
func (h *Handler) ServeUpload(c *fiber.Ctx) error {
	rel := c.Params("*")
	if rel == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "File not found",
		})
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		logger.SecurityLogger.Warn("Rejected upload path", zap.String("path", rel))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "File not found",
		})
	}

	full := filepath.Join(h.Cfg.UploadDir, clean)
	if info, err := os.Stat(full); err != nil || info.IsDir() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "File not found",
		})
	}
	return c.SendFile(full)
}
