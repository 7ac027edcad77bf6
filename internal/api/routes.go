package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"taskflow/internal/api/handlers"
	"taskflow/internal/middleware"
)

// RegisterRoutes wires the full HTTP surface onto the app.
func RegisterRoutes(app *fiber.App, h *handlers.Handler) {
	auth := middleware.UseToken(h.Cfg.SecretKey)

	api := app.Group("/api")

	api.Get("/health", h.Health)
	api.Post("/register", h.Register)
	api.Post("/login", h.Login)
	api.Get("/user", auth, h.GetCurrentUser)

	projects := api.Group("/projects", auth)
	projects.Get("/", h.ListProjects)
	projects.Post("/", h.CreateProject)
	projects.Get("/:id", h.GetProject)
	projects.Post("/:id/files", h.UploadFile)
	projects.Get("/:id/tasks", h.ListTasks)
	projects.Post("/:id/tasks", h.CreateTask)
	projects.Get("/:id/notes", h.ListNotes)
	projects.Post("/:id/notes", h.CreateNote)
	projects.Get("/:id/members", h.ListMembers)
	projects.Post("/:id/invite", h.InviteMember)
	projects.Get("/:id/messages", h.ListMessages)
	projects.Post("/:id/messages", h.CreateMessage)
	projects.Get("/:id/meetings", h.ListMeetings)
	projects.Post("/:id/meetings", h.CreateMeeting)

	calendar := api.Group("/calendar", auth)
	calendar.Get("/events", h.ListCalendarEvents)
	calendar.Post("/events", h.CreateCalendarEvent)

	// Raw attachment bytes; bearer token only, not project-scoped.
	app.Get("/uploads/*", auth, h.ServeUpload)

	// Project chat sockets.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/projects/:id", h.ChatSocketGate, websocket.New(h.ChatSocket))
}
