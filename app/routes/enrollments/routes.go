package enrollments

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"zawadi-college/app/routes/auth"
)

// SetupEnrollmentRoutes sets up enrollment and enrollment-window routes
func SetupEnrollmentRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/enrollments", auth.Middleware(db))
	api.Get("/", func(c *fiber.Ctx) error { return ListEnrollments(c, db) })
	api.Post("/", func(c *fiber.Ctx) error { return Enroll(c, db) })
	api.Post("/bulk", func(c *fiber.Ctx) error { return BulkEnroll(c, db) })
	api.Put("/:id/status", func(c *fiber.Ctx) error { return ChangeStatus(c, db) })
	api.Get("/ledger", func(c *fiber.Ctx) error { return GetLedger(c, db) })
	api.Put("/windows/:classId", auth.RequireAdmin, func(c *fiber.Ctx) error { return SetWindow(c, db) })
}
