package exams

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"zawadi-college/app/routes/auth"
)

// SetupExamRoutes sets up all exam-related routes
func SetupExamRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/exams", auth.Middleware(db))
	api.Get("/", func(c *fiber.Ctx) error { return ListExams(c, db) })
	api.Get("/:id", func(c *fiber.Ctx) error { return GetExam(c, db) })
	api.Post("/", func(c *fiber.Ctx) error { return CreateExam(c, db) })
	api.Put("/:id", func(c *fiber.Ctx) error { return UpdateExam(c, db) })
	api.Delete("/:id", func(c *fiber.Ctx) error { return DeleteExam(c, db) })
	api.Post("/:id/schedule", func(c *fiber.Ctx) error { return ScheduleExam(c, db) })
	api.Post("/:id/submit", func(c *fiber.Ctx) error { return SubmitExam(c, db) })
	api.Post("/:id/lock", func(c *fiber.Ctx) error { return LockExam(c, db) })
}
