package grades

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"zawadi-college/app/routes/auth"
)

// SetupGradeRoutes sets up all grade-related routes
func SetupGradeRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/grades", auth.Middleware(db))
	api.Get("/", func(c *fiber.Ctx) error { return ListGrades(c, db) })
	api.Post("/", func(c *fiber.Ctx) error { return UpsertGrade(c, db) })
	api.Put("/:id", func(c *fiber.Ctx) error { return UpdateGrade(c, db) })
	api.Delete("/:id", func(c *fiber.Ctx) error { return DeleteGrade(c, db) })
}
