package notifications

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"zawadi-college/app/models"
	"zawadi-college/app/routes/auth"
	"zawadi-college/app/routes/helpers"
	"zawadi-college/app/services"
)

// SetupNotificationRoutes sets up the notification reads and the admin
// dashboard page.
func SetupNotificationRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/notifications", auth.Middleware(db))
	api.Get("/", func(c *fiber.Ctx) error { return ListNotifications(c, db) })

	app.Get("/dashboard", auth.Middleware(db), func(c *fiber.Ctx) error {
		user := auth.CurrentUser(c)
		pending, err := services.ListNotifications(db, user.InstitutionID, models.NotificationPending)
		if err != nil {
			return helpers.RespondError(c, err)
		}
		return c.Render("dashboard", fiber.Map{
			"Title":         "Workflow Dashboard",
			"FirstName":     user.FirstName,
			"LastName":      user.LastName,
			"Notifications": pending,
		})
	})
}

// ListNotifications returns the institution's notifications, optionally
// filtered by status.
func ListNotifications(c *fiber.Ctx, db *sql.DB) error {
	status := models.NotificationStatus(c.Query("status"))
	if status != "" && status != models.NotificationPending && status != models.NotificationSent {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be pending or sent"})
	}

	items, err := services.ListNotifications(db, auth.InstitutionID(c), status)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(items)
}
