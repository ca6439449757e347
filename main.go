package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"

	"zawadi-college/app/config"
	"zawadi-college/app/database"
	"zawadi-college/app/routes/auth"
	"zawadi-college/app/routes/enrollments"
	"zawadi-college/app/routes/exams"
	"zawadi-college/app/routes/grades"
	"zawadi-college/app/routes/notifications"
	"zawadi-college/app/routes/workflows"
	"zawadi-college/app/services"
)

// customErrorHandler keeps API errors as JSON and renders a page for the rest
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	if len(c.Path()) >= 4 && c.Path()[:4] == "/api" {
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    code,
		})
	}

	return c.Status(code).Render("error", fiber.Map{
		"Title":        "Error - Zawadi College",
		"ErrorCode":    code,
		"ErrorMessage": err.Error(),
	})
}

func main() {
	config.Load()

	// Initialize database
	config.InitDB()
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Start background scheduler: expired-exam close + notification dispatch
	scheduler := services.NewScheduler(
		config.GetDB(),
		config.CloseSweepInterval(),
		config.DispatchInterval(),
		config.ExamCloseGrace(),
	)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize template engine
	engine := html.New("./views", ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: customErrorHandler,
	})

	app.Use(logger.New())
	app.Use(cors.New())

	db := config.GetDB()
	auth.SetupAuthRoutes(app, db)
	exams.SetupExamRoutes(app, db)
	grades.SetupGradeRoutes(app, db)
	enrollments.SetupEnrollmentRoutes(app, db)
	workflows.SetupWorkflowRoutes(app, db)
	notifications.SetupNotificationRoutes(app, db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Zawadi College server listening on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
