package workflows

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"zawadi-college/app/routes/auth"
	"zawadi-college/app/routes/helpers"
	"zawadi-college/app/services"
)

// SetupWorkflowRoutes sets up the multi-step assessment workflow actions
func SetupWorkflowRoutes(app *fiber.App, db *sql.DB) {
	api := app.Group("/api/workflows", auth.Middleware(db))
	api.Post("/validate-grades", func(c *fiber.Ctx) error { return ValidateGrades(c, db) })
}

// ValidateGrades approves a submitted exam's grades. The approver defaults
// to the session user when the payload names nobody.
func ValidateGrades(c *fiber.Ctx, db *sql.DB) error {
	var req struct {
		ExamID     string `json:"exam_id" validate:"required,uuid"`
		ApproverID string `json:"approver_id" validate:"omitempty,uuid"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := helpers.ValidateStruct(req); err != nil {
		return helpers.RespondError(c, err)
	}

	approverID := req.ApproverID
	if approverID == "" {
		approverID = auth.CurrentUser(c).ID
	}

	exam, err := services.ValidateExam(db, auth.InstitutionID(c), req.ExamID, approverID)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(exam)
}
