package grades

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"zawadi-college/app/routes/auth"
	"zawadi-college/app/routes/helpers"
	"zawadi-college/app/services"
)

// ListGrades reads grades by exam or by student.
func ListGrades(c *fiber.Ctx, db *sql.DB) error {
	institutionID := auth.InstitutionID(c)

	if examID := c.Query("exam_id"); examID != "" {
		grades, err := services.ListGradesByExam(db, institutionID, examID)
		if err != nil {
			return helpers.RespondError(c, err)
		}
		return c.JSON(grades)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		grades, err := services.ListGradesByStudent(db, institutionID, studentID)
		if err != nil {
			return helpers.RespondError(c, err)
		}
		return c.JSON(grades)
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "exam_id or student_id is required"})
}

// UpsertGrade records or replaces the score for one (student, exam) pair.
func UpsertGrade(c *fiber.Ctx, db *sql.DB) error {
	var req struct {
		StudentID string  `json:"student_id" validate:"required,uuid"`
		ExamID    string  `json:"exam_id" validate:"required,uuid"`
		Score     float64 `json:"score" validate:"gte=0,lte=20"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := helpers.ValidateStruct(req); err != nil {
		return helpers.RespondError(c, err)
	}

	grade, err := services.UpsertGrade(db, auth.InstitutionID(c), req.StudentID, req.ExamID, req.Score, auth.CurrentUser(c))
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(grade)
}

func UpdateGrade(c *fiber.Ctx, db *sql.DB) error {
	var req struct {
		Score float64 `json:"score" validate:"gte=0,lte=20"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	grade, err := services.UpdateGradeScore(db, auth.InstitutionID(c), c.Params("id"), req.Score, auth.CurrentUser(c))
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(grade)
}

// DeleteGrade removes a grade, used when the teacher clears a score input.
func DeleteGrade(c *fiber.Ctx, db *sql.DB) error {
	if err := services.RemoveGrade(db, auth.InstitutionID(c), c.Params("id"), auth.CurrentUser(c)); err != nil {
		return helpers.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
