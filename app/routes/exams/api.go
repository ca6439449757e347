package exams

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"zawadi-college/app/routes/auth"
	"zawadi-college/app/routes/helpers"
	"zawadi-college/app/services"
)

// ListExams returns the institution's exams, optionally filtered by
// class-course.
func ListExams(c *fiber.Ctx, db *sql.DB) error {
	exams, err := services.ListExams(db, auth.InstitutionID(c), c.Query("class_course_id"))
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(exams)
}

func GetExam(c *fiber.Ctx, db *sql.DB) error {
	exam, err := services.GetExam(db, auth.InstitutionID(c), c.Params("id"))
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(exam)
}

// CreateExam creates a draft exam after checking the class-course weight
// limit.
func CreateExam(c *fiber.Ctx, db *sql.DB) error {
	var in services.ExamInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := helpers.ValidateStruct(in); err != nil {
		return helpers.RespondError(c, err)
	}

	exam, err := services.CreateExam(db, auth.InstitutionID(c), in)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(exam)
}

func UpdateExam(c *fiber.Ctx, db *sql.DB) error {
	var patch services.ExamPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	exam, err := services.UpdateExam(db, auth.InstitutionID(c), c.Params("id"), patch)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(exam)
}

func DeleteExam(c *fiber.Ctx, db *sql.DB) error {
	if err := services.DeleteExam(db, auth.InstitutionID(c), c.Params("id")); err != nil {
		return helpers.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func ScheduleExam(c *fiber.Ctx, db *sql.DB) error {
	exam, err := services.ScheduleExam(db, auth.InstitutionID(c), c.Params("id"))
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(exam)
}

// SubmitExam moves the exam to submitted and queues the submission
// notification.
func SubmitExam(c *fiber.Ctx, db *sql.DB) error {
	exam, err := services.SubmitExam(db, auth.InstitutionID(c), c.Params("id"), auth.CurrentUser(c).ID)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(exam)
}

// LockExam toggles the lock flag; unlocking is admin-only.
func LockExam(c *fiber.Ctx, db *sql.DB) error {
	var req struct {
		Lock bool `json:"lock"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	exam, err := services.SetExamLock(db, auth.InstitutionID(c), c.Params("id"), req.Lock, auth.CurrentUser(c))
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(exam)
}
