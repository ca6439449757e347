package enrollments

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"zawadi-college/app/database"
	"zawadi-college/app/models"
	"zawadi-college/app/routes/auth"
	"zawadi-college/app/routes/helpers"
	"zawadi-college/app/services"
)

func ListEnrollments(c *fiber.Ctx, db *sql.DB) error {
	studentID := c.Query("student_id")
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "student_id is required"})
	}

	enrollments, err := services.ListEnrollmentsByStudent(db, auth.InstitutionID(c), studentID)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(enrollments)
}

// Enroll registers one student into one class-course. The class-course is
// resolved first so a bad id reads as 404 before any write happens.
func Enroll(c *fiber.Ctx, db *sql.DB) error {
	var req struct {
		StudentID     string                  `json:"student_id" validate:"required,uuid"`
		ClassCourseID string                  `json:"class_course_id" validate:"required,uuid"`
		Status        models.EnrollmentStatus `json:"status"`
		Attempt       int                     `json:"attempt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := helpers.ValidateStruct(req); err != nil {
		return helpers.RespondError(c, err)
	}
	if req.Status == "" {
		req.Status = models.EnrollmentActive
	}

	if _, err := database.GetClassCourseByID(db, auth.InstitutionID(c), req.ClassCourseID); err != nil {
		if err == sql.ErrNoRows {
			return helpers.RespondError(c, &services.NotFoundError{Entity: "class-course"})
		}
		return helpers.RespondError(c, err)
	}

	enrollment, err := services.Enroll(db, auth.InstitutionID(c), req.StudentID, req.ClassCourseID, req.Status, req.Attempt)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

// BulkEnroll registers one student into several class-courses at once.
func BulkEnroll(c *fiber.Ctx, db *sql.DB) error {
	var req struct {
		StudentID      string                  `json:"student_id" validate:"required,uuid"`
		ClassCourseIDs []string                `json:"class_course_ids" validate:"required,min=1,dive,uuid"`
		Status         models.EnrollmentStatus `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := helpers.ValidateStruct(req); err != nil {
		return helpers.RespondError(c, err)
	}

	enrollments, err := services.BulkEnroll(db, auth.InstitutionID(c), req.StudentID, req.ClassCourseIDs, req.Status)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(enrollments)
}

// ChangeStatus transitions an enrollment and applies the ledger delta.
func ChangeStatus(c *fiber.Ctx, db *sql.DB) error {
	var req struct {
		Status models.EnrollmentStatus `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	enrollment, err := services.ChangeEnrollmentStatus(db, auth.InstitutionID(c), c.Params("id"), req.Status)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(enrollment)
}

// GetLedger reads the credit totals backing promotion decisions. When no
// academic year is given the institution's current year is used.
func GetLedger(c *fiber.Ctx, db *sql.DB) error {
	studentID := c.Query("student_id")
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "student_id is required"})
	}

	yearID := c.Query("academic_year_id")
	if yearID == "" {
		year, err := database.GetCurrentAcademicYear(db, auth.InstitutionID(c))
		if err != nil {
			return helpers.RespondError(c, err)
		}
		if year == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no current academic year is set"})
		}
		yearID = year.ID
	}

	entry, err := services.LedgerFor(db, auth.InstitutionID(c), studentID, yearID)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(entry)
}

// SetWindow is the explicit admin toggle of a class enrollment window.
func SetWindow(c *fiber.Ctx, db *sql.DB) error {
	var req struct {
		AcademicYearID string              `json:"academic_year_id" validate:"required,uuid"`
		Status         models.WindowStatus `json:"status" validate:"required,oneof=open closed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := helpers.ValidateStruct(req); err != nil {
		return helpers.RespondError(c, err)
	}

	window, err := services.SetEnrollmentWindow(db, auth.InstitutionID(c), c.Params("classId"), req.AcademicYearID, req.Status)
	if err != nil {
		return helpers.RespondError(c, err)
	}
	return c.JSON(window)
}
