package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"zawadi-college/app/models"
)

// Contribution is the ledger impact of one enrollment.
type Contribution struct {
	InProgress int
	Earned     int
}

// ContributionForStatus is the single source of truth for how an enrollment
// status maps to ledger impact. Pure and total: active counts the credits as
// in progress, completed counts them as earned, everything else counts
// nothing.
func ContributionForStatus(status models.EnrollmentStatus, credits int) Contribution {
	switch status {
	case models.EnrollmentActive:
		return Contribution{InProgress: credits}
	case models.EnrollmentCompleted:
		return Contribution{Earned: credits}
	default:
		return Contribution{}
	}
}

func scanEnrollment(row *sql.Row) (*models.StudentCourseEnrollment, error) {
	e := &models.StudentCourseEnrollment{}
	err := row.Scan(
		&e.ID, &e.InstitutionID, &e.StudentID, &e.ClassCourseID, &e.AcademicYearID,
		&e.Status, &e.Attempt, &e.Credits, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

const enrollmentColumns = `id, institution_id, student_id, class_course_id, academic_year_id, status, attempt, credits, created_at, updated_at`

// Enroll registers a student into a class-course. Enrollment is idempotent
// per (student, classCourse, attempt): an existing row is returned untouched.
// The initial ledger contribution is applied in the same transaction as the
// insert.
func Enroll(db *sql.DB, institutionID, studentID, classCourseID string, status models.EnrollmentStatus, attempt int) (*models.StudentCourseEnrollment, error) {
	if attempt < 1 {
		attempt = 1
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	cc := &models.ClassCourse{}
	var teacherID sql.NullString
	err = tx.QueryRow(`SELECT id, institution_id, class_id, course_id, teacher_id, academic_year_id, credits, created_at, updated_at
					   FROM class_courses WHERE id = $1 AND institution_id = $2`,
		classCourseID, institutionID).Scan(
		&cc.ID, &cc.InstitutionID, &cc.ClassID, &cc.CourseID, &teacherID,
		&cc.AcademicYearID, &cc.Credits, &cc.CreatedAt, &cc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "class-course"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch class-course: %w", err)
	}

	// Enrollment window gate: a closed window rejects new registrations.
	var windowStatus models.WindowStatus
	err = tx.QueryRow(`SELECT status FROM enrollment_windows
					   WHERE class_id = $1 AND academic_year_id = $2 AND institution_id = $3`,
		cc.ClassID, cc.AcademicYearID, institutionID).Scan(&windowStatus)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to check enrollment window: %w", err)
	}
	if err == nil && windowStatus == models.WindowClosed {
		return nil, &ForbiddenError{Msg: "enrollment window is closed for this class"}
	}

	existing, err := scanEnrollment(tx.QueryRow(`SELECT `+enrollmentColumns+` FROM student_course_enrollments
		WHERE student_id = $1 AND class_course_id = $2 AND attempt = $3 AND institution_id = $4`,
		studentID, classCourseID, attempt, institutionID))
	if err == nil {
		// Idempotent: already enrolled for this attempt.
		if cerr := tx.Commit(); cerr != nil {
			return nil, fmt.Errorf("failed to commit: %w", cerr)
		}
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to fetch enrollment: %w", err)
	}

	now := time.Now().UTC()
	enrollment := &models.StudentCourseEnrollment{
		ID:             uuid.NewString(),
		InstitutionID:  institutionID,
		StudentID:      studentID,
		ClassCourseID:  classCourseID,
		AcademicYearID: cc.AcademicYearID,
		Status:         status,
		Attempt:        attempt,
		Credits:        cc.Credits,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = tx.Exec(`INSERT INTO student_course_enrollments (id, institution_id, student_id, class_course_id, academic_year_id, status, attempt, credits, created_at, updated_at)
					  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		enrollment.ID, enrollment.InstitutionID, enrollment.StudentID,
		enrollment.ClassCourseID, enrollment.AcademicYearID, enrollment.Status,
		enrollment.Attempt, enrollment.Credits, enrollment.CreatedAt, enrollment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert enrollment: %w", err)
	}

	c := ContributionForStatus(status, cc.Credits)
	if err := applyLedgerDelta(tx, institutionID, studentID, cc.AcademicYearID, c.InProgress, c.Earned, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return enrollment, nil
}

// BulkEnroll registers one student into several class-courses. Individual
// enrollments stay idempotent; the whole call reports the resulting records.
func BulkEnroll(db *sql.DB, institutionID, studentID string, classCourseIDs []string, status models.EnrollmentStatus) ([]*models.StudentCourseEnrollment, error) {
	var enrollments []*models.StudentCourseEnrollment
	for _, ccID := range classCourseIDs {
		e, err := Enroll(db, institutionID, studentID, ccID, status, 1)
		if err != nil {
			return enrollments, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, nil
}

// ChangeEnrollmentStatus flips an enrollment from status A to B and applies
// contribution(B) - contribution(A) to the student's ledger. Both writes are
// one transaction: either both persist or neither does. The delta form never
// double-counts and never recomputes the ledger from scratch.
func ChangeEnrollmentStatus(db *sql.DB, institutionID, enrollmentID string, newStatus models.EnrollmentStatus) (*models.StudentCourseEnrollment, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	enrollment, err := scanEnrollment(tx.QueryRow(`SELECT `+enrollmentColumns+` FROM student_course_enrollments
		WHERE id = $1 AND institution_id = $2`, enrollmentID, institutionID))
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "enrollment"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrollment: %w", err)
	}

	if enrollment.Status == newStatus {
		if cerr := tx.Commit(); cerr != nil {
			return nil, fmt.Errorf("failed to commit: %w", cerr)
		}
		return enrollment, nil
	}

	before := ContributionForStatus(enrollment.Status, enrollment.Credits)
	after := ContributionForStatus(newStatus, enrollment.Credits)

	now := time.Now().UTC()
	enrollment.Status = newStatus
	enrollment.UpdatedAt = now
	_, err = tx.Exec(`UPDATE student_course_enrollments SET status = $1, updated_at = $2 WHERE id = $3 AND institution_id = $4`,
		enrollment.Status, enrollment.UpdatedAt, enrollment.ID, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", err)
	}

	err = applyLedgerDelta(tx, institutionID, enrollment.StudentID, enrollment.AcademicYearID,
		after.InProgress-before.InProgress, after.Earned-before.Earned, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return enrollment, nil
}

// applyLedgerDelta upserts the (student, academic year) ledger row, adding
// the signed deltas to the stored totals. The ledger is only ever adjusted
// through deltas, never overwritten wholesale.
func applyLedgerDelta(tx *sql.Tx, institutionID, studentID, academicYearID string, inProgressDelta, earnedDelta int, now time.Time) error {
	if inProgressDelta == 0 && earnedDelta == 0 {
		return nil
	}

	res, err := tx.Exec(`UPDATE credit_ledger
						 SET credits_in_progress = credits_in_progress + $1,
							 credits_earned = credits_earned + $2,
							 updated_at = $3
						 WHERE student_id = $4 AND academic_year_id = $5 AND institution_id = $6`,
		inProgressDelta, earnedDelta, now, studentID, academicYearID, institutionID)
	if err != nil {
		return fmt.Errorf("failed to apply ledger delta: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		_, err = tx.Exec(`INSERT INTO credit_ledger (id, institution_id, student_id, academic_year_id, credits_in_progress, credits_earned, updated_at)
						  VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), institutionID, studentID, academicYearID,
			inProgressDelta, earnedDelta, now)
		if err != nil {
			return fmt.Errorf("failed to create ledger entry: %w", err)
		}
	}
	return nil
}

// LedgerFor reads the student's credit totals for one academic year. A
// missing row reads as zero totals; promotion evaluation relies on this.
func LedgerFor(db *sql.DB, institutionID, studentID, academicYearID string) (*models.CreditLedgerEntry, error) {
	entry := &models.CreditLedgerEntry{
		InstitutionID:  institutionID,
		StudentID:      studentID,
		AcademicYearID: academicYearID,
	}
	err := db.QueryRow(`SELECT id, credits_in_progress, credits_earned, updated_at FROM credit_ledger
						WHERE student_id = $1 AND academic_year_id = $2 AND institution_id = $3`,
		studentID, academicYearID, institutionID).Scan(
		&entry.ID, &entry.CreditsInProgress, &entry.CreditsEarned, &entry.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return entry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger entry: %w", err)
	}
	return entry, nil
}

// ListEnrollmentsByStudent returns the student's enrollments, tenant-scoped.
func ListEnrollmentsByStudent(db *sql.DB, institutionID, studentID string) ([]*models.StudentCourseEnrollment, error) {
	rows, err := db.Query(`SELECT `+enrollmentColumns+` FROM student_course_enrollments
						   WHERE student_id = $1 AND institution_id = $2 ORDER BY created_at`,
		studentID, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.StudentCourseEnrollment
	for rows.Next() {
		e := &models.StudentCourseEnrollment{}
		err := rows.Scan(
			&e.ID, &e.InstitutionID, &e.StudentID, &e.ClassCourseID, &e.AcademicYearID,
			&e.Status, &e.Attempt, &e.Credits, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// SetEnrollmentWindow toggles the (class, academic year) window and queues a
// window-change notification in the same transaction.
func SetEnrollmentWindow(db *sql.DB, institutionID, classID, academicYearID string, status models.WindowStatus) (*models.EnrollmentWindow, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	window := &models.EnrollmentWindow{
		InstitutionID:  institutionID,
		ClassID:        classID,
		AcademicYearID: academicYearID,
		Status:         status,
		UpdatedAt:      now,
	}

	err = tx.QueryRow(`SELECT id FROM enrollment_windows
					   WHERE class_id = $1 AND academic_year_id = $2 AND institution_id = $3`,
		classID, academicYearID, institutionID).Scan(&window.ID)
	if err == sql.ErrNoRows {
		window.ID = uuid.NewString()
		_, err = tx.Exec(`INSERT INTO enrollment_windows (id, institution_id, class_id, academic_year_id, status, updated_at)
						  VALUES ($1, $2, $3, $4, $5, $6)`,
			window.ID, institutionID, classID, academicYearID, status, now)
	} else if err == nil {
		_, err = tx.Exec(`UPDATE enrollment_windows SET status = $1, updated_at = $2 WHERE id = $3`,
			status, now, window.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save enrollment window: %w", err)
	}

	err = EnqueueNotification(tx, institutionID, models.NotifyEnrollmentWindowChange, map[string]string{
		"class_id":         classID,
		"academic_year_id": academicYearID,
		"status":           string(status),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return window, nil
}
