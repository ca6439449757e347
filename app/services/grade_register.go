package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"zawadi-college/app/models"
)

// The grade register never trusts a lock state read at form-render time: the
// exam's lock flag is re-checked inside the same transaction as the grade
// write, so a lock that commits first is always observed.

func getGradeByPair(q rowQuerier, institutionID, studentID, examID string) (*models.Grade, error) {
	g := &models.Grade{}
	err := q.QueryRow(`SELECT id, institution_id, exam_id, student_id, score, created_at, updated_at
					   FROM grades WHERE student_id = $1 AND exam_id = $2 AND institution_id = $3`,
		studentID, examID, institutionID).Scan(
		&g.ID, &g.InstitutionID, &g.ExamID, &g.StudentID, &g.Score, &g.CreatedAt, &g.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grade: %w", err)
	}
	return g, nil
}

// UpsertGrade records a student's score for an exam on the 0-20 scale. At
// most one grade exists per (student, exam); a repeat call updates the score
// and strictly bumps updated_at.
func UpsertGrade(db *sql.DB, institutionID, studentID, examID string, score float64, actor *models.User) (*models.Grade, error) {
	if score < 0 || score > 20 {
		return nil, validationf("score must be between 0 and 20")
	}
	if !actor.Role.CanRecordGrades() {
		return nil, &ForbiddenError{Msg: "caller may not record grades"}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	exam, err := getExam(tx, institutionID, examID)
	if err != nil {
		return nil, err
	}
	if exam.Locked {
		return nil, &ForbiddenError{Msg: "exam is locked"}
	}

	grade, err := getGradeByPair(tx, institutionID, studentID, examID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if grade == nil {
		grade = &models.Grade{
			ID:            uuid.NewString(),
			InstitutionID: institutionID,
			ExamID:        examID,
			StudentID:     studentID,
			Score:         score,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, err = tx.Exec(`INSERT INTO grades (id, institution_id, exam_id, student_id, score, created_at, updated_at)
						  VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			grade.ID, grade.InstitutionID, grade.ExamID, grade.StudentID,
			grade.Score, grade.CreatedAt, grade.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert grade: %w", err)
		}
	} else {
		// updated_at must strictly increase even on sub-resolution clocks
		if !now.After(grade.UpdatedAt) {
			now = grade.UpdatedAt.Add(time.Microsecond)
		}
		grade.Score = score
		grade.UpdatedAt = now
		_, err = tx.Exec(`UPDATE grades SET score = $1, updated_at = $2 WHERE id = $3 AND institution_id = $4`,
			grade.Score, grade.UpdatedAt, grade.ID, institutionID)
		if err != nil {
			return nil, fmt.Errorf("failed to update grade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return grade, nil
}

// UpdateGradeScore changes an existing grade by id, under the same lock and
// capability gates as UpsertGrade.
func UpdateGradeScore(db *sql.DB, institutionID, gradeID string, score float64, actor *models.User) (*models.Grade, error) {
	if score < 0 || score > 20 {
		return nil, validationf("score must be between 0 and 20")
	}
	if !actor.Role.CanRecordGrades() {
		return nil, &ForbiddenError{Msg: "caller may not record grades"}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	grade, exam, err := getGradeWithExam(tx, institutionID, gradeID)
	if err != nil {
		return nil, err
	}
	if exam.Locked {
		return nil, &ForbiddenError{Msg: "exam is locked"}
	}

	now := time.Now().UTC()
	if !now.After(grade.UpdatedAt) {
		now = grade.UpdatedAt.Add(time.Microsecond)
	}
	grade.Score = score
	grade.UpdatedAt = now
	_, err = tx.Exec(`UPDATE grades SET score = $1, updated_at = $2 WHERE id = $3 AND institution_id = $4`,
		grade.Score, grade.UpdatedAt, grade.ID, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update grade: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return grade, nil
}

// RemoveGrade deletes a grade, e.g. when the teacher clears the score input.
// Same gates as UpsertGrade.
func RemoveGrade(db *sql.DB, institutionID, gradeID string, actor *models.User) error {
	if !actor.Role.CanRecordGrades() {
		return &ForbiddenError{Msg: "caller may not record grades"}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, exam, err := getGradeWithExam(tx, institutionID, gradeID)
	if err != nil {
		return err
	}
	if exam.Locked {
		return &ForbiddenError{Msg: "exam is locked"}
	}

	_, err = tx.Exec(`DELETE FROM grades WHERE id = $1 AND institution_id = $2`, gradeID, institutionID)
	if err != nil {
		return fmt.Errorf("failed to delete grade: %w", err)
	}
	return tx.Commit()
}

func getGradeWithExam(q rowQuerier, institutionID, gradeID string) (*models.Grade, *models.Exam, error) {
	g := &models.Grade{}
	err := q.QueryRow(`SELECT id, institution_id, exam_id, student_id, score, created_at, updated_at
					   FROM grades WHERE id = $1 AND institution_id = $2`,
		gradeID, institutionID).Scan(
		&g.ID, &g.InstitutionID, &g.ExamID, &g.StudentID, &g.Score, &g.CreatedAt, &g.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, &NotFoundError{Entity: "grade"}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch grade: %w", err)
	}

	exam, err := getExam(q, institutionID, g.ExamID)
	if err != nil {
		return nil, nil, err
	}
	return g, exam, nil
}

// ListGradesByExam returns every grade recorded for an exam, tenant-scoped.
func ListGradesByExam(db *sql.DB, institutionID, examID string) ([]*models.Grade, error) {
	return listGrades(db, `SELECT id, institution_id, exam_id, student_id, score, created_at, updated_at
						   FROM grades WHERE exam_id = $1 AND institution_id = $2 ORDER BY created_at`, examID, institutionID)
}

// ListGradesByStudent returns every grade of one student, tenant-scoped.
func ListGradesByStudent(db *sql.DB, institutionID, studentID string) ([]*models.Grade, error) {
	return listGrades(db, `SELECT id, institution_id, exam_id, student_id, score, created_at, updated_at
						   FROM grades WHERE student_id = $1 AND institution_id = $2 ORDER BY created_at`, studentID, institutionID)
}

func listGrades(db *sql.DB, query string, args ...interface{}) ([]*models.Grade, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch grades: %w", err)
	}
	defer rows.Close()

	var grades []*models.Grade
	for rows.Next() {
		g := &models.Grade{}
		if err := rows.Scan(&g.ID, &g.InstitutionID, &g.ExamID, &g.StudentID, &g.Score, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan grade: %w", err)
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}
