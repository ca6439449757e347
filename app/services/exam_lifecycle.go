package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"zawadi-college/app/models"
)

// Exam lifecycle: draft -> scheduled -> submitted -> approved -> locked.
// Only forward transitions exist; a submitted exam that fails review stays
// submitted until resubmission or admin intervention.
const (
	evSchedule = "schedule"
	evSubmit   = "submit"
	evValidate = "validate"
	evClose    = "close"
)

func lifecycleFSM(current models.ExamStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: evSchedule, Src: []string{string(models.ExamDraft)}, Dst: string(models.ExamScheduled)},
			{Name: evSubmit, Src: []string{string(models.ExamDraft), string(models.ExamScheduled)}, Dst: string(models.ExamSubmitted)},
			{Name: evValidate, Src: []string{string(models.ExamSubmitted)}, Dst: string(models.ExamApproved)},
			{Name: evClose, Src: []string{string(models.ExamApproved)}, Dst: string(models.ExamLocked)},
		},
		fsm.Callbacks{},
	)
}

// transition runs one lifecycle event against the exam's current status and
// returns the destination status, or InvalidStateError if the event is not
// permitted from that status.
func transition(exam *models.Exam, event string) (models.ExamStatus, error) {
	m := lifecycleFSM(exam.Status)
	if err := m.Event(context.Background(), event); err != nil {
		return "", &InvalidStateError{Op: event, Status: string(exam.Status)}
	}
	return models.ExamStatus(m.Current()), nil
}

// ExamInput carries the caller-supplied fields for creating an exam.
type ExamInput struct {
	Name          string            `json:"name" validate:"required"`
	Type          string            `json:"type" validate:"required"`
	ScheduledDate models.CustomDate `json:"scheduled_date" validate:"required"`
	Weight        int               `json:"weight" validate:"required,min=1,max=100"`
	ClassCourseID string            `json:"class_course_id" validate:"required,uuid"`
}

// ExamPatch carries the updatable fields; nil means "leave unchanged".
type ExamPatch struct {
	Name          *string            `json:"name,omitempty"`
	Type          *string            `json:"type,omitempty"`
	ScheduledDate *models.CustomDate `json:"scheduled_date,omitempty"`
	Weight        *int               `json:"weight,omitempty" validate:"omitempty,min=1,max=100"`
}

func scanExam(row *sql.Row) (*models.Exam, error) {
	e := &models.Exam{}
	var submittedBy, validatedBy sql.NullString
	var submittedAt, validatedAt, deletedAt sql.NullTime

	err := row.Scan(
		&e.ID, &e.InstitutionID, &e.ClassCourseID, &e.Name, &e.Type,
		&e.ScheduledDate, &e.Weight, &e.Status, &e.Locked,
		&submittedBy, &submittedAt, &validatedBy, &validatedAt,
		&e.CreatedAt, &e.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if submittedBy.Valid {
		e.SubmittedBy = &submittedBy.String
	}
	if submittedAt.Valid {
		e.SubmittedAt = &submittedAt.Time
	}
	if validatedBy.Valid {
		e.ValidatedBy = &validatedBy.String
	}
	if validatedAt.Valid {
		e.ValidatedAt = &validatedAt.Time
	}
	if deletedAt.Valid {
		e.DeletedAt = &deletedAt.Time
	}
	return e, nil
}

const examColumns = `id, institution_id, class_course_id, name, type, scheduled_date, weight, status, locked,
	submitted_by, submitted_at, validated_by, validated_at, created_at, updated_at, deleted_at`

type rowQuerier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

// getExam loads an active exam scoped to the institution. Cross-tenant and
// soft-deleted records come back as NotFoundError.
func getExam(q rowQuerier, institutionID, id string) (*models.Exam, error) {
	row := q.QueryRow(`SELECT `+examColumns+` FROM exams
					   WHERE id = $1 AND institution_id = $2 AND deleted_at IS NULL`, id, institutionID)
	exam, err := scanExam(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "exam"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exam: %w", err)
	}
	return exam, nil
}

// GetExam is the tenant-scoped read used by handlers.
func GetExam(db *sql.DB, institutionID, id string) (*models.Exam, error) {
	return getExam(db, institutionID, id)
}

// ListExams returns the institution's active exams, optionally restricted to
// one class-course.
func ListExams(db *sql.DB, institutionID, classCourseID string) ([]*models.Exam, error) {
	query := `SELECT ` + examColumns + ` FROM exams WHERE institution_id = $1 AND deleted_at IS NULL`
	args := []interface{}{institutionID}
	if classCourseID != "" {
		query += " AND class_course_id = $2"
		args = append(args, classCourseID)
	}
	query += " ORDER BY scheduled_date, created_at"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exams: %w", err)
	}
	defer rows.Close()

	var exams []*models.Exam
	for rows.Next() {
		e := &models.Exam{}
		var submittedBy, validatedBy sql.NullString
		var submittedAt, validatedAt, deletedAt sql.NullTime
		err := rows.Scan(
			&e.ID, &e.InstitutionID, &e.ClassCourseID, &e.Name, &e.Type,
			&e.ScheduledDate, &e.Weight, &e.Status, &e.Locked,
			&submittedBy, &submittedAt, &validatedBy, &validatedAt,
			&e.CreatedAt, &e.UpdatedAt, &deletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exam: %w", err)
		}
		if submittedBy.Valid {
			e.SubmittedBy = &submittedBy.String
		}
		if submittedAt.Valid {
			e.SubmittedAt = &submittedAt.Time
		}
		if validatedBy.Valid {
			e.ValidatedBy = &validatedBy.String
		}
		if validatedAt.Valid {
			e.ValidatedAt = &validatedAt.Time
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// weightInUse sums the weights of the class-course's active exams, excluding
// one exam id when re-validating an update.
func weightInUse(q rowQuerier, institutionID, classCourseID, excludeExamID string) (int, error) {
	query := `SELECT COALESCE(SUM(weight), 0) FROM exams
			  WHERE class_course_id = $1 AND institution_id = $2 AND deleted_at IS NULL`
	args := []interface{}{classCourseID, institutionID}
	if excludeExamID != "" {
		query += " AND id <> $3"
		args = append(args, excludeExamID)
	}

	var total int
	if err := q.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum exam weights: %w", err)
	}
	return total, nil
}

// CreateExam validates the weight invariant and inserts the exam in draft.
// The sum of weights across a class-course's active exams never exceeds 100.
func CreateExam(db *sql.DB, institutionID string, in ExamInput) (*models.Exam, error) {
	if in.Weight < 1 || in.Weight > 100 {
		return nil, validationf("weight must be between 1 and 100")
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var ccID string
	err = tx.QueryRow(`SELECT id FROM class_courses WHERE id = $1 AND institution_id = $2`,
		in.ClassCourseID, institutionID).Scan(&ccID)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "class-course"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch class-course: %w", err)
	}

	used, err := weightInUse(tx, institutionID, in.ClassCourseID, "")
	if err != nil {
		return nil, err
	}
	if used+in.Weight > 100 {
		return nil, validationf("weight %d would bring the class-course total to %d%%, above 100%%", in.Weight, used+in.Weight)
	}

	now := time.Now().UTC()
	exam := &models.Exam{
		ID:            uuid.NewString(),
		InstitutionID: institutionID,
		ClassCourseID: in.ClassCourseID,
		Name:          in.Name,
		Type:          in.Type,
		ScheduledDate: in.ScheduledDate,
		Weight:        in.Weight,
		Status:        models.ExamDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = tx.Exec(`INSERT INTO exams (id, institution_id, class_course_id, name, type, scheduled_date, weight, status, locked, created_at, updated_at)
					  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		exam.ID, exam.InstitutionID, exam.ClassCourseID, exam.Name, exam.Type,
		exam.ScheduledDate, exam.Weight, exam.Status, exam.Locked,
		exam.CreatedAt, exam.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert exam: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return exam, nil
}

// UpdateExam applies a partial update. Locked exams reject any change; a
// weight change re-validates the class-course sum inside the same transaction.
func UpdateExam(db *sql.DB, institutionID, id string, patch ExamPatch) (*models.Exam, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	exam, err := getExam(tx, institutionID, id)
	if err != nil {
		return nil, err
	}
	if exam.Locked {
		return nil, &ForbiddenError{Msg: "exam is locked"}
	}

	if patch.Name != nil {
		exam.Name = *patch.Name
	}
	if patch.Type != nil {
		exam.Type = *patch.Type
	}
	if patch.ScheduledDate != nil {
		exam.ScheduledDate = *patch.ScheduledDate
	}
	if patch.Weight != nil {
		if *patch.Weight < 1 || *patch.Weight > 100 {
			return nil, validationf("weight must be between 1 and 100")
		}
		used, err := weightInUse(tx, institutionID, exam.ClassCourseID, exam.ID)
		if err != nil {
			return nil, err
		}
		if used+*patch.Weight > 100 {
			return nil, validationf("weight %d would bring the class-course total to %d%%, above 100%%", *patch.Weight, used+*patch.Weight)
		}
		exam.Weight = *patch.Weight
	}

	exam.UpdatedAt = time.Now().UTC()
	_, err = tx.Exec(`UPDATE exams SET name = $1, type = $2, scheduled_date = $3, weight = $4, updated_at = $5
					  WHERE id = $6 AND institution_id = $7`,
		exam.Name, exam.Type, exam.ScheduledDate, exam.Weight, exam.UpdatedAt,
		exam.ID, institutionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return exam, nil
}

// DeleteExam soft-deletes an unlocked exam, freeing its weight for the
// class-course.
func DeleteExam(db *sql.DB, institutionID, id string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	exam, err := getExam(tx, institutionID, id)
	if err != nil {
		return err
	}
	if exam.Locked {
		return &ForbiddenError{Msg: "exam is locked"}
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`UPDATE exams SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND institution_id = $3`,
		now, id, institutionID)
	if err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}
	return tx.Commit()
}

// ScheduleExam confirms the exam date: draft -> scheduled.
func ScheduleExam(db *sql.DB, institutionID, id string) (*models.Exam, error) {
	return applyTransition(db, institutionID, id, evSchedule, "")
}

// SubmitExam moves a draft or scheduled exam to submitted and queues the
// submission notification.
func SubmitExam(db *sql.DB, institutionID, id, actorID string) (*models.Exam, error) {
	return applyTransition(db, institutionID, id, evSubmit, actorID)
}

// ValidateExam approves a submitted exam's grades, recording the validator
// identity and timestamp, and queues the validation notification.
func ValidateExam(db *sql.DB, institutionID, id, approverID string) (*models.Exam, error) {
	return applyTransition(db, institutionID, id, evValidate, approverID)
}

// applyTransition runs one lifecycle event inside a transaction. Milestone
// events (submit, validate) enqueue exactly one notification recording the
// old state, new state and acting identity.
func applyTransition(db *sql.DB, institutionID, id, event, actorID string) (*models.Exam, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	exam, err := getExam(tx, institutionID, id)
	if err != nil {
		return nil, err
	}

	oldStatus := exam.Status
	newStatus, err := transition(exam, event)
	if err != nil {
		return nil, err
	}
	exam.Status = newStatus

	now := time.Now().UTC()
	exam.UpdatedAt = now

	switch event {
	case evSubmit:
		exam.SubmittedBy = &actorID
		exam.SubmittedAt = &now
	case evValidate:
		exam.ValidatedBy = &actorID
		exam.ValidatedAt = &now
	}

	_, err = tx.Exec(`UPDATE exams SET status = $1, submitted_by = $2, submitted_at = $3,
					  validated_by = $4, validated_at = $5, updated_at = $6
					  WHERE id = $7 AND institution_id = $8`,
		exam.Status, exam.SubmittedBy, exam.SubmittedAt,
		exam.ValidatedBy, exam.ValidatedAt, exam.UpdatedAt,
		exam.ID, institutionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update exam status: %w", err)
	}

	switch event {
	case evSubmit:
		err = EnqueueNotification(tx, institutionID, models.NotifyExamSubmission, transitionPayload(exam.ID, oldStatus, newStatus, actorID))
	case evValidate:
		err = EnqueueNotification(tx, institutionID, models.NotifyGradeValidation, transitionPayload(exam.ID, oldStatus, newStatus, actorID))
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return exam, nil
}

func transitionPayload(examID string, from, to models.ExamStatus, actorID string) map[string]string {
	return map[string]string{
		"exam_id":     examID,
		"from_status": string(from),
		"to_status":   string(to),
		"actor_id":    actorID,
	}
}

// SetExamLock toggles the lock flag. Locking freezes every grade and exam
// mutation; unlocking is admin-only and leaves the status untouched.
func SetExamLock(db *sql.DB, institutionID, id string, lock bool, actor *models.User) (*models.Exam, error) {
	if !lock && !actor.Role.CanUnlockExams() {
		return nil, &ForbiddenError{Msg: "only an admin may unlock an exam"}
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	exam, err := getExam(tx, institutionID, id)
	if err != nil {
		return nil, err
	}

	exam.Locked = lock
	exam.UpdatedAt = time.Now().UTC()
	_, err = tx.Exec(`UPDATE exams SET locked = $1, updated_at = $2 WHERE id = $3 AND institution_id = $4`,
		exam.Locked, exam.UpdatedAt, exam.ID, institutionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update lock flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return exam, nil
}

// CloseExpiredExams locks every approved exam whose validation is older than
// the grace window, across all institutions. Re-running against already
// locked exams is a no-op; the status predicate makes the sweep idempotent.
func CloseExpiredExams(db *sql.DB, grace time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-grace)

	res, err := db.Exec(`UPDATE exams SET status = $1, locked = true, updated_at = $2
						 WHERE status = $3 AND validated_at IS NOT NULL AND validated_at < $4 AND deleted_at IS NULL`,
		models.ExamLocked, time.Now().UTC(), models.ExamApproved, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to close expired exams: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
