package models

// ExamStatus defines the lifecycle states of an exam.
type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamScheduled ExamStatus = "scheduled"
	ExamSubmitted ExamStatus = "submitted"
	ExamApproved  ExamStatus = "approved"
	ExamLocked    ExamStatus = "locked"
)

// EnrollmentStatus defines the possible status values for a student's
// enrollment in a class-course.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentWithdrawn EnrollmentStatus = "withdrawn"
	EnrollmentFailed    EnrollmentStatus = "failed"
)

// NotificationType discriminates workflow notifications.
type NotificationType string

const (
	NotifyExamSubmission         NotificationType = "exam_submission"
	NotifyGradeValidation        NotificationType = "grade_validation"
	NotifyAttendanceAlert        NotificationType = "attendance_alert"
	NotifyEnrollmentWindowChange NotificationType = "enrollment_window_change"
)

// NotificationStatus defines the delivery state of a notification.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
)

// WindowStatus defines whether an enrollment window accepts registrations.
type WindowStatus string

const (
	WindowOpen   WindowStatus = "open"
	WindowClosed WindowStatus = "closed"
)

// Role defines the capability level of a platform user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStaff   Role = "staff"
)

// CanRecordGrades reports whether a role may create, change or remove grades.
func (r Role) CanRecordGrades() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// CanUnlockExams reports whether a role may clear an exam's lock flag.
func (r Role) CanUnlockExams() bool {
	return r == RoleAdmin
}
