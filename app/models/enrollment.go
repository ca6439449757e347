package models

import "time"

// StudentCourseEnrollment captures a student's registration in a class-course
// for one attempt. Exactly one row exists per (student, classCourse, attempt).
type StudentCourseEnrollment struct {
	ID             string           `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	InstitutionID  string           `json:"institution_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	StudentID      string           `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	ClassCourseID  string           `json:"class_course_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYearID string           `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Status         EnrollmentStatus `json:"status" gorm:"not null;default:'active';index"`
	Attempt        int              `json:"attempt" gorm:"not null;default:1" validate:"gte=1"`
	Credits        int              `json:"credits" gorm:"not null;type:integer" validate:"gte=0"`
	CreatedAt      time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"autoUpdateTime"`

	ClassCourse *ClassCourse `json:"class_course,omitempty" gorm:"foreignKey:ClassCourseID;references:ID"`
}

// CreditLedgerEntry is the per-student, per-academic-year running total of
// credits in progress and credits earned. Adjusted only through signed deltas
// computed from enrollment status transitions.
type CreditLedgerEntry struct {
	ID                string    `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	InstitutionID     string    `json:"institution_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	StudentID         string    `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYearID    string    `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	CreditsInProgress int       `json:"credits_in_progress" gorm:"not null;default:0"`
	CreditsEarned     int       `json:"credits_earned" gorm:"not null;default:0"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
