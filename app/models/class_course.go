package models

import "time"

// ClassCourse binds one course to one class for one academic year, taught by
// one teacher. Exams and their weights are scoped to a class-course.
type ClassCourse struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	InstitutionID  string    `json:"institution_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	ClassID        string    `json:"class_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	CourseID       string    `json:"course_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	TeacherID      *string   `json:"teacher_id,omitempty" gorm:"index;type:uuid" validate:"omitempty,uuid"`
	AcademicYearID string    `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Credits        int       `json:"credits" gorm:"not null;type:integer" validate:"gte=0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// EnrollmentWindow gates student registration for one class in one academic
// year. Toggled by an explicit admin action.
type EnrollmentWindow struct {
	ID             string       `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	InstitutionID  string       `json:"institution_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	ClassID        string       `json:"class_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	AcademicYearID string       `json:"academic_year_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Status         WindowStatus `json:"status" gorm:"not null;default:'open'"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}
