package models

import "time"

// Exam represents one assessment of a class-course. Its weight is the
// percentage the exam contributes to the final grade of that class-course.
type Exam struct {
	ID            string     `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	InstitutionID string     `json:"institution_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	ClassCourseID string     `json:"class_course_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Name          string     `json:"name" gorm:"not null" validate:"required"`
	Type          string     `json:"type" gorm:"not null;default:'exam'" validate:"required"`
	ScheduledDate CustomDate `json:"scheduled_date" gorm:"not null" validate:"required"`
	Weight        int        `json:"weight" gorm:"not null;type:integer" validate:"required,min=1,max=100"`
	Status        ExamStatus `json:"status" gorm:"not null;default:'draft';index"`
	Locked        bool       `json:"locked" gorm:"default:false"`
	SubmittedBy   *string    `json:"submitted_by,omitempty" gorm:"type:uuid"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	ValidatedBy   *string    `json:"validated_by,omitempty" gorm:"type:uuid"`
	ValidatedAt   *time.Time `json:"validated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	ClassCourse *ClassCourse `json:"class_course,omitempty" gorm:"foreignKey:ClassCourseID;references:ID"`
}
