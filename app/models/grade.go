package models

import "time"

// Grade stores a student's score for one exam on the 0-20 scale.
// At most one grade exists per (student, exam) pair.
type Grade struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	InstitutionID string    `json:"institution_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	ExamID        string    `json:"exam_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	StudentID     string    `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Score         float64   `json:"score" gorm:"not null" validate:"gte=0,lte=20"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Exam *Exam `json:"exam,omitempty" gorm:"foreignKey:ExamID;references:ID"`
}
