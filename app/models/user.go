package models

import "time"

// User is an admin or teacher account on the platform.
type User struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid" validate:"required,uuid"`
	InstitutionID string    `json:"institution_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	Password      string    `json:"-" gorm:"not null"`
	FirstName     string    `json:"first_name" gorm:"not null" validate:"required"`
	LastName      string    `json:"last_name" gorm:"not null" validate:"required"`
	Role          Role      `json:"role" gorm:"not null;default:'teacher'"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
