package database

import (
	"database/sql"
	"fmt"
	"log"
)

// RunMigrations creates the schema if it does not exist yet. The DDL sticks
// to types both PostgreSQL and SQLite understand; IDs and timestamps are
// generated in Go rather than by the database.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			institution_id TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'teacher',
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS academic_years (
			id TEXT PRIMARY KEY,
			institution_id TEXT NOT NULL,
			name TEXT NOT NULL,
			start_date TIMESTAMP NOT NULL,
			end_date TIMESTAMP NOT NULL,
			is_current BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS class_courses (
			id TEXT PRIMARY KEY,
			institution_id TEXT NOT NULL,
			class_id TEXT NOT NULL,
			course_id TEXT NOT NULL,
			teacher_id TEXT,
			academic_year_id TEXT NOT NULL,
			credits INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS enrollment_windows (
			id TEXT PRIMARY KEY,
			institution_id TEXT NOT NULL,
			class_id TEXT NOT NULL,
			academic_year_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open',
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (class_id, academic_year_id)
		)`,
		`CREATE TABLE IF NOT EXISTS exams (
			id TEXT PRIMARY KEY,
			institution_id TEXT NOT NULL,
			class_course_id TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'exam',
			scheduled_date TIMESTAMP NOT NULL,
			weight INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			locked BOOLEAN NOT NULL DEFAULT false,
			submitted_by TEXT,
			submitted_at TIMESTAMP,
			validated_by TEXT,
			validated_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS grades (
			id TEXT PRIMARY KEY,
			institution_id TEXT NOT NULL,
			exam_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (student_id, exam_id)
		)`,
		`CREATE TABLE IF NOT EXISTS student_course_enrollments (
			id TEXT PRIMARY KEY,
			institution_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			class_course_id TEXT NOT NULL,
			academic_year_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			attempt INTEGER NOT NULL DEFAULT 1,
			credits INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (student_id, class_course_id, attempt)
		)`,
		`CREATE TABLE IF NOT EXISTS credit_ledger (
			id TEXT PRIMARY KEY,
			institution_id TEXT NOT NULL,
			student_id TEXT NOT NULL,
			academic_year_id TEXT NOT NULL,
			credits_in_progress INTEGER NOT NULL DEFAULT 0,
			credits_earned INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (student_id, academic_year_id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			institution_id TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			payload TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL,
			sent_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exams_class_course ON exams (class_course_id)`,
		`CREATE INDEX IF NOT EXISTS idx_exams_status ON exams (status)`,
		`CREATE INDEX IF NOT EXISTS idx_grades_exam ON grades (exam_id)`,
		`CREATE INDEX IF NOT EXISTS idx_enrollments_student ON student_course_enrollments (student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications (status)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
