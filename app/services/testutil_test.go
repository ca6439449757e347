package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"zawadi-college/app/database"
	"zawadi-college/app/models"
)

// openTestDB gives each test its own in-memory database with the real
// schema. One connection only, so the memory database stays alive for the
// whole test.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

type fixture struct {
	InstitutionID  string
	AcademicYearID string
	ClassID        string
	ClassCourseID  string
	Teacher        *models.User
	Admin          *models.User
}

// seedTenant inserts one institution's academic year and a class-course
// worth 6 credits, plus a teacher and an admin account.
func seedTenant(t *testing.T, db *sql.DB) fixture {
	t.Helper()

	f := fixture{
		InstitutionID:  uuid.NewString(),
		AcademicYearID: uuid.NewString(),
		ClassID:        uuid.NewString(),
		ClassCourseID:  uuid.NewString(),
	}
	now := time.Now().UTC()

	_, err := db.Exec(`INSERT INTO academic_years (id, institution_id, name, start_date, end_date, is_current, created_at, updated_at)
					   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.AcademicYearID, f.InstitutionID, "2025-2026",
		now.AddDate(0, -1, 0), now.AddDate(0, 11, 0), true, now, now)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO class_courses (id, institution_id, class_id, course_id, teacher_id, academic_year_id, credits, created_at, updated_at)
					  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.ClassCourseID, f.InstitutionID, f.ClassID, uuid.NewString(), nil,
		f.AcademicYearID, 6, now, now)
	require.NoError(t, err)

	f.Teacher = seedUser(t, db, f.InstitutionID, models.RoleTeacher)
	f.Admin = seedUser(t, db, f.InstitutionID, models.RoleAdmin)
	return f
}

func seedUser(t *testing.T, db *sql.DB, institutionID string, role models.Role) *models.User {
	t.Helper()

	now := time.Now().UTC()
	u := &models.User{
		ID:            uuid.NewString(),
		InstitutionID: institutionID,
		Email:         uuid.NewString() + "@zawadi.test",
		Password:      "x",
		FirstName:     "Test",
		LastName:      "User",
		Role:          role,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := db.Exec(`INSERT INTO users (id, institution_id, email, password, first_name, last_name, role, is_active, created_at, updated_at)
					   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.InstitutionID, u.Email, u.Password, u.FirstName, u.LastName, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	require.NoError(t, err)
	return u
}

// seedClassCourse adds another class-course to the fixture's tenant.
func seedClassCourse(t *testing.T, db *sql.DB, f fixture, credits int) string {
	t.Helper()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO class_courses (id, institution_id, class_id, course_id, teacher_id, academic_year_id, credits, created_at, updated_at)
					  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, f.InstitutionID, f.ClassID, uuid.NewString(), nil, f.AcademicYearID, credits, now, now)
	require.NoError(t, err)
	return id
}

func newExamInput(classCourseID string, weight int) ExamInput {
	return ExamInput{
		Name:          "Midterm",
		Type:          "written",
		ScheduledDate: models.CustomDate{Time: time.Now().AddDate(0, 1, 0)},
		Weight:        weight,
		ClassCourseID: classCourseID,
	}
}
