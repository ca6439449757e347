package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"zawadi-college/app/models"
)

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, institution_id, email, password, first_name, last_name, role, is_active, created_at, updated_at
			  FROM users WHERE email = $1 AND is_active = true`

	err := db.QueryRow(query, email).Scan(
		&user.ID, &user.InstitutionID, &user.Email, &user.Password,
		&user.FirstName, &user.LastName, &user.Role, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByID(db *sql.DB, userID string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, institution_id, email, password, first_name, last_name, role, is_active, created_at, updated_at
			  FROM users WHERE id = $1 AND is_active = true`

	err := db.QueryRow(query, userID).Scan(
		&user.ID, &user.InstitutionID, &user.Email, &user.Password,
		&user.FirstName, &user.LastName, &user.Role, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new account with a hashed password.
func CreateUser(db *sql.DB, institutionID, email, password, firstName, lastName string, role models.Role) (*models.User, error) {
	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:            uuid.NewString(),
		InstitutionID: institutionID,
		Email:         email,
		Password:      hashed,
		FirstName:     firstName,
		LastName:      lastName,
		Role:          role,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = db.Exec(`INSERT INTO users (id, institution_id, email, password, first_name, last_name, role, is_active, created_at, updated_at)
					  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.InstitutionID, user.Email, user.Password, user.FirstName,
		user.LastName, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetClassCourseByID fetches a class-course scoped to the caller's institution.
func GetClassCourseByID(db *sql.DB, institutionID, id string) (*models.ClassCourse, error) {
	cc := &models.ClassCourse{}
	query := `SELECT id, institution_id, class_id, course_id, teacher_id, academic_year_id, credits, created_at, updated_at
			  FROM class_courses WHERE id = $1 AND institution_id = $2`

	var teacherID sql.NullString
	err := db.QueryRow(query, id, institutionID).Scan(
		&cc.ID, &cc.InstitutionID, &cc.ClassID, &cc.CourseID, &teacherID,
		&cc.AcademicYearID, &cc.Credits, &cc.CreatedAt, &cc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if teacherID.Valid {
		cc.TeacherID = &teacherID.String
	}
	return cc, nil
}

// GetCurrentAcademicYear returns the academic year flagged current for the
// institution, or nil if none is flagged.
func GetCurrentAcademicYear(db *sql.DB, institutionID string) (*models.AcademicYear, error) {
	ay := &models.AcademicYear{}
	query := `SELECT id, institution_id, name, start_date, end_date, is_current, created_at, updated_at
			  FROM academic_years WHERE institution_id = $1 AND is_current = true`

	err := db.QueryRow(query, institutionID).Scan(
		&ay.ID, &ay.InstitutionID, &ay.Name, &ay.StartDate, &ay.EndDate,
		&ay.IsCurrent, &ay.CreatedAt, &ay.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ay, nil
}
