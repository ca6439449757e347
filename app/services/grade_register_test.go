package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zawadi-college/app/models"
)

func TestUpsertGradeIdempotentIdentity(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	exam, err := CreateExam(db, f.InstitutionID, newExamInput(f.ClassCourseID, 40))
	require.NoError(t, err)

	first, err := UpsertGrade(db, f.InstitutionID, "student-1", exam.ID, 12, f.Teacher)
	require.NoError(t, err)

	second, err := UpsertGrade(db, f.InstitutionID, "student-1", exam.ID, 15.5, f.Teacher)
	require.NoError(t, err)

	// Same row, new score, strictly later updated_at.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 15.5, second.Score)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	grades, err := ListGradesByExam(db, f.InstitutionID, exam.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
}

func TestUpsertGradeScoreRange(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	exam, err := CreateExam(db, f.InstitutionID, newExamInput(f.ClassCourseID, 40))
	require.NoError(t, err)

	var vErr *ValidationError
	_, err = UpsertGrade(db, f.InstitutionID, "student-1", exam.ID, -0.5, f.Teacher)
	require.ErrorAs(t, err, &vErr)

	_, err = UpsertGrade(db, f.InstitutionID, "student-1", exam.ID, 20.5, f.Teacher)
	require.ErrorAs(t, err, &vErr)
}

func TestUpsertGradeCapability(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	exam, err := CreateExam(db, f.InstitutionID, newExamInput(f.ClassCourseID, 40))
	require.NoError(t, err)

	staff := seedUser(t, db, f.InstitutionID, models.RoleStaff)

	var fErr *ForbiddenError
	_, err = UpsertGrade(db, f.InstitutionID, "student-1", exam.ID, 10, staff)
	require.ErrorAs(t, err, &fErr)
}

func TestGradeMutationsAgainstLockedExam(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	exam, err := CreateExam(db, f.InstitutionID, newExamInput(f.ClassCourseID, 40))
	require.NoError(t, err)

	grade, err := UpsertGrade(db, f.InstitutionID, "student-1", exam.ID, 10, f.Teacher)
	require.NoError(t, err)

	_, err = SetExamLock(db, f.InstitutionID, exam.ID, true, f.Admin)
	require.NoError(t, err)

	var fErr *ForbiddenError
	_, err = UpsertGrade(db, f.InstitutionID, "student-1", exam.ID, 11, f.Teacher)
	require.ErrorAs(t, err, &fErr)

	_, err = UpdateGradeScore(db, f.InstitutionID, grade.ID, 11, f.Teacher)
	require.ErrorAs(t, err, &fErr)

	err = RemoveGrade(db, f.InstitutionID, grade.ID, f.Teacher)
	require.ErrorAs(t, err, &fErr)

	// Unlock reopens grade entry.
	_, err = SetExamLock(db, f.InstitutionID, exam.ID, false, f.Admin)
	require.NoError(t, err)
	_, err = UpsertGrade(db, f.InstitutionID, "student-1", exam.ID, 11, f.Teacher)
	require.NoError(t, err)
}

func TestRemoveGrade(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	exam, err := CreateExam(db, f.InstitutionID, newExamInput(f.ClassCourseID, 40))
	require.NoError(t, err)

	grade, err := UpsertGrade(db, f.InstitutionID, "student-1", exam.ID, 10, f.Teacher)
	require.NoError(t, err)

	require.NoError(t, RemoveGrade(db, f.InstitutionID, grade.ID, f.Teacher))

	grades, err := ListGradesByExam(db, f.InstitutionID, exam.ID)
	require.NoError(t, err)
	assert.Empty(t, grades)

	var nfErr *NotFoundError
	err = RemoveGrade(db, f.InstitutionID, grade.ID, f.Teacher)
	require.ErrorAs(t, err, &nfErr)
}

func TestListGradesByStudent(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	examA, err := CreateExam(db, f.InstitutionID, newExamInput(f.ClassCourseID, 40))
	require.NoError(t, err)
	examB, err := CreateExam(db, f.InstitutionID, newExamInput(f.ClassCourseID, 40))
	require.NoError(t, err)

	_, err = UpsertGrade(db, f.InstitutionID, "student-1", examA.ID, 10, f.Teacher)
	require.NoError(t, err)
	_, err = UpsertGrade(db, f.InstitutionID, "student-1", examB.ID, 16, f.Teacher)
	require.NoError(t, err)
	_, err = UpsertGrade(db, f.InstitutionID, "student-2", examA.ID, 8, f.Teacher)
	require.NoError(t, err)

	grades, err := ListGradesByStudent(db, f.InstitutionID, "student-1")
	require.NoError(t, err)
	assert.Len(t, grades, 2)
}
