package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zawadi-college/app/models"
)

func TestContributionForStatus(t *testing.T) {
	tests := []struct {
		status models.EnrollmentStatus
		want   Contribution
	}{
		{models.EnrollmentActive, Contribution{InProgress: 6}},
		{models.EnrollmentCompleted, Contribution{Earned: 6}},
		{models.EnrollmentWithdrawn, Contribution{}},
		{models.EnrollmentFailed, Contribution{}},
		{models.EnrollmentStatus("anything-else"), Contribution{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContributionForStatus(tt.status, 6), "status %s", tt.status)
	}
}

func TestEnrollIdempotent(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	first, err := Enroll(db, f.InstitutionID, "student-1", f.ClassCourseID, models.EnrollmentActive, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, first.Credits)

	second, err := Enroll(db, f.InstitutionID, "student-1", f.ClassCourseID, models.EnrollmentActive, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// The repeat enrollment never double-counts the ledger.
	ledger, err := LedgerFor(db, f.InstitutionID, "student-1", f.AcademicYearID)
	require.NoError(t, err)
	assert.Equal(t, 6, ledger.CreditsInProgress)
	assert.Equal(t, 0, ledger.CreditsEarned)
}

func TestEnrollSecondAttempt(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	first, err := Enroll(db, f.InstitutionID, "student-1", f.ClassCourseID, models.EnrollmentActive, 1)
	require.NoError(t, err)

	retake, err := Enroll(db, f.InstitutionID, "student-1", f.ClassCourseID, models.EnrollmentActive, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, retake.ID)
	assert.Equal(t, 2, retake.Attempt)
}

func TestLedgerFollowsStatusTransitions(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	enrollment, err := Enroll(db, f.InstitutionID, "student-1", f.ClassCourseID, models.EnrollmentActive, 1)
	require.NoError(t, err)

	ledger, err := LedgerFor(db, f.InstitutionID, "student-1", f.AcademicYearID)
	require.NoError(t, err)
	assert.Equal(t, 6, ledger.CreditsInProgress)
	assert.Equal(t, 0, ledger.CreditsEarned)

	_, err = ChangeEnrollmentStatus(db, f.InstitutionID, enrollment.ID, models.EnrollmentCompleted)
	require.NoError(t, err)

	ledger, err = LedgerFor(db, f.InstitutionID, "student-1", f.AcademicYearID)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.CreditsInProgress)
	assert.Equal(t, 6, ledger.CreditsEarned)

	// Withdraw after completion pulls the credits back out.
	_, err = ChangeEnrollmentStatus(db, f.InstitutionID, enrollment.ID, models.EnrollmentWithdrawn)
	require.NoError(t, err)

	ledger, err = LedgerFor(db, f.InstitutionID, "student-1", f.AcademicYearID)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.CreditsInProgress)
	assert.Equal(t, 0, ledger.CreditsEarned)

	// And completing again restores them exactly once.
	_, err = ChangeEnrollmentStatus(db, f.InstitutionID, enrollment.ID, models.EnrollmentCompleted)
	require.NoError(t, err)

	ledger, err = LedgerFor(db, f.InstitutionID, "student-1", f.AcademicYearID)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.CreditsInProgress)
	assert.Equal(t, 6, ledger.CreditsEarned)
}

func TestChangeStatusToSameIsNoOp(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	enrollment, err := Enroll(db, f.InstitutionID, "student-1", f.ClassCourseID, models.EnrollmentActive, 1)
	require.NoError(t, err)

	_, err = ChangeEnrollmentStatus(db, f.InstitutionID, enrollment.ID, models.EnrollmentActive)
	require.NoError(t, err)

	ledger, err := LedgerFor(db, f.InstitutionID, "student-1", f.AcademicYearID)
	require.NoError(t, err)
	assert.Equal(t, 6, ledger.CreditsInProgress)
}

func TestBulkEnrollAccumulatesLedger(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)
	second := seedClassCourse(t, db, f, 4)

	enrollments, err := BulkEnroll(db, f.InstitutionID, "student-1", []string{f.ClassCourseID, second}, models.EnrollmentActive)
	require.NoError(t, err)
	require.Len(t, enrollments, 2)

	ledger, err := LedgerFor(db, f.InstitutionID, "student-1", f.AcademicYearID)
	require.NoError(t, err)
	assert.Equal(t, 10, ledger.CreditsInProgress)
}

func TestEnrollRejectedWhenWindowClosed(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	_, err := SetEnrollmentWindow(db, f.InstitutionID, f.ClassID, f.AcademicYearID, models.WindowClosed)
	require.NoError(t, err)

	var fErr *ForbiddenError
	_, err = Enroll(db, f.InstitutionID, "student-1", f.ClassCourseID, models.EnrollmentActive, 1)
	require.ErrorAs(t, err, &fErr)

	// The toggle itself queued a window-change notification.
	pending, err := ListNotifications(db, f.InstitutionID, models.NotificationPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.NotifyEnrollmentWindowChange, pending[0].Type)

	// Reopening lets the registration through.
	_, err = SetEnrollmentWindow(db, f.InstitutionID, f.ClassID, f.AcademicYearID, models.WindowOpen)
	require.NoError(t, err)
	_, err = Enroll(db, f.InstitutionID, "student-1", f.ClassCourseID, models.EnrollmentActive, 1)
	require.NoError(t, err)
}

func TestLedgerForMissingRowReadsZero(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	ledger, err := LedgerFor(db, f.InstitutionID, "nobody", f.AcademicYearID)
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.CreditsInProgress)
	assert.Equal(t, 0, ledger.CreditsEarned)
}
