package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zawadi-college/app/models"
)

func TestDispatchMarksEachPendingExactlyOnce(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, EnqueueNotification(tx, f.InstitutionID, models.NotifyExamSubmission, map[string]string{"exam_id": "e1"}))
	require.NoError(t, EnqueueNotification(tx, f.InstitutionID, models.NotifyAttendanceAlert, map[string]string{"student_id": "s1"}))
	require.NoError(t, tx.Commit())

	sent, err := DispatchNotifications(db)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	// A second run has nothing left to do and touches nothing.
	sent, err = DispatchNotifications(db)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	items, err := ListNotifications(db, f.InstitutionID, models.NotificationSent)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, n := range items {
		assert.NotNil(t, n.SentAt)
	}
}

func TestDispatchIsolatesItemFailures(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, EnqueueNotification(tx, f.InstitutionID, models.NotifyExamSubmission, map[string]string{"exam_id": "good"}))
	require.NoError(t, EnqueueNotification(tx, f.InstitutionID, models.NotifyGradeValidation, map[string]string{"exam_id": "bad"}))
	require.NoError(t, tx.Commit())

	orig := deliverNotification
	deliverNotification = func(n *models.Notification) error {
		if n.Type == models.NotifyGradeValidation {
			return errors.New("transport down")
		}
		return nil
	}
	defer func() { deliverNotification = orig }()

	sent, err := DispatchNotifications(db)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	// The failed item stays pending for the next sweep.
	pending, err := ListNotifications(db, f.InstitutionID, models.NotificationPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.NotifyGradeValidation, pending[0].Type)

	deliverNotification = orig
	sent, err = DispatchNotifications(db)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestListNotificationsFiltersByStatus(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, EnqueueNotification(tx, f.InstitutionID, models.NotifyExamSubmission, map[string]string{}))
	require.NoError(t, tx.Commit())

	_, err = DispatchNotifications(db)
	require.NoError(t, err)

	tx, err = db.Begin()
	require.NoError(t, err)
	require.NoError(t, EnqueueNotification(tx, f.InstitutionID, models.NotifyAttendanceAlert, map[string]string{}))
	require.NoError(t, tx.Commit())

	pending, err := ListNotifications(db, f.InstitutionID, models.NotificationPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.NotifyAttendanceAlert, pending[0].Type)

	all, err := ListNotifications(db, f.InstitutionID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSchedulerRunsBothSweeps(t *testing.T) {
	db := openTestDB(t)
	f := seedTenant(t, db)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, EnqueueNotification(tx, f.InstitutionID, models.NotifyExamSubmission, map[string]string{}))
	require.NoError(t, tx.Commit())

	s := NewScheduler(db, 10*time.Millisecond, 10*time.Millisecond, time.Hour)
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		sent, err := ListNotifications(db, f.InstitutionID, models.NotificationSent)
		return err == nil && len(sent) == 1
	}, 2*time.Second, 20*time.Millisecond)
}
