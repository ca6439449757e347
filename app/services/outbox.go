package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"zawadi-college/app/models"
)

// EnqueueNotification appends a pending notification inside the caller's
// transaction, so the workflow milestone and its notification commit or roll
// back together.
func EnqueueNotification(tx *sql.Tx, institutionID string, ntype models.NotificationType, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode notification payload: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO notifications (id, institution_id, type, status, payload, created_at)
					  VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), institutionID, ntype, models.NotificationPending,
		string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

// ListNotifications returns the institution's notifications, optionally
// filtered by status, newest first.
func ListNotifications(db *sql.DB, institutionID string, status models.NotificationStatus) ([]*models.Notification, error) {
	query := `SELECT id, institution_id, type, status, payload, created_at, sent_at
			  FROM notifications WHERE institution_id = $1`
	args := []interface{}{institutionID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var items []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var sentAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.InstitutionID, &n.Type, &n.Status, &n.Payload, &n.CreatedAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if sentAt.Valid {
			n.SentAt = &sentAt.Time
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// deliverNotification records that the event happened. No external transport
// is mandated; a package variable so tests can inject delivery failures.
var deliverNotification = func(n *models.Notification) error {
	log.Printf("notification %s [%s] delivered: %s", n.ID, n.Type, n.Payload)
	return nil
}

// DispatchNotifications flips every pending notification to sent. A failed
// item is logged and stays pending for the next sweep; it never blocks the
// rest of the batch. Returns the number of items marked sent.
func DispatchNotifications(db *sql.DB) (int, error) {
	rows, err := db.Query(`SELECT id, institution_id, type, status, payload, created_at
						   FROM notifications WHERE status = $1 ORDER BY created_at`,
		models.NotificationPending)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending notifications: %w", err)
	}

	var pending []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.InstitutionID, &n.Type, &n.Status, &n.Payload, &n.CreatedAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		pending = append(pending, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range pending {
		if err := deliverNotification(n); err != nil {
			log.Printf("Failed to deliver notification %s: %v", n.ID, err)
			continue
		}

		now := time.Now().UTC()
		_, err := db.Exec(`UPDATE notifications SET status = $1, sent_at = $2 WHERE id = $3 AND status = $4`,
			models.NotificationSent, now, n.ID, models.NotificationPending)
		if err != nil {
			log.Printf("Failed to mark notification %s as sent: %v", n.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}
