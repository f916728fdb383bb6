package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/coachmail/pkg/models"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// ErrDuplicateDelivery signals that a delivery record for this
// recipient+week already exists. After a crash-and-retry this means the
// send already happened; callers finish advancing state instead of
// sending again.
var ErrDuplicateDelivery = errors.New("delivery record already exists for this week")

// AppendDeliveryRecord inserts one delivery record. Uniqueness on
// recipient+week is enforced by the store and surfaces as
// ErrDuplicateDelivery.
func (s *Store) AppendDeliveryRecord(ctx context.Context, rec *models.DeliveryRecord) error {
	query := s.db.Rebind(`
		INSERT INTO deliveries (recipient_id, week_number, action_content, sent_at, delivery_status)
		VALUES (?, ?, ?, ?, ?)
	`)
	result, err := s.db.ExecContext(ctx, query,
		rec.RecipientID,
		rec.WeekNumber,
		rec.ActionContent,
		rec.SentAt,
		rec.DeliveryStatus,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateDelivery
		}
		return fmt.Errorf("failed to append delivery record: %v", err)
	}

	// LastInsertId is not supported by the postgres driver; the ID is
	// only informational for callers, so a failure here is ignored
	if id, err := result.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// GetDeliveryHistory returns all delivery records for a recipient,
// newest first
func (s *Store) GetDeliveryHistory(ctx context.Context, recipientID string) ([]models.DeliveryRecord, error) {
	query := s.db.Rebind(`
		SELECT id, recipient_id, week_number, action_content, sent_at, delivery_status, created_at
		FROM deliveries
		WHERE recipient_id = ?
		ORDER BY week_number DESC
	`)
	var records []models.DeliveryRecord
	if err := s.db.SelectContext(ctx, &records, query, recipientID); err != nil {
		return nil, fmt.Errorf("failed to get delivery history: %v", err)
	}
	return records, nil
}

// UpdateDeliveryStatus applies an asynchronous status transition reported
// by the mail transport (sent -> delivered/failed)
func (s *Store) UpdateDeliveryStatus(ctx context.Context, recipientID string, week int, status models.DeliveryStatus) error {
	query := s.db.Rebind(`
		UPDATE deliveries SET delivery_status = ?
		WHERE recipient_id = ? AND week_number = ?
	`)
	result, err := s.db.ExecContext(ctx, query, status, recipientID, week)
	if err != nil {
		return fmt.Errorf("failed to update delivery status: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("no delivery record for recipient %s week %d", recipientID, week)
	}
	return nil
}

// CompleteDelivery performs the confirmed-send state advance with
// write-ahead ordering: the delivery record goes in first (its
// recipient+week uniqueness is the idempotency key), then the program
// state advances. A crash between the two steps heals on retry: the
// duplicate record rejection is read as "already delivered, finish
// advancing state".
//
// Returns nil on success (including the crash-retry heal) and
// ErrAdvanceConflict when another invocation already completed this
// week entirely.
func (s *Store) CompleteDelivery(ctx context.Context, rec *models.DeliveryRecord) error {
	duplicate := false
	if err := s.AppendDeliveryRecord(ctx, rec); err != nil {
		if !errors.Is(err, ErrDuplicateDelivery) {
			return err
		}
		duplicate = true
	}

	err := s.AdvanceRecipient(ctx, rec.RecipientID, rec.WeekNumber, rec.SentAt)
	if errors.Is(err, ErrAdvanceConflict) && duplicate {
		// Record and state both present: this week was fully
		// delivered by an earlier invocation
		return ErrAdvanceConflict
	}
	return err
}

// isUniqueViolation reports whether err is a uniqueness-constraint
// rejection from either supported driver
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" // unique_violation
	}

	return false
}
