package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/coachmail/pkg/models"
)

// ErrAdvanceConflict signals that the recipient's week was already
// advanced past the expected value, typically by a concurrent or earlier
// invocation. Callers treat it as success-no-op.
var ErrAdvanceConflict = errors.New("recipient already advanced for this week")

const recipientColumns = "id, email, timezone, goals_text, current_week, last_delivery_at, active, created_at, updated_at"

// GetActiveRecipients returns all recipients still enrolled and active
func (s *Store) GetActiveRecipients(ctx context.Context) ([]models.Recipient, error) {
	query := "SELECT " + recipientColumns + " FROM recipients WHERE active ORDER BY created_at"

	var recipients []models.Recipient
	if err := s.db.SelectContext(ctx, &recipients, query); err != nil {
		return nil, fmt.Errorf("failed to get active recipients: %v", err)
	}
	return recipients, nil
}

// GetRecipient returns a recipient by ID
func (s *Store) GetRecipient(ctx context.Context, id string) (*models.Recipient, error) {
	query := s.db.Rebind("SELECT " + recipientColumns + " FROM recipients WHERE id = ?")

	var recipient models.Recipient
	if err := s.db.GetContext(ctx, &recipient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get recipient %s: %v", id, err)
	}
	return &recipient, nil
}

// FindRecipientByEmail returns the recipient enrolled with the given
// email, or nil when none exists
func (s *Store) FindRecipientByEmail(ctx context.Context, email string) (*models.Recipient, error) {
	query := s.db.Rebind("SELECT " + recipientColumns + " FROM recipients WHERE email = ?")

	var recipient models.Recipient
	err := s.db.GetContext(ctx, &recipient, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipient by email: %v", err)
	}
	return &recipient, nil
}

// CreateRecipient enrolls a new recipient
func (s *Store) CreateRecipient(ctx context.Context, r *models.Recipient) error {
	query := s.db.Rebind(`
		INSERT INTO recipients (id, email, timezone, goals_text, current_week, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query, r.ID, r.Email, r.Timezone, r.GoalsText, r.CurrentWeek, r.Active)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %v", err)
	}
	return nil
}

// UpdateEnrollment refreshes the enrollment fields of an existing
// recipient (timezone, goals, active flag); program state is untouched
func (s *Store) UpdateEnrollment(ctx context.Context, r *models.Recipient) error {
	query := s.db.Rebind(`
		UPDATE recipients SET
			timezone = ?,
			goals_text = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`)
	_, err := s.db.ExecContext(ctx, query, r.Timezone, r.GoalsText, r.Active, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %v", err)
	}
	return nil
}

// AdvanceRecipient moves the recipient's program state forward by one
// week. The guard on the previous week value makes concurrent advances
// for the same week resolve to exactly one winner; the loser gets
// ErrAdvanceConflict.
func (s *Store) AdvanceRecipient(ctx context.Context, recipientID string, newWeek int, deliveredAt time.Time) error {
	query := s.db.Rebind(`
		UPDATE recipients SET
			current_week = ?,
			last_delivery_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_week = ?
	`)
	result, err := s.db.ExecContext(ctx, query, newWeek, deliveredAt, recipientID, newWeek-1)
	if err != nil {
		return fmt.Errorf("failed to advance recipient %s: %v", recipientID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return ErrAdvanceConflict
	}
	return nil
}
