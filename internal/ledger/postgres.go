package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// PostgresStore persists ledger rows in the balances table, one database row
// per sparse map entry.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed ledger store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get retrieves the balance map for (group, user).
func (s *PostgresStore) Get(ctx context.Context, groupID, userID int64) (map[int64]float64, bool, error) {
	query := `
		SELECT counterparty_id, amount
		FROM balances
		WHERE group_id = $1 AND user_id = $2
	`

	rows, err := s.db.QueryContext(ctx, query, groupID, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get balance row: %w", err)
	}
	defer rows.Close()

	balances := make(map[int64]float64)
	found := false
	for rows.Next() {
		var counterpartyID int64
		var amount float64
		if err := rows.Scan(&counterpartyID, &amount); err != nil {
			return nil, false, fmt.Errorf("failed to scan balance entry: %w", err)
		}
		balances[counterpartyID] = amount
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read balance entries: %w", err)
	}

	if !found {
		return nil, false, nil
	}
	return balances, true, nil
}

// PutPair replaces both users' rows inside one transaction so a transfer is
// never half-applied. Serialization conflicts surface as concurrency errors
// the ledger can retry.
func (s *PostgresStore) PutPair(ctx context.Context, groupID, userA int64, rowA map[int64]float64, userB int64, rowB map[int64]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin balance transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock in a stable order so two concurrent writers touching the same
	// pair cannot deadlock.
	first, firstRow := userA, rowA
	second, secondRow := userB, rowB
	if second < first {
		first, second = second, first
		firstRow, secondRow = secondRow, firstRow
	}

	if err := replaceRow(ctx, tx, groupID, first, firstRow); err != nil {
		return err
	}
	if err := replaceRow(ctx, tx, groupID, second, secondRow); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return apperr.Concurrency("balance update conflicted, retry")
		}
		return fmt.Errorf("failed to commit balance transaction: %w", err)
	}

	return nil
}

func replaceRow(ctx context.Context, tx *sql.Tx, groupID, userID int64, balances map[int64]float64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM balances WHERE group_id = $1 AND user_id = $2`,
		groupID, userID,
	); err != nil {
		if isSerializationFailure(err) {
			return apperr.Concurrency("balance update conflicted, retry")
		}
		return fmt.Errorf("failed to clear balance row: %w", err)
	}

	for counterpartyID, amount := range balances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balances (group_id, user_id, counterparty_id, amount) VALUES ($1, $2, $3, $4)`,
			groupID, userID, counterpartyID, amount,
		); err != nil {
			if isSerializationFailure(err) {
				return apperr.Concurrency("balance update conflicted, retry")
			}
			return fmt.Errorf("failed to write balance entry: %w", err)
		}
	}

	return nil
}

// ListNonZero returns all rows with entries in the group, ordered by user ID.
func (s *PostgresStore) ListNonZero(ctx context.Context, groupID int64) ([]Row, error) {
	query := `
		SELECT user_id, counterparty_id, amount
		FROM balances
		WHERE group_id = $1
		ORDER BY user_id, counterparty_id
	`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance rows: %w", err)
	}
	defer rows.Close()

	var result []Row
	var current *Row
	for rows.Next() {
		var userID, counterpartyID int64
		var amount float64
		if err := rows.Scan(&userID, &counterpartyID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan balance entry: %w", err)
		}

		if current == nil || current.UserID != userID {
			result = append(result, Row{UserID: userID, Balances: make(map[int64]float64)})
			current = &result[len(result)-1]
		}
		current.Balances[counterpartyID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read balance rows: %w", err)
	}

	return result, nil
}

// isSerializationFailure reports whether err is a Postgres serialization or
// deadlock failure that is safe to retry with fresh reads.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
