package settlement

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles settlement record persistence. The table is append-only:
// there is no update or delete path.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a settlement record
func (r *Repository) Create(ctx context.Context, groupID, payerID, payeeID int64, amount float64, description string) (*Settlement, error) {
	query := `
		INSERT INTO settlements (group_id, payer_id, payee_id, amount, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, group_id, payer_id, payee_id, amount, description, created_at
	`

	settlement := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, groupID, payerID, payeeID, amount, description).Scan(
		&settlement.ID,
		&settlement.GroupID,
		&settlement.PayerID,
		&settlement.PayeeID,
		&settlement.Amount,
		&settlement.Description,
		&settlement.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	return settlement, nil
}

// ListByGroupID retrieves all settlements for a group, newest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64) ([]*Settlement, error) {
	query := `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount, s.description, s.created_at,
		       payer.name, payee.name
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.group_id = $1
		ORDER BY s.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(
			&s.ID,
			&s.GroupID,
			&s.PayerID,
			&s.PayeeID,
			&s.Amount,
			&s.Description,
			&s.CreatedAt,
			&s.PayerName,
			&s.PayeeName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}

	return settlements, nil
}
