package expense

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles expense and participant data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an expense and its participants in one transaction.
func (r *Repository) Create(ctx context.Context, req *CreateExpenseRequest, participants []*Participant) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin expense transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (group_id, payer_id, description, amount, split_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, group_id, payer_id, description, amount, split_type, created_at
	`

	expense := &Expense{}
	err = tx.QueryRowContext(ctx, query,
		req.GroupID,
		req.PayerID,
		req.Description,
		req.Amount,
		req.SplitType,
	).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.SplitType,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	for _, p := range participants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_participants (expense_id, user_id, amount, percentage) VALUES ($1, $2, $3, $4)`,
			expense.ID, p.UserID, p.Amount, p.Percentage,
		); err != nil {
			return nil, fmt.Errorf("failed to create expense participant: %w", err)
		}
		p.ExpenseID = expense.ID
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense transaction: %w", err)
	}

	expense.Participants = participants
	return expense, nil
}

// GetByID retrieves an expense with its participants
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.split_type, e.created_at, u.name
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.id = $1
	`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.SplitType,
		&expense.CreatedAt,
		&expense.PayerName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	participants, err := r.getParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Participants = participants

	return expense, nil
}

func (r *Repository) getParticipants(ctx context.Context, expenseID int64) ([]*Participant, error) {
	query := `
		SELECT p.expense_id, p.user_id, p.amount, p.percentage, u.name
		FROM expense_participants p
		JOIN users u ON p.user_id = u.id
		WHERE p.expense_id = $1
		ORDER BY p.user_id
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{}
		if err := rows.Scan(
			&p.ExpenseID,
			&p.UserID,
			&p.Amount,
			&p.Percentage,
			&p.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, nil
}

// ListByGroupID retrieves all expenses for a group, newest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64) ([]*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.split_type, e.created_at, u.name
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.group_id = $1
		ORDER BY e.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.PayerID,
			&expense.Description,
			&expense.Amount,
			&expense.SplitType,
			&expense.CreatedAt,
			&expense.PayerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, nil
}

// Delete removes an expense and its participants
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_participants WHERE expense_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}

	return nil
}
