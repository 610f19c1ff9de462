package expense

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/fairshare-app/fairshare/internal/expense/split"
	"github.com/fairshare-app/fairshare/internal/ledger"
	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// Common errors
var (
	ErrExpenseNotFound = apperr.NotFound("expense not found")
	ErrGroupNotFound   = apperr.NotFound("group not found")
	ErrPayerNotMember  = apperr.Validation("payer must be a member of the group")
)

// Directory answers the group-membership questions expense creation needs.
// Satisfied by group.Service.
type Directory interface {
	Exists(ctx context.Context, groupID int64) (bool, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	MemberIDs(ctx context.Context, groupID int64) ([]int64, error)
}

// Service handles expense business logic: it validates the request against
// the directory, calculates the split, records the expense, and applies the
// resulting transfers to the ledger.
type Service struct {
	repo         *Repository
	splitFactory *split.Factory
	directory    Directory
	ledger       *ledger.Ledger
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, splitFactory *split.Factory, directory Directory, lgr *ledger.Ledger) *Service {
	return &Service{
		repo:         repo,
		splitFactory: splitFactory,
		directory:    directory,
		ledger:       lgr,
	}
}

// Create creates an expense and applies its splits to the ledger. Split
// calculation and membership checks fail before anything is written.
func (s *Service) Create(ctx context.Context, req *CreateExpenseRequest) (*Expense, *ledger.Delta, error) {
	if req.Description == "" {
		return nil, nil, apperr.Validation("description is required")
	}
	if req.Amount <= 0 {
		return nil, nil, apperr.Validation("amount must be greater than 0")
	}

	exists, err := s.directory.Exists(ctx, req.GroupID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, ErrGroupNotFound
	}

	isMember, err := s.directory.IsMember(ctx, req.GroupID, req.PayerID)
	if err != nil {
		return nil, nil, err
	}
	if !isMember {
		return nil, nil, ErrPayerNotMember
	}

	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return nil, nil, err
	}

	inputs, err := s.splitInputs(ctx, req, strategy.Type())
	if err != nil {
		return nil, nil, err
	}

	outputs, err := strategy.Calculate(req.Amount, inputs)
	if err != nil {
		return nil, nil, err
	}

	participants := make([]*Participant, len(outputs))
	for i, out := range outputs {
		participants[i] = &Participant{
			UserID:     out.UserID,
			Amount:     out.Amount,
			Percentage: out.Percentage,
		}
	}

	expense, err := s.repo.Create(ctx, req, participants)
	if err != nil {
		return nil, nil, err
	}

	delta, err := s.ledger.ApplyExpense(ctx, expense.GroupID, expense.PayerID, expense.LedgerShares())
	if err != nil {
		// The expense record exists but its transfers did not land; undo the
		// record so the ledger and the expense history stay consistent.
		if delErr := s.repo.Delete(ctx, expense.ID); delErr != nil {
			slog.Error("failed to roll back expense after ledger error",
				"expense_id", expense.ID, "error", delErr)
		}
		return nil, nil, err
	}

	slog.Info("expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"payer_id", expense.PayerID,
		"amount", expense.Amount,
		"split_type", expense.SplitType,
	)

	return expense, delta, nil
}

// splitInputs builds the strategy inputs. For equal splits with no explicit
// participant list the whole group participates.
func (s *Service) splitInputs(ctx context.Context, req *CreateExpenseRequest, splitType split.Type) ([]split.Input, error) {
	if len(req.Participants) == 0 && splitType == split.TypeEqual {
		memberIDs, err := s.directory.MemberIDs(ctx, req.GroupID)
		if err != nil {
			return nil, err
		}
		inputs := make([]split.Input, len(memberIDs))
		for i, id := range memberIDs {
			inputs[i] = split.Input{UserID: id}
		}
		return inputs, nil
	}

	inputs := make([]split.Input, len(req.Participants))
	for i, p := range req.Participants {
		inputs[i] = p.ToSplitInput()
	}
	return inputs, nil
}

// GetByID retrieves an expense with its participants
func (s *Service) GetByID(ctx context.Context, id int64) (*Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	return expense, nil
}

// ListByGroupID retrieves all expenses for a group
func (s *Service) ListByGroupID(ctx context.Context, groupID int64) ([]*Expense, error) {
	exists, err := s.directory.Exists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}

	return s.repo.ListByGroupID(ctx, groupID)
}

// Delete removes an expense after reversing its ledger effect, restoring
// every touched pairwise balance to its pre-expense value.
func (s *Service) Delete(ctx context.Context, id int64) (*ledger.Delta, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}

	delta, err := s.ledger.ReverseExpense(ctx, expense.GroupID, expense.PayerID, expense.LedgerShares())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	slog.Info("expense deleted", "expense_id", id, "group_id", expense.GroupID)

	return delta, nil
}
