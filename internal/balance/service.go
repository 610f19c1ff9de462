package balance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fairshare-app/fairshare/internal/ledger"
	"github.com/fairshare-app/fairshare/internal/settlement"
	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// Common errors
var ErrGroupNotFound = apperr.NotFound("group not found")

// Directory answers the existence checks the balance feature needs.
// Satisfied by group.Service.
type Directory interface {
	Exists(ctx context.Context, groupID int64) (bool, error)
}

// SettlementLog is the append-only settlement history. Satisfied by
// settlement.Repository.
type SettlementLog interface {
	Create(ctx context.Context, groupID, payerID, payeeID int64, amount float64, description string) (*settlement.Settlement, error)
	ListByGroupID(ctx context.Context, groupID int64) ([]*settlement.Settlement, error)
}

// Service is the request boundary over the ledger core: summaries, the
// group-wide simplified view, settlements, and settlement history.
type Service struct {
	ledger      *ledger.Ledger
	directory   Directory
	settlements SettlementLog
}

// NewService creates a new balance service
func NewService(lgr *ledger.Ledger, directory Directory, settlements SettlementLog) *Service {
	return &Service{
		ledger:      lgr,
		directory:   directory,
		settlements: settlements,
	}
}

// UserSummary returns what a user owes and is owed within a group. A user
// with no ledger row gets the zero summary.
func (s *Service) UserSummary(ctx context.Context, groupID, userID int64) (*ledger.Summary, error) {
	return s.ledger.UserSummary(ctx, groupID, userID)
}

// GroupBalances returns every user's balances in the group together with the
// greedy simplification of all debts.
func (s *Service) GroupBalances(ctx context.Context, groupID int64) (*GroupBalancesResponse, error) {
	exists, err := s.directory.Exists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}

	rows, err := s.ledger.Snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	resp := &GroupBalancesResponse{
		GroupID:  groupID,
		Balances: make([]*UserBalances, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Balances = append(resp.Balances, &UserBalances{
			UserID:   row.UserID,
			Balances: row.Balances,
			Summary:  ledger.SummarizeRow(groupID, row.UserID, row.Balances),
		})
	}

	resp.SimplifiedTransactions = ledger.Simplify(ledger.PositionsFromRows(rows))
	return resp, nil
}

// Settle pays down an existing debt and appends a settlement record. The
// ledger enforces the settlement constraints; nothing is recorded when it
// rejects the payment.
func (s *Service) Settle(ctx context.Context, req *SettleRequest) (*SettleResponse, error) {
	exists, err := s.directory.Exists(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}

	result, err := s.ledger.Settle(ctx, req.GroupID, req.PayerID, req.PayeeID, req.Amount)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Settlement: user %d paid user %d", req.PayerID, req.PayeeID)
	record, err := s.settlements.Create(ctx, req.GroupID, req.PayerID, req.PayeeID, result.Amount, description)
	if err != nil {
		return nil, err
	}

	slog.Info("settlement recorded",
		"group_id", req.GroupID,
		"payer_id", req.PayerID,
		"payee_id", req.PayeeID,
		"amount", result.Amount,
		"remaining", result.Remaining,
	)

	return &SettleResponse{
		Result:     result,
		Settlement: toSettlementRecord(record),
	}, nil
}

// History returns the settlement records of a group, newest first.
func (s *Service) History(ctx context.Context, groupID int64) ([]*SettlementRecord, error) {
	exists, err := s.directory.Exists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}

	settlements, err := s.settlements.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	records := make([]*SettlementRecord, len(settlements))
	for i, rec := range settlements {
		records[i] = toSettlementRecord(rec)
	}
	return records, nil
}
