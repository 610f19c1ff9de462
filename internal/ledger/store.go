package ledger

import "context"

// Row is one user's sparse balance map within a group. Keys are counterparty
// user IDs; a positive value means the row's user owes that counterparty.
type Row struct {
	UserID   int64
	Balances map[int64]float64
}

// Store is the document-store contract the ledger consumes. Implementations
// must make PutPair atomic: either both rows are replaced or neither is.
type Store interface {
	// Get returns the balance map for (group, user). found is false when no
	// row has ever been stored; callers treat a missing row and an empty map
	// identically for balance queries.
	Get(ctx context.Context, groupID, userID int64) (balances map[int64]float64, found bool, err error)

	// PutPair atomically replaces the rows of two users in the same group.
	// This is the only write path: every ledger mutation touches exactly a
	// debtor row and its creditor mirror.
	PutPair(ctx context.Context, groupID, userA int64, rowA map[int64]float64, userB int64, rowB map[int64]float64) error

	// ListNonZero returns every row in the group that has at least one entry,
	// ordered by user ID so downstream consumers see a stable order.
	ListNonZero(ctx context.Context, groupID int64) ([]Row, error)
}
