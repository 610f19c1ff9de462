package ledger

import (
	"context"
	"sort"
	"sync"
)

type groupUser struct {
	groupID int64
	userID  int64
}

// MemoryStore is an in-memory Store used in tests and for single-process
// deployments without Postgres.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[groupUser]map[int64]float64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[groupUser]map[int64]float64)}
}

// Get returns a copy of the stored balance map for (group, user).
func (s *MemoryStore) Get(ctx context.Context, groupID, userID int64) (map[int64]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, found := s.rows[groupUser{groupID, userID}]
	if !found {
		return nil, false, nil
	}
	return copyBalances(row), true, nil
}

// PutPair replaces both rows under a single lock acquisition. A row whose
// map is empty is removed entirely, so a fully-pruned row and a never-written
// row are indistinguishable to Get, as with the Postgres store.
func (s *MemoryStore) PutPair(ctx context.Context, groupID, userA int64, rowA map[int64]float64, userB int64, rowB map[int64]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putRow(groupID, userA, rowA)
	s.putRow(groupID, userB, rowB)
	return nil
}

func (s *MemoryStore) putRow(groupID, userID int64, balances map[int64]float64) {
	key := groupUser{groupID, userID}
	if len(balances) == 0 {
		delete(s.rows, key)
		return
	}
	s.rows[key] = copyBalances(balances)
}

// ListNonZero returns all rows with entries in the group, ordered by user ID.
func (s *MemoryStore) ListNonZero(ctx context.Context, groupID int64) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []Row
	for key, balances := range s.rows {
		if key.groupID != groupID || len(balances) == 0 {
			continue
		}
		rows = append(rows, Row{UserID: key.userID, Balances: copyBalances(balances)})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].UserID < rows[j].UserID })
	return rows, nil
}

func copyBalances(src map[int64]float64) map[int64]float64 {
	dst := make(map[int64]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
