package transaction

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]Transaction
}

// NewMemoryRepository builds an in-memory transaction store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{entries: make(map[string]Transaction)}
}

func (r *memoryRepository) Create(_ context.Context, tx Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[tx.ID] = tx
	return nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID, category string) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Transaction
	for _, tx := range r.entries {
		if tx.UserID != userID {
			continue
		}
		if category != "" && tx.Category != category {
			continue
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (r *memoryRepository) Update(_ context.Context, tx Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return ErrNotFound
	}
	if tx.Date.IsZero() {
		tx.Date = existing.Date
	}
	tx.CreatedAt = existing.CreatedAt
	r.entries[tx.ID] = tx
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.entries[id]
	if !ok || tx.UserID != userID {
		return ErrNotFound
	}
	delete(r.entries, id)
	return nil
}
