package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"docverify/internal/model"
	"docverify/internal/repository"
)

// AttemptMemory keeps attempts for the life of the process. Used when no database is configured.
type AttemptMemory struct {
	mu       sync.RWMutex
	attempts map[string]model.SubmissionAttempt
}

func NewAttemptMemory() *AttemptMemory {
	return &AttemptMemory{attempts: make(map[string]model.SubmissionAttempt)}
}

var _ repository.AttemptRepository = (*AttemptMemory)(nil)

func (r *AttemptMemory) Save(ctx context.Context, a *model.SubmissionAttempt) error {
	cp := *a
	cp.File = nil
	r.mu.Lock()
	r.attempts[a.ID] = cp
	r.mu.Unlock()
	return nil
}

func (r *AttemptMemory) FindByID(ctx context.Context, id string) (*model.SubmissionAttempt, error) {
	r.mu.RLock()
	a, ok := r.attempts[id]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrAttemptNotFound
	}
	return &a, nil
}

func (r *AttemptMemory) ListByAccount(ctx context.Context, account common.Address, pq repository.PageQuery) (*repository.PageResult[model.SubmissionAttempt], error) {
	r.mu.RLock()
	items := make([]model.SubmissionAttempt, 0)
	for _, a := range r.attempts {
		if a.Account == account {
			items = append(items, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := len(items)
	start := min(max(pq.Offset, 0), total)
	end := total
	if pq.Limit > 0 {
		end = min(start+pq.Limit, total)
	}
	return &repository.PageResult[model.SubmissionAttempt]{Items: items[start:end], Total: total}, nil
}

func (r *AttemptMemory) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.attempts, id)
	r.mu.Unlock()
	return nil
}
