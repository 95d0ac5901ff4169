package outbox

import (
	"context"
	"sort"
	"sync"
	"time"

	"medbook/pkg/model"
)

type MemoryRepository struct {
	mu       sync.Mutex
	messages []model.OutboxMessage
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Insert(ctx context.Context, messages []model.OutboxMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, messages...)
	return nil
}

func (r *MemoryRepository) FetchPending(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []model.OutboxMessage
	for _, m := range r.messages {
		if m.PublishedAt == nil {
			pending = append(pending, m)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *MemoryRepository) MarkPublished(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == id {
			published := at
			r.messages[i].PublishedAt = &published
		}
	}
	return nil
}

func (r *MemoryRepository) CountPending(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.PublishedAt == nil {
			n++
		}
	}
	return n, nil
}
