package saga

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"medbook/internal/booking/outbox"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/model"
)

// MemoryStore keeps sagas in process memory and writes outbox rows to the given
// repository under the same mutex as the saga write. Finalized records never
// expire here.
type MemoryStore struct {
	mu     sync.Mutex
	sagas  map[string]model.BookingSaga
	outbox outbox.Repository
}

func NewMemoryStore(outboxRepo outbox.Repository) *MemoryStore {
	return &MemoryStore{
		sagas:  make(map[string]model.BookingSaga),
		outbox: outboxRepo,
	}
}

func (s *MemoryStore) Load(ctx context.Context, correlationID string) (*model.BookingSaga, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saga, ok := s.sagas[correlationID]
	if !ok {
		return nil, nil
	}
	return &saga, nil
}

func (s *MemoryStore) Commit(ctx context.Context, saga *model.BookingSaga, rows []model.OutboxMessage, finalize bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sagas[saga.CorrelationID].Version != saga.Version {
		return fmt.Errorf("failed to commit saga: %w", mongostore.ErrVersionConflict)
	}
	if err := s.outbox.Insert(ctx, rows); err != nil {
		return err
	}

	if finalize {
		saga.ExpiresAt = finalizedExpiry(saga.UpdatedAt)
	}
	saga.Version++
	s.sagas[saga.CorrelationID] = *saga
	return nil
}

func (s *MemoryStore) FindStuck(ctx context.Context, state model.SagaState, updatedBefore time.Time, limit int) ([]model.BookingSaga, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.BookingSaga
	for _, saga := range s.sagas {
		if saga.CurrentState == state && saga.UpdatedAt.Before(updatedBefore) {
			out = append(out, saga)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
