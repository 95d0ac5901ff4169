package repository

import (
	"context"
	"sync"

	"medbook/pkg/model"
)

type MemoryNotificationRepository struct {
	mu            sync.Mutex
	notifications []*model.Notification
	ids           map[string]struct{}
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{ids: make(map[string]struct{})}
}

func (r *MemoryNotificationRepository) Save(ctx context.Context, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.ids[notification.ID]; dup {
		return nil
	}
	r.ids[notification.ID] = struct{}{}
	stored := *notification
	r.notifications = append(r.notifications, &stored)
	return nil
}

// List returns newest first.
func (r *MemoryNotificationRepository) List(ctx context.Context, limit int, offset int64) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Notification, 0, limit)
	for i := len(r.notifications) - 1 - int(offset); i >= 0 && len(out) < limit; i-- {
		out = append(out, r.notifications[i])
	}
	return out, nil
}

func (r *MemoryNotificationRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.notifications)), nil
}
