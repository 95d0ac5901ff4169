// Package kafkatest provides an in-memory Publisher for tests.
package kafkatest

import (
	"context"
	"sync"

	"medbook/pkg/kafka"
)

// Recorder captures published messages. Set Err to make Publish fail.
type Recorder struct {
	mu       sync.Mutex
	messages []kafka.Message
	Err      error
}

func (r *Recorder) Publish(ctx context.Context, msg kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Recorder) Messages() []kafka.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]kafka.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Drain returns the captured messages and forgets them.
func (r *Recorder) Drain() []kafka.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}

func (r *Recorder) EventTypes() []string {
	msgs := r.Messages()
	types := make([]string, 0, len(msgs))
	for _, m := range msgs {
		types = append(types, m.GetEventType())
	}
	return types
}
