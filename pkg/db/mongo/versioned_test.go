package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrVersionConflict_Wrapped(t *testing.T) {
	err := fmt.Errorf("%w: doctors/d1 at version 3", ErrVersionConflict)
	if !errors.Is(err, ErrVersionConflict) {
		t.Error("expected wrapped error to match ErrVersionConflict")
	}
}

func TestWithTimeout_KeepsShorterDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ctx, cancelChild := WithTimeout(parent, time.Hour)
	defer cancelChild()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if time.Until(deadline) > time.Second {
		t.Errorf("expected parent deadline to win, got %s", time.Until(deadline))
	}
}

func TestWithTimeout_AddsDeadline(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline to be set")
	}
}
