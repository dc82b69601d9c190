package notifier

import (
	"context"
	"errors"
	"testing"

	"job-portal/internal/model"
)

func TestFanoutJoinsErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	ok := &countingNotifier{}
	f := Fanout{&countingNotifier{err: boom}, nil, ok}

	err := f.Notify(context.Background(), posted("Go Developer", "Acme"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if ok.calls != 1 {
		t.Fatalf("expected remaining notifier called, got %d", ok.calls)
	}
}

func TestFanoutForwardsEmptyList(t *testing.T) {
	t.Parallel()

	n := &countingNotifier{}
	if err := (Fanout{n}).Notify(context.Background(), nil); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if n.calls != 1 {
		t.Fatalf("expected fanout to forward to notifier, got %d", n.calls)
	}
}

// --- stubs ---

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) Notify(context.Context, []model.JobListing) error {
	c.calls++
	return c.err
}
