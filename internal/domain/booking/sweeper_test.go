package booking

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSweep_ExpiresOverduePending(t *testing.T) {
	svc, slots, _ := newTestService()
	sl := seedSlot(t, slots)
	b, err := svc.Book(context.Background(), bookReq(sl.ID, "Alice Carter"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Move the clock past the expiry deadline.
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	sw := NewSweeper(svc, time.Minute, zerolog.Nop())
	if expired := sw.Sweep(context.Background()); expired != 1 {
		t.Fatalf("expected 1 expired, got %d", expired)
	}

	got, err := svc.GetBooking(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusFailed {
		t.Errorf("expected FAILED, got %s", got.Status)
	}
	if sl.IsBooked {
		t.Error("expected slot to be released")
	}
}

func TestSweep_LeavesFreshPendingAlone(t *testing.T) {
	svc, slots, _ := newTestService()
	sl := seedSlot(t, slots)
	b, err := svc.Book(context.Background(), bookReq(sl.ID, "Alice Carter"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sw := NewSweeper(svc, time.Minute, zerolog.Nop())
	if expired := sw.Sweep(context.Background()); expired != 0 {
		t.Fatalf("expected 0 expired, got %d", expired)
	}

	got, _ := svc.GetBooking(context.Background(), b.ID)
	if got.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", got.Status)
	}
	if !sl.IsBooked {
		t.Error("expected slot to stay claimed")
	}
}

func TestSweep_SkipsConfirmed(t *testing.T) {
	svc, slots, _ := newTestService()
	sl := seedSlot(t, slots)
	b, _ := svc.Book(context.Background(), bookReq(sl.ID, "Alice Carter"))
	if _, err := svc.Confirm(context.Background(), b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	sw := NewSweeper(svc, time.Minute, zerolog.Nop())
	if expired := sw.Sweep(context.Background()); expired != 0 {
		t.Fatalf("expected 0 expired, got %d", expired)
	}
	if !sl.IsBooked {
		t.Error("expected confirmed slot to stay claimed")
	}
}

func TestSweep_Idempotent(t *testing.T) {
	svc, slots, _ := newTestService()
	sl := seedSlot(t, slots)
	svc.Book(context.Background(), bookReq(sl.ID, "Alice Carter"))

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	sw := NewSweeper(svc, time.Minute, zerolog.Nop())
	if expired := sw.Sweep(context.Background()); expired != 1 {
		t.Fatalf("expected 1 expired on first pass, got %d", expired)
	}
	if expired := sw.Sweep(context.Background()); expired != 0 {
		t.Errorf("expected 0 expired on second pass, got %d", expired)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	svc, _, _ := newTestService()
	sw := NewSweeper(svc, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
