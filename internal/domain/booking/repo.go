package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SlotRepository interface {
	// CreateBatch inserts slots, skipping any that already exist for the
	// same doctor, date and start time. Returns the number inserted.
	CreateBatch(ctx context.Context, slots []*TimeSlot) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	ListAvailable(ctx context.Context, doctorID uuid.UUID, from time.Time, limit, offset int) ([]*TimeSlot, int, error)
	// Claim atomically marks a free slot as booked. Returns
	// ErrSlotUnavailable when the slot is missing or already booked.
	Claim(ctx context.Context, id uuid.UUID) error
	// Release marks a slot as free again. Idempotent.
	Release(ctx context.Context, id uuid.UUID) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	// UpdateStatus moves a booking from one status to another as a single
	// conditional update. Returns ErrInvalidTransition when the booking is
	// no longer in the expected status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error
	List(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error)
	// ListExpiredPending returns PENDING bookings whose expiry deadline has
	// passed, oldest first.
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*Booking, error)
}
