package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TxRunner runs a function inside a single database transaction.
// Implemented by db.Runner; repositories pick the transaction up from the
// context, so every repository call made inside fn commits or rolls back
// together.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// BookRequest is the payload for creating a booking against a slot.
// DoctorID is optional; when set it must match the slot's doctor.
type BookRequest struct {
	SlotID       uuid.UUID `json:"slot_id"`
	DoctorID     uuid.UUID `json:"doctor_id,omitempty"`
	PatientName  string    `json:"patient_name"`
	PatientEmail string    `json:"patient_email"`
	PatientPhone string    `json:"patient_phone"`
	Notes        *string   `json:"notes,omitempty"`
}

// GenerateSlotsRequest describes a slot grid for a doctor: every day from
// From for Days days, slots of Duration minutes between StartTime and
// EndTime (HH:MM, 24h).
type GenerateSlotsRequest struct {
	From      time.Time `json:"from"`
	Days      int       `json:"days"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Duration  int       `json:"duration_minutes"`
}

type Service struct {
	slots    SlotRepository
	bookings BookingRepository
	tx       TxRunner
	expiry   time.Duration
	now      func() time.Time
}

func NewService(slots SlotRepository, bookings BookingRepository, tx TxRunner, expiry time.Duration) *Service {
	return &Service{
		slots:    slots,
		bookings: bookings,
		tx:       tx,
		expiry:   expiry,
		now:      time.Now,
	}
}

// Book claims a slot and creates a PENDING booking in one transaction.
// The claim is a conditional update, so two concurrent requests for the
// same slot cannot both succeed; the loser gets ErrSlotUnavailable and
// nothing is persisted for it.
func (s *Service) Book(ctx context.Context, req *BookRequest) (*Booking, error) {
	if req.SlotID == uuid.Nil {
		return nil, fmt.Errorf("%w: slot_id is required", ErrValidation)
	}
	if req.PatientName == "" {
		return nil, fmt.Errorf("%w: patient_name is required", ErrValidation)
	}
	if req.PatientEmail == "" {
		return nil, fmt.Errorf("%w: patient_email is required", ErrValidation)
	}
	if req.PatientPhone == "" {
		return nil, fmt.Errorf("%w: patient_phone is required", ErrValidation)
	}

	var b *Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		sl, err := s.slots.GetByID(ctx, req.SlotID)
		if errors.Is(err, ErrNotFound) {
			// A slot that does not exist is reported the same way as one
			// already taken: the caller asked for a slot it cannot have.
			return fmt.Errorf("%w: slot %s", ErrSlotUnavailable, req.SlotID)
		}
		if err != nil {
			return err
		}
		if req.DoctorID != uuid.Nil && req.DoctorID != sl.DoctorID {
			return fmt.Errorf("%w: slot %s does not belong to doctor %s", ErrValidation, sl.ID, req.DoctorID)
		}
		if err := s.slots.Claim(ctx, sl.ID); err != nil {
			return err
		}
		b = &Booking{
			SlotID:       sl.ID,
			DoctorID:     sl.DoctorID,
			PatientName:  req.PatientName,
			PatientEmail: req.PatientEmail,
			PatientPhone: req.PatientPhone,
			Notes:        req.Notes,
			Status:       StatusPending,
			ExpiresAt:    s.now().Add(s.expiry),
		}
		return s.bookings.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Confirm moves a PENDING booking to CONFIRMED. Confirming twice, or
// confirming a cancelled or failed booking, is rejected.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b *Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.bookings.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(b.Status, StatusConfirmed) {
			return fmt.Errorf("%w: cannot confirm %s booking", ErrInvalidTransition, b.Status)
		}
		if err := s.bookings.UpdateStatus(ctx, id, b.Status, StatusConfirmed); err != nil {
			return err
		}
		b.Status = StatusConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED and releases
// its slot in the same transaction.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b *Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.bookings.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(b.Status, StatusCancelled) {
			return fmt.Errorf("%w: cannot cancel %s booking", ErrInvalidTransition, b.Status)
		}
		if err := s.bookings.UpdateStatus(ctx, id, b.Status, StatusCancelled); err != nil {
			return err
		}
		if err := s.slots.Release(ctx, b.SlotID); err != nil {
			return err
		}
		b.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Expire moves an overdue PENDING booking to FAILED and releases its
// slot. Called by the sweeper; a booking confirmed or cancelled since it
// was listed is left alone.
func (s *Service) Expire(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != StatusPending || b.ExpiresAt.After(s.now()) {
			return nil
		}
		if err := s.bookings.UpdateStatus(ctx, id, StatusPending, StatusFailed); err != nil {
			return err
		}
		return s.slots.Release(ctx, b.SlotID)
	})
}

// ListExpired returns PENDING bookings whose hold has lapsed.
func (s *Service) ListExpired(ctx context.Context, limit int) ([]*Booking, error) {
	return s.bookings.ListExpiredPending(ctx, s.now(), limit)
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	return s.bookings.List(ctx, params, limit, offset)
}

func (s *Service) ListAvailableSlots(ctx context.Context, doctorID uuid.UUID, from time.Time, limit, offset int) ([]*TimeSlot, int, error) {
	return s.slots.ListAvailable(ctx, doctorID, from, limit, offset)
}

// GenerateSlots builds the open slot grid for a doctor. Existing slots at
// the same doctor, date and start time are left untouched, so regenerating
// an overlapping range is safe.
func (s *Service) GenerateSlots(ctx context.Context, doctorID uuid.UUID, req *GenerateSlotsRequest) (int, error) {
	if doctorID == uuid.Nil {
		return 0, fmt.Errorf("%w: doctor_id is required", ErrValidation)
	}
	if req.Duration <= 0 {
		return 0, fmt.Errorf("%w: duration_minutes must be positive", ErrValidation)
	}
	if req.Days <= 0 {
		return 0, fmt.Errorf("%w: days must be positive", ErrValidation)
	}
	start, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid start_time %q", ErrValidation, req.StartTime)
	}
	end, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid end_time %q", ErrValidation, req.EndTime)
	}
	if !start.Before(end) {
		return 0, fmt.Errorf("%w: start_time must be before end_time", ErrValidation)
	}

	from := req.From
	if from.IsZero() {
		from = s.now()
	}
	// Truncate to midnight in the caller's own day, not the UTC one; a
	// morning timestamp east of UTC must not slide into the previous day.
	y, m, d := from.Date()
	from = time.Date(y, m, d, 0, 0, 0, 0, from.Location())

	dur := time.Duration(req.Duration) * time.Minute
	var slots []*TimeSlot
	for day := 0; day < req.Days; day++ {
		date := from.AddDate(0, 0, day)
		for cur := start; !cur.Add(dur).After(end); cur = cur.Add(dur) {
			slots = append(slots, &TimeSlot{
				DoctorID:  doctorID,
				Date:      date,
				StartTime: cur.Format("15:04"),
				EndTime:   cur.Add(dur).Format("15:04"),
			})
		}
	}

	var inserted int
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inserted, err = s.slots.CreateBatch(ctx, slots)
		return err
	})
	return inserted, err
}
