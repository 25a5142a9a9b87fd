package booking

import (
	"time"

	"github.com/google/uuid"
)

// Booking lifecycle statuses. FAILED and CANCELLED are terminal.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// CanTransition reports whether a booking may move from one status to another.
// Expiry (PENDING -> FAILED) is driven by the sweeper, not by clients.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled || to == StatusFailed
	case StatusConfirmed:
		return to == StatusCancelled
	default:
		return false
	}
}

// TimeSlot maps to the slot table. A slot is claimed (is_booked = true)
// exactly while a PENDING or CONFIRMED booking references it.
type TimeSlot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	IsBooked  bool      `db:"is_booked" json:"is_booked"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Booking maps to the booking table.
type Booking struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SlotID       uuid.UUID `db:"slot_id" json:"slot_id"`
	DoctorID     uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientName  string    `db:"patient_name" json:"patient_name"`
	PatientEmail string    `db:"patient_email" json:"patient_email"`
	PatientPhone string    `db:"patient_phone" json:"patient_phone"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	Status       string    `db:"status" json:"status"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
