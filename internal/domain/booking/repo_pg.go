package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docdelight/docdelight/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Slot Repository ===========

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

func (r *slotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const slotCols = `id, doctor_id, date, start_time, end_time, is_booked, created_at, updated_at`

func (r *slotRepoPG) scanSlot(row pgx.Row) (*TimeSlot, error) {
	var sl TimeSlot
	err := row.Scan(&sl.ID, &sl.DoctorID, &sl.Date, &sl.StartTime, &sl.EndTime,
		&sl.IsBooked, &sl.CreatedAt, &sl.UpdatedAt)
	return &sl, err
}

func (r *slotRepoPG) CreateBatch(ctx context.Context, slots []*TimeSlot) (int, error) {
	inserted := 0
	for _, sl := range slots {
		sl.ID = uuid.New()
		tag, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO slot (id, doctor_id, date, start_time, end_time, is_booked)
			VALUES ($1,$2,$3,$4,$5,FALSE)
			ON CONFLICT (doctor_id, date, start_time) DO NOTHING`,
			sl.ID, sl.DoctorID, sl.Date, sl.StartTime, sl.EndTime)
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *slotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	sl, err := r.scanSlot(r.conn(ctx).QueryRow(ctx, `SELECT `+slotCols+` FROM slot WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: slot %s", ErrNotFound, id)
	}
	return sl, err
}

func (r *slotRepoPG) ListAvailable(ctx context.Context, doctorID uuid.UUID, from time.Time, limit, offset int) ([]*TimeSlot, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM slot
		WHERE doctor_id = $1 AND is_booked = FALSE AND date >= $2`,
		doctorID, from).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+slotCols+` FROM slot
		WHERE doctor_id = $1 AND is_booked = FALSE AND date >= $2
		ORDER BY date ASC, start_time ASC LIMIT $3 OFFSET $4`,
		doctorID, from, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TimeSlot
	for rows.Next() {
		sl, err := r.scanSlot(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, sl)
	}
	return items, total, nil
}

// Claim is the single point where a slot changes hands. The conditional
// update means two concurrent claims on the same slot can never both
// succeed, whatever each caller read beforehand.
func (r *slotRepoPG) Claim(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE slot SET is_booked = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_booked = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: slot %s", ErrSlotUnavailable, id)
	}
	return nil
}

func (r *slotRepoPG) Release(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE slot SET is_booked = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_booked = TRUE`, id)
	return err
}

// =========== Booking Repository ===========

type bookingRepoPG struct{ pool *pgxpool.Pool }

func NewBookingRepoPG(pool *pgxpool.Pool) BookingRepository { return &bookingRepoPG{pool: pool} }

func (r *bookingRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bookingCols = `id, slot_id, doctor_id, patient_name, patient_email, patient_phone, notes,
	status, expires_at, created_at, updated_at`

func (r *bookingRepoPG) scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.SlotID, &b.DoctorID, &b.PatientName, &b.PatientEmail,
		&b.PatientPhone, &b.Notes, &b.Status, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *bookingRepoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO booking (id, slot_id, doctor_id, patient_name, patient_email, patient_phone, notes, status, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		b.ID, b.SlotID, b.DoctorID, b.PatientName, b.PatientEmail, b.PatientPhone, b.Notes, b.Status, b.ExpiresAt)
	return err
}

func (r *bookingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := r.scanBooking(r.conn(ctx).QueryRow(ctx, `SELECT `+bookingCols+` FROM booking WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
	}
	return b, err
}

func (r *bookingRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE booking SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %s is not %s", ErrInvalidTransition, id, from)
	}
	return nil
}

func (r *bookingRepoPG) List(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	query := `SELECT ` + bookingCols + ` FROM booking WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM booking WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["doctor_id"]; ok {
		query += fmt.Sprintf(` AND doctor_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND doctor_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["patient_email"]; ok {
		query += fmt.Sprintf(` AND patient_email = $%d`, idx)
		countQuery += fmt.Sprintf(` AND patient_email = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *bookingRepoPG) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+bookingCols+` FROM booking
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at ASC LIMIT $3`,
		StatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, nil
}
