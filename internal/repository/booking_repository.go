package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// BookingRepo persists booking records in the `bookings` and
// `booking_seats` tables.  It implements the coordinator's Store
// interface.  Bookings are audit state: seat availability is owned by
// the inventory engine, so writes here are plain upserts with no
// coupling to seat mutations.
type BookingRepo struct{ DB *sql.DB }

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

// Create inserts a booking and its seats.  Both inserts run in one
// transaction so a booking row never exists without its seats.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (id, user_id, showtime_id, total_amount_cents, convenience_fee_cents,
		 taxes_cents, final_amount_cents, order_id, status, contact_email, contact_phone, hold_expires_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.UserID, b.ShowtimeID, b.TotalAmountCents, b.ConvenienceFeeCents,
		b.TaxesCents, b.FinalAmountCents, b.OrderID, string(b.Status),
		b.ContactEmail, b.ContactPhone, b.HoldExpiresAt.UTC())
	if err != nil {
		return err
	}

	if len(b.Seats) > 0 {
		query := "INSERT INTO booking_seats (booking_id, seat_id, row_label, seat_number, class, price_cents) VALUES "
		args := make([]any, 0, len(b.Seats)*6)
		for i, s := range b.Seats {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?,?,?,?)"
			args = append(args, b.ID, s.SeatID, s.Row, s.Number, s.Class, s.PriceCents)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update writes the mutable fields of a booking: status and payment
// reference.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE bookings SET status=?, payment_ref=? WHERE id=?",
		string(b.Status), b.PaymentRef, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean no change; verify existence.
		var exists int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM bookings WHERE id=? LIMIT 1", b.ID).Scan(&exists); err == sql.ErrNoRows {
			return ErrBookingNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// GetByID loads a booking with its seats or returns ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	var status string
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, showtime_id, total_amount_cents, convenience_fee_cents, taxes_cents,
		        final_amount_cents, order_id, payment_ref, status, contact_email, contact_phone,
		        hold_expires_at, created_at, updated_at
		 FROM bookings WHERE id=? LIMIT 1`, id).Scan(
		&b.ID, &b.UserID, &b.ShowtimeID, &b.TotalAmountCents, &b.ConvenienceFeeCents,
		&b.TaxesCents, &b.FinalAmountCents, &b.OrderID, &b.PaymentRef, &status,
		&b.ContactEmail, &b.ContactPhone, &b.HoldExpiresAt, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	seats, err := r.seatsFor(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Seats = seats
	return &b, nil
}

// ListByUser returns the user's bookings with seats, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, showtime_id, total_amount_cents, convenience_fee_cents, taxes_cents,
		        final_amount_cents, order_id, payment_ref, status, contact_email, contact_phone,
		        hold_expires_at, created_at, updated_at
		 FROM bookings WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		var status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.ShowtimeID, &b.TotalAmountCents,
			&b.ConvenienceFeeCents, &b.TaxesCents, &b.FinalAmountCents, &b.OrderID,
			&b.PaymentRef, &status, &b.ContactEmail, &b.ContactPhone,
			&b.HoldExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Status = model.BookingStatus(status)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		seats, err := r.seatsFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Seats = seats
	}
	return out, nil
}

func (r *BookingRepo) seatsFor(ctx context.Context, bookingID string) ([]model.BookingSeat, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT seat_id, row_label, seat_number, class, price_cents
		 FROM booking_seats WHERE booking_id=? ORDER BY row_label, seat_number`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.BookingSeat
	for rows.Next() {
		var s model.BookingSeat
		if err := rows.Scan(&s.SeatID, &s.Row, &s.Number, &s.Class, &s.PriceCents); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}
