package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/movie-ticket-booking/internal/inventory"
	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// ShowtimeRepo provides access to the `showtimes` table and derives a
// showtime's seat layout (seats joined with per-class pricing) for
// registration with the inventory engine.  It implements the booking
// coordinator's Catalog interface and the queue publisher's
// ShowtimeContext lookup.
type ShowtimeRepo struct{ DB *sql.DB }

// NewShowtimeRepo returns a ShowtimeRepo bound to the provided database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{DB: db} }

const showtimeColumns = `id,movie_id,theater_id,screen_id,starts_at,language,format,
	price_classic_cents,price_premium_cents,price_recliner_cents,status,is_active,created_at,updated_at`

// Create inserts a showtime and returns its ID.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO showtimes (movie_id, theater_id, screen_id, starts_at, language, format,
		 price_classic_cents, price_premium_cents, price_recliner_cents, status, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?,?,1)`,
		s.MovieID, s.TheaterID, s.ScreenID, s.StartsAt.UTC(), s.Language, s.Format,
		s.PriceClassicCents, s.PricePremiumCents, s.PriceReclinerCents, s.Status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Showtime fetches a showtime by id or returns ErrShowtimeNotFound.
// The name satisfies booking.Catalog.
func (r *ShowtimeRepo) Showtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+showtimeColumns+" FROM showtimes WHERE id=? LIMIT 1", id)
	s, err := scanShowtime(row)
	if err == sql.ErrNoRows {
		return nil, ErrShowtimeNotFound
	}
	return s, err
}

// ListUpcoming returns active scheduled showtimes that have not started
// yet, optionally filtered by movie.  Used for browsing and for
// registering seat maps with the engine at startup.
func (r *ShowtimeRepo) ListUpcoming(ctx context.Context, movieID uint64) ([]model.Showtime, error) {
	q := "SELECT " + showtimeColumns + " FROM showtimes WHERE is_active=1 AND status=? AND starts_at > UTC_TIMESTAMP()"
	args := []any{model.ShowtimeScheduled}
	if movieID != 0 {
		q += " AND movie_id=?"
		args = append(args, movieID)
	}
	q += " ORDER BY starts_at"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Showtime
	for rows.Next() {
		s, err := scanShowtime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateStatus sets a showtime's status (e.g. cancelled).
func (r *ShowtimeRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE showtimes SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}

// SeatLayout builds the showtime's immutable seat layout for the
// inventory engine: the screen's active seats, each priced by its
// class from the showtime's pricing columns.
func (r *ShowtimeRepo) SeatLayout(ctx context.Context, showtimeID uint64) ([]inventory.Seat, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT s.id, s.row_label, s.seat_number, s.class,
		        CASE s.class
		          WHEN 'premium'  THEN st.price_premium_cents
		          WHEN 'recliner' THEN st.price_recliner_cents
		          ELSE st.price_classic_cents
		        END AS price_cents
		 FROM showtimes st
		 JOIN seats s ON s.screen_id = st.screen_id AND s.is_active = 1
		 WHERE st.id = ?
		 ORDER BY s.row_label, s.seat_number`, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var layout []inventory.Seat
	for rows.Next() {
		var seat inventory.Seat
		var class string
		if err := rows.Scan(&seat.ID, &seat.Row, &seat.Number, &class, &seat.PriceCents); err != nil {
			return nil, err
		}
		seat.Class = inventory.SeatClass(class)
		layout = append(layout, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(layout) == 0 {
		return nil, ErrShowtimeNotFound
	}
	return layout, nil
}

// ShowtimeContext resolves the movie title, theater name and start
// time for event enrichment.  Satisfies queue_publisher.ShowtimeContext.
func (r *ShowtimeRepo) ShowtimeContext(ctx context.Context, showtimeID uint64) (string, string, time.Time, error) {
	var title, theater string
	var startsAt time.Time
	err := r.DB.QueryRowContext(ctx,
		`SELECT m.title, t.name, st.starts_at
		 FROM showtimes st
		 JOIN movies m ON m.id = st.movie_id
		 JOIN theaters t ON t.id = st.theater_id
		 WHERE st.id = ? LIMIT 1`, showtimeID).Scan(&title, &theater, &startsAt)
	if err == sql.ErrNoRows {
		return "", "", time.Time{}, ErrShowtimeNotFound
	}
	return title, theater, startsAt, err
}

func scanShowtime(row rowScanner) (*model.Showtime, error) {
	var s model.Showtime
	err := row.Scan(&s.ID, &s.MovieID, &s.TheaterID, &s.ScreenID, &s.StartsAt,
		&s.Language, &s.Format, &s.PriceClassicCents, &s.PricePremiumCents,
		&s.PriceReclinerCents, &s.Status, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
