package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// TheaterRepo provides access to the `theaters`, `screens` and `seats`
// tables.  Seats belong to screens; their per-showtime state never
// touches the database; it lives in the inventory engine.
type TheaterRepo struct{ DB *sql.DB }

// NewTheaterRepo returns a TheaterRepo bound to the provided database.
func NewTheaterRepo(db *sql.DB) *TheaterRepo { return &TheaterRepo{DB: db} }

// Create inserts a theater and returns its ID.
func (r *TheaterRepo) Create(ctx context.Context, t *model.Theater) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO theaters (name, city, address, is_active) VALUES (?,?,?,1)",
		t.Name, t.City, t.Address)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an active theater by id or returns ErrTheaterNotFound.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*model.Theater, error) {
	var t model.Theater
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,city,address,is_active,created_at,updated_at FROM theaters WHERE id=? AND is_active=1 LIMIT 1",
		id).Scan(&t.ID, &t.Name, &t.City, &t.Address, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTheaterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListActive returns active theaters, optionally filtered by city.
func (r *TheaterRepo) ListActive(ctx context.Context, city string) ([]model.Theater, error) {
	q := "SELECT id,name,city,address,is_active,created_at,updated_at FROM theaters WHERE is_active=1"
	args := []any{}
	if city != "" {
		q += " AND city=?"
		args = append(args, city)
	}
	q += " ORDER BY name"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Theater
	for rows.Next() {
		var t model.Theater
		if err := rows.Scan(&t.ID, &t.Name, &t.City, &t.Address, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateScreen inserts a screen for a theater and returns its ID.
func (r *TheaterRepo) CreateScreen(ctx context.Context, theaterID uint64, name string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO screens (theater_id, name) VALUES (?,?)", theaterID, name)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateSeatsBulk inserts the full seat grid of a screen in one
// statement.  Passing an empty slice has no effect and returns nil.
func (r *TheaterRepo) CreateSeatsBulk(ctx context.Context, screenID uint64, seats []model.TheaterSeat) error {
	if len(seats) == 0 {
		return nil
	}
	query := "INSERT INTO seats (screen_id, row_label, seat_number, class, is_active) VALUES "
	args := make([]any, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,1)"
		args = append(args, screenID, s.RowLabel, s.SeatNumber, s.Class)
	}
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

// SeatsByScreen returns the active seats of a screen ordered by row
// then number.
func (r *TheaterRepo) SeatsByScreen(ctx context.Context, screenID uint64) ([]model.TheaterSeat, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, screen_id, row_label, seat_number, class, is_active, created_at
		 FROM seats WHERE screen_id=? AND is_active=1
		 ORDER BY row_label, seat_number`, screenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TheaterSeat
	for rows.Next() {
		var s model.TheaterSeat
		if err := rows.Scan(&s.ID, &s.ScreenID, &s.RowLabel, &s.SeatNumber, &s.Class, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
