package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// MovieRepo provides access to the `movies` table.  Multi-valued
// attributes (genres, languages, formats) are stored comma-separated
// and split on read.
type MovieRepo struct{ DB *sql.DB }

// NewMovieRepo returns a MovieRepo bound to the provided database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieColumns = "id,title,description,genres,languages,duration_min,certification,release_date,formats,status,is_active,created_at,updated_at"

// Create inserts a movie and returns its ID.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO movies (title, description, genres, languages, duration_min, certification, release_date, formats, status, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?,1)`,
		m.Title, m.Description, joinList(m.Genres), joinList(m.Languages),
		m.DurationMin, m.Certification, m.ReleaseDate.UTC(), joinList(m.Formats), m.Status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an active movie by id or returns ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+movieColumns+" FROM movies WHERE id=? AND is_active=1 LIMIT 1", id)
	m, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, ErrMovieNotFound
	}
	return m, err
}

// ListActive returns active movies, optionally filtered by status
// (upcoming/now_showing/ended).  An empty status returns all.
func (r *MovieRepo) ListActive(ctx context.Context, status string) ([]model.Movie, error) {
	q := "SELECT " + movieColumns + " FROM movies WHERE is_active=1"
	args := []any{}
	if status != "" {
		q += " AND status=?"
		args = append(args, status)
	}
	q += " ORDER BY release_date DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// rowScanner lets scanMovie work with both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanMovie(row rowScanner) (*model.Movie, error) {
	var m model.Movie
	var genres, languages, formats string
	err := row.Scan(&m.ID, &m.Title, &m.Description, &genres, &languages,
		&m.DurationMin, &m.Certification, &m.ReleaseDate, &formats,
		&m.Status, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Genres = splitList(genres)
	m.Languages = splitList(languages)
	m.Formats = splitList(formats)
	return &m, nil
}

func joinList(vals []string) string { return strings.Join(vals, ",") }

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
