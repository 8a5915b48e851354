package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/examdesk/exam-seat-allocation/internal/model"
)

// ErrHallNotFound is returned when a hall lookup fails.
var ErrHallNotFound = errors.New("hall not found")

// ErrHallNameExists is returned when a create or update would collide
// with another hall's name.
var ErrHallNameExists = errors.New("hall name already exists")

// HallRepo provides methods to create, retrieve and bulk-replace halls.
// The allocator treats halls as read-only input; ListByCapacityDesc is
// the query that feeds it.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

const hallColumns = `id, name, capacity, location, created_at, updated_at`

func scanHall(row interface{ Scan(...any) error }, h *model.Hall) error {
	return row.Scan(&h.ID, &h.Name, &h.Capacity, &h.Location, &h.CreatedAt, &h.UpdatedAt)
}

// Create inserts a new hall.  Name and a positive capacity must be
// set.  After insert the record is read back so timestamps are filled.
func (r *HallRepo) Create(ctx context.Context, h *model.Hall) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO halls (name, capacity, location) VALUES (?, ?, ?)`,
		h.Name, h.Capacity, h.Location)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrHallNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return scanHall(r.db.QueryRowContext(ctx,
		`SELECT `+hallColumns+` FROM halls WHERE id = ?`, h.ID), h)
}

// GetByID retrieves a hall by its ID.  It returns ErrHallNotFound when
// no row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	var h model.Hall
	err := scanHall(r.db.QueryRowContext(ctx,
		`SELECT `+hallColumns+` FROM halls WHERE id = ?`, id), &h)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns all halls ordered by name for the management surface.
func (r *HallRepo) List(ctx context.Context) ([]*model.Hall, error) {
	return r.list(ctx, `SELECT `+hallColumns+` FROM halls ORDER BY name`)
}

// ListByCapacityDesc returns halls ordered largest first, the order the
// allocator consumes them in (first-fit-decreasing).  When ids is
// non-empty only those halls are returned; a missing id yields
// ErrHallNotFound so a bad request never silently shrinks capacity.
func (r *HallRepo) ListByCapacityDesc(ctx context.Context, ids []uint64) ([]*model.Hall, error) {
	if len(ids) == 0 {
		return r.list(ctx, `SELECT `+hallColumns+` FROM halls ORDER BY capacity DESC, id ASC`)
	}
	query := `SELECT ` + hallColumns + ` FROM halls WHERE id IN (`
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += `) ORDER BY capacity DESC, id ASC`
	halls, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(halls) != len(ids) {
		return nil, ErrHallNotFound
	}
	return halls, nil
}

func (r *HallRepo) list(ctx context.Context, query string, args ...any) ([]*model.Hall, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Hall
	for rows.Next() {
		h := new(model.Hall)
		if err := scanHall(rows, h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites name, capacity and location of a hall.  Returns
// ErrHallNotFound when the hall does not exist.
func (r *HallRepo) Update(ctx context.Context, h *model.Hall) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE halls SET name = ?, capacity = ?, location = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		h.Name, h.Capacity, h.Location, h.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrHallNameExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHallNotFound
	}
	return nil
}

// Delete removes a hall.  A hall referenced by seat assignments cannot
// be removed; the ledger is append-only and hall rows under it must
// stay resolvable.
func (r *HallRepo) Delete(ctx context.Context, id uint64) error {
	var used int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seat_assignments WHERE hall_id = ?`, id).Scan(&used); err != nil {
		return err
	}
	if used > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM halls WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHallNotFound
	}
	return nil
}

// ReplaceAll swaps the entire hall list for the uploaded one inside a
// single transaction, mirroring the spreadsheet upload semantics.  It
// refuses to run while any seat assignment exists, because replacing
// halls under a live ledger would orphan seats.
func (r *HallRepo) ReplaceAll(ctx context.Context, halls []*model.Hall) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var used int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM seat_assignments`).Scan(&used); err != nil {
		return err
	}
	if used > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM halls`); err != nil {
		return err
	}
	for _, h := range halls {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO halls (name, capacity, location) VALUES (?, ?, ?)`,
			h.Name, h.Capacity, h.Location)
		if err != nil {
			if isDuplicateKey(err) {
				return ErrHallNameExists
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		h.ID = uint64(id)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Count returns the number of halls, used by the dashboard stats.
func (r *HallRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM halls`).Scan(&n)
	return n, err
}
