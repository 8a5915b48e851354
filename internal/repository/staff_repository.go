package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/examdesk/exam-seat-allocation/internal/model"
)

// ErrStaffNotFound is returned when a staff lookup fails.
var ErrStaffNotFound = errors.New("staff not found")

// ErrStaffEmailExists is returned when a create or update would reuse
// another staff member's email.
var ErrStaffEmailExists = errors.New("staff email already exists")

// StaffRepo provides CRUD over invigilation staff.
type StaffRepo struct {
	db *sql.DB
}

// NewStaffRepo constructs a StaffRepo bound to the given database.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

const staffColumns = `id, name, email, phone, department, role, created_at, updated_at`

func scanStaff(row interface{ Scan(...any) error }, s *model.Staff) error {
	return row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Department, &s.Role, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a new staff member.
func (r *StaffRepo) Create(ctx context.Context, s *model.Staff) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (name, email, phone, department, role) VALUES (?, ?, ?, ?, ?)`,
		s.Name, s.Email, s.Phone, s.Department, s.Role)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrStaffEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return scanStaff(r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE id = ?`, s.ID), s)
}

// GetByID retrieves a staff member, returning ErrStaffNotFound when absent.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (*model.Staff, error) {
	var s model.Staff
	err := scanStaff(r.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE id = ?`, id), &s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns all staff ordered by name.
func (r *StaffRepo) List(ctx context.Context) ([]*model.Staff, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+staffColumns+` FROM staff ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Staff
	for rows.Next() {
		s := new(model.Staff)
		if err := scanStaff(rows, s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable fields of a staff member.
func (r *StaffRepo) Update(ctx context.Context, s *model.Staff) error {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	res, err := r.db.ExecContext(ctx,
		`UPDATE staff SET name = ?, email = ?, phone = ?, department = ?, role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		s.Name, s.Email, s.Phone, s.Department, s.Role, s.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrStaffEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStaffNotFound
	}
	return nil
}

// Count returns the number of staff members, used by the dashboard
// stats.
func (r *StaffRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff`).Scan(&n)
	return n, err
}

// Delete removes a staff member.
func (r *StaffRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStaffNotFound
	}
	return nil
}
