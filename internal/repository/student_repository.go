package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/examdesk/exam-seat-allocation/internal/model"
)

// ErrStudentNotFound is returned when a student lookup fails.
var ErrStudentNotFound = errors.New("student not found")

// ErrRegNoExists is returned when a create would collide with another
// student's register number.
var ErrRegNoExists = errors.New("register number already exists")

// StudentRepo provides CRUD over students plus the find-or-create used
// during roster ingestion.  Deleting a student cascades over every
// table that references it, in one transaction.
type StudentRepo struct {
	db *sql.DB
}

// NewStudentRepo constructs a StudentRepo bound to the given database.
func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

const studentColumns = `id, reg_no, name, department, year, created_at, updated_at`

func scanStudent(row interface{ Scan(...any) error }, s *model.Student) error {
	return row.Scan(&s.ID, &s.RegNo, &s.Name, &s.Department, &s.Year, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a new student.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	s.RegNo = strings.TrimSpace(s.RegNo)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO students (reg_no, name, department, year) VALUES (?, ?, ?, ?)`,
		s.RegNo, s.Name, s.Department, s.Year)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrRegNoExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return scanStudent(r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, s.ID), s)
}

// GetByID retrieves a student, returning ErrStudentNotFound when absent.
func (r *StudentRepo) GetByID(ctx context.Context, id uint64) (*model.Student, error) {
	var s model.Student
	err := scanStudent(r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ?`, id), &s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByRegNo retrieves a student by register number.
func (r *StudentRepo) GetByRegNo(ctx context.Context, regNo string) (*model.Student, error) {
	var s model.Student
	err := scanStudent(r.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE reg_no = ?`, strings.TrimSpace(regNo)), &s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns all students ordered by register number.
func (r *StudentRepo) List(ctx context.Context) ([]*model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY reg_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Student
	for rows.Next() {
		s := new(model.Student)
		if err := scanStudent(rows, s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable fields of a student.
func (r *StudentRepo) Update(ctx context.Context, s *model.Student) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE students SET name = ?, department = ?, year = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		s.Name, s.Department, s.Year, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// EnsureTx finds a student by register number or creates it inside the
// given transaction.  Roster ingestion calls this once per row; created
// reports whether a new record was inserted.
func (r *StudentRepo) EnsureTx(ctx context.Context, tx *sql.Tx, regNo, name, department, year string) (id uint64, created bool, err error) {
	regNo = strings.TrimSpace(regNo)
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM students WHERE reg_no = ?`, regNo).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO students (reg_no, name, department, year) VALUES (?, ?, ?, ?)`,
		regNo, name, department, year)
	if err != nil {
		return 0, false, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	return uint64(newID), true, nil
}

// DeleteCascade removes a student and every row referencing it: seat
// assignments, subject registrations and attendance, all inside one
// transaction so the ledger never holds a dangling reference.
func (r *StudentRepo) DeleteCascade(ctx context.Context, id uint64) error {
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

	for _, q := range []string{
		`DELETE FROM seat_assignments WHERE student_id = ?`,
		`DELETE FROM exam_attendance WHERE student_id = ?`,
		`DELETE FROM subject_registrations WHERE student_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStudentNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Count returns the number of students, used by the dashboard stats.
func (r *StudentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&n)
	return n, err
}
