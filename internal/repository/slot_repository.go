package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/examdesk/exam-seat-allocation/internal/allocation"
	"github.com/examdesk/exam-seat-allocation/internal/model"
)

// ErrSlotNotFound is returned when an exam slot lookup fails.
var ErrSlotNotFound = errors.New("exam slot not found")

// SlotRepo persists exam slots and the subject registrations that link
// students to them.  A slot is created once per distinct
// (date, session, subject_code) key and never mutated afterwards.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo constructs a SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

const slotColumns = `id, DATE_FORMAT(exam_date, '%Y-%m-%d'), session, subject_code, subject_title, created_at`

func scanSlot(row interface{ Scan(...any) error }, s *model.ExamSlot) error {
	return row.Scan(&s.ID, &s.Date, &s.Session, &s.SubjectCode, &s.SubjectTitle, &s.CreatedAt)
}

// GetOrCreateTx looks up the slot for a key or creates it inside the
// given transaction.  The unique key on (exam_date, session,
// subject_code) makes the insert race-safe: a concurrent creator loses
// the insert and the row is re-read.
func (r *SlotRepo) GetOrCreateTx(ctx context.Context, tx *sql.Tx, key allocation.SlotKey) (slot *model.ExamSlot, created bool, err error) {
	const sel = `SELECT ` + slotColumns + ` FROM exam_slots WHERE exam_date = ? AND session = ? AND subject_code = ?`
	var s model.ExamSlot
	err = scanSlot(tx.QueryRowContext(ctx, sel, key.Date, key.Session, key.SubjectCode), &s)
	if err == nil {
		return &s, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO exam_slots (exam_date, session, subject_code, subject_title) VALUES (?, ?, ?, ?)`,
		key.Date, key.Session, key.SubjectCode, key.SubjectTitle)
	if err != nil && !isDuplicateKey(err) {
		return nil, false, err
	}
	created = err == nil
	if err := scanSlot(tx.QueryRowContext(ctx, sel, key.Date, key.Session, key.SubjectCode), &s); err != nil {
		return nil, false, err
	}
	return &s, created, nil
}

// GetByID retrieves a slot, returning ErrSlotNotFound when absent.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*model.ExamSlot, error) {
	var s model.ExamSlot
	err := scanSlot(r.db.QueryRowContext(ctx,
		`SELECT `+slotColumns+` FROM exam_slots WHERE id = ?`, id), &s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByDateSession returns the slots of one sitting ordered by
// subject code; this is the set the allocator iterates over.
func (r *SlotRepo) ListByDateSession(ctx context.Context, date, session string) ([]*model.ExamSlot, error) {
	return r.list(ctx,
		`SELECT `+slotColumns+` FROM exam_slots WHERE exam_date = ? AND session = ? ORDER BY subject_code`,
		date, session)
}

// List returns every slot ordered by date, session and subject.
func (r *SlotRepo) List(ctx context.Context) ([]*model.ExamSlot, error) {
	return r.list(ctx,
		`SELECT `+slotColumns+` FROM exam_slots ORDER BY exam_date, session, subject_code`)
}

func (r *SlotRepo) list(ctx context.Context, query string, args ...any) ([]*model.ExamSlot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ExamSlot
	for rows.Next() {
		s := new(model.ExamSlot)
		if err := scanSlot(rows, s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterStudentTx links a student to a slot.  The insert is
// idempotent: re-importing the same roster re-registers nobody thanks
// to the unique (exam_slot_id, student_id) key.
func (r *SlotRepo) RegisterStudentTx(ctx context.Context, tx *sql.Tx, slotID, studentID uint64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO subject_registrations (exam_slot_id, student_id) VALUES (?, ?)`,
		slotID, studentID)
	return err
}

// RegisteredStudents returns the students registered for a slot in
// register-number order.
func (r *SlotRepo) RegisteredStudents(ctx context.Context, slotID uint64) ([]*model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.reg_no, s.name, s.department, s.year, s.created_at, s.updated_at
		 FROM subject_registrations sr
		 JOIN students s ON s.id = sr.student_id
		 WHERE sr.exam_slot_id = ?
		 ORDER BY s.reg_no`, slotID)
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

// Count returns the number of slots, used by the dashboard stats.
func (r *SlotRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exam_slots`).Scan(&n)
	return n, err
}
