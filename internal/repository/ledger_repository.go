package repository

import (
	"context"
	"database/sql"
	"sync"

	"github.com/examdesk/exam-seat-allocation/internal/allocation"
	"github.com/examdesk/exam-seat-allocation/internal/model"
)

// LedgerRepo is the allocation ledger: the persisted record of
// slot → hall → seat → student assignments.  Assignments are
// append-only per slot; the repo exposes the seated set and per-hall
// usage so the allocator can top up a partially seated slot without
// touching existing seats.
//
// Writes happen inside a caller-held transaction bracketed by the
// per-slot lock, so two concurrent allocation calls for the same slot
// serialize and can never double-seat a student.
type LedgerRepo struct {
	DB    *sql.DB
	locks sync.Map // slot id -> *sync.Mutex
}

// NewLedgerRepo constructs a LedgerRepo bound to the given database.
func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{DB: db} }

// LockSlot acquires the critical section for one slot and returns the
// unlock function.  Allocation for different slots proceeds in
// parallel; calls for the same slot queue up here.
//
// Mutexes are never removed, so the map holds one entry per slot ever
// allocated in this process.  An exam cycle has at most a few hundred
// slots; restart reclaims the map before that matters.
func (r *LedgerRepo) LockSlot(slotID uint64) func() {
	v, _ := r.locks.LoadOrStore(slotID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// SeatedRegNosTx returns the register numbers already holding a seat
// for the slot.  The allocator subtracts this set from the registered
// students so re-invocation seats only newcomers.
func (r *LedgerRepo) SeatedRegNosTx(ctx context.Context, tx *sql.Tx, slotID uint64) (map[string]struct{}, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT reg_no FROM seat_assignments WHERE exam_slot_id = ?`, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seated := make(map[string]struct{})
	for rows.Next() {
		var regNo string
		if err := rows.Scan(&regNo); err != nil {
			return nil, err
		}
		seated[regNo] = struct{}{}
	}
	return seated, rows.Err()
}

// UsedPerHallTx returns how many seats each hall already holds for the
// slot, keyed by hall id.  Halls absent from the map are untouched.
func (r *LedgerRepo) UsedPerHallTx(ctx context.Context, tx *sql.Tx, slotID uint64) (map[uint64]int, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT hall_id, COUNT(*) FROM seat_assignments WHERE exam_slot_id = ? GROUP BY hall_id`, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	used := make(map[uint64]int)
	for rows.Next() {
		var hallID uint64
		var n int
		if err := rows.Scan(&hallID, &n); err != nil {
			return nil, err
		}
		used[hallID] = n
	}
	return used, rows.Err()
}

// CreateBulkTx appends the assignments of one slot in a single
// multi-value insert and creates the matching attendance rows
// (status ABSENT until the exam is held).  The unique keys on
// (exam_slot_id, hall_id, seat_no) and (exam_slot_id, student_id)
// back the seat-uniqueness and one-seat-per-student invariants even if
// a bug upstream were to produce a duplicate.  Passing an empty slice
// has no effect and returns nil.
func (r *LedgerRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, assignments []model.SeatAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	query := `INSERT INTO seat_assignments (exam_slot_id, hall_id, student_id, reg_no, seat_no, desk_no) VALUES `
	args := make([]any, 0, len(assignments)*6)
	for i, a := range assignments {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, a.ExamSlotID, a.HallID, a.StudentID, a.RegNo, a.SeatNo, a.DeskNo)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return allocation.ErrDuplicateAssignment
		}
		return err
	}

	attQuery := `INSERT IGNORE INTO exam_attendance (exam_slot_id, student_id, status) VALUES `
	attArgs := make([]any, 0, len(assignments)*3)
	for i, a := range assignments {
		if i > 0 {
			attQuery += ","
		}
		attQuery += "(?, ?, 'ABSENT')"
		attArgs = append(attArgs, a.ExamSlotID, a.StudentID)
	}
	_, err := tx.ExecContext(ctx, attQuery, attArgs...)
	return err
}

// SeatDetail is one ledger row joined with the display fields the
// export collaborators need: who sits where, for which paper, when.
type SeatDetail struct {
	ExamSlotID   uint64 `json:"exam_slot_id"`
	RegNo        string `json:"reg_no"`
	StudentName  string `json:"student_name"`
	Department   string `json:"department"`
	Year         string `json:"year"`
	SubjectCode  string `json:"subject_code"`
	SubjectTitle string `json:"subject_title"`
	Date         string `json:"date"`
	Session      string `json:"session"`
	HallID       uint64 `json:"hall_id"`
	HallName     string `json:"hall_name"`
	SeatNo       int    `json:"seat_no"`
	DeskNo       int    `json:"desk_no"`
}

const seatDetailQuery = `
	SELECT sa.exam_slot_id, sa.reg_no, st.name, st.department, st.year,
	       es.subject_code, es.subject_title,
	       DATE_FORMAT(es.exam_date, '%Y-%m-%d'), es.session,
	       h.id, h.name, sa.seat_no, sa.desk_no
	FROM seat_assignments sa
	JOIN exam_slots es ON es.id = sa.exam_slot_id
	JOIN halls h ON h.id = sa.hall_id
	JOIN students st ON st.id = sa.student_id`

func (r *LedgerRepo) queryDetails(ctx context.Context, query string, args ...any) ([]SeatDetail, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeatDetail
	for rows.Next() {
		var d SeatDetail
		if err := rows.Scan(&d.ExamSlotID, &d.RegNo, &d.StudentName, &d.Department, &d.Year,
			&d.SubjectCode, &d.SubjectTitle, &d.Date, &d.Session,
			&d.HallID, &d.HallName, &d.SeatNo, &d.DeskNo); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByDateSession returns every assignment of one sitting ordered by
// hall name then seat number, the order hall tickets and attendance
// sheets are printed in.
func (r *LedgerRepo) ListByDateSession(ctx context.Context, date, session string) ([]SeatDetail, error) {
	return r.queryDetails(ctx,
		seatDetailQuery+` WHERE es.exam_date = ? AND es.session = ? ORDER BY h.name, sa.seat_no`,
		date, session)
}

// ListByStudentDateSession returns one student's seats across the
// subjects of a day, for single-student hall-ticket rendering.
func (r *LedgerRepo) ListByStudentDateSession(ctx context.Context, studentID uint64, date, session string) ([]SeatDetail, error) {
	return r.queryDetails(ctx,
		seatDetailQuery+` WHERE sa.student_id = ? AND es.exam_date = ? AND es.session = ?
		 ORDER BY es.session, es.subject_code`,
		studentID, date, session)
}

// ListBySlot returns the assignments of one slot ordered by hall then
// seat, used in allocation responses and idempotence checks.
func (r *LedgerRepo) ListBySlot(ctx context.Context, slotID uint64) ([]SeatDetail, error) {
	return r.queryDetails(ctx,
		seatDetailQuery+` WHERE sa.exam_slot_id = ? ORDER BY h.name, sa.seat_no`, slotID)
}

// UnseatedForSlot returns the registered students of a slot who hold
// no seat yet, in register-number order.
func (r *LedgerRepo) UnseatedForSlot(ctx context.Context, slotID uint64) ([]*model.Student, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT st.id, st.reg_no, st.name, st.department, st.year, st.created_at, st.updated_at
		 FROM subject_registrations sr
		 JOIN students st ON st.id = sr.student_id
		 LEFT JOIN seat_assignments sa
		   ON sa.exam_slot_id = sr.exam_slot_id AND sa.student_id = sr.student_id
		 WHERE sr.exam_slot_id = ? AND sa.id IS NULL
		 ORDER BY st.reg_no`, slotID)
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

// HallUsageForSlot summarizes per-hall seat counts for one slot.
func (r *LedgerRepo) HallUsageForSlot(ctx context.Context, slotID uint64) ([]model.HallUsage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT h.id, h.name, COUNT(*)
		 FROM seat_assignments sa
		 JOIN halls h ON h.id = sa.hall_id
		 WHERE sa.exam_slot_id = ?
		 GROUP BY h.id, h.name
		 ORDER BY h.name`, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HallUsage
	for rows.Next() {
		var u model.HallUsage
		if err := rows.Scan(&u.HallID, &u.HallName, &u.Allocated); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the number of seat assignments, used by the dashboard
// stats.
func (r *LedgerRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM seat_assignments`).Scan(&n)
	return n, err
}

// MarkAttendance flips the attendance status for a (slot, student)
// pair.  Valid statuses are PRESENT and ABSENT.
func (r *LedgerRepo) MarkAttendance(ctx context.Context, slotID, studentID uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE exam_attendance SET status = ? WHERE exam_slot_id = ? AND student_id = ?`,
		status, slotID, studentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStudentNotFound
	}
	return nil
}
