package model

import "time"

// SeatAssignment is one row of the allocation ledger: a student fixed
// to a numbered seat in a hall for one exam slot.  Assignments are
// created only by the allocator and are append-only per slot; re-running
// allocation never reassigns or duplicates an existing seat.
//
// Seat numbers are unique and contiguous from 1 within a (slot, hall)
// pair.  Desk numbers are derived, never stored independently of the
// pairing rule: desk_no = ((seat_no-1)/2)+1, two adjacent seats per desk.
type SeatAssignment struct {
	ID         uint64    // seat_assignments.id
	ExamSlotID uint64    // seat_assignments.exam_slot_id
	HallID     uint64    // seat_assignments.hall_id
	StudentID  uint64    // seat_assignments.student_id
	RegNo      string    // seat_assignments.reg_no (denormalized for queries)
	SeatNo     int       // seat_assignments.seat_no (1..usable capacity)
	DeskNo     int       // seat_assignments.desk_no (derived)
	CreatedAt  time.Time // seat_assignments.created_at
}

// HallUsage summarizes how many seats of a hall one slot consumed.  It
// appears in allocation responses and in the allocation.completed event.
type HallUsage struct {
	HallID    uint64 `json:"hall_id"`
	HallName  string `json:"hall_name"`
	Allocated int    `json:"allocated"`
}
