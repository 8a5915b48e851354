package model

import "time"

// ExamSlot is a unique exam sitting: one subject examined on one date
// in one session.  Slots are created once per distinct
// (date, session, subject_code) key encountered during roster import
// and are never mutated afterwards; hall usage accumulates in the
// allocation ledger as seats are assigned.
//
// Fields:
//  ID           – primary key identifier.
//  Date         – ISO date (YYYY-MM-DD) after normalization.
//  Session      – canonical session code: FN, AN or EV.
//  SubjectCode  – paper code.
//  SubjectTitle – paper title.
//  CreatedAt    – creation timestamp.
type ExamSlot struct {
	ID           uint64    // exam_slots.id
	Date         string    // exam_slots.exam_date (DATE, read back as string)
	Session      string    // exam_slots.session
	SubjectCode  string    // exam_slots.subject_code
	SubjectTitle string    // exam_slots.subject_title
	CreatedAt    time.Time // exam_slots.created_at
}
