package model

import "time"

// Student represents a candidate who can be seated for exams.  Students
// are created explicitly through the CRUD surface or implicitly while
// ingesting a roster upload (find-or-create by register number).
//
// Fields:
//  ID         – primary key identifier.
//  RegNo      – register number; unique across the institution.
//  Name       – student name as printed on hall tickets.
//  Department – owning department code (e.g. "CS").
//  Year       – programme year or class label (kept as text, the
//               uploads carry values like "II" or "2").
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Student struct {
	ID         uint64    // students.id
	RegNo      string    // students.reg_no
	Name       string    // students.name
	Department string    // students.department
	Year       string    // students.year
	CreatedAt  time.Time // students.created_at
	UpdatedAt  time.Time // students.updated_at
}
