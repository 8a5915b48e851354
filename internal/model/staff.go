package model

import "time"

// Staff represents an invigilator or administrative staff member.
// Staff records are plain CRUD data; the allocator does not consume
// them, but attendance sheets print the invigilating department.
type Staff struct {
	ID         uint64    // staff.id
	Name       string    // staff.name
	Email      string    // staff.email (unique)
	Phone      string    // staff.phone
	Department string    // staff.department
	Role       string    // staff.role (e.g. "Invigilator")
	CreatedAt  time.Time // staff.created_at
	UpdatedAt  time.Time // staff.updated_at
}
