package model

import "time"

// Hall represents an examination hall.  Halls are managed through the
// admin CRUD surface or bulk uploads and are consumed by the seat
// allocator as read-only input ordered by descending capacity.  The
// usable capacity of a hall during allocation is the smaller of
// Capacity and the configured hard ceiling.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique hall name (e.g. "A Block 101").
//  Capacity  – declared number of seats; must be positive.
//  Location  – optional free-form location (block, building, floor).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Hall struct {
	ID        uint64    // halls.id
	Name      string    // halls.name
	Capacity  int       // halls.capacity
	Location  string    // halls.location
	CreatedAt time.Time // halls.created_at
	UpdatedAt time.Time // halls.updated_at
}
