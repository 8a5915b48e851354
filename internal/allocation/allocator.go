package allocation

// DefaultHardCeiling is the physical seat ceiling applied when the
// configuration does not override it.  A hall whose declared capacity
// exceeds the ceiling is still filled only up to the ceiling.
const DefaultHardCeiling = 60

// Student is the allocator's view of one unseated candidate.  ID is
// carried through so the ledger can persist assignments without a
// second lookup; the engine itself keys everything on RegNo.
type Student struct {
	ID         uint64
	RegNo      string
	Name       string
	Department string
	Year       string
}

// Hall is the allocator's view of one hall for one slot.  Used counts
// the seats the ledger already holds for the slot, so re-allocation
// tops halls up instead of starting over.
type Hall struct {
	ID       uint64
	Name     string
	Capacity int
	Used     int
}

// Assignment is one produced seat.  SeatNo is unique and contiguous
// within (slot, hall); DeskNo follows the fixed two-seats-per-desk rule.
type Assignment struct {
	HallID   uint64
	HallName string
	SeatNo   int
	DeskNo   int
	Student  Student
}

// Unseated filters the registered students of a slot down to those
// holding no seat yet.  seated is keyed by register number and input
// order is preserved.  This set difference is what makes re-allocation
// idempotent: after a full allocation the result is empty and a second
// run seats nobody.
func Unseated(registered []Student, seated map[string]struct{}) []Student {
	var out []Student
	for _, s := range registered {
		if _, ok := seated[s.RegNo]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// DeskNo derives the desk for a seat: seats 1 and 2 share desk 1,
// seats 3 and 4 desk 2, and so on.  The rule is arithmetic and not
// configurable per hall.
func DeskNo(seatNo int) int {
	return ((seatNo - 1) / 2) + 1
}

// usableCapacity clamps a hall's declared capacity to the hard ceiling.
func usableCapacity(h Hall, ceiling int) int {
	if h.Capacity < ceiling {
		return h.Capacity
	}
	return ceiling
}

// Allocate seats every student of one slot, or fails without emitting
// anything.  Halls must arrive ordered by descending capacity; halls
// already partially filled for the slot are topped up first so the
// slot spreads over as few halls as possible.  The student queue is
// ordered by the given policy and then dealt into seats front to back.
//
// On insufficient capacity a CapacityExceededError reports how many
// seats were needed versus available; no partial assignment list is
// ever returned alongside an error.
func Allocate(students []Student, halls []Hall, policy Policy, hardCeiling int) ([]Assignment, error) {
	if hardCeiling <= 0 {
		hardCeiling = DefaultHardCeiling
	}
	if len(students) == 0 {
		return nil, nil
	}

	// Partially filled halls first, otherwise keep the caller's
	// descending-capacity order.  The partition is stable.
	ordered := make([]Hall, 0, len(halls))
	for _, h := range halls {
		if h.Used > 0 && h.Used < usableCapacity(h, hardCeiling) {
			ordered = append(ordered, h)
		}
	}
	for _, h := range halls {
		if !(h.Used > 0 && h.Used < usableCapacity(h, hardCeiling)) {
			ordered = append(ordered, h)
		}
	}

	available := 0
	for _, h := range ordered {
		if free := usableCapacity(h, hardCeiling) - h.Used; free > 0 {
			available += free
		}
	}
	if len(students) > available {
		return nil, &CapacityExceededError{Needed: len(students), Available: available}
	}

	queue := orderForPolicy(students, policy)
	out := make([]Assignment, 0, len(queue))
	next := 0
	for _, h := range ordered {
		if next >= len(queue) {
			break
		}
		limit := usableCapacity(h, hardCeiling)
		for seat := h.Used + 1; seat <= limit && next < len(queue); seat++ {
			out = append(out, Assignment{
				HallID:   h.ID,
				HallName: h.Name,
				SeatNo:   seat,
				DeskNo:   DeskNo(seat),
				Student:  queue[next],
			})
			next++
		}
	}
	return out, nil
}
