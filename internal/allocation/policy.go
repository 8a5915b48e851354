package allocation

import (
	"sort"
	"strings"
)

// Policy selects how the student queue of a slot is ordered before
// seats are filled.
type Policy string

const (
	// PolicySequential orders students ascending by register number
	// and fills halls front to back.  Used by the bulk timetable
	// importer; the same roster always yields the same seat map.
	PolicySequential Policy = "sequential"

	// PolicyInterleave disperses same-department, same-year students
	// across the queue before the sequential fill so that adjacent
	// seats rarely hold classmates.
	PolicyInterleave Policy = "interleave"
)

// ParsePolicy maps a request string to a Policy.  The empty string
// selects sequential fill.
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(PolicySequential):
		return PolicySequential, nil
	case string(PolicyInterleave):
		return PolicyInterleave, nil
	}
	return "", validationErrorf("unknown allocation policy %q", raw)
}

// regNoPadWidth is the width register numbers are zero-padded to when
// used as a sort key.  Padding avoids the classic "10" < "9" string
// ordering trap for numeric register numbers.
const regNoPadWidth = 20

// padRegNo left-pads a register number with zeros to regNoPadWidth.
// Values already at or beyond the width are returned unchanged.
func padRegNo(regNo string) string {
	s := strings.TrimSpace(regNo)
	if len(s) >= regNoPadWidth {
		return s
	}
	return strings.Repeat("0", regNoPadWidth-len(s)) + s
}

// orderSequential returns the students sorted ascending by padded
// register number.  The input slice is not modified.
func orderSequential(students []Student) []Student {
	out := make([]Student, len(students))
	copy(out, students)
	sort.SliceStable(out, func(i, j int) bool {
		return padRegNo(out[i].RegNo) < padRegNo(out[j].RegNo)
	})
	return out
}

// orderInterleaved builds the anti-malpractice queue.  Students are
// partitioned by (department, year); each partition is sorted by
// register number; partitions are ranked by descending size with ties
// broken by first-encounter order; then one student is popped from
// each non-empty partition in rotation until all are drained.
// Exhausted partitions are skipped, so once only one cohort remains
// its students simply run out in sequence.
func orderInterleaved(students []Student) []Student {
	type cohort struct {
		members []Student
		seen    int // first-encounter index, the deterministic tie-break
	}

	index := make(map[string]int, 8)
	cohorts := make([]*cohort, 0, 8)
	for _, s := range students {
		key := s.Department + "\x00" + s.Year
		at, ok := index[key]
		if !ok {
			at = len(cohorts)
			index[key] = at
			cohorts = append(cohorts, &cohort{seen: at})
		}
		cohorts[at].members = append(cohorts[at].members, s)
	}
	for _, c := range cohorts {
		sort.SliceStable(c.members, func(i, j int) bool {
			return padRegNo(c.members[i].RegNo) < padRegNo(c.members[j].RegNo)
		})
	}
	sort.SliceStable(cohorts, func(i, j int) bool {
		if len(cohorts[i].members) != len(cohorts[j].members) {
			return len(cohorts[i].members) > len(cohorts[j].members)
		}
		return cohorts[i].seen < cohorts[j].seen
	})

	out := make([]Student, 0, len(students))
	cursor := make([]int, len(cohorts))
	for len(out) < len(students) {
		progressed := false
		for i, c := range cohorts {
			if cursor[i] >= len(c.members) {
				continue // cohort exhausted, keep rotating
			}
			out = append(out, c.members[cursor[i]])
			cursor[i]++
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return out
}

// orderForPolicy applies the selected policy to the student queue.
func orderForPolicy(students []Student, policy Policy) []Student {
	if policy == PolicyInterleave {
		return orderInterleaved(students)
	}
	return orderSequential(students)
}
