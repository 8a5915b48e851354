package allocation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkStudents(regNos ...string) []Student {
	out := make([]Student, 0, len(regNos))
	for i, r := range regNos {
		out = append(out, Student{ID: uint64(i + 1), RegNo: r, Name: "Student " + r})
	}
	return out
}

func TestDeskNo(t *testing.T) {
	cases := map[int]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 59: 30, 60: 30, 61: 31}
	for seat, desk := range cases {
		assert.Equal(t, desk, DeskNo(seat), "seat %d", seat)
	}
}

func TestAllocateEmptyQueue(t *testing.T) {
	got, err := Allocate(nil, []Hall{{ID: 1, Name: "A", Capacity: 10}}, PolicySequential, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAllocateSequentialFillsHallsInOrder(t *testing.T) {
	students := mkStudents("3", "10", "2", "9", "1")
	halls := []Hall{
		{ID: 1, Name: "Main Hall", Capacity: 3},
		{ID: 2, Name: "Annex", Capacity: 2},
	}

	got, err := Allocate(students, halls, PolicySequential, 0)
	require.NoError(t, err)
	require.Len(t, got, 5)

	// numeric register numbers sort numerically, "10" after "9"
	wantRegNos := []string{"1", "2", "3", "9", "10"}
	wantHalls := []string{"Main Hall", "Main Hall", "Main Hall", "Annex", "Annex"}
	wantSeats := []int{1, 2, 3, 1, 2}
	for i, a := range got {
		assert.Equal(t, wantRegNos[i], a.Student.RegNo, "position %d", i)
		assert.Equal(t, wantHalls[i], a.HallName, "position %d", i)
		assert.Equal(t, wantSeats[i], a.SeatNo, "position %d", i)
		assert.Equal(t, DeskNo(a.SeatNo), a.DeskNo, "position %d", i)
	}
}

func TestAllocateCapacityExceeded(t *testing.T) {
	students := make([]Student, 61)
	for i := range students {
		students[i] = Student{ID: uint64(i + 1), RegNo: fmt.Sprintf("%d", i+1)}
	}
	halls := []Hall{{ID: 1, Name: "Big", Capacity: 100}} // ceiling caps usable seats at 60

	got, err := Allocate(students, halls, PolicySequential, DefaultHardCeiling)
	require.Nil(t, got)

	var capErr *CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 61, capErr.Needed)
	assert.Equal(t, 60, capErr.Available)
	assert.Contains(t, capErr.Error(), "61")
	assert.Contains(t, capErr.Error(), "60")
}

func TestAllocateHonorsHardCeilingOverride(t *testing.T) {
	students := mkStudents("1", "2", "3", "4", "5")
	halls := []Hall{{ID: 1, Name: "A", Capacity: 100}}

	got, err := Allocate(students, halls, PolicySequential, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, 5, got[4].SeatNo)

	_, err = Allocate(mkStudents("1", "2", "3", "4", "5", "6"), halls, PolicySequential, 5)
	var capErr *CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 6, capErr.Needed)
	assert.Equal(t, 5, capErr.Available)
}

func TestAllocateTopsUpPartiallyFilledHallFirst(t *testing.T) {
	students := mkStudents("101", "102", "103")
	halls := []Hall{
		{ID: 1, Name: "Big", Capacity: 50, Used: 0},
		{ID: 2, Name: "Small", Capacity: 10, Used: 8}, // already holds seats for the slot
	}

	got, err := Allocate(students, halls, PolicySequential, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// the partially filled hall is topped up before the big empty one
	assert.Equal(t, "Small", got[0].HallName)
	assert.Equal(t, 9, got[0].SeatNo)
	assert.Equal(t, "Small", got[1].HallName)
	assert.Equal(t, 10, got[1].SeatNo)
	assert.Equal(t, "Big", got[2].HallName)
	assert.Equal(t, 1, got[2].SeatNo)
}

func TestAllocateSkipsFullHalls(t *testing.T) {
	students := mkStudents("1", "2")
	halls := []Hall{
		{ID: 1, Name: "Full", Capacity: 10, Used: 10},
		{ID: 2, Name: "Open", Capacity: 10, Used: 0},
	}

	got, err := Allocate(students, halls, PolicySequential, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, "Open", a.HallName)
	}
}

func TestAllocateDeterministic(t *testing.T) {
	halls := []Hall{
		{ID: 1, Name: "A", Capacity: 4},
		{ID: 2, Name: "B", Capacity: 4},
	}
	first, err := Allocate(mkStudents("7", "3", "5", "1"), halls, PolicySequential, 0)
	require.NoError(t, err)
	second, err := Allocate(mkStudents("1", "5", "3", "7"), halls, PolicySequential, 0)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Student.RegNo, second[i].Student.RegNo)
		assert.Equal(t, first[i].HallID, second[i].HallID)
		assert.Equal(t, first[i].SeatNo, second[i].SeatNo)
	}
}

func TestUnseatedPreservesOrder(t *testing.T) {
	registered := mkStudents("1", "2", "3", "4", "5")
	seated := map[string]struct{}{"2": {}, "4": {}}

	got := Unseated(registered, seated)
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].RegNo)
	assert.Equal(t, "3", got[1].RegNo)
	assert.Equal(t, "5", got[2].RegNo)

	assert.Equal(t, registered, Unseated(registered, nil))
}

func TestReallocationSeatsNoAdditionalStudents(t *testing.T) {
	students := mkStudents("101", "102", "103", "104")
	halls := []Hall{{ID: 1, Name: "Main Hall", Capacity: 10}}

	first, err := Allocate(students, halls, PolicySequential, 0)
	require.NoError(t, err)
	require.Len(t, first, 4)

	// rebuild the ledger's view after the first run
	seated := make(map[string]struct{}, len(first))
	for _, a := range first {
		seated[a.Student.RegNo] = struct{}{}
	}

	pending := Unseated(students, seated)
	assert.Empty(t, pending)

	second, err := Allocate(pending, halls, PolicySequential, 0)
	require.NoError(t, err)
	assert.Nil(t, second)

	// a late registration after the first run seats exactly that student
	late := append(students, Student{ID: 9, RegNo: "105"})
	pending = Unseated(late, seated)
	require.Len(t, pending, 1)
	assert.Equal(t, "105", pending[0].RegNo)
}

func TestInterleaveAlternatesAcrossHallBoundary(t *testing.T) {
	var students []Student
	for i := 1; i <= 10; i++ {
		students = append(students, Student{RegNo: fmt.Sprintf("C%02d", i), Department: "CS", Year: "II"})
	}
	for i := 1; i <= 5; i++ {
		students = append(students, Student{RegNo: fmt.Sprintf("M%02d", i), Department: "ME", Year: "II"})
	}
	halls := []Hall{
		{ID: 1, Name: "A", Capacity: 10},
		{ID: 2, Name: "B", Capacity: 10},
	}

	got, err := Allocate(students, halls, PolicyInterleave, 0)
	require.NoError(t, err)
	require.Len(t, got, 15)

	// first hall holds strict CS/ME alternation while both cohorts last
	var pattern string
	for _, a := range got[:10] {
		assert.Equal(t, uint64(1), a.HallID)
		pattern += a.Student.Department[:1]
	}
	assert.Equal(t, "CMCMCMCMCM", pattern)

	// the smaller cohort drains; the overflow hall holds the CS tail
	for _, a := range got[10:] {
		assert.Equal(t, uint64(2), a.HallID)
		assert.Equal(t, "CS", a.Student.Department)
	}
}

func TestAllocateNeverDuplicatesSeats(t *testing.T) {
	students := make([]Student, 25)
	for i := range students {
		students[i] = Student{ID: uint64(i + 1), RegNo: fmt.Sprintf("R%02d", i+1)}
	}
	halls := []Hall{
		{ID: 1, Name: "A", Capacity: 10, Used: 3},
		{ID: 2, Name: "B", Capacity: 10},
		{ID: 3, Name: "C", Capacity: 10},
	}

	got, err := Allocate(students, halls, PolicyInterleave, 0)
	require.NoError(t, err)
	require.Len(t, got, 25)

	seen := make(map[string]bool)
	seated := make(map[string]bool)
	for _, a := range got {
		seat := fmt.Sprintf("%d/%d", a.HallID, a.SeatNo)
		assert.False(t, seen[seat], "seat %s assigned twice", seat)
		seen[seat] = true
		assert.False(t, seated[a.Student.RegNo], "student %s seated twice", a.Student.RegNo)
		seated[a.Student.RegNo] = true
	}
}
