package allocation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicySequential, false},
		{"sequential", PolicySequential, false},
		{"SEQUENTIAL", PolicySequential, false},
		{" interleave ", PolicyInterleave, false},
		{"Interleave", PolicyInterleave, false},
		{"random", "", true},
	}
	for _, tc := range cases {
		got, err := ParsePolicy(tc.in)
		if tc.wantErr {
			var ve *ValidationError
			require.ErrorAs(t, err, &ve, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestPadRegNo(t *testing.T) {
	assert.Equal(t, strings.Repeat("0", 19)+"9", padRegNo("9"))
	assert.Equal(t, strings.Repeat("0", 18)+"10", padRegNo("10"))
	assert.Equal(t, strings.Repeat("0", 12)+"20CS1042", padRegNo(" 20CS1042 "))

	long := strings.Repeat("X", 25)
	assert.Equal(t, long, padRegNo(long))
}

func TestOrderSequentialNumericOrdering(t *testing.T) {
	in := mkStudents("10", "9", "100", "1")
	got := orderSequential(in)

	want := []string{"1", "9", "10", "100"}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w, got[i].RegNo, "position %d", i)
	}
	// input untouched
	assert.Equal(t, "10", in[0].RegNo)
}

func cohortStudent(regNo, dept, year string) Student {
	return Student{RegNo: regNo, Department: dept, Year: year}
}

func TestOrderInterleavedAlternatesCohorts(t *testing.T) {
	in := []Student{
		cohortStudent("2", "CS", "II"),
		cohortStudent("1", "CS", "II"),
		cohortStudent("3", "CS", "II"),
		cohortStudent("12", "ME", "II"),
		cohortStudent("11", "ME", "II"),
	}

	got := orderInterleaved(in)
	require.Len(t, got, 5)

	// larger cohort leads; members of each cohort appear in register
	// number order; the smaller cohort drains and the tail is all CS
	want := []string{"1", "11", "2", "12", "3"}
	for i, w := range want {
		assert.Equal(t, w, got[i].RegNo, "position %d", i)
	}

	// no two neighbours share department and year until a cohort runs dry
	for i := 1; i < 4; i++ {
		same := got[i-1].Department == got[i].Department && got[i-1].Year == got[i].Year
		assert.False(t, same, "positions %d and %d are classmates", i-1, i)
	}
}

func TestOrderInterleavedSizeTieBrokenByFirstEncounter(t *testing.T) {
	in := []Student{
		cohortStudent("21", "EE", "I"),
		cohortStudent("11", "CS", "I"),
		cohortStudent("22", "EE", "I"),
		cohortStudent("12", "CS", "I"),
	}

	got := orderInterleaved(in)
	want := []string{"21", "11", "22", "12"} // EE seen first wins the tie
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w, got[i].RegNo, "position %d", i)
	}
}

func TestOrderInterleavedSingleCohortFallsBackToSequential(t *testing.T) {
	in := []Student{
		cohortStudent("30", "CS", "III"),
		cohortStudent("3", "CS", "III"),
		cohortStudent("7", "CS", "III"),
	}
	got := orderInterleaved(in)
	want := []string{"3", "7", "30"}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w, got[i].RegNo, "position %d", i)
	}
}

func TestOrderInterleavedDistinguishesYearWithinDepartment(t *testing.T) {
	in := []Student{
		cohortStudent("1", "CS", "I"),
		cohortStudent("2", "CS", "I"),
		cohortStudent("51", "CS", "II"),
		cohortStudent("52", "CS", "II"),
	}
	got := orderInterleaved(in)
	require.Len(t, got, 4)
	// same department but different years still alternate
	assert.NotEqual(t, got[0].Year, got[1].Year)
	assert.NotEqual(t, got[1].Year, got[2].Year)
	assert.NotEqual(t, got[2].Year, got[3].Year)
}
