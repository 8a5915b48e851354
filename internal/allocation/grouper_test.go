package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examdesk/exam-seat-allocation/internal/model"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-04-17", "2026-04-17"},
		{"17-04-2026", "2026-04-17"},
		{"17/04/2026", "2026-04-17"},
		{" 2026-04-17 ", "2026-04-17"},
	}
	for _, tc := range cases {
		got, err := NormalizeDate(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}

	for _, bad := range []string{"", "17.04.2026", "April 17 2026", "2026/04/17"} {
		_, err := NormalizeDate(bad)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "input %q", bad)
	}
}

func TestNormalizeSession(t *testing.T) {
	cases := map[string]string{
		"FN":        "FN",
		"fn":        "FN",
		"Forenoon":  "FN",
		"AN":        "AN",
		"afternoon": "AN",
		"ev":        "EV",
		"EVENING":   "EV",
		" an ":      "AN",
	}
	for in, want := range cases {
		got, err := NormalizeSession(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	for _, bad := range []string{"", "morning", "night", "F"} {
		_, err := NormalizeSession(bad)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "input %q", bad)
	}
}

func TestSessionTime(t *testing.T) {
	assert.Equal(t, "09:30", SessionTime("FN", "08:00"))
	assert.Equal(t, "13:30", SessionTime("an", "08:00"))
	assert.Equal(t, "16:00", SessionTime("EV", "08:00"))
	assert.Equal(t, "08:00", SessionTime("XX", "08:00"))
}

func regRow(regNo, code, date, session string) model.RegistrationRow {
	return model.RegistrationRow{
		RegNo:       regNo,
		Name:        "Student " + regNo,
		SubjectCode: code,
		ExamDate:    date,
		Session:     session,
	}
}

func TestGroupRoster(t *testing.T) {
	rows := []model.RegistrationRow{
		regRow("1", "M101", "17-04-2026", "fn"),
		regRow("2", "P102", "17-04-2026", "AN"),
		regRow("3", "M101", "2026-04-17", "forenoon"), // same slot as row 1
		regRow("4", "M101", "18/04/2026", "FN"),       // different date, new slot
	}

	groups, err := GroupRoster(rows)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	// first-encounter order with canonical keys
	assert.Equal(t, SlotKey{Date: "2026-04-17", Session: "FN", SubjectCode: "M101"}, groups[0].Key)
	assert.Equal(t, SlotKey{Date: "2026-04-17", Session: "AN", SubjectCode: "P102"}, groups[1].Key)
	assert.Equal(t, SlotKey{Date: "2026-04-18", Session: "FN", SubjectCode: "M101"}, groups[2].Key)

	// rows keep upload order inside their group
	require.Len(t, groups[0].Rows, 2)
	assert.Equal(t, "1", groups[0].Rows[0].RegNo)
	assert.Equal(t, "3", groups[0].Rows[1].RegNo)
}

func TestGroupRosterRejectsBadRows(t *testing.T) {
	cases := []struct {
		name string
		rows []model.RegistrationRow
		want string
	}{
		{
			name: "missing reg no",
			rows: []model.RegistrationRow{regRow("", "M101", "2026-04-17", "FN")},
			want: "missing reg_no",
		},
		{
			name: "missing subject code",
			rows: []model.RegistrationRow{regRow("1", "", "2026-04-17", "FN")},
			want: "missing subject code",
		},
		{
			name: "bad date",
			rows: []model.RegistrationRow{regRow("1", "M101", "someday", "FN")},
			want: "date",
		},
		{
			name: "bad session",
			rows: []model.RegistrationRow{
				regRow("1", "M101", "2026-04-17", "FN"),
				regRow("2", "M101", "2026-04-17", "midnight"),
			},
			want: "row 2",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			groups, err := GroupRoster(tc.rows)
			assert.Nil(t, groups)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Reason, tc.want)
		})
	}
}
