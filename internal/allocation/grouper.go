package allocation

import (
	"strings"
	"time"

	"github.com/examdesk/exam-seat-allocation/internal/model"
)

// dateLayouts are the accepted upload date formats, tried in order.
// ISO first, then the day-first forms the college spreadsheets use.
var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006"}

// sessionNames maps every accepted spelling of a session to its
// canonical code.  Anything absent from this table is rejected;
// ambiguous codes are never guessed at grouping time.
var sessionNames = map[string]string{
	"FN": "FN", "FORENOON": "FN",
	"AN": "AN", "AFTERNOON": "AN",
	"EV": "EV", "EVENING": "EV",
}

// sessionTimes maps canonical sessions to their display start times.
// The mapping is applied only when rendering exports; allocation never
// substitutes a time for an unknown session.
var sessionTimes = map[string]string{
	"FN": "09:30",
	"AN": "13:30",
	"EV": "16:00",
}

// NormalizeDate parses an uploaded date string and returns it in ISO
// YYYY-MM-DD form.  A ValidationError is returned for any value that
// matches none of the accepted layouts.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", validationErrorf("empty exam date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", validationErrorf("unrecognized date format %q (expected YYYY-MM-DD or DD-MM-YYYY)", s)
}

// NormalizeSession canonicalizes a session code to FN, AN or EV.
// Matching is case-insensitive after trimming.  Unknown codes fail
// with a ValidationError rather than defaulting.
func NormalizeSession(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", validationErrorf("empty session")
	}
	if canonical, ok := sessionNames[s]; ok {
		return canonical, nil
	}
	return "", validationErrorf("unknown session %q (expected FN, AN or EV)", raw)
}

// SessionTime returns the display start time for a canonical session
// code.  Unmapped sessions fall back to the configured default; this
// is an export-time convenience only.
func SessionTime(session, fallback string) string {
	if t, ok := sessionTimes[strings.ToUpper(strings.TrimSpace(session))]; ok {
		return t
	}
	return fallback
}

// SlotKey identifies one exam sitting.  Date is ISO, Session canonical.
type SlotKey struct {
	Date         string
	Session      string
	SubjectCode  string
	SubjectTitle string
}

// SlotGroup is the bucket of roster rows that belong to one slot key.
// Rows keep their original upload order.
type SlotGroup struct {
	Key  SlotKey
	Rows []model.RegistrationRow
}

// GroupRoster partitions a normalized roster into slot groups keyed by
// (date, session, subject_code, subject_title).  Dates and sessions are
// validated and canonicalized here; the first malformed row aborts the
// grouping with a ValidationError so that nothing downstream sees a
// half-validated batch.  Groups come back in first-encounter order.
func GroupRoster(rows []model.RegistrationRow) ([]SlotGroup, error) {
	index := make(map[SlotKey]int, 8)
	groups := make([]SlotGroup, 0, 8)

	for i, row := range rows {
		if strings.TrimSpace(row.RegNo) == "" {
			return nil, validationErrorf("row %d: missing reg_no", i+1)
		}
		if strings.TrimSpace(row.SubjectCode) == "" {
			return nil, validationErrorf("row %d: missing subject code", i+1)
		}
		date, err := NormalizeDate(row.ExamDate)
		if err != nil {
			return nil, validationErrorf("row %d: %v", i+1, err)
		}
		session, err := NormalizeSession(row.Session)
		if err != nil {
			return nil, validationErrorf("row %d: %v", i+1, err)
		}
		key := SlotKey{
			Date:         date,
			Session:      session,
			SubjectCode:  strings.TrimSpace(row.SubjectCode),
			SubjectTitle: strings.TrimSpace(row.SubjectTitle),
		}
		at, ok := index[key]
		if !ok {
			at = len(groups)
			index[key] = at
			groups = append(groups, SlotGroup{Key: key})
		}
		groups[at].Rows = append(groups[at].Rows, row)
	}
	return groups, nil
}
