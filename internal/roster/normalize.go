// Package roster turns uploaded spreadsheets into canonical
// registration rows.  Column headers in the wild vary wildly
// ("Reg_No", "reg no", "Paper Code", "SUB CODE"); the resolver maps
// every known alias onto the canonical field and obviously-empty rows
// are dropped.  Parsing is pure: bytes in, rows or a ValidationError
// out, no I/O.
package roster

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/examdesk/exam-seat-allocation/internal/allocation"
	"github.com/examdesk/exam-seat-allocation/internal/model"
)

// rosterColumns maps each canonical roster field to the header
// spellings seen in real uploads.  Matching is done on trimmed,
// lower-cased headers.
var rosterColumns = map[string][]string{
	"reg_no":        {"reg_no", "reg no", "regno", "register no", "register number"},
	"name":          {"name of the student", "student name", "name"},
	"department":    {"dept", "department", "dept."},
	"year":          {"year", "prog & year", "prog & year.", "class"},
	"subject_code":  {"sub_code", "sub code", "paper code", "subject code"},
	"subject_title": {"sub_title", "sub title", "paper title", "subject title"},
	"exam_date":     {"date", "exam date"},
	"session":       {"sess", "session"},
}

// hallColumns maps hall-upload fields to their header spellings.
var hallColumns = map[string][]string{
	"name":     {"name", "hall", "hall name", "hall_name"},
	"capacity": {"capacity", "cap"},
	"location": {"location", "block", "room", "building"},
}

// Rows parses an uploaded roster file into registration rows.  The
// format is chosen by filename extension: .csv or .xlsx/.xls.  Values
// come back trimmed but otherwise raw; date and session validation is
// the slot grouper's job.
func Rows(data []byte, filename string) ([]model.RegistrationRow, error) {
	table, err := readTable(data, filename)
	if err != nil {
		return nil, err
	}
	cols, err := resolveColumns(table.header, rosterColumns,
		"reg_no", "name", "department", "year", "subject_code", "subject_title", "exam_date", "session")
	if err != nil {
		return nil, err
	}

	out := make([]model.RegistrationRow, 0, len(table.records))
	for _, rec := range table.records {
		row := model.RegistrationRow{
			RegNo:        cell(rec, cols["reg_no"]),
			Name:         cell(rec, cols["name"]),
			Department:   cell(rec, cols["department"]),
			Year:         cell(rec, cols["year"]),
			SubjectCode:  cell(rec, cols["subject_code"]),
			SubjectTitle: cell(rec, cols["subject_title"]),
			ExamDate:     cell(rec, cols["exam_date"]),
			Session:      cell(rec, cols["session"]),
		}
		// Drop obviously-empty rows (trailing blanks, section dividers).
		if row.RegNo == "" && row.Name == "" && row.SubjectCode == "" {
			continue
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, allocation.NewValidationError("no roster rows found in %s", filename)
	}
	return out, nil
}

// Halls parses an uploaded hall list into hall records.  Rows with an
// empty name are skipped; unparseable capacities are clamped to zero
// so a bad cell never aborts the whole sheet.
func Halls(data []byte, filename string) ([]*model.Hall, error) {
	table, err := readTable(data, filename)
	if err != nil {
		return nil, err
	}
	cols, err := resolveColumns(table.header, hallColumns, "name", "capacity")
	if err != nil {
		return nil, err
	}

	out := make([]*model.Hall, 0, len(table.records))
	for _, rec := range table.records {
		name := cell(rec, cols["name"])
		if name == "" {
			continue
		}
		capacity, err := strconv.Atoi(cell(rec, cols["capacity"]))
		if err != nil || capacity < 0 {
			capacity = 0
		}
		out = append(out, &model.Hall{
			Name:     name,
			Capacity: capacity,
			Location: cell(rec, cols["location"]),
		})
	}
	if len(out) == 0 {
		return nil, allocation.NewValidationError("no valid hall rows found in %s", filename)
	}
	return out, nil
}

// table is the format-independent view of a parsed sheet.
type table struct {
	header  []string
	records [][]string
}

// readTable dispatches on the filename extension and returns the first
// sheet of the file as header plus data records.
func readTable(data []byte, filename string) (*table, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		return readCSV(data)
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"),
		strings.HasSuffix(strings.ToLower(filename), ".xls"):
		return readXLSX(data)
	}
	return nil, allocation.NewValidationError("unsupported file format %q (use .csv or .xlsx)", filename)
}

func readCSV(data []byte) (*table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // uploads often have ragged trailing columns
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, allocation.NewValidationError("malformed CSV: %v", err)
	}
	return splitHeader(records)
}

func readXLSX(data []byte) (*table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, allocation.NewValidationError("malformed workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, allocation.NewValidationError("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, allocation.NewValidationError("reading sheet %q: %v", sheets[0], err)
	}
	return splitHeader(records)
}

// splitHeader takes the first non-empty record as the header row.
func splitHeader(records [][]string) (*table, error) {
	for i, rec := range records {
		empty := true
		for _, c := range rec {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if !empty {
			return &table{header: rec, records: records[i+1:]}, nil
		}
	}
	return nil, allocation.NewValidationError("file contains no data")
}

// resolveColumns maps canonical field names to column indices using
// the alias table.  Fields listed in required must resolve; optional
// fields that do not resolve map to -1 and read as empty.
func resolveColumns(header []string, aliases map[string][]string, required ...string) (map[string]int, error) {
	norm := make(map[string]int, len(header))
	for i, h := range header {
		norm[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cols := make(map[string]int, len(aliases))
	for field, names := range aliases {
		cols[field] = -1
		for _, n := range names {
			if i, ok := norm[n]; ok {
				cols[field] = i
				break
			}
		}
	}
	var missing []string
	for _, field := range required {
		if cols[field] < 0 {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, allocation.NewValidationError("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// cell reads a column from a record, tolerating short records.
func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}
