package roster

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/examdesk/exam-seat-allocation/internal/allocation"
)

const sampleRoster = `Reg No,Name of the Student,Dept,Year,Paper Code,Paper Title,Date,Sess
20CS101,Anita R,CS,II,M101,Mathematics I,17-04-2026,FN
20CS102,Bala K,CS,II,M101,Mathematics I,17-04-2026,FN
20ME201,Chitra S,ME,II,P102,Physics,17-04-2026,AN
`

func TestRowsParsesAliasedHeaders(t *testing.T) {
	rows, err := Rows([]byte(sampleRoster), "roster.csv")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "20CS101", rows[0].RegNo)
	assert.Equal(t, "Anita R", rows[0].Name)
	assert.Equal(t, "CS", rows[0].Department)
	assert.Equal(t, "II", rows[0].Year)
	assert.Equal(t, "M101", rows[0].SubjectCode)
	assert.Equal(t, "Mathematics I", rows[0].SubjectTitle)
	assert.Equal(t, "17-04-2026", rows[0].ExamDate) // raw, validated downstream
	assert.Equal(t, "FN", rows[0].Session)

	assert.Equal(t, "P102", rows[2].SubjectCode)
}

func TestRowsDropsEmptyRows(t *testing.T) {
	csvData := sampleRoster + ",,,,,,,\n,,,,,,,\n"
	rows, err := Rows([]byte(csvData), "roster.csv")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRowsSkipsLeadingBlankLines(t *testing.T) {
	csvData := ",,,,,,,\n" + sampleRoster
	rows, err := Rows([]byte(csvData), "roster.csv")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRowsMissingRequiredColumns(t *testing.T) {
	csvData := "Reg No,Name,Dept\n20CS101,Anita R,CS\n"
	_, err := Rows([]byte(csvData), "roster.csv")

	var ve *allocation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "missing required columns")
	assert.Contains(t, ve.Reason, "subject_code")
}

func TestRowsUnsupportedFormat(t *testing.T) {
	_, err := Rows([]byte(sampleRoster), "roster.pdf")
	var ve *allocation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "unsupported file format")
}

func TestRowsXLSXRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	records := [][]interface{}{
		{"Reg_No", "Student Name", "Department", "Class", "Sub Code", "Sub Title", "Exam Date", "Session"},
		{"20CS101", "Anita R", "CS", "II", "M101", "Mathematics I", "2026-04-17", "FN"},
		{"20CS102", "Bala K", "CS", "II", "M101", "Mathematics I", "2026-04-17", "FN"},
	}
	for i, rec := range records {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &rec))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := Rows(buf.Bytes(), "roster.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "20CS102", rows[1].RegNo)
	assert.Equal(t, "2026-04-17", rows[1].ExamDate)
}

func TestHallsParsing(t *testing.T) {
	csvData := strings.Join([]string{
		"Hall Name,Capacity,Block",
		"Main Hall,60,A Block",
		"Annex,30,B Block",
		",10,ignored",      // no name, skipped
		"Store Room,n/a,C", // bad capacity clamps to zero
	}, "\n")

	halls, err := Halls([]byte(csvData), "halls.csv")
	require.NoError(t, err)
	require.Len(t, halls, 3)

	assert.Equal(t, "Main Hall", halls[0].Name)
	assert.Equal(t, 60, halls[0].Capacity)
	assert.Equal(t, "A Block", halls[0].Location)
	assert.Equal(t, "Annex", halls[1].Name)
	assert.Equal(t, 30, halls[1].Capacity)
	assert.Equal(t, 0, halls[2].Capacity)
}

func TestHallsMissingCapacityColumn(t *testing.T) {
	csvData := "Hall Name,Block\nMain Hall,A\n"
	_, err := Halls([]byte(csvData), "halls.csv")
	var ve *allocation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Reason, "capacity")
}
