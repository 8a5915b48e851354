package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/examdesk/exam-seat-allocation/internal/allocation"
	"github.com/examdesk/exam-seat-allocation/internal/config"
	"github.com/examdesk/exam-seat-allocation/internal/repository"
)

// ExportHandler renders the seating ledger as downloadable hall-ticket
// and attendance documents.
type ExportHandler struct {
	Cfg      config.Config
	Ledger   *repository.LedgerRepo
	Students *repository.StudentRepo
}

func NewExportHandler(cfg config.Config, ledger *repository.LedgerRepo, students *repository.StudentRepo) *ExportHandler {
	return &ExportHandler{Cfg: cfg, Ledger: ledger, Students: students}
}

var hallTicketHeader = []string{
	"Reg No", "Name", "Department", "Year",
	"Subject Code", "Subject Title", "Date", "Session", "Time",
	"Hall", "Seat No", "Desk No",
}

func (h *ExportHandler) hallTicketRecord(d repository.SeatDetail) []string {
	return []string{
		d.RegNo, d.StudentName, d.Department, d.Year,
		d.SubjectCode, d.SubjectTitle, d.Date, d.Session,
		allocation.SessionTime(d.Session, h.Cfg.DefaultSessionTime),
		d.HallName, strconv.Itoa(d.SeatNo), strconv.Itoa(d.DeskNo),
	}
}

// dateSessionParams normalizes the mandatory date and session query
// parameters shared by every export endpoint.
func dateSessionParams(c echo.Context) (date, session string, err error) {
	date, err = allocation.NormalizeDate(c.QueryParam("date"))
	if err != nil {
		return "", "", err
	}
	session, err = allocation.NormalizeSession(c.QueryParam("session"))
	if err != nil {
		return "", "", err
	}
	return date, session, nil
}

// HallTickets handles GET /v1/export/halltickets?date=&session=&format=.
// Rows come out ordered by hall name then seat number so the printed
// tickets follow the physical walking order of an invigilator.  The
// format parameter selects csv (default) or xlsx.
func (h *ExportHandler) HallTickets(c echo.Context) error {
	date, session, err := dateSessionParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	details, err := h.Ledger.ListByDateSession(c.Request().Context(), date, session)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ledger query failed"})
	}
	if len(details) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no seat assignments for that date and session"})
	}

	name := fmt.Sprintf("halltickets_%s_%s", date, session)
	switch c.QueryParam("format") {
	case "", "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(hallTicketHeader); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "csv write failed"})
		}
		for _, d := range details {
			if err := w.Write(h.hallTicketRecord(d)); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "csv write failed"})
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "csv write failed"})
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`.csv"`)
		return c.Blob(http.StatusOK, "text/csv", buf.Bytes())

	case "xlsx":
		f := excelize.NewFile()
		defer f.Close()
		const sheet = "Hall Tickets"
		f.SetSheetName(f.GetSheetName(0), sheet)
		if err := writeSheetRow(f, sheet, 1, hallTicketHeader); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "xlsx write failed"})
		}
		for i, d := range details {
			if err := writeSheetRow(f, sheet, i+2, h.hallTicketRecord(d)); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "xlsx write failed"})
			}
		}
		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "xlsx write failed"})
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`.xlsx"`)
		return c.Blob(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "format must be csv or xlsx"})
}

var attendanceHeader = []string{
	"Seat No", "Desk No", "Reg No", "Name", "Department", "Year",
	"Subject Code", "Signature",
}

// AttendanceSheets handles GET /v1/export/attendance?date=&session=.
// The workbook carries one sheet per hall with a blank Signature column
// for the invigilator to collect during the exam.
func (h *ExportHandler) AttendanceSheets(c echo.Context) error {
	date, session, err := dateSessionParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	details, err := h.Ledger.ListByDateSession(c.Request().Context(), date, session)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ledger query failed"})
	}
	if len(details) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no seat assignments for that date and session"})
	}

	f := excelize.NewFile()
	defer f.Close()

	// details arrive ordered by hall name then seat number, so each
	// hall's rows are contiguous and sheets come out in hall-name order
	row := 0
	currentHall := ""
	first := true
	for _, d := range details {
		if d.HallName != currentHall {
			currentHall = d.HallName
			if first {
				f.SetSheetName(f.GetSheetName(0), currentHall)
				first = false
			} else if _, err := f.NewSheet(currentHall); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "xlsx write failed"})
			}
			if err := writeSheetRow(f, currentHall, 1, attendanceHeader); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "xlsx write failed"})
			}
			row = 2
		}
		rec := []string{
			strconv.Itoa(d.SeatNo), strconv.Itoa(d.DeskNo),
			d.RegNo, d.StudentName, d.Department, d.Year,
			d.SubjectCode, "",
		}
		if err := writeSheetRow(f, currentHall, row, rec); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "xlsx write failed"})
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "xlsx write failed"})
	}
	name := fmt.Sprintf("attendance_%s_%s.xlsx", date, session)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// StudentHallTicket handles GET /v1/students/:id/hallticket?date=&session=
// and returns the student's seat for that sitting as JSON.
func (h *ExportHandler) StudentHallTicket(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date, session, err := dateSessionParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if _, err := h.Students.GetByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	details, err := h.Ledger.ListByStudentDateSession(c.Request().Context(), id, date, session)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ledger query failed"})
	}
	if len(details) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no seat assigned for that date and session"})
	}

	type ticket struct {
		repository.SeatDetail
		Time string `json:"time"`
	}
	out := make([]ticket, 0, len(details))
	for _, d := range details {
		out = append(out, ticket{
			SeatDetail: d,
			Time:       allocation.SessionTime(d.Session, h.Cfg.DefaultSessionTime),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// writeSheetRow writes one spreadsheet row starting at column A.
func writeSheetRow(f *excelize.File, sheet string, row int, values []string) error {
	cellRef, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return f.SetSheetRow(sheet, cellRef, &vals)
}
