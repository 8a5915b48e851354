package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/examdesk/exam-seat-allocation/internal/allocation"
	"github.com/examdesk/exam-seat-allocation/internal/repository"
	"github.com/examdesk/exam-seat-allocation/internal/roster"
)

// UploadHandler ingests roster and hall spreadsheets.  Roster import
// runs in a single transaction so a bad file never leaves a half-loaded
// exam behind.
type UploadHandler struct {
	DB       *sql.DB
	Students *repository.StudentRepo
	Slots    *repository.SlotRepo
	Halls    *repository.HallRepo
	Uploads  *roster.Cache
}

func NewUploadHandler(db *sql.DB, students *repository.StudentRepo, slots *repository.SlotRepo, halls *repository.HallRepo, uploads *roster.Cache) *UploadHandler {
	return &UploadHandler{DB: db, Students: students, Slots: slots, Halls: halls, Uploads: uploads}
}

// readUpload pulls the spreadsheet out of the multipart form.  The part
// must be named "file".
func readUpload(c echo.Context) ([]byte, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, "", errors.New("multipart field 'file' is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}

type rosterUploadResp struct {
	UploadID        string `json:"upload_id"`
	RowsIngested    int    `json:"rows_ingested"`
	SlotsCreated    int    `json:"slots_created"`
	StudentsCreated int    `json:"students_created"`
}

// UploadRoster handles POST /v1/upload/roster.  The file is normalized,
// validated row by row, grouped into exam slots and ingested in one
// transaction: slots are created on first sight of their
// (date, session, subject_code) key, students are found or created by
// register number, and subject registrations are recorded idempotently.
// The normalized rows are cached under a fresh upload id so the caller
// can review exactly what was ingested.
func (h *UploadHandler) UploadRoster(c echo.Context) error {
	data, filename, err := readUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rows, err := roster.Rows(data, filename)
	if err != nil {
		var ve *allocation.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read file"})
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file contains no roster rows"})
	}

	groups, err := allocation.GroupRoster(rows)
	if err != nil {
		var ve *allocation.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid roster"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slotsCreated := 0
	studentsCreated := 0
	for _, g := range groups {
		slot, created, err := h.Slots.GetOrCreateTx(ctx, tx, g.Key)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "slot upsert failed"})
		}
		if created {
			slotsCreated++
		}
		for _, row := range g.Rows {
			studentID, made, err := h.Students.EnsureTx(ctx, tx, row.RegNo, row.Name, row.Department, row.Year)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "student upsert failed"})
			}
			if made {
				studentsCreated++
			}
			if err := h.Slots.RegisterStudentTx(ctx, tx, slot.ID, studentID); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration insert failed"})
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	uploadID := uuid.NewString()
	if err := h.Uploads.Store(ctx, uploadID, rows); err != nil {
		// cache is best effort; ingestion already committed
		c.Logger().Warnf("roster cache store failed: %v", err)
	}

	return c.JSON(http.StatusCreated, rosterUploadResp{
		UploadID:        uploadID,
		RowsIngested:    len(rows),
		SlotsCreated:    slotsCreated,
		StudentsCreated: studentsCreated,
	})
}

// GetUpload handles GET /v1/uploads/:id and returns the cached
// normalized rows of a previous roster upload.
func (h *UploadHandler) GetUpload(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "upload id required"})
	}
	rows, err := h.Uploads.Load(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, roster.ErrUploadNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "upload not found or expired"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cache read failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"upload_id": id, "rows": rows})
}

// UploadHalls handles POST /v1/upload/halls.  The uploaded sheet
// replaces the entire hall inventory.  Replacement is refused once any
// seat assignment exists, since rows in the ledger point at hall ids.
func (h *UploadHandler) UploadHalls(c echo.Context) error {
	data, filename, err := readUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	halls, err := roster.Halls(data, filename)
	if err != nil {
		var ve *allocation.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read file"})
	}
	if len(halls) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file contains no halls"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Halls.ReplaceAll(ctx, halls); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "halls are referenced by seat assignments"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hall replace failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"halls_loaded": len(halls)})
}
