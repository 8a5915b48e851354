package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/examdesk/exam-seat-allocation/internal/allocation"
	"github.com/examdesk/exam-seat-allocation/internal/config"
	"github.com/examdesk/exam-seat-allocation/internal/model"
	"github.com/examdesk/exam-seat-allocation/internal/queue"
	"github.com/examdesk/exam-seat-allocation/internal/repository"
	queuepublisher "github.com/examdesk/exam-seat-allocation/internal/service"
)

// AllocationHandler runs the seat allocator over the slots of a sitting
// and serves ledger queries.  Each slot is allocated inside its own
// transaction under the per-slot lock; slots succeed or fail
// independently of one another.
type AllocationHandler struct {
	DB     *sql.DB
	Cfg    config.Config
	Slots  *repository.SlotRepo
	Halls  *repository.HallRepo
	Ledger *repository.LedgerRepo
}

func NewAllocationHandler(db *sql.DB, cfg config.Config, slots *repository.SlotRepo, halls *repository.HallRepo, ledger *repository.LedgerRepo) *AllocationHandler {
	return &AllocationHandler{DB: db, Cfg: cfg, Slots: slots, Halls: halls, Ledger: ledger}
}

type allocateReq struct {
	Date        string   `json:"date"`
	Session     string   `json:"session"`
	Policy      string   `json:"policy"`       // sequential (default) | interleave
	HallIDs     []uint64 `json:"hall_ids"`     // empty means every hall, largest first
	HardCeiling int      `json:"hard_ceiling"` // 0 means server default
}

type slotResult struct {
	ExamSlotID    uint64            `json:"exam_slot_id"`
	SubjectCode   string            `json:"subject_code"`
	SubjectTitle  string            `json:"subject_title"`
	Allocated     int               `json:"allocated"`
	AlreadySeated int               `json:"already_seated"`
	Halls         []model.HallUsage `json:"halls,omitempty"`
	Error         string            `json:"error,omitempty"`
}

// Allocate handles POST /v1/allocate.  For every exam slot on the given
// date and session the handler seats the registered students who do not
// hold a seat yet.  Already seated students are never moved, so calling
// this endpoint again after a late registration only tops the slot up.
func (h *AllocationHandler) Allocate(c echo.Context) error {
	var req allocateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	date, err := allocation.NormalizeDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	session, err := allocation.NormalizeSession(req.Session)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	policy, err := allocation.ParsePolicy(req.Policy)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ceiling := req.HardCeiling
	if ceiling <= 0 {
		ceiling = h.Cfg.HallHardCeiling
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	slots, err := h.Slots.ListByDateSession(ctx, date, session)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "slot query failed"})
	}
	if len(slots) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no exam slots for that date and session"})
	}

	halls, err := h.Halls.ListByCapacityDesc(ctx, req.HallIDs)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown hall id in hall_ids"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hall query failed"})
	}
	if len(halls) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no halls available"})
	}

	results := make([]slotResult, 0, len(slots))
	failed := 0
	for _, slot := range slots {
		res := h.allocateSlot(ctx, slot, halls, policy, ceiling)
		if res.Error != "" {
			failed++
		}
		results = append(results, res)
	}

	status := http.StatusOK
	if failed == len(results) {
		status = http.StatusConflict
	}
	return c.JSON(status, echo.Map{
		"date":    date,
		"session": session,
		"policy":  string(policy),
		"results": results,
	})
}

// allocateSlot seats the unseated students of one slot.  It holds the
// slot lock across read-compute-write so concurrent calls for the same
// slot serialize, and it commits or rolls back as a unit.
func (h *AllocationHandler) allocateSlot(ctx context.Context, slot *model.ExamSlot, halls []*model.Hall, policy allocation.Policy, ceiling int) slotResult {
	res := slotResult{
		ExamSlotID:   slot.ID,
		SubjectCode:  slot.SubjectCode,
		SubjectTitle: slot.SubjectTitle,
	}

	unlock := h.Ledger.LockSlot(slot.ID)
	defer unlock()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		res.Error = "begin tx failed"
		return res
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seated, err := h.Ledger.SeatedRegNosTx(ctx, tx, slot.ID)
	if err != nil {
		res.Error = "ledger read failed"
		return res
	}
	registered, err := h.Slots.RegisteredStudents(ctx, slot.ID)
	if err != nil {
		res.Error = "registration read failed"
		return res
	}

	candidates := make([]allocation.Student, 0, len(registered))
	for _, st := range registered {
		candidates = append(candidates, allocation.Student{
			ID:         st.ID,
			RegNo:      st.RegNo,
			Name:       st.Name,
			Department: st.Department,
			Year:       st.Year,
		})
	}
	pending := allocation.Unseated(candidates, seated)
	res.AlreadySeated = len(seated)
	if len(pending) == 0 {
		// everyone is seated already; nothing to write
		return res
	}

	used, err := h.Ledger.UsedPerHallTx(ctx, tx, slot.ID)
	if err != nil {
		res.Error = "usage read failed"
		return res
	}
	pool := make([]allocation.Hall, 0, len(halls))
	for _, hall := range halls {
		pool = append(pool, allocation.Hall{
			ID:       hall.ID,
			Name:     hall.Name,
			Capacity: hall.Capacity,
			Used:     used[hall.ID],
		})
	}

	assigned, err := allocation.Allocate(pending, pool, policy, ceiling)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	rows := make([]model.SeatAssignment, 0, len(assigned))
	usage := make(map[uint64]*model.HallUsage)
	order := make([]uint64, 0, 4)
	for _, a := range assigned {
		rows = append(rows, model.SeatAssignment{
			ExamSlotID: slot.ID,
			HallID:     a.HallID,
			StudentID:  a.Student.ID,
			RegNo:      a.Student.RegNo,
			SeatNo:     a.SeatNo,
			DeskNo:     a.DeskNo,
		})
		u, ok := usage[a.HallID]
		if !ok {
			u = &model.HallUsage{HallID: a.HallID, HallName: a.HallName}
			usage[a.HallID] = u
			order = append(order, a.HallID)
		}
		u.Allocated++
	}
	if err := h.Ledger.CreateBulkTx(ctx, tx, rows); err != nil {
		if errors.Is(err, allocation.ErrDuplicateAssignment) {
			// unreachable while the slot lock covers read-compute-write
			log.Printf("allocator: duplicate assignment for slot %d: %v", slot.ID, err)
			res.Error = err.Error()
			return res
		}
		res.Error = "ledger write failed"
		return res
	}
	if err := tx.Commit(); err != nil {
		res.Error = "commit failed"
		return res
	}
	committed = true

	res.Allocated = len(assigned)
	for _, id := range order {
		res.Halls = append(res.Halls, *usage[id])
	}

	event := queue.AllocationCompletedEvent{
		ExamSlotID:   slot.ID,
		Date:         slot.Date,
		Session:      slot.Session,
		SubjectCode:  slot.SubjectCode,
		SubjectTitle: slot.SubjectTitle,
		Policy:       string(policy),
		Students:     len(assigned),
		Halls:        res.Halls,
		CompletedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	// event delivery is advisory; the ledger is already committed
	_ = queuepublisher.PublishAllocationCompleted(ctx, event)
	return res
}

// ListSlots handles GET /v1/slots with optional date and session
// filters.
func (h *AllocationHandler) ListSlots(c echo.Context) error {
	date := c.QueryParam("date")
	session := c.QueryParam("session")

	var (
		slots []*model.ExamSlot
		err   error
	)
	switch {
	case date != "" && session != "":
		var nd, ns string
		if nd, err = allocation.NormalizeDate(date); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if ns, err = allocation.NormalizeSession(session); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		slots, err = h.Slots.ListByDateSession(c.Request().Context(), nd, ns)
	case date == "" && session == "":
		slots, err = h.Slots.List(c.Request().Context())
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and session must be given together"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "slot query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": slots})
}

// SlotSeats handles GET /v1/slots/:id/seats.
func (h *AllocationHandler) SlotSeats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.Slots.GetByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "slot query failed"})
	}
	seats, err := h.Ledger.ListBySlot(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ledger query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": seats})
}

// SlotUnseated handles GET /v1/slots/:id/unseated: registered students
// still waiting for a seat.
func (h *AllocationHandler) SlotUnseated(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.Slots.GetByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "slot query failed"})
	}
	students, err := h.Ledger.UnseatedForSlot(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ledger query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": students})
}

// ListAllocations handles GET /v1/allocations?date=&session=: the full
// seating of one sitting ordered by hall name then seat number.
func (h *AllocationHandler) ListAllocations(c echo.Context) error {
	date, err := allocation.NormalizeDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	session, err := allocation.NormalizeSession(c.QueryParam("session"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	seats, err := h.Ledger.ListByDateSession(c.Request().Context(), date, session)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ledger query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": seats})
}

// MarkAttendance handles PUT /v1/slots/:id/attendance/:student_id with
// body {"status": "PRESENT"|"ABSENT"}.
func (h *AllocationHandler) MarkAttendance(c echo.Context) error {
	slotID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	studentID, err := pathID(c, "student_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid student id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Status != "PRESENT" && body.Status != "ABSENT" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be PRESENT or ABSENT"})
	}
	if err := h.Ledger.MarkAttendance(c.Request().Context(), slotID, studentID, body.Status); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no attendance row for that slot and student"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
