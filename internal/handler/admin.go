package handler

import (
	"github.com/examdesk/exam-seat-allocation/internal/repository"
)

// AdminHandler bundles the repositories behind the management surface:
// student, staff and hall CRUD plus the dashboard stats.
type AdminHandler struct {
	Students *repository.StudentRepo
	Staff    *repository.StaffRepo
	Halls    *repository.HallRepo
	Slots    *repository.SlotRepo
	Ledger   *repository.LedgerRepo
}

func NewAdminHandler(students *repository.StudentRepo, staff *repository.StaffRepo, halls *repository.HallRepo, slots *repository.SlotRepo, ledger *repository.LedgerRepo) *AdminHandler {
	return &AdminHandler{
		Students: students,
		Staff:    staff,
		Halls:    halls,
		Slots:    slots,
		Ledger:   ledger,
	}
}
