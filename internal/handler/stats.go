package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Stats handles GET /v1/stats: entity counts for the admin dashboard.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	students, err := h.Students.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	staff, err := h.Staff.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	halls, err := h.Halls.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	slots, err := h.Slots.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	seats, err := h.Ledger.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"students":         students,
		"staff":            staff,
		"halls":            halls,
		"exam_slots":       slots,
		"seat_assignments": seats,
	})
}
