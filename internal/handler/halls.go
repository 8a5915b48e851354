package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/examdesk/exam-seat-allocation/internal/model"
	"github.com/examdesk/exam-seat-allocation/internal/repository"
)

// CreateHall handles POST /v1/halls.
func (h *AdminHandler) CreateHall(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
		Location string `json:"location"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	hall := &model.Hall{
		Name:     strings.TrimSpace(body.Name),
		Capacity: body.Capacity,
		Location: strings.TrimSpace(body.Location),
	}
	if err := h.Halls.Create(c.Request().Context(), hall); err != nil {
		if errors.Is(err, repository.ErrHallNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create hall"})
	}
	return c.JSON(http.StatusCreated, hall)
}

// ListHalls handles GET /v1/halls.
func (h *AdminHandler) ListHalls(c echo.Context) error {
	items, err := h.Halls.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetHall handles GET /v1/halls/:id.
func (h *AdminHandler) GetHall(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	hall, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, hall)
}

// UpdateHall handles PUT /v1/halls/:id.
func (h *AdminHandler) UpdateHall(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body struct {
		Name     *string `json:"name"`
		Capacity *int    `json:"capacity"`
		Location *string `json:"location"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
		cur.Name = strings.TrimSpace(*body.Name)
	}
	if body.Capacity != nil {
		if *body.Capacity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
		}
		cur.Capacity = *body.Capacity
	}
	if body.Location != nil {
		cur.Location = strings.TrimSpace(*body.Location)
	}
	if err := h.Halls.Update(c.Request().Context(), cur); err != nil {
		if errors.Is(err, repository.ErrHallNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, cur)
}

// DeleteHall handles DELETE /v1/halls/:id.  A hall referenced by seat
// assignments cannot be deleted; the ledger is append-only.
func (h *AdminHandler) DeleteHall(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Halls.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrHallNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall has seat assignments"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
