package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/examdesk/exam-seat-allocation/internal/model"
	"github.com/examdesk/exam-seat-allocation/internal/repository"
)

// CreateStaff handles POST /v1/staff.
func (h *AdminHandler) CreateStaff(c echo.Context) error {
	var body struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Department string `json:"department"`
		Phone      string `json:"phone"`
		Role       string `json:"role"` // e.g. INVIGILATOR, CHIEF
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and email are required"})
	}
	role := strings.ToUpper(strings.TrimSpace(body.Role))
	if role == "" {
		role = "INVIGILATOR"
	}
	s := &model.Staff{
		Name:       strings.TrimSpace(body.Name),
		Email:      strings.ToLower(strings.TrimSpace(body.Email)),
		Department: strings.TrimSpace(body.Department),
		Phone:      strings.TrimSpace(body.Phone),
		Role:       role,
	}
	if err := h.Staff.Create(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrStaffEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create staff"})
	}
	return c.JSON(http.StatusCreated, s)
}

// ListStaff handles GET /v1/staff.
func (h *AdminHandler) ListStaff(c echo.Context) error {
	items, err := h.Staff.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetStaff handles GET /v1/staff/:id.
func (h *AdminHandler) GetStaff(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.Staff.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, s)
}

// UpdateStaff handles PUT /v1/staff/:id.
func (h *AdminHandler) UpdateStaff(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.Staff.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body struct {
		Name       *string `json:"name"`
		Email      *string `json:"email"`
		Department *string `json:"department"`
		Phone      *string `json:"phone"`
		Role       *string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
		cur.Name = strings.TrimSpace(*body.Name)
	}
	if body.Email != nil && strings.TrimSpace(*body.Email) != "" {
		cur.Email = strings.ToLower(strings.TrimSpace(*body.Email))
	}
	if body.Department != nil {
		cur.Department = strings.TrimSpace(*body.Department)
	}
	if body.Phone != nil {
		cur.Phone = strings.TrimSpace(*body.Phone)
	}
	if body.Role != nil && strings.TrimSpace(*body.Role) != "" {
		cur.Role = strings.ToUpper(strings.TrimSpace(*body.Role))
	}
	if err := h.Staff.Update(c.Request().Context(), cur); err != nil {
		if errors.Is(err, repository.ErrStaffEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, cur)
}

// DeleteStaff handles DELETE /v1/staff/:id.
func (h *AdminHandler) DeleteStaff(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Staff.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
