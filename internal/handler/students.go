package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/examdesk/exam-seat-allocation/internal/model"
	"github.com/examdesk/exam-seat-allocation/internal/repository"
)

// CreateStudent handles POST /v1/students.
func (h *AdminHandler) CreateStudent(c echo.Context) error {
	var body struct {
		RegNo      string `json:"reg_no"`
		Name       string `json:"name"`
		Department string `json:"department"`
		Year       string `json:"year"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(body.RegNo) == "" || strings.TrimSpace(body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reg_no and name are required"})
	}
	s := &model.Student{
		RegNo:      strings.TrimSpace(body.RegNo),
		Name:       strings.TrimSpace(body.Name),
		Department: strings.TrimSpace(body.Department),
		Year:       strings.TrimSpace(body.Year),
	}
	if err := h.Students.Create(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrRegNoExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "register number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create student"})
	}
	return c.JSON(http.StatusCreated, s)
}

// ListStudents handles GET /v1/students.
func (h *AdminHandler) ListStudents(c echo.Context) error {
	items, err := h.Students.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetStudent handles GET /v1/students/:id.
func (h *AdminHandler) GetStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.Students.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, s)
}

// UpdateStudent handles PUT /v1/students/:id.  The register number is
// immutable; it is the key the ledger stores seats under.
func (h *AdminHandler) UpdateStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cur, err := h.Students.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body struct {
		Name       *string `json:"name"`
		Department *string `json:"department"`
		Year       *string `json:"year"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
		cur.Name = strings.TrimSpace(*body.Name)
	}
	if body.Department != nil {
		cur.Department = strings.TrimSpace(*body.Department)
	}
	if body.Year != nil {
		cur.Year = strings.TrimSpace(*body.Year)
	}
	if err := h.Students.Update(c.Request().Context(), cur); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, cur)
}

// DeleteStudent handles DELETE /v1/students/:id.  The delete cascades
// over seat assignments, subject registrations and attendance in one
// transaction.
func (h *AdminHandler) DeleteStudent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Students.DeleteCascade(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
