package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/pkg/response"
)

type classRoster interface {
	Classes(ctx context.Context, filter models.ClassFilter) ([]models.Class, error)
	CreateClass(ctx context.Context, req models.CreateClassRequest) (*models.Class, error)
}

// ClassHandler exposes class endpoints.
type ClassHandler struct {
	roster classRoster
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(roster classRoster) *ClassHandler {
	return &ClassHandler{roster: roster}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param academic_year query int false "Academic year"
// @Param grade query int false "Grade level"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var filter models.ClassFilter
	var err error
	if filter.AcademicYear, err = intQuery(c, "academic_year"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.Grade, err = intQuery(c, "grade"); err != nil {
		response.Error(c, err)
		return
	}
	classes, err := h.roster.Classes(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req models.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	class, err := h.roster.CreateClass(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}
