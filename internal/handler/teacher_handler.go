package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/pkg/response"
)

type teacherLister interface {
	Teachers(ctx context.Context) ([]models.UserInfo, error)
}

// TeacherHandler exposes teacher endpoints.
type TeacherHandler struct {
	roster teacherLister
}

// NewTeacherHandler constructs TeacherHandler.
func NewTeacherHandler(roster teacherLister) *TeacherHandler {
	return &TeacherHandler{roster: roster}
}

// List godoc
// @Summary List active teachers
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.roster.Teachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}
