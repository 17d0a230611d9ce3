package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/internal/service"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
	"github.com/noah-isme/school-assistant-api/pkg/response"
)

type attendanceService interface {
	Record(ctx context.Context, req models.RecordAttendanceRequest) (*models.Attendance, error)
	StudentAttendance(ctx context.Context, studentID string) (*models.StudentAttendance, error)
	Ranking(ctx context.Context, limit int, ascending bool) ([]models.AttendanceRanking, error)
	ClassSummary(ctx context.Context, classID string) (*models.ClassAttendanceSummary, error)
	ExportClassAttendance(ctx context.Context, classID string, format models.ReportFormat) (*service.ExportFile, error)
	RecomputeRollups(ctx context.Context, year int) (*models.RollupResult, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Record godoc
// @Summary Record attendance
// @Description Creates or replaces the mark for a student and date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.RecordAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req models.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	att, err := h.attendance.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, att, nil)
}

// Student godoc
// @Summary Student attendance
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *AttendanceHandler) Student(c *gin.Context) {
	summary, err := h.attendance.StudentAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Class godoc
// @Summary Class attendance summary
// @Description format=csv or format=pdf downloads a report instead.
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance [get]
func (h *AttendanceHandler) Class(c *gin.Context) {
	if raw := c.Query("format"); raw != "" {
		format, err := service.ParseFormat(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		file, err := h.attendance.ExportClassAttendance(c.Request.Context(), c.Param("id"), format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, file.Filename, file.ContentType, file.Payload)
		return
	}
	summary, err := h.attendance.ClassSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Ranking godoc
// @Summary Attendance ranking
// @Tags Attendance
// @Produce json
// @Param order query string false "asc (lowest first) or desc"
// @Param limit query int false "Number of students"
// @Success 200 {object} response.Envelope
// @Router /attendance/ranking [get]
func (h *AttendanceHandler) Ranking(c *gin.Context) {
	var ascending bool
	switch c.DefaultQuery("order", "desc") {
	case "asc":
		ascending = true
	case "desc":
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "order must be asc or desc"))
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.attendance.Ranking(c.Request.Context(), limit, ascending)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Rollups godoc
// @Summary Recompute attendance rollups
// @Tags Attendance
// @Produce json
// @Param academic_year query int false "Academic year"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/rollups [post]
func (h *AttendanceHandler) Rollups(c *gin.Context) {
	year, err := intQuery(c, "academic_year")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.attendance.RecomputeRollups(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
