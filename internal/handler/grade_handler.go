package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/internal/service"
	"github.com/noah-isme/school-assistant-api/pkg/response"
)

type gradeService interface {
	Record(ctx context.Context, req models.CreateGradeRequest) (*models.Grade, error)
	Rankings(ctx context.Context, filter models.RankingFilter) ([]models.StudentAverage, error)
	SubjectAnalysis(ctx context.Context, name string) (*models.SubjectAnalysis, error)
	ClassSummary(ctx context.Context, classID string) (*models.ClassGradeSummary, error)
	StudentGrades(ctx context.Context, studentID string, year int) (*models.StudentGradeReport, error)
	ExportStudentGrades(ctx context.Context, studentID string, year int, format models.ReportFormat) (*service.ExportFile, error)
}

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Record godoc
// @Summary Record a grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.CreateGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Record(c *gin.Context) {
	var req models.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	grade, err := h.grades.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Top godoc
// @Summary Highest averages
// @Tags Grades
// @Produce json
// @Param limit query int false "Number of students"
// @Param grade query int false "Grade level"
// @Param academic_year query int false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /grades/top [get]
func (h *GradeHandler) Top(c *gin.Context) {
	h.ranking(c, false)
}

// Bottom godoc
// @Summary Lowest averages
// @Tags Grades
// @Produce json
// @Param limit query int false "Number of students"
// @Param grade query int false "Grade level"
// @Param academic_year query int false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /grades/bottom [get]
func (h *GradeHandler) Bottom(c *gin.Context) {
	h.ranking(c, true)
}

func (h *GradeHandler) ranking(c *gin.Context, ascending bool) {
	filter := models.RankingFilter{Ascending: ascending}
	var err error
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.Grade, err = intQuery(c, "grade"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.AcademicYear, err = intQuery(c, "academic_year"); err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.grades.Rankings(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// SubjectAnalysis godoc
// @Summary Subject statistics
// @Tags Grades
// @Produce json
// @Param name path string true "Subject name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{name}/analysis [get]
func (h *GradeHandler) SubjectAnalysis(c *gin.Context) {
	analysis, err := h.grades.SubjectAnalysis(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analysis, nil)
}

// ClassSummary godoc
// @Summary Class grade summary
// @Tags Grades
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/grades [get]
func (h *GradeHandler) ClassSummary(c *gin.Context) {
	summary, err := h.grades.ClassSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// StudentGrades godoc
// @Summary Student grades
// @Description Lists a student's scores. format=csv or format=pdf downloads a report instead.
// @Tags Grades
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param academic_year query int false "Academic year"
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/grades [get]
func (h *GradeHandler) StudentGrades(c *gin.Context) {
	year, err := intQuery(c, "academic_year")
	if err != nil {
		response.Error(c, err)
		return
	}
	if raw := c.Query("format"); raw != "" {
		format, err := service.ParseFormat(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		file, err := h.grades.ExportStudentGrades(c.Request.Context(), c.Param("id"), year, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, file.Filename, file.ContentType, file.Payload)
		return
	}
	report, err := h.grades.StudentGrades(c.Request.Context(), c.Param("id"), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
