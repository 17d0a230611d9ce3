package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-assistant-api/internal/models"
	appErrors "github.com/noah-isme/school-assistant-api/pkg/errors"
	"github.com/noah-isme/school-assistant-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered report ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders report datasets into downloadable files.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers default to the
// pkg/export implementations.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ParseFormat validates a requested export format.
func ParseFormat(value string) (models.ReportFormat, error) {
	switch models.ReportFormat(strings.ToLower(strings.TrimSpace(value))) {
	case models.ReportFormatCSV:
		return models.ReportFormatCSV, nil
	case models.ReportFormatPDF:
		return models.ReportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// Render encodes the dataset. name is used as the file stem and PDF title.
func (s *ExportService) Render(format models.ReportFormat, name, title string, data export.Dataset) (*ExportFile, error) {
	stamp := s.now().Format("20060102")
	switch format {
	case models.ReportFormatCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render csv")
		}
		return &ExportFile{Filename: fmt.Sprintf("%s_%s.csv", name, stamp), ContentType: "text/csv; charset=utf-8", Payload: payload}, nil
	case models.ReportFormatPDF:
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			s.logger.Error("pdf render failed", zap.String("report", name), zap.Error(err))
			return nil, appErrors.Internal(err, "failed to render pdf")
		}
		return &ExportFile{Filename: fmt.Sprintf("%s_%s.pdf", name, stamp), ContentType: "application/pdf", Payload: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
