package models

import (
	"math"
	"time"
)

// Grade is one exam score for a student in a subject.
type Grade struct {
	ID           string     `db:"id" json:"id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	SubjectID    string     `db:"subject_id" json:"subject_id"`
	ExamID       string     `db:"exam_id" json:"exam_id"`
	AcademicYear int        `db:"academic_year" json:"academic_year"`
	Score        float64    `db:"score" json:"score"`
	ExamDate     *time.Time `db:"exam_date" json:"exam_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// GradeRecord is a grade joined with subject and exam names.
type GradeRecord struct {
	AcademicYear int        `db:"academic_year" json:"academic_year"`
	Subject      string     `db:"subject" json:"subject"`
	Exam         string     `db:"exam" json:"exam"`
	ExamOrder    int        `db:"exam_order" json:"-"`
	Score        float64    `db:"score" json:"score"`
	ExamDate     *time.Time `db:"exam_date" json:"exam_date,omitempty"`
}

// CreateGradeRequest records a score.
type CreateGradeRequest struct {
	StudentID    string   `json:"student_id" validate:"required,uuid"`
	SubjectID    string   `json:"subject_id" validate:"required,uuid"`
	ExamID       string   `json:"exam_id" validate:"required,uuid"`
	AcademicYear int      `json:"academic_year" validate:"required,min=2000,max=2100"`
	Score        *float64 `json:"score" validate:"required,min=0,max=100"`
	ExamDate     string   `json:"exam_date" validate:"omitempty,datetime=2006-01-02"`
}

// StudentAverage is a ranking row: a student and their mean score.
type StudentAverage struct {
	StudentID  string  `db:"student_id" json:"student_id"`
	Name       string  `db:"name" json:"name"`
	Grade      int     `db:"grade" json:"grade"`
	ClassNum   int     `db:"class_num" json:"class_num"`
	Average    float64 `db:"average" json:"average"`
	GradeCount int     `db:"grade_count" json:"grade_count"`
}

// ClassLabel renders the student's class.
func (s StudentAverage) ClassLabel() string {
	return ClassLabel(s.Grade, s.ClassNum)
}

// RankingFilter narrows top/bottom rankings.
type RankingFilter struct {
	AcademicYear int
	Grade        int
	Limit        int
	Ascending    bool
}

// ScoreStats summarises a set of scores.
type ScoreStats struct {
	Average float64 `db:"average" json:"average"`
	Min     float64 `db:"min_score" json:"min"`
	Max     float64 `db:"max_score" json:"max"`
	Count   int     `db:"total" json:"count"`
}

// GradeLevelAverage is a mean score for one grade level.
type GradeLevelAverage struct {
	Grade   int     `db:"grade" json:"grade"`
	Average float64 `db:"average" json:"average"`
}

// SubjectAnalysis aggregates every score recorded for a subject.
type SubjectAnalysis struct {
	Subject string              `json:"subject"`
	Overall ScoreStats          `json:"overall"`
	ByGrade []GradeLevelAverage `json:"by_grade"`
}

// ExamFilter narrows exam analyses. Zero values mean "any".
type ExamFilter struct {
	ExamID    string
	SubjectID string
	Grade     int
	ClassNum  int
}

// ExamCell is score statistics for one (class, subject) pair in an exam.
type ExamCell struct {
	Grade    int    `db:"grade" json:"grade"`
	ClassNum int    `db:"class_num" json:"class_num"`
	Subject  string `db:"subject" json:"subject"`
	ScoreStats
}

// ScoreEntry is a single student's score.
type ScoreEntry struct {
	Name  string  `db:"name" json:"name"`
	Score float64 `db:"score" json:"score"`
}

// YearGrades holds one academic year of a student's history.
type YearGrades struct {
	AcademicYear int                `json:"academic_year"`
	Grade        int                `json:"grade"`
	ClassNum     int                `json:"class_num"`
	Average      float64            `json:"average"`
	BySubject    map[string]float64 `json:"by_subject"`
	Subjects     []string           `json:"subjects"`
}

// SubjectProgress compares a subject between the first and last year.
type SubjectProgress struct {
	Subject     string  `json:"subject"`
	First       float64 `json:"first"`
	Last        float64 `json:"last"`
	Improvement float64 `json:"improvement"`
	Trend       string  `json:"trend"`
}

// GradeHistory is a student's multi-year record with progress analysis.
type GradeHistory struct {
	Name         string            `json:"name"`
	Years        []YearGrades      `json:"years"`
	Progress     []SubjectProgress `json:"progress"`
	Strengths    []string          `json:"strengths"`
	Weaknesses   []string          `json:"weaknesses"`
	// Overall fields are only meaningful with two or more years.
	OverallImprovement float64 `json:"overall_improvement"`
	OverallTrend       string  `json:"overall_trend"`
}

// HasProgress reports whether the history spans enough years to compare.
func (h GradeHistory) HasProgress() bool {
	return len(h.Years) >= 2
}

// ClassGradeSummary ranks the students of one class by average.
type ClassGradeSummary struct {
	Class    Class            `json:"class"`
	Students []StudentAverage `json:"students"`
}

// StudentGradeReport lists a student's scores for one academic year.
type StudentGradeReport struct {
	Student      StudentDetail `json:"student"`
	AcademicYear int           `json:"academic_year"`
	Grades       []GradeRecord `json:"grades"`
	Average      float64       `json:"average"`
}

// ExamQuery identifies an exam analysis request by names. Zero grade or
// class means every class.
type ExamQuery struct {
	Exam     string
	Subject  string
	Grade    int
	ClassNum int
}

// ExamAnalysis is the result of an exam analysis. StudentCount and TopScores
// are populated only for a single class.
type ExamAnalysis struct {
	Exam         string       `json:"exam"`
	Subject      string       `json:"subject,omitempty"`
	Grade        int          `json:"grade,omitempty"`
	ClassNum     int          `json:"class_num,omitempty"`
	Cells        []ExamCell   `json:"cells"`
	StudentCount int          `json:"student_count,omitempty"`
	TopScores    []ScoreEntry `json:"top_scores,omitempty"`
}

// SingleClass reports whether the analysis is scoped to one class.
func (a ExamAnalysis) SingleClass() bool {
	return a.Grade > 0 && a.ClassNum > 0
}

// ReportFormat selects an export encoding.
type ReportFormat string

// Supported export formats.
const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// HistoryRow is a flattened (year, class, subject, average) row.
type HistoryRow struct {
	AcademicYear int     `db:"academic_year"`
	Grade        int     `db:"grade"`
	ClassNum     int     `db:"class_num"`
	Subject      string  `db:"subject"`
	Average      float64 `db:"average"`
	Count        int     `db:"grade_count"`
}

// Overall combines every cell into one set of statistics, weighting cell
// averages by their score counts.
func (a ExamAnalysis) Overall() ScoreStats {
	var out ScoreStats
	var sum float64
	for i, cell := range a.Cells {
		if i == 0 || cell.Min < out.Min {
			out.Min = cell.Min
		}
		if i == 0 || cell.Max > out.Max {
			out.Max = cell.Max
		}
		sum += cell.Average * float64(cell.Count)
		out.Count += cell.Count
	}
	if out.Count > 0 {
		out.Average = math.Round(sum/float64(out.Count)*10) / 10
	}
	return out
}
