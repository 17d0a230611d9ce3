package models

import "time"

// Attendance type identifiers as seeded in attendance_types.
const (
	AttendancePresent    = 1
	AttendanceAbsent     = 2
	AttendanceLate       = 3
	AttendanceEarlyLeave = 4
)

// Attendance is one daily attendance mark.
type Attendance struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Date         time.Time `db:"date" json:"date"`
	TypeID       int       `db:"type_id" json:"type_id"`
	ReasonID     *int      `db:"reason_id" json:"reason_id,omitempty"`
	Note         *string   `db:"note" json:"note,omitempty"`
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AttendanceRecord is an attendance mark with its type name.
type AttendanceRecord struct {
	Date     time.Time `db:"date" json:"date"`
	TypeName string    `db:"type_name" json:"type"`
	Reason   *string   `db:"reason" json:"reason,omitempty"`
	Note     *string   `db:"note" json:"note,omitempty"`
}

// RecordAttendanceRequest upserts the mark for a student and date.
type RecordAttendanceRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	TypeID    int    `json:"type_id" validate:"required,min=1,max=4"`
	ReasonID  *int   `json:"reason_id" validate:"omitempty,min=1"`
	Note      string `json:"note" validate:"max=500"`
}

// AttendanceStats counts attendance outcomes over a period.
type AttendanceStats struct {
	TotalDays      int     `db:"total_days" json:"total_days"`
	PresentDays    int     `db:"present_days" json:"present_days"`
	AbsentDays     int     `db:"absent_days" json:"absent_days"`
	LateDays       int     `db:"late_days" json:"late_days"`
	EarlyLeaveDays int     `db:"early_leave_days" json:"early_leave_days"`
	AttendanceRate float64 `db:"attendance_rate" json:"attendance_rate"`
}

// StudentAttendance is a student's yearly stats plus recent marks.
type StudentAttendance struct {
	StudentID    string             `json:"student_id"`
	Name         string             `json:"name"`
	AcademicYear int                `json:"academic_year"`
	Stats        AttendanceStats    `json:"stats"`
	Recent       []AttendanceRecord `json:"recent"`
}

// YearAttendance is one year in a student's grade-level breakdown.
type YearAttendance struct {
	AcademicYear int `db:"academic_year" json:"academic_year"`
	Grade        int `db:"grade" json:"grade"`
	AttendanceStats
}

// AttendanceRanking is one row of the attendance-rate ranking.
type AttendanceRanking struct {
	StudentID string `db:"student_id" json:"student_id"`
	Name      string `db:"name" json:"name"`
	Grade     int    `db:"grade" json:"grade"`
	ClassNum  int    `db:"class_num" json:"class_num"`
	AttendanceStats
}

// ClassAttendanceRow is a per-student summary within a class.
type ClassAttendanceRow struct {
	StudentID string `db:"student_id" json:"student_id"`
	Name      string `db:"name" json:"name"`
	AttendanceStats
}

// RollupResult reports how many rollup rows were written.
type RollupResult struct {
	AcademicYear int       `json:"academic_year"`
	MonthlyRows  int64     `json:"monthly_rows"`
	YearlyRows   int64     `json:"yearly_rows"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// ClassAttendanceSummary is the attendance of every student in a class.
type ClassAttendanceSummary struct {
	Class    Class                `json:"class"`
	Students []ClassAttendanceRow `json:"students"`
}
