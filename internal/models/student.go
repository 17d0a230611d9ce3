package models

import "time"

// Student is a per-year student row. The same person may appear in several
// academic years under the same name.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	ClassID      string    `db:"class_id" json:"class_id"`
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StudentDetail joins the student with its class.
type StudentDetail struct {
	Student
	Grade    int `db:"grade" json:"grade"`
	ClassNum int `db:"class_num" json:"class_num"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search       string
	ClassID      string
	AcademicYear int
	Page         int
	PageSize     int
}

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	ClassID      string `json:"class_id" validate:"required,uuid"`
	AcademicYear int    `json:"academic_year" validate:"required,min=2000,max=2100"`
}
