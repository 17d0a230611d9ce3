package models

import (
	"fmt"
	"time"
)

// Class is a homeroom identified by academic year, grade and class number.
type Class struct {
	ID           string    `db:"id" json:"id"`
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	Grade        int       `db:"grade" json:"grade"`
	ClassNum     int       `db:"class_num" json:"class_num"`
	TeacherID    *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName  *string   `db:"teacher_name" json:"teacher_name,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Label renders the class the way it is spoken, e.g. "2학년 3반".
func (c Class) Label() string {
	return ClassLabel(c.Grade, c.ClassNum)
}

// ClassLabel formats a grade and class number pair.
func ClassLabel(grade, classNum int) string {
	return fmt.Sprintf("%d학년 %d반", grade, classNum)
}

// ClassFilter narrows class listings.
type ClassFilter struct {
	AcademicYear int
	Grade        int
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	AcademicYear int     `json:"academic_year" validate:"required,min=2000,max=2100"`
	Grade        int     `json:"grade" validate:"required,min=1,max=3"`
	ClassNum     int     `json:"class_num" validate:"required,min=1,max=30"`
	TeacherID    *string `json:"teacher_id" validate:"omitempty,uuid"`
}
