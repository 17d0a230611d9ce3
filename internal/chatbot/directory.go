package chatbot

import (
	"context"

	"github.com/noah-isme/school-assistant-api/internal/models"
)

type studentRoster interface {
	Names(ctx context.Context, year, limit int) ([]string, error)
	Count(ctx context.Context, year int) (int, error)
}

type classRoster interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error)
}

type teacherRoster interface {
	TeacherNames(ctx context.Context) ([]string, error)
	CountTeachers(ctx context.Context) (int, error)
}

// RosterDirectory serves roster facts from the repositories.
type RosterDirectory struct {
	students studentRoster
	classes  classRoster
	teachers teacherRoster
}

// NewDirectory adapts the roster repositories to a Directory.
func NewDirectory(students studentRoster, classes classRoster, teachers teacherRoster) *RosterDirectory {
	return &RosterDirectory{students: students, classes: classes, teachers: teachers}
}

func (d *RosterDirectory) StudentNames(ctx context.Context, year, limit int) ([]string, error) {
	return d.students.Names(ctx, year, limit)
}

func (d *RosterDirectory) CountStudents(ctx context.Context, year int) (int, error) {
	return d.students.Count(ctx, year)
}

func (d *RosterDirectory) Classes(ctx context.Context, year int) ([]models.Class, error) {
	return d.classes.List(ctx, models.ClassFilter{AcademicYear: year})
}

func (d *RosterDirectory) TeacherNames(ctx context.Context) ([]string, error) {
	return d.teachers.TeacherNames(ctx)
}

func (d *RosterDirectory) CountTeachers(ctx context.Context) (int, error) {
	return d.teachers.CountTeachers(ctx)
}
