package models

// Subject is a taught subject, e.g. 국어.
type Subject struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Exam is a named assessment, e.g. 1학기중간고사.
type Exam struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Order int    `db:"exam_order" json:"exam_order"`
}
