package models

import "time"

// Submission is one parent/guardian confirmation record. The signature is an
// opaque PNG blob captured from the drawing pad; it is stored and attached to
// the rendered document but never parsed.
type Submission struct {
	ID          int64     `db:"id" json:"id"`
	Grade       string    `db:"grade" json:"grade"`
	StudentName string    `db:"student_name" json:"student_name"`
	ParentName  string    `db:"parent_name" json:"parent_name"`
	Phone       string    `db:"phone" json:"phone"`
	Email       string    `db:"email" json:"email"`
	Signature   []byte    `db:"signature" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SubmissionUpdate carries the five editable fields for an administrator
// edit. ID and CreatedAt are immutable once assigned.
type SubmissionUpdate struct {
	Grade       string
	StudentName string
	ParentName  string
	Phone       string
	Email       string
}

// Grades lists the fixed grade labels offered by the form dropdown.
var Grades = []string{
	"Grade 7A",
	"Grade 7B",
	"Grade 8A",
	"Grade 8B",
	"Grade 9A",
	"Grade 9B",
	"Grade 10",
	"Grade 11",
	"Grade 12",
}

// ValidGrade reports whether the label belongs to the fixed grade set.
func ValidGrade(grade string) bool {
	for _, g := range Grades {
		if g == grade {
			return true
		}
	}
	return false
}
