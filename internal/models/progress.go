package models

import "time"

// UserProgress is one record per (user, course, lesson) triple. Records are
// upserted in place on re-attempt and never duplicated.
type UserProgress struct {
	ID          string
	UserID      string
	CourseID    string
	LessonID    string
	Completed   bool
	Score       *float64
	CompletedAt *time.Time
	UpdatedAt   time.Time
}
