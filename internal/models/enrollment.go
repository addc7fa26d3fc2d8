package models

import "time"

type Enrollment struct {
	ID        string
	UserID    string
	CourseID  string
	CreatedAt time.Time
}
