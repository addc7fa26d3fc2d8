package models

import "time"

type Certificate struct {
	ID          string
	UserID      string
	CourseID    string
	CourseTitle string
	UserName    string
	FilePath    string
	IssuedAt    time.Time
}
