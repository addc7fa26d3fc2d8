package models

import "time"

type Course struct {
	ID             string
	Title          string
	Description    string
	InstructorID   string
	InstructorName string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
