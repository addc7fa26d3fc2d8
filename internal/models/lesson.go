package models

import "time"

type Lesson struct {
	ID        string
	CourseID  string
	Title     string
	Content   string
	Position  int
	Type      LessonType
	CreatedAt time.Time
}

func (l *Lesson) IsQuiz() bool {
	return l.Type == LessonTypeQuiz
}
