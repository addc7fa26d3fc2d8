package services

import (
	"errors"

	"github.com/ad/go-eduhub/internal/models"
)

var ErrInvalidCourse = errors.New("total lessons cannot be negative")

// ProgressLedger is an in-memory view over one user's progress records,
// built from a store read and owned by that user's session. It holds at
// most one record per lesson; Apply replaces in place, never duplicates.
type ProgressLedger struct {
	userID   string
	byLesson map[string]*models.UserProgress
	byCourse map[string][]*models.UserProgress
}

func NewProgressLedger(userID string, records []*models.UserProgress) *ProgressLedger {
	l := &ProgressLedger{
		userID:   userID,
		byLesson: make(map[string]*models.UserProgress),
		byCourse: make(map[string][]*models.UserProgress),
	}
	for _, record := range records {
		l.Apply(record)
	}
	return l
}

func (l *ProgressLedger) UserID() string {
	return l.userID
}

// Apply merges an upserted record into the view, replacing any previous
// record for the same lesson. Applying the same record twice is a no-op.
func (l *ProgressLedger) Apply(record *models.UserProgress) {
	if record == nil || record.UserID != l.userID {
		return
	}
	if _, exists := l.byLesson[record.LessonID]; exists {
		list := l.byCourse[record.CourseID]
		for i, existing := range list {
			if existing.LessonID == record.LessonID {
				list[i] = record
				break
			}
		}
	} else {
		l.byCourse[record.CourseID] = append(l.byCourse[record.CourseID], record)
	}
	l.byLesson[record.LessonID] = record
}

func (l *ProgressLedger) IsLessonComplete(lessonID string) bool {
	record, ok := l.byLesson[lessonID]
	return ok && record.Completed
}

func (l *ProgressLedger) Records(courseID string) []*models.UserProgress {
	return l.byCourse[courseID]
}

// CompletedLessons returns the set of completed lesson ids for a course.
func (l *ProgressLedger) CompletedLessons(courseID string) map[string]bool {
	completed := make(map[string]bool)
	for _, record := range l.byCourse[courseID] {
		if record.Completed {
			completed[record.LessonID] = true
		}
	}
	return completed
}

// CompletionFraction returns completed/totalLessons in [0,1]. A course with
// zero lessons is 0. A negative total is a caller contract violation.
func (l *ProgressLedger) CompletionFraction(courseID string, totalLessons int) (float64, error) {
	if totalLessons < 0 {
		return 0, ErrInvalidCourse
	}
	if totalLessons == 0 {
		return 0, nil
	}
	completed := 0
	for _, record := range l.byCourse[courseID] {
		if record.Completed {
			completed++
		}
	}
	return float64(completed) / float64(totalLessons), nil
}
