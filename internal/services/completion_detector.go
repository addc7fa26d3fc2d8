package services

import (
	"github.com/ad/go-eduhub/internal/models"
)

// CompletionDetector derives course-level status from a ledger and the
// course's lesson list, and detects the edge into completed.
type CompletionDetector struct{}

func NewCompletionDetector() *CompletionDetector {
	return &CompletionDetector{}
}

// Status is completed iff every lesson in the course has a completed record,
// not_started iff none has, in_progress otherwise. An empty course can never
// be completed: its status is not_started regardless of ledger contents.
func (d *CompletionDetector) Status(ledger *ProgressLedger, courseID string, lessons []*models.Lesson) models.CourseStatus {
	if len(lessons) == 0 {
		return models.StatusNotStarted
	}

	completed := 0
	for _, lesson := range lessons {
		if ledger.IsLessonComplete(lesson.ID) {
			completed++
		}
	}

	switch completed {
	case 0:
		return models.StatusNotStarted
	case len(lessons):
		return models.StatusCompleted
	default:
		return models.StatusInProgress
	}
}

// NewlyCompleted reports whether a single write moved the course into
// completed. Comparing status immediately before and after each upsert is
// what guarantees the certificate eligibility signal fires exactly once per
// qualifying transition: an already-completed course cannot re-fire unless a
// record is first un-marked.
func (d *CompletionDetector) NewlyCompleted(before, after models.CourseStatus) bool {
	return after == models.StatusCompleted && before != models.StatusCompleted
}
