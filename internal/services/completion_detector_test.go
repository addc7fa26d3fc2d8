package services

import (
	"fmt"
	"testing"

	"github.com/ad/go-eduhub/internal/models"
)

func courseLessons(courseID string, types ...models.LessonType) []*models.Lesson {
	var lessons []*models.Lesson
	for i, lessonType := range types {
		lessons = append(lessons, &models.Lesson{
			ID:       fmt.Sprintf("%s-l%d", courseID, i+1),
			CourseID: courseID,
			Title:    fmt.Sprintf("Lesson %d", i+1),
			Position: i + 1,
			Type:     lessonType,
		})
	}
	return lessons
}

func TestStatusNotStartedWithoutRecords(t *testing.T) {
	lessons := courseLessons("c1", models.LessonTypeArticle, models.LessonTypeArticle)
	ledger := NewProgressLedger("u1", nil)

	status := NewCompletionDetector().Status(ledger, "c1", lessons)
	if status != models.StatusNotStarted {
		t.Errorf("Expected not_started, got %s", status)
	}
}

func TestStatusPartialCompletion(t *testing.T) {
	// Course with article A, quiz Q, article B; A and B done, Q failed.
	lessons := courseLessons("c1", models.LessonTypeArticle, models.LessonTypeQuiz, models.LessonTypeArticle)
	ledger := NewProgressLedger("u1", []*models.UserProgress{
		record("u1", "c1", lessons[0].ID, true),
		record("u1", "c1", lessons[1].ID, false),
		record("u1", "c1", lessons[2].ID, true),
	})

	detector := NewCompletionDetector()
	if status := detector.Status(ledger, "c1", lessons); status != models.StatusInProgress {
		t.Errorf("Expected in_progress, got %s", status)
	}

	fraction, err := ledger.CompletionFraction("c1", len(lessons))
	if err != nil {
		t.Fatal(err)
	}
	if fraction != 2.0/3.0 {
		t.Errorf("Expected fraction 2/3, got %f", fraction)
	}
}

func TestStatusTransitionToCompleted(t *testing.T) {
	lessons := courseLessons("c1", models.LessonTypeArticle, models.LessonTypeQuiz, models.LessonTypeArticle)
	ledger := NewProgressLedger("u1", []*models.UserProgress{
		record("u1", "c1", lessons[0].ID, true),
		record("u1", "c1", lessons[1].ID, false),
		record("u1", "c1", lessons[2].ID, true),
	})

	detector := NewCompletionDetector()
	before := detector.Status(ledger, "c1", lessons)

	ledger.Apply(record("u1", "c1", lessons[1].ID, true))
	after := detector.Status(ledger, "c1", lessons)

	if after != models.StatusCompleted {
		t.Errorf("Expected completed, got %s", after)
	}
	if !detector.NewlyCompleted(before, after) {
		t.Error("Expected the completing write to be detected as the transition edge")
	}
	if detector.NewlyCompleted(after, after) {
		t.Error("Expected no re-fire for an already-completed course")
	}
}

func TestStatusUnmarkLeavesInProgress(t *testing.T) {
	lessons := courseLessons("c1", models.LessonTypeArticle, models.LessonTypeArticle, models.LessonTypeArticle)
	ledger := NewProgressLedger("u1", []*models.UserProgress{
		record("u1", "c1", lessons[0].ID, true),
		record("u1", "c1", lessons[1].ID, true),
		record("u1", "c1", lessons[2].ID, true),
	})

	detector := NewCompletionDetector()
	if status := detector.Status(ledger, "c1", lessons); status != models.StatusCompleted {
		t.Fatalf("Expected completed, got %s", status)
	}

	// Un-marking one of several completed lessons moves to in_progress,
	// never straight to not_started.
	ledger.Apply(record("u1", "c1", lessons[1].ID, false))
	if status := detector.Status(ledger, "c1", lessons); status != models.StatusInProgress {
		t.Errorf("Expected in_progress after un-mark, got %s", status)
	}
}

func TestStatusUnmarkSoleLesson(t *testing.T) {
	lessons := courseLessons("c1", models.LessonTypeArticle)
	ledger := NewProgressLedger("u1", []*models.UserProgress{
		record("u1", "c1", lessons[0].ID, true),
	})

	detector := NewCompletionDetector()
	ledger.Apply(record("u1", "c1", lessons[0].ID, false))
	if status := detector.Status(ledger, "c1", lessons); status != models.StatusNotStarted {
		t.Errorf("Expected not_started when the only completed lesson is un-marked, got %s", status)
	}
}

func TestStatusEmptyCourseNeverCompletes(t *testing.T) {
	ledger := NewProgressLedger("u1", []*models.UserProgress{
		record("u1", "c1", "stray", true),
	})

	detector := NewCompletionDetector()
	if status := detector.Status(ledger, "c1", nil); status != models.StatusNotStarted {
		t.Errorf("Expected not_started for empty course regardless of ledger, got %s", status)
	}
	if detector.NewlyCompleted(models.StatusNotStarted, detector.Status(ledger, "c1", nil)) {
		t.Error("Expected empty course to never produce an eligibility signal")
	}
}
