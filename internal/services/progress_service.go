package services

import (
	"errors"
	"log"
	"time"

	"github.com/ad/go-eduhub/internal/db"
	"github.com/ad/go-eduhub/internal/models"
)

var ErrLessonNotInCourse = errors.New("lesson does not belong to course")

// ProgressService applies user actions (mark lesson complete, submit quiz)
// to the record store and detects the resulting course status transition.
// The ledger is rebuilt from the store per call; there is no shared mutable
// state between sessions.
type ProgressService struct {
	lessonRepo   *db.LessonRepository
	quizRepo     *db.QuizRepository
	progressRepo *db.ProgressRepository
	detector     *CompletionDetector
	scorer       *QuizScorer
	certificates *CertificateService
}

func NewProgressService(
	lessonRepo *db.LessonRepository,
	quizRepo *db.QuizRepository,
	progressRepo *db.ProgressRepository,
	certificates *CertificateService,
) *ProgressService {
	return &ProgressService{
		lessonRepo:   lessonRepo,
		quizRepo:     quizRepo,
		progressRepo: progressRepo,
		detector:     NewCompletionDetector(),
		scorer:       NewQuizScorer(),
		certificates: certificates,
	}
}

type UpsertResult struct {
	Record         *models.UserProgress
	Applied        bool
	Status         models.CourseStatus
	Fraction       float64
	NewlyCompleted bool
	Certificate    *models.Certificate
}

type QuizResult struct {
	Score  *ScoreResult
	Upsert *UpsertResult
}

// MarkLesson marks an article lesson complete (or un-marks it). The action
// time drives last-writer-wins ordering: a stale retry arriving after a
// newer write is dropped, reported as Applied=false.
func (s *ProgressService) MarkLesson(userID, courseID, lessonID string, completed bool, at time.Time) (*UpsertResult, error) {
	return s.apply(userID, courseID, lessonID, completed, nil, at)
}

// SubmitQuiz scores the answer sheet and records the attempt. A failed quiz
// still writes a record (completed=false) carrying the score.
func (s *ProgressService) SubmitQuiz(userID, courseID, lessonID string, answers []int, at time.Time) (*QuizResult, error) {
	quiz, err := s.quizRepo.GetByLesson(lessonID)
	if err != nil {
		return nil, err
	}

	score := s.scorer.Score(quiz, answers)
	upsert, err := s.apply(userID, courseID, lessonID, score.Passed, &score.Percentage, at)
	if err != nil {
		return nil, err
	}
	return &QuizResult{Score: score, Upsert: upsert}, nil
}

func (s *ProgressService) apply(userID, courseID, lessonID string, completed bool, score *float64, at time.Time) (*UpsertResult, error) {
	lessons, err := s.lessonRepo.GetByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if !lessonInCourse(lessons, lessonID) {
		return nil, ErrLessonNotInCourse
	}

	records, err := s.progressRepo.GetByUser(userID, courseID)
	if err != nil {
		return nil, err
	}
	ledger := NewProgressLedger(userID, records)
	before := s.detector.Status(ledger, courseID, lessons)

	record, applied, err := s.progressRepo.Upsert(&models.UserProgress{
		UserID:    userID,
		CourseID:  courseID,
		LessonID:  lessonID,
		Completed: completed,
		Score:     score,
		UpdatedAt: at,
	})
	if err != nil {
		return nil, err
	}

	ledger.Apply(record)
	after := s.detector.Status(ledger, courseID, lessons)
	fraction, err := ledger.CompletionFraction(courseID, len(lessons))
	if err != nil {
		return nil, err
	}

	result := &UpsertResult{
		Record:         record,
		Applied:        applied,
		Status:         after,
		Fraction:       fraction,
		NewlyCompleted: applied && s.detector.NewlyCompleted(before, after),
	}
	if !applied {
		log.Printf("[PROGRESS] stale write dropped for user=%s lesson=%s", userID, lessonID)
		return result, nil
	}

	if result.NewlyCompleted {
		log.Printf("[PROGRESS] user=%s completed course=%s", userID, courseID)
		if s.certificates != nil {
			cert, err := s.certificates.Issue(userID, courseID, at)
			if err != nil {
				// The completion itself is already recorded; issuance can be
				// retried out of band.
				log.Printf("[PROGRESS] certificate issuance failed for user=%s course=%s: %v", userID, courseID, err)
			} else {
				result.Certificate = cert
			}
		}
	}

	return result, nil
}

func lessonInCourse(lessons []*models.Lesson, lessonID string) bool {
	for _, lesson := range lessons {
		if lesson.ID == lessonID {
			return true
		}
	}
	return false
}
