package services

import (
	"github.com/ad/go-eduhub/internal/db"
	"github.com/ad/go-eduhub/internal/models"
)

const recentCompletionsLimit = 5

type DashboardStats struct {
	EnrolledCourses   int
	CompletedCourses  int
	InProgressCourses int
	Certificates      int
	RecentCompletions []*models.UserProgress
}

type CommunityStats struct {
	ActiveLearners     int `json:"active_learners"`
	TotalCompletions   int `json:"total_completions"`
	CertificatesEarned int `json:"certificates_earned"`
}

// StatsService computes per-user dashboard numbers from the same status
// rule the completion detector applies.
type StatsService struct {
	enrollmentRepo *db.EnrollmentRepository
	lessonRepo     *db.LessonRepository
	progressRepo   *db.ProgressRepository
	certRepo       *db.CertificateRepository
	detector       *CompletionDetector
}

func NewStatsService(
	enrollmentRepo *db.EnrollmentRepository,
	lessonRepo *db.LessonRepository,
	progressRepo *db.ProgressRepository,
	certRepo *db.CertificateRepository,
) *StatsService {
	return &StatsService{
		enrollmentRepo: enrollmentRepo,
		lessonRepo:     lessonRepo,
		progressRepo:   progressRepo,
		certRepo:       certRepo,
		detector:       NewCompletionDetector(),
	}
}

func (s *StatsService) Dashboard(userID string) (*DashboardStats, error) {
	enrollments, err := s.enrollmentRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	records, err := s.progressRepo.GetByUser(userID, "")
	if err != nil {
		return nil, err
	}
	lessonsByCourse, err := s.lessonRepo.GetAllByCourse()
	if err != nil {
		return nil, err
	}
	certCount, err := s.certRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.progressRepo.GetRecentCompletions(userID, recentCompletionsLimit)
	if err != nil {
		return nil, err
	}

	ledger := NewProgressLedger(userID, records)
	courseIDs := make(map[string]bool)
	for _, record := range records {
		courseIDs[record.CourseID] = true
	}

	stats := &DashboardStats{
		EnrolledCourses:   len(enrollments),
		Certificates:      certCount,
		RecentCompletions: recent,
	}
	for courseID := range courseIDs {
		switch s.detector.Status(ledger, courseID, lessonsByCourse[courseID]) {
		case models.StatusCompleted:
			stats.CompletedCourses++
		case models.StatusInProgress:
			stats.InProgressCourses++
		}
	}
	return stats, nil
}

// Community summarizes an already-aggregated leaderboard.
func Community(entries []*models.LeaderboardEntry) CommunityStats {
	stats := CommunityStats{ActiveLearners: len(entries)}
	for _, entry := range entries {
		stats.TotalCompletions += entry.CompletedCourses
		stats.CertificatesEarned += entry.Certificates
	}
	return stats
}
