package services

import (
	"fmt"
	"sort"

	"github.com/ad/go-eduhub/internal/db"
	"github.com/ad/go-eduhub/internal/models"
)

// LeaderboardAggregator folds every learner's history into ranked entries.
// Each call re-reads a fresh snapshot; nothing is cached between calls.
type LeaderboardAggregator struct {
	userRepo     *db.UserRepository
	lessonRepo   *db.LessonRepository
	progressRepo *db.ProgressRepository
	certRepo     *db.CertificateRepository
}

func NewLeaderboardAggregator(
	userRepo *db.UserRepository,
	lessonRepo *db.LessonRepository,
	progressRepo *db.ProgressRepository,
	certRepo *db.CertificateRepository,
) *LeaderboardAggregator {
	return &LeaderboardAggregator{
		userRepo:     userRepo,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		certRepo:     certRepo,
	}
}

func (a *LeaderboardAggregator) Aggregate(key models.RankingKey) ([]*models.LeaderboardEntry, error) {
	users, err := a.userRepo.GetAll()
	if err != nil {
		return nil, err
	}
	lessonsByCourse, err := a.lessonRepo.GetAllByCourse()
	if err != nil {
		return nil, err
	}
	records, err := a.progressRepo.GetAll()
	if err != nil {
		return nil, err
	}
	certCounts, err := a.certRepo.CountsByUser()
	if err != nil {
		return nil, err
	}
	return BuildLeaderboard(users, records, lessonsByCourse, certCounts, key)
}

// BuildLeaderboard is the pure aggregation over an immutable snapshot.
//
// A course counts as completed under the same set-equality rule the
// completion detector uses. A completed course's score is the mean of its
// score-carrying records (quiz lessons; articles contribute to neither
// numerator nor denominator), and a learner's total score is the mean of
// their per-course scores. Learners with no completed courses are excluded.
// Certificate counts missing from the snapshot read as zero; progress
// records for an unknown learner abort the aggregation instead of silently
// under-ranking.
func BuildLeaderboard(
	users []*models.User,
	records []*models.UserProgress,
	lessonsByCourse map[string][]*models.Lesson,
	certCounts map[string]int,
	key models.RankingKey,
) ([]*models.LeaderboardEntry, error) {
	recordsByUser := make(map[string][]*models.UserProgress)
	for _, record := range records {
		recordsByUser[record.UserID] = append(recordsByUser[record.UserID], record)
	}

	known := make(map[string]bool, len(users))
	for _, user := range users {
		known[user.ID] = true
	}
	for userID := range recordsByUser {
		if !known[userID] {
			return nil, fmt.Errorf("progress records reference unknown user %s", userID)
		}
	}

	detector := NewCompletionDetector()
	var entries []*models.LeaderboardEntry

	for _, user := range users {
		userRecords := recordsByUser[user.ID]
		if len(userRecords) == 0 {
			continue
		}
		ledger := NewProgressLedger(user.ID, userRecords)

		courseIDs := make(map[string]bool)
		for _, record := range userRecords {
			courseIDs[record.CourseID] = true
		}

		completedCourses := 0
		scoreSum := 0.0
		scoredCourses := 0
		for courseID := range courseIDs {
			lessons := lessonsByCourse[courseID]
			if detector.Status(ledger, courseID, lessons) != models.StatusCompleted {
				continue
			}
			completedCourses++
			if avg, ok := courseAverage(ledger.Records(courseID)); ok {
				scoreSum += avg
				scoredCourses++
			}
		}

		if completedCourses == 0 {
			continue
		}

		entry := &models.LeaderboardEntry{
			UserID:           user.ID,
			FullName:         user.FullName,
			CompletedCourses: completedCourses,
			Certificates:     certCounts[user.ID],
		}
		if scoredCourses > 0 {
			entry.TotalScore = scoreSum / float64(scoredCourses)
		}
		entries = append(entries, entry)
	}

	sortEntries(entries, key)
	return entries, nil
}

// courseAverage is the mean score of the course's score-carrying records.
// ok is false when the course has no quiz scores at all.
func courseAverage(records []*models.UserProgress) (float64, bool) {
	sum := 0.0
	count := 0
	for _, record := range records {
		if record.Score != nil {
			sum += *record.Score
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// sortEntries orders descending by the ranking key, ties broken ascending by
// user id. The comparator is a total order, so identical input yields
// identical ordering no matter which key is selected or how the input was
// arranged.
func sortEntries(entries []*models.LeaderboardEntry, key models.RankingKey) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		av, bv := rankValue(a, key), rankValue(b, key)
		if av != bv {
			return av > bv
		}
		return a.UserID < b.UserID
	})
}

func rankValue(entry *models.LeaderboardEntry, key models.RankingKey) float64 {
	switch key {
	case models.RankByCourses:
		return float64(entry.CompletedCourses)
	case models.RankByCertificates:
		return float64(entry.Certificates)
	default:
		return entry.TotalScore
	}
}
