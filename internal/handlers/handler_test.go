package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ad/go-eduhub/internal/cert"
	"github.com/ad/go-eduhub/internal/db"
	"github.com/ad/go-eduhub/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.InitSchema(sqlDB))

	queue := db.NewQueueForTest(sqlDB)
	t.Cleanup(func() {
		queue.Close()
		sqlDB.Close()
	})

	userRepo := db.NewUserRepository(queue)
	courseRepo := db.NewCourseRepository(queue)
	lessonRepo := db.NewLessonRepository(queue)
	quizRepo := db.NewQuizRepository(queue)
	progressRepo := db.NewProgressRepository(queue)
	enrollmentRepo := db.NewEnrollmentRepository(queue)
	certRepo := db.NewCertificateRepository(queue)

	certificateService := services.NewCertificateService(certRepo, userRepo, courseRepo, cert.NewRenderer(), "")
	progressService := services.NewProgressService(lessonRepo, quizRepo, progressRepo, certificateService)
	leaderboard := services.NewLeaderboardAggregator(userRepo, lessonRepo, progressRepo, certRepo)
	statsService := services.NewStatsService(enrollmentRepo, lessonRepo, progressRepo, certRepo)

	handler := New(
		userRepo, courseRepo, lessonRepo, quizRepo,
		progressRepo, enrollmentRepo, certRepo,
		progressService, leaderboard, statsService,
	)

	router := chi.NewRouter()
	handler.Routes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createID(t *testing.T, url string, body interface{}) string {
	var created map[string]string
	status := doJSON(t, http.MethodPost, url, body, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created["id"])
	return created["id"]
}

func TestCourseCompletionFlow(t *testing.T) {
	server := newTestServer(t)

	userID := createID(t, server.URL+"/api/users", map[string]string{
		"full_name": "Flow Tester",
		"email":     "flow@example.com",
	})
	courseID := createID(t, server.URL+"/api/courses", map[string]string{
		"title": "HTTP Flow",
	})

	lessonsURL := fmt.Sprintf("%s/api/courses/%s/lessons", server.URL, courseID)
	articleID := createID(t, lessonsURL, map[string]interface{}{
		"title": "Intro", "position": 1, "type": "article",
	})
	quizLessonID := createID(t, lessonsURL, map[string]interface{}{
		"title": "Check", "position": 2, "type": "quiz",
	})
	createID(t, fmt.Sprintf("%s/api/lessons/%s/quiz", server.URL, quizLessonID), map[string]interface{}{
		"passing_score": 60,
		"questions": []map[string]interface{}{
			{"id": "q1", "question": "Pick b", "options": []string{"a", "b"}, "correct_answer": 1, "points": 30},
			{"id": "q2", "question": "Pick a", "options": []string{"a", "b"}, "correct_answer": 0, "points": 70},
		},
	})

	status := doJSON(t, http.MethodPost, server.URL+"/api/enrollments", map[string]string{
		"user_id": userID, "course_id": courseID,
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var marked struct {
		Applied        bool    `json:"applied"`
		Status         string  `json:"status"`
		Fraction       float64 `json:"fraction"`
		NewlyCompleted bool    `json:"newly_completed"`
	}
	status = doJSON(t, http.MethodPost, server.URL+"/api/progress/complete", map[string]interface{}{
		"user_id": userID, "course_id": courseID, "lesson_id": articleID,
	}, &marked)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, marked.Applied)
	assert.Equal(t, "in_progress", marked.Status)
	assert.InDelta(t, 0.5, marked.Fraction, 1e-9)
	assert.False(t, marked.NewlyCompleted)

	var quizResult struct {
		Percentage float64 `json:"percentage"`
		Passed     bool    `json:"passed"`
		Upsert     struct {
			Status         string `json:"status"`
			NewlyCompleted bool   `json:"newly_completed"`
			Certificate    *struct {
				ID string `json:"id"`
			} `json:"certificate"`
		} `json:"upsert"`
	}
	status = doJSON(t, http.MethodPost, server.URL+"/api/progress/quiz", map[string]interface{}{
		"user_id": userID, "course_id": courseID, "lesson_id": quizLessonID,
		"answers": []int{1, 0},
	}, &quizResult)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 100.0, quizResult.Percentage)
	assert.True(t, quizResult.Passed)
	assert.Equal(t, "completed", quizResult.Upsert.Status)
	assert.True(t, quizResult.Upsert.NewlyCompleted)
	require.NotNil(t, quizResult.Upsert.Certificate)

	var view struct {
		Records  []json.RawMessage `json:"records"`
		Status   *string           `json:"status"`
		Fraction *float64          `json:"fraction"`
	}
	status = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/users/%s/progress?course_id=%s", server.URL, userID, courseID), nil, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, view.Records, 2)
	require.NotNil(t, view.Status)
	assert.Equal(t, "completed", *view.Status)
	require.NotNil(t, view.Fraction)
	assert.Equal(t, 1.0, *view.Fraction)

	var board struct {
		SortedBy string `json:"sorted_by"`
		Entries  []struct {
			Rank       int    `json:"rank"`
			UserID     string `json:"user_id"`
			TotalScore int    `json:"total_score"`
		} `json:"entries"`
		Community struct {
			ActiveLearners     int `json:"active_learners"`
			CertificatesEarned int `json:"certificates_earned"`
		} `json:"community"`
	}
	status = doJSON(t, http.MethodGet, server.URL+"/api/leaderboard", nil, &board)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "score", board.SortedBy)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, userID, board.Entries[0].UserID)
	assert.Equal(t, 100, board.Entries[0].TotalScore)

	var dashboard struct {
		EnrolledCourses  int `json:"enrolled_courses"`
		CompletedCourses int `json:"completed_courses"`
		Certificates     int `json:"certificates"`
	}
	status = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/users/%s/dashboard", server.URL, userID), nil, &dashboard)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, dashboard.EnrolledCourses)
	assert.Equal(t, 1, dashboard.CompletedCourses)
	assert.Equal(t, 1, dashboard.Certificates)

	var certs []struct {
		CourseTitle string `json:"course_title"`
	}
	status = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/users/%s/certificates", server.URL, userID), nil, &certs)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, certs, 1)
	assert.Equal(t, "HTTP Flow", certs[0].CourseTitle)
}

func TestValidationErrors(t *testing.T) {
	server := newTestServer(t)

	status := doJSON(t, http.MethodGet, server.URL+"/api/leaderboard?sort=points", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodGet, server.URL+"/api/courses/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = doJSON(t, http.MethodPost, server.URL+"/api/progress/complete", map[string]string{
		"user_id": "u1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodPost, server.URL+"/api/progress/complete", map[string]interface{}{
		"user_id": "u1", "course_id": "c1", "lesson_id": "l1",
		"recorded_at": "yesterday",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodPost, server.URL+"/api/users", map[string]string{
		"email": "nameless@example.com",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMarkLessonRejectsForeignLesson(t *testing.T) {
	server := newTestServer(t)

	userID := createID(t, server.URL+"/api/users", map[string]string{"full_name": "Stray"})
	courseID := createID(t, server.URL+"/api/courses", map[string]string{"title": "Solo"})
	otherCourseID := createID(t, server.URL+"/api/courses", map[string]string{"title": "Other"})
	lessonID := createID(t, fmt.Sprintf("%s/api/courses/%s/lessons", server.URL, otherCourseID),
		map[string]interface{}{"title": "Elsewhere", "position": 1})

	var errResp map[string]string
	status := doJSON(t, http.MethodPost, server.URL+"/api/progress/complete", map[string]interface{}{
		"user_id": userID, "course_id": courseID, "lesson_id": lessonID,
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errResp["error"], "lesson")
}
